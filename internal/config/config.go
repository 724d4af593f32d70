package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName:              getEnv("DB_NAME"),
		MigrationsDir:       "./migrations",
		Port:                getEnv("PORT"),
		CompetitionID:       getEnv("COMPETITION_ID"),
		Courts:              getEnvInt("COURTS", 2),
		InitialRating:       getEnvFloat("INITIAL_RATING", 50),
		ProcessEveryMinutes: getEnvInt("PROCESS_EVERY_MINUTES", 15),
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		ProjectID: getEnv("GCP_PROJECT"),
	}

	// The rating formula tuning has sane defaults for every knob, so it is
	// loaded separately via envconfig instead of the required-var helper.
	if err := envconfig.Process("RATING", &cfg.Rating); err != nil {
		log.Fatalf("Error: failed to parse RATING_* configuration: %s", err)
	}
	return cfg
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn("Invalid integer env var, using fallback", "key", key, "value", value, "fallback", fallback)
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn("Invalid float env var, using fallback", "key", key, "value", value, "fallback", fallback)
		return fallback
	}
	return parsed
}
