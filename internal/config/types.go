package config

import "github.com/mauv0809/courtkeeper/internal/rating"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	CompetitionID string
	Courts        int
	InitialRating float64
	// ProcessEveryMinutes controls how often reported matches are swept
	// into the rating engine by the background job.
	ProcessEveryMinutes int
	Rating        rating.Config
	Turso         TursoConfig
	ProjectID     string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
