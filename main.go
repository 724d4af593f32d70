package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/mauv0809/courtkeeper/internal/config"
	"github.com/mauv0809/courtkeeper/internal/database"
	server "github.com/mauv0809/courtkeeper/internal/http"
	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/mauv0809/courtkeeper/internal/metrics"
	"github.com/mauv0809/courtkeeper/internal/processor"
	"github.com/mauv0809/courtkeeper/internal/pubsub"
	"github.com/mauv0809/courtkeeper/internal/rating"
	"github.com/mauv0809/courtkeeper/internal/team"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	leagueStore := league.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	pubsub := pubsub.New(cfg.ProjectID)
	ratingEngine := rating.New(cfg.Rating)
	teamEngine := team.NewEngine(ratingEngine, cfg.InitialRating)
	proc := processor.New(leagueStore, metricsSvc, pubsub, ratingEngine, teamEngine)

	s := server.NewServer(
		leagueStore,
		metricsSvc,
		metricsHandler,
		cfg,
		proc,
		pubsub,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Background processing job ---
	// Reported matches are swept into the rating engine on an interval, so
	// results still get processed when nobody hits /process manually.
	cron, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create background scheduler: %s", err)
	}
	_, err = cron.NewJob(
		gocron.DurationJob(time.Duration(cfg.ProcessEveryMinutes)*time.Minute),
		gocron.NewTask(func() {
			report, err := proc.ProcessReported(false)
			if err != nil {
				log.Error("Background processing failed", "error", err)
				return
			}
			if report.Processed > 0 || report.Failed > 0 {
				log.Info("Background processing finished", "processed", report.Processed, "failed", report.Failed)
			}
		}),
	)
	if err != nil {
		log.Fatalf("Failed to create processing job: %s", err)
	}
	cron.Start()
	defer func() {
		if err := cron.Shutdown(); err != nil {
			log.Error("Background scheduler shutdown failed", "error", err)
		}
	}()

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
