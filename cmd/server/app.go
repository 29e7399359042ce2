package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/drill-api/internal/catalog"
	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/gating"
	"github.com/phrazzld/drill-api/internal/domain/stress"
	"github.com/phrazzld/drill-api/internal/events"
	"github.com/phrazzld/drill-api/internal/platform/postgres"
	"github.com/phrazzld/drill-api/internal/service/auth"
	"github.com/phrazzld/drill-api/internal/service/mastery"
	"github.com/phrazzld/drill-api/internal/service/training"
	"github.com/phrazzld/drill-api/internal/store"
	"github.com/phrazzld/drill-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	masteryStore store.LessonMasteryStore
	sessionStore store.StressSessionStore
	metricsStore store.StressMetricsStore
	attemptStore store.DrillAttemptStore

	// Service interfaces
	jwtService      auth.JWTService
	gatingService   gating.Service
	scoringService  stress.Service
	masteryService  mastery.MasteryService
	trainingService training.StressTrainingService

	// Event system
	eventEmitter events.EventEmitter

	// Background telemetry refresh
	sessionTicker *task.SessionTicker
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize stores
	app.masteryStore = postgres.NewPostgresLessonMasteryStore(db, logger)
	app.sessionStore = postgres.NewPostgresStressSessionStore(db, logger)
	app.metricsStore = postgres.NewPostgresStressMetricsStore(db, logger)
	app.attemptStore = postgres.NewPostgresDrillAttemptStore(db, logger)

	// Initialize event emitter with a logging handler so session and mastery
	// events show up in the structured log stream.
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLoggingHandler(logger))
	app.eventEmitter = emitter

	// Initialize the pure domain services
	requirements := domain.MasteryRequirements{
		Crawl:          cfg.Training.CrawlPerfectCompletions,
		Walk:           cfg.Training.WalkPerfectCompletions,
		RunGuided:      cfg.Training.RunGuidedPerfectCompletions,
		RunIndependent: cfg.Training.RunIndependentPerfectCompletions,
	}
	app.gatingService = gating.NewServiceWithParams(gating.NewParams(requirements))
	app.scoringService = stress.NewDefaultService()

	// Initialize mastery service
	app.masteryService = mastery.NewMasteryService(
		app.masteryStore,
		app.gatingService,
		requirements,
		app.eventEmitter,
		logger,
	)

	// Initialize stress training service
	app.trainingService = training.NewStressTrainingService(
		app.scoringService,
		app.sessionStore,
		app.metricsStore,
		app.attemptStore,
		catalog.ByID,
		app.eventEmitter,
		training.Config{
			PromotionSessionThreshold: cfg.Training.PromotionSessionThreshold,
			BaselineWindow:            cfg.Training.BaselineWindow,
		},
		logger,
	)

	// Initialize and start the session ticker
	app.sessionTicker = task.NewSessionTicker(app.trainingService, task.SessionTickerConfig{
		Interval: time.Duration(cfg.Training.TickIntervalSeconds) * time.Second,
	}, logger)
	app.sessionTicker.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop session ticker
	if app.sessionTicker != nil {
		app.sessionTicker.Stop()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
