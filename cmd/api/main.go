package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/jobwatch/jobwatch/internal/attach"
	"github.com/jobwatch/jobwatch/internal/config"
	"github.com/jobwatch/jobwatch/internal/db"
	"github.com/jobwatch/jobwatch/internal/email"
	"github.com/jobwatch/jobwatch/internal/fetch"
	"github.com/jobwatch/jobwatch/internal/handlers"
	"github.com/jobwatch/jobwatch/internal/lease"
	jwmiddleware "github.com/jobwatch/jobwatch/internal/middleware"
	"github.com/jobwatch/jobwatch/internal/repo"
	"github.com/jobwatch/jobwatch/internal/scan"
	"github.com/jobwatch/jobwatch/internal/scheduler"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	// Load configuration
	cfg := config.Load()

	if cfg.LogFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	// Connect to database FIRST
	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)

	log.Println("Successfully connected to the database")

	// Run migrations
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err := db.Run(dbURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	appRepo := repo.NewApplicationRepo(database)
	emailRepo := repo.NewEmailRepo(database)
	eventRepo := repo.NewEventRepo(database)
	scheduleRepo := repo.NewScheduleRepo(database)

	// Scan pipeline
	fetcher := fetch.New(cfg.FetchTimeout)
	executor := &scan.Executor{
		Apps:        appRepo,
		Events:      eventRepo,
		Fetch:       fetcher,
		BackoffBase: cfg.BackoffBase,
		BackoffCap:  cfg.BackoffCap,
	}

	// Background scanner
	leases := lease.NewManager(database, cfg.InstanceID)
	dispatcher := scheduler.NewDispatcher(appRepo, leases, executor)
	stopScanner := dispatcher.Start(scheduler.Config{
		Tick:           cfg.ScanTick,
		BatchSize:      cfg.ScanBatchSize,
		MaxConcurrency: cfg.ScanConcurrency,
		LeaseTTL:       cfg.LeaseTTL,
		Enabled:        cfg.ScansEnabled,
	})
	defer stopScanner()

	// Email attach & promote pipeline
	pipeline := &attach.Pipeline{
		Apps:             appRepo,
		Emails:           emailRepo,
		Events:           eventRepo,
		Scorer:           email.NewScorer(cfg.AttachMinScore),
		PromoteThreshold: cfg.PromoteMinScore,
	}

	// Cron-driven attach runs
	go scheduler.RunAttachSchedules(scheduleRepo, func(userID string) {
		if _, err := pipeline.RunAttach(context.Background(), userID, 0); err != nil {
			log.Printf("scheduler: attach run for user %s failed: %v", userID, err)
		}
	})

	// Handlers
	appHandler := &handlers.ApplicationHandler{Repo: appRepo, Executor: executor}
	attachHandler := &handlers.AttachHandler{Pipeline: pipeline}
	eventHandler := &handlers.EventHandler{Repo: eventRepo, Apps: appRepo}
	scheduleHandler := &handlers.ScheduleHandler{Repo: scheduleRepo}

	// Routes
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(jwmiddleware.RequestLog)
	r.Use(jwmiddleware.Recoverer)
	r.Use(jwmiddleware.Prometheus)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(jwmiddleware.JWTMiddleware([]byte(cfg.JWTSecret)))

		r.Get("/applications", appHandler.ListApplications)
		r.Post("/applications", appHandler.CreateApplication)
		r.Get("/applications/{id}", appHandler.GetApplication)
		r.Post("/applications/{id}/scan", appHandler.TriggerScan)
		r.Get("/applications/{id}/events", eventHandler.ListEvents)

		r.Post("/attach/run", attachHandler.RunAttach)
		r.Get("/attach/schedules", scheduleHandler.ListSchedules)
		r.Post("/attach/schedules", scheduleHandler.CreateSchedule)
		r.Delete("/attach/schedules/{id}", scheduleHandler.DeleteSchedule)
	})

	// Start server LAST
	log.Println("Starting server on :" + cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
