package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talentdesk/activity"
	"talentdesk/config"
	"talentdesk/middleware"
	"talentdesk/repository"
	"talentdesk/routes"
	"talentdesk/utils"
	"talentdesk/worker"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.AppConfig
	utils.SetupLogging(cfg.Environment)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     cfg.AppVersion,
		}); err != nil {
			logrus.WithError(err).Warn("Sentry initialization failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	repos := repository.New(config.DB)
	hub := activity.NewHub(activity.DefaultBuffer)
	recorder := activity.NewRecorder(repos.Activity, hub, utils.Logger("activity"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthWorker := worker.NewHealthWorker(repos.Stats, cfg.AppVersion, cfg.HealthInterval, utils.Logger("health"))
	go healthWorker.Start(ctx)

	overdueWorker := worker.NewOverdueWorker(repos.Tasks, recorder, cfg.OverdueInterval, utils.Logger("overdue"))
	go overdueWorker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:   "talentdesk " + cfg.AppVersion,
		Immutable: true,
	})
	app.Use(middleware.CORS(middleware.ForOrigins(cfg.AllowedOrigins)))

	routes.SetupRoutes(app, routes.Deps{
		Repos:    repos,
		Hub:      hub,
		Recorder: recorder,
		Health:   healthWorker,
		Config:   cfg,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down server...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	logrus.Infof("🚀 Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
