package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/roksva123/go-planning-backend/internal/api"
	"github.com/roksva123/go-planning-backend/internal/api/handlers"
	"github.com/roksva123/go-planning-backend/internal/cache"
	"github.com/roksva123/go-planning-backend/internal/config"
	"github.com/roksva123/go-planning-backend/internal/logging"
	"github.com/roksva123/go-planning-backend/internal/notion"
	"github.com/roksva123/go-planning-backend/internal/repository"
	"github.com/roksva123/go-planning-backend/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// LOAD ENV
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init(os.Stdout, cfg.AppEnv, cfg.LogLevel)
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// INIT DB
	repo, err := repository.NewPostgresRepoFromConfig(ctx, repository.DBConfig{
		URL:  cfg.DatabaseURL,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Name: cfg.DBName,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	// MIGRATIONS
	if err := repo.RunMigrations(ctx); err != nil {
		return err
	}

	// ADMIN SEED
	if cfg.AdminPassword != "" {
		hashed, err := service.HashPassword(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		if err := repo.UpsertAdmin(ctx, cfg.AdminUsername, hashed); err != nil {
			logger.Warn("failed seeding admin", "error", err)
		} else {
			logger.Info("admin seeded", "username", cfg.AdminUsername)
		}
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: repo.DB}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open gorm: %w", err)
	}
	tickets := service.NewTicketService(gdb, service.LogNotifier{Logger: logger}, logger)
	if err := tickets.Migrate(ctx); err != nil {
		return fmt.Errorf("ticket migration failed: %w", err)
	}

	// SERVICES
	settings := service.NewSettingsService(repo, cfg.StoreConfig(), logger)
	client := notion.NewClient(settings, cfg.NotionBaseURL, cfg.NotionVersion, cfg.NotionTimeout, logger)
	settings.Pinger = client
	if status := settings.Status(ctx); status.Error != "" {
		logger.Warn("no usable Notion configuration yet", "error", status.Error)
	} else {
		logger.Info("Notion configuration loaded", "source", status.Source)
	}

	tasks := repository.NewTaskRepository(client, cache.NewTaskCache(cfg.CacheTTL), cfg.Location, logger)
	catalog := repository.NewCatalog(client, logger)
	calendar := service.NewCalendarService(tasks, catalog, repo, cfg.Location, logger)
	prefs := service.NewPreferenceService(repo, repo, logger)
	auth := service.NewAuthService(repo, cfg.JWTSecret)
	workload := service.NewWorkloadService(calendar, cfg.Thresholds(), logger)

	// ROUTER
	router := api.NewRouter(api.Handlers{
		Auth:        handlers.NewAuthHandler(auth),
		Calendar:    handlers.NewCalendarHandler(calendar),
		Preferences: handlers.NewPreferenceHandler(prefs, calendar),
		Settings:    handlers.NewSettingsHandler(settings),
		Tickets:     handlers.NewTicketHandler(tickets),
		Workload:    handlers.NewWorkloadHandler(workload),
	}, api.RouterConfig{JWTSecret: cfg.JWTSecret, AllowedOrigins: cfg.AllowedOrigins})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// START SERVER
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	tasks.Wait()
	return nil
}
