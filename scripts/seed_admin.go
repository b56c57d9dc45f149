//go:build ignore

// Command seed_admin creates or resets the back-office admin account.
//
//	go run scripts/seed_admin.go
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/roksva123/go-planning-backend/internal/config"
	"github.com/roksva123/go-planning-backend/internal/repository"
	"github.com/roksva123/go-planning-backend/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.AdminPassword == "" {
		slog.Error("ADMIN_PASSWORD is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.NewPostgresRepoFromConfig(ctx, repository.DBConfig{
		URL:  cfg.DatabaseURL,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Name: cfg.DBName,
	})
	if err != nil {
		slog.Error("DB unreachable", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Ensure table "admins" exist
	if err := repo.RunMigrations(ctx); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	hash, err := service.HashPassword(cfg.AdminPassword)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		os.Exit(1)
	}
	if err := repo.UpsertAdmin(ctx, cfg.AdminUsername, hash); err != nil {
		slog.Error("failed to upsert admin", "error", err)
		os.Exit(1)
	}

	slog.Info("admin created", "username", cfg.AdminUsername)
}
