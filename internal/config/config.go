package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/roksva123/go-planning-backend/internal/model"
)

type Config struct {
	// APP
	AppEnv   string
	Port     string
	LogLevel string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPass      string
	DBName      string

	JWTSecret      string
	AllowedOrigins []string

	// Admin login
	AdminUsername string
	AdminPassword string

	// Notion fallback configuration, used when no active config is saved
	NotionAPIKey    string
	NotionDatabases model.CollectionIDs
	NotionBaseURL   string
	NotionVersion   string
	NotionTimeout   time.Duration

	// Task cache lifetime and the zone of date-only values
	CacheTTL time.Duration
	Location *time.Location

	// Weekly hour thresholds for workload categories
	WorkloadUnderload float64
	WorkloadNormalMin float64
	WorkloadNormalMax float64
	WorkloadOverload  float64
}

func Load() (*Config, error) {
	cfg := &Config{
		// App
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8001"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// DB
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      getEnv("DB_NAME", "planning_db"),

		// JWT
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		// Admin login
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		// Notion
		NotionAPIKey: os.Getenv("NOTION_API_KEY"),
		NotionDatabases: model.CollectionIDs{
			Users:    os.Getenv("NOTION_DATABASE_USERS_ID"),
			Clients:  os.Getenv("NOTION_DATABASE_CLIENTS_ID"),
			Projects: os.Getenv("NOTION_DATABASE_PROJECTS_ID"),
			Tasks:    os.Getenv("NOTION_DATABASE_TRAFIC_ID"),
			Teams:    os.Getenv("NOTION_DATABASE_TEAMS_ID"),
		},
		NotionBaseURL: getEnv("NOTION_BASE_URL", "https://api.notion.com/v1"),
		NotionVersion: getEnv("NOTION_VERSION", "2022-06-28"),
	}

	var err error
	if cfg.NotionTimeout, err = getEnvDuration("NOTION_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	defaults := model.DefaultWorkloadThresholds()
	if cfg.WorkloadUnderload, err = getEnvFloat("WORKLOAD_UNDERLOAD", defaults.Underload); err != nil {
		return nil, err
	}
	if cfg.WorkloadNormalMin, err = getEnvFloat("WORKLOAD_NORMAL_MIN", defaults.NormalMin); err != nil {
		return nil, err
	}
	if cfg.WorkloadNormalMax, err = getEnvFloat("WORKLOAD_NORMAL_MAX", defaults.NormalMax); err != nil {
		return nil, err
	}
	if cfg.WorkloadOverload, err = getEnvFloat("WORKLOAD_OVERLOAD", defaults.Overload); err != nil {
		return nil, err
	}
	if cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Europe/Paris")); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// StoreConfig is the environment fallback for the Notion configuration.
func (c *Config) StoreConfig() model.StoreConfig {
	return model.StoreConfig{
		Name:          "environment",
		APIKey:        c.NotionAPIKey,
		CollectionIDs: c.NotionDatabases,
		IsActive:      true,
	}
}

func (c *Config) Thresholds() model.WorkloadThresholds {
	return model.WorkloadThresholds{
		Underload: c.WorkloadUnderload,
		NormalMin: c.WorkloadNormalMin,
		NormalMax: c.WorkloadNormalMax,
		Overload:  c.WorkloadOverload,
	}
}

// getEnv returns environment variable or default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	if d, err := time.ParseDuration(value + "s"); err == nil {
		return d, nil
	}
	return 0, fmt.Errorf("invalid %s: %q is not a duration", key, value)
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
