package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/roksva123/go-planning-backend/internal/model"
)

type DBConfig struct {
	URL  string
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns URL when set, else a key/value connection string.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Pass, c.Name)
}

// PostgresRepo is the local store: admins, client colors, user preferences
// and store configurations.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepoFromConfig(ctx context.Context, cfg DBConfig) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &PostgresRepo{DB: db}, nil
}

func (r *PostgresRepo) Close() error {
	return r.DB.Close()
}

func (r *PostgresRepo) RunMigrations(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
		`CREATE TABLE IF NOT EXISTS admins (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS client_colors (
			client_id TEXT PRIMARY KEY,
			client_name TEXT NOT NULL,
			color VARCHAR(7) NOT NULL,
			created_by TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_client_colors_name ON client_colors (client_name);`,
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id TEXT PRIMARY KEY,
			visible_properties TEXT[] NOT NULL DEFAULT '{}',
			default_view TEXT NOT NULL DEFAULT 'timeGridWeek',
			filter_preferences JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS store_configs (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			api_key TEXT NOT NULL,
			users_db TEXT NOT NULL,
			clients_db TEXT NOT NULL,
			projects_db TEXT NOT NULL,
			tasks_db TEXT NOT NULL,
			teams_db TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT false,
			created_by TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_store_configs_active ON store_configs (is_active) WHERE is_active;`,
	}
	for _, q := range queries {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepo) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM admins
		WHERE username = $1
		LIMIT 1
	`, username)

	var a model.Admin
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin %q: %w", username, model.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepo) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO admins (username, password_hash) VALUES ($1,$2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, username, passwordHash)
	return err
}

func (r *PostgresRepo) ListClientColors(ctx context.Context) ([]model.ClientColor, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT client_id, client_name, color, COALESCE(created_by, ''), created_at, updated_at
		FROM client_colors
		ORDER BY client_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list client colors: %w", err)
	}
	defer rows.Close()

	colors := []model.ClientColor{}
	for rows.Next() {
		var c model.ClientColor
		if err := rows.Scan(&c.ClientID, &c.ClientName, &c.Color, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

// UpsertClientColors stores every color in one transaction.
func (r *PostgresRepo) UpsertClientColors(ctx context.Context, colors []model.ClientColor, updatedBy string) error {
	for _, c := range colors {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range colors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO client_colors (client_id, client_name, color, created_by)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (client_id) DO UPDATE SET
				client_name = EXCLUDED.client_name,
				color = EXCLUDED.color,
				updated_at = now()
		`, c.ClientID, c.ClientName, c.Color, updatedBy)
		if err != nil {
			return fmt.Errorf("failed to save color of client %s: %w", c.ClientID, err)
		}
	}
	return tx.Commit()
}

// GetPreferences returns the preferences of userID, creating the defaults
// on first access.
func (r *PostgresRepo) GetPreferences(ctx context.Context, userID string) (model.UserPreferences, error) {
	def := model.DefaultPreferences(userID)
	filters, err := json.Marshal(def.FilterPreferences)
	if err != nil {
		return model.UserPreferences{}, err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, visible_properties, default_view, filter_preferences)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, pq.Array(def.VisibleProperties), def.DefaultView, filters)
	if err != nil {
		return model.UserPreferences{}, fmt.Errorf("failed to create default preferences: %w", err)
	}
	return r.scanPreferences(ctx, userID)
}

func (r *PostgresRepo) scanPreferences(ctx context.Context, userID string) (model.UserPreferences, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, visible_properties, default_view, filter_preferences, created_at, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`, userID)

	var (
		p       model.UserPreferences
		visible pq.StringArray
		filters []byte
	)
	if err := row.Scan(&p.UserID, &visible, &p.DefaultView, &filters, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.UserPreferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	p.VisibleProperties = []string(visible)
	if err := json.Unmarshal(filters, &p.FilterPreferences); err != nil {
		return model.UserPreferences{}, fmt.Errorf("failed to decode filter preferences: %w", err)
	}
	return p, nil
}

func (r *PostgresRepo) SavePreferences(ctx context.Context, p model.UserPreferences) (model.UserPreferences, error) {
	if err := p.Validate(); err != nil {
		return model.UserPreferences{}, err
	}
	filters, err := json.Marshal(p.FilterPreferences)
	if err != nil {
		return model.UserPreferences{}, err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, visible_properties, default_view, filter_preferences)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE SET
			visible_properties = EXCLUDED.visible_properties,
			default_view = EXCLUDED.default_view,
			filter_preferences = EXCLUDED.filter_preferences,
			updated_at = now()
	`, p.UserID, pq.Array(p.VisibleProperties), p.DefaultView, filters)
	if err != nil {
		return model.UserPreferences{}, fmt.Errorf("failed to save preferences: %w", err)
	}
	return r.scanPreferences(ctx, p.UserID)
}

// GetActiveStoreConfig returns model.ErrNotFound when no configuration is
// active.
func (r *PostgresRepo) GetActiveStoreConfig(ctx context.Context) (model.StoreConfig, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, api_key, users_db, clients_db, projects_db, tasks_db, teams_db,
			is_active, COALESCE(created_by, ''), created_at, updated_at
		FROM store_configs
		WHERE is_active
		LIMIT 1
	`)

	var c model.StoreConfig
	ids := &c.CollectionIDs
	err := row.Scan(&c.ID, &c.Name, &c.APIKey, &ids.Users, &ids.Clients, &ids.Projects, &ids.Tasks, &ids.Teams,
		&c.IsActive, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.StoreConfig{}, fmt.Errorf("active store config: %w", model.ErrNotFound)
		}
		return model.StoreConfig{}, fmt.Errorf("failed to read store config: %w", err)
	}
	return c, nil
}

// SaveStoreConfig inserts or updates c. Activating it deactivates every other
// configuration in the same transaction.
func (r *PostgresRepo) SaveStoreConfig(ctx context.Context, c model.StoreConfig) (model.StoreConfig, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.StoreConfig{}, err
	}
	defer tx.Rollback()

	if c.IsActive {
		if _, err := tx.ExecContext(ctx, `UPDATE store_configs SET is_active = false, updated_at = now() WHERE is_active AND id <> $1`, c.ID); err != nil {
			return model.StoreConfig{}, fmt.Errorf("failed to deactivate store configs: %w", err)
		}
	}

	ids := c.CollectionIDs
	row := tx.QueryRowContext(ctx, `
		INSERT INTO store_configs (id, name, api_key, users_db, clients_db, projects_db, tasks_db, teams_db, is_active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			api_key = EXCLUDED.api_key,
			users_db = EXCLUDED.users_db,
			clients_db = EXCLUDED.clients_db,
			projects_db = EXCLUDED.projects_db,
			tasks_db = EXCLUDED.tasks_db,
			teams_db = EXCLUDED.teams_db,
			is_active = EXCLUDED.is_active,
			updated_at = now()
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.APIKey, ids.Users, ids.Clients, ids.Projects, ids.Tasks, ids.Teams, c.IsActive, c.CreatedBy)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return model.StoreConfig{}, fmt.Errorf("failed to save store config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.StoreConfig{}, err
	}
	return c, nil
}
