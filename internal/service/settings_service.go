package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/roksva123/go-planning-backend/internal/model"
)

const (
	activeConfigKey = "active"
	activeConfigTTL = 30 * time.Second
)

type StoreConfigRepo interface {
	GetActiveStoreConfig(ctx context.Context) (model.StoreConfig, error)
	SaveStoreConfig(ctx context.Context, c model.StoreConfig) (model.StoreConfig, error)
}

// Pinger checks a configuration against the external store.
type Pinger interface {
	Ping(ctx context.Context, cfg model.StoreConfig) model.ConnectionReport
}

// SettingsService resolves the external store configuration: the active
// configuration saved in the database wins over the environment.
type SettingsService struct {
	Repo   StoreConfigRepo
	Env    model.StoreConfig
	Pinger Pinger
	Logger *slog.Logger

	active *gocache.Cache
}

func NewSettingsService(repo StoreConfigRepo, env model.StoreConfig, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		Repo:   repo,
		Env:    env,
		Logger: logger,
		active: gocache.New(activeConfigTTL, 2*activeConfigTTL),
	}
}

// ActiveStoreConfig returns the configuration to use for the next store call.
// It fails with model.ErrStoreConfig when neither source is complete.
func (s *SettingsService) ActiveStoreConfig(ctx context.Context) (model.ActiveStoreConfig, error) {
	if v, ok := s.active.Get(activeConfigKey); ok {
		return v.(model.ActiveStoreConfig), nil
	}

	if s.Repo != nil {
		cfg, err := s.Repo.GetActiveStoreConfig(ctx)
		switch {
		case err == nil && cfg.Complete():
			active := model.ActiveStoreConfig{Source: model.ConfigSourceDatabase, Config: cfg}
			s.active.SetDefault(activeConfigKey, active)
			return active, nil
		case err == nil:
			s.Logger.Warn("active store config is incomplete, falling back to environment", "config_id", cfg.ID)
		case !errors.Is(err, model.ErrNotFound):
			s.Logger.Warn("failed to read store config, falling back to environment", "error", err)
		}
	}

	if s.Env.Complete() {
		active := model.ActiveStoreConfig{Source: model.ConfigSourceEnvironment, Config: s.Env}
		s.active.SetDefault(activeConfigKey, active)
		return active, nil
	}
	return model.ActiveStoreConfig{Source: model.ConfigSourceNone}, fmt.Errorf("no usable store configuration: %w", model.ErrStoreConfig)
}

func (s *SettingsService) Status(ctx context.Context) model.ConfigStatus {
	active, err := s.ActiveStoreConfig(ctx)
	status := model.ConfigStatus{
		Source:        active.Source,
		UsingFallback: active.Source == model.ConfigSourceEnvironment,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

// Current returns the active configuration with its key redacted.
func (s *SettingsService) Current(ctx context.Context) (model.ActiveStoreConfig, error) {
	active, err := s.ActiveStoreConfig(ctx)
	if err != nil {
		return active, err
	}
	active.Config = active.Config.Redacted()
	return active, nil
}

// Save stores cfg and, when it is active, makes it the configuration used by
// the next store call.
func (s *SettingsService) Save(ctx context.Context, cfg model.StoreConfig, userID string) (model.StoreConfig, error) {
	if s.Repo == nil {
		return model.StoreConfig{}, fmt.Errorf("no database to save configuration: %w", model.ErrStoreConfig)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if !cfg.Complete() {
		return model.StoreConfig{}, model.Invalid("config", "API key and users, clients, projects and trafic database ids are required")
	}
	if strings.TrimSpace(cfg.Name) == "" {
		cfg.Name = "default"
	}
	cfg.CreatedBy = userID

	saved, err := s.Repo.SaveStoreConfig(ctx, cfg)
	if err != nil {
		return model.StoreConfig{}, fmt.Errorf("failed to save store config: %w", err)
	}
	s.active.Flush()
	s.Logger.Info("store config saved", "config_id", saved.ID, "active", saved.IsActive)
	return saved.Redacted(), nil
}

// TestConnection checks cfg without saving it. An empty API key tests the
// active configuration instead.
func (s *SettingsService) TestConnection(ctx context.Context, cfg model.StoreConfig) (model.ConnectionReport, error) {
	if s.Pinger == nil {
		return model.ConnectionReport{}, errors.New("connection testing is not available")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		active, err := s.ActiveStoreConfig(ctx)
		if err != nil {
			return model.ConnectionReport{}, err
		}
		cfg = active.Config
	}
	return s.Pinger.Ping(ctx, cfg), nil
}
