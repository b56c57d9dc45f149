package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roksva123/go-planning-backend/internal/model"
)

type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (model.UserPreferences, error)
	SavePreferences(ctx context.Context, p model.UserPreferences) (model.UserPreferences, error)
}

// PreferenceService manages per-user calendar preferences and the shared
// client color map.
type PreferenceService struct {
	Store  PreferenceStore
	Colors ColorStore
	Logger *slog.Logger
}

func NewPreferenceService(store PreferenceStore, colors ColorStore, logger *slog.Logger) *PreferenceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferenceService{Store: store, Colors: colors, Logger: logger}
}

func (s *PreferenceService) Get(ctx context.Context, userID string) (model.UserPreferences, error) {
	if userID == "" {
		return model.UserPreferences{}, model.Invalid("userId", "is required")
	}
	return s.Store.GetPreferences(ctx, userID)
}

// Update applies a partial patch on top of the stored preferences.
func (s *PreferenceService) Update(ctx context.Context, userID string, u model.PreferencesUpdate) (model.UserPreferences, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return model.UserPreferences{}, err
	}
	next := u.Apply(current)
	if err := next.Validate(); err != nil {
		return model.UserPreferences{}, err
	}
	return s.Store.SavePreferences(ctx, next)
}

func (s *PreferenceService) ClientColors(ctx context.Context) ([]model.ClientColor, error) {
	return s.Colors.ListClientColors(ctx)
}

func (s *PreferenceService) SaveClientColors(ctx context.Context, colors []model.ClientColor, userID string) ([]model.ClientColor, error) {
	if len(colors) == 0 {
		return nil, model.Invalid("colors", "at least one color is required")
	}
	for _, c := range colors {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.Colors.UpsertClientColors(ctx, colors, userID); err != nil {
		return nil, err
	}
	return s.Colors.ListClientColors(ctx)
}

// GenerateClientColors assigns a palette color to every client that has
// none yet and returns the colors created.
func (s *PreferenceService) GenerateClientColors(ctx context.Context, clients []model.Client, userID string) ([]model.ClientColor, error) {
	existing, err := s.Colors.ListClientColors(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.ClientID] = true
	}

	created := []model.ClientColor{}
	for _, cl := range clients {
		if cl.ID == "" || cl.Name == "" || known[cl.ID] {
			continue
		}
		known[cl.ID] = true
		created = append(created, model.ClientColor{
			ClientID:   cl.ID,
			ClientName: cl.Name,
			Color:      paletteColor(cl.Name),
			CreatedBy:  userID,
		})
	}
	if len(created) == 0 {
		return created, nil
	}
	if err := s.Colors.UpsertClientColors(ctx, created, userID); err != nil {
		return nil, fmt.Errorf("failed to store generated colors: %w", err)
	}
	s.Logger.Info("generated client colors", "count", len(created))
	return created, nil
}
