package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roksva123/go-planning-backend/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.NotionTimeout)
	assert.Equal(t, "2022-06-28", cfg.NotionVersion)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.StoreConfig().Complete())
	assert.Equal(t, model.DefaultWorkloadThresholds(), cfg.Thresholds())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CACHE_TTL", "120")
	t.Setenv("NOTION_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")
	t.Setenv("NOTION_API_KEY", "secret_abc")
	t.Setenv("NOTION_DATABASE_USERS_ID", "u")
	t.Setenv("NOTION_DATABASE_CLIENTS_ID", "c")
	t.Setenv("NOTION_DATABASE_PROJECTS_ID", "p")
	t.Setenv("NOTION_DATABASE_TRAFIC_ID", "t")
	t.Setenv("WORKLOAD_OVERLOAD", "50.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.NotionTimeout)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)

	store := cfg.StoreConfig()
	assert.True(t, store.Complete())
	assert.Equal(t, "t", store.CollectionIDs.Tasks)
	assert.Equal(t, 50.5, cfg.Thresholds().Overload)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"bad duration", map[string]string{"JWT_SECRET": "x", "CACHE_TTL": "soon"}},
		{"bad threshold", map[string]string{"JWT_SECRET": "x", "WORKLOAD_UNDERLOAD": "lots"}},
		{"bad timezone", map[string]string{"JWT_SECRET": "x", "TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
