package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roksva123/go-planning-backend/internal/api/handlers"
	"github.com/roksva123/go-planning-backend/internal/cache"
	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/notion"
	"github.com/roksva123/go-planning-backend/internal/notion/notiontest"
	"github.com/roksva123/go-planning-backend/internal/repository"
	"github.com/roksva123/go-planning-backend/internal/service"
)

const testSecret = "test-secret"

// memLocal stands in for the Postgres repository.
type memLocal struct {
	mu     sync.Mutex
	colors []model.ClientColor
	prefs  map[string]model.UserPreferences
	admins map[string]*model.Admin
}

func (m *memLocal) ListClientColors(ctx context.Context) ([]model.ClientColor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.colors), nil
}

func (m *memLocal) UpsertClientColors(ctx context.Context, colors []model.ClientColor, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range colors {
		i := slices.IndexFunc(m.colors, func(e model.ClientColor) bool { return e.ClientID == c.ClientID })
		if i >= 0 {
			m.colors[i] = c
			continue
		}
		m.colors = append(m.colors, c)
	}
	return nil
}

func (m *memLocal) GetPreferences(ctx context.Context, userID string) (model.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return model.DefaultPreferences(userID), nil
}

func (m *memLocal) SavePreferences(ctx context.Context, p model.UserPreferences) (model.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[p.UserID] = p
	return p, nil
}

func (m *memLocal) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	if a, ok := m.admins[username]; ok {
		return a, nil
	}
	return nil, model.ErrNotFound
}

type stubPinger struct{}

func (stubPinger) Ping(ctx context.Context, cfg model.StoreConfig) model.ConnectionReport {
	return model.ConnectionReport{Success: true, Message: "Connection successful", APIKey: true}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	store  *notiontest.Store
	local  *memLocal
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := notiontest.New()
	store.Add(notion.CollectionUsers, notion.Page{ID: "u1", Properties: notion.Properties{
		"Nom": notion.TitleValue("Alice"),
	}})
	store.Add(notion.CollectionClients, notion.Page{ID: "c1", Properties: notion.Properties{
		"Nom du client": notion.TitleValue("Acme"),
	}})
	store.Add(notion.CollectionProjects, notion.Page{ID: "p1", Properties: notion.Properties{
		"Nom":        notion.TitleValue("Site web"),
		"🫡 Clients": notion.RelationValue("c1"),
	}})

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	local := &memLocal{
		prefs:  map[string]model.UserPreferences{},
		admins: map[string]*model.Admin{"admin": {ID: "a-1", Username: "admin", PasswordHash: string(hash)}},
	}

	tasks := repository.NewTaskRepository(store, cache.NewTaskCache(time.Minute), time.UTC, logger)
	t.Cleanup(tasks.Wait)
	catalog := repository.NewCatalog(store, logger)

	calendar := service.NewCalendarService(tasks, catalog, local, time.UTC, logger)
	prefs := service.NewPreferenceService(local, local, logger)
	settings := service.NewSettingsService(nil, model.StoreConfig{
		APIKey:        "secret_env_key_123",
		CollectionIDs: model.CollectionIDs{Users: "u", Clients: "c", Projects: "p", Tasks: "t"},
	}, logger)
	settings.Pinger = stubPinger{}

	router := NewRouter(Handlers{
		Auth:        handlers.NewAuthHandler(service.NewAuthService(local, testSecret)),
		Calendar:    handlers.NewCalendarHandler(calendar),
		Preferences: handlers.NewPreferenceHandler(prefs, calendar),
		Settings:    handlers.NewSettingsHandler(settings),
		Tickets:     handlers.NewTicketHandler(service.NewTicketService(nil, nil, logger)),
		Workload:    handlers.NewWorkloadHandler(service.NewWorkloadService(calendar, model.DefaultWorkloadThresholds(), logger)),
	}, RouterConfig{JWTSecret: testSecret, AllowedOrigins: []string{"http://localhost:3000"}})

	env := &testEnv{t: t, router: router, store: store, local: local}
	rec := env.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login model.LoginResponse
	env.decode(rec, &login)
	env.token = login.Token
	return env
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) decode(rec *httptest.ResponseRecorder, dst any) envelope {
	e.t.Helper()
	var env envelope
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &env))
	if dst != nil {
		require.NoError(e.t, json.Unmarshal(env.Data, dst))
	}
	return env
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	assert.NotEmpty(t, env.token)

	env.token = ""
	rec := env.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/calendar/users", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReferenceLists(t *testing.T) {
	env := newTestEnv(t)

	var users []model.User
	rec := env.do(http.MethodGet, "/api/v1/calendar/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].Name)

	var projects []model.Project
	rec = env.do(http.MethodGet, "/api/v1/calendar/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &projects)
	require.Len(t, projects, 1)
	assert.Equal(t, "Acme", projects[0].Client)

	var options []model.StatusOption
	rec = env.do(http.MethodGet, "/api/v1/calendar/status-options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &options)
	assert.Equal(t, model.DefaultStatusOptions, options)
}

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)

	var created model.EnrichedTask
	rec := env.do(http.MethodPost, "/api/v1/calendar/tasks", map[string]any{
		"name":          "Logo",
		"projectId":     "p1",
		"startDate":     "2025-03-10T09:00:00Z",
		"endDate":       "2025-03-10T12:00:00Z",
		"assignedUsers": []string{"u1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env.decode(rec, &created)
	assert.Equal(t, "Logo", created.Name)
	assert.Equal(t, "Acme", created.Client)
	assert.Equal(t, "Site web", created.ProjectName)
	assert.Equal(t, []string{"Alice"}, created.AssignedUsersNames)
	assert.Equal(t, "#06b6d4", created.ClientColor)

	var listed []model.EnrichedTask
	rec = env.do(http.MethodGet, "/api/v1/calendar/tasks?start=2025-03-10&end=2025-03-16&view=timeGridWeek", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.decode(rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	var report model.ConflictReport
	rec = env.do(http.MethodPost, "/api/v1/calendar/tasks/check-overlap", map[string]any{
		"assignedUsers": []string{"u1"},
		"startDate":     "2025-03-10T10:00:00Z",
		"endDate":       "2025-03-10T11:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.decode(rec, &report)
	assert.True(t, report.HasConflicts)
	assert.Equal(t, `Alice a déjà "Logo" de 09:00 à 12:00`, report.ConflictMessage)

	var updated model.EnrichedTask
	rec = env.do(http.MethodPatch, "/api/v1/calendar/tasks/"+created.ID, map[string]any{"name": "Logo v2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.decode(rec, &updated)
	assert.Equal(t, "Logo v2", updated.Name)

	rec = env.do(http.MethodDelete, "/api/v1/calendar/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/v1/calendar/tasks?start=2025-03-10&end=2025-03-16", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &listed)
	assert.Empty(t, listed)

	rec = env.do(http.MethodDelete, "/api/v1/calendar/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkloadEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/calendar/tasks", map[string]any{
		"name":          "Tournage",
		"projectId":     "p1",
		"startDate":     "2025-03-10",
		"endDate":       "2025-03-11",
		"assignedUsers": []string{"u1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var report model.WorkloadResponse
	rec = env.do(http.MethodGet, "/api/v1/calendar/workload?start=2025-03-10&end=2025-03-16", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.decode(rec, &report)
	require.Len(t, report.Users, 1)
	assert.Equal(t, "Alice", report.Users[0].UserName)
	assert.Equal(t, 18.0, report.Users[0].TotalHours)
	assert.Equal(t, model.WorkloadUnderload, report.Users[0].Category)

	rec = env.do(http.MethodGet, "/api/v1/calendar/workload?start=2025-03-10", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnassignedTasks(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/calendar/tasks", map[string]any{"name": "Backlog", "projectId": "p1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tasks []model.EnrichedTask
	rec = env.do(http.MethodGet, "/api/v1/calendar/unassigned-tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Backlog", tasks[0].Name)
	assert.Equal(t, model.StatusNotStarted, tasks[0].Status)
}

func TestErrorMapping(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing window", http.MethodGet, "/api/v1/calendar/tasks?end=2025-03-16", nil, http.StatusBadRequest},
		{"missing project", http.MethodPost, "/api/v1/calendar/tasks", map[string]any{"name": "x"}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1/calendar/tasks/check-overlap", "not an object", http.StatusBadRequest},
		{"overlap without dates", http.MethodPost, "/api/v1/calendar/tasks/check-overlap", map[string]any{"assignedUsers": []string{"u1"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			got := env.decode(rec, nil)
			assert.False(t, got.Success)
			assert.NotEmpty(t, got.Error)
		})
	}

	t.Run("upstream failure", func(t *testing.T) {
		env.store.FailQueries(notion.CollectionTasks, &notion.APIError{Status: http.StatusBadGateway, Message: "bad gateway"})
		rec := env.do(http.MethodGet, "/api/v1/calendar/tasks?start=2025-04-01&end=2025-04-30", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
	})
}

func TestFilterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	tasks := []model.EnrichedTask{
		{Task: model.Task{ID: "a", Status: model.StatusInProgress}, Client: "Acme"},
		{Task: model.Task{ID: "b", Status: model.StatusDone}, Client: "Acme"},
		{Task: model.Task{ID: "c", Status: model.StatusInProgress}, Client: "Nike"},
	}
	var got []model.EnrichedTask
	rec := env.do(http.MethodPost, "/api/v1/calendar/tasks/filter", map[string]any{
		"tasks":   tasks,
		"filters": model.TaskFilter{SelectedClients: []string{"Acme"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.decode(rec, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Zero(t, env.store.Queries(notion.CollectionTasks))
}

func TestPreferencesEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var prefs model.UserPreferences
	rec := env.do(http.MethodGet, "/api/v1/calendar/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &prefs)
	assert.Equal(t, "a-1", prefs.UserID)
	assert.Equal(t, "timeGridWeek", prefs.DefaultView)

	rec = env.do(http.MethodPatch, "/api/v1/calendar/preferences", map[string]any{"defaultView": "dayGridMonth"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.decode(rec, &prefs)
	assert.Equal(t, "dayGridMonth", prefs.DefaultView)
	assert.Equal(t, "dayGridMonth", env.local.prefs["a-1"].DefaultView)

	rec = env.do(http.MethodPatch, "/api/v1/calendar/preferences", map[string]any{"defaultView": "agenda"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientColorEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var created []model.ClientColor
	rec := env.do(http.MethodPost, "/api/v1/calendar/client-colors/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.decode(rec, &created)
	require.Len(t, created, 1)
	assert.Equal(t, "c1", created[0].ClientID)
	assert.Equal(t, "#06b6d4", created[0].Color)

	var colors []model.ClientColor
	rec = env.do(http.MethodPatch, "/api/v1/calendar/client-colors", map[string]any{
		"colors": []model.ClientColor{{ClientID: "c1", ClientName: "Acme", Color: "#ff0000"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.decode(rec, &colors)
	require.Len(t, colors, 1)
	assert.Equal(t, "#ff0000", colors[0].Color)

	rec = env.do(http.MethodPatch, "/api/v1/calendar/client-colors", map[string]any{
		"colors": []model.ClientColor{{ClientID: "c1", ClientName: "Acme", Color: "red"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var task model.EnrichedTask
	rec = env.do(http.MethodPost, "/api/v1/calendar/tasks", map[string]any{"name": "Logo", "projectId": "p1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env.decode(rec, &task)
	assert.Equal(t, "#ff0000", task.ClientColor)
}

func TestSettingsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var status model.ConfigStatus
	rec := env.do(http.MethodGet, "/api/v1/settings/notion/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &status)
	assert.Equal(t, model.ConfigStatus{Source: model.ConfigSourceEnvironment, UsingFallback: true}, status)

	var current model.ActiveStoreConfig
	rec = env.do(http.MethodGet, "/api/v1/settings/notion", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &current)
	assert.Equal(t, "secr…_123", current.Config.APIKey)

	var report model.ConnectionReport
	rec = env.do(http.MethodPost, "/api/v1/settings/notion/test", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.decode(rec, &report)
	assert.True(t, report.Success)

	rec = env.do(http.MethodPut, "/api/v1/settings/notion", map[string]any{"notionApiKey": "k"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateTicketValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/tickets", map[string]any{"description": "broken", "userEmail": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}
