package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roksva123/go-planning-backend/internal/model"
)

type staticConfig struct {
	cfg model.StoreConfig
	err error
}

func (s staticConfig) ActiveStoreConfig(ctx context.Context) (model.ActiveStoreConfig, error) {
	return model.ActiveStoreConfig{Source: model.ConfigSourceEnvironment, Config: s.cfg}, s.err
}

func testConfig() model.StoreConfig {
	return model.StoreConfig{
		APIKey: "secret_key",
		CollectionIDs: model.CollectionIDs{
			Users: "db-users", Clients: "db-clients", Projects: "db-projects", Tasks: "db-tasks",
		},
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(staticConfig{cfg: testConfig()}, srv.URL, "", 5*time.Second, nil)
}

func TestQueryFollowsPagination(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/databases/db-tasks/query", r.URL.Path)
		assert.Equal(t, "Bearer secret_key", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultVersion, r.Header.Get("Notion-Version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 100, body["page_size"])

		if body["start_cursor"] == nil {
			_, _ = io.WriteString(w, `{"results":[{"id":"t1"},{"id":"t2"}],"has_more":true,"next_cursor":"c2"}`)
			return
		}
		assert.Equal(t, "c2", body["start_cursor"])
		_, _ = io.WriteString(w, `{"results":[{"id":"t3"}],"has_more":false,"next_cursor":null}`)
	})

	pages, err := client.Query(context.Background(), CollectionTasks, And(DateIsEmpty("Période de travail")), nil)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "t3", pages[2].ID)
	assert.EqualValues(t, 2, calls.Load())
}

func TestQuerySendsFilterAndSorts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"filter": {"and": [
				{"property": "Période de travail", "date": {"is_not_empty": true}},
				{"property": "Utilisateurs", "relation": {"contains": "u1"}}
			]},
			"sorts": [{"property": "Période de travail", "direction": "ascending"}],
			"page_size": 100
		}`, string(b))
		_, _ = io.WriteString(w, `{"results":[],"has_more":false}`)
	})

	filter := And(DateIsNotEmpty("Période de travail"), RelationContains("Utilisateurs", "u1"))
	pages, err := client.Query(context.Background(), CollectionTasks, filter, []Sort{{Property: "Période de travail", Direction: Ascending}})
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestErrorResponsesMatchSentinels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pages/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"object":"error","status":404,"code":"object_not_found","message":"Could not find page"}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "bad gateway")
		}
	})

	_, err := client.Retrieve(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, err, model.ErrUpstream)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "object_not_found", apiErr.Code)

	_, err = client.Schema(context.Background(), CollectionTasks)
	assert.ErrorIs(t, err, model.ErrUpstream)
	assert.NotErrorIs(t, err, model.ErrNotFound)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestMissingConfigFailsBeforeAnyCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	incomplete := testConfig()
	incomplete.CollectionIDs.Tasks = ""
	client := NewClient(staticConfig{cfg: incomplete}, srv.URL, "", time.Second, nil)

	_, err := client.Query(context.Background(), CollectionTasks, nil, nil)
	assert.ErrorIs(t, err, model.ErrStoreConfig)

	client.Config = staticConfig{err: model.ErrStoreConfig}
	err = client.Archive(context.Background(), "t1")
	assert.ErrorIs(t, err, model.ErrStoreConfig)

	assert.Zero(t, calls.Load())
}

func TestCreateUpdateArchivePayloads(t *testing.T) {
	var got []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = append(got, r.Method+" "+r.URL.Path+" "+string(b))
		_, _ = io.WriteString(w, `{"object":"page","id":"new-page"}`)
	})
	ctx := context.Background()

	page, err := client.Create(ctx, CollectionTasks, Properties{"Nom de tâche": TitleValue("Brief")})
	require.NoError(t, err)
	assert.Equal(t, "new-page", page.ID)

	_, err = client.Update(ctx, "new-page", Properties{"Période de travail": EmptyDate()})
	require.NoError(t, err)
	require.NoError(t, client.Archive(ctx, "new-page"))

	require.Len(t, got, 3)
	assert.Contains(t, got[0], `POST /pages {"parent":{"type":"database_id","database_id":"db-tasks"}`)
	assert.Contains(t, got[1], `PATCH /pages/new-page {"properties":{"Période de travail":{"date":null}}}`)
	assert.Equal(t, `PATCH /pages/new-page {"archived":true}`, got[2])
}

func TestPingReportsUnreachableDatabases(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/databases/db-clients" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	})

	report := client.Ping(context.Background(), testConfig())
	assert.False(t, report.Success)
	assert.True(t, report.APIKey)
	assert.Equal(t, map[string]bool{"users": true, "clients": false, "projects": true, "tasks": true}, report.Databases)
	assert.Contains(t, report.Message, "clients")

	report = client.Ping(context.Background(), model.StoreConfig{})
	assert.False(t, report.Success)
	assert.False(t, report.APIKey)
}
