package repository

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/roksva123/go-planning-backend/internal/cache"
	"github.com/roksva123/go-planning-backend/internal/notion"
	"github.com/roksva123/go-planning-backend/internal/notion/notiontest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepo(t *testing.T) (*TaskRepository, *notiontest.Store) {
	t.Helper()
	store := notiontest.New()
	repo := NewTaskRepository(store, cache.NewTaskCache(time.Minute), time.UTC, quietLogger())
	t.Cleanup(repo.Wait)
	return repo, store
}

type taskOpt func(notion.Properties)

func withPeriod(start string, end *string) taskOpt {
	return func(p notion.Properties) { p[propTaskPeriod] = notion.DateRangeValue(start, end) }
}

func withUsers(ids ...string) taskOpt {
	return func(p notion.Properties) { p[propTaskUsers] = notion.RelationValue(ids...) }
}

func withProjects(ids ...string) taskOpt {
	return func(p notion.Properties) { p[propTaskProjects] = notion.RelationValue(ids...) }
}

func withStatus(s string) taskOpt {
	return func(p notion.Properties) { p[propTaskStatus] = notion.StatusValue(s) }
}

func addTask(store *notiontest.Store, id, name string, opts ...taskOpt) string {
	props := notion.Properties{propTaskName: notion.TitleValue(name)}
	for _, o := range opts {
		o(props)
	}
	return store.Add(notion.CollectionTasks, notion.Page{ID: id, Properties: props})
}

func ptr[T any](v T) *T {
	return &v
}
