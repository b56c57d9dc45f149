package service

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/roksva123/go-planning-backend/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T {
	return &v
}

type fakeTasks struct {
	mu         sync.Mutex
	window     []model.Task
	unassigned []model.Task
	byUser     map[string][]model.Task
	err        error
	written    model.Task
	deleted    []string
	prewarmed  []model.Granularity
}

func (f *fakeTasks) TasksInWindow(ctx context.Context, w model.Window) ([]model.Task, error) {
	return f.window, f.err
}

func (f *fakeTasks) UnassignedTasks(ctx context.Context) ([]model.Task, error) {
	return f.unassigned, f.err
}

func (f *fakeTasks) ScheduledTasksForUser(ctx context.Context, userID string) ([]model.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byUser[userID], nil
}

func (f *fakeTasks) CreateTask(ctx context.Context, in model.NewTask) (model.Task, error) {
	if f.err != nil {
		return model.Task{}, f.err
	}
	return f.written, nil
}

func (f *fakeTasks) UpdateTask(ctx context.Context, id string, u model.TaskUpdate) (model.Task, error) {
	if f.err != nil {
		return model.Task{}, f.err
	}
	return f.written, nil
}

func (f *fakeTasks) DeleteTask(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTasks) Prewarm(ctx context.Context, w model.Window, g model.Granularity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prewarmed = append(f.prewarmed, g)
}

type fakeCatalog struct {
	users    []model.User
	clients  []model.Client
	projects []model.Project
	err      error

	clientLoads atomic.Int32
}

func (f *fakeCatalog) ListUsers(ctx context.Context) ([]model.User, error) {
	return f.users, f.err
}

func (f *fakeCatalog) ListClients(ctx context.Context) ([]model.Client, error) {
	f.clientLoads.Add(1)
	return f.clients, f.err
}

func (f *fakeCatalog) ListProjects(ctx context.Context) ([]model.Project, error) {
	f.clientLoads.Add(1)
	return f.projects, f.err
}

func (f *fakeCatalog) ProjectsWithClients(ctx context.Context) ([]model.Project, []model.Client, error) {
	f.clientLoads.Add(1)
	return f.projects, f.clients, f.err
}

func (f *fakeCatalog) StatusOptions(ctx context.Context) []model.StatusOption {
	return slices.Clone(model.DefaultStatusOptions)
}

type fakeColors struct {
	mu       sync.Mutex
	colors   []model.ClientColor
	err      error
	upserts  int
	upserted []model.ClientColor
}

func (f *fakeColors) ListClientColors(ctx context.Context) ([]model.ClientColor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.colors), nil
}

func (f *fakeColors) UpsertClientColors(ctx context.Context, colors []model.ClientColor, updatedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts++
	f.upserted = append(f.upserted, colors...)
	for _, c := range colors {
		i := slices.IndexFunc(f.colors, func(e model.ClientColor) bool { return e.ClientID == c.ClientID })
		if i >= 0 {
			f.colors[i] = c
			continue
		}
		f.colors = append(f.colors, c)
	}
	return nil
}
