package repository

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/notion"
)

// Catalog lists the reference collections (users, clients, projects) and the
// task status options. Results are read fresh on every call.
type Catalog struct {
	Store  notion.Store
	Logger *slog.Logger
}

func NewCatalog(store notion.Store, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{Store: store, Logger: logger}
}

func byName(property string) []notion.Sort {
	return []notion.Sort{{Property: property, Direction: notion.Ascending}}
}

func (c *Catalog) ListUsers(ctx context.Context) ([]model.User, error) {
	pages, err := c.Store.Query(ctx, notion.CollectionUsers, nil, byName(propUserName))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]model.User, 0, len(pages))
	for i := range pages {
		users = append(users, decodeUser(&pages[i]))
	}
	return users, nil
}

func (c *Catalog) ListClients(ctx context.Context) ([]model.Client, error) {
	pages, err := c.Store.Query(ctx, notion.CollectionClients, nil, byName(propClientName))
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	clients := make([]model.Client, 0, len(pages))
	for i := range pages {
		clients = append(clients, decodeClient(&pages[i]))
	}
	return clients, nil
}

// ListProjects returns projects with their Client name resolved: the first
// linked client found in the clients collection, else the first value of the
// project's client rollup.
func (c *Catalog) ListProjects(ctx context.Context) ([]model.Project, error) {
	projects, _, err := c.ProjectsWithClients(ctx)
	return projects, err
}

// ProjectsWithClients is ListProjects that also returns the clients it read,
// so callers needing both query the clients collection once.
func (c *Catalog) ProjectsWithClients(ctx context.Context) ([]model.Project, []model.Client, error) {
	var (
		pages   []notion.Page
		clients []model.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pages, err = c.Store.Query(gctx, notion.CollectionProjects, nil, byName(propProjectName))
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		clients, err = c.ListClients(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	clientNames := make(map[string]string, len(clients))
	for _, cl := range clients {
		clientNames[cl.ID] = cl.Name
	}

	projects := make([]model.Project, 0, len(pages))
	for i := range pages {
		p := decodeProject(&pages[i])
		for _, id := range p.ClientIDs {
			if name := clientNames[id]; name != "" {
				p.Client = name
				break
			}
		}
		if p.Client == "" {
			if names := notion.Rollup(pages[i].Prop(propProjectClients)); len(names) > 0 {
				p.Client = names[0]
			}
		}
		projects = append(projects, p)
	}
	return projects, clients, nil
}

// StatusOptions reads the options of the task status property. Any failure
// falls back to the default options.
func (c *Catalog) StatusOptions(ctx context.Context) []model.StatusOption {
	db, err := c.Store.Schema(ctx, notion.CollectionTasks)
	if err != nil {
		c.Logger.Warn("failed to read task schema, using default status options", "error", err)
		return defaultStatusOptions()
	}

	prop, ok := db.Properties[propTaskStatus]
	if !ok || prop.Type != notion.KindStatus || prop.Status == nil || len(prop.Status.Options) == 0 {
		c.Logger.Warn("task schema has no status options, using defaults")
		return defaultStatusOptions()
	}

	options := make([]model.StatusOption, 0, len(prop.Status.Options))
	for _, o := range prop.Status.Options {
		options = append(options, model.StatusOption{ID: o.ID, Name: o.Name, Color: o.Color})
	}
	return options
}

func defaultStatusOptions() []model.StatusOption {
	return append([]model.StatusOption(nil), model.DefaultStatusOptions...)
}
