package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roksva123/go-planning-backend/internal/model"
)

// TaskRepository is the task storage used by the calendar.
type TaskRepository interface {
	TasksInWindow(ctx context.Context, w model.Window) ([]model.Task, error)
	UnassignedTasks(ctx context.Context) ([]model.Task, error)
	ScheduledTasksForUser(ctx context.Context, userID string) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.NewTask) (model.Task, error)
	UpdateTask(ctx context.Context, id string, u model.TaskUpdate) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	Prewarm(ctx context.Context, w model.Window, g model.Granularity)
}

// Catalog lists the reference collections.
type Catalog interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ProjectsWithClients(ctx context.Context) ([]model.Project, []model.Client, error)
	StatusOptions(ctx context.Context) []model.StatusOption
}

// ColorStore persists client colors.
type ColorStore interface {
	ListClientColors(ctx context.Context) ([]model.ClientColor, error)
	UpsertClientColors(ctx context.Context, colors []model.ClientColor, updatedBy string) error
}

// CalendarService joins tasks with reference names and colors for the
// calendar views.
type CalendarService struct {
	Tasks    TaskRepository
	Catalog  Catalog
	Colors   ColorStore
	Location *time.Location
	Logger   *slog.Logger
}

func NewCalendarService(tasks TaskRepository, catalog Catalog, colors ColorStore, loc *time.Location, logger *slog.Logger) *CalendarService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarService{Tasks: tasks, Catalog: catalog, Colors: colors, Location: loc, Logger: logger}
}

// lookups holds the reference data of one request.
type lookups struct {
	users    map[string]string
	clients  map[string]string
	projects map[string]model.Project
	colors   map[string]string
}

// loadLookups reads users, clients, projects and colors concurrently. A
// catalog failure fails the whole load; a color store failure only drops the
// configured colors.
func (s *CalendarService) loadLookups(ctx context.Context) (*lookups, error) {
	var (
		users    []model.User
		clients  []model.Client
		projects []model.Project
		colors   []model.ClientColor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.Catalog.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		projects, clients, err = s.Catalog.ProjectsWithClients(gctx)
		return err
	})
	if s.Colors != nil {
		g.Go(func() error {
			var err error
			colors, err = s.Colors.ListClientColors(gctx)
			if err != nil {
				s.Logger.Warn("client colors unavailable, using generated colors", "error", err)
				colors = nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	l := &lookups{
		users:    make(map[string]string, len(users)),
		clients:  make(map[string]string, len(clients)),
		projects: make(map[string]model.Project, len(projects)),
		colors:   make(map[string]string, len(colors)),
	}
	for _, u := range users {
		l.users[u.ID] = u.Name
	}
	for _, c := range clients {
		l.clients[c.ID] = c.Name
	}
	for _, p := range projects {
		l.projects[p.ID] = p
	}
	for _, c := range colors {
		l.colors[c.ClientName] = c.Color
	}
	return l, nil
}

// ResolveNames maps ids to names. Unknown ids are kept as they are.
func ResolveNames(ids []string, names map[string]string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if name, ok := names[id]; ok && name != "" {
			out = append(out, name)
			continue
		}
		out = append(out, id)
	}
	return out
}

// ResolveClientNames returns the client names of a task: its client rollup
// when present, else the client of the first linked project that has one,
// else its client group formula.
func ResolveClientNames(t model.Task, clients map[string]string, projects map[string]model.Project) []string {
	if names := ResolveNames(t.ClientRollup, clients); len(names) > 0 {
		return names
	}
	for _, id := range t.ProjectIDs {
		if p, ok := projects[id]; ok && p.Client != "" {
			return []string{p.Client}
		}
	}
	if t.ClientGroup != "" {
		return []string{t.ClientGroup}
	}
	return []string{}
}

func (l *lookups) enrich(t model.Task) model.EnrichedTask {
	projectNames := make(map[string]string, len(t.ProjectIDs))
	for _, id := range t.ProjectIDs {
		if p, ok := l.projects[id]; ok {
			projectNames[id] = p.Name
		}
	}

	e := model.EnrichedTask{
		Task:               t,
		ClientNames:        ResolveClientNames(t, l.clients, l.projects),
		ProjectNames:       ResolveNames(t.ProjectIDs, projectNames),
		AssignedUsersNames: ResolveNames(t.AssignedUserIDs, l.users),
		Title:              t.Name,
	}
	if len(e.ClientNames) > 0 {
		e.Client = e.ClientNames[0]
	}
	if len(e.ProjectNames) > 0 {
		e.ProjectName = e.ProjectNames[0]
	}
	e.ClientColor = ColorFor(e.Client, l.colors)
	if t.WorkPeriod != nil {
		e.Start = t.WorkPeriod.Start
		if t.WorkPeriod.End != nil {
			e.End = *t.WorkPeriod.End
		}
	}
	team := t.Team
	if team == nil {
		team = []string{}
	}
	e.ExtendedProps = model.ExtendedProps{
		Client:        e.Client,
		Project:       e.ProjectName,
		AssignedUsers: e.AssignedUsersNames,
		Status:        t.Status,
		Team:          team,
	}
	return e
}

// Enrich resolves names and colors for every task. It fails only when the
// reference data cannot be loaded.
func (s *CalendarService) Enrich(ctx context.Context, tasks []model.Task) ([]model.EnrichedTask, error) {
	l, err := s.loadLookups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.EnrichedTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, l.enrich(t))
	}
	return out, nil
}

// TasksInPeriod returns the enriched tasks of [start, end] and pre-warms the
// neighbouring windows of the given calendar view.
func (s *CalendarService) TasksInPeriod(ctx context.Context, start, end, view string) ([]model.EnrichedTask, error) {
	w, err := model.ParseWindow(start, end, s.Location)
	if err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.TasksInWindow(ctx, w)
	if err != nil {
		return nil, err
	}
	enriched, err := s.Enrich(ctx, tasks)
	if err != nil {
		return nil, err
	}
	s.Tasks.Prewarm(ctx, w, model.ParseGranularity(view))
	return enriched, nil
}

func (s *CalendarService) UnassignedTasks(ctx context.Context) ([]model.EnrichedTask, error) {
	tasks, err := s.Tasks.UnassignedTasks(ctx)
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, tasks)
}

func (s *CalendarService) CreateTask(ctx context.Context, in model.NewTask) (model.EnrichedTask, error) {
	task, err := s.Tasks.CreateTask(ctx, in)
	if err != nil {
		return model.EnrichedTask{}, err
	}
	return s.enrichWritten(ctx, task), nil
}

func (s *CalendarService) UpdateTask(ctx context.Context, id string, u model.TaskUpdate) (model.EnrichedTask, error) {
	task, err := s.Tasks.UpdateTask(ctx, id, u)
	if err != nil {
		return model.EnrichedTask{}, err
	}
	return s.enrichWritten(ctx, task), nil
}

// enrichWritten enriches a task that is already committed. Missing reference
// data degrades the names instead of reporting the write as failed.
func (s *CalendarService) enrichWritten(ctx context.Context, task model.Task) model.EnrichedTask {
	l, err := s.loadLookups(ctx)
	if err != nil {
		s.Logger.Warn("returning written task without resolved names", "task_id", task.ID, "error", err)
		l = &lookups{}
	}
	return l.enrich(task)
}

func (s *CalendarService) DeleteTask(ctx context.Context, id string) error {
	return s.Tasks.DeleteTask(ctx, id)
}

func (s *CalendarService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.Catalog.ListUsers(ctx)
}

func (s *CalendarService) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.Catalog.ListClients(ctx)
}

func (s *CalendarService) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.Catalog.ListProjects(ctx)
}

func (s *CalendarService) StatusOptions(ctx context.Context) []model.StatusOption {
	return s.Catalog.StatusOptions(ctx)
}

// Filter keeps the tasks matching every non-empty criterion of f.
func Filter(tasks []model.EnrichedTask, f model.TaskFilter) []model.EnrichedTask {
	out := make([]model.EnrichedTask, 0, len(tasks))
	for _, t := range tasks {
		if len(f.SelectedCreatives) > 0 && !slices.ContainsFunc(t.AssignedUsersNames, func(n string) bool {
			return slices.Contains(f.SelectedCreatives, n)
		}) {
			continue
		}
		if len(f.SelectedClients) > 0 && !slices.Contains(f.SelectedClients, t.Client) {
			continue
		}
		if len(f.SelectedProjects) > 0 && !slices.Contains(f.SelectedProjects, t.ProjectName) {
			continue
		}
		if !f.ShowCompleted && slices.Contains(model.CompletedStatuses, t.Status) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// CheckOverlap reports the scheduled tasks of the assigned users that share
// time with the proposed period. Intervals are half-open, so back-to-back
// tasks do not conflict.
func (s *CalendarService) CheckOverlap(ctx context.Context, req model.OverlapRequest) (model.ConflictReport, error) {
	report := model.ConflictReport{Conflicts: []model.Conflict{}}
	start, end, err := s.proposedInterval(req.StartDate, req.EndDate)
	if err != nil {
		return report, err
	}

	users := uniqueIDs(req.AssignedUsers)
	if len(users) == 0 {
		return report, nil
	}

	var (
		mu        sync.Mutex
		userTasks = make(map[string][]model.Task, len(users))
		userNames map[string]string
		projects  map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range users {
		id := id
		g.Go(func() error {
			tasks, err := s.Tasks.ScheduledTasksForUser(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			userTasks[id] = tasks
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		list, err := s.Catalog.ListUsers(gctx)
		if err != nil {
			return err
		}
		userNames = make(map[string]string, len(list))
		for _, u := range list {
			userNames[u.ID] = u.Name
		}
		return nil
	})
	g.Go(func() error {
		list, err := s.Catalog.ListProjects(gctx)
		if err != nil {
			return err
		}
		projects = make(map[string]string, len(list))
		for _, p := range list {
			projects[p.ID] = p.Name
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("failed to check overlaps: %w", err)
	}

	descriptions := []string{}
	for _, userID := range users {
		userName := ResolveNames([]string{userID}, userNames)[0]
		for _, t := range userTasks[userID] {
			if t.ID == req.ExcludeTaskID || !t.Scheduled() {
				continue
			}
			exStart, exEnd, err := t.WorkPeriod.Bounds(s.Location)
			if err != nil {
				s.Logger.Warn("skipping task with unreadable work period", "task_id", t.ID, "error", err)
				continue
			}
			if !(start.Before(exEnd) && end.After(exStart)) {
				continue
			}

			c := model.Conflict{
				UserID:   userID,
				UserName: userName,
				ConflictingTask: model.ConflictingTask{
					ID:        t.ID,
					Name:      t.Name,
					StartDate: t.WorkPeriod.Start,
				},
			}
			if names := ResolveNames(t.ProjectIDs, projects); len(names) > 0 {
				c.ConflictingTask.ProjectName = names[0]
			}
			if t.WorkPeriod.End != nil {
				c.ConflictingTask.EndDate = *t.WorkPeriod.End
			}
			report.Conflicts = append(report.Conflicts, c)
			descriptions = append(descriptions, fmt.Sprintf("%s a déjà \"%s\" de %s à %s",
				userName, t.Name, s.clock(c.ConflictingTask.StartDate), s.clock(c.ConflictingTask.EndDate, c.ConflictingTask.StartDate)))
		}
	}
	report.HasConflicts = len(report.Conflicts) > 0
	report.ConflictMessage = strings.Join(descriptions, ", ")
	return report, nil
}

// uniqueIDs drops blanks and repeats, keeping the first occurrence order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// proposedInterval parses the proposal as [start, end). A date-only end
// covers its whole day.
func (s *CalendarService) proposedInterval(startIn, endIn string) (time.Time, time.Time, error) {
	if strings.TrimSpace(startIn) == "" {
		return time.Time{}, time.Time{}, model.Invalid("startDate", "is required")
	}
	if strings.TrimSpace(endIn) == "" {
		return time.Time{}, time.Time{}, model.Invalid("endDate", "is required")
	}
	start, _, err := model.ParseTimestamp(startIn, s.Location)
	if err != nil {
		return time.Time{}, time.Time{}, model.Invalid("startDate", "%v", err)
	}
	end, endDateOnly, err := model.ParseTimestamp(endIn, s.Location)
	if err != nil {
		return time.Time{}, time.Time{}, model.Invalid("endDate", "%v", err)
	}
	if endDateOnly {
		end = end.AddDate(0, 0, 1)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, model.Invalid("endDate", "must not precede startDate")
	}
	return start, end, nil
}

// clock renders the first readable timestamp as HH:MM in the service
// location.
func (s *CalendarService) clock(candidates ...string) string {
	for _, ts := range candidates {
		if t, _, err := model.ParseTimestamp(ts, s.Location); err == nil {
			return t.In(s.Location).Format("15:04")
		}
	}
	return ""
}
