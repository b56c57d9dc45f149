package repository

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/roksva123/go-planning-backend/internal/cache"
	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/notion"
)

const (
	workdayStart = "T09:00:00"
	workdayEnd   = "T18:00:00"

	prewarmTimeout = 30 * time.Second
)

// TaskRepository reads and writes tasks in the external store. Reads go
// through the cache; every successful write invalidates it.
type TaskRepository struct {
	Store    notion.Store
	Cache    *cache.TaskCache
	Location *time.Location
	Logger   *slog.Logger

	flight  singleflight.Group
	prewarm sync.WaitGroup
}

func NewTaskRepository(store notion.Store, c *cache.TaskCache, loc *time.Location, logger *slog.Logger) *TaskRepository {
	if c == nil {
		c = cache.NewTaskCache(cache.DefaultTTL)
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskRepository{Store: store, Cache: c, Location: loc, Logger: logger}
}

// TasksInWindow returns the scheduled tasks whose work period intersects w,
// sorted by period start. Concurrent misses for the same window share one
// store query.
func (r *TaskRepository) TasksInWindow(ctx context.Context, w model.Window) ([]model.Task, error) {
	if tasks, ok := r.Cache.Get(w); ok {
		return tasks, nil
	}

	gen := r.Cache.Generation()
	tasks, err := r.shared(ctx, fmt.Sprintf("%d:%s", gen, w.Key()), func(ctx context.Context) ([]model.Task, error) {
		tasks, err := r.fetchWindow(ctx, w)
		if err != nil {
			return nil, err
		}
		r.Cache.Fill(gen, w, tasks)
		return tasks, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks for %s: %w", w, err)
	}
	return tasks, nil
}

// shared runs fetch once per key for all concurrent callers. The fetch is
// detached from the caller that started it: a caller whose ctx ends gets
// ctx.Err() back while the others still receive the result.
func (r *TaskRepository) shared(ctx context.Context, key string, fetch func(context.Context) ([]model.Task, error)) ([]model.Task, error) {
	detached := context.WithoutCancel(ctx)
	ch := r.flight.DoChan(key, func() (any, error) {
		return fetch(detached)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]model.Task)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *TaskRepository) fetchWindow(ctx context.Context, w model.Window) ([]model.Task, error) {
	filter := notion.And(
		notion.DateIsNotEmpty(propTaskPeriod),
		notion.DateOnOrBefore(propTaskPeriod, w.LastInstant()),
	)
	sorts := []notion.Sort{{Property: propTaskPeriod, Direction: notion.Ascending}}
	pages, err := r.Store.Query(ctx, notion.CollectionTasks, filter, sorts)
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(pages))
	for i := range pages {
		task := decodeTask(&pages[i])
		if !task.Scheduled() {
			continue
		}
		start, end, err := task.WorkPeriod.Bounds(r.Location)
		if err != nil {
			r.Logger.Warn("skipping task with unreadable work period", "task_id", task.ID, "error", err)
			continue
		}
		if w.Intersects(start, end) {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// UnassignedTasks returns the tasks without a work period, sorted by name.
func (r *TaskRepository) UnassignedTasks(ctx context.Context) ([]model.Task, error) {
	if tasks, ok := r.Cache.GetUnassigned(); ok {
		return tasks, nil
	}

	gen := r.Cache.Generation()
	tasks, err := r.shared(ctx, fmt.Sprintf("%d:unassigned", gen), func(ctx context.Context) ([]model.Task, error) {
		sorts := []notion.Sort{{Property: propTaskName, Direction: notion.Ascending}}
		pages, err := r.Store.Query(ctx, notion.CollectionTasks, notion.And(notion.DateIsEmpty(propTaskPeriod)), sorts)
		if err != nil {
			return nil, err
		}
		tasks := make([]model.Task, 0, len(pages))
		for i := range pages {
			tasks = append(tasks, decodeTask(&pages[i]))
		}
		r.Cache.FillUnassigned(gen, tasks)
		return tasks, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unassigned tasks: %w", err)
	}
	return tasks, nil
}

// ScheduledTasksForUser returns every scheduled task assigned to userID.
// It bypasses the cache.
func (r *TaskRepository) ScheduledTasksForUser(ctx context.Context, userID string) ([]model.Task, error) {
	filter := notion.And(
		notion.DateIsNotEmpty(propTaskPeriod),
		notion.RelationContains(propTaskUsers, userID),
	)
	sorts := []notion.Sort{{Property: propTaskPeriod, Direction: notion.Ascending}}
	pages, err := r.Store.Query(ctx, notion.CollectionTasks, filter, sorts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks of user %s: %w", userID, err)
	}
	tasks := make([]model.Task, 0, len(pages))
	for i := range pages {
		tasks = append(tasks, decodeTask(&pages[i]))
	}
	return tasks, nil
}

// GetTask returns one task. Archived tasks are reported as not found.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	if strings.TrimSpace(id) == "" {
		return model.Task{}, model.Invalid("id", "is required")
	}
	page, err := r.Store.Retrieve(ctx, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	if page.Archived || page.InTrash {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	return decodeTask(page), nil
}

func (r *TaskRepository) CreateTask(ctx context.Context, in model.NewTask) (model.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Task{}, model.Invalid("name", "is required")
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return model.Task{}, model.Invalid("projectId", "is required")
	}
	period, err := r.normalisePeriod(in.StartDate, in.EndDate)
	if err != nil {
		return model.Task{}, err
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = model.StatusNotStarted
	}
	props := notion.Properties{
		propTaskName:     notion.TitleValue(name),
		propTaskProjects: notion.RelationValue(in.ProjectID),
		propTaskStatus:   notion.StatusValue(status),
	}
	if period != nil {
		props[propTaskPeriod] = notion.DateRangeValue(period.Start, period.End)
	}
	if len(in.AssignedUsers) > 0 {
		props[propTaskUsers] = notion.RelationValue(in.AssignedUsers...)
	}
	if in.Notes != "" {
		props[propTaskComment] = notion.RichTextValue(in.Notes)
	}

	page, err := r.Store.Create(ctx, notion.CollectionTasks, props)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	r.Cache.InvalidateAll()
	r.Logger.Info("task created", "task_id", page.ID, "project_id", in.ProjectID)
	return decodeTask(page), nil
}

// UpdateTask sends only the fields set in u.
func (r *TaskRepository) UpdateTask(ctx context.Context, id string, u model.TaskUpdate) (model.Task, error) {
	if strings.TrimSpace(id) == "" {
		return model.Task{}, model.Invalid("id", "is required")
	}
	props, err := r.updateProperties(u)
	if err != nil {
		return model.Task{}, err
	}

	page, err := r.Store.Update(ctx, id, props)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to update task %s: %w", id, err)
	}
	r.Cache.InvalidateAll()
	r.Logger.Info("task updated", "task_id", id, "fields", len(props))
	return decodeTask(page), nil
}

func (r *TaskRepository) updateProperties(u model.TaskUpdate) (notion.Properties, error) {
	props := notion.Properties{}

	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, model.Invalid("name", "must not be empty")
		}
		props[propTaskName] = notion.TitleValue(name)
	}
	if u.ProjectID != nil {
		if strings.TrimSpace(*u.ProjectID) == "" {
			return nil, model.Invalid("projectId", "must not be empty")
		}
		props[propTaskProjects] = notion.RelationValue(*u.ProjectID)
	}
	if u.Status != nil {
		if strings.TrimSpace(*u.Status) == "" {
			return nil, model.Invalid("status", "must not be empty")
		}
		props[propTaskStatus] = notion.StatusValue(strings.TrimSpace(*u.Status))
	}
	if u.AssignedUsers != nil {
		props[propTaskUsers] = notion.RelationValue(*u.AssignedUsers...)
	}
	if u.Notes != nil {
		props[propTaskComment] = notion.RichTextValue(*u.Notes)
	}
	if u.BilledDays != nil {
		props[propTaskBilledDays] = notion.NumberValue(*u.BilledDays)
	}
	if u.SpentDays != nil {
		props[propTaskSpentDays] = notion.NumberValue(*u.SpentDays)
	}
	if u.AddToCalendar != nil {
		props[propTaskAddToCalendar] = notion.CheckboxValue(*u.AddToCalendar)
	}
	if u.AddToRetroPlanning != nil {
		props[propTaskAddToRetro] = notion.CheckboxValue(*u.AddToRetroPlanning)
	}

	switch {
	case u.ClearPeriod:
		props[propTaskPeriod] = notion.EmptyDate()
	case u.WorkPeriod != nil:
		if err := r.checkPeriod(*u.WorkPeriod); err != nil {
			return nil, err
		}
		props[propTaskPeriod] = notion.DateRangeValue(u.WorkPeriod.Start, u.WorkPeriod.End)
	case u.StartDate != nil || u.EndDate != nil:
		var start, end string
		if u.StartDate != nil {
			start = *u.StartDate
		}
		if u.EndDate != nil {
			end = *u.EndDate
		}
		period, err := r.normalisePeriod(start, end)
		if err != nil {
			return nil, err
		}
		if period == nil {
			props[propTaskPeriod] = notion.EmptyDate()
		} else {
			props[propTaskPeriod] = notion.DateRangeValue(period.Start, period.End)
		}
	}

	if len(props) == 0 {
		return nil, model.Invalid("", "update contains no fields")
	}
	return props, nil
}

// normalisePeriod turns the calendar's start/end inputs into a stored work
// period. Date-only values get working hours (09:00 and 18:00), a lone
// boundary is completed on the same day, and both empty means no period.
func (r *TaskRepository) normalisePeriod(startIn, endIn string) (*model.Period, error) {
	startIn, endIn = strings.TrimSpace(startIn), strings.TrimSpace(endIn)
	if startIn == "" && endIn == "" {
		return nil, nil
	}

	for field, v := range map[string]string{"startDate": startIn, "endDate": endIn} {
		if v == "" {
			continue
		}
		if _, _, err := model.ParseTimestamp(v, r.Location); err != nil {
			return nil, model.Invalid(field, "%v", err)
		}
	}

	start, end := startIn, endIn
	switch {
	case start == "":
		start = dayOf(end) + workdayStart
	case end == "":
		end = dayOf(start) + workdayEnd
	}
	if model.IsDateOnly(start) {
		start += workdayStart
	}
	if model.IsDateOnly(end) {
		end += workdayEnd
	}

	s, _, _ := model.ParseTimestamp(start, r.Location)
	e, _, _ := model.ParseTimestamp(end, r.Location)
	if e.Before(s) {
		// A completed boundary that lands on the wrong side collapses to a
		// single instant instead of failing.
		switch {
		case startIn == "":
			return &model.Period{Start: end}, nil
		case endIn == "":
			return &model.Period{Start: start}, nil
		}
		return nil, model.Invalid("endDate", "must not precede startDate")
	}
	return &model.Period{Start: start, End: &end}, nil
}

func (r *TaskRepository) checkPeriod(p model.Period) error {
	s, _, err := model.ParseTimestamp(p.Start, r.Location)
	if err != nil {
		return model.Invalid("workPeriod.start", "%v", err)
	}
	if p.End == nil || strings.TrimSpace(*p.End) == "" {
		return nil
	}
	e, _, err := model.ParseTimestamp(*p.End, r.Location)
	if err != nil {
		return model.Invalid("workPeriod.end", "%v", err)
	}
	if e.Before(s) {
		return model.Invalid("workPeriod.end", "must not precede start")
	}
	return nil
}

func dayOf(ts string) string {
	if len(ts) >= len("2006-01-02") {
		return ts[:len("2006-01-02")]
	}
	return ts
}

// DeleteTask archives the task.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return model.Invalid("id", "is required")
	}
	if err := r.Store.Archive(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	r.Cache.InvalidateAll()
	r.Logger.Info("task archived", "task_id", id)
	return nil
}

// Prewarm loads the windows adjacent to w in the background. It never blocks
// and never reports errors; failures are logged.
func (r *TaskRepository) Prewarm(ctx context.Context, w model.Window, g model.Granularity) {
	detached := context.WithoutCancel(ctx)
	for _, adj := range w.Adjacent(g) {
		if _, ok := r.Cache.Get(adj); ok {
			continue
		}
		r.prewarm.Add(1)
		go func(adj model.Window) {
			defer r.prewarm.Done()
			ctx, cancel := context.WithTimeout(detached, prewarmTimeout)
			defer cancel()
			if _, err := r.TasksInWindow(ctx, adj); err != nil {
				r.Logger.Warn("prewarm failed", "window", adj.String(), "error", err)
				return
			}
			r.Logger.Debug("prewarmed window", "window", adj.String())
		}(adj)
	}
}

// Wait blocks until every pending prewarm has finished.
func (r *TaskRepository) Wait() {
	r.prewarm.Wait()
}
