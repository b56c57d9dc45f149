package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/roksva123/go-planning-backend/internal/model"
)

// Working hours of a weekday, matching the default bounds of new tasks.
const (
	dayOpenHour  = 9
	dayCloseHour = 18
)

// WorkloadService sums the scheduled hours of every user over a window.
type WorkloadService struct {
	Calendar   *CalendarService
	Thresholds model.WorkloadThresholds
	Logger     *slog.Logger
}

func NewWorkloadService(calendar *CalendarService, thresholds model.WorkloadThresholds, logger *slog.Logger) *WorkloadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkloadService{Calendar: calendar, Thresholds: thresholds, Logger: logger}
}

// GetWorkload reports each user's hours between start and end. Only weekday
// hours between 09:00 and 18:00 count, so a task spanning a weekend does not
// add the weekend.
func (s *WorkloadService) GetWorkload(ctx context.Context, start, end string) (model.WorkloadResponse, error) {
	loc := s.Calendar.Location
	w, err := model.ParseWindow(start, end, loc)
	if err != nil {
		return model.WorkloadResponse{}, err
	}
	tasks, err := s.Calendar.Tasks.TasksInWindow(ctx, w)
	if err != nil {
		return model.WorkloadResponse{}, err
	}
	enriched, err := s.Calendar.Enrich(ctx, tasks)
	if err != nil {
		return model.WorkloadResponse{}, err
	}
	users, err := s.Calendar.Catalog.ListUsers(ctx)
	if err != nil {
		return model.WorkloadResponse{}, fmt.Errorf("failed to build workload: %w", err)
	}

	byUser := make(map[string]*model.WorkloadUser, len(users))
	order := make([]string, 0, len(users))
	add := func(id, name string) *model.WorkloadUser {
		if u, ok := byUser[id]; ok {
			return u
		}
		u := &model.WorkloadUser{UserID: id, UserName: name, Tasks: []model.WorkloadTask{}}
		byUser[id] = u
		order = append(order, id)
		return u
	}
	for _, u := range users {
		add(u.ID, u.Name)
	}

	for _, t := range enriched {
		if !t.Scheduled() {
			continue
		}
		ts, te, err := t.WorkPeriod.Bounds(loc)
		if err != nil {
			s.Logger.Warn("skipping task with unreadable work period", "task_id", t.ID, "error", err)
			continue
		}
		if !w.Intersects(ts, te) {
			continue
		}
		hours := workingHours(maxTime(ts, w.Start), minTime(te, w.End), loc)
		for _, id := range uniqueIDs(t.AssignedUserIDs) {
			u := add(id, id)
			u.TaskCount++
			u.TotalHours += hours
			u.Tasks = append(u.Tasks, model.WorkloadTask{ID: t.ID, Name: t.Name, Client: t.Client, Hours: round2(hours)})
		}
	}

	days := workingDays(w, loc)
	resp := model.WorkloadResponse{
		Start:                  w.Start.Format(time.RFC3339),
		End:                    w.LastInstant().Format(time.RFC3339),
		WorkingDays:            days,
		StandardHoursPerPerson: round2(s.Thresholds.NormalMax * float64(days) / 5),
		Thresholds:             s.Thresholds,
		Users:                  make([]model.WorkloadUser, 0, len(order)),
	}
	for _, id := range order {
		u := byUser[id]
		weekly := u.TotalHours
		if days > 0 {
			weekly = u.TotalHours * 5 / float64(days)
		}
		u.TotalHours = round2(u.TotalHours)
		u.WeeklyHours = round2(weekly)
		u.Category = s.Thresholds.Category(weekly)
		resp.Summary.TotalHours += u.TotalHours
		resp.Users = append(resp.Users, *u)
	}
	slices.SortStableFunc(resp.Users, func(a, b model.WorkloadUser) int {
		if c := cmp.Compare(b.TotalHours, a.TotalHours); c != 0 {
			return c
		}
		return cmp.Compare(a.UserName, b.UserName)
	})

	resp.Summary.TotalUsers = len(resp.Users)
	resp.Summary.TotalHours = round2(resp.Summary.TotalHours)
	if len(resp.Users) > 0 {
		resp.Summary.AvgHours = round2(resp.Summary.TotalHours / float64(len(resp.Users)))
	}
	return resp, nil
}

// workingHours sums the weekday opening hours inside [from, to).
func workingHours(from, to time.Time, loc *time.Location) float64 {
	var total time.Duration
	f := from.In(loc)
	for day := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, loc); day.Before(to); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		open := time.Date(day.Year(), day.Month(), day.Day(), dayOpenHour, 0, 0, 0, loc)
		shut := time.Date(day.Year(), day.Month(), day.Day(), dayCloseHour, 0, 0, 0, loc)
		if s, e := maxTime(from, open), minTime(to, shut); e.After(s) {
			total += e.Sub(s)
		}
	}
	return total.Hours()
}

func workingDays(w model.Window, loc *time.Location) int {
	n := 0
	s := w.Start.In(loc)
	for day := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc); day.Before(w.End); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
