package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roksva123/go-planning-backend/internal/model"
)

// Notifier announces new tickets to the support team.
type Notifier interface {
	TicketCreated(ctx context.Context, t model.Ticket) error
}

// LogNotifier writes ticket announcements to the log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) TicketCreated(ctx context.Context, t model.Ticket) error {
	n.Logger.InfoContext(ctx, "new support ticket",
		"ticket_id", t.ID, "title", t.Title, "priority", t.Priority, "reporter", t.UserEmail)
	return nil
}

// TicketService stores support tickets through gorm.
type TicketService struct {
	DB       *gorm.DB
	Notifier Notifier
	Logger   *slog.Logger
}

func NewTicketService(db *gorm.DB, notifier Notifier, logger *slog.Logger) *TicketService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &TicketService{DB: db, Notifier: notifier, Logger: logger}
}

func (s *TicketService) Migrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(&model.Ticket{})
}

func (s *TicketService) Create(ctx context.Context, t model.Ticket) (model.Ticket, error) {
	t.ID = uuid.NewString()
	if t.Status == "" {
		t.Status = "open"
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}
	if err := t.Validate(); err != nil {
		return model.Ticket{}, err
	}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return model.Ticket{}, fmt.Errorf("failed to create ticket: %w", err)
	}

	if err := s.Notifier.TicketCreated(ctx, t); err != nil {
		s.Logger.Warn("failed to announce ticket", "ticket_id", t.ID, "error", err)
	}
	return t, nil
}

func (s *TicketService) List(ctx context.Context, f model.TicketFilter) ([]model.Ticket, error) {
	q := s.DB.WithContext(ctx).Model(&model.Ticket{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}

	tickets := []model.Ticket{}
	if err := q.Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) Get(ctx context.Context, id string) (model.Ticket, error) {
	var t model.Ticket
	err := s.DB.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Ticket{}, fmt.Errorf("ticket %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Ticket{}, fmt.Errorf("failed to get ticket: %w", err)
	}
	return t, nil
}

func (s *TicketService) Update(ctx context.Context, id string, u model.TicketUpdate) (model.Ticket, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return model.Ticket{}, err
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.AdminNotes != nil {
		t.AdminNotes = *u.AdminNotes
	}
	if err := t.Validate(); err != nil {
		return model.Ticket{}, err
	}
	if err := s.DB.WithContext(ctx).Save(&t).Error; err != nil {
		return model.Ticket{}, fmt.Errorf("failed to update ticket: %w", err)
	}
	return t, nil
}

func (s *TicketService) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&model.Ticket{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete ticket: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ticket %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *TicketService) Stats(ctx context.Context) (model.TicketStats, error) {
	stats := model.TicketStats{ByStatus: map[string]int64{}, ByPriority: map[string]int64{}}

	type bucket struct {
		Key   string
		Count int64
	}
	for column, dst := range map[string]map[string]int64{"status": stats.ByStatus, "priority": stats.ByPriority} {
		var rows []bucket
		err := s.DB.WithContext(ctx).Model(&model.Ticket{}).
			Select(column + " AS key, COUNT(*) AS count").
			Group(column).
			Scan(&rows).Error
		if err != nil {
			return stats, fmt.Errorf("failed to count tickets by %s: %w", column, err)
		}
		for _, r := range rows {
			dst[r.Key] = r.Count
		}
	}
	for _, n := range stats.ByStatus {
		stats.Total += n
	}
	return stats, nil
}
