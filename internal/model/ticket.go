package model

import (
	"slices"
	"strings"
	"time"

	"github.com/lib/pq"
)

var (
	TicketStatuses   = []string{"open", "in-progress", "resolved", "closed"}
	TicketPriorities = []string{"low", "medium", "high", "critical"}
)

// Ticket is a support ticket filed from the back office.
type Ticket struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string         `json:"title" gorm:"size:200;not null"`
	Description string         `json:"description" gorm:"size:2000;not null"`
	Screenshots pq.StringArray `json:"screenshots" gorm:"type:text[]"`
	UserID      string         `json:"userId" gorm:"index;not null"`
	UserEmail   string         `json:"userEmail" gorm:"not null"`
	UserName    string         `json:"userName" gorm:"not null"`
	UserAgent   string         `json:"userAgent"`
	CurrentURL  string         `json:"currentUrl"`
	Status      string         `json:"status" gorm:"size:20;index;default:open"`
	Priority    string         `json:"priority" gorm:"size:20;default:medium"`
	AdminNotes  string         `json:"adminNotes" gorm:"size:1000"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Ticket) TableName() string { return "tickets" }

// Validate trims and checks a ticket before it is stored.
func (t *Ticket) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	switch {
	case t.Title == "":
		return Invalid("title", "is required")
	case len([]rune(t.Title)) > 200:
		return Invalid("title", "must be at most 200 characters")
	case t.Description == "":
		return Invalid("description", "is required")
	case len([]rune(t.Description)) > 2000:
		return Invalid("description", "must be at most 2000 characters")
	case len([]rune(t.AdminNotes)) > 1000:
		return Invalid("adminNotes", "must be at most 1000 characters")
	case t.UserID == "" || t.UserEmail == "" || t.UserName == "":
		return Invalid("userInfo", "user id, email and name are required")
	case t.Status != "" && !slices.Contains(TicketStatuses, t.Status):
		return Invalid("status", "unknown status %q", t.Status)
	case t.Priority != "" && !slices.Contains(TicketPriorities, t.Priority):
		return Invalid("priority", "unknown priority %q", t.Priority)
	}
	return nil
}

// TicketUpdate is an admin patch on a ticket.
type TicketUpdate struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AdminNotes *string `json:"adminNotes"`
}

// TicketFilter narrows a ticket listing. Empty fields match everything.
type TicketFilter struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
	UserID   string `form:"-"`
}

type TicketStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
}
