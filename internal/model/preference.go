package model

import (
	"regexp"
	"slices"
	"time"
)

var hexColor = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// DefaultClientColor is used when a task has no resolvable client.
const DefaultClientColor = "#6366f1"

// ClientColor maps a client's display name to a hex color.
type ClientColor struct {
	ClientID   string    `json:"clientId"`
	ClientName string    `json:"clientName"`
	Color      string    `json:"color"`
	CreatedBy  string    `json:"createdBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (c ClientColor) Validate() error {
	if c.ClientID == "" {
		return Invalid("clientId", "is required")
	}
	if c.ClientName == "" {
		return Invalid("clientName", "is required")
	}
	if !hexColor.MatchString(c.Color) {
		return Invalid("color", "%q is not a hex color", c.Color)
	}
	return nil
}

var (
	VisibleProperties = []string{"name", "client", "status", "assignee", "project", "dueDate", "priority", "tags"}
	CalendarViews     = []string{"timeGridWeek", "dayGridMonth"}
)

// UserPreferences are the calendar settings of one back-office user.
type UserPreferences struct {
	UserID            string     `json:"userId"`
	VisibleProperties []string   `json:"visibleProperties"`
	DefaultView       string     `json:"defaultView"`
	FilterPreferences TaskFilter `json:"filterPreferences"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// DefaultPreferences returns the preferences created on first access.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:            userID,
		VisibleProperties: []string{"name", "client", "status", "assignee"},
		DefaultView:       "timeGridWeek",
		FilterPreferences: TaskFilter{
			SelectedCreatives: []string{},
			SelectedClients:   []string{},
			SelectedProjects:  []string{},
		},
	}
}

func (p UserPreferences) Validate() error {
	if p.UserID == "" {
		return Invalid("userId", "is required")
	}
	for _, v := range p.VisibleProperties {
		if !slices.Contains(VisibleProperties, v) {
			return Invalid("visibleProperties", "unknown property %q", v)
		}
	}
	if p.DefaultView != "" && !slices.Contains(CalendarViews, p.DefaultView) {
		return Invalid("defaultView", "unknown view %q", p.DefaultView)
	}
	return nil
}

// PreferencesUpdate is a partial patch of UserPreferences.
type PreferencesUpdate struct {
	VisibleProperties *[]string   `json:"visibleProperties"`
	DefaultView       *string     `json:"defaultView"`
	FilterPreferences *TaskFilter `json:"filterPreferences"`
}

// Apply returns p with every field set in u replaced.
func (u PreferencesUpdate) Apply(p UserPreferences) UserPreferences {
	if u.VisibleProperties != nil {
		p.VisibleProperties = *u.VisibleProperties
	}
	if u.DefaultView != nil {
		p.DefaultView = *u.DefaultView
	}
	if u.FilterPreferences != nil {
		p.FilterPreferences = *u.FilterPreferences
	}
	return p
}
