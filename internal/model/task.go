package model

import "time"

// Task statuses used by the traffic board.
const (
	StatusNotStarted = "Pas commencé"
	StatusInProgress = "En cours"
	StatusDone       = "Terminé"
)

// CompletedStatuses are treated as done by calendar filters.
var CompletedStatuses = []string{"Terminé", "Completed", "Done", "Fini"}

// Task is a decoded task record. Relation fields hold external ids.
type Task struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Status             string    `json:"status"`
	WorkPeriod         *Period   `json:"workPeriod"`
	ProjectIDs         []string  `json:"project"`
	ClientRollup       []string  `json:"clientRollup"`
	ClientGroup        string    `json:"clientGroup,omitempty"`
	AssignedUserIDs    []string  `json:"assignedUsers"`
	AssignedProfiles   []string  `json:"assignedProfiles,omitempty"`
	Team               []string  `json:"team,omitempty"`
	BilledDays         *float64  `json:"billedDays"`
	SpentDays          *float64  `json:"spentDays"`
	AddToCalendar      bool      `json:"addToCalendar"`
	AddToRetroPlanning bool      `json:"addToRetroPlanning"`
	GoogleEventID      string    `json:"googleEventId,omitempty"`
	ProjectLead        []string  `json:"projectLead,omitempty"`
	ProjectStatus      []string  `json:"projectStatus,omitempty"`
	Notes              string    `json:"notes"`
	CreatedTime        time.Time `json:"createdTime"`
	LastEditedTime     time.Time `json:"lastEditedTime"`
}

// Scheduled reports whether the task has a non-empty work period.
func (t Task) Scheduled() bool {
	return t.WorkPeriod != nil && t.WorkPeriod.Start != ""
}

// NewTask is the input of a task creation.
type NewTask struct {
	Name          string   `json:"name"`
	ProjectID     string   `json:"projectId"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	Status        string   `json:"status"`
	AssignedUsers []string `json:"assignedUsers"`
	Notes         string   `json:"notes"`
}

// TaskUpdate is a partial patch. A nil field is left untouched.
type TaskUpdate struct {
	Name               *string   `json:"name"`
	ProjectID          *string   `json:"projectId"`
	Status             *string   `json:"status"`
	AssignedUsers      *[]string `json:"assignedUsers"`
	Notes              *string   `json:"notes"`
	StartDate          *string   `json:"startDate"`
	EndDate            *string   `json:"endDate"`
	WorkPeriod         *Period   `json:"workPeriod"`
	ClearPeriod        bool      `json:"clearPeriod"`
	BilledDays         *float64  `json:"billedDays"`
	SpentDays          *float64  `json:"spentDays"`
	AddToCalendar      *bool     `json:"addToCalendar"`
	AddToRetroPlanning *bool     `json:"addToRetroPlanning"`
}

// EnrichedTask is a task joined with reference names, shaped for the
// calendar front-end.
type EnrichedTask struct {
	Task
	Client             string        `json:"client"`
	ClientNames        []string      `json:"clientNames"`
	ProjectName        string        `json:"projectName"`
	ProjectNames       []string      `json:"projectNames"`
	AssignedUsersNames []string      `json:"assignedUsersNames"`
	ClientColor        string        `json:"clientColor"`
	Title              string        `json:"title"`
	Start              string        `json:"start,omitempty"`
	End                string        `json:"end,omitempty"`
	ExtendedProps      ExtendedProps `json:"extendedProps"`
}

type ExtendedProps struct {
	Client        string   `json:"client"`
	Project       string   `json:"project"`
	AssignedUsers []string `json:"assignedUsers"`
	Status        string   `json:"status"`
	Team          []string `json:"team"`
}

// TaskFilter selects enriched tasks. Empty criteria impose no constraint.
type TaskFilter struct {
	SelectedCreatives []string `json:"selectedCreatives"`
	SelectedClients   []string `json:"selectedClients"`
	SelectedProjects  []string `json:"selectedProjects"`
	ShowCompleted     bool     `json:"showCompleted"`
}
