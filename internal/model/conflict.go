package model

// OverlapRequest is a proposed assignment to check for conflicts.
type OverlapRequest struct {
	AssignedUsers []string `json:"assignedUsers"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	ExcludeTaskID string   `json:"excludeTaskId"`
}

type ConflictingTask struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ProjectName string `json:"projectName"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type Conflict struct {
	UserID          string          `json:"userId"`
	UserName        string          `json:"userName"`
	ConflictingTask ConflictingTask `json:"conflictingTask"`
}

// ConflictReport is computed on demand and never persisted.
type ConflictReport struct {
	HasConflicts    bool       `json:"hasConflicts"`
	ConflictMessage string     `json:"conflictMessage"`
	Conflicts       []Conflict `json:"conflicts"`
}
