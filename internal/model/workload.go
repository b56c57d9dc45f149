package model

// Workload categories.
const (
	WorkloadUnderload = "underload"
	WorkloadNormal    = "normal"
	WorkloadOverload  = "overload"
)

// WorkloadThresholds are weekly hour limits. Underload ≤ 35 hours/week,
// Normal 36–45 hours/week, Overload ≥ 60 hours/week.
type WorkloadThresholds struct {
	Underload float64 `json:"underload"`
	NormalMin float64 `json:"normalMin"`
	NormalMax float64 `json:"normalMax"`
	Overload  float64 `json:"overload"`
}

func DefaultWorkloadThresholds() WorkloadThresholds {
	return WorkloadThresholds{Underload: 35, NormalMin: 36, NormalMax: 45, Overload: 60}
}

// Category classifies weekly hours. Anything between the underload and
// overload limits counts as normal.
func (t WorkloadThresholds) Category(weeklyHours float64) string {
	switch {
	case weeklyHours <= t.Underload:
		return WorkloadUnderload
	case weeklyHours >= t.Overload:
		return WorkloadOverload
	default:
		return WorkloadNormal
	}
}

type WorkloadTask struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Client string  `json:"client"`
	Hours  float64 `json:"hours"`
}

// WorkloadUser is the scheduled load of one user over a window.
type WorkloadUser struct {
	UserID      string         `json:"userId"`
	UserName    string         `json:"userName"`
	TaskCount   int            `json:"taskCount"`
	TotalHours  float64        `json:"totalHours"`
	WeeklyHours float64        `json:"weeklyHours"`
	Category    string         `json:"category"`
	Tasks       []WorkloadTask `json:"tasks"`
}

type WorkloadSummary struct {
	TotalUsers int     `json:"totalUsers"`
	TotalHours float64 `json:"totalHours"`
	AvgHours   float64 `json:"avgHours"`
}

type WorkloadResponse struct {
	Start                  string             `json:"start"`
	End                    string             `json:"end"`
	WorkingDays            int                `json:"workingDays"`
	StandardHoursPerPerson float64            `json:"standardHoursPerPerson"`
	Thresholds             WorkloadThresholds `json:"thresholds"`
	Summary                WorkloadSummary    `json:"summary"`
	Users                  []WorkloadUser     `json:"users"`
}
