package model

// File is an attachment reference.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Person is a workspace member referenced by a people property.
type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// User is an assignable worker.
type User struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ProfilePhoto  []File   `json:"profilePhoto"`
	NotionProfile []Person `json:"notionProfile"`
	Team          []string `json:"team"`
	Role          []string `json:"role"`
	Manager       []Person `json:"manager"`
	Email         string   `json:"email"`
	Tasks         []string `json:"tasks"`
}

type Client struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        []string `json:"type"`
	ContactName string   `json:"contactName"`
	Status      string   `json:"status"`
	Notes       string   `json:"notes"`
	Email       string   `json:"contactEmail"`
}

// Project carries a denormalised Client name so that tasks with a broken
// client rollup can still be attributed.
type Project struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ClientIDs     []string `json:"clients"`
	Client        string   `json:"client"`
	Type          []string `json:"type"`
	Status        string   `json:"status"`
	InvolvedTeams []string `json:"involvedTeams"`
	ProjectLead   []Person `json:"projectLead"`
	StartDate     *Period  `json:"startDate"`
	EndDate       *Period  `json:"endDate"`
	DriveURL      string   `json:"driveUrl"`
	Tasks         []string `json:"tasks"`
	InvolvedUsers []string `json:"involvedUsers"`
	FolderNumber  string   `json:"folderNumber"`
	Emoji         string   `json:"emoji"`
}

// StatusOption is one value of the task status property.
type StatusOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultStatusOptions is served when the store schema cannot be read.
var DefaultStatusOptions = []StatusOption{
	{ID: "1", Name: StatusNotStarted, Color: "gray"},
	{ID: "2", Name: StatusInProgress, Color: "blue"},
	{ID: "3", Name: StatusDone, Color: "green"},
}
