package model

import "time"

// Config sources reported by the settings provider.
const (
	ConfigSourceDatabase    = "database"
	ConfigSourceEnvironment = "environment"
	ConfigSourceNone        = "none"
)

// CollectionIDs are the external store ids of the mirrored collections.
type CollectionIDs struct {
	Users    string `json:"users"`
	Clients  string `json:"clients"`
	Projects string `json:"projects"`
	Tasks    string `json:"trafic"`
	Teams    string `json:"teams,omitempty"`
}

// StoreConfig is the configuration used to reach the external store.
type StoreConfig struct {
	ID            string        `json:"id,omitempty"`
	Name          string        `json:"name"`
	APIKey        string        `json:"notionApiKey"`
	CollectionIDs CollectionIDs `json:"databaseIds"`
	IsActive      bool          `json:"isActive"`
	CreatedBy     string        `json:"createdBy,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Complete reports whether every required field is set. Teams is optional.
func (c StoreConfig) Complete() bool {
	ids := c.CollectionIDs
	return c.APIKey != "" && ids.Users != "" && ids.Clients != "" && ids.Projects != "" && ids.Tasks != ""
}

// Redacted hides the API key for display.
func (c StoreConfig) Redacted() StoreConfig {
	if len(c.APIKey) > 8 {
		c.APIKey = c.APIKey[:4] + "…" + c.APIKey[len(c.APIKey)-4:]
	} else if c.APIKey != "" {
		c.APIKey = "…"
	}
	return c
}

// ActiveStoreConfig is the resolved configuration and where it came from.
type ActiveStoreConfig struct {
	Source string      `json:"source"`
	Config StoreConfig `json:"config"`
}

type ConfigStatus struct {
	Source        string `json:"source"`
	UsingFallback bool   `json:"usingFallback"`
	Error         string `json:"error,omitempty"`
}

// ConnectionReport is the outcome of a store connectivity test.
type ConnectionReport struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	APIKey    bool            `json:"apiKey"`
	Databases map[string]bool `json:"databases"`
}
