package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/roksva123/go-planning-backend/internal/model"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"

	pageSize = 100
)

// Collection names one of the mirrored databases.
type Collection string

const (
	CollectionUsers    Collection = "users"
	CollectionClients  Collection = "clients"
	CollectionProjects Collection = "projects"
	CollectionTasks    Collection = "tasks"
	CollectionTeams    Collection = "teams"
)

// Store is the subset of the external store used by the repositories.
type Store interface {
	Query(ctx context.Context, col Collection, filter *Filter, sorts []Sort) ([]Page, error)
	Retrieve(ctx context.Context, pageID string) (*Page, error)
	Create(ctx context.Context, col Collection, props Properties) (*Page, error)
	Update(ctx context.Context, pageID string, props Properties) (*Page, error)
	Archive(ctx context.Context, pageID string) error
	Schema(ctx context.Context, col Collection) (*Database, error)
}

// ConfigSource yields the configuration in effect for the next call.
type ConfigSource interface {
	ActiveStoreConfig(ctx context.Context) (model.ActiveStoreConfig, error)
}

// Page is a record of a collection.
type Page struct {
	Object         string     `json:"object"`
	ID             string     `json:"id"`
	CreatedTime    time.Time  `json:"created_time"`
	LastEditedTime time.Time  `json:"last_edited_time"`
	Archived       bool       `json:"archived"`
	InTrash        bool       `json:"in_trash"`
	URL            string     `json:"url"`
	Parent         Parent     `json:"parent"`
	Properties     Properties `json:"properties"`
}

type Parent struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id,omitempty"`
}

// Prop returns the property called name, or nil when the page lacks it.
func (p *Page) Prop(name string) *Property {
	if p == nil {
		return nil
	}
	prop, ok := p.Properties[name]
	if !ok {
		return nil
	}
	return &prop
}

// Database is the schema of a collection.
type Database struct {
	ID         string                    `json:"id"`
	Title      []RichText                `json:"title"`
	Properties map[string]SchemaProperty `json:"properties"`
}

type SchemaProperty struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Type   Kind           `json:"type"`
	Status *OptionsSchema `json:"status,omitempty"`
	Select *OptionsSchema `json:"select,omitempty"`
}

type OptionsSchema struct {
	Options []Option `json:"options"`
}

// Filter is a query filter. Compound filters use And/Or, leaf filters set
// Property and exactly one condition.
type Filter struct {
	And      []Filter           `json:"and,omitempty"`
	Or       []Filter           `json:"or,omitempty"`
	Property string             `json:"property,omitempty"`
	Date     *DateCondition     `json:"date,omitempty"`
	Relation *RelationCondition `json:"relation,omitempty"`
	Title    *TextCondition     `json:"title,omitempty"`
	RichText *TextCondition     `json:"rich_text,omitempty"`
}

type DateCondition struct {
	OnOrAfter  string `json:"on_or_after,omitempty"`
	OnOrBefore string `json:"on_or_before,omitempty"`
	IsEmpty    bool   `json:"is_empty,omitempty"`
	IsNotEmpty bool   `json:"is_not_empty,omitempty"`
}

type RelationCondition struct {
	Contains   string `json:"contains,omitempty"`
	IsEmpty    bool   `json:"is_empty,omitempty"`
	IsNotEmpty bool   `json:"is_not_empty,omitempty"`
}

type TextCondition struct {
	Equals   string `json:"equals,omitempty"`
	Contains string `json:"contains,omitempty"`
}

func And(filters ...Filter) *Filter {
	return &Filter{And: filters}
}

func DateOnOrBefore(property string, t time.Time) Filter {
	return Filter{Property: property, Date: &DateCondition{OnOrBefore: t.Format(time.RFC3339)}}
}

func DateOnOrAfter(property string, t time.Time) Filter {
	return Filter{Property: property, Date: &DateCondition{OnOrAfter: t.Format(time.RFC3339)}}
}

func DateIsEmpty(property string) Filter {
	return Filter{Property: property, Date: &DateCondition{IsEmpty: true}}
}

func DateIsNotEmpty(property string) Filter {
	return Filter{Property: property, Date: &DateCondition{IsNotEmpty: true}}
}

func RelationContains(property, id string) Filter {
	return Filter{Property: property, Relation: &RelationCondition{Contains: id}}
}

const (
	Ascending  = "ascending"
	Descending = "descending"
)

type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// APIError is a non-2xx answer of the store.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion api error %d (%s): %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case model.ErrUpstream:
		return true
	case model.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Client talks to the store's REST API. Credentials and collection ids are
// read from Config on every call.
type Client struct {
	Config  ConfigSource
	BaseURL string
	Version string
	HTTP    *http.Client
	Logger  *slog.Logger
}

func NewClient(cfg ConfigSource, baseURL, version string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if version == "" {
		version = DefaultVersion
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		Config:  cfg,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Version: version,
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

// CollectionID returns the id configured for col, or "" when unset.
func CollectionID(cfg model.StoreConfig, col Collection) string {
	ids := cfg.CollectionIDs
	switch col {
	case CollectionUsers:
		return ids.Users
	case CollectionClients:
		return ids.Clients
	case CollectionProjects:
		return ids.Projects
	case CollectionTasks:
		return ids.Tasks
	case CollectionTeams:
		return ids.Teams
	}
	return ""
}

func (c *Client) active(ctx context.Context) (model.StoreConfig, error) {
	if c.Config == nil {
		return model.StoreConfig{}, model.ErrStoreConfig
	}
	active, err := c.Config.ActiveStoreConfig(ctx)
	if err != nil {
		return model.StoreConfig{}, err
	}
	if !active.Config.Complete() {
		return model.StoreConfig{}, model.ErrStoreConfig
	}
	return active.Config, nil
}

func (c *Client) collection(ctx context.Context, col Collection) (model.StoreConfig, string, error) {
	cfg, err := c.active(ctx)
	if err != nil {
		return cfg, "", err
	}
	id := CollectionID(cfg, col)
	if id == "" {
		return cfg, "", fmt.Errorf("collection %s: %w", col, model.ErrStoreConfig)
	}
	return cfg, id, nil
}

// doRequest performs an authenticated call and returns the body bytes.
func (c *Client) doRequest(ctx context.Context, apiKey, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Notion-Version", c.Version)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", model.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", model.ErrUpstream, err)
	}
	c.Logger.Debug("notion request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		apiErr := &APIError{}
		if json.Unmarshal(b, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(b))
		}
		apiErr.Status = resp.StatusCode
		return nil, apiErr
	}
	return b, nil
}

func (c *Client) decode(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: decode response: %w", model.ErrUpstream, err)
	}
	return nil
}

type queryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size"`
}

type queryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Query returns every page of col matching filter, following pagination.
func (c *Client) Query(ctx context.Context, col Collection, filter *Filter, sorts []Sort) ([]Page, error) {
	cfg, id, err := c.collection(ctx, col)
	if err != nil {
		return nil, err
	}

	pages := []Page{}
	req := queryRequest{Filter: filter, Sorts: sorts, PageSize: pageSize}
	for {
		b, err := c.doRequest(ctx, cfg.APIKey, http.MethodPost, "/databases/"+id+"/query", req)
		if err != nil {
			return nil, err
		}
		var out queryResponse
		if err := c.decode(b, &out); err != nil {
			return nil, err
		}
		pages = append(pages, out.Results...)
		if !out.HasMore || out.NextCursor == nil || *out.NextCursor == "" {
			break
		}
		req.StartCursor = *out.NextCursor
	}
	return pages, nil
}

func (c *Client) Retrieve(ctx context.Context, pageID string) (*Page, error) {
	cfg, err := c.active(ctx)
	if err != nil {
		return nil, err
	}
	b, err := c.doRequest(ctx, cfg.APIKey, http.MethodGet, "/pages/"+pageID, nil)
	if err != nil {
		return nil, err
	}
	var page Page
	if err := c.decode(b, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Create(ctx context.Context, col Collection, props Properties) (*Page, error) {
	cfg, id, err := c.collection(ctx, col)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"parent":     Parent{Type: "database_id", DatabaseID: id},
		"properties": props,
	}
	b, err := c.doRequest(ctx, cfg.APIKey, http.MethodPost, "/pages", payload)
	if err != nil {
		return nil, err
	}
	var page Page
	if err := c.decode(b, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Update(ctx context.Context, pageID string, props Properties) (*Page, error) {
	cfg, err := c.active(ctx)
	if err != nil {
		return nil, err
	}
	b, err := c.doRequest(ctx, cfg.APIKey, http.MethodPatch, "/pages/"+pageID, map[string]any{"properties": props})
	if err != nil {
		return nil, err
	}
	var page Page
	if err := c.decode(b, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Archive moves a page to the trash.
func (c *Client) Archive(ctx context.Context, pageID string) error {
	cfg, err := c.active(ctx)
	if err != nil {
		return err
	}
	_, err = c.doRequest(ctx, cfg.APIKey, http.MethodPatch, "/pages/"+pageID, map[string]any{"archived": true})
	return err
}

func (c *Client) Schema(ctx context.Context, col Collection) (*Database, error) {
	cfg, id, err := c.collection(ctx, col)
	if err != nil {
		return nil, err
	}
	b, err := c.doRequest(ctx, cfg.APIKey, http.MethodGet, "/databases/"+id, nil)
	if err != nil {
		return nil, err
	}
	var db Database
	if err := c.decode(b, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// Ping checks a candidate configuration without activating it: the API key
// first, then every configured collection.
func (c *Client) Ping(ctx context.Context, cfg model.StoreConfig) model.ConnectionReport {
	report := model.ConnectionReport{Databases: map[string]bool{}}
	if cfg.APIKey == "" {
		report.Message = "API key is required"
		return report
	}
	if _, err := c.doRequest(ctx, cfg.APIKey, http.MethodGet, "/users/me", nil); err != nil {
		report.Message = fmt.Sprintf("API key rejected: %v", err)
		return report
	}
	report.APIKey = true

	failed := []string{}
	for _, col := range []Collection{CollectionUsers, CollectionClients, CollectionProjects, CollectionTasks, CollectionTeams} {
		id := CollectionID(cfg, col)
		if id == "" {
			continue
		}
		_, err := c.doRequest(ctx, cfg.APIKey, http.MethodGet, "/databases/"+id, nil)
		report.Databases[string(col)] = err == nil
		if err != nil {
			failed = append(failed, string(col))
		}
	}
	if len(failed) > 0 {
		report.Message = "unreachable databases: " + strings.Join(failed, ", ")
		return report
	}
	report.Success = true
	report.Message = "connection successful"
	return report
}
