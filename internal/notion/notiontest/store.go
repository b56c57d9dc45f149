// Package notiontest provides an in-memory notion.Store for tests.
package notiontest

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/notion"
)

// Store keeps pages in memory and evaluates the filters used by the
// repositories. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	pages    map[string]*notion.Page
	cols     map[string]notion.Collection
	order    []string
	schemas  map[notion.Collection]*notion.Database
	queries  map[notion.Collection]int
	queryErr map[notion.Collection]error
	writeErr error
	nextID   int

	// BeforeQuery, when set, runs at the start of every Query outside the lock.
	BeforeQuery func(col notion.Collection)
}

var _ notion.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		pages:    map[string]*notion.Page{},
		cols:     map[string]notion.Collection{},
		schemas:  map[notion.Collection]*notion.Database{},
		queries:  map[notion.Collection]int{},
		queryErr: map[notion.Collection]error{},
	}
}

// Add stores page in col and returns its id, generating one when empty.
func (s *Store) Add(col notion.Collection, page notion.Page) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page.ID == "" {
		s.nextID++
		page.ID = fmt.Sprintf("%s-%d", col, s.nextID)
	}
	if page.Properties == nil {
		page.Properties = notion.Properties{}
	}
	if _, ok := s.pages[page.ID]; !ok {
		s.order = append(s.order, page.ID)
	}
	page.Object = "page"
	s.pages[page.ID] = &page
	s.cols[page.ID] = col
	return page.ID
}

// Page returns a copy of the stored page.
func (s *Store) Page(id string) (notion.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		return notion.Page{}, false
	}
	return clonePage(p), true
}

func (s *Store) SetSchema(col notion.Collection, db *notion.Database) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[col] = db
}

// FailQueries makes every Query on col return err. A nil err clears it.
func (s *Store) FailQueries(col notion.Collection, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryErr[col] = err
}

// FailWrites makes Create, Update and Archive return err.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Queries reports how many queries col has served.
func (s *Store) Queries(col notion.Collection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[col]
}

func (s *Store) Query(ctx context.Context, col notion.Collection, filter *notion.Filter, sorts []notion.Sort) ([]notion.Page, error) {
	if s.BeforeQuery != nil {
		s.BeforeQuery(col)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries[col]++
	if err := s.queryErr[col]; err != nil {
		return nil, err
	}

	out := []notion.Page{}
	for _, id := range s.order {
		p := s.pages[id]
		if s.cols[id] != col || p.Archived {
			continue
		}
		if filter != nil && !matches(p, *filter) {
			continue
		}
		out = append(out, clonePage(p))
	}
	for i := len(sorts) - 1; i >= 0; i-- {
		srt := sorts[i]
		sort.SliceStable(out, func(a, b int) bool {
			ka, kb := sortKey(&out[a], srt), sortKey(&out[b], srt)
			if srt.Direction == notion.Descending {
				return ka > kb
			}
			return ka < kb
		})
	}
	return out, nil
}

func (s *Store) Retrieve(ctx context.Context, pageID string) (*notion.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[pageID]
	if !ok {
		return nil, notFound(pageID)
	}
	page := clonePage(p)
	return &page, nil
}

func (s *Store) Create(ctx context.Context, col notion.Collection, props notion.Properties) (*notion.Page, error) {
	s.mu.Lock()
	if s.writeErr != nil {
		s.mu.Unlock()
		return nil, s.writeErr
	}
	s.mu.Unlock()

	now := time.Now().UTC()
	id := s.Add(col, notion.Page{
		CreatedTime:    now,
		LastEditedTime: now,
		Properties:     cloneProps(props),
	})
	page, _ := s.Page(id)
	return &page, nil
}

func (s *Store) Update(ctx context.Context, pageID string, props notion.Properties) (*notion.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	p, ok := s.pages[pageID]
	if !ok {
		return nil, notFound(pageID)
	}
	for name, prop := range props {
		p.Properties[name] = prop
	}
	p.LastEditedTime = time.Now().UTC()
	page := clonePage(p)
	return &page, nil
}

func (s *Store) Archive(ctx context.Context, pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	p, ok := s.pages[pageID]
	if !ok {
		return notFound(pageID)
	}
	p.Archived = true
	return nil
}

func (s *Store) Schema(ctx context.Context, col notion.Collection) (*notion.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, ok := s.schemas[col]
	if !ok {
		return nil, notFound(string(col))
	}
	return db, nil
}

func notFound(id string) error {
	return &notion.APIError{Status: http.StatusNotFound, Code: "object_not_found", Message: "could not find " + id}
}

func matches(p *notion.Page, f notion.Filter) bool {
	if len(f.And) > 0 {
		for _, sub := range f.And {
			if !matches(p, sub) {
				return false
			}
		}
		return true
	}
	if len(f.Or) > 0 {
		for _, sub := range f.Or {
			if matches(p, sub) {
				return true
			}
		}
		return false
	}

	prop := p.Prop(f.Property)
	switch {
	case f.Date != nil:
		return matchDate(notion.Date(prop), *f.Date)
	case f.Relation != nil:
		ids := notion.Relation(prop)
		c := f.Relation
		switch {
		case c.IsEmpty:
			return len(ids) == 0
		case c.IsNotEmpty:
			return len(ids) > 0
		default:
			return slices.Contains(ids, c.Contains)
		}
	case f.Title != nil:
		return notion.Title(prop) == f.Title.Equals
	case f.RichText != nil:
		return notion.RichTextString(prop) == f.RichText.Equals
	}
	return true
}

func matchDate(period *model.Period, c notion.DateCondition) bool {
	if c.IsEmpty {
		return period == nil
	}
	if period == nil {
		return false
	}
	if c.IsNotEmpty {
		return true
	}
	start, _, err := model.ParseTimestamp(period.Start, time.UTC)
	if err != nil {
		return false
	}
	if c.OnOrBefore != "" {
		limit, err := time.Parse(time.RFC3339, c.OnOrBefore)
		if err != nil || start.After(limit) {
			return false
		}
	}
	if c.OnOrAfter != "" {
		limit, err := time.Parse(time.RFC3339, c.OnOrAfter)
		if err != nil || start.Before(limit) {
			return false
		}
	}
	return true
}

func sortKey(p *notion.Page, s notion.Sort) string {
	if s.Timestamp == "created_time" {
		return p.CreatedTime.Format(time.RFC3339Nano)
	}
	prop := p.Prop(s.Property)
	if prop == nil {
		return ""
	}
	switch prop.Type {
	case notion.KindDate:
		if d := notion.Date(prop); d != nil {
			return d.Start
		}
		return ""
	case notion.KindTitle, notion.KindRichText:
		return notion.Text(prop)
	case notion.KindStatus:
		return notion.Status(prop)
	case notion.KindSelect:
		return notion.Select(prop)
	}
	return ""
}

func clonePage(p *notion.Page) notion.Page {
	c := *p
	c.Properties = cloneProps(p.Properties)
	return c
}

func cloneProps(props notion.Properties) notion.Properties {
	out := make(notion.Properties, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
