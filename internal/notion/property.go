package notion

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/roksva123/go-planning-backend/internal/model"
)

// Kind is the discriminator of a property value.
type Kind string

const (
	KindTitle       Kind = "title"
	KindRichText    Kind = "rich_text"
	KindNumber      Kind = "number"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multi_select"
	KindStatus      Kind = "status"
	KindDate        Kind = "date"
	KindCheckbox    Kind = "checkbox"
	KindURL         Kind = "url"
	KindEmail       Kind = "email"
	KindPhone       Kind = "phone_number"
	KindFiles       Kind = "files"
	KindPeople      Kind = "people"
	KindRelation    Kind = "relation"
	KindRollup      Kind = "rollup"
	KindFormula     Kind = "formula"
)

type RichText struct {
	Type      string       `json:"type,omitempty"`
	PlainText string       `json:"plain_text"`
	Text      *TextContent `json:"text,omitempty"`
	Href      *string      `json:"href,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

type Option struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end"`
	TimeZone *string `json:"time_zone,omitempty"`
}

type FileObject struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	File     *FileURL `json:"file,omitempty"`
	External *FileURL `json:"external,omitempty"`
}

type FileURL struct {
	URL string `json:"url"`
}

type PersonObject struct {
	Object    string `json:"object,omitempty"`
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Type      string `json:"type,omitempty"`
}

type Ref struct {
	ID string `json:"id"`
}

type RollupValue struct {
	Type     string     `json:"type"`
	Array    []Property `json:"array,omitempty"`
	String   *string    `json:"string,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Date     *DateValue `json:"date,omitempty"`
	Relation []Ref      `json:"relation,omitempty"`
}

type FormulaValue struct {
	Type    string     `json:"type"`
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

// Property is one typed value of a page. Only the field matching Type is
// meaningful.
type Property struct {
	ID          string         `json:"id,omitempty"`
	Type        Kind           `json:"type"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *Option        `json:"select,omitempty"`
	Status      *Option        `json:"status,omitempty"`
	MultiSelect []Option       `json:"multi_select,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`
	URL         *string        `json:"url,omitempty"`
	Email       *string        `json:"email,omitempty"`
	PhoneNumber *string        `json:"phone_number,omitempty"`
	Files       []FileObject   `json:"files,omitempty"`
	People      []PersonObject `json:"people,omitempty"`
	Relation    []Ref          `json:"relation,omitempty"`
	Rollup      *RollupValue   `json:"rollup,omitempty"`
	Formula     *FormulaValue  `json:"formula,omitempty"`
}

// Properties is the property map of a page, keyed by property name.
type Properties map[string]Property

// MarshalJSON writes the request shape of a property: a single key named
// after its type. Computed kinds cannot be written.
func (p Property) MarshalJSON() ([]byte, error) {
	var payload any
	switch p.Type {
	case KindTitle:
		payload = richTextInput(p.Title)
	case KindRichText:
		payload = richTextInput(p.RichText)
	case KindNumber:
		payload = p.Number
	case KindSelect:
		payload = p.Select
	case KindStatus:
		payload = p.Status
	case KindMultiSelect:
		payload = nonNil(p.MultiSelect)
	case KindDate:
		payload = p.Date
	case KindCheckbox:
		payload = p.Checkbox != nil && *p.Checkbox
	case KindURL:
		payload = p.URL
	case KindEmail:
		payload = p.Email
	case KindPhone:
		payload = p.PhoneNumber
	case KindRelation:
		payload = nonNil(p.Relation)
	case KindPeople:
		refs := make([]Ref, 0, len(p.People))
		for _, person := range p.People {
			refs = append(refs, Ref{ID: person.ID})
		}
		payload = refs
	case KindFiles:
		payload = nonNil(p.Files)
	default:
		return nil, fmt.Errorf("notion: property of type %q cannot be written", p.Type)
	}
	return json.Marshal(map[Kind]any{p.Type: payload})
}

func richTextInput(items []RichText) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"type": "text",
			"text": TextContent{Content: segmentText(it)},
		})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Builders for request properties.

func TitleValue(s string) Property {
	return Property{Type: KindTitle, Title: textSegments(s)}
}

func RichTextValue(s string) Property {
	return Property{Type: KindRichText, RichText: textSegments(s)}
}

func textSegments(s string) []RichText {
	if s == "" {
		return []RichText{}
	}
	return []RichText{{Type: "text", PlainText: s, Text: &TextContent{Content: s}}}
}

func RelationValue(ids ...string) Property {
	refs := make([]Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, Ref{ID: id})
	}
	return Property{Type: KindRelation, Relation: refs}
}

func StatusValue(name string) Property {
	return Property{Type: KindStatus, Status: &Option{Name: name}}
}

func DateRangeValue(start string, end *string) Property {
	return Property{Type: KindDate, Date: &DateValue{Start: start, End: end}}
}

// EmptyDate clears a date property.
func EmptyDate() Property {
	return Property{Type: KindDate}
}

func NumberValue(n float64) Property {
	return Property{Type: KindNumber, Number: &n}
}

func CheckboxValue(b bool) Property {
	return Property{Type: KindCheckbox, Checkbox: &b}
}

// Decoders. All of them accept a nil property and return the zero value.

func segmentText(rt RichText) string {
	if rt.PlainText != "" {
		return rt.PlainText
	}
	if rt.Text != nil {
		return rt.Text.Content
	}
	return ""
}

func plainText(items []RichText) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(segmentText(it))
	}
	return b.String()
}

func Title(p *Property) string {
	if p == nil {
		return ""
	}
	return plainText(p.Title)
}

func RichTextString(p *Property) string {
	if p == nil {
		return ""
	}
	return plainText(p.RichText)
}

// Text decodes a title or rich text property according to its own type.
func Text(p *Property) string {
	if p == nil {
		return ""
	}
	if p.Type == KindTitle {
		return plainText(p.Title)
	}
	return plainText(p.RichText)
}

func Number(p *Property) *float64 {
	if p == nil || p.Number == nil {
		return nil
	}
	n := *p.Number
	return &n
}

func Select(p *Property) string {
	if p == nil || p.Select == nil {
		return ""
	}
	return p.Select.Name
}

func Status(p *Property) string {
	if p == nil || p.Status == nil {
		return ""
	}
	return p.Status.Name
}

func MultiSelect(p *Property) []string {
	out := []string{}
	if p == nil {
		return out
	}
	for _, o := range p.MultiSelect {
		out = append(out, o.Name)
	}
	return out
}

func Date(p *Property) *model.Period {
	if p == nil {
		return nil
	}
	return periodOf(p.Date)
}

func periodOf(d *DateValue) *model.Period {
	if d == nil || d.Start == "" {
		return nil
	}
	period := &model.Period{Start: d.Start}
	if d.End != nil && *d.End != "" {
		end := *d.End
		period.End = &end
	}
	return period
}

func Checkbox(p *Property) bool {
	return p != nil && p.Checkbox != nil && *p.Checkbox
}

func URL(p *Property) string {
	if p == nil || p.URL == nil {
		return ""
	}
	return *p.URL
}

func Email(p *Property) string {
	if p == nil || p.Email == nil {
		return ""
	}
	return *p.Email
}

func Phone(p *Property) string {
	if p == nil || p.PhoneNumber == nil {
		return ""
	}
	return *p.PhoneNumber
}

// Files resolves internally and externally hosted files to one URL each.
func Files(p *Property) []model.File {
	out := []model.File{}
	if p == nil {
		return out
	}
	for _, f := range p.Files {
		file := model.File{Name: f.Name}
		switch {
		case f.Type == "external" && f.External != nil:
			file.URL = f.External.URL
		case f.File != nil:
			file.URL = f.File.URL
		case f.External != nil:
			file.URL = f.External.URL
		}
		out = append(out, file)
	}
	return out
}

func People(p *Property) []model.Person {
	out := []model.Person{}
	if p == nil {
		return out
	}
	for _, person := range p.People {
		out = append(out, model.Person{ID: person.ID, Name: person.Name, AvatarURL: person.AvatarURL})
	}
	return out
}

func Relation(p *Property) []string {
	out := []string{}
	if p == nil {
		return out
	}
	for _, r := range p.Relation {
		if r.ID != "" {
			out = append(out, r.ID)
		}
	}
	return out
}

// Rollup flattens a rollup into strings. Array items are decoded by their
// own type, so a rollup of relations yields ids and a rollup of titles
// yields names. Empty values are dropped.
func Rollup(p *Property) []string {
	out := []string{}
	if p == nil || p.Rollup == nil {
		return out
	}
	r := p.Rollup
	switch r.Type {
	case "array":
		for i := range r.Array {
			for _, v := range rollupItem(&r.Array[i]) {
				if v != "" {
					out = append(out, v)
				}
			}
		}
	case "string":
		if r.String != nil && *r.String != "" {
			out = append(out, *r.String)
		}
	case "relation":
		for _, ref := range r.Relation {
			if ref.ID != "" {
				out = append(out, ref.ID)
			}
		}
	case "number":
		if r.Number != nil {
			out = append(out, formatNumber(*r.Number))
		}
	case "date":
		if r.Date != nil && r.Date.Start != "" {
			out = append(out, r.Date.Start)
		}
	}
	return out
}

func rollupItem(item *Property) []string {
	switch item.Type {
	case KindTitle, KindRichText:
		return []string{Text(item)}
	case KindPeople:
		names := make([]string, 0, len(item.People))
		for _, person := range item.People {
			names = append(names, person.Name)
		}
		return names
	case KindRelation:
		return Relation(item)
	case KindSelect:
		return []string{Select(item)}
	case KindStatus:
		return []string{Status(item)}
	case KindMultiSelect:
		return MultiSelect(item)
	case KindNumber:
		if item.Number != nil {
			return []string{formatNumber(*item.Number)}
		}
	case KindDate:
		if d := Date(item); d != nil {
			return []string{d.Start}
		}
	case KindFormula:
		return []string{Formula(item)}
	case KindURL:
		return []string{URL(item)}
	case KindEmail:
		return []string{Email(item)}
	}
	return nil
}

// Formula renders the formula result whatever its variant.
func Formula(p *Property) string {
	if p == nil || p.Formula == nil {
		return ""
	}
	f := p.Formula
	switch {
	case f.Type == "string" && f.String != nil:
		return *f.String
	case f.Type == "number" && f.Number != nil:
		return formatNumber(*f.Number)
	case f.Type == "boolean" && f.Boolean != nil:
		return strconv.FormatBool(*f.Boolean)
	case f.Type == "date" && f.Date != nil:
		return f.Date.Start
	case f.String != nil:
		return *f.String
	case f.Number != nil:
		return formatNumber(*f.Number)
	}
	return ""
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Decode returns the plain value of p read as kind. Unknown kinds return the
// property unchanged.
func Decode(p *Property, kind Kind) any {
	switch kind {
	case KindTitle:
		return Title(p)
	case KindRichText:
		return RichTextString(p)
	case KindNumber:
		return Number(p)
	case KindSelect:
		return Select(p)
	case KindStatus:
		return Status(p)
	case KindMultiSelect:
		return MultiSelect(p)
	case KindDate:
		return Date(p)
	case KindCheckbox:
		return Checkbox(p)
	case KindURL:
		return URL(p)
	case KindEmail:
		return Email(p)
	case KindPhone:
		return Phone(p)
	case KindFiles:
		return Files(p)
	case KindPeople:
		return People(p)
	case KindRelation:
		return Relation(p)
	case KindRollup:
		return Rollup(p)
	case KindFormula:
		return Formula(p)
	default:
		return p
	}
}
