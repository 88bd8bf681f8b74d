// Package survey builds patient survey forms and serializes them for the backend.
package survey

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/google/uuid"
)

type Kind string

const (
	ShortText      Kind = "Short Text"
	LongText       Kind = "Long Text"
	MultipleChoice Kind = "Multiple Choice"
	RatingScale    Kind = "Rating Scale"
	YesNo          Kind = "Yes/No"
	Date           Kind = "Date"
	Number         Kind = "Number"
)

// Kinds lists every question kind in menu order.
var Kinds = []Kind{ShortText, LongText, MultipleChoice, RatingScale, YesNo, Date, Number}

// ParseKind matches a kind by name, ignoring case.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, true
		}
	}
	return "", false
}

const (
	DefaultTitle       = "Patient Satisfaction Survey"
	DefaultDescription = "Please help us improve our services by completing this survey."
	DefaultScaleMax    = 5
	MinScaleMax        = 2
)

type Question struct {
	ID          string
	Kind        Kind
	Title       string
	Description string
	Required    bool
	Options     []string
	ScaleMax    int
}

// Patch changes the fields that are set.
type Patch struct {
	Kind        *Kind
	Title       *string
	Description *string
	Required    *bool
}

type Direction int

const (
	Up Direction = iota
	Down
)

// Builder is an ordered, in-memory question list with a single selection.
type Builder struct {
	Name        string
	Description string

	questions []Question
	selected  string
}

func New() *Builder {
	return &Builder{Name: DefaultTitle, Description: DefaultDescription}
}

// Questions returns a copy of the current list.
func (b *Builder) Questions() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

// Selected returns the selected question, if any.
func (b *Builder) Selected() (Question, bool) {
	i := b.index(b.selected)
	if i < 0 {
		return Question{}, false
	}
	return b.questions[i], true
}

func (b *Builder) Select(id string) bool {
	if b.index(id) < 0 {
		return false
	}
	b.selected = id
	return true
}

func (b *Builder) index(id string) int {
	if id == "" {
		return -1
	}
	for i, q := range b.questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a question of kind with its defaults and selects it.
func (b *Builder) Add(kind Kind) Question {
	q := Question{ID: uuid.NewString(), Kind: kind, Title: "New Question"}
	switch kind {
	case MultipleChoice:
		q.Options = []string{"Option 1", "Option 2"}
	case RatingScale:
		q.ScaleMax = DefaultScaleMax
	}
	b.questions = append(b.questions, q)
	b.selected = q.ID
	return q
}

// Update patches a question in place.
func (b *Builder) Update(id string, p Patch) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	q := &b.questions[i]
	if p.Kind != nil {
		q.Kind = *p.Kind
		if q.Kind == MultipleChoice && len(q.Options) == 0 {
			q.Options = []string{"Option 1", "Option 2"}
		}
		if q.Kind == RatingScale && q.ScaleMax == 0 {
			q.ScaleMax = DefaultScaleMax
		}
	}
	if p.Title != nil {
		q.Title = *p.Title
	}
	if p.Description != nil {
		q.Description = *p.Description
	}
	if p.Required != nil {
		q.Required = *p.Required
	}
	return true
}

// Delete removes a question and clears the selection if it was selected.
func (b *Builder) Delete(id string) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.questions = append(b.questions[:i], b.questions[i+1:]...)
	if b.selected == id {
		b.selected = ""
	}
	return true
}

// Move swaps a question with its neighbour. Moving past either end does nothing.
func (b *Builder) Move(id string, dir Direction) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(b.questions) {
		return false
	}
	b.questions[i], b.questions[j] = b.questions[j], b.questions[i]
	return true
}

// AddOption appends "Option N+1".
func (b *Builder) AddOption(id string) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	q := &b.questions[i]
	q.Options = append(q.Options, fmt.Sprintf("Option %d", len(q.Options)+1))
	return true
}

func (b *Builder) SetOption(id string, n int, text string) bool {
	i := b.index(id)
	if i < 0 || n < 0 || n >= len(b.questions[i].Options) {
		return false
	}
	b.questions[i].Options[n] = text
	return true
}

func (b *Builder) RemoveOption(id string, n int) bool {
	i := b.index(id)
	if i < 0 || n < 0 || n >= len(b.questions[i].Options) {
		return false
	}
	q := &b.questions[i]
	q.Options = append(q.Options[:n], q.Options[n+1:]...)
	return true
}

// SetScaleMax sets the rating ceiling, clamped to at least MinScaleMax.
func (b *Builder) SetScaleMax(id string, max int) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	if max < MinScaleMax {
		max = MinScaleMax
	}
	b.questions[i].ScaleMax = max
	return true
}

// BackendType maps a kind onto the backend's smaller vocabulary.
// The mapping is lossy on purpose: Rating Scale, Yes/No, Date and both text kinds all become text.
func BackendType(k Kind) string {
	switch k {
	case Number:
		return "number"
	case MultipleChoice:
		return "choice"
	default:
		return "text"
	}
}

type PayloadQuestion struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Required     bool   `json:"required"`
	QuestionType string `json:"question_type"`
}

type Payload struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Questions   []PayloadQuestion `json:"questions"`
}

// Payload is the body POSTed to /api/surveys/.
func (b *Builder) Payload() Payload {
	p := Payload{
		Name:        strings.TrimSpace(b.Name),
		Description: strings.TrimSpace(b.Description),
		Questions:   make([]PayloadQuestion, 0, len(b.questions)),
	}
	for _, q := range b.questions {
		p.Questions = append(p.Questions, PayloadQuestion{
			Title:        strings.TrimSpace(q.Title),
			Description:  strings.TrimSpace(q.Description),
			Required:     q.Required,
			QuestionType: BackendType(q.Kind),
		})
	}
	return p
}

// Saver persists a payload.
type Saver interface {
	CreateSurvey(ctx context.Context, p Payload) error
}

// Save validates the form and hands it to s.
func (b *Builder) Save(ctx context.Context, s Saver) error {
	if strings.TrimSpace(b.Name) == "" {
		return apperrors.Input("Please enter a form name")
	}
	return s.CreateSurvey(ctx, b.Payload())
}

// Preview renders the form the way a respondent sees it.
func (b *Builder) Preview() string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	sb.WriteString("\n")
	if b.Description != "" {
		sb.WriteString(b.Description)
		sb.WriteString("\n")
	}
	for i, q := range b.questions {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%d. %s", i+1, q.Title)
		if q.Required {
			sb.WriteString(" *")
		}
		sb.WriteString("\n")
		if q.Description != "" {
			fmt.Fprintf(&sb, "   %s\n", q.Description)
		}
		switch q.Kind {
		case MultipleChoice:
			opts := strings.Join(q.Options, ", ")
			if opts == "" {
				opts = "Option 1, Option 2"
			}
			fmt.Fprintf(&sb, "   Options: %s\n", opts)
		case RatingScale:
			max := q.ScaleMax
			if max == 0 {
				max = DefaultScaleMax
			}
			fmt.Fprintf(&sb, "   Scale: 1 - %d\n", max)
		case YesNo:
			sb.WriteString("   Yes / No\n")
		default:
			fmt.Fprintf(&sb, "   [%s]\n", q.Kind)
		}
	}
	return sb.String()
}
