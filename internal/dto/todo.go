package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "Todo/internal/domain"
)

var deadlineLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04",
}

// ParseDeadline parses an ISO-8601 date or date-time. Values without an
// offset are taken as UTC. The result is always in UTC.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("deadline_at: %q is not an ISO-8601 date or date-time", s)
}

// DeadlineAt parses deadline_at from JSON. null yields a nil time; a key
// missing from the body leaves IsSet false.
type DeadlineAt struct {
	t   *time.Time
	set bool
}

func (d *DeadlineAt) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.set = true
	if raw == nil {
		d.t = nil
		return nil
	}
	parsed, err := ParseDeadline(*raw)
	if err != nil {
		return err
	}
	d.t = &parsed
	return nil
}

// Ptr returns *time.Time for use in service/domain.
func (d DeadlineAt) Ptr() *time.Time { return d.t }

// IsSet reports whether deadline_at was present in the body.
func (d DeadlineAt) IsSet() bool { return d.set }

type CreateTodoRequest struct {
	Title       string     `json:"title" example:"Buy milk"`
	Description string     `json:"description" example:"Two liters, semi-skimmed"`
	Completed   bool       `json:"completed" example:"false"`
	DeadlineAt  DeadlineAt `json:"deadline_at" swaggertype:"string" example:"2026-10-20T18:00:00Z"`
}

// Todo converts the request into a new, unsaved entity.
func (r CreateTodoRequest) Todo() dom.Todo {
	return dom.Todo{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		DeadlineAt:  r.DeadlineAt.Ptr(),
	}
}

type UpdateTodoRequest struct {
	Title       *string    `json:"title" example:"Buy oat milk"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed" example:"true"`
	DeadlineAt  DeadlineAt `json:"deadline_at" swaggertype:"string"` // !IsSet = keep, null = clear
}

// Patch converts the request into a domain patch.
func (r UpdateTodoRequest) Patch() dom.TodoPatch {
	p := dom.TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
	if r.DeadlineAt.IsSet() {
		p.DeadlineSet = true
		p.DeadlineAt = r.DeadlineAt.Ptr()
	}
	return p
}

type TodoResponse struct {
	ID          int64      `json:"id" example:"1"`
	Title       string     `json:"title" example:"Buy milk"`
	Description string     `json:"description" example:"Two liters, semi-skimmed"`
	Completed   bool       `json:"completed" example:"false"`
	DeadlineAt  *time.Time `json:"deadline_at" example:"2026-10-20T18:00:00Z"`
}

func NewTodoResponse(t dom.Todo) TodoResponse {
	out := TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	}
	if t.DeadlineAt != nil {
		d := t.DeadlineAt.UTC()
		out.DeadlineAt = &d
	}
	return out
}

func NewTodoResponses(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = NewTodoResponse(list[i])
	}
	return out
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"Todo not found"`
}
