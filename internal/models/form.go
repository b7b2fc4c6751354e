package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONMap is a schema-less key-value blob stored as JSONB. Its meaning is
// owned by the presentation layer; the API only checks that it is an object.
type JSONMap map[string]any

// FormStatus represents the lifecycle state of a form.
type FormStatus string

const (
	FormStatusDraft     FormStatus = "draft"
	FormStatusPublished FormStatus = "published"
	FormStatusArchived  FormStatus = "archived"
)

// Valid reports whether s is a known form status.
func (s FormStatus) Valid() bool {
	switch s {
	case FormStatusDraft, FormStatusPublished, FormStatusArchived:
		return true
	}
	return false
}

// Form is an owner's form definition. Slug is globally unique.
type Form struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Slug        string     `json:"slug" db:"slug"`
	Status      FormStatus `json:"status" db:"status"`
	Theme       JSONMap    `json:"theme" db:"theme"`
	Settings    JSONMap    `json:"settings" db:"settings"` // export settings
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsPublished reports whether the form accepts submissions.
func (f *Form) IsPublished() bool {
	return f.Status == FormStatusPublished
}

// FormDetail is a form together with its ordered blocks. It is the payload
// cached under the form-by-id key.
type FormDetail struct {
	Form
	Blocks []*Block `json:"blocks"`
}

// PublicForm is what respondents see of a published form. It leaves out
// the owner and the export settings, and is the payload cached under the
// form-by-slug key.
type PublicForm struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Slug        string     `json:"slug"`
	Status      FormStatus `json:"status"`
	Theme       JSONMap    `json:"theme"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Blocks      []*Block   `json:"blocks"`
}

// Public projects d onto the respondent-facing shape.
func (d *FormDetail) Public() *PublicForm {
	return &PublicForm{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Slug:        d.Slug,
		Status:      d.Status,
		Theme:       d.Theme,
		PublishedAt: d.PublishedAt,
		Blocks:      d.Blocks,
	}
}
