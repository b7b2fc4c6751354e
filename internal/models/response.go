package models

import (
	"time"

	"github.com/google/uuid"
)

// FormResponse is one submission to a form. Notes and Tags are edited by the
// form owner after the fact, never by the submitter.
type FormResponse struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	FormID         uuid.UUID         `json:"form_id" db:"form_id"`
	SubmittedAt    time.Time         `json:"submitted_at" db:"submitted_at"`
	CompletionTime *int              `json:"completion_time,omitempty" db:"completion_time_seconds"`
	Notes          string            `json:"notes" db:"notes"`
	Tags           []string          `json:"tags" db:"tags"`
	Metadata       JSONMap           `json:"metadata,omitempty" db:"metadata"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
	Answers        []*ResponseAnswer `json:"answers"`
}

// ResponseAnswer is a single answer. FieldKey duplicates the block's key so
// answers stay readable after the block is deleted.
type ResponseAnswer struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ResponseID uuid.UUID  `json:"response_id" db:"response_id"`
	BlockID    *uuid.UUID `json:"block_id,omitempty" db:"block_id"`
	FieldKey   string     `json:"field_key" db:"field_key"`
	Value      any        `json:"value" db:"value"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Pagination describes a page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes total pages for a listing.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// ResponsePage is the cached payload for one page of a form's responses.
type ResponsePage struct {
	Items      []*FormResponse `json:"items"`
	Pagination Pagination      `json:"pagination"`
}
