package models

import (
	"time"

	"github.com/google/uuid"
)

// FormAnalytics holds lifetime counters for a form. Counters only grow.
type FormAnalytics struct {
	FormID           uuid.UUID `json:"form_id" db:"form_id"`
	TotalViews       int64     `json:"total_views" db:"total_views"`
	TotalSubmissions int64     `json:"total_submissions" db:"total_submissions"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// DailyStat holds per-day counters for a form, one row per (form, date).
type DailyStat struct {
	ID          uuid.UUID `json:"id" db:"id"`
	FormID      uuid.UUID `json:"form_id" db:"form_id"`
	Date        time.Time `json:"date" db:"date"`
	Views       int64     `json:"views" db:"views"`
	Submissions int64     `json:"submissions" db:"submissions"`
}

// StatTotals aggregates views and submissions over a window.
type StatTotals struct {
	Views       int64 `json:"views"`
	Submissions int64 `json:"submissions"`
}
