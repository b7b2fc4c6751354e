// Package repository provides data access layer implementations.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

const uniqueViolation = "23505"

var (
	// ErrSlugTaken is returned when a form slug collides with another form.
	ErrSlugTaken = errors.New("slug already taken")

	// ErrFieldKeyTaken is returned when a block field key collides within a form.
	ErrFieldKeyTaken = errors.New("field key already used in form")
)

// row is satisfied by both pgx.Row and pgx.Rows.
type row interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a unique constraint violation on
// the named constraint. An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// jsonObject substitutes an empty object for a nil map so JSONB columns
// declared NOT NULL never receive SQL NULL.
func jsonObject(m models.JSONMap) models.JSONMap {
	if m == nil {
		return models.JSONMap{}
	}
	return m
}

func stringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
