// Package middleware provides HTTP middleware for the FormVista API.
package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// UserKey is the context key for the authenticated user.
	UserKey contextKey = "user"
)

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	return context.WithValue(ctx, UserKey, user)
}

// GetUserID retrieves the authenticated user ID from context, or uuid.Nil.
func GetUserID(ctx context.Context) uuid.UUID {
	if v, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// GetUser retrieves the authenticated user from context.
func GetUser(ctx context.Context) *models.User {
	if v, ok := ctx.Value(UserKey).(*models.User); ok {
		return v
	}
	return nil
}
