// Package response provides JSON response helpers for API handlers.
package response

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
)

// Response represents the standard API response envelope.
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Error   *apierrors.APIError `json:"error,omitempty"`
	Meta    Meta                `json:"meta"`
}

// Meta is attached to every response.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
	Version   string    `json:"version"`
	Duration  string    `json:"duration,omitempty"`
}

var (
	settingsMu     sync.RWMutex
	apiVersion     = "1.0.0"
	exposeInternal = true
)

// Configure sets the version reported in meta and whether causes of 5xx
// errors are echoed in error details. Call once at startup.
func Configure(version string, production bool) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if version != "" {
		apiVersion = version
	}
	exposeInternal = !production
}

type startKey struct{}

// WithStart records the time a request started handling.
func WithStart(ctx context.Context, start time.Time) context.Context {
	return context.WithValue(ctx, startKey{}, start)
}

func newMeta(r *http.Request) Meta {
	settingsMu.RLock()
	version := apiVersion
	settingsMu.RUnlock()

	meta := Meta{Timestamp: time.Now().UTC(), Version: version}
	if r == nil {
		return meta
	}
	meta.RequestID = middleware.GetReqID(r.Context())
	if start, ok := r.Context().Value(startKey{}).(time.Time); ok {
		meta.Duration = time.Since(start).String()
	}
	return meta
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// JSON writes a successful JSON response with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, status, Response{Success: true, Data: data, Meta: newMeta(r)})
}

// JSONWithMessage writes a successful response carrying a human message.
func JSONWithMessage(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	write(w, status, Response{Success: true, Message: message, Data: data, Meta: newMeta(r)})
}

// Error writes an error response. Errors that are not APIErrors are
// reported as internal errors.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierrors.AsAPIError(err)

	if apiErr.StatusCode >= http.StatusInternalServerError {
		attrs := []any{
			slog.String("code", apiErr.Code),
			slog.String("error", err.Error()),
		}
		if r != nil {
			attrs = append(attrs,
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("path", r.URL.Path),
			)
		}
		slog.Error("request failed", attrs...)

		settingsMu.RLock()
		expose := exposeInternal
		settingsMu.RUnlock()
		if cause := apiErr.Cause(); expose && cause != nil && apiErr.Details == nil {
			apiErr = apiErr.WithDetails(map[string]string{"cause": cause.Error()})
		}
	}

	write(w, apiErr.StatusCode, Response{Success: false, Error: apiErr, Meta: newMeta(r)})
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, r, http.StatusCreated, data)
}

// OK writes a 200 OK response.
func OK(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, r, http.StatusOK, data)
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
