package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Karan-Salvi/FormVista-sub000/internal/auth"
	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserStore records users seen in verified tokens.
type UserStore interface {
	Upsert(ctx context.Context, user *models.User) error
}

// Auth returns a middleware that requires a valid bearer token. The user
// named by the token is created or refreshed on every request and stored
// in the request context.
func Auth(verifier TokenVerifier, users UserStore, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Error(w, r, apierrors.ErrUnauthorized)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("bearer token rejected", slog.String("error", err.Error()))
				response.Error(w, r, apierrors.ErrUnauthorized.WithMessage("Invalid or expired token"))
				return
			}

			user := &models.User{
				ID:    claims.UserID(),
				Email: claims.Email,
				Name:  claims.Name,
			}
			if err := users.Upsert(r.Context(), user); err != nil {
				response.Error(w, r, apierrors.NewDatabaseError(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
