package middleware

import (
	"net/http"
	"time"

	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
)

// Timing records when handling started so responses can report their
// duration in meta.
func Timing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := response.WithStart(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
