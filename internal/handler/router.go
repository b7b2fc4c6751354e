package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Karan-Salvi/FormVista-sub000/internal/middleware"
	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
	"github.com/Karan-Salvi/FormVista-sub000/internal/service"
)

// Dependencies are the services and collaborators behind the /v1 routes.
type Dependencies struct {
	Forms     service.FormService
	Responses service.ResponseService
	Stats     service.StatsService
	Billing   service.BillingService

	Verifier  middleware.TokenVerifier
	Users     middleware.UserStore
	Limiter   middleware.Counter
	RateLimit middleware.RateLimitConfig
	Logger    *slog.Logger
}

// NewRouter builds the /v1 API router. Public routes are rate limited per
// client IP and authenticated routes per user.
func NewRouter(deps Dependencies) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	forms := NewFormHandler(deps.Forms)
	public := NewPublicHandler(deps.Forms, deps.Responses)
	responses := NewResponseHandler(deps.Responses)
	stats := NewStatsHandler(deps.Stats)
	billing := NewBillingHandler(deps.Billing)

	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, r, map[string]string{"name": "FormVista API"})
	})

	// Stripe authenticates its calls with the payload signature.
	r.Post("/webhooks/stripe", billing.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(deps.Limiter, deps.RateLimit, logger))

		r.Get("/public/forms/{slug}", public.GetForm)
		r.Post("/public/forms/{slug}/responses", public.Submit)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Verifier, deps.Users, logger))
		r.Use(middleware.RateLimit(deps.Limiter, deps.RateLimit, logger))

		r.Get("/me", Me)
		r.Get("/dashboard/stats", stats.Dashboard)

		r.Route("/forms", func(r chi.Router) {
			r.Get("/", forms.List)
			r.Post("/", forms.Create)

			r.Route("/{formID}", func(r chi.Router) {
				r.Get("/", forms.Get)
				r.Patch("/", forms.Update)
				r.Delete("/", forms.Delete)

				r.Get("/blocks", forms.ListBlocks)
				r.Post("/blocks", forms.AddBlock)
				r.Patch("/blocks/{blockID}", forms.UpdateBlock)
				r.Delete("/blocks/{blockID}", forms.DeleteBlock)

				r.Get("/responses", responses.List)
				r.Get("/responses/{responseID}", responses.Get)
				r.Patch("/responses/{responseID}", responses.Update)
				r.Delete("/responses/{responseID}", responses.Delete)

				r.Get("/stats", stats.FormStats)
			})
		})

		r.Mount("/billing", billing.Routes())
	})

	return r
}
