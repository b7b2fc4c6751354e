package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
	"github.com/Karan-Salvi/FormVista-sub000/internal/service"
)

// maxWebhookBytes matches the payload limit Stripe documents for events.
const maxWebhookBytes = 65536

// BillingHandler handles subscription, checkout and Stripe webhook requests.
type BillingHandler struct {
	billingService service.BillingService
	validate       *validator.Validate
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(billingService service.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		validate:       newValidator(),
	}
}

// Routes returns a chi router with the authenticated billing routes.
func (h *BillingHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/subscription", h.GetSubscription)
	r.Post("/checkout", h.CreateCheckout)
	r.Post("/cancel", h.CancelSubscription)
	r.Get("/payments", h.ListPayments)

	return r
}

// GetSubscription handles GET /v1/billing/subscription
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	sub, err := h.billingService.GetSubscription(r.Context(), userID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, sub)
}

// CreateCheckout handles POST /v1/billing/checkout
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req service.CheckoutRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	session, err := h.billingService.CreateCheckout(r.Context(), userID, req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.Created(w, r, session)
}

// CancelSubscription handles POST /v1/billing/cancel
func (h *BillingHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	sub, err := h.billingService.CancelSubscription(r.Context(), userID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSONWithMessage(w, r, http.StatusOK, "Subscription will be canceled at the end of the billing period", sub)
}

// ListPayments handles GET /v1/billing/payments
func (h *BillingHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	payments, err := h.billingService.ListPayments(r.Context(), userID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, payments)
}

// Webhook handles POST /v1/webhooks/stripe. The raw body is passed on
// untouched because the signature covers the exact bytes.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		response.Error(w, r, apierrors.NewBadRequestError("Missing Stripe-Signature header"))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		response.Error(w, r, apierrors.NewBadRequestError("Failed to read request body"))
		return
	}

	if err := h.billingService.HandleWebhook(r.Context(), payload, signature); err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, map[string]bool{"received": true})
}
