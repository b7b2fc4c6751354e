package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	"github.com/Karan-Salvi/FormVista-sub000/internal/payment"
	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/service"
)

func TestBillingHandler_CreateCheckout(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		body           any
		mockService    *mockBillingService
		expectedStatus int
	}{
		{
			name: "creates session",
			body: map[string]string{"plan": "pro"},
			mockService: &mockBillingService{
				createCheckoutFunc: func(ctx context.Context, uid uuid.UUID, req service.CheckoutRequest) (*payment.CheckoutSession, error) {
					assert.Equal(t, userID, uid)
					assert.Equal(t, models.PlanPro, req.Plan)
					return &payment.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.test/cs_test"}, nil
				},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "free is not purchasable",
			body:           map[string]string{"plan": "free"},
			mockService:    &mockBillingService{},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "plan required",
			body:           map[string]string{},
			mockService:    &mockBillingService{},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "already subscribed",
			body: map[string]string{"plan": "business"},
			mockService: &mockBillingService{
				createCheckoutFunc: func(ctx context.Context, uid uuid.UUID, req service.CheckoutRequest) (*payment.CheckoutSession, error) {
					return nil, apierrors.NewConflictError("an active subscription already exists")
				},
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "stripe unavailable",
			body: map[string]string{"plan": "pro"},
			mockService: &mockBillingService{
				createCheckoutFunc: func(ctx context.Context, uid uuid.UUID, req service.CheckoutRequest) (*payment.CheckoutSession, error) {
					return nil, apierrors.NewExternalServiceError("stripe", errors.New("timeout"))
				},
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBillingHandler(tt.mockService)
			rec := httptest.NewRecorder()
			h.CreateCheckout(rec, newTestRequest(t, http.MethodPost, "/v1/billing/checkout", tt.body, userID, nil))
			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestBillingHandler_Subscription(t *testing.T) {
	userID := uuid.New()
	h := NewBillingHandler(&mockBillingService{
		getSubscriptionFunc: func(ctx context.Context, uid uuid.UUID) (*service.SubscriptionInfo, error) {
			return &service.SubscriptionInfo{Plan: models.PlanFree, Status: models.SubscriptionActive}, nil
		},
		cancelSubscriptionFunc: func(ctx context.Context, uid uuid.UUID) (*service.SubscriptionInfo, error) {
			return &service.SubscriptionInfo{Plan: models.PlanPro, Status: models.SubscriptionActive, CancelAtPeriodEnd: true}, nil
		},
		listPaymentsFunc: func(ctx context.Context, uid uuid.UUID) ([]*models.Payment, error) {
			return []*models.Payment{}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.GetSubscription(rec, newTestRequest(t, http.MethodGet, "/", nil, userID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.CancelSubscription(rec, newTestRequest(t, http.MethodPost, "/", nil, userID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeEnvelope(t, rec).Message)

	rec = httptest.NewRecorder()
	h.ListPayments(rec, newTestRequest(t, http.MethodGet, "/", nil, userID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetSubscription(rec, newTestRequest(t, http.MethodGet, "/", nil, uuid.Nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBillingHandler_Webhook(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)

	tests := []struct {
		name           string
		signature      string
		mockService    *mockBillingService
		expectedStatus int
	}{
		{
			name:      "passes raw body and signature",
			signature: "t=1,v1=abc",
			mockService: &mockBillingService{
				handleWebhookFunc: func(ctx context.Context, p []byte, sig string) error {
					assert.Equal(t, payload, p)
					assert.Equal(t, "t=1,v1=abc", sig)
					return nil
				},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "invalid signature",
			signature: "t=1,v1=bad",
			mockService: &mockBillingService{
				handleWebhookFunc: func(ctx context.Context, p []byte, sig string) error {
					return apierrors.NewValidationError("signature", "invalid webhook signature")
				},
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "missing signature",
			mockService:    &mockBillingService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "processing failure asks for a retry",
			signature: "t=1,v1=abc",
			mockService: &mockBillingService{
				handleWebhookFunc: func(ctx context.Context, p []byte, sig string) error {
					return apierrors.NewDatabaseError(errors.New("connection reset"))
				},
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBillingHandler(tt.mockService)
			req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewReader(payload))
			if tt.signature != "" {
				req.Header.Set("Stripe-Signature", tt.signature)
			}
			rec := httptest.NewRecorder()

			h.Webhook(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestBillingHandler_Routes(t *testing.T) {
	assert.NotNil(t, NewBillingHandler(&mockBillingService{}).Routes())
}
