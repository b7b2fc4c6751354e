package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Karan-Salvi/FormVista-sub000/internal/auth"
	"github.com/Karan-Salvi/FormVista-sub000/internal/middleware"
	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	"github.com/Karan-Salvi/FormVista-sub000/internal/payment"
	"github.com/Karan-Salvi/FormVista-sub000/internal/service"
)

type mockFormService struct {
	createFunc      func(ctx context.Context, ownerID uuid.UUID, req service.CreateFormRequest) (*models.FormDetail, error)
	getFunc         func(ctx context.Context, ownerID, formID uuid.UUID) (*models.FormDetail, error)
	getPublicFunc   func(ctx context.Context, slug string) (*models.PublicForm, error)
	listFunc        func(ctx context.Context, ownerID uuid.UUID) ([]*models.Form, error)
	updateFunc      func(ctx context.Context, ownerID, formID uuid.UUID, req service.UpdateFormRequest) (*models.FormDetail, error)
	deleteFunc      func(ctx context.Context, ownerID, formID uuid.UUID) error
	listBlocksFunc  func(ctx context.Context, ownerID, formID uuid.UUID) ([]*models.Block, error)
	addBlockFunc    func(ctx context.Context, ownerID, formID uuid.UUID, req service.BlockInput) (*models.Block, error)
	updateBlockFunc func(ctx context.Context, ownerID, formID, blockID uuid.UUID, req service.UpdateBlockRequest) (*models.Block, error)
	deleteBlockFunc func(ctx context.Context, ownerID, formID, blockID uuid.UUID) error
}

var _ service.FormService = (*mockFormService)(nil)

func (m *mockFormService) Create(ctx context.Context, ownerID uuid.UUID, req service.CreateFormRequest) (*models.FormDetail, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, ownerID, req)
	}
	return nil, nil
}

func (m *mockFormService) Get(ctx context.Context, ownerID, formID uuid.UUID) (*models.FormDetail, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, ownerID, formID)
	}
	return nil, nil
}

func (m *mockFormService) GetPublic(ctx context.Context, slug string) (*models.PublicForm, error) {
	if m.getPublicFunc != nil {
		return m.getPublicFunc(ctx, slug)
	}
	return nil, nil
}

func (m *mockFormService) List(ctx context.Context, ownerID uuid.UUID) ([]*models.Form, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockFormService) Update(ctx context.Context, ownerID, formID uuid.UUID, req service.UpdateFormRequest) (*models.FormDetail, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, ownerID, formID, req)
	}
	return nil, nil
}

func (m *mockFormService) Delete(ctx context.Context, ownerID, formID uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ownerID, formID)
	}
	return nil
}

func (m *mockFormService) ListBlocks(ctx context.Context, ownerID, formID uuid.UUID) ([]*models.Block, error) {
	if m.listBlocksFunc != nil {
		return m.listBlocksFunc(ctx, ownerID, formID)
	}
	return nil, nil
}

func (m *mockFormService) AddBlock(ctx context.Context, ownerID, formID uuid.UUID, req service.BlockInput) (*models.Block, error) {
	if m.addBlockFunc != nil {
		return m.addBlockFunc(ctx, ownerID, formID, req)
	}
	return nil, nil
}

func (m *mockFormService) UpdateBlock(ctx context.Context, ownerID, formID, blockID uuid.UUID, req service.UpdateBlockRequest) (*models.Block, error) {
	if m.updateBlockFunc != nil {
		return m.updateBlockFunc(ctx, ownerID, formID, blockID, req)
	}
	return nil, nil
}

func (m *mockFormService) DeleteBlock(ctx context.Context, ownerID, formID, blockID uuid.UUID) error {
	if m.deleteBlockFunc != nil {
		return m.deleteBlockFunc(ctx, ownerID, formID, blockID)
	}
	return nil
}

type mockResponseService struct {
	submitFunc     func(ctx context.Context, slug string, req service.SubmitResponseRequest) (*models.FormResponse, error)
	listFunc       func(ctx context.Context, ownerID, formID uuid.UUID, page, limit int) (*models.ResponsePage, error)
	getFunc        func(ctx context.Context, ownerID, formID, responseID uuid.UUID) (*models.FormResponse, error)
	updateMetaFunc func(ctx context.Context, ownerID, formID, responseID uuid.UUID, req service.UpdateResponseRequest) (*models.FormResponse, error)
	deleteFunc     func(ctx context.Context, ownerID, formID, responseID uuid.UUID) error
}

var _ service.ResponseService = (*mockResponseService)(nil)

func (m *mockResponseService) Submit(ctx context.Context, slug string, req service.SubmitResponseRequest) (*models.FormResponse, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, slug, req)
	}
	return nil, nil
}

func (m *mockResponseService) List(ctx context.Context, ownerID, formID uuid.UUID, page, limit int) (*models.ResponsePage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, ownerID, formID, page, limit)
	}
	return nil, nil
}

func (m *mockResponseService) Get(ctx context.Context, ownerID, formID, responseID uuid.UUID) (*models.FormResponse, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, ownerID, formID, responseID)
	}
	return nil, nil
}

func (m *mockResponseService) UpdateMeta(ctx context.Context, ownerID, formID, responseID uuid.UUID, req service.UpdateResponseRequest) (*models.FormResponse, error) {
	if m.updateMetaFunc != nil {
		return m.updateMetaFunc(ctx, ownerID, formID, responseID, req)
	}
	return nil, nil
}

func (m *mockResponseService) Delete(ctx context.Context, ownerID, formID, responseID uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ownerID, formID, responseID)
	}
	return nil
}

type mockStatsService struct {
	formStatsFunc func(ctx context.Context, ownerID, formID uuid.UUID) (*service.FormStats, error)
	dashboardFunc func(ctx context.Context, ownerID uuid.UUID) (*service.DashboardStats, error)
}

var _ service.StatsService = (*mockStatsService)(nil)

func (m *mockStatsService) FormStats(ctx context.Context, ownerID, formID uuid.UUID) (*service.FormStats, error) {
	if m.formStatsFunc != nil {
		return m.formStatsFunc(ctx, ownerID, formID)
	}
	return nil, nil
}

func (m *mockStatsService) Dashboard(ctx context.Context, ownerID uuid.UUID) (*service.DashboardStats, error) {
	if m.dashboardFunc != nil {
		return m.dashboardFunc(ctx, ownerID)
	}
	return nil, nil
}

type mockBillingService struct {
	getSubscriptionFunc    func(ctx context.Context, userID uuid.UUID) (*service.SubscriptionInfo, error)
	createCheckoutFunc     func(ctx context.Context, userID uuid.UUID, req service.CheckoutRequest) (*payment.CheckoutSession, error)
	cancelSubscriptionFunc func(ctx context.Context, userID uuid.UUID) (*service.SubscriptionInfo, error)
	listPaymentsFunc       func(ctx context.Context, userID uuid.UUID) ([]*models.Payment, error)
	handleWebhookFunc      func(ctx context.Context, payload []byte, signature string) error
	pruneFunc              func(ctx context.Context) (int64, error)
}

var _ service.BillingService = (*mockBillingService)(nil)

func (m *mockBillingService) GetSubscription(ctx context.Context, userID uuid.UUID) (*service.SubscriptionInfo, error) {
	if m.getSubscriptionFunc != nil {
		return m.getSubscriptionFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockBillingService) CreateCheckout(ctx context.Context, userID uuid.UUID, req service.CheckoutRequest) (*payment.CheckoutSession, error) {
	if m.createCheckoutFunc != nil {
		return m.createCheckoutFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *mockBillingService) CancelSubscription(ctx context.Context, userID uuid.UUID) (*service.SubscriptionInfo, error) {
	if m.cancelSubscriptionFunc != nil {
		return m.cancelSubscriptionFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockBillingService) ListPayments(ctx context.Context, userID uuid.UUID) ([]*models.Payment, error) {
	if m.listPaymentsFunc != nil {
		return m.listPaymentsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockBillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if m.handleWebhookFunc != nil {
		return m.handleWebhookFunc(ctx, payload, signature)
	}
	return nil
}

func (m *mockBillingService) PruneWebhookEvents(ctx context.Context) (int64, error) {
	if m.pruneFunc != nil {
		return m.pruneFunc(ctx)
	}
	return 0, nil
}

// stubVerifier accepts the token "valid" for a fixed user.
type stubVerifier struct {
	userID uuid.UUID
}

func (v stubVerifier) Verify(token string) (*auth.Claims, error) {
	if token != "valid" {
		return nil, errors.New("bad token")
	}
	c := &auth.Claims{Email: "ada@example.com", Name: "Ada"}
	c.Subject = v.userID.String()
	return c, nil
}

type stubUsers struct{}

func (stubUsers) Upsert(ctx context.Context, user *models.User) error {
	user.Plan = models.PlanFree
	return nil
}

// stubCounter counts in memory and never fails.
type stubCounter struct {
	counts map[string]int64
}

func (c *stubCounter) IncrWithExpire(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[key]++
	return c.counts[key], nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// newTestRequest builds a request with chi URL params and, when userID is
// set, an authenticated user in the context.
func newTestRequest(t *testing.T, method, path string, body any, userID uuid.UUID, params map[string]string) *http.Request {
	t.Helper()

	var reqBody []byte
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = []byte(b)
	default:
		var err error
		reqBody, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if userID != uuid.Nil {
		ctx = middleware.WithUser(ctx, &models.User{ID: userID, Plan: models.PlanFree})
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}
