package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	"github.com/Karan-Salvi/FormVista-sub000/internal/payment"
	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/repository"
)

const (
	billingProvider = "stripe"
	paymentsLimit   = 50
)

// BillingService defines the interface for billing operations.
type BillingService interface {
	// Subscription management
	GetSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionInfo, error)
	CreateCheckout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*payment.CheckoutSession, error)
	CancelSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionInfo, error)

	// Payments
	ListPayments(ctx context.Context, userID uuid.UUID) ([]*models.Payment, error)

	// Webhooks
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	PruneWebhookEvents(ctx context.Context) (int64, error)
}

// CheckoutRequest is the request for starting a checkout.
type CheckoutRequest struct {
	Plan models.Plan `json:"plan" validate:"required,oneof=pro business"`
}

// SubscriptionInfo represents subscription details returned by the API.
type SubscriptionInfo struct {
	ID                 *uuid.UUID                `json:"id,omitempty"`
	Plan               models.Plan               `json:"plan"`
	Status             models.SubscriptionStatus `json:"status"`
	CurrentPeriodStart *time.Time                `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time                `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool                      `json:"cancel_at_period_end"`
}

type billingService struct {
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	payments      repository.PaymentRepository
	events        repository.WebhookEventRepository
	provider      payment.Provider
	retention     time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewBillingService creates a new billing service.
func NewBillingService(
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	payments repository.PaymentRepository,
	events repository.WebhookEventRepository,
	provider payment.Provider,
	retention time.Duration,
	logger *slog.Logger,
) BillingService {
	return &billingService{
		users:         users,
		subscriptions: subscriptions,
		payments:      payments,
		events:        events,
		provider:      provider,
		retention:     retention,
		logger:        loggerOrDefault(logger),
		now:           time.Now,
	}
}

// GetSubscription returns the user's latest subscription, or the user's
// plan when there has never been one.
func (s *billingService) GetSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionInfo, error) {
	sub, err := s.subscriptions.GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if sub != nil {
		return toSubscriptionInfo(sub), nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if user == nil {
		return nil, apierrors.NewNotFoundError("User")
	}
	return &SubscriptionInfo{Plan: user.Plan, Status: models.SubscriptionActive}, nil
}

// CreateCheckout starts a hosted checkout for a paid plan. The local
// subscription is created when the provider reports the completed checkout.
func (s *billingService) CreateCheckout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*payment.CheckoutSession, error) {
	if req.Plan != models.PlanPro && req.Plan != models.PlanBusiness {
		return nil, apierrors.NewValidationError("plan", "plan must be pro or business")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if user == nil {
		return nil, apierrors.NewNotFoundError("User")
	}

	current, err := s.subscriptions.GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if current != nil && current.Plan == req.Plan && isLive(current.Status) {
		return nil, apierrors.NewConflictError(fmt.Sprintf("Already subscribed to the %s plan", req.Plan))
	}

	checkout := payment.CheckoutRequest{
		UserID: user.ID,
		Email:  user.Email,
		Plan:   req.Plan,
	}
	if user.StripeCustomerID != nil {
		checkout.CustomerID = *user.StripeCustomerID
	}

	session, err := s.provider.CreateCheckoutSession(ctx, checkout)
	if err != nil {
		return nil, apierrors.NewExternalServiceError(billingProvider, err)
	}

	s.logger.Info("checkout session created",
		slog.String("user_id", userID.String()),
		slog.String("plan", string(req.Plan)),
		slog.String("session_id", session.ID),
	)
	return session, nil
}

// CancelSubscription asks the provider to cancel at period end. Local state
// changes only when the provider's event arrives.
func (s *billingService) CancelSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionInfo, error) {
	sub, err := s.subscriptions.GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if sub == nil || !isLive(sub.Status) {
		return nil, apierrors.NewNotFoundError("Subscription")
	}

	if _, err := s.provider.CancelSubscription(ctx, sub.StripeSubscriptionID); err != nil {
		return nil, apierrors.NewExternalServiceError(billingProvider, err)
	}

	s.logger.Info("subscription cancellation requested",
		slog.String("user_id", userID.String()),
		slog.String("subscription_id", sub.ID.String()),
	)
	return toSubscriptionInfo(sub), nil
}

// ListPayments returns the user's most recent payments.
func (s *billingService) ListPayments(ctx context.Context, userID uuid.UUID) ([]*models.Payment, error) {
	payments, err := s.payments.ListByUser(ctx, userID, paymentsLimit)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	return payments, nil
}

// HandleWebhook verifies and applies a provider event. Each event id is
// applied at most once; an event whose earlier delivery failed midway is
// applied again.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.VerifyEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return apierrors.NewValidationError("signature", "invalid webhook signature")
		}
		return apierrors.NewBadRequestError("Malformed webhook event").WithCause(err)
	}

	now := s.now().UTC()
	inserted, err := s.events.Insert(ctx, &models.WebhookEvent{
		EventID:   event.ID,
		Type:      event.Type,
		Payload:   event.Payload,
		ExpiresAt: now.Add(s.retention),
	})
	if err != nil {
		return apierrors.NewDatabaseError(err)
	}
	if !inserted {
		existing, err := s.events.GetByEventID(ctx, event.ID)
		if err != nil {
			return apierrors.NewDatabaseError(err)
		}
		if existing != nil && existing.Processed {
			s.logger.Info("duplicate webhook event ignored",
				slog.String("event_id", event.ID),
				slog.String("type", event.Type),
			)
			return nil
		}
	}

	if event.DecodeErr != nil {
		s.logger.Error("webhook event undecodable",
			slog.String("event_id", event.ID),
			slog.String("type", event.Type),
			slog.String("error", event.DecodeErr.Error()),
		)
		return apierrors.NewBadRequestError("Malformed webhook event").WithCause(event.DecodeErr)
	}

	if err := s.dispatch(ctx, event); err != nil {
		s.logger.Error("webhook event handling failed",
			slog.String("event_id", event.ID),
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := s.events.MarkProcessed(ctx, event.ID); err != nil {
		return apierrors.NewDatabaseError(err)
	}
	return nil
}

func (s *billingService) dispatch(ctx context.Context, event *payment.Event) error {
	switch event.Type {
	case payment.EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event.Checkout)
	case payment.EventInvoicePaid:
		return s.handleInvoicePaid(ctx, event.Invoice)
	case payment.EventInvoicePaymentFailed:
		return s.handleInvoiceFailed(ctx, event.Invoice)
	case payment.EventSubscriptionUpdated:
		return s.handleSubscriptionUpdated(ctx, event.Subscription)
	case payment.EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, event.Subscription)
	default:
		s.logger.Debug("webhook event type ignored", slog.String("type", event.Type))
		return nil
	}
}

func (s *billingService) handleCheckoutCompleted(ctx context.Context, c *payment.CheckoutCompleted) error {
	if c == nil || c.SubscriptionID == "" || c.UserID == uuid.Nil {
		s.logger.Warn("checkout event without subscription or user")
		return nil
	}

	user, err := s.users.GetByID(ctx, c.UserID)
	if err != nil {
		return apierrors.NewDatabaseError(err)
	}
	if user == nil {
		s.logger.Warn("checkout event for unknown user", slog.String("user_id", c.UserID.String()))
		return nil
	}

	remote, err := s.provider.GetSubscription(ctx, c.SubscriptionID)
	if err != nil {
		return apierrors.NewExternalServiceError(billingProvider, err)
	}

	plan := remote.Plan
	if !plan.Valid() || plan == models.PlanFree {
		plan = c.Plan
	}
	if !plan.Valid() || plan == models.PlanFree {
		s.logger.Warn("checkout event with unknown plan", slog.String("subscription_id", c.SubscriptionID))
		return nil
	}

	status := remote.Status
	if status == "" {
		status = models.SubscriptionActive
	}
	customerID := remote.CustomerID
	if customerID == "" {
		customerID = c.CustomerID
	}

	sub := &models.Subscription{
		UserID:               user.ID,
		Plan:                 plan,
		StripeSubscriptionID: c.SubscriptionID,
		StripeCustomerID:     customerID,
		Status:               status,
		CurrentPeriodStart:   remote.CurrentPeriodStart,
		CurrentPeriodEnd:     remote.CurrentPeriodEnd,
		CancelAtPeriodEnd:    remote.CancelAtPeriodEnd,
	}
	if err := s.subscriptions.Upsert(ctx, sub); err != nil {
		return apierrors.NewDatabaseError(err)
	}
	if err := s.users.UpdatePlan(ctx, user.ID, plan); err != nil {
		return apierrors.NewDatabaseError(err)
	}
	if customerID != "" {
		if err := s.users.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
			return apierrors.NewDatabaseError(err)
		}
	}

	s.logger.Info("subscription activated",
		slog.String("user_id", user.ID.String()),
		slog.String("plan", string(plan)),
	)
	return nil
}

func (s *billingService) handleInvoicePaid(ctx context.Context, inv *payment.Invoice) error {
	if inv == nil {
		return nil
	}
	sub, err := s.localSubscription(ctx, inv.SubscriptionID)
	if err != nil || sub == nil {
		return err
	}

	_, err = s.payments.Create(ctx, &models.Payment{
		UserID:          sub.UserID,
		SubscriptionID:  sub.ID,
		StripeInvoiceID: inv.ID,
		Amount:          inv.Amount,
		Currency:        inv.Currency,
		Status:          models.PaymentSucceeded,
	})
	if err != nil {
		return apierrors.NewDatabaseError(err)
	}
	return nil
}

func (s *billingService) handleInvoiceFailed(ctx context.Context, inv *payment.Invoice) error {
	if inv == nil {
		return nil
	}
	sub, err := s.localSubscription(ctx, inv.SubscriptionID)
	if err != nil || sub == nil {
		return err
	}
	if sub.Status == models.SubscriptionCanceled {
		return nil
	}

	sub.Status = models.SubscriptionPastDue
	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return apierrors.NewDatabaseError(err)
	}

	s.logger.Warn("subscription payment failed",
		slog.String("user_id", sub.UserID.String()),
		slog.String("invoice_id", inv.ID),
	)
	return nil
}

func (s *billingService) handleSubscriptionUpdated(ctx context.Context, remote *payment.Subscription) error {
	if remote == nil {
		return nil
	}
	sub, err := s.localSubscription(ctx, remote.ID)
	if err != nil || sub == nil {
		return err
	}

	if remote.Status != "" {
		sub.Status = remote.Status
	}
	sub.CurrentPeriodStart = remote.CurrentPeriodStart
	sub.CurrentPeriodEnd = remote.CurrentPeriodEnd
	sub.CancelAtPeriodEnd = remote.CancelAtPeriodEnd
	planChanged := remote.Plan.Valid() && remote.Plan != models.PlanFree && remote.Plan != sub.Plan
	if planChanged {
		sub.Plan = remote.Plan
	}

	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return apierrors.NewDatabaseError(err)
	}
	if planChanged && isLive(sub.Status) {
		if err := s.users.UpdatePlan(ctx, sub.UserID, sub.Plan); err != nil {
			return apierrors.NewDatabaseError(err)
		}
	}
	return nil
}

func (s *billingService) handleSubscriptionDeleted(ctx context.Context, remote *payment.Subscription) error {
	if remote == nil {
		return nil
	}
	sub, err := s.localSubscription(ctx, remote.ID)
	if err != nil || sub == nil {
		return err
	}

	sub.Status = models.SubscriptionCanceled
	sub.CancelAtPeriodEnd = remote.CancelAtPeriodEnd
	if remote.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = remote.CurrentPeriodEnd
	}
	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return apierrors.NewDatabaseError(err)
	}
	if err := s.users.UpdatePlan(ctx, sub.UserID, models.PlanFree); err != nil {
		return apierrors.NewDatabaseError(err)
	}

	s.logger.Info("subscription canceled", slog.String("user_id", sub.UserID.String()))
	return nil
}

// localSubscription finds the stored subscription for a provider id.
// Events for unknown subscriptions are acknowledged and dropped.
func (s *billingService) localSubscription(ctx context.Context, stripeID string) (*models.Subscription, error) {
	if stripeID == "" {
		return nil, nil
	}
	sub, err := s.subscriptions.GetByStripeID(ctx, stripeID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if sub == nil {
		s.logger.Warn("webhook event for unknown subscription", slog.String("subscription_id", stripeID))
	}
	return sub, nil
}

// PruneWebhookEvents deletes logged events past their retention.
func (s *billingService) PruneWebhookEvents(ctx context.Context) (int64, error) {
	n, err := s.events.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, apierrors.NewDatabaseError(err)
	}
	return n, nil
}

func isLive(status models.SubscriptionStatus) bool {
	switch status {
	case models.SubscriptionActive, models.SubscriptionTrialing, models.SubscriptionPastDue:
		return true
	}
	return false
}

func toSubscriptionInfo(sub *models.Subscription) *SubscriptionInfo {
	id := sub.ID
	return &SubscriptionInfo{
		ID:                 &id,
		Plan:               sub.Plan,
		Status:             sub.Status,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
}

// Compile-time check to ensure billingService implements BillingService.
var _ BillingService = (*billingService)(nil)
