package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Karan-Salvi/FormVista-sub000/internal/config"
	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

// ErrInvalidSignature is returned when an inbound event fails verification.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// Stripe is a Provider backed by the Stripe API. It holds its own client,
// so the package-level stripe.Key is never set.
type Stripe struct {
	api    *client.API
	config config.StripeConfig
}

// NewStripe creates a Stripe provider. backends may be nil to use the
// default Stripe endpoints.
func NewStripe(cfg config.StripeConfig, backends *stripe.Backends) *Stripe {
	return &Stripe{
		api:    client.New(cfg.SecretKey, backends),
		config: cfg,
	}
}

// CreateCheckoutSession creates a subscription-mode checkout session. The
// user id and plan travel with the session so the completion event can be
// attributed.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	priceID := s.priceForPlan(req.Plan)
	if priceID == "" {
		return nil, fmt.Errorf("no price configured for plan %q", req.Plan)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(req.UserID.String()),
		SuccessURL:        stripe.String(s.config.SuccessURL),
		CancelURL:         stripe.String(s.config.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"user_id": req.UserID.String(),
				"plan":    string(req.Plan),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.UserID.String())
	params.AddMetadata("plan", string(req.Plan))

	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// GetSubscription retrieves a subscription.
func (s *Stripe) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := s.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, err
	}
	return s.toSubscription(sub), nil
}

// CancelSubscription asks Stripe to cancel at the end of the billing
// period. Local state changes when the resulting event arrives.
func (s *Stripe) CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	sub, err := s.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, err
	}
	return s.toSubscription(sub), nil
}

// VerifyEvent checks the signature header against the webhook secret and
// decodes the event's object for the handled event types.
func (s *Stripe) VerifyEvent(payload []byte, signature string) (*Event, error) {
	if s.config.WebhookSecret == "" {
		return nil, errors.New("webhook secret not configured")
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		s.config.WebhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{
		ID:      event.ID,
		Type:    string(event.Type),
		Payload: payload,
	}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			out.DecodeErr = fmt.Errorf("decode checkout session: %w", err)
			return out, nil
		}
		out.Checkout = toCheckoutCompleted(&sess)

	case EventInvoicePaid, EventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			out.DecodeErr = fmt.Errorf("decode invoice: %w", err)
			return out, nil
		}
		out.Invoice = toInvoice(&inv)

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			out.DecodeErr = fmt.Errorf("decode subscription: %w", err)
			return out, nil
		}
		out.Subscription = s.toSubscription(&sub)
	}

	return out, nil
}

func (s *Stripe) priceForPlan(plan models.Plan) string {
	switch plan {
	case models.PlanPro:
		return s.config.ProPriceID
	case models.PlanBusiness:
		return s.config.BusinessPriceID
	}
	return ""
}

// planForPrice converts a Stripe price ID to a plan tier.
func (s *Stripe) planForPrice(priceID string) models.Plan {
	switch {
	case priceID == "":
		return ""
	case priceID == s.config.ProPriceID:
		return models.PlanPro
	case priceID == s.config.BusinessPriceID:
		return models.PlanBusiness
	}
	return ""
}

func (s *Stripe) toSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:                 sub.ID,
		Status:             toStatus(sub.Status),
		CurrentPeriodStart: unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.Plan = s.planForPrice(sub.Items.Data[0].Price.ID)
	}
	if out.Plan == "" {
		if p := models.Plan(sub.Metadata["plan"]); p.Valid() {
			out.Plan = p
		}
	}
	return out
}

func toCheckoutCompleted(sess *stripe.CheckoutSession) *CheckoutCompleted {
	out := &CheckoutCompleted{SessionID: sess.ID}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}

	ref := sess.ClientReferenceID
	if ref == "" {
		ref = sess.Metadata["user_id"]
	}
	if id, err := uuid.Parse(ref); err == nil {
		out.UserID = id
	}
	if p := models.Plan(sess.Metadata["plan"]); p.Valid() {
		out.Plan = p
	}
	return out
}

func toInvoice(inv *stripe.Invoice) *Invoice {
	out := &Invoice{
		ID:       inv.ID,
		Amount:   inv.AmountPaid,
		Currency: string(inv.Currency),
	}
	if inv.Subscription != nil {
		out.SubscriptionID = inv.Subscription.ID
	}
	if inv.Customer != nil {
		out.CustomerID = inv.Customer.ID
	}
	return out
}

// toStatus folds Stripe's statuses into the local state machine.
func toStatus(status stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusIncompleteExpired:
		return models.SubscriptionCanceled
	case stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionPastDue
	}
	return models.SubscriptionStatus(status)
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// Compile-time check to ensure Stripe implements Provider.
var _ Provider = (*Stripe)(nil)
