// Package payment integrates the billing provider: outbound checkout and
// subscription calls, and verification of inbound signed events.
package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

// Event types the billing service dispatches on.
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventInvoicePaid          = "invoice.payment_succeeded"
	EventInvoicePaymentFailed = "invoice.payment_failed"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
)

// Provider is the billing provider as seen by the billing service.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	VerifyEvent(payload []byte, signature string) (*Event, error)
}

// CheckoutRequest asks for a hosted checkout page for a plan.
type CheckoutRequest struct {
	UserID     uuid.UUID
	Email      string
	CustomerID string
	Plan       models.Plan
}

// CheckoutSession is a created hosted checkout page.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Subscription is the provider's view of a subscription.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             models.SubscriptionStatus
	Plan               models.Plan
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
}

// CheckoutCompleted is the payload of a completed checkout.
type CheckoutCompleted struct {
	SessionID      string
	SubscriptionID string
	CustomerID     string
	UserID         uuid.UUID
	Plan           models.Plan
}

// Invoice is the payload of an invoice event.
type Invoice struct {
	ID             string
	SubscriptionID string
	CustomerID     string
	Amount         int64
	Currency       string
}

// Event is a verified inbound event. Exactly one of the typed payloads is
// set for the event types above; none is set for other types, or when
// DecodeErr is set.
type Event struct {
	ID      string
	Type    string
	Payload []byte

	Checkout     *CheckoutCompleted
	Invoice      *Invoice
	Subscription *Subscription

	// DecodeErr is set when the signature was valid but the object of a
	// known event type could not be decoded.
	DecodeErr error
}
