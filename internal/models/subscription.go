package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus mirrors the billing provider's subscription status.
type SubscriptionStatus string

const (
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
)

// Subscription mirrors a provider subscription for a user. Status changes
// only through inbound webhook events.
type Subscription struct {
	ID                   uuid.UUID          `json:"id" db:"id"`
	UserID               uuid.UUID          `json:"user_id" db:"user_id"`
	Plan                 Plan               `json:"plan" db:"plan"`
	StripeSubscriptionID string             `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	StripeCustomerID     string             `json:"-" db:"stripe_customer_id"`
	Status               SubscriptionStatus `json:"status" db:"status"`
	CurrentPeriodStart   *time.Time         `json:"current_period_start,omitempty" db:"current_period_start"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end,omitempty" db:"current_period_end"`
	CancelAtPeriodEnd    bool               `json:"cancel_at_period_end" db:"cancel_at_period_end"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}

// PaymentStatus is the outcome recorded for an invoice.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
)

// Payment is an append-only ledger row, one per paid invoice.
type Payment struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	UserID          uuid.UUID     `json:"user_id" db:"user_id"`
	SubscriptionID  uuid.UUID     `json:"subscription_id" db:"subscription_id"`
	StripeInvoiceID string        `json:"stripe_invoice_id" db:"stripe_invoice_id"`
	Amount          int64         `json:"amount" db:"amount"`
	Currency        string        `json:"currency" db:"currency"`
	Status          PaymentStatus `json:"status" db:"status"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// WebhookEvent is the append-only log of inbound provider events, keyed by
// the provider's event id.
type WebhookEvent struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	EventID     string          `json:"event_id" db:"event_id"`
	Type        string          `json:"type" db:"type"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	Processed   bool            `json:"processed" db:"processed"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at" db:"expires_at"`
}
