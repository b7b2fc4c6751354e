package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

const subscriptionColumns = `id, user_id, plan, stripe_subscription_id, stripe_customer_id, status,
	current_period_start, current_period_end, cancel_at_period_end, created_at, updated_at`

// SubscriptionRepository defines the interface for subscription data operations.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *models.Subscription) error
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
}

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepo{pool: pool}
}

func scanSubscription(r row) (*models.Subscription, error) {
	var s models.Subscription
	err := r.Scan(
		&s.ID,
		&s.UserID,
		&s.Plan,
		&s.StripeSubscriptionID,
		&s.StripeCustomerID,
		&s.Status,
		&s.CurrentPeriodStart,
		&s.CurrentPeriodEnd,
		&s.CancelAtPeriodEnd,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert creates the subscription or, when the provider subscription id is
// already known, overwrites its state. The stored row's id is read back.
func (r *subscriptionRepo) Upsert(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (id, user_id, plan, stripe_subscription_id, stripe_customer_id, status,
			current_period_start, current_period_end, cancel_at_period_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (stripe_subscription_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			status = EXCLUDED.status,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		sub.ID,
		sub.UserID,
		sub.Plan,
		sub.StripeSubscriptionID,
		sub.StripeCustomerID,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

// GetByStripeID retrieves a subscription by the provider's subscription id.
func (r *subscriptionRepo) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	sub, err := scanSubscription(r.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE stripe_subscription_id = $1`,
		stripeSubscriptionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

// GetLatestByUser retrieves the user's most recently created subscription.
func (r *subscriptionRepo) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	sub, err := scanSubscription(r.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

// Update overwrites the provider-mirrored state of a subscription.
func (r *subscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE subscriptions SET
			plan = $2, status = $3, current_period_start = $4, current_period_end = $5,
			cancel_at_period_end = $6, updated_at = NOW()
		WHERE id = $1`,
		sub.ID,
		sub.Plan,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
	)
	return err
}

// Compile-time check to ensure subscriptionRepo implements SubscriptionRepository.
var _ SubscriptionRepository = (*subscriptionRepo)(nil)
