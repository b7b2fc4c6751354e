package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

// PaymentRepository defines the interface for the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Payment, error)
}

type paymentRepo struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepo{pool: pool}
}

// Create appends a ledger row. It reports false without error when a row
// for the same provider invoice already exists.
func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) (bool, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payments (id, user_id, subscription_id, stripe_invoice_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stripe_invoice_id) DO NOTHING
		RETURNING created_at`,
		payment.ID,
		payment.UserID,
		payment.SubscriptionID,
		payment.StripeInvoiceID,
		payment.Amount,
		payment.Currency,
		payment.Status,
	).Scan(&payment.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser lists a user's payments, newest first.
func (r *paymentRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, subscription_id, stripe_invoice_id, amount, currency, status, created_at
		FROM payments WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.SubscriptionID,
			&p.StripeInvoiceID,
			&p.Amount,
			&p.Currency,
			&p.Status,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// Compile-time check to ensure paymentRepo implements PaymentRepository.
var _ PaymentRepository = (*paymentRepo)(nil)
