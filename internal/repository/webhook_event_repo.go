package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
)

// WebhookEventRepository defines the interface for the inbound event log.
type WebhookEventRepository interface {
	Insert(ctx context.Context, event *models.WebhookEvent) (bool, error)
	GetByEventID(ctx context.Context, eventID string) (*models.WebhookEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type webhookEventRepo struct {
	pool *pgxpool.Pool
}

// NewWebhookEventRepository creates a new webhook event repository.
func NewWebhookEventRepository(pool *pgxpool.Pool) WebhookEventRepository {
	return &webhookEventRepo{pool: pool}
}

// Insert logs an event. It reports false without error when the provider
// event id was already logged.
func (r *webhookEventRepo) Insert(ctx context.Context, event *models.WebhookEvent) (bool, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO webhook_events (id, event_id, type, payload, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING created_at`,
		event.ID,
		event.EventID,
		event.Type,
		event.Payload,
		event.ExpiresAt,
	).Scan(&event.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByEventID retrieves a logged event by the provider's event id.
func (r *webhookEventRepo) GetByEventID(ctx context.Context, eventID string) (*models.WebhookEvent, error) {
	var e models.WebhookEvent
	err := r.pool.QueryRow(ctx, `
		SELECT id, event_id, type, payload, processed, processed_at, created_at, expires_at
		FROM webhook_events WHERE event_id = $1`, eventID,
	).Scan(
		&e.ID,
		&e.EventID,
		&e.Type,
		&e.Payload,
		&e.Processed,
		&e.ProcessedAt,
		&e.CreatedAt,
		&e.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// MarkProcessed flags an event as dispatched.
func (r *webhookEventRepo) MarkProcessed(ctx context.Context, eventID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE webhook_events SET processed = TRUE, processed_at = NOW()
		WHERE event_id = $1`, eventID)
	return err
}

// DeleteExpired prunes events whose retention window has passed.
func (r *webhookEventRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM webhook_events WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Compile-time check to ensure webhookEventRepo implements WebhookEventRepository.
var _ WebhookEventRepository = (*webhookEventRepo)(nil)
