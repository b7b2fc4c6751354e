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

// AnalyticsRepository defines the interface for form counter operations.
type AnalyticsRepository interface {
	Get(ctx context.Context, formID uuid.UUID) (*models.FormAnalytics, error)
	Increment(ctx context.Context, formID uuid.UUID, day time.Time, views, submissions int64) error
	ListDaily(ctx context.Context, formID uuid.UUID, from, to time.Time) ([]*models.DailyStat, error)
	SumRange(ctx context.Context, formID uuid.UUID, from, to time.Time) (models.StatTotals, error)
	SumRangeByOwner(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (models.StatTotals, error)
	TotalsByOwner(ctx context.Context, ownerID uuid.UUID) (models.StatTotals, error)
}

type analyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new analytics repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepo{pool: pool}
}

// Get retrieves the lifetime counters of a form.
func (r *analyticsRepo) Get(ctx context.Context, formID uuid.UUID) (*models.FormAnalytics, error) {
	var a models.FormAnalytics
	err := r.pool.QueryRow(ctx, `
		SELECT form_id, total_views, total_submissions, updated_at
		FROM form_analytics WHERE form_id = $1`, formID,
	).Scan(&a.FormID, &a.TotalViews, &a.TotalSubmissions, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Increment adds to the lifetime counters and to the day's row. Both are
// upserts, so the first event of a day creates the row and later events
// on the same day add to it.
func (r *analyticsRepo) Increment(ctx context.Context, formID uuid.UUID, day time.Time, views, submissions int64) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO form_analytics (form_id, total_views, total_submissions)
		VALUES ($1, $2, $3)
		ON CONFLICT (form_id) DO UPDATE SET
			total_views = form_analytics.total_views + EXCLUDED.total_views,
			total_submissions = form_analytics.total_submissions + EXCLUDED.total_submissions,
			updated_at = NOW()`,
		formID, views, submissions)
	batch.Queue(`
		INSERT INTO daily_stats (id, form_id, date, views, submissions)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (form_id, date) DO UPDATE SET
			views = daily_stats.views + EXCLUDED.views,
			submissions = daily_stats.submissions + EXCLUDED.submissions,
			updated_at = NOW()`,
		uuid.New(), formID, truncateDay(day), views, submissions)

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListDaily lists a form's daily rows within [from, to], oldest first.
func (r *analyticsRepo) ListDaily(ctx context.Context, formID uuid.UUID, from, to time.Time) ([]*models.DailyStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, form_id, date, views, submissions
		FROM daily_stats
		WHERE form_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`, formID, truncateDay(from), truncateDay(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []*models.DailyStat{}
	for rows.Next() {
		var s models.DailyStat
		if err := rows.Scan(&s.ID, &s.FormID, &s.Date, &s.Views, &s.Submissions); err != nil {
			return nil, err
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// SumRange sums a form's daily rows within [from, to].
func (r *analyticsRepo) SumRange(ctx context.Context, formID uuid.UUID, from, to time.Time) (models.StatTotals, error) {
	var t models.StatTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(views), 0), COALESCE(SUM(submissions), 0)
		FROM daily_stats
		WHERE form_id = $1 AND date BETWEEN $2 AND $3`,
		formID, truncateDay(from), truncateDay(to),
	).Scan(&t.Views, &t.Submissions)
	return t, err
}

// SumRangeByOwner sums the daily rows of all of an owner's forms within [from, to].
func (r *analyticsRepo) SumRangeByOwner(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (models.StatTotals, error) {
	var t models.StatTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(d.views), 0), COALESCE(SUM(d.submissions), 0)
		FROM daily_stats d
		JOIN forms f ON f.id = d.form_id
		WHERE f.owner_id = $1 AND d.date BETWEEN $2 AND $3`,
		ownerID, truncateDay(from), truncateDay(to),
	).Scan(&t.Views, &t.Submissions)
	return t, err
}

// TotalsByOwner sums the lifetime counters of all of an owner's forms.
func (r *analyticsRepo) TotalsByOwner(ctx context.Context, ownerID uuid.UUID) (models.StatTotals, error) {
	var t models.StatTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(a.total_views), 0), COALESCE(SUM(a.total_submissions), 0)
		FROM form_analytics a
		JOIN forms f ON f.id = a.form_id
		WHERE f.owner_id = $1`, ownerID,
	).Scan(&t.Views, &t.Submissions)
	return t, err
}

// truncateDay returns midnight UTC of t's calendar day in UTC.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compile-time check to ensure analyticsRepo implements AnalyticsRepository.
var _ AnalyticsRepository = (*analyticsRepo)(nil)
