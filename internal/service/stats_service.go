package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/repository"
)

// statsWindowDays is the length of the trailing and prior trend windows.
const statsWindowDays = 7

// StatsService defines the interface for analytics reads.
type StatsService interface {
	FormStats(ctx context.Context, ownerID, formID uuid.UUID) (*FormStats, error)
	Dashboard(ctx context.Context, ownerID uuid.UUID) (*DashboardStats, error)
}

// WindowStats aggregates counters over an inclusive range of UTC days.
type WindowStats struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Views          int64     `json:"views"`
	Submissions    int64     `json:"submissions"`
	ConversionRate float64   `json:"conversion_rate"`
}

// Trend is the difference between the current and previous windows.
type Trend struct {
	Views          int64   `json:"views"`
	Submissions    int64   `json:"submissions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// FormStats is the analytics summary of one form.
type FormStats struct {
	FormID           uuid.UUID           `json:"form_id"`
	TotalViews       int64               `json:"total_views"`
	TotalSubmissions int64               `json:"total_submissions"`
	ConversionRate   float64             `json:"conversion_rate"`
	Current          WindowStats         `json:"current"`
	Previous         WindowStats         `json:"previous"`
	Trend            Trend               `json:"trend"`
	Daily            []*models.DailyStat `json:"daily"`
}

// DashboardStats is the analytics summary across all of a user's forms.
type DashboardStats struct {
	TotalForms       int         `json:"total_forms"`
	PublishedForms   int         `json:"published_forms"`
	TotalViews       int64       `json:"total_views"`
	TotalSubmissions int64       `json:"total_submissions"`
	ConversionRate   float64     `json:"conversion_rate"`
	Current          WindowStats `json:"current"`
	Previous         WindowStats `json:"previous"`
	Trend            Trend       `json:"trend"`
}

type statsService struct {
	forms     repository.FormRepository
	analytics repository.AnalyticsRepository
	now       func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(forms repository.FormRepository, analytics repository.AnalyticsRepository) StatsService {
	return &statsService{
		forms:     forms,
		analytics: analytics,
		now:       time.Now,
	}
}

// FormStats returns lifetime totals, the daily series of the last two
// windows and the trend between them.
func (s *statsService) FormStats(ctx context.Context, ownerID, formID uuid.UUID) (*FormStats, error) {
	if _, err := ownedForm(ctx, s.forms, ownerID, formID); err != nil {
		return nil, err
	}

	totals, err := s.analytics.Get(ctx, formID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	if totals == nil {
		totals = &models.FormAnalytics{FormID: formID}
	}

	cur, prev := windows(s.now())

	curTotals, err := s.analytics.SumRange(ctx, formID, cur.From, cur.To)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	prevTotals, err := s.analytics.SumRange(ctx, formID, prev.From, prev.To)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	daily, err := s.analytics.ListDaily(ctx, formID, prev.From, cur.To)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}

	cur = cur.with(curTotals)
	prev = prev.with(prevTotals)

	return &FormStats{
		FormID:           formID,
		TotalViews:       totals.TotalViews,
		TotalSubmissions: totals.TotalSubmissions,
		ConversionRate:   conversionRate(totals.TotalViews, totals.TotalSubmissions),
		Current:          cur,
		Previous:         prev,
		Trend:            trend(cur, prev),
		Daily:            daily,
	}, nil
}

// Dashboard returns totals and trends summed over every form of the user.
func (s *statsService) Dashboard(ctx context.Context, ownerID uuid.UUID) (*DashboardStats, error) {
	total, published, err := s.forms.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	totals, err := s.analytics.TotalsByOwner(ctx, ownerID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}

	cur, prev := windows(s.now())

	curTotals, err := s.analytics.SumRangeByOwner(ctx, ownerID, cur.From, cur.To)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}
	prevTotals, err := s.analytics.SumRangeByOwner(ctx, ownerID, prev.From, prev.To)
	if err != nil {
		return nil, apierrors.NewDatabaseError(err)
	}

	cur = cur.with(curTotals)
	prev = prev.with(prevTotals)

	return &DashboardStats{
		TotalForms:       total,
		PublishedForms:   published,
		TotalViews:       totals.Views,
		TotalSubmissions: totals.Submissions,
		ConversionRate:   conversionRate(totals.Views, totals.Submissions),
		Current:          cur,
		Previous:         prev,
		Trend:            trend(cur, prev),
	}, nil
}

// windows returns the trailing window ending today and the window of equal
// length before it. Days are UTC.
func windows(now time.Time) (current, previous WindowStats) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	current.To = today
	current.From = today.AddDate(0, 0, -(statsWindowDays - 1))
	previous.To = current.From.AddDate(0, 0, -1)
	previous.From = previous.To.AddDate(0, 0, -(statsWindowDays - 1))
	return current, previous
}

func (w WindowStats) with(t models.StatTotals) WindowStats {
	w.Views = t.Views
	w.Submissions = t.Submissions
	w.ConversionRate = conversionRate(t.Views, t.Submissions)
	return w
}

// conversionRate is submissions per view, 0 when there were no views.
func conversionRate(views, submissions int64) float64 {
	if views == 0 {
		return 0
	}
	return float64(submissions) / float64(views)
}

func trend(cur, prev WindowStats) Trend {
	return Trend{
		Views:          cur.Views - prev.Views,
		Submissions:    cur.Submissions - prev.Submissions,
		ConversionRate: cur.ConversionRate - prev.ConversionRate,
	}
}

// Compile-time check to ensure statsService implements StatsService.
var _ StatsService = (*statsService)(nil)
