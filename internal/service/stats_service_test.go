package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindows(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	cur, prev := windows(now)

	// 23:30 EST is already the 15th in UTC.
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), cur.To)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), cur.From)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), prev.To)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), prev.From)
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0.0, conversionRate(0, 0))
	assert.Equal(t, 0.0, conversionRate(0, 3))
	assert.InDelta(t, 0.25, conversionRate(8, 2), 1e-9)
}

func TestStatsService_FormStats_Trend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()
	form := createPublished(t, env, ownerID, "Trend")

	today := env.now
	// Previous window: 10 views, 1 submission.
	require.NoError(t, env.analytics.Increment(ctx, form.ID, today.AddDate(0, 0, -10), 10, 1))
	// Current window: 4 views, 2 submissions over two days.
	require.NoError(t, env.analytics.Increment(ctx, form.ID, today.AddDate(0, 0, -1), 3, 1))
	require.NoError(t, env.analytics.Increment(ctx, form.ID, today, 1, 1))
	// Outside both windows.
	require.NoError(t, env.analytics.Increment(ctx, form.ID, today.AddDate(0, 0, -30), 100, 100))

	stats, err := env.statsSvc.FormStats(ctx, ownerID, form.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(114), stats.TotalViews)
	assert.Equal(t, int64(103), stats.TotalSubmissions)
	assert.Equal(t, int64(4), stats.Current.Views)
	assert.Equal(t, int64(2), stats.Current.Submissions)
	assert.InDelta(t, 0.5, stats.Current.ConversionRate, 1e-9)
	assert.Equal(t, int64(10), stats.Previous.Views)
	assert.InDelta(t, 0.1, stats.Previous.ConversionRate, 1e-9)
	assert.Equal(t, int64(-6), stats.Trend.Views)
	assert.Equal(t, int64(1), stats.Trend.Submissions)
	assert.InDelta(t, 0.4, stats.Trend.ConversionRate, 1e-9)
	assert.Len(t, stats.Daily, 3)

	_, err = env.statsSvc.FormStats(ctx, uuid.New(), form.ID)
	assertAPIError(t, err, http.StatusNotFound)
}

func TestStatsService_FormStats_NoActivity(t *testing.T) {
	env := newTestEnv(t)
	ownerID := uuid.New()
	form := createPublished(t, env, ownerID, "Quiet")

	stats, err := env.statsSvc.FormStats(context.Background(), ownerID, form.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalViews)
	assert.Zero(t, stats.ConversionRate)
	assert.NotNil(t, stats.Daily)
}

func TestStatsService_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()

	a := createPublished(t, env, ownerID, "A")
	b, err := env.formSvc.Create(ctx, ownerID, CreateFormRequest{Title: "B"})
	require.NoError(t, err)
	foreign := createPublished(t, env, uuid.New(), "Foreign")

	require.NoError(t, env.analytics.Increment(ctx, a.ID, env.now, 6, 3))
	require.NoError(t, env.analytics.Increment(ctx, b.ID, env.now.AddDate(0, 0, -8), 4, 0))
	require.NoError(t, env.analytics.Increment(ctx, foreign.ID, env.now, 50, 50))

	dash, err := env.statsSvc.Dashboard(ctx, ownerID)
	require.NoError(t, err)

	assert.Equal(t, 2, dash.TotalForms)
	assert.Equal(t, 1, dash.PublishedForms)
	assert.Equal(t, int64(10), dash.TotalViews)
	assert.Equal(t, int64(3), dash.TotalSubmissions)
	assert.InDelta(t, 0.3, dash.ConversionRate, 1e-9)
	assert.Equal(t, int64(6), dash.Current.Views)
	assert.Equal(t, int64(4), dash.Previous.Views)
	assert.Equal(t, int64(2), dash.Trend.Views)
}
