package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Karan-Salvi/FormVista-sub000/internal/cache"
	"github.com/Karan-Salvi/FormVista-sub000/internal/config"
	"github.com/Karan-Salvi/FormVista-sub000/internal/database"
	"github.com/Karan-Salvi/FormVista-sub000/internal/models"
	"github.com/Karan-Salvi/FormVista-sub000/internal/payment"
	"github.com/Karan-Salvi/FormVista-sub000/internal/repository"
)

// --- Test harness ---

var testTTL = config.CacheConfig{
	FormTTL:      time.Hour,
	BlocksTTL:    time.Hour,
	UserFormsTTL: 5 * time.Minute,
	ResponsesTTL: time.Minute,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := cache.NewRedisStore(database.NewRedisFromClient(client), 1024)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return cache.New(store, discardLogger()), mr
}

type testEnv struct {
	forms     *mockFormRepo
	blocks    *mockBlockRepo
	responses *mockResponseRepo
	analytics *mockAnalyticsRepo
	redis     *miniredis.Miniredis
	formSvc   *formService
	respSvc   *responseService
	statsSvc  *statsService
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	c, mr := newTestCache(t)

	forms := newMockFormRepo()
	blocks := newMockBlockRepo()
	forms.blocks = blocks
	responses := newMockResponseRepo()
	analytics := newMockAnalyticsRepo(forms)

	env := &testEnv{
		forms:     forms,
		blocks:    blocks,
		responses: responses,
		analytics: analytics,
		redis:     mr,
		now:       time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	env.formSvc = NewFormService(forms, blocks, analytics, c, testTTL, discardLogger()).(*formService)
	env.formSvc.now = clock
	env.respSvc = NewResponseService(forms, blocks, responses, analytics, c, testTTL, discardLogger()).(*responseService)
	env.respSvc.now = clock
	env.statsSvc = NewStatsService(forms, analytics).(*statsService)
	env.statsSvc.now = clock
	return env
}

// --- Mock Repositories ---

type mockFormRepo struct {
	mu      sync.Mutex
	forms   map[uuid.UUID]*models.Form
	getByID atomic.Int64
	// takenOnCreate makes the next N Create calls fail as if the slug
	// had been claimed concurrently.
	takenOnCreate int
	// blocks receives the block half of UpdateWithBlocks.
	blocks *mockBlockRepo
}

func newMockFormRepo() *mockFormRepo {
	return &mockFormRepo{forms: make(map[uuid.UUID]*models.Form)}
}

func cloneForm(f *models.Form) *models.Form {
	c := *f
	return &c
}

func (m *mockFormRepo) Create(ctx context.Context, form *models.Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takenOnCreate > 0 {
		m.takenOnCreate--
		return repository.ErrSlugTaken
	}
	for _, f := range m.forms {
		if f.Slug == form.Slug {
			return repository.ErrSlugTaken
		}
	}
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	form.CreatedAt = time.Now()
	form.UpdatedAt = form.CreatedAt
	m.forms[form.ID] = cloneForm(form)
	return nil
}

func (m *mockFormRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Form, error) {
	m.getByID.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.forms[id]; ok {
		return cloneForm(f), nil
	}
	return nil, nil
}

func (m *mockFormRepo) GetBySlug(ctx context.Context, slug string) (*models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.forms {
		if f.Slug == slug {
			return cloneForm(f), nil
		}
	}
	return nil, nil
}

func (m *mockFormRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	f, _ := m.GetBySlug(ctx, slug)
	return f != nil, nil
}

func (m *mockFormRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*models.Form{}
	for _, f := range m.forms {
		if f.OwnerID == ownerID {
			result = append(result, cloneForm(f))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result, nil
}

func (m *mockFormRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, published := 0, 0
	for _, f := range m.forms {
		if f.OwnerID == ownerID {
			total++
			if f.IsPublished() {
				published++
			}
		}
	}
	return total, published, nil
}

// UpdateWithBlocks applies the block changes first so a failed block write
// leaves the stored form untouched, as the transaction would.
func (m *mockFormRepo) UpdateWithBlocks(ctx context.Context, form *models.Form, changes *repository.BlockChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.forms {
		if f.ID != form.ID && f.Slug == form.Slug {
			return repository.ErrSlugTaken
		}
	}
	if changes != nil {
		if err := m.blocks.Apply(ctx, form.ID, *changes); err != nil {
			return err
		}
	}
	form.UpdatedAt = time.Now()
	m.forms[form.ID] = cloneForm(form)
	return nil
}

func (m *mockFormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.forms, id)
	return nil
}

// put stores a form directly, bypassing the service.
func (m *mockFormRepo) put(f *models.Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forms[f.ID] = cloneForm(f)
}

type mockBlockRepo struct {
	mu     sync.Mutex
	blocks map[uuid.UUID]*models.Block
	seq    map[uuid.UUID]int
	next   int
	// applyErr fails every Apply call without writing anything.
	applyErr error
}

func newMockBlockRepo() *mockBlockRepo {
	return &mockBlockRepo{
		blocks: make(map[uuid.UUID]*models.Block),
		seq:    make(map[uuid.UUID]int),
	}
}

func cloneBlock(b *models.Block) *models.Block {
	c := *b
	return &c
}

func (m *mockBlockRepo) keyTaken(formID, blockID uuid.UUID, key string) bool {
	for _, b := range m.blocks {
		if b.FormID == formID && b.ID != blockID && b.FieldKey == key {
			return true
		}
	}
	return false
}

func (m *mockBlockRepo) insert(block *models.Block) {
	if block.ID == uuid.Nil {
		block.ID = uuid.New()
	}
	block.CreatedAt = time.Now()
	block.UpdatedAt = block.CreatedAt
	m.blocks[block.ID] = cloneBlock(block)
	m.next++
	m.seq[block.ID] = m.next
}

func (m *mockBlockRepo) Create(ctx context.Context, block *models.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keyTaken(block.FormID, block.ID, block.FieldKey) {
		return repository.ErrFieldKeyTaken
	}
	m.insert(block)
	return nil
}

func (m *mockBlockRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.blocks[id]; ok {
		return cloneBlock(b), nil
	}
	return nil, nil
}

func (m *mockBlockRepo) ListByForm(ctx context.Context, formID uuid.UUID) ([]*models.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*models.Block{}
	for _, b := range m.blocks {
		if b.FormID == formID {
			result = append(result, cloneBlock(b))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return m.seq[result[i].ID] < m.seq[result[j].ID]
	})
	return result, nil
}

func (m *mockBlockRepo) Update(ctx context.Context, block *models.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keyTaken(block.FormID, block.ID, block.FieldKey) {
		return repository.ErrFieldKeyTaken
	}
	if _, ok := m.blocks[block.ID]; ok {
		m.blocks[block.ID] = cloneBlock(block)
	}
	return nil
}

func (m *mockBlockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocks, id)
	return nil
}

// Apply mirrors the deferred uniqueness check: keys are validated once
// every change is in place, and nothing is kept on failure.
func (m *mockBlockRepo) Apply(ctx context.Context, formID uuid.UUID, changes repository.BlockChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}

	snapshot := make(map[uuid.UUID]*models.Block, len(m.blocks))
	for id, b := range m.blocks {
		snapshot[id] = b
	}

	for _, id := range changes.Delete {
		if b, ok := m.blocks[id]; ok && b.FormID == formID {
			delete(m.blocks, id)
		}
	}
	for _, b := range changes.Update {
		b.FormID = formID
		if _, ok := m.blocks[b.ID]; ok {
			m.blocks[b.ID] = cloneBlock(b)
		}
	}
	for _, b := range changes.Create {
		b.FormID = formID
		m.insert(b)
	}

	seen := map[string]bool{}
	for _, b := range m.blocks {
		if b.FormID != formID {
			continue
		}
		if seen[b.FieldKey] {
			m.blocks = snapshot
			return repository.ErrFieldKeyTaken
		}
		seen[b.FieldKey] = true
	}
	return nil
}

// put stores a block directly, bypassing the service.
func (m *mockBlockRepo) put(b *models.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(b)
}

type mockResponseRepo struct {
	mu        sync.Mutex
	responses map[uuid.UUID]*models.FormResponse
	listCalls atomic.Int64
}

func newMockResponseRepo() *mockResponseRepo {
	return &mockResponseRepo{responses: make(map[uuid.UUID]*models.FormResponse)}
}

func cloneResponse(r *models.FormResponse) *models.FormResponse {
	c := *r
	c.Tags = append([]string{}, r.Tags...)
	c.Answers = append([]*models.ResponseAnswer{}, r.Answers...)
	return &c
}

func (m *mockResponseRepo) Create(ctx context.Context, resp *models.FormResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	resp.UpdatedAt = resp.SubmittedAt
	m.responses[resp.ID] = cloneResponse(resp)
	return nil
}

func (m *mockResponseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FormResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.responses[id]; ok {
		return cloneResponse(r), nil
	}
	return nil, nil
}

func (m *mockResponseRepo) ListByForm(ctx context.Context, formID uuid.UUID, offset, limit int) ([]*models.FormResponse, error) {
	m.listCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*models.FormResponse{}
	for _, r := range m.responses {
		if r.FormID == formID {
			all = append(all, cloneResponse(r))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SubmittedAt.After(all[j].SubmittedAt) })
	if offset >= len(all) {
		return []*models.FormResponse{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockResponseRepo) CountByForm(ctx context.Context, formID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.responses {
		if r.FormID == formID {
			n++
		}
	}
	return n, nil
}

func (m *mockResponseRepo) UpdateMeta(ctx context.Context, resp *models.FormResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.responses[resp.ID]; ok {
		r.Notes = resp.Notes
		r.Tags = append([]string{}, resp.Tags...)
	}
	return nil
}

func (m *mockResponseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.responses, id)
	return nil
}

type dayKey struct {
	formID uuid.UUID
	day    string
}

type mockAnalyticsRepo struct {
	mu     sync.Mutex
	forms  *mockFormRepo
	totals map[uuid.UUID]*models.FormAnalytics
	daily  map[dayKey]*models.DailyStat
	err    error
}

func newMockAnalyticsRepo(forms *mockFormRepo) *mockAnalyticsRepo {
	return &mockAnalyticsRepo{
		forms:  forms,
		totals: make(map[uuid.UUID]*models.FormAnalytics),
		daily:  make(map[dayKey]*models.DailyStat),
	}
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (m *mockAnalyticsRepo) Get(ctx context.Context, formID uuid.UUID) (*models.FormAnalytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.totals[formID]; ok {
		c := *a
		return &c, nil
	}
	return nil, nil
}

func (m *mockAnalyticsRepo) Increment(ctx context.Context, formID uuid.UUID, day time.Time, views, submissions int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a, ok := m.totals[formID]
	if !ok {
		a = &models.FormAnalytics{FormID: formID}
		m.totals[formID] = a
	}
	a.TotalViews += views
	a.TotalSubmissions += submissions

	d := utcDay(day)
	k := dayKey{formID: formID, day: d.Format("2006-01-02")}
	row, ok := m.daily[k]
	if !ok {
		row = &models.DailyStat{ID: uuid.New(), FormID: formID, Date: d}
		m.daily[k] = row
	}
	row.Views += views
	row.Submissions += submissions
	return nil
}

func (m *mockAnalyticsRepo) ListDaily(ctx context.Context, formID uuid.UUID, from, to time.Time) ([]*models.DailyStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*models.DailyStat{}
	for _, row := range m.daily {
		if row.FormID == formID && !row.Date.Before(utcDay(from)) && !row.Date.After(utcDay(to)) {
			c := *row
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockAnalyticsRepo) SumRange(ctx context.Context, formID uuid.UUID, from, to time.Time) (models.StatTotals, error) {
	rows, _ := m.ListDaily(ctx, formID, from, to)
	var t models.StatTotals
	for _, r := range rows {
		t.Views += r.Views
		t.Submissions += r.Submissions
	}
	return t, nil
}

func (m *mockAnalyticsRepo) ownedForms(ctx context.Context, ownerID uuid.UUID) []*models.Form {
	forms, _ := m.forms.ListByOwner(ctx, ownerID)
	return forms
}

func (m *mockAnalyticsRepo) SumRangeByOwner(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (models.StatTotals, error) {
	var t models.StatTotals
	for _, f := range m.ownedForms(ctx, ownerID) {
		s, _ := m.SumRange(ctx, f.ID, from, to)
		t.Views += s.Views
		t.Submissions += s.Submissions
	}
	return t, nil
}

func (m *mockAnalyticsRepo) TotalsByOwner(ctx context.Context, ownerID uuid.UUID) (models.StatTotals, error) {
	var t models.StatTotals
	for _, f := range m.ownedForms(ctx, ownerID) {
		if a, _ := m.Get(ctx, f.ID); a != nil {
			t.Views += a.TotalViews
			t.Submissions += a.TotalSubmissions
		}
	}
	return t, nil
}

func (m *mockAnalyticsRepo) dailyRows(formID uuid.UUID) []*models.DailyStat {
	rows, _ := m.ListDaily(context.Background(), formID, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
	return rows
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[user.ID]; ok {
		if user.Email == "" {
			user.Email = existing.Email
		}
		if user.Name == "" {
			user.Name = existing.Name
		}
		user.Plan = existing.Plan
		user.StripeCustomerID = existing.StripeCustomerID
	}
	if user.Plan == "" {
		user.Plan = models.PlanFree
	}
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *mockUserRepo) UpdatePlan(ctx context.Context, id uuid.UUID, plan models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Plan = plan
	}
	return nil
}

func (m *mockUserRepo) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.StripeCustomerID = &customerID
	}
	return nil
}

type mockSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*models.Subscription
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{subs: make(map[uuid.UUID]*models.Subscription)}
}

func (m *mockSubscriptionRepo) Upsert(ctx context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.StripeSubscriptionID == sub.StripeSubscriptionID {
			sub.ID = s.ID
			sub.CreatedAt = s.CreatedAt
		}
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
		sub.CreatedAt = time.Now()
	}
	sub.UpdatedAt = time.Now()
	c := *sub
	m.subs[sub.ID] = &c
	return nil
}

func (m *mockSubscriptionRepo) GetByStripeID(ctx context.Context, stripeID string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.StripeSubscriptionID == stripeID {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockSubscriptionRepo) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.Subscription
	for _, s := range m.subs {
		if s.UserID == userID && (latest == nil || s.CreatedAt.After(latest.CreatedAt)) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	c := *latest
	return &c, nil
}

func (m *mockSubscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub.UpdatedAt = time.Now()
	c := *sub
	m.subs[sub.ID] = &c
	return nil
}

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments []*models.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{}
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *models.Payment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.StripeInvoiceID == p.StripeInvoiceID {
			return false, nil
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	c := *p
	m.payments = append(m.payments, &c)
	return true, nil
}

func (m *mockPaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*models.Payment{}
	for i := len(m.payments) - 1; i >= 0 && len(result) < limit; i-- {
		if m.payments[i].UserID == userID {
			result = append(result, m.payments[i])
		}
	}
	return result, nil
}

type mockWebhookEventRepo struct {
	mu     sync.Mutex
	events map[string]*models.WebhookEvent
}

func newMockWebhookEventRepo() *mockWebhookEventRepo {
	return &mockWebhookEventRepo{events: make(map[string]*models.WebhookEvent)}
}

func (m *mockWebhookEventRepo) Insert(ctx context.Context, e *models.WebhookEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[e.EventID]; ok {
		return false, nil
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	c := *e
	m.events[e.EventID] = &c
	return true, nil
}

func (m *mockWebhookEventRepo) GetByEventID(ctx context.Context, eventID string) (*models.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[eventID]; ok {
		c := *e
		return &c, nil
	}
	return nil, nil
}

func (m *mockWebhookEventRepo) MarkProcessed(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[eventID]; ok {
		now := time.Now()
		e.Processed = true
		e.ProcessedAt = &now
	}
	return nil
}

func (m *mockWebhookEventRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.events {
		if !e.ExpiresAt.After(now) {
			delete(m.events, id)
			n++
		}
	}
	return n, nil
}

// --- Mock Provider ---

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if s := args.Get(0); s != nil {
		return s.(*payment.CheckoutSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) GetSubscription(ctx context.Context, subscriptionID string) (*payment.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if s := args.Get(0); s != nil {
		return s.(*payment.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) CancelSubscription(ctx context.Context, subscriptionID string) (*payment.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if s := args.Get(0); s != nil {
		return s.(*payment.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) VerifyEvent(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if e := args.Get(0); e != nil {
		return e.(*payment.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	_ repository.FormRepository         = (*mockFormRepo)(nil)
	_ repository.BlockRepository        = (*mockBlockRepo)(nil)
	_ repository.ResponseRepository     = (*mockResponseRepo)(nil)
	_ repository.AnalyticsRepository    = (*mockAnalyticsRepo)(nil)
	_ repository.UserRepository         = (*mockUserRepo)(nil)
	_ repository.SubscriptionRepository = (*mockSubscriptionRepo)(nil)
	_ repository.PaymentRepository      = (*mockPaymentRepo)(nil)
	_ repository.WebhookEventRepository = (*mockWebhookEventRepo)(nil)
	_ payment.Provider                  = (*mockProvider)(nil)
)
