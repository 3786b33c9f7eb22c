package quota

import (
	"context"
	"strings"
	"time"

	"filmflow/internal/domain"
)

// Usage is the state of one counter against its limit.
type Usage struct {
	Service   domain.QuotaService `json:"service"`
	Allowed   bool                `json:"allowed"`
	Used      int64               `json:"used"`
	Limit     int64               `json:"limit"`
	Remaining int64               `json:"remaining"`
	Period    string              `json:"period"`
	Cadence   domain.Cadence      `json:"cadence"`
	Unit      string              `json:"unit"`
	ResetAt   time.Time           `json:"resetTime"`
}

// ExceededError converts a denied Usage into the typed domain error.
func (u Usage) ExceededError() *domain.QuotaExceededError {
	return &domain.QuotaExceededError{
		Service:   u.Service,
		Limit:     u.Limit,
		Used:      u.Used,
		Remaining: u.Remaining,
		Period:    u.Period,
		Cadence:   u.Cadence,
		Unit:      u.Unit,
		ResetAt:   u.ResetAt,
	}
}

// Tracker gates and records consumption of rate-limited services.
type Tracker struct {
	store domain.UsageStore
	now   func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a Tracker over store.
func NewTracker(store domain.UsageStore, opts ...Option) *Tracker {
	t := &Tracker{store: store, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CheckLimit reports whether amount more units of service fit into the
// user's current period. It never mutates state. amount <= 0 counts as 1.
func (t *Tracker) CheckLimit(ctx context.Context, userID string, service domain.QuotaService, amount int64) (Usage, error) {
	if amount <= 0 {
		amount = 1
	}
	l, key, now, err := t.resolve(userID, service)
	if err != nil {
		return Usage{}, err
	}
	used, err := t.store.Get(ctx, key)
	if err != nil {
		return Usage{}, domain.Persistence("usage.get", err)
	}
	return newUsage(l, key.Period, used, amount, now), nil
}

// TrackUsage records amount units for the current period with a single atomic
// increment. It does not enforce the limit; call CheckLimit first or use
// TryConsume.
func (t *Tracker) TrackUsage(ctx context.Context, userID string, service domain.QuotaService, amount int64) error {
	if amount <= 0 {
		return domain.NewValidationError("amount", "must be positive")
	}
	_, key, _, err := t.resolve(userID, service)
	if err != nil {
		return err
	}
	if _, err := t.store.Increment(ctx, key, amount); err != nil {
		return domain.Persistence("usage.increment", err)
	}
	return nil
}

// TryConsume atomically increments the counter only when the result stays
// within the limit. A denied call leaves the counter untouched and returns a
// Usage with Allowed=false.
func (t *Tracker) TryConsume(ctx context.Context, userID string, service domain.QuotaService, amount int64) (Usage, error) {
	if amount <= 0 {
		return Usage{}, domain.NewValidationError("amount", "must be positive")
	}
	l, key, now, err := t.resolve(userID, service)
	if err != nil {
		return Usage{}, err
	}
	count, applied, err := t.store.IncrementWithin(ctx, key, amount, l.Max)
	if err != nil {
		return Usage{}, domain.Persistence("usage.increment_within", err)
	}
	if !applied {
		return newUsage(l, key.Period, count, amount, now), nil
	}
	u := newUsage(l, key.Period, count, 1, now)
	u.Allowed = true
	return u, nil
}

// AllUsage returns the usage of every configured service for userID.
func (t *Tracker) AllUsage(ctx context.Context, userID string) ([]Usage, error) {
	out := make([]Usage, 0, len(limits))
	for _, l := range limits {
		u, err := t.CheckLimit(ctx, userID, l.Service, 1)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (t *Tracker) resolve(userID string, service domain.QuotaService) (Limit, domain.UsageKey, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Limit{}, domain.UsageKey{}, time.Time{}, domain.NewValidationError("userId", "required")
	}
	l, err := lookup(service)
	if err != nil {
		return Limit{}, domain.UsageKey{}, time.Time{}, err
	}
	now := t.now()
	return l, domain.UsageKey{UserID: userID, Service: service, Period: periodKey(l.Cadence, now)}, now, nil
}

func newUsage(l Limit, period string, used, amount int64, now time.Time) Usage {
	remaining := l.Max - used
	u := Usage{
		Service:   l.Service,
		Allowed:   remaining >= amount,
		Used:      used,
		Limit:     l.Max,
		Remaining: remaining,
		Period:    period,
		Cadence:   l.Cadence,
		Unit:      l.Unit,
		ResetAt:   resetTime(l.Cadence, now),
	}
	if u.Remaining < 0 {
		u.Remaining = 0
	}
	return u
}
