package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmflow/internal/domain"
)

var fixedNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

func newTestTracker(store domain.UsageStore) *Tracker {
	return NewTracker(store, WithClock(func() time.Time { return fixedNow }))
}

func TestTrackUsageThenCheckLimit(t *testing.T) {
	ctx := context.Background()
	for _, l := range Limits() {
		l := l
		t.Run(string(l.Service), func(t *testing.T) {
			tracker := newTestTracker(NewMemoryStore())
			n := int64(3)
			for i := int64(0); i < n; i++ {
				require.NoError(t, tracker.TrackUsage(ctx, "user-1", l.Service, 1))
			}
			u, err := tracker.CheckLimit(ctx, "user-1", l.Service, 1)
			require.NoError(t, err)
			assert.Equal(t, n, u.Used)
			assert.Equal(t, l.Max-n, u.Remaining)
			assert.Equal(t, l.Max, u.Limit)
			assert.True(t, u.Allowed)
		})
	}
}

func TestCheckLimitAtLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := newTestTracker(store)

	require.NoError(t, tracker.TrackUsage(ctx, "user-1", domain.ServiceHiggsfield, 5))
	u, err := tracker.CheckLimit(ctx, "user-1", domain.ServiceHiggsfield, 1)
	require.NoError(t, err)
	assert.False(t, u.Allowed)
	assert.Equal(t, int64(0), u.Remaining)
	assert.Equal(t, "2025-05-20", u.Period)
	assert.Equal(t, time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), u.ResetAt)
}

func TestCheckLimitRemainingNeverNegative(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(domain.UsageKey{UserID: "user-1", Service: domain.ServiceHiggsfield, Period: "2025-05-20"}, 9)
	tracker := newTestTracker(store)

	u, err := tracker.CheckLimit(ctx, "user-1", domain.ServiceHiggsfield, 1)
	require.NoError(t, err)
	assert.False(t, u.Allowed)
	assert.Equal(t, int64(9), u.Used)
	assert.Equal(t, int64(0), u.Remaining)
}

func TestCheckLimitRequestedAmount(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(NewMemoryStore())
	require.NoError(t, tracker.TrackUsage(ctx, "user-1", domain.ServiceElevenLabs, 9990))

	u, err := tracker.CheckLimit(ctx, "user-1", domain.ServiceElevenLabs, 10)
	require.NoError(t, err)
	assert.True(t, u.Allowed)

	u, err = tracker.CheckLimit(ctx, "user-1", domain.ServiceElevenLabs, 11)
	require.NoError(t, err)
	assert.False(t, u.Allowed)
	assert.Equal(t, int64(10), u.Remaining)
}

func TestCheckLimitIsReadOnly(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := newTestTracker(store)
	for i := 0; i < 5; i++ {
		_, err := tracker.CheckLimit(ctx, "user-1", domain.ServiceSuno, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, store.Len())
}

func TestTrackUsageRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(NewMemoryStore())

	assert.ErrorIs(t, tracker.TrackUsage(ctx, "user-1", domain.ServiceSuno, 0), domain.ErrValidation)
	assert.ErrorIs(t, tracker.TrackUsage(ctx, "", domain.ServiceSuno, 1), domain.ErrValidation)
	assert.ErrorIs(t, tracker.TrackUsage(ctx, "user-1", "unknown", 1), domain.ErrValidation)
}

func TestTrackUsageConcurrentNoLostUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := newTestTracker(store)

	const k = 200
	var wg sync.WaitGroup
	wg.Add(k)
	for i := 0; i < k; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, tracker.TrackUsage(ctx, "user-1", domain.ServiceElevenLabs, 1))
		}()
	}
	wg.Wait()

	u, err := tracker.CheckLimit(ctx, "user-1", domain.ServiceElevenLabs, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(k), u.Used)
}

func TestTryConsumeCapsAtLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := newTestTracker(store)

	const k = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	wg.Add(k)
	for i := 0; i < k; i++ {
		go func() {
			defer wg.Done()
			u, err := tracker.TryConsume(ctx, "user-1", domain.ServiceHiggsfield, 1)
			assert.NoError(t, err)
			if u.Allowed {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, granted)
	u, err := tracker.CheckLimit(ctx, "user-1", domain.ServiceHiggsfield, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.Used)
}

func TestAllUsage(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(NewMemoryStore())
	require.NoError(t, tracker.TrackUsage(ctx, "user-1", domain.ServiceSuno, 7))

	all, err := tracker.AllUsage(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 4)

	byService := map[domain.QuotaService]Usage{}
	for _, u := range all {
		byService[u.Service] = u
	}
	assert.Equal(t, int64(7), byService[domain.ServiceSuno].Used)
	assert.Equal(t, int64(43), byService[domain.ServiceSuno].Remaining)
	assert.Equal(t, "2025-05", byService[domain.ServiceModal].Period)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), byService[domain.ServiceModal].ResetAt)
	assert.Equal(t, time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), byService[domain.ServiceHiggsfield].ResetAt)
}

type failingStore struct{}

func (failingStore) Get(context.Context, domain.UsageKey) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingStore) Increment(context.Context, domain.UsageKey, int64) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingStore) IncrementWithin(context.Context, domain.UsageKey, int64, int64) (int64, bool, error) {
	return 0, false, errors.New("connection refused")
}

func TestStoreFailuresArePersistenceErrors(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(failingStore{})

	_, err := tracker.CheckLimit(ctx, "user-1", domain.ServiceSuno, 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	err = tracker.TrackUsage(ctx, "user-1", domain.ServiceSuno, 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = tracker.TryConsume(ctx, "user-1", domain.ServiceSuno, 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestExceededError(t *testing.T) {
	u := Usage{Service: domain.ServiceHiggsfield, Used: 5, Limit: 5, Period: "2025-05-20", Cadence: domain.CadenceDaily}
	err := u.ExceededError()
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, int64(0), err.Remaining)
}
