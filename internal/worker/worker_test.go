package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmflow/internal/domain"
	"filmflow/internal/generation"
	"filmflow/internal/providers/modal"
	"filmflow/internal/quota"
)

var fixedNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

type queue struct {
	mu   sync.Mutex
	jobs map[string]*domain.Generation
}

func newQueue() *queue {
	return &queue{jobs: make(map[string]*domain.Generation)}
}

func (q *queue) Create(_ context.Context, g *domain.Generation) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := *g
	q.jobs[g.ID] = &cp
	return nil
}

func (q *queue) GetByID(ctx context.Context, id string) (*domain.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	g, ok := q.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (q *queue) ListByUser(context.Context, string, domain.GenerationType, int) ([]domain.Generation, error) {
	return nil, nil
}

func (q *queue) UpdateStatus(ctx context.Context, id string, from domain.GenerationStatus, change domain.StatusChange) (*domain.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	g, ok := q.jobs[id]
	if !ok || g.Status != from {
		return nil, domain.ErrNotFound
	}
	g.Status = change.Status
	g.OutputURL = change.OutputURL
	g.ErrorMessage = change.ErrorMessage
	g.CompletedAt = change.CompletedAt
	cp := *g
	return &cp, nil
}

func (q *queue) ClaimPending(context.Context) (*domain.Generation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, 0, len(q.jobs))
	for id, g := range q.jobs {
		if g.Status == domain.StatusPending {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Strings(ids)
	g := q.jobs[ids[0]]
	g.Status = domain.StatusProcessing
	cp := *g
	return &cp, nil
}

func (q *queue) get(id string) domain.Generation {
	q.mu.Lock()
	defer q.mu.Unlock()
	return *q.jobs[id]
}

type fakeProvider struct {
	calls   atomic.Int32
	err     error
	inline  []byte
	block   bool
	lastImg modal.StoryboardRequest
	mu      sync.Mutex
}

func (p *fakeProvider) GenerateStoryboard(_ context.Context, req modal.StoryboardRequest) (*modal.Result, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.lastImg = req
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &modal.Result{URL: "https://cdn.example.com/" + req.Model + ".png"}, nil
}

func (p *fakeProvider) GenerateVideo(ctx context.Context, req modal.VideoRequest) (*modal.Result, error) {
	p.calls.Add(1)
	if p.block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, ctx.Err())
	}
	if p.err != nil {
		return nil, p.err
	}
	return &modal.Result{URL: "https://cdn.example.com/video.mp4"}, nil
}

func (p *fakeProvider) GenerateAudio(_ context.Context, req modal.AudioRequest) (*modal.Result, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return &modal.Result{Data: p.inline, ContentType: "audio/mpeg"}, nil
}

func (p *fakeProvider) GenerateMusic(_ context.Context, req modal.MusicRequest) (*modal.Result, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return &modal.Result{URL: "https://cdn.example.com/track.mp3"}, nil
}

type memAssets struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (m *memAssets) Save(_ context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[key] = data
	return "https://api.example.com/assets/" + key, nil
}

type fixture struct {
	jobs     *queue
	store    *quota.MemoryStore
	gens     *generation.Service
	provider *fakeProvider
	assets   *memAssets
	worker   *Worker
}

func newFixture(opts Options) fixture {
	clock := func() time.Time { return fixedNow }
	jobs := newQueue()
	store := quota.NewMemoryStore()
	tracker := quota.NewTracker(store, quota.WithClock(clock))
	var seq atomic.Int32
	gens := generation.NewService(jobs, tracker,
		generation.WithClock(clock),
		generation.WithIDGenerator(func() string { return fmt.Sprintf("gen-%02d", seq.Add(1)) }),
	)
	provider := &fakeProvider{}
	assets := &memAssets{}
	opts.Logger = zerolog.Nop()
	w := New(jobs, gens, tracker, provider, assets, opts)
	w.now = clock
	return fixture{jobs: jobs, store: store, gens: gens, provider: provider, assets: assets, worker: w}
}

func (f fixture) create(t *testing.T, typ domain.GenerationType, settings string) *domain.Generation {
	t.Helper()
	job, err := f.gens.Create(context.Background(), generation.CreateRequest{
		UserID:   "user-1",
		Plan:     domain.UserPlanFree,
		Type:     typ,
		Prompt:   "Kitchen argument",
		Settings: []byte(settings),
	})
	require.NoError(t, err)
	return job
}

func (f fixture) claim(t *testing.T) *domain.Generation {
	t.Helper()
	job, err := f.jobs.ClaimPending(context.Background())
	require.NoError(t, err)
	return job
}

func (f fixture) modalUsed(t *testing.T) int64 {
	t.Helper()
	period, err := quota.PeriodKey(domain.ServiceModal, fixedNow)
	require.NoError(t, err)
	used, err := f.store.Get(context.Background(), domain.UsageKey{UserID: "user-1", Service: domain.ServiceModal, Period: period})
	require.NoError(t, err)
	return used
}

func TestProcessImageCompletes(t *testing.T) {
	f := newFixture(Options{})
	f.create(t, domain.GenerationImage, `{"aspectRatio":"9:16"}`)
	job := f.claim(t)

	f.worker.Process(context.Background(), job)

	got := f.jobs.get(job.ID)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.OutputURL)
	assert.Equal(t, "https://cdn.example.com/higgsfield/soul.png", *got.OutputURL)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, "9:16", f.provider.lastImg.AspectRatio)
	assert.Equal(t, "2K", f.provider.lastImg.Resolution)
	assert.Equal(t, int64(5), f.modalUsed(t))
}

func TestProcessAudioStoresInlineAsset(t *testing.T) {
	f := newFixture(Options{})
	f.provider.inline = []byte("ID3")
	f.create(t, domain.GenerationAudio, ``)
	job := f.claim(t)

	f.worker.Process(context.Background(), job)

	got := f.jobs.get(job.ID)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.OutputURL)
	assert.Equal(t, "https://api.example.com/assets/audio/"+job.ID+".mp3", *got.OutputURL)
	assert.Equal(t, []byte("ID3"), f.assets.saved["audio/"+job.ID+".mp3"])
}

func TestProcessFailsWhenComputeBudgetExhausted(t *testing.T) {
	f := newFixture(Options{Locale: "sk"})
	period, err := quota.PeriodKey(domain.ServiceModal, fixedNow)
	require.NoError(t, err)
	f.store.Set(domain.UsageKey{UserID: "user-1", Service: domain.ServiceModal, Period: period}, 2998)

	f.create(t, domain.GenerationImage, ``)
	job := f.claim(t)
	f.worker.Process(context.Background(), job)

	got := f.jobs.get(job.ID)
	assert.Equal(t, domain.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "Vyčerpali ste mesačný rozpočet na výpočty", *got.ErrorMessage)
	assert.Zero(t, f.provider.calls.Load())
	assert.Equal(t, int64(2998), f.modalUsed(t))
}

func TestProcessRecordsProviderFailure(t *testing.T) {
	f := newFixture(Options{Locale: "en"})
	f.provider.err = fmt.Errorf("%w: modal: nsfw content", domain.ErrProviderFailure)
	f.create(t, domain.GenerationVideo, `{"duration":10}`)
	job := f.claim(t)

	f.worker.Process(context.Background(), job)

	got := f.jobs.get(job.ID)
	assert.Equal(t, domain.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "Generation failed")
	assert.Contains(t, *got.ErrorMessage, "nsfw content")
	assert.Nil(t, got.OutputURL)
	// compute was spent even though the provider failed
	assert.Equal(t, int64(20), f.modalUsed(t))
}

func TestProcessMarksTimedOutJobFailed(t *testing.T) {
	f := newFixture(Options{Locale: "en"})
	f.provider.block = true
	f.create(t, domain.GenerationVideo, ``)
	job := f.claim(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	f.worker.Process(ctx, job)

	got := f.jobs.get(job.ID)
	assert.Equal(t, domain.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "deadline exceeded")
	require.NotNil(t, got.CompletedAt)
}

func TestRunDrainsQueueConcurrently(t *testing.T) {
	f := newFixture(Options{Concurrency: 2, PollInterval: 5 * time.Millisecond, JobTimeout: time.Second})
	ids := []string{
		f.create(t, domain.GenerationImage, ``).ID,
		f.create(t, domain.GenerationMusic, ``).ID,
		f.create(t, domain.GenerationVideo, ``).ID,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		for _, id := range ids {
			if f.jobs.get(id).Status != domain.StatusCompleted {
				return false
			}
		}
		return true
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, int32(3), f.provider.calls.Load())
}

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{
		"audio/mpeg":             ".mp3",
		"audio/wav":              ".wav",
		"audio/ogg; codecs=opus": ".ogg",
		"":                       ".mp3",
	}
	for in, want := range tests {
		assert.Equal(t, want, extensionFor(in), in)
	}
}
