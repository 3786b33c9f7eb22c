// Package worker drains PENDING generation jobs and runs them against the
// compute backend.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"filmflow/internal/domain"
	"filmflow/internal/generation"
	"filmflow/internal/i18n"
	"filmflow/internal/metrics"
	"filmflow/internal/providers/modal"
	"filmflow/internal/quota"
)

const (
	maxErrorDetail = 300

	statusWriteTimeout = 10 * time.Second
)

// Provider runs one generation on the compute backend.
type Provider interface {
	GenerateStoryboard(ctx context.Context, req modal.StoryboardRequest) (*modal.Result, error)
	GenerateVideo(ctx context.Context, req modal.VideoRequest) (*modal.Result, error)
	GenerateAudio(ctx context.Context, req modal.AudioRequest) (*modal.Result, error)
	GenerateMusic(ctx context.Context, req modal.MusicRequest) (*modal.Result, error)
}

// AssetStore keeps assets the backend returned inline.
type AssetStore interface {
	Save(ctx context.Context, key string, data []byte) (string, error)
}

type Options struct {
	Concurrency  int
	PollInterval time.Duration
	JobTimeout   time.Duration
	// Locale of the error messages stored on failed jobs.
	Locale  string
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

type Worker struct {
	jobs     domain.GenerationRepository
	gens     *generation.Service
	tracker  *quota.Tracker
	provider Provider
	assets   AssetStore

	pollInterval time.Duration
	jobTimeout   time.Duration
	loc          *i18n.Localizer
	logger       zerolog.Logger
	metrics      *metrics.Metrics

	sem chan struct{}
	wg  sync.WaitGroup
	now func() time.Time
}

func New(jobs domain.GenerationRepository, gens *generation.Service, tracker *quota.Tracker, provider Provider, assets AssetStore, opts Options) *Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 5 * time.Minute
	}
	return &Worker{
		jobs:         jobs,
		gens:         gens,
		tracker:      tracker,
		provider:     provider,
		assets:       assets,
		pollInterval: opts.PollInterval,
		jobTimeout:   opts.JobTimeout,
		loc:          i18n.For(opts.Locale),
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		sem:          make(chan struct{}, opts.Concurrency),
		now:          time.Now,
	}
}

// Run claims and processes jobs until ctx is cancelled. In-flight jobs are
// allowed to finish before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Int("concurrency", cap(w.sem)).Msg("worker: started")
	defer w.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case w.sem <- struct{}{}:
		}

		job, err := w.jobs.ClaimPending(ctx)
		if err != nil {
			<-w.sem
			if !errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
				w.logger.Error().Err(err).Msg("worker: failed to claim job")
			}
			if !sleep(ctx, w.pollInterval) {
				return ctx.Err()
			}
			continue
		}

		w.metrics.JobClaimed()
		w.wg.Add(1)
		go func(job *domain.Generation) {
			defer w.wg.Done()
			defer func() { <-w.sem }()
			// shutdown must not strand a claimed job in PROCESSING
			jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.jobTimeout)
			defer cancel()
			w.Process(jobCtx, job)
		}(job)
	}
}

// Process runs one claimed job and records its terminal status.
func (w *Worker) Process(ctx context.Context, job *domain.Generation) {
	start := w.now()
	log := w.logger.With().Str("job_id", job.ID).Str("type", string(job.Type)).Str("model", job.Model).Logger()
	log.Info().Msg("worker: picked job")

	model, ok := generation.LookupModel(job.Model)
	if !ok {
		w.fail(ctx, log, job, start, 0, fmt.Errorf("unknown model %q", job.Model), i18n.MsgProviderFailure)
		return
	}

	budget, err := w.tracker.TryConsume(ctx, job.UserID, domain.ServiceModal, model.CostCents)
	if err != nil {
		w.fail(ctx, log, job, start, 0, err, i18n.MsgRetryLater)
		return
	}
	if !budget.Allowed {
		w.fail(ctx, log, job, start, 0, budget.ExceededError(), i18n.MsgComputeBudget)
		return
	}

	outputURL, err := w.run(ctx, job, model)
	if err != nil {
		w.fail(ctx, log, job, start, model.CostCents, err, i18n.MsgProviderFailure)
		return
	}

	if _, err := w.finish(ctx, job.ID, generation.StatusUpdate{
		Status:    domain.StatusCompleted,
		OutputURL: &outputURL,
	}); err != nil {
		log.Error().Err(err).Msg("worker: update status failed")
		return
	}
	w.metrics.JobFinished(string(job.Type), string(domain.StatusCompleted), w.now().Sub(start), model.CostCents)
	log.Info().Str("output_url", outputURL).Dur("took", w.now().Sub(start)).Msg("worker: job completed")
}

func (w *Worker) run(ctx context.Context, job *domain.Generation, model generation.Model) (string, error) {
	settings, err := generation.DecodeSettings(job.Type, job.Settings)
	if err != nil {
		return "", fmt.Errorf("decode settings: %w", err)
	}

	var res *modal.Result
	switch s := settings.(type) {
	case *generation.ImageSettings:
		res, err = w.provider.GenerateStoryboard(ctx, modal.StoryboardRequest{
			Prompt:      job.Prompt,
			ActorRefs:   s.ActorRefs,
			Resolution:  s.Resolution,
			AspectRatio: s.AspectRatio,
			Model:       model.ID,
		})
	case *generation.VideoSettings:
		res, err = w.provider.GenerateVideo(ctx, modal.VideoRequest{
			ImageURL:       s.ImageURL,
			Prompt:         job.Prompt,
			CameraMovement: s.CameraMovement,
			Duration:       s.Duration,
			AspectRatio:    s.AspectRatio,
			Model:          model.ID,
		})
	case *generation.AudioSettings:
		res, err = w.provider.GenerateAudio(ctx, modal.AudioRequest{
			Text:     job.Prompt,
			VoiceID:  s.VoiceID,
			Language: s.Language,
			Model:    model.ID,
		})
	case *generation.MusicSettings:
		res, err = w.provider.GenerateMusic(ctx, modal.MusicRequest{
			Prompt:          job.Prompt,
			Style:           s.Style,
			DurationSeconds: s.DurationSeconds,
			Instrumental:    s.Instrumental,
			Model:           model.ID,
		})
	default:
		return "", fmt.Errorf("unsupported settings %T", settings)
	}
	if err != nil {
		return "", err
	}

	if res.URL != "" {
		return res.URL, nil
	}
	if len(res.Data) == 0 || w.assets == nil {
		return "", fmt.Errorf("%w: no asset returned", domain.ErrProviderFailure)
	}
	key := strings.ToLower(string(job.Type)) + "/" + job.ID + extensionFor(res.ContentType)
	url, err := w.assets.Save(ctx, key, res.Data)
	if err != nil {
		return "", fmt.Errorf("store asset: %w", err)
	}
	return url, nil
}

func (w *Worker) fail(ctx context.Context, log zerolog.Logger, job *domain.Generation, start time.Time, cost int64, cause error, msgKey string) {
	log.Warn().Err(cause).Msg("worker: job failed")

	msg := w.loc.T(msgKey)
	if msgKey == i18n.MsgProviderFailure {
		msg += " (" + truncate(cause.Error(), maxErrorDetail) + ")"
	}
	if _, err := w.finish(ctx, job.ID, generation.StatusUpdate{
		Status:       domain.StatusFailed,
		ErrorMessage: &msg,
	}); err != nil {
		log.Error().Err(err).Msg("worker: update status failed")
		return
	}
	w.metrics.JobFinished(string(job.Type), string(domain.StatusFailed), w.now().Sub(start), cost)
}

// finish writes the terminal status on its own deadline; the job context may
// already be expired when the provider timed out.
func (w *Worker) finish(ctx context.Context, id string, upd generation.StatusUpdate) (*domain.Generation, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()
	return w.gens.UpdateStatus(ctx, id, upd)
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "video/mp4":
		return ".mp4"
	default:
		return ".mp3"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
