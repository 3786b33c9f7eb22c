// Package generation admits, persists and tracks the lifecycle of generation
// jobs on top of the quota tracker.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"filmflow/internal/domain"
	"filmflow/internal/quota"
)

const (
	MaxPromptRunes   = 2000
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// CreateRequest is the input of Service.Create.
type CreateRequest struct {
	UserID   string
	Plan     domain.UserPlan
	Type     domain.GenerationType
	Model    string
	Prompt   string
	Settings json.RawMessage
	SceneID  *string
}

// StatusUpdate is the input of Service.UpdateStatus.
type StatusUpdate struct {
	Status       domain.GenerationStatus
	OutputURL    *string
	ErrorMessage *string
}

// ListFilter narrows Service.List.
type ListFilter struct {
	Type  domain.GenerationType
	Limit int
}

// Service orchestrates job admission and status changes.
type Service struct {
	jobs    domain.GenerationRepository
	tracker *quota.Tracker
	strict  bool
	now     func() time.Time
	newID   func() string
	logger  zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStrictQuota makes admission a single capped increment instead of
// check-then-track.
func WithStrictQuota(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithLogger sets the logger used for non-fatal anomalies.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService wires a Service.
func NewService(jobs domain.GenerationRepository, tracker *quota.Tracker, opts ...Option) *Service {
	s := &Service{
		jobs:    jobs,
		tracker: tracker,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strict reports whether admission uses the capped increment.
func (s *Service) Strict() bool { return s.strict }

// Create validates req, admits it against the user's quota, persists a
// PENDING job and records usage.
//
// A denied admission returns *domain.QuotaExceededError and creates nothing.
// If the job was stored but usage could not be recorded, the job is returned
// together with a persistence error.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Generation, error) {
	job, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	service := ServiceFor(job.Type)

	if s.strict {
		usage, err := s.tracker.TryConsume(ctx, job.UserID, service, 1)
		if err != nil {
			return nil, err
		}
		if !usage.Allowed {
			return nil, usage.ExceededError()
		}
	} else {
		usage, err := s.tracker.CheckLimit(ctx, job.UserID, service, 1)
		if err != nil {
			return nil, err
		}
		if !usage.Allowed {
			return nil, usage.ExceededError()
		}
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		if s.strict {
			s.logger.Warn().Str("user_id", job.UserID).Str("service", string(service)).
				Msg("usage consumed for a job that was not stored")
		}
		return nil, domain.Persistence("generation.create", err)
	}

	if !s.strict {
		if err := s.tracker.TrackUsage(ctx, job.UserID, service, 1); err != nil {
			s.logger.Error().Err(err).Str("job_id", job.ID).Str("service", string(service)).
				Msg("job stored but usage not tracked")
			return job, fmt.Errorf("track usage for job %s: %w", job.ID, err)
		}
	}
	return job, nil
}

func (s *Service) prepare(req CreateRequest) (*domain.Generation, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.NewValidationError("userId", "required")
	}
	typ, ok := domain.ParseGenerationType(string(req.Type))
	if !ok {
		return nil, domain.NewValidationError("type", "must be one of IMAGE, VIDEO, AUDIO, MUSIC")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, domain.NewValidationError("prompt", "required")
	}
	if utf8.RuneCountInString(prompt) > MaxPromptRunes {
		return nil, domain.NewValidationError("prompt", fmt.Sprintf("at most %d characters", MaxPromptRunes))
	}
	model, err := resolveModel(typ, req.Model, req.Plan)
	if err != nil {
		return nil, err
	}
	settings, err := DecodeSettings(typ, req.Settings)
	if err != nil {
		return nil, err
	}
	raw, err := EncodeSettings(settings)
	if err != nil {
		return nil, err
	}

	var sceneID *string
	if req.SceneID != nil {
		if v := strings.TrimSpace(*req.SceneID); v != "" {
			sceneID = &v
		}
	}

	now := s.now().UTC()
	return &domain.Generation{
		ID:        s.newID(),
		UserID:    userID,
		Type:      typ,
		Model:     model.ID,
		Prompt:    prompt,
		Settings:  raw,
		Status:    domain.StatusPending,
		SceneID:   sceneID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateStatus moves job id to upd.Status. CompletedAt is set exactly when
// the new status is terminal.
func (s *Service) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*domain.Generation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError("id", "required")
	}
	to, ok := domain.ParseGenerationStatus(string(upd.Status))
	if !ok {
		return nil, domain.NewValidationError("status", "must be one of PENDING, PROCESSING, COMPLETED, FAILED")
	}
	outputURL := nonEmpty(upd.OutputURL)
	errorMessage := nonEmpty(upd.ErrorMessage)
	if outputURL != nil && to != domain.StatusCompleted {
		return nil, domain.NewValidationError("outputUrl", "only allowed with COMPLETED")
	}
	if errorMessage != nil && to != domain.StatusFailed {
		return nil, domain.NewValidationError("errorMessage", "only allowed with FAILED")
	}

	current, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("generation.get", err)
	}
	if !CanTransition(current.Status, to) {
		return nil, &domain.InvalidTransitionError{From: current.Status, To: to}
	}

	change := domain.StatusChange{Status: to, OutputURL: outputURL, ErrorMessage: errorMessage}
	if to.Terminal() {
		now := s.now().UTC()
		change.CompletedAt = &now
	}
	updated, err := s.jobs.UpdateStatus(ctx, id, current.Status, change)
	if errors.Is(err, domain.ErrNotFound) {
		// Another writer moved the job first.
		return nil, &domain.InvalidTransitionError{From: current.Status, To: to}
	}
	if err != nil {
		return nil, domain.Persistence("generation.update_status", err)
	}
	return updated, nil
}

// Get returns job id when it belongs to userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Generation, error) {
	g, err := s.jobs.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, domain.Persistence("generation.get", err)
	}
	if g.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

// List returns the user's jobs, newest first.
func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]domain.Generation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewValidationError("userId", "required")
	}
	var typ domain.GenerationType
	if f.Type != "" {
		t, ok := domain.ParseGenerationType(string(f.Type))
		if !ok {
			return nil, domain.NewValidationError("type", "must be one of IMAGE, VIDEO, AUDIO, MUSIC")
		}
		typ = t
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	items, err := s.jobs.ListByUser(ctx, userID, typ, limit)
	if err != nil {
		return nil, domain.Persistence("generation.list", err)
	}
	return items, nil
}

func nonEmpty(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
