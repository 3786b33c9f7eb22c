package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"filmflow/internal/domain"
	"filmflow/internal/generation"
	"filmflow/internal/i18n"
	"filmflow/internal/metrics"
)

type createGenerationRequest struct {
	Type     string          `json:"type"`
	Model    string          `json:"model"`
	Prompt   string          `json:"prompt"`
	Settings json.RawMessage `json:"settings"`
	SceneID  *string         `json:"sceneId"`
}

type createGenerationResponse struct {
	GenerationID string                  `json:"generationId"`
	Status       domain.GenerationStatus `json:"status"`
}

func (a *App) GenerationsCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.currentIdentity(r)
	if !ok {
		a.error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
		return
	}
	var req createGenerationRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.Metrics.Admission(strings.ToUpper(req.Type), metrics.OutcomeInvalid)
		a.writeDomainError(w, r, err, "GENERATION_FAILED")
		return
	}

	sceneID, err := a.ownedSceneID(r.Context(), id.UserID, req.SceneID)
	if err != nil {
		a.writeDomainError(w, r, err, "GENERATION_FAILED")
		return
	}

	job, err := a.admit(r.Context(), generation.CreateRequest{
		UserID:   id.UserID,
		Plan:     id.Plan,
		Type:     domain.GenerationType(req.Type),
		Model:    req.Model,
		Prompt:   req.Prompt,
		Settings: req.Settings,
		SceneID:  sceneID,
	})
	if err != nil {
		a.writeDomainError(w, r, err, "GENERATION_FAILED")
		return
	}
	a.json(w, http.StatusCreated, createGenerationResponse{GenerationID: job.ID, Status: job.Status})
}

// admit runs Service.Create and records the admission outcome.
func (a *App) admit(ctx context.Context, req generation.CreateRequest) (*domain.Generation, error) {
	typ := strings.ToUpper(strings.TrimSpace(string(req.Type)))
	job, err := a.Generations.Create(ctx, req)
	switch {
	case err == nil:
		a.Metrics.Admission(typ, metrics.OutcomeAccepted)
	case errors.Is(err, domain.ErrQuotaExceeded):
		a.Metrics.Admission(typ, metrics.OutcomeDenied)
	case errors.Is(err, domain.ErrValidation):
		a.Metrics.Admission(typ, metrics.OutcomeInvalid)
	default:
		a.Metrics.Admission(typ, metrics.OutcomeError)
		if job != nil {
			a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("generation stored without usage")
		}
	}
	return job, err
}

// ownedSceneID checks that an optional scene reference names one of the
// caller's scenes.
func (a *App) ownedSceneID(ctx context.Context, userID string, raw *string) (*string, error) {
	sceneID, err := parseSceneID(raw)
	if err != nil || sceneID == nil {
		return nil, err
	}
	if _, err := a.Scenes.GetForUser(ctx, *sceneID, userID); err != nil {
		return nil, domain.Persistence("scene.get", err)
	}
	return sceneID, nil
}

func parseSceneID(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, domain.NewValidationError("sceneId", "must be a UUID")
	}
	id := parsed.String()
	return &id, nil
}

func (a *App) GenerationsList(w http.ResponseWriter, r *http.Request) {
	id, ok := a.currentIdentity(r)
	if !ok {
		a.error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
		return
	}
	filter := generation.ListFilter{Type: domain.GenerationType(r.URL.Query().Get("type"))}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			a.writeDomainError(w, r, domain.NewValidationError("limit", "must be a positive integer"), "INTERNAL_ERROR")
			return
		}
		filter.Limit = limit
	}

	items, err := a.Generations.List(r.Context(), id.UserID, filter)
	if err != nil {
		a.writeDomainError(w, r, err, "INTERNAL_ERROR")
		return
	}
	if items == nil {
		items = []domain.Generation{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) GenerationGet(w http.ResponseWriter, r *http.Request) {
	id, ok := a.currentIdentity(r)
	if !ok {
		a.error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
		return
	}
	jobID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(jobID); err != nil {
		// ids are uuids; anything else cannot exist
		a.writeDomainError(w, r, domain.ErrNotFound, "INTERNAL_ERROR")
		return
	}
	job, err := a.Generations.Get(r.Context(), id.UserID, jobID)
	if err != nil {
		a.writeDomainError(w, r, err, "INTERNAL_ERROR")
		return
	}
	a.json(w, http.StatusOK, job)
}
