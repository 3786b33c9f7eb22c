package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"filmflow/internal/domain"
	"filmflow/internal/generation"
	"filmflow/internal/middleware"
)

type statusUpdateRequest struct {
	Status       string  `json:"status"`
	OutputURL    *string `json:"outputUrl"`
	ErrorMessage *string `json:"errorMessage"`
}

// InternalUpdateStatus is the callback trusted services use to report job
// progress.
func (a *App) InternalUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeDomainError(w, r, err, "INTERNAL_ERROR")
		return
	}
	jobID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(jobID); err != nil {
		a.writeDomainError(w, r, domain.ErrNotFound, "INTERNAL_ERROR")
		return
	}

	job, err := a.Generations.UpdateStatus(r.Context(), jobID, generation.StatusUpdate{
		Status:       domain.GenerationStatus(req.Status),
		OutputURL:    req.OutputURL,
		ErrorMessage: req.ErrorMessage,
	})
	if err != nil {
		a.writeDomainError(w, r, err, "INTERNAL_ERROR")
		return
	}
	a.Logger.Info().
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Str("source_service", middleware.SourceServiceFromContext(r.Context())).
		Msg("generation status updated")
	a.json(w, http.StatusOK, job)
}
