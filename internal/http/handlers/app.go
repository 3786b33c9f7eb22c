package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"filmflow/internal/domain"
	"filmflow/internal/generation"
	"filmflow/internal/i18n"
	"filmflow/internal/metrics"
	"filmflow/internal/middleware"
	"filmflow/internal/quota"
)

const maxBodyBytes = 1 << 20

// App carries the dependencies shared by every handler.
type App struct {
	Generations *generation.Service
	Tracker     *quota.Tracker
	Scenes      domain.SceneRepository
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	// Ready, when set, is consulted by the health probe.
	Ready func(ctx context.Context) error

	now func() time.Time
}

func NewApp(gens *generation.Service, tracker *quota.Tracker, scenes domain.SceneRepository, m *metrics.Metrics, logger zerolog.Logger) *App {
	return &App{
		Generations: gens,
		Tracker:     tracker,
		Scenes:      scenes,
		Metrics:     m,
		Logger:      logger,
		now:         time.Now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// error writes the error envelope with a message in the request locale.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, errCode, msgKey string) {
	loc := i18n.For(middleware.LocaleFromContext(r.Context()))
	a.json(w, code, errorResponse{Error: errCode, Message: loc.T(msgKey)})
}

func (a *App) currentIdentity(r *http.Request) (domain.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok || id.UserID == "" {
		return domain.Identity{}, false
	}
	return id, true
}

func (a *App) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}

// decodeBody reads a JSON body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("body", "required")
		}
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}
