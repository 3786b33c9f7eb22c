package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"filmflow/internal/domain"
	"filmflow/internal/i18n"
	"filmflow/internal/middleware"
)

type quotaErrorResponse struct {
	Error     string              `json:"error"`
	Message   string              `json:"message"`
	Service   domain.QuotaService `json:"service"`
	Limit     int64               `json:"limit"`
	Used      int64               `json:"used"`
	Remaining int64               `json:"remaining"`
	Cadence   domain.Cadence      `json:"cadence"`
	ResetAt   time.Time           `json:"resetAt"`
	ResetsIn  string              `json:"resetsIn"`
}

// writeDomainError maps typed errors to HTTP responses. Anything that is not
// a client error is logged and answered with failCode and a generic retry
// message.
func (a *App) writeDomainError(w http.ResponseWriter, r *http.Request, err error, failCode string) {
	loc := i18n.For(middleware.LocaleFromContext(r.Context()))

	var (
		verr  *domain.ValidationError
		qerr  *domain.QuotaExceededError
		terr  *domain.InvalidTransitionError
		field string
	)
	switch {
	case errors.As(err, &verr):
		field = verr.Field
		if field == "" {
			field = "body"
		}
		a.json(w, http.StatusBadRequest, errorResponse{
			Error:   "VALIDATION_ERROR",
			Message: loc.T(i18n.MsgValidation),
			Details: map[string]string{field: verr.Message},
		})
	case errors.As(err, &qerr):
		now := a.clock()
		if secs := int(qerr.ResetAt.Sub(now).Seconds()); secs > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
		a.json(w, http.StatusTooManyRequests, quotaErrorResponse{
			Error:     "FREE_TIER_EXCEEDED",
			Message:   loc.QuotaExceeded(qerr),
			Service:   qerr.Service,
			Limit:     qerr.Limit,
			Used:      qerr.Used,
			Remaining: qerr.Remaining,
			Cadence:   qerr.Cadence,
			ResetAt:   qerr.ResetAt,
			ResetsIn:  loc.UntilReset(qerr.ResetAt, now),
		})
	case errors.As(err, &terr):
		a.json(w, http.StatusConflict, errorResponse{
			Error:   "INVALID_TRANSITION",
			Message: loc.T(i18n.MsgInvalidTransition),
			Details: map[string]string{"from": string(terr.From), "to": string(terr.To)},
		})
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, "NOT_FOUND", i18n.MsgNotFound)
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, r, http.StatusInternalServerError, failCode, i18n.MsgRetryLater)
	}
}
