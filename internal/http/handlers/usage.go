package handlers

import (
	"net/http"
	"time"

	"filmflow/internal/domain"
	"filmflow/internal/i18n"
	"filmflow/internal/middleware"
)

type usageItem struct {
	Service   domain.QuotaService `json:"service"`
	Used      int64               `json:"used"`
	Limit     int64               `json:"limit"`
	Remaining int64               `json:"remaining"`
	Period    string              `json:"period"`
	Cadence   domain.Cadence      `json:"cadence"`
	Unit      string              `json:"unit"`
	ResetAt   time.Time           `json:"resetTime"`
	ResetsIn  string              `json:"resetsIn"`
}

// Usage reports the caller's consumption of every rate-limited service.
func (a *App) Usage(w http.ResponseWriter, r *http.Request) {
	id, ok := a.currentIdentity(r)
	if !ok {
		a.error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
		return
	}
	all, err := a.Tracker.AllUsage(r.Context(), id.UserID)
	if err != nil {
		a.writeDomainError(w, r, err, "INTERNAL_ERROR")
		return
	}

	loc := i18n.For(middleware.LocaleFromContext(r.Context()))
	now := a.clock()
	items := make([]usageItem, 0, len(all))
	for _, u := range all {
		items = append(items, usageItem{
			Service:   u.Service,
			Used:      u.Used,
			Limit:     u.Limit,
			Remaining: u.Remaining,
			Period:    u.Period,
			Cadence:   u.Cadence,
			Unit:      loc.Unit(u.Service),
			ResetAt:   u.ResetAt,
			ResetsIn:  loc.UntilReset(u.ResetAt, now),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
