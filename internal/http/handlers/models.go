package handlers

import (
	"net/http"

	"filmflow/internal/domain"
	"filmflow/internal/generation"
	"filmflow/internal/i18n"
)

type modelItem struct {
	generation.Model
	Available bool `json:"available"`
}

// Models lists the catalog, optionally filtered by ?type=, marking models the
// caller's plan cannot use.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	id, ok := a.currentIdentity(r)
	if !ok {
		a.error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
		return
	}
	var filter domain.GenerationType
	if raw := r.URL.Query().Get("type"); raw != "" {
		typ, ok := domain.ParseGenerationType(raw)
		if !ok {
			a.writeDomainError(w, r, domain.NewValidationError("type", "must be one of IMAGE, VIDEO, AUDIO, MUSIC"), "INTERNAL_ERROR")
			return
		}
		filter = typ
	}

	items := make([]modelItem, 0)
	for _, m := range generation.Models() {
		if filter != "" && m.Type != filter {
			continue
		}
		items = append(items, modelItem{Model: m, Available: id.Plan.Includes(m.MinPlan)})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
