package middleware

import (
	"encoding/json"
	"net/http"

	"filmflow/internal/i18n"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError renders the API error envelope in the request locale.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, msgKey string) {
	loc := i18n.For(LocaleFromContext(r.Context()))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code, Message: loc.T(msgKey)})
}
