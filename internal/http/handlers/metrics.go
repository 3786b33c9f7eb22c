package handlers

import (
	"net/http"
)

// MetricsExposition serves the Prometheus registry. Without metrics it
// answers 404.
func (a *App) MetricsExposition(w http.ResponseWriter, r *http.Request) {
	if a.Metrics == nil {
		http.NotFound(w, r)
		return
	}
	a.Metrics.Handler().ServeHTTP(w, r)
}
