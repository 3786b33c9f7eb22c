package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"filmflow/internal/http/handlers"
	"filmflow/internal/middleware"
)

// Options configures the middleware chain.
type Options struct {
	JWTSecret             string
	InternalServiceSecret string
	DefaultLocale         string
	CORSAllowedOrigins    []string
	RateLimitPerMin       int
	CountryLookup         middleware.CountryLookup
	Logger                zerolog.Logger
	// AssetsDir, when set, is served read-only under /assets/.
	AssetsDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.Metrics(app.Metrics),
		middleware.CORS(opts.CORSAllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/metrics", app.MetricsExposition)
	if opts.AssetsDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(opts.AssetsDir))))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret, opts.Logger))

		r.Get("/usage", app.Usage)
		r.Get("/models", app.Models)
		r.Get("/generations", app.GenerationsList)
		r.Get("/generations/{id}", app.GenerationGet)

		r.Group(func(r chi.Router) {
			if opts.RateLimitPerMin > 0 {
				r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
			}
			r.Post("/generations", app.GenerationsCreate)
			r.Post("/generate/storyboard", app.GenerateStoryboard)
		})
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(middleware.InternalAuth(opts.InternalServiceSecret, opts.Logger))
		r.Patch("/generations/{id}", app.InternalUpdateStatus)
	})

	return r
}
