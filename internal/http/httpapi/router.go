package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"studio/internal/http/handlers"
	"studio/internal/infra"
	"studio/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(log),
		chimw.Recoverer,
	)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", infra.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", app.Generate)
		r.Get("/generate/progress/{job_id}", app.Progress)
		r.Get("/generate/video/{job_id}", app.Video)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/endpoint", app.SettingsGet)
			r.Put("/endpoint", app.SettingsUpdate)
			r.Post("/test-endpoint", app.SettingsTest)
			r.Get("/guard", app.GuardSettingsGet)
			r.Put("/guard", app.GuardSettingsUpdate)
			r.Get("/safety-check", app.SafetyCheckSettingsGet)
			r.Put("/safety-check", app.SafetyCheckSettingsUpdate)
		})

		r.Get("/disclaimer", app.DisclaimerGet)
		r.Put("/disclaimer", app.DisclaimerUpdate)
	})

	return r
}
