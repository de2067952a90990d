package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"adstudio/internal/http/handlers"
	"adstudio/internal/middleware"
)

type Options struct {
	Logger                zerolog.Logger
	AllowedOrigins        []string
	BatchRateLimitPerHour int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/projects", func(r chi.Router) {
		r.Get("/", app.ProjectsList)
		r.Post("/", app.ProjectsCreate)
		r.Get("/{id}", app.ProjectsGet)
		r.Put("/{id}", app.ProjectsUpdate)
		r.Delete("/{id}", app.ProjectsDelete)
		r.Get("/{id}/archive", app.ProjectsArchive)
	})

	r.Route("/v1/settings", func(r chi.Router) {
		r.Get("/", app.SettingsGet)
		r.Post("/", app.SettingsUpdate)
	})

	r.Route("/v1/batches", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.BatchRateLimitPerHour, time.Hour))
		r.Post("/", app.BatchesRun)
		r.Post("/queue", app.BatchesEnqueue)
	})

	return r
}
