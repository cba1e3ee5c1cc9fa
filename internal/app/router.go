package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/propfind/propfind/internal/auth"
	"github.com/propfind/propfind/internal/observability"
	"github.com/propfind/propfind/internal/platform/httpx"
	"github.com/propfind/propfind/internal/properties"
	"github.com/propfind/propfind/internal/users"
	"github.com/propfind/propfind/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Authenticator     *auth.Authenticator
	AuthHandler       *auth.Handler
	PropertiesHandler *properties.Handler
	UsersHandler      *users.Handler
	JobsHandler       *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with PropFind defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.NotFound(httpx.NotFound)
		r.MethodNotAllowed(httpx.MethodNotAllowed)

		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Route("/properties", func(r chi.Router) {
			params.PropertiesHandler.MountPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(params.Authenticator.Middleware)
				params.PropertiesHandler.MountOwnerRoutes(r)
			})
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(params.Authenticator.Middleware)
			params.UsersHandler.MountRoutes(r)
		})
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
