// Package httpapi assembles the chi router for the service.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"promoclip/internal/http/handlers"
	"promoclip/internal/infra"
	"promoclip/internal/middleware"
)

// Options carries everything the router needs besides the handlers.
type Options struct {
	Logger          infra.Logger
	AllowedOrigins  []string
	CountryLookup   middleware.CountryLookup
	DefaultLanguage string
}

// NewRouter builds the full middleware chain and the /v1 routes.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.Logger(opts.Logger),
		middleware.TargetLanguage(opts.DefaultLanguage, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Post("/v1/ai/requests", app.AIRequest)
	r.Post("/v1/videos", app.VideoGenerate)
	r.Get("/v1/videos/{task_id}", app.VideoStatus)
	r.Get("/v1/state", app.State)
	r.Post("/v1/state/clear", app.StateClear)

	return r
}
