package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/http/handlers"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/middleware"
)

type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	InternalToken  string
	RateCounter    middleware.Counter
	RatePerMinute  int
	CountryLookup  middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.Country(opts.CountryLookup),
		middleware.Session,
		middleware.Logger(opts.Logger),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health/status", app.HealthStatus)
		r.Get("/health/db", app.HealthDB)
		r.Get("/greet", app.Greet)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs("/api/openapi.json"))

		r.Route("/requests", func(r chi.Router) {
			r.With(middleware.RateLimit(opts.RateCounter, opts.RatePerMinute, time.Minute, opts.Logger)).Post("/", app.CreateRequest)
			r.Get("/", app.ListRequests)
			r.Get("/session/{sessionId}", app.RequestsBySession)
			r.Get("/credits/{sessionId}", app.RemainingCredits)
			r.Get("/{id}", app.GetRequest)
		})

		r.Get("/stats", app.StatsSummary)

		r.Route("/internal", func(r chi.Router) {
			r.Use(middleware.InternalToken(opts.InternalToken))
			r.Post("/requests/{id}/processing", app.MarkProcessing)
			r.Post("/requests/{id}/complete", app.MarkComplete)
			r.Post("/requests/{id}/fail", app.MarkFailed)
		})

		r.Handle("/outputs/*", app.Outputs("/api/outputs/"))
	})

	return r
}
