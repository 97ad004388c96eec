package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/featureflags-backend/internal/transport/middleware"
)

// RouterDeps collects the handlers and collaborators mounted by NewRouter.
type RouterDeps struct {
	Log      *slog.Logger
	Health   *HealthHandler
	Segments *SegmentHandler
	// Auth resolves the request actor; see middleware.Auth.
	Auth middleware.Middleware
	// Gatherer is served on /metrics when set.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the HTTP handler: probes and metrics at the root, the
// segment API under /api/v1.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(deps.Log),
	)

	deps.Health.Routes(r)

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	api := middleware.Chain(deps.Auth, middleware.Logger(deps.Log))
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(api)
		r.Mount("/segments", deps.Segments.Routes())
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})

	return r
}
