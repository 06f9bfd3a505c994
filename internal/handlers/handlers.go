package handlers

import (
	"net/http"

	"board-assets/internal/assets"
	"board-assets/internal/metrics"
	"board-assets/internal/middleware"
	"board-assets/internal/protocol"
	"board-assets/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers serves the router's endpoints.
type Handlers struct {
	dispatcher *protocol.Dispatcher
	store      *assets.Store
	pool       *workers.Pool
	stats      metrics.StatsProvider
}

// New creates the handlers. stats may be nil when the catalog is disabled.
func New(dispatcher *protocol.Dispatcher, store *assets.Store, pool *workers.Pool, stats metrics.StatsProvider) *Handlers {
	return &Handlers{
		dispatcher: dispatcher,
		store:      store,
		pool:       pool,
		stats:      stats,
	}
}

// RouterConfig configures Router.
type RouterConfig struct {
	MetricsEnabled bool
	Logging        middleware.LoggingConfig
}

// Router builds the in-process router.
func (h *Handlers) Router(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.SkipClean(true)
	r.UseEncodedPath()
	r.Use(middleware.Logger(cfg.Logging))
	r.Use(middleware.Metrics())

	r.HandleFunc("/_health", h.HealthCheck).Methods(http.MethodGet).Name("health")
	r.HandleFunc("/_version", h.GetVersion).Methods(http.MethodGet).Name("version")
	r.HandleFunc("/_stats", h.GetStats).Methods(http.MethodGet).Name("stats")
	if cfg.MetricsEnabled {
		r.Handle("/_metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")
	}

	r.HandleFunc("/_assets/temp", h.SaveTemp).Methods(http.MethodPost).Name("save_temp")
	r.HandleFunc("/_assets/commit", h.Commit).Methods(http.MethodPost).Name("commit")

	r.HandleFunc("/{path:.*}", h.ServeThumb).Methods(http.MethodGet, http.MethodHead).Name("thumb")

	return r
}
