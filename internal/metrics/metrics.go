package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics for the in-process router
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_http_requests_total",
			Help: "Total number of requests served by the in-process router",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_assets_http_request_duration_seconds",
			Help:    "Router request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Protocol metrics
var (
	ProtocolRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_protocol_requests_total",
			Help: "Total number of virtual-resource requests by response status",
		},
		[]string{"status"},
	)

	ProtocolRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "board_assets_protocol_request_duration_seconds",
			Help:    "Time from accepting a virtual-resource request to responding",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ProtocolRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_assets_protocol_requests_in_flight",
			Help: "Number of accepted virtual-resource requests not yet answered",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_thumbnail_requests_total",
			Help: "Total number of thumbnail fetches by outcome",
		},
		[]string{"outcome"}, // "passthrough", "hit", "generated", "error"
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "board_assets_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "board_assets_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_assets_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"}, // "imaging", "vips"
	)

	ThumbnailPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_assets_thumbnail_phase_duration_seconds",
			Help:    "Duration of individual thumbnail generation phases",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"phase"}, // "decode", "resize", "encode", "write"
	)

	ThumbnailCacheCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_assets_thumbnail_cache_count",
			Help: "Number of catalogued thumbnails in the cache",
		},
	)

	ThumbnailCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_assets_thumbnail_cache_size_bytes",
			Help: "Total size of catalogued thumbnails in bytes",
		},
	)
)

// Asset metrics
var (
	AssetWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_asset_writes_total",
			Help: "Content-addressed asset writes by location and result",
		},
		[]string{"location", "result"}, // location: "temp", "permanent"; result: "written", "deduplicated", "error"
	)

	AssetCommitItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_commit_items_total",
			Help: "Commit items processed by outcome",
		},
		[]string{"outcome"}, // "moved", "deduplicated", "imported", "passthrough", "fallback"
	)

	AssetsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "board_assets_assets_total",
			Help: "Number of catalogued assets by location",
		},
		[]string{"location"},
	)
)

// Worker pool metrics
var (
	WorkerPoolSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "board_assets_worker_pool_size",
			Help: "Number of workers in the pool",
		},
		[]string{"pool"},
	)

	WorkerPoolQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "board_assets_worker_pool_queue_depth",
			Help: "Number of queued tasks waiting for a worker",
		},
		[]string{"pool"},
	)

	WorkerPoolActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "board_assets_worker_pool_active",
			Help: "Number of workers currently running a task",
		},
		[]string{"pool"},
	)

	WorkerPoolPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_worker_pool_panics_total",
			Help: "Task panics recovered by pool workers",
		},
		[]string{"pool"},
	)
)

// Catalog metrics
var (
	CatalogQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_catalog_queries_total",
			Help: "Total number of catalog queries",
		},
		[]string{"operation", "status"},
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_assets_catalog_query_duration_seconds",
			Help:    "Catalog query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_assets_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration by volume and operation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_filesystem_operation_errors_total",
			Help: "Failed filesystem operations by volume and operation",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_filesystem_retry_attempts_total",
			Help: "Retries after stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_assets_filesystem_retry_duration_seconds",
			Help:    "Total duration of retried filesystem operations",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_assets_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_assets_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_assets_memory_paused",
			Help: "1 while thumbnail generation is held back by memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "board_assets_memory_gc_pauses_total",
			Help: "Times generation was paused and a GC forced due to memory pressure",
		},
	)
)
