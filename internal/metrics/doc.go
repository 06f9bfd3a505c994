// Package metrics provides Prometheus instrumentation for the asset store and
// the thumbnail pipeline.
//
// All metrics are prefixed with "board_assets_".
//
// # Metric Categories
//
// ## Protocol Metrics
//
// Track virtual-resource requests served by the dispatcher:
//   - ProtocolRequestsTotal: Counter of requests by response status
//   - ProtocolRequestDuration: Histogram of request duration, queue wait included
//   - ProtocolRequestsInFlight: Gauge of accepted but unanswered requests
//
// ## Thumbnail Metrics
//
// Track how requests were satisfied and what generation costs:
//   - ThumbnailRequestsTotal: Counter by outcome (passthrough, hit, generated, error)
//   - ThumbnailCacheHits / ThumbnailCacheMisses
//   - ThumbnailGenerationDuration: Histogram by resizer backend
//   - ThumbnailPhaseDuration: Histogram by phase (decode, resize, encode, write)
//   - ThumbnailCacheCount / ThumbnailCacheSize: Gauges from the catalog
//
// ## Asset Metrics
//
//   - AssetWritesTotal: Counter of content-addressed writes by location and result
//   - AssetCommitItemsTotal: Counter of commit items by outcome
//   - AssetsTotal: Gauge of catalogued assets by location
//
// ## Worker Pool Metrics
//
//   - WorkerPoolSize, WorkerPoolQueueDepth, WorkerPoolActive: Gauges per pool
//   - WorkerPoolPanics: Counter of recovered task panics
//
// ## Filesystem and Catalog Metrics
//
// Filesystem operations are recorded through the filesystem.Observer
// implementation returned by NewFilesystemObserver. Catalog queries are
// recorded by the database package.
//
// # Usage
//
//	metrics.ThumbnailCacheHits.Inc()
//	timer := prometheus.NewTimer(metrics.ThumbnailGenerationDuration.WithLabelValues("imaging"))
//	defer timer.ObserveDuration()
//
// Metrics register with the default Prometheus registry at package init.
// The in-process router exposes them at /_metrics.
package metrics
