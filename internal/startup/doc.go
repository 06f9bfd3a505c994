// Package startup loads configuration from the environment and prints the
// lifecycle log lines the host sees when the subsystem comes up and goes
// down.
//
// # Configuration
//
// [LoadConfig] reads:
//
//   - CACHE_DIR: cache root (default: <user cache dir>/board-assets)
//   - THUMB_SCHEME: URI scheme of image requests (default: thumb)
//   - THUMB_DEFAULT_WIDTH: width used when a request has no usable w (default: 0, the original)
//   - THUMB_STAMP_SOURCE: key cached thumbnails on source mtime and size (default: true)
//   - THUMB_WORKERS: worker pool size (default: GOMAXPROCS)
//   - USE_VIPS: resize with libvips instead of pure Go (default: false)
//   - CATALOG_ENABLED: keep the sqlite catalog at <cache>/catalog.db (default: true)
//   - METRICS_ENABLED: mount /_metrics on the router (default: true)
//   - LOG_LEVEL, DEBUG: see package logging
//   - GOMEMLIMIT, MEMORY_LIMIT, MEMORY_RATIO: see package memory
//
// The cache root is created if needed and must be writable. Pasted images go
// to <cache>/temp_images and generated thumbnails to <cache>/thumbs.
//
// # Build Information
//
// Version, Commit and BuildTime are injected with -ldflags and reported by
// [GetBuildInfo].
package startup
