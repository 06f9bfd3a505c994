package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"board-assets/internal/assets"
	"board-assets/internal/database"
	"board-assets/internal/filesystem"
	"board-assets/internal/handlers"
	"board-assets/internal/logging"
	"board-assets/internal/media"
	"board-assets/internal/memory"
	"board-assets/internal/metrics"
	"board-assets/internal/middleware"
	"board-assets/internal/protocol"
	"board-assets/internal/startup"
	"board-assets/internal/vpath"
	"board-assets/internal/workers"
)

// statsInterval is how often catalog totals are copied into gauges.
const statsInterval = time.Minute

// App is the running subsystem.
type App struct {
	cfg        *startup.Config
	resolver   *vpath.Resolver
	store      *assets.Store
	cache      *media.Cache
	pool       *workers.Pool
	dispatcher *protocol.Dispatcher
	monitor    *memory.Monitor
	catalog    *database.Catalog
	collector  *metrics.Collector
	router     http.Handler
	vips       bool
}

// New builds the subsystem. Close releases it.
func New(ctx context.Context, cfg *startup.Config) (*App, error) {
	start := time.Now()

	metrics.InitializeMetrics()
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"temp":   cfg.TempDir,
		"thumbs": cfg.ThumbDir,
	}))

	a := &App{cfg: cfg}

	var catalogDetail string
	if cfg.CatalogEnabled {
		catalog, err := database.Open(ctx, cfg.DatabasePath)
		if err != nil {
			// The catalog is bookkeeping; serving works without it.
			logging.Warn("Catalog unavailable, continuing without it: %v", err)
			catalogDetail = "open failed"
		} else {
			a.catalog = catalog
			catalogDetail = filepath.Base(cfg.DatabasePath)
		}
	}

	resizer := a.newResizer()

	a.monitor = memory.NewMonitor(memory.DefaultMonitorConfig())
	a.monitor.Start()

	a.resolver = vpath.NewResolver(cfg.TempDir)

	storeOpts := assets.Options{}
	cacheOpts := media.CacheOptions{
		StampSource: cfg.StampSource,
		Gate:        a.monitor,
		Retry:       filesystem.DefaultRetryConfig(),
	}
	if a.catalog != nil {
		storeOpts.Recorder = a.catalog
		cacheOpts.Recorder = a.catalog
	}

	a.store = assets.NewStore(a.resolver, storeOpts)
	a.cache = media.NewCache(cfg.ThumbDir, resizer, cacheOpts)
	a.pool = workers.NewPool("thumb", cfg.Workers)
	a.dispatcher = protocol.NewDispatcher(a.pool, a.resolver, a.cache, protocol.Options{
		Scheme:       cfg.Scheme,
		DefaultWidth: cfg.DefaultWidth,
	})

	var stats metrics.StatsProvider
	if a.catalog != nil {
		stats = a.catalog
		a.collector = metrics.NewCollector(a.catalog, statsInterval)
		a.collector.Start()
	}

	h := handlers.New(a.dispatcher, a.store, a.pool, stats)
	router := h.Router(handlers.RouterConfig{
		MetricsEnabled: cfg.MetricsEnabled,
		Logging:        middleware.DefaultLoggingConfig(),
	})
	startup.LogRoutes(router)
	a.router = router

	startup.LogComponents(time.Since(start),
		startup.ComponentStatus{Name: "Resizer", Enabled: true, Detail: resizer.Name()},
		startup.ComponentStatus{Name: "Workers", Enabled: true, Detail: fmt.Sprintf("%d", a.pool.Size())},
		startup.ComponentStatus{Name: "Catalog", Enabled: a.catalog != nil, Detail: catalogDetail},
		startup.ComponentStatus{Name: "Memory gate", Enabled: a.monitor.Limit() > 0},
		startup.ComponentStatus{Name: "Metrics", Enabled: cfg.MetricsEnabled},
	)

	return a, nil
}

// newResizer returns the libvips resizer when requested and available,
// otherwise the pure-Go one.
func (a *App) newResizer() media.Resizer {
	if !a.cfg.UseVips {
		return media.NewImagingResizer()
	}
	if err := media.InitVips(1); err != nil {
		logging.Warn("libvips unavailable, falling back to pure Go resizing: %v", err)
		return media.NewImagingResizer()
	}
	a.vips = true
	return media.NewVipsResizer()
}

// SaveTempImage stores a pasted image given as base64 or a data URI and
// returns its temp virtual path.
func (a *App) SaveTempImage(ctx context.Context, payload string) (string, error) {
	return a.store.SaveTempImage(ctx, payload)
}

// SaveTemp stores raw image bytes and returns the temp virtual path.
func (a *App) SaveTemp(ctx context.Context, data []byte) (string, error) {
	return a.store.SaveTemp(ctx, data)
}

// CommitAssets migrates paths into projectRoot's assets directory.
func (a *App) CommitAssets(ctx context.Context, projectRoot string, paths []string) ([]string, error) {
	return a.store.Commit(ctx, projectRoot, paths)
}

// Dispatch queues a virtual-resource request; respond is called once.
func (a *App) Dispatch(uri string, respond protocol.Responder) {
	a.dispatcher.Dispatch(uri, respond)
}

// Serve processes a virtual-resource request synchronously.
func (a *App) Serve(ctx context.Context, uri string) *protocol.Response {
	return a.dispatcher.Serve(ctx, uri)
}

// Handler returns the in-process router.
func (a *App) Handler() http.Handler {
	return a.router
}

// Stats returns catalog totals.
func (a *App) Stats(ctx context.Context) (metrics.Stats, error) {
	if a.catalog == nil {
		return metrics.Stats{}, fmt.Errorf("catalog disabled")
	}
	return a.catalog.GetStats(ctx)
}

// ThumbnailsFor lists the cache entries generated from a source file.
func (a *App) ThumbnailsFor(ctx context.Context, sourcePath string) ([]string, error) {
	if a.catalog == nil {
		return nil, fmt.Errorf("catalog disabled")
	}
	return a.catalog.ThumbnailsFor(ctx, sourcePath)
}

// Close drains in-flight requests and releases resources.
func (a *App) Close() error {
	startup.LogShutdownInitiated("close")

	a.pool.Close()
	startup.LogShutdownStepComplete("Worker pool drained")

	a.monitor.Stop()

	if a.collector != nil {
		a.collector.Stop()
	}

	var err error
	if a.catalog != nil {
		if err = a.catalog.Close(); err != nil {
			logging.Warn("Catalog close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Catalog closed")
		}
	}

	if a.vips {
		media.ShutdownVips()
	}

	startup.LogShutdownComplete()
	return err
}
