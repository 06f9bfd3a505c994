package metrics

import (
	"context"
	"sync"
	"time"

	"board-assets/internal/logging"
)

// StatsProvider supplies catalog totals to the collector.
type StatsProvider interface {
	GetStats(ctx context.Context) (Stats, error)
}

// Stats holds the catalog totals exported as gauges.
type Stats struct {
	TempAssets      int64
	PermanentAssets int64
	Thumbnails      int64
	ThumbnailBytes  int64
}

// Collector periodically copies catalog totals into gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// NewCollector creates a collector polling provider every interval.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the collection loop.
func (c *Collector) Start() {
	c.wg.Add(1)
	go c.collectLoop()
}

// Stop ends the collection loop and waits for it to exit. Safe to call twice.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
}

func (c *Collector) collectLoop() {
	defer c.wg.Done()

	c.Collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Collect()
		case <-c.stopChan:
			return
		}
	}
}

// Collect performs one collection pass.
func (c *Collector) Collect() {
	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := c.statsProvider.GetStats(ctx)
	if err != nil {
		logging.Warn("metrics collector: failed to read catalog stats: %v", err)
		return
	}

	AssetsTotal.WithLabelValues("temp").Set(float64(stats.TempAssets))
	AssetsTotal.WithLabelValues("permanent").Set(float64(stats.PermanentAssets))
	ThumbnailCacheCount.Set(float64(stats.Thumbnails))
	ThumbnailCacheSize.Set(float64(stats.ThumbnailBytes))
}
