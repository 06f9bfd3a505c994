package memory

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"board-assets/internal/logging"
	"board-assets/internal/metrics"
)

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	// LimitBytes overrides the runtime soft limit; 0 uses GOMEMLIMIT.
	LimitBytes int64
	// HighWaterMark is the usage ratio below which a paused monitor resumes.
	HighWaterMark float64
	// CriticalWaterMark is the usage ratio at which the monitor pauses.
	CriticalWaterMark float64
	// CheckInterval is the sampling period.
	CheckInterval time.Duration
}

// DefaultMonitorConfig returns the production thresholds.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     2 * time.Second,
	}
}

// Monitor gates memory-hungry work on heap usage.
type Monitor struct {
	cfg   MonitorConfig
	limit int64

	// heapAlloc is swapped out by tests.
	heapAlloc func() uint64

	mu     sync.Mutex
	alloc  uint64
	paused bool
	resume chan struct{}

	startOnce sync.Once
	started   atomic.Bool
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewMonitor creates a monitor. It does not sample until Start.
func NewMonitor(cfg MonitorConfig) *Monitor {
	limit := cfg.LimitBytes
	if limit == 0 {
		limit = currentLimit()
	}
	if limit == 0 {
		logging.Debug("memory monitor: no limit configured, generation is never paused")
	}

	return &Monitor{
		cfg:       cfg,
		limit:     limit,
		heapAlloc: readHeapAlloc,
		resume:    make(chan struct{}),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Limit returns the byte limit the monitor compares against.
func (m *Monitor) Limit() int64 {
	return m.limit
}

// Start begins periodic sampling. It is a no-op without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	m.startOnce.Do(func() {
		m.started.Store(true)
		go m.loop()
	})
}

// Stop ends sampling and releases any waiters. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.started.Load() {
			<-m.done
		}
	})
}

func (m *Monitor) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sample()
		case <-m.stop:
			return
		}
	}
}

func (m *Monitor) sample() {
	alloc := m.heapAlloc()
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.alloc = alloc

	switch {
	case !m.paused && usage >= m.cfg.CriticalWaterMark:
		logging.Warn("Memory critical (%.1f%% of %s), pausing thumbnail generation", usage*100, formatBytes(m.limit))
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		go runtime.GC()
	case m.paused && usage < m.cfg.HighWaterMark:
		logging.Info("Memory recovered (%.1f%%), resuming thumbnail generation", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resume)
		m.resume = make(chan struct{})
	}
}

// WaitIfPaused blocks while the monitor is paused. It returns false if ctx
// is done or the monitor is stopped first.
func (m *Monitor) WaitIfPaused(ctx context.Context) bool {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return true
	}
	resume := m.resume
	m.mu.Unlock()

	select {
	case <-resume:
		return true
	case <-ctx.Done():
		return false
	case <-m.stop:
		return false
	}
}

// Paused reports whether generation is currently held back.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Usage returns the last sampled heap usage as a fraction of the limit.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.alloc) / float64(m.limit)
}

func readHeapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}
