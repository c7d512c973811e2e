package memory

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"itunes-library/internal/logging"
	"itunes-library/internal/metrics"
)

// Config holds the monitor thresholds.
type Config struct {
	// LimitBytes is the budget usage is measured against. Zero means the
	// current GOMEMLIMIT.
	LimitBytes int64

	// ResumeRatio is the usage below which held imports are released.
	ResumeRatio float64

	// PauseRatio is the usage at which new imports are held.
	PauseRatio float64

	CheckInterval time.Duration
}

// DefaultConfig returns the thresholds used by the server.
func DefaultConfig() Config {
	return Config{
		ResumeRatio:   0.7,
		PauseRatio:    0.85,
		CheckInterval: 2 * time.Second,
	}
}

// Monitor samples heap usage and holds back new imports while usage is
// above the pause threshold. A whole library document is resident while it
// decodes, so starting another one under pressure risks an OOM kill.
type Monitor struct {
	config Config
	limit  int64
	sample func() uint64

	mu       sync.Mutex
	current  uint64
	paused   bool
	resumeCh chan struct{}

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a monitor. With no limit configured the monitor never
// pauses.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor: no limit configured, import gating disabled")
	} else {
		logging.Info("Memory monitor gating imports at %.0f%% of %s", config.PauseRatio*100, formatBytes(limit))
	}

	return &Monitor{
		config:   config,
		limit:    limit,
		sample:   heapAlloc,
		resumeCh: make(chan struct{}),
		stopCh:   make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins periodic sampling.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.config.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.check()
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop ends sampling and releases any waiters.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) check() {
	current := m.sample()
	usage := float64(current) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = current

	switch {
	case !m.paused && usage >= m.config.PauseRatio:
		logging.Warn("Memory at %.1f%% of limit, holding new imports", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryPauseEvents.Inc()
		go runtime.GC()
	case m.paused && usage < m.config.ResumeRatio:
		logging.Info("Memory at %.1f%% of limit, resuming imports", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resumeCh)
		m.resumeCh = make(chan struct{})
	}
}

// Wait blocks while the monitor is paused. It returns ctx.Err() if ctx ends
// first and nil once imports may proceed or the monitor is stopped.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return ctx.Err()
	}
	resume := m.resumeCh
	m.mu.Unlock()

	logging.Debug("Import waiting for memory pressure to ease")
	select {
	case <-resume:
		return nil
	case <-m.stopCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsPaused reports whether new imports are being held.
func (m *Monitor) IsPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Usage returns the last sampled heap usage as a fraction of the limit, or
// 0 when no limit is configured.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.current) / float64(m.limit)
}
