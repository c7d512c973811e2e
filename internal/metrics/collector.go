package metrics

import (
	"context"
	"time"

	"itunes-library/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	LibraryStats(ctx context.Context) (Stats, error)
}

// Stats holds the current store totals
type Stats struct {
	Libraries int
	Tracks    int
	Playlists int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := c.statsProvider.LibraryStats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	LibrariesTotal.Set(float64(stats.Libraries))
	TracksTotal.Set(float64(stats.Tracks))
	PlaylistsTotal.Set(float64(stats.Playlists))

	logging.Debug("Metrics collected: libraries=%d, tracks=%d, playlists=%d",
		stats.Libraries, stats.Tracks, stats.Playlists)
}
