package database

import (
	"context"
	"time"

	"itunes-library/internal/metrics"
)

// RefreshStats recounts the store and caches the result for GetStats.
func (d *Database) RefreshStats(ctx context.Context) (Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("refresh_stats", start, err) }()

	lastSync, err := d.GetLastSync(ctx)
	if err != nil {
		return Stats{}, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stats := Stats{LastSync: lastSync}
	err = d.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM libraries),
			(SELECT COUNT(*) FROM tracks),
			(SELECT COUNT(*) FROM playlists),
			(SELECT COUNT(*) FROM playlist_items)
	`).Scan(&stats.Libraries, &stats.Tracks, &stats.Playlists, &stats.Items)
	if err != nil {
		return Stats{}, err
	}

	d.statsMu.Lock()
	d.stats = stats
	d.statsMu.Unlock()

	return stats, nil
}

// GetStats returns the totals from the last RefreshStats.
func (d *Database) GetStats() Stats {
	d.statsMu.RLock()
	defer d.statsMu.RUnlock()
	return d.stats
}

// LibraryStats implements metrics.StatsProvider.
func (d *Database) LibraryStats(ctx context.Context) (metrics.Stats, error) {
	stats, err := d.RefreshStats(ctx)
	if err != nil {
		return metrics.Stats{}, err
	}
	d.UpdateDBMetrics()
	return metrics.Stats{
		Libraries: stats.Libraries,
		Tracks:    stats.Tracks,
		Playlists: stats.Playlists,
	}, nil
}
