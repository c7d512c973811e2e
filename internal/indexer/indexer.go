package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"itunes-library/internal/database"
	"itunes-library/internal/library"
	"itunes-library/internal/logging"
	"itunes-library/internal/metrics"
)

// ErrSyncInProgress is returned by Sync when another sync is running.
var ErrSyncInProgress = errors.New("sync already in progress")

// Store is the part of the database the indexer writes to.
type Store interface {
	GetSourceFingerprint(ctx context.Context, path string) (string, error)
	SaveLibrary(ctx context.Context, lib *library.Library, src database.Source) (database.SaveResult, error)
	SetLastSync(ctx context.Context, t time.Time) error
}

// Indexer keeps the store in step with a set of library files.
type Indexer struct {
	store        Store
	importer     *library.Importer
	paths        []string
	syncInterval time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	syncMu              sync.Mutex
	isSyncing           bool
	lastSyncTime        time.Time
	lastResult          *SyncResult
	lastError           error
	initialSyncComplete bool
	startTime           time.Time

	// Callback when a sync completes
	onSyncComplete func(SyncResult)
}

// SyncResult summarizes one pass over the configured files.
type SyncResult struct {
	StartedAt time.Time        `json:"startedAt"`
	Duration  string           `json:"duration"`
	Imported  int              `json:"imported"`
	Unchanged int              `json:"unchanged"`
	Failed    int              `json:"failed"`
	Files     []FileSyncResult `json:"files"`
}

// FileSyncResult is the outcome for one library file.
type FileSyncResult struct {
	Path      string `json:"path"`
	Outcome   string `json:"outcome"` // "imported", "unchanged", "failed"
	LibraryID int64  `json:"libraryId,omitempty"`
	ImportID  string `json:"importId,omitempty"`
	Tracks    int    `json:"tracks,omitempty"`
	Playlists int    `json:"playlists,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready      bool        `json:"ready"`
	Syncing    bool        `json:"syncing"`
	StartTime  time.Time   `json:"startTime"`
	Uptime     string      `json:"uptime"`
	Libraries  int         `json:"libraries"`
	LastSynced time.Time   `json:"lastSynced,omitempty"`
	LastError  string      `json:"lastError,omitempty"`
	LastResult *SyncResult `json:"lastResult,omitempty"`
}

// New creates an Indexer for paths. importer may be nil to use the default
// file loader.
func New(store Store, importer *library.Importer, paths []string, syncInterval time.Duration) *Indexer {
	if importer == nil {
		importer = library.NewImporter(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Indexer{
		store:        store,
		importer:     importer,
		paths:        append([]string(nil), paths...),
		syncInterval: syncInterval,
		ctx:          ctx,
		cancel:       cancel,
		startTime:    time.Now(),
	}
}

// SetOnSyncComplete sets a callback invoked after every completed sync.
func (idx *Indexer) SetOnSyncComplete(callback func(SyncResult)) {
	idx.onSyncComplete = callback
}

// Start runs an initial sync in the background and then syncs every
// syncInterval until Stop.
func (idx *Indexer) Start() {
	go func() {
		logging.Info("Starting initial library sync in background...")
		if _, err := idx.Sync(idx.ctx); err != nil {
			logging.Error("Initial sync error: %v", err)
		}
	}()

	if idx.syncInterval > 0 {
		go idx.periodicSync()
	}
}

// Stop cancels any running sync and stops the periodic loop.
func (idx *Indexer) Stop() {
	idx.stopOnce.Do(idx.cancel)
}

func (idx *Indexer) periodicSync() {
	ticker := time.NewTicker(idx.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic sync triggered")
			if _, err := idx.Sync(idx.ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
				logging.Error("periodic sync failed: %v", err)
			}
		case <-idx.ctx.Done():
			return
		}
	}
}

// TriggerSync starts a sync in the background. It returns false when a
// sync is already running.
func (idx *Indexer) TriggerSync() bool {
	if idx.IsSyncing() {
		return false
	}
	go func() {
		if _, err := idx.Sync(idx.ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
			logging.Error("manually triggered sync failed: %v", err)
		}
	}()
	return true
}

// Sync imports every configured file whose fingerprint changed since its
// last import. Per-file failures are reported in the result; the returned
// error is set only when the whole sync could not run.
func (idx *Indexer) Sync(ctx context.Context) (SyncResult, error) {
	if !idx.tryStartSync() {
		return SyncResult{}, ErrSyncInProgress
	}

	metrics.SyncIsRunning.Set(1)
	defer metrics.SyncIsRunning.Set(0)
	metrics.SyncRunsTotal.Inc()

	start := time.Now()
	logging.Info("Starting library sync of %d files...", len(idx.paths))

	result := SyncResult{StartedAt: start, Files: make([]FileSyncResult, len(idx.paths))}
	fingerprints := make(map[string]string, len(idx.paths))
	var changed []string
	var positions []int

	for i, path := range idx.paths {
		result.Files[i].Path = path

		fp, err := Fingerprint(path)
		if err != nil {
			result.Files[i].Outcome = "failed"
			result.Files[i].Error = fmt.Sprintf("%v: %v", library.ErrSourceUnavailable, err)
			continue
		}
		stored, err := idx.store.GetSourceFingerprint(ctx, path)
		if err != nil {
			result.Files[i].Outcome = "failed"
			result.Files[i].Error = err.Error()
			continue
		}
		if stored == fp {
			result.Files[i].Outcome = "unchanged"
			continue
		}
		fingerprints[path] = fp
		changed = append(changed, path)
		positions = append(positions, i)
	}

	for j, r := range idx.importer.ImportAll(ctx, changed, library.AllTracks) {
		file := &result.Files[positions[j]]
		if r.Err != nil {
			file.Outcome = "failed"
			file.Error = r.Err.Error()
			logging.Warn("Import of %s failed: %v", r.Path, r.Err)
			continue
		}

		saved, err := idx.store.SaveLibrary(ctx, r.Library, database.Source{Path: r.Path, Fingerprint: fingerprints[r.Path]})
		if err != nil {
			file.Outcome = "failed"
			file.Error = err.Error()
			logging.Error("Failed to store %s: %v", r.Path, err)
			continue
		}
		file.Outcome = "imported"
		file.LibraryID = saved.LibraryID
		file.ImportID = saved.ImportID
		file.Tracks = len(r.Library.Tracks)
		file.Playlists = len(r.Library.Playlists)
		logging.Info("Imported %s: %d tracks, %d playlists", r.Path, file.Tracks, file.Playlists)
	}

	var lastErr error
	for _, f := range result.Files {
		switch f.Outcome {
		case "imported":
			result.Imported++
		case "unchanged":
			result.Unchanged++
		default:
			result.Failed++
			lastErr = fmt.Errorf("%s: %s", f.Path, f.Error)
		}
		metrics.SyncFilesTotal.WithLabelValues(f.Outcome).Inc()
	}

	duration := time.Since(start)
	result.Duration = duration.String()

	if err := idx.store.SetLastSync(ctx, time.Now()); err != nil {
		logging.Warn("Failed to record last sync time: %v", err)
	}

	metrics.SyncLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.SyncLastRunDuration.Set(duration.Seconds())

	idx.finishSync(result, lastErr)

	logging.Info("Sync complete in %v: %d imported, %d unchanged, %d failed",
		duration, result.Imported, result.Unchanged, result.Failed)

	if idx.onSyncComplete != nil {
		idx.onSyncComplete(result)
	}

	return result, nil
}

// tryStartSync attempts to start a sync, returns false if already in progress.
func (idx *Indexer) tryStartSync() bool {
	idx.syncMu.Lock()
	defer idx.syncMu.Unlock()

	if idx.isSyncing {
		return false
	}
	idx.isSyncing = true
	return true
}

// finishSync marks a sync as complete.
func (idx *Indexer) finishSync(result SyncResult, lastErr error) {
	idx.syncMu.Lock()
	defer idx.syncMu.Unlock()

	idx.isSyncing = false
	idx.initialSyncComplete = true
	idx.lastSyncTime = time.Now()
	idx.lastResult = &result
	idx.lastError = lastErr
}

// IsReady returns true once the first sync has finished.
func (idx *Indexer) IsReady() bool {
	idx.syncMu.Lock()
	defer idx.syncMu.Unlock()
	return idx.initialSyncComplete
}

// IsSyncing returns whether a sync is currently in progress.
func (idx *Indexer) IsSyncing() bool {
	idx.syncMu.Lock()
	defer idx.syncMu.Unlock()
	return idx.isSyncing
}

// LastSyncTime returns the time of the last completed sync.
func (idx *Indexer) LastSyncTime() time.Time {
	idx.syncMu.Lock()
	defer idx.syncMu.Unlock()
	return idx.lastSyncTime
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.syncMu.Lock()
	defer idx.syncMu.Unlock()

	status := HealthStatus{
		Ready:      idx.initialSyncComplete,
		Syncing:    idx.isSyncing,
		StartTime:  idx.startTime,
		Uptime:     time.Since(idx.startTime).String(),
		Libraries:  len(idx.paths),
		LastSynced: idx.lastSyncTime,
		LastResult: idx.lastResult,
	}
	if idx.lastError != nil {
		status.LastError = idx.lastError.Error()
	}
	return status
}
