package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"itunes-library/internal/logging"
	"itunes-library/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when a library, track or playlist does not exist.
var ErrNotFound = errors.New("not found")

// Database stores imported libraries.
type Database struct {
	db      *sql.DB
	dbPath  string
	mu      sync.RWMutex
	stats   Stats
	statsMu sync.RWMutex
}

// New creates a new Database instance.
// dbPath is the full path to the database file; its parent directory must
// already exist and be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	-- One row per imported library file
	CREATE TABLE IF NOT EXISTS libraries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		library_key TEXT NOT NULL UNIQUE,
		persistent_id TEXT,
		source_path TEXT NOT NULL,
		import_id TEXT NOT NULL,
		imported_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		major_version INTEGER,
		minor_version INTEGER,
		export_date TEXT,
		application_version TEXT,
		features INTEGER,
		show_content_ratings INTEGER NOT NULL DEFAULT 0,
		music_folder TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_libraries_source ON libraries(source_path);

	-- Fingerprint of every imported file. Files that share a persistent id
	-- map to one library but keep their own fingerprints.
	CREATE TABLE IF NOT EXISTS sources (
		path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		library_id INTEGER NOT NULL,
		imported_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE
	);

	-- Tracks in import order; data holds the full decoded record as JSON
	CREATE TABLE IF NOT EXISTS tracks (
		library_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		track_id INTEGER,
		persistent_id TEXT,
		name TEXT,
		artist TEXT,
		album TEXT,
		genre TEXT,
		search_key TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL,
		PRIMARY KEY (library_id, position),
		FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_track_id ON tracks(library_id, track_id);
	CREATE INDEX IF NOT EXISTS idx_tracks_search ON tracks(search_key);

	CREATE TABLE IF NOT EXISTS playlists (
		library_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		playlist_id INTEGER,
		persistent_id TEXT,
		parent_persistent_id TEXT,
		name TEXT,
		data TEXT NOT NULL,
		PRIMARY KEY (library_id, position),
		FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_playlists_playlist_id ON playlists(library_id, playlist_id);

	-- Track references, kept even when the referenced track is not stored
	CREATE TABLE IF NOT EXISTS playlist_items (
		library_id INTEGER NOT NULL,
		playlist_position INTEGER NOT NULL,
		item_position INTEGER NOT NULL,
		track_id INTEGER NOT NULL,
		PRIMARY KEY (library_id, playlist_position, item_position),
		FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE
	);

	-- Metadata table
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	if _, err = d.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	err = d.runMigrations(ctx)
	return err
}

// runMigrations applies database schema migrations
func (d *Database) runMigrations(ctx context.Context) error {
	// Migration 1: source fingerprint used to skip unchanged files
	var columnExists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('libraries')
		WHERE name='source_fingerprint'
	`).Scan(&columnExists)
	if err != nil {
		return fmt.Errorf("failed to check for source_fingerprint column: %w", err)
	}

	if !columnExists {
		logging.Info("Migrating database: adding source_fingerprint column to libraries table")

		_, err = d.db.ExecContext(ctx, `
			ALTER TABLE libraries ADD COLUMN source_fingerprint TEXT NOT NULL DEFAULT ''
		`)
		if err != nil {
			return fmt.Errorf("failed to add source_fingerprint column: %w", err)
		}

		logging.Info("Migration complete: source_fingerprint column added")
	}

	// Migration 2: seed per-file fingerprints from libraries imported before
	// the sources table existed
	res, err := d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO sources (path, fingerprint, library_id, imported_at)
		SELECT source_path, source_fingerprint, id, imported_at FROM libraries
		WHERE source_fingerprint != ''
	`)
	if err != nil {
		return fmt.Errorf("failed to seed sources: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logging.Info("Migration complete: seeded %d source fingerprints", n)
	}

	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// beginBatch starts a write transaction. The caller must hold d.mu and
// finish with endBatch.
func (d *Database) beginBatch(ctx context.Context) (*sql.Tx, time.Time, error) {
	start := time.Now()
	tx, err := d.db.BeginTx(ctx, nil)
	return tx, start, err
}

// endBatch commits or rolls back a transaction.
func (d *Database) endBatch(tx *sql.Tx, start time.Time, err error) error {
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return tx.Commit()
}

// Vacuum optimizes the database.
func (d *Database) Vacuum(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("vacuum", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "VACUUM")
	return err
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	logging.Debug("Database directory is writable")

	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 != 0 {
			continue
		}
		logging.Warn("%s is read-only! Mode: %v - this will cause write failures", path, info.Mode())
		if path == dbPath {
			continue
		}
		if chmodErr := os.Chmod(path, 0o600); chmodErr != nil {
			logging.Error("Failed to fix permissions on %s: %v", path, chmodErr)
		} else {
			logging.Info("Fixed permissions on %s", path)
		}
	}

	return nil
}
