package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"itunes-library/internal/library"
	"itunes-library/internal/logging"
)

// SaveResult identifies a stored import.
type SaveResult struct {
	LibraryID int64
	ImportID  string
}

// libraryKey identifies a library across imports: its persistent id when
// the export has one, otherwise the file it came from.
func libraryKey(lib *library.Library, src Source) string {
	if id := lib.Info.LibraryPersistentID; id != nil && *id != "" {
		return "pid:" + *id
	}
	return "path:" + src.Path
}

// SaveLibrary stores lib, replacing any earlier import of the same library
// in one transaction. Playlist references are stored as-is, including ids
// of tracks that were not imported.
func (d *Database) SaveLibrary(ctx context.Context, lib *library.Library, src Source) (SaveResult, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("save_library", start, err) }()

	if lib == nil {
		err = errors.New("nil library")
		return SaveResult{}, err
	}

	importID, err := uuid.NewV7()
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to generate import id: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tx, txStart, err := d.beginBatch(ctx)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var id int64
	id, err = saveLibraryTx(ctx, tx, lib, src, importID.String())
	if err = d.endBatch(tx, txStart, err); err != nil {
		return SaveResult{}, err
	}

	logging.Debug("Stored library %d from %s (import %s): %d tracks, %d playlists",
		id, src.Path, importID, len(lib.Tracks), len(lib.Playlists))
	return SaveResult{LibraryID: id, ImportID: importID.String()}, nil
}

func saveLibraryTx(ctx context.Context, tx *sql.Tx, lib *library.Library, src Source, importID string) (int64, error) {
	info := lib.Info
	key := libraryKey(lib, src)

	var prevPath string
	err := tx.QueryRowContext(ctx, "SELECT source_path FROM libraries WHERE library_key = ?", key).Scan(&prevPath)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return 0, fmt.Errorf("failed to look up library: %w", err)
	case prevPath != src.Path:
		logging.Warn("Library %s from %s replaces the import from %s; both files share one library",
			key, src.Path, prevPath)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
	INSERT INTO libraries (library_key, persistent_id, source_path, source_fingerprint, import_id, imported_at,
		major_version, minor_version, export_date, application_version, features, show_content_ratings, music_folder)
	VALUES (?, ?, ?, ?, ?, strftime('%s', 'now'), ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(library_key) DO UPDATE SET
		persistent_id = excluded.persistent_id,
		source_path = excluded.source_path,
		source_fingerprint = excluded.source_fingerprint,
		import_id = excluded.import_id,
		imported_at = excluded.imported_at,
		major_version = excluded.major_version,
		minor_version = excluded.minor_version,
		export_date = excluded.export_date,
		application_version = excluded.application_version,
		features = excluded.features,
		show_content_ratings = excluded.show_content_ratings,
		music_folder = excluded.music_folder
	RETURNING id
	`,
		key, info.LibraryPersistentID, src.Path, src.Fingerprint, importID,
		info.MajorVersion, info.MinorVersion, info.Date, info.ApplicationVersion, info.Features,
		info.ShowContentRatings, info.MusicFolder,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert library: %w", err)
	}

	for _, table := range []string{"playlist_items", "playlists", "tracks"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE library_id = ?", id); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sources (path, fingerprint, library_id, imported_at)
		VALUES (?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(path) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			library_id = excluded.library_id,
			imported_at = excluded.imported_at
	`, src.Path, src.Fingerprint, id); err != nil {
		return 0, fmt.Errorf("failed to record source: %w", err)
	}

	if err := insertTracks(ctx, tx, id, lib.Tracks); err != nil {
		return 0, err
	}
	if err := insertPlaylists(ctx, tx, id, lib.Playlists); err != nil {
		return 0, err
	}
	return id, nil
}

func insertTracks(ctx context.Context, tx *sql.Tx, libraryID int64, tracks []library.Track) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO tracks (library_id, position, track_id, persistent_id, name, artist, album, genre, search_key, data)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i := range tracks {
		t := &tracks[i]
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode track %d: %w", i, err)
		}
		key := searchKey(t.Name, t.Artist, t.AlbumArtist, t.Album, t.Composer, t.Genre)
		if _, err := stmt.ExecContext(ctx, libraryID, i, t.TrackID, t.PersistentID,
			t.Name, t.Artist, t.Album, t.Genre, key, string(data)); err != nil {
			return fmt.Errorf("failed to insert track %d: %w", i, err)
		}
	}
	return nil
}

func insertPlaylists(ctx context.Context, tx *sql.Tx, libraryID int64, playlists []library.Playlist) error {
	plStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO playlists (library_id, position, playlist_id, persistent_id, parent_persistent_id, name, data)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare playlist insert: %w", err)
	}
	defer plStmt.Close()

	itemStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO playlist_items (library_id, playlist_position, item_position, track_id)
	VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare playlist item insert: %w", err)
	}
	defer itemStmt.Close()

	for i, p := range playlists {
		header := p
		header.Tracks = nil
		data, err := json.Marshal(header)
		if err != nil {
			return fmt.Errorf("failed to encode playlist %d: %w", i, err)
		}
		if _, err := plStmt.ExecContext(ctx, libraryID, i, p.PlaylistID, p.PlaylistPersistentID,
			p.ParentPersistentID, p.Name, string(data)); err != nil {
			return fmt.Errorf("failed to insert playlist %d: %w", i, err)
		}
		for j, ref := range p.Tracks {
			if _, err := itemStmt.ExecContext(ctx, libraryID, i, j, ref); err != nil {
				return fmt.Errorf("failed to insert item %d of playlist %d: %w", j, i, err)
			}
		}
	}
	return nil
}

const summaryColumns = `
	l.id, COALESCE(l.persistent_id, ''), l.source_path, l.import_id, l.imported_at,
	COALESCE(l.application_version, ''), COALESCE(l.export_date, ''), COALESCE(l.music_folder, ''),
	(SELECT COUNT(*) FROM tracks t WHERE t.library_id = l.id),
	(SELECT COUNT(*) FROM playlists p WHERE p.library_id = l.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner, extra ...any) (LibrarySummary, error) {
	var s LibrarySummary
	var importedAt int64
	dest := append([]any{
		&s.ID, &s.PersistentID, &s.SourcePath, &s.ImportID, &importedAt,
		&s.ApplicationVersion, &s.ExportDate, &s.MusicFolder, &s.TrackCount, &s.PlaylistCount,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return LibrarySummary{}, err
	}
	s.ImportedAt = time.Unix(importedAt, 0).UTC()
	return s, nil
}

// ListLibraries returns every stored library, oldest first.
func (d *Database) ListLibraries(ctx context.Context) ([]LibrarySummary, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_libraries", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT"+summaryColumns+" FROM libraries l ORDER BY l.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	libs := make([]LibrarySummary, 0)
	for rows.Next() {
		var s LibrarySummary
		if s, err = scanSummary(rows); err != nil {
			return nil, err
		}
		libs = append(libs, s)
	}
	err = rows.Err()
	return libs, err
}

// GetLibrary returns one library with its info.
func (d *Database) GetLibrary(ctx context.Context, id int64) (*LibraryDetail, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_library", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		major, minor, features sql.NullInt64
		date, appVersion       sql.NullString
		folder, pid            sql.NullString
		showRatings            bool
	)
	row := d.db.QueryRowContext(ctx, "SELECT"+summaryColumns+`,
		l.major_version, l.minor_version, l.export_date, l.application_version, l.features,
		l.show_content_ratings, l.music_folder, l.persistent_id
		FROM libraries l WHERE l.id = ?`, id)

	summary, err := scanSummary(row, &major, &minor, &date, &appVersion, &features, &showRatings, &folder, &pid)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("library %d: %w", id, ErrNotFound)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return &LibraryDetail{
		LibrarySummary: summary,
		Info: library.Info{
			MajorVersion:        nullInt(major),
			MinorVersion:        nullInt(minor),
			Date:                nullString(date),
			ApplicationVersion:  nullString(appVersion),
			Features:            nullInt(features),
			ShowContentRatings:  showRatings,
			MusicFolder:         nullString(folder),
			LibraryPersistentID: nullString(pid),
		},
	}, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

// libraryExistsNoLock assumes the caller holds d.mu.
func (d *Database) libraryExistsNoLock(ctx context.Context, id int64) error {
	var one int
	err := d.db.QueryRowContext(ctx, "SELECT 1 FROM libraries WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("library %d: %w", id, ErrNotFound)
	}
	return err
}

// GetTracks returns tracks of a library in import order. A limit of 0 or
// less returns every track from offset on.
func (d *Database) GetTracks(ctx context.Context, libraryID int64, offset, limit int) (*TrackPage, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_tracks", start, err) }()

	if offset < 0 {
		offset = 0
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err = d.libraryExistsNoLock(ctx, libraryID); err != nil {
		return nil, err
	}

	page := &TrackPage{Items: make([]library.Track, 0), Offset: offset, Limit: limit}
	if err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks WHERE library_id = ?", libraryID).Scan(&page.Total); err != nil {
		return nil, err
	}

	sqlLimit := limit
	if sqlLimit <= 0 {
		sqlLimit = -1
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT data FROM tracks WHERE library_id = ?
		ORDER BY position LIMIT ? OFFSET ?
	`, libraryID, sqlLimit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t library.Track
		if err = scanJSON(rows, &t); err != nil {
			return nil, err
		}
		page.Items = append(page.Items, t)
	}
	err = rows.Err()
	return page, err
}

// GetTrack returns the track with the given Track ID.
func (d *Database) GetTrack(ctx context.Context, libraryID, trackID int64) (*library.Track, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_track", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t library.Track
	row := d.db.QueryRowContext(ctx, `
		SELECT data FROM tracks WHERE library_id = ? AND track_id = ?
		ORDER BY position LIMIT 1
	`, libraryID, trackID)
	err = scanJSON(row, &t)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("track %d in library %d: %w", trackID, libraryID, ErrNotFound)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanJSON(row rowScanner, v any) error {
	var data string
	if err := row.Scan(&data); err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), v)
}

// SearchTracks finds tracks across all libraries whose name, artist, album
// artist, album, composer or genre contains query. Matching ignores case
// and diacritics.
func (d *Database) SearchTracks(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("search_tracks", start, err) }()

	hits := make([]SearchHit, 0)
	folded := foldSearch(query)
	if folded == "" {
		return hits, nil
	}
	if limit <= 0 {
		limit = 50
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT library_id, data FROM tracks
		WHERE search_key LIKE ? ESCAPE '\'
		ORDER BY library_id, position
		LIMIT ?
	`, likePattern(folded), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var hit SearchHit
		var data string
		if err = rows.Scan(&hit.LibraryID, &data); err != nil {
			return nil, err
		}
		if err = json.Unmarshal([]byte(data), &hit.Track); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	err = rows.Err()
	return hits, err
}

// GetPlaylists lists the playlists of a library in document order.
func (d *Database) GetPlaylists(ctx context.Context, libraryID int64) ([]PlaylistSummary, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_playlists", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err = d.libraryExistsNoLock(ctx, libraryID); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT p.position, p.data,
			(SELECT COUNT(*) FROM playlist_items i
			 WHERE i.library_id = p.library_id AND i.playlist_position = p.position)
		FROM playlists p WHERE p.library_id = ?
		ORDER BY p.position
	`, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]PlaylistSummary, 0)
	for rows.Next() {
		var s PlaylistSummary
		var data string
		if err = rows.Scan(&s.Position, &data, &s.ItemCount); err != nil {
			return nil, err
		}
		var p library.Playlist
		if err = json.Unmarshal([]byte(data), &p); err != nil {
			return nil, err
		}
		s.PlaylistID = p.PlaylistID
		s.Name = p.Name
		s.PersistentID = p.PlaylistPersistentID
		s.ParentPersistentID = p.ParentPersistentID
		s.Master = p.Master
		s.Folder = p.Folder
		summaries = append(summaries, s)
	}
	err = rows.Err()
	return summaries, err
}

// GetPlaylistTracks returns the playlist with the given Playlist ID and
// the stored tracks it references, in playlist order.
func (d *Database) GetPlaylistTracks(ctx context.Context, libraryID, playlistID int64) (*PlaylistDetail, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_playlist_tracks", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var position int
	var data string
	err = d.db.QueryRowContext(ctx, `
		SELECT position, data FROM playlists
		WHERE library_id = ? AND playlist_id = ?
		ORDER BY position LIMIT 1
	`, libraryID, playlistID).Scan(&position, &data)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("playlist %d in library %d: %w", playlistID, libraryID, ErrNotFound)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	detail := &PlaylistDetail{Tracks: make([]library.Track, 0)}
	if err = json.Unmarshal([]byte(data), &detail.Playlist); err != nil {
		return nil, err
	}
	detail.Playlist.Tracks = make([]int64, 0)

	rows, err := d.db.QueryContext(ctx, `
		SELECT i.track_id,
			(SELECT t.data FROM tracks t
			 WHERE t.library_id = i.library_id AND t.track_id = i.track_id
			 ORDER BY t.position LIMIT 1)
		FROM playlist_items i
		WHERE i.library_id = ? AND i.playlist_position = ?
		ORDER BY i.item_position
	`, libraryID, position)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ref int64
		var trackData sql.NullString
		if err = rows.Scan(&ref, &trackData); err != nil {
			return nil, err
		}
		detail.Playlist.Tracks = append(detail.Playlist.Tracks, ref)
		if !trackData.Valid {
			detail.Missing++
			continue
		}
		var t library.Track
		if err = json.Unmarshal([]byte(trackData.String), &t); err != nil {
			return nil, err
		}
		detail.Tracks = append(detail.Tracks, t)
	}
	err = rows.Err()
	return detail, err
}

// GetSourceFingerprint returns the fingerprint stored for the last import
// of path, or "" if path was never imported. It is tracked per file, not
// per library.
func (d *Database) GetSourceFingerprint(ctx context.Context, path string) (string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_fingerprint", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var fp string
	err = d.db.QueryRowContext(ctx, "SELECT fingerprint FROM sources WHERE path = ?", path).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return "", nil
	}
	return fp, err
}
