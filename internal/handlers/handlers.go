package handlers

import (
	"context"

	"itunes-library/internal/database"
	"itunes-library/internal/indexer"
	"itunes-library/internal/library"
)

// maxUploadBytes bounds the body accepted by ImportLibrary.
const maxUploadBytes = 256 << 20

// Store is the read side of the library database used by the API.
type Store interface {
	ListLibraries(ctx context.Context) ([]database.LibrarySummary, error)
	GetLibrary(ctx context.Context, id int64) (*database.LibraryDetail, error)
	GetTracks(ctx context.Context, libraryID int64, offset, limit int) (*database.TrackPage, error)
	GetTrack(ctx context.Context, libraryID, trackID int64) (*library.Track, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]database.SearchHit, error)
	GetPlaylists(ctx context.Context, libraryID int64) ([]database.PlaylistSummary, error)
	GetPlaylistTracks(ctx context.Context, libraryID, playlistID int64) (*database.PlaylistDetail, error)
	GetStats() database.Stats
}

// Syncer is the part of the indexer the API drives.
type Syncer interface {
	IsReady() bool
	GetHealthStatus() indexer.HealthStatus
	TriggerSync() bool
}

type Handlers struct {
	store     Store
	indexer   Syncer
	importer  *library.Importer
	maxUpload int64
}

func New(store Store, idx Syncer, importer *library.Importer) *Handlers {
	if importer == nil {
		importer = library.NewImporter(nil)
	}
	return &Handlers{
		store:     store,
		indexer:   idx,
		importer:  importer,
		maxUpload: maxUploadBytes,
	}
}
