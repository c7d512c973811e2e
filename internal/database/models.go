package database

import (
	"time"

	"itunes-library/internal/library"
)

// Source identifies the file a library was imported from.
type Source struct {
	Path        string
	Fingerprint string
}

// LibrarySummary describes a stored library without its tracks.
type LibrarySummary struct {
	ID                 int64     `json:"id"`
	PersistentID       string    `json:"persistentId,omitempty"`
	SourcePath         string    `json:"sourcePath"`
	ImportID           string    `json:"importId"`
	ImportedAt         time.Time `json:"importedAt"`
	ApplicationVersion string    `json:"applicationVersion,omitempty"`
	ExportDate         string    `json:"exportDate,omitempty"`
	MusicFolder        string    `json:"musicFolder,omitempty"`
	TrackCount         int       `json:"trackCount"`
	PlaylistCount      int       `json:"playlistCount"`
}

// LibraryDetail is a stored library with its decoded info.
type LibraryDetail struct {
	LibrarySummary
	Info library.Info `json:"info"`
}

// TrackPage is one page of a library's tracks.
type TrackPage struct {
	Items  []library.Track `json:"items"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// PlaylistSummary describes a playlist without resolving its tracks.
type PlaylistSummary struct {
	Position           int     `json:"position"`
	PlaylistID         *int64  `json:"playlistId"`
	Name               *string `json:"name"`
	PersistentID       *string `json:"persistentId"`
	ParentPersistentID *string `json:"parentPersistentId,omitempty"`
	Master             bool    `json:"master"`
	Folder             bool    `json:"folder"`
	ItemCount          int     `json:"itemCount"`
}

// PlaylistDetail is a playlist with its references resolved against the
// stored tracks. References to tracks that were not stored are counted in
// Missing and left out of Tracks.
type PlaylistDetail struct {
	Playlist library.Playlist `json:"playlist"`
	Tracks   []library.Track  `json:"tracks"`
	Missing  int              `json:"missing"`
}

// SearchHit is a track matched by SearchTracks.
type SearchHit struct {
	LibraryID int64         `json:"libraryId"`
	Track     library.Track `json:"track"`
}

// Stats holds store totals.
type Stats struct {
	Libraries int       `json:"libraries"`
	Tracks    int       `json:"tracks"`
	Playlists int       `json:"playlists"`
	Items     int       `json:"playlistItems"`
	LastSync  time.Time `json:"lastSync"`
}
