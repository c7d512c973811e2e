// Package database stores imported libraries in SQLite.
//
// Each library file is kept as one row in libraries plus its tracks,
// playlists and playlist references. Importing the same library again
// (same persistent id, or same path when the export has none) replaces the
// earlier copy in a single transaction. Tracks keep their decoded record as
// JSON next to a few indexed columns and a folded search key.
//
// The database uses WAL mode and creates or migrates its schema on open.
package database
