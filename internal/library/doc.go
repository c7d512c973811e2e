// Package library decodes an exported media library (an XML property list)
// into library info, tracks and playlists.
//
// Each record type has a schema (InfoSchema, TrackSchema, PlaylistSchema)
// that the dictdecode package applies to the record's dict. ParseTracks
// takes a Window over document positions; ParsePlaylists always returns
// every playlist with its complete list of track references, whichever
// tracks were selected.
//
// Importer ties the stages together for one file:
//
//	lib, err := library.Import("/music/iTunes Library.xml", library.Page(0, 100))
//	if errors.Is(err, library.ErrSourceUnavailable) {
//		...
//	}
package library
