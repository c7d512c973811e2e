package library

import (
	"itunes-library/internal/dictdecode"
	"itunes-library/internal/plist"
)

// Window selects a range of track dicts by document position.
type Window struct {
	Offset   int
	Limit    int
	HasLimit bool
}

// AllTracks includes every track.
var AllTracks = Window{}

// Page returns the window [offset, offset+limit). A negative offset is
// treated as 0 and a negative limit as unbounded.
func Page(offset, limit int) Window {
	w := Window{Offset: offset, Limit: limit, HasLimit: true}
	return w.normalize()
}

func (w Window) normalize() Window {
	if w.Offset < 0 {
		w.Offset = 0
	}
	if w.Limit < 0 {
		w.Limit = 0
		w.HasLimit = false
	}
	return w
}

// Contains reports whether the track at document index i is in the window.
func (w Window) Contains(i int) bool {
	w = w.normalize()
	// i-Offset rather than Offset+Limit, which overflows for huge limits.
	return i >= w.Offset && (!w.HasLimit || i-w.Offset < w.Limit)
}

// ParseTracks decodes the child dicts of the Tracks dict that fall inside w.
// The index counts every child dict, decoded or not.
func ParseTracks(doc *plist.Document, schema dictdecode.Schema, w Window) ([]Track, error) {
	w = w.normalize()
	nodes := rootOf(doc).Dict(0)

	tracks := make([]Track, 0)
	if nodes == nil {
		return tracks, nil
	}
	for i, node := range nodes.Dicts {
		if !w.Contains(i) {
			if w.HasLimit && i >= w.Offset && i-w.Offset >= w.Limit {
				break
			}
			continue
		}
		rec, err := dictdecode.Decode(node, schema)
		if err != nil {
			return nil, &RecordError{Section: "tracks", Index: i, Err: err}
		}
		tracks = append(tracks, trackFromRecord(rec))
	}
	return tracks, nil
}

func trackFromRecord(rec dictdecode.Record) Track {
	return Track{
		TrackID:            intField(rec, "track_id"),
		Name:               strField(rec, "name"),
		Artist:             strField(rec, "artist"),
		AlbumArtist:        strField(rec, "album_artist"),
		Composer:           strField(rec, "composer"),
		Album:              strField(rec, "album"),
		Genre:              strField(rec, "genre"),
		Kind:               strField(rec, "kind"),
		Size:               intField(rec, "size"),
		TotalTime:          intField(rec, "total_time"),
		DiscNumber:         intField(rec, "disc_number"),
		DiscCount:          intField(rec, "disc_count"),
		TrackNumber:        intField(rec, "track_number"),
		TrackCount:         intField(rec, "track_count"),
		Year:               intField(rec, "year"),
		DateModified:       strField(rec, "date_modified"),
		DateAdded:          strField(rec, "date_added"),
		BitRate:            intField(rec, "bit_rate"),
		SampleRate:         intField(rec, "sample_rate"),
		Comments:           strField(rec, "comments"),
		PlayCount:          intField(rec, "play_count"),
		PlayDate:           intField(rec, "play_date"),
		PlayDateUTC:        strField(rec, "play_date_utc"),
		Rating:             intField(rec, "rating"),
		AlbumRating:        intField(rec, "album_rating"),
		ReleaseDate:        strField(rec, "release_date"),
		Normalization:      intField(rec, "normalization"),
		ArtworkCount:       intField(rec, "artwork_count"),
		Series:             strField(rec, "series"),
		Season:             intField(rec, "season"),
		Episode:            strField(rec, "episode"),
		EpisodeOrder:       intField(rec, "episode_order"),
		SortAlbum:          strField(rec, "sort_album"),
		PersistentID:       strField(rec, "persistent_id"),
		ContentRating:      strField(rec, "content_rating"),
		TrackType:          strField(rec, "track_type"),
		Protected:          rec.Flag("protected"),
		Purchased:          rec.Flag("purchased"),
		Podcast:            rec.Flag("podcast"),
		Unplayed:           rec.Flag("unplayed"),
		HasVideo:           rec.Flag("has_video"),
		VideoWidth:         intField(rec, "video_width"),
		VideoHeight:        intField(rec, "video_height"),
		Movie:              rec.Flag("movie"),
		TVShow:             rec.Flag("tv_show"),
		MusicVideo:         rec.Flag("music_video"),
		Location:           strField(rec, "location"),
		FileFolderCount:    intField(rec, "file_folder_count"),
		LibraryFolderCount: intField(rec, "library_folder_count"),
	}
}
