package library

import "itunes-library/internal/dictdecode"

func str(name, key string) dictdecode.FieldSpec {
	return dictdecode.FieldSpec{Name: name, Key: key, Kind: dictdecode.String}
}

func num(name, key string) dictdecode.FieldSpec {
	return dictdecode.FieldSpec{Name: name, Key: key, Kind: dictdecode.Integer}
}

func date(name, key string) dictdecode.FieldSpec {
	return dictdecode.FieldSpec{Name: name, Key: key, Kind: dictdecode.Date}
}

func flag(name, key string) dictdecode.FieldSpec {
	return dictdecode.FieldSpec{Name: name, Key: key, Kind: dictdecode.PresenceFlag}
}

// InfoSchema decodes the root dict. The nested Tracks dict and Playlists
// array are not scalar values and take no cursor slot.
var InfoSchema = dictdecode.Schema{
	num("major_version", "Major Version"),
	num("minor_version", "Minor Version"),
	date("date", "Date"),
	str("application_version", "Application Version"),
	num("features", "Features"),
	flag("show_content_ratings", "Show Content Ratings"),
	str("music_folder", "Music Folder"),
	str("library_persistent_id", "Library Persistent ID"),
}

// TrackSchema lists track fields in the order the exporter writes them.
// Same-kind fields must stay in this relative order.
var TrackSchema = dictdecode.Schema{
	num("track_id", "Track ID"),
	str("name", "Name"),
	str("artist", "Artist"),
	str("album_artist", "Album Artist"),
	str("composer", "Composer"),
	str("album", "Album"),
	str("genre", "Genre"),
	str("kind", "Kind"),
	num("size", "Size"),
	num("total_time", "Total Time"),
	num("disc_number", "Disc Number"),
	num("disc_count", "Disc Count"),
	num("track_number", "Track Number"),
	num("track_count", "Track Count"),
	num("year", "Year"),
	date("date_modified", "Date Modified"),
	date("date_added", "Date Added"),
	num("bit_rate", "Bit Rate"),
	num("sample_rate", "Sample Rate"),
	str("comments", "Comments"),
	num("play_count", "Play Count"),
	num("play_date", "Play Date"),
	date("play_date_utc", "Play Date UTC"),
	num("rating", "Rating"),
	num("album_rating", "Album Rating"),
	date("release_date", "Release Date"),
	num("normalization", "Normalization"),
	num("artwork_count", "Artwork Count"),
	str("series", "Series"),
	num("season", "Season"),
	str("episode", "Episode"),
	num("episode_order", "Episode Order"),
	str("sort_album", "Sort Album"),
	str("persistent_id", "Persistent ID"),
	str("content_rating", "Content Rating"),
	str("track_type", "Track Type"),
	flag("protected", "Protected"),
	flag("purchased", "Purchased"),
	flag("podcast", "Podcast"),
	flag("unplayed", "Unplayed"),
	flag("has_video", "Has Video"),
	// HD is written as <true/> or <false/>, so presence says nothing.
	num("video_width", "Video Width"),
	num("video_height", "Video Height"),
	flag("movie", "Movie"),
	flag("tv_show", "TV Show"),
	flag("music_video", "Music Video"),
	str("location", "Location"),
	num("file_folder_count", "File Folder Count"),
	num("library_folder_count", "Library Folder Count"),
}

// PlaylistSchema decodes a playlist header. Description, when present, is
// written between Name and the persistent id.
var PlaylistSchema = dictdecode.Schema{
	str("name", "Name"),
	str("description", "Description"),
	num("playlist_id", "Playlist ID"),
	str("playlist_persistent_id", "Playlist Persistent ID"),
	str("parent_persistent_id", "Parent Persistent ID"),
	num("distinguished_kind", "Distinguished Kind"),
	flag("master", "Master"),
	flag("all_items", "All Items"),
	flag("folder", "Folder"),
}
