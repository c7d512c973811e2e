package library

// Info is the library-level metadata found in the root dict.
type Info struct {
	MajorVersion        *int64  `json:"major_version" yaml:"major_version"`
	MinorVersion        *int64  `json:"minor_version" yaml:"minor_version"`
	Date                *string `json:"date" yaml:"date"`
	ApplicationVersion  *string `json:"application_version" yaml:"application_version"`
	Features            *int64  `json:"features" yaml:"features"`
	ShowContentRatings  bool    `json:"show_content_ratings" yaml:"show_content_ratings"`
	MusicFolder         *string `json:"music_folder" yaml:"music_folder"`
	LibraryPersistentID *string `json:"library_persistent_id" yaml:"library_persistent_id"`
}

// Track is one entry of the Tracks dict. Pointer fields are nil when the
// key was not present; flags are false when absent.
type Track struct {
	TrackID            *int64  `json:"track_id" yaml:"track_id"`
	Name               *string `json:"name" yaml:"name"`
	Artist             *string `json:"artist" yaml:"artist"`
	AlbumArtist        *string `json:"album_artist" yaml:"album_artist"`
	Composer           *string `json:"composer" yaml:"composer"`
	Album              *string `json:"album" yaml:"album"`
	Genre              *string `json:"genre" yaml:"genre"`
	Kind               *string `json:"kind" yaml:"kind"`
	Size               *int64  `json:"size" yaml:"size"`
	TotalTime          *int64  `json:"total_time" yaml:"total_time"`
	DiscNumber         *int64  `json:"disc_number" yaml:"disc_number"`
	DiscCount          *int64  `json:"disc_count" yaml:"disc_count"`
	TrackNumber        *int64  `json:"track_number" yaml:"track_number"`
	TrackCount         *int64  `json:"track_count" yaml:"track_count"`
	Year               *int64  `json:"year" yaml:"year"`
	DateModified       *string `json:"date_modified" yaml:"date_modified"`
	DateAdded          *string `json:"date_added" yaml:"date_added"`
	BitRate            *int64  `json:"bit_rate" yaml:"bit_rate"`
	SampleRate         *int64  `json:"sample_rate" yaml:"sample_rate"`
	Comments           *string `json:"comments" yaml:"comments"`
	PlayCount          *int64  `json:"play_count" yaml:"play_count"`
	PlayDate           *int64  `json:"play_date" yaml:"play_date"`
	PlayDateUTC        *string `json:"play_date_utc" yaml:"play_date_utc"`
	Rating             *int64  `json:"rating" yaml:"rating"`
	AlbumRating        *int64  `json:"album_rating" yaml:"album_rating"`
	ReleaseDate        *string `json:"release_date" yaml:"release_date"`
	Normalization      *int64  `json:"normalization" yaml:"normalization"`
	ArtworkCount       *int64  `json:"artwork_count" yaml:"artwork_count"`
	Series             *string `json:"series" yaml:"series"`
	Season             *int64  `json:"season" yaml:"season"`
	Episode            *string `json:"episode" yaml:"episode"`
	EpisodeOrder       *int64  `json:"episode_order" yaml:"episode_order"`
	SortAlbum          *string `json:"sort_album" yaml:"sort_album"`
	PersistentID       *string `json:"persistent_id" yaml:"persistent_id"`
	ContentRating      *string `json:"content_rating" yaml:"content_rating"`
	TrackType          *string `json:"track_type" yaml:"track_type"`
	Protected          bool    `json:"protected" yaml:"protected"`
	Purchased          bool    `json:"purchased" yaml:"purchased"`
	Podcast            bool    `json:"podcast" yaml:"podcast"`
	Unplayed           bool    `json:"unplayed" yaml:"unplayed"`
	HasVideo           bool    `json:"has_video" yaml:"has_video"`
	VideoWidth         *int64  `json:"video_width" yaml:"video_width"`
	VideoHeight        *int64  `json:"video_height" yaml:"video_height"`
	Movie              bool    `json:"movie" yaml:"movie"`
	TVShow             bool    `json:"tv_show" yaml:"tv_show"`
	MusicVideo         bool    `json:"music_video" yaml:"music_video"`
	Location           *string `json:"location" yaml:"location"`
	FileFolderCount    *int64  `json:"file_folder_count" yaml:"file_folder_count"`
	LibraryFolderCount *int64  `json:"library_folder_count" yaml:"library_folder_count"`
}

// Playlist is one entry of the Playlists array. Tracks holds the raw track
// id references in document order, duplicates included.
type Playlist struct {
	Name                 *string `json:"name" yaml:"name"`
	PlaylistID           *int64  `json:"playlist_id" yaml:"playlist_id"`
	PlaylistPersistentID *string `json:"playlist_persistent_id" yaml:"playlist_persistent_id"`
	ParentPersistentID   *string `json:"parent_persistent_id,omitempty" yaml:"parent_persistent_id,omitempty"`
	Description          *string `json:"description,omitempty" yaml:"description,omitempty"`
	DistinguishedKind    *int64  `json:"distinguished_kind,omitempty" yaml:"distinguished_kind,omitempty"`
	Master               bool    `json:"master" yaml:"master"`
	AllItems             bool    `json:"all_items" yaml:"all_items"`
	Folder               bool    `json:"folder" yaml:"folder"`
	Tracks               []int64 `json:"tracks" yaml:"tracks"`
}

// Library is the result of one import.
type Library struct {
	Info      Info       `json:"info" yaml:"info"`
	Tracks    []Track    `json:"tracks" yaml:"tracks"`
	Playlists []Playlist `json:"playlists" yaml:"playlists"`
}
