package library

import (
	"itunes-library/internal/dictdecode"
	"itunes-library/internal/plist"
)

// ParseInfo decodes the library metadata held directly in the root dict.
func ParseInfo(doc *plist.Document, schema dictdecode.Schema) (Info, error) {
	rec, err := dictdecode.Decode(rootOf(doc), schema)
	if err != nil {
		return Info{}, err
	}
	return Info{
		MajorVersion:        intField(rec, "major_version"),
		MinorVersion:        intField(rec, "minor_version"),
		Date:                strField(rec, "date"),
		ApplicationVersion:  strField(rec, "application_version"),
		Features:            intField(rec, "features"),
		ShowContentRatings:  rec.Flag("show_content_ratings"),
		MusicFolder:         strField(rec, "music_folder"),
		LibraryPersistentID: strField(rec, "library_persistent_id"),
	}, nil
}
