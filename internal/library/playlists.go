package library

import (
	"strconv"
	"strings"

	"itunes-library/internal/dictdecode"
	"itunes-library/internal/plist"
)

// ParsePlaylists decodes every dict of the Playlists array together with
// its track references. References are not checked against the tracks.
func ParsePlaylists(doc *plist.Document, schema dictdecode.Schema) ([]Playlist, error) {
	nodes := rootOf(doc).Array(0)

	playlists := make([]Playlist, 0, nodes.Len())
	if nodes == nil {
		return playlists, nil
	}
	for i, node := range nodes.Dicts {
		rec, err := dictdecode.Decode(node, schema)
		if err != nil {
			return nil, &RecordError{Section: "playlists", Index: i, Err: err}
		}
		refs, err := parseItems(node.Array(0))
		if err != nil {
			return nil, &RecordError{Section: "playlists", Index: i, Err: err}
		}

		playlists = append(playlists, Playlist{
			Name:                 strField(rec, "name"),
			PlaylistID:           intField(rec, "playlist_id"),
			PlaylistPersistentID: strField(rec, "playlist_persistent_id"),
			ParentPersistentID:   strField(rec, "parent_persistent_id"),
			Description:          strField(rec, "description"),
			DistinguishedKind:    intField(rec, "distinguished_kind"),
			Master:               rec.Flag("master"),
			AllItems:             rec.Flag("all_items"),
			Folder:               rec.Flag("folder"),
			Tracks:               refs,
		})
	}
	return playlists, nil
}

// parseItems reads the first integer of each item dict.
func parseItems(items *plist.Array) ([]int64, error) {
	refs := make([]int64, 0, items.Len())
	if items == nil {
		return refs, nil
	}
	for j, item := range items.Dicts {
		ints := item.Values(dictdecode.Integer.Element())
		if len(ints) == 0 {
			return nil, &dictdecode.MismatchError{
				Field:   "tracks[" + strconv.Itoa(j) + "]",
				Key:     "Track ID",
				Element: dictdecode.Integer.Element(),
				Index:   0,
				Len:     0,
			}
		}
		id, err := strconv.ParseInt(strings.TrimSpace(ints[0]), 10, 64)
		if err != nil {
			return nil, &dictdecode.CoercionError{
				Field: "tracks[" + strconv.Itoa(j) + "]",
				Key:   "Track ID",
				Kind:  dictdecode.Integer,
				Raw:   ints[0],
				Err:   err,
			}
		}
		refs = append(refs, id)
	}
	return refs, nil
}
