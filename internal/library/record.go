package library

import (
	"fmt"

	"itunes-library/internal/dictdecode"
	"itunes-library/internal/plist"
)

// RecordError locates a decode failure inside a collection.
type RecordError struct {
	Section string // "tracks" or "playlists"
	Index   int    // document-order position of the failing dict
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Section, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

func rootOf(doc *plist.Document) *plist.Dict {
	if doc == nil {
		return nil
	}
	return doc.Root
}

func strField(rec dictdecode.Record, name string) *string {
	if v, ok := rec.String(name); ok {
		return &v
	}
	if v, ok := rec.Date(name); ok {
		return &v
	}
	return nil
}

func intField(rec dictdecode.Record, name string) *int64 {
	if v, ok := rec.Int(name); ok {
		return &v
	}
	return nil
}
