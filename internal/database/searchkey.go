package database

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldSearch lowercases s and strips combining marks, so "Beyoncé" and
// "BEYONCE" produce the same key. Transformers are built per call because
// they carry state.
func foldSearch(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.Join(strings.Fields(stripped), " "))
}

// searchKey joins the non-empty searchable fields of a track.
func searchKey(fields ...*string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != nil && *f != "" {
			parts = append(parts, *f)
		}
	}
	return foldSearch(strings.Join(parts, " "))
}

// likePattern turns a folded query into a LIKE pattern using '\' as the
// escape character.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
