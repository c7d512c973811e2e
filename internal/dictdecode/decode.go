package dictdecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is a dict as exposed by a document loader.
type Node interface {
	// KeyNames returns the dict's keys in document order.
	KeyNames() []string
	// Values returns the raw text of every direct child element with the
	// given name (for example "integer"), in document order.
	Values(element string) []string
}

// Value is a decoded field value.
type Value struct {
	Kind Kind
	Str  string // String and Date kinds
	Int  int64  // Integer kind
	Flag bool   // PresenceFlag kind
}

// Record maps field names to decoded values. Fields whose key was absent are
// not stored; PresenceFlag fields are always stored.
type Record struct {
	values map[string]Value
	order  []string
}

// Decode reconstructs the record described by schema from node.
func Decode(node Node, schema Schema) (Record, error) {
	present := make(map[string]struct{}, len(node.KeyNames()))
	for _, k := range node.KeyNames() {
		present[k] = struct{}{}
	}

	rec := Record{values: make(map[string]Value, len(schema))}
	cursors := make(map[Kind]int, 3)
	sequences := make(map[Kind][]string, 3)

	for _, f := range schema {
		_, ok := present[f.Key]

		if f.Kind == PresenceFlag {
			rec.set(f.Name, Value{Kind: PresenceFlag, Flag: ok})
			continue
		}
		if !ok {
			if f.Required {
				return Record{}, fmt.Errorf("%w: field %q (key %q)", ErrMissingRequired, f.Name, f.Key)
			}
			continue
		}

		seq, loaded := sequences[f.Kind]
		if !loaded {
			seq = node.Values(f.Kind.Element())
			sequences[f.Kind] = seq
		}

		i := cursors[f.Kind]
		if i >= len(seq) {
			return Record{}, &MismatchError{
				Field:   f.Name,
				Key:     f.Key,
				Element: f.Kind.Element(),
				Index:   i,
				Len:     len(seq),
			}
		}
		cursors[f.Kind] = i + 1

		v, err := coerce(f, seq[i])
		if err != nil {
			return Record{}, err
		}
		rec.set(f.Name, v)
	}

	return rec, nil
}

func coerce(f FieldSpec, raw string) (Value, error) {
	switch f.Kind {
	case Integer:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, &CoercionError{Field: f.Name, Key: f.Key, Kind: f.Kind, Raw: raw, Err: err}
		}
		return Value{Kind: Integer, Int: n}, nil
	case String, Date:
		return Value{Kind: f.Kind, Str: raw}, nil
	default:
		return Value{}, &CoercionError{Field: f.Name, Key: f.Key, Kind: f.Kind, Raw: raw,
			Err: fmt.Errorf("unsupported kind")}
	}
}

func (r *Record) set(name string, v Value) {
	if _, exists := r.values[name]; !exists {
		r.order = append(r.order, name)
	}
	r.values[name] = v
}

// Get returns the raw decoded value of a field.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether the field was decoded. Flags always report true.
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// String returns a String field.
func (r Record) String(name string) (string, bool) {
	v, ok := r.values[name]
	if !ok || v.Kind != String {
		return "", false
	}
	return v.Str, true
}

// Int returns an Integer field.
func (r Record) Int(name string) (int64, bool) {
	v, ok := r.values[name]
	if !ok || v.Kind != Integer {
		return 0, false
	}
	return v.Int, true
}

// Date returns a Date field as the text found in the document.
func (r Record) Date(name string) (string, bool) {
	v, ok := r.values[name]
	if !ok || v.Kind != Date {
		return "", false
	}
	return v.Str, true
}

// Flag returns a PresenceFlag field; false when the field is unknown.
func (r Record) Flag(name string) bool {
	v, ok := r.values[name]
	return ok && v.Kind == PresenceFlag && v.Flag
}

// Len returns the number of stored fields.
func (r Record) Len() int {
	return len(r.values)
}

// Fields returns the stored field names in schema order.
func (r Record) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
