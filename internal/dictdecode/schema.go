package dictdecode

import (
	"errors"
	"fmt"
)

// Kind is the value type a field is stored as.
type Kind int

const (
	// String fields are read from <string> elements.
	String Kind = iota
	// Integer fields are read from <integer> elements and parsed as base-10.
	Integer
	// Date fields are read from <date> elements and kept as opaque text.
	Date
	// PresenceFlag fields carry no value; the key being present means true.
	PresenceFlag
)

// Element returns the plist element name that holds values of this kind.
// PresenceFlag has no element and returns "".
func (k Kind) Element() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Date:
		return "date"
	default:
		return ""
	}
}

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Date:
		return "date"
	case PresenceFlag:
		return "flag"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

func (k Kind) valid() bool {
	return k >= String && k <= PresenceFlag
}

// FieldSpec describes one field of a record.
type FieldSpec struct {
	// Name is the stable identifier of the field in the decoded record.
	Name string
	// Key is the label the field is listed under in the dict's key list.
	Key string
	// Kind selects the value sequence the field is read from.
	Kind Kind
	// Required makes absence of Key an error instead of an absent value.
	Required bool
}

// Schema is an ordered list of fields. The order must match the order in
// which the producer emits values of each kind.
type Schema []FieldSpec

// ErrInvalidSchema is returned by Validate.
var ErrInvalidSchema = errors.New("invalid schema")

// Validate reports empty or duplicate field names, empty keys and unknown
// kinds.
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s))
	for i, f := range s {
		if f.Name == "" {
			return fmt.Errorf("%w: field %d has no name", ErrInvalidSchema, i)
		}
		if f.Key == "" {
			return fmt.Errorf("%w: field %q has no key", ErrInvalidSchema, f.Name)
		}
		if !f.Kind.valid() {
			return fmt.Errorf("%w: field %q has kind %s", ErrInvalidSchema, f.Name, f.Kind)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}
