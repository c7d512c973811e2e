package dictdecode

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch means a dict has fewer values of some kind than its
	// present keys require under the schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrTypeCoercion means a raw value could not be converted to its kind.
	ErrTypeCoercion = errors.New("type coercion failed")

	// ErrMissingRequired means a required field's key is not in the dict.
	ErrMissingRequired = errors.New("required field missing")
)

// MismatchError reports the field whose cursor ran past its value sequence.
type MismatchError struct {
	Field   string
	Key     string
	Element string
	Index   int // cursor position that was requested
	Len     int // length of the value sequence
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: field %q (key %q) wants <%s> #%d but dict has %d",
		e.Field, e.Key, e.Element, e.Index, e.Len)
}

func (e *MismatchError) Unwrap() error { return ErrSchemaMismatch }

// CoercionError reports a raw value that could not be converted.
type CoercionError struct {
	Field string
	Key   string
	Kind  Kind
	Raw   string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("field %q (key %q): cannot convert %q to %s: %v",
		e.Field, e.Key, e.Raw, e.Kind, e.Err)
}

// Unwrap exposes both the sentinel and the underlying conversion error.
func (e *CoercionError) Unwrap() []error { return []error{ErrTypeCoercion, e.Err} }
