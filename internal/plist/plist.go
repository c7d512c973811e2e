package plist

// Dict is a <dict> element. Keys and values are kept apart, as in the
// document: Keys in order, and each value element type in its own ordered
// sequence. Nothing here pairs a key with its value; that is the decoder's
// job.
type Dict struct {
	Keys   []string
	values map[string][]string
	Dicts  []*Dict
	Arrays []*Array
}

// KeyNames returns the dict's keys in document order.
func (d *Dict) KeyNames() []string {
	if d == nil {
		return nil
	}
	return d.Keys
}

// Values returns the raw text of every direct <element> child, in order.
// Boolean elements (<true/>, <false/>) are recorded with empty text.
func (d *Dict) Values(element string) []string {
	if d == nil {
		return nil
	}
	return d.values[element]
}

// Dict returns the i-th nested dict, or nil.
func (d *Dict) Dict(i int) *Dict {
	if d == nil || i < 0 || i >= len(d.Dicts) {
		return nil
	}
	return d.Dicts[i]
}

// Array returns the i-th nested array, or nil.
func (d *Dict) Array(i int) *Array {
	if d == nil || i < 0 || i >= len(d.Arrays) {
		return nil
	}
	return d.Arrays[i]
}

func (d *Dict) addValue(element, text string) {
	if d.values == nil {
		d.values = make(map[string][]string)
	}
	d.values[element] = append(d.values[element], text)
}

// Array is an <array> element. Its children are grouped the same way as a
// dict's values.
type Array struct {
	values map[string][]string
	Dicts  []*Dict
	Arrays []*Array
}

// Values returns the raw text of every direct <element> child, in order.
func (a *Array) Values(element string) []string {
	if a == nil {
		return nil
	}
	return a.values[element]
}

// Len returns the number of nested dicts.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Dicts)
}

func (a *Array) addValue(element, text string) {
	if a.values == nil {
		a.values = make(map[string][]string)
	}
	a.values[element] = append(a.values[element], text)
}

// Document is a parsed property list whose top-level value is a dict.
type Document struct {
	Root *Dict
	// Version is the <plist version="..."> attribute, if any.
	Version string
}
