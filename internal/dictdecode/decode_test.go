package dictdecode

import (
	"errors"
	"strconv"
	"testing"
)

// fakeNode is an in-memory dict for tests.
type fakeNode struct {
	keys   []string
	values map[string][]string
}

func (n fakeNode) KeyNames() []string             { return n.keys }
func (n fakeNode) Values(element string) []string { return n.values[element] }

var testSchema = Schema{
	{Name: "id", Key: "ID", Kind: Integer},
	{Name: "name", Key: "Name", Kind: String},
	{Name: "artist", Key: "Artist", Kind: String},
	{Name: "size", Key: "Size", Kind: Integer},
	{Name: "added", Key: "Date Added", Kind: Date},
	{Name: "podcast", Key: "Podcast", Kind: PresenceFlag},
	{Name: "year", Key: "Year", Kind: Integer},
	{Name: "location", Key: "Location", Kind: String},
}

func TestDecodeAllPresent(t *testing.T) {
	t.Parallel()

	node := fakeNode{
		keys: []string{"ID", "Name", "Artist", "Size", "Date Added", "Podcast", "Year", "Location"},
		values: map[string][]string{
			"integer": {"7", "4096", "1999"},
			"string":  {"Song", "Band", "file:///a.mp3"},
			"date":    {"2012-01-02T03:04:05Z"},
			"true":    {""},
		},
	}

	rec, err := Decode(node, testSchema)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if v, _ := rec.Int("id"); v != 7 {
		t.Errorf("id = %d, want 7", v)
	}
	if v, _ := rec.Int("size"); v != 4096 {
		t.Errorf("size = %d, want 4096", v)
	}
	if v, _ := rec.Int("year"); v != 1999 {
		t.Errorf("year = %d, want 1999", v)
	}
	if v, _ := rec.String("name"); v != "Song" {
		t.Errorf("name = %q, want Song", v)
	}
	if v, _ := rec.String("artist"); v != "Band" {
		t.Errorf("artist = %q, want Band", v)
	}
	if v, _ := rec.String("location"); v != "file:///a.mp3" {
		t.Errorf("location = %q", v)
	}
	if v, _ := rec.Date("added"); v != "2012-01-02T03:04:05Z" {
		t.Errorf("added = %q", v)
	}
	if !rec.Flag("podcast") {
		t.Error("podcast should be true")
	}
}

func TestDecodeAbsentKeysDoNotAdvanceCursors(t *testing.T) {
	t.Parallel()

	// Artist and Size are missing: Location must take the second string and
	// Year the second integer.
	node := fakeNode{
		keys: []string{"ID", "Name", "Year", "Location"},
		values: map[string][]string{
			"integer": {"7", "1999"},
			"string":  {"Song", "file:///a.mp3"},
		},
	}

	rec, err := Decode(node, testSchema)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	for _, name := range []string{"artist", "size", "added"} {
		if rec.Has(name) {
			t.Errorf("field %q should be absent", name)
		}
	}
	if rec.Flag("podcast") {
		t.Error("podcast should be false when absent")
	}
	if !rec.Has("podcast") {
		t.Error("flag fields should always be recorded")
	}
	if v, _ := rec.Int("year"); v != 1999 {
		t.Errorf("year = %d, want 1999", v)
	}
	if v, _ := rec.String("location"); v != "file:///a.mp3" {
		t.Errorf("location = %q, want file:///a.mp3", v)
	}
}

func TestDecodeAbsentSubsets(t *testing.T) {
	t.Parallel()

	all := []string{"ID", "Name", "Artist", "Size", "Date Added", "Podcast", "Year", "Location"}
	ints := map[string]string{"ID": "1", "Size": "2", "Year": "3"}
	strs := map[string]string{"Name": "n", "Artist": "a", "Location": "l"}

	// Every subset of the eight keys.
	for mask := 0; mask < 1<<len(all); mask++ {
		var keys []string
		values := map[string][]string{}
		// Values are emitted in schema order for the present keys.
		for _, f := range testSchema {
			idx := indexOf(all, f.Key)
			if mask&(1<<idx) == 0 {
				continue
			}
			keys = append(keys, f.Key)
			switch f.Kind {
			case Integer:
				values["integer"] = append(values["integer"], ints[f.Key])
			case String:
				values["string"] = append(values["string"], strs[f.Key])
			case Date:
				values["date"] = append(values["date"], "d")
			}
		}

		t.Run(strconv.Itoa(mask), func(t *testing.T) {
			rec, err := Decode(fakeNode{keys: keys, values: values}, testSchema)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			for _, f := range testSchema {
				present := indexOf(keys, f.Key) >= 0
				switch f.Kind {
				case Integer:
					v, ok := rec.Int(f.Name)
					if ok != present || (present && strconv.FormatInt(v, 10) != ints[f.Key]) {
						t.Errorf("%s = %d,%v; present=%v", f.Name, v, ok, present)
					}
				case String:
					v, ok := rec.String(f.Name)
					if ok != present || (present && v != strs[f.Key]) {
						t.Errorf("%s = %q,%v; present=%v", f.Name, v, ok, present)
					}
				case Date:
					if _, ok := rec.Date(f.Name); ok != present {
						t.Errorf("%s present = %v, want %v", f.Name, ok, present)
					}
				case PresenceFlag:
					if rec.Flag(f.Name) != present {
						t.Errorf("%s = %v, want %v", f.Name, rec.Flag(f.Name), present)
					}
				}
			}
		})
	}
}

func TestDecodeKeyOrderIsIrrelevant(t *testing.T) {
	t.Parallel()

	values := map[string][]string{
		"integer": {"7", "4096"},
		"string":  {"Song", "Band"},
	}
	a := fakeNode{keys: []string{"ID", "Name", "Artist", "Size"}, values: values}
	b := fakeNode{keys: []string{"Size", "Artist", "Name", "ID"}, values: values}

	ra, err := Decode(a, testSchema)
	if err != nil {
		t.Fatalf("Decode(a) error = %v", err)
	}
	rb, err := Decode(b, testSchema)
	if err != nil {
		t.Fatalf("Decode(b) error = %v", err)
	}

	if ra.Len() != rb.Len() {
		t.Fatalf("Len differs: %d vs %d", ra.Len(), rb.Len())
	}
	for _, name := range ra.Fields() {
		va, _ := ra.Get(name)
		vb, _ := rb.Get(name)
		if va != vb {
			t.Errorf("field %q: %+v vs %+v", name, va, vb)
		}
	}
}

func TestDecodeSchemaMismatch(t *testing.T) {
	t.Parallel()

	// Two integer keys, one integer value.
	node := fakeNode{
		keys:   []string{"ID", "Size"},
		values: map[string][]string{"integer": {"7"}},
	}

	_, err := Decode(node, testSchema)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("Decode() error = %v, want ErrSchemaMismatch", err)
	}

	var mm *MismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("error %T is not *MismatchError", err)
	}
	if mm.Field != "size" || mm.Element != "integer" || mm.Index != 1 || mm.Len != 1 {
		t.Errorf("unexpected mismatch detail: %+v", mm)
	}
}

func TestDecodeTypeCoercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want int64
		fail bool
	}{
		{name: "plain", raw: "42", want: 42},
		{name: "negative", raw: "-3", want: -3},
		{name: "whitespace", raw: " 12\n", want: 12},
		{name: "text", raw: "twelve", fail: true},
		{name: "decimal", raw: "1.5", fail: true},
		{name: "hex", raw: "0x10", fail: true},
		{name: "empty", raw: "", fail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := fakeNode{
				keys:   []string{"ID"},
				values: map[string][]string{"integer": {tt.raw}},
			}
			rec, err := Decode(node, testSchema)
			if tt.fail {
				if !errors.Is(err, ErrTypeCoercion) {
					t.Fatalf("error = %v, want ErrTypeCoercion", err)
				}
				var ce *CoercionError
				if !errors.As(err, &ce) || ce.Raw != tt.raw {
					t.Errorf("expected *CoercionError with raw %q, got %v", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if v, _ := rec.Int("id"); v != tt.want {
				t.Errorf("id = %d, want %d", v, tt.want)
			}
		})
	}
}

func TestDecodeRequired(t *testing.T) {
	t.Parallel()

	schema := Schema{
		{Name: "id", Key: "ID", Kind: Integer, Required: true},
		{Name: "name", Key: "Name", Kind: String},
	}

	_, err := Decode(fakeNode{keys: []string{"Name"}, values: map[string][]string{"string": {"x"}}}, schema)
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("error = %v, want ErrMissingRequired", err)
	}

	rec, err := Decode(fakeNode{keys: []string{"ID"}, values: map[string][]string{"integer": {"1"}}}, schema)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.Has("name") {
		t.Error("optional name should be absent")
	}
}

func TestDecodeEmptyDict(t *testing.T) {
	t.Parallel()

	rec, err := Decode(fakeNode{}, testSchema)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	// Only the flag is stored.
	if rec.Len() != 1 {
		t.Errorf("Len() = %d, want 1", rec.Len())
	}
}

func TestRecordAccessorsCheckKind(t *testing.T) {
	t.Parallel()

	node := fakeNode{
		keys:   []string{"ID", "Name"},
		values: map[string][]string{"integer": {"5"}, "string": {"x"}},
	}
	rec, err := Decode(node, testSchema)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if _, ok := rec.String("id"); ok {
		t.Error("String() on an integer field should report false")
	}
	if _, ok := rec.Int("name"); ok {
		t.Error("Int() on a string field should report false")
	}
	if rec.Flag("name") {
		t.Error("Flag() on a string field should report false")
	}
	if _, ok := rec.Date("missing"); ok {
		t.Error("Date() on an unknown field should report false")
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
