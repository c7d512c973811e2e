package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"itunes-library/internal/plist"
)

const fixture = "testdata/library.xml"

func TestImportFixture(t *testing.T) {
	lib, err := Import(fixture, AllTracks)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if len(lib.Tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(lib.Tracks))
	}
	if len(lib.Playlists) != 3 {
		t.Fatalf("got %d playlists, want 3", len(lib.Playlists))
	}

	blue := lib.Tracks[0]
	if *blue.Name != "Blue in Green" || *blue.Artist != "Miles Davis" || *blue.Year != 1959 {
		t.Errorf("track 0 = %s / %s / %d", *blue.Name, *blue.Artist, *blue.Year)
	}
	if *blue.PlayDate != 3421234567 || *blue.PlayDateUTC != "2012-05-30T21:16:07Z" {
		t.Errorf("play dates = %d / %s", *blue.PlayDate, *blue.PlayDateUTC)
	}
	if *blue.Location != "file://localhost/Users/sam/Music/Blue%20in%20Green.m4a" {
		t.Errorf("Location = %s", *blue.Location)
	}
	if !blue.Purchased || blue.Unplayed {
		t.Errorf("flags: Purchased=%v Unplayed=%v", blue.Purchased, blue.Unplayed)
	}

	sowhat := lib.Tracks[1]
	if *sowhat.Rating != 100 || *sowhat.PersistentID != "A1B2C3D4E5F60002" || !sowhat.Unplayed {
		t.Errorf("track 1 = %+v", sowhat)
	}
	if sowhat.Genre != nil || sowhat.BitRate != nil {
		t.Errorf("absent fields decoded: Genre=%v BitRate=%v", sowhat.Genre, sowhat.BitRate)
	}

	pilot := lib.Tracks[2]
	if *pilot.Season != 1 || *pilot.Episode != "S01E01" || *pilot.VideoWidth != 640 || *pilot.VideoHeight != 480 {
		t.Errorf("track 2 = %+v", pilot)
	}
	if !pilot.HasVideo || !pilot.TVShow || pilot.Movie {
		t.Errorf("video flags: HasVideo=%v TVShow=%v Movie=%v", pilot.HasVideo, pilot.TVShow, pilot.Movie)
	}

	master := lib.Playlists[0]
	if !master.Master || !master.AllItems || *master.PlaylistID != 2001 {
		t.Errorf("master playlist = %+v", master)
	}
	late := lib.Playlists[1]
	if *late.Description != "Quiet ones" || *late.PlaylistPersistentID != "F00DF00DF00D0002" ||
		*late.ParentPersistentID != "F00DF00DF00D0009" || late.Master {
		t.Errorf("late playlist = %+v", late)
	}
	if want := []int64{1002, 1001, 1002, 4040}; !reflect.DeepEqual(late.Tracks, want) {
		t.Errorf("late Tracks = %v, want %v", late.Tracks, want)
	}
	if len(lib.Playlists[2].Tracks) != 0 {
		t.Errorf("empty playlist has %d tracks", len(lib.Playlists[2].Tracks))
	}
}

func TestImportWindowKeepsPlaylists(t *testing.T) {
	full, err := Import(fixture, AllTracks)
	if err != nil {
		t.Fatal(err)
	}
	paged, err := Import(fixture, Page(1, 1))
	if err != nil {
		t.Fatal(err)
	}

	if len(paged.Tracks) != 1 || *paged.Tracks[0].TrackID != 1002 {
		t.Errorf("paged tracks = %+v", paged.Tracks)
	}
	if !reflect.DeepEqual(full.Playlists, paged.Playlists) {
		t.Error("playlists differ between windows")
	}
	if !reflect.DeepEqual(full.Info, paged.Info) {
		t.Error("info differs between windows")
	}
}

func TestImportSourceUnavailable(t *testing.T) {
	dir := t.TempDir()
	notPlist := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notPlist, []byte("just text"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.xml")},
		{name: "directory", path: dir},
		{name: "not a plist", path: notPlist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, err := Import(tt.path, AllTracks)
			if lib != nil {
				t.Error("expected no library on failure")
			}
			if !errors.Is(err, ErrSourceUnavailable) {
				t.Fatalf("error = %v, want ErrSourceUnavailable", err)
			}
			var ie *ImportError
			if !errors.As(err, &ie) || ie.Stage != StageLoad || ie.Path != tt.path {
				t.Errorf("ImportError = %+v", ie)
			}
			if Status(err) != "source_unavailable" {
				t.Errorf("Status = %q", Status(err))
			}
		})
	}
}

type stubLoader struct {
	doc   *plist.Document
	err   error
	calls atomic.Int32
}

func (s *stubLoader) Load(string) (*plist.Document, error) {
	s.calls.Add(1)
	return s.doc, s.err
}

func TestImportStageFailures(t *testing.T) {
	parse := func(xml string) *plist.Document {
		doc, err := plist.Parse(strings.NewReader(xml))
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
		return doc
	}

	tests := []struct {
		name      string
		doc       *plist.Document
		wantStage string
		wantErr   error
	}{
		{
			name:      "info mismatch",
			doc:       parse(`<plist><dict><key>Major Version</key><key>Minor Version</key><integer>1</integer></dict></plist>`),
			wantStage: StageInfo,
			wantErr:   ErrSchemaMismatch,
		},
		{
			name: "track coercion",
			doc: parse(`<plist><dict><key>Tracks</key><dict><key>1</key><dict>` +
				`<key>Track ID</key><integer>one</integer></dict></dict></dict></plist>`),
			wantStage: StageTracks,
			wantErr:   ErrTypeCoercion,
		},
		{
			name: "playlist mismatch",
			doc: parse(`<plist><dict><key>Tracks</key><dict></dict><key>Playlists</key><array>` +
				`<dict><key>Name</key><key>Playlist ID</key><string>x</string></dict></array></dict></plist>`),
			wantStage: StagePlaylists,
			wantErr:   ErrSchemaMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := NewImporter(&stubLoader{doc: tt.doc})
			lib, err := im.Import("lib.xml", AllTracks)
			if lib != nil {
				t.Error("expected no library on failure")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			var ie *ImportError
			if !errors.As(err, &ie) {
				t.Fatalf("error %T is not *ImportError", err)
			}
			if ie.Stage != tt.wantStage || ie.Path != "lib.xml" {
				t.Errorf("ImportError stage=%q path=%q, want %q", ie.Stage, ie.Path, tt.wantStage)
			}
		})
	}
}

func TestImportLoaderError(t *testing.T) {
	cause := errors.New("parser unavailable")
	_, err := NewImporter(&stubLoader{err: cause}).Import("x.xml", AllTracks)
	if !errors.Is(err, ErrSourceUnavailable) || !errors.Is(err, cause) {
		t.Errorf("error = %v, want ErrSourceUnavailable wrapping cause", err)
	}
}

func TestDecode(t *testing.T) {
	doc, err := plist.LoadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	lib, err := NewImporter(nil).Decode(doc, Page(0, 2))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(lib.Tracks) != 2 || len(lib.Playlists) != 3 {
		t.Errorf("Decode() = %d tracks, %d playlists", len(lib.Tracks), len(lib.Playlists))
	}
}

func TestImportAll(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}

	var paths []string
	for _, name := range []string{"a.xml", "b.xml", "c.xml"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	paths = append(paths[:1], append([]string{filepath.Join(dir, "missing.xml")}, paths[1:]...)...)

	results := ImportAll(context.Background(), paths, Page(0, 2))
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}

	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("results[%d].Path = %s, want %s", i, r.Path, paths[i])
		}
		if i == 1 {
			if !errors.Is(r.Err, ErrSourceUnavailable) || r.Library != nil {
				t.Errorf("missing file result = %+v", r)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
			continue
		}
		if len(r.Library.Tracks) != 2 {
			t.Errorf("results[%d] has %d tracks, want 2", i, len(r.Library.Tracks))
		}
	}
}

func TestImportAllCanceled(t *testing.T) {
	loader := &stubLoader{err: errors.New("should not be called")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewImporter(loader).ImportAll(ctx, []string{"a", "b"}, AllTracks)
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s: error = %v, want context.Canceled", r.Path, r.Err)
		}
	}
	if n := loader.calls.Load(); n != 0 {
		t.Errorf("loader called %d times", n)
	}
}

type gateFunc func(ctx context.Context) error

func (f gateFunc) Wait(ctx context.Context) error { return f(ctx) }

func TestImportAllGate(t *testing.T) {
	var waits atomic.Int32
	im := NewImporter(nil)
	im.Gate = gateFunc(func(ctx context.Context) error {
		if waits.Add(1) == 2 {
			return context.DeadlineExceeded
		}
		return nil
	})

	results := im.ImportAll(context.Background(), []string{fixture, fixture}, AllTracks)
	if n := waits.Load(); n != 2 {
		t.Fatalf("gate waited %d times, want 2", n)
	}

	var ok, held int
	for _, r := range results {
		switch {
		case r.Err == nil:
			ok++
		case errors.Is(r.Err, context.DeadlineExceeded) && r.Library == nil:
			held++
		default:
			t.Errorf("%s: unexpected error %v", r.Path, r.Err)
		}
	}
	if ok != 1 || held != 1 {
		t.Errorf("got %d imported and %d held, want 1 and 1", ok, held)
	}
}

func TestImportAllEmpty(t *testing.T) {
	if got := ImportAll(context.Background(), nil, AllTracks); len(got) != 0 {
		t.Errorf("ImportAll(nil) = %v", got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{ErrSourceUnavailable, "source_unavailable"},
		{&ImportError{Stage: StageTracks, Err: ErrSchemaMismatch}, "schema_mismatch"},
		{&ImportError{Stage: StageInfo, Err: ErrTypeCoercion}, "type_coercion"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
