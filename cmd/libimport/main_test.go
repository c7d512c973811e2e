package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"itunes-library/internal/library"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

var fixturePath = filepath.Join("..", "..", "internal", "library", "testdata", "library.xml")

// run executes the root command with args and returns its output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func copyFixture(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"plain", errors.New("boom"), exitError},
		{"source unavailable", fmt.Errorf("load: %w", library.ErrSourceUnavailable), exitSourceUnavailable},
		{"schema mismatch", fmt.Errorf("tracks: %w", library.ErrSchemaMismatch), exitSchemaMismatch},
		{"type coercion", fmt.Errorf("tracks: %w", library.ErrTypeCoercion), exitTypeCoercion},
		{"coded", &codedError{code: 7, err: library.ErrSchemaMismatch}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	out, err := run(t, "", "decode", fixturePath)
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}

	var lib library.Library
	if err := json.Unmarshal([]byte(out), &lib); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(lib.Tracks) != 3 || len(lib.Playlists) != 3 {
		t.Errorf("got %d tracks, %d playlists", len(lib.Tracks), len(lib.Playlists))
	}
	if lib.Info.LibraryPersistentID == nil || *lib.Info.LibraryPersistentID != "7C3B0AD5A3E1F2B4" {
		t.Errorf("info = %+v", lib.Info)
	}
}

func TestDecodeSections(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "tracks window",
			args: []string{"--section", "tracks", "--offset", "1", "--limit", "1"},
			check: func(t *testing.T, out string) {
				var tracks []library.Track
				if err := json.Unmarshal([]byte(out), &tracks); err != nil {
					t.Fatal(err)
				}
				if len(tracks) != 1 || *tracks[0].TrackID != 1002 {
					t.Errorf("tracks = %+v", tracks)
				}
			},
		},
		{
			name: "playlists ignore window",
			args: []string{"--section", "playlists", "--limit", "0"},
			check: func(t *testing.T, out string) {
				var playlists []library.Playlist
				if err := json.Unmarshal([]byte(out), &playlists); err != nil {
					t.Fatal(err)
				}
				if len(playlists) != 3 {
					t.Errorf("got %d playlists, want 3", len(playlists))
				}
			},
		},
		{
			name: "info as yaml",
			args: []string{"--section", "info", "--format", "yaml"},
			check: func(t *testing.T, out string) {
				var info map[string]any
				if err := yaml.Unmarshal([]byte(out), &info); err != nil {
					t.Fatal(err)
				}
				if info["application_version"] != "10.6.3" {
					t.Errorf("info = %v", info)
				}
			},
		},
		{
			name: "pretty json",
			args: []string{"--section", "info", "--pretty"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "\n  \"major_version\": 1") {
					t.Errorf("output not indented:\n%s", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", append([]string{"decode", fixturePath}, tt.args...)...)
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			tt.check(t, out)
		})
	}
}

func TestDecodeStdin(t *testing.T) {
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatal(err)
	}

	out, err := run(t, string(data), "decode", "-", "--section", "tracks", "--limit", "2")
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	var tracks []library.Track
	if err := json.Unmarshal([]byte(out), &tracks); err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Errorf("got %d tracks, want 2", len(tracks))
	}

	_, err = run(t, "not a plist", "decode", "-")
	if exitCode(err) != exitSourceUnavailable {
		t.Errorf("malformed stdin: exit code %d, err %v", exitCode(err), err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"missing file", []string{"decode", filepath.Join(t.TempDir(), "missing.xml")}, exitSourceUnavailable},
		{"bad format", []string{"decode", fixturePath, "--format", "toml"}, exitError},
		{"bad section", []string{"decode", fixturePath, "--section", "artists"}, exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	lib := copyFixture(t, dir, "Library.xml")
	dbPath := filepath.Join(dir, "library.db")

	out, err := run(t, "", "store", "--db", dbPath, "--vacuum", lib)
	if err != nil {
		t.Fatalf("store error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "✓  [Library.xml]") || !strings.Contains(out, "3 tracks, 3 playlists") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "✓  [library.db] vacuumed") {
		t.Errorf("output missing vacuum line:\n%s", out)
	}

	out, err = run(t, "", "store", "--db", dbPath, "--vacuum", lib)
	if err != nil {
		t.Fatalf("second store error = %v", err)
	}
	if strings.Contains(out, "vacuumed") {
		t.Errorf("nothing imported, so nothing to vacuum:\n%s", out)
	}
	if !strings.Contains(out, "○  [Library.xml] unchanged") {
		t.Errorf("second run should skip unchanged file:\n%s", out)
	}

	missing := filepath.Join(dir, "Other.xml")
	out, err = run(t, "", "store", "--db", dbPath, lib, missing)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(out, "✗  [Other.xml]") || !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Errorf("output:\n%s\nerr: %v", out, err)
	}
}

func TestStoreLocked(t *testing.T) {
	dir := t.TempDir()
	lib := copyFixture(t, dir, "Library.xml")
	dbPath := filepath.Join(dir, "library.db")

	held := flock.New(dbPath + ".lock")
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock() = %v, %v", locked, err)
	}
	defer held.Unlock()

	start := time.Now()
	_, err = run(t, "", "store", "--db", dbPath, "--lock-timeout", "300ms", lib)
	if err == nil || !strings.Contains(err.Error(), "another import is in progress") {
		t.Errorf("err = %v, want lock contention error", err)
	}
	if time.Since(start) < 300*time.Millisecond {
		t.Error("store returned before the lock timeout")
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	for _, want := range []string{"Version:", "Commit:", "Go Version:", "OS/Arch:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
