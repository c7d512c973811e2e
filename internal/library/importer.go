package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"itunes-library/internal/dictdecode"
	"itunes-library/internal/logging"
	"itunes-library/internal/metrics"
	"itunes-library/internal/plist"
	"itunes-library/internal/workers"
)

var (
	// ErrSourceUnavailable wraps every failure to obtain a document.
	ErrSourceUnavailable = errors.New("library source unavailable")

	ErrSchemaMismatch = dictdecode.ErrSchemaMismatch
	ErrTypeCoercion   = dictdecode.ErrTypeCoercion
)

// Import stages, in execution order.
const (
	StageLoad      = "load"
	StageInfo      = "info"
	StageTracks    = "tracks"
	StagePlaylists = "playlists"
)

// maxImportWorkers caps ImportAll concurrency.
const maxImportWorkers = 8

// Loader produces a parsed document for a path. Implementations used with
// ImportAll must be safe for concurrent use.
type Loader interface {
	Load(path string) (*plist.Document, error)
}

// Gate can hold back the start of an import, for example under memory
// pressure.
type Gate interface {
	Wait(ctx context.Context) error
}

// ImportError is returned for any failed import. No partial Library is
// returned alongside it.
type ImportError struct {
	Path  string
	Stage string
	Err   error
}

func (e *ImportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("import failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("import %s failed at %s: %v", e.Path, e.Stage, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Status classifies an import outcome for metrics and API responses.
func Status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrTypeCoercion):
		return "type_coercion"
	default:
		return "error"
	}
}

// Importer assembles a Library from one document.
type Importer struct {
	Loader Loader

	// Gate, when set, is waited on by ImportAll before each load.
	Gate Gate
}

// NewImporter returns an importer using loader, or a plist.FileLoader when
// loader is nil.
func NewImporter(loader Loader) *Importer {
	if loader == nil {
		loader = plist.NewFileLoader()
	}
	return &Importer{Loader: loader}
}

var defaultImporter = NewImporter(nil)

// Import loads the library file at path with the default file loader.
func Import(path string, w Window) (*Library, error) {
	return defaultImporter.Import(path, w)
}

// Import loads path and decodes its info, the tracks inside w, and all
// playlists.
func (im *Importer) Import(path string, w Window) (*Library, error) {
	start := time.Now()

	doc, err := im.Loader.Load(path)
	metrics.ImportStageDuration.WithLabelValues(StageLoad).Observe(time.Since(start).Seconds())
	if err != nil {
		err = &ImportError{Path: path, Stage: StageLoad, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)}
		metrics.ImportsTotal.WithLabelValues(Status(err)).Inc()
		return nil, err
	}

	lib, err := decode(doc, w)
	if err != nil {
		var ie *ImportError
		if errors.As(err, &ie) {
			ie.Path = path
		}
		metrics.ImportsTotal.WithLabelValues(Status(err)).Inc()
		return nil, err
	}

	metrics.ImportsTotal.WithLabelValues(Status(nil)).Inc()
	logging.Debug("Imported %s in %v: %d tracks, %d playlists",
		path, time.Since(start), len(lib.Tracks), len(lib.Playlists))
	return lib, nil
}

// Decode assembles a Library from an already parsed document.
func (im *Importer) Decode(doc *plist.Document, w Window) (*Library, error) {
	lib, err := decode(doc, w)
	metrics.ImportsTotal.WithLabelValues(Status(err)).Inc()
	return lib, err
}

func decode(doc *plist.Document, w Window) (*Library, error) {
	var lib Library

	err := stage(StageInfo, func() (n int, err error) {
		lib.Info, err = ParseInfo(doc, InfoSchema)
		return 1, err
	})
	if err != nil {
		return nil, err
	}

	err = stage(StageTracks, func() (n int, err error) {
		lib.Tracks, err = ParseTracks(doc, TrackSchema, w)
		return len(lib.Tracks), err
	})
	if err != nil {
		return nil, err
	}

	err = stage(StagePlaylists, func() (n int, err error) {
		lib.Playlists, err = ParsePlaylists(doc, PlaylistSchema)
		return len(lib.Playlists), err
	})
	if err != nil {
		return nil, err
	}

	refs := 0
	for _, p := range lib.Playlists {
		refs += len(p.Tracks)
	}
	metrics.PlaylistReferencesTotal.Add(float64(refs))

	return &lib, nil
}

var stageRecord = map[string]string{
	StageInfo:      "info",
	StageTracks:    "track",
	StagePlaylists: "playlist",
}

func stage(name string, fn func() (int, error)) error {
	start := time.Now()
	n, err := fn()
	metrics.ImportStageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		return &ImportError{Stage: name, Err: err}
	}
	metrics.RecordsDecodedTotal.WithLabelValues(stageRecord[name]).Add(float64(n))
	return nil
}

// Result is the outcome of one import in ImportAll.
type Result struct {
	Path    string
	Library *Library
	Err     error
}

// ImportAll imports every path with the default file loader.
func ImportAll(ctx context.Context, paths []string, w Window) []Result {
	return defaultImporter.ImportAll(ctx, paths, w)
}

// ImportAll imports paths concurrently. Results are in input order. Paths
// not started before ctx is done report ctx.Err().
func (im *Importer) ImportAll(ctx context.Context, paths []string, w Window) []Result {
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results
	}

	numWorkers := workers.ForIO(min(len(paths), maxImportWorkers))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i].Path = paths[i]
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				if im.Gate != nil {
					if err := im.Gate.Wait(ctx); err != nil {
						results[i].Err = err
						continue
					}
				}
				results[i].Library, results[i].Err = im.Import(paths[i], w)
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
