package plist

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"

	"itunes-library/internal/filesystem"
	"itunes-library/internal/logging"
)

// ErrNotFound is returned by FileLoader when the path does not exist or is
// a directory.
var ErrNotFound = errors.New("plist file not found")

// FileLoader loads documents from the local filesystem. It is safe for
// concurrent use; each Load opens and parses its own file.
type FileLoader struct {
	Retry filesystem.RetryConfig
}

// NewFileLoader returns a loader with the default NFS retry policy.
func NewFileLoader() *FileLoader {
	return &FileLoader{Retry: filesystem.DefaultRetryConfig()}
}

// Load opens path and parses it as a property list.
func (l *FileLoader) Load(path string) (*Document, error) {
	info, err := filesystem.StatWithRetry(path, l.Retry)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	f, err := filesystem.OpenWithRetry(path, l.Retry)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn("failed to close %s: %v", path, cerr)
		}
	}()

	logging.Debug("Parsing plist %s (%d bytes)", path, info.Size())

	doc, err := Parse(bufio.NewReaderSize(f, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadFile is a convenience wrapper around NewFileLoader().Load.
func LoadFile(path string) (*Document, error) {
	return NewFileLoader().Load(path)
}
