package indexer

import (
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"itunes-library/internal/filesystem"
	"itunes-library/internal/logging"
)

// Fingerprint returns the hex BLAKE2b-256 digest of the file at path.
func Fingerprint(path string) (string, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn("failed to close %s: %v", path, cerr)
		}
	}()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
