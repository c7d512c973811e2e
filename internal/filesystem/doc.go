/*
Package filesystem opens and stats library files with retry logic for NFS
stale file handle errors.

iTunes library exports commonly live on a NAS share next to the music they
describe. When the share is remounted or the export is rewritten by the
producer, an open can fail with ESTALE even though the file is fine a moment
later. StatWithRetry and OpenWithRetry retry only that error, with capped
exponential backoff; every other error is returned immediately.

# Usage

	f, err := filesystem.OpenWithRetry("/music/iTunes Library.xml", filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

# Metrics

Retry attempts, successes, failures and stale-handle errors are reported to
the Observer installed with SetObserver. The metrics package provides a
Prometheus-backed observer; when none is installed nothing is recorded.
*/
package filesystem
