package metrics

import "itunes-library/internal/filesystem"

// filesystemObserver implements filesystem.Observer using the Prometheus
// metrics declared in this package.
type filesystemObserver struct{}

// NewFilesystemObserver creates an observer that records filesystem retry
// metrics into the counters and histograms declared in metrics.go.
func NewFilesystemObserver() filesystem.Observer {
	return &filesystemObserver{}
}

func (o *filesystemObserver) ObserveRetryAttempt(op, label string) {
	FilesystemRetryAttempts.WithLabelValues(op, label).Inc()
}

func (o *filesystemObserver) ObserveRetrySuccess(op, label string) {
	FilesystemRetrySuccess.WithLabelValues(op, label).Inc()
}

func (o *filesystemObserver) ObserveRetryFailure(op, label string) {
	FilesystemRetryFailures.WithLabelValues(op, label).Inc()
}

func (o *filesystemObserver) ObserveRetryDuration(op, label string, durationSeconds float64) {
	FilesystemRetryDuration.WithLabelValues(op, label).Observe(durationSeconds)
}

func (o *filesystemObserver) ObserveStaleError(op, label string) {
	FilesystemStaleErrors.WithLabelValues(op, label).Inc()
}
