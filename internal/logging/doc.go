// Package logging provides a simple leveled logging interface for the
// library importer, its HTTP server and its CLI.
//
// It supports the following log levels:
//   - DEBUG: Per-stage import timings, retry details
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The level is read once from DEBUG or LOG_LEVEL and can be overridden with
// SetLevel. The decoder packages never log; failures are returned as errors.
package logging
