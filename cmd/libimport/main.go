package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"itunes-library/internal/library"
)

// Exit codes by failure kind.
const (
	exitOK = iota
	exitError
	exitSourceUnavailable
	exitSchemaMismatch
	exitTypeCoercion
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	switch library.Status(err) {
	case "source_unavailable":
		return exitSourceUnavailable
	case "schema_mismatch":
		return exitSchemaMismatch
	case "type_coercion":
		return exitTypeCoercion
	default:
		return exitError
	}
}

// codedError carries an explicit exit code.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }
