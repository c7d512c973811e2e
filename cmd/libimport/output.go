package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeValue encodes v to w. JSON is indented when pretty is set.
func writeValue(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatYAML)
	}
}

// Status lines in the style "  ✓  [name] msg".
func printOK(w io.Writer, name, msg string) {
	fmt.Fprintf(w, "  ✓  [%s] %s\n", name, msg)
}

func printSkip(w io.Writer, name, msg string) {
	fmt.Fprintf(w, "  ○  [%s] %s\n", name, msg)
}

func printErr(w io.Writer, name, msg string) {
	fmt.Fprintf(w, "  ✗  [%s] %s\n", name, msg)
}
