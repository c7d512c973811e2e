package main

import (
	"fmt"
	"io"

	"itunes-library/internal/library"
	"itunes-library/internal/plist"

	"github.com/spf13/cobra"
)

const (
	sectionAll       = "all"
	sectionInfo      = "info"
	sectionTracks    = "tracks"
	sectionPlaylists = "playlists"
)

type decodeFlags struct {
	offset  int
	limit   int
	format  string
	section string
	pretty  bool
}

func newDecodeCmd() *cobra.Command {
	var f decodeFlags

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a library XML file and print it",
		Long: `Decode reads a library XML file, or standard input when the file is "-",
and prints its info, tracks and playlists.

--offset and --limit select a window of tracks by their position in the
file. Playlists are always printed in full.

Example:
  libimport decode "iTunes Library.xml" --limit 10
  libimport decode library.xml --section playlists --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("pretty") {
				f.pretty = isTerminal(cmd.OutOrStdout())
			}
			return runDecode(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], f)
		},
	}

	cmd.Flags().IntVar(&f.offset, "offset", 0, "index of the first track to include")
	cmd.Flags().IntVar(&f.limit, "limit", -1, "maximum number of tracks to include (negative for all)")
	cmd.Flags().StringVarP(&f.format, "format", "o", formatJSON, "output format: json or yaml")
	cmd.Flags().StringVar(&f.section, "section", sectionAll, "part to print: all, info, tracks or playlists")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "indent JSON output (default when writing to a terminal)")
	return cmd
}

func runDecode(in io.Reader, out io.Writer, path string, f decodeFlags) error {
	if f.format != formatJSON && f.format != formatYAML {
		return fmt.Errorf("unknown format %q (want %s or %s)", f.format, formatJSON, formatYAML)
	}

	w := library.Page(f.offset, f.limit)

	var (
		lib *library.Library
		err error
	)
	if path == "-" {
		doc, perr := plist.Parse(in)
		if perr != nil {
			return fmt.Errorf("%w: %w", library.ErrSourceUnavailable, perr)
		}
		lib, err = library.NewImporter(nil).Decode(doc, w)
	} else {
		lib, err = library.Import(path, w)
	}
	if err != nil {
		return err
	}

	var v any
	switch f.section {
	case sectionAll:
		v = lib
	case sectionInfo:
		v = lib.Info
	case sectionTracks:
		v = lib.Tracks
	case sectionPlaylists:
		v = lib.Playlists
	default:
		return fmt.Errorf("unknown section %q", f.section)
	}

	return writeValue(out, v, f.format, f.pretty)
}
