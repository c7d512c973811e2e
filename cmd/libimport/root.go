package main

import (
	"itunes-library/internal/logging"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "libimport",
		Short:         "Decode and store iTunes library XML exports",
		SilenceUsage:  true, // don't print usage on operational errors
		SilenceErrors: true,
		Long: `libimport reads the "iTunes Library.xml" property list written by iTunes
and prints its info, tracks and playlists, or stores them in the SQLite
database used by the library server.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				logging.SetLevel(logging.LevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newDecodeCmd(), newStoreCmd(), newVersionCmd())
	return root
}
