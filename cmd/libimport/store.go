package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"itunes-library/internal/database"
	"itunes-library/internal/indexer"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

type storeFlags struct {
	dbPath      string
	lockTimeout time.Duration
	vacuum      bool
}

func defaultDBPath() string {
	dir := os.Getenv("DATABASE_DIR")
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "library.db")
}

func newStoreCmd() *cobra.Command {
	var f storeFlags

	cmd := &cobra.Command{
		Use:   "store <file>...",
		Short: "Import library XML files into the database",
		Long: `Store imports each library XML file into the SQLite database, replacing
the previous import of the same library. Files whose content has not
changed since their last import are skipped.

A lock file next to the database keeps concurrent runs from writing at
the same time.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(cmd.Context(), cmd.OutOrStdout(), args, f)
		},
	}

	cmd.Flags().StringVar(&f.dbPath, "db", defaultDBPath(), "database file")
	cmd.Flags().DurationVar(&f.lockTimeout, "lock-timeout", 10*time.Second, "how long to wait for the database lock")
	cmd.Flags().BoolVar(&f.vacuum, "vacuum", false, "compact the database after importing")
	return cmd
}

func runStore(ctx context.Context, out io.Writer, paths []string, f storeFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	unlock, err := acquireDBLock(f.dbPath+".lock", f.lockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	db, err := database.New(ctx, f.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	abs := make([]string, len(paths))
	for i, p := range paths {
		if abs[i], err = filepath.Abs(p); err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
	}

	idx := indexer.New(db, nil, abs, 0)
	defer idx.Stop()

	result, err := idx.Sync(ctx)
	if err != nil {
		return err
	}

	for _, file := range result.Files {
		name := filepath.Base(file.Path)
		switch file.Outcome {
		case "imported":
			printOK(out, name, fmt.Sprintf("library %d: %d tracks, %d playlists (import %s)",
				file.LibraryID, file.Tracks, file.Playlists, file.ImportID))
		case "unchanged":
			printSkip(out, name, "unchanged since last import")
		default:
			printErr(out, name, file.Error)
		}
	}

	if f.vacuum && result.Imported > 0 {
		if err := db.Vacuum(ctx); err != nil {
			return fmt.Errorf("vacuum database: %w", err)
		}
		printOK(out, filepath.Base(f.dbPath), "vacuumed")
	}

	if result.Failed > 0 {
		return &codedError{
			code: exitError,
			err:  fmt.Errorf("%d of %d files failed", result.Failed, len(result.Files)),
		}
	}
	return nil
}

// acquireDBLock takes an exclusive lock on lockPath, polling until timeout.
func acquireDBLock(lockPath string, timeout time.Duration) (func(), error) {
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire database lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another import is in progress (lock: %s)", lockPath)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
