// ABOUTME: CLI command for moving data between storage backends.
// ABOUTME: Copies every collection, then switches the configured backend.
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/gymlog/internal/config"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var (
	migrateTo    string
	migrateForce bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy all data from the current backend to another one and make it the
configured backend.

BACKENDS:

  sqlite   ~/.local/share/gymlog/gymlog.db (default)
  badger   ~/.local/share/gymlog/badger/

The source is left untouched. If the destination already holds data the
command refuses to run unless --force is given, in which case the
destination collections are replaced.

EXAMPLES:

  gymlog migrate --to badger
  gymlog migrate --to sqlite --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		from := cfg.GetBackend()
		if migrateTo != config.BackendSQLite && migrateTo != config.BackendBadger {
			return fmt.Errorf("unknown backend: %q (use sqlite or badger)", migrateTo)
		}
		if migrateTo == from {
			return fmt.Errorf("already using %s", from)
		}

		dstPath := cfg.BackendPath(migrateTo)
		if !migrateForce {
			hasData, err := backendHasData(migrateTo, dstPath)
			if err != nil {
				return err
			}
			if hasData {
				return fmt.Errorf("%s already has data at %s (use --force to replace it)", migrateTo, dstPath)
			}
		}

		log := newLogger()
		src, err := cfg.OpenBackend(from, logrus.NewEntry(log).WithField("backend", from))
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", from, err)
		}
		defer func() { err = multierr.Append(err, src.Close()) }()

		dst, err := cfg.OpenBackend(migrateTo, logrus.NewEntry(log).WithField("backend", migrateTo))
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", migrateTo, err)
		}
		defer func() { err = multierr.Append(err, dst.Close()) }()

		summary, err := store.Copy(cmd.Context(), src, dst, models.AllCollections)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		cfg.Backend = migrateTo
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("copied data but failed to save config: %w", err)
		}

		out := cmd.OutOrStdout()
		success(out, "Copied %d records from %s to %s", summary.Total(), from, migrateTo)
		for _, coll := range models.AllCollections {
			if n := summary.Collections[coll]; n > 0 {
				fmt.Fprintf(out, "  %s %d\n", padRight(coll, 14), n)
			}
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Now using %s at %s\n", migrateTo, dstPath)
		return nil
	},
}

func backendHasData(backend, path string) (bool, error) {
	if backend == config.BackendBadger {
		return store.IsDirNonEmpty(path)
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size() > 0, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite or badger")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "replace data already in the destination")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
