package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/seed"
	"github.com/roach88/catalog/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	DryRun bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Import a YAML catalog document",
		Long: `Import a YAML catalog document in one transaction.

The document is checked against the seed schema before anything is
written. If any entity fails to insert, nothing is imported.

Example:
  catalog seed ./harbor.yaml
  catalog seed ./harbor.yaml --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "import inside a transaction that is rolled back")

	return cmd
}

func runSeed(opts *SeedOptions, path string, cmd *cobra.Command) error {
	doc, err := seed.LoadFile(path)
	if err != nil {
		_ = newFormatter(opts.RootOptions, cmd).Error(ErrorCode(err), err.Error(), nil)
		return wrapCatalogError("failed to load seed", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var stats seed.Stats
	err = s.store.WithTransaction(commandContext(cmd), func(ctx context.Context, tx *store.Tx) (store.Outcome, error) {
		var err error
		if stats, err = seed.Import(ctx, tx, doc); err != nil {
			return store.Rollback, err
		}
		if opts.DryRun {
			return store.Rollback, nil
		}
		return store.Commit, nil
	})
	if err != nil {
		return s.fail("seed import failed", err)
	}

	if opts.DryRun {
		s.formatter.VerboseLog("dry run: nothing was written")
	}
	return s.formatter.Success(stats)
}
