package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/schema"
	"github.com/roach88/catalog/internal/store"
)

// InitResult is printed by the init command.
type InitResult struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
}

func (r InitResult) String() string {
	return fmt.Sprintf("catalog ready at %s (schema version %d)", r.Path, r.SchemaVersion)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the catalog database",
		Long: `Create the catalog database and bring its schema up to date.

Running init on an existing catalog is safe; it only applies missing
schema migrations.

Example:
  catalog init --db ./catalog.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var version int
	err = s.read(cmd, func(ctx context.Context, tx *store.Tx) error {
		var err error
		version, err = schema.Version(ctx, tx)
		return err
	})
	if err != nil {
		return s.fail("failed to read schema version", err)
	}

	return s.formatter.Success(InitResult{Path: s.store.Path(), SchemaVersion: version})
}
