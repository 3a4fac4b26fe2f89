package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/migrate"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/store"
)

// MoveOptions holds flags for the move-tool and move-tab commands.
type MoveOptions struct {
	*RootOptions
	To       string
	Target   string
	Position int
}

// MoveResult is printed by the move commands.
type MoveResult struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	migrate.Result
}

func (r MoveResult) String() string {
	if !r.Moved {
		return fmt.Sprintf("%s %s already under %s", r.Kind, r.Name, r.From)
	}
	return fmt.Sprintf("moved %s %s from %s to %s at position %d", r.Kind, r.Name, r.From, r.To, r.Position)
}

// NewMoveToolCommand creates the move-tool command.
func NewMoveToolCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "move-tool <tool-path> --to <tab>",
		Short: "Move a tool to another tab of the same map",
		Long: `Move a tool, with its galleries and media, to another tab of its map.

The tool's old siblings close the gap it leaves. In the new tab it is
appended by default; --target update inserts it at --position (or its old
position) and shifts the later tools.

Example:
  catalog move-tool Harbor/Docks/Cargo/Crane --to Fuel
  catalog move-tool Harbor/Docks/Cargo/Crane --to Fuel --target update --position 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMoveTool(opts, args[0], cmd)
		},
	}

	addMoveFlags(cmd, opts, "destination tab in the same map (required)")
	return cmd
}

// NewMoveTabCommand creates the move-tab command.
func NewMoveTabCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "move-tab <tab-path> --to <map>",
		Short: "Move a tab to another map of the same game",
		Long: `Move a tab, with everything under it, to another map of its game.

Positions are handled the same way as move-tool.

Example:
  catalog move-tab Harbor/Docks/Cargo --to Quay`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMoveTab(opts, args[0], cmd)
		},
	}

	addMoveFlags(cmd, opts, "destination map in the same game (required)")
	return cmd
}

func addMoveFlags(cmd *cobra.Command, opts *MoveOptions, toUsage string) {
	cmd.Flags().StringVar(&opts.To, "to", "", toUsage)
	cmd.Flags().StringVar(&opts.Target, "target", migrate.PlaceAtEnd.String(), "placement in the destination (end|update)")
	cmd.Flags().IntVar(&opts.Position, "position", -1, "destination position for --target update")
	_ = cmd.MarkFlagRequired("to")
}

// options maps the flags to migrate options. Source siblings are always
// renumbered so the command never leaves a gap behind.
func (o *MoveOptions) options() (migrate.Options, error) {
	opts := migrate.Options{UpdateSourceIndices: true}
	switch o.Target {
	case migrate.PlaceAtEnd.String():
		opts.Target = migrate.PlaceAtEnd
	case migrate.UpdateTargetIndices.String():
		opts.Target = migrate.UpdateTargetIndices
	default:
		return opts, catalog.NewError(catalog.KindValidation, "parse move options",
			fmt.Sprintf("invalid target %q: must be end or update", o.Target), nil)
	}
	if o.Position >= 0 {
		pos := o.Position
		opts.TargetPosition = &pos
	}
	return opts, nil
}

func runMoveTool(opts *MoveOptions, path string, cmd *cobra.Command) error {
	tool, err := catalog.ParseToolKey(path)
	if err != nil {
		return usageError(opts.RootOptions, cmd, err)
	}
	moveOpts, err := opts.options()
	if err != nil {
		return usageError(opts.RootOptions, cmd, err)
	}
	to := catalog.NormalizeName(opts.To)

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result := MoveResult{Kind: "tool", Name: tool.Name}
	err = s.update(cmd, func(ctx context.Context, tx *store.Tx) error {
		// An unknown destination would leave no accepted candidate, and
		// an unknown tool would be skipped silently.
		r := tx.Registry()
		if _, err := reorder.PositionOf(ctx, tx, reorder.ToolsOf(r, tool.Parent()), tool.Name); err != nil {
			return err
		}
		if _, err := reorder.PositionOf(ctx, tx, reorder.TabsOf(r, tool.Parent().Parent()), to); err != nil {
			return err
		}
		var err error
		result.Result, err = migrate.Tool(ctx, tx, tool, nil, migrate.ToTab(to), moveOpts)
		return err
	})
	if err != nil {
		return s.fail("move tool failed", err)
	}
	return s.formatter.Success(result)
}

func runMoveTab(opts *MoveOptions, path string, cmd *cobra.Command) error {
	tab, err := catalog.ParseTabKey(path)
	if err != nil {
		return usageError(opts.RootOptions, cmd, err)
	}
	moveOpts, err := opts.options()
	if err != nil {
		return usageError(opts.RootOptions, cmd, err)
	}
	to := catalog.NormalizeName(opts.To)

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result := MoveResult{Kind: "tab", Name: tab.Name}
	err = s.update(cmd, func(ctx context.Context, tx *store.Tx) error {
		r := tx.Registry()
		if _, err := reorder.PositionOf(ctx, tx, reorder.TabsOf(r, tab.Parent()), tab.Name); err != nil {
			return err
		}
		if _, err := reorder.PositionOf(ctx, tx, reorder.MapsOf(r, tab.Parent().Parent()), to); err != nil {
			return err
		}
		var err error
		result.Result, err = migrate.Tab(ctx, tx, tab, nil, migrate.ToMap(to), moveOpts)
		return err
	})
	if err != nil {
		return s.fail("move tab failed", err)
	}
	return s.formatter.Success(result)
}
