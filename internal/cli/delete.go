package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/cascade"
	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/store"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Text string
}

// DeleteResult is printed by the delete command.
type DeleteResult struct {
	Kind    string          `json:"kind"`
	Path    string          `json:"path"`
	Removed *cascade.Report `json:"removed,omitempty"`
}

func (r DeleteResult) String() string {
	if r.Removed == nil {
		return fmt.Sprintf("deleted %s %s", r.Kind, r.Path)
	}
	return fmt.Sprintf("deleted %s %s (%s)", r.Kind, r.Path, r.Removed)
}

var deleteKinds = []string{"studio", "game", "map", "tab", "tool", "gallery", "media", "label", "outline", "circle", "token"}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <kind> <path>",
		Short: "Delete an entity and everything under it",
		Long: `Delete an entity together with its whole subtree.

Deleting a gallery or media also deletes its sub-galleries or variants.
Deleting a slave removes only that slave and its link to the master.
The remaining siblings are renumbered without gaps.

Paths use the same form as the add command. Labels are selected with
--text on the media path; outline, circle and token take the media or
gallery path.

Example:
  catalog delete game Harbor
  catalog delete gallery Harbor/Docks/Cargo/Crane/Loading
  catalog delete label Harbor/Docks/Cargo/Crane/Day/front.png --text hook`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "label text")

	return cmd
}

func runDelete(opts *DeleteOptions, kind, path string, cmd *cobra.Command) error {
	del, err := deleteFunc(opts, kind, path)
	if err != nil {
		return usageError(opts.RootOptions, cmd, err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var result DeleteResult
	err = s.update(cmd, func(ctx context.Context, tx *store.Tx) error {
		var err error
		result, err = del(ctx, tx)
		return err
	})
	if err != nil {
		return s.fail("delete "+kind+" failed", err)
	}
	return s.formatter.Success(result)
}

type deleteFn func(ctx context.Context, tx *store.Tx) (DeleteResult, error)

func deleteFunc(opts *DeleteOptions, kind, path string) (deleteFn, error) {
	branch := func(key fmt.Stringer, del func(context.Context, *store.Tx) (cascade.Report, error)) deleteFn {
		return func(ctx context.Context, tx *store.Tx) (DeleteResult, error) {
			report, err := del(ctx, tx)
			return DeleteResult{Kind: kind, Path: key.String(), Removed: &report}, err
		}
	}
	leaf := func(key fmt.Stringer, del func(context.Context, *store.Tx) error) deleteFn {
		return func(ctx context.Context, tx *store.Tx) (DeleteResult, error) {
			return DeleteResult{Kind: kind, Path: key.String()}, del(ctx, tx)
		}
	}

	switch kind {
	case "studio":
		key, err := catalog.ParseStudioKey(path)
		if err != nil {
			return nil, err
		}
		return branch(key, func(ctx context.Context, tx *store.Tx) (cascade.Report, error) {
			return cascade.DeleteStudio(ctx, tx, key)
		}), nil

	case "game":
		key, err := catalog.ParseGameKey(path)
		if err != nil {
			return nil, err
		}
		return branch(key, func(ctx context.Context, tx *store.Tx) (cascade.Report, error) {
			return cascade.DeleteGame(ctx, tx, key)
		}), nil

	case "map":
		key, err := catalog.ParseMapKey(path)
		if err != nil {
			return nil, err
		}
		return branch(key, func(ctx context.Context, tx *store.Tx) (cascade.Report, error) {
			return cascade.DeleteMap(ctx, tx, key)
		}), nil

	case "tab":
		key, err := catalog.ParseTabKey(path)
		if err != nil {
			return nil, err
		}
		return branch(key, func(ctx context.Context, tx *store.Tx) (cascade.Report, error) {
			return cascade.DeleteTab(ctx, tx, key)
		}), nil

	case "tool":
		key, err := catalog.ParseToolKey(path)
		if err != nil {
			return nil, err
		}
		return branch(key, func(ctx context.Context, tx *store.Tx) (cascade.Report, error) {
			return cascade.DeleteTool(ctx, tx, key)
		}), nil

	case "gallery":
		key, err := catalog.ParseGalleryKey(path)
		if err != nil {
			return nil, err
		}
		return branch(key, func(ctx context.Context, tx *store.Tx) (cascade.Report, error) {
			return cascade.DeleteGallery(ctx, tx, key)
		}), nil

	case "media":
		key, err := catalog.ParseMediaKey(path)
		if err != nil {
			return nil, err
		}
		return branch(key, func(ctx context.Context, tx *store.Tx) (cascade.Report, error) {
			return cascade.DeleteMedia(ctx, tx, key)
		}), nil

	case "label":
		key, err := catalog.ParseMediaKey(path)
		if err != nil {
			return nil, err
		}
		if opts.Text == "" {
			return nil, catalog.NewError(catalog.KindValidation, "delete label", "--text is required", nil)
		}
		return leaf(key, func(ctx context.Context, tx *store.Tx) error {
			return cascade.DeleteLabel(ctx, tx, key, opts.Text)
		}), nil

	case "outline":
		key, err := catalog.ParseMediaKey(path)
		if err != nil {
			return nil, err
		}
		return leaf(key, func(ctx context.Context, tx *store.Tx) error {
			return tx.DeleteOutline(ctx, key)
		}), nil

	case "circle":
		key, err := catalog.ParseMediaKey(path)
		if err != nil {
			return nil, err
		}
		return leaf(key, func(ctx context.Context, tx *store.Tx) error {
			return tx.DeleteBoundingCircle(ctx, key)
		}), nil

	case "token":
		key, err := catalog.ParseGalleryKey(path)
		if err != nil {
			return nil, err
		}
		return leaf(key, func(ctx context.Context, tx *store.Tx) error {
			return tx.DeleteSearchToken(ctx, key)
		}), nil
	}

	return nil, unknownKind(kind, deleteKinds)
}
