package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
	"github.com/roach88/catalog/internal/store"
)

// ReorderOptions holds flags for the reorder command.
type ReorderOptions struct {
	*RootOptions
	Master string
}

// ReorderResult is printed by the reorder command.
type ReorderResult struct {
	Kind    string   `json:"kind"`
	Parent  string   `json:"parent"`
	Order   []string `json:"order"`
	Changed int      `json:"changed"`
}

func (r ReorderResult) String() string {
	return fmt.Sprintf("reordered %s of %s: %s (%d moved)", r.Kind, r.Parent, strings.Join(r.Order, ", "), r.Changed)
}

var reorderKinds = []string{"studios", "games", "maps", "tabs", "tools", "galleries", "media", "labels"}

// NewReorderCommand creates the reorder command.
func NewReorderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReorderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reorder <kind> <parent-path> <names...>",
		Short: "Put a sibling set in a new order",
		Long: `Put every sibling of one parent in the given order. The names must list
each sibling exactly once.

Kinds and their parents:
  studios    -  (no parent)
  games      <studio>
  maps       <game>
  tabs       <game>/<map>
  tools      <game>/<map>/<tab>
  galleries  <.../tool>     (--master reorders the sub-galleries of a gallery)
  media      <.../gallery>  (--master reorders the variants of an image)
  labels     <.../media>

Example:
  catalog reorder tools Harbor/Docks/Cargo Forklift Crane
  catalog reorder galleries Harbor/Docks/Cargo/Crane --master Loading Night Day`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReorder(opts, args[0], args[1], args[2:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Master, "master", "", "reorder the slaves of this gallery or image")

	return cmd
}

func runReorder(opts *ReorderOptions, kind, parent string, names []string, cmd *cobra.Command) error {
	scopeOf, err := reorderScope(opts, kind, parent)
	if err != nil {
		return usageError(opts.RootOptions, cmd, err)
	}

	// Label texts are stored verbatim; every other name is normalized.
	order := names
	if kind != "labels" {
		order = make([]string, len(names))
		for i, n := range names {
			order[i] = catalog.NormalizeName(n)
		}
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result := ReorderResult{Kind: kind, Parent: parent, Order: order}
	err = s.update(cmd, func(ctx context.Context, tx *store.Tx) error {
		var err error
		result.Changed, err = reorder.Apply(ctx, tx, scopeOf(tx.Registry()), order)
		return err
	})
	if err != nil {
		return s.fail("reorder "+kind+" failed", err)
	}
	return s.formatter.Success(result)
}

// reorderScope parses parent for kind. The scope is built once the
// registry is at hand.
func reorderScope(opts *ReorderOptions, kind, parent string) (func(r *schema.Registry) reorder.Scope, error) {
	master := catalog.NormalizeName(opts.Master)
	if master != "" && kind != "galleries" && kind != "media" {
		return nil, catalog.NewError(catalog.KindValidation, "reorder "+kind, "--master applies to galleries and media only", nil)
	}

	switch kind {
	case "studios":
		if parent != "-" {
			return nil, catalog.NewError(catalog.KindValidation, "reorder studios", `studios have no parent, pass "-"`, nil)
		}
		return reorder.Studios, nil

	case "games":
		key, err := catalog.ParseStudioKey(parent)
		if err != nil {
			return nil, err
		}
		return func(r *schema.Registry) reorder.Scope { return reorder.GamesOf(r, key) }, nil

	case "maps":
		key, err := catalog.ParseGameKey(parent)
		if err != nil {
			return nil, err
		}
		return func(r *schema.Registry) reorder.Scope { return reorder.MapsOf(r, key) }, nil

	case "tabs":
		key, err := catalog.ParseMapKey(parent)
		if err != nil {
			return nil, err
		}
		return func(r *schema.Registry) reorder.Scope { return reorder.TabsOf(r, key) }, nil

	case "tools":
		key, err := catalog.ParseTabKey(parent)
		if err != nil {
			return nil, err
		}
		return func(r *schema.Registry) reorder.Scope { return reorder.ToolsOf(r, key) }, nil

	case "galleries":
		key, err := catalog.ParseToolKey(parent)
		if err != nil {
			return nil, err
		}
		if master != "" {
			return func(r *schema.Registry) reorder.Scope { return reorder.SubgalleriesOf(r, key.Gallery(master)) }, nil
		}
		return func(r *schema.Registry) reorder.Scope { return reorder.GalleriesOf(r, key) }, nil

	case "media":
		key, err := catalog.ParseGalleryKey(parent)
		if err != nil {
			return nil, err
		}
		if master != "" {
			return func(r *schema.Registry) reorder.Scope { return reorder.VariantsOf(r, key.Media(master)) }, nil
		}
		return func(r *schema.Registry) reorder.Scope { return reorder.MediaOf(r, key) }, nil

	case "labels":
		key, err := catalog.ParseMediaKey(parent)
		if err != nil {
			return nil, err
		}
		return func(r *schema.Registry) reorder.Scope { return reorder.LabelsOf(r, key) }, nil
	}

	return nil, unknownKind(kind, reorderKinds)
}
