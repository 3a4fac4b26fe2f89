package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/aggregate"
	"github.com/roach88/catalog/internal/store"
)

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the whole catalog",
		Long: `Print every studio, game, map, tab, tool, gallery and media in position
order. Sub-galleries and media variants are nested under their master.

Example:
  catalog tree
  catalog tree --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(rootOpts, cmd)
		},
	}
}

func runTree(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var tree *aggregate.Tree
	err = s.read(cmd, func(ctx context.Context, tx *store.Tx) error {
		var err error
		tree, err = aggregate.ReadTree(ctx, tx)
		return err
	})
	if err != nil {
		return s.fail("failed to read catalog", err)
	}

	if s.formatter.Format == "json" {
		return s.formatter.Success(tree)
	}
	return s.formatter.Success(textTree{tree})
}

// textTree renders a tree as indented text, two spaces per level.
type textTree struct {
	*aggregate.Tree
}

func (t textTree) String() string {
	if len(t.Studios) == 0 {
		return "(empty catalog)"
	}
	var b strings.Builder
	for _, s := range t.Studios {
		line(&b, 0, s.Name)
		for _, g := range s.Games {
			line(&b, 1, g.Name)
			for _, m := range g.Maps {
				line(&b, 2, m.Name)
				for _, tab := range m.Tabs {
					line(&b, 3, tab.Name)
					for _, tool := range tab.Tools {
						name := tool.Name
						if tool.Icon != "" {
							name += " [" + tool.Icon + "]"
						}
						line(&b, 4, name)
						writeGalleries(&b, 5, tool.Galleries)
					}
				}
			}
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeGalleries(b *strings.Builder, depth int, galleries []aggregate.GalleryNode) {
	for _, g := range galleries {
		name := g.Name
		if g.SearchToken != "" {
			name += " #" + g.SearchToken
		}
		line(b, depth, name)
		writeGalleries(b, depth+1, g.Subgalleries)
		writeMedia(b, depth+1, g.Media)
	}
}

func writeMedia(b *strings.Builder, depth int, media []aggregate.MediaNode) {
	for _, m := range media {
		desc := fmt.Sprintf("%s (%s)", m.Name, m.Type)
		if m.Outline {
			desc += " +outline"
		}
		if m.BoundingCircle {
			desc += " +circle"
		}
		if len(m.Labels) > 0 {
			desc += " labels: " + strings.Join(m.Labels, ", ")
		}
		line(b, depth, desc)
		writeMedia(b, depth+1, m.Variants)
	}
}

func line(b *strings.Builder, depth int, text string) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(text)
	b.WriteByte('\n')
}
