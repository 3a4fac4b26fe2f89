package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/aggregate"
	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/store"
)

// SearchResult is printed by the search command.
type SearchResult struct {
	Token     string               `json:"token"`
	Galleries []catalog.GalleryKey `json:"galleries"`
}

func (r SearchResult) String() string {
	if len(r.Galleries) == 0 {
		return "no gallery matches " + r.Token
	}
	paths := make([]string, len(r.Galleries))
	for i, g := range r.Galleries {
		paths[i] = g.String()
	}
	return strings.Join(paths, "\n")
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <token>",
		Short: "List the galleries carrying a search token",
		Long: `List the galleries whose search token equals the given token.

Example:
  catalog search loading`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, args[0], cmd)
		},
	}
}

func runSearch(opts *RootOptions, token string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result := SearchResult{Token: token}
	err = s.read(cmd, func(ctx context.Context, tx *store.Tx) error {
		var err error
		result.Galleries, err = aggregate.SearchGalleries(ctx, tx, token)
		return err
	})
	if err != nil {
		return s.fail("search failed", err)
	}
	return s.formatter.Success(result)
}
