package aggregate

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
)

// GalleryOptions selects what Galleries returns alongside the galleries.
type GalleryOptions struct {
	// Master lists the slaves of this gallery instead of the first-level
	// galleries of the tool.
	Master string

	// SearchTokens pairs every gallery with its 0..1 search token.
	SearchTokens bool

	// Masters pairs every gallery with the key of its master, nil for a
	// first-level gallery.
	Masters bool
}

// GalleryView is the result of Galleries.
type GalleryView struct {
	Galleries    []catalog.Gallery      `json:"galleries"`
	SearchTokens []*catalog.SearchToken `json:"search_tokens,omitempty"`
	Masters      []*catalog.GalleryKey  `json:"masters,omitempty"`
}

// Galleries returns the first-level galleries of tool, or the slaves of
// opts.Master, in position order.
func Galleries(ctx context.Context, q Querier, tool catalog.ToolKey, opts GalleryOptions) (GalleryView, error) {
	tool = tool.Normalize()
	if err := catalog.Validate("read galleries", tool); err != nil {
		return GalleryView{}, err
	}
	master := catalog.NormalizeName(opts.Master)

	scope := reorder.GalleriesOf(q.Registry(), tool)
	if master != "" {
		scope = reorder.SubgalleriesOf(q.Registry(), tool.Gallery(master))
	}
	siblings, err := reorder.Siblings(ctx, q, scope)
	if err != nil {
		return GalleryView{}, err
	}

	view := GalleryView{Galleries: make([]catalog.Gallery, len(siblings))}
	for i, s := range siblings {
		view.Galleries[i] = catalog.Gallery{GalleryKey: tool.Gallery(s.Name), Master: master, Position: s.Position}
	}

	if opts.SearchTokens {
		view.SearchTokens = make([]*catalog.SearchToken, len(siblings))
		for i, g := range view.Galleries {
			if view.SearchTokens[i], err = SearchTokenOf(ctx, q, g.GalleryKey); err != nil {
				return GalleryView{}, err
			}
		}
	}
	if opts.Masters {
		view.Masters = make([]*catalog.GalleryKey, len(siblings))
		if master != "" {
			for i := range view.Masters {
				k := tool.Gallery(master)
				view.Masters[i] = &k
			}
		}
	}
	return view, nil
}

// Subgalleries returns the slaves of master in position order.
func Subgalleries(ctx context.Context, q Querier, master catalog.GalleryKey) ([]catalog.Gallery, error) {
	master = master.Normalize()
	view, err := Galleries(ctx, q, master.Parent(), GalleryOptions{Master: master.Name})
	if err != nil {
		return nil, err
	}
	return view.Galleries, nil
}

// MasterOf returns the master of gallery, or nil for a first-level gallery.
func MasterOf(ctx context.Context, q Querier, gallery catalog.GalleryKey) (*catalog.GalleryKey, error) {
	gallery = gallery.Normalize()
	var master string
	err := q.QueryRowContext(ctx, `
		SELECT master FROM subgalleries WHERE slave = ? AND tool = ? AND tab = ? AND map = ? AND game = ?
	`, gallery.Values()...).Scan(&master)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, schema.Classify("read gallery master", err)
	}
	k := gallery.Sibling(master)
	return &k, nil
}

// SearchTokenOf returns the search token of gallery, or nil.
func SearchTokenOf(ctx context.Context, q Querier, gallery catalog.GalleryKey) (*catalog.SearchToken, error) {
	gallery = gallery.Normalize()
	var token string
	err := q.QueryRowContext(ctx, `
		SELECT token FROM search_tokens WHERE gallery = ? AND tool = ? AND tab = ? AND map = ? AND game = ?
	`, gallery.Values()...).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, schema.Classify("read search token", err)
	}
	return &catalog.SearchToken{Gallery: gallery, Token: token}, nil
}

// SearchGalleries returns every gallery whose search token equals token,
// ordered by path.
func SearchGalleries(ctx context.Context, q Querier, token string) ([]catalog.GalleryKey, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT game, map, tab, tool, gallery
		FROM search_tokens
		WHERE token = ?
		ORDER BY game, map, tab, tool, gallery COLLATE BINARY
	`, catalog.NormalizeName(token))
	if err != nil {
		return nil, schema.Classify("search galleries", err)
	}
	defer rows.Close()

	keys := []catalog.GalleryKey{}
	for rows.Next() {
		var k catalog.GalleryKey
		if err := rows.Scan(&k.Game, &k.Map, &k.Tab, &k.Tool, &k.Name); err != nil {
			return nil, schema.Classify("scan search result", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, schema.Classify("iterate search results", err)
	}
	return keys, nil
}
