package aggregate

import (
	"context"
	"fmt"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
)

// Tree is the whole catalog as nested values, every level in position
// order.
type Tree struct {
	Studios []StudioNode `json:"studios"`
}

// StudioNode is a studio with its games.
type StudioNode struct {
	Name  string     `json:"name"`
	Games []GameNode `json:"games"`
}

// GameNode is a game with its maps.
type GameNode struct {
	Name string    `json:"name"`
	Maps []MapNode `json:"maps"`
}

// MapNode is a map with its tabs.
type MapNode struct {
	Name string    `json:"name"`
	Tabs []TabNode `json:"tabs"`
}

// TabNode is a tab with its tools.
type TabNode struct {
	Name  string     `json:"name"`
	Tools []ToolNode `json:"tools"`
}

// ToolNode is a tool with its first-level galleries.
type ToolNode struct {
	Name      string        `json:"name"`
	Icon      string        `json:"icon,omitempty"`
	Galleries []GalleryNode `json:"galleries"`
}

// GalleryNode is a gallery. A master lists its sub-galleries, a leaf its
// media.
type GalleryNode struct {
	Name         string        `json:"name"`
	SearchToken  string        `json:"search_token,omitempty"`
	Subgalleries []GalleryNode `json:"subgalleries,omitempty"`
	Media        []MediaNode   `json:"media,omitempty"`
}

// MediaNode is a media item with a summary of its overlays. Variants are
// nested under their master image.
type MediaNode struct {
	Name           string      `json:"name"`
	Type           string      `json:"type"`
	Outline        bool        `json:"outline,omitempty"`
	BoundingCircle bool        `json:"bounding_circle,omitempty"`
	Labels         []string    `json:"labels,omitempty"`
	Variants       []MediaNode `json:"variants,omitempty"`
}

// ReadTree reads the whole catalog.
func ReadTree(ctx context.Context, q Querier) (*Tree, error) {
	r := q.Registry()
	studios, err := reorder.Siblings(ctx, q, reorder.Studios(r))
	if err != nil {
		return nil, err
	}

	tree := &Tree{Studios: []StudioNode{}}
	for _, s := range studios {
		sn := StudioNode{Name: s.Name, Games: []GameNode{}}
		games, err := reorder.Siblings(ctx, q, reorder.GamesOf(r, catalog.StudioKey{Name: s.Name}))
		if err != nil {
			return nil, err
		}
		for _, g := range games {
			gn, err := readGame(ctx, q, catalog.GameKey{Name: g.Name})
			if err != nil {
				return nil, err
			}
			sn.Games = append(sn.Games, gn)
		}
		tree.Studios = append(tree.Studios, sn)
	}
	return tree, nil
}

func readGame(ctx context.Context, q Querier, game catalog.GameKey) (GameNode, error) {
	r := q.Registry()
	gn := GameNode{Name: game.Name, Maps: []MapNode{}}
	maps, err := reorder.Siblings(ctx, q, reorder.MapsOf(r, game))
	if err != nil {
		return gn, err
	}
	for _, m := range maps {
		mk := game.Map(m.Name)
		mn := MapNode{Name: m.Name, Tabs: []TabNode{}}
		tabs, err := reorder.Siblings(ctx, q, reorder.TabsOf(r, mk))
		if err != nil {
			return gn, err
		}
		for _, t := range tabs {
			tk := mk.Tab(t.Name)
			tn := TabNode{Name: t.Name, Tools: []ToolNode{}}
			tools, err := reorder.Siblings(ctx, q, reorder.ToolsOf(r, tk))
			if err != nil {
				return gn, err
			}
			for _, tl := range tools {
				node, err := readTool(ctx, q, tk.Tool(tl.Name))
				if err != nil {
					return gn, err
				}
				tn.Tools = append(tn.Tools, node)
			}
			mn.Tabs = append(mn.Tabs, tn)
		}
		gn.Maps = append(gn.Maps, mn)
	}
	return gn, nil
}

func readTool(ctx context.Context, q Querier, tool catalog.ToolKey) (ToolNode, error) {
	node := ToolNode{Name: tool.Name}
	query := fmt.Sprintf("SELECT icon FROM %s WHERE %s", schema.Tools, q.Registry().Tools().KeyWhere(""))
	err := q.QueryRowContext(ctx, query, tool.Values()...).Scan(&node.Icon)
	if err != nil {
		return node, schema.Classify("read tool", err)
	}
	node.Galleries, err = readGalleries(ctx, q, tool, "")
	return node, err
}

func readGalleries(ctx context.Context, q Querier, tool catalog.ToolKey, master string) ([]GalleryNode, error) {
	view, err := Galleries(ctx, q, tool, GalleryOptions{Master: master, SearchTokens: true})
	if err != nil {
		return nil, err
	}
	nodes := make([]GalleryNode, 0, len(view.Galleries))
	for i, g := range view.Galleries {
		n := GalleryNode{Name: g.Name}
		if st := view.SearchTokens[i]; st != nil {
			n.SearchToken = st.Token
		}
		if n.Subgalleries, err = readGalleries(ctx, q, tool, g.Name); err != nil {
			return nil, err
		}
		if n.Media, err = readMedia(ctx, q, g.GalleryKey, ""); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func readMedia(ctx context.Context, q Querier, gallery catalog.GalleryKey, master string) ([]MediaNode, error) {
	view, err := Media(ctx, q, gallery, MediaOptions{Master: master, Outlines: true, BoundingCircles: true, Labels: true})
	if err != nil {
		return nil, err
	}
	nodes := make([]MediaNode, 0, len(view.Media))
	for i, m := range view.Media {
		n := MediaNode{
			Name:           m.Name,
			Type:           string(m.Type),
			Outline:        view.Outlines[i] != nil,
			BoundingCircle: view.BoundingCircles[i] != nil,
		}
		for _, l := range view.Labels[i] {
			n.Labels = append(n.Labels, l.Text)
		}
		if n.Variants, err = readMedia(ctx, q, gallery, m.Name); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
