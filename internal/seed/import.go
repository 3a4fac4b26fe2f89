package seed

import (
	"context"
	"fmt"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/store"
)

// Stats counts the rows written by Import.
type Stats struct {
	Studios      int `json:"studios"`
	Games        int `json:"games"`
	Maps         int `json:"maps"`
	Tabs         int `json:"tabs"`
	Tools        int `json:"tools"`
	Galleries    int `json:"galleries"`
	Media        int `json:"media"`
	Overlays     int `json:"overlays"`
	SearchTokens int `json:"search_tokens"`
}

func (s Stats) String() string {
	return fmt.Sprintf("%d studios, %d games, %d maps, %d tabs, %d tools, %d galleries, %d media, %d overlays, %d search tokens",
		s.Studios, s.Games, s.Maps, s.Tabs, s.Tools, s.Galleries, s.Media, s.Overlays, s.SearchTokens)
}

// Import appends every entity of doc to the catalog. Entities that already
// exist fail with a constraint violation; the caller's transaction decides
// whether the partial import is kept.
func Import(ctx context.Context, tx *store.Tx, doc *Document) (Stats, error) {
	imp := &importer{tx: tx}
	for _, s := range doc.Studios {
		if err := imp.studio(ctx, s); err != nil {
			return imp.stats, err
		}
	}
	tx.Logger().Info("seed imported", "stats", imp.stats.String())
	return imp.stats, nil
}

type importer struct {
	tx    *store.Tx
	stats Stats
}

func (imp *importer) studio(ctx context.Context, s Studio) error {
	if _, err := imp.tx.InsertStudio(ctx, catalog.Studio{StudioKey: catalog.StudioKey{Name: s.Name}}); err != nil {
		return err
	}
	imp.stats.Studios++
	for _, g := range s.Games {
		if err := imp.game(ctx, s.Name, g); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) game(ctx context.Context, studio string, g Game) error {
	key := catalog.GameKey{Name: g.Name}
	if _, err := imp.tx.InsertGame(ctx, catalog.Game{GameKey: key, Studio: studio}); err != nil {
		return err
	}
	imp.stats.Games++
	for _, m := range g.Maps {
		if err := imp.gameMap(ctx, key.Map(m.Name), m); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) gameMap(ctx context.Context, key catalog.MapKey, m Map) error {
	if _, err := imp.tx.InsertMap(ctx, catalog.Map{MapKey: key}); err != nil {
		return err
	}
	imp.stats.Maps++
	for _, t := range m.Tabs {
		if err := imp.tab(ctx, key.Tab(t.Name), t); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) tab(ctx context.Context, key catalog.TabKey, t Tab) error {
	if _, err := imp.tx.InsertTab(ctx, catalog.Tab{TabKey: key}); err != nil {
		return err
	}
	imp.stats.Tabs++
	for _, tool := range t.Tools {
		if err := imp.tool(ctx, key.Tool(tool.Name), tool); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) tool(ctx context.Context, key catalog.ToolKey, t Tool) error {
	if _, err := imp.tx.InsertTool(ctx, catalog.Tool{ToolKey: key, Icon: t.Icon}); err != nil {
		return err
	}
	imp.stats.Tools++
	for _, g := range t.Galleries {
		if err := imp.gallery(ctx, key.Gallery(g.Name), "", g); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) gallery(ctx context.Context, key catalog.GalleryKey, master string, g Gallery) error {
	if _, err := imp.tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: key, Master: master}); err != nil {
		return err
	}
	imp.stats.Galleries++
	if g.SearchToken != "" {
		if err := imp.tx.SetSearchToken(ctx, catalog.SearchToken{Gallery: key, Token: g.SearchToken}); err != nil {
			return err
		}
		imp.stats.SearchTokens++
	}
	for _, sub := range g.Subgalleries {
		if err := imp.gallery(ctx, key.Sibling(sub.Name), key.Name, sub); err != nil {
			return err
		}
	}
	for _, m := range g.Media {
		if err := imp.media(ctx, key.Media(m.Name), "", m); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) media(ctx context.Context, key catalog.MediaKey, master string, m Media) error {
	const op = "import media"
	if _, err := imp.tx.InsertMedia(ctx, catalog.Media{MediaKey: key, Type: mediaType(m.Type), Master: master}); err != nil {
		return err
	}
	imp.stats.Media++

	if m.Outline != nil {
		box, err := m.Outline.box()
		if err != nil {
			return catalog.NewError(catalog.KindValidation, op, key.String(), err)
		}
		o := catalog.Outline{Media: key, Box: box, Color: m.Outline.Color, Opacity: opacity(m.Outline.Overlay)}
		if err := imp.tx.InsertOutline(ctx, o); err != nil {
			return err
		}
		imp.stats.Overlays++
	}
	if m.BoundingCircle != nil {
		circle, err := m.BoundingCircle.circle()
		if err != nil {
			return catalog.NewError(catalog.KindValidation, op, key.String(), err)
		}
		c := catalog.BoundingCircle{Media: key, Circle: circle, Color: m.BoundingCircle.Color, Opacity: opacity(m.BoundingCircle.Overlay)}
		if err := imp.tx.InsertBoundingCircle(ctx, c); err != nil {
			return err
		}
		imp.stats.Overlays++
	}
	for i := range m.Labels {
		l := &m.Labels[i]
		point, err := l.point()
		if err != nil {
			return catalog.NewError(catalog.KindValidation, op, key.String(), err)
		}
		label := catalog.Label{Media: key, Text: l.Text, Point: point, Color: l.Color, Opacity: opacity(l.Overlay)}
		if _, err := imp.tx.InsertLabel(ctx, label); err != nil {
			return err
		}
		imp.stats.Overlays++
	}
	for _, v := range m.Variants {
		if err := imp.media(ctx, key.Sibling(v.Name), key.Name, v); err != nil {
			return err
		}
	}
	return nil
}
