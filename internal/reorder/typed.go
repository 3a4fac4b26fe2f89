package reorder

import (
	"context"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/schema"
)

// ReorderTools puts the tools of tab in the given order.
func ReorderTools(ctx context.Context, q schema.Querier, r *schema.Registry, tab catalog.TabKey, names []string) (int, error) {
	return Apply(ctx, q, ToolsOf(r, tab.Normalize()), normalizeAll(names))
}

// ReorderGalleries puts the galleries of tool in the given order. With a
// non-empty master the slaves of that gallery are reordered instead of the
// first-level galleries.
func ReorderGalleries(ctx context.Context, q schema.Querier, r *schema.Registry, tool catalog.ToolKey, master string, names []string) (int, error) {
	tool = tool.Normalize()
	scope := GalleriesOf(r, tool)
	if master != "" {
		scope = SubgalleriesOf(r, tool.Gallery(catalog.NormalizeName(master)))
	}
	return Apply(ctx, q, scope, normalizeAll(names))
}

// ReorderMedia puts the media of gallery in the given order. With a non-empty
// master the variants of that image are reordered instead.
func ReorderMedia(ctx context.Context, q schema.Querier, r *schema.Registry, gallery catalog.GalleryKey, master string, names []string) (int, error) {
	gallery = gallery.Normalize()
	scope := MediaOf(r, gallery)
	if master != "" {
		scope = VariantsOf(r, gallery.Media(catalog.NormalizeName(master)))
	}
	return Apply(ctx, q, scope, normalizeAll(names))
}

// ReorderLabels puts the labels of media in the given text order.
func ReorderLabels(ctx context.Context, q schema.Querier, r *schema.Registry, media catalog.MediaKey, texts []string) (int, error) {
	return Apply(ctx, q, LabelsOf(r, media.Normalize()), texts)
}

func normalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = catalog.NormalizeName(n)
	}
	return out
}
