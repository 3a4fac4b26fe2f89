package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PathSeparator joins ancestor names in a printable path key.
const PathSeparator = "/"

// NormalizeName trims surrounding whitespace and applies Unicode NFC so that
// visually identical names map to the same path key.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// StudioKey identifies a studio. Studios are the roots of the catalog.
type StudioKey struct {
	Name string `json:"name" validate:"required,excludesall=/"`
}

// GameKey identifies a game. Game names are unique across studios.
type GameKey struct {
	Name string `json:"name" validate:"required,excludesall=/"`
}

// MapKey identifies a map inside a game.
type MapKey struct {
	Game string `json:"game" validate:"required,excludesall=/"`
	Name string `json:"name" validate:"required,excludesall=/"`
}

// TabKey identifies a tab inside a map.
type TabKey struct {
	Game string `json:"game" validate:"required,excludesall=/"`
	Map  string `json:"map" validate:"required,excludesall=/"`
	Name string `json:"name" validate:"required,excludesall=/"`
}

// ToolKey identifies a tool inside a tab.
type ToolKey struct {
	Game string `json:"game" validate:"required,excludesall=/"`
	Map  string `json:"map" validate:"required,excludesall=/"`
	Tab  string `json:"tab" validate:"required,excludesall=/"`
	Name string `json:"name" validate:"required,excludesall=/"`
}

// GalleryKey identifies a gallery inside a tool.
type GalleryKey struct {
	Game string `json:"game" validate:"required,excludesall=/"`
	Map  string `json:"map" validate:"required,excludesall=/"`
	Tab  string `json:"tab" validate:"required,excludesall=/"`
	Tool string `json:"tool" validate:"required,excludesall=/"`
	Name string `json:"name" validate:"required,excludesall=/"`
}

// MediaKey identifies an image or video inside a gallery.
type MediaKey struct {
	Game    string `json:"game" validate:"required,excludesall=/"`
	Map     string `json:"map" validate:"required,excludesall=/"`
	Tab     string `json:"tab" validate:"required,excludesall=/"`
	Tool    string `json:"tool" validate:"required,excludesall=/"`
	Gallery string `json:"gallery" validate:"required,excludesall=/"`
	Name    string `json:"name" validate:"required,excludesall=/"`
}

func joinPath(names ...string) string {
	return strings.Join(names, PathSeparator)
}

func (k StudioKey) String() string { return k.Name }

// Normalize returns the key with every name normalized.
func (k StudioKey) Normalize() StudioKey { return StudioKey{Name: NormalizeName(k.Name)} }

// Values returns the key column values in schema order.
func (k StudioKey) Values() []any { return []any{k.Name} }

func (k GameKey) String() string { return k.Name }

// Normalize returns the key with every name normalized.
func (k GameKey) Normalize() GameKey { return GameKey{Name: NormalizeName(k.Name)} }

// Values returns the key column values in schema order.
func (k GameKey) Values() []any { return []any{k.Name} }

// Map returns the key of the named map inside this game.
func (k GameKey) Map(name string) MapKey { return MapKey{Game: k.Name, Name: name} }

func (k MapKey) String() string { return joinPath(k.Game, k.Name) }

// Normalize returns the key with every name normalized.
func (k MapKey) Normalize() MapKey {
	return MapKey{Game: NormalizeName(k.Game), Name: NormalizeName(k.Name)}
}

// Values returns the key column values in schema order: name, game.
func (k MapKey) Values() []any { return []any{k.Name, k.Game} }

// Parent returns the owning game.
func (k MapKey) Parent() GameKey { return GameKey{Name: k.Game} }

// Tab returns the key of the named tab inside this map.
func (k MapKey) Tab(name string) TabKey { return TabKey{Game: k.Game, Map: k.Name, Name: name} }

func (k TabKey) String() string { return joinPath(k.Game, k.Map, k.Name) }

// Normalize returns the key with every name normalized.
func (k TabKey) Normalize() TabKey {
	return TabKey{Game: NormalizeName(k.Game), Map: NormalizeName(k.Map), Name: NormalizeName(k.Name)}
}

// Values returns the key column values in schema order: name, map, game.
func (k TabKey) Values() []any { return []any{k.Name, k.Map, k.Game} }

// Parent returns the owning map.
func (k TabKey) Parent() MapKey { return MapKey{Game: k.Game, Name: k.Map} }

// Tool returns the key of the named tool inside this tab.
func (k TabKey) Tool(name string) ToolKey {
	return ToolKey{Game: k.Game, Map: k.Map, Tab: k.Name, Name: name}
}

func (k ToolKey) String() string { return joinPath(k.Game, k.Map, k.Tab, k.Name) }

// Normalize returns the key with every name normalized.
func (k ToolKey) Normalize() ToolKey {
	return ToolKey{
		Game: NormalizeName(k.Game),
		Map:  NormalizeName(k.Map),
		Tab:  NormalizeName(k.Tab),
		Name: NormalizeName(k.Name),
	}
}

// Values returns the key column values in schema order: name, tab, map, game.
func (k ToolKey) Values() []any { return []any{k.Name, k.Tab, k.Map, k.Game} }

// Parent returns the owning tab.
func (k ToolKey) Parent() TabKey { return TabKey{Game: k.Game, Map: k.Map, Name: k.Tab} }

// InTab returns the same tool name placed under another tab of the same map.
func (k ToolKey) InTab(tab string) ToolKey {
	k.Tab = tab
	return k
}

// Gallery returns the key of the named gallery inside this tool.
func (k ToolKey) Gallery(name string) GalleryKey {
	return GalleryKey{Game: k.Game, Map: k.Map, Tab: k.Tab, Tool: k.Name, Name: name}
}

func (k GalleryKey) String() string { return joinPath(k.Game, k.Map, k.Tab, k.Tool, k.Name) }

// Normalize returns the key with every name normalized.
func (k GalleryKey) Normalize() GalleryKey {
	return GalleryKey{
		Game: NormalizeName(k.Game),
		Map:  NormalizeName(k.Map),
		Tab:  NormalizeName(k.Tab),
		Tool: NormalizeName(k.Tool),
		Name: NormalizeName(k.Name),
	}
}

// Values returns the key column values in schema order: name, tool, tab, map, game.
func (k GalleryKey) Values() []any { return []any{k.Name, k.Tool, k.Tab, k.Map, k.Game} }

// Parent returns the owning tool.
func (k GalleryKey) Parent() ToolKey {
	return ToolKey{Game: k.Game, Map: k.Map, Tab: k.Tab, Name: k.Tool}
}

// Sibling returns the key of another gallery in the same tool.
func (k GalleryKey) Sibling(name string) GalleryKey {
	k.Name = name
	return k
}

// Media returns the key of the named media inside this gallery.
func (k GalleryKey) Media(name string) MediaKey {
	return MediaKey{Game: k.Game, Map: k.Map, Tab: k.Tab, Tool: k.Tool, Gallery: k.Name, Name: name}
}

func (k MediaKey) String() string {
	return joinPath(k.Game, k.Map, k.Tab, k.Tool, k.Gallery, k.Name)
}

// Normalize returns the key with every name normalized.
func (k MediaKey) Normalize() MediaKey {
	return MediaKey{
		Game:    NormalizeName(k.Game),
		Map:     NormalizeName(k.Map),
		Tab:     NormalizeName(k.Tab),
		Tool:    NormalizeName(k.Tool),
		Gallery: NormalizeName(k.Gallery),
		Name:    NormalizeName(k.Name),
	}
}

// Values returns the key column values in schema order: name, gallery, tool, tab, map, game.
func (k MediaKey) Values() []any {
	return []any{k.Name, k.Gallery, k.Tool, k.Tab, k.Map, k.Game}
}

// Parent returns the owning gallery.
func (k MediaKey) Parent() GalleryKey {
	return GalleryKey{Game: k.Game, Map: k.Map, Tab: k.Tab, Tool: k.Tool, Name: k.Gallery}
}

// Sibling returns the key of another media in the same gallery.
func (k MediaKey) Sibling(name string) MediaKey {
	k.Name = name
	return k
}

// splitPath splits a printable path key and checks its depth.
func splitPath(path string, depth int, what string) ([]string, error) {
	parts := strings.Split(strings.Trim(path, PathSeparator), PathSeparator)
	if len(parts) != depth {
		return nil, NewError(KindValidation, "parse "+what+" path",
			fmt.Sprintf("%q has %d segments, want %d", path, len(parts), depth), nil)
	}
	for i, p := range parts {
		parts[i] = NormalizeName(p)
		if parts[i] == "" {
			return nil, NewError(KindValidation, "parse "+what+" path",
				fmt.Sprintf("%q has an empty segment", path), nil)
		}
	}
	return parts, nil
}

// ParseStudioKey parses a studio name.
func ParseStudioKey(path string) (StudioKey, error) {
	p, err := splitPath(path, 1, "studio")
	if err != nil {
		return StudioKey{}, err
	}
	return StudioKey{Name: p[0]}, nil
}

// ParseGameKey parses a game name.
func ParseGameKey(path string) (GameKey, error) {
	p, err := splitPath(path, 1, "game")
	if err != nil {
		return GameKey{}, err
	}
	return GameKey{Name: p[0]}, nil
}

// ParseMapKey parses "game/map".
func ParseMapKey(path string) (MapKey, error) {
	p, err := splitPath(path, 2, "map")
	if err != nil {
		return MapKey{}, err
	}
	return MapKey{Game: p[0], Name: p[1]}, nil
}

// ParseTabKey parses "game/map/tab".
func ParseTabKey(path string) (TabKey, error) {
	p, err := splitPath(path, 3, "tab")
	if err != nil {
		return TabKey{}, err
	}
	return TabKey{Game: p[0], Map: p[1], Name: p[2]}, nil
}

// ParseToolKey parses "game/map/tab/tool".
func ParseToolKey(path string) (ToolKey, error) {
	p, err := splitPath(path, 4, "tool")
	if err != nil {
		return ToolKey{}, err
	}
	return ToolKey{Game: p[0], Map: p[1], Tab: p[2], Name: p[3]}, nil
}

// ParseGalleryKey parses "game/map/tab/tool/gallery".
func ParseGalleryKey(path string) (GalleryKey, error) {
	p, err := splitPath(path, 5, "gallery")
	if err != nil {
		return GalleryKey{}, err
	}
	return GalleryKey{Game: p[0], Map: p[1], Tab: p[2], Tool: p[3], Name: p[4]}, nil
}

// ParseMediaKey parses "game/map/tab/tool/gallery/media".
func ParseMediaKey(path string) (MediaKey, error) {
	p, err := splitPath(path, 6, "media")
	if err != nil {
		return MediaKey{}, err
	}
	return MediaKey{Game: p[0], Map: p[1], Tab: p[2], Tool: p[3], Gallery: p[4], Name: p[5]}, nil
}
