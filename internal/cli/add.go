package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/store"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	At       int
	Studio   string
	Icon     string
	Master   string
	Type     string
	Text     string
	Color    string
	Opacity  float64
	Geometry []float64
}

// AddResult is printed by the add command. Position is unset for overlays
// and search tokens.
type AddResult struct {
	Kind     string `json:"kind"`
	Path     string `json:"path"`
	Position *int   `json:"position,omitempty"`
}

func (r AddResult) String() string {
	if r.Position == nil {
		return fmt.Sprintf("added %s to %s", r.Kind, r.Path)
	}
	return fmt.Sprintf("added %s %s at position %d", r.Kind, r.Path, *r.Position)
}

var addKinds = []string{"studio", "game", "map", "tab", "tool", "gallery", "media", "label", "outline", "circle", "token"}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <kind> <path>",
		Short: "Add an entity to the catalog",
		Long: `Add an entity to the catalog.

Kinds and their paths:
  studio   <studio>
  game     <game>                                  (--studio required)
  map      <game>/<map>
  tab      <game>/<map>/<tab>
  tool     <game>/<map>/<tab>/<tool>               (--icon)
  gallery  <game>/<map>/<tab>/<tool>/<gallery>     (--master)
  media    <.../gallery>/<media>                   (--type, --master)
  label    <.../media>                             (--text required)
  outline  <.../media>                             (--geometry x,y,width,height)
  circle   <.../media>                             (--geometry center_x,center_y,radius)
  token    <.../gallery>                           (--text required)

New entities are appended to their siblings unless --at gives a position.

Example:
  catalog add studio Northwind
  catalog add game Harbor --studio Northwind
  catalog add gallery Harbor/Docks/Cargo/Crane/Day --master Loading
  catalog add outline Harbor/Docks/Cargo/Crane/Day/front.png --geometry 0.1,0.1,0.5,0.5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.At, "at", -1, "position among the siblings (default: append)")
	cmd.Flags().StringVar(&opts.Studio, "studio", "", "owning studio of a game")
	cmd.Flags().StringVar(&opts.Icon, "icon", "", "tool icon")
	cmd.Flags().StringVar(&opts.Master, "master", "", "master gallery or image in the same parent")
	cmd.Flags().StringVar(&opts.Type, "type", string(catalog.MediaImage), "media type (image|video)")
	cmd.Flags().StringVar(&opts.Text, "text", "", "label text or search token")
	cmd.Flags().StringVar(&opts.Color, "color", "", "overlay hex color")
	cmd.Flags().Float64Var(&opts.Opacity, "opacity", 1, "overlay opacity in [0,1]")
	cmd.Flags().Float64SliceVar(&opts.Geometry, "geometry", nil, "overlay geometry in [0,1]")

	return cmd
}

func runAdd(opts *AddOptions, kind, path string, cmd *cobra.Command) error {
	add, err := addFunc(opts, kind, path)
	if err != nil {
		return usageError(opts.RootOptions, cmd, err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var result AddResult
	err = s.update(cmd, func(ctx context.Context, tx *store.Tx) error {
		var err error
		result, err = add(ctx, tx)
		return err
	})
	if err != nil {
		return s.fail("add "+kind+" failed", err)
	}
	return s.formatter.Success(result)
}

type addFn func(ctx context.Context, tx *store.Tx) (AddResult, error)

// addFunc parses path for kind and returns the insert to run. Parse errors
// surface before the database is opened.
func addFunc(opts *AddOptions, kind, path string) (addFn, error) {
	at := store.At(opts.At)
	positioned := func(key fmt.Stringer, insert func(context.Context, *store.Tx) (int, error)) addFn {
		return func(ctx context.Context, tx *store.Tx) (AddResult, error) {
			pos, err := insert(ctx, tx)
			return AddResult{Kind: kind, Path: key.String(), Position: &pos}, err
		}
	}
	overlay := func(key fmt.Stringer, insert func(context.Context, *store.Tx) error) addFn {
		return func(ctx context.Context, tx *store.Tx) (AddResult, error) {
			return AddResult{Kind: kind, Path: key.String()}, insert(ctx, tx)
		}
	}

	switch kind {
	case "studio":
		key, err := catalog.ParseStudioKey(path)
		if err != nil {
			return nil, err
		}
		return positioned(key, func(ctx context.Context, tx *store.Tx) (int, error) {
			return tx.InsertStudio(ctx, catalog.Studio{StudioKey: key}, at)
		}), nil

	case "game":
		key, err := catalog.ParseGameKey(path)
		if err != nil {
			return nil, err
		}
		if opts.Studio == "" {
			return nil, catalog.NewError(catalog.KindValidation, "add game", "--studio is required", nil)
		}
		return positioned(key, func(ctx context.Context, tx *store.Tx) (int, error) {
			return tx.InsertGame(ctx, catalog.Game{GameKey: key, Studio: opts.Studio}, at)
		}), nil

	case "map":
		key, err := catalog.ParseMapKey(path)
		if err != nil {
			return nil, err
		}
		return positioned(key, func(ctx context.Context, tx *store.Tx) (int, error) {
			return tx.InsertMap(ctx, catalog.Map{MapKey: key}, at)
		}), nil

	case "tab":
		key, err := catalog.ParseTabKey(path)
		if err != nil {
			return nil, err
		}
		return positioned(key, func(ctx context.Context, tx *store.Tx) (int, error) {
			return tx.InsertTab(ctx, catalog.Tab{TabKey: key}, at)
		}), nil

	case "tool":
		key, err := catalog.ParseToolKey(path)
		if err != nil {
			return nil, err
		}
		return positioned(key, func(ctx context.Context, tx *store.Tx) (int, error) {
			return tx.InsertTool(ctx, catalog.Tool{ToolKey: key, Icon: opts.Icon}, at)
		}), nil

	case "gallery":
		key, err := catalog.ParseGalleryKey(path)
		if err != nil {
			return nil, err
		}
		return positioned(key, func(ctx context.Context, tx *store.Tx) (int, error) {
			return tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: key, Master: opts.Master}, at)
		}), nil

	case "media":
		key, err := catalog.ParseMediaKey(path)
		if err != nil {
			return nil, err
		}
		m := catalog.Media{MediaKey: key, Type: catalog.MediaType(opts.Type), Master: opts.Master}
		return positioned(key, func(ctx context.Context, tx *store.Tx) (int, error) {
			return tx.InsertMedia(ctx, m, at)
		}), nil

	case "label":
		key, err := catalog.ParseMediaKey(path)
		if err != nil {
			return nil, err
		}
		l := catalog.Label{Media: key, Text: opts.Text, Color: opts.Color, Opacity: opts.Opacity}
		switch len(opts.Geometry) {
		case 0:
		case 2:
			l.Point = &catalog.Point{X: opts.Geometry[0], Y: opts.Geometry[1]}
		default:
			return nil, geometryError("label", "x,y", len(opts.Geometry))
		}
		return positioned(key, func(ctx context.Context, tx *store.Tx) (int, error) {
			return tx.InsertLabel(ctx, l, at)
		}), nil

	case "outline":
		key, err := catalog.ParseMediaKey(path)
		if err != nil {
			return nil, err
		}
		o := catalog.Outline{Media: key, Color: opts.Color, Opacity: opts.Opacity}
		switch g := opts.Geometry; len(g) {
		case 0:
		case 4:
			o.Box = &catalog.Box{X: g[0], Y: g[1], Width: g[2], Height: g[3]}
		default:
			return nil, geometryError("outline", "x,y,width,height", len(g))
		}
		return overlay(key, func(ctx context.Context, tx *store.Tx) error {
			return tx.InsertOutline(ctx, o)
		}), nil

	case "circle":
		key, err := catalog.ParseMediaKey(path)
		if err != nil {
			return nil, err
		}
		c := catalog.BoundingCircle{Media: key, Color: opts.Color, Opacity: opts.Opacity}
		switch g := opts.Geometry; len(g) {
		case 0:
		case 3:
			c.Circle = &catalog.Circle{CenterX: g[0], CenterY: g[1], Radius: g[2]}
		default:
			return nil, geometryError("circle", "center_x,center_y,radius", len(g))
		}
		return overlay(key, func(ctx context.Context, tx *store.Tx) error {
			return tx.InsertBoundingCircle(ctx, c)
		}), nil

	case "token":
		key, err := catalog.ParseGalleryKey(path)
		if err != nil {
			return nil, err
		}
		return overlay(key, func(ctx context.Context, tx *store.Tx) error {
			return tx.SetSearchToken(ctx, catalog.SearchToken{Gallery: key, Token: opts.Text})
		}), nil
	}

	return nil, unknownKind(kind, addKinds)
}

func geometryError(kind, want string, got int) error {
	return catalog.NewError(catalog.KindValidation, "add "+kind,
		fmt.Sprintf("--geometry takes %s, got %d values", want, got), nil)
}

func unknownKind(kind string, kinds []string) error {
	return catalog.NewError(catalog.KindValidation, "parse kind",
		fmt.Sprintf("unknown kind %q: must be one of %s", kind, strings.Join(kinds, ", ")), nil)
}
