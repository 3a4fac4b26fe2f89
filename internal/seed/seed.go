package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/catalog/internal/catalog"
)

//go:embed seed.cue
var schemaSource string

// Document is a whole catalog.
type Document struct {
	Studios []Studio `yaml:"studios"`
}

type Studio struct {
	Name  string `yaml:"name"`
	Games []Game `yaml:"games,omitempty"`
}

type Game struct {
	Name string `yaml:"name"`
	Maps []Map  `yaml:"maps,omitempty"`
}

type Map struct {
	Name string `yaml:"name"`
	Tabs []Tab  `yaml:"tabs,omitempty"`
}

type Tab struct {
	Name  string `yaml:"name"`
	Tools []Tool `yaml:"tools,omitempty"`
}

type Tool struct {
	Name      string    `yaml:"name"`
	Icon      string    `yaml:"icon,omitempty"`
	Galleries []Gallery `yaml:"galleries,omitempty"`
}

// Gallery holds either Subgalleries or Media.
type Gallery struct {
	Name         string    `yaml:"name"`
	SearchToken  string    `yaml:"search_token,omitempty"`
	Subgalleries []Gallery `yaml:"subgalleries,omitempty"`
	Media        []Media   `yaml:"media,omitempty"`
}

// Media is an image or video. Overlays and variants apply to images only.
type Media struct {
	Name           string   `yaml:"name"`
	Type           string   `yaml:"type,omitempty"`
	Outline        *Outline `yaml:"outline,omitempty"`
	BoundingCircle *Circle  `yaml:"bounding_circle,omitempty"`
	Labels         []Label  `yaml:"labels,omitempty"`
	Variants       []Media  `yaml:"variants,omitempty"`
}

// Overlay carries the styling shared by outlines, circles and labels.
// A missing opacity means fully opaque.
type Overlay struct {
	Color   string   `yaml:"color,omitempty"`
	Opacity *float64 `yaml:"opacity,omitempty"`
}

// Outline geometry is either fully given or fully absent.
type Outline struct {
	Overlay `yaml:",inline"`
	X       *float64 `yaml:"x,omitempty"`
	Y       *float64 `yaml:"y,omitempty"`
	Width   *float64 `yaml:"width,omitempty"`
	Height  *float64 `yaml:"height,omitempty"`
}

type Circle struct {
	Overlay `yaml:",inline"`
	CenterX *float64 `yaml:"center_x,omitempty"`
	CenterY *float64 `yaml:"center_y,omitempty"`
	Radius  *float64 `yaml:"radius,omitempty"`
}

type Label struct {
	Overlay `yaml:",inline"`
	Text    string   `yaml:"text"`
	X       *float64 `yaml:"x,omitempty"`
	Y       *float64 `yaml:"y,omitempty"`
}

// LoadFile reads and parses the seed document at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, catalog.NewError(catalog.KindIO, "load seed", fmt.Sprintf("failed to read %s", path), err)
	}
	return Parse(data)
}

// Parse decodes a seed document and checks it against the seed schema.
func Parse(data []byte) (*Document, error) {
	const op = "parse seed"

	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, catalog.NewError(catalog.KindValidation, op, "failed to parse YAML", err)
	}

	// The schema sees the raw document so defaults in the Go types cannot
	// hide a missing field.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, catalog.NewError(catalog.KindValidation, op, "failed to parse YAML", err)
	}
	if err := Check(raw); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Check validates a decoded YAML or JSON value against the #Catalog
// definition.
func Check(raw any) error {
	const op = "check seed"

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("seed.cue"))
	if err := schema.Err(); err != nil {
		return catalog.NewError(catalog.KindSchema, op, "seed schema does not compile", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Catalog"))

	v := def.Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return catalog.NewError(catalog.KindValidation, op, describe(err), err)
	}
	return nil
}

// describe flattens CUE's error list into one line per problem.
func describe(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	seen := make(map[string]bool, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := e.Path(); len(path) > 0 {
			msg = strings.Join(path, ".") + ": " + msg
		}
		if !seen[msg] {
			seen[msg] = true
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}

func opacity(o Overlay) float64 {
	if o.Opacity == nil {
		return 1
	}
	return *o.Opacity
}

func mediaType(t string) catalog.MediaType {
	if t == "" {
		return catalog.MediaImage
	}
	return catalog.MediaType(t)
}

// box returns nil when no coordinate is given and an error when only some
// are.
func (o *Outline) box() (*catalog.Box, error) {
	set := countSet(o.X, o.Y, o.Width, o.Height)
	switch set {
	case 0:
		return nil, nil
	case 4:
		return &catalog.Box{X: *o.X, Y: *o.Y, Width: *o.Width, Height: *o.Height}, nil
	}
	return nil, fmt.Errorf("outline needs x, y, width and height together, got %d of 4", set)
}

func (c *Circle) circle() (*catalog.Circle, error) {
	set := countSet(c.CenterX, c.CenterY, c.Radius)
	switch set {
	case 0:
		return nil, nil
	case 3:
		return &catalog.Circle{CenterX: *c.CenterX, CenterY: *c.CenterY, Radius: *c.Radius}, nil
	}
	return nil, fmt.Errorf("bounding circle needs center_x, center_y and radius together, got %d of 3", set)
}

func (l *Label) point() (*catalog.Point, error) {
	set := countSet(l.X, l.Y)
	switch set {
	case 0:
		return nil, nil
	case 2:
		return &catalog.Point{X: *l.X, Y: *l.Y}, nil
	}
	return nil, fmt.Errorf("label %q needs x and y together", l.Text)
}

func countSet(vals ...*float64) int {
	n := 0
	for _, v := range vals {
		if v != nil {
			n++
		}
	}
	return n
}
