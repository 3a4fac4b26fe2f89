package catalog

// MediaType is the kind of a media item.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Studio is a catalog root.
type Studio struct {
	StudioKey
	Position int `json:"position"`
}

// Game belongs to a studio.
type Game struct {
	GameKey
	Studio   string `json:"studio" validate:"required,excludesall=/"`
	Position int    `json:"position"`
}

// Map belongs to a game.
type Map struct {
	MapKey
	Position int `json:"position"`
}

// Tab belongs to a map.
type Tab struct {
	TabKey
	Position int `json:"position"`
}

// Tool belongs to a tab.
type Tool struct {
	ToolKey
	Icon     string `json:"icon,omitempty"`
	Position int    `json:"position"`
}

// Gallery belongs to a tool. Master is set when the gallery is a
// sub-gallery of another gallery in the same tool.
type Gallery struct {
	GalleryKey
	Master   string `json:"master,omitempty" validate:"excludesall=/"`
	Position int    `json:"position"`
}

// Media is an image or a video inside a leaf gallery. Master is set when the
// media is a variant of another image in the same gallery.
type Media struct {
	MediaKey
	Type     MediaType `json:"type" validate:"required,oneof=image video"`
	Master   string    `json:"master,omitempty" validate:"excludesall=/"`
	Position int       `json:"position"`
}

// Box is a normalized rectangle.
type Box struct {
	X      float64 `json:"x" validate:"gte=0,lte=1"`
	Y      float64 `json:"y" validate:"gte=0,lte=1"`
	Width  float64 `json:"width" validate:"gte=0,lte=1"`
	Height float64 `json:"height" validate:"gte=0,lte=1"`
}

// Circle is a normalized circle.
type Circle struct {
	CenterX float64 `json:"center_x" validate:"gte=0,lte=1"`
	CenterY float64 `json:"center_y" validate:"gte=0,lte=1"`
	Radius  float64 `json:"radius" validate:"gte=0,lte=1"`
}

// Point is a normalized coordinate pair.
type Point struct {
	X float64 `json:"x" validate:"gte=0,lte=1"`
	Y float64 `json:"y" validate:"gte=0,lte=1"`
}

// Outline is the 0..1 rectangular overlay of an image.
type Outline struct {
	Media   MediaKey `json:"media"`
	Box     *Box     `json:"box,omitempty"`
	Color   string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Opacity float64  `json:"opacity" validate:"gte=0,lte=1"`
}

// BoundingCircle is the 0..1 circular overlay of an image.
type BoundingCircle struct {
	Media   MediaKey `json:"media"`
	Circle  *Circle  `json:"circle,omitempty"`
	Color   string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Opacity float64  `json:"opacity" validate:"gte=0,lte=1"`
}

// Label is one of the 0..n text overlays of an image.
type Label struct {
	Media    MediaKey `json:"media"`
	Text     string   `json:"text" validate:"required"`
	Point    *Point   `json:"point,omitempty"`
	Color    string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Opacity  float64  `json:"opacity" validate:"gte=0,lte=1"`
	Position int      `json:"position"`
}

// SearchToken is the 0..1 search handle of a gallery.
type SearchToken struct {
	Gallery GalleryKey `json:"gallery"`
	Token   string     `json:"token" validate:"required"`
}
