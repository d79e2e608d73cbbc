package state

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Point is a device-space coordinate.
type Point struct{ X, Y float32 }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Color is a "#rrggbb" (or "#rrggbbaa") string, or one of the palette names.
type Color string

var namedColors = map[Color]color.NRGBA{
	"black": {A: 255},
	"white": {R: 255, G: 255, B: 255, A: 255},
	"red":   {R: 255, A: 255},
	"green": {G: 255, A: 255},
	"blue":  {B: 255, A: 255},
}

// NRGBA converts the color, falling back to opaque black when it can't be parsed.
func (c Color) NRGBA() color.NRGBA {
	v, err := c.Parse()
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return v
}

func (c Color) Parse() (color.NRGBA, error) {
	if v, ok := namedColors[Color(strings.ToLower(string(c)))]; ok {
		return v, nil
	}
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", string(c))
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", string(c), err)
	}
	if len(s) == 6 {
		n = n<<8 | 0xff
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

type Kind string

const (
	KindStroke    Kind = "stroke"
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
)

// Element is a committed drawable: a Stroke or a Shape.
type Element interface {
	Kind() Kind
	Bounds() Rect
	clone() Element
}

// Stroke is a freehand path.
type Stroke struct {
	Color  Color
	Width  float32
	Points []Point
}

func (s Stroke) Kind() Kind { return KindStroke }

// Valid reports whether the stroke has enough points to be committed.
func (s Stroke) Valid() bool { return len(s.Points) >= 2 }

func (s Stroke) Bounds() Rect {
	return BoundsOf(s.Points).Inset(-s.Width / 2)
}

func (s Stroke) clone() Element {
	s.Points = append([]Point(nil), s.Points...)
	return s
}

// Shape is a rectangle or a circle anchored at the gesture origin.
// Size is the signed width/height of a rectangle; Radius is used by circles.
type Shape struct {
	Type   Kind
	Origin Point
	Color  Color
	Width  float32
	Size   Point
	Radius float32
}

func (s Shape) Kind() Kind { return s.Type }

// Rect returns the non-negative bounding box of the shape's outline.
func (s Shape) Rect() Rect {
	if s.Type == KindCircle {
		return Rect{X: s.Origin.X - s.Radius, Y: s.Origin.Y - s.Radius, W: 2 * s.Radius, H: 2 * s.Radius}
	}
	return NormalizeRect(s.Origin, s.Size)
}

func (s Shape) Bounds() Rect { return s.Rect().Inset(-s.Width / 2) }

func (s Shape) clone() Element { return s }

// TextItem is a floating text entity. ID survives moves.
type TextItem struct {
	ID       string
	Position Point
	Text     string
}

// Document is the unit of persistence.
type Document struct {
	Elements  []Element
	TextItems []TextItem
}

// Clone deep-copies the document so callers can't reach shared point slices.
func (d Document) Clone() Document {
	out := Document{
		Elements:  CloneElements(d.Elements),
		TextItems: append([]TextItem(nil), d.TextItems...),
	}
	return out
}

func CloneElements(els []Element) []Element {
	if els == nil {
		return nil
	}
	out := make([]Element, len(els))
	for i, e := range els {
		out[i] = e.clone()
	}
	return out
}
