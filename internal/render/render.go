// Package render paints a document onto an RGBA surface.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"SketchBoard/internal/state"
)

// Frame is everything one paint needs. Draft is nil outside a gesture.
type Frame struct {
	Document state.Document
	Draft    state.Element
	Handles  []state.Rect // delete affordances of hovered text
	Size     image.Point
}

// Renderer paints a frame. Implementations must not keep the frame's
// slices after returning.
type Renderer interface {
	Paint(f Frame) *image.RGBA
}

var (
	DefaultBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	deleteHandleColor = color.NRGBA{R: 220, G: 30, B: 30, A: 255}
	textColor         = color.NRGBA{A: 255}
)

// Raster repaints the whole document on every frame, then the draft on top.
type Raster struct {
	Background color.Color
	Text       *TextFace
}

func NewRaster(bg color.Color) *Raster {
	if bg == nil {
		bg = DefaultBackground
	}
	return &Raster{Background: bg, Text: DefaultTextFace()}
}

func (r *Raster) Paint(f Frame) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: f.Size})
	draw.Draw(img, img.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)
	if img.Bounds().Empty() {
		return img
	}

	for _, el := range f.Document.Elements {
		paintElement(img, el)
	}
	if f.Draft != nil {
		paintElement(img, f.Draft)
	}

	for _, it := range f.Document.TextItems {
		r.Text.Draw(img, it, textColor)
	}
	for _, h := range f.Handles {
		paintDeleteHandle(img, h)
	}
	return img
}

func paintElement(img *image.RGBA, el state.Element) {
	switch e := el.(type) {
	case state.Stroke:
		paintStroke(img, e)
	case state.Shape:
		if e.Type == state.KindCircle {
			paintCircle(img, e)
		} else {
			paintRectangle(img, e)
		}
	}
}

func paintStroke(img *image.RGBA, s state.Stroke) {
	if len(s.Points) < 2 {
		return
	}
	p := newPen(img, s.Width)
	p.polyline(s.Points, false)
	p.fill(s.Color.NRGBA())
}

func paintRectangle(img *image.RGBA, s state.Shape) {
	r := s.Rect()
	p := newPen(img, s.Width)
	p.polyline([]state.Point{
		r.Min(),
		{X: r.X + r.W, Y: r.Y},
		r.Max(),
		{X: r.X, Y: r.Y + r.H},
	}, true)
	p.fill(s.Color.NRGBA())
}

func paintCircle(img *image.RGBA, s state.Shape) {
	p := newPen(img, s.Width)
	p.ring(s.Origin, s.Radius)
	p.fill(s.Color.NRGBA())
}

func paintDeleteHandle(img *image.RGBA, r state.Rect) {
	p := newPen(img, 2)
	p.polyline([]state.Point{{X: r.X + 3, Y: r.Y + 3}, {X: r.X + r.W - 3, Y: r.Y + r.H - 3}}, false)
	p.polyline([]state.Point{{X: r.X + r.W - 3, Y: r.Y + 3}, {X: r.X + 3, Y: r.Y + r.H - 3}}, false)
	p.fill(deleteHandleColor)
}
