// Package tool turns pointer gestures into drawable elements.
package tool

import (
	"errors"
	"fmt"

	"SketchBoard/internal/state"
)

type Kind string

const (
	Freehand  Kind = "freehand"
	Rectangle Kind = "rectangle"
	Circle    Kind = "circle"
	Text      Kind = "text"
)

// Kinds lists the tools in toolbar order.
var Kinds = []Kind{Freehand, Rectangle, Circle, Text}

// MinShapeExtent is the smallest rectangle diagonal or circle radius that
// is kept; anything smaller is treated as a misclick.
const MinShapeExtent = 2

// ErrNotGestural is returned for tools that are not driven by a press-drag-release.
var ErrNotGestural = errors.New("tool is not driven by gestures")

// Style is the pen applied to new elements.
type Style struct {
	Color state.Color
	Width float32
	// Coalesce drops freehand points closer than this to the previous one.
	Coalesce float32
}

var DefaultStyle = Style{Color: "#000000", Width: 2}

// Strategy interprets one gesture at a time. Draft exposes the uncommitted
// element for preview only.
type Strategy interface {
	Begin(p state.Point)
	Extend(p state.Point)
	End(p state.Point) (state.Element, bool)
	Draft() (state.Element, bool)
	Cancel()
}

// New returns the strategy for a drawing tool.
func New(kind Kind, style Style) (Strategy, error) {
	switch kind {
	case Freehand:
		return &freehand{style: style}, nil
	case Rectangle, Circle:
		return &shape{kind: kind, style: style}, nil
	case Text:
		return nil, ErrNotGestural
	}
	return nil, fmt.Errorf("unknown tool %q", kind)
}

// Parse validates a tool name.
func Parse(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

type freehand struct {
	style  Style
	stroke *state.Stroke
}

func (f *freehand) Begin(p state.Point) {
	f.stroke = &state.Stroke{
		Color:  f.style.Color,
		Width:  f.style.Width,
		Points: []state.Point{p},
	}
}

func (f *freehand) Extend(p state.Point) {
	if f.stroke == nil {
		return
	}
	if f.style.Coalesce > 0 {
		last := f.stroke.Points[len(f.stroke.Points)-1]
		if state.Distance(last, p) < f.style.Coalesce {
			return
		}
	}
	f.stroke.Points = append(f.stroke.Points, p)
}

func (f *freehand) End(p state.Point) (state.Element, bool) {
	if f.stroke == nil {
		return nil, false
	}
	s := *f.stroke
	f.stroke = nil
	if !s.Valid() {
		return nil, false
	}
	return s, true
}

func (f *freehand) Draft() (state.Element, bool) {
	if f.stroke == nil {
		return nil, false
	}
	return *f.stroke, true
}

func (f *freehand) Cancel() { f.stroke = nil }

type shape struct {
	kind  Kind
	style Style
	draft *state.Shape
}

func (s *shape) Begin(p state.Point) {
	d := &state.Shape{
		Type:   state.KindRectangle,
		Origin: p,
		Color:  s.style.Color,
		Width:  s.style.Width,
	}
	if s.kind == Circle {
		d.Type = state.KindCircle
	}
	s.draft = d
}

func (s *shape) Extend(p state.Point) {
	if s.draft == nil {
		return
	}
	if s.draft.Type == state.KindCircle {
		s.draft.Radius = state.Distance(s.draft.Origin, p)
		return
	}
	s.draft.Size = p.Sub(s.draft.Origin)
}

func (s *shape) End(p state.Point) (state.Element, bool) {
	if s.draft == nil {
		return nil, false
	}
	s.Extend(p)
	d := *s.draft
	s.draft = nil

	extent := d.Radius
	if d.Type == state.KindRectangle {
		extent = state.Distance(state.Point{}, d.Size)
	}
	if extent < MinShapeExtent {
		return nil, false
	}
	return d, true
}

func (s *shape) Draft() (state.Element, bool) {
	if s.draft == nil {
		return nil, false
	}
	return *s.draft, true
}

func (s *shape) Cancel() { s.draft = nil }
