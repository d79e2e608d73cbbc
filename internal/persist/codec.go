// Package persist converts documents to and from the stored form and talks
// to the remote drawing store.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"

	"SketchBoard/internal/state"
)

// ErrMalformed wraps every decode failure; a load that hits it leaves the
// board untouched.
var ErrMalformed = errors.New("malformed drawing")

const blobVersion = 1

// Blob is the serialized element list. Callers treat it as opaque.
type Blob string

// TextRecord is a text item as stored: position and content, no identity.
type TextRecord struct {
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	Text string  `json:"text"`
}

type blobDoc struct {
	Version  int           `json:"version"`
	Elements []elementJSON `json:"elements"`
}

type elementJSON struct {
	Type   state.Kind   `json:"type"`
	Color  state.Color  `json:"color"`
	Width  float32      `json:"width"`
	Points [][2]float32 `json:"points,omitempty"`
	X      float32      `json:"x,omitempty"`
	Y      float32      `json:"y,omitempty"`
	W      float32      `json:"w,omitempty"`
	H      float32      `json:"h,omitempty"`
	R      float32      `json:"r,omitempty"`
}

// Serialize encodes doc. Rectangles are stored as normalized boxes.
func Serialize(doc state.Document) (Blob, []TextRecord, error) {
	bd := blobDoc{Version: blobVersion, Elements: make([]elementJSON, 0, len(doc.Elements))}
	for _, el := range doc.Elements {
		ej, err := encodeElement(el)
		if err != nil {
			return "", nil, err
		}
		bd.Elements = append(bd.Elements, ej)
	}
	data, err := json.Marshal(bd)
	if err != nil {
		return "", nil, fmt.Errorf("encode drawing: %w", err)
	}

	texts := make([]TextRecord, 0, len(doc.TextItems))
	for _, it := range doc.TextItems {
		texts = append(texts, TextRecord{X: it.Position.X, Y: it.Position.Y, Text: it.Text})
	}
	return Blob(data), texts, nil
}

// Deserialize decodes a stored drawing. Text items get fresh identities
// from newID (state.NewID when nil).
func Deserialize(blob Blob, texts []TextRecord, newID func() string) (state.Document, error) {
	if newID == nil {
		newID = state.NewID
	}
	var doc state.Document
	if blob != "" {
		var bd blobDoc
		if err := json.Unmarshal([]byte(blob), &bd); err != nil {
			return state.Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if bd.Version != blobVersion {
			return state.Document{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, bd.Version)
		}
		for i, ej := range bd.Elements {
			el, err := decodeElement(ej)
			if err != nil {
				return state.Document{}, fmt.Errorf("%w: element %d: %v", ErrMalformed, i, err)
			}
			doc.Elements = append(doc.Elements, el)
		}
	}
	for _, t := range texts {
		if t.Text == "" {
			return state.Document{}, fmt.Errorf("%w: empty text item", ErrMalformed)
		}
		doc.TextItems = append(doc.TextItems, state.TextItem{
			ID:       newID(),
			Position: state.Point{X: t.X, Y: t.Y},
			Text:     t.Text,
		})
	}
	return doc, nil
}

func encodeElement(el state.Element) (elementJSON, error) {
	switch e := el.(type) {
	case state.Stroke:
		ej := elementJSON{Type: state.KindStroke, Color: e.Color, Width: e.Width}
		ej.Points = make([][2]float32, len(e.Points))
		for i, p := range e.Points {
			ej.Points[i] = [2]float32{p.X, p.Y}
		}
		return ej, nil
	case state.Shape:
		ej := elementJSON{Type: e.Type, Color: e.Color, Width: e.Width}
		switch e.Type {
		case state.KindRectangle:
			r := e.Rect()
			ej.X, ej.Y, ej.W, ej.H = r.X, r.Y, r.W, r.H
		case state.KindCircle:
			ej.X, ej.Y, ej.R = e.Origin.X, e.Origin.Y, e.Radius
		default:
			return ej, fmt.Errorf("unknown shape %q", e.Type)
		}
		return ej, nil
	}
	return elementJSON{}, fmt.Errorf("unknown element %T", el)
}

func decodeElement(ej elementJSON) (state.Element, error) {
	switch ej.Type {
	case state.KindStroke:
		s := state.Stroke{Color: ej.Color, Width: ej.Width, Points: make([]state.Point, len(ej.Points))}
		for i, p := range ej.Points {
			s.Points[i] = state.Point{X: p[0], Y: p[1]}
		}
		if !s.Valid() {
			return nil, errors.New("stroke needs at least two points")
		}
		return s, nil
	case state.KindRectangle:
		if ej.W < 0 || ej.H < 0 {
			return nil, errors.New("negative rectangle size")
		}
		return state.Shape{
			Type:   state.KindRectangle,
			Origin: state.Point{X: ej.X, Y: ej.Y},
			Size:   state.Point{X: ej.W, Y: ej.H},
			Color:  ej.Color,
			Width:  ej.Width,
		}, nil
	case state.KindCircle:
		if ej.R < 0 {
			return nil, errors.New("negative radius")
		}
		return state.Shape{
			Type:   state.KindCircle,
			Origin: state.Point{X: ej.X, Y: ej.Y},
			Radius: ej.R,
			Color:  ej.Color,
			Width:  ej.Width,
		}, nil
	}
	return nil, fmt.Errorf("unknown element type %q", ej.Type)
}
