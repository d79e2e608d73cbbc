package render

import (
	"image"
	"image/color"
	"testing"

	"SketchBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = color.RGBA{255, 255, 255, 255}

func testDoc() state.Document {
	return state.Document{
		Elements: []state.Element{
			state.Stroke{Color: "#000000", Width: 4, Points: []state.Point{{X: 10, Y: 10}, {X: 90, Y: 10}}},
			state.Shape{Type: state.KindRectangle, Origin: state.Point{X: 80, Y: 80}, Size: state.Point{X: -40, Y: -20}, Color: "red", Width: 2},
			state.Shape{Type: state.KindCircle, Origin: state.Point{X: 150, Y: 150}, Radius: 20, Color: "blue", Width: 2},
		},
	}
}

func TestPaintCommittedElements(t *testing.T) {
	r := NewRaster(nil)
	img := r.Paint(Frame{Document: testDoc(), Size: image.Pt(200, 200)})
	require.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())

	assertNear(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(50, 10), "stroke")
	assert.Equal(t, white, img.RGBAAt(50, 30), "background")

	// the rectangle was dragged up-left; its normalized top edge is y=60
	assertNear(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(60, 60), "rectangle top edge")
	assert.Equal(t, white, img.RGBAAt(60, 70), "rectangle is outlined, not filled")

	assertNear(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(169, 150), "circle edge")
	assert.Equal(t, white, img.RGBAAt(150, 150), "circle centre is empty")
}

func TestPaintDraftOnTop(t *testing.T) {
	r := NewRaster(nil)
	draft := state.Stroke{Color: "green", Width: 6, Points: []state.Point{{X: 50, Y: 0}, {X: 50, Y: 40}}}
	img := r.Paint(Frame{Document: testDoc(), Draft: draft, Size: image.Pt(200, 200)})
	assertNear(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(50, 10), "draft")
}

func TestPaintIsStableAcrossResize(t *testing.T) {
	r := NewRaster(nil)
	small := r.Paint(Frame{Document: testDoc(), Size: image.Pt(200, 200)})
	large := r.Paint(Frame{Document: testDoc(), Size: image.Pt(400, 300)})
	for y := 0; y < 200; y += 7 {
		for x := 0; x < 200; x += 7 {
			require.Equal(t, small.RGBAAt(x, y), large.RGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestPaintTextAndHandle(t *testing.T) {
	r := NewRaster(nil)
	doc := state.Document{TextItems: []state.TextItem{{ID: "a", Position: state.Point{X: 10, Y: 10}, Text: "Hello"}}}
	handle := state.Rect{X: 100, Y: 10, W: state.DeleteHandleSize, H: state.DeleteHandleSize}
	img := r.Paint(Frame{Document: doc, Handles: []state.Rect{handle}, Size: image.Pt(200, 60)})

	w, h := r.Text.Measure("Hello")
	require.Greater(t, w, float32(0))
	assert.True(t, anyInk(img, image.Rect(10, 10, 10+int(w)+1, 10+int(h)+1)), "text is drawn inside its box")
	assert.False(t, anyInk(img, image.Rect(0, 40, 90, 60)))
	assertNear(t, color.RGBA{220, 30, 30, 255}, img.RGBAAt(107, 17), "delete handle cross")
}

func TestPaintEmptySurface(t *testing.T) {
	img := NewRaster(nil).Paint(Frame{Document: testDoc()})
	assert.True(t, img.Bounds().Empty())
}

func anyInk(img *image.RGBA, r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) != white {
				return true
			}
		}
	}
	return false
}

func assertNear(t *testing.T, want, got color.RGBA, msg string) {
	t.Helper()
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	if d(want.R, got.R) > 6 || d(want.G, got.G) > 6 || d(want.B, got.B) > 6 || d(want.A, got.A) > 6 {
		t.Errorf("%s: want %v, got %v", msg, want, got)
	}
}
