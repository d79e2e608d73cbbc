package render

import (
	"image"
	"image/color"
	"log"
	"sync"

	"SketchBoard/internal/state"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextFace paints text entities and measures them for hit-testing, so the
// boxes the board hit-tests are the boxes the user sees.
type TextFace struct {
	mu   sync.Mutex // font.Face implementations are not safe for concurrent use
	face font.Face
}

var (
	defaultFaceOnce sync.Once
	defaultFace     *TextFace
)

// DefaultTextFace is Go Regular at the board's 20px text size.
func DefaultTextFace() *TextFace {
	defaultFaceOnce.Do(func() {
		defaultFace = NewTextFace(state.DefaultFontSize)
	})
	return defaultFace
}

// NewTextFace loads Go Regular at size px, falling back to the 7x13 bitmap face.
func NewTextFace(size float64) *TextFace {
	f, err := opentype.Parse(goregular.TTF)
	if err == nil {
		var face font.Face
		face, err = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			return &TextFace{face: face}
		}
	}
	log.Printf("[RENDER] Falling back to bitmap font: %v", err)
	return &TextFace{face: basicfont.Face7x13}
}

// Measure implements state.Measurer.
func (t *TextFace) Measure(text string) (float32, float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w := font.MeasureString(t.face, text)
	h := t.face.Metrics().Height
	return fixedToFloat(w), fixedToFloat(h)
}

// Draw paints item with its Position as the top-left corner of the text box.
func (t *TextFace) Draw(dst *image.RGBA, item state.TextItem, c color.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ascent := t.face.Metrics().Ascent
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: t.face,
		Dot: fixed.Point26_6{
			X: floatToFixed(item.Position.X),
			Y: floatToFixed(item.Position.Y) + ascent,
		},
	}
	d.DrawString(item.Text)
}

func fixedToFloat(v fixed.Int26_6) float32 { return float32(v) / 64 }
func floatToFixed(v float32) fixed.Int26_6 { return fixed.Int26_6(v * 64) }
