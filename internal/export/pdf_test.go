package export

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"SketchBoard/internal/render"
	"SketchBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() state.Document {
	return state.Document{
		Elements: []state.Element{
			state.Stroke{Color: "red", Width: 3, Points: []state.Point{{X: 10, Y: 10}, {X: 60, Y: 40}, {X: 90, Y: 20}}},
			state.Shape{Type: state.KindRectangle, Origin: state.Point{X: 100, Y: 100}, Size: state.Point{X: -40, Y: -30}, Color: "#0000ff", Width: 2},
			state.Shape{Type: state.KindCircle, Origin: state.Point{X: 150, Y: 50}, Radius: 20, Color: "#00ff0080", Width: 2},
		},
		TextItems: []state.TextItem{{ID: "t", Position: state.Point{X: 20, Y: 150}, Text: "café"}},
	}
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, sample(), image.Pt(300, 200)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	var empty bytes.Buffer
	require.NoError(t, PDF(&empty, state.Document{}, image.Pt(100, 100)))
	assert.Less(t, empty.Len(), buf.Len())

	assert.Error(t, PDF(&bytes.Buffer{}, sample(), image.Pt(0, 10)))
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	r := render.NewRaster(nil)

	pngPath := filepath.Join(dir, "board.png")
	require.NoError(t, ToFile(pngPath, sample(), image.Pt(300, 200), r))
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 200), img.Bounds())

	pdfPath := filepath.Join(dir, "board.PDF")
	require.NoError(t, ToFile(pdfPath, sample(), image.Pt(300, 200), r))
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	assert.Error(t, ToFile(filepath.Join(dir, "board.svg"), sample(), image.Pt(10, 10), r))
}
