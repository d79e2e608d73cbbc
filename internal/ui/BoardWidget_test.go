package ui

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"

	"SketchBoard/internal/board"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mouse(x, y float32, button desktop.MouseButton) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     button,
	}
}

func drag(x, y float32) *fyne.DragEvent {
	return &fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}}
}

func newSurface(t *testing.T) (*board.Board, *BoardWidget) {
	t.Helper()
	test.NewTempApp(t)
	b := board.New(board.Options{UserID: "u"})
	return b, NewBoardWidget(b, image.Pt(200, 200), render.NewRaster(nil))
}

func TestBoardWidgetMounts(t *testing.T) {
	b, _ := newSurface(t)
	assert.True(t, b.Mounted())
	assert.Equal(t, image.Pt(200, 200), b.Frame().Size)
}

func TestBoardWidgetDrawsStroke(t *testing.T) {
	b, w := newSurface(t)
	w.MouseDown(mouse(10, 10, desktop.MouseButtonPrimary))
	w.Dragged(drag(30, 30))
	w.Dragged(drag(50, 40))
	w.MouseUp(mouse(50, 40, desktop.MouseButtonPrimary))
	// a late DragEnd doesn't commit twice
	w.DragEnd()

	els := b.Document().Elements
	require.Len(t, els, 1)
	assert.Equal(t, []state.Point{{X: 10, Y: 10}, {X: 30, Y: 30}, {X: 50, Y: 40}}, els[0].(state.Stroke).Points)
}

func TestBoardWidgetIgnoresSecondaryButton(t *testing.T) {
	b, w := newSurface(t)
	w.MouseDown(mouse(10, 10, desktop.MouseButtonSecondary))
	w.MouseMoved(mouse(40, 40, desktop.MouseButtonSecondary))
	w.MouseUp(mouse(40, 40, desktop.MouseButtonSecondary))
	assert.Empty(t, b.Document().Elements)
}

func TestBoardWidgetDragEndFinishesGesture(t *testing.T) {
	b, w := newSurface(t)
	w.MouseDown(mouse(10, 10, desktop.MouseButtonPrimary))
	w.Dragged(drag(80, 80))
	w.DragEnd()
	assert.Len(t, b.Document().Elements, 1)
}

func TestBoardWidgetMouseOutFinishesGesture(t *testing.T) {
	b, w := newSurface(t)
	w.MouseDown(mouse(10, 10, desktop.MouseButtonPrimary))
	w.Dragged(drag(60, 20))
	w.MouseOut()
	assert.Len(t, b.Document().Elements, 1)
	assert.Nil(t, b.Frame().Draft)
}

func TestBoardWidgetLayoutResizesSurface(t *testing.T) {
	b, w := newSurface(t)
	r := test.WidgetRenderer(w)
	r.Layout(fyne.NewSize(320, 240))
	assert.Equal(t, image.Pt(320, 240), b.Frame().Size)
	assert.Len(t, r.Objects(), 1)
}

type memWriter struct {
	bytes.Buffer
	uri    fyne.URI
	closed bool
}

func (m *memWriter) Close() error {
	m.closed = true
	return nil
}

func (m *memWriter) URI() fyne.URI { return m.uri }

func TestExportPNGWithDefaultRenderer(t *testing.T) {
	test.NewTempApp(t)
	b := board.New(board.Options{UserID: "u"})
	w := NewBoardWidget(b, image.Pt(120, 80), nil)
	b.PointerDown(state.Point{X: 10, Y: 10})
	b.PointerMove(state.Point{X: 60, Y: 40})
	b.PointerUp(state.Point{X: 60, Y: 40})

	out := &memWriter{uri: storage.NewFileURI("/tmp/drawing.png")}
	require.NoError(t, w.ExportTo(out))
	assert.True(t, out.closed)

	img, err := png.Decode(&out.Buffer)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(120, 80), img.Bounds().Size())
}

func TestHistoryButtonsFollowBoard(t *testing.T) {
	b, _ := newSurface(t)
	h := newHistoryControls(b)
	assert.True(t, h.undo.Disabled())
	assert.True(t, h.redo.Disabled())

	b.PointerDown(state.Point{X: 10, Y: 10})
	b.PointerMove(state.Point{X: 40, Y: 40})
	b.PointerUp(state.Point{X: 40, Y: 40})
	h.sync()
	assert.False(t, h.undo.Disabled())
	assert.True(t, h.redo.Disabled())

	test.Tap(h.undo)
	h.sync()
	assert.Empty(t, b.Document().Elements)
	assert.True(t, h.undo.Disabled())
	assert.False(t, h.redo.Disabled())
}
