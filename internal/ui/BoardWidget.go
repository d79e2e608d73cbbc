package ui

import (
	"fmt"
	"image"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/board"
	"SketchBoard/internal/export"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
)

// BoardWidget is the drawing surface. It forwards pointer events to the
// board and paints whatever the board renders.
type BoardWidget struct {
	widget.BaseWidget
	board    *board.Board
	renderer render.Renderer
	lastPos  fyne.Position
	pressed  bool
	onChange []func()
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

// NewBoardWidget mounts b with an initial surface size. A nil renderer
// falls back to the default raster.
func NewBoardWidget(b *board.Board, size image.Point, r render.Renderer) *BoardWidget {
	if r == nil {
		r = render.NewRaster(nil)
	}
	w := &BoardWidget{board: b, renderer: r}
	w.ExtendBaseWidget(w)
	b.Mount(size)
	b.OnChange(func() { fyne.Do(w.changed) })
	return w
}

// OnChange registers fn to run on the UI goroutine after every board change.
func (w *BoardWidget) OnChange(fn func()) {
	w.onChange = append(w.onChange, fn)
}

func (w *BoardWidget) changed() {
	w.Refresh()
	for _, fn := range w.onChange {
		fn()
	}
}

func toPoint(p fyne.Position) state.Point {
	return state.Point{X: p.X, Y: p.Y}
}

func (w *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.pressed = true
	w.lastPos = e.Position
	w.board.PointerDown(toPoint(e.Position))
}

func (w *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !w.pressed {
		return
	}
	w.pressed = false
	w.lastPos = e.Position
	w.board.PointerUp(toPoint(e.Position))
}

func (w *BoardWidget) Dragged(e *fyne.DragEvent) {
	w.lastPos = e.Position
	w.board.PointerMove(toPoint(e.Position))
}

// DragEnd can arrive without a MouseUp when the pointer is released
// outside the window.
func (w *BoardWidget) DragEnd() {
	if w.pressed {
		w.pressed = false
		w.board.PointerUp(toPoint(w.lastPos))
	}
}

func (w *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (w *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	w.lastPos = e.Position
	w.board.PointerMove(toPoint(e.Position))
}

func (w *BoardWidget) MouseOut() {
	w.pressed = false
	w.board.PointerLeave(toPoint(w.lastPos))
}

// ExportTo writes the current drawing to a file picked in a save dialog.
// The format follows the file extension; anything but .png is a PDF.
func (w *BoardWidget) ExportTo(writer fyne.URIWriteCloser) error {
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("[EXPORT] Error closing writer: %v", err)
		}
	}()

	doc := w.board.Document()
	size := image.Pt(int(w.Size().Width), int(w.Size().Height))
	if size.X <= 0 || size.Y <= 0 {
		size = w.board.Frame().Size
	}

	var err error
	if strings.EqualFold(writer.URI().Extension(), ".png") {
		err = export.PNG(writer, w.renderer.Paint(render.Frame{Document: doc, Size: size}))
	} else {
		err = export.PDF(writer, doc, size)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", writer.URI().Name(), err)
	}
	log.Printf("[EXPORT] Wrote %d elements to %s", len(doc.Elements), writer.URI())
	return nil
}

func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: w}
	r.raster = canvas.NewRaster(func(_, _ int) image.Image {
		return w.board.Render()
	})
	r.raster.ScaleMode = canvas.ImageScaleFastest
	return r
}

type boardWidgetRenderer struct {
	board  *BoardWidget
	raster *canvas.Raster
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster}
}

// Layout keeps the board's surface at the widget's logical size so pointer
// positions and pixels share one coordinate space.
func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	r.board.board.Resize(image.Pt(int(size.Width), int(size.Height)))
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Refresh() {
	r.raster.Refresh()
}

func (r *boardWidgetRenderer) Destroy() {}
