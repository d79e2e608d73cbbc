package ui

import (
	"context"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/board"
	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

// Palette is the swatch row, in toolbar order.
var Palette = []state.Color{"#000000", "#ff0000", "#00ff00", "#0000ff", "#ffff00"}

const eraserWidth = 20

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    state.Color
	OnTapped func(state.Color)
}

func newColorSwatch(c state.Color, tapped func(state.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color.NRGBA())
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// toolbarState remembers the pen across eraser use.
type toolbarState struct {
	board     *board.Board
	lastColor state.Color
	width     float32
	coalesce  float32
	erasing   bool
	eraser    state.Color
}

func (t *toolbarState) apply() {
	style := tool.Style{Color: t.lastColor, Width: t.width, Coalesce: t.coalesce}
	if t.erasing {
		style.Color, style.Width = t.eraser, eraserWidth
	}
	t.board.SetStyle(style)
}

// NewToolbar builds the tool, color, size and text controls plus the
// history, save/load and export actions.
func NewToolbar(b *board.Board, surface *BoardWidget, win fyne.Window, background state.Color) fyne.CanvasObject {
	style := b.Style()
	ts := &toolbarState{
		board:     b,
		lastColor: style.Color,
		width:     style.Width,
		coalesce:  style.Coalesce,
		eraser:    background,
	}

	// --- Tool selection ---
	names := make([]string, len(tool.Kinds))
	for i, k := range tool.Kinds {
		names[i] = string(k)
	}
	toolSelect := widget.NewSelect(names, func(name string) {
		kind, err := tool.Parse(name)
		if err == nil {
			err = b.SetTool(kind)
		}
		if err != nil {
			log.Printf("[UI] %v", err)
		}
	})
	toolSelect.SetSelected(string(b.Tool()))

	// --- Text entry; the text tool places its content on click ---
	textEntry := widget.NewEntry()
	textEntry.SetPlaceHolder("Text")
	b.SetTextSource(func() string { return textEntry.Text })
	addText := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		if b.PlaceTextDefault(textEntry.Text) {
			textEntry.SetText("")
		}
	})

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			ts.erasing = false
			ts.apply()
			toolSelect.SetSelected(string(tool.Freehand))
		}), // Pen
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			ts.erasing = true
			ts.apply()
			toolSelect.SetSelected(string(tool.Freehand))
		}), // Eraser
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { b.Clear() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { b.Save(context.Background()) }),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() { b.Load(context.Background()) }),
		widget.NewToolbarAction(theme.DownloadIcon(), func() { showExportDialog(surface, win) }),
	)

	hist := newHistoryControls(b)
	surface.OnChange(hist.sync)

	// --- Color Palette ---
	onColorTapped := func(c state.Color) {
		ts.lastColor = c
		ts.erasing = false
		ts.apply()
	}
	colorBox := container.NewHBox()
	for _, c := range Palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	// --- Stroke Width Slider ---
	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(float64(ts.width))
	strokeSlider.OnChanged = func(val float64) {
		ts.width = float32(val)
		ts.apply()
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)
	textContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(160, 35)), textEntry)

	// --- Assemble everything ---
	return container.NewHBox(
		widget.NewLabel("Tool:"),
		toolSelect,
		hist.undo,
		hist.redo,
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewSeparator(),
		textContainer,
		addText,
		layout.NewSpacer(),
	)
}

// historyControls enables undo and redo only when the board can take them.
type historyControls struct {
	board      *board.Board
	undo, redo *widget.Button
}

func newHistoryControls(b *board.Board) *historyControls {
	h := &historyControls{board: b}
	h.undo = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { b.Undo() })
	h.redo = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { b.Redo() })
	h.sync()
	return h
}

func (h *historyControls) sync() {
	setEnabled(h.undo, h.board.CanUndo())
	setEnabled(h.redo, h.board.CanRedo())
}

func setEnabled(btn *widget.Button, on bool) {
	if on {
		btn.Enable()
	} else {
		btn.Disable()
	}
}

func showExportDialog(surface *BoardWidget, win fyne.Window) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if writer == nil {
			return
		}
		if err := surface.ExportTo(writer); err != nil {
			dialog.ShowError(err, win)
		}
	}, win)
	d.SetFileName("drawing.pdf")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf", ".png"}))
	d.Show()
}
