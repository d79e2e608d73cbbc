package ui

import (
	"context"
	"image"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/board"
	"SketchBoard/internal/notify"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
)

const statusTimeout = 3 * time.Second

// Status is the window's status line. It shows notifications for a few
// seconds, then falls back to "Ready".
type Status struct {
	label *widget.Label
}

var _ notify.Notifier = (*Status)(nil)

func NewStatus() *Status {
	return &Status{label: widget.NewLabel("Ready")}
}

// Notify may be called from any goroutine.
func (s *Status) Notify(level notify.Level, message string) {
	notify.Log{}.Notify(level, message)
	fyne.Do(func() {
		s.label.Importance = widget.MediumImportance
		if level == notify.Error {
			s.label.Importance = widget.DangerImportance
		}
		s.label.SetText(message)
	})
	time.AfterFunc(statusTimeout, func() {
		fyne.Do(func() {
			if s.label.Text == message {
				s.label.Importance = widget.MediumImportance
				s.label.SetText("Ready")
			}
		})
	})
}

// Window settings for RunApp.
type Window struct {
	Title      string
	Size       image.Point
	Background state.Color
	Renderer   render.Renderer
	// LoadOnStart fetches the user's saved drawing once the window is up.
	LoadOnStart bool
}

// NewApp creates the fyne application. Create it before any widget.
func NewApp() fyne.App {
	return app.NewWithID("io.sketchboard")
}

// RunApp shows the board window and blocks until it closes.
func RunApp(a fyne.App, b *board.Board, status *Status, opts Window) {
	myWindow := a.NewWindow(opts.Title)
	myWindow.Resize(fyne.NewSize(float32(opts.Size.X), float32(opts.Size.Y)))

	surface := NewBoardWidget(b, opts.Size, opts.Renderer)
	toolbar := NewToolbar(b, surface, myWindow, opts.Background)

	content := container.NewBorder(toolbar, status.label, nil, nil, surface)
	myWindow.SetContent(content)

	shortcut := func(key fyne.KeyName, mod fyne.KeyModifier, fn func()) {
		myWindow.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { fn() })
	}
	shortcut(fyne.KeyZ, fyne.KeyModifierShortcutDefault, func() { b.Undo() })
	shortcut(fyne.KeyY, fyne.KeyModifierShortcutDefault, func() { b.Redo() })
	shortcut(fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift, func() { b.Redo() })
	shortcut(fyne.KeyS, fyne.KeyModifierShortcutDefault, func() { b.Save(context.Background()) })

	myWindow.SetOnClosed(func() {
		b.Wait()
		b.Unmount()
		log.Println("[UI] Window closed")
	})

	if opts.LoadOnStart {
		b.Load(context.Background())
	}
	myWindow.ShowAndRun()
}
