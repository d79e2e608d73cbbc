// Package board is the drawing session behind a canvas: pointer dispatch,
// history, text overlays, rendering and save/load.
package board

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"
	"time"

	"SketchBoard/internal/notify"
	"SketchBoard/internal/persist"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

// ErrNoSurface is reported by operations that need a mounted canvas.
var ErrNoSurface = errors.New("drawing surface is not mounted")

var errNoStore = errors.New("no drawing store configured")

// Messages shown after save and load.
const (
	MsgSaved      = "Drawing Saved Successfully"
	MsgSaveFailed = "Drawing Not Saved"
	MsgLoadFailed = "Drawing Fetch Failed"
)

type Options struct {
	UserID   string
	Gateway  *persist.Gateway
	Renderer render.Renderer
	Notifier notify.Notifier
	// Measure sizes text entities for hit-testing; it should agree with
	// the renderer's text face.
	Measure      state.Measurer
	Style        tool.Style
	HistoryLimit int
	// Timeout bounds each save and load. Zero means no limit.
	Timeout time.Duration
}

// Board is safe for concurrent use. All entry points, including the
// completions of asynchronous loads, run one at a time.
type Board struct {
	mu         sync.Mutex
	opts       Options
	history    *state.History
	overlay    *state.TextOverlay
	dispatcher *Dispatcher

	mounted     bool
	size        image.Point
	pendingLoad *state.Document
	reloaded    bool

	// session changes on every mount and unmount; loads started in an
	// earlier session are dropped.
	session uint64

	onChange func()
	inflight sync.WaitGroup
}

func New(opts Options) *Board {
	if opts.Renderer == nil {
		opts.Renderer = render.NewRaster(nil)
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Log{}
	}
	if opts.Style == (tool.Style{}) {
		opts.Style = tool.DefaultStyle
	}
	b := &Board{
		opts:     opts,
		history:  state.NewHistory(nil, opts.HistoryLimit),
		overlay:  state.NewTextOverlay(opts.Measure),
		onChange: func() {},
	}
	b.dispatcher = NewDispatcher(b.history, b.overlay, opts.Style)
	b.dispatcher.onIdle = b.applyPendingLoad
	return b
}

// OnChange registers fn to run after every visible change. It may be
// called from any goroutine, never with the board locked.
func (b *Board) OnChange(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Mount attaches a surface of the given size and starts an empty document.
func (b *Board) Mount(size image.Point) {
	b.mu.Lock()
	if !b.mounted {
		b.mounted = true
		b.session++
		b.history.Reset(nil)
		b.overlay.Replace(nil)
		log.Printf("[BOARD] Mounted %dx%d surface for %s", size.X, size.Y, b.opts.UserID)
	}
	b.size = size
	b.mu.Unlock()
	b.changed()
}

// Unmount discards the document, any gesture in progress and any queued load.
func (b *Board) Unmount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mounted {
		return
	}
	b.dispatcher.reset()
	b.history.Reset(nil)
	b.overlay.Replace(nil)
	b.pendingLoad = nil
	b.reloaded = false
	b.mounted = false
	b.session++
	log.Printf("[BOARD] Unmounted surface")
}

func (b *Board) Mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted
}

// Resize changes the surface size. Committed content is untouched.
func (b *Board) Resize(size image.Point) {
	b.mu.Lock()
	if b.size == size {
		b.mu.Unlock()
		return
	}
	b.size = size
	b.mu.Unlock()
	b.changed()
}

func (b *Board) PointerDown(p state.Point) {
	b.input(func() bool { return b.dispatcher.PointerDown(p) })
}

func (b *Board) PointerMove(p state.Point) {
	b.input(func() bool { return b.dispatcher.PointerMove(p) })
}

func (b *Board) PointerUp(p state.Point) {
	b.input(func() bool { return b.dispatcher.PointerUp(p) })
}

func (b *Board) PointerLeave(p state.Point) {
	b.input(func() bool { return b.dispatcher.PointerLeave(p) })
}

func (b *Board) input(fn func() bool) {
	b.mu.Lock()
	changed := b.mounted && fn()
	if b.reloaded {
		changed, b.reloaded = true, false
	}
	b.mu.Unlock()
	if changed {
		b.changed()
	}
}

func (b *Board) SetTool(kind tool.Kind) error {
	b.mu.Lock()
	err := b.dispatcher.SetTool(kind)
	b.mu.Unlock()
	b.changed()
	return err
}

func (b *Board) Tool() tool.Kind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dispatcher.Tool()
}

// SetStyle sets the color and width of the next element.
func (b *Board) SetStyle(style tool.Style) {
	b.mu.Lock()
	b.dispatcher.SetStyle(style)
	b.mu.Unlock()
	b.changed()
}

func (b *Board) Style() tool.Style {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dispatcher.Style()
}

// SetTextSource supplies the content the text tool places on pointer-down.
func (b *Board) SetTextSource(src func() string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dispatcher.SetTextSource(src)
}

// PlaceText adds a text entity at p. Empty content is ignored.
func (b *Board) PlaceText(p state.Point, content string) bool {
	b.mu.Lock()
	ok := b.mounted && b.dispatcher.PlaceText(p, content)
	b.mu.Unlock()
	if ok {
		b.changed()
	}
	return ok
}

// PlaceTextDefault adds a text entity at state.DefaultTextPosition.
func (b *Board) PlaceTextDefault(content string) bool {
	return b.PlaceText(state.DefaultTextPosition, content)
}

func (b *Board) Undo() bool { return b.historyOp("undo", b.history.Undo) }
func (b *Board) Redo() bool { return b.historyOp("redo", b.history.Redo) }

// Clear empties the drawing as an undoable step. Text stays.
func (b *Board) Clear() bool {
	return b.historyOp("clear", func() bool {
		b.history.Clear()
		return true
	})
}

func (b *Board) historyOp(name string, fn func() bool) bool {
	b.mu.Lock()
	if !b.mounted {
		b.mu.Unlock()
		return false
	}
	ok := fn()
	cursor, total := b.history.Stats()
	b.mu.Unlock()
	if ok {
		log.Printf("[BOARD] %s (history %d/%d)", name, cursor, total)
		b.changed()
	}
	return ok
}

// CanUndo and CanRedo drive the toolbar's undo and redo buttons.
func (b *Board) CanUndo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted && b.history.CanUndo()
}

func (b *Board) CanRedo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted && b.history.CanRedo()
}

// Document returns a deep copy of the committed drawing and text.
func (b *Board) Document() state.Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.documentLocked()
}

func (b *Board) documentLocked() state.Document {
	return state.Document{
		Elements:  state.CloneElements(b.history.Current()),
		TextItems: b.overlay.Items(),
	}
}

// Frame captures what the renderer needs for the next paint.
func (b *Board) Frame() render.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := render.Frame{
		Document: state.Document{
			Elements:  b.history.Current(),
			TextItems: b.overlay.Items(),
		},
		Draft: b.dispatcher.Draft(),
		Size:  b.size,
	}
	for _, id := range b.overlay.HoveredIDs() {
		if it, ok := b.overlay.Get(id); ok {
			f.Handles = append(f.Handles, b.overlay.DeleteHandle(it))
		}
	}
	return f
}

// Render paints the current frame. It returns an empty image when unmounted.
func (b *Board) Render() *image.RGBA {
	if !b.Mounted() {
		return image.NewRGBA(image.Rectangle{})
	}
	return b.opts.Renderer.Paint(b.Frame())
}

// Save sends the document to the store in the background. The returned
// channel yields the outcome once; the user is notified either way.
func (b *Board) Save(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	b.mu.Lock()
	if !b.mounted {
		b.mu.Unlock()
		done <- ErrNoSurface
		close(done)
		return done
	}
	doc := b.documentLocked()
	b.mu.Unlock()

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer close(done)
		err := b.save(ctx, doc)
		if err != nil {
			log.Printf("[BOARD] Save failed: %v", err)
			b.opts.Notifier.Notify(notify.Error, MsgSaveFailed)
		} else {
			b.opts.Notifier.Notify(notify.Info, MsgSaved)
		}
		done <- err
	}()
	return done
}

func (b *Board) save(ctx context.Context, doc state.Document) error {
	if b.opts.Gateway == nil {
		return errNoStore
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	return b.opts.Gateway.Save(ctx, b.opts.UserID, doc)
}

// Load fetches the user's drawing in the background and replaces the
// document with it. If a gesture or drag is in progress when it arrives it
// is applied as soon as that ends. A user with no saved drawing keeps the
// current document. A load that outlives the surface it started on is
// dropped, even if the board has been mounted again since.
func (b *Board) Load(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	b.mu.Lock()
	mounted, session := b.mounted, b.session
	b.mu.Unlock()
	if !mounted {
		done <- ErrNoSurface
		close(done)
		return done
	}

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer close(done)
		doc, found, err := b.load(ctx)
		if err != nil {
			log.Printf("[BOARD] Load failed: %v", err)
			b.opts.Notifier.Notify(notify.Error, MsgLoadFailed)
			done <- err
			return
		}
		if !found {
			log.Printf("[BOARD] No saved drawing for %s", b.opts.UserID)
			done <- nil
			return
		}

		b.mu.Lock()
		applied := false
		switch {
		case !b.mounted || b.session != session:
			log.Printf("[BOARD] Dropping load: surface went away")
		case b.dispatcher.Busy():
			b.pendingLoad = &doc
			log.Printf("[BOARD] Load arrived mid-gesture, queued")
		default:
			b.applyLocked(doc)
			applied = true
		}
		b.mu.Unlock()
		if applied {
			b.changed()
		}
		done <- nil
	}()
	return done
}

func (b *Board) load(ctx context.Context) (state.Document, bool, error) {
	if b.opts.Gateway == nil {
		return state.Document{}, false, errNoStore
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	return b.opts.Gateway.Load(ctx, b.opts.UserID)
}

// Wait blocks until every save and load started so far has finished.
func (b *Board) Wait() {
	b.inflight.Wait()
}

// applyPendingLoad runs with the board locked, from the dispatcher.
func (b *Board) applyPendingLoad() {
	if b.pendingLoad == nil {
		return
	}
	doc := *b.pendingLoad
	b.pendingLoad = nil
	b.applyLocked(doc)
	b.reloaded = true
}

func (b *Board) applyLocked(doc state.Document) {
	b.history.Reset(doc.Elements)
	b.overlay.Replace(doc.TextItems)
	log.Printf("[BOARD] Loaded %d elements and %d text items", len(doc.Elements), len(doc.TextItems))
}

func (b *Board) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.opts.Timeout > 0 {
		return context.WithTimeout(ctx, b.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (b *Board) changed() {
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	fn()
}
