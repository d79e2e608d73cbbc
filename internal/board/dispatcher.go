package board

import (
	"fmt"
	"log"
	"slices"

	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

// Dispatcher routes pointer events to the text overlay or the active tool.
// It is not safe for concurrent use; Board serializes access.
type Dispatcher struct {
	activeTool  tool.Kind
	style       tool.Style
	strategy    tool.Strategy
	isGesturing bool
	dragID      string
	dragAnchor  *state.Point

	history *state.History
	overlay *state.TextOverlay

	// textSource supplies the content placed by the text tool.
	textSource func() string
	// onIdle runs when a gesture or a drag finishes.
	onIdle func()
}

func NewDispatcher(history *state.History, overlay *state.TextOverlay, style tool.Style) *Dispatcher {
	d := &Dispatcher{
		history:    history,
		overlay:    overlay,
		style:      style,
		textSource: func() string { return "" },
		onIdle:     func() {},
	}
	d.activeTool = tool.Freehand
	d.rebuildStrategy()
	return d
}

func (d *Dispatcher) Tool() tool.Kind   { return d.activeTool }
func (d *Dispatcher) Style() tool.Style { return d.style }

// Busy reports whether a gesture or a text drag is in progress.
func (d *Dispatcher) Busy() bool { return d.isGesturing || d.dragAnchor != nil }

// SetTool switches tools. A gesture in progress is dropped.
func (d *Dispatcher) SetTool(kind tool.Kind) error {
	if !slices.Contains(tool.Kinds, kind) {
		return fmt.Errorf("unknown tool %q", kind)
	}
	d.abortGesture()
	d.activeTool = kind
	d.rebuildStrategy()
	return nil
}

// SetStyle applies to the next gesture.
func (d *Dispatcher) SetStyle(style tool.Style) {
	d.abortGesture()
	d.style = style
	d.rebuildStrategy()
}

func (d *Dispatcher) SetTextSource(src func() string) {
	if src == nil {
		src = func() string { return "" }
	}
	d.textSource = src
}

// Draft returns a copy of the uncommitted element, or nil.
func (d *Dispatcher) Draft() state.Element {
	if !d.isGesturing || d.strategy == nil {
		return nil
	}
	el, ok := d.strategy.Draft()
	if !ok {
		return nil
	}
	return state.CloneElements([]state.Element{el})[0]
}

// PointerDown reports whether anything visible changed.
func (d *Dispatcher) PointerDown(p state.Point) bool {
	if d.Busy() {
		return false
	}
	if it, ok := d.overlay.HitDeleteHandle(p); ok {
		d.overlay.Delete(it.ID)
		return true
	}
	if it, ok := d.overlay.HitTest(p); ok {
		d.overlay.BeginDrag(it.ID)
		anchor := p.Sub(it.Position)
		d.dragID, d.dragAnchor = it.ID, &anchor
		return false
	}

	if d.activeTool == tool.Text {
		_, ok := d.overlay.Place(p, d.textSource())
		return ok
	}
	if d.strategy == nil {
		return false
	}
	d.strategy.Begin(p)
	d.isGesturing = true
	return true
}

func (d *Dispatcher) PointerMove(p state.Point) bool {
	switch {
	case d.isGesturing:
		d.strategy.Extend(p)
		return true
	case d.dragAnchor != nil:
		return d.overlay.MoveTo(d.dragID, p.Sub(*d.dragAnchor))
	default:
		before := d.overlay.HoveredIDs()
		d.overlay.UpdateHover(p)
		return !slices.Equal(before, d.overlay.HoveredIDs())
	}
}

func (d *Dispatcher) PointerUp(p state.Point) bool {
	return d.finish(p)
}

// PointerLeave ends a gesture or drag like PointerUp and clears hover flags.
func (d *Dispatcher) PointerLeave(p state.Point) bool {
	changed := d.finish(p)
	if len(d.overlay.HoveredIDs()) > 0 {
		d.overlay.ClearHover()
		changed = true
	}
	return changed
}

// PlaceText adds a text entity at p; empty content does nothing.
func (d *Dispatcher) PlaceText(p state.Point, content string) bool {
	_, ok := d.overlay.Place(p, content)
	return ok
}

func (d *Dispatcher) finish(p state.Point) bool {
	switch {
	case d.isGesturing:
		d.isGesturing = false
		el, ok := d.strategy.End(p)
		if ok {
			d.history.Append(el)
			cursor, total := d.history.Stats()
			log.Printf("[BOARD] Committed %s (history %d/%d)", el.Kind(), cursor, total)
		}
		d.onIdle()
		return true
	case d.dragAnchor != nil:
		d.overlay.EndDrag()
		d.dragID, d.dragAnchor = "", nil
		d.onIdle()
		return false
	}
	return false
}

func (d *Dispatcher) abortGesture() {
	if d.isGesturing {
		d.strategy.Cancel()
		d.isGesturing = false
		d.onIdle()
	}
}

// reset drops any gesture or drag without committing.
func (d *Dispatcher) reset() {
	if d.isGesturing {
		d.strategy.Cancel()
		d.isGesturing = false
	}
	if d.dragAnchor != nil {
		d.overlay.EndDrag()
		d.dragID, d.dragAnchor = "", nil
	}
}

func (d *Dispatcher) rebuildStrategy() {
	s, err := tool.New(d.activeTool, d.style)
	if err != nil {
		// the text tool places entities instead of drawing
		d.strategy = nil
		return
	}
	d.strategy = s
}
