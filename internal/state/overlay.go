package state

import "log"

// Measurer reports the on-screen size of a text entity's content.
type Measurer func(text string) (w, h float32)

const (
	// DefaultFontSize matches the 20px text the board paints.
	DefaultFontSize = 20
	// DeleteHandleSize is the side of the square delete affordance shown
	// on a hovered entity.
	DeleteHandleSize = 14
)

// DefaultTextPosition is where text lands when no point is given.
var DefaultTextPosition = Point{X: 500, Y: 100}

// ApproxMeasure estimates text size without a font face.
func ApproxMeasure(text string) (float32, float32) {
	n := len([]rune(text))
	return float32(n) * DefaultFontSize * 0.6, DefaultFontSize
}

// TextOverlay owns the floating text entities. Each entity is idle or
// dragging; hovered is tracked separately and shows the delete handle.
// The drag anchor belongs to whoever drives the drag.
type TextOverlay struct {
	items   []TextItem
	hovered map[string]bool

	dragging string

	measure Measurer
	newID   func() string
}

func NewTextOverlay(measure Measurer) *TextOverlay {
	if measure == nil {
		measure = ApproxMeasure
	}
	return &TextOverlay{
		hovered: make(map[string]bool),
		measure: measure,
		newID:   NewID,
	}
}

// Place appends a text entity at p. Empty content is ignored.
func (o *TextOverlay) Place(p Point, text string) (TextItem, bool) {
	if text == "" {
		return TextItem{}, false
	}
	item := TextItem{ID: o.newID(), Position: p, Text: text}
	o.items = append(o.items, item)
	return item, true
}

// Items returns a copy in paint order.
func (o *TextOverlay) Items() []TextItem {
	return append([]TextItem(nil), o.items...)
}

func (o *TextOverlay) Get(id string) (TextItem, bool) {
	i := o.index(id)
	if i < 0 {
		return TextItem{}, false
	}
	return o.items[i], true
}

// Bounds is the hit area of an entity; Position is its top-left corner.
func (o *TextOverlay) Bounds(item TextItem) Rect {
	w, h := o.measure(item.Text)
	return Rect{X: item.Position.X, Y: item.Position.Y, W: w, H: h}
}

// DeleteHandle is the square just right of the entity's top edge.
func (o *TextOverlay) DeleteHandle(item TextItem) Rect {
	b := o.Bounds(item)
	return Rect{X: b.X + b.W + 2, Y: b.Y, W: DeleteHandleSize, H: DeleteHandleSize}
}

// HitTest returns the topmost entity under p.
func (o *TextOverlay) HitTest(p Point) (TextItem, bool) {
	for i := len(o.items) - 1; i >= 0; i-- {
		if o.Bounds(o.items[i]).Contains(p) {
			return o.items[i], true
		}
	}
	return TextItem{}, false
}

// HitDeleteHandle returns the hovered entity whose delete handle is under p.
func (o *TextOverlay) HitDeleteHandle(p Point) (TextItem, bool) {
	for i := len(o.items) - 1; i >= 0; i-- {
		it := o.items[i]
		if o.hovered[it.ID] && o.DeleteHandle(it).Contains(p) {
			return it, true
		}
	}
	return TextItem{}, false
}

// BeginDrag moves id into the dragging state.
func (o *TextOverlay) BeginDrag(id string) (TextItem, bool) {
	i := o.index(id)
	if i < 0 {
		return TextItem{}, false
	}
	o.dragging = id
	return o.items[i], true
}

// MoveTo repositions one entity; nothing else moves and paint order is kept.
func (o *TextOverlay) MoveTo(id string, pos Point) bool {
	i := o.index(id)
	if i < 0 {
		return false
	}
	o.items[i].Position = pos
	return true
}

// EndDrag returns every entity to idle.
func (o *TextOverlay) EndDrag() {
	o.dragging = ""
}

// Dragging returns the entity being dragged.
func (o *TextOverlay) Dragging() (string, bool) {
	return o.dragging, o.dragging != ""
}

// UpdateHover sets the hovered flag of every entity from the pointer position.
func (o *TextOverlay) UpdateHover(p Point) {
	for _, it := range o.items {
		inside := o.Bounds(it).Contains(p) || (o.hovered[it.ID] && o.DeleteHandle(it).Contains(p))
		if inside {
			o.hovered[it.ID] = true
		} else {
			delete(o.hovered, it.ID)
		}
	}
}

// ClearHover drops all hover flags, as when the pointer leaves the surface.
func (o *TextOverlay) ClearHover() {
	clear(o.hovered)
}

func (o *TextOverlay) Hovered(id string) bool { return o.hovered[id] }

// HoveredIDs returns hovered entities in paint order.
func (o *TextOverlay) HoveredIDs() []string {
	var ids []string
	for _, it := range o.items {
		if o.hovered[it.ID] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// Delete removes id. Unknown ids are ignored.
func (o *TextOverlay) Delete(id string) {
	i := o.index(id)
	if i < 0 {
		return
	}
	o.items = append(o.items[:i:i], o.items[i+1:]...)
	delete(o.hovered, id)
	if o.dragging == id {
		o.EndDrag()
	}
	log.Printf("[TEXT] Deleted text item %s", id)
}

// Replace swaps in a loaded set of entities, giving each a fresh identity.
func (o *TextOverlay) Replace(items []TextItem) {
	o.items = make([]TextItem, 0, len(items))
	for _, it := range items {
		it.ID = o.newID()
		o.items = append(o.items, it)
	}
	clear(o.hovered)
	o.EndDrag()
}

func (o *TextOverlay) index(id string) int {
	for i := range o.items {
		if o.items[i].ID == id {
			return i
		}
	}
	return -1
}
