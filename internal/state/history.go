package state

// History is an undo/redo stack of element snapshots with a cursor pointing
// at the entry currently on screen. Entry 0 is the initial document.
type History struct {
	entries [][]Element
	cursor  int
	limit   int
}

// NewHistory starts a history whose first entry is initial. A limit > 0
// caps the number of retained entries; the oldest ones are dropped first.
func NewHistory(initial []Element, limit int) *History {
	return &History{
		entries: [][]Element{CloneElements(initial)},
		limit:   limit,
	}
}

// Current returns the entry at the cursor. Elements are values and entries
// are never edited in place, so callers may keep the slice but not append to it.
func (h *History) Current() []Element {
	cur := h.entries[h.cursor]
	return cur[:len(cur):len(cur)]
}

// Commit discards any redo branch and makes elements the new current entry.
func (h *History) Commit(elements []Element) {
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, CloneElements(elements))
	h.cursor++

	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append([][]Element(nil), h.entries[drop:]...)
		h.cursor -= drop
	}
}

// Append commits the current entry plus e.
func (h *History) Append(e Element) {
	cur := h.Current()
	next := make([]Element, 0, len(cur)+1)
	next = append(next, cur...)
	h.Commit(append(next, e))
}

// Clear commits an empty entry, so it can be undone like any other change.
func (h *History) Clear() {
	h.Commit(nil)
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Undo moves the cursor back; it reports false at the lower bound.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor forward; it reports false at the upper bound.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	return true
}

// Reset replaces the whole history with a single entry, as after a load.
func (h *History) Reset(elements []Element) {
	h.entries = [][]Element{CloneElements(elements)}
	h.cursor = 0
}

// Stats returns the cursor position and the number of entries.
func (h *History) Stats() (cursor, total int) {
	return h.cursor, len(h.entries)
}
