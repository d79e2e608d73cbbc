package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedMeasure(text string) (float32, float32) { return 50, 20 }

func TestOverlayPlaceRejectsEmpty(t *testing.T) {
	o := NewTextOverlay(fixedMeasure)
	_, ok := o.Place(Point{1, 1}, "")
	assert.False(t, ok)
	assert.Empty(t, o.Items())
}

func TestOverlayDragMovesOnlyTarget(t *testing.T) {
	o := NewTextOverlay(fixedMeasure)
	a, _ := o.Place(Point{10, 10}, "A")
	b, _ := o.Place(Point{100, 10}, "B")
	c, _ := o.Place(Point{200, 10}, "C")

	hit, ok := o.HitTest(Point{15, 15})
	require.True(t, ok)
	require.Equal(t, a.ID, hit.ID)

	_, ok = o.BeginDrag(a.ID)
	require.True(t, ok)
	id, dragging := o.Dragging()
	require.True(t, dragging)
	assert.Equal(t, a.ID, id)

	require.True(t, o.MoveTo(a.ID, Point{20, 40}))
	o.EndDrag()

	items := o.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, Point{20, 40}, items[0].Position)
	assert.Equal(t, b.Position, items[1].Position)
	assert.Equal(t, c.Position, items[2].Position)
	_, dragging = o.Dragging()
	assert.False(t, dragging)
	assert.False(t, o.MoveTo("missing", Point{0, 0}))
}

func TestOverlayHitTestPrefersTopmost(t *testing.T) {
	o := NewTextOverlay(fixedMeasure)
	o.Place(Point{0, 0}, "under")
	top, _ := o.Place(Point{10, 5}, "over")

	hit, ok := o.HitTest(Point{20, 10})
	require.True(t, ok)
	assert.Equal(t, top.ID, hit.ID)

	_, ok = o.HitTest(Point{500, 500})
	assert.False(t, ok)
}

func TestOverlayDeleteIsIdempotent(t *testing.T) {
	o := NewTextOverlay(fixedMeasure)
	a, _ := o.Place(Point{0, 0}, "A")
	b, _ := o.Place(Point{0, 50}, "B")

	o.Delete(a.ID)
	assert.Equal(t, []TextItem{b}, o.Items())
	o.Delete(a.ID)
	assert.Equal(t, []TextItem{b}, o.Items())
}

func TestOverlayHover(t *testing.T) {
	o := NewTextOverlay(fixedMeasure)
	a, _ := o.Place(Point{0, 0}, "A")

	o.UpdateHover(Point{5, 5})
	assert.True(t, o.Hovered(a.ID))

	// the delete handle sits outside the text but keeps the hover alive
	h := o.DeleteHandle(a)
	o.UpdateHover(Point{h.X + 1, h.Y + 1})
	assert.True(t, o.Hovered(a.ID))
	hit, ok := o.HitDeleteHandle(Point{h.X + 1, h.Y + 1})
	require.True(t, ok)
	assert.Equal(t, a.ID, hit.ID)

	o.UpdateHover(Point{300, 300})
	assert.False(t, o.Hovered(a.ID))
	_, ok = o.HitDeleteHandle(Point{h.X + 1, h.Y + 1})
	assert.False(t, ok)
}

func TestOverlayReplaceRegeneratesIdentity(t *testing.T) {
	o := NewTextOverlay(fixedMeasure)
	o.Replace([]TextItem{{ID: "x", Position: Point{1, 2}, Text: "hi"}, {Position: Point{3, 4}, Text: "yo"}})

	items := o.Items()
	require.Len(t, items, 2)
	assert.NotEqual(t, "x", items[0].ID)
	assert.NotEmpty(t, items[1].ID)
	assert.Equal(t, "hi", items[0].Text)
	assert.Equal(t, Point{3, 4}, items[1].Position)
}
