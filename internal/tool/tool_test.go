package tool

import (
	"testing"

	"SketchBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gesture(t *testing.T, kind Kind, pts ...state.Point) (state.Element, bool) {
	t.Helper()
	s, err := New(kind, DefaultStyle)
	require.NoError(t, err)
	s.Begin(pts[0])
	for _, p := range pts[1 : len(pts)-1] {
		s.Extend(p)
	}
	return s.End(pts[len(pts)-1])
}

func TestFreehandCommitsPath(t *testing.T) {
	el, ok := gesture(t, Freehand, state.Point{X: 0, Y: 0}, state.Point{X: 1, Y: 1}, state.Point{X: 2, Y: 2}, state.Point{X: 2, Y: 2})
	require.True(t, ok)
	s := el.(state.Stroke)
	assert.Equal(t, []state.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}, s.Points)
	assert.Equal(t, DefaultStyle.Color, s.Color)
	assert.Equal(t, DefaultStyle.Width, s.Width)
}

func TestFreehandSinglePointIsDiscarded(t *testing.T) {
	s, err := New(Freehand, DefaultStyle)
	require.NoError(t, err)
	s.Begin(state.Point{X: 5, Y: 5})
	_, ok := s.End(state.Point{X: 5, Y: 5})
	assert.False(t, ok)
	_, ok = s.Draft()
	assert.False(t, ok)
}

func TestFreehandCoalesce(t *testing.T) {
	s, err := New(Freehand, Style{Color: "red", Width: 1, Coalesce: 1})
	require.NoError(t, err)
	s.Begin(state.Point{X: 0, Y: 0})
	s.Extend(state.Point{X: 0.2, Y: 0})
	s.Extend(state.Point{X: 0.5, Y: 0.5})
	s.Extend(state.Point{X: 3, Y: 0})
	el, ok := s.End(state.Point{X: 3, Y: 0})
	require.True(t, ok)
	assert.Equal(t, []state.Point{{X: 0, Y: 0}, {X: 3, Y: 0}}, el.(state.Stroke).Points)
}

func TestRectangleKeepsSignedDraft(t *testing.T) {
	s, err := New(Rectangle, DefaultStyle)
	require.NoError(t, err)
	s.Begin(state.Point{X: 10, Y: 10})
	s.Extend(state.Point{X: 7, Y: 5})

	d, ok := s.Draft()
	require.True(t, ok)
	assert.Equal(t, state.Point{X: -3, Y: -5}, d.(state.Shape).Size)

	el, ok := s.End(state.Point{X: 4, Y: 2})
	require.True(t, ok)
	r := el.(state.Shape)
	assert.Equal(t, state.Point{X: 10, Y: 10}, r.Origin)
	assert.Equal(t, state.Point{X: -6, Y: -8}, r.Size)
	assert.Equal(t, state.Rect{X: 4, Y: 2, W: 6, H: 8}, r.Rect())
}

func TestShapeMisclickIsDiscarded(t *testing.T) {
	_, ok := gesture(t, Rectangle, state.Point{X: 10, Y: 10}, state.Point{X: 11, Y: 10})
	assert.False(t, ok)
	_, ok = gesture(t, Circle, state.Point{X: 10, Y: 10}, state.Point{X: 10, Y: 11})
	assert.False(t, ok)
}

func TestCircleRadius(t *testing.T) {
	el, ok := gesture(t, Circle, state.Point{X: 0, Y: 0}, state.Point{X: 1, Y: 1}, state.Point{X: 3, Y: 4})
	require.True(t, ok)
	c := el.(state.Shape)
	assert.Equal(t, state.KindCircle, c.Kind())
	assert.InDelta(t, 5, c.Radius, 1e-5)
}

func TestTextIsNotGestural(t *testing.T) {
	_, err := New(Text, DefaultStyle)
	assert.ErrorIs(t, err, ErrNotGestural)
	_, err = New("spray", DefaultStyle)
	assert.Error(t, err)

	k, err := Parse("circle")
	require.NoError(t, err)
	assert.Equal(t, Circle, k)
}
