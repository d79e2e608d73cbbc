package render

import (
	"image"
	"image/color"
	"math"

	"SketchBoard/internal/state"

	"golang.org/x/image/vector"
)

// pen accumulates filled polygons in one rasterizer and paints them in a
// single pass. Every polygon is added with the same winding so overlapping
// pieces merge instead of cancelling; holes are added with the opposite one.
type pen struct {
	img  *image.RGBA
	z    *vector.Rasterizer
	half float32
}

func newPen(img *image.RGBA, width float32) *pen {
	half := width / 2
	if half < 0.5 {
		half = 0.5
	}
	b := img.Bounds()
	return &pen{img: img, z: vector.NewRasterizer(b.Dx(), b.Dy()), half: half}
}

func (p *pen) fill(c color.NRGBA) {
	p.z.Draw(p.img, p.img.Bounds(), image.NewUniform(c), image.Point{})
}

// polyline strokes the path with round joins and caps.
func (p *pen) polyline(pts []state.Point, closed bool) {
	for i := 1; i < len(pts); i++ {
		p.segment(pts[i-1], pts[i])
	}
	if closed && len(pts) > 2 {
		p.segment(pts[len(pts)-1], pts[0])
	}
	for _, pt := range pts {
		p.polygon(circlePoints(pt, p.half), false)
	}
}

func (p *pen) segment(a, b state.Point) {
	l := state.Distance(a, b)
	if l < 1e-3 {
		return
	}
	nx := -(b.Y - a.Y) / l * p.half
	ny := (b.X - a.X) / l * p.half
	p.polygon([]state.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}, false)
}

// ring strokes a circle outline of radius r.
func (p *pen) ring(c state.Point, r float32) {
	p.polygon(circlePoints(c, r+p.half), false)
	if inner := r - p.half; inner > 0 {
		p.polygon(circlePoints(c, inner), true)
	}
}

func (p *pen) polygon(pts []state.Point, hole bool) {
	if len(pts) < 3 {
		return
	}
	if (signedArea(pts) < 0) != hole {
		reverse(pts)
	}
	p.z.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.z.LineTo(pt.X, pt.Y)
	}
	p.z.ClosePath()
}

func circlePoints(c state.Point, r float32) []state.Point {
	n := int(r) * 2
	if n < 16 {
		n = 16
	}
	if n > 256 {
		n = 256
	}
	pts := make([]state.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = state.Point{
			X: c.X + r*float32(math.Cos(a)),
			Y: c.Y + r*float32(math.Sin(a)),
		}
	}
	return pts
}

func signedArea(pts []state.Point) float32 {
	var a float32
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

func reverse(pts []state.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
