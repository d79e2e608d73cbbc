// Package export writes a document out as a PDF or PNG file.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
)

// PDF draws doc as vectors on a single page of size points, one point per pixel.
func PDF(w io.Writer, doc state.Document, size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("invalid page size %v", size)
	}
	orientation := "P"
	if size.X > size.Y {
		orientation = "L"
	}
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(size.X), Ht: float64(size.Y)},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	for _, el := range doc.Elements {
		switch e := el.(type) {
		case state.Stroke:
			if !e.Valid() {
				continue
			}
			setPen(p, e.Color, e.Width)
			p.MoveTo(float64(e.Points[0].X), float64(e.Points[0].Y))
			for _, pt := range e.Points[1:] {
				p.LineTo(float64(pt.X), float64(pt.Y))
			}
			p.DrawPath("D")
		case state.Shape:
			setPen(p, e.Color, e.Width)
			r := e.Rect()
			if e.Type == state.KindCircle {
				p.Circle(float64(e.Origin.X), float64(e.Origin.Y), float64(e.Radius), "D")
			} else {
				p.Rect(float64(r.X), float64(r.Y), float64(r.W), float64(r.H), "D")
			}
		}
	}
	p.SetAlpha(1, "Normal")

	if len(doc.TextItems) > 0 {
		tr := p.UnicodeTranslatorFromDescriptor("")
		p.SetFont("Helvetica", "", state.DefaultFontSize)
		p.SetTextColor(0, 0, 0)
		for _, it := range doc.TextItems {
			// Position is the top-left corner; Text wants the baseline
			p.Text(float64(it.Position.X), float64(it.Position.Y)+state.DefaultFontSize*0.8, tr(it.Text))
		}
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setPen(p *gofpdf.Fpdf, c state.Color, width float32) {
	col := c.NRGBA()
	p.SetDrawColor(int(col.R), int(col.G), int(col.B))
	p.SetAlpha(float64(col.A)/255, "Normal")
	p.SetLineWidth(float64(width))
}

// PNG encodes a rendered frame.
func PNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// ToFile picks the format from path's extension (.pdf or .png).
func ToFile(path string, doc state.Document, size image.Point, r render.Renderer) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" && ext != ".png" {
		return fmt.Errorf("unsupported export format %q", ext)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if ext == ".pdf" {
		return PDF(f, doc, size)
	}
	return PNG(f, r.Paint(render.Frame{Document: doc, Size: size}))
}
