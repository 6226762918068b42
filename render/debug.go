package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"question-bank/segment"
)

// DiagnosticDPI is the resolution of diagnostic page images.
const DiagnosticDPI = 100.0

// MarkKind says what a rectangle on a diagnostic image stands for.
type MarkKind int

const (
	MarkSearch MarkKind = iota
	MarkCandidate
	MarkLastGood
	MarkOffending
)

var markColors = map[MarkKind]color.NRGBA{
	MarkSearch:    {R: 0, G: 170, B: 0, A: 255},
	MarkCandidate: {R: 0, G: 0, B: 255, A: 255},
	MarkLastGood:  {R: 230, G: 190, B: 0, A: 255},
	MarkOffending: {R: 230, G: 0, B: 0, A: 255},
}

var markNames = map[MarkKind]string{
	MarkSearch:    "search area",
	MarkCandidate: "label",
	MarkLastGood:  "last good",
	MarkOffending: "offending",
}

// Mark is one rectangle drawn on a diagnostic, in page space.
type Mark struct {
	Kind MarkKind
	Rect segment.Rect
}

// Diagnostic describes one annotated page image.
type Diagnostic struct {
	Page  *segment.Page
	Marks []Mark
	Note  string
}

// PageDiagnostic marks the search area of p and every label candidate in
// it. Candidates the sequence gate accepted are blue, the others red. The
// last accepted label on the page is yellow.
func PageDiagnostic(loc *segment.Locator, p *segment.Page, layout segment.Layout, accepted []segment.Anchor, note string) Diagnostic {
	d := Diagnostic{Page: p, Note: note}
	d.Marks = append(d.Marks, Mark{Kind: MarkSearch, Rect: loc.SearchRect(p, layout)})

	var last *segment.Anchor
	for i := range accepted {
		if accepted[i].PageIndex == p.Index {
			last = &accepted[i]
		}
	}
	for _, c := range loc.Candidates(p, layout) {
		kind := MarkOffending
		for _, a := range accepted {
			if a.PageIndex == c.PageIndex && a.BBox == c.BBox {
				kind = MarkCandidate
				break
			}
		}
		if last != nil && last.BBox == c.BBox {
			kind = MarkLastGood
		}
		d.Marks = append(d.Marks, Mark{Kind: kind, Rect: c.BBox})
	}
	return d
}

// OrderDiagnostic marks the anchors of an ordering failure on the page of
// the offending label.
func OrderDiagnostic(loc *segment.Locator, pages []*segment.Page, layouts []segment.Layout, oe *segment.OrderError) (Diagnostic, error) {
	idx := oe.Offending.PageIndex
	if idx < 0 || idx >= len(pages) || idx >= len(layouts) {
		return Diagnostic{}, fmt.Errorf("page %d out of range", idx)
	}
	p := pages[idx]
	d := Diagnostic{Page: p, Note: oe.Error()}
	d.Marks = append(d.Marks, Mark{Kind: MarkSearch, Rect: loc.SearchRect(p, layouts[idx])})
	for _, c := range loc.Candidates(p, layouts[idx]) {
		d.Marks = append(d.Marks, Mark{Kind: MarkCandidate, Rect: c.BBox})
	}
	if oe.Prior.PageIndex == idx {
		d.Marks = append(d.Marks, Mark{Kind: MarkLastGood, Rect: oe.Prior.BBox})
	}
	d.Marks = append(d.Marks, Mark{Kind: MarkOffending, Rect: oe.Offending.BBox})
	return d, nil
}

// WriteDiagnostic renders the page of d from the document at src, draws its
// marks and a legend, and saves the image to out.
func WriteDiagnostic(src string, d Diagnostic, out string) error {
	doc, err := fitz.New(src)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", src, err)
	}
	defer doc.Close()

	page, err := doc.ImageDPI(d.Page.Index, DiagnosticDPI)
	if err != nil {
		return fmt.Errorf("error rendering page %d of %s: %w", d.Page.Index, src, err)
	}
	img := imaging.Clone(page)

	scale := DiagnosticDPI / 72
	for _, m := range d.Marks {
		r := displayRect(m.Rect, d.Page.Width, d.Page.Height, d.Page.Rotation)
		outline(img, pixelRect(r, scale), markColors[m.Kind], 2)
	}
	drawLegend(img, d.Note)

	if err := ensureDir(out); err != nil {
		return err
	}
	if err := imaging.Save(img, out); err != nil {
		return fmt.Errorf("error saving %s: %w", out, err)
	}
	log.WithField("page", d.Page.Index).Infof("Wrote diagnostic %s", out)
	return nil
}

// displayRect maps r from unrotated page space to the page as displayed
// after a clockwise rotation by the page's /Rotate value.
func displayRect(r segment.Rect, w, h float64, rotation int) segment.Rect {
	switch ((rotation % 360) + 360) % 360 {
	case 90:
		return segment.Rect{X0: h - r.Y1, Y0: r.X0, X1: h - r.Y0, Y1: r.X1}
	case 180:
		return segment.Rect{X0: w - r.X1, Y0: h - r.Y1, X1: w - r.X0, Y1: h - r.Y0}
	case 270:
		return segment.Rect{X0: r.Y0, Y0: w - r.X1, X1: r.Y1, Y1: w - r.X0}
	default:
		return r
	}
}

func pixelRect(r segment.Rect, scale float64) image.Rectangle {
	return image.Rect(int(r.X0*scale), int(r.Y0*scale), int(r.X1*scale), int(r.Y1*scale))
}

// outline draws the border of r, clipped to img.
func outline(img *image.NRGBA, r image.Rectangle, c color.Color, width int) {
	src := &image.Uniform{C: c}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

func drawLegend(img *image.NRGBA, note string) {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 2
	lines := []MarkKind{MarkSearch, MarkCandidate, MarkLastGood, MarkOffending}

	box := image.Rect(0, 0, img.Bounds().Dx(), lineHeight*(len(lines)+1)+6)
	draw.Draw(img, box.Intersect(img.Bounds()), &image.Uniform{C: color.NRGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)

	d := &font.Drawer{Dst: img, Face: face}
	y := lineHeight
	for _, k := range lines {
		d.Src = &image.Uniform{C: markColors[k]}
		d.Dot = fixed.P(6, y)
		d.DrawString(markNames[k])
		y += lineHeight
	}
	d.Src = image.Black
	d.Dot = fixed.P(6, y)
	d.DrawString(note)
}
