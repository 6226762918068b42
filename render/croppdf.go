package render

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"golang.org/x/text/encoding/charmap"

	"question-bank/segment"
)

// CropOverlay is what WriteCropAreas draws for one question.
type CropOverlay struct {
	Label  string
	Anchor segment.Anchor
	Crops  []segment.Crop
}

// WriteCropAreas copies the document at src to out with every crop shaded
// green and every anchor outlined in blue, next to its label.
func WriteCropAreas(src string, pages []*segment.Page, overlays []CropOverlay, out string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", src, err)
	}

	byPage := make(map[int][]CropOverlay)
	for _, o := range overlays {
		byPage[o.Anchor.PageIndex] = append(byPage[o.Anchor.PageIndex], o)
		for _, c := range o.Crops {
			if c.PageIndex != o.Anchor.PageIndex {
				byPage[c.PageIndex] = append(byPage[c.PageIndex], CropOverlay{Label: o.Label, Anchor: segment.Anchor{PageIndex: -1}, Crops: []segment.Crop{c}})
			}
		}
	}

	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetFont("Helvetica", "B", 10)
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))
	encoder := charmap.ISO8859_1.NewEncoder()

	for _, p := range pages {
		w, h := p.Width, p.Height
		if r := ((p.Rotation % 360) + 360) % 360; r == 90 || r == 270 {
			w, h = h, w
		}
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		tpl := importer.ImportPageFromStream(pdf, &rs, p.Index+1, "/MediaBox")
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, 0)

		for _, o := range byPage[p.Index] {
			pdf.SetFillColor(0, 200, 0)
			pdf.SetAlpha(0.25, "Normal")
			for _, c := range o.Crops {
				if c.PageIndex != p.Index {
					continue
				}
				r := displayRect(c.Rect, p.Width, p.Height, p.Rotation)
				pdf.Rect(r.X0, r.Y0, r.Width(), r.Height(), "F")
			}
			pdf.SetAlpha(1, "Normal")

			if o.Anchor.PageIndex != p.Index {
				continue
			}
			r := displayRect(o.Anchor.BBox, p.Width, p.Height, p.Rotation)
			pdf.SetDrawColor(0, 0, 255)
			pdf.SetLineWidth(1)
			pdf.Rect(r.X0, r.Y0, r.Width(), r.Height(), "D")

			label, err := encoder.String(o.Label)
			if err != nil {
				label = o.Anchor.RawLabel
			}
			pdf.SetTextColor(0, 0, 255)
			pdf.Text(r.X1+4, r.Y1, label)
		}
	}

	if err := ensureDir(out); err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(out); err != nil {
		return fmt.Errorf("error writing %s: %w", out, err)
	}
	log.Debugf("Wrote crop areas %s", out)
	return nil
}
