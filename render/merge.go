package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/gen2brain/go-fitz"
)

// A4 sheet size in points.
const (
	A4Width  = 595.0
	A4Height = 842.0
)

// DefaultMergeBorder is the gap kept above the first snippet of a sheet.
const DefaultMergeBorder = 20.0

// Size is a page size in points.
type Size struct {
	Width, Height float64
}

// Placement positions one source page on an output sheet.
type Placement struct {
	Sheet      int
	X, Y, W, H float64
}

// Pack stacks pages top to bottom on sheets of the given size, starting a
// new sheet when the next page would run past the bottom edge. Pages wider
// than the sheet are scaled down to fit.
func Pack(sizes []Size, sheet Size, border float64) []Placement {
	out := make([]Placement, len(sizes))
	sheetNo, y := 0, border
	for i, s := range sizes {
		w, h := s.Width, s.Height
		if w > sheet.Width && w > 0 {
			h *= sheet.Width / w
			w = sheet.Width
		}
		if y+h > sheet.Height && y > border {
			sheetNo++
			y = border
		}
		out[i] = Placement{Sheet: sheetNo, X: (sheet.Width - w) / 2, Y: y, W: w, H: h}
		y += h
	}
	return out
}

type mergePage struct {
	src  string
	page int
	size Size
}

// Merge packs every page of sources onto A4 sheets written to out. Sources
// with fewer pages go first.
func Merge(sources []string, out string, border float64) error {
	if len(sources) == 0 {
		return fmt.Errorf("nothing to merge")
	}

	counts := make(map[string][]Size, len(sources))
	for _, src := range sources {
		sizes, err := pageSizes(src)
		if err != nil {
			return err
		}
		counts[src] = sizes
	}
	ordered := append([]string(nil), sources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(counts[ordered[i]]) < len(counts[ordered[j]])
	})

	var pages []mergePage
	var sizes []Size
	for _, src := range ordered {
		for n, s := range counts[src] {
			pages = append(pages, mergePage{src: src, page: n + 1, size: s})
			sizes = append(sizes, s)
		}
	}
	placements := Pack(sizes, Size{A4Width, A4Height}, border)

	pdf := fpdf.New("P", "pt", "A4", "")
	importer := gofpdi.NewImporter()
	streams := map[string]*io.ReadSeeker{}
	sheet := -1
	for i, pg := range pages {
		pl := placements[i]
		if pl.Sheet != sheet {
			pdf.AddPage()
			sheet = pl.Sheet
		}
		rs, ok := streams[pg.src]
		if !ok {
			data, err := os.ReadFile(pg.src)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", pg.src, err)
			}
			r := io.ReadSeeker(bytes.NewReader(data))
			rs = &r
			streams[pg.src] = rs
		}
		tpl := importer.ImportPageFromStream(pdf, rs, pg.page, "/CropBox")
		importer.UseImportedTemplate(pdf, tpl, pl.X, pl.Y, pl.W, 0)
		log.Debugf("%s page %d placed on sheet %d", pg.src, pg.page, pl.Sheet)
	}

	if err := ensureDir(out); err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(out); err != nil {
		return fmt.Errorf("error writing %s: %w", out, err)
	}
	log.WithField("sheets", sheet+1).Infof("Merged %d pages into %s", len(pages), out)
	return nil
}

// pageSizes returns the visible size of every page of path.
func pageSizes(path string) ([]Size, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer doc.Close()

	sizes := make([]Size, doc.NumPage())
	for n := range sizes {
		b, err := doc.Bound(n)
		if err != nil {
			return nil, fmt.Errorf("error reading page %d of %s: %w", n, path, err)
		}
		sizes[n] = Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}
	return sizes, nil
}
