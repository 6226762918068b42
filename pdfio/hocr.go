package pdfio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gardar/ocrchestra/pkg/hocr"

	"question-bank/segment"
)

// hocrSource takes page geometry and drawings from the PDF and text from an
// hOCR sidecar next to it, for scanned papers without a usable text layer.
type hocrSource struct {
	base   Source
	suffix string
}

// SidecarPath is where the hOCR file of pdfPath is expected.
func SidecarPath(pdfPath, suffix string) string {
	return strings.TrimSuffix(pdfPath, ".pdf") + suffix
}

func (s *hocrSource) Pages(ctx context.Context, path string) ([]*segment.Page, error) {
	pages, err := s.base.Pages(ctx, path)
	if err != nil {
		return nil, err
	}

	sidecar := SidecarPath(path, s.suffix)
	data, err := os.ReadFile(sidecar)
	if errors.Is(err, os.ErrNotExist) {
		log.WithField("path", path).Warn("No hOCR sidecar found, using the PDF text layer")
		return pages, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", sidecar, err)
	}

	doc, err := hocr.ParseHOCR(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", sidecar, err)
	}
	if len(doc.Pages) != len(pages) {
		log.WithField("path", path).Warnf("hOCR has %d pages, PDF has %d", len(doc.Pages), len(pages))
	}
	for i := range pages {
		if i >= len(doc.Pages) {
			break
		}
		applyHOCR(pages[i], doc.Pages[i])
	}
	return pages, nil
}

// applyHOCR replaces the text of p with the words of hp, scaled from image
// pixels to page units. Each paragraph becomes a text block.
func applyHOCR(p *segment.Page, hp hocr.Page) {
	sx, sy := 1.0, 1.0
	if hp.BBox.X2 > hp.BBox.X1 && hp.BBox.Y2 > hp.BBox.Y1 {
		sx = p.Width / (hp.BBox.X2 - hp.BBox.X1)
		sy = p.Height / (hp.BBox.Y2 - hp.BBox.Y1)
	}
	scale := func(b hocr.BoundingBox) segment.Rect {
		return segment.Rect{
			X0: (b.X1 - hp.BBox.X1) * sx,
			Y0: (b.Y1 - hp.BBox.Y1) * sy,
			X1: (b.X2 - hp.BBox.X1) * sx,
			Y1: (b.Y2 - hp.BBox.Y1) * sy,
		}
	}

	w := &hocrWalker{scale: scale}
	for _, area := range hp.Areas {
		for _, par := range area.Paragraphs {
			w.paragraph(par)
		}
		w.lines(area.Lines)
		w.words(area.Words)
	}
	for _, par := range hp.Paragraphs {
		w.paragraph(par)
	}
	w.lines(hp.Lines)

	p.Spans = w.spans
	p.Blocks = w.blocks
}

type hocrWalker struct {
	scale  func(hocr.BoundingBox) segment.Rect
	spans  []segment.Span
	blocks []segment.Rect
	line   int
}

func (w *hocrWalker) paragraph(par hocr.Paragraph) {
	w.blocks = append(w.blocks, w.scale(par.BBox))
	w.lines(par.Lines)
	w.words(par.Words)
}

func (w *hocrWalker) lines(lines []hocr.Line) {
	for _, l := range lines {
		w.words(l.Words)
		w.line++
	}
}

func (w *hocrWalker) words(words []hocr.Word) {
	block := len(w.blocks) - 1
	if block < 0 {
		block = 0
	}
	for _, word := range words {
		if strings.TrimSpace(word.Text) == "" {
			continue
		}
		w.spans = append(w.spans, segment.Span{
			Text:  strings.TrimSpace(word.Text),
			BBox:  w.scale(word.BBox),
			Block: block,
			Line:  w.line,
		})
	}
}
