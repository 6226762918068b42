package pdfio

import (
	"context"
	"fmt"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/layout"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/text"

	"question-bank/segment"
)

// textLayerSource reads spans, text blocks and vector drawings from the
// PDF content streams.
type textLayerSource struct{}

func (s *textLayerSource) Pages(ctx context.Context, path string) ([]*segment.Page, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer r.Close()

	n, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("error counting pages of %s: %w", path, err)
	}

	out := make([]*segment.Page, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pg, err := r.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("error reading page %d of %s: %w", i, path, err)
		}
		frags, err := r.ExtractTextFragments(pg)
		if err != nil {
			// A page whose text cannot be decoded still has a size and drawings.
			log.WithField("page", i).Warnf("Could not extract text: %v", err)
			frags = nil
		}
		page, err := buildPage(i, pg, frags)
		if err != nil {
			return nil, fmt.Errorf("error reading page %d of %s: %w", i, path, err)
		}
		out = append(out, page)
	}
	log.WithField("pages", len(out)).Debugf("Loaded %s", path)
	return out, nil
}

func buildPage(index int, pg *pages.Page, frags []text.TextFragment) (*segment.Page, error) {
	box, err := pg.MediaBox()
	if err != nil {
		return nil, err
	}
	if len(box) < 4 {
		return nil, fmt.Errorf("malformed media box %v", box)
	}
	width, height := box[2]-box[0], box[3]-box[1]
	f := frame{originX: box[0], originY: box[1], height: height}

	var blocks []segment.Rect
	if len(frags) > 0 {
		for _, b := range layout.NewBlockDetector().Detect(frags, width, height).Blocks {
			blocks = append(blocks, f.bbox(b.BBox))
		}
	}

	drawings, err := extractDrawings(pg, f)
	if err != nil {
		log.WithField("page", index).Warnf("Could not extract drawings: %v", err)
	}

	return &segment.Page{
		Index:    index,
		Width:    width,
		Height:   height,
		Rotation: pg.Rotate(),
		OriginX:  box[0],
		OriginY:  box[1],
		Spans:    buildSpans(frags, f, blocks),
		Blocks:   blocks,
		Drawings: drawings,
	}, nil
}

func extractDrawings(pg *pages.Page, f frame) ([]segment.Rect, error) {
	contents, err := pg.Contents()
	if err != nil {
		return nil, err
	}
	var data []byte
	for _, obj := range contents {
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		decoded, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("error decoding content stream: %w", err)
		}
		data = append(data, decoded...)
		data = append(data, '\n')
	}
	if len(data) == 0 {
		return nil, nil
	}

	ge := graphicsstate.NewGraphicsExtractor()
	if err := ge.ExtractFromBytes(data); err != nil {
		return nil, err
	}
	var out []segment.Rect
	for _, rect := range ge.GetRectangles() {
		if rect.IsStroked || rect.IsFilled {
			out = append(out, f.bbox(rect.BBox))
		}
	}
	for _, line := range ge.GetLines() {
		out = append(out, f.bbox(line.BBox))
	}
	return out, nil
}
