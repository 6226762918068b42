package pdfio

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/text"

	"question-bank/segment"
)

const (
	ascentRatio  = 0.8
	descentRatio = 0.2
	// Fragments closer than this fraction of the font size join one span.
	joinGapRatio = 0.25
	// A gap wider than this fraction of the font size becomes a space.
	spaceGapRatio = 0.1
)

// frame converts PDF user space, origin bottom-left, into page space with
// the origin at the top-left of the media box.
type frame struct {
	originX, originY float64
	height           float64
}

func (f frame) bbox(b model.BBox) segment.Rect {
	x0 := b.X - f.originX
	bottom := b.Y - f.originY
	return segment.Rect{
		X0: x0,
		Y0: f.height - (bottom + b.Height),
		X1: x0 + b.Width,
		Y1: f.height - bottom,
	}
}

func (f frame) fragment(fr text.TextFragment) segment.Rect {
	size := fr.FontSize
	if size <= 0 {
		size = fr.Height
	}
	x0 := fr.X - f.originX
	baseline := fr.Y - f.originY
	return segment.Rect{
		X0: x0,
		Y0: f.height - (baseline + ascentRatio*size),
		X1: x0 + fr.Width,
		Y1: f.height - (baseline - descentRatio*size),
	}
}

func isBold(fontName string) bool {
	name := strings.ToLower(fontName)
	return strings.Contains(name, "bold") || strings.Contains(name, "black") || strings.Contains(name, "heavy")
}

// buildSpans merges text fragments that share a baseline, font and size and
// sit next to each other into spans. Spans get line numbers by baseline and
// block numbers from the blocks that contain them.
func buildSpans(frags []text.TextFragment, f frame, blocks []segment.Rect) []segment.Span {
	var spans []segment.Span
	var last *text.TextFragment
	for i := range frags {
		fr := frags[i]
		if strings.TrimSpace(fr.Text) == "" && last == nil {
			continue
		}
		box := f.fragment(fr)
		if last != nil && joins(*last, fr) {
			s := &spans[len(spans)-1]
			gap := fr.X - (last.X + last.Width)
			if gap > spaceGapRatio*fr.FontSize && !strings.HasSuffix(s.Text, " ") {
				s.Text += " "
			}
			s.Text += fr.Text
			s.BBox = s.BBox.Union(box)
			last = &frags[i]
			continue
		}
		if strings.TrimSpace(fr.Text) == "" {
			last = nil
			continue
		}
		spans = append(spans, segment.Span{Text: fr.Text, BBox: box, Bold: isBold(fr.FontName)})
		last = &frags[i]
	}

	for i := range spans {
		spans[i].Text = strings.TrimSpace(spans[i].Text)
	}
	assignLines(spans)
	assignBlocks(spans, blocks)
	return spans
}

func joins(prev, next text.TextFragment) bool {
	if prev.FontName != next.FontName || math.Abs(prev.FontSize-next.FontSize) > 0.01 {
		return false
	}
	if math.Abs(prev.Y-next.Y) > 0.5 {
		return false
	}
	gap := next.X - (prev.X + prev.Width)
	return gap > -0.5*next.FontSize && gap < joinGapRatio*next.FontSize
}

// assignLines numbers spans by the rank of their rounded bottom edge.
func assignLines(spans []segment.Span) {
	bottoms := map[float64]struct{}{}
	for _, s := range spans {
		bottoms[math.Round(s.BBox.Y1)] = struct{}{}
	}
	keys := make([]float64, 0, len(bottoms))
	for k := range bottoms {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	rank := make(map[float64]int, len(keys))
	for i, k := range keys {
		rank[k] = i
	}
	for i := range spans {
		spans[i].Line = rank[math.Round(spans[i].BBox.Y1)]
	}
}

// assignBlocks gives each span the index of the first block holding its
// centre. Spans outside every block go after all blocks.
func assignBlocks(spans []segment.Span, blocks []segment.Rect) {
	for i := range spans {
		cx := (spans[i].BBox.X0 + spans[i].BBox.X1) / 2
		cy := (spans[i].BBox.Y0 + spans[i].BBox.Y1) / 2
		spans[i].Block = len(blocks)
		for bi, b := range blocks {
			if cx >= b.X0 && cx <= b.X1 && cy >= b.Y0 && cy <= b.Y1 {
				spans[i].Block = bi
				break
			}
		}
	}
}
