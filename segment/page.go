package segment

import (
	"sort"
	"strings"
	"unicode"
)

// Span is one positioned run of text on a page.
type Span struct {
	Text string `json:"text"`
	BBox Rect   `json:"bbox"`
	Bold bool   `json:"bold,omitempty"`
	// Block and Line are reading-order hints from the text extractor.
	Block int `json:"block"`
	Line  int `json:"line"`
}

// Page is the immutable content of one source page: its text spans, the
// boxes of its text blocks and the boxes of its vector drawings.
type Page struct {
	Index    int     `json:"index"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation,omitempty"`
	// OriginX and OriginY are the lower-left corner of the media box in PDF
	// user space. Page coordinates are relative to it.
	OriginX  float64 `json:"origin_x,omitempty"`
	OriginY  float64 `json:"origin_y,omitempty"`
	Spans    []Span  `json:"spans"`
	Blocks   []Rect  `json:"blocks"`
	Drawings []Rect  `json:"drawings"`
}

// Bounds returns the full page rectangle.
func (p *Page) Bounds() Rect {
	return Rect{X1: p.Width, Y1: p.Height}
}

// SpansIn returns the spans whose box intersects clip, in stored order.
func (p *Page) SpansIn(clip Rect) []Span {
	var out []Span
	for _, s := range p.Spans {
		if s.BBox.Intersects(clip) {
			out = append(out, s)
		}
	}
	return out
}

// Text returns the page text in reading order with whitespace collapsed.
func (p *Page) Text() string {
	return flowText(p.Spans)
}

// TextIn is Text restricted to spans intersecting clip.
func (p *Page) TextIn(clip Rect) string {
	return flowText(p.SpansIn(clip))
}

// Contains reports whether phrase occurs in the page text, ignoring case
// and differences in whitespace.
func (p *Page) Contains(phrase string) bool {
	return containsFold(p.Text(), phrase)
}

// CountIn counts non-overlapping occurrences of phrase in the text of the
// spans intersecting clip.
func (p *Page) CountIn(clip Rect, phrase string) int {
	needle := foldSpace(phrase)
	if needle == "" {
		return 0
	}
	return strings.Count(foldSpace(p.TextIn(clip)), needle)
}

func flowText(spans []Span) string {
	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Block != ordered[j].Block {
			return ordered[i].Block < ordered[j].Block
		}
		if ordered[i].Line != ordered[j].Line {
			return ordered[i].Line < ordered[j].Line
		}
		return ordered[i].BBox.X0 < ordered[j].BBox.X0
	})
	parts := make([]string, 0, len(ordered))
	for _, s := range ordered {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

func containsFold(haystack, phrase string) bool {
	needle := foldSpace(phrase)
	if needle == "" {
		return false
	}
	return strings.Contains(foldSpace(haystack), needle)
}

// foldSpace lower-cases s and collapses every whitespace run to one space.
func foldSpace(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), unicode.IsSpace), " ")
}
