package segment

import (
	"math"
	"sort"
	"strings"
)

// ReadingText rebuilds the text inside clip for indexing. Spans are grouped
// into lines by their rounded bottom edge, lines run top to bottom and words
// left to right. The result is upper-cased.
func ReadingText(spans []Span, clip Rect) string {
	lines := map[float64][]Span{}
	for _, s := range spans {
		if !s.BBox.Intersects(clip) {
			continue
		}
		key := math.Round(s.BBox.Y1)
		lines[key] = append(lines[key], s)
	}

	keys := make([]float64, 0, len(lines))
	for k := range lines {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		words := lines[k]
		sort.SliceStable(words, func(i, j int) bool { return words[i].BBox.X0 < words[j].BBox.X0 })
		parts := make([]string, 0, len(words))
		for _, w := range words {
			if t := strings.TrimSpace(w.Text); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " "))
		}
	}
	return strings.ToUpper(strings.Join(out, " "))
}

// QuestionText concatenates the reading text of every region of q.
func QuestionText(q Question, pages []*Page) string {
	parts := make([]string, 0, len(q.Regions))
	for _, reg := range q.Regions {
		if reg.PageIndex < 0 || reg.PageIndex >= len(pages) {
			continue
		}
		if t := ReadingText(pages[reg.PageIndex].Spans, reg.Rect()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
