package segment

import "sort"

// ConditionalMarker excludes a page that carries Title unless the page also
// carries Sentence. A reference-notes title page is dropped while a question
// that quotes the full sentence is kept.
type ConditionalMarker struct {
	Title    string `yaml:"title" json:"title"`
	Sentence string `yaml:"sentence" json:"sentence"`
}

// BlankRules lists the phrases that mark non-content pages.
type BlankRules struct {
	Markers     []string            `yaml:"markers" json:"markers"`
	Conditional []ConditionalMarker `yaml:"conditional" json:"conditional"`
}

// BlankDetector flags cover, blank and boilerplate pages.
type BlankDetector struct {
	rules BlankRules
}

func NewBlankDetector(rules BlankRules) *BlankDetector {
	return &BlankDetector{rules: rules}
}

// IsExcluded reports whether p contributes no questions.
func (d *BlankDetector) IsExcluded(p *Page) bool {
	if p.Index == 0 {
		return true
	}
	text := p.Text()
	for _, m := range d.rules.Markers {
		if containsFold(text, m) {
			return true
		}
	}
	for _, c := range d.rules.Conditional {
		if containsFold(text, c.Title) && !containsFold(text, c.Sentence) {
			return true
		}
	}
	return false
}

// Scan builds the set of excluded page indices for a document.
func (d *BlankDetector) Scan(pages []*Page) BlankPageSet {
	set := BlankPageSet{0: {}}
	for _, p := range pages {
		if d.IsExcluded(p) {
			set.Add(p.Index)
		}
	}
	return set
}

// BlankPageSet holds the indices of pages that never contribute a region.
type BlankPageSet map[int]struct{}

func (s BlankPageSet) Add(i int) { s[i] = struct{}{} }

func (s BlankPageSet) Contains(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the indices in ascending order.
func (s BlankPageSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
