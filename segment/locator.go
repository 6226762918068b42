package segment

import "strings"

// Anchor is one detected question label on a page.
type Anchor struct {
	RawLabel   string `json:"raw_label"`
	BaseNumber int    `json:"base_number"`
	PageIndex  int    `json:"page_index"`
	BBox       Rect   `json:"bbox"`
}

// Sequence carries the accepted anchors from page to page so that the
// numbering gate sees the whole document.
type Sequence struct {
	anchors []Anchor
}

// Admits reports whether base may follow the last accepted anchor: the
// sequence is empty, or base repeats the last base number or exceeds it by one.
func (s *Sequence) Admits(base int) bool {
	last, ok := s.Last()
	if !ok {
		return true
	}
	return base == last.BaseNumber || base == last.BaseNumber+1
}

func (s *Sequence) Push(a Anchor) { s.anchors = append(s.anchors, a) }

func (s *Sequence) Last() (Anchor, bool) {
	if len(s.anchors) == 0 {
		return Anchor{}, false
	}
	return s.anchors[len(s.anchors)-1], true
}

func (s *Sequence) Len() int { return len(s.anchors) }

// Anchors returns a copy of the accepted anchors in order.
func (s *Sequence) Anchors() []Anchor {
	out := make([]Anchor, len(s.anchors))
	copy(out, s.anchors)
	return out
}

// Locator finds question labels in the margin of a page.
type Locator struct {
	Grammar  Grammar
	Geometry map[Layout]LayoutGeometry
}

// SearchRect is the margin rectangle scanned on p for the given layout.
func (l *Locator) SearchRect(p *Page, layout Layout) Rect {
	return l.Geometry[layout].Search.On(p)
}

// Candidates returns every span in the search rectangle that parses as a
// label, before the sequence gate. Diagnostics draw these.
func (l *Locator) Candidates(p *Page, layout Layout) []Anchor {
	var out []Anchor
	for _, s := range p.SpansIn(l.SearchRect(p, layout)) {
		if l.Grammar.RequireBold && !s.Bold {
			continue
		}
		text := strings.TrimSpace(s.Text)
		label, ok := ParseLabel(text, l.Grammar)
		if !ok {
			continue
		}
		out = append(out, Anchor{
			RawLabel:   text,
			BaseNumber: label.Base,
			PageIndex:  p.Index,
			BBox:       s.BBox.Round(),
		})
	}
	return out
}

// Locate returns the anchors accepted on p and appends them to seq.
// Candidates that break the numbering are dropped silently.
func (l *Locator) Locate(p *Page, layout Layout, seq *Sequence) []Anchor {
	var accepted []Anchor
	for _, a := range l.Candidates(p, layout) {
		if !seq.Admits(a.BaseNumber) {
			log.WithField("page", p.Index).Debugf("Dropping out-of-sequence label %q", a.RawLabel)
			continue
		}
		seq.Push(a)
		accepted = append(accepted, a)
	}
	return accepted
}
