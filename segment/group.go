package segment

import (
	"fmt"
	"strconv"
	"strings"
)

// GroupMode chooses the granularity of questions built from anchors.
type GroupMode int

const (
	// GroupByBase keeps only the first anchor of each base number.
	GroupByBase GroupMode = iota
	// GroupByLabel keeps every anchor as its own question until
	// CollapseByBase merges them.
	GroupByLabel
)

func (m GroupMode) String() string {
	if m == GroupByLabel {
		return "label"
	}
	return "base"
}

// ParseGroupMode accepts "base" or "label".
func ParseGroupMode(s string) (GroupMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "base":
		return GroupByBase, nil
	case "label":
		return GroupByLabel, nil
	default:
		return 0, fmt.Errorf("unknown group mode %q", s)
	}
}

// Question is one output unit and the page regions it covers.
type Question struct {
	Key        string   `json:"key"`
	BaseNumber int      `json:"base_number"`
	Anchor     Anchor   `json:"anchor"`
	Regions    []Region `json:"regions"`
}

// Label is the name used for output files: the base number once collapsed,
// otherwise the key.
func (q Question) Label() string {
	if q.Key == "" {
		return strconv.Itoa(q.BaseNumber)
	}
	return q.Key
}

// Group turns located anchors into questions.
func Group(anchors []Anchor, mode GroupMode) []Question {
	var out []Question
	for i, a := range anchors {
		if mode == GroupByBase {
			if i > 0 && anchors[i-1].BaseNumber == a.BaseNumber {
				continue
			}
			out = append(out, Question{Key: strconv.Itoa(a.BaseNumber), BaseNumber: a.BaseNumber, Anchor: a})
			continue
		}
		out = append(out, Question{Key: a.RawLabel, BaseNumber: a.BaseNumber, Anchor: a})
	}
	return out
}

// Anchors returns the starting anchor of each question.
func Anchors(questions []Question) []Anchor {
	out := make([]Anchor, len(questions))
	for i, q := range questions {
		out[i] = q.Anchor
	}
	return out
}

// CollapseByBase merges consecutive questions sharing a base number into the
// first of them. Regions are concatenated in order and touching regions on
// the same page are joined.
func CollapseByBase(questions []Question) []Question {
	var out []Question
	for _, q := range questions {
		n := len(out)
		if n > 0 && out[n-1].BaseNumber == q.BaseNumber {
			out[n-1].Regions = joinRegions(out[n-1].Regions, q.Regions)
			continue
		}
		q.Key = strconv.Itoa(q.BaseNumber)
		q.Regions = append([]Region(nil), q.Regions...)
		out = append(out, q)
	}
	return out
}

func joinRegions(dst, src []Region) []Region {
	for _, r := range src {
		n := len(dst)
		if n > 0 && dst[n-1].PageIndex == r.PageIndex && dst[n-1].Span.End == r.Span.Start {
			dst[n-1].Span.End = r.Span.End
			dst[n-1].Trim = nil
			continue
		}
		dst = append(dst, r)
	}
	return dst
}
