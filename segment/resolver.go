package segment

import "github.com/sirupsen/logrus"

// Region is the part of one page that belongs to a question.
type Region struct {
	PageIndex int `json:"page_index"`
	// Axis is the boundary axis of the region's page.
	Axis Axis `json:"axis"`
	// Span is the coarse primary-axis boundary taken from anchor positions.
	Span Interval `json:"span"`
	// Trim is Span tightened to the content inside it, nil until trimmed or
	// when the band holds no content.
	Trim *Interval `json:"trim,omitempty"`
	// Cross is the secondary-axis extent to crop.
	Cross Interval `json:"cross"`
}

// Bounds is the primary interval to crop: Trim when present, else Span.
func (r Region) Bounds() Interval {
	if r.Trim != nil {
		return *r.Trim
	}
	return r.Span
}

// Rect is the crop rectangle of r in page space.
func (r Region) Rect() Rect {
	return r.Axis.Compose(r.Bounds(), r.Cross)
}

// Resolver turns question anchors into page regions.
type Resolver struct {
	// Axis is used for pages without an entry in PageAxes.
	Axis Axis
	// PageAxes holds the boundary axis of each page, by page index.
	PageAxes []Axis
	// Lead moves every anchor position back towards the near edge so the
	// label itself lands inside the crop.
	Lead float64
	// Border is kept clear at both ends of a page when a question runs
	// past it.
	Border float64
	// FalseSplit drops the closing region on the next question's page when
	// the next anchor sits closer than this to the near edge. Zero disables.
	FalseSplit float64
	// Padding is added around content when trimming.
	Padding float64
}

func (r *Resolver) axisOf(page int) Axis {
	if page >= 0 && page < len(r.PageAxes) {
		return r.PageAxes[page]
	}
	return r.Axis
}

// Resolve assigns regions to every question in document order. pages must
// be indexed by page number. Pages in blank never receive a region and
// empty or inverted regions are dropped.
func (r *Resolver) Resolve(questions []Question, pages []*Page, blank BlankPageSet) []Question {
	if len(pages) == 0 {
		return questions
	}
	out := make([]Question, len(questions))
	for i, q := range questions {
		q.Regions = nil
		startPage := q.Anchor.PageIndex
		start := r.axisOf(startPage).Primary(q.Anchor.BBox).Start - r.Lead

		var endPage int
		var end float64
		falseSplit := false
		if i+1 < len(questions) {
			next := questions[i+1].Anchor
			endPage = next.PageIndex
			nextPos := r.axisOf(endPage).Primary(next.BBox).Start
			end = nextPos - r.Lead
			falseSplit = nextPos < r.FalseSplit
		} else {
			endPage = len(pages) - 1
			end = r.axisOf(endPage).Extent(pages[endPage]) - r.Border
		}

		for pi := startPage; pi <= endPage && pi < len(pages); pi++ {
			if blank.Contains(pi) {
				continue
			}
			page := pages[pi]
			axis := r.axisOf(pi)
			span := Interval{Start: r.Border, End: axis.Extent(page) - r.Border}
			if pi == startPage {
				span.Start = start
			}
			if pi == endPage {
				if falseSplit {
					log.WithFields(logrus.Fields{"question": q.Key, "page": pi}).Debug("Dropping region before a split at the page edge")
					continue
				}
				span.End = end
			}
			if span.Empty() {
				log.WithFields(logrus.Fields{"question": q.Key, "page": pi}).Debugf("Dropping empty region [%.0f, %.0f]", span.Start, span.End)
				continue
			}
			q.Regions = append(q.Regions, Region{
				PageIndex: pi,
				Axis:      axis,
				Span:      span,
				Cross:     Interval{End: axis.CrossExtent(page)},
			})
		}
		out[i] = q
	}
	return out
}

// Trim tightens every region to the text blocks and drawings it overlaps.
// The result depends only on each region's Span, so trimming twice gives
// the same regions.
func (r *Resolver) Trim(questions []Question, pages []*Page) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		regions := make([]Region, 0, len(q.Regions))
		for _, reg := range q.Regions {
			if reg.PageIndex < 0 || reg.PageIndex >= len(pages) {
				continue
			}
			t := r.TrimRegion(reg, pages[reg.PageIndex])
			if t.Span.Empty() || (t.Trim != nil && t.Trim.Empty()) {
				log.WithFields(logrus.Fields{"question": q.Key, "page": reg.PageIndex}).Debug("Dropping region emptied by trim")
				continue
			}
			regions = append(regions, t)
		}
		q.Regions = regions
		out[i] = q
	}
	return out
}

// TrimRegion computes Trim and Cross for one region of page p.
// The region's own axis decides the direction of the band.
func (r *Resolver) TrimRegion(reg Region, p *Page) Region {
	axis := reg.Axis
	cross := axis.CrossExtent(p)
	band := axis.Compose(reg.Span, Interval{End: cross})

	var found bool
	var box Rect
	for _, group := range [][]Rect{p.Blocks, p.Drawings} {
		for _, b := range group {
			if !b.Intersects(band) {
				continue
			}
			if !found {
				box, found = b, true
				continue
			}
			box = box.Union(b)
		}
	}

	reg.Trim = nil
	if !found {
		reg.Cross = Interval{End: cross}
		return reg
	}
	tight := axis.Primary(box).Pad(r.Padding).Intersect(reg.Span)
	reg.Trim = &tight
	reg.Cross = axis.Secondary(box).Pad(r.Padding).Clamp(0, cross)
	return reg
}
