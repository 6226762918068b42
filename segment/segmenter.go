package segment

import (
	"math"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogLevel sets the logging level for the segment package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Result is everything derived from one document.
type Result struct {
	Questions []Question
	// Anchors are all labels accepted by the sequence gate, before grouping.
	Anchors []Anchor
	Layouts []Layout
	Blank   BlankPageSet
}

// Segmenter runs the detection pipeline of one profile.
type Segmenter struct {
	profile  Profile
	blank    *BlankDetector
	locator  *Locator
	resolver *Resolver
}

func New(profile Profile) *Segmenter {
	return &Segmenter{
		profile: profile,
		blank:   NewBlankDetector(profile.Blank),
		locator: &Locator{
			Grammar: profile.Grammar,
			Geometry: map[Layout]LayoutGeometry{
				LayoutLegacy:       profile.Legacy,
				LayoutMarginalized: profile.Marginalized,
			},
		},
		resolver: &Resolver{
			Axis:       profile.Legacy.Axis,
			Lead:       profile.Lead,
			Border:     profile.Border,
			FalseSplit: profile.FalseSplit,
			Padding:    profile.Padding,
		},
	}
}

func (s *Segmenter) Profile() Profile  { return s.profile }
func (s *Segmenter) Locator() *Locator { return s.locator }

// Segment splits pages into questions. pages must be indexed by page
// number starting at the cover. On ErrNoQuestions or *OrderError the
// returned Result still carries the layouts, blank pages and anchors found,
// so a caller can draw a diagnostic.
func (s *Segmenter) Segment(pages []*Page) (*Result, error) {
	res := &Result{
		Layouts: make([]Layout, len(pages)),
		Blank:   s.blank.Scan(pages),
	}

	var seq Sequence
	for i, p := range pages {
		res.Layouts[i] = Classify(p, s.profile.MarkerArea, s.profile.MarkerPhrase)
		if res.Blank.Contains(p.Index) {
			continue
		}
		found := s.locator.Locate(p, res.Layouts[i], &seq)
		log.WithFields(logrus.Fields{
			"page":    p.Index,
			"layout":  res.Layouts[i],
			"anchors": len(found),
		}).Debug("Located labels")
	}
	res.Anchors = seq.Anchors()

	questions := Group(res.Anchors, s.profile.Grouping)
	if err := Validate(Anchors(questions)); err != nil {
		res.Questions = questions
		return res, err
	}

	resolver := *s.resolver
	resolver.PageAxes = make([]Axis, len(pages))
	for i, l := range res.Layouts {
		resolver.PageAxes[i] = s.profile.AxisFor(l)
	}
	questions = resolver.Resolve(questions, pages, res.Blank)
	if s.profile.Grouping == GroupByLabel {
		questions = CollapseByBase(questions)
	}
	res.Questions = resolver.Trim(questions, pages)
	return res, nil
}

// CropRect is the rectangle of page p written out for reg, after the
// layout's insets. The insets follow the region's axis.
func (s *Segmenter) CropRect(reg Region, p *Page, layout Layout) Rect {
	inset := s.profile.Geometry(layout).Inset
	primary := reg.Bounds()
	primary.Start += inset.Top
	primary.End -= inset.Bottom
	cross := reg.Cross.Clamp(inset.Left, reg.Axis.CrossExtent(p)-inset.Right)
	return reg.Axis.Compose(primary, cross)
}

// OutputSize is the page size of the snippet cut from crop on page p, as
// the page is displayed, with the height raised to the profile's minimum.
func (s *Segmenter) OutputSize(crop Rect, p *Page) (width, height float64) {
	width, height = displaySize(crop, p.Rotation)
	return width, math.Max(height, s.profile.MinOutputHeight)
}

func displaySize(r Rect, rotation int) (width, height float64) {
	if rot := ((rotation % 360) + 360) % 360; rot == 90 || rot == 270 {
		return r.Height(), r.Width()
	}
	return r.Width(), r.Height()
}

// Crop is the final cut of one region, in page space.
type Crop struct {
	PageIndex int
	Rect      Rect
	// PageHeight and the origin locate page space in PDF user space.
	PageHeight float64
	OriginX    float64
	OriginY    float64
	Rotation   int
	// OutputWidth and OutputHeight are the size of the snippet page. The
	// cut sits at its top and the rest is left blank.
	OutputWidth  float64
	OutputHeight float64
}

// Padded reports whether the output page is taller than the cut.
func (c Crop) Padded() bool {
	_, h := displaySize(c.Rect, c.Rotation)
	return c.OutputHeight > h
}

// Crops returns the cut rectangles of q. A cut never reaches past its
// region; short cuts get a taller output page instead.
func (s *Segmenter) Crops(q Question, pages []*Page, layouts []Layout) []Crop {
	out := make([]Crop, 0, len(q.Regions))
	for _, reg := range q.Regions {
		if reg.PageIndex < 0 || reg.PageIndex >= len(pages) {
			continue
		}
		p := pages[reg.PageIndex]
		layout := LayoutLegacy
		if reg.PageIndex < len(layouts) {
			layout = layouts[reg.PageIndex]
		}
		rect := s.CropRect(reg, p, layout)
		if rect.Empty() {
			log.WithField("page", reg.PageIndex).Debugf("Dropping empty crop for question %s", q.Key)
			continue
		}
		w, h := s.OutputSize(rect, p)
		out = append(out, Crop{
			PageIndex:    reg.PageIndex,
			Rect:         rect,
			PageHeight:   p.Height,
			OriginX:      p.OriginX,
			OriginY:      p.OriginY,
			Rotation:     p.Rotation,
			OutputWidth:  w,
			OutputHeight: h,
		})
	}
	return out
}
