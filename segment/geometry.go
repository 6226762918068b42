package segment

import "math"

// Rect is an axis-aligned box in page space. The origin is the top-left
// corner of the page and y grows downward.
type Rect struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Intersects reports whether r and o share a region of positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Union returns the smallest rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

// Round snaps every coordinate to the nearest integer.
func (r Rect) Round() Rect {
	return Rect{math.Round(r.X0), math.Round(r.Y0), math.Round(r.X1), math.Round(r.Y1)}
}

// Interval is a closed range on one page axis.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (iv Interval) Len() float64 { return iv.End - iv.Start }

// Empty reports whether the interval is degenerate or inverted.
func (iv Interval) Empty() bool { return iv.End <= iv.Start }

// Contains reports whether o lies within iv.
func (iv Interval) Contains(o Interval) bool {
	return o.Start >= iv.Start && o.End <= iv.End
}

// Intersect returns the overlap of iv and o, which may be empty.
func (iv Interval) Intersect(o Interval) Interval {
	return Interval{Start: math.Max(iv.Start, o.Start), End: math.Min(iv.End, o.End)}
}

// Clamp limits iv to [lo, hi].
func (iv Interval) Clamp(lo, hi float64) Interval {
	return iv.Intersect(Interval{Start: lo, End: hi})
}

// Pad grows iv by d on both ends.
func (iv Interval) Pad(d float64) Interval {
	return Interval{Start: iv.Start - d, End: iv.End + d}
}

// Axis selects which page coordinate question boundaries are measured on.
type Axis int

const (
	// AxisVertical measures boundaries on y; questions run top to bottom.
	AxisVertical Axis = iota
	// AxisHorizontal measures boundaries on x. Mark schemes are stored as
	// rotated landscape pages, so their questions run along x in page space.
	AxisHorizontal
)

func (a Axis) String() string {
	if a == AxisHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Primary projects r onto the boundary axis.
func (a Axis) Primary(r Rect) Interval {
	if a == AxisHorizontal {
		return Interval{Start: r.X0, End: r.X1}
	}
	return Interval{Start: r.Y0, End: r.Y1}
}

// Secondary projects r onto the axis perpendicular to the boundary axis.
func (a Axis) Secondary(r Rect) Interval {
	if a == AxisHorizontal {
		return Interval{Start: r.Y0, End: r.Y1}
	}
	return Interval{Start: r.X0, End: r.X1}
}

// Extent is the page length along the boundary axis.
func (a Axis) Extent(p *Page) float64 {
	if a == AxisHorizontal {
		return p.Width
	}
	return p.Height
}

// CrossExtent is the page length along the secondary axis.
func (a Axis) CrossExtent(p *Page) float64 {
	if a == AxisHorizontal {
		return p.Height
	}
	return p.Width
}

// Compose builds a page rectangle from a primary and a secondary interval.
func (a Axis) Compose(primary, secondary Interval) Rect {
	if a == AxisHorizontal {
		return Rect{X0: primary.Start, Y0: secondary.Start, X1: primary.End, Y1: secondary.End}
	}
	return Rect{X0: secondary.Start, Y0: primary.Start, X1: secondary.End, Y1: primary.End}
}
