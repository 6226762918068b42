package segment

// Layout is the margin convention a page is printed with.
type Layout int

const (
	// LayoutLegacy is the older format with question numbers in a wide,
	// fixed band.
	LayoutLegacy Layout = iota
	// LayoutMarginalized is the newer format that prints "DO NOT WRITE IN
	// THIS MARGIN" down the page edge and keeps numbers in a narrow strip.
	LayoutMarginalized
)

func (l Layout) String() string {
	if l == LayoutMarginalized {
		return "marginalized"
	}
	return "legacy"
}

// MarginPhrase marks pages printed in the marginalized layout.
const MarginPhrase = "DO NOT WRITE IN THIS MARGIN"

// Area is a rectangle template resolved against a concrete page. A zero X1
// or Y1 stands for the page's right or bottom edge.
type Area struct {
	X0 float64 `yaml:"x0" json:"x0"`
	Y0 float64 `yaml:"y0" json:"y0"`
	X1 float64 `yaml:"x1" json:"x1"`
	Y1 float64 `yaml:"y1" json:"y1"`
}

// On resolves a against page p.
func (a Area) On(p *Page) Rect {
	r := Rect{X0: a.X0, Y0: a.Y0, X1: a.X1, Y1: a.Y1}
	if r.X1 == 0 {
		r.X1 = p.Width
	}
	if r.Y1 == 0 {
		r.Y1 = p.Height
	}
	return r
}

// Insets trims a crop rectangle on the secondary axis (Left, Right) and
// on the primary axis (Top, Bottom).
type Insets struct {
	Left   float64 `yaml:"left" json:"left"`
	Right  float64 `yaml:"right" json:"right"`
	Top    float64 `yaml:"top" json:"top"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
}

// LayoutGeometry is everything that depends on a page's layout.
type LayoutGeometry struct {
	// Search is where question labels are looked for.
	Search Area `yaml:"search" json:"search"`
	// Inset is applied to every crop taken from a page in this layout.
	Inset Insets `yaml:"inset" json:"inset"`
	// Axis is the direction question labels advance in on such pages.
	Axis Axis `yaml:"axis" json:"axis"`
}

// Classify decides the layout of page p. The page is marginalized when the
// marker phrase occurs at least once inside the marker area; everything
// else, including pages without text, is legacy.
func Classify(p *Page, marker Area, phrase string) Layout {
	if phrase == "" {
		phrase = MarginPhrase
	}
	if p.CountIn(marker.On(p), phrase) >= 1 {
		return LayoutMarginalized
	}
	return LayoutLegacy
}
