package segment

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile holds every tunable of one document variant.
type Profile struct {
	Name string `yaml:"name"`
	// Variant is the file-name marker that selects this profile ("qp", "ms").
	Variant string `yaml:"variant"`

	MarkerPhrase string         `yaml:"marker_phrase"`
	MarkerArea   Area           `yaml:"marker_area"`
	Legacy       LayoutGeometry `yaml:"legacy"`
	Marginalized LayoutGeometry `yaml:"marginalized"`

	Grammar  Grammar    `yaml:"grammar"`
	Grouping GroupMode  `yaml:"grouping"`
	Blank    BlankRules `yaml:"blank"`

	Lead       float64 `yaml:"lead"`
	Border     float64 `yaml:"border"`
	FalseSplit float64 `yaml:"false_split"`
	Padding    float64 `yaml:"padding"`

	// MinOutputHeight is the smallest page height written for a snippet.
	MinOutputHeight float64 `yaml:"min_output_height"`
	// NameTemplate renders the output path of a question, relative to the
	// output directory.
	NameTemplate string `yaml:"name_template"`
}

// Geometry returns the layout-dependent settings for l.
func (p Profile) Geometry(l Layout) LayoutGeometry {
	if l == LayoutMarginalized {
		return p.Marginalized
	}
	return p.Legacy
}

// AxisFor returns the boundary axis of pages in layout l.
func (p Profile) AxisFor(l Layout) Axis {
	return p.Geometry(l).Axis
}

var qualitativeNotes = ConditionalMarker{
	Title:    "Qualitative analysis notes",
	Sentence: "Qualitative analysis notes.",
}

// DefaultQuestionPaperProfile is tuned for question papers.
func DefaultQuestionPaperProfile() Profile {
	return Profile{
		Name:         "question_paper",
		Variant:      "qp",
		MarkerPhrase: MarginPhrase,
		Legacy: LayoutGeometry{
			Search: Area{X0: 0, Y0: 50, X1: 60},
		},
		Marginalized: LayoutGeometry{
			Search: Area{X0: 0, Y0: 60, X1: 60, Y1: 770},
			Inset:  Insets{Left: 25, Right: 25, Top: 9, Bottom: 2},
		},
		Grammar:  Grammar{MaxParts: 2, Ordered: true},
		Grouping: GroupByBase,
		Blank: BlankRules{
			Markers: []string{
				"BLANK PAGE",
				"ADDITIONAL PAGE",
				"Mathematical Formulae",
				"TURN PAGE FOR QUESTION",
				"printed on the next page",
				"The Periodic Table of Elements",
				"starts on the next page.",
				"Note for use in qualitative analysis",
				"Important values, constants and standards",
			},
			Conditional: []ConditionalMarker{qualitativeNotes},
		},
		Lead:            10,
		Border:          50,
		FalseSplit:      75,
		Padding:         10,
		MinOutputHeight: 90,
		NameTemplate:    "{{.SubjectCode}}/{{.Name}}/Q{{.Label}}.pdf",
	}
}

// DefaultMarkSchemeProfile is tuned for mark schemes.
func DefaultMarkSchemeProfile() Profile {
	return Profile{
		Name:         "mark_scheme",
		Variant:      "ms",
		MarkerPhrase: MarginPhrase,
		MarkerArea:   Area{X0: 574},
		// Legacy mark schemes are rotated landscape pages whose labels run
		// along x; marginalized ones are upright with labels down the left strip.
		Legacy: LayoutGeometry{
			Search: Area{X0: 50, Y0: 735, X1: 450, Y1: 790},
			Axis:   AxisHorizontal,
		},
		Marginalized: LayoutGeometry{
			Search: Area{X0: 0, Y0: 60, X1: 60, Y1: 770},
			Axis:   AxisVertical,
		},
		Grammar:  Grammar{},
		Grouping: GroupByLabel,
		Blank: BlankRules{
			Markers: []string{
				"GENERIC MARKING PRINCIPLE",
				"Science-Specific Marking Principles",
				"Calculation specific guidance",
			},
			Conditional: []ConditionalMarker{qualitativeNotes},
		},
		Padding:      10,
		NameTemplate: "{{.SubjectCode}}/{{.Year}}/{{.Name}}-MS-{{.Label}}.pdf",
	}
}

// ProfileSet is the full configuration file.
type ProfileSet struct {
	QuestionPaper Profile `yaml:"question_paper"`
	MarkScheme    Profile `yaml:"mark_scheme"`
}

// DefaultProfiles returns the built-in profiles.
func DefaultProfiles() ProfileSet {
	return ProfileSet{
		QuestionPaper: DefaultQuestionPaperProfile(),
		MarkScheme:    DefaultMarkSchemeProfile(),
	}
}

// ForVariant returns the profile whose variant marker is v.
func (s ProfileSet) ForVariant(v string) (Profile, error) {
	switch strings.ToLower(v) {
	case s.QuestionPaper.Variant:
		return s.QuestionPaper, nil
	case s.MarkScheme.Variant:
		return s.MarkScheme, nil
	default:
		return Profile{}, fmt.Errorf("no profile for variant %q", v)
	}
}

// ParseProfiles overlays YAML data on the built-in profiles. Keys absent
// from data keep their default values.
func ParseProfiles(data []byte) (ProfileSet, error) {
	set := DefaultProfiles()
	if err := yaml.Unmarshal(data, &set); err != nil {
		return ProfileSet{}, fmt.Errorf("error parsing profiles: %w", err)
	}
	return set, nil
}

// LoadProfiles reads a profile file from disk.
func LoadProfiles(path string) (ProfileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProfileSet{}, fmt.Errorf("error reading profiles %s: %w", path, err)
	}
	return ParseProfiles(data)
}

// MarshalProfiles renders set as YAML.
func MarshalProfiles(set ProfileSet) ([]byte, error) {
	return yaml.Marshal(set)
}

func (a Axis) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

func (a *Axis) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(value.Value)) {
	case "vertical", "":
		*a = AxisVertical
	case "horizontal":
		*a = AxisHorizontal
	default:
		return fmt.Errorf("line %d: unknown axis %q", value.Line, value.Value)
	}
	return nil
}

func (m GroupMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

func (m *GroupMode) UnmarshalYAML(value *yaml.Node) error {
	mode, err := ParseGroupMode(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = mode
	return nil
}
