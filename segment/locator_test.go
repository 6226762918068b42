package segment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(text string, x0, y0, x1, y1 float64) Span {
	return Span{Text: text, BBox: Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}}
}

func label(text string, y float64) Span {
	return span(text, 10, y, 20, y+10)
}

func testPage(index int, spans ...Span) *Page {
	return &Page{Index: index, Width: 600, Height: 800, Spans: spans}
}

func testLocator() *Locator {
	return &Locator{
		Grammar: Grammar{},
		Geometry: map[Layout]LayoutGeometry{
			LayoutLegacy:       {Search: Area{X0: 0, Y0: 0, X1: 60}},
			LayoutMarginalized: {Search: Area{X0: 0, Y0: 60, X1: 60, Y1: 770}},
		},
	}
}

func TestLocateSequenceGate(t *testing.T) {
	loc := testLocator()
	page := testPage(1,
		label("1", 100),
		label("2", 200),
		label("4", 300),
		label("2(a)", 350),
		label("3", 400),
		span("3", 300, 500, 310, 510), // outside the margin
	)

	var seq Sequence
	got := loc.Locate(page, LayoutLegacy, &seq)

	var labels []string
	for _, a := range got {
		labels = append(labels, a.RawLabel)
	}
	assert.Equal(t, []string{"1", "2", "2(a)", "3"}, labels)
	assert.Equal(t, 4, seq.Len())
	assert.True(t, Valid(seq.Anchors()))
}

func TestLocateThreadsSequenceAcrossPages(t *testing.T) {
	loc := testLocator()
	var seq Sequence

	first := loc.Locate(testPage(1, label("1", 100), label("2", 400)), LayoutLegacy, &seq)
	require.Len(t, first, 2)

	// 1 on the next page is a stray and 3 continues the sequence.
	second := loc.Locate(testPage(2, label("1", 50), label("3", 120)), LayoutLegacy, &seq)
	require.Len(t, second, 1)
	assert.Equal(t, 3, second[0].BaseNumber)
	assert.Equal(t, 2, second[0].PageIndex)
}

func TestLocateRoundsBoxAndKeepsRawLabel(t *testing.T) {
	loc := testLocator()
	page := testPage(3, Span{Text: " 4(a)(ii) ", BBox: Rect{X0: 10.4, Y0: 99.6, X1: 30.5, Y1: 110.2}})

	var seq Sequence
	got := loc.Locate(page, LayoutLegacy, &seq)

	require.Len(t, got, 1)
	assert.Equal(t, Anchor{
		RawLabel:   "4(a)(ii)",
		BaseNumber: 4,
		PageIndex:  3,
		BBox:       Rect{X0: 10, Y0: 100, X1: 31, Y1: 110},
	}, got[0])
}

func TestLocateUsesLayoutSearchRect(t *testing.T) {
	loc := testLocator()
	page := testPage(1, label("1", 30), label("2", 100))

	var seq Sequence
	got := loc.Locate(page, LayoutMarginalized, &seq)

	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].RawLabel)
}

func TestLocateRequireBold(t *testing.T) {
	loc := testLocator()
	loc.Grammar.RequireBold = true
	bold := label("2", 200)
	bold.Bold = true
	page := testPage(1, label("1", 100), bold)

	var seq Sequence
	got := loc.Locate(page, LayoutLegacy, &seq)

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].BaseNumber)
}

func TestValidate(t *testing.T) {
	anchors := func(bases ...int) []Anchor {
		out := make([]Anchor, len(bases))
		for i, b := range bases {
			out[i] = Anchor{BaseNumber: b, RawLabel: string(rune('0' + b))}
		}
		return out
	}

	tests := []struct {
		name    string
		bases   []int
		wantErr bool
		index   int
	}{
		{name: "Ascending", bases: []int{1, 2, 3}},
		{name: "Repeats allowed", bases: []int{1, 1, 2, 2, 3}},
		{name: "Skip rejected", bases: []int{1, 2, 4}, wantErr: true, index: 2},
		{name: "Decrease rejected", bases: []int{1, 2, 1}, wantErr: true, index: 2},
		{name: "Single anchor", bases: []int{5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(anchors(tc.bases...))
			if !tc.wantErr {
				assert.NoError(t, err)
				assert.True(t, Valid(anchors(tc.bases...)))
				return
			}
			var orderErr *OrderError
			require.True(t, errors.As(err, &orderErr))
			assert.Equal(t, tc.index, orderErr.Index)
			assert.Equal(t, tc.bases[tc.index], orderErr.Offending.BaseNumber)
			assert.Equal(t, tc.bases[tc.index-1], orderErr.Prior.BaseNumber)
			assert.False(t, Valid(anchors(tc.bases...)))
		})
	}

	t.Run("Empty list", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil), ErrNoQuestions)
	})
}

func TestGroup(t *testing.T) {
	anchors := []Anchor{
		{RawLabel: "1(a)", BaseNumber: 1},
		{RawLabel: "1(b)", BaseNumber: 1},
		{RawLabel: "2", BaseNumber: 2},
		{RawLabel: "2(a)", BaseNumber: 2},
	}

	byBase := Group(anchors, GroupByBase)
	require.Len(t, byBase, 2)
	assert.Equal(t, "1", byBase[0].Key)
	assert.Equal(t, "1(a)", byBase[0].Anchor.RawLabel)
	assert.Equal(t, "2", byBase[1].Key)

	byLabel := Group(anchors, GroupByLabel)
	require.Len(t, byLabel, 4)
	assert.Equal(t, "1(b)", byLabel[1].Key)
}

func TestCollapseByBase(t *testing.T) {
	questions := []Question{
		{Key: "4(a)", BaseNumber: 4, Regions: []Region{{PageIndex: 2, Span: Interval{100, 300}}}},
		{Key: "4(b)", BaseNumber: 4, Regions: []Region{
			{PageIndex: 2, Span: Interval{300, 800}},
			{PageIndex: 3, Span: Interval{0, 200}},
		}},
		{Key: "5", BaseNumber: 5, Regions: []Region{{PageIndex: 3, Span: Interval{200, 800}}}},
	}

	got := CollapseByBase(questions)

	require.Len(t, got, 2)
	assert.Equal(t, "4", got[0].Key)
	assert.Equal(t, []Region{
		{PageIndex: 2, Span: Interval{100, 800}},
		{PageIndex: 3, Span: Interval{0, 200}},
	}, got[0].Regions)
	assert.Equal(t, "5", got[1].Key)
	// The input is left untouched.
	assert.Equal(t, Interval{100, 300}, questions[0].Regions[0].Span)
}
