package pdfio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/text"

	"question-bank/segment"
)

func frag(s string, x, y, w float64, font string) text.TextFragment {
	return text.TextFragment{Text: s, X: x, Y: y, Width: w, Height: 10, FontName: font, FontSize: 10}
}

func TestFrameConvertsToTopLeft(t *testing.T) {
	f := frame{height: 842}

	got := f.bbox(model.BBox{X: 50, Y: 700, Width: 100, Height: 20})
	assert.Equal(t, segment.Rect{X0: 50, Y0: 122, X1: 150, Y1: 142}, got)

	shifted := frame{originX: 10, originY: 20, height: 842}
	assert.Equal(t, segment.Rect{X0: 40, Y0: 122, X1: 140, Y1: 142},
		shifted.bbox(model.BBox{X: 50, Y: 720, Width: 100, Height: 20}))

	span := f.fragment(frag("1", 50, 742, 6, "Arial-BoldMT"))
	assert.Equal(t, segment.Rect{X0: 50, Y0: 92, X1: 56, Y1: 102}, span)
}

func TestBuildSpans(t *testing.T) {
	f := frame{height: 842}
	frags := []text.TextFragment{
		frag("4", 50, 742, 6, "Arial-BoldMT"),
		frag("(a)", 56.5, 742, 12, "Arial-BoldMT"),
		frag("Describe", 75, 742, 40, "ArialMT"),
		frag("the", 117, 742, 15, "ArialMT"),
		frag("test.", 134, 742, 20, "ArialMT"),
		frag("Next", 75, 720, 20, "ArialMT"),
	}
	blocks := []segment.Rect{{X0: 70, Y0: 80, X1: 200, Y1: 130}}

	spans := buildSpans(frags, f, blocks)

	require.Len(t, spans, 3)
	assert.Equal(t, "4(a)", spans[0].Text)
	assert.True(t, spans[0].Bold)
	assert.Equal(t, 1, spans[0].Block, "label sits outside the block")

	assert.Equal(t, "Describe the test.", spans[1].Text)
	assert.False(t, spans[1].Bold)
	assert.Equal(t, 0, spans[1].Block)
	assert.Equal(t, spans[0].Line, spans[1].Line)

	assert.Equal(t, "Next", spans[2].Text)
	assert.Greater(t, spans[2].Line, spans[1].Line, "lower baseline reads later")
	assert.Equal(t, 0, spans[2].Block)
}

func TestBuildSpansSkipsWhitespace(t *testing.T) {
	f := frame{height: 842}
	frags := []text.TextFragment{
		frag("  ", 10, 700, 5, "ArialMT"),
		frag("12", 50, 700, 12, "ArialMT"),
	}

	spans := buildSpans(frags, f, nil)

	require.Len(t, spans, 1)
	assert.Equal(t, "12", spans[0].Text)
	assert.Equal(t, 0, spans[0].Block)
}

func TestIsBold(t *testing.T) {
	assert.True(t, isBold("Helvetica-Bold"))
	assert.True(t, isBold("ABCDEF+Arial-BlackMT"))
	assert.False(t, isBold("TimesNewRomanPSMT"))
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(Config{})
	require.NoError(t, err)
	assert.IsType(t, &textLayerSource{}, src)

	src, err = NewSource(Config{Provider: "hocr"})
	require.NoError(t, err)
	require.IsType(t, &hocrSource{}, src)
	assert.Equal(t, ".hocr", src.(*hocrSource).suffix)

	_, err = NewSource(Config{Provider: "tesseract"})
	assert.Error(t, err)
}
