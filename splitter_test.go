package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"question-bank/segment"
)

// stubSource serves the same synthetic pages for every path.
type stubSource struct {
	pages func() []*segment.Page
	calls []string
}

func (s *stubSource) Pages(ctx context.Context, path string) ([]*segment.Page, error) {
	s.calls = append(s.calls, path)
	return s.pages(), nil
}

func labelSpan(text string, y float64) segment.Span {
	return segment.Span{Text: text, BBox: segment.Rect{X0: 10, Y0: y, X1: 20, Y1: y + 12}}
}

func stubPages(labels ...[]segment.Span) func() []*segment.Page {
	return func() []*segment.Page {
		pages := []*segment.Page{{Index: 0, Width: 600, Height: 800}}
		for i, spans := range labels {
			pages = append(pages, &segment.Page{Index: i + 1, Width: 600, Height: 800, Spans: spans})
		}
		return pages
	}
}

func plainQuestionPaper() segment.ProfileSet {
	set := segment.DefaultProfiles()
	qp := set.QuestionPaper
	qp.Legacy = segment.LayoutGeometry{Search: segment.Area{X1: 60}}
	qp.Lead, qp.Border, qp.FalseSplit = 0, 0, 0
	set.QuestionPaper = qp
	return set
}

func TestSplitAllRejectsPapers(t *testing.T) {
	tests := []struct {
		name  string
		pages func() []*segment.Page
	}{
		{
			name:  "no questions",
			pages: stubPages([]segment.Span{{Text: "Answer all questions.", BBox: segment.Rect{X0: 100, Y0: 100, X1: 300, Y1: 112}}}),
		},
		{
			name: "snippets cannot be written",
			// The stored PDF has no page tree, so every crop fails.
			pages: stubPages([]segment.Span{labelSpan("1", 100), labelSpan("2", 400)}),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			app.Profiles = plainQuestionPaper()
			src := &stubSource{pages: tc.pages}
			app.Source = src

			paper := filepath.Join(app.PapersDir, "0620", "0620_s21_qp_12.pdf")
			writeFile(t, paper, minimalPDF)
			writeFile(t, filepath.Join(app.PapersDir, "0620", "0620_s21_ms_12.pdf"), minimalPDF)

			summary, err := app.splitAll(context.Background(), app.PapersDir, "qp")
			require.NoError(t, err)
			assert.Equal(t, 1, summary.Papers)
			assert.Equal(t, []string{paper}, summary.Rejected)
			assert.Equal(t, 0, summary.Questions)
			assert.Equal(t, []string{paper}, src.calls, "only question papers are read")

			records, err := GetAllQuestions(app.Database)
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestSplitPaperUnknownName(t *testing.T) {
	app := newTestApp(t)
	app.Source = &stubSource{pages: stubPages()}

	_, err := app.splitPaper(context.Background(), filepath.Join(app.PapersDir, "notes.pdf"))
	assert.Error(t, err)
}

func TestSplitAllHonoursCancellation(t *testing.T) {
	app := newTestApp(t)
	app.Source = &stubSource{pages: stubPages()}
	writeFile(t, filepath.Join(app.PapersDir, "0620_s21_qp_12.pdf"), minimalPDF)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := app.splitAll(ctx, app.PapersDir, "qp")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitPaperKeepsQuestionsAfterNamingFailure(t *testing.T) {
	app := newTestApp(t)
	set := plainQuestionPaper()
	set.QuestionPaper.NameTemplate = `{{if eq .Label "2"}}../escape{{else}}{{.SubjectCode}}/Q{{.Label}}{{end}}.pdf`
	app.Profiles = set
	app.Source = &stubSource{pages: stubPages([]segment.Span{labelSpan("1", 100), labelSpan("2", 400), labelSpan("3", 600)})}

	var written []string
	original := writeSnippet
	writeSnippet = func(src, out string, crops []segment.Crop) error {
		written = append(written, out)
		return nil
	}
	t.Cleanup(func() { writeSnippet = original })

	paper := filepath.Join(app.PapersDir, "0620_s21_qp_12.pdf")
	writeFile(t, paper, minimalPDF)

	n, err := app.splitPaper(context.Background(), paper)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		filepath.Join(app.OutputDir, "0620", "Q1.pdf"),
		filepath.Join(app.OutputDir, "0620", "Q3.pdf"),
	}, written)

	records, err := GetAllQuestions(app.Database)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].Question)
	assert.Equal(t, "3", records[1].Question)
}
