package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func withoutColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = original })
}

func TestPrintSplitSummary(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	printSplitSummary(&buf, SplitSummary{
		Papers:    3,
		Rejected:  []string{"papers/0620_s21_qp_13.pdf"},
		Questions: 18,
		Removed:   2,
	})

	assert.Equal(t, "18 questions extracted from 2 papers\n"+
		"2 duplicate rows removed\n"+
		"1 papers rejected:\n"+
		"  - papers/0620_s21_qp_13.pdf\n", buf.String())
}

func TestPrintSortSummary(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	printSortSummary(&buf, SortSummary{Questions: 5, Sorted: 5})
	assert.Equal(t, "5 of 5 questions sorted into topics\n", buf.String())

	buf.Reset()
	printSortSummary(&buf, SortSummary{Questions: 5, Sorted: 2, Untopical: 1, Skipped: 2})
	assert.Contains(t, buf.String(), "1 questions matched no topic")
	assert.Contains(t, buf.String(), "2 questions skipped")
}

func TestPrintQuestions(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	printQuestions(&buf, sampleRecords()[:2])
	assert.Equal(t, "out/0620/0620_S21_12/Q1.pdf\nout/0620/0620_S21_12/Q2.pdf\n2 matching questions were found\n", buf.String())
}
