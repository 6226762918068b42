package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
)

// printSplitSummary writes a short, coloured report of a split batch.
func printSplitSummary(w io.Writer, s SplitSummary) {
	okColor.Fprintf(w, "%d questions extracted from %d papers\n", s.Questions, s.Papers-len(s.Rejected))
	if s.Removed > 0 {
		warnColor.Fprintf(w, "%d duplicate rows removed\n", s.Removed)
	}
	if len(s.Rejected) > 0 {
		errColor.Fprintf(w, "%d papers rejected:\n", len(s.Rejected))
		for _, p := range s.Rejected {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}
}

// printSortSummary writes a short, coloured report of a sorting run.
func printSortSummary(w io.Writer, s SortSummary) {
	okColor.Fprintf(w, "%d of %d questions sorted into topics\n", s.Sorted, s.Questions)
	if s.Untopical > 0 {
		warnColor.Fprintf(w, "%d questions matched no topic\n", s.Untopical)
	}
	if s.Skipped > 0 {
		errColor.Fprintf(w, "%d questions skipped\n", s.Skipped)
	}
}

// printQuestions lists query results, one snippet per line.
func printQuestions(w io.Writer, records []QuestionRecord) {
	for _, r := range records {
		fmt.Fprintln(w, r.OutputPath)
	}
	okColor.Fprintf(w, "%d matching questions were found\n", len(records))
}
