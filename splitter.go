package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/sirupsen/logrus"

	"question-bank/render"
	"question-bank/segment"
)

// writeSnippet cuts one question out of a paper.
var writeSnippet = render.WriteSnippet

// SplitSummary counts the outcome of a batch.
type SplitSummary struct {
	Papers    int      `json:"papers"`
	Rejected  []string `json:"rejected"`
	Questions int      `json:"questions"`
	Removed   int64    `json:"duplicates_removed"`
}

// splitAll splits every paper under root, one at a time. A paper that
// cannot be read or segmented is logged and skipped. Duplicate rows are
// cleared once the batch is done.
func (app *App) splitAll(ctx context.Context, root, marker string) (SplitSummary, error) {
	var summary SplitSummary
	papers, err := crawlPapers(root, marker)
	if err != nil {
		return summary, err
	}

	for i, path := range papers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		n, err := app.splitPaper(ctx, path)
		summary.Papers++
		if err != nil {
			log.WithField("path", path).Errorf("Skipping paper: %v", err)
			summary.Rejected = append(summary.Rejected, path)
			continue
		}
		summary.Questions += n
		log.Infof("%s loaded into database: %d/%d", filepath.Base(path), i+1, len(papers))
	}

	removed, err := ClearDuplicates(app.Database)
	if err != nil {
		return summary, fmt.Errorf("error clearing duplicates: %w", err)
	}
	summary.Removed = removed
	return summary, nil
}

// splitPaper segments one paper, writes a snippet per question and records
// them in the side-table. It returns the number of snippets written.
func (app *App) splitPaper(ctx context.Context, path string) (int, error) {
	info, err := parsePaperInfo(path)
	if err != nil {
		return 0, err
	}
	plog := paperLogger(info)

	profile, err := app.Profiles.ForVariant(info.Kind)
	if err != nil {
		return 0, err
	}
	tmpl, err := app.nameTemplate(profile)
	if err != nil {
		return 0, err
	}

	pages, err := app.Source.Pages(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("error loading pages: %w", err)
	}

	seg := segment.New(profile)
	res, err := seg.Segment(pages)
	if err != nil {
		app.writeRejectionDiagnostic(path, info, seg, pages, res, err)
		return 0, err
	}
	plog.WithField("blank_pages", res.Blank.Sorted()).Debugf("Found %d questions", len(res.Questions))

	var records []QuestionRecord
	var overlays []render.CropOverlay
	var writeErrs []error
	for _, q := range res.Questions {
		crops := seg.Crops(q, pages, res.Layouts)
		if len(crops) == 0 {
			plog.Warnf("Question %s has no region, skipping", q.Label())
			continue
		}
		overlays = append(overlays, render.CropOverlay{Label: q.Label(), Anchor: q.Anchor, Crops: crops})

		out, err := renderSnippetPath(tmpl, app.OutputDir, info, q.Label())
		if err != nil {
			plog.Errorf("Could not name question %s: %v", q.Label(), err)
			writeErrs = append(writeErrs, fmt.Errorf("question %s: %w", q.Label(), err))
			continue
		}
		if err := writeSnippet(path, out, crops); err != nil {
			plog.Errorf("Could not write question %s: %v", q.Label(), err)
			writeErrs = append(writeErrs, fmt.Errorf("question %s: %w", q.Label(), err))
			continue
		}
		records = append(records, QuestionRecord{
			SubjectCode: info.SubjectCode,
			Year:        info.Year,
			Season:      info.Season,
			Paper:       info.Paper,
			Variant:     info.Variant,
			Kind:        info.Kind,
			Question:    q.Label(),
			OutputPath:  out,
			Text:        segment.QuestionText(q, pages),
		})
	}

	if app.DebugDir != "" {
		out := filepath.Join(app.DebugDir, fmt.Sprintf("DEBUG_CROP_AREAS_%s.pdf", info.Name))
		if err := render.WriteCropAreas(path, pages, overlays, out); err != nil {
			plog.Warnf("Could not write crop areas: %v", err)
		}
	}

	if len(records) == 0 && len(writeErrs) > 0 {
		return 0, fmt.Errorf("no question could be written: %w", errors.Join(writeErrs...))
	}

	if err := InsertQuestions(app.Database, records); err != nil {
		return 0, fmt.Errorf("error recording questions: %w", err)
	}
	plog.WithFields(logrus.Fields{"questions": len(records)}).Info("Paper split")
	return len(records), nil
}

// writeRejectionDiagnostic draws why a paper was rejected into DebugDir.
func (app *App) writeRejectionDiagnostic(path string, info PaperInfo, seg *segment.Segmenter, pages []*segment.Page, res *segment.Result, cause error) {
	plog := paperLogger(info)
	if app.DebugDir == "" || res == nil {
		return
	}

	var oe *segment.OrderError
	switch {
	case errors.As(cause, &oe):
		d, err := render.OrderDiagnostic(seg.Locator(), pages, res.Layouts, oe)
		if err != nil {
			plog.Warnf("Could not build order diagnostic: %v", err)
			return
		}
		out := filepath.Join(app.DebugDir, fmt.Sprintf("DEBUG_ORDER_ERROR_%s_PAGE_%d.png", info.Name, oe.Offending.PageIndex))
		if err := render.WriteDiagnostic(path, d, out); err != nil {
			plog.Warnf("Could not write diagnostic: %v", err)
		}

	case errors.Is(cause, segment.ErrNoQuestions):
		for i, p := range pages {
			if res.Blank.Contains(p.Index) {
				continue
			}
			d := render.PageDiagnostic(seg.Locator(), p, res.Layouts[i], res.Anchors, cause.Error())
			out := filepath.Join(app.DebugDir, fmt.Sprintf("DEBUG_NO_QUESTIONS_FOUND_%s.png", info.Name))
			if err := render.WriteDiagnostic(path, d, out); err != nil {
				plog.Warnf("Could not write diagnostic: %v", err)
			}
			return
		}
	}
}

// nameTemplate returns the parsed output name template of profile.
func (app *App) nameTemplate(profile segment.Profile) (*template.Template, error) {
	app.namesMu.Lock()
	defer app.namesMu.Unlock()
	if app.names == nil {
		app.names = make(map[string]*template.Template)
	}
	if tmpl, ok := app.names[profile.Variant]; ok {
		return tmpl, nil
	}
	text := profile.NameTemplate
	if filenameTemplate != "" {
		text = filenameTemplate
	}
	tmpl, err := parseNameTemplate(profile.Variant, text)
	if err != nil {
		return nil, err
	}
	app.names[profile.Variant] = tmpl
	return tmpl, nil
}
