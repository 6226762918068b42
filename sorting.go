package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// SortSummary counts the outcome of a sorting run.
type SortSummary struct {
	Questions int `json:"questions"`
	Sorted    int `json:"sorted"`
	Untopical int `json:"untopical"`
	Skipped   int `json:"skipped"`
}

// sortQuestions classifies each question against its subject's syllabus
// and copies its snippet into sortedDir/<subject>/<topic>/ for every topic
// the LLM names. Subjects without a syllabus are skipped.
func (app *App) sortQuestions(ctx context.Context, records []QuestionRecord, syllabusDir, sortedDir string) (SortSummary, error) {
	var summary SortSummary
	syllabi := map[string]string{}

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Questions++

		syllabus, ok := syllabi[r.SubjectCode]
		if !ok {
			path, err := findSyllabus(syllabusDir, r.SubjectCode)
			if err != nil {
				log.WithField("subject", r.SubjectCode).Warnf("Syllabus not found, skipping subject: %v", err)
			} else if data, err := os.ReadFile(path); err != nil {
				log.WithField("subject", r.SubjectCode).Warnf("Could not read syllabus: %v", err)
			} else {
				syllabus = string(data)
				log.WithField("subject", r.SubjectCode).Infof("Loaded syllabus from %s", filepath.Base(path))
			}
			syllabi[r.SubjectCode] = syllabus
		}
		if syllabus == "" {
			summary.Skipped++
			continue
		}

		text := r.Text
		if strings.TrimSpace(text) == "" {
			var err error
			if text, err = snippetText(r.OutputPath); err != nil || strings.TrimSpace(text) == "" {
				log.WithField("path", r.OutputPath).Warnf("Could not extract text, skipping: %v", err)
				summary.Skipped++
				continue
			}
		}

		topics, err := app.getSuggestedTopics(ctx, r.SubjectCode, syllabus, text)
		if err != nil {
			log.WithField("path", r.OutputPath).Errorf("Topic classification failed: %v", err)
			summary.Skipped++
			continue
		}
		if len(topics) == 0 {
			log.WithField("path", r.OutputPath).Info("No topics found")
			summary.Untopical++
			continue
		}

		for _, topic := range topics {
			dst := filepath.Join(sortedDir, r.SubjectCode, topic, sortedFileName(r.OutputPath))
			if err := copySnippet(r.OutputPath, dst); err != nil {
				log.WithField("path", r.OutputPath).Errorf("Could not copy to %s: %v", dst, err)
				continue
			}
		}
		log.WithField("path", r.OutputPath).Infof("Found topics: %v", topics)
		summary.Sorted++
	}
	return summary, nil
}

// findSyllabus returns the first *_syllabus.txt file in dir/subjectCode.
func findSyllabus(dir, subjectCode string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, subjectCode, "*_syllabus.txt"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no *_syllabus.txt in %s", filepath.Join(dir, subjectCode))
	}
	return matches[0], nil
}

// sortedFileName prefixes a snippet's name with its folder so snippets of
// different papers do not clash inside one topic.
func sortedFileName(path string) string {
	parent := filepath.Base(filepath.Dir(path))
	if parent == "." || parent == string(filepath.Separator) {
		return filepath.Base(path)
	}
	return parent + "_" + filepath.Base(path)
}

func copySnippet(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// snippetText extracts the text of every page of a snippet.
func snippetText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var sb strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("error reading page %d: %w", n, err)
		}
		sb.WriteString(text)
	}
	return strings.TrimSpace(sb.String()), nil
}
