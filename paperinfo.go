package main

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

var subjectCodePattern = regexp.MustCompile(`\d{4}`)

// PaperInfo is what a past paper's file name says about it, e.g.
// 0620_s21_qp_12.pdf is subject 0620, summer 2021, question paper,
// paper 1 variant 2.
type PaperInfo struct {
	SubjectCode string `json:"subject_code"`
	Year        string `json:"year"`
	Season      string `json:"season"`
	Kind        string `json:"kind"` // "qp" or "ms"
	Paper       string `json:"paper"`
	Variant     string `json:"variant"`
	// Name identifies the paper across its question paper and mark scheme.
	Name string `json:"name"`
	// Base is the file name without extension.
	Base string `json:"base"`
}

// parsePaperInfo reads paper details from a file name of the form
// <subject>_<season><yy>_<kind>_<paper><variant>.pdf. Names that do not
// follow it still yield a subject code when one is present and keep the
// bare file name as Name.
func parsePaperInfo(path string) (PaperInfo, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := PaperInfo{Base: base, Name: base}

	tokens := strings.Split(strings.ToUpper(base), "_")
	if len(tokens) >= 4 && len(tokens[1]) >= 2 && len(tokens[3]) >= 1 {
		info.SubjectCode = tokens[0]
		info.Season = tokens[1][:1]
		info.Year = "20" + tokens[1][1:]
		info.Kind = strings.ToLower(tokens[2])
		info.Paper = tokens[3][:1]
		info.Variant = tokens[3][1:]
		info.Name = fmt.Sprintf("%s_%s_%s", tokens[0], tokens[1], tokens[3])
		return info, nil
	}

	if m := subjectCodePattern.FindString(base); m != "" {
		info.SubjectCode = m
		info.Kind = kindFromPath(path)
		return info, nil
	}
	return info, fmt.Errorf("cannot read paper details from %q", filepath.Base(path))
}

// kindFromPath guesses qp or ms from a marker anywhere in the path.
func kindFromPath(path string) string {
	lower := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(lower, "ms"):
		return "ms"
	case strings.Contains(lower, "qp"):
		return "qp"
	default:
		return ""
	}
}

// paperLogger returns a log entry carrying the paper's identity.
func paperLogger(info PaperInfo) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"paper":   info.Name,
		"subject": info.SubjectCode,
		"variant": info.Kind,
	})
}
