package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// crawlPapers lists the PDFs under root whose path contains marker (e.g.
// "qp" or "ms"), sorted by path. An empty marker accepts every PDF. A root
// that is a file is returned as-is.
func crawlPapers(root, marker string) ([]string, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", root, err)
	}
	if !st.IsDir() {
		if err := checkPDF(root); err != nil {
			return nil, err
		}
		return []string{root}, nil
	}

	var papers []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		if marker != "" && !strings.Contains(strings.ToLower(path), strings.ToLower(marker)) {
			return nil
		}
		if err := checkPDF(path); err != nil {
			log.Warnf("Skipping %s: %v", path, err)
			return nil
		}
		papers = append(papers, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	sort.Strings(papers)
	log.Debugf("Found %d papers under %s", len(papers), root)
	return papers, nil
}

func checkPDF(path string) error {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("error detecting file type: %w", err)
	}
	if !mt.Is("application/pdf") {
		return fmt.Errorf("not a PDF (%s)", mt.String())
	}
	return nil
}
