package render

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Mock concatenates the chosen snippets, in order, into a single paper.
func Mock(snippets []string, out string) error {
	if len(snippets) == 0 {
		return fmt.Errorf("no questions selected")
	}
	if err := ensureDir(out); err != nil {
		return err
	}
	if len(snippets) == 1 {
		return copyFile(snippets[0], out)
	}
	if err := api.MergeCreateFile(snippets, out, false, newConfig()); err != nil {
		return fmt.Errorf("error assembling %s: %w", out, err)
	}
	log.Infof("Assembled %d questions into %s", len(snippets), out)
	return nil
}
