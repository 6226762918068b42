package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// snippetName is the data available to output name templates.
type snippetName struct {
	PaperInfo
	Label string
}

func parseNameTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid name template %q: %w", name, err)
	}
	return tmpl, nil
}

// renderSnippetPath executes tmpl for one question and joins the result
// onto outputDir. Names that escape outputDir are rejected.
func renderSnippetPath(tmpl *template.Template, outputDir string, info PaperInfo, label string) (string, error) {
	var buf bytes.Buffer
	data := snippetName{PaperInfo: info, Label: strings.NewReplacer("/", "_", "\\", "_").Replace(label)}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing name template: %w", err)
	}
	name := strings.TrimSpace(buf.String())
	if name == "" {
		return "", fmt.Errorf("name template produced an empty name")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("name %q must be relative", name)
	}
	rel := filepath.Clean(filepath.FromSlash(name))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("name %q escapes the output directory", name)
	}
	if !strings.EqualFold(filepath.Ext(rel), ".pdf") {
		rel += ".pdf"
	}
	return filepath.Join(outputDir, rel), nil
}
