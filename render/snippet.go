package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"question-bank/segment"
)

// WriteSnippet cuts crops out of the document at src and writes them, one
// page per crop and in order, to out.
func WriteSnippet(src, out string, crops []segment.Crop) error {
	if len(crops) == 0 {
		return fmt.Errorf("no crops for %s", out)
	}
	if err := ensureDir(out); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "snippet-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	conf := newConfig()
	parts := make([]string, 0, len(crops))
	for i, c := range crops {
		part := filepath.Join(tmpDir, fmt.Sprintf("part%03d.pdf", i))
		if err := api.CollectFile(src, part, []string{strconv.Itoa(c.PageIndex + 1)}, conf); err != nil {
			return fmt.Errorf("error collecting page %d of %s: %w", c.PageIndex, src, err)
		}
		box, err := model.ParseBox(pdfBox(c), types.POINTS)
		if err != nil {
			return fmt.Errorf("error parsing crop box: %w", err)
		}
		if err := api.CropFile(part, part, nil, box, conf); err != nil {
			return fmt.Errorf("error cropping page %d of %s: %w", c.PageIndex, src, err)
		}
		if c.Padded() {
			if err := padPage(part, c); err != nil {
				return fmt.Errorf("error padding page %d of %s: %w", c.PageIndex, src, err)
			}
		}
		parts = append(parts, part)
	}

	if len(parts) == 1 {
		return copyFile(parts[0], out)
	}
	if err := api.MergeCreateFile(parts, out, false, conf); err != nil {
		return fmt.Errorf("error writing %s: %w", out, err)
	}
	log.WithField("pages", len(parts)).Debugf("Wrote snippet %s", out)
	return nil
}

// padPage rewrites the one-page PDF at path onto a page of the crop's
// output size, with the cut placed at the top.
func padPage(path string, c segment.Crop) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	pdf := fpdf.New("P", "pt", "", "")
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: c.OutputWidth, Ht: c.OutputHeight})
	rs := io.ReadSeeker(bytes.NewReader(data))
	importer := gofpdi.NewImporter()
	tpl := importer.ImportPageFromStream(pdf, &rs, 1, "/CropBox")
	importer.UseImportedTemplate(pdf, tpl, 0, 0, c.OutputWidth, 0)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return err
	}
	log.WithField("height", c.OutputHeight).Debug("Padded short snippet page")
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
