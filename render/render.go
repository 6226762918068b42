package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"question-bank/segment"
)

var log = logrus.New()

// SetLogLevel sets the logging level for the render package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// pdfBox formats the cut of c, given in page space with the origin at the
// top-left of the media box, as a pdfcpu box in PDF user space.
func pdfBox(c segment.Crop) string {
	r := c.Rect
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]",
		c.OriginX+r.X0, c.OriginY+c.PageHeight-r.Y1,
		c.OriginX+r.X1, c.OriginY+c.PageHeight-r.Y0)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", path, err)
	}
	return nil
}
