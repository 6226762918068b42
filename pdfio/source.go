package pdfio

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"question-bank/segment"
)

var log = logrus.New()

// Source loads every page of a document for segmentation.
type Source interface {
	Pages(ctx context.Context, path string) ([]*segment.Page, error)
}

// Config holds the page source configuration
type Config struct {
	// Provider type ("pdf" or "hocr")
	Provider string

	// HOCRSuffix replaces ".pdf" to find the sidecar of a scanned paper.
	// Defaults to ".hocr".
	HOCRSuffix string
}

// NewSource creates a page source based on configuration
func NewSource(config Config) (Source, error) {
	switch config.Provider {
	case "", "pdf":
		log.Debug("Using PDF text layer source")
		return &textLayerSource{}, nil

	case "hocr":
		suffix := config.HOCRSuffix
		if suffix == "" {
			suffix = ".hocr"
		}
		log.WithField("suffix", suffix).Info("Using hOCR sidecar source")
		return &hocrSource{base: &textLayerSource{}, suffix: suffix}, nil

	default:
		return nil, fmt.Errorf("unsupported page source: %s", config.Provider)
	}
}

// SetLogLevel sets the logging level for the pdfio package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}
