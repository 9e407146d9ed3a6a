//go:build tesseract

package app

import (
	"log/slog"

	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr/tesseractlib"
)

func newLibEngine(cfg ocr.Config, logger *slog.Logger) (ocr.Engine, error) {
	return tesseractlib.New(cfg, logger), nil
}
