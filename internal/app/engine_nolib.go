//go:build !tesseract

package app

import (
	"log/slog"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr"
)

func newLibEngine(ocr.Config, *slog.Logger) (ocr.Engine, error) {
	return nil, common.NewAppError("CONFIG_ERROR", "OCR_ENGINE=lib needs a build with -tags tesseract", common.ErrInvalidInput)
}
