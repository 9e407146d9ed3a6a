// Package ocr recognizes words on page images and fans pages out over a worker pool.
package ocr

import (
	"context"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// Engine recognizes the words of a single page.
type Engine interface {
	Recognize(ctx context.Context, page entity.Page) ([]entity.Word, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, page entity.Page) ([]entity.Word, error)

func (f EngineFunc) Recognize(ctx context.Context, page entity.Page) ([]entity.Word, error) {
	return f(ctx, page)
}

// Config holds tesseract settings shared by the engines.
type Config struct {
	Tesseract   string // binary for the CLI engine
	TessdataDir string
	Language    string
	PageSegMode int
}

// DefaultConfig uses sparse text with orientation detection, which suits
// tabular lab reports better than the default block segmentation.
func DefaultConfig() Config {
	return Config{Tesseract: "tesseract", Language: "eng", PageSegMode: 12}
}
