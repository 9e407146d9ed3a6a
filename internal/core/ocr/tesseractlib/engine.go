//go:build tesseract

// Package tesseractlib recognizes pages in-process through the tesseract C API.
// It needs cgo and the tesseract/leptonica headers, so it only builds with
// -tags tesseract.
package tesseractlib

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// Engine is an ocr.Engine backed by gosseract. Each page gets its own client,
// so one Engine is safe for the worker pool.
type Engine struct {
	cfg    ocr.Config
	logger *slog.Logger
}

// New creates a library engine.
func New(cfg ocr.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Engine{cfg: cfg, logger: logger}
}

type outcome struct {
	words []entity.Word
	err   error
}

// Recognize runs tesseract on the page. The C call cannot be interrupted, so on
// cancellation the result is abandoned and the client closes when it returns.
func (e *Engine) Recognize(ctx context.Context, page entity.Page) ([]entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan outcome, 1)
	go func() {
		words, err := e.recognize(page)
		done <- outcome{words: words, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.words, o.err
	}
}

func (e *Engine) recognize(page entity.Page) ([]entity.Word, error) {
	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			e.logger.Warn("failed to close tesseract client", "page_id", page.ID, "error", err)
		}
	}()

	if e.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return nil, fmt.Errorf("set tessdata: %w", err)
		}
	}
	if err := client.SetLanguage(e.cfg.Language); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if e.cfg.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(e.cfg.PageSegMode)); err != nil {
			return nil, fmt.Errorf("set psm: %w", err)
		}
	}

	var err error
	if len(page.Image) > 0 {
		err = client.SetImageFromBytes(page.Image)
	} else {
		err = client.SetImage(page.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	words := make([]entity.Word, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" || b.Confidence < 0 {
			continue
		}
		words = append(words, entity.Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			Box: entity.BoundingBox{
				Left:   b.Box.Min.X,
				Top:    b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
			Block:     b.BlockNum,
			Paragraph: b.ParNum,
			Line:      b.LineNum,
			Index:     b.WordNum,
		})
	}
	e.logger.Debug("recognized page", "page_id", page.ID, "words", len(words), "engine", "lib")
	return words, nil
}
