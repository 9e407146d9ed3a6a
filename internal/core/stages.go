package core

import (
	"log/slog"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/fuzzy"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/resolve"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/scoring"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/spatial"
)

// NewStages wires every pipeline stage from configuration around engine.
func NewStages(cfg *common.Config, engine ocr.Engine, logger *slog.Logger) Stages {
	if logger == nil {
		logger = slog.Default()
	}
	return Stages{
		Pool: ocr.NewPool(engine, logger.With("stage", "ocr"),
			ocr.WithWorkers(cfg.OCR.Workers),
			ocr.WithPageTimeout(cfg.OCR.PageTimeout),
		),
		Scorer: scoring.NewScorer(scoring.Config{
			ConfidenceCutoff:  cfg.Number.ConfidenceCutoff,
			ReplacementWeight: cfg.Number.ReplacementWeight,
			RegexWeight:       cfg.Number.RegexWeight,
		}, logger.With("stage", "score")),
		Matcher: fuzzy.NewMatcher(fuzzy.Config{
			SearchThreshold: cfg.Match.SearchThreshold,
			Distance:        cfg.Match.Distance,
			AcceptThreshold: cfg.Match.AcceptThreshold,
			MinSubstring:    cfg.Match.MinSubstring,
		}, logger.With("stage", "match")),
		Pairer: spatial.NewPairer(spatial.Config{
			ValueThreshold: cfg.Number.ValueThreshold,
			MaxDistance:    cfg.Pair.MaxDistance,
		}, logger.With("stage", "pair")),
		Resolver:  resolve.NewResolver(logger.With("stage", "resolve")),
		Assembler: record.NewAssembler(logger.With("stage", "assemble")),
	}
}
