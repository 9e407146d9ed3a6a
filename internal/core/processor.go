package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/labresults-extractor/constants"
	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/fuzzy"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/resolve"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/scoring"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/spatial"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
	"github.com/joseph-ayodele/labresults-extractor/internal/ingest"
	"github.com/joseph-ayodele/labresults-extractor/internal/repository"
)

// Stages bundles the pipeline components run by the processor.
type Stages struct {
	Pool      *ocr.Pool
	Scorer    *scoring.Scorer
	Matcher   *fuzzy.Matcher
	Pairer    *spatial.Pairer
	Resolver  *resolve.Resolver
	Assembler *record.Assembler
}

// Processor coordinates OCR, scoring, matching, pairing, resolution and row
// assembly for one set of pages.
type Processor struct {
	logger     *slog.Logger
	stages     Stages
	schema     *record.Schema
	vocabulary []entity.FieldDefinition
	fieldOrder []string
	runs       repository.RunRepository
}

// Result is everything one run produced.
type Result struct {
	RunID        string
	Status       constants.RunStatus
	Pages        []entity.PageResult
	Tokens       []entity.Token
	FieldMatches map[string][]fuzzy.TokenMatch
	Assignments  []entity.Assignment
	Record       record.Record
}

// NewProcessor validates that every vocabulary field has a value column. runs may be nil.
func NewProcessor(
	logger *slog.Logger,
	stages Stages,
	schema *record.Schema,
	vocabulary []entity.FieldDefinition,
	runs repository.RunRepository,
) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if stages.Pool == nil || stages.Scorer == nil || stages.Matcher == nil ||
		stages.Pairer == nil || stages.Resolver == nil || stages.Assembler == nil {
		return nil, common.NewAppError("CONFIG_ERROR", "every pipeline stage is required", common.ErrInvalidInput)
	}
	if schema == nil {
		return nil, common.NewAppError("CONFIG_ERROR", "schema is required", common.ErrInvalidInput)
	}
	order := make([]string, 0, len(vocabulary))
	for _, def := range vocabulary {
		c, ok := schema.Column(def.Field)
		if !ok || c.Kind != record.KindValue {
			return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("vocabulary field %q has no value column", def.Field), common.ErrUnknownField)
		}
		order = append(order, def.Field)
	}
	return &Processor{
		logger:     logger,
		stages:     stages,
		schema:     schema,
		vocabulary: vocabulary,
		fieldOrder: order,
		runs:       runs,
	}, nil
}

// Schema returns the row layout records are assembled into.
func (p *Processor) Schema() *record.Schema { return p.schema }

// RunDirectory collects the page images under root and runs them. The
// collection is returned even when the run fails.
func (p *Processor) RunDirectory(ctx context.Context, root string, skipHidden bool, overrides *entity.Overrides) (*Result, *ingest.Collection, error) {
	col, err := ingest.CollectPages(root, skipHidden, p.logger)
	if err != nil {
		return nil, col, err
	}
	if len(col.Pages) == 0 {
		return nil, col, common.NewInputError(fmt.Sprintf("no page images under %s", root))
	}
	res, err := p.Run(ctx, root, col.Pages, overrides)
	return res, col, err
}

// Run processes pages and returns the assembled record. Page failures are
// reported on Result.Pages and mark the run PARTIAL. A run with no pages, or
// whose pages yield no tokens, fails with common.ErrNoInput. A cancelled ctx
// fails the run with ctx.Err(). When saving run
// history fails the result is still returned alongside the error.
func (p *Processor) Run(ctx context.Context, rootPath string, pages []entity.Page, overrides *entity.Overrides) (*Result, error) {
	if len(pages) == 0 {
		return nil, common.NewInputError("no page images provided")
	}
	if err := record.ValidateOverrides(p.schema, overrides); err != nil {
		return nil, err
	}

	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = common.WithRunID(ctx, runID)
	}
	started := time.Now()
	log := p.logger.With("run_id", runID)
	log.Info("run started", "root", rootPath, "pages", len(pages))

	res := &Result{RunID: runID, Status: constants.RunStatusOK}
	res.Pages = p.stages.Pool.RecognizeAll(ctx, pages)
	failed := 0
	for _, pr := range res.Pages {
		if pr.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		res.Status = constants.RunStatusPartial
	}

	if err := ctx.Err(); err != nil {
		res.Status = constants.RunStatusFailed
		log.Warn("run cancelled", "pages", len(pages), "failed", failed, "error", err)
		if serr := p.save(context.WithoutCancel(ctx), rootPath, res, started); serr != nil {
			log.Error("failed to save run", "error", serr)
		}
		return nil, err
	}

	tokens := ocr.Flatten(res.Pages)
	if len(tokens) == 0 {
		res.Status = constants.RunStatusFailed
		log.Error("run produced no tokens", "pages", len(pages), "failed", failed)
		runErr := common.NewInputError(fmt.Sprintf("no tokens recognized on %d page(s)", len(pages)))
		if err := p.save(ctx, rootPath, res, started); err != nil {
			log.Error("failed to save run", "error", err)
		}
		return nil, runErr
	}

	tokens = p.stages.Scorer.Apply(tokens)
	tokens, res.FieldMatches = p.stages.Matcher.Match(tokens, p.vocabulary)
	tokens = p.stages.Pairer.Pair(tokens)
	tokens, res.Assignments = p.stages.Resolver.Resolve(tokens, p.fieldOrder)
	res.Tokens = tokens

	rec, err := p.stages.Assembler.Assemble(p.schema, res.Assignments, overrides)
	if err != nil {
		log.Error("assemble failed", "error", err)
		return nil, err
	}
	res.Record = rec

	log.Info("run finished",
		"status", res.Status,
		"tokens", len(tokens),
		"fields_found", len(res.FieldMatches),
		"assigned", len(res.Assignments),
		"failed_pages", failed,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	if err := p.save(ctx, rootPath, res, started); err != nil {
		return res, common.WrapError(err, "save run")
	}
	return res, nil
}

func (p *Processor) save(ctx context.Context, rootPath string, res *Result, started time.Time) error {
	if p.runs == nil {
		return nil
	}
	run := &entity.ExtractionRun{
		ID:          res.RunID,
		RootPath:    rootPath,
		Status:      string(res.Status),
		PagesTotal:  len(res.Pages),
		TokenCount:  len(res.Tokens),
		Assignments: res.Assignments,
		PageErrors:  PageErrors(res.Pages),
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
	run.PagesFailed = len(run.PageErrors)
	if res.Record.Schema() != nil {
		b, err := json.Marshal(res.Record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		run.Record = b
	}
	return p.runs.Save(ctx, run)
}

// PageErrors lists the failed pages of a run.
func PageErrors(pages []entity.PageResult) []entity.PageError {
	var out []entity.PageError
	for _, pr := range pages {
		if pr.Err != nil {
			out = append(out, entity.PageError{PageID: pr.PageID, Message: pr.Err.Error()})
		}
	}
	return out
}
