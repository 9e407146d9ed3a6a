// Package app assembles the extractor from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
	"github.com/joseph-ayodele/labresults-extractor/internal/repository"
	"github.com/joseph-ayodele/labresults-extractor/internal/vocab"
)

type Options struct {
	// NoStore skips opening the run-history database.
	NoStore bool
	// Engine replaces the configured OCR engine when set.
	Engine ocr.Engine
}

type App struct {
	Config     *common.Config
	DB         *repository.DB
	Runs       repository.RunRepository
	Processor  *core.Processor
	Schema     *record.Schema
	Vocabulary []entity.FieldDefinition

	logger *slog.Logger
}

// New validates cfg, opens storage and builds the processor.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	defs, err := vocab.LoadFile(cfg.Vocab.File)
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(defs))
	for _, d := range defs {
		fields = append(fields, d.Field)
	}
	schema, err := record.SchemaFor(fields)
	if err != nil {
		return nil, err
	}

	engine := opts.Engine
	if engine == nil {
		if engine, err = NewEngine(cfg.OCR, logger); err != nil {
			return nil, err
		}
	}
	engine = ocr.NewCachedEngine(engine, cfg.OCR.CacheTTL, logger)

	a := &App{Config: cfg, Schema: schema, Vocabulary: defs, logger: logger}
	if !opts.NoStore {
		if err := a.openStore(ctx); err != nil {
			return nil, err
		}
	}

	a.Processor, err = core.NewProcessor(logger, core.NewStages(cfg, engine, logger), schema, defs, a.Runs)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// NewEngine builds the configured recognizer.
func NewEngine(cfg common.OCRConfig, logger *slog.Logger) (ocr.Engine, error) {
	ocfg := ocr.Config{
		Tesseract:   cfg.TesseractBin,
		TessdataDir: cfg.TessdataDir,
		Language:    cfg.Language,
		PageSegMode: cfg.PageSegMode,
	}
	switch cfg.Engine {
	case "cli":
		return ocr.NewCLIEngine(ocfg, ocr.ExecRunner{Logger: logger}, logger), nil
	case "lib":
		return newLibEngine(ocfg, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown OCR engine %q", cfg.Engine), common.ErrInvalidInput)
	}
}

func (a *App) openStore(ctx context.Context) error {
	db, err := repository.Open(ctx, repository.Config{
		DSN:             a.Config.Database.DSN,
		MaxConns:        a.Config.Database.MaxConns,
		MinConns:        a.Config.Database.MinConns,
		MaxConnLifetime: a.Config.Database.MaxConnLifetime,
		MaxConnIdleTime: a.Config.Database.MaxConnIdleTime,
		DialTimeout:     a.Config.Database.DialTimeout,
	}, a.logger)
	if err != nil {
		return err
	}
	if err := repository.HealthCheck(ctx, db, 5*time.Second, a.logger); err != nil {
		db.Close(a.logger)
		return err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close(a.logger)
		return err
	}
	a.DB = db
	a.Runs = repository.NewRunRepository(db, a.logger)
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close(a.logger)
		a.DB = nil
	}
}
