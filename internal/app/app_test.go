package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

func TestNewEngine(t *testing.T) {
	cfg := common.LoadConfig().OCR
	cfg.Engine = "cli"
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine(cli) error = %v", err)
	}
	if _, ok := e.(*ocr.CLIEngine); !ok {
		t.Fatalf("NewEngine(cli) = %T", e)
	}

	cfg.Engine = "cloud"
	if _, err := NewEngine(cfg, nil); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("NewEngine(cloud) error = %v", err)
	}
}

func TestNewWithStore(t *testing.T) {
	dir := t.TempDir()
	cfg := common.LoadConfig()
	cfg.Database.DSN = filepath.Join(dir, "runs.db")
	cfg.OCR.Engine = "cli"
	cfg.Vocab.File = ""

	page := filepath.Join(dir, "p1.png")
	if err := os.WriteFile(page, []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	engine := ocr.EngineFunc(func(context.Context, entity.Page) ([]entity.Word, error) {
		return []entity.Word{
			{Text: "AST", Confidence: 96, Box: entity.BoundingBox{Left: 10, Top: 10, Width: 4, Height: 4}, Index: 1},
			{Text: "30", Confidence: 96, Box: entity.BoundingBox{Left: 20, Top: 10, Width: 4, Height: 4}, Index: 2},
		}, nil
	})

	ctx := context.Background()
	a, err := New(ctx, cfg, nil, Options{Engine: engine})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	res, _, err := a.Processor.RunDirectory(ctx, page, true, nil)
	if err != nil {
		t.Fatalf("RunDirectory() error = %v", err)
	}
	run, err := a.Runs.Get(ctx, res.RunID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if run.Status != "OK" || run.TokenCount != 2 {
		t.Fatalf("run = %+v", run)
	}
}

func TestNewCustomVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.json")
	if err := os.WriteFile(path, []byte(`[{"field":"AST","synonyms":["sgot"]},{"field":"FERRITIN","synonyms":[]}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := common.LoadConfig()
	cfg.Vocab.File = path
	cfg.OCR.Engine = "cli"

	a, err := New(context.Background(), cfg, nil, Options{NoStore: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()
	if a.Runs != nil {
		t.Fatal("Runs should be nil with NoStore")
	}
	if _, ok := a.Schema.Column("FERRITIN"); !ok {
		t.Fatal("schema is missing the custom field column")
	}
}
