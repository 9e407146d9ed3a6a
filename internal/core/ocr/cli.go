package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// tesseract TSV columns
const (
	colLevel = iota
	colPage
	colBlock
	colPar
	colLine
	colWord
	colLeft
	colTop
	colWidth
	colHeight
	colConf
	colText
	tsvColumns
)

const wordLevel = 5

// CLIEngine shells out to the tesseract binary and parses its TSV output.
type CLIEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewCLIEngine creates a CLI engine. A nil runner executes on the host.
func NewCLIEngine(cfg Config, runner Runner, logger *slog.Logger) *CLIEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &CLIEngine{cfg: cfg, runner: runner, logger: logger}
}

func (e *CLIEngine) Recognize(ctx context.Context, page entity.Page) ([]entity.Word, error) {
	in := page.Path
	var stdin []byte
	if len(page.Image) > 0 {
		in, stdin = "stdin", page.Image
	}
	if in == "" {
		return nil, fmt.Errorf("page %s has neither path nor image bytes", page.ID)
	}

	// tesseract <file> stdout -l <lang> --psm <n> tsv
	args := []string{in, "stdout", "-l", e.cfg.Language}
	if e.cfg.PageSegMode > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PageSegMode))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, stdin, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract TSV: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	words, err := ParseTSV(out)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("recognized page", "page_id", page.ID, "words", len(words))
	return words, nil
}

// ParseTSV reads word-level rows of tesseract TSV output. Rows with no text or
// a negative confidence are skipped.
func ParseTSV(data []byte) ([]entity.Word, error) {
	var words []entity.Word
	for i, ln := range strings.Split(string(data), "\n") {
		ln = strings.TrimRight(ln, "\r")
		if i == 0 || ln == "" {
			continue
		} // header
		cols := strings.Split(ln, "\t")
		if len(cols) < tsvColumns-1 {
			return nil, fmt.Errorf("tsv line %d: %d columns", i+1, len(cols))
		}
		if len(cols) < tsvColumns || strings.TrimSpace(cols[colText]) == "" {
			continue
		}
		ints := make([]int, colConf)
		for c := colLevel; c < colConf; c++ {
			v, err := strconv.Atoi(cols[c])
			if err != nil {
				return nil, fmt.Errorf("tsv line %d column %d: %w", i+1, c+1, err)
			}
			ints[c] = v
		}
		if ints[colLevel] != wordLevel {
			continue
		}
		conf, err := strconv.ParseFloat(cols[colConf], 64)
		if err != nil {
			return nil, fmt.Errorf("tsv line %d conf: %w", i+1, err)
		}
		if conf < 0 {
			continue
		}
		words = append(words, entity.Word{
			Text:       strings.TrimSpace(cols[colText]),
			Confidence: conf,
			Box: entity.BoundingBox{
				Left:   ints[colLeft],
				Top:    ints[colTop],
				Width:  ints[colWidth],
				Height: ints[colHeight],
			},
			Block:     ints[colBlock],
			Paragraph: ints[colPar],
			Line:      ints[colLine],
			Index:     ints[colWord],
		})
	}
	return words, nil
}
