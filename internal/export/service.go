package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/repository"
)

const sheet = "Results"

// Service produces XLSX workbooks from assembled rows and run history.
type Service struct {
	runs   repository.RunRepository
	logger *slog.Logger
}

// NewService creates an export service. runs may be nil when only live records are exported.
func NewService(runs repository.RunRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runs: runs, logger: logger}
}

// Row is one worksheet line: a label for the first column plus cells keyed by column name.
type Row struct {
	Label string
	Cells map[string]any
}

// RecordsXLSX writes one row per record under a shared header.
func (s *Service) RecordsXLSX(schema *record.Schema, recs []record.Record) ([]byte, error) {
	rows := make([]Row, len(recs))
	for i, r := range recs {
		rows[i] = Row{Cells: r.Map()}
	}
	return s.workbook(schema, "", rows)
}

// RunsXLSX exports the records of the most recent runs, newest first.
func (s *Service) RunsXLSX(ctx context.Context, schema *record.Schema, limit int) ([]byte, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run history is not configured")
	}
	start := time.Now()
	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var rows []Row
	for _, run := range runs {
		if len(run.Record) == 0 {
			continue
		}
		cells := map[string]any{}
		if err := json.Unmarshal(run.Record, &cells); err != nil {
			s.logger.Warn("skipping run with unreadable record", "run_id", run.ID, "error", err)
			continue
		}
		rows = append(rows, Row{Label: run.ID, Cells: cells})
	}

	buf, err := s.workbook(schema, "Run ID", rows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("exported runs", "rows", len(rows), "bytes", len(buf), "duration_ms", time.Since(start).Milliseconds())
	return buf, nil
}

func (s *Service) workbook(schema *record.Schema, labelHeader string, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	offset := 0
	if labelHeader != "" {
		offset = 1
		cell, _ := excelize.CoordinatesToCellName(1, 1)
		_ = f.SetCellValue(sheet, cell, labelHeader)
	}
	header := schema.Header()
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1+offset, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for r, row := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		if offset == 1 {
			write(1, row.Label)
		}
		for i, h := range header {
			if v, ok := row.Cells[h]; ok && v != nil {
				write(i+1+offset, v)
			}
		}
	}

	last, _ := excelize.ColumnNumberToName(len(header) + offset)
	_ = f.SetColWidth(sheet, "A", last, 14)
	if offset == 1 {
		_ = f.SetColWidth(sheet, "A", "A", 38) // uuid
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
