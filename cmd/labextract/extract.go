package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
	"github.com/joseph-ayodele/labresults-extractor/internal/export"
)

var extractOpts struct {
	dir          string
	out          string
	format       string
	date         string
	intervention string
	debugReport  string
	noStore      bool
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run OCR over a directory of page images and emit one result row",
	RunE:  runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractOpts.dir, "dir", "d", "", "directory (or single image) holding the report pages")
	f.StringVarP(&extractOpts.out, "out", "o", "", "output file (default stdout)")
	f.StringVar(&extractOpts.format, "format", "csv", "output format: csv, json or xlsx")
	f.StringVar(&extractOpts.date, "date", "", "value for the Date column (YYYY-MM-DD)")
	f.StringVar(&extractOpts.intervention, "intervention", "", "value for the Intervention column")
	f.StringVar(&extractOpts.debugReport, "debug-report", "", "write per-token diagnostics as JSON to this file")
	f.BoolVar(&extractOpts.noStore, "no-store", false, "do not record the run in history")
	_ = extractCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	checks := common.NewChecks().
		Check("format", extractOpts.format, common.OneOf("csv", "json", "xlsx")).
		Check("date", extractOpts.date, common.IsDate)
	if err := checks.Err(); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, extractOpts.noStore)
	if err != nil {
		return err
	}
	defer a.Close()

	var ov *entity.Overrides
	if extractOpts.date != "" || extractOpts.intervention != "" {
		ov = &entity.Overrides{Values: map[string]string{}}
		if extractOpts.date != "" {
			ov.Values["Date"] = extractOpts.date
		}
		if extractOpts.intervention != "" {
			ov.Values["Intervention"] = extractOpts.intervention
		}
	}

	res, col, err := a.Processor.RunDirectory(ctx, extractOpts.dir, a.Config.OCR.SkipHidden, ov)
	if res == nil {
		return err
	}
	if err != nil {
		// The record exists; only history persistence failed.
		logger.Warn("run not recorded", "run_id", res.RunID, "error", err)
	}
	for _, sk := range col.Skipped {
		logger.Warn("skipped file", "path", sk.Path, "reason", sk.Reason)
	}

	if extractOpts.debugReport != "" {
		rep := export.BuildDebugReport(res.RunID, res.Tokens, res.Assignments, core.PageErrors(res.Pages), a.Config.Number.ValueThreshold)
		if err := writeFile(extractOpts.debugReport, func(w io.Writer) error { return export.WriteDebugReport(w, rep) }); err != nil {
			return err
		}
	}

	logger.Info("extraction finished", "run_id", res.RunID, "status", res.Status, "assigned", len(res.Assignments))
	return writeRecord(a.Schema, res.Record, extractOpts.format, extractOpts.out)
}

func writeRecord(schema *record.Schema, rec record.Record, format, out string) error {
	return writeFile(out, func(w io.Writer) error {
		switch format {
		case "json":
			return export.WriteJSON(w, rec)
		case "xlsx":
			b, err := export.NewService(nil, logger).RecordsXLSX(schema, []record.Record{rec})
			if err != nil {
				return err
			}
			_, err = io.Copy(w, bytes.NewReader(b))
			return err
		default:
			return export.WriteCSV(w, rec)
		}
	})
}

// writeFile writes to path, or stdout when path is empty.
func writeFile(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
