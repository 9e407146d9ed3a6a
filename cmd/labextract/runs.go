package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labresults-extractor/internal/export"
)

var (
	runsLimit int
	runsOut   string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect extraction history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.Runs.ListRecent(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN ID\tSTATUS\tPAGES\tFAILED\tTOKENS\tSTARTED\tROOT")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
				r.ID, r.Status, r.PagesTotal, r.PagesFailed, r.TokenCount, r.StartedAt.Local().Format(time.DateTime), r.RootPath)
		}
		return tw.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Print one run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		run, err := a.Runs.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the records of recent runs to an xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if runsOut == "" {
			return errors.New("--out is required")
		}
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := export.NewService(a.Runs, logger).RunsXLSX(cmd.Context(), a.Schema, runsLimit)
		if err != nil {
			return err
		}
		return writeFile(runsOut, func(w io.Writer) error {
			_, err := w.Write(b)
			return err
		})
	},
}

func init() {
	runsCmd.PersistentFlags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs")
	runsExportCmd.Flags().StringVarP(&runsOut, "out", "o", "", "xlsx file to write")
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}
