package main

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labresults-extractor/internal/core/async"
	"github.com/joseph-ayodele/labresults-extractor/internal/ingest"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Extract each report folder as its page images arrive",
	Long: "Watch a directory tree. When images stop changing for the debounce period, " +
		"every folder that received images is queued for extraction as one report.",
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "root directory to watch")
	_ = watchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config
	queue := async.NewRunQueue(a.Processor, logger,
		async.WithWorkers(cfg.Server.QueueWorkers),
		async.WithQueueSize(cfg.Server.QueueSize),
		async.WithRunTimeout(cfg.Server.RunTimeout),
		async.WithSkipHidden(cfg.OCR.SkipHidden),
	)
	defer queue.Shutdown(context.Background())

	batches, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Root:       watchDir,
		SkipHidden: cfg.OCR.SkipHidden,
		Debounce:   cfg.Server.WatchDebounce,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("watching for page images", "root", watchDir)

	for {
		select {
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			for _, dir := range reportDirs(batch) {
				if err := queue.Enqueue(ctx, async.Job{RootPath: dir}); err != nil {
					logger.Error("enqueue failed", "root", dir, "error", err)
				}
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

// reportDirs returns the distinct parent folders of paths in sorted order.
func reportDirs(paths []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range paths {
		d := filepath.Dir(p)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
