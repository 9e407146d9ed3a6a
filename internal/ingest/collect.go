// Package ingest discovers page images on disk.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/labresults-extractor/constants"
	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// Skipped is a file seen during the walk that will not be recognized.
type Skipped struct {
	Path   string
	Reason string
}

type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// Collection is the outcome of walking a root.
type Collection struct {
	Root    string
	Pages   []entity.Page
	Skipped []Skipped
	Stats   DirStats
}

// CollectPages walks root (a directory or a single image) and returns one page
// per accepted image in lexical path order. Page IDs are slash-separated paths
// relative to root. PDFs are reported as skipped: they must be rasterized first.
func CollectPages(root string, skipHidden bool, logger *slog.Logger) (*Collection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, common.NewAppError("INPUT_ERROR", "root_path is required", common.ErrInvalidInput)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, common.NewAppError("INPUT_ERROR", fmt.Sprintf("stat %s", root), errors.Join(common.ErrInvalidInput, err))
	}

	c := &Collection{Root: root}
	if !info.IsDir() {
		c.Stats.Scanned = 1
		c.add(root, filepath.Base(root), logger)
		return c, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			c.Stats.Failed++
			logger.Warn("walk error", "path", path, "error", walkErr)
			return nil // continue walking
		}
		if path != root && skipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		c.Stats.Scanned++
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		c.add(path, filepath.ToSlash(rel), logger)
		return nil
	})
	if err != nil {
		return c, fmt.Errorf("walk: %w", err)
	}

	logger.Info("collected pages",
		"root", root,
		"scanned", c.Stats.Scanned,
		"matched", c.Stats.Matched,
		"skipped", c.Stats.Skipped,
	)
	return c, nil
}

func (c *Collection) add(path, id string, logger *slog.Logger) {
	ext := filepath.Ext(path)
	switch {
	case constants.IsImageExt(ext):
		c.Pages = append(c.Pages, entity.Page{ID: id, Path: path})
		c.Stats.Matched++
	case constants.IsPDFExt(ext):
		c.Skipped = append(c.Skipped, Skipped{Path: path, Reason: "pdf must be rasterized to page images first"})
		c.Stats.Skipped++
		logger.Warn("skipping pdf", "path", path)
	default:
		c.Stats.Skipped++
		logger.Debug("skipping non-image file", "path", path)
	}
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
