package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/listing-docs/constants"
)

// Candidate is a file found by ScanDirectory.
type Candidate struct {
	Path string
	Name string
	Size int64
	Type constants.DocumentType
}

// FileError records a path that could not be visited.
type FileError struct {
	Path string
	Err  string
}

type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// ScanOptions controls which files ScanDirectory reports.
type ScanOptions struct {
	IncludeExts []string // defaults to pdf/jpg/jpeg/png
	SkipHidden  bool
}

// ScanDirectory walks root and returns every file whose extension is
// included, in lexical walk order. Unreadable entries are reported as
// FileErrors and the walk continues.
func ScanDirectory(ctx context.Context, root string, opts ScanOptions) ([]Candidate, []FileError, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root path is required")
	}

	exts := constants.AllowedExtensions
	if len(opts.IncludeExts) > 0 {
		exts = map[string]struct{}{}
		for _, e := range opts.IncludeExts {
			if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var (
		found  []Candidate
		failed []FileError
		stats  DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			failed = append(failed, FileError{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := exts[constants.NormalizeExt(filepath.Ext(path))]; !ok {
			stats.Skipped++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			failed = append(failed, FileError{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		stats.Matched++
		found = append(found, Candidate{
			Path: path,
			Name: d.Name(),
			Size: info.Size(),
			Type: constants.ClassifyDocument(d.Name()),
		})
		return nil
	})
	if err != nil {
		return found, failed, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	return found, failed, stats, nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
