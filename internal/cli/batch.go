package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/listing-docs/constants"
	"github.com/joseph-ayodele/listing-docs/internal/batch"
	"github.com/joseph-ayodele/listing-docs/internal/common"
	"github.com/joseph-ayodele/listing-docs/internal/export"
	"github.com/joseph-ayodele/listing-docs/internal/ingest"
)

var (
	batchDir        string
	batchOut        string
	batchWorkers    int
	batchExts       []string
	batchSkipHidden bool
	batchNoEnhance  bool
	batchTypes      []string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract every document in a directory into an XLSX summary",
	Example: `  listingdocs batch --dir ./docs
  listingdocs batch --dir ./docs --out listings.xlsx --workers 8 --ext pdf`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory to scan (required)")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "output XLSX path (defaults to <dir>/../listings.xlsx)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel extractions (defaults to BATCH_WORKERS)")
	batchCmd.Flags().StringSliceVar(&batchExts, "ext", nil, "extensions to include (default pdf,jpg,jpeg,png)")
	batchCmd.Flags().BoolVar(&batchSkipHidden, "skip-hidden", true, "skip dot files and directories")
	batchCmd.Flags().BoolVar(&batchNoEnhance, "no-enhance", false, "skip the web-search lookup")
	batchCmd.Flags().StringSliceVar(&batchTypes, "type", nil, "only process these document types, e.g. \"Floor Plan\"")
	_ = batchCmd.MarkFlagRequired("dir")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	start := time.Now()

	out := batchOut
	if out == "" {
		out = filepath.Join(filepath.Dir(filepath.Clean(batchDir)), "listings.xlsx")
	}
	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Extract.BatchWorkers
	}

	wanted, err := parseDocumentTypes(batchTypes)
	if err != nil {
		return err
	}

	files, skipped, stats, err := ingest.ScanDirectory(ctx, batchDir, ingest.ScanOptions{
		IncludeExts: batchExts,
		SkipHidden:  batchSkipHidden,
	})
	if err != nil {
		return common.WrapError(err, "scan documents")
	}
	if len(wanted) > 0 {
		files = slices.DeleteFunc(files, func(c ingest.Candidate) bool {
			_, ok := wanted[c.Type]
			return !ok
		})
	}
	for _, fe := range skipped {
		logger.Warn("batch.scan.unreadable", "path", fe.Path, "err", fe.Err)
	}
	logger.Info("batch.scan.ok", "dir", batchDir, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No documents found in %s\n", batchDir)
		return nil
	}

	proc, err := newProcessor(batchNoEnhance)
	if err != nil {
		return err
	}
	runner := batch.NewRunner(logger, proc, workers, cfg.Extract.MaxUploadMB)

	var done int
	items, err := runner.Run(ctx, files, func(it batch.Item) {
		done++
		state := "ok"
		if it.Err != nil {
			state = "failed: " + it.Err.Error()
		} else if it.Result.Degraded {
			state = "partial"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s %s\n", done, len(files), it.Path, state)
	})
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	rows := make([]export.Row, len(items))
	failed := 0
	for i, it := range items {
		rows[i] = it.Row()
		if it.Err != nil {
			failed++
		}
	}
	if err := export.NewService(logger).WriteResultsFile(out, rows); err != nil {
		return common.WrapError(err, "export results")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d documents (%d failed) in %s\nWrote %s\n",
		len(items), failed, time.Since(start).Round(time.Millisecond), out)
	return nil
}

// parseDocumentTypes resolves --type values to document types.
func parseDocumentTypes(labels []string) (map[constants.DocumentType]struct{}, error) {
	out := make(map[constants.DocumentType]struct{}, len(labels))
	for _, l := range labels {
		dt, ok := constants.Canonicalize(l)
		if !ok {
			return nil, fmt.Errorf("unknown document type %q (valid: %s)", l, strings.Join(constants.AsStringSlice(), ", "))
		}
		out[dt] = struct{}{}
	}
	return out, nil
}
