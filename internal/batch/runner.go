// Package batch extracts fields from many documents with bounded parallelism.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/listing-docs/internal/document"
	"github.com/joseph-ayodele/listing-docs/internal/export"
	"github.com/joseph-ayodele/listing-docs/internal/ingest"
	"github.com/joseph-ayodele/listing-docs/internal/llm"
	"github.com/joseph-ayodele/listing-docs/internal/pipeline"
)

// DocumentProcessor is the part of pipeline.Processor the runner needs.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, upload llm.FileUpload, onProgress pipeline.ProgressFunc) (*pipeline.Result, error)
}

// Item is the outcome for one file. Exactly one of Result and Err is set;
// files a cancelled run never reached carry the run error.
type Item struct {
	Path     string
	Document document.Document
	Result   *pipeline.Result
	Err      error
	Elapsed  time.Duration
}

// Row flattens the item for the spreadsheet export.
func (it Item) Row() export.Row {
	row := export.Row{
		File:         it.Path,
		DocumentType: string(it.Document.Type),
		Pages:        it.Document.Pages,
		Size:         document.FormatSize(it.Document.Size),
	}
	if it.Err != nil {
		row.Error = it.Err.Error()
		return row
	}
	if it.Result == nil {
		return row
	}
	row.Fields = it.Result.Fields
	row.Enhanced = it.Result.Enhanced
	row.Degraded = it.Result.Degraded
	row.Warnings = it.Result.Warnings
	for _, iss := range it.Result.FormatIssues {
		row.Warnings = append(row.Warnings, fmt.Sprintf("%s: %s", iss.Field, iss.Message))
	}
	return row
}

type Runner struct {
	Logger      *slog.Logger
	Processor   DocumentProcessor
	Workers     int // default runtime.NumCPU()
	MaxUploadMB int
	// Timeout bounds a single document; zero means defaultDocumentTimeout.
	Timeout time.Duration
}

const defaultDocumentTimeout = 3 * time.Minute

func NewRunner(logger *slog.Logger, proc DocumentProcessor, workers, maxUploadMB int) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{Logger: logger, Processor: proc, Workers: workers, MaxUploadMB: maxUploadMB, Timeout: defaultDocumentTimeout}
}

// Run processes every candidate and returns one Item per candidate in input
// order. Per-file failures land on the Item; the returned error is only set
// when ctx ends before all files were handled. onDone, if non-nil, is called
// once per finished item and may be called from several goroutines, but
// never concurrently.
func (r *Runner) Run(ctx context.Context, files []ingest.Candidate, onDone func(Item)) ([]Item, error) {
	items := make([]Item, len(files))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			it := r.processOne(gctx, f)
			items[i] = it
			if onDone != nil {
				mu.Lock()
				onDone(it)
				mu.Unlock()
			}
			return nil
		})
	}
	waitErr := g.Wait()
	runErr := ctx.Err()
	if runErr == nil {
		runErr = waitErr
	}
	if runErr != nil {
		// files never picked up carry the reason the run stopped
		for i, f := range files {
			if items[i].Result == nil && items[i].Err == nil {
				items[i] = Item{
					Path:     f.Path,
					Document: document.Document{Name: f.Name, Type: f.Type, Size: f.Size},
					Err:      runErr,
				}
			}
		}
	}
	return items, runErr
}

func (r *Runner) processOne(ctx context.Context, f ingest.Candidate) Item {
	start := time.Now()
	it := Item{Path: f.Path, Document: document.Document{Name: f.Name, Type: f.Type, Size: f.Size}}
	logger := r.Logger.With("path", f.Path)

	content, err := os.ReadFile(f.Path)
	if err != nil {
		it.Err = fmt.Errorf("read file: %w", err)
		logger.Error("batch.read.failed", "err", err)
		return it
	}
	doc, err := document.Inspect(f.Name, content, document.Options{MaxUploadMB: r.MaxUploadMB, URL: "file://" + f.Path})
	if err != nil {
		it.Err = err
		logger.Warn("batch.inspect.rejected", "err", err)
		return it
	}
	it.Document = doc

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultDocumentTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := r.Processor.ProcessDocument(pctx, doc.Upload(content), nil)
	it.Elapsed = time.Since(start)
	if err != nil {
		it.Err = err
		logger.Error("batch.process.failed", "err", err, "elapsed_ms", it.Elapsed.Milliseconds())
		return it
	}
	it.Result = res
	logger.Info("batch.process.ok",
		"type", doc.Type,
		"fields", len(res.Fields),
		"degraded", res.Degraded,
		"elapsed_ms", it.Elapsed.Milliseconds(),
	)
	return it
}
