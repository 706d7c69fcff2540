package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/listing-docs/constants"
	"github.com/joseph-ayodele/listing-docs/internal/common"
	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

// Config holds behavior flags for the processor.
type Config struct {
	SkipEnhancement bool
	CleanupTimeout  time.Duration // default 10s
}

// Result is the outcome of one document extraction.
type Result struct {
	RequestID string
	// Fields is the merged map: web search results overlaid by document values.
	Fields llm.FieldMap
	// Primary holds only what the document itself yielded.
	Primary llm.FieldMap
	// Enhanced lists the keys contributed by web search.
	Enhanced []string
	// Degraded is set when a soft failure may have left fields out.
	Degraded     bool
	Warnings     []string
	FormatIssues []llm.FieldIssue
}

// Processor coordinates the primary extraction then the web-search
// enhancement. It holds no per-call state and is safe for concurrent use.
type Processor struct {
	Logger  *slog.Logger
	Cfg     Config
	Primary *PrimaryStage
	Enhance *EnhanceStage
}

func NewProcessor(logger *slog.Logger, cfg Config, model llm.DocumentModel) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:  logger,
		Cfg:     cfg,
		Primary: NewPrimaryStage(logger, model, cfg.CleanupTimeout),
		Enhance: NewEnhanceStage(logger, model),
	}
}

// ProcessDocument runs the pipeline for one document. onProgress may be nil.
// Hard failures are *UploadError and *ExtractionAPIError; a context that is
// done before a stage starts yields the context error.
func (p *Processor) ProcessDocument(ctx context.Context, upload llm.FileUpload, onProgress ProgressFunc) (*Result, error) {
	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = common.WithRequestID(ctx, reqID)
	}
	logger := common.LoggerFromContext(ctx, p.Logger).With("req_id", reqID)
	ctx = common.WithLogger(ctx, logger)
	start := time.Now()
	progress := newProgressReporter(onProgress)

	// 1) primary: upload, extract, parse, cleanup
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	primary, err := p.Primary.Run(ctx, upload, progress)
	if err != nil {
		logger.Error("processor.primary.failed", "file", upload.Name, "err", err)
		return nil, err
	}

	res := &Result{
		RequestID: reqID,
		Primary:   primary.Fields.Clone(),
	}
	if primary.ParseErr != nil {
		res.Degraded = true
		res.Warnings = append(res.Warnings, "document response could not be parsed: "+primary.ParseErr.Error())
	}
	if primary.CleanupErr != nil {
		res.Warnings = append(res.Warnings, "uploaded file was not deleted: "+primary.CleanupErr.Error())
	}

	// 2) enhancement: best effort, only when the document gave a location
	fields := primary.Fields.Clone()
	if !p.Cfg.SkipEnhancement {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		enh := p.Enhance.Run(ctx, primary.Fields, progress)
		fields = enh.Fields
		res.Enhanced = enh.Added
		if enh.Err != nil {
			res.Degraded = true
			res.Warnings = append(res.Warnings, "property lookup failed: "+enh.Err.Error())
		}
	}
	res.Fields = fields

	issues, err := llm.CheckFieldFormats(fields)
	if err != nil {
		logger.Warn("processor.format_check.failed", "err", err)
	}
	res.FormatIssues = issues

	progress.report(constants.ProgressDone)
	logger.Info("processor.ok",
		"file", upload.Name,
		"fields", len(res.Fields),
		"enhanced", len(res.Enhanced),
		"degraded", res.Degraded,
		"format_issues", len(res.FormatIssues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
