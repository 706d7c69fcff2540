package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/listing-docs/constants"
	"github.com/joseph-ayodele/listing-docs/internal/common"
	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

const defaultCleanupTimeout = 10 * time.Second

// PrimaryStage uploads a document, asks the document model for its fields
// and removes the upload again.
type PrimaryStage struct {
	Logger         *slog.Logger
	Model          llm.DocumentModel
	CleanupTimeout time.Duration
}

// PrimaryOutcome is what the document itself yielded.
type PrimaryOutcome struct {
	Fields     llm.FieldMap
	FileID     string
	ParseErr   error
	CleanupErr error
}

func NewPrimaryStage(logger *slog.Logger, model llm.DocumentModel, cleanupTimeout time.Duration) *PrimaryStage {
	if logger == nil {
		logger = slog.Default()
	}
	if cleanupTimeout <= 0 {
		cleanupTimeout = defaultCleanupTimeout
	}
	return &PrimaryStage{Logger: logger, Model: model, CleanupTimeout: cleanupTimeout}
}

// Run executes upload, extraction, parse and cleanup. Upload and extraction
// failures are returned as *UploadError and *ExtractionAPIError; parse and
// cleanup failures are recorded on the outcome only. Once the upload
// succeeded the file is deleted on every return path.
func (s *PrimaryStage) Run(ctx context.Context, upload llm.FileUpload, progress *progressReporter) (PrimaryOutcome, error) {
	logger := common.LoggerFromContext(ctx, s.Logger)

	progress.report(constants.ProgressUploadStart)
	fileID, err := s.Model.UploadFile(ctx, upload)
	if err != nil {
		logger.Error("pipeline.upload.failed", "file", upload.Name, "err", err)
		return PrimaryOutcome{}, newUploadError(err)
	}
	logger.Info("pipeline.upload.ok", "file", upload.Name, "file_id", fileID, "bytes", len(upload.Content))
	progress.report(constants.ProgressUploaded)

	out := PrimaryOutcome{FileID: fileID}
	cleanup := sync.OnceValue(func() error { return s.deleteFile(ctx, logger, fileID) })
	defer cleanup()

	if err := ctx.Err(); err != nil {
		return PrimaryOutcome{}, err
	}

	progress.report(constants.ProgressExtractStart)
	text, err := s.Model.CompleteWithFile(ctx, fileID, llm.BuildExtractionPrompt())
	if err != nil {
		logger.Error("pipeline.extract.failed", "file_id", fileID, "err", err)
		return PrimaryOutcome{}, newExtractionAPIError(err)
	}
	progress.report(constants.ProgressExtracted)

	fields, perr := llm.ParseFieldMapStrict(text)
	if perr != nil {
		logger.Warn("pipeline.parse.failed", "file_id", fileID, "err", perr, "response_bytes", len(text))
		out.ParseErr = perr
	} else {
		logger.Info("pipeline.parse.ok", "file_id", fileID, "fields", len(fields))
	}
	out.Fields = fields
	progress.report(constants.ProgressParsed)

	out.CleanupErr = cleanup()
	progress.report(constants.ProgressCleanedUp)
	return out, nil
}

// deleteFile runs on a context detached from ctx's cancellation so that a
// cancelled request still releases its upload.
func (s *PrimaryStage) deleteFile(ctx context.Context, logger *slog.Logger, fileID string) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.CleanupTimeout)
	defer cancel()
	if err := s.Model.DeleteFile(cctx, fileID); err != nil {
		logger.Warn("pipeline.cleanup.failed", "file_id", fileID, "err", err)
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	logger.Debug("pipeline.cleanup.ok", "file_id", fileID)
	return nil
}
