package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/listing-docs/constants"
	"github.com/joseph-ayodele/listing-docs/internal/common"
	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

// EnhanceStage fills fields the document did not provide using a
// search-augmented model. It never fails the pipeline.
type EnhanceStage struct {
	Logger *slog.Logger
	Model  llm.DocumentModel
}

// EnhanceOutcome describes one enhancement attempt. Fields is always set;
// Err is non-nil when the lookup was attempted but produced nothing usable.
type EnhanceOutcome struct {
	Fields    llm.FieldMap
	Attempted bool
	Added     []string
	Err       error
}

func NewEnhanceStage(logger *slog.Logger, model llm.DocumentModel) *EnhanceStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnhanceStage{Logger: logger, Model: model}
}

func (s *EnhanceStage) Run(ctx context.Context, primary llm.FieldMap, progress *progressReporter) EnhanceOutcome {
	logger := common.LoggerFromContext(ctx, s.Logger)

	if !llm.ShouldEnhance(primary) {
		logger.Info("pipeline.enhance.skipped", "reason", "no_location")
		return EnhanceOutcome{Fields: primary.Clone()}
	}

	address := llm.SearchAddress(primary)
	prompt := llm.BuildEnhancementPrompt(address, primary)

	progress.report(constants.ProgressEnhanceStart)
	logger.Info("pipeline.enhance.start", "address", address, "missing", len(llm.MissingTargets(primary)))

	text, err := s.Model.CompleteWithSearch(ctx, prompt)
	var httpErr *llm.HTTPError
	if err == nil || errors.As(err, &httpErr) {
		// the provider answered, even if with an error status
		progress.report(constants.ProgressEnhanceResponse)
	}
	if err != nil {
		logger.Warn("pipeline.enhance.failed", "err", err)
		return EnhanceOutcome{Fields: primary.Clone(), Attempted: true, Err: fmt.Errorf("web search: %w", err)}
	}

	found, err := llm.ParseFieldMapStrict(text)
	if err != nil {
		logger.Warn("pipeline.enhance.parse_failed", "err", err, "response_bytes", len(text))
		return EnhanceOutcome{Fields: primary.Clone(), Attempted: true, Err: fmt.Errorf("parse web search response: %w", err)}
	}

	merged := llm.MergeFieldMaps(primary, found)
	added := llm.AddedKeys(primary, merged)
	logger.Info("pipeline.enhance.ok", "found", len(found), "added", added)
	return EnhanceOutcome{Fields: merged, Attempted: true, Added: added}
}
