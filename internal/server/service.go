package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/listing-docs/constants"
	"github.com/joseph-ayodele/listing-docs/internal/common"
	"github.com/joseph-ayodele/listing-docs/internal/document"
	"github.com/joseph-ayodele/listing-docs/internal/llm"
	"github.com/joseph-ayodele/listing-docs/internal/pipeline"
)

// Event kinds sent on the ProcessDocument stream.
const (
	EventProgress = "progress"
	EventResult   = "result"
)

// DocumentProcessor runs the extraction pipeline for one document.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, upload llm.FileUpload, onProgress pipeline.ProgressFunc) (*pipeline.Result, error)
}

type ExtractionService struct {
	processor   DocumentProcessor
	maxUploadMB int
	logger      *slog.Logger
}

var _ ExtractionServer = (*ExtractionService)(nil)

func NewExtractionService(proc DocumentProcessor, maxUploadMB int, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{processor: proc, maxUploadMB: maxUploadMB, logger: logger}
}

func (s *ExtractionService) ProcessDocument(in *wrapperspb.BytesValue, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()

	doc, err := s.inspect(ctx, in.GetValue())
	if err != nil {
		return err
	}

	reqID := uuid.NewString()
	ctx = common.WithRequestID(ctx, reqID)
	logger := s.logger.With("req_id", reqID, "document", doc.Name)
	logger.Info("server.process.start", "type", doc.Type, "bytes", doc.Size, "pages", doc.Pages)

	var sendErr error
	onProgress := func(p int) {
		if sendErr != nil {
			return
		}
		ev, _ := structpb.NewStruct(map[string]any{"event": EventProgress, "progress": p})
		if sendErr = stream.Send(ev); sendErr != nil {
			logger.Warn("server.process.send_failed", "err", sendErr)
			cancel()
		}
	}

	res, err := s.processor.ProcessDocument(ctx, doc.Upload(in.GetValue()), onProgress)
	if sendErr != nil {
		return sendErr
	}
	if err != nil {
		logger.Error("server.process.failed", "err", err)
		return toStatus(err)
	}

	ev, err := resultStruct(doc, res)
	if err != nil {
		logger.Error("server.process.encode_failed", "err", err)
		return common.InternalErrorf("encode result: %v", err)
	}
	if err := stream.Send(ev); err != nil {
		return err
	}
	logger.Info("server.process.ok", "fields", len(res.Fields), "degraded", res.Degraded)
	return nil
}

func (s *ExtractionService) InspectDocument(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	doc, err := s.inspect(ctx, in.GetValue())
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(documentMap(doc))
}

func (s *ExtractionService) Classify(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	name := strings.TrimSpace(in.GetValue())
	if name == "" {
		return nil, common.InvalidArgumentError("filename is required")
	}
	return wrapperspb.String(string(constants.ClassifyDocument(name))), nil
}

func (s *ExtractionService) inspect(ctx context.Context, content []byte) (document.Document, error) {
	name := filenameFromContext(ctx)
	if name == "" {
		return document.Document{}, common.InvalidArgumentErrorf("%s metadata is required", FilenameMetadataKey)
	}
	doc, err := document.Inspect(name, content, document.Options{MaxUploadMB: s.maxUploadMB})
	if err != nil {
		s.logger.Warn("server.inspect.rejected", "document", name, "err", err)
		return document.Document{}, toStatus(err)
	}
	return doc, nil
}

func filenameFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(FilenameMetadataKey); len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// toStatus maps pipeline and validation errors to gRPC codes.
func toStatus(err error) error {
	var (
		appErr *common.AppError
		upErr  *pipeline.UploadError
		apiErr *pipeline.ExtractionAPIError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &appErr) && errors.Is(err, common.ErrUnsupportedInput):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &appErr):
		return common.InvalidArgumentError(err.Error())
	case errors.As(err, &upErr), errors.As(err, &apiErr):
		return common.UnavailableError(err.Error())
	default:
		return common.InternalError(err.Error())
	}
}

func documentMap(doc document.Document) map[string]any {
	m := map[string]any{
		"name":         doc.Name,
		"type":         string(doc.Type),
		"size":         doc.Size,
		"size_label":   document.FormatSize(doc.Size),
		"content_type": doc.ContentType,
	}
	if doc.Pages > 0 {
		m["pages"] = doc.Pages
	}
	return m
}

func resultStruct(doc document.Document, res *pipeline.Result) (*structpb.Struct, error) {
	fields := make(map[string]any, len(res.Fields))
	for k, v := range res.Fields {
		fields[k] = v
	}
	issues := make([]any, 0, len(res.FormatIssues))
	for _, iss := range res.FormatIssues {
		issues = append(issues, map[string]any{"field": iss.Field, "message": iss.Message})
	}
	return structpb.NewStruct(map[string]any{
		"event":         EventResult,
		"progress":      constants.ProgressDone,
		"request_id":    res.RequestID,
		"document":      documentMap(doc),
		"fields":        fields,
		"enhanced":      toAnySlice(res.Enhanced),
		"degraded":      res.Degraded,
		"warnings":      toAnySlice(res.Warnings),
		"format_issues": issues,
	})
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
