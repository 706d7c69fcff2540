package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/listing-docs/internal/llm"
	"github.com/joseph-ayodele/listing-docs/internal/pipeline"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type stubProcessor struct {
	err    error
	result *pipeline.Result
	got    llm.FileUpload
}

func (s *stubProcessor) ProcessDocument(_ context.Context, upload llm.FileUpload, onProgress pipeline.ProgressFunc) (*pipeline.Result, error) {
	s.got = upload
	for _, p := range []int{10, 30, 40, 70, 80, 85} {
		onProgress(p)
	}
	if s.err != nil {
		return nil, s.err
	}
	onProgress(100)
	return s.result, nil
}

func startServer(t *testing.T, proc DocumentProcessor) (*ExtractionClient, *grpc.ClientConn) {
	return startServerWithLimit(t, proc, 1)
}

func startServerWithLimit(t *testing.T, proc DocumentProcessor, maxUploadMB int) (*ExtractionClient, *grpc.ClientConn) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gs, _ := NewGRPCServer(NewExtractionService(proc, maxUploadMB, logger), maxUploadMB, logger)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewExtractionClient(conn), conn
}

func collect(t *testing.T, stream grpc.ServerStreamingClient[structpb.Struct]) ([]*structpb.Struct, error) {
	t.Helper()
	var events []*structpb.Struct
	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

func TestProcessDocument_StreamsProgressThenResult(t *testing.T) {
	proc := &stubProcessor{result: &pipeline.Result{
		RequestID:    "req-1",
		Fields:       llm.FieldMap{"city": "Toronto", "bedrooms": "3"},
		Enhanced:     []string{"bedrooms"},
		FormatIssues: []llm.FieldIssue{{Field: "zipCode", Message: "does not match"}},
	}}
	client, _ := startServer(t, proc)

	stream, err := client.ProcessDocument(context.Background(), "floor_plan.png", pngBytes)
	require.NoError(t, err)
	events, err := collect(t, stream)
	require.NoError(t, err)
	require.Len(t, events, 8)

	var progress []float64
	for _, ev := range events[:7] {
		assert.Equal(t, EventProgress, ev.Fields["event"].GetStringValue())
		progress = append(progress, ev.Fields["progress"].GetNumberValue())
	}
	assert.Equal(t, []float64{10, 30, 40, 70, 80, 85, 100}, progress)

	res := events[7].AsMap()
	assert.Equal(t, EventResult, res["event"])
	assert.Equal(t, map[string]any{"city": "Toronto", "bedrooms": "3"}, res["fields"])
	assert.Equal(t, []any{"bedrooms"}, res["enhanced"])
	assert.Equal(t, false, res["degraded"])
	doc := res["document"].(map[string]any)
	assert.Equal(t, "Floor Plan", doc["type"])
	assert.Equal(t, "image/png", doc["content_type"])

	assert.Equal(t, "floor_plan.png", proc.got.Name)
	assert.Equal(t, "image/png", proc.got.ContentType)
}

func TestProcessDocument_ErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"upload", &pipeline.UploadError{Status: 500, Body: "down"}, codes.Unavailable},
		{"extraction", &pipeline.ExtractionAPIError{Status: 400, Body: "bad"}, codes.Unavailable},
		{"cancelled", context.Canceled, codes.Canceled},
		{"other", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := startServer(t, &stubProcessor{err: tt.err})
			stream, err := client.ProcessDocument(context.Background(), "a.png", pngBytes)
			require.NoError(t, err)
			events, err := collect(t, stream)
			assert.Len(t, events, 6)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestProcessDocument_RejectsBadInput(t *testing.T) {
	client, _ := startServer(t, &stubProcessor{})

	stream, err := client.ProcessDocument(context.Background(), "", pngBytes)
	require.NoError(t, err)
	_, err = collect(t, stream)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	stream, err = client.ProcessDocument(context.Background(), "notes.pdf", []byte("plain text"))
	require.NoError(t, err)
	_, err = collect(t, stream)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestInspectDocument(t *testing.T) {
	client, _ := startServer(t, &stubProcessor{})

	out, err := client.InspectDocument(context.Background(), "Purchase_Offer.png", pngBytes)
	require.NoError(t, err)
	m := out.AsMap()
	assert.Equal(t, "Purchase Agreement", m["type"])
	assert.Equal(t, float64(len(pngBytes)), m["size"])

	_, err = client.InspectDocument(context.Background(), "big.txt", pngBytes)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestInspectDocument_AcceptsUpToUploadLimit(t *testing.T) {
	client, _ := startServerWithLimit(t, &stubProcessor{result: &pipeline.Result{Fields: llm.FieldMap{}}}, 20)

	big := append(append([]byte{}, pngBytes...), make([]byte, 5<<20)...)
	out, err := client.InspectDocument(context.Background(), "floor_plan.png", big)
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.AsMap()["content_type"])
	assert.Equal(t, float64(len(big)), out.AsMap()["size"])

	stream, err := client.ProcessDocument(context.Background(), "floor_plan.png", big)
	require.NoError(t, err)
	_, err = collect(t, stream)
	require.NoError(t, err)
}

func TestInspectDocument_OverLimitIsInvalidArgument(t *testing.T) {
	client, _ := startServerWithLimit(t, &stubProcessor{}, 2)

	big := append(append([]byte{}, pngBytes...), make([]byte, 2<<20+1)...)
	_, err := client.InspectDocument(context.Background(), "floor_plan.png", big)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestClassify(t *testing.T) {
	client, _ := startServer(t, &stubProcessor{})

	got, err := client.Classify(context.Background(), "Home_Inspection_2024.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Inspection Report", got)

	_, err = client.Classify(context.Background(), "  ")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealth(t *testing.T) {
	_, conn := startServer(t, &stubProcessor{})
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestToStatus_Default(t *testing.T) {
	err := toStatus(errors.New("x"))
	assert.Equal(t, codes.Internal, status.Code(err))
}
