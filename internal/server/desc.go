package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "listingdocs.v1.ExtractionService"

	// FilenameMetadataKey carries the document filename alongside raw bytes.
	FilenameMetadataKey = "x-document-name"

	processDocumentMethod = "/" + ServiceName + "/ProcessDocument"
	inspectDocumentMethod = "/" + ServiceName + "/InspectDocument"
	classifyMethod        = "/" + ServiceName + "/Classify"
)

// ExtractionServer is the service surface. Messages are well-known protobuf
// types so no generated code is needed.
type ExtractionServer interface {
	// ProcessDocument streams progress events followed by one result event.
	ProcessDocument(*wrapperspb.BytesValue, grpc.ServerStreamingServer[structpb.Struct]) error
	// InspectDocument returns document metadata without calling any model.
	InspectDocument(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	// Classify maps a filename to its document type label.
	Classify(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtractionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InspectDocument", Handler: inspectDocumentHandler},
		{MethodName: "Classify", Handler: classifyHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "ProcessDocument", Handler: processDocumentHandler, ServerStreams: true},
	},
	Metadata: "listingdocs/v1/extraction.proto",
}

func RegisterExtractionServer(s grpc.ServiceRegistrar, srv ExtractionServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

func processDocumentHandler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.BytesValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ExtractionServer).ProcessDocument(in, &grpc.GenericServerStream[wrapperspb.BytesValue, structpb.Struct]{ServerStream: stream})
}

func inspectDocumentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractionServer).InspectDocument(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: inspectDocumentMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractionServer).InspectDocument(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func classifyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractionServer).Classify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: classifyMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractionServer).Classify(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ExtractionClient calls a remote ExtractionServer.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

// ProcessDocument uploads content under name and returns the event stream.
func (c *ExtractionClient) ProcessDocument(ctx context.Context, name string, content []byte, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	ctx = metadata.AppendToOutgoingContext(ctx, FilenameMetadataKey, name)
	stream, err := c.cc.NewStream(ctx, &ExtractionServiceDesc.Streams[0], processDocumentMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.BytesValue, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(wrapperspb.Bytes(content)); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *ExtractionClient) InspectDocument(ctx context.Context, name string, content []byte, opts ...grpc.CallOption) (*structpb.Struct, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, FilenameMetadataKey, name)
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, inspectDocumentMethod, wrapperspb.Bytes(content), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ExtractionClient) Classify(ctx context.Context, name string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, classifyMethod, wrapperspb.String(name), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
