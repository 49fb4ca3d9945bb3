package queryserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "explorer.v1.SnapshotQuery"

const (
	methodGetArtifact   = "GetArtifact"
	methodListArtifacts = "ListArtifacts"
	methodSelect        = "Select"
	methodBuildGraph    = "BuildGraph"
)

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// SnapshotQueryServer is the server API of the snapshot query service.
// Requests and responses are free-form structs; see Server for the fields
// each method reads and writes.
type SnapshotQueryServer interface {
	GetArtifact(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListArtifacts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Select(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BuildGraph(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(SnapshotQueryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SnapshotQueryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SnapshotQueryServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the snapshot query service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SnapshotQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: methodGetArtifact,
			Handler:    unaryHandler(methodGetArtifact, SnapshotQueryServer.GetArtifact),
		},
		{
			MethodName: methodListArtifacts,
			Handler:    unaryHandler(methodListArtifacts, SnapshotQueryServer.ListArtifacts),
		},
		{
			MethodName: methodSelect,
			Handler:    unaryHandler(methodSelect, SnapshotQueryServer.Select),
		},
		{
			MethodName: methodBuildGraph,
			Handler:    unaryHandler(methodBuildGraph, SnapshotQueryServer.BuildGraph),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "explorer/v1/snapshot_query.proto",
}

// RegisterSnapshotQueryServer registers srv on s.
func RegisterSnapshotQueryServer(s grpc.ServiceRegistrar, srv SnapshotQueryServer) {
	s.RegisterService(&ServiceDesc, srv)
}
