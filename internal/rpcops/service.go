package rpcops

import (
	"context"

	"github.com/chainbridge-validators/threshold-core/internal/rpctransport"
	"google.golang.org/grpc"
)

// OpsServer is the service interface ops.proto would describe: governance
// re-sign operations plus a read-only pending-broadcasts listing.
type OpsServer interface {
	ReSignBroadcast(context.Context, *ReSignBroadcastRequest) (*OpAck, error)
	ReSignAborted(context.Context, *ReSignAbortedRequest) (*OpAck, error)
	PendingBroadcasts(context.Context, *PendingBroadcastsRequest) (*PendingBroadcastsReply, error)
}

// RegisterOpsServer registers srv against s, the same call shape a
// generated RegisterOpsServer function would have.
func RegisterOpsServer(s *grpc.Server, srv OpsServer) {
	s.RegisterService(&opsServiceDesc, srv)
}

func opsReSignBroadcastHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReSignBroadcastRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OpsServer).ReSignBroadcast(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/rpcops.Ops/ReSignBroadcast"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*ReSignBroadcastRequest)
		if !ok {
			return nil, rpctransport.ErrUnexpectedType(req)
		}
		return srv.(OpsServer).ReSignBroadcast(ctx, request)
	}
	return interceptor(ctx, in, info, handler)
}

func opsReSignAbortedHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReSignAbortedRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OpsServer).ReSignAborted(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/rpcops.Ops/ReSignAborted"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*ReSignAbortedRequest)
		if !ok {
			return nil, rpctransport.ErrUnexpectedType(req)
		}
		return srv.(OpsServer).ReSignAborted(ctx, request)
	}
	return interceptor(ctx, in, info, handler)
}

func opsPendingBroadcastsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PendingBroadcastsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OpsServer).PendingBroadcasts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/rpcops.Ops/PendingBroadcasts"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*PendingBroadcastsRequest)
		if !ok {
			return nil, rpctransport.ErrUnexpectedType(req)
		}
		return srv.(OpsServer).PendingBroadcasts(ctx, request)
	}
	return interceptor(ctx, in, info, handler)
}

// opsServiceDesc mirrors what protoc-gen-go-grpc emits as
// _Ops_serviceDesc for a hypothetical ops.proto.
var opsServiceDesc = grpc.ServiceDesc{
	ServiceName: "rpcops.Ops",
	HandlerType: (*OpsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReSignBroadcast", Handler: opsReSignBroadcastHandler},
		{MethodName: "ReSignAborted", Handler: opsReSignAbortedHandler},
		{MethodName: "PendingBroadcasts", Handler: opsPendingBroadcastsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ops.proto",
}
