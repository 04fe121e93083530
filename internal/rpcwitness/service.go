package rpcwitness

import (
	"context"

	"github.com/chainbridge-validators/threshold-core/internal/rpctransport"
	"google.golang.org/grpc"
)

// WitnessServer is the service interface witness.proto describes. A real
// protoc-gen-go-grpc pass would generate this same interface name and
// shape from the .proto file's service definition.
type WitnessServer interface {
	TransactionSucceeded(context.Context, *TransactionSucceededRequest) (*WitnessAck, error)
	TransactionFailed(context.Context, *TransactionFailedRequest) (*WitnessAck, error)
}

// RegisterWitnessServer registers srv against the grpc server s, the same
// call shape a generated RegisterWitnessServer function would have.
func RegisterWitnessServer(s *grpc.Server, srv WitnessServer) {
	s.RegisterService(&witnessServiceDesc, srv)
}

func witnessTransactionSucceededHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TransactionSucceededRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WitnessServer).TransactionSucceeded(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/rpcwitness.Witness/TransactionSucceeded"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*TransactionSucceededRequest)
		if !ok {
			return nil, rpctransport.ErrUnexpectedType(req)
		}
		return srv.(WitnessServer).TransactionSucceeded(ctx, request)
	}
	return interceptor(ctx, in, info, handler)
}

func witnessTransactionFailedHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TransactionFailedRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WitnessServer).TransactionFailed(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/rpcwitness.Witness/TransactionFailed"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*TransactionFailedRequest)
		if !ok {
			return nil, rpctransport.ErrUnexpectedType(req)
		}
		return srv.(WitnessServer).TransactionFailed(ctx, request)
	}
	return interceptor(ctx, in, info, handler)
}

// witnessServiceDesc mirrors what protoc-gen-go-grpc emits as
// _Witness_serviceDesc for witness.proto's Witness service.
var witnessServiceDesc = grpc.ServiceDesc{
	ServiceName: "rpcwitness.Witness",
	HandlerType: (*WitnessServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TransactionSucceeded", Handler: witnessTransactionSucceededHandler},
		{MethodName: "TransactionFailed", Handler: witnessTransactionFailedHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "witness.proto",
}
