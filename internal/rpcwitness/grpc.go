package rpcwitness

import (
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
)

// NewGRPCServer builds a *grpc.Server instrumented with
// go-grpc-prometheus's unary interceptor, the same per-RPC latency/count
// instrumentation the teacher wires in front of lnrpc's generated
// services, and registers srv against it.
func NewGRPCServer(srv WitnessServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
	)
	RegisterWitnessServer(s, srv)
	grpc_prometheus.Register(s)
	return s
}
