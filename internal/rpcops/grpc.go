package rpcops

import (
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
)

// NewGRPCServer builds a *grpc.Server instrumented with
// go-grpc-prometheus's unary interceptor and registers srv against it -
// same shape as rpcwitness.NewGRPCServer.
func NewGRPCServer(srv OpsServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
	)
	RegisterOpsServer(s, srv)
	grpc_prometheus.Register(s)
	return s
}
