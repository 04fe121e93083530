package rpcops

import (
	"context"

	"google.golang.org/grpc"
)

// OpsClient is the client stub ops.proto would generate, used by
// cmd/validatorcli to reach a running validatorcore's operator RPC.
type OpsClient interface {
	ReSignBroadcast(ctx context.Context, in *ReSignBroadcastRequest, opts ...grpc.CallOption) (*OpAck, error)
	ReSignAborted(ctx context.Context, in *ReSignAbortedRequest, opts ...grpc.CallOption) (*OpAck, error)
	PendingBroadcasts(ctx context.Context, in *PendingBroadcastsRequest, opts ...grpc.CallOption) (*PendingBroadcastsReply, error)
}

type opsClient struct {
	cc *grpc.ClientConn
}

// NewOpsClient wraps cc, the same constructor shape lnrpc.NewLightningClient
// has over a dialed *grpc.ClientConn.
func NewOpsClient(cc *grpc.ClientConn) OpsClient {
	return &opsClient{cc: cc}
}

func (c *opsClient) ReSignBroadcast(ctx context.Context, in *ReSignBroadcastRequest, opts ...grpc.CallOption) (*OpAck, error) {
	out := new(OpAck)
	if err := c.cc.Invoke(ctx, "/rpcops.Ops/ReSignBroadcast", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *opsClient) ReSignAborted(ctx context.Context, in *ReSignAbortedRequest, opts ...grpc.CallOption) (*OpAck, error) {
	out := new(OpAck)
	if err := c.cc.Invoke(ctx, "/rpcops.Ops/ReSignAborted", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *opsClient) PendingBroadcasts(ctx context.Context, in *PendingBroadcastsRequest, opts ...grpc.CallOption) (*PendingBroadcastsReply, error) {
	out := new(PendingBroadcastsReply)
	if err := c.cc.Invoke(ctx, "/rpcops.Ops/PendingBroadcasts", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
