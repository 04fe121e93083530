package rpcops

import (
	"context"

	"github.com/btcsuite/btclog"
	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/go-errors/errors"
)

var errUnknownChain = errors.New("rpcops: no pipeline registered for chain")

// Operator is the subset of *broadcast/pipeline.Pipeline this service
// calls. Declared locally, the same way rpcwitness.Broadcaster is, so
// tests can fake it cheaply; *pipeline.Pipeline satisfies it as-is.
type Operator interface {
	ReSignBroadcast(id chains.BroadcastID, requestBroadcast bool, refreshReplayProtection bool) error
	AbortedBroadcastIDs() []chains.BroadcastID
	ReSignAborted(ids []chains.BroadcastID)
	PendingBroadcastIDs() []chains.BroadcastID
	AttemptCount(id chains.BroadcastID) uint32
}

// Server implements OpsServer by delegating to one Operator per chain.
type Server struct {
	pipelines map[chains.ChainID]Operator
	log       btclog.Logger
}

var _ OpsServer = (*Server)(nil)

// NewServer constructs a Server over pipelines.
func NewServer(pipelines map[chains.ChainID]Operator, log btclog.Logger) *Server {
	return &Server{pipelines: pipelines, log: log}
}

func (s *Server) lookup(chainID uint32) (Operator, error) {
	p, ok := s.pipelines[chains.ChainID(chainID)]
	if !ok {
		return nil, errUnknownChain
	}
	return p, nil
}

// ReSignBroadcast re-signs a single broadcast (spec.md §4.5
// re_sign_broadcast).
func (s *Server) ReSignBroadcast(ctx context.Context, req *ReSignBroadcastRequest) (*OpAck, error) {
	p, err := s.lookup(req.ChainID)
	if err != nil {
		return &OpAck{Accepted: false, Reason: err.Error()}, nil
	}
	if err := p.ReSignBroadcast(chains.BroadcastID(req.BroadcastID), req.RequestBroadcast, req.RefreshReplayProtection); err != nil {
		return &OpAck{Accepted: false, Reason: err.Error()}, nil
	}
	return &OpAck{Accepted: true}, nil
}

// ReSignAborted re-signs every currently-aborted broadcast on one chain
// (spec.md §4.5 re_sign_aborted_broadcasts).
func (s *Server) ReSignAborted(ctx context.Context, req *ReSignAbortedRequest) (*OpAck, error) {
	p, err := s.lookup(req.ChainID)
	if err != nil {
		return &OpAck{Accepted: false, Reason: err.Error()}, nil
	}
	p.ReSignAborted(p.AbortedBroadcastIDs())
	return &OpAck{Accepted: true}, nil
}

// PendingBroadcasts lists every currently-pending BroadcastId on one
// chain, alongside each one's attempt count, for operator diagnostics.
func (s *Server) PendingBroadcasts(ctx context.Context, req *PendingBroadcastsRequest) (*PendingBroadcastsReply, error) {
	p, err := s.lookup(req.ChainID)
	if err != nil {
		return nil, err
	}
	ids := p.PendingBroadcastIDs()
	reply := &PendingBroadcastsReply{
		BroadcastIDs: make([]uint64, len(ids)),
		Attempts:     make([]uint32, len(ids)),
	}
	for i, id := range ids {
		reply.BroadcastIDs[i] = uint64(id)
		reply.Attempts[i] = p.AttemptCount(id)
	}
	return reply, nil
}
