package rpcwitness

import (
	"context"
	"fmt"
	"math/big"

	"github.com/btcsuite/btclog"
	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/decred/dcrd/lru"
)

// Broadcaster is the subset of *broadcast/pipeline.Pipeline the witness
// service drives - declared here, rather than importing pipeline
// directly, purely so tests can fake it cheaply.
type Broadcaster interface {
	TransactionSucceeded(txOutID chains.TransactionOutID, signer string, txFee *big.Int, txMetadata chains.TransactionMetadata, txRef string) error
	TransactionFailed(origin chains.AccountID, id chains.BroadcastID) error
}

// MetadataDecoder turns the witnessed raw metadata bytes a watcher reports
// back into the chains.TransactionMetadata shape that chain's
// TransactionBuilder produced at dispatch time, so pipeline.VerifyMetadata
// has something to compare against. One per chain, supplied by whatever
// constructs the chain's TransactionBuilder.
type MetadataDecoder func(raw []byte) (chains.TransactionMetadata, error)

// Server implements WitnessServer, the same thin
// handler-delegates-to-core shape rpcServer uses over *server/lnwallet.
// Repeated (origin, BroadcastId) submissions - the same validator's grpc
// call retried after a transient failure - are deduplicated against a
// bounded LRU before ever reaching a Broadcaster, rather than making the
// pipeline itself idempotency-aware beyond its existing duplicate-failure
// check.
type Server struct {
	pipelines map[chains.ChainID]Broadcaster
	decoders  map[chains.ChainID]MetadataDecoder
	seen      *lru.Cache
	log       btclog.Logger
}

var _ WitnessServer = (*Server)(nil)

// NewServer constructs a witness service over the given per-chain
// pipelines. seenCapacity bounds how many recent (origin, BroadcastId)
// pairs are remembered for deduplication.
func NewServer(pipelines map[chains.ChainID]Broadcaster, decoders map[chains.ChainID]MetadataDecoder, seenCapacity uint, log btclog.Logger) *Server {
	return &Server{
		pipelines: pipelines,
		decoders:  decoders,
		seen:      lru.New(seenCapacity),
		log:       log,
	}
}

func dedupeKeyFailed(chain chains.ChainID, origin chains.AccountID, id chains.BroadcastID) string {
	return fmt.Sprintf("failed:%d:%x:%d", chain, origin, id)
}

func dedupeKeySucceeded(chain chains.ChainID, txOutID []byte) string {
	return fmt.Sprintf("succeeded:%d:%x", chain, txOutID)
}

// TransactionSucceeded implements WitnessServer.
func (s *Server) TransactionSucceeded(ctx context.Context, req *TransactionSucceededRequest) (*WitnessAck, error) {
	chain := chains.ChainID(req.ChainID)

	key := dedupeKeySucceeded(chain, req.TxOutID)
	if s.seen.Contains(key) {
		return &WitnessAck{Accepted: true}, nil
	}

	p, ok := s.pipelines[chain]
	if !ok {
		return &WitnessAck{Accepted: false, Reason: "unknown chain"}, nil
	}

	var metadata chains.TransactionMetadata
	if decode, ok := s.decoders[chain]; ok && len(req.TxMetadata) > 0 {
		m, err := decode(req.TxMetadata)
		if err != nil {
			s.log.Errorf("rpcwitness: decoding witnessed metadata for chain %s: %v", chain, err)
			return &WitnessAck{Accepted: false, Reason: "invalid metadata"}, nil
		}
		metadata = m
	}

	fee := new(big.Int).SetBytes(req.TxFee)
	if err := p.TransactionSucceeded(chains.TransactionOutID(req.TxOutID), req.Signer, fee, metadata, req.TxRef); err != nil {
		return &WitnessAck{Accepted: false, Reason: err.Error()}, nil
	}

	s.seen.Add(key)
	return &WitnessAck{Accepted: true}, nil
}

// TransactionFailed implements WitnessServer.
func (s *Server) TransactionFailed(ctx context.Context, req *TransactionFailedRequest) (*WitnessAck, error) {
	chain := chains.ChainID(req.ChainID)
	id := chains.BroadcastID(req.BroadcastID)

	var origin chains.AccountID
	copy(origin[:], req.Origin)

	key := dedupeKeyFailed(chain, origin, id)
	if s.seen.Contains(key) {
		return &WitnessAck{Accepted: true}, nil
	}

	p, ok := s.pipelines[chain]
	if !ok {
		return &WitnessAck{Accepted: false, Reason: "unknown chain"}, nil
	}

	if err := p.TransactionFailed(origin, id); err != nil {
		return &WitnessAck{Accepted: false, Reason: err.Error()}, nil
	}

	s.seen.Add(key)
	return &WitnessAck{Accepted: true}, nil
}
