package rpcops

import (
	"context"
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/chainbridge-validators/threshold-core/internal/clog"
	"github.com/stretchr/testify/require"
)

type fakeOperator struct {
	resignCalls  int
	resignErr    error
	abortedIDs   []chains.BroadcastID
	resignedAll  []chains.BroadcastID
	pendingIDs   []chains.BroadcastID
	attemptCount uint32
}

func (f *fakeOperator) ReSignBroadcast(id chains.BroadcastID, requestBroadcast bool, refreshReplayProtection bool) error {
	f.resignCalls++
	return f.resignErr
}
func (f *fakeOperator) AbortedBroadcastIDs() []chains.BroadcastID { return f.abortedIDs }
func (f *fakeOperator) ReSignAborted(ids []chains.BroadcastID)    { f.resignedAll = ids }
func (f *fakeOperator) PendingBroadcastIDs() []chains.BroadcastID { return f.pendingIDs }
func (f *fakeOperator) AttemptCount(chains.BroadcastID) uint32    { return f.attemptCount }

func newTestOpsServer(ops map[chains.ChainID]Operator) *Server {
	return NewServer(ops, clog.Logger(clog.SubsystemRPC))
}

func TestReSignBroadcastDelegates(t *testing.T) {
	f := &fakeOperator{}
	s := newTestOpsServer(map[chains.ChainID]Operator{chains.Ethereum: f})

	ack, err := s.ReSignBroadcast(context.Background(), &ReSignBroadcastRequest{
		ChainID: uint32(chains.Ethereum), BroadcastID: 1, RequestBroadcast: true,
	})
	require.NoError(t, err)
	require.True(t, ack.Accepted)
	require.Equal(t, 1, f.resignCalls)
}

func TestReSignBroadcastUnknownChainRejected(t *testing.T) {
	s := newTestOpsServer(map[chains.ChainID]Operator{})
	ack, err := s.ReSignBroadcast(context.Background(), &ReSignBroadcastRequest{ChainID: uint32(chains.Bitcoin)})
	require.NoError(t, err)
	require.False(t, ack.Accepted)
	require.NotEmpty(t, ack.Reason)
}

func TestReSignAbortedPassesAbortedIDsThrough(t *testing.T) {
	f := &fakeOperator{abortedIDs: []chains.BroadcastID{3, 4}}
	s := newTestOpsServer(map[chains.ChainID]Operator{chains.Solana: f})

	ack, err := s.ReSignAborted(context.Background(), &ReSignAbortedRequest{ChainID: uint32(chains.Solana)})
	require.NoError(t, err)
	require.True(t, ack.Accepted)
	require.Equal(t, []chains.BroadcastID{3, 4}, f.resignedAll)
}

func TestPendingBroadcastsReturnsIDsAndAttempts(t *testing.T) {
	f := &fakeOperator{pendingIDs: []chains.BroadcastID{9}, attemptCount: 2}
	s := newTestOpsServer(map[chains.ChainID]Operator{chains.Polkadot: f})

	reply, err := s.PendingBroadcasts(context.Background(), &PendingBroadcastsRequest{ChainID: uint32(chains.Polkadot)})
	require.NoError(t, err)
	require.Equal(t, []uint64{9}, reply.BroadcastIDs)
	require.Equal(t, []uint32{2}, reply.Attempts)
}
