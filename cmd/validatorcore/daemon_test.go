package main

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/chainbridge-validators/threshold-core/internal/config"
	"github.com/stretchr/testify/require"
)

type fakeCrypto struct{}

func (fakeCrypto) VerifySignature(chains.AggKey, chains.Payload, chains.ThresholdSignature) bool {
	return true
}
func (fakeCrypto) KeyHandoverIsRequired() bool { return false }
func (fakeCrypto) MaybeBroadcastBarriersOnRotation(chains.BroadcastID) []chains.BroadcastID {
	return nil
}

type fakeBuilder struct{}

func (fakeBuilder) BuildTransaction(chains.SignedApiCall) (chains.Transaction, error) {
	return chains.Transaction{}, nil
}
func (fakeBuilder) RefreshUnsignedData(*chains.Transaction) {}
func (fakeBuilder) RequiresSignatureRefresh(chains.ApiCall, chains.Payload, chains.AggKey) chains.RequiresSignatureRefresh {
	return chains.RequiresSignatureRefresh{}
}
func (fakeBuilder) ExtractMetadata(chains.Transaction) chains.TransactionMetadata { return nil }

type fakeSigner struct{}

func (fakeSigner) RequestSignature(chains.Payload) chains.RequestID { return 0 }
func (fakeSigner) RequestSignatureWithCallback(chains.Payload, func(chains.RequestID)) chains.RequestID {
	return 0
}
func (fakeSigner) SignatureResult(chains.RequestID) (chains.AggKey, chains.AsyncResult[chains.SignatureOutcome]) {
	return nil, chains.Pending[chains.SignatureOutcome]()
}

func testDeps(height uint64) Dependencies {
	return Dependencies{
		Chains: map[chains.ChainID]ChainDeps{
			chains.Ethereum: {
				Crypto:  fakeCrypto{},
				Builder: fakeBuilder{},
				Signer:  fakeSigner{},
				Height:  func() (uint64, error) { return height, nil },
			},
		},
		AuthoritySet: []chains.AccountID{{1}, {2}, {3}},
	}
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.WitnessListen = "127.0.0.1:0"
	cfg.RPCListen = "127.0.0.1:0"
	cfg.MetricsListen = "127.0.0.1:0"
	return cfg
}

func TestNewRegistersEveryDependencyChain(t *testing.T) {
	d, err := New(testConfig(t), testDeps(10))
	require.NoError(t, err)
	defer d.db.Close()

	require.ElementsMatch(t, []chains.ChainID{chains.Ethereum}, d.Registry().Active())
	_, ok := d.Pipeline(chains.Ethereum)
	require.True(t, ok)
}

func TestStartAndStopIsIdempotentAndReleasesListeners(t *testing.T) {
	d, err := New(testConfig(t), testDeps(1))
	require.NoError(t, err)

	require.NoError(t, d.Start())
	require.NoError(t, d.Start())

	require.NoError(t, d.Stop())
	require.NoError(t, d.Stop())
}

func TestPollLoopCallsHeightAndDrivesOnInitialize(t *testing.T) {
	var calls int32
	deps := Dependencies{
		Chains: map[chains.ChainID]ChainDeps{
			chains.Ethereum: {
				Crypto:  fakeCrypto{},
				Builder: fakeBuilder{},
				Signer:  fakeSigner{},
				Height: func() (uint64, error) {
					atomic.AddInt32(&calls, 1)
					return 7, nil
				},
			},
		},
	}

	d, err := New(testConfig(t), deps)
	require.NoError(t, err)
	defer d.db.Close()

	go d.pollLoop()
	defer close(d.quit)
	d.tick.Resume()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) > 0
	}, time.Second, 10*time.Millisecond)
}
