package refresh

import (
	"math/big"
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/stretchr/testify/require"
)

type fakeApiCall struct{ id string }

func (c fakeApiCall) ThresholdSignaturePayload() chains.Payload { return nil }
func (c fakeApiCall) Signed(chains.ThresholdSignature, chains.AggKey) chains.SignedApiCall {
	return nil
}
func (c fakeApiCall) TransactionOutID() chains.TransactionOutID { return nil }
func (c fakeApiCall) RefreshReplayProtection()                  {}
func (c fakeApiCall) ReturnFeeRefund(*big.Int) *big.Int         { return big.NewInt(0) }

type fakeBuilder struct {
	result chains.RequiresSignatureRefresh
}

func (b fakeBuilder) BuildTransaction(chains.SignedApiCall) (chains.Transaction, error) {
	return chains.Transaction{}, nil
}
func (b fakeBuilder) RefreshUnsignedData(*chains.Transaction) {}
func (b fakeBuilder) RequiresSignatureRefresh(chains.ApiCall, chains.Payload, chains.AggKey) chains.RequiresSignatureRefresh {
	return b.result
}
func (b fakeBuilder) ExtractMetadata(chains.Transaction) chains.TransactionMetadata { return nil }

func TestEvaluateProceedsWhenNotRequired(t *testing.T) {
	b := fakeBuilder{result: chains.RequiresSignatureRefresh{Required: false}}
	outcome, replacement := Evaluate(b, nil, nil, nil)
	require.Equal(t, ProceedToDispatch, outcome)
	require.Nil(t, replacement)
}

func TestEvaluateRequestsFreshSignatureWithNoReplacement(t *testing.T) {
	b := fakeBuilder{result: chains.RequiresSignatureRefresh{Required: true}}
	outcome, replacement := Evaluate(b, nil, nil, nil)
	require.Equal(t, RequestFreshSignature, outcome)
	require.Nil(t, replacement)
}

func TestEvaluateReplacesCallWhenSignerMustChange(t *testing.T) {
	modified := fakeApiCall{id: "modified"}
	b := fakeBuilder{result: chains.RequiresSignatureRefresh{Required: true, Replacement: modified}}
	outcome, replacement := Evaluate(b, fakeApiCall{id: "original"}, nil, nil)
	require.Equal(t, ReplaceAndRequestFreshSignature, outcome)
	require.Equal(t, modified, replacement)
}
