package events

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/stretchr/testify/require"
)

func TestMemorySinkRecordsInOrder(t *testing.T) {
	sink := NewMemorySink()
	sink.Emit(TransactionBroadcastRequest{BroadcastID: 1})
	sink.Emit(BroadcastSuccess{BroadcastID: 1, TransactionOutID: chains.TransactionOutID("abc")})

	all := sink.All()
	require.Len(t, all, 2)
	require.Equal(t, "TransactionBroadcastRequest", all[0].Name())
	require.Equal(t, "BroadcastSuccess", all[1].Name())
}

func TestConfigUpdatedName(t *testing.T) {
	require.Equal(t, "PalletConfigUpdated", ConfigUpdated{}.Name())
}
