package wire

import (
	"fmt"
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/stretchr/testify/require"
)

func TestBatchAddRejectsWrongStage(t *testing.T) {
	b := NewBatch(StageHashComm1)
	err := b.Add(Envelope{Stage: StageCoeffComm3, From: 1, Raw: []byte("x")})
	require.Error(t, err)
}

func TestBatchAddOverwritesSameSender(t *testing.T) {
	b := NewBatch(StageHashComm1)
	require.NoError(t, b.Add(Envelope{Stage: StageHashComm1, From: 1, Raw: []byte("first")}))
	require.NoError(t, b.Add(Envelope{Stage: StageHashComm1, From: 1, Raw: []byte("second")}))

	require.Len(t, b.Envelopes, 1)
	require.Equal(t, []byte("second"), b.Envelopes[1].Raw)
}

func TestDecodeAllAttributesFailureToSender(t *testing.T) {
	b := NewBatch(StageHashComm1)
	require.NoError(t, b.Add(Envelope{Stage: StageHashComm1, From: 1, Raw: []byte("good")}))
	require.NoError(t, b.Add(Envelope{Stage: StageHashComm1, From: 2, Raw: []byte("corrupt")}))
	require.NoError(t, b.Add(Envelope{Stage: StageHashComm1, From: 3, Raw: []byte("good")}))

	parse := func(raw []byte) (string, error) {
		if string(raw) == "corrupt" {
			return "", fmt.Errorf("malformed payload")
		}
		return string(raw), nil
	}

	decoded, failures := DecodeAll(b, parse)

	require.Len(t, decoded, 2)
	require.Equal(t, "good", decoded[party.PartyIdx(1)])
	require.Equal(t, "good", decoded[party.PartyIdx(3)])

	require.Len(t, failures, 1)
	require.Equal(t, party.PartyIdx(2), failures[0].Sender)
}

func TestBatchSenders(t *testing.T) {
	b := NewBatch(StageComplaints6)
	require.NoError(t, b.Add(Envelope{Stage: StageComplaints6, From: 5, Raw: []byte("a")}))
	require.NoError(t, b.Add(Envelope{Stage: StageComplaints6, From: 9, Raw: []byte("b")}))

	senders := b.Senders()
	require.ElementsMatch(t, []party.PartyIdx{5, 9}, senders)
}
