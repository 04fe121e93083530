package wire

import (
	"bytes"
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/stretchr/testify/require"
)

func TestWriteReadEnvelopeRoundTrip(t *testing.T) {
	e := Envelope{
		Stage: StageCoeffComm3,
		From:  party.PartyIdx(4),
		Raw:   []byte("a DKGCommitment's encoded bytes"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEnvelope(&buf, e))

	got, err := ReadEnvelope(&buf)
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestEncodeDecodeEnvelope(t *testing.T) {
	e := Envelope{
		Stage: StageSecretShare5,
		From:  party.PartyIdx(1),
		Raw:   []byte("a sealed share"),
	}

	b, err := EncodeEnvelope(e)
	require.NoError(t, err)

	got, err := DecodeEnvelope(b)
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestReadEnvelopeRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(StageHashComm1))
	buf.Write([]byte{0, 0, 0, 1})
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF}) // absurd length prefix

	_, err := ReadEnvelope(&buf)
	require.Error(t, err)
}

func TestWriteEnvelopeRejectsOversizedPayload(t *testing.T) {
	e := Envelope{
		Stage: StageHashComm1,
		From:  party.PartyIdx(1),
		Raw:   make([]byte, MaxEnvelopePayload+1),
	}

	var buf bytes.Buffer
	require.Error(t, WriteEnvelope(&buf, e))
}

func TestStageIDString(t *testing.T) {
	require.Equal(t, "HashComm1", StageHashComm1.String())
	require.Equal(t, "VerifyBlameResponses9", StageVerifyBlameResponses9.String())
	require.Contains(t, StageID(250).String(), "StageID")
}
