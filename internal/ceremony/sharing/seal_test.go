package sharing

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	var recipientPriv [32]byte
	_, err := rand.Read(recipientPriv[:])
	require.NoError(t, err)

	recipientPub, err := x25519PublicFromPrivate(recipientPriv)
	require.NoError(t, err)

	plaintext := []byte("a secret share's wire bytes")
	sealed, err := Seal(recipientPub, plaintext)
	require.NoError(t, err)

	opened, err := Open(recipientPriv, sealed)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestOpenRejectsWrongRecipient(t *testing.T) {
	var recipientPriv, wrongPriv [32]byte
	_, err := rand.Read(recipientPriv[:])
	require.NoError(t, err)
	_, err = rand.Read(wrongPriv[:])
	require.NoError(t, err)

	recipientPub, err := x25519PublicFromPrivate(recipientPriv)
	require.NoError(t, err)

	sealed, err := Seal(recipientPub, []byte("payload"))
	require.NoError(t, err)

	_, err = Open(wrongPriv, sealed)
	require.Error(t, err)
}
