package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("signing-secret"))

	sealed, err := SealString("JBSWY3DPEHPK3PXP", key)
	require.NoError(t, err)
	require.NotEqual(t, "JBSWY3DPEHPK3PXP", sealed)

	plain, err := OpenString(sealed, key)
	require.NoError(t, err)
	require.Equal(t, "JBSWY3DPEHPK3PXP", plain)
}

func TestSealString_NonceVaries(t *testing.T) {
	key := DeriveKey([]byte("signing-secret"))

	a, err := SealString("seed", key)
	require.NoError(t, err)
	b, err := SealString("seed", key)
	require.NoError(t, err)
	require.NotEqual(t, a, b, "each seal must use a fresh nonce")
}

func TestOpenString_WrongKey(t *testing.T) {
	sealed, err := SealString("seed", DeriveKey([]byte("key-one")))
	require.NoError(t, err)

	_, err = OpenString(sealed, DeriveKey([]byte("key-two")))
	require.Error(t, err)
}

func TestOpenString_Malformed(t *testing.T) {
	key := DeriveKey([]byte("signing-secret"))

	_, err := OpenString("%%%not-base64%%%", key)
	require.ErrorIs(t, err, errMalformedSealed)

	_, err = OpenString("c2hvcnQ=", key) // valid base64, too short for a nonce
	require.ErrorIs(t, err, errMalformedSealed)
}
