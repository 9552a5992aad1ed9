package backup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestParseKey(t *testing.T) {
	key, err := ParseKey(testKeyHex)
	require.NoError(t, err)
	require.Len(t, key, 32)

	_, err = ParseKey("deadbeef")
	require.ErrorIs(t, err, ErrKeySize)

	_, err = ParseKey("not-hex")
	require.ErrorIs(t, err, ErrKeySize)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key, err := ParseKey(testKeyHex)
	require.NoError(t, err)

	plaintext := []byte(strings.Repeat("incident data ", 1000))
	sealed, err := Seal(key, plaintext)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, sealed)

	opened, err := Open(key, sealed)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	key, err := ParseKey(testKeyHex)
	require.NoError(t, err)

	sealed, err := Seal(key, []byte("backup payload"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xFF
	_, err = Open(key, sealed)
	require.Error(t, err)
}

func TestOpen_WrongKey(t *testing.T) {
	key, err := ParseKey(testKeyHex)
	require.NoError(t, err)
	other, err := ParseKey("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	require.NoError(t, err)

	sealed, err := Seal(key, []byte("backup payload"))
	require.NoError(t, err)

	_, err = Open(other, sealed)
	require.Error(t, err)
}

func TestOpen_TooShort(t *testing.T) {
	key, err := ParseKey(testKeyHex)
	require.NoError(t, err)

	_, err = Open(key, []byte("short"))
	require.Error(t, err)
}

func TestSeal_NoncesDiffer(t *testing.T) {
	key, err := ParseKey(testKeyHex)
	require.NoError(t, err)

	a, err := Seal(key, []byte("same payload"))
	require.NoError(t, err)
	b, err := Seal(key, []byte("same payload"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
