// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package types

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/velaproject/go-vela/crypto"
)

func sealEntry(b byte) []byte {
	e := make([]byte, crypto.SealEntryLength)
	for i := range e {
		e[i] = b
	}
	return e
}

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := NewHeader()
	h.SetNumber(42)
	h.SetTimestamp(1000)
	h.SetSeal([][]byte{sealEntry(0xAA), sealEntry(0xBB)})

	encoded := h.Encode()

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, h.Number(), decoded.Number())
	require.Equal(t, h.Timestamp(), decoded.Timestamp())
	require.Equal(t, h.Seal(), decoded.Seal())
	require.Equal(t, encoded, decoded.Encode())

	require.Equal(t, crypto.Blake2b256(encoded), h.Hash())
	require.Equal(t, crypto.Blake2b256(h.EncodeBare()), h.BareHash())
	require.NotEqual(t, h.Hash(), h.BareHash())
}

func TestHeaderMutationInvalidatesMemoizedHashes(t *testing.T) {
	h := NewHeader()
	h.SetNumber(1)
	first := h.Hash()

	h.SetTimestamp(h.Timestamp() + 1)
	second := h.Hash()

	require.NotEqual(t, first, second, "mutating a field must invalidate the memoized hash")
}

func TestHeaderBoundary(t *testing.T) {
	maxU256 := new(uint256.Int).Not(uint256.NewInt(0))

	h := NewHeader()
	h.SetDifficulty(uint256.NewInt(1))
	require.Equal(t, maxU256, h.Boundary())

	h.SetDifficulty(uint256.NewInt(0))
	require.Equal(t, maxU256, h.Boundary())

	h.SetDifficulty(uint256.NewInt(2))
	want := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	want.Div(want, uint256.NewInt(2))
	want.Lsh(want, 1)
	require.Equal(t, want, h.Boundary())
}
