// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package vela

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

// TestRequiredPosDelta exercises the u = ln(2^256) - ln(hash) formula
// directly against a synthetic 32-byte hash value whose leading byte
// is 0x80 and remaining bytes zero, i.e. hash == 2^255. That makes
// u = ln(2^256) - ln(2^255) = ln(2), matching the worked example of a
// staker with stake=16 and difficulty=16: Δ_required =
// max(1, floor(16*ln(2)/16)) = max(1, 0) = 1.
func TestRequiredPosDelta(t *testing.T) {
	hash := make([]byte, 32)
	hash[0] = 0x80

	got := requiredPosDeltaFromHash(uint256.NewInt(16), 16, hash)
	require.Equal(t, uint64(1), got)
}

func TestRequiredPosDeltaZeroStake(t *testing.T) {
	got := RequiredPosDelta(uint256.NewInt(16), 0, []byte("any seed"))
	require.Equal(t, uint64(defaultIneligibleDelta), got)
}
