// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package vela

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/velaproject/go-vela/core/types"
)

func headerAt(timestamp, number uint64, difficulty uint64) *types.Header {
	h := types.NewHeader()
	h.SetNumber(number)
	h.SetTimestamp(timestamp)
	h.SetDifficulty(uint256.NewInt(difficulty))
	return h
}

func TestCalculateDifficultyV0(t *testing.T) {
	calc := NewCalculator(Params{
		DifficultyBoundDivisor: 2048,
		MinimumDifficulty:      16,
		BlockTimeLowerBound:    5,
		BlockTimeUpperBound:    15,
	})

	cases := []struct {
		name               string
		parentTS, parentD  uint64
		grandparentTS      uint64
		want               uint64
	}{
		{"floored at minimum", 1524538000, 1, 1524528000, 16},
		{"lower bound grows", 1524528005, 2000, 1524528000, 2001},
		{"middle band unchanged", 1524528010, 3000, 1524528000, 3000},
		{"upper band shrinks", 1524528020, 3000, 1524528000, 2999},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			parent := headerAt(c.parentTS, 100, c.parentD)
			grandparent := headerAt(c.grandparentTS, 99, 0)
			got := calc.CalculateDifficultyV0(parent, grandparent)
			require.Equal(t, c.want, got.Uint64())
		})
	}
}

func TestCalculateReward(t *testing.T) {
	calc := NewCalculator(Params{
		RampupLowerBound: 0,
		RampupUpperBound: 259200,
		RampupStartValue: 748994641621655092,
		RampupEndValue:   1497989283243310185,
		LowerBlockReward: 748994641621655092,
		UpperBlockReward: 1497989283243310185,
	})

	require.Equal(t, uint64(748997531261476163), calc.CalculateReward(1))
	require.Equal(t, uint64(777891039832365092), calc.CalculateReward(10000))
	require.Equal(t, uint64(1497989283243258292), calc.CalculateReward(259200))
	require.Equal(t, uint64(1497989283243310185), calc.CalculateReward(300000))
}
