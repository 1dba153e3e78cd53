// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package vela

import "github.com/holiman/uint256"

// Params holds the tunable constants for the difficulty and reward
// calculators. Defaults match the genesis parameters recorded in
// original_source/core/src/engines/pow_equihash_engine/mod.rs
// (POWEquihashEngineParams).
type Params struct {
	RampupLowerBound uint64
	RampupUpperBound uint64
	RampupStartValue uint64
	RampupEndValue   uint64
	LowerBlockReward uint64
	UpperBlockReward uint64

	DifficultyBoundDivisor uint64
	BlockTimeLowerBound    uint64
	BlockTimeUpperBound    uint64
	MinimumDifficulty      uint64

	// EquihashN, EquihashK fix the memory-hard PoW parameter set
	// (n=210, k=9 at genesis).
	EquihashN uint32
	EquihashK uint32
}

// DefaultParams returns the genesis parameter set.
func DefaultParams() Params {
	return Params{
		RampupLowerBound:       0,
		RampupUpperBound:       259200,
		RampupStartValue:       748994641621655092,
		RampupEndValue:         1497989283243310185,
		LowerBlockReward:       748994641621655092,
		UpperBlockReward:       1497989283243310185,
		DifficultyBoundDivisor: 2048,
		BlockTimeLowerBound:    5,
		BlockTimeUpperBound:    15,
		MinimumDifficulty:      16,
		EquihashN:              210,
		EquihashK:              9,
	}
}

func minU256(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func maxU256(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}
