// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package vela

import (
	"math"

	"github.com/holiman/uint256"
	"github.com/velaproject/go-vela/core/types"
)

// Calculator computes next-block difficulty and miner reward from the
// parent and grandparent headers. It is immutable and safe to call
// concurrently from multiple goroutines on different header triples.
type Calculator struct {
	p Params
}

// NewCalculator builds a Calculator bound to p.
func NewCalculator(p Params) *Calculator { return &Calculator{p: p} }

// CalculateDifficultyV0 is the classical bound-divisor PoW retarget.
func (c *Calculator) CalculateDifficultyV0(parent, grandparent *types.Header) *uint256.Int {
	if parent.Number() == 0 {
		return parent.Difficulty()
	}
	minDiff := uint256.NewInt(c.p.MinimumDifficulty)
	boundDivisor := uint256.NewInt(c.p.DifficultyBoundDivisor)
	parentDiff := parent.Difficulty()

	diffBase := new(uint256.Int).Div(parentDiff, boundDivisor)
	diffBase = maxU256(diffBase, uint256.NewInt(1))

	delta := parent.Timestamp() - grandparent.Timestamp()

	var result *uint256.Int
	switch {
	case delta <= c.p.BlockTimeLowerBound:
		result = new(uint256.Int).Add(parentDiff, diffBase)
	case delta < c.p.BlockTimeUpperBound:
		result = parentDiff
	default:
		boundQuotient := (delta-c.p.BlockTimeUpperBound)/10 + 1
		multiplier := boundQuotient
		if multiplier > 99 {
			multiplier = 99
		}
		sub := new(uint256.Int).Mul(uint256.NewInt(multiplier), diffBase)
		if sub.Cmp(parentDiff) >= 0 {
			result = minDiff.Clone()
		} else {
			result = new(uint256.Int).Sub(parentDiff, sub)
		}
	}
	return maxU256(result, minDiff)
}

// posAlpha, posLambda fix the v1 retarget's adjustment rate. These are
// IEEE-754 float64 constants evaluated exactly as
// original_source/core/src/engines/pow_equihash_engine/mod.rs does;
// the float64 arithmetic here is load-bearing for cross-node agreement
// on the next difficulty, not an implementation convenience.
const (
	posAlpha  = 0.05
	posLambda = 1.0 / 20.0
)

// CalculateDifficultyV1 is the PoS-aware exponential retarget. parent
// and grandparent may be nil (e.g. for the first PoS block), in which
// case the initial difficulty (minimum_difficulty) is returned.
func (c *Calculator) CalculateDifficultyV1(parent, grandparent *types.Header) *uint256.Int {
	if parent == nil || grandparent == nil {
		return uint256.NewInt(c.p.MinimumDifficulty)
	}
	deltaTime := int64(parent.Timestamp()) - int64(grandparent.Timestamp())
	threshold := -math.Log(0.5) / posLambda

	parentDiff := parent.Difficulty().Uint64()
	diffF := float64(parentDiff)

	var next uint64
	switch d := float64(deltaTime) - threshold; {
	case d > 0:
		shrunk := uint64(math.Floor(diffF / (1 + posAlpha)))
		floor := uint64(0)
		if parentDiff > 0 {
			floor = parentDiff - 1
		}
		next = minU64(floor, shrunk)
	case d < 0:
		grown := uint64(math.Floor(diffF * (1 + posAlpha)))
		next = maxU64(parentDiff+1, grown)
	default:
		next = parentDiff
	}
	if next < c.p.MinimumDifficulty {
		next = c.p.MinimumDifficulty
	}
	return uint256.NewInt(next)
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// CalculateDifficulty dispatches to v0 or v1 by header version.
func (c *Calculator) CalculateDifficulty(version int, parent, grandparent *types.Header) *uint256.Int {
	if version == 0 {
		return c.CalculateDifficultyV0(parent, grandparent)
	}
	return c.CalculateDifficultyV1(parent, grandparent)
}

// CalculateReward is the block reward ramp. For block number n:
// n <= L -> lower; L < n <= U -> linear interpolation; n > U -> upper.
func (c *Calculator) CalculateReward(number uint64) uint64 {
	L, U := c.p.RampupLowerBound, c.p.RampupUpperBound
	if number <= L {
		return c.p.LowerBlockReward
	}
	if number > U {
		return c.p.UpperBlockReward
	}
	// m = (end - start) / (U - L), truncating integer division (matching
	// the U256 arithmetic this ramp is ported from); float64 cannot carry
	// these reward magnitudes precisely enough to reproduce it.
	start := uint256.NewInt(c.p.RampupStartValue)
	m := new(uint256.Int).SetUint64(c.p.RampupEndValue)
	m.Sub(m, start)
	m.Div(m, uint256.NewInt(U-L))

	reward := uint256.NewInt(number - L)
	reward.Mul(reward, m)
	reward.Add(reward, start)
	return reward.Uint64()
}
