// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package vela

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/core/state"
	"github.com/velaproject/go-vela/core/types"
	"github.com/velaproject/go-vela/crypto"
)

// stakingRegistryStorageOffset is the 16-byte storage-slot offset used
// to derive a staker's balance slot in the staking-registry contract:
// an all-zero 16-byte array except for the final byte, 0x06
// (original_source/core/src/miner/staker.rs confirms the byte layout).
var stakingRegistryStorageOffset = func() [16]byte {
	var o [16]byte
	o[15] = 0x06
	return o
}()

// StakeSlot computes the storage key under which the staking-registry
// contract records address's stake.
func StakeSlot(address common.Address) [16]byte {
	digest := crypto.Keccak256(address.Bytes(), stakingRegistryStorageOffset[:])
	var slot [16]byte
	copy(slot[:], digest[:16])
	return slot
}

// ReadStake reads address's stake from the staking-registry contract's
// storage within st, returning 0 if the registry or the slot is unset.
func ReadStake(st *state.State, registry, address common.Address) (uint64, error) {
	slot := StakeSlot(address)
	value, err := st.StorageAt(registry, slot)
	if err != nil {
		return 0, err
	}
	// The stake is the low 8 bytes of the 16-byte word value; the top
	// 8 bytes are always zero.
	return uint64FromBE(value[8:]), nil
}

func uint64FromBE(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// defaultIneligibleDelta is the fallback eligibility delay (seconds)
// when a staker has zero stake.
const defaultIneligibleDelta = 1_000_000_000_000

// RequiredPosDelta computes the minimum elapsed time between a PoS
// ancestor and the next PoS block a staker with the given stake may
// produce, given the new seed:
//
//	u = ln(2^256) - ln(BE_integer(blake2b(seed)))
//	Δ_required = max(1, floor(difficulty·u/stake)) if stake > 0, else 10^12
func RequiredPosDelta(difficulty *uint256.Int, stake uint64, seed []byte) uint64 {
	if stake == 0 {
		return defaultIneligibleDelta
	}
	seedHash := crypto.Blake2b256(seed)
	return requiredPosDeltaFromHash(difficulty, stake, seedHash[:])
}

// requiredPosDeltaFromHash is RequiredPosDelta's pure math core, split
// out so the u = ln(2^256) - ln(hash) formula can be tested directly
// against a known hash value without needing a Blake2b preimage.
func requiredPosDeltaFromHash(difficulty *uint256.Int, stake uint64, hash []byte) uint64 {
	hashInt := new(big.Int).SetBytes(hash)
	hashFloat, _ := new(big.Float).SetInt(hashInt).Float64()
	if hashFloat <= 0 {
		hashFloat = 1
	}
	u := 256*math.Ln2 - math.Log(hashFloat)

	diffFloat, _ := new(big.Float).SetInt(difficulty.ToBig()).Float64()
	delta := diffFloat * u / float64(stake)

	d := uint64(math.Floor(delta))
	if d < 1 {
		d = 1
	}
	return d
}

// posEligibilityValidatorFn implements PoS grandparent validation,
// reading stake from the staking-registry contract at registry. Only
// parent is needed (to recover its seed and its timestamp); grandparent
// is accepted for signature-shape symmetry with GrandparentValidator
// but unused here.
func posEligibilityValidatorFn(registry common.Address) GrandparentValidator {
	return func(h, parent, _ *types.Header, st *state.State) error {
		if h.SealType() != types.SealTypePoS {
			return nil
		}
		seal := h.Seal()
		if len(seal) != 2 {
			return ErrInvalidSealArity
		}
		seed, signature := seal[0], seal[1]

		parentSeed := []byte{}
		if ps := parent.Seal(); len(ps) > 0 {
			parentSeed = ps[0]
		}
		authorFromSeed, err := crypto.VerifySealEntry(seed, parentSeed)
		if err != nil {
			return ErrInvalidSeal
		}
		bare := h.BareHash()
		authorFromBlock, err := crypto.VerifySealEntry(signature, bare[:])
		if err != nil {
			return ErrInvalidSeal
		}
		if authorFromSeed != authorFromBlock {
			return ErrInvalidSeal
		}

		stake, err := ReadStake(st, registry, authorFromSeed)
		if err != nil {
			return err
		}
		required := RequiredPosDelta(h.Difficulty(), stake, seed)
		if h.Timestamp()-parent.Timestamp() < required {
			return &InvalidPosTimestamp{Actual: h.Timestamp(), Parent: parent.Timestamp(), Required: required}
		}
		return nil
	}
}
