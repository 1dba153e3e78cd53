// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Validator pipelines for header verification, layered cheap-to-costly:
// stateless checks, the expensive PoW solution check, parent-dependent
// checks, and grandparent-dependent checks. The original composes
// validators as lists of boxed trait objects; here each layer is a
// plain Go slice of function values, the same slice for every header.
// A validator that applies to only one seal type checks the header's
// seal type itself and passes headers of the other type.
package vela

import (
	"math/big"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/core/state"
	"github.com/velaproject/go-vela/core/types"
	"github.com/velaproject/go-vela/crypto"
)

// KnownVersions is the set of accepted header versions.
var KnownVersions = map[byte]bool{1: true}

// CheapValidator performs a stateless, O(1) check against a header in
// isolation.
type CheapValidator func(h *types.Header) error

// CostlyValidator performs the expensive PoW solution check; skipped
// entirely for PoS headers.
type CostlyValidator func(h *types.Header) error

// ParentValidator checks header against its immediate chain parent.
type ParentValidator func(h, parent *types.Header) error

// GrandparentValidator checks header against its parent and (for PoS)
// the nearest same-seal-type grandparent, consulting state for the PoS
// stake lookup.
type GrandparentValidator func(h, parent, grandparent *types.Header, st *state.State) error

func versionValidator(h *types.Header) error {
	if !KnownVersions[h.Version()] {
		return ErrInvalidVersion
	}
	return nil
}

// MaxGasUsed bounds energy-consumed for the cheap validator; a
// generous fixed ceiling, since gas-price policy itself is out of
// scope here.
const MaxGasUsed = 1 << 40

func energyConsumedValidator(h *types.Header) error {
	if h.GasUsed() > h.GasLimit() || h.GasUsed() > MaxGasUsed {
		return ErrInvalidEnergyConsumed
	}
	return nil
}

func sealArityValidator(h *types.Header) error {
	seal := h.Seal()
	if len(seal) != 2 {
		return ErrInvalidSealArity
	}
	if h.SealType() == types.SealTypePoS {
		for _, entry := range seal {
			if len(entry) != crypto.SealEntryLength {
				return ErrBadSealFieldSize
			}
		}
	}
	return nil
}

func powBoundaryValidator(h *types.Header) error {
	if h.SealType() != types.SealTypePoW {
		return nil
	}
	mh := h.MineHash()
	hashInt := new(big.Int).SetBytes(mh[:])
	boundary := h.Boundary()
	if hashInt.Cmp(boundary.ToBig()) > 0 {
		return ErrInvalidEquihashSolution
	}
	return nil
}

// CheapValidators returns the cheap (stateless) validator pipeline for
// a header: version, energy-consumed, and (PoW: the mine-hash-meets-
// boundary check; PoS: seal arity/field-size).
func CheapValidators() []CheapValidator {
	return []CheapValidator{versionValidator, energyConsumedValidator, sealArityValidator, powBoundaryValidator}
}

// EquihashVerifier verifies an (n,k)-Equihash solution. The real
// memory-hard verification algorithm is out of this module's scope to
// reimplement from scratch; this is the seam a production build wires
// a verifier into. Equihash solving/verification is treated as an
// external, pluggable routine, the same way a mining adapter or
// executor subsystem would be wired in at a fixed boundary.
type EquihashVerifier func(n, k uint32, mineHash []byte, nonce, solution []byte) bool

// CostlyValidators returns the costly pipeline: full Equihash solution
// verification, skipped for PoS headers.
func CostlyValidators(p Params, verify EquihashVerifier) []CostlyValidator {
	return []CostlyValidator{
		func(h *types.Header) error {
			if h.SealType() == types.SealTypePoS {
				return nil
			}
			seal := h.Seal()
			if len(seal) != 2 {
				return ErrInvalidSealArity
			}
			nonce, solution := seal[0], seal[1]
			mh := h.MineHash()
			if !verify(p.EquihashN, p.EquihashK, mh[:], nonce, solution) {
				return ErrInvalidEquihashSolution
			}
			return nil
		},
	}
}

func numberValidator(h, parent *types.Header) error {
	if h.Number() != parent.Number()+1 {
		return ErrInvalidNumber
	}
	return nil
}

func timestampValidator(h, parent *types.Header) error {
	if h.Timestamp() <= parent.Timestamp() {
		return ErrInvalidTimestamp
	}
	return nil
}

// ParentValidators returns the parent-dependent pipeline.
func ParentValidators() []ParentValidator {
	return []ParentValidator{numberValidator, timestampValidator}
}

func difficultyValidator(calc *Calculator) GrandparentValidator {
	return func(h, parent, grandparent *types.Header, _ *state.State) error {
		if parent.Number() == 0 {
			if h.Difficulty().Cmp(parent.Difficulty()) != 0 {
				return &InvalidDifficulty{Expected: parent.Difficulty(), Found: h.Difficulty()}
			}
			return nil
		}
		if grandparent == nil {
			return ErrNoGrandparent
		}
		want := calc.CalculateDifficultyV1(parent, grandparent)
		if h.Difficulty().Cmp(want) != 0 {
			return &InvalidDifficulty{Expected: want, Found: h.Difficulty()}
		}
		return nil
	}
}

// GrandparentValidators returns the grandparent-dependent pipeline:
// difficulty always, plus (for PoS) the full stake-weighted
// eligibility check.
func GrandparentValidators(calc *Calculator, stakingRegistry common.Address) []GrandparentValidator {
	return []GrandparentValidator{
		difficultyValidator(calc),
		posEligibilityValidatorFn(stakingRegistry),
	}
}
