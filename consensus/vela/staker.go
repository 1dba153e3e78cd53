// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package vela

import (
	"context"
	"crypto/ed25519"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"golang.org/x/time/rate"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/core/types"
	"github.com/velaproject/go-vela/crypto"
	"github.com/velaproject/go-vela/log"
)

// Staker holds a PoS signing key and provides the steps of block
// production: Seed derives this validator's seed from the parent's,
// Eligible checks whether enough time has elapsed for its stake,
// Produce builds a sealed header, and Wait paces polling. It runs no
// loop or goroutine of its own; the caller drives these steps.
type Staker struct {
	key      ed25519.PrivateKey
	registry common.Address
	limiter  *rate.Limiter
	log      log.Logger
}

// NewStaker builds a Staker signing with key, polling eligibility no
// more than once per tick (golang.org/x/time/rate paces the poll loop
// so the staker wakes up periodically rather than busy-looping).
func NewStaker(key ed25519.PrivateKey, registry common.Address, tick rate.Limit) *Staker {
	return &Staker{
		key:      key,
		registry: registry,
		limiter:  rate.NewLimiter(tick, 1),
		log:      log.New("module", "vela/staker"),
	}
}

// Address returns the staker's own address.
func (s *Staker) Address() common.Address {
	return crypto.PublicKeyToAddress(s.key.Public().(ed25519.PublicKey))
}

// Seed computes this staker's seed entry for the block built on top of
// parent: an Ed25519 seal entry over the parent's own seed.
func (s *Staker) Seed(parent *types.Header) []byte {
	var parentSeed []byte
	if ps := parent.Seal(); len(ps) > 0 {
		parentSeed = ps[0]
	}
	return crypto.Sign(s.key, parentSeed)
}

// Eligible reports whether this staker, with the given stake and the
// seed it would sign, may produce the next PoS block on top of parent
// at nextTimestamp under nextDifficulty.
func (s *Staker) Eligible(nextDifficulty *uint256.Int, stake uint64, seed []byte, parent *types.Header, nextTimestamp uint64) bool {
	required := RequiredPosDelta(nextDifficulty, stake, seed)
	return nextTimestamp-parent.Timestamp() >= required
}

// Produce builds and seals a PoS header on top of parent: it fills in
// number/parentHash/timestamp/difficulty, computes this staker's seed
// and signs the bare hash, and returns the fully-sealed header ready
// for VerifyLocalSeal. attemptID correlates this attempt's log lines.
func (s *Staker) Produce(ctx context.Context, calc *Calculator, parent, grandparent *types.Header, now uint64) *types.Header {
	attemptID := uuid.NewString()
	l := s.log.New("attempt", attemptID, "parent", parent.Number())

	h := types.NewHeader()
	h.SetVersion(parent.Version())
	h.SetNumber(parent.Number() + 1)
	h.SetParentHash(parent.Hash())
	h.SetSealType(types.SealTypePoS)
	h.SetTimestamp(now)
	h.SetDifficulty(calc.CalculateDifficultyV1(parent, grandparent))

	seed := s.Seed(parent)
	bare := h.BareHash()
	sig := crypto.Sign(s.key, bare[:])
	h.SetSeal([][]byte{seed, sig})

	l.Debug("produced candidate PoS header")
	return h
}

// Wait blocks until the staker's poll limiter allows the next
// eligibility check, or ctx is done.
func (s *Staker) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}
