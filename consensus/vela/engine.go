// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Package vela implements the hybrid PoW/PoS consensus engine: header
// validation, difficulty/reward calculation, and seal generation. It
// follows the shape of a go-ethereum-family consensus.Engine
// (Author/VerifyHeader/Prepare/Seal/APIs), generalized to a
// grandparent- and stake-aware validation pipeline.
package vela

import (
	"context"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/core/state"
	"github.com/velaproject/go-vela/core/types"
	"github.com/velaproject/go-vela/crypto"
	"github.com/velaproject/go-vela/log"
)

// ChainReader is the narrow slice of chain access the engine needs to
// resolve a header's parent and grandparent; a full node supplies this
// from its block index.
type ChainReader interface {
	GetHeader(hash common.Hash, number uint64) *types.Header
	GetHeaderByNumber(number uint64) *types.Header
}

// Engine binds the difficulty calculator, validator pipelines, and
// staking-registry address into the chain's verification and sealing
// operations.
type Engine struct {
	params          Params
	calc            *Calculator
	stakingRegistry common.Address
	verify          EquihashVerifier
	log             log.Logger
}

// New builds an Engine. verify is the pluggable Equihash solution
// checker, wired in at a fixed mining-adapter boundary.
func New(p Params, stakingRegistry common.Address, verify EquihashVerifier) *Engine {
	return &Engine{
		params:          p,
		calc:            NewCalculator(p),
		stakingRegistry: stakingRegistry,
		verify:          verify,
		log:             log.New("module", "vela"),
	}
}

// Name returns the engine's identifier, surfaced in node info and logs.
func (e *Engine) Name() string { return "vela" }

// Author recovers the address that sealed header: the stake-registry
// signer for PoS blocks, or the zero address for PoW blocks, which
// carry no signer identity.
func (e *Engine) Author(h *types.Header) (common.Address, error) {
	if h.SealType() != types.SealTypePoS {
		return common.Address{}, nil
	}
	seal := h.Seal()
	if len(seal) != 2 {
		return common.Address{}, ErrInvalidSealArity
	}
	bare := h.BareHash()
	return crypto.VerifySealEntry(seal[1], bare[:])
}

// findGrandparent returns the nearest ancestor of parent that shares
// h's seal type: for mixed PoW/PoS chains, the grandparent validators
// compare a PoS block only against the most recent prior PoS block,
// skipping any interleaved PoW blocks (and vice versa).
func findGrandparent(chain ChainReader, h, parent *types.Header) *types.Header {
	if parent.Number() == 0 {
		return nil
	}
	cur := parent
	for {
		if cur.Number() == 0 {
			return nil
		}
		anc := chain.GetHeader(cur.ParentHash(), cur.Number()-1)
		if anc == nil {
			return nil
		}
		if anc.SealType() == h.SealType() {
			return anc
		}
		cur = anc
	}
}

// VerifyBlockBasic runs the cheap, stateless validator pipeline
// against h in isolation.
func (e *Engine) VerifyBlockBasic(h *types.Header) error {
	for _, v := range CheapValidators() {
		if err := v(h); err != nil {
			return err
		}
	}
	return nil
}

// VerifyBlockUnordered runs the costly PoW-verification pipeline; a
// no-op for PoS headers.
func (e *Engine) VerifyBlockUnordered(h *types.Header) error {
	for _, v := range CostlyValidators(e.params, e.verify) {
		if err := v(h); err != nil {
			return err
		}
	}
	return nil
}

// VerifyBlockFamily runs the parent- and grandparent-dependent
// pipelines, reading stake from st for PoS eligibility.
func (e *Engine) VerifyBlockFamily(chain ChainReader, h *types.Header, st *state.State) error {
	parent := chain.GetHeader(h.ParentHash(), h.Number()-1)
	if parent == nil {
		return fmt.Errorf("vela: unknown parent for block %d", h.Number())
	}
	for _, v := range ParentValidators() {
		if err := v(h, parent); err != nil {
			return err
		}
	}

	grandparent := findGrandparent(chain, h, parent)
	if parent.Number() != 0 && grandparent == nil {
		return ErrNoGrandparent
	}
	for _, v := range GrandparentValidators(e.calc, e.stakingRegistry) {
		if err := v(h, parent, grandparent, st); err != nil {
			return err
		}
	}
	return nil
}

// VerifyHeaders verifies the cheap and costly layers of each header in
// hs concurrently, returning the first error encountered (order of
// hs is irrelevant to the result since each header is checked in
// isolation). Family-layer verification needs sequential chain state
// and is intentionally not included here.
func (e *Engine) VerifyHeaders(ctx context.Context, hs []*types.Header) error {
	g, _ := errgroup.WithContext(ctx)
	for _, h := range hs {
		h := h
		g.Go(func() error {
			if err := e.VerifyBlockBasic(h); err != nil {
				return err
			}
			return e.VerifyBlockUnordered(h)
		})
	}
	return g.Wait()
}

// VerifyLocalSeal checks a header this node produced itself before
// gossiping it: the full basic+costly+family pipeline against chain.
func (e *Engine) VerifyLocalSeal(chain ChainReader, h *types.Header, st *state.State) error {
	if err := e.VerifyBlockBasic(h); err != nil {
		return err
	}
	if err := e.VerifyBlockUnordered(h); err != nil {
		return err
	}
	return e.VerifyBlockFamily(chain, h, st)
}

// PopulateFromParent fills in the difficulty field of a header being
// built on top of parent/grandparent via the calculator's version
// dispatch.
func (e *Engine) PopulateFromParent(version int, h, parent, grandparent *types.Header) {
	h.SetDifficulty(e.calc.CalculateDifficulty(version, parent, grandparent))
}

// CalculateDifficulty exposes the calculator directly for callers that
// only need the number, not a full header mutation.
func (e *Engine) CalculateDifficulty(version int, parent, grandparent *types.Header) *uint256.Int {
	return e.calc.CalculateDifficulty(version, parent, grandparent)
}

// OnCloseBlock credits the block reward to the author's account,
// mutating st as the block's finalization hook.
func (e *Engine) OnCloseBlock(h *types.Header, author common.Address, st *state.State) error {
	reward := e.calc.CalculateReward(h.Number())
	return st.AddBalance(author, new(big.Int).SetUint64(reward), state.CleanupMode{Kind: state.ForceCreate})
}

// SealHash returns the hash a seal is computed over: the header's
// memoized bare hash, excluding the seal fields.
func (e *Engine) SealHash(h *types.Header) common.Hash { return h.BareHash() }

// VerifyUncles is always nil: this chain has no uncle/ommer concept.
func (e *Engine) VerifyUncles(ChainReader, *types.Header) error { return nil }

// Close releases any resources the engine holds. The current Engine is
// stateless beyond its fields, so this is a no-op kept for interface
// symmetry with other consensus engines.
func (e *Engine) Close() error { return nil }

// SealFields returns the number of opaque seal entries this engine's
// headers carry: nonce+solution for a PoW seal, or seed+signature
// for a PoS seal — both shapes are always exactly two entries.
func (e *Engine) SealFields() int { return 2 }

// APIs returns the RPC API surface this engine exposes. There is no
// RPC server in this module, so the slice is always empty.
func (e *Engine) APIs() []interface{} { return nil }
