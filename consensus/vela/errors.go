// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package vela

import (
	"errors"
	"fmt"
)

// Block errors.
var (
	ErrInvalidSealArity        = errors.New("vela: invalid seal arity")
	ErrInvalidSeal             = errors.New("vela: invalid seal")
	ErrInvalidTimestamp        = errors.New("vela: timestamp not strictly greater than parent")
	ErrInvalidNumber           = errors.New("vela: number is not parent.number + 1")
	ErrInvalidEquihashSolution = errors.New("vela: invalid equihash solution")
	ErrInvalidEnergyConsumed   = errors.New("vela: gas_used outside declared bounds")
	ErrInvalidVersion          = errors.New("vela: unknown header version")
)

// InvalidDifficulty is the InvalidDifficulty block error, carrying the
// expected and found values.
type InvalidDifficulty struct {
	Expected, Found interface{ String() string }
}

func (e *InvalidDifficulty) Error() string {
	return fmt.Sprintf("vela: invalid difficulty: expected %s, found %s", e.Expected, e.Found)
}

// InvalidPosTimestamp is returned when a PoS block arrives before its
// staker's eligibility delay has elapsed.
type InvalidPosTimestamp struct {
	Actual, Parent, Required uint64
}

func (e *InvalidPosTimestamp) Error() string {
	return fmt.Sprintf("vela: invalid pos timestamp: actual=%d parent=%d required_delta=%d",
		e.Actual, e.Parent, e.Required)
}

// Engine errors.
var (
	ErrNotAuthorized     = errors.New("vela: not authorized")
	ErrDoubleVote        = errors.New("vela: double vote")
	ErrNotProposer       = errors.New("vela: not proposer")
	ErrUnexpectedMessage = errors.New("vela: unexpected message")
	ErrBadSealFieldSize  = errors.New("vela: bad seal field size")
	ErrInsufficientProof = errors.New("vela: insufficient proof")
	ErrFailedSystemCall  = errors.New("vela: failed system call")
	ErrMalformedMessage  = errors.New("vela: malformed message")
	ErrRequiresClient    = errors.New("vela: requires client")
)

// Staker errors.
var (
	ErrPosInvalid     = errors.New("vela: pos seal rejected on re-verification")
	ErrFailedToImport = errors.New("vela: sealed block rejected by import pipeline")
)

// ErrNoGrandparent is raised if a non-genesis header is validated with
// no grandparent of the same seal type supplied; the original source
// panics here (original_source/.../grant_parent_header_validators.rs),
// but a library function should return an error instead.
var ErrNoGrandparent = errors.New("vela: non-genesis header requires a grandparent of the same seal type")
