// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package state

import (
	"errors"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/trie"
)

// ErrBadProof is returned by CheckProof when the supplied proof nodes
// do not chain to the claimed root.
var ErrBadProof = errors.New("state: bad proof")

// AccountProof is everything a light client needs to verify a single
// account's existence and fields against a state root.
type AccountProof struct {
	Nodes   []trie.ProofNode
	Encoded []byte // nil if the account does not exist
}

// ProveAccount builds a Merkle proof for addr against the current main
// trie.
func (s *State) ProveAccount(addr common.Address) (*AccountProof, error) {
	nodes, value, err := s.main.Prove(secureAddrKey(addr))
	if err != nil {
		return nil, err
	}
	return &AccountProof{Nodes: nodes, Encoded: value}, nil
}

// StorageProof is the analogous proof for one storage slot, anchored
// to an account's storage root (which the caller must itself have
// proven via ProveAccount/CheckProof).
type StorageProof struct {
	Nodes []trie.ProofNode
	Value []byte
}

// ProveStorage builds a Merkle proof for a word- or dword-space slot
// under addr's storage trie.
func (s *State) ProveStorage(addr common.Address, domain storageDomain, key [16]byte) (*StorageProof, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return nil, err
	}
	if e.Account == nil {
		return &StorageProof{}, nil
	}
	st, err := s.storageTrieFor(addr, e.Account.StorageRoot)
	if err != nil {
		return nil, err
	}
	nodes, value, err := st.Prove(secureSlotKey(domain, key))
	if err != nil {
		return nil, err
	}
	return &StorageProof{Nodes: nodes, Value: value}, nil
}

// CheckProof verifies that proof establishes value (or absence, when
// value is nil) for key against root, without needing any local state.
func CheckProof(root common.Hash, key []byte, nodes []trie.ProofNode, claimedValue []byte) error {
	got, ok := trie.VerifyProof(root, key, nodes)
	if !ok {
		return ErrBadProof
	}
	if len(got) != len(claimedValue) {
		return ErrBadProof
	}
	for i := range got {
		if got[i] != claimedValue[i] {
			return ErrBadProof
		}
	}
	return nil
}
