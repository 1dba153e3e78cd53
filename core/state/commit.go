// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package state

import (
	"github.com/velaproject/go-vela/common"
)

// Commit flushes every dirty account's pending code and storage writes,
// re-encodes and writes (or deletes) each account in the main trie, and
// returns the new state root.
//
// Commit edge rule: an account with zero balance, zero nonce, the
// empty-code hash and no pending storage changes (see
// IsEmptyCodeNoStorage), that was not forced via SetEmptyButCommit, is
// demoted back to CleanFresh instead of being written — except the two
// fixed precompile addresses, which are always written regardless of
// their shape.
func (s *State) Commit() (common.Hash, error) {
	for addr, entry := range s.cache {
		if !entry.isDirty() {
			continue
		}

		if entry.Account == nil {
			if err := s.main.TryDelete(secureAddrKey(addr)); err != nil {
				return common.Hash{}, err
			}
			entry.State = Committed
			continue
		}

		a := entry.Account

		if len(a.code) > 0 {
			if err := s.codedb.Put(codeKey(a.CodeHash), a.code); err != nil {
				return common.Hash{}, err
			}
			a.code = nil
		}

		if a.HasStorageChanges() {
			st, err := s.storageTrieFor(addr, a.StorageRoot)
			if err != nil {
				return common.Hash{}, err
			}
			for k, v := range a.overlay {
				key := secureSlotKeyFromSlotKey(k)
				if isAllZero(v) {
					if err := st.TryDelete(key); err != nil {
						return common.Hash{}, err
					}
					continue
				}
				if err := st.TryUpdate(key, v); err != nil {
					return common.Hash{}, err
				}
			}
			newRoot, err := st.Commit()
			if err != nil {
				return common.Hash{}, err
			}
			a.StorageRoot = newRoot
			a.overlay = nil
		}

		forced := s.forceCommit[addr]
		isPrecompile := addr == precompileAddr1 || addr == precompileAddr2
		if a.IsEmptyCodeNoStorage() && !forced && !isPrecompile {
			entry.State = CleanFresh
			delete(s.forceCommit, addr)
			continue
		}

		if err := s.main.TryUpdate(secureAddrKey(addr), encodeAccount(a)); err != nil {
			return common.Hash{}, err
		}
		entry.State = Committed
		delete(s.forceCommit, addr)
	}

	root, err := s.main.Commit()
	if err != nil {
		return common.Hash{}, err
	}
	s.root = root
	return root, nil
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Drop propagates this State's cache entries into the shared global
// cache and releases the local cache. Call Drop once a State is no longer needed so later
// States opened against the same backing store benefit from its reads.
func (s *State) Drop() {
	if s.global == nil {
		return
	}
	for addr, entry := range s.cache {
		if entry.State == Dirty {
			// Uncommitted local mutations must never leak into the
			// shared cache.
			continue
		}
		s.global.Put(addr, entry.Account)
	}
	s.cache = make(map[common.Address]*AccountEntry)
}
