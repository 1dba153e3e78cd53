// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Package state implements the checkpointed account-state cache: a
// local per-State cache of account entries backed by a Merkle-Patricia
// trie, with a hierarchical checkpoint/revert stack and a process-wide
// global cache that survives across State instances. A single State is
// not safe for concurrent use; the GlobalCache it feeds into is.
package state

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/ethdb"
	"github.com/velaproject/go-vela/trie"
)

// entryState is the lifecycle stage of a cached AccountEntry:
// CleanFresh / CleanCached / Dirty / Committed.
type entryState int

const (
	// CleanFresh: loaded from the trie this State's lifetime, never
	// written.
	CleanFresh entryState = iota
	// CleanCached: adopted from the GlobalCache, never written.
	CleanCached
	// Dirty: mutated locally since the last commit.
	Dirty
	// Committed: written into the main trie by the most recent Commit.
	Committed
)

// AccountEntry is one local-cache slot. A nil Account records that the
// address is known, in this cache, to not exist.
type AccountEntry struct {
	Account *Account
	State   entryState
}

func (e *AccountEntry) clone() *AccountEntry {
	if e == nil {
		return nil
	}
	cp := &AccountEntry{State: e.State}
	if e.Account != nil {
		cp.Account = e.Account.Clone()
	}
	return cp
}

func (e *AccountEntry) isDirty() bool { return e != nil && e.State == Dirty }

// CleanupModeKind selects how zero-value balance touches affect an
// absent account.
type CleanupModeKind int

const (
	// ForceCreate always materializes the account, even for a
	// zero-value transfer.
	ForceCreate CleanupModeKind = iota
	// NoEmpty never creates an account for a zero-value transfer.
	NoEmpty
	// TrackTouched behaves like NoEmpty but additionally records the
	// address in Touched, for callers that need to know which empty
	// accounts a zero-value operation brushed past (e.g. a later
	// state-clearing sweep).
	TrackTouched
)

// CleanupMode bundles the kind with the touched-address set
// TrackTouched needs.
type CleanupMode struct {
	Kind    CleanupModeKind
	Touched mapset.Set[common.Address]
}

// snapshotEntry is one checkpoint-stack record: either "addr was
// absent from the cache" or "addr held this entry".
type snapshotEntry struct {
	absent bool
	prev   *AccountEntry
}

// precompileAddr builds the two-byte-tail system addresses the commit
// edge rule always writes even when otherwise empty.
func precompileAddr(tail ...byte) common.Address {
	return common.BytesToAddress(tail)
}

var (
	precompileAddr1 = precompileAddr(0x01, 0x00)
	precompileAddr2 = precompileAddr(0x02, 0x00)
)

// State is the checkpointed account cache over a single Merkle-Patricia
// trie. Not safe for concurrent use from multiple goroutines.
type State struct {
	kv      ethdb.Database
	trieDB  *trie.Database
	main    *trie.Trie
	root    common.Hash
	codedb  ethdb.Database // same kv, distinguished by key prefix
	global  *GlobalCache
	startNonce uint64

	cache        map[common.Address]*AccountEntry
	storageTries map[common.Address]*trie.Trie
	checkpoints  []map[common.Address]snapshotEntry
	forceCommit  map[common.Address]bool
}

// New opens an empty state (no accounts) over kv.
func New(kv ethdb.Database, startNonce uint64, global *GlobalCache) *State {
	tdb := trie.NewDatabase(kv)
	main, _ := trie.New(trie.EmptyRoot, tdb) // empty root never fails
	return &State{
		kv:           kv,
		trieDB:       tdb,
		main:         main,
		root:         trie.EmptyRoot,
		codedb:       kv,
		global:       global,
		startNonce:   startNonce,
		cache:        make(map[common.Address]*AccountEntry),
		storageTries: make(map[common.Address]*trie.Trie),
		forceCommit:  make(map[common.Address]bool),
	}
}

// FromExisting reopens a state at root; it fails with trie.ErrMissingNode
// if root is not resolvable against kv.
func FromExisting(kv ethdb.Database, root common.Hash, startNonce uint64, global *GlobalCache) (*State, error) {
	tdb := trie.NewDatabase(kv)
	main, err := trie.New(root, tdb)
	if err != nil {
		return nil, err
	}
	return &State{
		kv:           kv,
		trieDB:       tdb,
		main:         main,
		root:         root,
		codedb:       kv,
		global:       global,
		startNonce:   startNonce,
		cache:        make(map[common.Address]*AccountEntry),
		storageTries: make(map[common.Address]*trie.Trie),
		forceCommit:  make(map[common.Address]bool),
	}, nil
}

// Root returns the last-committed state root; it does not reflect
// uncommitted mutations.
func (s *State) Root() common.Hash { return s.root }

// --- checkpointing ------------------------------------------------------

// Checkpoint pushes a new snapshot frame; mutations after this call can
// be undone back to this point with RevertToCheckpoint.
func (s *State) Checkpoint() {
	s.checkpoints = append(s.checkpoints, make(map[common.Address]snapshotEntry))
}

// DiscardCheckpoint drops the top frame, folding any of its captured
// "before" values that the parent frame hasn't already captured into
// the parent — first-write-wins, so the oldest recorded value for an
// address always wins.
func (s *State) DiscardCheckpoint() {
	n := len(s.checkpoints)
	if n == 0 {
		return
	}
	top := s.checkpoints[n-1]
	s.checkpoints = s.checkpoints[:n-1]
	if len(s.checkpoints) == 0 {
		return
	}
	parent := s.checkpoints[len(s.checkpoints)-1]
	for addr, snap := range top {
		if _, exists := parent[addr]; !exists {
			parent[addr] = snap
		}
	}
}

// RevertToCheckpoint undoes every mutation made since the matching
// Checkpoint call, restoring each touched address's prior cache entry
// (or removing it, if it didn't exist before the checkpoint).
func (s *State) RevertToCheckpoint() {
	n := len(s.checkpoints)
	if n == 0 {
		return
	}
	top := s.checkpoints[n-1]
	s.checkpoints = s.checkpoints[:n-1]
	for addr, snap := range top {
		if snap.absent {
			// addr had no cache entry when the checkpoint was taken. Only
			// purge it now if the current entry is still dirty — if it was
			// committed after the checkpoint (e.g. a nested, already-
			// discarded frame), that entry must survive for Drop to
			// propagate into GlobalCache.
			if cur, ok := s.cache[addr]; ok && cur.isDirty() {
				delete(s.cache, addr)
			}
			continue
		}
		s.cache[addr] = snap.prev
	}
}

// noteBeforeWrite records addr's current cache value into the
// innermost open checkpoint frame, if it has not already been recorded
// there (first write per frame wins), before a mutator overwrites it.
func (s *State) noteBeforeWrite(addr common.Address) {
	if len(s.checkpoints) == 0 {
		return
	}
	top := s.checkpoints[len(s.checkpoints)-1]
	if _, exists := top[addr]; exists {
		return
	}
	cur, ok := s.cache[addr]
	if !ok {
		top[addr] = snapshotEntry{absent: true}
		return
	}
	top[addr] = snapshotEntry{prev: cur.clone()}
}

// --- loading --------------------------------------------------------------

// ensureCached returns addr's cache entry, loading it from the global
// cache or the trie (and caching the negative result) if not already
// local. The returned entry must be cloned before any in-place mutation.
func (s *State) ensureCached(addr common.Address) (*AccountEntry, error) {
	if e, ok := s.cache[addr]; ok {
		return e, nil
	}
	if s.global != nil {
		if acct, ok := s.global.Get(addr); ok {
			e := &AccountEntry{Account: acct, State: CleanCached}
			s.cache[addr] = e
			return e, nil
		}
	}
	buf, err := s.main.TryGet(secureAddrKey(addr))
	if err != nil {
		return nil, err
	}
	var e *AccountEntry
	if buf == nil {
		e = &AccountEntry{Account: nil, State: CleanFresh}
	} else {
		e = &AccountEntry{Account: decodeAccount(buf), State: CleanFresh}
	}
	s.cache[addr] = e
	return e, nil
}

// storageTrieFor returns (creating if needed) the per-account storage
// trie rooted at the account's current StorageRoot.
func (s *State) storageTrieFor(addr common.Address, root common.Hash) (*trie.Trie, error) {
	if t, ok := s.storageTries[addr]; ok {
		return t, nil
	}
	t, err := trie.New(root, s.trieDB)
	if err != nil {
		return nil, err
	}
	s.storageTries[addr] = t
	return t, nil
}

func codeKey(hash common.Hash) []byte {
	key := make([]byte, 0, 33)
	key = append(key, 'c')
	key = append(key, hash[:]...)
	return key
}
