// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package state

import (
	"github.com/VictoriaMetrics/fastcache"
	"github.com/holiman/bloomfilter/v2"
	"github.com/velaproject/go-vela/common"
)

// globalCacheBytes sizes the process-wide account cache shared by every
// State opened against the same backing store; this cache must be
// concurrency-safe since multiple State instances may share it.
const globalCacheBytes = 64 * 1024 * 1024

// GlobalCache is the concurrency-safe, process-wide cache that State
// instances populate on Drop and consult on fresh reads before
// touching the trie. fastcache is
// itself safe for concurrent use, so no extra locking is needed around
// the cache proper; the bloom filter gives a cheap, approximate
// negative-existence hint (is_known_null) for addresses that have been
// recorded as non-existent.
type GlobalCache struct {
	accounts  *fastcache.Cache
	knownNull *bloomfilter.Filter
}

// NewGlobalCache builds an empty global cache sized for roughly
// expectedAccounts entries in the negative-existence filter.
func NewGlobalCache(expectedAccounts uint64) *GlobalCache {
	if expectedAccounts == 0 {
		expectedAccounts = 1 << 20
	}
	f, err := bloomfilter.NewOptimal(expectedAccounts, 0.01)
	if err != nil {
		// NewOptimal only fails on a zero element count, excluded above.
		panic(err)
	}
	return &GlobalCache{
		accounts:  fastcache.New(globalCacheBytes),
		knownNull: f,
	}
}

func bloomKey(addr common.Address) bloomfilter.Key {
	return bloomfilter.Key(fastHash64(addr[:]))
}

func fastHash64(b []byte) uint64 {
	// FNV-1a, good enough for a bloom filter's key digest.
	var h uint64 = 14695981039346656037
	for _, c := range b {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}

// MarkNull records that addr was seen not to exist. The filter cannot
// forget an address, so the mark remains after the account is created.
func (g *GlobalCache) MarkNull(addr common.Address) {
	g.knownNull.Add(bloomKey(addr))
}

// IsKnownNull reports the bloom filter's hint; false negatives are
// impossible but false positives are (rare), so callers still must
// fall through to an authoritative lookup on a negative answer only —
// a positive answer from IsKnownNull is itself only a hint a caller
// may choose to trust for a fast path.
func (g *GlobalCache) IsKnownNull(addr common.Address) bool {
	return g.knownNull.Contains(bloomKey(addr))
}

// Get returns the cached account for addr, if present.
func (g *GlobalCache) Get(addr common.Address) (*Account, bool) {
	buf := g.accounts.Get(nil, addr[:])
	if len(buf) == 0 {
		return nil, false
	}
	if len(buf) == 1 && buf[0] == 0 {
		return nil, true // cached tombstone: account does not exist
	}
	return decodeAccount(buf), true
}

// Put stores acct (nil meaning "does not exist") for addr.
func (g *GlobalCache) Put(addr common.Address, acct *Account) {
	if acct == nil {
		g.accounts.Set(addr[:], []byte{0})
		g.MarkNull(addr)
		return
	}
	g.accounts.Set(addr[:], encodeAccount(acct))
}
