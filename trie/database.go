// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package trie

import (
	"github.com/VictoriaMetrics/fastcache"
	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/ethdb"
)

// nodeCacheBytes is the size of the in-memory trie node cache. Each
// State opens its own Database, so one fastcache instance serves all of
// that State's tries (the account trie and every per-account storage
// trie share this cache keyed by hash).
const nodeCacheBytes = 32 * 1024 * 1024

// Database resolves and persists trie nodes against an ethdb.Database,
// fronted by a fastcache node cache the way geth-family forks front
// their trie database with one.
type Database struct {
	diskdb ethdb.Database
	clean  *fastcache.Cache
}

// NewDatabase wraps diskdb with a node cache.
func NewDatabase(diskdb ethdb.Database) *Database {
	return &Database{
		diskdb: diskdb,
		clean:  fastcache.New(nodeCacheBytes),
	}
}

const nodeKeyPrefix = 't'

func nodeDBKey(h common.Hash) []byte {
	key := make([]byte, 0, 33)
	key = append(key, nodeKeyPrefix)
	key = append(key, h[:]...)
	return key
}

func (db *Database) resolve(h common.Hash) (Node, error) {
	buf := db.clean.Get(nil, h[:])
	if len(buf) == 0 {
		var err error
		if buf, err = db.diskdb.Get(nodeDBKey(h)); err != nil {
			return nil, err
		}
		db.clean.Set(h[:], buf)
	}
	n, err := decodeNode(buf)
	if err != nil {
		return nil, err
	}
	// A stored node is clean and knows its hash, like a freshly committed one.
	switch n := n.(type) {
	case *shortNode:
		n.hash = h
	case *fullNode:
		n.hash = h
	}
	return n, nil
}

func (db *Database) store(h common.Hash, n Node) error {
	buf := encodeNode(n)
	db.clean.Set(h[:], buf)
	return db.diskdb.Put(nodeDBKey(h), buf)
}
