// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Package memorydb is an in-memory ethdb.Database used by tests and by
// the example node binary. A production deployment would back
// ethdb.Database with a real persistent engine; a hand-rolled map is
// the right tool for a test-only stand-in, so no third-party store is
// pulled in here.
package memorydb

import (
	"bytes"
	"sort"
	"sync"

	"github.com/velaproject/go-vela/ethdb"
)

// Database is a sync.RWMutex-guarded map implementing ethdb.Database.
type Database struct {
	mu sync.RWMutex
	kv map[string][]byte
}

// New creates an empty in-memory database.
func New() *Database {
	return &Database{kv: make(map[string][]byte)}
}

func (db *Database) Has(key []byte) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.kv[string(key)]
	return ok, nil
}

func (db *Database) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.kv[string(key)]
	if !ok {
		return nil, ethdb.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (db *Database) Put(key, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	db.kv[string(key)] = v
	return nil
}

func (db *Database) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.kv, string(key))
	return nil
}

func (db *Database) Close() error { return nil }

func (db *Database) NewBatch() ethdb.Batch {
	return &batch{db: db}
}

func (db *Database) NewIteratorWithPrefix(prefix []byte) ethdb.Iterator {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var keys []string
	for k := range db.kv {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	vals := make([][]byte, len(keys))
	for i, k := range keys {
		vals[i] = db.kv[k]
	}
	return &iterator{keys: keys, vals: vals, idx: -1}
}

type iterator struct {
	keys []string
	vals [][]byte
	idx  int
}

func (it *iterator) Next() bool {
	it.idx++
	return it.idx < len(it.keys)
}

func (it *iterator) Key() []byte   { return []byte(it.keys[it.idx]) }
func (it *iterator) Value() []byte { return it.vals[it.idx] }
func (it *iterator) Release()      {}

type keyValue struct {
	key    []byte
	value  []byte
	delete bool
}

type batch struct {
	db  *Database
	ops []keyValue
}

func (b *batch) Put(key, value []byte) error {
	k := make([]byte, len(key))
	copy(k, key)
	v := make([]byte, len(value))
	copy(v, value)
	b.ops = append(b.ops, keyValue{key: k, value: v})
	return nil
}

func (b *batch) Delete(key []byte) error {
	k := make([]byte, len(key))
	copy(k, key)
	b.ops = append(b.ops, keyValue{key: k, delete: true})
	return nil
}

func (b *batch) Write() error {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	for _, op := range b.ops {
		if op.delete {
			delete(b.db.kv, string(op.key))
		} else {
			b.db.kv[string(op.key)] = op.value
		}
	}
	return nil
}

func (b *batch) Reset() { b.ops = b.ops[:0] }
