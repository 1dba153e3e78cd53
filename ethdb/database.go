// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Package ethdb defines the narrow key-value contract the consensus core
// consumes from its backing store. The store itself — a real persistent
// KV engine — is an external collaborator out of this module's scope;
// this package only fixes the interface and provides an in-memory
// implementation for tests.
package ethdb

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("ethdb: not found")

// KeyValueReader reads single keys.
type KeyValueReader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter writes single keys.
type KeyValueWriter interface {
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// Batch accumulates writes and flushes them atomically.
type Batch interface {
	KeyValueWriter
	Write() error
	Reset()
}

// Iterator walks keys sharing a prefix in byte order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
}

// Iteratee creates prefix iterators.
type Iteratee interface {
	NewIteratorWithPrefix(prefix []byte) Iterator
}

// Database is the full contract: point reads/writes, batches, and
// prefix iteration (used by the epoch-transitions key-space).
type Database interface {
	KeyValueReader
	KeyValueWriter
	Iteratee
	NewBatch() Batch
	Close() error
}
