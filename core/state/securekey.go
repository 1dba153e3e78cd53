// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package state

import (
	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/crypto"
)

// secureAddrKey derives the main-trie key for addr: blake2b(address),
// so the account trie is keyed by content hash rather than raw address
// bytes (account_key == blake2b(address)).
func secureAddrKey(addr common.Address) []byte {
	h := crypto.Blake2b256(addr.Bytes())
	return h.Bytes()
}

// secureSlotKey derives the per-account storage-trie key for a domain-
// tagged 16-byte slot key: blake2b(domain || key). Folding the domain
// tag into the hash input keeps the word/dword key-spaces disjoint
// under a content-hashed trie the same way the raw tag kept them
// disjoint before hashing (storage_key == blake2b(key)).
func secureSlotKey(domain storageDomain, key [16]byte) []byte {
	h := crypto.Blake2b256([]byte{byte(domain)}, key[:])
	return h.Bytes()
}

// secureSlotKeyFromSlotKey hashes an already-packed storageSlotKey the
// same way secureSlotKey does, for callers (commit) that only have the
// packed form.
func secureSlotKeyFromSlotKey(k storageSlotKey) []byte {
	h := crypto.Blake2b256(k[:1], k[1:])
	return h.Bytes()
}
