// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package state

import (
	"encoding/binary"
	"math/big"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/crypto"
)

// storageDomain tags which of the two disjoint per-account key-spaces
// ("word" and "dword") a storage slot belongs to: both live under the
// same per-account trie, distinguished by this one-byte prefix so
// writes to one never alias reads of the other.
type storageDomain byte

const (
	domainWord  storageDomain = 0
	domainDword storageDomain = 1
)

type storageSlotKey [17]byte

func slotKey(domain storageDomain, key [16]byte) storageSlotKey {
	var k storageSlotKey
	k[0] = byte(domain)
	copy(k[1:], key[:])
	return k
}

// emptyCodeHash is Blake2b256 of the empty byte string; the commit
// edge rule demotes accounts whose code hash equals this back to
// CleanFresh instead of writing them.
var emptyCodeHash = crypto.Blake2b256(nil)

// Account is the persisted account payload. It additionally carries an
// in-memory overlay of pending storage writes and a pending-code slot;
// both are part of the value that gets cloned and restored by the
// checkpoint mechanism, and are flushed into the backing tries/codedb
// only during commit.
type Account struct {
	Nonce       uint64
	Balance     *big.Int
	StorageRoot common.Hash
	CodeHash    common.Hash

	overlay map[storageSlotKey][]byte
	code    []byte // non-nil only between init_code/reset_code and the next commit
}

// NewAccount returns a fresh, empty account (balance zero, no code,
// empty storage root).
func NewAccount(startNonce uint64) *Account {
	return &Account{
		Nonce:       startNonce,
		Balance:     new(big.Int),
		StorageRoot: common.Hash{},
		CodeHash:    emptyCodeHash,
	}
}

// Clone deep-copies a, including its pending overlay and code, so that
// checkpoint snapshots are fully independent of later mutation.
func (a *Account) Clone() *Account {
	cp := &Account{
		Nonce:       a.Nonce,
		Balance:     new(big.Int).Set(a.Balance),
		StorageRoot: a.StorageRoot,
		CodeHash:    a.CodeHash,
	}
	if a.overlay != nil {
		cp.overlay = make(map[storageSlotKey][]byte, len(a.overlay))
		for k, v := range a.overlay {
			cp.overlay[k] = append([]byte{}, v...)
		}
	}
	if a.code != nil {
		cp.code = append([]byte{}, a.code...)
	}
	return cp
}

// HasStorageChanges reports whether a has any uncommitted storage
// writes, the condition the commit edge rule checks.
func (a *Account) HasStorageChanges() bool { return len(a.overlay) > 0 }

func (a *Account) setSlot(domain storageDomain, key [16]byte, value []byte) {
	if a.overlay == nil {
		a.overlay = make(map[storageSlotKey][]byte)
	}
	a.overlay[slotKey(domain, key)] = value
}

func (a *Account) readSlot(domain storageDomain, key [16]byte) ([]byte, bool) {
	if a.overlay == nil {
		return nil, false
	}
	v, ok := a.overlay[slotKey(domain, key)]
	return v, ok
}

// IsEmptyCodeNoStorage reports whether a is the null account shape —
// zero balance, zero nonce, no code, no pending storage changes — the
// shape the commit edge rule demotes rather than writes. An ordinary
// value-holding account (e.g. one freshly credited a block reward)
// must not match this, or it would never reach the trie.
func (a *Account) IsEmptyCodeNoStorage() bool {
	return a.Balance.Sign() == 0 && a.Nonce == 0 &&
		a.CodeHash == emptyCodeHash && !a.HasStorageChanges()
}

// --- account encoding (main trie value) -------------------------------
//
// A simple binary encoding (fixed-width fields plus a length-prefixed
// balance), matching the style chosen for the header (no general RLP
// codec is needed for a value this shaped).

func encodeAccount(a *Account) []byte {
	buf := make([]byte, 0, 8+32+32+32)
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], a.Nonce)
	buf = append(buf, nonceBuf[:]...)

	balBytes := a.Balance.Bytes()
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(balBytes)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, balBytes...)

	buf = append(buf, a.StorageRoot[:]...)
	buf = append(buf, a.CodeHash[:]...)
	return buf
}

func decodeAccount(buf []byte) *Account {
	a := &Account{}
	a.Nonce = binary.BigEndian.Uint64(buf[:8])
	buf = buf[8:]
	l := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]
	a.Balance = new(big.Int).SetBytes(buf[:l])
	buf = buf[l:]
	a.StorageRoot = common.BytesToHash(buf[:32])
	buf = buf[32:]
	a.CodeHash = common.BytesToHash(buf[:32])
	return a
}
