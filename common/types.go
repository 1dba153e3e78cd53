// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Package common holds the address and hash types shared across the
// consensus core. Unlike the 20-byte Ethereum convention, addresses on
// this chain are 32 bytes, matching the account model this engine was
// distilled from.
package common

import (
	"encoding/hex"
	"fmt"
)

// AddressLength is the number of bytes in an address.
const AddressLength = 32

// HashLength is the number of bytes in a hash.
const HashLength = 32

// Address represents a 32-byte account identifier.
type Address [AddressLength]byte

// BytesToAddress converts b to an Address, right-aligning it if it is
// shorter than AddressLength and truncating from the left if longer.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Bytes returns a freshly allocated copy of the address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// Hex returns the 0x-prefixed hex encoding of the address.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// IsZero reports whether the address is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Hash represents a 32-byte Blake2b or Keccak256 digest.
type Hash [HashLength]byte

// BytesToHash converts b to a Hash, right-aligning as with BytesToAddress.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns a freshly allocated copy of the hash bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, HashLength)
	copy(out, h[:])
	return out
}

// Hex returns the 0x-prefixed hex encoding of the hash.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// IsZero reports whether the hash is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Format implements fmt.Formatter so %v/%x print sensibly in logs.
func (h Hash) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "%s", h.Hex())
}
