// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Package crypto wraps the hash and signature primitives the consensus
// core depends on: Blake2b-256 for header hashing, Keccak-256 for the
// staking-registry storage-slot derivation, and Ed25519 for PoS seals.
package crypto

import (
	"crypto/ed25519"
	"errors"

	"github.com/velaproject/go-vela/common"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b256 hashes data with Blake2b, 256-bit output. The header's hash,
// bare_hash, and mine_hash are all computed with this function.
func Blake2b256(data ...[]byte) common.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on a bad key, and we never pass one.
		panic("crypto: blake2b.New256: " + err.Error())
	}
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Keccak256 hashes data with Keccak-256 (the pre-standardization variant,
// as used by the staking-registry storage layout).
func Keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// SigLength is the length of an Ed25519 signature.
const SigLength = ed25519.SignatureSize

// PubKeyLength is the length of an Ed25519 public key.
const PubKeyLength = ed25519.PublicKeySize

// SealEntryLength is the length of one PoS seal entry: a 32-byte public
// key followed by a 64-byte signature.
const SealEntryLength = PubKeyLength + SigLength

var (
	// ErrBadSealEntryLength is returned when a PoS seal entry is not
	// exactly SealEntryLength bytes.
	ErrBadSealEntryLength = errors.New("crypto: seal entry must be 96 bytes (32-byte pubkey || 64-byte signature)")
	// ErrSignatureVerification is returned when an Ed25519 signature does
	// not verify.
	ErrSignatureVerification = errors.New("crypto: ed25519 signature verification failed")
)

// SplitSealEntry splits a 96-byte PoS seal entry into its public key and
// signature halves.
func SplitSealEntry(entry []byte) (pub ed25519.PublicKey, sig []byte, err error) {
	if len(entry) != SealEntryLength {
		return nil, nil, ErrBadSealEntryLength
	}
	pub = ed25519.PublicKey(entry[:PubKeyLength])
	sig = entry[PubKeyLength:]
	return pub, sig, nil
}

// VerifySealEntry verifies that entry is a valid Ed25519 signature by its
// embedded public key over message, returning the signer's address (the
// full 32-byte Keccak256 hash of the public key, see PublicKeyToAddress).
func VerifySealEntry(entry []byte, message []byte) (common.Address, error) {
	pub, sig, err := SplitSealEntry(entry)
	if err != nil {
		return common.Address{}, err
	}
	if !ed25519.Verify(pub, message, sig) {
		return common.Address{}, ErrSignatureVerification
	}
	return PublicKeyToAddress(pub), nil
}

// Sign produces a 96-byte PoS seal entry: the public key of priv followed
// by its Ed25519 signature over message.
func Sign(priv ed25519.PrivateKey, message []byte) []byte {
	sig := ed25519.Sign(priv, message)
	out := make([]byte, 0, SealEntryLength)
	out = append(out, priv.Public().(ed25519.PublicKey)...)
	out = append(out, sig...)
	return out
}

// PublicKeyToAddress derives an address from an Ed25519 public key by
// Keccak256-hashing it; this chain's addresses are 32 bytes so the full
// digest is used directly, no truncation.
func PublicKeyToAddress(pub ed25519.PublicKey) common.Address {
	return common.Address(Keccak256(pub))
}
