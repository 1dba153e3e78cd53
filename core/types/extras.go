// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package types

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/velaproject/go-vela/common"
)

// ExtrasIndex is the 1-byte type discriminant every database key
// carries.
type ExtrasIndex byte

const (
	ExtrasBlockDetails            ExtrasIndex = 0
	ExtrasBlockHash                ExtrasIndex = 1
	ExtrasTransactionAddress       ExtrasIndex = 2
	ExtrasBlocksBlooms             ExtrasIndex = 3
	ExtrasBlockReceipts            ExtrasIndex = 4
	ExtrasEpochTransitions         ExtrasIndex = 5
	ExtrasPendingEpochTransition   ExtrasIndex = 6
)

func withIndex(hash common.Hash, idx ExtrasIndex) []byte {
	key := make([]byte, 0, 33)
	key = append(key, byte(idx))
	return append(key, hash[:]...)
}

// BlockDetailsKey returns the 33-byte key for a BlockDetails record.
func BlockDetailsKey(hash common.Hash) []byte { return withIndex(hash, ExtrasBlockDetails) }

// BlockHashKey returns the 5-byte key mapping a block number to its
// canonical hash.
func BlockHashKey(number uint64) []byte {
	key := make([]byte, 5)
	key[0] = byte(ExtrasBlockHash)
	binary.BigEndian.PutUint32(key[1:], uint32(number))
	return key
}

// TransactionAddressKey returns the 33-byte key for a TransactionAddress
// record.
func TransactionAddressKey(txHash common.Hash) []byte {
	return withIndex(txHash, ExtrasTransactionAddress)
}

// BlocksBloomsKey returns the 6-byte key for a bloom-index group.
func BlocksBloomsKey(level uint8, index uint32) []byte {
	key := make([]byte, 6)
	key[0] = byte(ExtrasBlocksBlooms)
	key[1] = level
	binary.BigEndian.PutUint32(key[2:], index)
	return key
}

// BlockReceiptsKey returns the 33-byte key for a BlockReceipts record.
func BlockReceiptsKey(hash common.Hash) []byte { return withIndex(hash, ExtrasBlockReceipts) }

// PendingEpochTransitionKey returns the 33-byte key for a pending
// epoch-transition record.
func PendingEpochTransitionKey(hash common.Hash) []byte {
	return withIndex(hash, ExtrasPendingEpochTransition)
}

// epochKeyPrefixLen is the fixed prefix length ahead of the ASCII
// epoch number (1-byte tag + 11 zero bytes).
const epochKeyPrefixLen = 12

// EpochTransitionsKeyPrefix is the fixed prefix shared by every
// EpochTransitions key, enabling an ordered prefix scan from genesis.
var EpochTransitionsKeyPrefix = func() []byte {
	p := make([]byte, epochKeyPrefixLen)
	p[0] = byte(ExtrasEpochTransitions)
	return p
}()

// EpochTransitionsKey returns the key for the EpochTransitions record
// at the given epoch: the fixed prefix followed by a 16-hex-character
// ASCII rendering of the epoch number, so lexicographic key order
// matches epoch order.
func EpochTransitionsKey(epoch uint64) []byte {
	key := make([]byte, 0, epochKeyPrefixLen+16)
	key = append(key, EpochTransitionsKeyPrefix...)
	key = append(key, []byte(fmt.Sprintf("%016x", epoch))...)
	return key
}

// BlockDetails records the ancestry and cumulative difficulty of a
// block. PoW and PoS cumulative difficulty are tracked independently,
// so an external fork-choice can compare the pair.
type BlockDetails struct {
	Number            uint64
	TotalPowDifficulty *big.Int
	TotalPosDifficulty *big.Int
	Parent            common.Hash
	Children          []common.Hash
	ImportTimestamp   uint64
}

// TransactionAddress locates a transaction within a block.
type TransactionAddress struct {
	BlockHash common.Hash
	Index     int
}

// Receipt is the supplemental record type a block-application step
// produces, required to give such a step something to return.
type Receipt struct {
	StateRoot       common.Hash
	GasUsed         uint64
	CumulativeGasUsed uint64
	LogBloom        [LogBloomLength]byte
	Logs            []Log
	Output          []byte
	Exception       string
}

// Log is a single event log entry emitted during transaction execution.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// BlockReceipts wraps every receipt produced by a block's transactions.
type BlockReceipts struct {
	Receipts []Receipt
}

// EpochTransition is one candidate transition record.
type EpochTransition struct {
	BlockHash   common.Hash
	BlockNumber uint64
	ProofData   []byte
}

// EpochTransitions is the set of candidate transitions proposed for a
// given epoch number.
type EpochTransitions struct {
	Number     uint64
	Candidates []EpochTransition
}
