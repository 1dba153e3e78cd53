// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Package types holds the canonical block header and the ancillary
// database record types the consensus core reads and writes.
package types

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/crypto"
)

// SealType distinguishes a PoW-sealed header from a PoS-sealed one.
type SealType uint8

const (
	SealTypePoW SealType = 0
	SealTypePoS SealType = 1
)

func (s SealType) String() string {
	if s == SealTypePoS {
		return "pos"
	}
	return "pow"
}

// LogBloomLength is the width of the header's log bloom filter.
const LogBloomLength = 256

// Header is the canonical block header. Mutators invalidate the two
// memoized hashes rather than recompute them eagerly; the cache fields
// are an explicit pair (not a concurrency-safe interior-mutability
// cell — a Header is mutated by one goroutine at a time, same as
// everywhere else in this package).
type Header struct {
	version          byte
	number           uint64
	parentHash       common.Hash
	author           common.Address
	stateRoot        common.Hash
	transactionsRoot common.Hash
	receiptsRoot     common.Hash
	logBloom         [LogBloomLength]byte
	difficulty       *uint256.Int
	extraData        []byte
	gasUsed          uint64
	gasLimit         uint64
	timestamp        uint64
	sealType         SealType
	seal             [][]byte

	// Miner-local fields; not part of the encoded form.
	transactionFee *big.Int
	reward         *big.Int

	hash     *common.Hash
	bareHash *common.Hash
}

// NewHeader constructs a header with zero-valued fields and a non-nil
// difficulty, following a default-construct-then-populate idiom.
func NewHeader() *Header {
	return &Header{
		difficulty:     uint256.NewInt(0),
		transactionFee: new(big.Int),
		reward:         new(big.Int),
	}
}

func (h *Header) noteDirty() {
	h.hash = nil
	h.bareHash = nil
}

// --- accessors -------------------------------------------------------

func (h *Header) Version() byte                   { return h.version }
func (h *Header) Number() uint64                  { return h.number }
func (h *Header) ParentHash() common.Hash         { return h.parentHash }
func (h *Header) Author() common.Address          { return h.author }
func (h *Header) StateRoot() common.Hash          { return h.stateRoot }
func (h *Header) TransactionsRoot() common.Hash   { return h.transactionsRoot }
func (h *Header) ReceiptsRoot() common.Hash       { return h.receiptsRoot }
func (h *Header) LogBloom() [LogBloomLength]byte  { return h.logBloom }
func (h *Header) Difficulty() *uint256.Int        { return h.difficulty.Clone() }
func (h *Header) ExtraData() []byte               { return append([]byte{}, h.extraData...) }
func (h *Header) GasUsed() uint64                 { return h.gasUsed }
func (h *Header) GasLimit() uint64                { return h.gasLimit }
func (h *Header) Timestamp() uint64               { return h.timestamp }
func (h *Header) SealType() SealType              { return h.sealType }
func (h *Header) TransactionFee() *big.Int        { return new(big.Int).Set(h.transactionFee) }
func (h *Header) Reward() *big.Int                { return new(big.Int).Set(h.reward) }

// Seal returns the raw seal entries. Callers must not mutate the
// returned slices.
func (h *Header) Seal() [][]byte { return h.seal }

// --- mutators: every one invalidates the memoized hashes --------------

func (h *Header) SetVersion(v byte)                  { h.version = v; h.noteDirty() }
func (h *Header) SetNumber(n uint64)                 { h.number = n; h.noteDirty() }
func (h *Header) SetParentHash(v common.Hash)        { h.parentHash = v; h.noteDirty() }
func (h *Header) SetAuthor(v common.Address)         { h.author = v; h.noteDirty() }
func (h *Header) SetStateRoot(v common.Hash)         { h.stateRoot = v; h.noteDirty() }
func (h *Header) SetTransactionsRoot(v common.Hash)  { h.transactionsRoot = v; h.noteDirty() }
func (h *Header) SetReceiptsRoot(v common.Hash)      { h.receiptsRoot = v; h.noteDirty() }
func (h *Header) SetLogBloom(v [LogBloomLength]byte) { h.logBloom = v; h.noteDirty() }
func (h *Header) SetDifficulty(v *uint256.Int)       { h.difficulty = v.Clone(); h.noteDirty() }
func (h *Header) SetExtraData(v []byte)              { h.extraData = append([]byte{}, v...); h.noteDirty() }
func (h *Header) SetGasUsed(v uint64)                { h.gasUsed = v; h.noteDirty() }
func (h *Header) SetGasLimit(v uint64)                { h.gasLimit = v; h.noteDirty() }
func (h *Header) SetTimestamp(v uint64)              { h.timestamp = v; h.noteDirty() }
func (h *Header) SetSealType(v SealType)             { h.sealType = v; h.noteDirty() }
func (h *Header) SetSeal(v [][]byte)                 { h.seal = v; h.noteDirty() }
func (h *Header) SetTransactionFee(v *big.Int)       { h.transactionFee = new(big.Int).Set(v) }
func (h *Header) SetReward(v *big.Int)               { h.reward = new(big.Int).Set(v) }

// --- encoding ----------------------------------------------------------
//
// 14 fixed fields in a fixed order, followed by a variable number of
// length-prefixed seal entries when seal data is included. This is a
// bespoke fixed/length-prefixed binary layout rather than a general RLP
// encoding: every field width here is already fixed or explicitly
// length-prefixed, so a general recursive-list codec buys nothing.

func appendUint64BE(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendBytesLP(buf []byte, v []byte) []byte {
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(v)))
	buf = append(buf, l[:]...)
	return append(buf, v...)
}

func readUint64BE(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, errDecodeTooShort
	}
	return binary.BigEndian.Uint64(buf[:8]), buf[8:], nil
}

func readBytesLP(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, errDecodeTooShort
	}
	l := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]
	if uint32(len(buf)) < l {
		return nil, nil, errDecodeTooShort
	}
	return buf[:l], buf[l:], nil
}

var errDecodeTooShort = errors.New("types: header encoding truncated")

// encodeDifficulty writes difficulty as a fixed 16-byte big-endian
// value, unless genesis is true, in which case it writes a 1-byte
// length prefix followed by the minimal big-endian form.
func encodeDifficulty(buf []byte, d *uint256.Int, genesis bool) []byte {
	if genesis {
		b := d.Bytes() // minimal big-endian, no leading zero byte
		buf = append(buf, byte(len(b)))
		return append(buf, b...)
	}
	var full [32]byte
	d.WriteToSlice(full[:])
	return append(buf, full[16:]...) // low 128 bits, big-endian
}

func decodeDifficulty(buf []byte, genesis bool) (*uint256.Int, []byte, error) {
	if genesis {
		if len(buf) < 1 {
			return nil, nil, errDecodeTooShort
		}
		l := int(buf[0])
		buf = buf[1:]
		if len(buf) < l {
			return nil, nil, errDecodeTooShort
		}
		return new(uint256.Int).SetBytes(buf[:l]), buf[l:], nil
	}
	if len(buf) < 16 {
		return nil, nil, errDecodeTooShort
	}
	return new(uint256.Int).SetBytes(buf[:16]), buf[16:], nil
}

// encode serializes the header. withSeal controls whether the trailing
// seal sequence is included: bare_hash is computed over the encoding
// with withSeal=false, hash over withSeal=true.
func (h *Header) encode(withSeal bool) []byte {
	buf := make([]byte, 0, 512)
	buf = append(buf, h.version)
	buf = appendUint64BE(buf, h.number)
	buf = append(buf, h.parentHash[:]...)
	buf = append(buf, h.author[:]...)
	buf = append(buf, h.stateRoot[:]...)
	buf = append(buf, h.transactionsRoot[:]...)
	buf = append(buf, h.receiptsRoot[:]...)
	buf = append(buf, h.logBloom[:]...)
	buf = encodeDifficulty(buf, h.difficulty, h.number == 0)
	buf = appendBytesLP(buf, h.extraData)
	buf = appendUint64BE(buf, h.gasUsed)
	buf = appendUint64BE(buf, h.gasLimit)
	buf = appendUint64BE(buf, h.timestamp)
	buf = append(buf, byte(h.sealType))
	if withSeal {
		buf = append(buf, byte(len(h.seal)))
		for _, s := range h.seal {
			buf = appendBytesLP(buf, s)
		}
	}
	return buf
}

// Encode returns the full encoding, including the seal sequence.
func (h *Header) Encode() []byte { return h.encode(true) }

// EncodeBare returns the encoding with the seal sequence omitted.
func (h *Header) EncodeBare() []byte { return h.encode(false) }

// Decode parses a header from its full encoding (as produced by Encode).
func Decode(buf []byte) (*Header, error) {
	h := NewHeader()
	var err error

	if len(buf) < 1 {
		return nil, errDecodeTooShort
	}
	h.version, buf = buf[0], buf[1:]

	h.number, buf, err = readUint64BE(buf)
	if err != nil {
		return nil, err
	}
	if len(buf) < common.HashLength*2+common.AddressLength {
		return nil, errDecodeTooShort
	}
	h.parentHash = common.BytesToHash(buf[:32])
	buf = buf[32:]
	h.author = common.BytesToAddress(buf[:32])
	buf = buf[32:]
	h.stateRoot = common.BytesToHash(buf[:32])
	buf = buf[32:]
	h.transactionsRoot = common.BytesToHash(buf[:32])
	buf = buf[32:]
	h.receiptsRoot = common.BytesToHash(buf[:32])
	buf = buf[32:]
	if len(buf) < LogBloomLength {
		return nil, errDecodeTooShort
	}
	copy(h.logBloom[:], buf[:LogBloomLength])
	buf = buf[LogBloomLength:]

	h.difficulty, buf, err = decodeDifficulty(buf, h.number == 0)
	if err != nil {
		return nil, err
	}
	h.extraData, buf, err = readBytesLP(buf)
	if err != nil {
		return nil, err
	}
	h.gasUsed, buf, err = readUint64BE(buf)
	if err != nil {
		return nil, err
	}
	h.gasLimit, buf, err = readUint64BE(buf)
	if err != nil {
		return nil, err
	}
	h.timestamp, buf, err = readUint64BE(buf)
	if err != nil {
		return nil, err
	}
	if len(buf) < 1 {
		return nil, errDecodeTooShort
	}
	h.sealType, buf = SealType(buf[0]), buf[1:]

	if len(buf) < 1 {
		return nil, errDecodeTooShort
	}
	n := int(buf[0])
	buf = buf[1:]
	h.seal = make([][]byte, n)
	for i := 0; i < n; i++ {
		var entry []byte
		entry, buf, err = readBytesLP(buf)
		if err != nil {
			return nil, err
		}
		h.seal[i] = entry
	}
	return h, nil
}

// Hash returns the memoized hash of the full encoding (with seal),
// computing and caching it on first access.
func (h *Header) Hash() common.Hash {
	if h.hash != nil {
		return *h.hash
	}
	v := crypto.Blake2b256(h.Encode())
	h.hash = &v
	return v
}

// BareHash returns the memoized hash of the encoding with the seal
// omitted; this is what the PoS staker signs and what PoW mining
// targets against.
func (h *Header) BareHash() common.Hash {
	if h.bareHash != nil {
		return *h.bareHash
	}
	v := crypto.Blake2b256(h.EncodeBare())
	h.bareHash = &v
	return v
}

// MineHash is the distinct concatenation external PoW miners hash
// against: every field up to timestamp, excluding seal_type and seal,
// with extra_data unprefixed.
func (h *Header) MineHash() common.Hash {
	buf := make([]byte, 0, 512)
	buf = append(buf, h.version)
	buf = appendUint64BE(buf, h.number)
	buf = append(buf, h.parentHash[:]...)
	buf = append(buf, h.author[:]...)
	buf = append(buf, h.stateRoot[:]...)
	buf = append(buf, h.transactionsRoot[:]...)
	buf = append(buf, h.receiptsRoot[:]...)
	buf = append(buf, h.logBloom[:]...)
	var diff [32]byte
	h.difficulty.WriteToSlice(diff[:])
	buf = append(buf, diff[16:]...)
	buf = append(buf, h.extraData...)
	buf = appendUint64BE(buf, h.gasUsed)
	buf = appendUint64BE(buf, h.gasLimit)
	buf = appendUint64BE(buf, h.timestamp)
	return crypto.Blake2b256(buf)
}

// Boundary is the 256-bit PoW target threshold derived from difficulty:
// 2^256/difficulty, saturated at 2^256-1 when difficulty <= 1. It is
// computed as ((1<<255)/difficulty)<<1 to avoid a 256-bit overflow, the
// original source's form bit-for-bit; for odd difficulty this can be one
// less than floor(2^256/difficulty).
func (h *Header) Boundary() *uint256.Int {
	if h.difficulty.Cmp(uint256.NewInt(1)) <= 0 {
		return new(uint256.Int).Not(uint256.NewInt(0)) // 2^256 - 1
	}
	half := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	half.Div(half, h.difficulty)
	return half.Lsh(half, 1)
}

// Clone returns a deep copy of h, including its memoized hashes.
func (h *Header) Clone() *Header {
	cp := *h
	cp.difficulty = h.difficulty.Clone()
	cp.extraData = append([]byte{}, h.extraData...)
	cp.transactionFee = new(big.Int).Set(h.transactionFee)
	cp.reward = new(big.Int).Set(h.reward)
	cp.seal = make([][]byte, len(h.seal))
	for i, s := range h.seal {
		cp.seal[i] = append([]byte{}, s...)
	}
	if h.hash != nil {
		v := *h.hash
		cp.hash = &v
	}
	if h.bareHash != nil {
		v := *h.bareHash
		cp.bareHash = &v
	}
	return &cp
}
