// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package trie

import (
	"encoding/binary"
	"fmt"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/crypto"
)

// Node is the in-memory representation of a trie node. Every node that
// has been written to the backing store at least once knows its own
// hash; nodes created or mutated since the last commit have dirty set.
type Node interface {
	cache() (common.Hash, bool)
}

// fullNode is a 17-way branch: one slot per nibble (0-15) plus a 17th
// slot (index 16) holding the value for a key that terminates exactly
// at this node, mirroring the hex-prefix terminator convention.
type fullNode struct {
	Children [17]Node
	hash     common.Hash
	dirty    bool
}

func (n *fullNode) cache() (common.Hash, bool) { return n.hash, !n.dirty }

// shortNode is either an extension (Val is another node) or a leaf
// (Val is a valueNode), distinguished by whether Key carries the
// hex-prefix terminator nibble.
type shortNode struct {
	Key   []byte // nibbles, possibly including the terminator
	Val   Node
	hash  common.Hash
	dirty bool
}

func (n *shortNode) cache() (common.Hash, bool) { return n.hash, !n.dirty }

// hashNode is a reference to a node stored in the backing database,
// not yet resolved into its in-memory form.
type hashNode common.Hash

func (n hashNode) cache() (common.Hash, bool) { return common.Hash(n), true }

// valueNode is a raw stored value (never hashed on its own; only as
// part of its parent node's encoding).
type valueNode []byte

func (n valueNode) cache() (common.Hash, bool) { return common.Hash{}, true }

// --- serialization -------------------------------------------------
//
// Node encoding is a simple tagged, length-prefixed binary format (not
// RLP): a leaf/extension carries its key as raw nibbles (one byte per
// nibble, terminator included) and either an embedded value or a
// 32-byte child hash; a branch carries sixteen
// child slots (each absent, or a 32-byte hash) plus an optional value.
// This trades the small-node embedding optimization of a production
// trie for a much simpler, still-correct implementation.

const (
	tagShortValue = 0x01 // shortNode terminating in a value
	tagShortChild = 0x02 // shortNode (extension) pointing at a child hash
	tagFull       = 0x03 // fullNode
	tagEmptyChild = 0x00 // branch slot: no child
	tagHashChild  = 0x01 // branch slot: child present (32-byte hash follows)
)

func putUint32(buf []byte, v int) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return append(buf, b...)
}

func encodeNode(n Node) []byte {
	switch n := n.(type) {
	case *shortNode:
		buf := make([]byte, 0, 64)
		if _, isVal := n.Val.(valueNode); isVal {
			buf = append(buf, tagShortValue)
			buf = putUint32(buf, len(n.Key))
			buf = append(buf, n.Key...)
			val := n.Val.(valueNode)
			buf = putUint32(buf, len(val))
			buf = append(buf, val...)
			return buf
		}
		buf = append(buf, tagShortChild)
		buf = putUint32(buf, len(n.Key))
		buf = append(buf, n.Key...)
		h, _ := n.Val.cache()
		buf = append(buf, h[:]...)
		return buf
	case *fullNode:
		buf := make([]byte, 0, 17*33)
		buf = append(buf, tagFull)
		for i := 0; i < 16; i++ {
			c := n.Children[i]
			if c == nil {
				buf = append(buf, tagEmptyChild)
				continue
			}
			buf = append(buf, tagHashChild)
			h, _ := c.cache()
			buf = append(buf, h[:]...)
		}
		if v, ok := n.Children[16].(valueNode); ok {
			buf = append(buf, tagHashChild)
			buf = putUint32(buf, len(v))
			buf = append(buf, v...)
		} else {
			buf = append(buf, tagEmptyChild)
		}
		return buf
	default:
		panic(fmt.Sprintf("trie: cannot encode node of type %T", n))
	}
}

// hashNodeBytes computes the content hash a node would have, used both
// to assign node.hash on commit and to derive references stored in
// parent nodes.
func hashNodeBytes(n Node) common.Hash {
	return crypto.Blake2b256(encodeNode(n))
}

// decodeNode parses the bytes stored under a node's hash back into a
// Node with unresolved hashNode children.
func decodeNode(buf []byte) (Node, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("trie: empty node encoding")
	}
	switch buf[0] {
	case tagShortValue:
		klen := int(binary.BigEndian.Uint32(buf[1:5]))
		key := buf[5 : 5+klen]
		rest := buf[5+klen:]
		vlen := int(binary.BigEndian.Uint32(rest[:4]))
		val := rest[4 : 4+vlen]
		return &shortNode{Key: append([]byte{}, key...), Val: valueNode(append([]byte{}, val...))}, nil
	case tagShortChild:
		klen := int(binary.BigEndian.Uint32(buf[1:5]))
		key := buf[5 : 5+klen]
		h := buf[5+klen : 5+klen+32]
		var hn hashNode
		copy(hn[:], h)
		return &shortNode{Key: append([]byte{}, key...), Val: hn}, nil
	case tagFull:
		n := &fullNode{}
		p := 1
		for i := 0; i < 16; i++ {
			if buf[p] == tagEmptyChild {
				p++
				continue
			}
			p++
			var hn hashNode
			copy(hn[:], buf[p:p+32])
			n.Children[i] = hn
			p += 32
		}
		if buf[p] == tagEmptyChild {
			return n, nil
		}
		p++
		vlen := int(binary.BigEndian.Uint32(buf[p : p+4]))
		p += 4
		n.Children[16] = valueNode(append([]byte{}, buf[p:p+vlen]...))
		return n, nil
	default:
		return nil, fmt.Errorf("trie: unknown node tag %d", buf[0])
	}
}
