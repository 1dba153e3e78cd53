// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package trie

import (
	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/crypto"
)

// ProofNode is one node's encoding along a Merkle path, keyed by its
// own hash so a verifier can look each node up by the reference its
// parent holds; VerifyProof checks that every blob hashes to that key.
type ProofNode struct {
	Hash common.Hash
	Blob []byte
}

// Prove returns the ordered list of node encodings from the root down
// to the node terminating key.
func (t *Trie) Prove(key []byte) ([]ProofNode, []byte, error) {
	var proof []ProofNode
	nibbles := keyToNibbles(key)
	n := t.root
	for len(nibbles) > 0 {
		switch cur := n.(type) {
		case nil:
			return proof, nil, nil
		case hashNode:
			resolved, err := t.resolveIfHash(cur)
			if err != nil {
				return nil, nil, err
			}
			n = resolved
			continue
		case *shortNode:
			blob := encodeNode(cur)
			proof = append(proof, ProofNode{Hash: hashNodeBytes(cur), Blob: blob})
			if prefixLen(nibbles, cur.Key) < len(cur.Key) {
				return proof, nil, nil
			}
			nibbles = nibbles[len(cur.Key):]
			n = cur.Val
			continue
		case *fullNode:
			blob := encodeNode(cur)
			proof = append(proof, ProofNode{Hash: hashNodeBytes(cur), Blob: blob})
			if nibbles[0] == 16 {
				if v, ok := cur.Children[16].(valueNode); ok {
					return proof, v, nil
				}
				return proof, nil, nil
			}
			n = cur.Children[nibbles[0]]
			nibbles = nibbles[1:]
			continue
		case valueNode:
			return proof, cur, nil
		default:
			return proof, nil, nil
		}
	}
	if v, ok := n.(valueNode); ok {
		return proof, v, nil
	}
	return proof, nil, nil
}

// VerifyProof replays proof against root and returns the value stored
// at key with true; (nil, true) when the proof demonstrates that key is
// absent; and (nil, false) when the proof is malformed, incomplete, or
// contains a node whose blob does not hash to its reference.
func VerifyProof(root common.Hash, key []byte, proof []ProofNode) ([]byte, bool) {
	byHash := make(map[common.Hash][]byte, len(proof))
	for _, p := range proof {
		byHash[p.Hash] = p.Blob
	}

	nibbles := keyToNibbles(key)
	cur := root
	for {
		blob, ok := byHash[cur]
		if !ok || crypto.Blake2b256(blob) != cur {
			return nil, false
		}
		n, err := decodeNode(blob)
		if err != nil {
			return nil, false
		}
		switch n := n.(type) {
		case *shortNode:
			if prefixLen(nibbles, n.Key) < len(n.Key) {
				return nil, true // proof establishes absence
			}
			nibbles = nibbles[len(n.Key):]
			if v, ok := n.Val.(valueNode); ok {
				return v, true
			}
			hn, ok := n.Val.(hashNode)
			if !ok {
				return nil, false
			}
			cur = common.Hash(hn)
		case *fullNode:
			if len(nibbles) == 0 || nibbles[0] == 16 {
				if v, ok := n.Children[16].(valueNode); ok {
					return v, true
				}
				return nil, true
			}
			child := n.Children[nibbles[0]]
			nibbles = nibbles[1:]
			if child == nil {
				return nil, true
			}
			hn, ok := child.(hashNode)
			if !ok {
				return nil, false
			}
			cur = common.Hash(hn)
		default:
			return nil, false
		}
	}
}
