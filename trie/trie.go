// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Package trie implements the Merkle-Patricia trie backing both account
// state and the two per-account storage key-spaces. Keys are
// nibble-addressed with hex-prefix encoding; every node is
// content-addressed by its Blake2b-256 hash once committed.
package trie

import (
	"errors"

	"github.com/velaproject/go-vela/common"
)

// EmptyRoot is the root hash of a trie with no entries.
var EmptyRoot = common.Hash{}

// ErrMissingNode is returned when a referenced node cannot be resolved
// from the backing database; this must be a hard error, never silently
// treated as an absent key.
var ErrMissingNode = errors.New("trie: missing node")

// Trie is a Merkle-Patricia trie over a Database.
type Trie struct {
	db   *Database
	root Node // nil means empty trie
}

// New opens a trie at root. An all-zero root opens an empty trie; any
// other root must already be resolvable from db, or New returns
// ErrMissingNode.
func New(root common.Hash, db *Database) (*Trie, error) {
	t := &Trie{db: db}
	if root == EmptyRoot {
		return t, nil
	}
	n, err := db.resolve(root)
	if err != nil {
		return nil, ErrMissingNode
	}
	t.root = n
	return t, nil
}

func (t *Trie) resolveIfHash(n Node) (Node, error) {
	if hn, ok := n.(hashNode); ok {
		resolved, err := t.db.resolve(common.Hash(hn))
		if err != nil {
			return nil, ErrMissingNode
		}
		return resolved, nil
	}
	return n, nil
}

// TryGet looks up key, returning nil if absent.
func (t *Trie) TryGet(key []byte) ([]byte, error) {
	v, _, err := t.get(t.root, keyToNibbles(key))
	return v, err
}

func (t *Trie) get(n Node, key []byte) ([]byte, Node, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil, nil
	case valueNode:
		return n, n, nil
	case *shortNode:
		if prefixLen(key, n.Key) < len(n.Key) {
			return nil, n, nil
		}
		v, _, err := t.getChild(n.Val, key[len(n.Key):])
		return v, n, err
	case *fullNode:
		v, _, err := t.getChild(n.Children[key[0]], key[1:])
		return v, n, err
	case hashNode:
		resolved, err := t.resolveIfHash(n)
		if err != nil {
			return nil, n, err
		}
		return t.get(resolved, key)
	}
	return nil, nil, nil
}

func (t *Trie) getChild(n Node, key []byte) ([]byte, Node, error) {
	resolved, err := t.resolveIfHash(n)
	if err != nil {
		return nil, nil, err
	}
	return t.get(resolved, key)
}

// TryUpdate sets key to value (value must be non-empty; use TryDelete
// to remove a key).
func (t *Trie) TryUpdate(key, value []byte) error {
	nn, err := t.insert(t.root, keyToNibbles(key), valueNode(value))
	if err != nil {
		return err
	}
	t.root = nn
	return nil
}

func (t *Trie) insert(n Node, key []byte, value Node) (Node, error) {
	if len(key) == 1 && key[0] == 16 {
		switch n := n.(type) {
		case *fullNode:
			cp := cloneFull(n)
			cp.Children[16] = value
			cp.dirty = true
			return cp, nil
		default:
			return &shortNode{Key: key, Val: value, dirty: true}, nil
		}
	}

	switch n := n.(type) {
	case nil:
		return &shortNode{Key: key, Val: value, dirty: true}, nil

	case *shortNode:
		matchlen := prefixLen(key, n.Key)
		if matchlen == len(n.Key) {
			nn, err := t.insert(n.Val, key[matchlen:], value)
			if err != nil {
				return nil, err
			}
			return &shortNode{Key: n.Key, Val: nn, dirty: true}, nil
		}
		// Branch out at the mismatch point.
		branch := &fullNode{dirty: true}
		var err error
		if matchlen == len(n.Key)-1 && n.Key[matchlen] == 16 {
			branch.Children[16] = n.Val
		} else {
			branch.Children[n.Key[matchlen]], err = t.insert(nil, n.Key[matchlen+1:], n.Val)
			if err != nil {
				return nil, err
			}
		}
		if matchlen == len(key)-1 && key[matchlen] == 16 {
			branch.Children[16] = value
		} else {
			branch.Children[key[matchlen]], err = t.insert(nil, key[matchlen+1:], value)
			if err != nil {
				return nil, err
			}
		}
		if matchlen == 0 {
			return branch, nil
		}
		return &shortNode{Key: key[:matchlen], Val: branch, dirty: true}, nil

	case *fullNode:
		cp := cloneFull(n)
		resolved, err := t.resolveIfHash(cp.Children[key[0]])
		if err != nil {
			return nil, err
		}
		nn, err := t.insert(resolved, key[1:], value)
		if err != nil {
			return nil, err
		}
		cp.Children[key[0]] = nn
		cp.dirty = true
		return cp, nil

	case hashNode:
		resolved, err := t.resolveIfHash(n)
		if err != nil {
			return nil, err
		}
		return t.insert(resolved, key, value)

	case valueNode:
		if len(key) == 0 {
			return value, nil // key already present: replace its value
		}
	}
	return nil, errors.New("trie: insert into unexpected node type")
}

func cloneFull(n *fullNode) *fullNode {
	cp := &fullNode{}
	cp.Children = n.Children
	return cp
}

// TryDelete removes key from the trie if present; it is a no-op if the
// key is absent.
func (t *Trie) TryDelete(key []byte) error {
	nn, err := t.delete(t.root, keyToNibbles(key))
	if err != nil {
		return err
	}
	t.root = nn
	return nil
}

func (t *Trie) delete(n Node, key []byte) (Node, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil

	case *shortNode:
		matchlen := prefixLen(key, n.Key)
		if matchlen < len(n.Key) {
			return n, nil // not present
		}
		if matchlen == len(key) {
			return nil, nil // shortNode consumed entirely
		}
		child, err := t.resolveIfHash(n.Val)
		if err != nil {
			return nil, err
		}
		nn, err := t.delete(child, key[matchlen:])
		if err != nil {
			return nil, err
		}
		switch nn := nn.(type) {
		case nil:
			return nil, nil
		case *shortNode:
			return &shortNode{Key: append(append([]byte{}, n.Key...), nn.Key...), Val: nn.Val, dirty: true}, nil
		default:
			return &shortNode{Key: n.Key, Val: nn, dirty: true}, nil
		}

	case *fullNode:
		cp := cloneFull(n)
		if len(key) == 1 && key[0] == 16 {
			cp.Children[16] = nil
		} else {
			child, err := t.resolveIfHash(cp.Children[key[0]])
			if err != nil {
				return nil, err
			}
			nn, err := t.delete(child, key[1:])
			if err != nil {
				return nil, err
			}
			cp.Children[key[0]] = nn
		}
		cp.dirty = true

		// Collapse a branch with a single remaining child into a
		// shortNode, matching the standard Patricia-trie compaction.
		used := -1
		count := 0
		for i, c := range cp.Children {
			if c != nil {
				count++
				used = i
			}
		}
		if count == 1 {
			if used == 16 {
				return &shortNode{Key: []byte{16}, Val: cp.Children[16], dirty: true}, nil
			}
			child, err := t.resolveIfHash(cp.Children[used])
			if err != nil {
				return nil, err
			}
			if sn, ok := child.(*shortNode); ok {
				newKey := append([]byte{byte(used)}, sn.Key...)
				return &shortNode{Key: newKey, Val: sn.Val, dirty: true}, nil
			}
			return &shortNode{Key: []byte{byte(used)}, Val: cp.Children[used], dirty: true}, nil
		}
		return cp, nil

	case hashNode:
		resolved, err := t.resolveIfHash(n)
		if err != nil {
			return nil, err
		}
		return t.delete(resolved, key)
	}
	return n, nil
}

// Hash returns the current root hash without persisting anything.
func (t *Trie) Hash() common.Hash {
	if t.root == nil {
		return EmptyRoot
	}
	return hashNodeBytes(t.root)
}

// Commit persists every dirty node reachable from the root and returns
// the new root hash. It is idempotent: calling it twice with no
// intervening mutation writes nothing the second time (every node's
// dirty flag is already cleared) and returns the same hash.
func (t *Trie) Commit() (common.Hash, error) {
	if t.root == nil {
		return EmptyRoot, nil
	}
	h, nn, err := t.commit(t.root)
	if err != nil {
		return common.Hash{}, err
	}
	t.root = nn
	return h, nil
}

func (t *Trie) commit(n Node) (common.Hash, Node, error) {
	switch n := n.(type) {
	case *shortNode:
		if h, clean := n.cache(); clean {
			return h, n, nil
		}
		childVal := n.Val
		if _, isVal := n.Val.(valueNode); !isVal {
			_, nn, err := t.commit(n.Val)
			if err != nil {
				return common.Hash{}, nil, err
			}
			childVal = nn
		}
		out := &shortNode{Key: n.Key, Val: childVal}
		h := hashNodeBytes(out)
		out.hash = h
		if err := t.db.store(h, out); err != nil {
			return common.Hash{}, nil, err
		}
		return h, out, nil

	case *fullNode:
		if h, clean := n.cache(); clean {
			return h, n, nil
		}
		out := &fullNode{}
		for i := 0; i < 16; i++ {
			c := n.Children[i]
			if c == nil {
				continue
			}
			_, nn, err := t.commit(c)
			if err != nil {
				return common.Hash{}, nil, err
			}
			out.Children[i] = nn
		}
		out.Children[16] = n.Children[16]
		h := hashNodeBytes(out)
		out.hash = h
		if err := t.db.store(h, out); err != nil {
			return common.Hash{}, nil, err
		}
		return h, out, nil

	case hashNode:
		return common.Hash(n), n, nil

	default:
		return common.Hash{}, n, nil
	}
}
