// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package state

import (
	"math/big"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/crypto"
)

// --- reads ------------------------------------------------------------

// Exists reports whether addr has any cache/trie entry at all.
func (s *State) Exists(addr common.Address) (bool, error) {
	if s.global != nil && s.global.IsKnownNull(addr) {
		if _, ok := s.cache[addr]; !ok {
			// The filter can answer a false positive and never forgets an
			// address, so only a cached tombstone confirms absence.
			if acct, cached := s.global.Get(addr); cached && acct == nil {
				return false, nil
			}
		}
	}
	e, err := s.ensureCached(addr)
	if err != nil {
		return false, err
	}
	return e.Account != nil, nil
}

// ExistsAndNotNull reports whether addr exists and is not the "empty"
// account shape (zero balance, zero nonce, no code) — the condition
// Ethereum-family state-clearing rules call "non-null".
func (s *State) ExistsAndNotNull(addr common.Address) (bool, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return false, err
	}
	if e.Account == nil {
		return false, nil
	}
	a := e.Account
	return a.Nonce != 0 || a.Balance.Sign() != 0 || a.CodeHash != emptyCodeHash, nil
}

// ExistsAndHasCodeOrNonce reports whether addr exists with non-zero
// nonce or non-empty code (used to reject account-creation collisions).
func (s *State) ExistsAndHasCodeOrNonce(addr common.Address) (bool, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return false, err
	}
	if e.Account == nil {
		return false, nil
	}
	return e.Account.Nonce != 0 || e.Account.CodeHash != emptyCodeHash, nil
}

// Balance returns addr's balance, or zero if the account does not exist.
func (s *State) Balance(addr common.Address) (*big.Int, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return nil, err
	}
	if e.Account == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(e.Account.Balance), nil
}

// Nonce returns addr's nonce, or the configured start nonce if the
// account does not exist.
func (s *State) Nonce(addr common.Address) (uint64, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return 0, err
	}
	if e.Account == nil {
		return s.startNonce, nil
	}
	return e.Account.Nonce, nil
}

// StorageRoot returns addr's current (last-committed) storage root.
func (s *State) StorageRoot(addr common.Address) (common.Hash, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return common.Hash{}, err
	}
	if e.Account == nil {
		return common.Hash{}, nil
	}
	return e.Account.StorageRoot, nil
}

// StorageAt reads the 16-byte "word" storage slot at key.
func (s *State) StorageAt(addr common.Address, key [16]byte) ([16]byte, error) {
	var out [16]byte
	v, err := s.readStorage(addr, domainWord, key, 16)
	if err != nil || v == nil {
		return out, err
	}
	copy(out[:], v)
	return out, nil
}

// StorageAtDword reads the 32-byte "dword" storage slot at key. This is
// a disjoint key-space from StorageAt: the same 16-byte key in each
// space names an independent slot.
func (s *State) StorageAtDword(addr common.Address, key [16]byte) ([32]byte, error) {
	var out [32]byte
	v, err := s.readStorage(addr, domainDword, key, 32)
	if err != nil || v == nil {
		return out, err
	}
	copy(out[:], v)
	return out, nil
}

func (s *State) readStorage(addr common.Address, domain storageDomain, key [16]byte, width int) ([]byte, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return nil, err
	}
	if e.Account == nil {
		return make([]byte, width), nil
	}
	if v, ok := e.Account.readSlot(domain, key); ok {
		return v, nil
	}
	st, err := s.storageTrieFor(addr, e.Account.StorageRoot)
	if err != nil {
		return nil, err
	}
	v, err := st.TryGet(secureSlotKey(domain, key))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return make([]byte, width), nil
	}
	return v, nil
}

// Code returns addr's contract code (nil if none).
func (s *State) Code(addr common.Address) ([]byte, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return nil, err
	}
	if e.Account == nil || e.Account.CodeHash == emptyCodeHash {
		return nil, nil
	}
	if e.Account.code != nil {
		return e.Account.code, nil
	}
	return s.codedb.Get(codeKey(e.Account.CodeHash))
}

// CodeHash returns addr's code hash (the empty-code hash if none).
func (s *State) CodeHash(addr common.Address) (common.Hash, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return common.Hash{}, err
	}
	if e.Account == nil {
		return emptyCodeHash, nil
	}
	return e.Account.CodeHash, nil
}

// CodeSize returns the length of addr's code without loading it in full
// where a backing store can answer more cheaply; here it simply loads.
func (s *State) CodeSize(addr common.Address) (int, error) {
	code, err := s.Code(addr)
	if err != nil {
		return 0, err
	}
	return len(code), nil
}

// --- mutations ----------------------------------------------------------

func (s *State) mutableAccount(addr common.Address) (*Account, *AccountEntry, error) {
	e, err := s.ensureCached(addr)
	if err != nil {
		return nil, nil, err
	}
	s.noteBeforeWrite(addr)
	var a *Account
	if e.Account == nil {
		a = NewAccount(s.startNonce)
	} else {
		a = e.Account.Clone()
	}
	ne := &AccountEntry{Account: a, State: Dirty}
	s.cache[addr] = ne
	return a, ne, nil
}

// AddBalance credits amount to addr, creating the account if cleanup
// allows it for a zero-value transfer.
func (s *State) AddBalance(addr common.Address, amount *big.Int, cleanup CleanupMode) error {
	if amount.Sign() == 0 {
		if !s.shouldTouchEmpty(addr, cleanup) {
			return nil
		}
	}
	a, _, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	a.Balance.Add(a.Balance, amount)
	return nil
}

// SubBalance debits amount from addr.
func (s *State) SubBalance(addr common.Address, amount *big.Int, cleanup CleanupMode) error {
	if amount.Sign() == 0 {
		if !s.shouldTouchEmpty(addr, cleanup) {
			return nil
		}
	}
	a, _, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	a.Balance.Sub(a.Balance, amount)
	return nil
}

// TransferBalance moves amount from `from` to `to`.
func (s *State) TransferBalance(from, to common.Address, amount *big.Int, cleanup CleanupMode) error {
	if err := s.SubBalance(from, amount, cleanup); err != nil {
		return err
	}
	return s.AddBalance(to, amount, cleanup)
}

func (s *State) shouldTouchEmpty(addr common.Address, cleanup CleanupMode) bool {
	switch cleanup.Kind {
	case ForceCreate:
		return true
	case TrackTouched:
		if cleanup.Touched != nil {
			cleanup.Touched.Add(addr)
		}
		fallthrough
	case NoEmpty:
		exists, err := s.Exists(addr)
		return err == nil && exists
	}
	return true
}

// IncNonce increments addr's nonce by one.
func (s *State) IncNonce(addr common.Address) error {
	a, _, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	a.Nonce++
	return nil
}

// SetStorage writes a 16-byte word-space slot.
func (s *State) SetStorage(addr common.Address, key [16]byte, value [16]byte) error {
	a, _, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	a.setSlot(domainWord, key, append([]byte{}, value[:]...))
	return nil
}

// SetStorageDword writes a 32-byte dword-space slot.
func (s *State) SetStorageDword(addr common.Address, key [16]byte, value [32]byte) error {
	a, _, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	a.setSlot(domainDword, key, append([]byte{}, value[:]...))
	return nil
}

// InitCode sets addr's contract code, staging it for the codedb write
// that happens at the next Commit.
func (s *State) InitCode(addr common.Address, code []byte) error {
	a, _, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	a.code = code
	if len(code) == 0 {
		a.CodeHash = emptyCodeHash
	} else {
		a.CodeHash = crypto.Blake2b256(code)
	}
	return nil
}

// ResetCode clears addr's code back to empty.
func (s *State) ResetCode(addr common.Address) error {
	return s.InitCode(addr, nil)
}

// SetEmptyButCommit forces addr to be written at the next Commit even
// if it would otherwise qualify for the empty-account demotion.
func (s *State) SetEmptyButCommit(addr common.Address) error {
	e, err := s.ensureCached(addr)
	if err != nil {
		return err
	}
	s.noteBeforeWrite(addr)
	var a *Account
	if e.Account == nil {
		a = NewAccount(s.startNonce)
	} else {
		a = e.Account.Clone()
	}
	s.cache[addr] = &AccountEntry{Account: a, State: Dirty}
	s.forceCommit[addr] = true
	return nil
}

// NewContract materializes a brand-new account at addr with the given
// starting nonce, discarding any previous storage/code (used when a
// contract address is reused after the prior occupant's death).
func (s *State) NewContract(addr common.Address, nonce uint64) error {
	if _, err := s.ensureCached(addr); err != nil {
		return err
	}
	s.noteBeforeWrite(addr)
	a := NewAccount(nonce)
	s.cache[addr] = &AccountEntry{Account: a, State: Dirty}
	delete(s.storageTries, addr)
	return nil
}

// KillAccount removes addr entirely.
func (s *State) KillAccount(addr common.Address) error {
	if _, err := s.ensureCached(addr); err != nil {
		return err
	}
	s.noteBeforeWrite(addr)
	s.cache[addr] = &AccountEntry{Account: nil, State: Dirty}
	delete(s.storageTries, addr)
	return nil
}
