// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/ethdb/memorydb"
)

func testAddress(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

func TestCheckpointRevert(t *testing.T) {
	st := New(memorydb.New(), 0, nil)
	a := testAddress(0xA1)
	cleanup := CleanupMode{Kind: ForceCreate}

	st.Checkpoint()
	require.NoError(t, st.AddBalance(a, big.NewInt(69), cleanup))
	st.Checkpoint()
	require.NoError(t, st.AddBalance(a, big.NewInt(1), cleanup))

	st.RevertToCheckpoint()
	bal, err := st.Balance(a)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(69), bal)

	st.RevertToCheckpoint()
	bal, err = st.Balance(a)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(0), bal)
}

func TestStateRecoveryAfterCommit(t *testing.T) {
	db := memorydb.New()
	st := New(db, 0, nil)
	a := testAddress(0xA2)

	require.NoError(t, st.IncNonce(a))

	require.NoError(t, st.InitCode(a, []byte{1, 2, 3}))

	var key [16]byte
	key[15] = 2
	var val [16]byte
	val[15] = 69
	require.NoError(t, st.SetStorage(a, key, val))

	root, err := st.Commit()
	require.NoError(t, err)

	fresh, err := FromExisting(db, root, 0, nil)
	require.NoError(t, err)

	code, err := fresh.Code(a)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, code)

	got, err := fresh.StorageAt(a, key)
	require.NoError(t, err)
	require.Equal(t, val, got)

	nonce, err := fresh.Nonce(a)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)
}
