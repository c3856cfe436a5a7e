// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package conndb

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	server := miniredis.RunT(t)
	store, err := New(server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func key(b byte) [KeySize]byte {
	var k [KeySize]byte
	k[0] = b
	return k
}

func TestStoreAndReadConnections(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Store(1643715000, key(1)))
	require.NoError(t, s.Store(1643715000, key(2)))

	keys, err := s.Connections(1643715000)
	require.NoError(t, err)
	assert.ElementsMatch(t, [][KeySize]byte{key(1), key(2)}, keys)
}

func TestClearRemovesList(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Store(1643715000, key(1)))
	require.NoError(t, s.Clear(1643715000))

	keys, err := s.Connections(1643715000)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStoredEpochsListsAllNonEmptyEpochs(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Store(1643715000, key(1)))
	require.NoError(t, s.Store(1643715600, key(2)))

	epochs, err := s.StoredEpochs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{1643715000, 1643715600}, epochs)
}
