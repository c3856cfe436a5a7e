// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package keystore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "keystore"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadOrProvisionProvisionsOnce(t *testing.T) {
	store := openTestStore(t)

	exists, err := store.Exists(1643715000)
	require.NoError(t, err)
	assert.False(t, exists)

	first, err := store.LoadOrProvision(1643715000)
	require.NoError(t, err)

	exists, err = store.Exists(1643715000)
	require.NoError(t, err)
	assert.True(t, exists)

	second, err := store.LoadOrProvision(1643715000)
	require.NoError(t, err)

	assert.Equal(t, first.Params.Serialize(), second.Params.Serialize())
	assert.Equal(t, first.SigningKey.Serialize(), second.SigningKey.Serialize())
	assert.Equal(t, first.PublicKey.Serialize(), second.PublicKey.Serialize())
}

func TestDistinctGenerationsAreIndependent(t *testing.T) {
	store := openTestStore(t)

	a, err := store.LoadOrProvision(1643715000)
	require.NoError(t, err)
	b, err := store.LoadOrProvision(1643715600)
	require.NoError(t, err)

	assert.NotEqual(t, a.SigningKey.Serialize(), b.SigningKey.Serialize())
}

func TestLoadReturnsErrorWhenMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Load(999)
	assert.Error(t, err)
}
