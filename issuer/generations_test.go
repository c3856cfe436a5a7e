// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package issuer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veronymous/veronymous/curve"
	"github.com/veronymous/veronymous/issuer/keystore"
	"github.com/veronymous/veronymous/token"
)

func newTestService(t *testing.T, now uint64) *Service {
	t.Helper()

	s := &Service{
		store:       nil,
		keyLifetime: 600,
		now:         func() uint64 { return now },
		stop:        make(chan struct{}),
	}

	store, err := keystore.Open(filepath.Join(t.TempDir(), "keystore"))
	require.NoError(t, err)
	s.store = store
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.refresh())

	return s
}

func TestServiceLoadsCurrentAndNext(t *testing.T) {
	s := newTestService(t, 1643715498)

	currentGen, lifetime := s.Current()
	assert.Equal(t, uint64(600), lifetime)
	nextGen, _ := s.Next()

	assert.NotEqual(t, currentGen.SigningKey.Serialize(), nextGen.SigningKey.Serialize())
}

func TestServiceIssuesAgainstCurrentGeneration(t *testing.T) {
	s := newTestService(t, 1643715498)

	gen, _ := s.Current()

	tokenID, err := curve.RandomNonZeroScalar()
	require.NoError(t, err)
	blinding, err := curve.RandomNonZeroScalar()
	require.NoError(t, err)

	request, err := token.CreateRootTokenRequest(tokenID, blinding, gen.PublicKey, gen.Params)
	require.NoError(t, err)

	response, err := s.IssueRoot(request)
	require.NoError(t, err)

	credential, err := token.CompleteRootToken(response, tokenID, blinding, gen.PublicKey, gen.Params)
	require.NoError(t, err)

	valid, err := credential.Verify(gen.PublicKey, gen.Params)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestRefreshIsIdempotentWithinAGeneration(t *testing.T) {
	s := newTestService(t, 1643715498)

	before, _ := s.Current()
	require.NoError(t, s.refresh())
	after, _ := s.Current()

	assert.Equal(t, before.SigningKey.Serialize(), after.SigningKey.Serialize())
}
