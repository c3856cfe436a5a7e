// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veronymous/veronymous/crypto/ps"
	"github.com/veronymous/veronymous/curve"
	"github.com/veronymous/veronymous/token"
)

func generateEpochToken(t *testing.T) (token.EpochToken, ps.PublicKey, ps.Params) {
	params, err := ps.GenerateParams()
	require.NoError(t, err)
	sk, err := ps.GenerateSigningKey(1, params)
	require.NoError(t, err)
	pk := sk.DerivePublicKey(params)

	tokenID, err := curve.RandomNonZeroScalar()
	require.NoError(t, err)
	blinding, err := curve.RandomNonZeroScalar()
	require.NoError(t, err)

	request, err := token.CreateRootTokenRequest(tokenID, blinding, pk, params)
	require.NoError(t, err)
	response, err := token.IssueRootToken(request, sk, pk, params)
	require.NoError(t, err)
	credential, err := token.CompleteRootToken(response, tokenID, blinding, pk, params)
	require.NoError(t, err)

	tok, err := token.DeriveEpochToken(credential, []byte("test"), 1643629600, pk, params)
	require.NoError(t, err)

	return tok, pk, params
}

func TestConnectRequestRoundTrip(t *testing.T) {
	tok, pk, params := generateEpochToken(t)

	var key [KeySize]byte
	for i := range key {
		key[i] = byte(i)
	}

	request := NewConnectRequest(key, tok)
	framed := EncodeRequest(request)
	assert.Len(t, framed, 1+ConnectRequestSize)

	decoded, err := Decode(framed)
	require.NoError(t, err)

	decodedRequest, ok := decoded.(ConnectRequest)
	require.True(t, ok)
	assert.Equal(t, key, decodedRequest.PublicKey)

	valid, err := decodedRequest.Verify([]byte("test"), 1643629600, pk, params)
	require.NoError(t, err)
	assert.True(t, valid)

	invalid, err := decodedRequest.Verify([]byte("test"), 1643629700, pk, params)
	require.NoError(t, err)
	assert.False(t, invalid)
}

func TestConnectResponseRoundTrip(t *testing.T) {
	response := NewConnectResponse(true, [IPv4Size]byte{10, 0, 8, 1}, [IPv6Size]byte{0xfd, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 8, 0, 1})
	framed := EncodeResponse(response)
	assert.Len(t, framed, 1+ConnectResponseSize)

	decoded, err := Decode(framed)
	require.NoError(t, err)

	decodedResponse, ok := decoded.(ConnectResponse)
	require.True(t, ok)
	assert.Equal(t, response, decodedResponse)
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := Decode([]byte{99, 1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeRejectsEmpty(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
}
