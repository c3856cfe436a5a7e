// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package keycache

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/veronymous/veronymous/crypto/ps"
	"github.com/veronymous/veronymous/rpcutil"
	"github.com/veronymous/veronymous/token"
)

func dialFakeIssuer(t *testing.T, current, next token.TokenInfo) (*grpc.ClientConn, func()) {
	t.Helper()

	listener := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer(grpc.ForceServerCodec(rpcutil.Codec{}))
	server.RegisterService(rpcutil.NewServiceDesc("veronymous.TokenInfo", map[string]rpcutil.UnaryHandler{
		"GetTokenInfo": func(ctx context.Context, _ rpcutil.Bytes) (rpcutil.Bytes, error) {
			return current.Serialize(), nil
		},
		"GetNextTokenInfo": func(ctx context.Context, _ rpcutil.Bytes) (rpcutil.Bytes, error) {
			return next.Serialize(), nil
		},
	}), nil)
	go func() { _ = server.Serve(listener) }()

	dialer := func(context.Context, string) (net.Conn, error) { return listener.Dial() }
	conn, err := grpc.Dial("bufnet", grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	return conn, func() {
		_ = conn.Close()
		server.Stop()
	}
}

func generateTokenInfo(t *testing.T, keyLifetime uint64) token.TokenInfo {
	t.Helper()
	params, err := ps.GenerateParams()
	require.NoError(t, err)
	sk, err := ps.GenerateSigningKey(1, params)
	require.NoError(t, err)
	return token.TokenInfo{Params: params, PublicKey: sk.DerivePublicKey(params), KeyLifetime: keyLifetime}
}

func TestCacheLoadsCurrentAndNext(t *testing.T) {
	current := generateTokenInfo(t, 3600)
	next := generateTokenInfo(t, 3600)

	conn, cleanup := dialFakeIssuer(t, current, next)
	defer cleanup()

	cache, err := New(conn)
	require.NoError(t, err)

	assert.Equal(t, current.Serialize(), cache.Current().Serialize())
	assert.Equal(t, next.Serialize(), cache.Next().Serialize())
}

func TestActiveUsesNextInsideRenewalBuffer(t *testing.T) {
	current := generateTokenInfo(t, 3600)
	next := generateTokenInfo(t, 3600)

	conn, cleanup := dialFakeIssuer(t, current, next)
	defer cleanup()

	cache, err := New(conn)
	require.NoError(t, err)

	epochLength, buffer := uint64(600), uint64(60)
	// now % 600 == 590 > 600-60=540, so we're in the trailing buffer.
	now := uint64(1643715590)

	active, epoch := cache.Active(now, epochLength, buffer)
	assert.Equal(t, next.Serialize(), active.Serialize())
	assert.Equal(t, token.NextEpoch(now, epochLength), epoch)
}

func TestActiveUsesCurrentOutsideRenewalBuffer(t *testing.T) {
	current := generateTokenInfo(t, 3600)
	next := generateTokenInfo(t, 3600)

	conn, cleanup := dialFakeIssuer(t, current, next)
	defer cleanup()

	cache, err := New(conn)
	require.NoError(t, err)

	epochLength, buffer := uint64(600), uint64(60)
	now := uint64(1643715100)

	active, epoch := cache.Active(now, epochLength, buffer)
	assert.Equal(t, current.Serialize(), active.Serialize())
	assert.Equal(t, token.CurrentEpoch(now, epochLength), epoch)
}
