// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/veronymous/veronymous/curve"
	"github.com/veronymous/veronymous/issuer"
	"github.com/veronymous/veronymous/rpcutil"
	"github.com/veronymous/veronymous/token"
)

func dialIssuer(t *testing.T) (*grpc.ClientConn, func()) {
	t.Helper()

	svc, err := issuer.NewService(filepath.Join(t.TempDir(), "keystore"), 600)
	require.NoError(t, err)

	listener := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer(grpc.ForceServerCodec(rpcutil.Codec{}))
	Register(server, svc)
	go func() { _ = server.Serve(listener) }()

	dialer := func(context.Context, string) (net.Conn, error) { return listener.Dial() }
	conn, err := grpc.Dial("bufnet", grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	return conn, func() {
		_ = conn.Close()
		server.Stop()
		_ = svc.Close()
	}
}

func TestGetTokenInfoRoundTrip(t *testing.T) {
	conn, cleanup := dialIssuer(t)
	defer cleanup()

	response, err := rpcutil.Invoke(context.Background(), conn, MethodGetTokenInfo, nil)
	require.NoError(t, err)

	info, err := token.DeserializeTokenInfo(response)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), info.KeyLifetime)
}

func TestIssueTokenEndToEnd(t *testing.T) {
	conn, cleanup := dialIssuer(t)
	defer cleanup()

	infoBytes, err := rpcutil.Invoke(context.Background(), conn, MethodGetTokenInfo, nil)
	require.NoError(t, err)
	info, err := token.DeserializeTokenInfo(infoBytes)
	require.NoError(t, err)

	tokenID, err := curve.RandomNonZeroScalar()
	require.NoError(t, err)
	blinding, err := curve.RandomNonZeroScalar()
	require.NoError(t, err)

	request, err := token.CreateRootTokenRequest(tokenID, blinding, info.PublicKey, info.Params)
	require.NoError(t, err)

	responseBytes, err := rpcutil.Invoke(context.Background(), conn, MethodIssueToken, request.Serialize())
	require.NoError(t, err)

	response, err := token.DeserializeRootTokenResponse(responseBytes)
	require.NoError(t, err)

	credential, err := token.CompleteRootToken(response, tokenID, blinding, info.PublicKey, info.Params)
	require.NoError(t, err)

	valid, err := credential.Verify(info.PublicKey, info.Params)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestIssueTokenRejectsMalformedRequest(t *testing.T) {
	conn, cleanup := dialIssuer(t)
	defer cleanup()

	_, err := rpcutil.Invoke(context.Background(), conn, MethodIssueToken, []byte{1, 2, 3})
	assert.Error(t, err)
}
