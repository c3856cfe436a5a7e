// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rpcutil

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func dialServer(t *testing.T, methods map[string]UnaryHandler) (*grpc.ClientConn, func()) {
	t.Helper()

	listener := bufconn.Listen(1024 * 1024)

	server := grpc.NewServer(grpc.ForceServerCodec(Codec{}))
	server.RegisterService(NewServiceDesc("veronymous.rpcutil.Test", methods), nil)

	go func() { _ = server.Serve(listener) }()

	dialer := func(context.Context, string) (net.Conn, error) { return listener.Dial() }
	conn, err := grpc.Dial("bufnet", grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	return conn, func() {
		_ = conn.Close()
		server.Stop()
	}
}

func TestInvokeRoundTrip(t *testing.T) {
	methods := map[string]UnaryHandler{
		"Echo": func(ctx context.Context, request Bytes) (Bytes, error) {
			out := make(Bytes, len(request))
			copy(out, request)
			return out, nil
		},
	}

	conn, cleanup := dialServer(t, methods)
	defer cleanup()

	response, err := Invoke(context.Background(), conn, "/veronymous.rpcutil.Test/Echo", Bytes("hello"))
	require.NoError(t, err)
	assert.Equal(t, Bytes("hello"), response)
}

func TestInvokeSurfacesHandlerError(t *testing.T) {
	methods := map[string]UnaryHandler{
		"Fail": func(ctx context.Context, request Bytes) (Bytes, error) {
			return nil, assert.AnError
		},
	}

	conn, cleanup := dialServer(t, methods)
	defer cleanup()

	_, err := Invoke(context.Background(), conn, "/veronymous.rpcutil.Test/Fail", Bytes("x"))
	assert.Error(t, err)
}
