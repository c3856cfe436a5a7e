// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package admission

import (
	"context"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/veronymous/veronymous/connection"
	"github.com/veronymous/veronymous/crypto/ps"
	"github.com/veronymous/veronymous/curve"
	"github.com/veronymous/veronymous/router/addralloc"
	"github.com/veronymous/veronymous/router/conndb"
	"github.com/veronymous/veronymous/router/keycache"
	"github.com/veronymous/veronymous/router/replay"
	"github.com/veronymous/veronymous/router/wireguard"
	"github.com/veronymous/veronymous/rpcutil"
	"github.com/veronymous/veronymous/token"
)

const (
	testEpochLength = uint64(600)
	testBuffer      = uint64(60)
	testNow         = uint64(1643715100)
)

type testIssuer struct {
	params     ps.Params
	signingKey ps.SigningKey
	publicKey  ps.PublicKey
}

func generateTestIssuer(t *testing.T) testIssuer {
	t.Helper()
	params, err := ps.GenerateParams()
	require.NoError(t, err)
	sk, err := ps.GenerateSigningKey(1, params)
	require.NoError(t, err)
	return testIssuer{params: params, signingKey: sk, publicKey: sk.DerivePublicKey(params)}
}

func dialBufconn(t *testing.T, register func(*grpc.Server)) *grpc.ClientConn {
	t.Helper()
	listener := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer(grpc.ForceServerCodec(rpcutil.Codec{}))
	register(server)
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)

	dialer := func(context.Context, string) (net.Conn, error) { return listener.Dial() }
	conn, err := grpc.Dial("bufnet", grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newTestService(t *testing.T, iss testIssuer) (*Service, *conndb.Store) {
	t.Helper()

	info := token.TokenInfo{Params: iss.params, PublicKey: iss.publicKey, KeyLifetime: 3600}

	issuerConn := dialBufconn(t, func(server *grpc.Server) {
		server.RegisterService(rpcutil.NewServiceDesc("veronymous.TokenInfo", map[string]rpcutil.UnaryHandler{
			"GetTokenInfo": func(ctx context.Context, _ rpcutil.Bytes) (rpcutil.Bytes, error) {
				return info.Serialize(), nil
			},
			"GetNextTokenInfo": func(ctx context.Context, _ rpcutil.Bytes) (rpcutil.Bytes, error) {
				return info.Serialize(), nil
			},
		}), nil)
	})
	keys, err := keycache.New(issuerConn)
	require.NoError(t, err)

	wgConn := dialBufconn(t, func(server *grpc.Server) {
		server.RegisterService(rpcutil.NewServiceDesc("veronymous.WireguardManager", map[string]rpcutil.UnaryHandler{
			"AddPeer":    func(ctx context.Context, _ rpcutil.Bytes) (rpcutil.Bytes, error) { return nil, nil },
			"RemovePeer": func(ctx context.Context, _ rpcutil.Bytes) (rpcutil.Bytes, error) { return nil, nil },
		}), nil)
	})
	wg := wireguard.New([]*grpc.ClientConn{wgConn})

	replayServer := miniredis.RunT(t)
	replayDetector, err := replay.New(replayServer.Addr())
	require.NoError(t, err)

	addrServer := miniredis.RunT(t)
	addresses, err := addralloc.New(addrServer.Addr(), [2]byte{10, 0}, [13]byte{0xfd})
	require.NoError(t, err)

	connServer := miniredis.RunT(t)
	conns, err := conndb.New(connServer.Addr())
	require.NoError(t, err)

	config := Config{Domain: []byte("test-domain"), EpochLength: testEpochLength, Buffer: testBuffer}
	svc := New(config, keys, replayDetector, addresses, conns, wg)
	svc.now = func() uint64 { return testNow }

	return svc, conns
}

func issueCredential(t *testing.T, iss testIssuer) token.RootCredential {
	t.Helper()
	tokenID, err := curve.RandomNonZeroScalar()
	require.NoError(t, err)
	blinding, err := curve.RandomNonZeroScalar()
	require.NoError(t, err)

	request, err := token.CreateRootTokenRequest(tokenID, blinding, iss.publicKey, iss.params)
	require.NoError(t, err)
	response, err := token.IssueRootToken(request, iss.signingKey, iss.publicKey, iss.params)
	require.NoError(t, err)
	credential, err := token.CompleteRootToken(response, tokenID, blinding, iss.publicKey, iss.params)
	require.NoError(t, err)
	return credential
}

func TestAdmitAcceptsValidRequest(t *testing.T) {
	iss := generateTestIssuer(t)
	svc, conns := newTestService(t, iss)

	credential := issueCredential(t, iss)
	epoch := token.CurrentEpoch(testNow, testEpochLength)
	epochToken, err := token.DeriveEpochToken(credential, []byte("test-domain"), epoch, iss.publicKey, iss.params)
	require.NoError(t, err)

	var publicKey [connection.KeySize]byte
	publicKey[0] = 42
	request := connection.NewConnectRequest(publicKey, epochToken)
	framed := connection.EncodeRequest(request)

	responseFramed, err := svc.Admit(context.Background(), framed)
	require.NoError(t, err)

	decoded, err := connection.Decode(responseFramed)
	require.NoError(t, err)
	response, ok := decoded.(connection.ConnectResponse)
	require.True(t, ok)
	assert.True(t, response.Accepted)
	assert.Equal(t, byte(10), response.IPv4[0])

	stored, err := conns.Connections(epoch)
	require.NoError(t, err)
	assert.Contains(t, stored, publicKey)
}

func TestAdmitRejectsReplay(t *testing.T) {
	iss := generateTestIssuer(t)
	svc, _ := newTestService(t, iss)

	credential := issueCredential(t, iss)
	epoch := token.CurrentEpoch(testNow, testEpochLength)
	epochToken, err := token.DeriveEpochToken(credential, []byte("test-domain"), epoch, iss.publicKey, iss.params)
	require.NoError(t, err)

	var publicKey [connection.KeySize]byte
	request := connection.NewConnectRequest(publicKey, epochToken)
	framed := connection.EncodeRequest(request)

	_, err = svc.Admit(context.Background(), framed)
	require.NoError(t, err)

	_, err = svc.Admit(context.Background(), framed)
	assert.Error(t, err)
}

func TestAdmitRejectsBadVerification(t *testing.T) {
	iss := generateTestIssuer(t)
	svc, _ := newTestService(t, iss)

	other := generateTestIssuer(t)
	credential := issueCredential(t, other)
	epoch := token.CurrentEpoch(testNow, testEpochLength)
	epochToken, err := token.DeriveEpochToken(credential, []byte("test-domain"), epoch, other.publicKey, other.params)
	require.NoError(t, err)

	var publicKey [connection.KeySize]byte
	request := connection.NewConnectRequest(publicKey, epochToken)
	framed := connection.EncodeRequest(request)

	_, err = svc.Admit(context.Background(), framed)
	assert.Error(t, err)
}

func TestAdmitRejectsMalformedFrame(t *testing.T) {
	iss := generateTestIssuer(t)
	svc, _ := newTestService(t, iss)

	_, err := svc.Admit(context.Background(), []byte{9, 1, 2, 3})
	assert.Error(t, err)
}

func TestSweepClearsEverythingButCurrentAndNext(t *testing.T) {
	iss := generateTestIssuer(t)
	svc, conns := newTestService(t, iss)

	staleEpoch := token.CurrentEpoch(testNow, testEpochLength) - 10*testEpochLength
	var key [connection.KeySize]byte
	key[0] = 7
	require.NoError(t, conns.Store(staleEpoch, key))

	require.NoError(t, svc.Sweep(context.Background()))

	remaining, err := conns.StoredEpochs()
	require.NoError(t, err)
	assert.NotContains(t, remaining, staleEpoch)
}
