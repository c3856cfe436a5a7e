// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package client implements the veronymous client library: obtaining a
// root credential from the issuer, deriving epoch tokens, and presenting
// them to a router agent (spec §4.5, §4.6, §6).
package client

import (
	"context"

	"google.golang.org/grpc"

	"github.com/veronymous/veronymous/connection"
	"github.com/veronymous/veronymous/curve"
	"github.com/veronymous/veronymous/issuer/rpc"
	router "github.com/veronymous/veronymous/router/rpc"
	"github.com/veronymous/veronymous/rpcutil"
	"github.com/veronymous/veronymous/token"
	"github.com/veronymous/veronymous/verrors"
)

// IssuanceClient talks to a token-issuer's Token-info and Token-issuer
// RPC surfaces.
type IssuanceClient struct {
	conn *grpc.ClientConn
}

// NewIssuanceClient wraps an already-dialed connection to a token issuer.
func NewIssuanceClient(conn *grpc.ClientConn) *IssuanceClient {
	return &IssuanceClient{conn: conn}
}

// TokenInfo fetches the issuer's current token info (params, public key,
// key lifetime).
func (c *IssuanceClient) TokenInfo(ctx context.Context) (token.TokenInfo, error) {
	return c.fetchInfo(ctx, rpc.MethodGetTokenInfo)
}

// NextTokenInfo fetches the issuer's next token info, for use inside the
// renewal buffer (spec §4.8).
func (c *IssuanceClient) NextTokenInfo(ctx context.Context) (token.TokenInfo, error) {
	return c.fetchInfo(ctx, rpc.MethodGetNextTokenInfo)
}

func (c *IssuanceClient) fetchInfo(ctx context.Context, method string) (token.TokenInfo, error) {
	response, err := rpcutil.Invoke(ctx, c.conn, method, nil)
	if err != nil {
		return token.TokenInfo{}, err
	}
	return token.DeserializeTokenInfo(response)
}

// ObtainRootCredential runs the full blind-issuance exchange against the
// issuer's current key generation: sample a fresh tokenId/blinding pair,
// request a blind signature, unblind and verify it (spec §4.5).
func (c *IssuanceClient) ObtainRootCredential(ctx context.Context) (token.RootCredential, error) {
	return c.obtain(ctx, rpc.MethodIssueToken, rpc.MethodGetTokenInfo)
}

// ObtainNextRootCredential is the same exchange against the issuer's next
// key generation.
func (c *IssuanceClient) ObtainNextRootCredential(ctx context.Context) (token.RootCredential, error) {
	return c.obtain(ctx, rpc.MethodIssueNextToken, rpc.MethodGetNextTokenInfo)
}

func (c *IssuanceClient) obtain(ctx context.Context, issueMethod, infoMethod string) (token.RootCredential, error) {
	info, err := c.fetchInfo(ctx, infoMethod)
	if err != nil {
		return token.RootCredential{}, err
	}

	tokenID, err := curve.RandomNonZeroScalar()
	if err != nil {
		return token.RootCredential{}, verrors.Wrap(verrors.KindInitialization, err, "could not sample token id")
	}
	blinding, err := curve.RandomNonZeroScalar()
	if err != nil {
		return token.RootCredential{}, verrors.Wrap(verrors.KindInitialization, err, "could not sample blinding factor")
	}

	request, err := token.CreateRootTokenRequest(tokenID, blinding, info.PublicKey, info.Params)
	if err != nil {
		return token.RootCredential{}, err
	}

	responseBytes, err := rpcutil.Invoke(ctx, c.conn, issueMethod, request.Serialize())
	if err != nil {
		return token.RootCredential{}, err
	}
	response, err := token.DeserializeRootTokenResponse(responseBytes)
	if err != nil {
		return token.RootCredential{}, err
	}

	return token.CompleteRootToken(response, tokenID, blinding, info.PublicKey, info.Params)
}

// RouterClient talks to a router agent's Router-agent RPC surface.
type RouterClient struct {
	conn *grpc.ClientConn
}

// NewRouterClient wraps an already-dialed connection to a router agent.
func NewRouterClient(conn *grpc.ClientConn) *RouterClient {
	return &RouterClient{conn: conn}
}

// Connect derives an epoch token from credential for (domain, epoch,
// info) and presents it, along with wgPublicKey, to the router agent,
// returning the assigned addresses.
func (c *RouterClient) Connect(ctx context.Context, credential token.RootCredential, domain []byte, epoch uint64, info token.TokenInfo, wgPublicKey [connection.KeySize]byte) (connection.ConnectResponse, error) {
	epochToken, err := token.DeriveEpochToken(credential, domain, epoch, info.PublicKey, info.Params)
	if err != nil {
		return connection.ConnectResponse{}, err
	}

	request := connection.NewConnectRequest(wgPublicKey, epochToken)
	framed := connection.EncodeRequest(request)

	responseFramed, err := rpcutil.Invoke(ctx, c.conn, router.MethodCreateConnection, framed)
	if err != nil {
		return connection.ConnectResponse{}, err
	}

	message, err := connection.Decode(responseFramed)
	if err != nil {
		return connection.ConnectResponse{}, verrors.Wrap(verrors.KindDeserialization, err, "could not decode connect response")
	}

	response, ok := message.(connection.ConnectResponse)
	if !ok {
		return connection.ConnectResponse{}, verrors.New(verrors.KindDeserialization, "expected a connect response")
	}

	return response, nil
}
