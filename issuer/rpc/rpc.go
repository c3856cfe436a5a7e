// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package rpc exposes an issuer.Service over the Token-info and
// Token-issuer RPC surfaces (spec §6).
package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/veronymous/veronymous/issuer"
	"github.com/veronymous/veronymous/rpcutil"
	"github.com/veronymous/veronymous/token"
	"github.com/veronymous/veronymous/verrors"
)

const (
	tokenInfoService   = "veronymous.TokenInfo"
	tokenIssuerService = "veronymous.TokenIssuer"
)

// Fully-qualified method names, as a client would address them through
// rpcutil.Invoke.
const (
	MethodGetTokenInfo     = "/" + tokenInfoService + "/GetTokenInfo"
	MethodGetNextTokenInfo = "/" + tokenInfoService + "/GetNextTokenInfo"
	MethodIssueToken       = "/" + tokenIssuerService + "/IssueToken"
	MethodIssueNextToken   = "/" + tokenIssuerService + "/IssueNextToken"
)

// Register wires svc's current/next key generations and issuance onto a
// grpc.Server as the Token-info and Token-issuer services.
func Register(server *grpc.Server, svc *issuer.Service) {
	server.RegisterService(tokenInfoDesc(svc), nil)
	server.RegisterService(tokenIssuerDesc(svc), nil)
}

func tokenInfoDesc(svc *issuer.Service) *grpc.ServiceDesc {
	return rpcutil.NewServiceDesc(tokenInfoService, map[string]rpcutil.UnaryHandler{
		"GetTokenInfo": func(ctx context.Context, _ rpcutil.Bytes) (rpcutil.Bytes, error) {
			generation, keyLifetime := svc.Current()
			info := token.TokenInfo{Params: generation.Params, PublicKey: generation.PublicKey, KeyLifetime: keyLifetime}
			return info.Serialize(), nil
		},
		"GetNextTokenInfo": func(ctx context.Context, _ rpcutil.Bytes) (rpcutil.Bytes, error) {
			generation, keyLifetime := svc.Next()
			info := token.TokenInfo{Params: generation.Params, PublicKey: generation.PublicKey, KeyLifetime: keyLifetime}
			return info.Serialize(), nil
		},
	})
}

func tokenIssuerDesc(svc *issuer.Service) *grpc.ServiceDesc {
	return rpcutil.NewServiceDesc(tokenIssuerService, map[string]rpcutil.UnaryHandler{
		"IssueToken": func(ctx context.Context, request rpcutil.Bytes) (rpcutil.Bytes, error) {
			response, err := issue(request, svc.IssueRoot)
			return response, rpcutil.Status(err)
		},
		"IssueNextToken": func(ctx context.Context, request rpcutil.Bytes) (rpcutil.Bytes, error) {
			response, err := issue(request, svc.IssueNextRoot)
			return response, rpcutil.Status(err)
		},
	})
}

func issue(request rpcutil.Bytes, issueFn func(token.RootTokenRequest) (token.RootTokenResponse, error)) (rpcutil.Bytes, error) {
	decoded, err := token.DeserializeRootTokenRequest(request)
	if err != nil {
		return nil, verrors.Wrap(verrors.KindDeserialization, err, "could not decode root token request")
	}

	response, err := issueFn(decoded)
	if err != nil {
		return nil, err
	}

	return response.Serialize(), nil
}
