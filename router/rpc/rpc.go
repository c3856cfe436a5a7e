// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package rpc exposes an admission.Service over the Router-agent RPC
// surface (spec §6 "CreateConnection").
package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/veronymous/veronymous/router/admission"
	"github.com/veronymous/veronymous/rpcutil"
)

const routerAgentService = "veronymous.RouterAgent"

// MethodCreateConnection is the fully-qualified method name a client would
// address through rpcutil.Invoke.
const MethodCreateConnection = "/" + routerAgentService + "/CreateConnection"

// Register wires svc's admission decision onto a grpc.Server as the
// Router-agent service.
func Register(server *grpc.Server, svc *admission.Service) {
	server.RegisterService(routerAgentDesc(svc), nil)
}

func routerAgentDesc(svc *admission.Service) *grpc.ServiceDesc {
	return rpcutil.NewServiceDesc(routerAgentService, map[string]rpcutil.UnaryHandler{
		"CreateConnection": func(ctx context.Context, request rpcutil.Bytes) (rpcutil.Bytes, error) {
			response, err := svc.Admit(ctx, request)
			return response, rpcutil.Status(err)
		},
	})
}
