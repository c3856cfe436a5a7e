// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rpcutil

import (
	"context"

	"google.golang.org/grpc"
)

// UnaryHandler serves one raw-bytes RPC method.
type UnaryHandler func(ctx context.Context, request Bytes) (Bytes, error)

// NewServiceDesc builds a grpc.ServiceDesc for serviceName out of a set of
// UnaryHandlers, in place of the grpc.ServiceDesc a protoc-generated _grpc.pb.go
// file would otherwise produce. srv is passed through to grpc and may be
// nil; handlers close over whatever state they need instead of receiving it
// through srv.
func NewServiceDesc(serviceName string, methods map[string]UnaryHandler) *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*interface{})(nil),
		Metadata:    serviceName,
	}

	for name, fn := range methods {
		desc.Methods = append(desc.Methods, methodDesc(name, fn))
	}

	return desc
}

func methodDesc(name string, fn UnaryHandler) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			var req Bytes
			if err := dec(&req); err != nil {
				return nil, err
			}

			if interceptor == nil {
				return fn(ctx, req)
			}

			info := &grpc.UnaryServerInfo{FullMethod: name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return fn(ctx, req.(Bytes))
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

// Invoke calls a raw-bytes unary RPC method on cc, in place of the call a
// generated client stub would make.
func Invoke(ctx context.Context, cc *grpc.ClientConn, fullMethod string, request Bytes) (Bytes, error) {
	var response Bytes
	if err := cc.Invoke(ctx, fullMethod, request, &response, grpc.ForceCodec(Codec{})); err != nil {
		return nil, err
	}
	return response, nil
}
