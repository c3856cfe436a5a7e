// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package rpcutil wires the Token-info, Token-issuer, and Router-agent RPC
// surfaces (spec §6) onto plain gRPC without a protobuf schema: every
// request and response body on these surfaces is already a fixed-layout
// byte buffer (spec §4.5, §6), so messages are passed through a codec that
// skips marshaling entirely instead of wrapping them in generated protobuf
// types.
package rpcutil

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is registered with grpc's encoding registry and selected via
// grpc.ForceServerCodec/grpc.ForceCodec on both ends of a connection.
const CodecName = "veronymous-raw-bytes"

// Bytes is a raw-byte gRPC message body.
type Bytes []byte

// Codec implements encoding.Codec for Bytes by passing the buffer through
// unchanged; it intentionally does not support any other Go type.
type Codec struct{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	b, ok := v.(Bytes)
	if !ok {
		return nil, fmt.Errorf("rpcutil: Marshal called with %T, want rpcutil.Bytes", v)
	}
	return b, nil
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	b, ok := v.(*Bytes)
	if !ok {
		return fmt.Errorf("rpcutil: Unmarshal called with %T, want *rpcutil.Bytes", v)
	}
	*b = append(Bytes(nil), data...)
	return nil
}

func (Codec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(Codec{})
}
