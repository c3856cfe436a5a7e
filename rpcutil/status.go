// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rpcutil

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/veronymous/veronymous/verrors"
)

// Status translates a verrors.Error into a gRPC status error carrying the
// Kind-derived code (spec §7); any other error is surfaced as codes.Unknown.
func Status(err error) error {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*verrors.Error); ok {
		return status.Error(verrors.Code(ve.Kind), ve.Error())
	}
	return status.Error(codes.Unknown, err.Error())
}
