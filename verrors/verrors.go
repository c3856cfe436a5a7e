// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package verrors defines the error taxonomy shared by every layer of the
// protocol stack (spec §7): one Kind enum, one Error type wrapping a cause
// in the pkg/errors style, and a mapping onto gRPC status codes at the RPC
// boundary.
package verrors

import (
	"fmt"

	"google.golang.org/grpc/codes"
)

// Kind is the semantic classification of a failure, independent of which
// Go type produced it.
type Kind int

const (
	// KindInvalidArgument: a caller-side precondition was violated.
	KindInvalidArgument Kind = iota
	// KindDeserialization: bytes do not decode to a valid object.
	KindDeserialization
	// KindProof: proof-of-knowledge generation failed (e.g. length mismatch).
	KindProof
	// KindVerification: a signature, PoK, or replay check failed.
	KindVerification
	// KindInvalidToken: a root credential's signature does not verify.
	KindInvalidToken
	// KindSigning: blind signing returned an error.
	KindSigning
	// KindDB: a KV store operation failed.
	KindDB
	// KindIP: host-id allocation exhausted its attempt budget.
	KindIP
	// KindInitialization: a service could not be constructed.
	KindInitialization
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindDeserialization:
		return "deserialization error"
	case KindProof:
		return "proof error"
	case KindVerification:
		return "verification error"
	case KindInvalidToken:
		return "invalid token"
	case KindSigning:
		return "signing error"
	case KindDB:
		return "db error"
	case KindIP:
		return "ip allocation error"
	case KindInitialization:
		return "initialization error"
	default:
		return "unknown error"
	}
}

// Error is the single error type used across the module. It carries a Kind
// for programmatic dispatch (e.g. RPC boundary translation) and an optional
// wrapped cause.
//
// Callers MUST NOT format secret scalars (Fr values, tokenId, blinding
// factors) into the Message field - only public material (epoch numbers,
// byte lengths, kinds) belongs in an error string.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Cause returns the wrapped error, or nil if none. Satisfies the informal
// github.com/pkg/errors Causer interface.
func (e *Error) Cause() error { return e.cause }

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	ve, ok := err.(*Error)
	return ok && ve.Kind == kind
}

// Code maps a Kind onto the gRPC status code used at every RPC boundary
// (issuer and router-agent facades), per spec §7's "Surface" column.
func Code(kind Kind) codes.Code {
	switch kind {
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindDeserialization:
		return codes.InvalidArgument
	case KindProof:
		return codes.Internal
	case KindVerification:
		return codes.Unauthenticated
	case KindInvalidToken:
		return codes.PermissionDenied
	case KindSigning:
		return codes.Aborted
	case KindDB:
		return codes.Unavailable
	case KindIP:
		return codes.Aborted
	case KindInitialization:
		return codes.Internal
	default:
		return codes.Unknown
	}
}
