// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package connection implements the wire framing for the router-agent
// admission protocol: a one-byte message-kind tag followed by a
// fixed-length body (spec §3, §4.8).
package connection

import (
	"github.com/veronymous/veronymous/crypto/ps"
	"github.com/veronymous/veronymous/token"
	"github.com/veronymous/veronymous/verrors"
)

const (
	// KeySize is the length of a WireGuard public key.
	KeySize = 32
	// IPv4Size is the length of an IPv4 address.
	IPv4Size = 4
	// IPv6Size is the length of an IPv6 address.
	IPv6Size = 16

	// RequestKind and ResponseKind are the one-byte message-kind tags
	// prefixing every framed message on the wire.
	RequestKind  byte = 1
	ResponseKind byte = 2

	// ConnectRequestSize is KeySize + the serialized EpochToken.
	ConnectRequestSize = KeySize + token.SerializedEpochTokenSize
	// ConnectResponseSize is 1 (accepted) + IPv4Size + IPv6Size.
	ConnectResponseSize = 1 + IPv4Size + IPv6Size

	// minMessageSize is the shortest a tagged message body can be.
	minMessageSize = 1
)

// ConnectRequest is a client's VPN admission request.
type ConnectRequest struct {
	PublicKey [KeySize]byte
	Token     token.EpochToken
}

// NewConnectRequest builds a request from a raw WireGuard public key and an
// already-derived epoch token.
func NewConnectRequest(publicKey [KeySize]byte, tok token.EpochToken) ConnectRequest {
	return ConnectRequest{PublicKey: publicKey, Token: tok}
}

// Verify checks the embedded token against domain and epoch, mirroring
// EpochToken.Verify (spec §4.6) for use by the router's admission service.
func (r ConnectRequest) Verify(domain []byte, epoch uint64, publicKey ps.PublicKey, params ps.Params) (bool, error) {
	ok, err := r.Token.Verify(domain, epoch, publicKey, params)
	if err != nil {
		return false, verrors.Wrap(verrors.KindVerification, err, "could not verify token")
	}
	return ok, nil
}

// Bytes encodes the request body (without the leading kind tag).
func (r ConnectRequest) Bytes() []byte {
	out := make([]byte, 0, ConnectRequestSize)
	out = append(out, r.PublicKey[:]...)
	out = append(out, r.Token.Serialize()...)
	return out
}

func decodeConnectRequest(b []byte) (ConnectRequest, error) {
	if len(b) != ConnectRequestSize {
		return ConnectRequest{}, verrors.New(verrors.KindDeserialization, "connect request has wrong length")
	}
	var publicKey [KeySize]byte
	copy(publicKey[:], b[:KeySize])

	tok, err := token.DeserializeEpochToken(b[KeySize:])
	if err != nil {
		return ConnectRequest{}, verrors.Wrap(verrors.KindDeserialization, err, "could not decode token")
	}

	return ConnectRequest{PublicKey: publicKey, Token: tok}, nil
}

// ConnectResponse is the router's admission decision.
type ConnectResponse struct {
	Accepted bool
	IPv4     [IPv4Size]byte
	IPv6     [IPv6Size]byte
}

// NewConnectResponse builds an accepted or rejected response. The addresses
// are stored as given, whether or not the response is accepted.
func NewConnectResponse(accepted bool, ipv4 [IPv4Size]byte, ipv6 [IPv6Size]byte) ConnectResponse {
	return ConnectResponse{Accepted: accepted, IPv4: ipv4, IPv6: ipv6}
}

// Bytes encodes the response body (without the leading kind tag).
func (r ConnectResponse) Bytes() []byte {
	out := make([]byte, 0, ConnectResponseSize)
	if r.Accepted {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = append(out, r.IPv4[:]...)
	out = append(out, r.IPv6[:]...)
	return out
}

func decodeConnectResponse(b []byte) (ConnectResponse, error) {
	if len(b) != ConnectResponseSize {
		return ConnectResponse{}, verrors.New(verrors.KindDeserialization, "connect response has wrong length")
	}
	var accepted bool
	switch b[0] {
	case 0:
		accepted = false
	case 1:
		accepted = true
	default:
		return ConnectResponse{}, verrors.New(verrors.KindDeserialization, "invalid boolean in accepted field")
	}

	var ipv4 [IPv4Size]byte
	copy(ipv4[:], b[1:1+IPv4Size])
	var ipv6 [IPv6Size]byte
	copy(ipv6[:], b[1+IPv4Size:])

	return ConnectResponse{Accepted: accepted, IPv4: ipv4, IPv6: ipv6}, nil
}

// EncodeRequest frames a ConnectRequest with its leading kind tag.
func EncodeRequest(r ConnectRequest) []byte {
	return append([]byte{RequestKind}, r.Bytes()...)
}

// EncodeResponse frames a ConnectResponse with its leading kind tag.
func EncodeResponse(r ConnectResponse) []byte {
	return append([]byte{ResponseKind}, r.Bytes()...)
}

// Message is either a ConnectRequest or a ConnectResponse value, as produced
// by Decode.
type Message interface {
	isMessage()
}

func (ConnectRequest) isMessage()  {}
func (ConnectResponse) isMessage() {}

// Decode parses a tagged message, dispatching on the leading kind byte.
func Decode(b []byte) (Message, error) {
	if len(b) < minMessageSize {
		return nil, verrors.New(verrors.KindDeserialization, "message is shorter than the minimum kind-tag length")
	}

	switch kind := b[0]; kind {
	case RequestKind:
		req, err := decodeConnectRequest(b[1:])
		if err != nil {
			return nil, err
		}
		return req, nil
	case ResponseKind:
		resp, err := decodeConnectResponse(b[1:])
		if err != nil {
			return nil, err
		}
		return resp, nil
	default:
		return nil, verrors.New(verrors.KindDeserialization, "invalid message kind identifier")
	}
}
