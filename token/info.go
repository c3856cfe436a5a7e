// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package token

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/veronymous/veronymous/crypto/ps"
	"github.com/veronymous/veronymous/curve"
)

// paramsSize is the fixed encoding size of ps.Params (spec §3).
const paramsSize = curve.G1Size + curve.G2Size

// TokenInfo is the Token-info RPC response body: the params and public key
// a client needs to build a RootTokenRequest and verify root credentials
// against a given key generation, plus that generation's lifetime (spec §6
// "GetTokenInfo()/GetNextTokenInfo() -> {params_bytes, public_key_bytes,
// key_lifetime_seconds}").
type TokenInfo struct {
	Params      ps.Params
	PublicKey   ps.PublicKey
	KeyLifetime uint64
}

// Serialize encodes TokenInfo as params || key_lifetime_seconds(8, big
// endian) || public_key. The public key is placed last since its encoding
// is only self-delimiting when read to the end of the buffer.
func (i TokenInfo) Serialize() []byte {
	publicKeyBytes := i.PublicKey.Serialize()
	out := make([]byte, 0, paramsSize+8+len(publicKeyBytes))
	out = append(out, i.Params.Serialize()...)

	var lifetimeBytes [8]byte
	binary.BigEndian.PutUint64(lifetimeBytes[:], i.KeyLifetime)
	out = append(out, lifetimeBytes[:]...)

	out = append(out, publicKeyBytes...)
	return out
}

// DeserializeTokenInfo parses the encoding produced by Serialize.
func DeserializeTokenInfo(b []byte) (TokenInfo, error) {
	if len(b) < paramsSize+8 {
		return TokenInfo{}, errors.Errorf("token info too short: %d bytes", len(b))
	}

	params, err := ps.DeserializeParams(b[:paramsSize])
	if err != nil {
		return TokenInfo{}, errors.Wrap(err, "invalid params")
	}

	keyLifetime := binary.BigEndian.Uint64(b[paramsSize : paramsSize+8])

	publicKey, err := ps.DeserializePublicKey(b[paramsSize+8:])
	if err != nil {
		return TokenInfo{}, errors.Wrap(err, "invalid public key")
	}

	return TokenInfo{Params: params, PublicKey: publicKey, KeyLifetime: keyLifetime}, nil
}
