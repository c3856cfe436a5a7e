// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package ps implements Pointcheval-Sanders short signatures over
// BLS12-381 (spec §4.3): key generation, plain and blind signing,
// verification, and a signature proof-of-knowledge used by epoch token
// derivation.
package ps

import (
	"github.com/pkg/errors"

	"github.com/veronymous/veronymous/curve"
)

// Params holds the two shared generators (g, g~), immutable once published.
type Params struct {
	G      curve.G1
	GTilde curve.G2
}

// GenerateParams samples two fresh random generators.
func GenerateParams() (Params, error) {
	g, err := curve.RandomG1()
	if err != nil {
		return Params{}, errors.Wrap(err, "could not sample g")
	}
	gTilde, err := curve.RandomG2()
	if err != nil {
		return Params{}, errors.Wrap(err, "could not sample g_tilde")
	}
	return Params{G: g, GTilde: gTilde}, nil
}

// SigningKey is the issuer's secret key for n committed attributes.
type SigningKey struct {
	X    curve.Scalar
	Y    []curve.Scalar
	XCap curve.G1
}

// GenerateSigningKey samples a fresh signing key supporting messageCount
// attributes (messageCount = 1 for root-credential tokenId, per spec §3).
func GenerateSigningKey(messageCount int, params Params) (SigningKey, error) {
	x, err := curve.RandomScalar()
	if err != nil {
		return SigningKey{}, errors.Wrap(err, "could not sample x")
	}
	y := make([]curve.Scalar, messageCount)
	for i := range y {
		yi, err := curve.RandomScalar()
		if err != nil {
			return SigningKey{}, errors.Wrap(err, "could not sample y")
		}
		y[i] = yi
	}
	return SigningKey{X: x, Y: y, XCap: params.G.Mul(x)}, nil
}

// DerivePublicKey computes the issuer's public key from its signing key.
func (sk SigningKey) DerivePublicKey(params Params) PublicKey {
	yCap := make([]curve.G1, len(sk.Y))
	yCapTilde := make([]curve.G2, len(sk.Y))
	for i, y := range sk.Y {
		yCap[i] = params.G.Mul(y)
		yCapTilde[i] = params.GTilde.Mul(y)
	}
	return PublicKey{
		YCap:      yCap,
		XCapTilde: params.GTilde.Mul(sk.X),
		YCapTilde: yCapTilde,
	}
}

// PublicKey is used for blind signing, verification, and signature PoKs.
// Invariant (spec §9): |YCap| MUST equal |YCapTilde|, enforced at
// construction by DerivePublicKey and by Deserialize.
type PublicKey struct {
	YCap      []curve.G1
	XCapTilde curve.G2
	YCapTilde []curve.G2
}

func (pk PublicKey) messageCount() int { return len(pk.YCapTilde) }
