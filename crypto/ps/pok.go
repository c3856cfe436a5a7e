// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package ps

import (
	"github.com/pkg/errors"

	"github.com/veronymous/veronymous/curve"
)

// PoKOfSignature is a randomized signature: (σ₁^r, (σ₂ + σ₁^t)^r) for fresh
// r and a caller-supplied shared blinding t. It proves knowledge of a valid
// signature without revealing the original σ, and is verified against a
// payload commitment W = Ỹ₁^{m₁}·...·g̃^{t} supplied by the caller (spec §4.3).
type PoKOfSignature struct {
	Sigma1 curve.G1
	Sigma2 curve.G1
}

// NewPoKOfSignature randomizes signature using the shared blinding t (the
// same t the caller folds into its payload commitment) and a fresh r.
func NewPoKOfSignature(signature Signature, t curve.Scalar) (PoKOfSignature, error) {
	r, err := curve.RandomScalar()
	if err != nil {
		return PoKOfSignature{}, errors.Wrap(err, "could not sample r")
	}

	sigma1Prime := signature.Sigma1.Mul(r)

	sigma1T := signature.Sigma1.Mul(t)
	sigma2Prime := signature.Sigma2.Add(sigma1T).Mul(r)

	return PoKOfSignature{Sigma1: sigma1Prime, Sigma2: sigma2Prime}, nil
}

// Verify checks e(σ₁', W + X̃) == e(σ₂', g̃) where W is the payload
// commitment bound to this proof (e.g. the root commitment R in spec §4.6).
func (p PoKOfSignature) Verify(params Params, publicKey PublicKey, payloadCommitment curve.G2) (bool, error) {
	lhs := payloadCommitment.Add(publicKey.XCapTilde)
	return curve.PairingEqual(p.Sigma1, lhs, p.Sigma2, params.GTilde)
}
