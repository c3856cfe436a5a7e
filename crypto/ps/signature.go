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

// Signature is a PS signature (σ₁, σ₂).
type Signature struct {
	Sigma1 curve.G1
	Sigma2 curve.G1
}

// Sign produces a plain (non-blind) PS signature over messages, requiring
// len(messages) <= len(signingKey.Y).
func Sign(params Params, signingKey SigningKey, messages []curve.Scalar) (Signature, error) {
	if len(messages) > len(signingKey.Y) {
		return Signature{}, errors.Errorf("unsupported number of messages: %d > %d", len(messages), len(signingKey.Y))
	}
	u, err := curve.RandomNonZeroScalar()
	if err != nil {
		return Signature{}, errors.Wrap(err, "could not sample u")
	}

	sigma1 := params.G.Mul(u)

	exp := signingKey.X
	for i, m := range messages {
		exp = exp.Add(signingKey.Y[i].Mul(m))
	}
	sigma2 := params.G.Mul(exp).Mul(u)

	return Signature{Sigma1: sigma1, Sigma2: sigma2}, nil
}

// Verify checks e(σ₁, X̃·∏Ỹ_i^{m_i}) == e(σ₂, g̃), rejecting σ₁ = 1.
func (s Signature) Verify(params Params, publicKey PublicKey, messages []curve.Scalar) (bool, error) {
	if len(messages) != publicKey.messageCount() {
		return false, errors.Errorf("invalid number of messages: got %d, want %d", len(messages), publicKey.messageCount())
	}
	if s.Sigma1.IsIdentity() {
		return false, nil
	}

	xYm, err := curve.MultiScalarMulG2(publicKey.YCapTilde, messages)
	if err != nil {
		return false, errors.Wrap(err, "could not combine public key and messages")
	}
	xYm = xYm.Add(publicKey.XCapTilde)

	ok, err := curve.PairingEqual(s.Sigma1, xYm, s.Sigma2, params.GTilde)
	if err != nil {
		return false, errors.Wrap(err, "pairing check failed")
	}
	return ok, nil
}

// BlindSign signs a client-supplied commitment of hidden messages together
// with an explicit vector of revealed messages, per spec §4.3. The
// commitment's opening is NOT verified here - the caller is responsible for
// a separate proof-of-knowledge (see token.CreateRootTokenRequest).
func BlindSign(params Params, signingKey SigningKey, publicKey PublicKey, commitment curve.G1, revealed []curve.Scalar) (Signature, error) {
	if len(revealed) > len(publicKey.YCap) {
		return Signature{}, errors.Errorf("unsupported number of revealed messages: %d > %d", len(revealed), len(publicKey.YCap))
	}

	u, err := curve.RandomNonZeroScalar()
	if err != nil {
		return Signature{}, errors.Wrap(err, "could not sample u")
	}

	sigma1 := params.G.Mul(u)

	augmented := commitment
	if len(revealed) > 0 {
		offset := len(publicKey.YCap) - len(revealed)
		gens := publicKey.YCap[offset:]
		contribution, err := curve.MultiScalarMulG1(gens, revealed)
		if err != nil {
			return Signature{}, errors.Wrap(err, "could not commit revealed messages")
		}
		augmented = augmented.Add(contribution)
	}

	sigma2 := signingKey.XCap.Add(augmented).Mul(u)

	return Signature{Sigma1: sigma1, Sigma2: sigma2}, nil
}

// Unblind removes the client's additive blinding factor from a blind
// signature: σ₂ ← σ₂ - σ₁^blinding.
func Unblind(blind Signature, blinding curve.Scalar) Signature {
	return Signature{
		Sigma1: blind.Sigma1,
		Sigma2: blind.Sigma2.Sub(blind.Sigma1.Mul(blinding)),
	}
}
