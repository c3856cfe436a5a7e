// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package token

import (
	"github.com/veronymous/veronymous/crypto/ps"
	"github.com/veronymous/veronymous/curve"
	"github.com/veronymous/veronymous/verrors"
)

// RootProof is the Pedersen commitment opening PoK over R = Ycap_tilde[0]^tokenId * g_tilde^t.
type RootProof struct {
	R                    curve.G2
	RandomnessCommitment curve.G2
	BlindingResponse     curve.Scalar
}

// SerialNumberProof is the Schnorr PoK that S = H^tokenId, sharing its
// response with RootProof (EpochToken.SharedResponse) so both equations are
// bound to the same hidden tokenId.
type SerialNumberProof struct {
	S                    curve.G2
	RandomnessCommitment curve.G2
}

// EpochToken is a single-use, unlinkable-across-epochs proof of possession
// of a RootCredential (spec §4.6).
type EpochToken struct {
	Root           RootProof
	Signature      ps.PoKOfSignature
	SerialNumber   SerialNumberProof
	SharedResponse curve.Scalar
}

func epochTokenChallenge(yCapTilde0, gTilde, tr, r, h, ts curve.G2) curve.Scalar {
	var buf []byte
	buf = append(buf, yCapTilde0.UncompressedBytes()...)
	buf = append(buf, gTilde.UncompressedBytes()...)
	buf = append(buf, tr.UncompressedBytes()...)
	buf = append(buf, r.UncompressedBytes()...)
	buf = append(buf, h.UncompressedBytes()...)
	buf = append(buf, ts.UncompressedBytes()...)
	return curve.HashToScalar(buf)
}

// DeriveEpochToken produces an EpochToken binding credential to domain and
// epoch, following §4.6 exactly: a single shared blinding t links the root
// commitment to the randomized signature, and a single shared response
// s_id links the root-opening PoK to the serial-number PoK.
func DeriveEpochToken(credential RootCredential, domain []byte, epoch uint64, publicKey ps.PublicKey, params ps.Params) (EpochToken, error) {
	if len(publicKey.YCapTilde) < 1 {
		return EpochToken{}, verrors.New(verrors.KindInvalidArgument, "public key must have at least 1 Y")
	}

	t, err := curve.RandomNonZeroScalar()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindProof, err, "could not sample t")
	}

	yCapTilde0 := publicKey.YCapTilde[0]
	r := yCapTilde0.Mul(credential.TokenID).Add(params.GTilde.Mul(t))

	sigProof, err := ps.NewPoKOfSignature(credential.Signature, t)
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindProof, err, "could not derive signature proof of knowledge")
	}

	h, err := SerialNumberGenerator(domain, epoch)
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindProof, err, "could not compute serial number generator")
	}
	s := h.Mul(credential.TokenID)

	rID, err := curve.RandomNonZeroScalar()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindProof, err, "could not sample r_id")
	}
	rT, err := curve.RandomScalar()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindProof, err, "could not sample r_t")
	}

	tr := yCapTilde0.Mul(rID).Add(params.GTilde.Mul(rT))
	ts := h.Mul(rID)

	challenge := epochTokenChallenge(yCapTilde0, params.GTilde, tr, r, h, ts)

	sID := rID.Sub(challenge.Mul(credential.TokenID))
	sB := rT.Sub(challenge.Mul(t))

	return EpochToken{
		Root: RootProof{
			R:                    r,
			RandomnessCommitment: tr,
			BlindingResponse:     sB,
		},
		Signature: sigProof,
		SerialNumber: SerialNumberProof{
			S:                    s,
			RandomnessCommitment: ts,
		},
		SharedResponse: sID,
	}, nil
}

// Verify checks an EpochToken against domain and epoch as a router would
// (spec §4.6 "Verification"): rederive H, rederive the shared challenge,
// check both PoK equations, and verify the signature proof against the
// root commitment as payload.
func (token EpochToken) Verify(domain []byte, epoch uint64, publicKey ps.PublicKey, params ps.Params) (bool, error) {
	if len(publicKey.YCapTilde) < 1 {
		return false, verrors.New(verrors.KindInvalidArgument, "public key must have at least 1 Y")
	}

	h, err := SerialNumberGenerator(domain, epoch)
	if err != nil {
		return false, verrors.Wrap(verrors.KindVerification, err, "could not compute serial number generator")
	}

	yCapTilde0 := publicKey.YCapTilde[0]
	challenge := epochTokenChallenge(yCapTilde0, params.GTilde, token.Root.RandomnessCommitment, token.Root.R, h, token.SerialNumber.RandomnessCommitment)

	// Equation A: Y1^s_id * g~^s_b + c*R == T^R
	lhsA := yCapTilde0.Mul(token.SharedResponse).
		Add(params.GTilde.Mul(token.Root.BlindingResponse)).
		Add(token.Root.R.Mul(challenge))
	if !lhsA.Equal(token.Root.RandomnessCommitment) {
		return false, nil
	}

	// Equation B: H^s_id + c*S == T^S
	lhsB := h.Mul(token.SharedResponse).Add(token.SerialNumber.S.Mul(challenge))
	if !lhsB.Equal(token.SerialNumber.RandomnessCommitment) {
		return false, nil
	}

	// Signature PoK against the payload commitment R (= Y1^tokenId * g~^t).
	ok, err := token.Signature.Verify(params, publicKey, token.Root.R)
	if err != nil {
		return false, verrors.Wrap(verrors.KindVerification, err, "could not verify signature proof of knowledge")
	}
	return ok, nil
}
