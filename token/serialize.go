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

// SerializedRootCredentialSize is tokenId(32) || sigma_1(48) || sigma_2(48).
const SerializedRootCredentialSize = curve.ScalarSize + curve.G1Size*2

func (c RootCredential) Serialize() []byte {
	out := make([]byte, 0, SerializedRootCredentialSize)
	out = append(out, c.TokenID.Bytes()...)
	out = append(out, c.Signature.Serialize()...)
	return out
}

func DeserializeRootCredential(b []byte) (RootCredential, error) {
	if len(b) != SerializedRootCredentialSize {
		return RootCredential{}, verrors.New(verrors.KindDeserialization, "root credential has wrong length")
	}
	tokenID, err := curve.ScalarFromBytes(b[:curve.ScalarSize])
	if err != nil {
		return RootCredential{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid token id")
	}
	signature, err := ps.DeserializeSignature(b[curve.ScalarSize:])
	if err != nil {
		return RootCredential{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid signature")
	}
	return RootCredential{TokenID: tokenID, Signature: signature}, nil
}

// SerializedRootTokenRequestSize is C(48) || T(48) || s_id(32) || s_b(32).
const SerializedRootTokenRequestSize = curve.G1Size*2 + curve.ScalarSize*2

func (r RootTokenRequest) Serialize() []byte {
	out := make([]byte, 0, SerializedRootTokenRequestSize)
	out = append(out, r.TokenIDCommitment.Bytes()...)
	out = append(out, r.RandomnessCommitment.Bytes()...)
	out = append(out, r.TokenIDResponse.Bytes()...)
	out = append(out, r.BlindingFactorResponse.Bytes()...)
	return out
}

func DeserializeRootTokenRequest(b []byte) (RootTokenRequest, error) {
	if len(b) != SerializedRootTokenRequestSize {
		return RootTokenRequest{}, verrors.New(verrors.KindDeserialization, "root token request has wrong length")
	}
	commitment, err := curve.G1FromBytes(b[:curve.G1Size])
	if err != nil {
		return RootTokenRequest{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid token id commitment")
	}
	randomness, err := curve.G1FromBytes(b[curve.G1Size : curve.G1Size*2])
	if err != nil {
		return RootTokenRequest{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid randomness commitment")
	}
	rest := b[curve.G1Size*2:]
	tokenIDResponse, err := curve.ScalarFromBytes(rest[:curve.ScalarSize])
	if err != nil {
		return RootTokenRequest{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid token id response")
	}
	blindingResponse, err := curve.ScalarFromBytes(rest[curve.ScalarSize:])
	if err != nil {
		return RootTokenRequest{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid blinding factor response")
	}
	return RootTokenRequest{
		TokenIDCommitment:      commitment,
		RandomnessCommitment:   randomness,
		TokenIDResponse:        tokenIDResponse,
		BlindingFactorResponse: blindingResponse,
	}, nil
}

// SerializedRootTokenResponseSize is sigma_1(48) || sigma_2(48).
const SerializedRootTokenResponseSize = curve.G1Size * 2

func (r RootTokenResponse) Serialize() []byte {
	return r.Signature.Serialize()
}

func DeserializeRootTokenResponse(b []byte) (RootTokenResponse, error) {
	if len(b) != SerializedRootTokenResponseSize {
		return RootTokenResponse{}, verrors.New(verrors.KindDeserialization, "root token response has wrong length")
	}
	signature, err := ps.DeserializeSignature(b)
	if err != nil {
		return RootTokenResponse{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid signature")
	}
	return RootTokenResponse{Signature: signature}, nil
}

// SerializedEpochTokenSize is R(96)||T^R(96)||s_b(32)||sigma_1'(48)||sigma_2'(48)||S(96)||T^S(96)||s_id(32) = 544.
const SerializedEpochTokenSize = curve.G2Size*2 + curve.ScalarSize + curve.G1Size*2 + curve.G2Size*2 + curve.ScalarSize

func (token EpochToken) Serialize() []byte {
	out := make([]byte, 0, SerializedEpochTokenSize)
	out = append(out, token.Root.R.Bytes()...)
	out = append(out, token.Root.RandomnessCommitment.Bytes()...)
	out = append(out, token.Root.BlindingResponse.Bytes()...)
	out = append(out, token.Signature.Sigma1.Bytes()...)
	out = append(out, token.Signature.Sigma2.Bytes()...)
	out = append(out, token.SerialNumber.S.Bytes()...)
	out = append(out, token.SerialNumber.RandomnessCommitment.Bytes()...)
	out = append(out, token.SharedResponse.Bytes()...)
	return out
}

func DeserializeEpochToken(b []byte) (EpochToken, error) {
	if len(b) != SerializedEpochTokenSize {
		return EpochToken{}, verrors.New(verrors.KindDeserialization, "epoch token has wrong length")
	}

	off := 0
	readG2 := func() (curve.G2, error) {
		v, err := curve.G2FromBytes(b[off : off+curve.G2Size])
		off += curve.G2Size
		return v, err
	}
	readG1 := func() (curve.G1, error) {
		v, err := curve.G1FromBytes(b[off : off+curve.G1Size])
		off += curve.G1Size
		return v, err
	}
	readScalar := func() (curve.Scalar, error) {
		v, err := curve.ScalarFromBytes(b[off : off+curve.ScalarSize])
		off += curve.ScalarSize
		return v, err
	}

	r, err := readG2()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid R")
	}
	tr, err := readG2()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid T^R")
	}
	sB, err := readScalar()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid s_b")
	}
	sigma1, err := readG1()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid sigma_1'")
	}
	sigma2, err := readG1()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid sigma_2'")
	}
	s, err := readG2()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid S")
	}
	ts, err := readG2()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid T^S")
	}
	sID, err := readScalar()
	if err != nil {
		return EpochToken{}, verrors.Wrap(verrors.KindDeserialization, err, "invalid s_id")
	}

	return EpochToken{
		Root: RootProof{
			R:                    r,
			RandomnessCommitment: tr,
			BlindingResponse:     sB,
		},
		Signature: ps.PoKOfSignature{
			Sigma1: sigma1,
			Sigma2: sigma2,
		},
		SerialNumber: SerialNumberProof{
			S:                    s,
			RandomnessCommitment: ts,
		},
		SharedResponse: sID,
	}, nil
}
