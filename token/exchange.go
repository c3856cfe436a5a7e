// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package token

import (
	"github.com/veronymous/veronymous/crypto/pok"
	"github.com/veronymous/veronymous/crypto/ps"
	"github.com/veronymous/veronymous/curve"
	"github.com/veronymous/veronymous/verrors"
)

// RootTokenRequest is the client's blind-signing request: a Pedersen
// commitment to a hidden tokenId plus a Schnorr PoK of its opening
// (spec §4.5).
type RootTokenRequest struct {
	TokenIDCommitment      curve.G1
	RandomnessCommitment   curve.G1
	TokenIDResponse        curve.Scalar
	BlindingFactorResponse curve.Scalar
}

func rootTokenGens(publicKey ps.PublicKey, params ps.Params) []curve.G1 {
	return []curve.G1{publicKey.YCap[0], params.G}
}

// CreateRootTokenRequest commits to tokenId/blinding and proves knowledge of
// the opening, binding the commitment itself into the Fiat-Shamir
// challenge.
func CreateRootTokenRequest(tokenID, blinding curve.Scalar, publicKey ps.PublicKey, params ps.Params) (RootTokenRequest, error) {
	if len(publicKey.YCap) < 1 {
		return RootTokenRequest{}, verrors.New(verrors.KindInvalidArgument, "public key must have at least 1 Y")
	}
	gens := rootTokenGens(publicKey, params)

	commitment := gens[0].Mul(tokenID).Add(gens[1].Mul(blinding))

	committing := pok.NewCommitting[curve.G1](curve.IdentityG1())
	for _, g := range gens {
		if err := committing.Commit(g, nil); err != nil {
			return RootTokenRequest{}, verrors.Wrap(verrors.KindProof, err, "could not commit randomness")
		}
	}
	committed := committing.Finish()

	challengeBytes := committed.ChallengeBytes()
	challengeBytes = append(challengeBytes, commitment.UncompressedBytes()...)
	challenge := curve.HashToScalar(challengeBytes)

	proof, err := committed.GenerateProof(challenge, []curve.Scalar{tokenID, blinding})
	if err != nil {
		return RootTokenRequest{}, verrors.Wrap(verrors.KindProof, err, "could not generate commitment proof")
	}

	return RootTokenRequest{
		TokenIDCommitment:      commitment,
		RandomnessCommitment:   proof.Commitment,
		TokenIDResponse:        proof.Responses[0],
		BlindingFactorResponse: proof.Responses[1],
	}, nil
}

// Verify checks the request's PoK against its own commitment.
func (r RootTokenRequest) Verify(publicKey ps.PublicKey, params ps.Params) (bool, error) {
	if len(publicKey.YCap) < 1 {
		return false, verrors.New(verrors.KindInvalidArgument, "public key must have at least 1 Y")
	}
	gens := rootTokenGens(publicKey, params)

	proof := pok.Proof[curve.G1]{
		Commitment: r.RandomnessCommitment,
		Responses:  []curve.Scalar{r.TokenIDResponse, r.BlindingFactorResponse},
	}

	challengeBytes := proof.ChallengeBytes(gens)
	challengeBytes = append(challengeBytes, r.TokenIDCommitment.UncompressedBytes()...)
	challenge := curve.HashToScalar(challengeBytes)

	ok, err := pok.Verify[curve.G1](curve.IdentityG1(), gens, proof, r.TokenIDCommitment, challenge)
	if err != nil {
		return false, verrors.Wrap(verrors.KindVerification, err, "could not verify commitment proof")
	}
	return ok, nil
}

// RootTokenResponse is the issuer's blind signature over the client's
// commitment.
type RootTokenResponse struct {
	Signature ps.Signature
}

// IssueRootToken verifies the request's PoK and, if valid, blind-signs the
// commitment with no revealed messages.
func IssueRootToken(request RootTokenRequest, signingKey ps.SigningKey, publicKey ps.PublicKey, params ps.Params) (RootTokenResponse, error) {
	ok, err := request.Verify(publicKey, params)
	if err != nil {
		return RootTokenResponse{}, err
	}
	if !ok {
		return RootTokenResponse{}, verrors.New(verrors.KindVerification, "token request proof verification failed")
	}

	signature, err := ps.BlindSign(params, signingKey, publicKey, request.TokenIDCommitment, nil)
	if err != nil {
		return RootTokenResponse{}, verrors.Wrap(verrors.KindSigning, err, "could not sign token request")
	}

	return RootTokenResponse{Signature: signature}, nil
}

// CompleteRootToken unblinds the issuer's signature and verifies it before
// the client commits to it as a RootCredential.
func CompleteRootToken(response RootTokenResponse, tokenID, blinding curve.Scalar, publicKey ps.PublicKey, params ps.Params) (RootCredential, error) {
	signature := ps.Unblind(response.Signature, blinding)

	credential := RootCredential{TokenID: tokenID, Signature: signature}

	ok, err := credential.Verify(publicKey, params)
	if err != nil {
		return RootCredential{}, err
	}
	if !ok {
		return RootCredential{}, verrors.New(verrors.KindInvalidToken, "signature is invalid")
	}

	return credential, nil
}
