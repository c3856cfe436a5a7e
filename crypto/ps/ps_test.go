// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package ps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veronymous/veronymous/curve"
)

func setup(t *testing.T, messageCount int) (Params, SigningKey, PublicKey) {
	params, err := GenerateParams()
	require.NoError(t, err)
	sk, err := GenerateSigningKey(messageCount, params)
	require.NoError(t, err)
	pk := sk.DerivePublicKey(params)
	return params, sk, pk
}

func randomMessages(t *testing.T, n int) []curve.Scalar {
	out := make([]curve.Scalar, n)
	for i := range out {
		s, err := curve.RandomScalar()
		require.NoError(t, err)
		out[i] = s
	}
	return out
}

func TestSignVerify(t *testing.T) {
	params, sk, pk := setup(t, 1)
	messages := randomMessages(t, 1)

	sig, err := Sign(params, sk, messages)
	require.NoError(t, err)

	ok, err := sig.Verify(params, pk, messages)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	params, sk, pk := setup(t, 1)
	messages := randomMessages(t, 1)

	sig, err := Sign(params, sk, messages)
	require.NoError(t, err)

	ok, err := sig.Verify(params, pk, randomMessages(t, 1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsIdentitySigma1(t *testing.T) {
	params, sk, pk := setup(t, 1)
	messages := randomMessages(t, 1)

	sig, err := Sign(params, sk, messages)
	require.NoError(t, err)
	sig.Sigma1 = curve.IdentityG1()

	ok, err := sig.Verify(params, pk, messages)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBlindSignRoundTrip(t *testing.T) {
	params, sk, pk := setup(t, 1)
	tokenID, err := curve.RandomScalar()
	require.NoError(t, err)
	blinding, err := curve.RandomScalar()
	require.NoError(t, err)

	commitment := pk.YCap[0].Mul(tokenID).Add(params.G.Mul(blinding))

	blind, err := BlindSign(params, sk, pk, commitment, nil)
	require.NoError(t, err)

	sig := Unblind(blind, blinding)

	ok, err := sig.Verify(params, pk, []curve.Scalar{tokenID})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPoKOfSignatureVerifies(t *testing.T) {
	params, sk, pk := setup(t, 1)
	message, err := curve.RandomScalar()
	require.NoError(t, err)

	sig, err := Sign(params, sk, []curve.Scalar{message})
	require.NoError(t, err)

	tBlind, err := curve.RandomScalar()
	require.NoError(t, err)

	proof, err := NewPoKOfSignature(sig, tBlind)
	require.NoError(t, err)

	// payload commitment W = Ycap_tilde[0]^message * g_tilde^t, matching the
	// augmentation folded into sigma_2' by NewPoKOfSignature.
	payload := pk.YCapTilde[0].Mul(message).Add(params.GTilde.Mul(tBlind))

	ok, err := proof.Verify(params, pk, payload)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPoKOfSignatureRejectsWrongCommitment(t *testing.T) {
	params, sk, pk := setup(t, 1)
	message, err := curve.RandomScalar()
	require.NoError(t, err)

	sig, err := Sign(params, sk, []curve.Scalar{message})
	require.NoError(t, err)

	tBlind, err := curve.RandomScalar()
	require.NoError(t, err)

	proof, err := NewPoKOfSignature(sig, tBlind)
	require.NoError(t, err)

	wrongMessage, err := curve.RandomScalar()
	require.NoError(t, err)
	payload := pk.YCapTilde[0].Mul(wrongMessage).Add(params.GTilde.Mul(tBlind))

	ok, err := proof.Verify(params, pk, payload)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParamsSerializeRoundTrip(t *testing.T) {
	params, err := GenerateParams()
	require.NoError(t, err)

	decoded, err := DeserializeParams(params.Serialize())
	require.NoError(t, err)
	assert.True(t, params.G.Equal(decoded.G))
	assert.True(t, params.GTilde.Equal(decoded.GTilde))
}

func TestSigningKeySerializeRoundTrip(t *testing.T) {
	params, sk, _ := setup(t, 3)

	decoded, err := DeserializeSigningKey(sk.Serialize())
	require.NoError(t, err)
	assert.True(t, sk.X.Equal(decoded.X))
	assert.True(t, sk.XCap.Equal(decoded.XCap))
	require.Len(t, decoded.Y, len(sk.Y))
	for i := range sk.Y {
		assert.True(t, sk.Y[i].Equal(decoded.Y[i]))
	}
	_ = params
}

func TestPublicKeySerializeRoundTrip(t *testing.T) {
	_, sk, pk := setup(t, 3)

	decoded, err := DeserializePublicKey(pk.Serialize())
	require.NoError(t, err)
	assert.True(t, pk.XCapTilde.Equal(decoded.XCapTilde))
	require.Len(t, decoded.YCap, len(pk.YCap))
	require.Len(t, decoded.YCapTilde, len(pk.YCapTilde))
	for i := range pk.YCap {
		assert.True(t, pk.YCap[i].Equal(decoded.YCap[i]))
		assert.True(t, pk.YCapTilde[i].Equal(decoded.YCapTilde[i]))
	}
	_ = sk
}

func TestSignatureSerializeRoundTrip(t *testing.T) {
	params, sk, _ := setup(t, 1)
	sig, err := Sign(params, sk, randomMessages(t, 1))
	require.NoError(t, err)

	decoded, err := DeserializeSignature(sig.Serialize())
	require.NoError(t, err)
	assert.True(t, sig.Sigma1.Equal(decoded.Sigma1))
	assert.True(t, sig.Sigma2.Equal(decoded.Sigma2))
}
