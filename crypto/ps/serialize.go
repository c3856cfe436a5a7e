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

// Serialize encodes Params as g || g_tilde (compressed), 144 bytes.
func (p Params) Serialize() []byte {
	out := make([]byte, 0, curve.G1Size+curve.G2Size)
	out = append(out, p.G.Bytes()...)
	out = append(out, p.GTilde.Bytes()...)
	return out
}

func DeserializeParams(b []byte) (Params, error) {
	if len(b) != curve.G1Size+curve.G2Size {
		return Params{}, errors.Errorf("params must be %d bytes, got %d", curve.G1Size+curve.G2Size, len(b))
	}
	g, err := curve.G1FromBytes(b[:curve.G1Size])
	if err != nil {
		return Params{}, errors.Wrap(err, "invalid g")
	}
	gTilde, err := curve.G2FromBytes(b[curve.G1Size:])
	if err != nil {
		return Params{}, errors.Wrap(err, "invalid g_tilde")
	}
	return Params{G: g, GTilde: gTilde}, nil
}

// Serialize encodes SigningKey as x_cap || x || y_1 .. y_n.
func (sk SigningKey) Serialize() []byte {
	out := make([]byte, 0, curve.G1Size+curve.ScalarSize*(1+len(sk.Y)))
	out = append(out, sk.XCap.Bytes()...)
	out = append(out, sk.X.Bytes()...)
	for _, y := range sk.Y {
		out = append(out, y.Bytes()...)
	}
	return out
}

func DeserializeSigningKey(b []byte) (SigningKey, error) {
	if len(b) < curve.G1Size+curve.ScalarSize {
		return SigningKey{}, errors.Errorf("signing key too short: %d bytes", len(b))
	}
	rest := b[curve.G1Size:]
	if (len(rest)-curve.ScalarSize)%curve.ScalarSize != 0 {
		return SigningKey{}, errors.New("signing key has trailing bytes")
	}

	xCap, err := curve.G1FromBytes(b[:curve.G1Size])
	if err != nil {
		return SigningKey{}, errors.Wrap(err, "invalid x_cap")
	}
	x, err := curve.ScalarFromBytes(rest[:curve.ScalarSize])
	if err != nil {
		return SigningKey{}, errors.Wrap(err, "invalid x")
	}
	rest = rest[curve.ScalarSize:]

	n := len(rest) / curve.ScalarSize
	y := make([]curve.Scalar, n)
	for i := 0; i < n; i++ {
		yi, err := curve.ScalarFromBytes(rest[i*curve.ScalarSize : (i+1)*curve.ScalarSize])
		if err != nil {
			return SigningKey{}, errors.Wrapf(err, "invalid y[%d]", i)
		}
		y[i] = yi
	}

	return SigningKey{X: x, Y: y, XCap: xCap}, nil
}

// Serialize encodes PublicKey as x_cap_tilde || count(1 byte) || y_cap_1..n || y_cap_tilde_1..n.
func (pk PublicKey) Serialize() []byte {
	n := len(pk.YCap)
	out := make([]byte, 0, curve.G2Size+1+curve.G1Size*n+curve.G2Size*n)
	out = append(out, pk.XCapTilde.Bytes()...)
	out = append(out, byte(n))
	for _, y := range pk.YCap {
		out = append(out, y.Bytes()...)
	}
	for _, y := range pk.YCapTilde {
		out = append(out, y.Bytes()...)
	}
	return out
}

func DeserializePublicKey(b []byte) (PublicKey, error) {
	if len(b) < curve.G2Size+1 {
		return PublicKey{}, errors.Errorf("public key too short: %d bytes", len(b))
	}
	xCapTilde, err := curve.G2FromBytes(b[:curve.G2Size])
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "invalid x_cap_tilde")
	}
	n := int(b[curve.G2Size])
	rest := b[curve.G2Size+1:]

	want := curve.G1Size*n + curve.G2Size*n
	if len(rest) != want {
		return PublicKey{}, errors.Errorf("public key has wrong length for count %d: got %d, want %d", n, len(rest), want)
	}

	yCap := make([]curve.G1, n)
	for i := 0; i < n; i++ {
		yi, err := curve.G1FromBytes(rest[i*curve.G1Size : (i+1)*curve.G1Size])
		if err != nil {
			return PublicKey{}, errors.Wrapf(err, "invalid y_cap[%d]", i)
		}
		yCap[i] = yi
	}
	rest = rest[curve.G1Size*n:]

	yCapTilde := make([]curve.G2, n)
	for i := 0; i < n; i++ {
		yi, err := curve.G2FromBytes(rest[i*curve.G2Size : (i+1)*curve.G2Size])
		if err != nil {
			return PublicKey{}, errors.Wrapf(err, "invalid y_cap_tilde[%d]", i)
		}
		yCapTilde[i] = yi
	}

	// Invariant (spec §9): |YCap| must equal |YCapTilde|. Trivially true
	// here since both are decoded against the same count n, but recorded
	// explicitly since construction elsewhere must preserve it too.
	return PublicKey{YCap: yCap, XCapTilde: xCapTilde, YCapTilde: yCapTilde}, nil
}

// Serialize encodes Signature as sigma_1 || sigma_2 (compressed), 96 bytes.
func (s Signature) Serialize() []byte {
	out := make([]byte, 0, curve.G1Size*2)
	out = append(out, s.Sigma1.Bytes()...)
	out = append(out, s.Sigma2.Bytes()...)
	return out
}

func DeserializeSignature(b []byte) (Signature, error) {
	if len(b) != curve.G1Size*2 {
		return Signature{}, errors.Errorf("signature must be %d bytes, got %d", curve.G1Size*2, len(b))
	}
	sigma1, err := curve.G1FromBytes(b[:curve.G1Size])
	if err != nil {
		return Signature{}, errors.Wrap(err, "invalid sigma_1")
	}
	sigma2, err := curve.G1FromBytes(b[curve.G1Size:])
	if err != nil {
		return Signature{}, errors.Wrap(err, "invalid sigma_2")
	}
	return Signature{Sigma1: sigma1, Sigma2: sigma2}, nil
}
