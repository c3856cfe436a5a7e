// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package pok implements the non-interactive (Fiat-Shamir) Schnorr
// proof-of-knowledge of a Pedersen vector commitment opening, spec §4.2.
package pok

import (
	"github.com/pkg/errors"

	"github.com/veronymous/veronymous/crypto/vpc"
	"github.com/veronymous/veronymous/curve"
)

// UncompressedBytes is implemented by curve.G1 and curve.G2; the Fiat-Shamir
// transcript serializes group elements uncompressed (spec §4.2) to avoid
// any encode/decode ambiguity, unlike the wire formats elsewhere which are
// always compressed.
type UncompressedBytes interface {
	UncompressedBytes() []byte
}

// point is the constraint satisfied by curve.G1 and curve.G2.
type point[T any] interface {
	vpc.Point[T]
	UncompressedBytes
}

// Committing accumulates the generators and fresh blinding factors for one
// proof. Call Commit once per secret being proven, in the same order the
// secrets will later be supplied to GenerateProof.
type Committing[T point[T]] struct {
	gens     []T
	blinding []curve.Scalar
	identity T
}

func NewCommitting[T point[T]](identity T) *Committing[T] {
	return &Committing[T]{identity: identity}
}

// Commit registers one generator. If blinding is nil a fresh uniform
// blinding factor is sampled.
func (c *Committing[T]) Commit(gen T, blinding *curve.Scalar) error {
	var b curve.Scalar
	if blinding != nil {
		b = *blinding
	} else {
		sampled, err := curve.RandomScalar()
		if err != nil {
			return errors.Wrap(err, "could not sample blinding factor")
		}
		b = sampled
	}
	c.gens = append(c.gens, gen)
	c.blinding = append(c.blinding, b)
	return nil
}

// Finish computes the randomness commitment T = Σ r_i · g_i.
func (c *Committing[T]) Finish() Committed[T] {
	acc := c.identity
	for i := range c.gens {
		acc = acc.Add(c.gens[i].Mul(c.blinding[i]))
	}
	return Committed[T]{gens: c.gens, blinding: c.blinding, commitment: acc}
}

// Committed holds the randomness commitment; ChallengeBytes feeds the
// Fiat-Shamir hash, GenerateProof consumes the caller-supplied challenge.
type Committed[T point[T]] struct {
	gens       []T
	blinding   []curve.Scalar
	commitment T
}

// Commitment returns the randomness commitment T (called Tᴿ / Tˢ / T in
// spec §4.2/§4.6 depending on context).
func (c Committed[T]) Commitment() T { return c.commitment }

// ChallengeBytes appends this proof's contribution to a Fiat-Shamir
// transcript: each generator (uncompressed), then the randomness
// commitment (uncompressed). Callers MUST append any additional auxiliary
// bytes (e.g. the bound commitment C, or other proofs being composed with
// this one) in a fixed, agreed order before hashing - see spec §4.2.
func (c Committed[T]) ChallengeBytes() []byte {
	var buf []byte
	for _, g := range c.gens {
		buf = append(buf, g.UncompressedBytes()...)
	}
	buf = append(buf, c.commitment.UncompressedBytes()...)
	return buf
}

// GenerateProof computes one response s_i = r_i - c*secrets[i] per secret,
// in the same order the generators were committed.
func (c Committed[T]) GenerateProof(challenge curve.Scalar, secrets []curve.Scalar) (Proof[T], error) {
	if len(secrets) != len(c.gens) {
		return Proof[T]{}, errors.Errorf("secrets(%d) and gens(%d) must have equal length", len(secrets), len(c.gens))
	}
	responses := make([]curve.Scalar, len(secrets))
	for i := range secrets {
		responses[i] = c.blinding[i].Sub(challenge.Mul(secrets[i]))
	}
	return Proof[T]{Commitment: c.commitment, Responses: responses}, nil
}

// Proof is a completed Schnorr proof-of-knowledge: a randomness commitment
// plus one response per secret.
type Proof[T point[T]] struct {
	Commitment T
	Responses  []curve.Scalar
}

// ChallengeBytes re-derives the transcript bytes on the verifier side from
// the (now externally supplied) generators, mirroring Committed.ChallengeBytes.
func (p Proof[T]) ChallengeBytes(gens []T) []byte {
	var buf []byte
	for _, g := range gens {
		buf = append(buf, g.UncompressedBytes()...)
	}
	buf = append(buf, p.Commitment.UncompressedBytes()...)
	return buf
}

// Verify checks Σ s_i·g_i + c·commitment == T, i.e. that the proof opens
// `commitment` under `gens` for the given Fiat-Shamir challenge.
func Verify[T point[T]](identity T, gens []T, p Proof[T], commitment T, challenge curve.Scalar) (bool, error) {
	if len(gens) != len(p.Responses) {
		return false, errors.Errorf("gens(%d) and responses(%d) must have equal length", len(gens), len(p.Responses))
	}
	acc := identity
	for i := range gens {
		acc = acc.Add(gens[i].Mul(p.Responses[i]))
	}
	acc = acc.Add(commitment.Mul(challenge))
	return acc.Equal(p.Commitment), nil
}
