// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package vpc implements the Pedersen vector commitment of spec §4.1:
// C = Σ x_i · g_i, computed over either G1 or G2. The builder is
// append-only; Finish freezes it into an immutable Commitment.
package vpc

import (
	"fmt"

	"github.com/veronymous/veronymous/curve"
	"github.com/veronymous/veronymous/verrors"
)

// Point is the group-element constraint shared by G1 and G2: the minimal
// surface the commitment needs (addition, scalar multiplication, equality).
// The identity element is passed in separately.
type Point[T any] interface {
	Add(T) T
	Mul(curve.Scalar) T
	Equal(T) bool
}

// Committing accumulates (generator, scalar) pairs before being finalized.
type Committing[T Point[T]] struct {
	gens     []T
	scalars  []curve.Scalar
	identity T
}

// NewCommitting starts an empty builder. identity must be the group's
// identity element (curve.IdentityG1() or curve.IdentityG2()).
func NewCommitting[T Point[T]](identity T) *Committing[T] {
	return &Committing[T]{identity: identity}
}

// Commit appends one (generator, scalar) term to the builder.
func (c *Committing[T]) Commit(gen T, scalar curve.Scalar) {
	c.gens = append(c.gens, gen)
	c.scalars = append(c.scalars, scalar)
}

// Finish computes C = Σ x_i · g_i and returns the immutable commitment.
func (c *Committing[T]) Finish() Commitment[T] {
	acc := c.identity
	for i := range c.gens {
		acc = acc.Add(c.gens[i].Mul(c.scalars[i]))
	}
	return Commitment[T]{Value: acc}
}

// Commitment is an immutable, already-computed Pedersen commitment.
type Commitment[T Point[T]] struct {
	Value T
}

// Verify recomputes Σ gens[i]*scalars[i] and compares it against the
// commitment. Returns InvalidArgument if the lengths disagree.
func Verify[T Point[T]](commitment T, identity T, gens []T, scalars []curve.Scalar) (bool, error) {
	if len(gens) != len(scalars) {
		return false, verrors.New(verrors.KindInvalidArgument,
			fmt.Sprintf("gens(%d) and scalars(%d) must have equal length", len(gens), len(scalars)))
	}
	b := NewCommitting[T](identity)
	for i := range gens {
		b.Commit(gens[i], scalars[i])
	}
	recomputed := b.Finish()
	return commitment.Equal(recomputed.Value), nil
}
