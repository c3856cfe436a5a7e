// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package token implements the root-credential issuance exchange and
// epoch-token derivation/verification protocol (spec §4.5, §4.6).
package token

import (
	"encoding/binary"

	"github.com/veronymous/veronymous/curve"
)

// serialNumberGeneratorDST is the domain-separation tag bound into every
// serial-number generator; it MUST be identical on every issuer, client, and
// router, or replay detection silently breaks across the network (spec §4.4).
const serialNumberGeneratorDST = "BLS12381G2_XMD:SHA-256_SERIAL_NUMBER_GENERATOR:1_0_0"

// CurrentEpoch returns the start of the epoch containing now, for an epoch
// of length epochLength seconds.
func CurrentEpoch(now, epochLength uint64) uint64 {
	return now - (now % epochLength)
}

// NextEpoch returns the start of the epoch immediately following the one
// containing now.
func NextEpoch(now, epochLength uint64) uint64 {
	current := CurrentEpoch(now, epochLength)
	return current + epochLength
}

// InRenewalWindow reports whether now falls inside the trailing buffer of
// its epoch, i.e. whether a client or router should act on the NEXT key
// generation/epoch instead of the current one (spec §3, §4.8).
func InRenewalWindow(now, epochLength, buffer uint64) bool {
	return now%epochLength > epochLength-buffer
}

// KeyGenerationID returns the key-generation index for the key-lifetime K.
func KeyGenerationID(now, keyLifetime uint64) uint64 {
	return now / keyLifetime
}

// SerialNumberGenerator computes H2(domain, epoch): a deterministic point
// in G2 derived from the domain and the big-endian epoch timestamp,
// identical for every party that agrees on domain and epoch (spec §4.4).
func SerialNumberGenerator(domain []byte, epoch uint64) (curve.G2, error) {
	var epochBytes [8]byte
	binary.BigEndian.PutUint64(epochBytes[:], epoch)

	input := make([]byte, 0, len(domain)+8)
	input = append(input, domain...)
	input = append(input, epochBytes[:]...)

	return curve.HashToG2([]byte(serialNumberGeneratorDST), input)
}
