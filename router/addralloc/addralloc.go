// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package addralloc allocates per-connection IPv4/IPv6 addresses from a
// shared /16 (IPv4) and /112 (IPv6) host-id space, one 2-byte host id per
// admitted peer for the lifetime of an epoch (spec §4.9).
package addralloc

import (
	"crypto/rand"
	"strconv"

	"github.com/go-redis/redis"

	"github.com/veronymous/veronymous/token"
	"github.com/veronymous/veronymous/verrors"
)

// maxAttempts bounds how many random host ids are tried before giving up
// (spec §4.9: "retry up to 20 times").
const maxAttempts = 20

// Allocator hands out IPv4/IPv6 addresses that share a 2-byte host id,
// backed by an epoch-expiring KV store so a host id is only ever live for
// the epoch it was allocated in.
type Allocator struct {
	client *redis.Client

	ipv4Gateway [2]byte
	ipv6Gateway [13]byte
}

// New connects to a redis instance at address. ipv4Gateway and ipv6Gateway
// are the fixed network-prefix bytes configured per router (spec §6
// "wg_gateway_ipv4"/"wg_gateway_ipv6").
func New(address string, ipv4Gateway [2]byte, ipv6Gateway [13]byte) (*Allocator, error) {
	client := redis.NewClient(&redis.Options{Addr: address})
	if err := client.Ping().Err(); err != nil {
		return nil, verrors.Wrap(verrors.KindInitialization, err, "could not connect to address store")
	}
	return &Allocator{client: client, ipv4Gateway: ipv4Gateway, ipv6Gateway: ipv6Gateway}, nil
}

// Close releases the underlying connection.
func (a *Allocator) Close() error {
	return a.client.Close()
}

func hostIDKey(epoch uint64, h1, h2 byte) string {
	return strconv.FormatUint(epoch, 10) + ":addr:" + string([]byte{h1, h2})
}

func randomHostID() (byte, byte, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, 0, err
	}
	// h1 in [2, 255): 0 and 1 are reserved (network/gateway), 255 is the
	// subnet broadcast address. h2 in [0, 255): 255 is excluded the same
	// way (spec §4.9).
	h1 := byte(2 + int(b[0])%253)
	h2 := byte(int(b[1]) % 255)
	return h1, h2, nil
}

// Allocate samples a host id not already claimed in epoch and reserves it
// with an absolute expiry at the start of the next epoch, returning the
// corresponding IPv4 and IPv6 addresses.
//
// Each attempt uses a single "SET key value NX EXAT timestamp" command: the
// original exists-then-set-then-expire sequence is a read-modify-write race
// between concurrent routers (spec §9) and is not reproduced here.
func (a *Allocator) Allocate(epoch, epochLength, now uint64) (ipv4 [4]byte, ipv6 [16]byte, err error) {
	expiresAt := token.NextEpoch(now, epochLength)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		h1, h2, randErr := randomHostID()
		if randErr != nil {
			return ipv4, ipv6, verrors.Wrap(verrors.KindIP, randErr, "could not sample host id")
		}

		key := hostIDKey(epoch, h1, h2)
		_, doErr := a.client.Do("SET", key, "1", "NX", "EXAT", expiresAt).Result()
		if doErr == redis.Nil {
			continue // host id already claimed this epoch; retry
		}
		if doErr != nil {
			return ipv4, ipv6, verrors.Wrap(verrors.KindDB, doErr, "could not reserve host id")
		}

		ipv4[0], ipv4[1] = a.ipv4Gateway[0], a.ipv4Gateway[1]
		ipv4[2], ipv4[3] = h1, h2

		copy(ipv6[:], a.ipv6Gateway[:])
		ipv6[13], ipv6[14], ipv6[15] = 0, h1, h2

		return ipv4, ipv6, nil
	}

	return ipv4, ipv6, verrors.New(verrors.KindIP, "exhausted host id allocation attempts")
}
