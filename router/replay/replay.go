// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package replay implements the router's admission gate: one entry per
// (epoch, serial-number digest), inserted atomically so a router never
// admits the same epoch token twice (spec §4.7).
package replay

import (
	"encoding/base64"
	"strconv"

	"github.com/go-redis/redis"

	"github.com/veronymous/veronymous/token"
	"github.com/veronymous/veronymous/verrors"
)

// Detector tracks serial numbers already admitted this epoch.
type Detector struct {
	client *redis.Client
}

// New connects to a redis instance at address.
func New(address string) (*Detector, error) {
	client := redis.NewClient(&redis.Options{Addr: address})
	if err := client.Ping().Err(); err != nil {
		return nil, verrors.Wrap(verrors.KindInitialization, err, "could not connect to replay store")
	}
	return &Detector{client: client}, nil
}

// Close releases the underlying connection.
func (d *Detector) Close() error {
	return d.client.Close()
}

func entryKey(epoch uint64, digest [token.SerialNumberDigestSize]byte) string {
	return strconv.FormatUint(epoch, 10) + ":" + base64.RawURLEncoding.EncodeToString(digest[:])
}

// Trace atomically checks whether digest has already been admitted in
// epoch and, if not, inserts it with an absolute expiry at the start of
// the following epoch. It reports true if the serial number is a replay.
//
// This uses a single "SET key value NX EXAT timestamp" command rather than
// an EXISTS-then-SET pair: the latter is a read-modify-write race between
// concurrent router instances (spec §9), since two agents can both observe
// a missing key before either writes it.
func (d *Detector) Trace(epoch, epochLength, now uint64, digest [token.SerialNumberDigestSize]byte) (bool, error) {
	key := entryKey(epoch, digest)
	expiresAt := token.NextEpoch(now, epochLength)

	_, err := d.client.Do("SET", key, "1", "NX", "EXAT", expiresAt).Result()
	if err == redis.Nil {
		// SET NX found the key already present: replay.
		return true, nil
	}
	if err != nil {
		return false, verrors.Wrap(verrors.KindDB, err, "could not record serial number")
	}

	return false, nil
}
