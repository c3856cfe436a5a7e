// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package conndb stores the list of admitted WireGuard public keys per
// epoch, so the connection sweeper can find and remove every peer
// belonging to an epoch that is no longer current or next (spec §4.8,
// §6 "Router connections store").
package conndb

import (
	"strconv"

	"github.com/go-redis/redis"

	"github.com/veronymous/veronymous/verrors"
)

// KeySize is the length of a WireGuard public key.
const KeySize = 32

// Store is a redis-backed list-per-epoch connections store.
type Store struct {
	client *redis.Client
}

// New connects to a redis instance at address.
func New(address string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: address})
	if err := client.Ping().Err(); err != nil {
		return nil, verrors.Wrap(verrors.KindInitialization, err, "could not connect to connections store")
	}
	return &Store{client: client}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func epochKey(epoch uint64) string {
	return strconv.FormatUint(epoch, 10)
}

// Store records publicKey as admitted in epoch.
func (s *Store) Store(epoch uint64, publicKey [KeySize]byte) error {
	if err := s.client.LPush(epochKey(epoch), publicKey[:]).Err(); err != nil {
		return verrors.Wrap(verrors.KindDB, err, "could not store connection")
	}
	return nil
}

// Connections returns every public key recorded for epoch.
func (s *Store) Connections(epoch uint64) ([][KeySize]byte, error) {
	raw, err := s.client.LRange(epochKey(epoch), 0, -1).Result()
	if err != nil {
		return nil, verrors.Wrap(verrors.KindDB, err, "could not read connections")
	}

	keys := make([][KeySize]byte, 0, len(raw))
	for _, entry := range raw {
		if len(entry) != KeySize {
			// A corrupt entry must not block removal of the rest (matches
			// the original connections service, which logs and continues).
			continue
		}
		var key [KeySize]byte
		copy(key[:], entry)
		keys = append(keys, key)
	}

	return keys, nil
}

// Clear deletes the entire list for epoch.
func (s *Store) Clear(epoch uint64) error {
	if err := s.client.Del(epochKey(epoch)).Err(); err != nil {
		return verrors.Wrap(verrors.KindDB, err, "could not clear connections")
	}
	return nil
}

// StoredEpochs returns every epoch that currently has a non-empty
// connections list.
func (s *Store) StoredEpochs() ([]uint64, error) {
	keys, err := s.client.Keys("*").Result()
	if err != nil {
		return nil, verrors.Wrap(verrors.KindDB, err, "could not enumerate stored epochs")
	}

	epochs := make([]uint64, 0, len(keys))
	for _, key := range keys {
		epoch, parseErr := strconv.ParseUint(key, 10, 64)
		if parseErr != nil {
			continue
		}
		epochs = append(epochs, epoch)
	}

	return epochs, nil
}
