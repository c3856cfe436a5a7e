// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package keystore persists issuer key generations in an embedded KV store,
// keyed by generation id (spec §3 "KeyGeneration", §6 persisted state).
package keystore

import (
	"strconv"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/veronymous/veronymous/crypto/ps"
	"github.com/veronymous/veronymous/verrors"
)

const (
	suffixParams     = "-key_params"
	suffixSigningKey = "-signing_key"
	suffixPublicKey  = "-public_key"
)

// Generation is one issuer key-generation triple (spec §3 "KeyGeneration").
type Generation struct {
	Params     ps.Params
	SigningKey ps.SigningKey
	PublicKey  ps.PublicKey
}

// Store is a goleveldb-backed persistence layer for issuer key generations,
// chosen as an embedded KV store in place of the original RocksDB use
// (out-of-pack pick, justified in DESIGN.md; go-ethereum also ships a
// goleveldb-backed store for comparable embedded persistence needs).
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) the keystore at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, verrors.Wrap(verrors.KindInitialization, err, "could not open keystore")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func baseKeyID(generationID uint64) string {
	return strconv.FormatUint(generationID, 10)
}

// Exists reports whether a complete generation is present for generationID.
func (s *Store) Exists(generationID uint64) (bool, error) {
	base := baseKeyID(generationID)
	for _, suffix := range []string{suffixParams, suffixSigningKey, suffixPublicKey} {
		ok, err := s.db.Has([]byte(base+suffix), nil)
		if err != nil {
			return false, verrors.Wrap(verrors.KindDB, err, "could not check key existence")
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Load reads a previously-provisioned generation.
func (s *Store) Load(generationID uint64) (Generation, error) {
	base := baseKeyID(generationID)

	paramsBytes, err := s.db.Get([]byte(base+suffixParams), nil)
	if err != nil {
		return Generation{}, verrors.Wrap(verrors.KindDB, err, "could not load key params")
	}
	params, err := ps.DeserializeParams(paramsBytes)
	if err != nil {
		return Generation{}, verrors.Wrap(verrors.KindDeserialization, err, "could not deserialize key params")
	}

	signingKeyBytes, err := s.db.Get([]byte(base+suffixSigningKey), nil)
	if err != nil {
		return Generation{}, verrors.Wrap(verrors.KindDB, err, "could not load signing key")
	}
	signingKey, err := ps.DeserializeSigningKey(signingKeyBytes)
	if err != nil {
		return Generation{}, verrors.Wrap(verrors.KindDeserialization, err, "could not deserialize signing key")
	}

	publicKeyBytes, err := s.db.Get([]byte(base+suffixPublicKey), nil)
	if err != nil {
		return Generation{}, verrors.Wrap(verrors.KindDB, err, "could not load public key")
	}
	publicKey, err := ps.DeserializePublicKey(publicKeyBytes)
	if err != nil {
		return Generation{}, verrors.Wrap(verrors.KindDeserialization, err, "could not deserialize public key")
	}

	return Generation{Params: params, SigningKey: signingKey, PublicKey: publicKey}, nil
}

// Provision generates a fresh generation and persists it under generationID.
func (s *Store) Provision(generationID uint64) (Generation, error) {
	params, err := ps.GenerateParams()
	if err != nil {
		return Generation{}, verrors.Wrap(verrors.KindInitialization, err, "could not generate params")
	}
	signingKey, err := ps.GenerateSigningKey(1, params)
	if err != nil {
		return Generation{}, verrors.Wrap(verrors.KindInitialization, err, "could not generate signing key")
	}
	publicKey := signingKey.DerivePublicKey(params)

	base := baseKeyID(generationID)

	batch := new(leveldb.Batch)
	batch.Put([]byte(base+suffixParams), params.Serialize())
	batch.Put([]byte(base+suffixSigningKey), signingKey.Serialize())
	batch.Put([]byte(base+suffixPublicKey), publicKey.Serialize())

	if err := s.db.Write(batch, nil); err != nil {
		return Generation{}, verrors.Wrap(verrors.KindDB, err, "could not store key generation")
	}

	return Generation{Params: params, SigningKey: signingKey, PublicKey: publicKey}, nil
}

// LoadOrProvision loads generationID if it exists, else provisions and
// persists a fresh one.
func (s *Store) LoadOrProvision(generationID uint64) (Generation, error) {
	exists, err := s.Exists(generationID)
	if err != nil {
		return Generation{}, err
	}
	if exists {
		return s.Load(generationID)
	}
	return s.Provision(generationID)
}
