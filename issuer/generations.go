// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package issuer implements the token-issuing side of the protocol: holding
// the current and next key generations, issuing root credentials against
// them, and serving the Token-info/Token-issuer RPC surfaces (spec §4.5,
// §6).
package issuer

import (
	"sync"
	"time"

	"github.com/veronymous/veronymous/common"
	"github.com/veronymous/veronymous/issuer/keystore"
	"github.com/veronymous/veronymous/token"
	"github.com/veronymous/veronymous/verrors"
)

// refreshInterval bounds how often Service re-checks whether the current/
// next key generations have rolled over. It is independent of keyLifetime
// so a short-lived key still gets picked up promptly.
const refreshInterval = 30 * time.Second

// Service holds the current and next key generations in memory, refreshing
// them from the keystore on a schedule so concurrent issuance/info RPCs
// never block on disk I/O (spec §3 "an issuer holds the current and the
// next generation concurrently; both are queryable").
type Service struct {
	store *keystore.Store

	keyLifetime uint64
	now         func() uint64

	mu      sync.RWMutex
	current genState
	next    genState

	stop chan struct{}
}

type genState struct {
	id         uint64
	generation keystore.Generation
}

// NewService opens store at path and loads the current/next generations.
func NewService(storePath string, keyLifetime uint64) (*Service, error) {
	store, err := keystore.Open(storePath)
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:       store,
		keyLifetime: keyLifetime,
		now:         unixNow,
		stop:        make(chan struct{}),
	}

	if err := s.refresh(); err != nil {
		_ = store.Close()
		return nil, err
	}

	return s, nil
}

func unixNow() uint64 {
	return uint64(time.Now().Unix())
}

// Close stops the refresh loop (if started) and closes the keystore.
func (s *Service) Close() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	return s.store.Close()
}

// Run starts the periodic refresh loop. It blocks until Close is called and
// should be run in its own goroutine.
func (s *Service) Run() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.refresh(); err != nil {
				common.Logger.Errorf("could not refresh key generations: %s", err)
			}
		}
	}
}

// refresh loads current/next generations from the store if the generation
// id has rolled over since the last load, provisioning fresh key material
// the first time a given id is seen.
func (s *Service) refresh() error {
	now := s.now()
	currentID := token.CurrentEpoch(now, s.keyLifetime)
	nextID := token.NextEpoch(now, s.keyLifetime)

	s.mu.RLock()
	needCurrent := s.current.id != currentID
	needNext := s.next.id != nextID
	s.mu.RUnlock()

	var current, next genState
	if needCurrent {
		generation, err := s.store.LoadOrProvision(currentID)
		if err != nil {
			return verrors.Wrap(verrors.KindInitialization, err, "could not load current key generation")
		}
		current = genState{id: currentID, generation: generation}
	}
	if needNext {
		generation, err := s.store.LoadOrProvision(nextID)
		if err != nil {
			return verrors.Wrap(verrors.KindInitialization, err, "could not load next key generation")
		}
		next = genState{id: nextID, generation: generation}
	}

	if !needCurrent && !needNext {
		return nil
	}

	s.mu.Lock()
	if needCurrent {
		s.current = current
	}
	if needNext {
		s.next = next
	}
	s.mu.Unlock()

	return nil
}

// Current returns the current key generation and its key-lifetime, in
// seconds, for Token-info responses.
func (s *Service) Current() (keystore.Generation, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.generation, s.keyLifetime
}

// Next returns the next key generation and its key-lifetime, in seconds,
// for Token-info responses.
func (s *Service) Next() (keystore.Generation, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next.generation, s.keyLifetime
}

// IssueRoot issues a root credential signature against the current
// generation's signing key (spec §4.5).
func (s *Service) IssueRoot(request token.RootTokenRequest) (token.RootTokenResponse, error) {
	gen, _ := s.Current()
	return token.IssueRootToken(request, gen.SigningKey, gen.PublicKey, gen.Params)
}

// IssueNextRoot issues a root credential signature against the next
// generation's signing key, for clients renewing ahead of a key rotation
// boundary (spec §3 renewal-window behavior).
func (s *Service) IssueNextRoot(request token.RootTokenRequest) (token.RootTokenResponse, error) {
	gen, _ := s.Next()
	return token.IssueRootToken(request, gen.SigningKey, gen.PublicKey, gen.Params)
}
