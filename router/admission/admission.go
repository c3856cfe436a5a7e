// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package admission implements the router's per-connection state machine:
// Received -> Decoded -> Verified -> Admitted -> Responded (spec §4.8).
package admission

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/veronymous/veronymous/connection"
	"github.com/veronymous/veronymous/router/addralloc"
	"github.com/veronymous/veronymous/router/conndb"
	"github.com/veronymous/veronymous/router/keycache"
	"github.com/veronymous/veronymous/router/replay"
	"github.com/veronymous/veronymous/router/wireguard"
	"github.com/veronymous/veronymous/token"
	"github.com/veronymous/veronymous/verrors"
)

// Config bounds how the admission service interprets wall-clock time
// against the issuer's epoch and key-rotation schedule (spec §6).
type Config struct {
	Domain      []byte
	EpochLength uint64
	Buffer      uint64
}

// Service admits or rejects ConnectRequests: decode, verify against the
// active key generation, replay-check, allocate an address, register with
// WireGuard, record the connection.
type Service struct {
	config Config

	keys      *keycache.Cache
	replay    *replay.Detector
	addresses *addralloc.Allocator
	conns     *conndb.Store
	wg        *wireguard.Manager

	now func() uint64
}

// New assembles a Service out of its already-constructed dependencies.
func New(config Config, keys *keycache.Cache, replayDetector *replay.Detector, addresses *addralloc.Allocator, conns *conndb.Store, wg *wireguard.Manager) *Service {
	return &Service{
		config:    config,
		keys:      keys,
		replay:    replayDetector,
		addresses: addresses,
		conns:     conns,
		wg:        wg,
		now:       func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// Admit runs a framed ConnectRequest through the full state machine and
// returns the framed ConnectResponse to send back.
//
// Received -> Decoded: a decode failure here is an InvalidArgument, not a
// verification failure — the client sent a malformed frame.
func (s *Service) Admit(ctx context.Context, framed []byte) ([]byte, error) {
	message, err := connection.Decode(framed)
	if err != nil {
		return nil, verrors.Wrap(verrors.KindDeserialization, err, "could not decode connect request")
	}

	request, ok := message.(connection.ConnectRequest)
	if !ok {
		return nil, verrors.New(verrors.KindInvalidArgument, "expected a connect request")
	}

	response, err := s.admit(ctx, request)
	if err != nil {
		return nil, err
	}

	return connection.EncodeResponse(response), nil
}

func (s *Service) admit(ctx context.Context, request connection.ConnectRequest) (connection.ConnectResponse, error) {
	now := s.now()

	// Decoded -> Verified: resolve the active key generation.
	info, epoch := s.keys.Active(now, s.config.EpochLength, s.config.Buffer)

	valid, err := request.Verify(s.config.Domain, epoch, info.PublicKey, info.Params)
	if err != nil {
		return connection.ConnectResponse{}, verrors.Wrap(verrors.KindVerification, err, "could not verify connect request")
	}
	if !valid {
		return connection.ConnectResponse{}, verrors.New(verrors.KindVerification, "connect request failed verification")
	}

	// Verified -> Admitted: replay check.
	digest := request.Token.SerialNumberDigest()
	isReplay, err := s.replay.Trace(epoch, s.config.EpochLength, now, digest)
	if err != nil {
		return connection.ConnectResponse{}, verrors.Wrap(verrors.KindDB, err, "could not check replay store")
	}
	if isReplay {
		return connection.ConnectResponse{}, verrors.New(verrors.KindVerification, "serial number already used this epoch")
	}

	ipv4, ipv6, err := s.addresses.Allocate(epoch, s.config.EpochLength, now)
	if err != nil {
		return connection.ConnectResponse{}, err
	}

	s.wg.AddPeer(ctx, request.PublicKey, ipv4, ipv6)

	if err := s.conns.Store(epoch, request.PublicKey); err != nil {
		return connection.ConnectResponse{}, err
	}

	// Admitted -> Responded.
	return connection.NewConnectResponse(true, ipv4, ipv6), nil
}

// Sweep clears every stored connection epoch that is neither current nor
// next, removing their peers from WireGuard first (spec §4.8 "Connection
// sweep"; spec §9 fixes the original's single "current - L" computation in
// favor of enumerating every epoch still on disk). A failure clearing one
// epoch does not stop the rest from being swept; every failure is
// collected and returned together.
func (s *Service) Sweep(ctx context.Context) error {
	now := s.now()
	currentEpoch := token.CurrentEpoch(now, s.config.EpochLength)
	nextEpoch := token.NextEpoch(now, s.config.EpochLength)

	stored, err := s.conns.StoredEpochs()
	if err != nil {
		return err
	}

	var errs *multierror.Error
	for _, epoch := range stored {
		if epoch == currentEpoch || epoch == nextEpoch {
			continue
		}
		if err := s.clearEpoch(ctx, epoch); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return errs.ErrorOrNil()
}

func (s *Service) clearEpoch(ctx context.Context, epoch uint64) error {
	keys, err := s.conns.Connections(epoch)
	if err != nil {
		return err
	}

	for _, key := range keys {
		s.wg.RemovePeer(ctx, key)
	}

	return s.conns.Clear(epoch)
}
