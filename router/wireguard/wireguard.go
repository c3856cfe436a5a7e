// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package wireguard is a thin client facade over the external WireGuard
// manager RPC: AddPeer/RemovePeer (spec §6). The manager is consumed, not
// implemented, by this module.
package wireguard

import (
	"context"

	"google.golang.org/grpc"

	"github.com/veronymous/veronymous/common"
	"github.com/veronymous/veronymous/rpcutil"
)

const (
	serviceName = "veronymous.WireguardManager"

	methodAddPeer    = "/" + serviceName + "/AddPeer"
	methodRemovePeer = "/" + serviceName + "/RemovePeer"

	keySize = 32
	ipv4Len = 4
	ipv6Len = 16
)

// Manager registers and removes WireGuard peers. A router fans requests
// out to every configured wg_addresses endpoint and tolerates individual
// failures (the original service logs and continues rather than aborting
// admission on one unreachable manager).
type Manager struct {
	conns []*grpc.ClientConn
}

// New wraps already-dialed connections to one or more WireGuard manager
// endpoints.
func New(conns []*grpc.ClientConn) *Manager {
	return &Manager{conns: conns}
}

// AddPeer registers publicKey with addresses ipv4/ipv6 on every configured
// manager.
func (m *Manager) AddPeer(ctx context.Context, publicKey [keySize]byte, ipv4 [ipv4Len]byte, ipv6 [ipv6Len]byte) {
	request := make(rpcutil.Bytes, 0, keySize+ipv4Len+ipv6Len)
	request = append(request, publicKey[:]...)
	request = append(request, ipv4[:]...)
	request = append(request, ipv6[:]...)

	for _, conn := range m.conns {
		if _, err := rpcutil.Invoke(ctx, conn, methodAddPeer, request); err != nil {
			common.Logger.Errorf("could not add wireguard peer: %s", err)
		}
	}
}

// RemovePeer removes publicKey from every configured manager.
func (m *Manager) RemovePeer(ctx context.Context, publicKey [keySize]byte) {
	request := rpcutil.Bytes(publicKey[:])

	for _, conn := range m.conns {
		if _, err := rpcutil.Invoke(ctx, conn, methodRemovePeer, request); err != nil {
			common.Logger.Errorf("could not remove wireguard peer: %s", err)
		}
	}
}
