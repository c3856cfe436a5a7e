// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package keycache holds the router's view of the issuer's current and
// next key generations, refreshed on a schedule so request handlers never
// block on an issuer RPC (spec §4.8 "Key refresh is a scheduled task").
package keycache

import (
	"context"
	"errors"
	"sync"
	"time"

	"google.golang.org/grpc"

	"github.com/veronymous/veronymous/common"
	"github.com/veronymous/veronymous/issuer/rpc"
	"github.com/veronymous/veronymous/rpcutil"
	"github.com/veronymous/veronymous/token"
)

// retryInterval is how long to wait between failed refresh attempts (spec
// §4.8: "retry at fixed 3-second intervals until a change is observed").
const retryInterval = 3 * time.Second

// errUnchangedUpdate marks a fetch that returned the same current
// generation as before: spec §4.8 treats this as a bad update to retry,
// not a successful refresh.
var errUnchangedUpdate = errors.New("keycache: fetched generation is unchanged")

// Cache is a reader-dominant, RWMutex-guarded current/next key generation
// pair (spec §5 "Router's key-generation cache ... readers overwhelmingly
// dominate").
type Cache struct {
	conn *grpc.ClientConn

	mu      sync.RWMutex
	current token.TokenInfo
	next    token.TokenInfo

	stop chan struct{}
}

// New fetches the initial current/next generations from conn and returns
// a ready Cache.
func New(conn *grpc.ClientConn) (*Cache, error) {
	c := &Cache{conn: conn, stop: make(chan struct{})}
	if err := c.load(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) load(ctx context.Context) error {
	current, err := fetch(ctx, c.conn, rpc.MethodGetTokenInfo)
	if err != nil {
		return err
	}
	next, err := fetch(ctx, c.conn, rpc.MethodGetNextTokenInfo)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.current = current
	c.next = next
	c.mu.Unlock()

	return nil
}

func fetch(ctx context.Context, conn *grpc.ClientConn, method string) (token.TokenInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	response, err := rpcutil.Invoke(ctx, conn, method, nil)
	if err != nil {
		return token.TokenInfo{}, err
	}
	return token.DeserializeTokenInfo(response)
}

// Current returns the current key generation.
func (c *Cache) Current() token.TokenInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Next returns the next key generation.
func (c *Cache) Next() token.TokenInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.next
}

// Active returns whichever generation a client at time now, with the
// configured epoch buffer, should be verified against, along with the
// epoch that generation's tokens are bound to (spec §4.8 "Decoded ->
// Verified: resolve the active key generation").
func (c *Cache) Active(now, epochLength, buffer uint64) (info token.TokenInfo, epoch uint64) {
	if token.InRenewalWindow(now, epochLength, buffer) {
		return c.Next(), token.NextEpoch(now, epochLength)
	}
	return c.Current(), token.CurrentEpoch(now, epochLength)
}

// Close stops the refresh loop, if started.
func (c *Cache) Close() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

// Run refreshes the cache at every key-lifetime boundary, retrying on a
// fixed interval until a genuinely different current generation is
// observed (spec §4.8: an unchanged fetch is treated as a bad update, not
// a successful no-op refresh).
func (c *Cache) Run(keyLifetime uint64) {
	for {
		previous := c.Current()
		wait := nextBoundary(keyLifetime)

		select {
		case <-c.stop:
			return
		case <-time.After(wait):
		}

		for {
			if err := c.refreshIfChanged(previous); err != nil {
				common.Logger.Errorf("could not refresh key generation cache: %s", err)
				select {
				case <-c.stop:
					return
				case <-time.After(retryInterval):
				}
				continue
			}
			break
		}
	}
}

func (c *Cache) refreshIfChanged(previous token.TokenInfo) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	current, err := fetch(ctx, c.conn, rpc.MethodGetTokenInfo)
	if err != nil {
		return err
	}
	if tokenInfoEqual(previous, current) {
		return errUnchangedUpdate
	}

	next, err := fetch(ctx, c.conn, rpc.MethodGetNextTokenInfo)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.current = current
	c.next = next
	c.mu.Unlock()

	return nil
}

func tokenInfoEqual(a, b token.TokenInfo) bool {
	return string(a.Params.Serialize()) == string(b.Params.Serialize()) &&
		string(a.PublicKey.Serialize()) == string(b.PublicKey.Serialize()) &&
		a.KeyLifetime == b.KeyLifetime
}

func nextBoundary(keyLifetime uint64) time.Duration {
	now := uint64(time.Now().Unix())
	next := token.NextEpoch(now, keyLifetime)
	return time.Duration(next-now) * time.Second
}
