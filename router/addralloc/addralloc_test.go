// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package addralloc

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	server := miniredis.RunT(t)
	allocator, err := New(server.Addr(), [2]byte{10, 0}, [13]byte{0xfd, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	t.Cleanup(func() { _ = allocator.Close() })
	return allocator
}

func TestAllocateUsesConfiguredGateway(t *testing.T) {
	a := newTestAllocator(t)

	ipv4, ipv6, err := a.Allocate(1643715000, 600, 1643715010)
	require.NoError(t, err)

	assert.Equal(t, byte(10), ipv4[0])
	assert.Equal(t, byte(0), ipv4[1])
	assert.Equal(t, byte(0xfd), ipv6[0])
}

func TestAllocateDoesNotRepeatWithinSameEpoch(t *testing.T) {
	a := newTestAllocator(t)

	seen := make(map[[4]byte]bool)
	for i := 0; i < 50; i++ {
		ipv4, _, err := a.Allocate(1643715000, 600, 1643715010)
		require.NoError(t, err)
		require.False(t, seen[ipv4], "allocator reused an address within the same epoch")
		seen[ipv4] = true
	}
}

func TestAllocateHostIDWithinValidRange(t *testing.T) {
	a := newTestAllocator(t)

	for i := 0; i < 20; i++ {
		ipv4, _, err := a.Allocate(1643715000, 600, 1643715010)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ipv4[2], byte(2))
		assert.Less(t, ipv4[2], byte(255))
		assert.Less(t, ipv4[3], byte(255))
	}
}
