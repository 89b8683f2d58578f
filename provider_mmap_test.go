// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapalloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Exercises the OS-mmap-backed provider end to end: reservation, growth
// through Init/Alloc/Realloc, and release via Close.

func TestMmapAllocatorRoundTrip(t *testing.T) {
	a, prov, err := NewMmapAllocator(1 << 20)
	require.NoError(t, err)
	defer prov.Close()

	require.NoError(t, a.Init())

	p := a.Alloc(256)
	require.NotNil(t, p)

	q := a.Realloc(p, 4096)
	require.NotNil(t, q)

	a.Free(q)
	require.True(t, a.CheckHeap(1))
}

func TestMmapProviderExhaustion(t *testing.T) {
	prov, err := NewMmapProvider(osPageSize)
	require.NoError(t, err)
	defer prov.Close()

	_, err = prov.grow(osPageSize)
	require.NoError(t, err)

	_, err = prov.grow(1)
	require.ErrorIs(t, err, ErrNoMemory)
}
