// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapalloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// CheckHeap-specific tests: a freshly initialized heap and a heap under
// normal use both pass, while deliberately corrupted state is caught.

func TestCheckHeapCleanAfterInit(t *testing.T) {
	a := newTestAllocator(t, 1<<20)
	require.True(t, a.CheckHeap(1))
}

func TestCheckHeapCleanAfterMixedUse(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	var ptrs []unsafe.Pointer
	for i := 0; i < 20; i++ {
		p := a.Alloc(16 + i*8)
		require.NotNil(t, p)
		ptrs = append(ptrs, p)
	}

	for i := 0; i < len(ptrs); i += 2 {
		a.Free(ptrs[i])
	}

	require.True(t, a.CheckHeap(1))
}

// TestCheckHeapCatchesCorruptSize corrupts a live block's header size
// field directly (bypassing Alloc/Free) and expects CheckHeap to report
// the violation via its own report callback rather than panicking. The
// size is driven below the 16-byte minimum; sizes that are not multiples
// of 8 cannot even be represented, since the low 3 header bits are flags.
func TestCheckHeapCatchesCorruptSize(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	p := a.Alloc(64)
	require.NotNil(t, p)

	off := a.blockOffset(p)
	setHeader(a.mem, off, 8, true, isPrevAlloc(a.mem, off))

	require.False(t, a.CheckHeap(1))
}

// TestCheckHeapCatchesBadFooter corrupts a free block's footer so that it
// disagrees with its header, which the linear walk must flag.
func TestCheckHeapCatchesBadFooter(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	p := a.Alloc(64)
	require.NotNil(t, p)
	a.Free(p)

	off := a.blockOffset(p)
	size := blockSize(a.mem, off)
	*wordAt(a.mem, off+size-wordSize) = size + 8

	require.False(t, a.CheckHeap(1))
}

// TestCheckHeapCatchesOrphanedFreeBlock corrupts the segregated list by
// splicing a free block out of its class without updating the header it
// belongs to, so the reachability cross-check fails.
func TestCheckHeapCatchesOrphanedFreeBlock(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	p := a.Alloc(64)
	require.NotNil(t, p)
	a.Free(p)

	off := a.blockOffset(p)
	a.listDelete(off) // now free on the heap, but unreachable from any class

	require.False(t, a.CheckHeap(1))
}
