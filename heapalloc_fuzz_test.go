// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapalloc

import (
	"math"
	"testing"
	"unsafe"

	"github.com/cznic/mathutil"
)

// Randomized workload: allocate a quota's worth of randomly sized
// blocks, fill each with a deterministic PRNG stream, verify the bytes,
// shuffle, free everything, and check the live-allocation count returns
// to exactly zero. The full-cycle FC32 generator makes the byte streams
// replayable via Seek, so contents are verified exactly, not sampled.

const fuzzQuota = 4 << 20

func writePattern(p unsafe.Pointer, n int, rng *mathutil.FC32) {
	b := unsafe.Slice((*byte)(p), n)
	for i := range b {
		b[i] = byte(rng.Next())
	}
}

func checkPattern(t *testing.T, p unsafe.Pointer, n int, rng *mathutil.FC32) {
	t.Helper()

	b := unsafe.Slice((*byte)(p), n)
	for i, g := range b {
		if e := byte(rng.Next()); g != e {
			t.Fatalf("offset %d: got %#02x, want %#02x", i, g, e)
		}
	}
}

func fuzzRun(t *testing.T, maxSize int) {
	a := NewAllocator(64 << 20)
	if err := a.Init(); err != nil {
		t.Fatal(err)
	}

	rng, err := mathutil.NewFC32(0, math.MaxInt32, true)
	if err != nil {
		t.Fatal(err)
	}

	rng.Seed(42)
	pos := rng.Pos()

	var ptrs []unsafe.Pointer
	var sizes []int

	rem := fuzzQuota
	for rem > 0 {
		size := rng.Next()%maxSize + 1
		rem -= size

		p := a.Alloc(size)
		if p == nil {
			t.Fatal("unexpected OOM")
		}

		ptrs = append(ptrs, p)
		sizes = append(sizes, size)
		writePattern(p, size, rng)
	}

	if !a.CheckHeap(1) {
		t.Fatal("checker reported violations after allocation phase")
	}

	// Replay the same stream: re-draw each size to keep the verify
	// stream in step with the allocation stream, then check the bytes.
	rng.Seek(pos)
	for i, p := range ptrs {
		if g, e := sizes[i], rng.Next()%maxSize+1; g != e {
			t.Fatal(i, g, e)
		}

		checkPattern(t, p, sizes[i], rng)
	}

	// Shuffle the free order (Fisher-Yates-ish, deterministic via rng).
	for i := range ptrs {
		j := rng.Next() % len(ptrs)
		ptrs[i], ptrs[j] = ptrs[j], ptrs[i]
	}

	for _, p := range ptrs {
		a.Free(p)
	}

	if !a.CheckHeap(1) {
		t.Fatal("checker reported violations after the free phase")
	}

	if st := a.Stats(); st.LiveAllocs != 0 {
		t.Fatalf("stats after full drain: %+v", st)
	}
}

func TestFuzzSmall(t *testing.T) { fuzzRun(t, 2*osPageSize) }
func TestFuzzBig(t *testing.T)   { fuzzRun(t, 2*chunkSize) }

func TestFreeNilIsNoop(t *testing.T) {
	a := NewAllocator(1 << 20)
	if err := a.Init(); err != nil {
		t.Fatal(err)
	}

	a.Free(nil)

	if st := a.Stats(); st.LiveAllocs != 0 {
		t.Fatalf("Free(nil) changed live alloc count: %+v", st)
	}
}

func TestAllocZeroReturnsNil(t *testing.T) {
	a := NewAllocator(1 << 20)
	if err := a.Init(); err != nil {
		t.Fatal(err)
	}

	if p := a.Alloc(0); p != nil {
		t.Fatalf("Alloc(0) = %p, want nil", p)
	}
}
