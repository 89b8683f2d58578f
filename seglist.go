// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapalloc

// The segregated-list registry: 16 size classes, each a circular doubly
// linked list threaded through the free blocks' prev/next offset fields,
// anchored by a sentinel node living in the heap's own first bytes. A
// class is empty when its sentinel's next offset points back to itself.
//
// Sentinels are identified purely by position (sentinelOff(idx)); they
// are never treated as blocks: no size/alloc bits are ever read from
// them, only the link fields. The region is a single owned arena,
// blocks are offsets into it, and list links are offsets too; no node
// owns another.

// initSentinels makes every class's sentinel point to itself, i.e. empty.
func (a *Allocator) initSentinels() {
	for i := 0; i < numClasses; i++ {
		s := sentinelOff(i)
		setFreeNext(a.mem, s, s)
		setFreePrev(a.mem, s, s)
	}
}

// insertFree links the free block at off (size bytes) into its size
// class, immediately before the sentinel (i.e. as the new tail).
func (a *Allocator) insertFree(off, size uint32) {
	idx := classIndexOf(size)
	s := sentinelOff(idx)
	tail := freePrev(a.mem, s)

	setFreeNext(a.mem, tail, off)
	setFreePrev(a.mem, off, tail)
	setFreeNext(a.mem, off, s)
	setFreePrev(a.mem, s, off)
}

// listDelete unlinks the free block at off from whichever list it
// currently occupies. The caller must know off is presently linked.
func (a *Allocator) listDelete(off uint32) {
	p := freePrev(a.mem, off)
	n := freeNext(a.mem, off)

	setFreeNext(a.mem, p, n)
	setFreePrev(a.mem, n, p)
}

// searchClass walks class idx's circular list for the first block whose
// size is at least need (first-fit within class). Returns the block's
// offset and true on a hit; the block is left linked; the caller
// unlinks it once it has committed to using it.
func (a *Allocator) searchClass(idx int, need uint32) (uint32, bool) {
	s := sentinelOff(idx)
	for cur := freeNext(a.mem, s); cur != s; cur = freeNext(a.mem, cur) {
		if blockSize(a.mem, cur) >= need {
			return cur, true
		}
	}

	return 0, false
}
