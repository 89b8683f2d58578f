// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapalloc

// placeAlloc finishes allocating a free block already unlinked from its
// list: either hand the whole block to the caller (the residual would
// be smaller than minBlock) or split it, inserting the remainder back
// into the registry.
func (a *Allocator) placeAlloc(off, need uint32) uint32 {
	total := blockSize(a.mem, off)
	prevAlloc := isPrevAlloc(a.mem, off)

	if total-need < minBlock {
		setHeader(a.mem, off, total, true, prevAlloc)
		setPrevAllocFlag(a.mem, off+total, true)
		return off
	}

	setHeader(a.mem, off, need, true, prevAlloc)

	remOff := off + need
	remSize := total - need
	setHeader(a.mem, remOff, remSize, false, true)
	setFooter(a.mem, remOff, remSize)
	setPrevAllocFlag(a.mem, remOff+remSize, false)
	a.insertFree(remOff, remSize)

	return off
}

// shrinkInPlace splits an already-allocated block down to newSize,
// folding a free block physically following the split point into the
// residual so no two free blocks end up adjacent.
func (a *Allocator) shrinkInPlace(off, newSize uint32) {
	total := blockSize(a.mem, off)
	prevAlloc := isPrevAlloc(a.mem, off)

	if total-newSize < minBlock {
		return
	}

	setHeader(a.mem, off, newSize, true, prevAlloc)

	remOff := off + newSize
	remSize := total - newSize

	next := remOff + remSize
	if next < a.length && !isAlloc(a.mem, next) {
		nsz := blockSize(a.mem, next)
		a.listDelete(next)
		remSize += nsz
	}

	setHeader(a.mem, remOff, remSize, false, true)
	setFooter(a.mem, remOff, remSize)
	setPrevAllocFlag(a.mem, remOff+remSize, false)
	a.insertFree(remOff, remSize)
}

// absorbNext grows a reallocated block by consuming its free physical
// successor: the block immediately following off is free and big enough
// to cover the requested growth, so either it is consumed whole
// (residual too small to stand alone) or it is split, with the leftover
// re-inserted.
func (a *Allocator) absorbNext(off, oldSize, next, nextSize, newSize uint32) {
	a.listDelete(next)

	combined := oldSize + nextSize
	if combined-newSize < minBlock {
		prevAlloc := isPrevAlloc(a.mem, off)
		setHeader(a.mem, off, combined, true, prevAlloc)
		setPrevAllocFlag(a.mem, off+combined, true)
		return
	}

	prevAlloc := isPrevAlloc(a.mem, off)
	setHeader(a.mem, off, newSize, true, prevAlloc)

	remOff := off + newSize
	remSize := combined - newSize
	setHeader(a.mem, remOff, remSize, false, true)
	setFooter(a.mem, remOff, remSize)
	setPrevAllocFlag(a.mem, remOff+remSize, false)
	a.insertFree(remOff, remSize)
}

// growAtTerminal grows a reallocated block that directly abuts the
// terminal sentinel: the region grows by exactly the deficit and the new
// bytes are folded straight into off.
func (a *Allocator) growAtTerminal(off, oldSize, newSize uint32) error {
	deficit := newSize - oldSize

	mem, err := a.prov.grow(int(deficit))
	if err != nil {
		return err
	}

	a.mem = mem

	prevAlloc := isPrevAlloc(a.mem, off)
	setHeader(a.mem, off, newSize, true, prevAlloc)

	a.length = off + newSize
	setHeader(a.mem, a.length, 0, true, true)

	return nil
}

// coalesceFree merges a block being freed with whichever physical
// neighbors are also free (four cases: neither, prev only, next only,
// both). It always leaves the freed region (and whatever it merged
// with) linked into exactly one size class, and never leaves two free
// blocks physically adjacent.
func (a *Allocator) coalesceFree(off uint32) {
	size := blockSize(a.mem, off)
	prevAlloc := isPrevAlloc(a.mem, off)
	next := off + size
	nextAlloc := isAlloc(a.mem, next)

	switch {
	case prevAlloc && nextAlloc:
		setHeader(a.mem, off, size, false, true)
		setFooter(a.mem, off, size)
		setPrevAllocFlag(a.mem, next, false)
		a.insertFree(off, size)

	case !prevAlloc && nextAlloc:
		prevSize := footerSize(a.mem, off)
		prevOff := off - prevSize
		a.listDelete(prevOff)

		newSize := prevSize + size
		prevPrevAlloc := isPrevAlloc(a.mem, prevOff)
		setHeader(a.mem, prevOff, newSize, false, prevPrevAlloc)
		setFooter(a.mem, prevOff, newSize)
		setPrevAllocFlag(a.mem, next, false)
		a.insertFree(prevOff, newSize)

	case prevAlloc && !nextAlloc:
		nextSize := blockSize(a.mem, next)
		a.listDelete(next)

		newSize := size + nextSize
		setHeader(a.mem, off, newSize, false, true)
		setFooter(a.mem, off, newSize)
		setPrevAllocFlag(a.mem, off+newSize, false)
		a.insertFree(off, newSize)

	default: // both neighbors free
		prevSize := footerSize(a.mem, off)
		prevOff := off - prevSize
		nextSize := blockSize(a.mem, next)
		a.listDelete(prevOff)
		a.listDelete(next)

		newSize := prevSize + size + nextSize
		prevPrevAlloc := isPrevAlloc(a.mem, prevOff)
		setHeader(a.mem, prevOff, newSize, false, prevPrevAlloc)
		setFooter(a.mem, prevOff, newSize)
		setPrevAllocFlag(a.mem, prevOff+newSize, false)
		a.insertFree(prevOff, newSize)
	}
}
