// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapalloc

// findFit searches for a free block of at least need bytes: starting
// from the tightest class that could possibly hold it, search upward
// (toward larger, catch-all classes) until a hit is found; any hit in
// class i is guaranteed big enough, because class i only holds sizes in
// [2^(31-k), 2^(32-k)) for k = classLo + i, and need's own class index
// was computed the same way. A full miss across every class triggers
// extendHeap; the search is never retried after extending; the newly
// grown block is sized to cover need plus slack and is fed straight to
// placement.
func (a *Allocator) findFit(need uint32) (uint32, error) {
	start := classIndexOf(need)
	for i := start; i >= 0; i-- {
		if off, ok := a.searchClass(i, need); ok {
			a.listDelete(off)
			return off, nil
		}
	}

	return a.extendHeap(need)
}

// extendHeap grows the region to satisfy an allocation of at least need
// bytes that no existing free block could fit. It returns a free block
// offset, already unlinked from any list (either brand new, or the
// absorbed tail of the previous heap), ready for placement. On provider
// failure it returns an error and leaves all state, including the
// region's logical length, unchanged.
func (a *Allocator) extendHeap(need uint32) (uint32, error) {
	term := a.length
	tailFree := !isPrevAlloc(a.mem, term)

	if tailFree {
		return a.extendMergingTail(term, need)
	}

	return a.extendFresh(term, need)
}

// extendFresh handles the case where the block physically preceding the
// terminal sentinel is allocated: the old terminal's header becomes the
// new free block's header, covering exactly the newly grown bytes.
func (a *Allocator) extendFresh(term, need uint32) (uint32, error) {
	grow := need
	if grow < chunkSize {
		grow = chunkSize
	}

	grow = alignUp8(grow)

	mem, err := a.prov.grow(int(grow))
	if err != nil {
		return 0, err
	}

	a.mem = mem

	setHeader(a.mem, term, grow, false, true)
	setFooter(a.mem, term, grow)

	a.length = term + grow
	setHeader(a.mem, a.length, 0, true, false)
	a.extends++

	return term, nil
}

// extendMergingTail handles the case where the block physically
// preceding the terminal sentinel is already free: it is unlinked,
// extended in place by however much the region grows, and handed back
// instead of creating a second, newly adjacent free block (which would
// violate the no-two-adjacent-frees invariant).
func (a *Allocator) extendMergingTail(term, need uint32) (uint32, error) {
	tailSize := footerSize(a.mem, term)
	tailOff := term - tailSize
	a.listDelete(tailOff)

	deficit := int64(need) - int64(tailSize)
	if deficit < chunkSize {
		deficit = chunkSize
	}

	grow := alignUp8(uint32(deficit))

	mem, err := a.prov.grow(int(grow))
	if err != nil {
		// Re-link the tail block: state must be unchanged on failure.
		a.insertFree(tailOff, tailSize)
		return 0, err
	}

	a.mem = mem

	newSize := tailSize + grow
	prevAlloc := isPrevAlloc(a.mem, tailOff)
	setHeader(a.mem, tailOff, newSize, false, prevAlloc)
	setFooter(a.mem, tailOff, newSize)

	a.length = tailOff + newSize
	setHeader(a.mem, a.length, 0, true, false)
	a.extends++

	return tailOff, nil
}
