// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapalloc

import (
	"fmt"
	"os"
)

// CheckHeap walks the heap and the segregated-list registry, verifying
// block sizing, the prev-allocated bit, footer/header agreement, and
// class-list membership. It is a debug/test aid, never a production
// path: it never mutates state, and on finding a violation it reports a
// diagnostic to stderr tagged with the caller-supplied line (typically
// the caller's own __LINE__-equivalent, `runtime.Caller`'s line in Go)
// rather than panicking, leaving the decision to assert to the caller.
// It returns true iff no violation was found.
func (a *Allocator) CheckHeap(line int) bool {
	ok := true
	report := func(format string, args ...interface{}) {
		ok = false
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(os.Stderr, "heapalloc: checkheap called at line %d: %s\n", line, msg)
	}

	a.checkLinear(report)
	a.checkLists(report)

	return ok
}

func (a *Allocator) checkLinear(report func(string, ...interface{})) {
	prevWasAlloc := true // the sentinel/pad region counts as an allocated boundary
	off := uint32(firstBlockOff)

	for off < a.length {
		size := blockSize(a.mem, off)
		if size < minBlock || size%dsize != 0 {
			report("block at offset %d has invalid size %d", off, size)
			break
		}

		alloc := isAlloc(a.mem, off)
		if isPrevAlloc(a.mem, off) != prevWasAlloc {
			report("block at offset %d: prev-allocated=%v, want %v", off, isPrevAlloc(a.mem, off), prevWasAlloc)
		}

		if !alloc {
			if !prevWasAlloc {
				report("two adjacent free blocks at offset %d", off)
			}

			footer := *wordAt(a.mem, off+size-wordSize)
			if footer != size {
				report("block at offset %d: footer %d disagrees with header size %d", off, footer, size)
			}

			idx := classIndexOf(size)
			if !a.reachableFromClass(off, idx) {
				report("free block at offset %d not reachable from its class list %d", off, idx)
			}
		}

		prevWasAlloc = alloc
		off += size
	}

	if off != a.length {
		report("heap walk ended at offset %d, expected terminal at %d", off, a.length)
	}
}

func (a *Allocator) checkLists(report func(string, ...interface{})) {
	for i := 0; i < numClasses; i++ {
		s := sentinelOff(i)
		for cur := freeNext(a.mem, s); cur != s; cur = freeNext(a.mem, cur) {
			if isAlloc(a.mem, cur) {
				report("class %d list contains allocated block at offset %d", i, cur)
				break
			}

			if classIndexOf(blockSize(a.mem, cur)) != i {
				report("block at offset %d belongs in class %d, found in class %d", cur, classIndexOf(blockSize(a.mem, cur)), i)
			}

			n := freeNext(a.mem, cur)
			if freePrev(a.mem, n) != cur {
				report("broken backlink: prev(next(%d)) != %d", cur, cur)
			}
		}
	}
}

// reachableFromClass reports whether off is reachable by walking the
// class-idx list from its sentinel; used only by the checker, so a
// linear walk (rather than an auxiliary index) is the right cost to pay.
func (a *Allocator) reachableFromClass(off uint32, idx int) bool {
	s := sentinelOff(idx)
	for cur := freeNext(a.mem, s); cur != s; cur = freeNext(a.mem, cur) {
		if cur == off {
			return true
		}
	}

	return false
}
