// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapalloc

import "unsafe"

// Block layout:
//
//	header (4 bytes, offset 0)        size | flags
//	payload (for allocated blocks)    user data
//	prev/next offsets (free only)     first 8 payload bytes
//	footer (free only, 4 bytes)       size, duplicated from header
//
// Flags live in the low 3 bits of the header word; size occupies bits
// 3..31 and is always a multiple of 8 (so it never collides with the
// flag bits). All of this is read and written through direct
// unsafe.Pointer casts over the region's backing slice; the layout's
// endianness is whatever the host's is and the bytes never cross a
// process boundary.
const (
	flagAlloc     = uint32(1) << 0
	flagPrevAlloc = uint32(1) << 1
	flagReserved  = uint32(1) << 2
	flagMask      = flagAlloc | flagPrevAlloc | flagReserved
)

// wordAt returns a pointer to the 32-bit word at offset off within mem.
func wordAt(mem []byte, off uint32) *uint32 {
	return (*uint32)(unsafe.Pointer(&mem[off]))
}

// blockSize reads the size field of the block whose header starts at off.
func blockSize(mem []byte, off uint32) uint32 {
	return *wordAt(mem, off) &^ flagMask
}

func isAlloc(mem []byte, off uint32) bool {
	return *wordAt(mem, off)&flagAlloc != 0
}

func isPrevAlloc(mem []byte, off uint32) bool {
	return *wordAt(mem, off)&flagPrevAlloc != 0
}

// setHeader writes a full header word: size plus both flags. It is used
// whenever a block changes size, allocation state, or the state of its
// physical predecessor all at once (splits, coalesces, shrink).
func setHeader(mem []byte, off, size uint32, alloc, prevAlloc bool) {
	var f uint32
	if alloc {
		f |= flagAlloc
	}

	if prevAlloc {
		f |= flagPrevAlloc
	}

	*wordAt(mem, off) = size | f
}

// setPrevAllocFlag flips only the prev-allocated bit of the block (or
// terminal sentinel) at off, preserving everything else. Used whenever
// a block's neighbor changes allocation state but the block itself does
// not move or resize.
func setPrevAllocFlag(mem []byte, off uint32, v bool) {
	w := wordAt(mem, off)
	if v {
		*w |= flagPrevAlloc
	} else {
		*w &^= flagPrevAlloc
	}
}

// setFooter writes the footer duplicate of size for the free block whose
// header is at off. Only meaningful for free blocks; allocated blocks
// leave those bytes as payload.
func setFooter(mem []byte, off, size uint32) {
	*wordAt(mem, off+size-wordSize) = size
}

// footerSize reads the size recorded in the footer immediately
// preceding the block whose header is at off, used to locate and size
// a free physical predecessor during coalescing.
func footerSize(mem []byte, off uint32) uint32 {
	return *wordAt(mem, off-wordSize)
}

// Free-block intrusive list fields: prev at payload+0, next at payload+4,
// i.e. off+wordSize and off+2*wordSize.
func freePrev(mem []byte, off uint32) uint32 {
	return *wordAt(mem, off+wordSize)
}

func freeNext(mem []byte, off uint32) uint32 {
	return *wordAt(mem, off+2*wordSize)
}

func setFreePrev(mem []byte, off, v uint32) {
	*wordAt(mem, off+wordSize) = v
}

func setFreeNext(mem []byte, off, v uint32) {
	*wordAt(mem, off+2*wordSize) = v
}

// payloadOffset and blockOffsetOf convert between a block's header offset
// and its payload offset.
func payloadOffset(off uint32) uint32 { return off + wordSize }
func blockOffsetOf(payload uint32) uint32 { return payload - wordSize }
