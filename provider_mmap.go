// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapalloc

import "os"

var (
	osPageSize = os.Getpagesize()
	osPageMask = osPageSize - 1
)

// MmapProvider is a regionProvider backed by a single large anonymous OS
// mapping, reserved once at construction. The reservation is made once,
// and grow simply advances the logical length within it, so no block's
// address ever moves and no address ever needs munmap-ing mid-lifetime.
//
// Use NewMmapAllocator to build an Allocator on top of this provider.
// The default Allocator returned by NewAllocator/NewDefaultAllocator
// uses the simpler, portable arenaProvider instead; reach for
// MmapProvider when the OS-backed reservation itself matters (e.g. to
// keep the region off the Go heap and outside GC scanning).
type MmapProvider struct {
	res *osReservation
	mem []byte
}

// NewMmapProvider reserves capacity bytes of anonymous memory from the
// OS. The reservation is rounded up to a whole number of pages.
func NewMmapProvider(capacity int) (*MmapProvider, error) {
	size := (capacity + osPageMask) &^ osPageMask
	res, err := reserveRegion(size)
	if err != nil {
		return nil, err
	}

	return &MmapProvider{res: res, mem: res.bytes[:0]}, nil
}

func (p *MmapProvider) grow(n int) ([]byte, error) {
	newLen := len(p.mem) + n
	if newLen > cap(p.mem) {
		return nil, ErrNoMemory
	}

	p.mem = p.mem[:newLen]
	return p.mem, nil
}

// Close releases the OS mapping backing p. After Close, any Allocator
// built on top of p must not be used again.
func (p *MmapProvider) Close() error {
	if p.res == nil {
		return nil
	}

	err := p.res.release()
	p.res = nil
	p.mem = nil
	return err
}
