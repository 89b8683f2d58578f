// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Heapalloc Authors.

package heapalloc

import (
	"os"
	"syscall"
	"unsafe"
)

// osReservation is one pagefile-backed mapping view, made when the
// provider is constructed and released by its Close. The file-mapping
// handle travels with the view, so release needs no lookup by address.
type osReservation struct {
	bytes  []byte
	handle syscall.Handle
}

func reserveRegion(size int) (*osReservation, error) {
	maxSizeHigh := uint32(int64(size) >> 32)
	maxSizeLow := uint32(int64(size) & 0xFFFFFFFF)
	h, errno := syscall.CreateFileMapping(syscall.Handle(^uintptr(0)), nil, syscall.PAGE_READWRITE, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		return nil, os.NewSyscallError("CreateFileMapping", errno)
	}

	addr, errno := syscall.MapViewOfFile(h, syscall.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if addr == 0 {
		syscall.CloseHandle(h)
		return nil, os.NewSyscallError("MapViewOfFile", errno)
	}

	return &osReservation{
		bytes:  unsafe.Slice((*byte)(unsafe.Pointer(addr)), size),
		handle: h,
	}, nil
}

func (r *osReservation) release() error {
	b := r.bytes
	r.bytes = nil

	if err := syscall.UnmapViewOfFile(uintptr(unsafe.Pointer(&b[0]))); err != nil {
		return err
	}

	return os.NewSyscallError("CloseHandle", syscall.CloseHandle(r.handle))
}
