// Copyright 2017 The Heapalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// +build darwin dragonfly freebsd linux openbsd solaris netbsd

package heapalloc

import "syscall"

// osReservation is one anonymous private mapping, made when the
// provider is constructed and released by its Close. There is never
// more than one per provider, so the mapping is the whole state.
type osReservation struct {
	bytes []byte
}

func reserveRegion(size int) (*osReservation, error) {
	prot := syscall.PROT_READ | syscall.PROT_WRITE
	b, err := syscall.Mmap(-1, 0, size, prot, syscall.MAP_PRIVATE|syscall.MAP_ANON)
	if err != nil {
		return nil, err
	}

	return &osReservation{bytes: b}, nil
}

func (r *osReservation) release() error {
	b := r.bytes
	r.bytes = nil
	return syscall.Munmap(b)
}
