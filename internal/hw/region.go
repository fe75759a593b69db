// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hw

import (
	"errors"
	"fmt"
	"io"
)

// WindowSize of the register space mapped from BAR0.
const WindowSize = 0x200000

var ErrOffset = errors.New("register offset outside of mapped window")

type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

// Window is a mapped register space.
type Window interface {
	Read32(off uint) uint32
	Write32(off uint, v uint32)
	Len() int
	Close() error
}

// Mapper maps size bytes of physical memory at phys.
type Mapper interface {
	Map(phys uint64, size int, mode Mode) (Window, error)
}

// Region is valid from Map until Close; any access after Close panics.
type Region struct {
	mem  []byte
	phys uint64
	mode Mode

	// called once by Close, nil for regions of ordinary memory
	release func([]byte) error
	handle  io.Closer
}

// NewRegion returns a region of ordinary memory, e.g. a simulated device.
func NewRegion(mem []byte, phys uint64, mode Mode) *Region {
	return &Region{mem: mem, phys: phys, mode: mode}
}

func (r *Region) Len() int       { return len(r.mem) }
func (r *Region) Phys() uint64   { return r.phys }
func (r *Region) Mode() Mode     { return r.mode }
func (r *Region) Released() bool { return r.mem == nil }

func (r *Region) String() string {
	return fmt.Sprintf("{0x%x-0x%x %v}", r.phys, r.phys+uint64(len(r.mem))-1,
		r.mode)
}

// Check returns a wrapped ErrOffset unless off is an aligned register
// within the window.
func (r *Region) Check(off uint) error {
	if off%4 != 0 || uint64(off)+4 > uint64(len(r.mem)) {
		return fmt.Errorf("0x%x: %w (0x%x bytes)", off, ErrOffset,
			len(r.mem))
	}
	return nil
}

func (r *Region) mustCheck(off uint) {
	if err := r.Check(off); err != nil {
		panic(err)
	}
}

func (r *Region) Read32(off uint) uint32 {
	r.mustCheck(off)
	return LoadUint32(addr32(r.mem, off))
}

func (r *Region) Write32(off uint, v uint32) {
	r.mustCheck(off)
	if r.mode != ReadWrite {
		panic(fmt.Errorf("0x%x: write to %v region", off, r.mode))
	}
	StoreUint32(addr32(r.mem, off), v)
}

// Close unmaps the window then closes the memory handle.
func (r *Region) Close() (err error) {
	if r.mem == nil {
		return nil
	}
	mem := r.mem
	r.mem = nil
	if r.release != nil {
		err = r.release(mem)
	}
	if r.handle != nil {
		if herr := r.handle.Close(); err == nil {
			err = herr
		}
	}
	return
}
