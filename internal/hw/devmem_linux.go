// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hw

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const DevMemPath = "/dev/mem"

var ErrPrivilege = errors.New("must be run as root")

// Privileged is replaced by tests.
var Privileged = func() bool { return unix.Geteuid() == 0 }

func RequirePrivilege() error {
	if !Privileged() {
		return ErrPrivilege
	}
	return nil
}

// MapError is a failure to open the memory device or to map a window of
// it.
type MapError struct {
	Op   string
	Path string
	Phys uint64
	Mode Mode
	Err  error
}

func (e *MapError) Error() string {
	switch e.Op {
	case "open":
		return fmt.Sprintf("open %s: %v", e.Path, e.Err)
	case "align":
		return fmt.Sprintf("mmap/%s 0x%x: %v", e.Mode, e.Phys, e.Err)
	}
	return fmt.Sprintf("mmap/%s 0x%x: %v - try rebooting with iomem=relaxed",
		e.Mode, e.Phys, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

// DevMem maps physical memory through its Path, DevMemPath if empty.
type DevMem struct {
	Path string
}

func (dm DevMem) path() string {
	if len(dm.Path) == 0 {
		return DevMemPath
	}
	return dm.Path
}

// Map a page aligned window. The returned region owns the open memory
// device until closed.
func (dm DevMem) Map(phys uint64, size int, mode Mode) (Window, error) {
	fn := dm.path()
	flag, prot := os.O_RDONLY, unix.PROT_READ
	if mode == ReadWrite {
		flag, prot = os.O_RDWR|os.O_SYNC, unix.PROT_READ|unix.PROT_WRITE
	}
	if pg := uint64(os.Getpagesize()); phys%pg != 0 {
		return nil, &MapError{"align", fn, phys, mode,
			fmt.Errorf("not aligned to 0x%x page", pg)}
	}
	f, err := os.OpenFile(fn, flag, 0)
	if err != nil {
		return nil, &MapError{"open", fn, phys, mode, err}
	}
	mem, err := unix.Mmap(int(f.Fd()), int64(phys), size, prot,
		unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, &MapError{"mmap", fn, phys, mode, err}
	}
	return &Region{
		mem:     mem,
		phys:    phys,
		mode:    mode,
		release: unix.Munmap,
		handle:  f,
	}, nil
}
