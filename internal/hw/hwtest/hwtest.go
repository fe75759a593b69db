// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package hwtest provides a simulated register window that records each
// access, and a mapper of such windows.
package hwtest

import (
	"fmt"

	"github.com/platinasystems/e1000/internal/hw"
)

type Op struct {
	Write bool
	Off   uint
	Value uint32
}

func (op Op) String() string {
	if op.Write {
		return fmt.Sprintf("w 0x%x 0x%x", op.Off, op.Value)
	}
	return fmt.Sprintf("r 0x%x 0x%x", op.Off, op.Value)
}

// Window of registers without side effects.
type Window struct {
	Regs   map[uint]uint32
	Ops    []Op
	Size   int
	Closed int
}

func NewWindow(size int) *Window {
	return &Window{Regs: make(map[uint]uint32), Size: size}
}

func (w *Window) Read32(off uint) uint32 {
	v := w.Regs[off]
	w.Ops = append(w.Ops, Op{Off: off, Value: v})
	return v
}

func (w *Window) Write32(off uint, v uint32) {
	w.Regs[off] = v
	w.Ops = append(w.Ops, Op{Write: true, Off: off, Value: v})
}

func (w *Window) Len() int { return w.Size }

func (w *Window) Close() error {
	w.Closed++
	return nil
}

// Count the reads and writes of the given register offset.
func (w *Window) Count(off uint) (reads, writes int) {
	for _, op := range w.Ops {
		if op.Off != off {
			continue
		}
		if op.Write {
			writes++
		} else {
			reads++
		}
	}
	return
}

// Writes returns the values written to the given offset in order.
func (w *Window) Writes(off uint) (l []uint32) {
	for _, op := range w.Ops {
		if op.Write && op.Off == off {
			l = append(l, op.Value)
		}
	}
	return
}

type Mapping struct {
	Phys uint64
	Size int
	Mode hw.Mode
}

// Mapper returns its Window for every Map or Err if set.
type Mapper struct {
	Window *Window
	Err    error
	Maps   []Mapping
}

func (m *Mapper) Map(phys uint64, size int, mode hw.Mode) (hw.Window, error) {
	m.Maps = append(m.Maps, Mapping{phys, size, mode})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Window, nil
}
