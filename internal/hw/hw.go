// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package hw maps windows of physical memory and accesses the 32 bit
// registers within them.
package hw

import (
	"sync/atomic"
	"unsafe"
)

// Memory-mapped read/write.
//
// Each is exactly one aligned 4 byte access that the compiler may not
// elide, combine, cache, or move across another load or store.
func LoadUint32(addr *uint32) uint32 { return atomic.LoadUint32(addr) }

func StoreUint32(addr *uint32, data uint32) { atomic.StoreUint32(addr, data) }

func addr32(mem []byte, off uint) *uint32 {
	return (*uint32)(unsafe.Pointer(&mem[off]))
}
