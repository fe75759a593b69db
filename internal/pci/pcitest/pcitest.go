// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pcitest builds fake sysfs PCI device directories.
package pcitest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const Bar0 = 0xfebc0000

type Dev struct {
	Addr           string // e.g. 0000:00:03.0
	Vendor, Device uint16
	Bars           [][2]uint64 // base, size
}

// E1000 is an 82540EM at the given address with a 128K BAR0.
func E1000(addr string) Dev {
	return Dev{
		Addr:   addr,
		Vendor: 0x8086,
		Device: 0x100e,
		Bars:   [][2]uint64{{Bar0, 0x20000}},
	}
}

// Tree writes the devices below a new temporary directory and returns
// it.
func Tree(t testing.TB, devs ...Dev) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range devs {
		dir := filepath.Join(root, d.Addr)
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
		write := func(name, s string) {
			t.Helper()
			fn := filepath.Join(dir, name)
			if err := os.WriteFile(fn, []byte(s), 0644); err != nil {
				t.Fatal(err)
			}
		}
		write("vendor", fmt.Sprintf("0x%04x\n", d.Vendor))
		write("device", fmt.Sprintf("0x%04x\n", d.Device))
		sb := new(strings.Builder)
		for i := 0; i < 13; i++ {
			var start, end, flags uint64
			if i < len(d.Bars) && d.Bars[i][1] != 0 {
				start = d.Bars[i][0]
				end = start + d.Bars[i][1] - 1
				flags = 0x40200
			}
			fmt.Fprintf(sb, "0x%016x 0x%016x 0x%016x\n",
				start, end, flags)
		}
		write("resource", sb.String())
	}
	return root
}
