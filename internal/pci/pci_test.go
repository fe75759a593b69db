// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pci

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/platinasystems/e1000/internal/pci/pcitest"
)

func testTree(t *testing.T) string {
	return pcitest.Tree(t,
		pcitest.Dev{
			Addr:   "0000:00:00.0",
			Vendor: 0x8086,
			Device: 0x1237,
		},
		pcitest.Dev{
			Addr:   "0000:00:02.0",
			Vendor: 0x1234,
			Device: 0x1111,
			Bars:   [][2]uint64{{0xfd000000, 0x1000000}},
		},
		pcitest.E1000("0000:00:03.0"),
		pcitest.E1000("0000:00:08.0"),
	)
}

func TestDiscover(t *testing.T) {
	devs, err := Discover(testTree(t))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"0000:00:00.0 8086:1237",
		"0000:00:02.0 1234:1111",
		"0000:00:03.0 8086:100e",
		"0000:00:08.0 8086:100e",
	}
	if len(devs) != len(want) {
		t.Fatalf("%d devices != %d", len(devs), len(want))
	}
	for i, d := range devs {
		if got := d.String(); got != want[i] {
			t.Errorf("%q != %q", got, want[i])
		}
		if len(d.Resources) != 0 {
			t.Errorf("%v: resources before Fill", d)
		}
	}
}

func TestDiscoverMissing(t *testing.T) {
	devs, err := Discover(filepath.Join(t.TempDir(), "none"))
	if err != nil || len(devs) != 0 {
		t.Errorf("%v, %v", devs, err)
	}
}

func TestDiscoverUnreadable(t *testing.T) {
	root := testTree(t)
	if err := os.Remove(filepath.Join(root, "0000:00:02.0", "vendor")); err != nil {
		t.Fatal(err)
	}
	_, err := Discover(root)
	var eerr *EnumerationError
	if !errors.As(err, &eerr) {
		t.Fatalf("%T: %v", err, err)
	}
	if !strings.HasSuffix(eerr.Path, "vendor") {
		t.Error(eerr.Path)
	}
}

func TestDiscoverWideDomain(t *testing.T) {
	devs, err := Discover(pcitest.Tree(t, pcitest.E1000("10000:01:00.0")))
	if err != nil {
		t.Fatal(err)
	}
	if len(devs) != 1 {
		t.Fatalf("%d devices", len(devs))
	}
	if got, want := devs[0].Addr.String(), "10000:01:00.0"; got != want {
		t.Errorf("%q != %q", got, want)
	}
	f := IdentityFilter(DeviceID{0x8086, 0x100e})
	if err = f.ParseSlot("10000:01:00"); err != nil {
		t.Fatal(err)
	}
	if _, err = Find(devs, f); err != nil {
		t.Error(err)
	}
}

func TestFind(t *testing.T) {
	devs, err := Discover(testTree(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Run("identity", func(t *testing.T) {
		d, err := Find(devs, IdentityFilter(DeviceID{0x8086, 0x100e}))
		if err != nil {
			t.Fatal(err)
		}
		if got, want := d.Addr.String(), "0000:00:03.0"; got != want {
			t.Errorf("%q != %q", got, want)
		}
		if len(d.Resources) != 13 {
			t.Fatalf("%d resources", len(d.Resources))
		}
		bar := d.Resources[0]
		if !bar.Valid() || !bar.IsMem() ||
			bar.MemBase() != pcitest.Bar0 || bar.Size != 0x20000 {
			t.Error(bar)
		}
		if d.Resources[1].Valid() {
			t.Error(d.Resources[1])
		}
	})
	t.Run("slot", func(t *testing.T) {
		f := NewFilter()
		if err := f.ParseSlot("08"); err != nil {
			t.Fatal(err)
		}
		f.Vendor = int(IntelVendor)
		d, err := Find(devs, f)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := d.Addr.Short(), "00:08.0"; got != want {
			t.Errorf("%q != %q", got, want)
		}
	})
	t.Run("none", func(t *testing.T) {
		_, err := Find(devs, IdentityFilter(DeviceID{0x8086, 0x10d3}))
		if err != ErrNotFound {
			t.Error(err)
		}
	})
	t.Run("empty", func(t *testing.T) {
		if _, err := Find(nil, NewFilter()); err != ErrNotFound {
			t.Error(err)
		}
	})
}

func TestParseID(t *testing.T) {
	for _, x := range []struct {
		s              string
		vendor, device int
		err            string
	}{
		{"8086:100e", 0x8086, 0x100e, ""},
		{"8086:", 0x8086, Any, ""},
		{":100e", Any, 0x100e, ""},
		{"*:*", Any, Any, ""},
		{"8086", Any, Any, "':' expected"},
		{"18086:100e", Any, Any, "invalid vendor ID"},
		{"8086:xyz", Any, Any, "invalid device ID"},
	} {
		t.Run(x.s, func(t *testing.T) {
			f := NewFilter()
			err := f.ParseID(x.s)
			if len(x.err) > 0 {
				if err == nil || err.Error() != x.err {
					t.Errorf("%v != %q", err, x.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if f.Vendor != x.vendor || f.Device != x.device {
				t.Errorf("%v", f)
			}
		})
	}
}

func TestParseSlot(t *testing.T) {
	for _, x := range []struct {
		s                     string
		domain, bus, slot, fn int
		err                   string
	}{
		{"0000:00:03.0", 0, 0, 3, 0, ""},
		{"10000:01:00.0", 0x10000, 1, 0, 0, ""},
		{"01:1f.7", Any, 1, 0x1f, 7, ""},
		{"03", Any, Any, 3, Any, ""},
		{"3.", Any, Any, 3, Any, ""},
		{".1", Any, Any, Any, 1, ""},
		{"*:*:*.*", Any, Any, Any, Any, ""},
		{":03", Any, Any, 3, Any, ""},
		{"100:03", Any, Any, Any, Any, "invalid bus number"},
		{"20", Any, Any, Any, Any, "invalid slot number"},
		{"03.8", Any, Any, Any, Any, "invalid function number"},
		{"g:00:03.0", Any, Any, Any, Any, "invalid domain number"},
		{"80000000:00:03.0", Any, Any, Any, Any, "invalid domain number"},
	} {
		t.Run(x.s, func(t *testing.T) {
			f := NewFilter()
			err := f.ParseSlot(x.s)
			if len(x.err) > 0 {
				if err == nil || err.Error() != x.err {
					t.Errorf("%v != %q", err, x.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if f.Domain != x.domain || f.Bus != x.bus ||
				f.Slot != x.slot || f.Func != x.fn {
				t.Errorf("%v", f)
			}
		})
	}
}

func TestFilterString(t *testing.T) {
	f := IdentityFilter(DeviceID{0x8086, 0x100e})
	f.Slot = 3
	want := "filter: domain=* bus=* slot=0x3 func=*\n" +
		"\tvendor=0x8086 device=0x100e"
	if got := f.String(); got != want {
		t.Errorf("%q != %q", got, want)
	}
}

const ids = `# pci.ids excerpt
1234  Technical Corp.
8086  Intel Corporation
	100e  82540EM Gigabit Ethernet Controller
		8086 001e  PRO/1000 MT Desktop Adapter
	1237  440FX - 82441FX PMC [Natoma]
80ee  InnoTek Systemberatung GmbH
C 02  Network controller
	00  Ethernet controller
`

func TestName(t *testing.T) {
	for _, x := range []struct {
		id    DeviceID
		want  string
		found bool
	}{
		{DeviceID{0x8086, 0x100e}, "Intel Corporation 82540EM Gigabit Ethernet Controller", true},
		{DeviceID{0x8086, 0x1237}, "Intel Corporation 440FX - 82441FX PMC [Natoma]", true},
		{DeviceID{0x8086, 0x001e}, "Intel Corporation Device 001e", true},
		{DeviceID{0x10ec, 0x8139}, "", false},
	} {
		got, found := lookupName(strings.NewReader(ids), x.id)
		if got != x.want || found != x.found {
			t.Errorf("%v: %q, %v != %q, %v", x.id, got, found,
				x.want, x.found)
		}
	}
	save := IdsFiles
	defer func() { IdsFiles = save }()
	fn := filepath.Join(t.TempDir(), "pci.ids")
	if err := os.WriteFile(fn, []byte(ids), 0644); err != nil {
		t.Fatal(err)
	}
	IdsFiles = []string{filepath.Join(t.TempDir(), "none"), fn}
	if got, want := Name(DeviceID{0x8086, 0x100e}),
		"Intel Corporation 82540EM Gigabit Ethernet Controller"; got != want {
		t.Errorf("%q != %q", got, want)
	}
	if got, want := Name(DeviceID{0x10ec, 0x8139}),
		"Device 10ec:8139"; got != want {
		t.Errorf("%q != %q", got, want)
	}
}
