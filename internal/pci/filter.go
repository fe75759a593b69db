// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pci

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNotFound = errors.New("no device found")

// Any field of a Filter set to Any matches every device.
const Any = -1

// Filter selects devices by identity, slot, or both. Each field is either
// Any or the value to match.
type Filter struct {
	Domain, Bus, Slot, Func int
	Vendor, Device          int
}

func NewFilter() Filter {
	return Filter{Any, Any, Any, Any, Any, Any}
}

// IdentityFilter matches the given vendor and device at any slot.
func IdentityFilter(id DeviceID) Filter {
	f := NewFilter()
	f.Vendor = int(id.Vendor)
	f.Device = int(id.Device)
	return f
}

func (f Filter) Match(d *Device) bool {
	return (f.Domain < 0 || f.Domain == int(d.Addr.Domain)) &&
		(f.Bus < 0 || f.Bus == int(d.Addr.Bus)) &&
		(f.Slot < 0 || f.Slot == int(d.Addr.Slot)) &&
		(f.Func < 0 || f.Func == int(d.Addr.Fn)) &&
		(f.Vendor < 0 || f.Vendor == int(d.ID.Vendor)) &&
		(f.Device < 0 || f.Device == int(d.ID.Device))
}

// Find returns the first matching device of the list with its resources
// filled.
func Find(devs []*Device, f Filter) (*Device, error) {
	for _, d := range devs {
		if f.Match(d) {
			if err := d.Fill(); err != nil {
				return nil, fmt.Errorf("%s: %w", &d.Addr, err)
			}
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func parseField(s string, max int64) (int, bool) {
	if len(s) == 0 || s == "*" {
		return Any, true
	}
	x, err := strconv.ParseInt(s, 16, 64)
	if err != nil || x < 0 || x > max {
		return Any, false
	}
	return int(x), true
}

// ParseID sets the identity fields from [VENDOR]:[DEVICE] in hex where
// either may be empty or "*".
func (f *Filter) ParseID(s string) error {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return errors.New("':' expected")
	}
	vendor, ok := parseField(s[:colon], 0xffff)
	if !ok {
		return errors.New("invalid vendor ID")
	}
	device, ok := parseField(s[colon+1:], 0xffff)
	if !ok {
		return errors.New("invalid device ID")
	}
	f.Vendor, f.Device = vendor, device
	return nil
}

// ParseSlot sets the address fields from
// [[[[DOMAIN]:]BUS]:][SLOT][.[FUNC]] in hex where each may be empty or
// "*".
func (f *Filter) ParseSlot(s string) error {
	var domain, bus, slot, fn = Any, Any, Any, Any
	var ok bool
	mid := s
	if colon := strings.LastIndexByte(s, ':'); colon >= 0 {
		mid = s[colon+1:]
		head := s[:colon]
		if colon2 := strings.IndexByte(head, ':'); colon2 >= 0 {
			if domain, ok = parseField(head[:colon2], 0x7fffffff); !ok {
				return errors.New("invalid domain number")
			}
			head = head[colon2+1:]
		}
		if bus, ok = parseField(head, 0xff); !ok {
			return errors.New("invalid bus number")
		}
	}
	if dot := strings.IndexByte(mid, '.'); dot >= 0 {
		if fn, ok = parseField(mid[dot+1:], 7); !ok {
			return errors.New("invalid function number")
		}
		mid = mid[:dot]
	}
	if slot, ok = parseField(mid, 0x1f); !ok {
		return errors.New("invalid slot number")
	}
	f.Domain, f.Bus, f.Slot, f.Func = domain, bus, slot, fn
	return nil
}

func (f Filter) String() string {
	return fmt.Sprintf("filter: domain=%s bus=%s slot=%s func=%s\n"+
		"\tvendor=%s device=%s",
		field(f.Domain), field(f.Bus), field(f.Slot), field(f.Func),
		field(f.Vendor), field(f.Device))
}

func field(v int) string {
	if v < 0 {
		return "*"
	}
	return fmt.Sprintf("0x%x", v)
}
