// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pci locates devices on the PCI bus through linux sysfs.
package pci

import "fmt"

const IntelVendor VendorID = 0x8086

// Device/vendor ID from PCI config space.
type VendorID uint16
type VendorDeviceID uint16

func (v VendorID) String() string       { return fmt.Sprintf("%04x", uint16(v)) }
func (d VendorDeviceID) String() string { return fmt.Sprintf("%04x", uint16(d)) }

// Vendor/Device pair
type DeviceID struct {
	Vendor VendorID
	Device VendorDeviceID
}

func (id DeviceID) String() string {
	return fmt.Sprint(id.Vendor, ":", id.Device)
}

type BusAddress struct {
	Domain        uint32
	Bus, Slot, Fn uint8
}

func (a BusAddress) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%01x", a.Domain, a.Bus, a.Slot, a.Fn)
}

// Short form without domain, e.g. 00:03.0
func (a BusAddress) Short() string {
	return fmt.Sprintf("%02x:%02x.%d", a.Bus, a.Slot, a.Fn)
}

// Mask of the address decode bits of a memory BAR.
const MemMask = ^uint64(0xf)

// Resource is one BAR of a device as reported by sysfs.
type Resource struct {
	Index      uint32 // index of BAR
	Base, Size uint64
	Flags      uint64
}

// IORESOURCE_IO and IORESOURCE_MEM from linux/ioport.h
const (
	ResourceIO  = 0x100
	ResourceMem = 0x200
)

func (r Resource) IsMem() bool     { return r.Flags&ResourceMem != 0 }
func (r Resource) Valid() bool     { return r.Size != 0 }
func (r Resource) MemBase() uint64 { return r.Base & MemMask }

func (r Resource) String() string {
	if !r.Valid() {
		return fmt.Sprintf("{%d: unused}", r.Index)
	}
	return fmt.Sprintf("{%d: 0x%x-0x%x}", r.Index, r.Base, r.Base+r.Size-1)
}

// Device is read only once discovered; Fill adds the resources.
type Device struct {
	Addr      BusAddress
	ID        DeviceID
	Resources []Resource

	dir string
}

func (d *Device) String() string {
	return fmt.Sprintf("%s %v", &d.Addr, d.ID)
}

func (d *Device) VendorID() VendorID       { return d.ID.Vendor }
func (d *Device) DeviceID() VendorDeviceID { return d.ID.Device }
