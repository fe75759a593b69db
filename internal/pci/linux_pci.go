// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pci

// Linux PCI code

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var SysfsRoot = "/sys/bus/pci/devices"

// EnumerationError is a failure to list the bus or read a device identity.
type EnumerationError struct {
	Path string
	Err  error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("pci enumeration: %s: %v", e.Path, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

func (d *Device) SysfsPath(format string, args ...interface{}) string {
	return filepath.Join(d.dir, fmt.Sprintf(format, args...))
}

func (d *Device) sysfsReadHex(name string, bitSize int) (uint64, error) {
	b, err := os.ReadFile(d.SysfsPath(name))
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(b)), 0, bitSize)
}

// Discover lists the devices of the given sysfs directory, SysfsRoot if
// empty, in directory order with their bus address and identity. A
// missing directory is an empty bus.
func Discover(root string) ([]*Device, error) {
	if len(root) == 0 {
		root = SysfsRoot
	}
	des, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &EnumerationError{root, err}
	}
	var devs []*Device
	for _, de := range des {
		d := &Device{dir: filepath.Join(root, de.Name())}
		if _, err = fmt.Sscanf(de.Name(), "%x:%x:%x.%x",
			&d.Addr.Domain, &d.Addr.Bus, &d.Addr.Slot,
			&d.Addr.Fn); err != nil {
			// not a device entry
			continue
		}
		v, err := d.sysfsReadHex("vendor", 16)
		if err != nil {
			return nil, &EnumerationError{d.SysfsPath("vendor"), err}
		}
		d.ID.Vendor = VendorID(v)
		v, err = d.sysfsReadHex("device", 16)
		if err != nil {
			return nil, &EnumerationError{d.SysfsPath("device"), err}
		}
		d.ID.Device = VendorDeviceID(v)
		devs = append(devs, d)
	}
	return devs, nil
}

// Fill loops through the BARs of the sysfs resource file.
func (d *Device) Fill() error {
	f, err := os.Open(d.SysfsPath("resource"))
	if err != nil {
		return err
	}
	defer f.Close()
	d.Resources = d.Resources[:0]
	scan := bufio.NewScanner(f)
	for i := 0; scan.Scan(); i++ {
		var v [3]uint64
		n, err := fmt.Sscanf(scan.Text(), "0x%x 0x%x 0x%x",
			&v[0], &v[1], &v[2])
		if n != 3 || err != nil {
			return fmt.Errorf("%s: line %d: malformed resource",
				d.SysfsPath("resource"), i+1)
		}
		res := Resource{
			Index: uint32(i),
			Base:  v[0],
			Flags: v[2],
		}
		if v[0] != 0 || v[1] != 0 {
			res.Size = 1 + v[1] - v[0]
		}
		d.Resources = append(d.Resources, res)
	}
	if err = scan.Err(); err != nil {
		return err
	}
	if len(d.Resources) == 0 {
		return fmt.Errorf("%s: no resources", d.SysfsPath("resource"))
	}
	return nil
}
