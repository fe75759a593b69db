// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pci

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// IdsFiles are the searched locations of the pci.ids database.
var IdsFiles = []string{
	"/usr/share/misc/pci.ids",
	"/usr/share/hwdata/pci.ids",
	"/usr/share/pci.ids",
}

// Name of the vendor and device from the first readable IdsFiles, or a
// numeric placeholder if unknown.
func Name(id DeviceID) string {
	for _, fn := range IdsFiles {
		f, err := os.Open(fn)
		if err != nil {
			continue
		}
		s, found := lookupName(f, id)
		f.Close()
		if found {
			return s
		}
	}
	return fmt.Sprintf("Device %v", id)
}

// lookupName scans pci.ids format; vendors are unindented, their devices
// indented by one tab, subsystems by two.
func lookupName(r io.Reader, id DeviceID) (string, bool) {
	var vendor string
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		line := scan.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if line[0] != '\t' {
			if len(vendor) > 0 {
				break
			}
			if v, name, ok := idLine(line); ok &&
				v == uint64(id.Vendor) {
				vendor = name
			}
			continue
		}
		if len(vendor) == 0 || strings.HasPrefix(line, "\t\t") {
			continue
		}
		if d, name, ok := idLine(line[1:]); ok &&
			d == uint64(id.Device) {
			return vendor + " " + name, true
		}
	}
	if len(vendor) > 0 {
		return fmt.Sprintf("%s Device %v", vendor, id.Device), true
	}
	return "", false
}

func idLine(line string) (uint64, string, bool) {
	fields := strings.SplitN(line, "  ", 2)
	if len(fields) != 2 || len(fields[0]) != 4 {
		return 0, "", false
	}
	v, err := strconv.ParseUint(fields[0], 16, 16)
	if err != nil {
		return 0, "", false
	}
	return v, strings.TrimSpace(fields[1]), true
}
