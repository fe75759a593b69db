// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package ledcycle provides the command that cycles the LEDs of an Intel
// 82540EM NIC and reports its good packet count.
package ledcycle

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/platinasystems/e1000/internal/goes"
	"github.com/platinasystems/e1000/internal/hw"
	"github.com/platinasystems/e1000/internal/ledctl"
	"github.com/platinasystems/e1000/internal/pci"
	"github.com/platinasystems/log"
)

const Name = "ledcycle"

// SysfsEnv names the environment variable that may relocate the PCI
// sysfs devices directory.
const SysfsEnv = "E1000_SYSFS"

var ID = pci.DeviceID{
	Vendor: pci.IntelVendor,
	Device: 0x100e,
}

type Command struct {
	Devices func() ([]*pci.Device, error)
	Mapper  hw.Mapper

	// Dwell unit and sleep of the cycle, ledctl defaults if zero
	Unit  time.Duration
	Sleep func(context.Context, time.Duration) error
}

func New() *Command {
	return &Command{
		Devices: func() ([]*pci.Device, error) {
			return pci.Discover(os.Getenv(SysfsEnv))
		},
		Mapper: hw.DevMem{},
	}
}

func (*Command) String() string { return Name }

func (c *Command) Main(ctx context.Context, args ...string) (err error) {
	switch goes.Preemption(ctx) {
	case "":
	case "help":
		goes.Usage(ctx, "\n\n",
			"Blink the LEDs of the ", ID, " NIC for about 24 seconds,\n",
			"restore them, then print the good packets received count.")
		fallthrough
	default:
		return nil
	}
	if len(args) > 0 {
		return &goes.UsageError{
			Err:   goes.ErrorfWith(ctx, "%v: unexpected", args),
			Usage: func() { goes.Usage(ctx) },
		}
	}
	if err = hw.RequirePrivilege(); err != nil {
		return goes.ErrorfWith(ctx, "%w", err)
	}
	devs, err := c.Devices()
	if err != nil {
		return err
	}
	d, err := pci.Find(devs, pci.IdentityFilter(ID))
	if err != nil {
		return goes.ErrorfWith(ctx, "%v: %w", ID, err)
	}
	bar := d.Resources[0]
	if !bar.Valid() || !bar.IsMem() {
		return goes.ErrorfWith(ctx, "%v: BAR0 %v isn't memory", d, bar)
	}
	w, err := c.Mapper.Map(bar.MemBase(), hw.WindowSize, hw.ReadWrite)
	if err != nil {
		return goes.ErrorfWith(ctx, "%v: %w", d, err)
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	o := goes.OutputOf(ctx)
	o.Printf("LED Status: 0x%x\n", w.Read32(ledctl.LEDCTL))
	cycle := &ledctl.Cycle{
		Regs:  w,
		Unit:  c.Unit,
		Sleep: c.Sleep,
	}
	tty := isTerminal(o)
	cycle.OnPass = func(n int) {
		if tty {
			o.Printf("\rPass %d/%d", n, ledctl.Passes)
		} else {
			o.Printf("Pass %d\n", n)
		}
	}
	log.Print("info", d, " LED cycle")
	res, err := cycle.Run(ctx)
	if tty {
		o.Println()
	}
	if err != nil {
		log.Print("warn", d, " LED cycle interrupted, LEDCTL restored to ",
			fmt.Sprintf("0x%x", res.Final))
		return goes.ErrorfWith(ctx, "%w", err)
	}
	o.Printf("Good Packets: %d\n", res.GoodPackets)
	return nil
}

func isTerminal(o goes.Output) bool {
	f, ok := o.Writer().(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
