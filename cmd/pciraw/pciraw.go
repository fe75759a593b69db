// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pciraw provides the command that reads or writes a 32 bit
// register in BAR0 of an Intel PCI device.
package pciraw

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/platinasystems/e1000/internal/goes"
	"github.com/platinasystems/e1000/internal/hw"
	"github.com/platinasystems/e1000/internal/pci"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
)

const Name = "pciraw"

const SysfsEnv = "E1000_SYSFS"

var (
	ErrNoDevice  = errors.New("no device given")
	ErrNoAddress = errors.New("no address given")
	ErrVendor    = errors.New("only Intel devices are supported")
	ErrNoValue   = errors.New("no value given")
)

// Config is the parsed command line.
type Config struct {
	Filter  pci.Filter
	Address uint
	Value   uint32
	Write   bool
	Debug   bool
}

// Parse the command arguments; every error is a usage error.
func Parse(args []string) (*Config, error) {
	write := given(args, "-w")
	parm, args := parms.New(args, "-w", "-a", "-d", "-s")
	flag, args := flags.New(args, "-D")
	if len(args) > 0 {
		return nil, fmt.Errorf("%v: unexpected", args)
	}
	cfg := &Config{
		Filter: pci.NewFilter(),
		Debug:  flag.ByName["-D"],
	}
	selected := false
	if s := parm.ByName["-d"]; len(s) > 0 {
		if err := cfg.Filter.ParseID(s); err != nil {
			return nil, fmt.Errorf("-d %s: %w", s, err)
		}
		if cfg.Filter.Vendor >= 0 &&
			cfg.Filter.Vendor != int(pci.IntelVendor) {
			return nil, ErrVendor
		}
		selected = true
	}
	if s := parm.ByName["-s"]; len(s) > 0 {
		if err := cfg.Filter.ParseSlot(s); err != nil {
			return nil, fmt.Errorf("-s %s: %w", s, err)
		}
		selected = true
	}
	if !selected {
		return nil, ErrNoDevice
	}
	s := parm.ByName["-a"]
	if len(s) == 0 {
		return nil, ErrNoAddress
	}
	a, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("-a %s: %w", s, err)
	}
	if a%4 != 0 || a+4 > hw.WindowSize {
		return nil, fmt.Errorf("-a %s: %w", s, hw.ErrOffset)
	}
	cfg.Address = uint(a)
	if write {
		s = parm.ByName["-w"]
		if len(s) == 0 {
			return nil, fmt.Errorf("-w: %w", ErrNoValue)
		}
		v, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("-w %s: %w", s, err)
		}
		cfg.Value = uint32(v)
		cfg.Write = true
	}
	cfg.Filter.Vendor = int(pci.IntelVendor)
	return cfg, nil
}

// given reports whether the named parameter is present, as either
// "NAME VALUE" or "NAME=VALUE", before parms consumes it.
func given(args []string, name string) bool {
	for _, arg := range args {
		if arg == name || strings.HasPrefix(arg, name+"=") {
			return true
		}
	}
	return false
}

type Command struct {
	Devices func() ([]*pci.Device, error)
	Mapper  hw.Mapper
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

func usage(ctx context.Context) {
	goes.Usage(ctx, "[-w VALUE] [-D] -a ADDRESS DEVICE\n\n",
		"Read, or write then read, the 32 bit register at ADDRESS of\n",
		"BAR0 of the selected Intel device.\n\n",
		"OPTIONS\n",
		"\t-w VALUE\tvalue to write to the register\n",
		"\t-a ADDRESS\tregister offset\n",
		"\t-D\t\tprint the device filter\n\n",
		"DEVICE\n",
		"\t-d [VENDOR]:[DEVICE]\n",
		"\t-s [[[[DOMAIN]:]BUS]:][SLOT][.[FUNC]]\n")
}

func (c *Command) Main(ctx context.Context, args ...string) (err error) {
	switch goes.Preemption(ctx) {
	case "":
	case "help":
		usage(ctx)
		fallthrough
	default:
		return nil
	}
	if err = hw.RequirePrivilege(); err != nil {
		return goes.ErrorfWith(ctx, "%w", err)
	}
	cfg, err := Parse(args)
	if err != nil {
		return &goes.UsageError{
			Err:   goes.ErrorfWith(ctx, "%w", err),
			Usage: func() { usage(ctx) },
		}
	}
	o := goes.OutputOf(ctx)
	if cfg.Debug {
		o.Print(cfg.Filter, "\n\n")
	}
	devs, err := c.Devices()
	if err != nil {
		return err
	}
	d, err := pci.Find(devs, cfg.Filter)
	if err != nil {
		return goes.ErrorfWith(ctx, "%w", err)
	}
	o.Printf("%s (%v)\n%s\n", d.Addr.Short(), d.ID, pci.Name(d.ID))
	bar := d.Resources[0]
	if !bar.Valid() || !bar.IsMem() {
		return goes.ErrorfWith(ctx, "%v: BAR0 %v isn't memory", d, bar)
	}
	mode := hw.ReadOnly
	if cfg.Write {
		mode = hw.ReadWrite
	}
	w, err := c.Mapper.Map(bar.MemBase(), hw.WindowSize, mode)
	if err != nil {
		return goes.ErrorfWith(ctx, "%v: %w", d, err)
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	if cfg.Write {
		w.Write32(cfg.Address, cfg.Value)
		log.Printf("info", "%v: wrote 0x%x to 0x%x", d, cfg.Value,
			cfg.Address)
	}
	o.Printf("0x%x\n", w.Read32(cfg.Address))
	return nil
}
