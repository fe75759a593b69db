// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package ledctl

import (
	"context"
	"time"

	"github.com/platinasystems/e1000/internal/hw"
)

// Cycle runs the Sequence on a mapped register window. Nothing in the
// window other than LEDCTL is written.
type Cycle struct {
	Regs hw.Window

	// Unit dwell, ledctl.Unit if zero.
	Unit time.Duration

	// Sleep blocks for the dwell; Sleep if nil.
	Sleep func(context.Context, time.Duration) error

	// Optional progress callbacks; OnPass is called before the first
	// step of each pass.
	OnStep func(Step, uint32)
	OnPass func(int)
}

type Result struct {
	Original    uint32
	Final       uint32
	GoodPackets uint32
	Writes      int
}

// Sleep for d or until the context is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run saves LEDCTL, modifies the live value of LEDCTL for each step, then
// writes back the saved value and reads GPRC. If the context is done
// mid-sequence, Run restores the saved value and returns the context
// error.
func (c *Cycle) Run(ctx context.Context) (res Result, err error) {
	unit, sleep := c.Unit, c.Sleep
	if unit == 0 {
		unit = Unit
	}
	if sleep == nil {
		sleep = Sleep
	}
	res.Original = c.Regs.Read32(LEDCTL)
	defer func() {
		c.Regs.Write32(LEDCTL, res.Original)
		res.Writes++
		res.Final = res.Original
		if err == nil {
			res.GoodPackets = c.Regs.Read32(GPRC)
		}
	}()
	if err = ctx.Err(); err != nil {
		return
	}
	cur := 0
	for _, s := range Sequence() {
		if s.Pass != cur {
			cur = s.Pass
			if c.OnPass != nil {
				c.OnPass(cur)
			}
		}
		v := s.Apply(c.Regs.Read32(LEDCTL))
		c.Regs.Write32(LEDCTL, v)
		res.Writes++
		if c.OnStep != nil {
			c.OnStep(s, v)
		}
		if err = sleep(ctx, time.Duration(s.Dwell)*unit); err != nil {
			return
		}
	}
	return
}
