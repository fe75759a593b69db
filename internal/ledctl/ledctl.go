// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package ledctl cycles the four LEDs of an e1000 NIC through its LED
// control register.
//
// Each nibble of LEDCTL drives one LED:
//
//	[3:0]   LED0 mode
//	[11:8]  LED1 mode
//	[19:16] LED2 mode
//	[27:24] LED3 mode
//
// Mode 0xe is on and 0xf is off. The other nibbles hold the blink and
// invert bits which the cycle preserves.
package ledctl

import (
	"fmt"
	"time"
)

// Register offsets in BAR0.
const (
	LEDCTL = 0x00e00
	GPRC   = 0x04074 // good packets received count
)

const (
	Unit   = time.Second
	Passes = 5
)

// Step is a read-modify-write of LEDCTL followed by Dwell units of sleep.
type Step struct {
	Name      string
	Keep, Set uint32
	Dwell     int
	Pass      int // 1..Passes, 0 outside of the passes
}

func (s Step) Apply(v uint32) uint32 { return v&s.Keep | s.Set }

func (s Step) String() string {
	if s.Pass > 0 {
		return fmt.Sprint("pass ", s.Pass, " ", s.Name)
	}
	return s.Name
}

var prelude = []Step{
	{Name: "led2+led0-on", Keep: 0xfff0fff0, Set: 0x000e000e, Dwell: 2},
	{Name: "all-off", Keep: 0xf0f0f0f0, Set: 0x0f0f0f0f, Dwell: 2},
}

var pass = []Step{
	{Name: "led3-on", Keep: 0xf0f0f0f0, Set: 0x0e0f0f0f, Dwell: 1},
	{Name: "led2-on", Keep: 0xf0f0f0f0, Set: 0x0f0e0f0f, Dwell: 1},
	{Name: "led1-on", Keep: 0xf0f0f0f0, Set: 0x0f0f0e0f, Dwell: 1},
	{Name: "led0-on", Keep: 0xf0f0f0f0, Set: 0x0f0f0f0e, Dwell: 1},
}

// Sequence returns the prelude followed by Passes repetitions of the
// single LED pass.
func Sequence() []Step {
	steps := append([]Step(nil), prelude...)
	for i := 1; i <= Passes; i++ {
		for _, s := range pass {
			s.Pass = i
			steps = append(steps, s)
		}
	}
	return steps
}
