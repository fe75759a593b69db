// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is a goes machine of e1000 register tools. Link or copy it as
// `ledcycle` or `pciraw` to run either directly, otherwise
//
//	e1000 ledcycle
//	e1000 pciraw -d 8086: -a 0xe00
package main

import (
	"github.com/platinasystems/e1000/cmd/ledcycle"
	"github.com/platinasystems/e1000/cmd/pciraw"
	"github.com/platinasystems/e1000/internal/goes"
)

func main() {
	goes.Selection{
		ledcycle.Name: ledcycle.New().Main,
		pciraw.Name:   pciraw.New().Main,
	}.Main()
}
