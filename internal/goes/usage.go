// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"context"
	"strings"
)

// Usage prints this formatted text.
//
//	usage: PATH ARGS...
//
// Where PATH is the space separated command names of the context less
// any preemptive helper. The ARGS are printed without separation. A
// Selection arg prints its sorted command names, one per line.
func Usage(ctx context.Context, args ...interface{}) {
	o := OutputOf(ctx)
	o.Print("usage:")
	for _, s := range PathOf(ctx) {
		if !preemptive[s] {
			o.Print(" ", s)
		}
	}
	end := "\n"
	if len(args) == 0 {
		o.Print(end)
		return
	}
	o.Print(" ")
	for _, v := range args {
		if sel, ok := v.(Selection); ok {
			end = ""
			for _, s := range sel.Keys() {
				if len(s) > 0 {
					o.Println(" ", s)
				}
			}
		} else {
			s, ok := v.(string)
			if ok && strings.HasSuffix(s, "\n") {
				end = ""
			} else {
				end = "\n"
			}
			o.Print(v)
		}
	}
	o.Print(end)
}
