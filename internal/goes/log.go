// Copyright © 2016-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"log"
	"os"
)

const LogFlags = log.Lshortfile

var Fatal = func(v ...interface{}) {
	log.Print(v...)
	Exit(1)
}

func PlainLog() {
	log.SetFlags(0)
	log.SetPrefix(Prog + ": ")
}

func StyleLog() {
	log.SetOutput(os.Stderr)
	log.SetFlags(LogFlags)
	log.SetPrefix(Prog + ":")
}
