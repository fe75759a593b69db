// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package goes selects and runs the named commands of a multi-call binary.
package goes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sort"

	"github.com/platinasystems/flags"
)

var Prog = filepath.Base(os.Args[0])

// Exit is replaced by tests.
var Exit = os.Exit

type Func = func(context.Context, ...string) error

type Selection map[string]Func

var BuiltIn = Selection{
	"version": func(ctx context.Context, args ...string) error {
		if bi, ok := debug.ReadBuildInfo(); ok {
			OutputOf(ctx).Println(bi.Main.Version)
		}
		return nil
	},
}

func (m Selection) Keys() []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Main runs the command named by the program's base name, e.g. a
// `ledcycle` symlink, or else the command named by the first argument.
// Any error is printed and the process exits with status 1.
func (m Selection) Main() {
	StyleLog()
	ctx, stop := signal.NotifyContext(context.Background(),
		TerminationSignals...)
	defer stop()
	for k, v := range BuiltIn {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	ctx = WithOutput(ctx, os.Stdout)
	args := os.Args[1:]
	if _, found := m[Prog]; found {
		args = append([]string{Prog}, os.Args[1:]...)
	} else {
		ctx = WithPath(ctx, Prog)
	}
	if err := m.Run(ctx, args...); err != nil {
		stop()
		PlainLog()
		Fatal(err)
	}
}

// Run is Main without the process exit; the context must carry the
// output and the program path.
func (m Selection) Run(ctx context.Context, args ...string) error {
	flag, args := flags.New(args, []string{"-h", "-help", "--help"})
	if flag.ByName["-h"] {
		args = append([]string{"help"}, args...)
	}
	ctx, args = Preempt(ctx, args)
	err := m.Select(ctx, args...)
	var usage *UsageError
	if errors.As(err, &usage) && usage.Usage != nil {
		usage.Usage()
	}
	return err
}

func (m Selection) Select(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		switch Preemption(ctx) {
		case "":
			if f, found := m[""]; found {
				return f(ctx)
			}
			return &UsageError{
				Err:   fmt.Errorf("incomplete"),
				Usage: func() { m.usage(ctx) },
			}
		case "complete":
			m.complete(ctx)
		case "help":
			m.usage(ctx)
		}
		return nil
	}
	f, found := m[args[0]]
	if !found {
		switch Preemption(ctx) {
		case "":
			return fmt.Errorf("%s: command not found", args[0])
		case "complete":
			m.complete(ctx, args...)
		case "help":
			m.usage(ctx)
		}
		return nil
	}
	return f(WithPath(ctx, args[0]), args[1:]...)
}

func (m Selection) complete(ctx context.Context, args ...string) {
	o := OutputOf(ctx)
	for _, s := range CompleteStrings(m.Keys(), args) {
		o.Println(s)
	}
}

func (m Selection) usage(ctx context.Context) {
	Usage(ctx, "COMMAND [OPTION]...\n", m)
}
