// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"context"
	"fmt"
	"io"
)

var (
	outputMark int
	outputKey  = &outputMark
)

func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return Output{ctx, w}
}

// Output prints to the writer of the context until it's done. Unlike
// command input, output continues after cancellation so that an
// interrupted command may still report what it restored.
type Output struct {
	context.Context
	w io.Writer
}

func OutputOf(ctx context.Context) Output {
	if v := ctx.Value(outputKey); v != nil {
		return v.(Output)
	}
	return Output{ctx, nil}
}

// Writer returns the underlying writer, nil if discarded.
func (o Output) Writer() io.Writer { return o.w }

func (o Output) Print(args ...interface{}) {
	if o.w != nil {
		fmt.Fprint(o.w, args...)
	}
}

func (o Output) Printf(format string, args ...interface{}) {
	if o.w != nil {
		fmt.Fprintf(o.w, format, args...)
	}
}

func (o Output) Println(args ...interface{}) {
	if o.w != nil {
		fmt.Fprintln(o.w, args...)
	}
}

func (o Output) Value(k interface{}) interface{} {
	if k == outputKey {
		return o
	}
	return o.Context.Value(k)
}

func (o Output) Write(data []byte) (int, error) {
	if o.w == nil {
		return len(data), nil
	}
	return o.w.Write(data)
}
