// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hw

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	r := NewRegion(make([]byte, 0x8000), 0xfebc0000, ReadWrite)
	for _, x := range []struct {
		off uint
		v   uint32
	}{
		{0, 0xdeadbeef},
		{0xe00, 0x07068302},
		{0x4074, 0},
		{0x7ffc, 0xffffffff},
	} {
		r.Write32(x.off, x.v)
		if got := r.Read32(x.off); got != x.v {
			t.Errorf("0x%x: 0x%x != 0x%x", x.off, got, x.v)
		}
	}
	// neighbors are untouched
	if got := r.Read32(0xe04); got != 0 {
		t.Errorf("0xe04: 0x%x", got)
	}
}

func TestCheck(t *testing.T) {
	r := NewRegion(make([]byte, 0x1000), 0, ReadOnly)
	for _, off := range []uint{0, 4, 0xffc} {
		if err := r.Check(off); err != nil {
			t.Error(err)
		}
	}
	for _, off := range []uint{1, 0xffe, 0x1000, 1 << 31} {
		if err := r.Check(off); !errors.Is(err, ErrOffset) {
			t.Errorf("0x%x: %v", off, err)
		}
	}
}

func TestPanics(t *testing.T) {
	try := func(t *testing.T, f func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Error("didn't panic")
			}
		}()
		f()
	}
	r := NewRegion(make([]byte, 0x1000), 0, ReadOnly)
	t.Run("read-outside", func(t *testing.T) {
		try(t, func() { r.Read32(0x1000) })
	})
	t.Run("write-read-only", func(t *testing.T) {
		try(t, func() { r.Write32(0, 1) })
	})
	t.Run("read-released", func(t *testing.T) {
		rr := NewRegion(make([]byte, 0x1000), 0, ReadWrite)
		rr.Close()
		try(t, func() { rr.Read32(0) })
	})
}

type closer struct {
	log *[]string
	err error
}

func (c closer) Close() error {
	*c.log = append(*c.log, "close")
	return c.err
}

func TestClose(t *testing.T) {
	var log []string
	errClose := errors.New("close")
	r := NewRegion(make([]byte, 0x1000), 0, ReadWrite)
	r.release = func(b []byte) error {
		log = append(log, "unmap")
		if len(b) != 0x1000 {
			t.Errorf("unmap %d bytes", len(b))
		}
		return nil
	}
	r.handle = closer{&log, errClose}
	if err := r.Close(); err != errClose {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
	if got, want := strings.Join(log, ","), "unmap,close"; got != want {
		t.Errorf("%q != %q", got, want)
	}
	if !r.Released() {
		t.Error("not released")
	}
}

func TestMapError(t *testing.T) {
	err := error(&MapError{"mmap", DevMemPath, 0xfebc0000, ReadOnly,
		syscall.EPERM})
	if !errors.Is(err, syscall.EPERM) {
		t.Error("not EPERM")
	}
	want := "mmap/read-only 0xfebc0000: operation not permitted - try rebooting with iomem=relaxed"
	if got := err.Error(); got != want {
		t.Errorf("%q != %q", got, want)
	}
}

func TestDevMem(t *testing.T) {
	pg := os.Getpagesize()
	fn := filepath.Join(t.TempDir(), "mem")
	if err := os.WriteFile(fn, make([]byte, 2*pg), 0600); err != nil {
		t.Fatal(err)
	}
	dm := DevMem{Path: fn}
	t.Run("open", func(t *testing.T) {
		_, err := DevMem{Path: fn + ".none"}.Map(0, pg, ReadOnly)
		var merr *MapError
		if !errors.As(err, &merr) || merr.Op != "open" {
			t.Fatalf("%T: %v", err, err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Error(err)
		}
	})
	t.Run("unaligned", func(t *testing.T) {
		_, err := dm.Map(4, pg, ReadOnly)
		var merr *MapError
		if !errors.As(err, &merr) || merr.Op != "align" {
			t.Fatalf("%T: %v", err, err)
		}
		if strings.Contains(err.Error(), "iomem") {
			t.Error(err)
		}
	})
	t.Run("read-write", func(t *testing.T) {
		w, err := dm.Map(uint64(pg), pg, ReadWrite)
		if err != nil {
			t.Fatal(err)
		}
		if w.Len() != pg {
			t.Errorf("len %d", w.Len())
		}
		w.Write32(8, 0x0f0e0f0f)
		if got := w.Read32(8); got != 0x0f0e0f0f {
			t.Errorf("0x%x", got)
		}
		if err = w.Close(); err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(fn)
		if err != nil {
			t.Fatal(err)
		}
		// little endian at page 1, offset 8
		got := b[pg+8 : pg+12]
		want := []byte{0x0f, 0x0f, 0x0e, 0x0f}
		if string(got) != string(want) {
			t.Errorf("% x != % x", got, want)
		}
	})
	t.Run("read-only", func(t *testing.T) {
		w, err := dm.Map(uint64(pg), pg, ReadOnly)
		if err != nil {
			t.Fatal(err)
		}
		defer w.Close()
		if got := w.Read32(8); got != 0x0f0e0f0f {
			t.Errorf("0x%x", got)
		}
	})
}

func TestRequirePrivilege(t *testing.T) {
	save := Privileged
	defer func() { Privileged = save }()
	Privileged = func() bool { return false }
	if err := RequirePrivilege(); err != ErrPrivilege {
		t.Error(err)
	}
	Privileged = func() bool { return true }
	if err := RequirePrivilege(); err != nil {
		t.Error(err)
	}
}
