package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPanicRegistry_RegisterAndRemove(t *testing.T) {
	reg := newPanicRegistry(newTestLog(t))
	a := reg.register()
	b := reg.register()
	if reg.count() != 2 {
		t.Fatalf("expected 2 surfaces, got %d", reg.count())
	}
	a.Unregister()
	a.Unregister()
	if reg.count() != 1 {
		t.Fatalf("expected 1 surface, got %d", reg.count())
	}
	b.Unregister()
	if reg.count() != 0 {
		t.Fatalf("expected no surfaces, got %d", reg.count())
	}
}

func TestPanicRegistry_SkipsUnmappedSurfaces(t *testing.T) {
	reg := newPanicRegistry(newTestLog(t))
	if reg.notify() != 0 {
		t.Fatal("expected nothing drawn on an empty registry")
	}
	reg.register()
	if reg.notify() != 0 {
		t.Fatal("expected an unmapped surface to be skipped")
	}
}

func TestPanicRegistry_NotifyDrawsMappedSurfaces(t *testing.T) {
	fl := newTestLog(t)
	fl.WriteString("kernel panic", false)
	reg := newPanicRegistry(fl)

	p := reg.register()
	pix := filled(320*16*4, 0x55)
	p.Update(pix, 320, 16, 320*4, 4, FormatXRGB8888)
	reg.register()

	if n := reg.notify(); n != 1 {
		t.Fatalf("expected 1 surface drawn, got %d", n)
	}
	if !bytes.Equal(pix[:4], whiteXRGB) {
		t.Fatalf("expected the message drawn, got % X", pix[:4])
	}
}

func TestPanicSurface_SetColumns(t *testing.T) {
	reg := newPanicRegistry(newTestLog(t))
	p := reg.register()
	p.SetColumns(3)
	if p.target.Load() != nil {
		t.Fatal("expected SetColumns before Update to do nothing")
	}
	p.Update(make([]byte, 16), 2, 2, 8, 4, FormatXRGB8888)
	if c := p.target.Load().columns; c != 1 {
		t.Fatalf("expected Update to reset columns to 1, got %d", c)
	}
	p.SetColumns(3)
	if c := p.target.Load().columns; c != 3 {
		t.Fatalf("expected 3 columns, got %d", c)
	}
	p.Update(make([]byte, 16), 2, 2, 8, 4, FormatXRGB8888)
	if c := p.target.Load().columns; c != 1 {
		t.Fatalf("expected a new mapping to reset columns, got %d", c)
	}
}

func TestPanicRegistry_MultiColumnSurface(t *testing.T) {
	fl := newTestLog(t)
	reg := newPanicRegistry(fl)
	for i := range 6 {
		fl.WriteString(strings.Repeat(string(rune('a'+i)), 79), false)
	}
	p := reg.register()
	const width = 1280
	pix := make([]byte, width*8*4)
	p.Update(pix, width, 8, width*4, 4, FormatXRGB8888)
	p.SetColumns(2)
	reg.notify()
	if got := fl.Status().columns; got != 2 {
		t.Fatalf("expected a 2-column render, got %d", got)
	}
	for _, x := range []int{0, 640} {
		if !bytes.Equal(pixelAt(pix, width*4, x, 0), whiteXRGB) {
			t.Fatalf("expected column at x=%d lit", x)
		}
	}
}

func TestPanicRegistry_PublishesInRegistrationOrder(t *testing.T) {
	reg := newPanicRegistry(newTestLog(t))
	var want []*PanicSurface
	for range 16 {
		want = append(want, reg.register())
	}
	want[3].Unregister()
	want = append(want[:3], want[4:]...)
	want = append(want, reg.register())

	got := *reg.list.Load()
	if len(got) != len(want) {
		t.Fatalf("expected %d surfaces, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected surface %d, got surface %d", i, want[i].seq, got[i].seq)
		}
	}
}
