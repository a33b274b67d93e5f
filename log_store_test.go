package main

import (
	"errors"
	"strings"
	"testing"
)

func mustStore(t *testing.T, width, height int) *logStore {
	t.Helper()
	s, err := newLogStore(width, height, 0)
	if err != nil {
		t.Fatalf("newLogStore(%d, %d) returned error: %v", width, height, err)
	}
	return s
}

func lineText(s *logStore, slot int) string {
	l := &s.lines[slot]
	n := l.length()
	b := make([]byte, n)
	for i := range n {
		b[i] = l.cell(i)
	}
	return string(b)
}

func TestNewLogStore_InvalidSize(t *testing.T) {
	if _, err := newLogStore(0, 10, 0); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := newLogStore(10, -1, 0); err == nil {
		t.Fatal("expected error for negative height")
	}
}

func TestNewLogStore_BudgetExceeded(t *testing.T) {
	_, err := newLogStore(160, 50, storeBytes(160, 50)-1)
	if !errors.Is(err, errStoreTooLarge) {
		t.Fatalf("expected errStoreTooLarge, got %v", err)
	}
	if _, err := newLogStore(160, 50, storeBytes(160, 50)); err != nil {
		t.Fatalf("expected exact budget to fit, got %v", err)
	}
}

func TestNewLogStore_StartsEmptyAtSlotZero(t *testing.T) {
	s := mustStore(t, 16, 4)
	if s.pos.Load() != 0 {
		t.Fatalf("expected pos 0, got %d", s.pos.Load())
	}
	for i := range s.lines {
		if n, cont := s.lines[i].load(); n != 0 || cont {
			t.Fatalf("slot %d: expected empty line, got len=%d cont=%v", i, n, cont)
		}
	}
	if s.refs.Load() != 1 {
		t.Fatalf("expected one reference, got %d", s.refs.Load())
	}
}

func TestWriteLine_AdvancesAndWraps(t *testing.T) {
	s := mustStore(t, 16, 3)
	s.writeLine([]byte("one"), false)
	s.writeLine([]byte("two"), true)
	s.writeLine([]byte("three"), false)
	if s.pos.Load() != 0 {
		t.Fatalf("expected pos to wrap to 0, got %d", s.pos.Load())
	}
	if got := lineText(s, 0); got != "three" {
		t.Fatalf("expected slot 0 %q, got %q", "three", got)
	}
	if _, cont := s.lines[2].load(); !cont {
		t.Fatal("expected slot 2 to carry the continuation flag")
	}
}

func TestWriteLine_ClampsAndDropsEmpty(t *testing.T) {
	s := mustStore(t, 10, 4)
	s.writeLine([]byte("0123456789abcdef"), false)
	if got := lineText(s, 1); got != "0123456789" {
		t.Fatalf("expected clamp to width, got %q", got)
	}
	s.writeLine(nil, false)
	if s.pos.Load() != 1 {
		t.Fatalf("expected empty write to leave pos at 1, got %d", s.pos.Load())
	}
}

func TestPhysicalLine_RefillShorter(t *testing.T) {
	s := mustStore(t, 20, 2)
	s.lines[0].store([]byte("abcdefghijklmnopqrst"), false)
	s.lines[0].store([]byte("xyz"), true)
	if got := lineText(s, 0); got != "xyz" {
		t.Fatalf("expected %q, got %q", "xyz", got)
	}
}

func TestCopyHistory_OldestFirst(t *testing.T) {
	old := mustStore(t, 8, 4)
	old.writeLine([]byte("a"), false)
	old.writeLine([]byte("b"), false)
	old.writeLine([]byte("c"), true)
	old.writeLine([]byte("d"), false)
	old.writeLine([]byte("e"), false)

	s := mustStore(t, 16, 8)
	s.copyHistory(old)
	want := []string{"b", "c", "d", "e"}
	for i, w := range want {
		if got := lineText(s, i); got != w {
			t.Fatalf("slot %d: expected %q, got %q", i, w, got)
		}
	}
	if _, cont := s.lines[1].load(); !cont {
		t.Fatal("expected the continuation flag to be copied")
	}
	if s.pos.Load() != 3 {
		t.Fatalf("expected pos 3, got %d", s.pos.Load())
	}
	s.writeLine([]byte("f"), false)
	if got := lineText(s, 4); got != "f" {
		t.Fatalf("expected next write in slot 4, got %q", got)
	}
}

func TestCopyHistory_IntoSmallerStore(t *testing.T) {
	old := mustStore(t, 8, 6)
	for _, l := range []string{"1", "2", "3", "4", "5"} {
		old.writeLine([]byte(l), false)
	}
	s := mustStore(t, 8, 3)
	s.copyHistory(old)
	for i, w := range []string{"3", "4", "5"} {
		if got := lineText(s, i); got != w {
			t.Fatalf("slot %d: expected %q, got %q", i, w, got)
		}
	}
	if s.pos.Load() != 2 {
		t.Fatalf("expected pos 2, got %d", s.pos.Load())
	}
}

func TestLogStore_ReleaseOnLastPut(t *testing.T) {
	s := mustStore(t, 8, 2)
	retired := 0
	s.onRetire = func() { retired++ }

	s.get()
	s.put()
	if s.released.Load() {
		t.Fatal("expected store alive while the owner reference remains")
	}
	s.put()
	if !s.released.Load() || s.lines != nil || retired != 1 {
		t.Fatalf("expected release with one retire, got released=%v retired=%d", s.released.Load(), retired)
	}
	s.release()
	if retired != 1 {
		t.Fatalf("expected release to run once, got %d", retired)
	}
	if s.messages() != nil {
		t.Fatal("expected no messages from a released store")
	}
}

func TestLogStore_Messages(t *testing.T) {
	s := mustStore(t, 4, 8)
	writeWrapped(s, []byte("first"))
	writeWrapped(s, []byte("second line"))
	writeWrapped(s, []byte("x"))
	got := s.messages()
	want := []string{"first", "second line", "x"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLogStore_MessagesAfterOverwrite(t *testing.T) {
	s := mustStore(t, 4, 3)
	writeWrapped(s, []byte("aaaabbbbcc"))
	writeWrapped(s, []byte("dd"))
	got := s.messages()
	want := []string{"bbbbcc", "dd"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
