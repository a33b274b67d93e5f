package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRuntimeStatus_Print(t *testing.T) {
	fl := newTestLog(t)
	fl.WriteString("a", false)
	fl.SetOops(true)
	fl.WriteString("b", false)
	fl.SetOops(false)
	fl.Draw(make([]byte, 64*8*4), 64, 8, 64*4, 4, FormatXRGB8888, 1)

	var buf bytes.Buffer
	fl.Status().print(&buf)
	out := buf.String()
	for _, want := range []string{
		"writes: 2 normal, 0 fast",
		"renders: 1 (0 aborted)",
		"resizes: 1 (0 failed), 0 stores retired",
		"store: 200x150",
		"columns: 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status output, got:\n%s", want, out)
		}
	}
}

func TestRuntimeStatus_OopsLine(t *testing.T) {
	fl := newTestLog(t)
	fl.SetOops(true)
	var buf bytes.Buffer
	fl.Status().print(&buf)
	if !strings.Contains(buf.String(), "oops in progress") {
		t.Fatalf("expected the oops line, got:\n%s", buf.String())
	}
}
