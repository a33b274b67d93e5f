package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestScriptRunner_Bindings(t *testing.T) {
	fl := newTestLog(t)
	cols := 0
	r := NewScriptRunner(fl, newPanicRegistry(fl), func(n int) { cols = n })
	src := `
for i = 1, 3 do
  log("line " .. i)
end
resize(1920, 1080)
columns(2)
log(string.rep("x", 5))
`
	if err := r.RunString(context.Background(), "bindings", src); err != nil {
		t.Fatalf("RunString returned error: %v", err)
	}
	got := lastMessages(fl, 5)
	want := []string{"line 2", "line 3", resizeNotice, "xxxxx"}
	if strings.Join(got[1:], "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, got[1:])
	}
	if cols != 2 {
		t.Fatalf("expected columns callback with 2, got %d", cols)
	}
	if st := fl.Status(); st.storeWidth != 480 {
		t.Fatalf("expected the resize applied, got width %d", st.storeWidth)
	}
}

func TestScriptRunner_CrashAndOops(t *testing.T) {
	fl := newTestLog(t)
	r := NewScriptRunner(fl, newPanicRegistry(fl), nil)
	if err := r.RunString(context.Background(), "crash", `crash("disk on fire")`); err != nil {
		t.Fatalf("RunString returned error: %v", err)
	}
	if fl.OopsInProgress() {
		t.Fatal("expected the oops flag cleared after a simulated crash")
	}
	if got := lastMessages(fl, 1); got[0] != "panic: disk on fire" {
		t.Fatalf("expected the crash message, got %q", got)
	}
	if err := r.RunString(context.Background(), "oops", `oops()`); err != nil {
		t.Fatalf("RunString returned error: %v", err)
	}
	if !fl.OopsInProgress() {
		t.Fatal("expected oops() to raise the flag")
	}
	if err := r.RunString(context.Background(), "oops", `oops(false)`); err != nil {
		t.Fatalf("RunString returned error: %v", err)
	}
	if fl.OopsInProgress() {
		t.Fatal("expected oops(false) to clear the flag")
	}
}

func TestScriptRunner_ArgumentErrors(t *testing.T) {
	fl := newTestLog(t)
	r := NewScriptRunner(fl, newPanicRegistry(fl), nil)
	for _, src := range []string{`resize(0, 10)`, `columns(0)`, `log()`, `this is not lua`} {
		err := r.RunString(context.Background(), "bad", src)
		var se *ScriptError
		if !errors.As(err, &se) || se.Script != "bad" {
			t.Fatalf("%q: expected a ScriptError, got %v", src, err)
		}
	}
}

func TestScriptRunner_NoOSLibrary(t *testing.T) {
	fl := newTestLog(t)
	r := NewScriptRunner(fl, newPanicRegistry(fl), nil)
	if err := r.RunString(context.Background(), "os", `os.exit(1)`); err == nil {
		t.Fatal("expected the os library to be unavailable")
	}
}

func TestScriptRunner_SleepCancelled(t *testing.T) {
	fl := newTestLog(t)
	r := NewScriptRunner(fl, newPanicRegistry(fl), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := r.RunString(ctx, "sleepy", `sleep(10000) log("unreachable")`)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("expected sleep to stop on cancellation")
	}
	for _, m := range fl.Snapshot() {
		if m == "unreachable" {
			t.Fatal("expected the script to stop at sleep")
		}
	}
}

func TestScriptRunner_RunFile(t *testing.T) {
	fl := newTestLog(t)
	r := NewScriptRunner(fl, newPanicRegistry(fl), nil)
	path := filepath.Join(t.TempDir(), "boot.lua")
	if err := os.WriteFile(path, []byte(`log("from file")`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := r.RunFile(context.Background(), path); err != nil {
		t.Fatalf("RunFile returned error: %v", err)
	}
	if got := lastMessages(fl, 1); got[0] != "from file" {
		t.Fatalf("expected %q, got %q", "from file", got)
	}
	err := r.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua"))
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("expected a ScriptError for a missing file, got %v", err)
	}
}
