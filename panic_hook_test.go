package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestReportPanic_LogsValueAndStack(t *testing.T) {
	fl := newTestLog(t)
	reg := newPanicRegistry(fl)
	p := reg.register()
	pix := filled(320*16*4, 0x55)
	p.Update(pix, 320, 16, 320*4, 4, FormatXRGB8888)

	reportPanic(fl, reg, "index out of range", []byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:10"))
	if !fl.OopsInProgress() {
		t.Fatal("expected the oops flag raised")
	}
	msgs := fl.Snapshot()
	want := []string{"panic: index out of range", "goroutine 1 [running]:", "main.main()", "\t/src/main.go:10"}
	if got := msgs[len(msgs)-len(want):]; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q at the end of the log, got %q", want, got)
	}
	if bytes.Equal(pix, filled(len(pix), 0x55)) {
		t.Fatal("expected the panic surface drawn")
	}
}

func TestReportPanic_WhileWriterLockHeld(t *testing.T) {
	fl := newTestLog(t)
	fl.wlock.Lock()
	reportPanic(fl, newPanicRegistry(fl), "deadlock", nil)
	fl.wlock.Unlock()
	msgs := fl.Snapshot()
	if msgs[len(msgs)-1] != "panic: deadlock" {
		t.Fatalf("expected the panic message, got %q", msgs)
	}
}

func TestRecoverAndDraw_Repanics(t *testing.T) {
	defaultLog.InitWithFont(solidFont(8, 8))
	t.Cleanup(func() {
		defaultLog.SetOops(false)
		defaultLog.Shutdown()
	})

	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("expected the original panic value, got %v", r)
		}
		found := false
		for _, m := range defaultLog.Snapshot() {
			if m == "panic: boom" {
				found = true
			}
		}
		if !found {
			t.Fatal("expected the panic logged")
		}
	}()
	func() {
		defer RecoverAndDraw()
		panic("boom")
	}()
}

func TestRecoverAndDraw_NoPanic(t *testing.T) {
	func() {
		defer RecoverAndDraw()
	}()
	if defaultLog.OopsInProgress() {
		t.Fatal("expected no oops without a panic")
	}
}

func TestReportSimulatedCrash_ClearsOops(t *testing.T) {
	fl := newTestLog(t)
	reg := newPanicRegistry(fl)
	p := reg.register()
	pix := filled(320*16*4, 0x55)
	p.Update(pix, 320, 16, 320*4, 4, FormatXRGB8888)

	reportSimulatedCrash(fl, reg, "simulated crash", nil)
	if fl.OopsInProgress() {
		t.Fatal("expected the oops flag cleared")
	}
	if got := lastMessages(fl, 1); got[0] != "panic: simulated crash" {
		t.Fatalf("expected the crash message, got %q", got)
	}
	if bytes.Equal(pix, filled(len(pix), 0x55)) {
		t.Fatal("expected the panic surface drawn")
	}

	before := fl.Status()
	fl.WriteString("after", false)
	if got := fl.Status(); got.normalWrites != before.normalWrites+1 || got.fastWrites != before.fastWrites {
		t.Fatalf("expected a normal write after the crash, got %d normal %d fast", got.normalWrites, got.fastWrites)
	}
}
