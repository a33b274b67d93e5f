// script_runner.go - Lua scenario scripts that drive the log

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/FrameLog
License: GPLv3 or later
*/

package main

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// ScriptError reports a failed scenario script.
type ScriptError struct {
	Script string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// ScriptRunner runs one script at a time against a FrameLog. The Lua state
// is created per run and is not shared between goroutines.
type ScriptRunner struct {
	log       *FrameLog
	surfaces  *panicRegistry
	onColumns func(int)
}

func NewScriptRunner(log *FrameLog, surfaces *panicRegistry, onColumns func(int)) *ScriptRunner {
	return &ScriptRunner{log: log, surfaces: surfaces, onColumns: onColumns}
}

func (r *ScriptRunner) newState(ctx context.Context) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	L.SetContext(ctx)

	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		r.log.WriteString(L.CheckString(1), false)
		return 0
	}))
	L.SetGlobal("crash", L.NewFunction(func(L *lua.LState) int {
		reportSimulatedCrash(r.log, r.surfaces, L.OptString(1, "simulated crash"), nil)
		return 0
	}))
	L.SetGlobal("oops", L.NewFunction(func(L *lua.LState) int {
		r.log.SetOops(L.OptBool(1, true))
		return 0
	}))
	L.SetGlobal("resize", L.NewFunction(func(L *lua.LState) int {
		w, h := L.CheckInt(1), L.CheckInt(2)
		if w <= 0 || h <= 0 {
			L.ArgError(1, "size must be positive")
		}
		r.log.EnsureSize(w, h)
		return 0
	}))
	L.SetGlobal("sleep", L.NewFunction(func(L *lua.LState) int {
		d := time.Duration(L.CheckInt(1)) * time.Millisecond
		select {
		case <-time.After(d):
		case <-ctx.Done():
			L.RaiseError("interrupted")
		}
		return 0
	}))
	L.SetGlobal("columns", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n < 1 {
			L.ArgError(1, "columns must be at least 1")
		}
		if r.onColumns != nil {
			r.onColumns(n)
		}
		return 0
	}))
	return L
}

// RunFile executes a script file until it returns or ctx is cancelled.
func (r *ScriptRunner) RunFile(ctx context.Context, path string) error {
	L := r.newState(ctx)
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return &ScriptError{Script: path, Err: err}
	}
	return nil
}

// RunString executes script source; name is used in errors.
func (r *ScriptRunner) RunString(ctx context.Context, name, src string) error {
	L := r.newState(ctx)
	defer L.Close()
	if err := L.DoString(src); err != nil {
		return &ScriptError{Script: name, Err: err}
	}
	return nil
}
