// panic_hook.go - Writes Go panics into the log and paints the panic surfaces

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
	"fmt"
	"runtime/debug"
)

// RecoverAndDraw is deferred at the top of a goroutine. On panic it raises
// the oops flag, logs the value and stack through the non-blocking path,
// draws every panic surface and then panics again with the same value.
func RecoverAndDraw() {
	r := recover()
	if r == nil {
		return
	}
	reportPanic(defaultLog, panicSurfaces, r, debug.Stack())
	panic(r)
}

func reportPanic(log *FrameLog, reg *panicRegistry, value any, stack []byte) {
	log.SetOops(true)
	log.WriteString(fmt.Sprintf("panic: %v", value), true)
	start := 0
	for i, c := range stack {
		if c != '\n' {
			continue
		}
		if i > start {
			log.Write(stack[start:i], true)
		}
		start = i + 1
	}
	if start < len(stack) {
		log.Write(stack[start:], true)
	}
	reg.notify()
}

// reportSimulatedCrash runs the crash report without a real panic. The oops
// flag is cleared once the surfaces are drawn, since the process keeps
// running.
func reportSimulatedCrash(log *FrameLog, reg *panicRegistry, value any, stack []byte) {
	reportPanic(log, reg, value, stack)
	log.SetOops(false)
}
