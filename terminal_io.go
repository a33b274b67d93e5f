package main

import (
	"io"
	"sync"
)

const maxTerminalLine = 1024

// TerminalInput is a pure state-machine line editor. The host adapter
// (TerminalHost) feeds stdin bytes through RouteHostKey; each completed line
// is written to the sink. Echo is buffered and drained by the host.
type TerminalInput struct {
	mu sync.Mutex

	line      []byte
	outputBuf []byte

	echoEnabled bool
	sink        io.Writer

	// onInterrupt is called on Ctrl+C or Ctrl+D, outside tm.mu.
	onInterrupt func()
}

// NewTerminalInput creates a line editor with echo enabled.
func NewTerminalInput(sink io.Writer) *TerminalInput {
	return &TerminalInput{
		sink:        sink,
		echoEnabled: true,
		line:        make([]byte, 0, 128),
		outputBuf:   make([]byte, 0, 256),
	}
}

func (tm *TerminalInput) OnInterrupt(fn func()) {
	tm.mu.Lock()
	tm.onInterrupt = fn
	tm.mu.Unlock()
}

func (tm *TerminalInput) SetEcho(on bool) {
	tm.mu.Lock()
	tm.echoEnabled = on
	tm.mu.Unlock()
}

// RouteHostKey applies one byte from the host terminal.
func (tm *TerminalInput) RouteHostKey(b byte) {
	tm.mu.Lock()
	var done []byte
	interrupt := false
	switch {
	case b == '\n':
		done = append(append([]byte(nil), tm.line...), '\n')
		tm.line = tm.line[:0]
		tm.echoLocked('\r', '\n')
	case b == 0x08:
		if n := len(tm.line); n > 0 {
			tm.line = tm.line[:n-1]
			tm.echoLocked('\b', ' ', '\b')
		}
	case b == 0x03 || b == 0x04:
		interrupt = true
	case b == '\t':
		tm.appendLocked(' ')
	case b < 0x20:
		// other control bytes have no glyph
	default:
		tm.appendLocked(b)
	}
	fn := tm.onInterrupt
	sink := tm.sink
	tm.mu.Unlock()

	if done != nil && sink != nil {
		_, _ = sink.Write(done)
	}
	if interrupt && fn != nil {
		fn()
	}
}

func (tm *TerminalInput) appendLocked(b byte) {
	if len(tm.line) >= maxTerminalLine {
		return
	}
	tm.line = append(tm.line, b)
	tm.echoLocked(b)
}

func (tm *TerminalInput) echoLocked(bs ...byte) {
	if tm.echoEnabled {
		tm.outputBuf = append(tm.outputBuf, bs...)
	}
}

// Pending returns the line being edited.
func (tm *TerminalInput) Pending() string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return string(tm.line)
}

// DrainOutput returns and clears buffered echo.
func (tm *TerminalInput) DrainOutput() string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	out := string(tm.outputBuf)
	tm.outputBuf = tm.outputBuf[:0]
	return out
}
