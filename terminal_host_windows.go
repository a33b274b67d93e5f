//go:build windows

package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

func init() {
	compiledFeatures = append(compiledFeatures, "terminal:windows")
}

// TerminalHost reads stdin into the log. A console is put in raw mode and
// edited through TerminalInput; anything else is streamed line by line.
// Only instantiated in main.go for interactive use - never in tests.
type TerminalHost struct {
	input        *TerminalInput
	sink         *ConsoleSink
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	interactive  bool
	oldTermState *term.State
}

// NewTerminalHost creates a host adapter that reads stdin into the sink.
func NewTerminalHost(sink *ConsoleSink) *TerminalHost {
	h := &TerminalHost{
		input:  NewTerminalInput(sink),
		sink:   sink,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	h.input.OnInterrupt(func() {
		h.stopped.Do(func() { close(h.stopCh) })
	})
	return h
}

// Done is closed when stdin ends or the user interrupts.
func (h *TerminalHost) Done() <-chan struct{} {
	return h.done
}

// Start sets stdin to raw mode and begins reading in a goroutine.
// Call Stop() to restore stdin.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(h.fd) {
		go h.stream(os.Stdin)
		return
	}
	h.interactive = true

	// Put terminal in raw mode to disable OS-level echo and line buffering.
	// TerminalInput handles echo itself.
	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := os.Stdin.Read(buf)
			if n > 0 {
				b := buf[0]
				// Raw mode sends CR for Enter; translate to LF.
				if b == '\r' {
					b = '\n'
				}
				// Modern terminals send 0x7F (DEL) for Backspace; translate to 0x08 (BS).
				if b == 0x7F {
					b = 0x08
				}
				h.input.RouteHostKey(b)
				h.PrintOutput()
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

func (h *TerminalHost) stream(r io.Reader) {
	defer close(h.done)
	if _, err := io.Copy(h.sink, r); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: read stdin: %v\n", err)
	}
	h.sink.Flush()
}

// Stop terminates the stdin reading goroutine and restores terminal state.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	if !h.interactive {
		return
	}
	<-h.done
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}

// PrintOutput drains the echo buffer and prints it to stdout.
func (h *TerminalHost) PrintOutput() {
	out := h.input.DrainOutput()
	if len(out) > 0 {
		fmt.Print(out)
	}
}
