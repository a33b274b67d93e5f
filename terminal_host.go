//go:build !windows

package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

func init() {
	compiledFeatures = append(compiledFeatures, "terminal:raw")
}

// TerminalHost reads stdin into the log. A TTY is put in raw mode and edited
// through TerminalInput; anything else is streamed line by line.
// Only instantiated in main.go for interactive use, never in tests.
type TerminalHost struct {
	input        *TerminalInput
	sink         *ConsoleSink
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	interactive  bool
	nonblockSet  bool
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

// Start begins reading stdin in a goroutine. Call Stop() to restore stdin.
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

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
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
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
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

// stream copies a pipe into the sink until EOF.
func (h *TerminalHost) stream(r io.Reader) {
	defer close(h.done)
	if _, err := io.Copy(h.sink, r); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: read stdin: %v\n", err)
	}
	h.sink.Flush()
}

// Stop terminates raw reading and restores stdin to blocking mode. A piped
// stdin is left to run until EOF.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	if !h.interactive {
		return
	}
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
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
