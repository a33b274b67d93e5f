// console_sink.go - io.Writer front end that feeds text lines into the log

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
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/gookit/color"
)

const maxPendingLine = 4096

// ConsoleSink turns a byte stream into log messages, one per text line. A
// line without its newline is held until the rest arrives or Flush is called.
type ConsoleSink struct {
	log         *FrameLog
	mu          sync.Mutex
	pending     []byte
	nonBlocking bool
}

func NewConsoleSink(log *FrameLog) *ConsoleSink {
	return &ConsoleSink{log: log}
}

// SetNonBlocking routes every line through the crash-safe write path.
func (s *ConsoleSink) SetNonBlocking(v bool) {
	s.mu.Lock()
	s.nonBlocking = v
	s.mu.Unlock()
}

func (s *ConsoleSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := p
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			s.pending = append(s.pending, data...)
			if len(s.pending) >= maxPendingLine {
				s.flushLocked()
			}
			break
		}
		line := trimCR(data[:i])
		if len(s.pending) > 0 {
			s.pending = append(s.pending, line...)
			s.flushLocked()
		} else {
			s.log.Write(line, s.nonBlocking)
		}
		data = data[i+1:]
	}
	return len(p), nil
}

// Flush writes any partial line as its own message.
func (s *ConsoleSink) Flush() {
	s.mu.Lock()
	s.flushLocked()
	s.mu.Unlock()
}

func (s *ConsoleSink) flushLocked() {
	if len(s.pending) == 0 {
		return
	}
	s.log.Write(s.pending, s.nonBlocking)
	s.pending = s.pending[:0]
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

var (
	colorInfo = color.Style{color.FgGray}
	colorWarn = color.Style{color.FgRed, color.OpBold}
)

// logf prints a diagnostic to stderr and appends it to the default log.
func logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorInfo.Sprint(msg))
	defaultLog.WriteString(msg, false)
}

// warnf is logf for failures.
func warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorWarn.Sprint(msg))
	defaultLog.WriteString(msg, false)
}
