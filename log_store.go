// log_store.go - Fixed-capacity ring buffer of physical log lines

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
	"errors"
	"fmt"
	"sync/atomic"
)

const (
	cellWordBytes  = 8
	defaultBudget  = 64 << 20 // bytes of line storage per store
	lineDescBytes  = 8
	lineSliceBytes = 24
)

var errStoreTooLarge = errors.New("log store exceeds allocation budget")

// physicalLine is one slot of the ring. Cells are packed eight bytes per
// atomic word so renders may read while a writer refills the slot; desc packs
// length<<1 | continuation and is stored after the cells it describes.
type physicalLine struct {
	desc  atomic.Uint64
	cells []atomic.Uint64
}

func (l *physicalLine) load() (length int, cont bool) {
	d := l.desc.Load()
	return int(d >> 1), d&1 != 0
}

func (l *physicalLine) length() int {
	n, _ := l.load()
	return n
}

func (l *physicalLine) cell(i int) byte {
	return byte(l.cells[i/cellWordBytes].Load() >> (8 * (i % cellWordBytes)))
}

// store copies data into the cells, then publishes the descriptor. The
// caller has clamped data to the line width.
func (l *physicalLine) store(data []byte, cont bool) {
	for w := 0; w*cellWordBytes < len(data); w++ {
		var v uint64
		chunk := data[w*cellWordBytes:]
		for i := 0; i < cellWordBytes && i < len(chunk); i++ {
			v |= uint64(chunk[i]) << (8 * i)
		}
		l.cells[w].Store(v)
	}
	d := uint64(len(data)) << 1
	if cont {
		d |= 1
	}
	l.desc.Store(d)
}

// copyFrom duplicates another line of at most the same width.
func (l *physicalLine) copyFrom(src *physicalLine) {
	n, cont := src.load()
	words := (n + cellWordBytes - 1) / cellWordBytes
	for w := 0; w < words && w < len(l.cells); w++ {
		l.cells[w].Store(src.cells[w].Load())
	}
	if max := len(l.cells) * cellWordBytes; n > max {
		n = max
	}
	d := uint64(n) << 1
	if cont {
		d |= 1
	}
	l.desc.Store(d)
}

// logStore holds height lines of width bytes. pos is the most recently
// completed slot. refs counts the current-store reference plus every pinned
// reader; the line storage is released when it drops to zero.
type logStore struct {
	width  int
	height int
	pos    atomic.Int64
	lines  []physicalLine
	words  []atomic.Uint64

	refs     atomic.Int64
	released atomic.Bool
	onRetire func()
}

func storeBytes(width, height int) int64 {
	words := int64((width + cellWordBytes - 1) / cellWordBytes)
	return int64(height) * (words*cellWordBytes + lineDescBytes + lineSliceBytes)
}

func newLogStore(width, height int, budget int64) (*logStore, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("log store: invalid size %dx%d", width, height)
	}
	if need := storeBytes(width, height); budget > 0 && need > budget {
		return nil, fmt.Errorf("log store %dx%d needs %d bytes: %w", width, height, need, errStoreTooLarge)
	}

	perLine := (width + cellWordBytes - 1) / cellWordBytes
	s := &logStore{
		width:  width,
		height: height,
		lines:  make([]physicalLine, height),
		words:  make([]atomic.Uint64, perLine*height),
	}
	for i := range s.lines {
		s.lines[i].cells = s.words[i*perLine : (i+1)*perLine : (i+1)*perLine]
	}
	s.refs.Store(1)
	return s, nil
}

// writeLine stores one physical line in the slot after pos and then moves
// pos onto it. Data beyond the store width is dropped.
func (s *logStore) writeLine(data []byte, cont bool) {
	if s == nil || len(data) == 0 {
		return
	}
	pos := s.pos.Load() + 1
	if pos >= int64(s.height) {
		pos = 0
	}
	if len(data) > s.width {
		data = data[:s.width]
	}
	s.lines[pos].store(data, cont)
	s.pos.Store(pos)
}

// copyHistory fills a fresh store with the lines of old, oldest first. If old
// holds more lines than fit, the oldest are dropped.
func (s *logStore) copyHistory(old *logStore) {
	start := int(old.pos.Load()) + 1
	n := old.height
	skip := 0
	if n > s.height {
		skip = n - s.height
	}
	for i := skip; i < n; i++ {
		src := &old.lines[(start+i)%old.height]
		s.lines[i-skip].copyFrom(src)
	}
	s.pos.Store(int64(n - skip - 1))
}

func (s *logStore) get() {
	s.refs.Add(1)
}

func (s *logStore) put() {
	if s.refs.Add(-1) == 0 {
		s.release()
	}
}

func (s *logStore) release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.lines = nil
	s.words = nil
	if s.onRetire != nil {
		s.onRetire()
	}
}

// messages rebuilds the logical messages held by the store, oldest first.
// Empty messages are skipped.
func (s *logStore) messages() []string {
	if s == nil || s.released.Load() {
		return nil
	}
	var out []string
	var parts [][]byte
	pos := int(s.pos.Load())
	for read := 0; read < s.height; read++ {
		line := &s.lines[pos]
		n, cont := line.load()
		buf := make([]byte, n)
		for i := range n {
			buf[i] = line.cell(i)
		}
		parts = append(parts, buf)
		if !cont {
			if msg := joinReversed(parts); msg != "" {
				out = append(out, msg)
			}
			parts = parts[:0]
		}
		pos--
		if pos < 0 {
			pos = s.height - 1
		}
	}
	if msg := joinReversed(parts); msg != "" {
		out = append(out, msg)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func joinReversed(parts [][]byte) string {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	buf := make([]byte, 0, total)
	for i := len(parts) - 1; i >= 0; i-- {
		buf = append(buf, parts[i]...)
	}
	return string(buf)
}
