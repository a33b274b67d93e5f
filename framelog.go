// framelog.go - Log subsystem lifecycle, write path, resize and render entry points

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
	"os"
	"sync"
	"sync/atomic"
)

const (
	minGridColumns  = 80
	minGridRows     = 25
	initialWidthPx  = 800
	initialHeightPx = 600
	resizeNotice    = "framelog: log resized"
)

var errNotInitialized = errors.New("framelog: not initialized")

// FrameLog owns the current log store. Normal writers and resizes serialise
// on wlock; renders and fast-path writers pin the store instead.
type FrameLog struct {
	wlock  sync.Mutex
	cur    atomic.Pointer[logStore]
	font   atomic.Pointer[Font]
	oops   atomic.Bool
	budget atomic.Int64
	status *runtimeStatusStore
}

func NewFrameLog() *FrameLog {
	fl := &FrameLog{status: &runtimeStatusStore{}}
	fl.budget.Store(defaultBudget)
	return fl
}

var defaultLog = NewFrameLog()

// SetBudget limits the bytes a single store may occupy. It applies to the
// next allocation.
func (fl *FrameLog) SetBudget(bytes int64) {
	fl.budget.Store(bytes)
}

// Init brings the log up with the built-in font.
func (fl *FrameLog) Init() {
	fl.InitWithFont(defaultFont())
}

// InitWithFont selects the glyph table and allocates the first store sized
// for an 800x600 surface. It does nothing if the log is already up. If the
// store cannot be allocated the log stays inert.
func (fl *FrameLog) InitWithFont(f *Font) {
	if !f.valid() {
		return
	}
	fl.wlock.Lock()
	defer fl.wlock.Unlock()
	if fl.font.Load() != nil {
		return
	}
	fl.font.Store(f)
	fl.ensureSizeLocked(initialWidthPx, initialHeightPx)
	if fl.cur.Load() == nil {
		fl.font.Store(nil)
	}
}

// Shutdown drops the current store. Pinned readers keep it alive until they
// unpin.
func (fl *FrameLog) Shutdown() {
	fl.wlock.Lock()
	defer fl.wlock.Unlock()
	if s := fl.cur.Swap(nil); s != nil {
		s.put()
	}
	fl.font.Store(nil)
}

func (fl *FrameLog) Initialized() bool {
	return fl.cur.Load() != nil
}

// SetOops marks the process as crashing. While set, every write takes the
// non-blocking path.
func (fl *FrameLog) SetOops(v bool) {
	fl.oops.Store(v)
}

func (fl *FrameLog) OopsInProgress() bool {
	return fl.oops.Load()
}

// acquire pins the current store. The pointer is re-checked after the
// reference is taken so a store swapped out in between is never used.
func (fl *FrameLog) acquire() *logStore {
	for {
		s := fl.cur.Load()
		if s == nil {
			return nil
		}
		s.get()
		if fl.cur.Load() == s {
			return s
		}
		s.put()
	}
}

// Write appends data as one message. With nonBlocking set, or while an oops
// is in progress, the writer lock is only tried; if it is held the text is
// written to the pinned current store without it.
func (fl *FrameLog) Write(data []byte, nonBlocking bool) {
	if len(data) == 0 {
		return
	}
	if nonBlocking || fl.oops.Load() {
		if !fl.wlock.TryLock() {
			fl.writeUnlocked(data)
			return
		}
	} else {
		fl.wlock.Lock()
	}
	writeWrapped(fl.cur.Load(), data)
	fl.wlock.Unlock()
	fl.status.normalWrites.Add(1)
}

func (fl *FrameLog) writeUnlocked(data []byte) {
	s := fl.acquire()
	if s == nil {
		return
	}
	writeWrapped(s, data)
	s.put()
	fl.status.fastWrites.Add(1)
}

func (fl *FrameLog) WriteString(s string, nonBlocking bool) {
	fl.Write([]byte(s), nonBlocking)
}

// EnsureSize grows the store so it holds at least two screens of text for a
// widthPx x heightPx surface.
func (fl *FrameLog) EnsureSize(widthPx, heightPx int) {
	fl.wlock.Lock()
	defer fl.wlock.Unlock()
	fl.ensureSizeLocked(widthPx, heightPx)
}

func (fl *FrameLog) ensureSizeLocked(widthPx, heightPx int) {
	f := fl.font.Load()
	if f == nil {
		return
	}
	x := max(minGridColumns, widthPx/f.Width)
	y := max(minGridRows, heightPx/f.Height)

	old := fl.cur.Load()
	if old != nil {
		x = max(x, old.width)
		y = max(y, old.height)
		if x == old.width && y == old.height {
			return
		}
	}

	s, err := newLogStore(x*2, y*2, fl.budget.Load())
	if err != nil {
		fl.status.failedResizes.Add(1)
		fmt.Fprintf(os.Stderr, "framelog: resize to %dx%d failed: %v\n", x*2, y*2, err)
		return
	}
	s.onRetire = func() { fl.status.retiredStores.Add(1) }
	if old != nil {
		s.copyHistory(old)
	}
	writeWrapped(s, []byte(resizeNotice))
	fl.cur.Store(s)
	fl.status.resizes.Add(1)
	if old != nil {
		old.put()
	}
}

// Draw renders the newest messages onto a raw surface. A cpp of 0 is taken
// from the format. Bad geometry, unknown formats and short buffers are
// ignored.
func (fl *FrameLog) Draw(pix []byte, width, height, stride, cpp int, format PixelFormat, columns int) {
	if width <= 0 || height <= 0 || stride <= 0 || !isKnownFormat(format) {
		return
	}
	if cpp == 0 {
		cpp = formatCpp(format)
	}
	if cpp <= 0 || cpp > 4 || stride < width*cpp {
		return
	}
	if len(pix) < (height-1)*stride+width*cpp {
		return
	}
	f := fl.font.Load()
	if f == nil {
		return
	}
	s := fl.acquire()
	if s == nil {
		return
	}
	defer s.put()

	columns = min(max(columns, 1), width/(f.Width*minGridColumns))
	if columns <= 0 {
		columns = 1
	}
	surf := surface{pix: pix, width: width, height: height, stride: stride, cpp: cpp, format: format}
	fl.status.renders.Add(1)
	fl.status.setColumns(columns)
	if !renderLog(s, f, &surf, columns) {
		fl.status.abortedRenders.Add(1)
	}
}

// Snapshot returns the messages currently held, oldest first.
func (fl *FrameLog) Snapshot() []string {
	s := fl.acquire()
	if s == nil {
		return nil
	}
	defer s.put()
	return s.messages()
}

// Status reports the counters and the geometry of the current store.
func (fl *FrameLog) Status() runtimeStatusSnapshot {
	snap := fl.status.snapshot()
	snap.oops = fl.oops.Load()
	if s := fl.acquire(); s != nil {
		snap.storeWidth, snap.storeHeight = s.width, s.height
		s.put()
	}
	return snap
}

// glyphSize reports the active glyph cell, or an error before Init.
func (fl *FrameLog) glyphSize() (int, int, error) {
	f := fl.font.Load()
	if f == nil {
		return 0, 0, errNotInitialized
	}
	return f.Width, f.Height, nil
}
