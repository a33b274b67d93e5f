// panic_surfaces.go - Surfaces the log is drawn onto when the process crashes

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
	"cmp"
	"fmt"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/zyedidia/generic/mapset"
)

type panicTarget struct {
	pix     []byte
	width   int
	height  int
	stride  int
	cpp     int
	format  PixelFormat
	columns int
}

// PanicSurface is a framebuffer registered for crash rendering. Until Update
// is called it has no mapping and is skipped.
type PanicSurface struct {
	target atomic.Pointer[panicTarget]
	reg    *panicRegistry
	seq    uint64
}

// Update points the surface at a new mapping. Columns reset to one.
func (p *PanicSurface) Update(pix []byte, width, height, stride, cpp int, format PixelFormat) {
	fmt.Fprintf(os.Stderr, "panic_surfaces: updating %dx%d %v surface\n", width, height, format)
	p.target.Store(&panicTarget{
		pix: pix, width: width, height: height, stride: stride, cpp: cpp, format: format, columns: 1,
	})
}

func (p *PanicSurface) SetColumns(n int) {
	for {
		old := p.target.Load()
		if old == nil {
			return
		}
		t := *old
		t.columns = n
		if p.target.CompareAndSwap(old, &t) {
			return
		}
	}
}

func (p *PanicSurface) Unregister() {
	if p.reg != nil {
		p.reg.remove(p)
	}
}

// panicRegistry keeps the set of surfaces. The crash path reads a published
// slice, in registration order, and never takes the mutex.
type panicRegistry struct {
	mu       sync.Mutex
	nextSeq  uint64
	surfaces mapset.Set[*PanicSurface]
	list     atomic.Pointer[[]*PanicSurface]
	log      *FrameLog
}

func newPanicRegistry(log *FrameLog) *panicRegistry {
	return &panicRegistry{surfaces: mapset.New[*PanicSurface](), log: log}
}

var panicSurfaces = newPanicRegistry(defaultLog)

func (r *panicRegistry) register() *PanicSurface {
	fmt.Fprintln(os.Stderr, "panic_surfaces: adding panic surface")
	r.mu.Lock()
	r.nextSeq++
	p := &PanicSurface{reg: r, seq: r.nextSeq}
	r.surfaces.Put(p)
	r.publishLocked()
	r.mu.Unlock()
	return p
}

func (r *panicRegistry) remove(p *PanicSurface) {
	r.mu.Lock()
	if r.surfaces.Has(p) {
		r.surfaces.Remove(p)
		r.publishLocked()
	}
	r.mu.Unlock()
}

func (r *panicRegistry) publishLocked() {
	list := make([]*PanicSurface, 0, r.surfaces.Size())
	r.surfaces.Each(func(p *PanicSurface) {
		list = append(list, p)
	})
	slices.SortFunc(list, func(a, b *PanicSurface) int {
		return cmp.Compare(a.seq, b.seq)
	})
	r.list.Store(&list)
}

func (r *panicRegistry) count() int {
	if l := r.list.Load(); l != nil {
		return len(*l)
	}
	return 0
}

// notify draws the log once onto every mapped surface.
func (r *panicRegistry) notify() int {
	l := r.list.Load()
	if l == nil {
		return 0
	}
	drawn := 0
	for _, p := range *l {
		t := p.target.Load()
		if t == nil || t.pix == nil {
			continue
		}
		r.log.Draw(t.pix, t.width, t.height, t.stride, t.cpp, t.format, t.columns)
		drawn++
	}
	return drawn
}

// RegisterPanicSurface adds a surface to the default registry.
func RegisterPanicSurface() *PanicSurface {
	return panicSurfaces.register()
}

// NotifyPanic renders the default log onto every registered surface and
// reports how many were drawn.
func NotifyPanic() int {
	return panicSurfaces.notify()
}
