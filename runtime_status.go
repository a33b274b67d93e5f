package main

import (
	"fmt"
	"io"
	"sync/atomic"
)

type runtimeStatusSnapshot struct {
	normalWrites   uint64
	fastWrites     uint64
	renders        uint64
	abortedRenders uint64
	resizes        uint64
	failedResizes  uint64
	retiredStores  uint64

	storeWidth  int
	storeHeight int
	columns     int
	oops        bool
}

// runtimeStatusStore is updated from the write and render paths, so every
// counter is a plain atomic and never takes a lock.
type runtimeStatusStore struct {
	normalWrites   atomic.Uint64
	fastWrites     atomic.Uint64
	renders        atomic.Uint64
	abortedRenders atomic.Uint64
	resizes        atomic.Uint64
	failedResizes  atomic.Uint64
	retiredStores  atomic.Uint64

	columns atomic.Int32
}

func (s *runtimeStatusStore) setColumns(n int) {
	s.columns.Store(int32(n))
}

func (s *runtimeStatusStore) snapshot() runtimeStatusSnapshot {
	return runtimeStatusSnapshot{
		normalWrites:   s.normalWrites.Load(),
		fastWrites:     s.fastWrites.Load(),
		renders:        s.renders.Load(),
		abortedRenders: s.abortedRenders.Load(),
		resizes:        s.resizes.Load(),
		failedResizes:  s.failedResizes.Load(),
		retiredStores:  s.retiredStores.Load(),
		columns:        int(s.columns.Load()),
	}
}

func (s runtimeStatusSnapshot) print(w io.Writer) {
	fmt.Fprintf(w, "writes: %d normal, %d fast\n", s.normalWrites, s.fastWrites)
	fmt.Fprintf(w, "renders: %d (%d aborted)\n", s.renders, s.abortedRenders)
	fmt.Fprintf(w, "resizes: %d (%d failed), %d stores retired\n", s.resizes, s.failedResizes, s.retiredStores)
	if s.storeWidth > 0 {
		fmt.Fprintf(w, "store: %dx%d\n", s.storeWidth, s.storeHeight)
	}
	if s.columns > 0 {
		fmt.Fprintf(w, "columns: %d\n", s.columns)
	}
	if s.oops {
		fmt.Fprintln(w, "oops in progress")
	}
}
