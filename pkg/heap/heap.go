// Copyright Ecmaforge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package heap implements the engine's tracing garbage collector (§4.8). It
// is the sole owner of object and string allocations; there is no reference
// counting on the managed heap. The collector is cooperative and
// stop-the-world: it never runs concurrently with the interpreter.
package heap

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/ecmaforge/ecmaforge/internal/diag"
)

// ID identifies one managed cell. The low bits are a slot index into the
// heap's cell table; the high bits are a generation counter that lets a
// WeakGc detect that its slot was recycled for an unrelated object.
type ID struct {
	slot uint32
	gen  uint32
}

// Tracer is implemented by every type stored on the managed heap. Trace must
// report every outgoing reference to another managed cell by calling
// v.Mark for each one; it is invoked once per object per collection cycle
// during the mark phase.
type Tracer interface {
	Trace(v *Visitor)
}

// Finalizer is invoked at most once per object, in the "unreachable and
// collected" phase (§4.8). A finalizer that resurrects its object (by
// stashing a Gc handle to it somewhere reachable) is kept for one extra
// cycle; from then on it is freed like any other object once it is
// unreachable, and its finalizer is not run again.
type Finalizer func(Tracer)

// RootProvider is registered with a Heap so the mark phase can find every
// live call frame's value stack, every environment record referenced by live
// frames, the realm's global object, the Intrinsics table, pending jobs, and
// host-anchored handles (§4.8's root list).
type RootProvider interface {
	Roots(v *Visitor)
}

type cell struct {
	alive       bool
	gen         uint32
	marked      bool
	resurrected bool
	obj         Tracer
	finalizer   Finalizer
}

// Stats reports counters a host can inspect via Context.Heap().
type Stats struct {
	LiveObjects   uint64
	TotalSlots    uint64
	Collections   uint64
	LastFreed     uint64
	LastFinalized uint64
}

// Heap is a single realm's managed heap (§3.6: realms are shape/heap
// local). It is not safe for concurrent use from more than one goroutine,
// matching "the interpreter thread" ownership model of §5.
type Heap struct {
	cells       []cell
	free        []uint32
	roots       []RootProvider
	ephemerons  []ephemeron
	weakRefs    []weakRefEntry
	sink        diag.Sink
	liveAtLast  uint64
	allocsSince uint64
	// growthThreshold is the live/total ratio heuristic threshold (§4.8).
	growthThreshold float64
	stats           Stats
}

type ephemeron struct {
	key   ID
	value ID
}

type weakRefEntry struct {
	target ID
	notify func()
}

// New constructs an empty heap. sink may be diag.Discard in tests.
func New(sink diag.Sink) *Heap {
	if sink == nil {
		sink = diag.Discard
	}

	return &Heap{sink: sink, growthThreshold: 2.0}
}

// AddRoot registers a root provider (a call-frame stack, an environment
// chain, the realm's global object, ...). Root providers are walked on every
// collection until removed.
func (h *Heap) AddRoot(p RootProvider) {
	h.roots = append(h.roots, p)
}

// RemoveRoot unregisters a root provider previously added with AddRoot.
func (h *Heap) RemoveRoot(p RootProvider) {
	for i, r := range h.roots {
		if r == p {
			h.roots = append(h.roots[:i], h.roots[i+1:]...)
			return
		}
	}
}

// Stats returns a snapshot of heap statistics.
func (h *Heap) Stats() Stats {
	return h.stats
}

// allocate inserts obj into the cell table, reusing a freed slot when one is
// available, and returns its ID.
func (h *Heap) allocate(obj Tracer, fin Finalizer) ID {
	h.allocsSince++
	h.stats.TotalSlots++

	if n := len(h.free); n > 0 {
		slot := h.free[n-1]
		h.free = h.free[:n-1]
		c := &h.cells[slot]
		c.alive = true
		c.obj = obj
		c.finalizer = fin
		c.marked = false
		c.resurrected = false

		h.maybeCollect()

		return ID{slot: slot, gen: c.gen}
	}

	slot := uint32(len(h.cells))
	h.cells = append(h.cells, cell{alive: true, obj: obj, finalizer: fin})
	h.maybeCollect()

	return ID{slot: slot, gen: 0}
}

// maybeCollect triggers a collection under the live/total ratio heuristic
// described in §4.8.
func (h *Heap) maybeCollect() {
	if len(h.cells) < 256 {
		return
	}

	live := h.stats.LiveObjects
	if live == 0 {
		live = 1
	}

	if float64(len(h.cells))/float64(live) >= h.growthThreshold {
		h.Collect()
	}
}

func (h *Heap) get(id ID) (Tracer, bool) {
	if int(id.slot) >= len(h.cells) {
		return nil, false
	}

	c := &h.cells[id.slot]
	if !c.alive || c.gen != id.gen {
		return nil, false
	}

	return c.obj, true
}

// Collect runs one full mark-sweep cycle. It is synchronous and
// stop-the-world: callers must ensure no other goroutine touches this heap
// concurrently (§4.8, §5).
func (h *Heap) Collect() {
	marks := bitset.New(uint(len(h.cells)))
	v := &Visitor{heap: h, marks: marks}

	for _, r := range h.roots {
		r.Roots(v)
	}

	// Ephemerons: a value is reachable only while its key is otherwise
	// reachable. Iterate to a fixpoint since marking a value can itself
	// make other ephemeron keys reachable transitively.
	for changed := true; changed; {
		changed = false

		for _, e := range h.ephemerons {
			if marks.Test(uint(e.key.slot)) && !marks.Test(uint(e.value.slot)) {
				v.Mark(e.value)
				changed = true
			}
		}
	}

	var freed, finalized uint64

	for i := range h.cells {
		c := &h.cells[i]
		if !c.alive {
			continue
		}

		if marks.Test(uint(i)) {
			c.marked = false
			c.resurrected = false

			continue
		}

		if c.finalizer != nil && !c.resurrected {
			c.resurrected = true
			c.finalizer(c.obj)
			c.finalizer = nil
			finalized++

			// Give the finalizer one chance to have anchored this object
			// elsewhere; re-check reachability would require a second mark
			// pass, so conservatively keep it alive for exactly one more
			// cycle per §4.8; the next collection frees it if it is still
			// unmarked, without running a finalizer again.
			continue
		}

		c.alive = false
		c.obj = nil
		c.gen++
		h.free = append(h.free, uint32(i))
		freed++
	}

	h.pruneWeakRefs(marks)

	live := uint64(0)
	for i := range h.cells {
		if h.cells[i].alive {
			live++
		}
	}

	h.stats.LiveObjects = live
	h.stats.Collections++
	h.stats.LastFreed = freed
	h.stats.LastFinalized = finalized
	h.allocsSince = 0

	h.sink.Debugf("heap", "gc cycle %d: freed=%d finalized=%d live=%d",
		h.stats.Collections, freed, finalized, live)
}

func (h *Heap) pruneWeakRefs(marks *bitset.BitSet) {
	kept := h.weakRefs[:0]

	for _, w := range h.weakRefs {
		c := &h.cells[w.target.slot]
		if c.alive && c.gen == w.target.gen && marks.Test(uint(w.target.slot)) {
			kept = append(kept, w)
			continue
		}

		if w.notify != nil {
			w.notify()
		}
	}

	h.weakRefs = kept
}

// Visitor is passed to Tracer.Trace and RootProvider.Roots during the mark
// phase; it records reachability without exposing the heap's internals.
type Visitor struct {
	heap  *Heap
	marks *bitset.BitSet
}

// Mark records id (and everything it transitively references) as reachable.
func (v *Visitor) Mark(id ID) {
	if int(id.slot) >= len(v.heap.cells) {
		return
	}

	if v.marks.Test(uint(id.slot)) {
		return
	}

	c := &v.heap.cells[id.slot]
	if !c.alive || c.gen != id.gen {
		return
	}

	v.marks.Set(uint(id.slot))

	if c.obj != nil {
		c.obj.Trace(v)
	}
}
