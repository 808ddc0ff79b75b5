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
package heap

// Gc is a strong handle to a managed object of type T. Holding a Gc keeps
// the referent reachable for as long as the handle itself is reachable
// (i.e. it must be traced from somewhere, typically another Tracer's
// Trace method or a RootProvider).
type Gc[T Tracer] struct {
	heap *Heap
	id   ID
}

// NewGc allocates obj on h's heap and returns a strong handle to it. fin, if
// non-nil, is invoked at most once when obj becomes unreachable.
func NewGc[T Tracer](h *Heap, obj T, fin Finalizer) Gc[T] {
	h.stats.LiveObjects++

	return Gc[T]{heap: h, id: h.allocate(obj, fin)}
}

// Get dereferences the handle. Holding a Gc does not by itself keep the
// referent alive: it must be reached from a root via Trace. Once the referent
// has been collected, Get returns T's zero value.
func (g Gc[T]) Get() T {
	obj, ok := g.heap.get(g.id)
	if !ok {
		var zero T

		return zero
	}

	return obj.(T)
}

// Trace marks the referent reachable; embed Gc fields directly in other
// Tracer implementations and call this from their Trace method.
func (g Gc[T]) Trace(v *Visitor) {
	v.Mark(g.id)
}

// ID returns the underlying heap identity, for use as a map key (e.g. in
// WeakMap's ephemeron table) or for registering an ephemeron/weak reference.
func (g Gc[T]) ID() ID {
	return g.id
}

// IsZero reports whether g is the zero value (never allocated).
func (g Gc[T]) IsZero() bool {
	return g.heap == nil
}

// WeakGc is a weak handle: it does not keep its referent alive, and Get
// reports ok=false once the referent has been collected. This backs
// WeakRef, WeakMap values are NOT stored this way (they use Ephemeron
// instead, since a WeakMap value must stay alive while the key is alive
// regardless of whether anything else points at the value).
type WeakGc[T Tracer] struct {
	heap *Heap
	id   ID
}

// NewWeakGc constructs a weak handle to an object already allocated via
// NewGc. onCollect, if non-nil, is invoked once the referent is collected
// (used by FinalizationRegistry).
func NewWeakGc[T Tracer](h *Heap, strong Gc[T], onCollect func()) WeakGc[T] {
	h.weakRefs = append(h.weakRefs, weakRefEntry{target: strong.id, notify: onCollect})

	return WeakGc[T]{heap: h, id: strong.id}
}

// Get returns the referent and true, or the zero value and false if it has
// been collected.
func (w WeakGc[T]) Get() (T, bool) {
	obj, ok := w.heap.get(w.id)
	if !ok {
		var zero T

		return zero, false
	}

	return obj.(T), true
}

// Ephemeron is a key/value pair where value is kept alive only while key is
// otherwise reachable (i.e. reachable through some path that does not pass
// through this ephemeron). This is precisely WeakMap's semantics (§4.8,
// GLOSSARY "Ephemeron"): the map holds the pair, but the pair does not keep
// the key alive, and the value is only as alive as the key.
type Ephemeron[K Tracer, V Tracer] struct {
	Key   Gc[K]
	Value Gc[V]
}

// Register records the ephemeron relationship with h so that collection
// cycles honor it. Must be called once per live entry; a WeakMap re-registers
// its surviving entries each time a new key/value pair is inserted.
func (e Ephemeron[K, V]) Register(h *Heap) {
	h.ephemerons = append(h.ephemerons, ephemeron{key: e.Key.id, value: e.Value.id})
}

// Trace marks only the value; the key is deliberately NOT marked here, since
// marking it would defeat the weak semantics. The key must be reachable via
// some other root for the pair to survive a collection.
func (e Ephemeron[K, V]) Trace(v *Visitor) {
	if v.marks.Test(uint(e.Key.id.slot)) {
		v.Mark(e.Value.id)
	}
}
