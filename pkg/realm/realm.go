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

// Package realm implements §3.6's Realm: the bundle of a global object, its
// environment record, per-realm shape roots, a managed heap, an intrinsics
// table, and Intl providers that together constitute one independent JS
// universe. Multiple realms may coexist (iframes, Workers, vm.Context-style
// host sandboxes); every object carries its realm of origin via the shape
// root and heap it was allocated from.
package realm

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ecmaforge/ecmaforge/internal/diag"
	"github.com/ecmaforge/ecmaforge/pkg/envrec"
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/intern"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/shape"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// Realm is a single independent JS universe: its own heap (§4.8 "Heap is a
// single realm's managed heap"), its own shape-transition roots (§3.3), its
// own interner, its own global object/environment, its own intrinsics table,
// and its own diagnostics sink — nothing here is a process-wide singleton
// (§9).
type Realm struct {
	heap   *heap.Heap
	shapes *shape.Root
	syms   *intern.Interner
	diag   diag.Sink

	globalObj    *object.Object
	globalObjRef heap.Gc[value.HeapObject]
	globalEnv    *envrec.Environment

	intrinsics map[string]value.Value
	intl       *IntlProviders
	rng        *rand.Rand
}

// New constructs a fresh realm: an empty heap and shape root, a global
// object with no prototype yet (object/shape construction necessarily
// predates the intrinsics that will populate one, per object.Object.
// SetPrototype's doc comment), and the paired object/declarative global
// environment record §3.4 describes. sink is this realm's diagnostics sink;
// nil defaults to internal/diag's logrus-backed one, matching §3.6's
// additional Diagnostics field.
func New(sink diag.Sink) *Realm {
	if sink == nil {
		sink = diag.NewLogrusSink()
	}

	r := &Realm{
		heap:       heap.New(sink),
		shapes:     shape.NewRoot(),
		syms:       intern.New(),
		diag:       sink,
		intrinsics: make(map[string]value.Value),
		intl:       newIntlProviders(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	r.globalObj = object.New(r.shapes, "global", object.KindOrdinary, heap.Gc[value.HeapObject]{})
	r.globalObjRef = heap.NewGc[value.HeapObject](r.heap, r.globalObj, nil)
	r.globalObj.SetSelf(r.globalObjRef)
	r.globalEnv = envrec.NewGlobal(r.globalObj, r.globalObjRef, r.syms)

	r.heap.AddRoot(r)

	return r
}

// Heap implements object.Runtime.
func (r *Realm) Heap() *heap.Heap { return r.heap }

// ShapeRoot implements object.Runtime.
func (r *Realm) ShapeRoot() *shape.Root { return r.shapes }

// Random returns a pseudo-random float64 in [0, 1), backing Math.random
// (§21.3.2.27, "implementation-dependent" by design). Each realm carries
// its own source so two realms never share RNG state.
func (r *Realm) Random() float64 { return r.rng.Float64() }

// NewError implements object.Runtime: constructs a thrown error value of
// the given kind (TypeError, RangeError, ReferenceError, SyntaxError, ...)
// and message. Before %Error.prototype% and its per-kind subclasses exist
// (pkg/builtins/fundamental, not yet wired into this realm), the error
// object is plain-Ordinary-prototyped; pkg/builtins reparents these via
// SetIntrinsic + a later pass, exactly as the global object itself is
// reparented once %Object.prototype% exists.
func (r *Realm) NewError(kind, message string) value.Value {
	errObj := object.New(r.shapes, kind, object.KindError, r.intrinsicPrototype(kind))
	ref := heap.NewGc[value.HeapObject](r.heap, errObj, nil)
	errObj.SetSelf(ref)

	nameKey := value.StringKey(value.NewString("name"))
	messageKey := value.StringKey(value.NewString("message"))

	// A fresh Ordinary object is extensible with no own properties yet, so
	// Set's own "no such property, but extensible" branch adds both as
	// plain writable/enumerable/configurable data properties — the shape
	// Object.DefineOwnProperty would otherwise have to build by hand.
	_ = errObj.Set(r, nameKey, value.Str(value.NewString(kind)), value.Undefined(), false)
	_ = errObj.Set(r, messageKey, value.Str(value.NewString(message)), value.Undefined(), false)

	return value.Obj(ref)
}

// intrinsicPrototype looks up "%<kind>.prototype%" in the intrinsics table,
// falling back to the zero (no-prototype) handle when builtins haven't
// populated it yet — never nil-panics on an error constructed before
// pkg/builtins runs (e.g. an early SyntaxError during module loading).
func (r *Realm) intrinsicPrototype(kind string) heap.Gc[value.HeapObject] {
	v, ok := r.intrinsics[fmt.Sprintf("%%%s.prototype%%", kind)]
	if !ok {
		return heap.Gc[value.HeapObject]{}
	}

	h, ok := v.AsObject()
	if !ok {
		return heap.Gc[value.HeapObject]{}
	}

	return h
}

// IntrinsicPrototype exposes intrinsicPrototype to other packages (pkg/vm's
// object/array/arguments allocation, pkg/builtins' own bootstrapping) that
// need a named intrinsic's prototype handle without reaching into the
// intrinsics table's string-keyed format themselves.
func (r *Realm) IntrinsicPrototype(kind string) heap.Gc[value.HeapObject] {
	return r.intrinsicPrototype(kind)
}

// ObjectPrototype returns %Object.prototype%, or the zero handle before
// pkg/builtins has constructed it.
func (r *Realm) ObjectPrototype() heap.Gc[value.HeapObject] {
	return r.intrinsicPrototype("Object")
}

// Intrinsic looks up a well-known intrinsic value (e.g. "%Array%",
// "%Array.prototype%", "%Symbol.iterator%") by its full bracketed name.
func (r *Realm) Intrinsic(name string) (value.Value, bool) {
	v, ok := r.intrinsics[name]

	return v, ok
}

// SetIntrinsic registers or replaces a named intrinsic, the mechanism
// pkg/builtins uses to populate the table this realm starts out empty.
func (r *Realm) SetIntrinsic(name string, v value.Value) {
	r.intrinsics[name] = v
}

// Intrinsics returns every registered intrinsic name, for a debugger or
// test harness that wants to dump the full table (pkg/debugadapter's
// "evaluate in realm" support walks this to resolve bare %Name% references).
func (r *Realm) Intrinsics() map[string]value.Value {
	return r.intrinsics
}

// Syms returns this realm's shared interner, needed by the lexer/parser
// (identifier text) and the bytecode compiler/envrec (BindingName.Name) to
// agree on one Sym numbering for the realm's lifetime.
func (r *Realm) Syms() *intern.Interner { return r.syms }

// Diagnostics returns this realm's diagnostics sink (§3.6, and
// Context.Diagnostics per §6's expansion).
func (r *Realm) Diagnostics() diag.Sink { return r.diag }

// GlobalObject returns the realm's global object (backs `var`/function
// declarations and is the target of `this` at top-level sloppy-mode script
// code).
func (r *Realm) GlobalObject() *object.Object { return r.globalObj }

// GlobalObjectRef returns a heap handle to the global object, for
// constructing Values that reference it (property receivers, `this`).
func (r *Realm) GlobalObjectRef() heap.Gc[value.HeapObject] { return r.globalObjRef }

// GlobalEnv returns the realm's single global environment record — the
// root of the lexical-environment chain every script/module executed in
// this realm is ultimately parented under.
func (r *Realm) GlobalEnv() *envrec.Environment { return r.globalEnv }

// RebindGlobalPrototype re-parents the global object onto proto (normally
// %Object.prototype%, once pkg/builtins has constructed it) — the
// [[SetPrototypeOf]] step realm bootstrapping needs because the global
// object is necessarily allocated before any intrinsic exists to be its
// prototype.
func (r *Realm) RebindGlobalPrototype(proto heap.Gc[value.HeapObject]) {
	r.globalObj.SetPrototype(proto)
}

// Roots implements heap.RootProvider: the global object, the global
// environment's full chain (which in practice is just itself, since nothing
// is lexically outside the global environment), and every intrinsic are
// this realm's GC roots. Live call frames, closures, and job-queue
// continuations register their own roots (pkg/vm, pkg/job) independently —
// a realm's Roots only covers what exists before any script has run.
func (r *Realm) Roots(v *heap.Visitor) {
	r.globalObjRef.Trace(v)
	r.globalEnv.Trace(v)

	for _, iv := range r.intrinsics {
		if h, ok := iv.AsObject(); ok {
			h.Trace(v)
		}
	}
}
