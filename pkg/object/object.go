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
package object

import (
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/shape"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// PrivateName identifies one private class field/method (`#x`). Two private
// names are distinct even if declared with the same source text in two
// different classes; identity is the pointer.
type PrivateName struct {
	Description string
}

// Runtime is the minimal surface FunctionData's native functions and the
// property machinery need from whatever is currently executing. It is
// declared here — rather than object importing pkg/vm — to keep the
// dependency order GC → Value/Object/Shape → ... → VM intact (§2):
// *realm.Realm implements this interface, and pkg/vm passes its realm
// wherever a Runtime is expected.
type Runtime interface {
	Heap() *heap.Heap
	ShapeRoot() *shape.Root
	// NewError constructs a thrown error Value of the given kind/message
	// (§7's error taxonomy), used by built-ins and by the property
	// machinery itself (TypeError on a non-writable strict-mode write, …).
	NewError(kind string, message string) value.Value
	// IntrinsicPrototype looks up "%<kind>.prototype%" (the zero handle if
	// not yet installed) — consulted by proxyApply to give the "apply" trap
	// a real JS Array for its arguments-list parameter (§9.5.12) rather than
	// a non-conformant placeholder.
	IntrinsicPrototype(kind string) heap.Gc[value.HeapObject]
}

// Object is the single concrete type backing every object kind in §3.2; the
// Kind tag selects behaviour, not a vtable (§9).
type Object struct {
	kind       Kind
	shp        *shape.Shape
	slots      []value.Value
	indexed    *indexedStorage // non-nil only for Array/Arguments
	extensible bool
	private    map[*PrivateName]value.Value
	data       any // kind-specific payload: *FunctionData, *ArrayData, *MapData, *ProxyData, ...
	self       heap.Gc[value.HeapObject]
}

// New constructs a bare object of the given kind using the empty shape for
// that kind rooted at root, with the given prototype.
func New(root *shape.Root, kindName string, kind Kind, prototype heap.Gc[value.HeapObject]) *Object {
	return &Object{
		kind:       kind,
		shp:        root.Empty(kindName, prototype),
		extensible: true,
	}
}

// Kind returns this object's tagged kind.
func (o *Object) Kind() Kind { return o.kind }

// ClassName implements value.HeapObject.
func (o *Object) ClassName() string { return o.kind.String() }

// Trace implements heap.Tracer: every slot, indexed element, private field,
// the prototype, and kind-specific payload references are reported.
func (o *Object) Trace(v *heap.Visitor) {
	for _, s := range o.slots {
		traceValue(v, s)
	}

	if o.indexed != nil {
		for _, e := range o.indexed.dense {
			traceValue(v, e)
		}

		for _, e := range o.indexed.sparse {
			traceValue(v, e)
		}
	}

	for _, pv := range o.private {
		traceValue(v, pv)
	}

	if !o.shp.Prototype().IsZero() {
		o.shp.Prototype().Trace(v)
	}

	if t, ok := o.data.(heap.Tracer); ok && t != nil {
		t.Trace(v)
	}
}

func traceValue(v *heap.Visitor, val value.Value) {
	if obj, ok := val.AsObject(); ok && !obj.IsZero() {
		obj.Trace(v)
	}
}

// Shape returns the object's current shape.
func (o *Object) Shape() *shape.Shape { return o.shp }

// SetPrototype changes o's prototype link (the [[SetPrototypeOf]] abstract
// operation's mechanical half; cycle/extensibility checks are the caller's
// responsibility). Used both by Object.setPrototypeOf and once, at realm
// construction time, to re-parent the global object and every intrinsic onto
// %Object.prototype% once it exists (object/shape construction necessarily
// predates the intrinsics that populate a shape root).
func (o *Object) SetPrototype(prototype heap.Gc[value.HeapObject]) {
	o.shp = o.shp.ChangePrototype(prototype)
}

// Extensible reports the object's extensible bit (§3.2).
func (o *Object) Extensible() bool { return o.extensible }

// PreventExtensions clears the extensible bit (Object.preventExtensions).
func (o *Object) PreventExtensions() { o.extensible = false }

// Data returns the kind-specific payload (caller type-asserts based on Kind()).
func (o *Object) Data() any { return o.data }

// SetData installs the kind-specific payload; used once at construction time
// by each built-in's constructor.
func (o *Object) SetData(d any) { o.data = d }

// slot reads a data slot by index, growing the backing array lazily — shape
// transitions can outrun slot-vector growth when a shared shape is adopted
// by an object for the first time after another object already extended it.
func (o *Object) slot(i int) value.Value {
	if i < 0 || i >= len(o.slots) {
		return value.Undefined()
	}

	return o.slots[i]
}

func (o *Object) setSlot(i int, v value.Value) {
	for len(o.slots) <= i {
		o.slots = append(o.slots, value.Undefined())
	}

	o.slots[i] = v
}

// PrivateGet reads a private field/method value installed by SetPrivate.
func (o *Object) PrivateGet(name *PrivateName) (value.Value, bool) {
	v, ok := o.private[name]
	return v, ok
}

// SetPrivate installs or updates a private field/method value.
func (o *Object) SetPrivate(name *PrivateName, v value.Value) {
	if o.private == nil {
		o.private = make(map[*PrivateName]value.Value)
	}

	o.private[name] = v
}

// HasPrivate reports whether this object carries the given private name,
// used for the `#x in obj` ergonomic brand check.
func (o *Object) HasPrivate(name *PrivateName) bool {
	_, ok := o.private[name]
	return ok
}

// indexedStorage backs Array/Arguments/TypedArray integer-keyed storage
// (§4.7: "a dense packed ... representation is a permitted optimisation
// behind the same observable interface"; sparse is allowed but not
// required). dense holds indices [0,len(dense)) contiguously; any
// higher/holier index spills into sparse.
type indexedStorage struct {
	dense  []value.Value
	holes  []bool // true where dense[i] is a hole (no own property)
	sparse map[uint32]value.Value
	length uint32
}

func newIndexedStorage() *indexedStorage {
	return &indexedStorage{sparse: make(map[uint32]value.Value)}
}
