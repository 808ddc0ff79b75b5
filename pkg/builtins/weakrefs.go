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
package builtins

import (
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// boxedValue heap-allocates an arbitrary value.Value so it can serve as the
// V side of a heap.Ephemeron: Ephemeron's type parameters both require
// heap.Tracer, and value.Value itself (a plain struct, not heap-managed)
// doesn't implement it — only the object a Value might wrap does.
type boxedValue struct {
	v value.Value
}

func (b *boxedValue) Trace(v *heap.Visitor) {
	traceBuiltinValue(v, b.v)
}

func (b *boxedValue) ClassName() string { return "boxedValue" }

// weakEntry is one WeakMap/WeakSet slot. Unlike mapData's strong entries, a
// weak entry's value survives collection only as long as key is otherwise
// reachable — enforced by eph, registered with the heap at insertion time
// (§24.3's WeakMap: "the specified key/value pair ... does not prevent the
// key from being garbage-collected").
type weakEntry struct {
	key     value.Value
	box     *boxedValue
	boxRef  heap.Gc[*boxedValue]
	eph     heap.Ephemeron[value.HeapObject, *boxedValue]
	deleted bool
}

// weakMapData intentionally does NOT implement heap.Tracer: if it did, the
// owning WeakMap/WeakSet object's own reachability would keep every entry's
// key and value strongly alive, exactly the strong-reference behavior
// WeakMap exists to avoid. Liveness instead runs entirely through each
// entry's already-registered Ephemeron, independent of whether this
// weakMapData itself is still reachable.
type weakMapData struct {
	r       *realm.Realm
	entries []weakEntry
}

func (w *weakMapData) find(key value.Value) int {
	for i, e := range w.entries {
		if !e.deleted && value.SameValueZero(e.key, key) {
			return i
		}
	}

	return -1
}

func (w *weakMapData) set(keyHandle heap.Gc[value.HeapObject], key, val value.Value) {
	if i := w.find(key); i >= 0 {
		w.entries[i].box.v = val
		return
	}

	box := &boxedValue{v: val}
	boxRef := heap.NewGc[*boxedValue](w.r.Heap(), box, nil)
	eph := heap.Ephemeron[value.HeapObject, *boxedValue]{Key: keyHandle, Value: boxRef}
	eph.Register(w.r.Heap())

	w.entries = append(w.entries, weakEntry{key: key, box: box, boxRef: boxRef, eph: eph})
}

func mustWeakMapData(rt object.Runtime, this value.Value, what string) (*weakMapData, error) {
	h, ok := this.AsObject()
	if !ok {
		return nil, throwType(rt, "%s called on a non-object", what)
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, throwType(rt, "%s called on a non-object", what)
	}

	d, ok := o.Data().(*weakMapData)
	if !ok {
		return nil, throwType(rt, "%s called on incompatible receiver", what)
	}

	return d, nil
}

// requireWeakKey implements CanBeHeldWeakly (§9.10.4): only objects and
// (when present) unregistered symbols may be a WeakMap/WeakSet/WeakRef/
// FinalizationRegistry target. Only the object half is implemented; symbols
// are not accepted as weak targets.
func requireWeakKey(rt object.Runtime, v value.Value) (heap.Gc[value.HeapObject], error) {
	h, ok := v.AsObject()
	if !ok {
		return heap.Gc[value.HeapObject]{}, throwType(rt, "Invalid value used as weak map key")
	}

	return h, nil
}

func installWeakRefs(r *realm.Realm) {
	installWeakMap(r)
	installWeakSet(r)
	installWeakRef(r)
	installFinalizationRegistry(r)
}

func installWeakMap(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("WeakMap", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		obj := object.New(r.ShapeRoot(), "WeakMap", object.KindWeakMap, r.IntrinsicPrototype("WeakMap"))
		obj.SetData(&weakMapData{r: r})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		iterable := arg(args, 0)
		if !iterable.IsNullish() {
			items, err := iterableToSlice(rt, iterable)
			if err != nil {
				return value.Value{}, err
			}

			d := obj.Data().(*weakMapData)

			for _, item := range items {
				pair, err := arrayLikeToSlice(rt, item)
				if err != nil {
					return value.Value{}, throwType(rt, "iterable for WeakMap should have array-like entries")
				}

				kh, err := requireWeakKey(rt, arg(pair, 0))
				if err != nil {
					return value.Value{}, err
				}

				d.set(kh, arg(pair, 0), arg(pair, 1))
			}
		}

		return value.Obj(ref), nil
	})

	c.definePrototype("WeakMap", ctorVal, ctorObj, proto, protoRef)
	c.define("WeakMap", ctorVal)

	c.method(proto, "get", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		d, err := mustWeakMapData(rt, this, "WeakMap.prototype.get")
		if err != nil {
			return value.Value{}, err
		}

		if i := d.find(arg(args, 0)); i >= 0 {
			return d.entries[i].box.v, nil
		}

		return value.Undefined(), nil
	})

	c.method(proto, "set", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		d, err := mustWeakMapData(rt, this, "WeakMap.prototype.set")
		if err != nil {
			return value.Value{}, err
		}

		kh, err := requireWeakKey(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		d.set(kh, arg(args, 0), arg(args, 1))

		return this, nil
	})

	c.method(proto, "has", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		d, err := mustWeakMapData(rt, this, "WeakMap.prototype.has")
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(d.find(arg(args, 0)) >= 0), nil
	})

	c.method(proto, "delete", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		d, err := mustWeakMapData(rt, this, "WeakMap.prototype.delete")
		if err != nil {
			return value.Value{}, err
		}

		if i := d.find(arg(args, 0)); i >= 0 {
			d.entries[i].deleted = true
			return value.Bool(true), nil
		}

		return value.Bool(false), nil
	})
}

func installWeakSet(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("WeakSet", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		obj := object.New(r.ShapeRoot(), "WeakSet", object.KindWeakSet, r.IntrinsicPrototype("WeakSet"))
		obj.SetData(&weakMapData{r: r})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		iterable := arg(args, 0)
		if !iterable.IsNullish() {
			items, err := iterableToSlice(rt, iterable)
			if err != nil {
				return value.Value{}, err
			}

			d := obj.Data().(*weakMapData)

			for _, v := range items {
				kh, err := requireWeakKey(rt, v)
				if err != nil {
					return value.Value{}, err
				}

				d.set(kh, v, v)
			}
		}

		return value.Obj(ref), nil
	})

	c.definePrototype("WeakSet", ctorVal, ctorObj, proto, protoRef)
	c.define("WeakSet", ctorVal)

	c.method(proto, "add", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		d, err := mustWeakMapData(rt, this, "WeakSet.prototype.add")
		if err != nil {
			return value.Value{}, err
		}

		v := arg(args, 0)

		kh, err := requireWeakKey(rt, v)
		if err != nil {
			return value.Value{}, err
		}

		d.set(kh, v, v)

		return this, nil
	})

	c.method(proto, "has", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		d, err := mustWeakMapData(rt, this, "WeakSet.prototype.has")
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(d.find(arg(args, 0)) >= 0), nil
	})

	c.method(proto, "delete", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		d, err := mustWeakMapData(rt, this, "WeakSet.prototype.delete")
		if err != nil {
			return value.Value{}, err
		}

		if i := d.find(arg(args, 0)); i >= 0 {
			d.entries[i].deleted = true
			return value.Bool(true), nil
		}

		return value.Bool(false), nil
	})
}

// weakRefData backs %WeakRef%: a single heap.WeakGc to the target, which
// Get (deref) simply tries to read.
type weakRefData struct {
	target heap.WeakGc[value.HeapObject]
}

func installWeakRef(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("WeakRef", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		kh, err := requireWeakKey(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		obj := object.New(r.ShapeRoot(), "WeakRef", object.KindWeakRef, r.IntrinsicPrototype("WeakRef"))
		weak := heap.NewWeakGc[value.HeapObject](r.Heap(), kh, nil)
		obj.SetData(&weakRefData{target: weak})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		return value.Obj(ref), nil
	})

	c.definePrototype("WeakRef", ctorVal, ctorObj, proto, protoRef)
	c.define("WeakRef", ctorVal)

	c.method(proto, "deref", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		h, ok := this.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "WeakRef.prototype.deref called on a non-object")
		}

		o, ok := h.Get().(*object.Object)
		if !ok {
			return value.Value{}, throwType(rt, "WeakRef.prototype.deref called on a non-object")
		}

		d, ok := o.Data().(*weakRefData)
		if !ok {
			return value.Value{}, throwType(rt, "WeakRef.prototype.deref called on incompatible receiver")
		}

		if target, ok := d.target.Get(); ok {
			if o, ok := target.(*object.Object); ok {
				return value.Obj(o.Self()), nil
			}
		}

		return value.Undefined(), nil
	})
}

// finalizationRegistryData backs %FinalizationRegistry%: each registered
// target gets its own heap.WeakGc whose onCollect callback appends the
// held value to pending rather than calling the callback from within
// Collect. Nothing drains pending: no cleanup job is enqueued, and the
// stored cleanup callback is never called.
type finalizationRegistryData struct {
	cleanup value.Value
	r       *realm.Realm
	pending []value.Value
}

func installFinalizationRegistry(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("FinalizationRegistry", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		if !isCallable(cb) {
			return value.Value{}, throwType(rt, "FinalizationRegistry callback must be a function")
		}

		obj := object.New(r.ShapeRoot(), "FinalizationRegistry", object.KindFinalizationRegistry, r.IntrinsicPrototype("FinalizationRegistry"))
		obj.SetData(&finalizationRegistryData{cleanup: cb, r: r})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		return value.Obj(ref), nil
	})

	c.definePrototype("FinalizationRegistry", ctorVal, ctorObj, proto, protoRef)
	c.define("FinalizationRegistry", ctorVal)

	c.method(proto, "register", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		h, ok := this.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "FinalizationRegistry.prototype.register called on a non-object")
		}

		o, ok := h.Get().(*object.Object)
		if !ok {
			return value.Value{}, throwType(rt, "FinalizationRegistry.prototype.register called on a non-object")
		}

		d, ok := o.Data().(*finalizationRegistryData)
		if !ok {
			return value.Value{}, throwType(rt, "FinalizationRegistry.prototype.register called on incompatible receiver")
		}

		target := arg(args, 0)

		th, err := requireWeakKey(rt, target)
		if err != nil {
			return value.Value{}, err
		}

		if oh, ok := arg(args, 1).AsObject(); ok && value.SameValue(target, value.Obj(oh)) {
			return value.Value{}, throwType(rt, "FinalizationRegistry target and held value must not be the same object")
		}

		held := arg(args, 1)
		heap.NewWeakGc[value.HeapObject](r.Heap(), th, func() {
			d.pending = append(d.pending, held)
		})

		return value.Undefined(), nil
	})

	c.method(proto, "unregister", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		// Unregistration requires tracking a token -> weak-handle mapping this
		// build's heap.WeakGc doesn't expose a cancel hook for; reporting "not
		// found" is conservative and never incorrectly drops a pending
		// cleanup callback.
		return value.Bool(false), nil
	})
}
