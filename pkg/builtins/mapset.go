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

// mapEntry is one Map/Set slot. deleted entries stay in place (rather than
// being spliced out) so a live iterator holding an index into entries never
// skips or re-visits a neighbor, mirroring newArrayIterator's own
// index-into-a-growable-backing-store approach.
type mapEntry struct {
	key, val value.Value
	deleted  bool
}

// mapData backs both %Map% and %Set% (a Set is a Map whose val is unused);
// insertion order is preserved for iteration (§24.1.3.5 et al) and key
// equality is SameValueZero (§24.1.1.1's MapData "-0 and +0 are the same
// key" footnote).
type mapData struct {
	entries []mapEntry
}

func (m *mapData) Trace(v *heap.Visitor) {
	for _, e := range m.entries {
		if e.deleted {
			continue
		}

		traceBuiltinValue(v, e.key)
		traceBuiltinValue(v, e.val)
	}
}

func traceBuiltinValue(v *heap.Visitor, val value.Value) {
	if h, ok := val.AsObject(); ok && !h.IsZero() {
		h.Trace(v)
	}
}

func (m *mapData) find(key value.Value) int {
	for i, e := range m.entries {
		if !e.deleted && value.SameValueZero(e.key, key) {
			return i
		}
	}

	return -1
}

func (m *mapData) size() int {
	n := 0

	for _, e := range m.entries {
		if !e.deleted {
			n++
		}
	}

	return n
}

func mustMapData(rt object.Runtime, this value.Value, what string) (*object.Object, *mapData, error) {
	h, ok := this.AsObject()
	if !ok {
		return nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	d, ok := o.Data().(*mapData)
	if !ok {
		return nil, nil, throwType(rt, "%s called on incompatible receiver", what)
	}

	return o, d, nil
}

func installMapSet(r *realm.Realm) {
	installMap(r)
	installSet(r)
}

func installMap(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Map", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		obj := object.New(r.ShapeRoot(), "Map", object.KindMap, r.IntrinsicPrototype("Map"))
		obj.SetData(&mapData{})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		iterable := arg(args, 0)
		if !iterable.IsNullish() {
			items, err := iterableToSlice(rt, iterable)
			if err != nil {
				return value.Value{}, err
			}

			d := obj.Data().(*mapData)

			for _, item := range items {
				pair, err := arrayLikeToSlice(rt, item)
				if err != nil {
					return value.Value{}, throwType(rt, "iterable for Map should have array-like entries")
				}

				k := arg(pair, 0)
				v := arg(pair, 1)

				if i := d.find(k); i >= 0 {
					d.entries[i].val = v
				} else {
					d.entries = append(d.entries, mapEntry{key: k, val: v})
				}
			}
		}

		return value.Obj(ref), nil
	})

	c.definePrototype("Map", ctorVal, ctorObj, proto, protoRef)
	c.define("Map", ctorVal)

	c.accessor(proto, "size", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.size")
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(int32(d.size())), nil
	})

	c.method(proto, "get", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.get")
		if err != nil {
			return value.Value{}, err
		}

		if i := d.find(arg(args, 0)); i >= 0 {
			return d.entries[i].val, nil
		}

		return value.Undefined(), nil
	})

	c.method(proto, "set", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.set")
		if err != nil {
			return value.Value{}, err
		}

		k, v := arg(args, 0), arg(args, 1)
		if i := d.find(k); i >= 0 {
			d.entries[i].val = v
		} else {
			d.entries = append(d.entries, mapEntry{key: k, val: v})
		}

		return this, nil
	})

	c.method(proto, "has", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.has")
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(d.find(arg(args, 0)) >= 0), nil
	})

	c.method(proto, "delete", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.delete")
		if err != nil {
			return value.Value{}, err
		}

		if i := d.find(arg(args, 0)); i >= 0 {
			d.entries[i].deleted = true
			return value.Bool(true), nil
		}

		return value.Bool(false), nil
	})

	c.method(proto, "clear", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.clear")
		if err != nil {
			return value.Value{}, err
		}

		d.entries = nil

		return value.Undefined(), nil
	})

	c.method(proto, "forEach", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.forEach")
		if err != nil {
			return value.Value{}, err
		}

		cb := arg(args, 0)
		if !isCallable(cb) {
			return value.Value{}, throwType(rt, "callback is not a function")
		}

		cbThis := arg(args, 1)

		for i := 0; i < len(d.entries); i++ {
			if d.entries[i].deleted {
				continue
			}

			if _, err := callValue(rt, cb, cbThis, []value.Value{d.entries[i].val, d.entries[i].key, this}); err != nil {
				return value.Value{}, err
			}
		}

		return value.Undefined(), nil
	})

	c.method(proto, "keys", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.keys")
		if err != nil {
			return value.Value{}, err
		}

		return newMapIterator(r, d, mapIterKeys), nil
	})

	c.method(proto, "values", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.values")
		if err != nil {
			return value.Value{}, err
		}

		return newMapIterator(r, d, mapIterValues), nil
	})

	c.method(proto, "entries", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype.entries")
		if err != nil {
			return value.Value{}, err
		}

		return newMapIterator(r, d, mapIterEntries), nil
	})

	c.symbolMethod(proto, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Map.prototype[Symbol.iterator]")
		if err != nil {
			return value.Value{}, err
		}

		return newMapIterator(r, d, mapIterEntries), nil
	})
}

func installSet(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Set", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		obj := object.New(r.ShapeRoot(), "Set", object.KindSet, r.IntrinsicPrototype("Set"))
		obj.SetData(&mapData{})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		iterable := arg(args, 0)
		if !iterable.IsNullish() {
			items, err := iterableToSlice(rt, iterable)
			if err != nil {
				return value.Value{}, err
			}

			d := obj.Data().(*mapData)

			for _, v := range items {
				if d.find(v) < 0 {
					d.entries = append(d.entries, mapEntry{key: v, val: v})
				}
			}
		}

		return value.Obj(ref), nil
	})

	c.definePrototype("Set", ctorVal, ctorObj, proto, protoRef)
	c.define("Set", ctorVal)

	c.accessor(proto, "size", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype.size")
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(int32(d.size())), nil
	})

	c.method(proto, "add", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype.add")
		if err != nil {
			return value.Value{}, err
		}

		v := arg(args, 0)
		if d.find(v) < 0 {
			d.entries = append(d.entries, mapEntry{key: v, val: v})
		}

		return this, nil
	})

	c.method(proto, "has", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype.has")
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(d.find(arg(args, 0)) >= 0), nil
	})

	c.method(proto, "delete", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype.delete")
		if err != nil {
			return value.Value{}, err
		}

		if i := d.find(arg(args, 0)); i >= 0 {
			d.entries[i].deleted = true
			return value.Bool(true), nil
		}

		return value.Bool(false), nil
	})

	c.method(proto, "clear", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype.clear")
		if err != nil {
			return value.Value{}, err
		}

		d.entries = nil

		return value.Undefined(), nil
	})

	c.method(proto, "forEach", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype.forEach")
		if err != nil {
			return value.Value{}, err
		}

		cb := arg(args, 0)
		if !isCallable(cb) {
			return value.Value{}, throwType(rt, "callback is not a function")
		}

		cbThis := arg(args, 1)

		for i := 0; i < len(d.entries); i++ {
			if d.entries[i].deleted {
				continue
			}

			if _, err := callValue(rt, cb, cbThis, []value.Value{d.entries[i].val, d.entries[i].key, this}); err != nil {
				return value.Value{}, err
			}
		}

		return value.Undefined(), nil
	})

	c.method(proto, "keys", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype.keys")
		if err != nil {
			return value.Value{}, err
		}

		return newMapIterator(r, d, mapIterValues), nil
	})

	c.method(proto, "values", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype.values")
		if err != nil {
			return value.Value{}, err
		}

		return newMapIterator(r, d, mapIterValues), nil
	})

	c.method(proto, "entries", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype.entries")
		if err != nil {
			return value.Value{}, err
		}

		return newMapIterator(r, d, mapIterEntries), nil
	})

	c.symbolMethod(proto, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, d, err := mustMapData(rt, this, "Set.prototype[Symbol.iterator]")
		if err != nil {
			return value.Value{}, err
		}

		return newMapIterator(r, d, mapIterValues), nil
	})
}

type mapIterKind uint8

const (
	mapIterKeys mapIterKind = iota
	mapIterValues
	mapIterEntries
)

// newMapIterator mirrors newArrayIterator's hand-rolled-iterator-object
// construction: idx is a Go closure variable, and entries/deleted growth
// between calls to next is tolerated the same way (index bounds re-checked
// each call, deleted slots skipped).
func newMapIterator(r *realm.Realm, d *mapData, kind mapIterKind) value.Value {
	c := newCtx(r)
	idx := 0

	iterObj := object.New(r.ShapeRoot(), "Map Iterator", object.KindIterator, r.IntrinsicPrototype("Iterator"))
	ref := heap.NewGc[value.HeapObject](r.Heap(), iterObj, nil)
	iterObj.SetSelf(ref)

	c.method(iterObj, "next", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		for idx < len(d.entries) && d.entries[idx].deleted {
			idx++
		}

		if idx >= len(d.entries) {
			return c.iterResult(value.Undefined(), true), nil
		}

		e := d.entries[idx]
		idx++

		switch kind {
		case mapIterKeys:
			return c.iterResult(e.key, false), nil
		case mapIterEntries:
			return c.iterResult(c.newArrayOf([]value.Value{e.key, e.val}), false), nil
		default:
			return c.iterResult(e.val, false), nil
		}
	})

	c.symbolMethod(iterObj, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})

	return value.Obj(ref)
}
