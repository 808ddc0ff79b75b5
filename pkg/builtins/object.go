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

// installObject builds %Object.prototype% and the Object constructor
// (§19.1). Object.prototype is the one prototype every other installer's
// own prototype ultimately chains to (each is constructed with
// object.KindOrdinary and no prototype of its own until this call runs, per
// object.New's doc comment), so this installer runs first and with a
// zero-handle prototype for its own %Object.prototype%.
func installObject(r *realm.Realm) {
	c := newCtx(r)

	proto := object.New(r.ShapeRoot(), "Object", object.KindOrdinary, heap.Gc[value.HeapObject]{})
	protoRef := heap.NewGc[value.HeapObject](r.Heap(), proto, nil)
	proto.SetSelf(protoRef)
	r.SetIntrinsic("%Object.prototype%", value.Obj(protoRef))

	ctorVal, ctorObj := c.nativeConstructor("Object", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if v.IsNullish() {
			return value.Obj(c.newObjectRef()), nil
		}

		_, h, err := c.toObject(rt, v)
		if err != nil {
			return value.Value{}, err
		}

		return value.Obj(h), nil
	})
	c.definePrototype("Object", ctorVal, ctorObj, proto, protoRef)

	c.method(proto, "hasOwnProperty", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, _, err := c.toObject(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		pk, err := toPropertyKey(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		_, ok := o.GetOwnProperty(pk)

		return value.Bool(ok), nil
	})

	c.method(proto, "isPrototypeOf", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		h, ok := v.AsObject()
		if !ok {
			return value.Bool(false), nil
		}

		self, _, err := c.toObject(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		for {
			o, ok := h.Get().(*object.Object)
			if !ok {
				return value.Bool(false), nil
			}

			protoH := o.Shape().Prototype()
			if protoH.IsZero() {
				return value.Bool(false), nil
			}

			if protoH.Get() == self {
				return value.Bool(true), nil
			}

			h = protoH
		}
	})

	c.method(proto, "propertyIsEnumerable", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, _, err := c.toObject(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		pk, err := toPropertyKey(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		d, ok := o.GetOwnProperty(pk)

		return value.Bool(ok && d.Enumerable), nil
	})

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		if this.IsUndefined() {
			return value.StrFromGo("[object Undefined]"), nil
		}

		if this.IsNull() {
			return value.StrFromGo("[object Null]"), nil
		}

		o, _, err := c.toObject(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		tag := o.Kind().String()

		if tv, err := o.Get(rt, symKey(value.SymbolToStringTag), this); err == nil && tv.Kind() == value.KindString {
			tag = tv.JSString().String()
		}

		return value.StrFromGo("[object " + tag + "]"), nil
	})

	c.method(proto, "toLocaleString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		fn, err := objGet(rt, this, "toString")
		if err != nil {
			return value.Value{}, err
		}

		return callValue(rt, fn, this, nil)
	})

	c.method(proto, "valueOf", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, h, err := c.toObject(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		return value.Obj(h), nil
	})

	installObjectStatics(c, ctorObj)
}

func (c ctx) newObjectRef() heap.Gc[value.HeapObject] {
	return c.newObject(c.r.IntrinsicPrototype("Object")).Self()
}

func objGet(rt object.Runtime, v value.Value, name string) (value.Value, error) {
	h, ok := v.AsObject()
	if !ok {
		return value.Undefined(), throwType(rt, "value has no properties")
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return value.Undefined(), throwType(rt, "value has no properties")
	}

	return o.Get(rt, key(name), v)
}

// installObjectStatics wires Object.keys/values/entries/assign/freeze/
// isFrozen/create/getPrototypeOf/setPrototypeOf/defineProperty/
// defineProperties/getOwnPropertyNames/getOwnPropertyDescriptor(s)/
// fromEntries/is/groupBy — §19.1.2 plus the ES2024 Object.groupBy
// supplement.
func installObjectStatics(c ctx, ctorObj *object.Object) {
	r := c.r

	c.method(ctorObj, "keys", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, _, err := c.toObject(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		var names []value.Value
		for _, k := range o.OwnPropertyKeys() {
			if k.IsSymbol() {
				continue
			}
			if d, ok := o.GetOwnProperty(k); ok && d.Enumerable {
				names = append(names, value.Str(k.String()))
			}
		}

		return c.newArrayOf(names), nil
	})

	c.method(ctorObj, "values", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := c.toObject(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		var vals []value.Value
		for _, k := range o.OwnPropertyKeys() {
			if k.IsSymbol() {
				continue
			}
			if d, ok := o.GetOwnProperty(k); ok && d.Enumerable {
				v, err := o.Get(rt, k, value.Obj(h))
				if err != nil {
					return value.Value{}, err
				}
				vals = append(vals, v)
			}
		}

		return c.newArrayOf(vals), nil
	})

	c.method(ctorObj, "entries", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := c.toObject(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		var entries []value.Value
		for _, k := range o.OwnPropertyKeys() {
			if k.IsSymbol() {
				continue
			}
			if d, ok := o.GetOwnProperty(k); ok && d.Enumerable {
				v, err := o.Get(rt, k, value.Obj(h))
				if err != nil {
					return value.Value{}, err
				}
				entries = append(entries, c.newArrayOf([]value.Value{value.Str(k.String()), v}))
			}
		}

		return c.newArrayOf(entries), nil
	})

	c.method(ctorObj, "assign", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		target, targetRef, err := c.toObject(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		for _, src := range args[min(1, len(args)):] {
			if src.IsNullish() {
				continue
			}

			so, sh, err := c.toObject(rt, src)
			if err != nil {
				return value.Value{}, err
			}

			for _, k := range so.OwnPropertyKeys() {
				d, ok := so.GetOwnProperty(k)
				if !ok || !d.Enumerable {
					continue
				}

				v, err := so.Get(rt, k, value.Obj(sh))
				if err != nil {
					return value.Value{}, err
				}

				if err := target.Set(rt, k, v, value.Obj(targetRef), true); err != nil {
					return value.Value{}, err
				}
			}
		}

		return value.Obj(targetRef), nil
	})

	c.method(ctorObj, "freeze", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		o, _, err := c.toObject(rt, v)
		if err != nil {
			return value.Value{}, err
		}

		o.PreventExtensions()
		for _, k := range o.OwnPropertyKeys() {
			d, ok := o.GetOwnProperty(k)
			if !ok {
				continue
			}
			d.Writable, d.Configurable = false, false
			_, _ = o.DefineOwnProperty(rt, k, d)
		}

		return v, nil
	})

	c.method(ctorObj, "isFrozen", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			return value.Bool(true), nil
		}

		o, _, err := c.toObject(rt, v)
		if err != nil {
			return value.Value{}, err
		}

		if o.Extensible() {
			return value.Bool(false), nil
		}

		for _, k := range o.OwnPropertyKeys() {
			d, ok := o.GetOwnProperty(k)
			if ok && (d.Configurable || (!d.IsAccessor && d.Writable)) {
				return value.Bool(false), nil
			}
		}

		return value.Bool(true), nil
	})

	c.method(ctorObj, "seal", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		o, _, err := c.toObject(rt, v)
		if err != nil {
			return value.Value{}, err
		}

		o.PreventExtensions()
		for _, k := range o.OwnPropertyKeys() {
			d, ok := o.GetOwnProperty(k)
			if !ok {
				continue
			}
			d.Configurable = false
			_, _ = o.DefineOwnProperty(rt, k, d)
		}

		return v, nil
	})

	c.method(ctorObj, "isSealed", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			return value.Bool(true), nil
		}

		o, _, err := c.toObject(rt, v)
		if err != nil {
			return value.Value{}, err
		}

		if o.Extensible() {
			return value.Bool(false), nil
		}

		for _, k := range o.OwnPropertyKeys() {
			if d, ok := o.GetOwnProperty(k); ok && d.Configurable {
				return value.Bool(false), nil
			}
		}

		return value.Bool(true), nil
	})

	c.method(ctorObj, "preventExtensions", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if v.IsObject() {
			if _, err := trapPreventExtensions(rt, v); err != nil {
				return value.Value{}, err
			}
		}

		return v, nil
	})

	c.method(ctorObj, "isExtensible", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			return value.Bool(false), nil
		}

		ok, err := trapIsExtensible(rt, v)
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(ok), nil
	})

	c.method(ctorObj, "create", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		protoArg := arg(args, 0)

		var proto heap.Gc[value.HeapObject]
		if h, ok := protoArg.AsObject(); ok {
			proto = h
		} else if !protoArg.IsNull() {
			return value.Value{}, throwType(rt, "Object prototype may only be an Object or null")
		}

		obj := object.New(r.ShapeRoot(), "Object", object.KindOrdinary, proto)
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		if props := arg(args, 1); props.IsObject() {
			if err := definePropertiesFrom(rt, c, obj, ref, props); err != nil {
				return value.Value{}, err
			}
		}

		return value.Obj(ref), nil
	})

	c.method(ctorObj, "getPrototypeOf", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)

		o, h, err := c.toObject(rt, v)
		if err != nil {
			return value.Value{}, err
		}

		var p heap.Gc[value.HeapObject]

		if v.IsObject() {
			p, err = trapGetPrototypeOf(rt, value.Obj(h))
			if err != nil {
				return value.Value{}, err
			}
		} else {
			p = o.Shape().Prototype()
		}

		if p.IsZero() {
			return value.Null(), nil
		}

		return value.Obj(p), nil
	})

	c.method(ctorObj, "setPrototypeOf", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if _, _, err := c.toObject(rt, v); err != nil {
			return value.Value{}, err
		}

		var proto heap.Gc[value.HeapObject]

		p := arg(args, 1)
		if h, ok := p.AsObject(); ok {
			proto = h
		} else if !p.IsNull() {
			return value.Value{}, throwType(rt, "Object prototype may only be an Object or null")
		}

		if v.IsObject() {
			if _, err := trapSetPrototypeOf(rt, v, proto); err != nil {
				return value.Value{}, err
			}
		}

		return v, nil
	})

	c.method(ctorObj, "defineProperty", 3, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		h, ok := target.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "Object.defineProperty called on non-object")
		}

		o := h.Get().(*object.Object)
		pk, err := toPropertyKey(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		desc, err := toPropertyDescriptor(rt, arg(args, 2))
		if err != nil {
			return value.Value{}, err
		}

		ok2, err := o.DefineOwnProperty(rt, pk, desc)
		if err != nil {
			return value.Value{}, err
		}
		if !ok2 {
			return value.Value{}, throwType(rt, "cannot redefine property")
		}

		return target, nil
	})

	c.method(ctorObj, "defineProperties", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		h, ok := target.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "Object.defineProperties called on non-object")
		}

		o := h.Get().(*object.Object)
		if err := definePropertiesFrom(rt, c, o, h, arg(args, 1)); err != nil {
			return value.Value{}, err
		}

		return target, nil
	})

	c.method(ctorObj, "getOwnPropertyNames", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, _, err := c.toObject(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		var names []value.Value
		for _, k := range o.OwnPropertyKeys() {
			if !k.IsSymbol() {
				names = append(names, value.Str(k.String()))
			}
		}

		return c.newArrayOf(names), nil
	})

	c.method(ctorObj, "getOwnPropertySymbols", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, _, err := c.toObject(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		var syms []value.Value
		for _, k := range o.OwnPropertyKeys() {
			if k.IsSymbol() {
				syms = append(syms, value.Sym(k.SymbolValue()))
			}
		}

		return c.newArrayOf(syms), nil
	})

	c.method(ctorObj, "getOwnPropertyDescriptor", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, _, err := c.toObject(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		pk, err := toPropertyKey(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		d, ok := o.GetOwnProperty(pk)
		if !ok {
			return value.Undefined(), nil
		}

		return c.descriptorToObject(d), nil
	})

	c.method(ctorObj, "getOwnPropertyDescriptors", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := c.toObject(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		result := c.newObject(r.IntrinsicPrototype("Object"))
		resultRef := result.Self()
		_ = h

		for _, k := range o.OwnPropertyKeys() {
			d, ok := o.GetOwnProperty(k)
			if !ok {
				continue
			}
			_, _ = result.DefineOwnProperty(rt, k, object.PropertyDescriptor{
				Value: c.descriptorToObject(d), HasValue: true, Writable: true, Enumerable: true, Configurable: true,
			})
		}

		return value.Obj(resultRef), nil
	})

	c.method(ctorObj, "fromEntries", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		entries, err := iterableToSlice(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		obj := c.newObject(r.IntrinsicPrototype("Object"))
		ref := obj.Self()

		for _, e := range entries {
			k, err := objGet(rt, e, "0")
			if err != nil {
				return value.Value{}, err
			}
			v, err := objGet(rt, e, "1")
			if err != nil {
				return value.Value{}, err
			}
			pk, err := toPropertyKey(rt, k)
			if err != nil {
				return value.Value{}, err
			}
			_, _ = obj.DefineOwnProperty(rt, pk, object.PropertyDescriptor{
				Value: v, HasValue: true, Writable: true, Enumerable: true, Configurable: true,
			})
		}

		return value.Obj(ref), nil
	})

	c.method(ctorObj, "is", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(value.SameValue(arg(args, 0), arg(args, 1))), nil
	})

	// groupBy is the ES2024 supplement original_source's grouping utility
	// (Array.prototype's `group`/`group_by` equivalents in the reference
	// implementation) distilled out of the base spec; both Object.groupBy
	// and Map.groupBy share this core loop, the latter wired in map.go.
	c.method(ctorObj, "groupBy", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		items, err := iterableToSlice(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 1)
		// Object.groupBy's result has no prototype of its own (§23.1.2.1:
		// OrdinaryObjectCreate(null)), the same null-[[Prototype]] allowance
		// %Object.prototype% itself gets during bootstrap.
		result := c.newObject(heap.Gc[value.HeapObject]{})
		resultRef := result.Self()

		order := map[string]bool{}

		for i, item := range items {
			k, err := callValue(rt, callback, value.Undefined(), []value.Value{item, value.Int(int32(i))})
			if err != nil {
				return value.Value{}, err
			}

			pk, err := toPropertyKey(rt, k)
			if err != nil {
				return value.Value{}, err
			}

			hk := pk.HashKey()
			groupKey, _ := hk.(string)

			if !order[groupKey] {
				order[groupKey] = true
				_, _ = result.DefineOwnProperty(rt, pk, object.PropertyDescriptor{
					Value: c.newArrayOf(nil), HasValue: true, Writable: true, Enumerable: true, Configurable: true,
				})
			}

			existing, _ := result.Get(rt, pk, value.Obj(resultRef))
			arrOfRT(rt, existing).pushValue(item)
		}

		return value.Obj(resultRef), nil
	})
}

func definePropertiesFrom(rt object.Runtime, c ctx, target *object.Object, targetRef heap.Gc[value.HeapObject], props value.Value) error {
	h, ok := props.AsObject()
	if !ok {
		return nil
	}

	po, ok := h.Get().(*object.Object)
	if !ok {
		return nil
	}

	for _, k := range po.OwnPropertyKeys() {
		d, ok := po.GetOwnProperty(k)
		if !ok || !d.Enumerable {
			continue
		}

		descVal, err := po.Get(rt, k, props)
		if err != nil {
			return err
		}

		desc, err := toPropertyDescriptor(rt, descVal)
		if err != nil {
			return err
		}

		if _, err := target.DefineOwnProperty(rt, k, desc); err != nil {
			return err
		}
	}

	return nil
}

// toPropertyDescriptor implements ToPropertyDescriptor (§6.2.6.5): reads
// value/writable/get/set/enumerable/configurable off an ordinary descriptor
// object, the shape Object.defineProperty/defineProperties/create all
// accept.
func toPropertyDescriptor(rt object.Runtime, v value.Value) (object.PropertyDescriptor, error) {
	h, ok := v.AsObject()
	if !ok {
		return object.PropertyDescriptor{}, throwType(rt, "property descriptor must be an object")
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return object.PropertyDescriptor{}, throwType(rt, "property descriptor must be an object")
	}

	var d object.PropertyDescriptor

	if o.HasProperty(key("get")) || o.HasProperty(key("set")) {
		d.IsAccessor = true
		if gv, err := o.Get(rt, key("get"), v); err == nil {
			d.Get = gv
		}
		if sv, err := o.Get(rt, key("set"), v); err == nil {
			d.Set = sv
		}
	} else if o.HasProperty(key("value")) {
		d.HasValue = true
		d.Value, _ = o.Get(rt, key("value"), v)
	}

	if o.HasProperty(key("writable")) {
		wv, _ := o.Get(rt, key("writable"), v)
		d.Writable = wv.ToBoolean()
	}

	if o.HasProperty(key("enumerable")) {
		ev, _ := o.Get(rt, key("enumerable"), v)
		d.Enumerable = ev.ToBoolean()
	}

	if o.HasProperty(key("configurable")) {
		cv, _ := o.Get(rt, key("configurable"), v)
		d.Configurable = cv.ToBoolean()
	}

	return d, nil
}

func (c ctx) descriptorToObject(d object.PropertyDescriptor) value.Value {
	obj := c.newObject(c.r.IntrinsicPrototype("Object"))
	ref := obj.Self()

	set := func(name string, v value.Value) {
		_, _ = obj.DefineOwnProperty(c.r, key(name), object.PropertyDescriptor{
			Value: v, HasValue: true, Writable: true, Enumerable: true, Configurable: true,
		})
	}

	if d.IsAccessor {
		get, set2 := d.Get, d.Set
		if !get.IsObject() {
			get = value.Undefined()
		}
		if !set2.IsObject() {
			set2 = value.Undefined()
		}
		set("get", get)
		set("set", set2)
	} else {
		set("value", d.Value)
		set("writable", value.Bool(d.Writable))
	}

	set("enumerable", value.Bool(d.Enumerable))
	set("configurable", value.Bool(d.Configurable))

	return value.Obj(ref)
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}
