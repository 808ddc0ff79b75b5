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
package vm

import (
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// toObject implements the ToObject abstract operation (§7.1.18): an
// already-object value passes through, null/undefined throw, and every
// other primitive kind is boxed fresh against its realm's wrapper-prototype
// intrinsic. Returns the *object.Object pointer (for constructors that need
// to call straight through without a second heap lookup) alongside its
// handle.
func (vm *VM) toObject(v value.Value) (*object.Object, heap.Gc[value.HeapObject], *ThrownError) {
	if h, ok := v.AsObject(); ok {
		o, _ := h.Get().(*object.Object)

		return o, h, nil
	}

	if v.IsNullish() {
		return nil, heap.Gc[value.HeapObject]{}, vm.throw("TypeError", "cannot convert %s to object", v.TypeOf())
	}

	var (
		kindName string
		proto    heap.Gc[value.HeapObject]
	)

	switch v.Kind() {
	case value.KindString:
		kindName, proto = "String", vm.realm.IntrinsicPrototype("String")
	case value.KindInteger, value.KindRational:
		kindName, proto = "Number", vm.realm.IntrinsicPrototype("Number")
	case value.KindBoolean:
		kindName, proto = "Boolean", vm.realm.IntrinsicPrototype("Boolean")
	case value.KindSymbol:
		kindName, proto = "Symbol", vm.realm.IntrinsicPrototype("Symbol")
	case value.KindBigInt:
		kindName, proto = "BigInt", vm.realm.IntrinsicPrototype("BigInt")
	default:
		kindName, proto = "Object", vm.realm.IntrinsicPrototype("Object")
	}

	obj := object.New(vm.realm.ShapeRoot(), kindName, object.KindStringWrapper, proto)
	obj.SetData(v)
	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	return obj, ref, nil
}

// getProperty implements the Get-from-arbitrary-value half of member access
// (GetPropertyByName/GetPropertyByValue): an object value's own [[Get]], or
// (for a primitive) the matching wrapper prototype's [[Get]] called with the
// primitive itself as receiver — per §7.3.2 GetV, without allocating a real
// wrapper object on every access the way toObject would.
func (vm *VM) getProperty(v value.Value, key value.PropertyKey) (value.Value, *ThrownError) {
	if h, ok := v.AsObject(); ok {
		o, ok := h.Get().(*object.Object)
		if !ok {
			return value.Undefined(), vm.throw("TypeError", "not an object")
		}

		r, err := o.Get(vm.realm, key, v)
		if err != nil {
			return value.Value{}, vm.adapt(err)
		}

		return r, nil
	}

	if v.IsNullish() {
		return value.Value{}, vm.throw("TypeError", "cannot read properties of %s (reading %s)", v.TypeOf(), keyLabel(key))
	}

	if v.Kind() == value.KindString {
		if r, ok := vm.stringProperty(v, key); ok {
			return r, nil
		}
	}

	proto := vm.primitiveWrapperPrototype(v)
	if proto.IsZero() {
		return value.Undefined(), nil
	}

	po, ok := proto.Get().(*object.Object)
	if !ok {
		return value.Undefined(), nil
	}

	r, err := po.Get(vm.realm, key, v)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	return r, nil
}

// setProperty implements the assignment half: writing through an object's
// own [[Set]], or, for a primitive receiver, doing nothing (§7.3.3 Set on a
// primitive receiver creates no own property and `strict` assignment to a
// nonexistent/non-writable property on a primitive still throws).
func (vm *VM) setProperty(v value.Value, key value.PropertyKey, val value.Value, strict bool) *ThrownError {
	if h, ok := v.AsObject(); ok {
		o, ok := h.Get().(*object.Object)
		if !ok {
			return vm.throw("TypeError", "not an object")
		}

		if err := o.Set(vm.realm, key, val, v, strict); err != nil {
			return vm.adapt(err)
		}

		return nil
	}

	if v.IsNullish() {
		return vm.throw("TypeError", "cannot set properties of %s (setting %s)", v.TypeOf(), keyLabel(key))
	}

	if strict {
		return vm.throw("TypeError", "cannot create property %s on %s", keyLabel(key), v.TypeOf())
	}

	return nil
}

func (vm *VM) primitiveWrapperPrototype(v value.Value) heap.Gc[value.HeapObject] {
	switch v.Kind() {
	case value.KindString:
		return vm.realm.IntrinsicPrototype("String")
	case value.KindInteger, value.KindRational:
		return vm.realm.IntrinsicPrototype("Number")
	case value.KindBoolean:
		return vm.realm.IntrinsicPrototype("Boolean")
	case value.KindSymbol:
		return vm.realm.IntrinsicPrototype("Symbol")
	case value.KindBigInt:
		return vm.realm.IntrinsicPrototype("BigInt")
	default:
		return heap.Gc[value.HeapObject]{}
	}
}

// stringProperty serves "length" and numeric-index reads straight off a
// JSString without touching %String.prototype% — the two own "properties"
// an exotic String object's [[GetOwnProperty]] defines ahead of whatever it
// inherits (§10.4.3.1).
func (vm *VM) stringProperty(v value.Value, key value.PropertyKey) (value.Value, bool) {
	s := v.JSString()

	if !key.IsSymbol() && key.String().String() == "length" {
		return value.Int(int32(s.Length())), true
	}

	if idx, ok := value.IsArrayIndex(key); ok {
		if int(idx) < s.Length() {
			return value.Str(s.Slice(int(idx), int(idx)+1)), true
		}

		return value.Undefined(), true
	}

	return value.Value{}, false
}

func keyLabel(key value.PropertyKey) string {
	if key.IsSymbol() {
		return "Symbol()"
	}

	return key.String().String()
}
