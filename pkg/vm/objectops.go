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
	"github.com/ecmaforge/ecmaforge/pkg/bytecode"
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// nameKey turns a compiled object-op's plain Go string property name into a
// PropertyKey — pkg/bytecode's objectops.go deliberately carries names as
// string rather than intern.Sym, since object keys (unlike binding names)
// are runtime JS strings, not a closed compile-time set.
func nameKey(name string) value.PropertyKey {
	return value.StringKey(value.NewString(name))
}

// execObject handles plain-object construction, named/computed property
// get/set/define/delete, private fields, super property access, and object
// spread (CopyDataProperties).
func (vm *VM) execObject(f *Frame, op bytecode.Op) signal {
	switch o := op.(type) {
	case bytecode.NewObject:
		proto := vm.realm.ObjectPrototype()
		obj := object.New(vm.realm.ShapeRoot(), "Object", object.KindOrdinary, proto)
		ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
		obj.SetSelf(ref)
		f.push(value.Obj(ref))

	case bytecode.SetPropertyByName:
		v := f.pop()
		target := f.peek()

		if te := vm.setProperty(target, nameKey(o.Name), v, true); te != nil {
			return sErr(te)
		}

	case bytecode.SetPropertyByValue:
		v := f.pop()
		key := f.pop()
		target := f.peek()

		pk, te := vm.toPropertyKey(key)
		if te != nil {
			return sErr(te)
		}

		if te := vm.setProperty(target, pk, v, true); te != nil {
			return sErr(te)
		}

	case bytecode.GetPropertyByName:
		target := f.pop()

		v, te := vm.getProperty(target, nameKey(o.Name))
		if te != nil {
			return sErr(te)
		}

		f.push(v)

	case bytecode.GetPropertyByValue:
		key := f.pop()
		target := f.pop()

		pk, te := vm.toPropertyKey(key)
		if te != nil {
			return sErr(te)
		}

		v, te2 := vm.getProperty(target, pk)
		if te2 != nil {
			return sErr(te2)
		}

		f.push(v)

	case bytecode.GetPrivateField:
		target := f.pop()

		h, ok := target.AsObject()
		if !ok {
			return sErr(vm.throw("TypeError", "cannot read private field off a non-object"))
		}

		obj, ok := h.Get().(*object.Object)
		if !ok {
			return sErr(vm.throw("TypeError", "cannot read private field off a non-object"))
		}

		stored, ok := obj.PrivateGet(o.Private)
		if !ok {
			return sErr(vm.throw("TypeError", "private field was never initialized on this object"))
		}

		if pa, ok := privateAccessorOf(stored); ok {
			if pa.Get.IsUndefined() {
				return sErr(vm.throw("TypeError", "private member has no getter"))
			}

			v, err := vm.Invoke(pa.Get, target, nil)
			if err != nil {
				return sErr(vm.adapt(err))
			}

			f.push(v)

			break
		}

		f.push(stored)

	case bytecode.SetPrivateField:
		v := f.pop()
		target := f.peek()

		h, ok := target.AsObject()
		if !ok {
			return sErr(vm.throw("TypeError", "cannot set private field off a non-object"))
		}

		obj, ok := h.Get().(*object.Object)
		if !ok {
			return sErr(vm.throw("TypeError", "cannot set private field off a non-object"))
		}

		if stored, ok := obj.PrivateGet(o.Private); ok {
			if pa, ok := privateAccessorOf(stored); ok {
				if pa.Set.IsUndefined() {
					return sErr(vm.throw("TypeError", "private member has no setter"))
				}

				if _, err := vm.Invoke(pa.Set, target, []value.Value{v}); err != nil {
					return sErr(vm.adapt(err))
				}

				break
			}
		}

		obj.SetPrivate(o.Private, v)

	case bytecode.DefineOwnProperty:
		return vm.execDefineOwnProperty(f, o)

	case bytecode.DefineAccessor:
		return vm.execDefineAccessor(f, o)

	case bytecode.GetSuperProperty:
		return vm.execGetSuper(f, nameKey(o.Name))
	case bytecode.GetSuperPropertyComputed:
		key := f.pop()

		pk, te := vm.toPropertyKey(key)
		if te != nil {
			return sErr(te)
		}

		return vm.execGetSuper(f, pk)

	case bytecode.SetSuperProperty:
		return vm.execSetSuper(f, nameKey(o.Name), o.Strict)
	case bytecode.SetSuperPropertyComputed:
		key := f.pop()

		pk, te := vm.toPropertyKey(key)
		if te != nil {
			return sErr(te)
		}

		return vm.execSetSuper(f, pk, o.Strict)

	case bytecode.DeletePropertyByName:
		target := f.pop()

		h, ok := target.AsObject()
		if !ok {
			f.push(value.Bool(true))
			break
		}

		obj, _ := h.Get().(*object.Object)
		f.push(value.Bool(obj.Delete(nameKey(o.Name))))

	case bytecode.DeletePropertyByValue:
		key := f.pop()
		target := f.pop()

		pk, te := vm.toPropertyKey(key)
		if te != nil {
			return sErr(te)
		}

		h, ok := target.AsObject()
		if !ok {
			f.push(value.Bool(true))
			break
		}

		obj, _ := h.Get().(*object.Object)
		f.push(value.Bool(obj.Delete(pk)))

	case bytecode.CopyDataProperties:
		src := f.pop()
		target := f.peek()

		if te := vm.copyDataProperties(target, src, nil); te != nil {
			return sErr(te)
		}
	}

	return sNone()
}

// newPrivateAccessor boxes a private getter/setter pair as a host object so
// it can be installed as a private name's single stored Value (see
// object.PrivateAccessor).
func (vm *VM) newPrivateAccessor(pa *object.PrivateAccessor) value.Value {
	obj := object.New(vm.realm.ShapeRoot(), "PrivateAccessor", object.KindOrdinary, heap.Gc[value.HeapObject]{})
	obj.SetData(pa)
	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref)
}

func privateAccessorOf(v value.Value) (*object.PrivateAccessor, bool) {
	h, ok := v.AsObject()
	if !ok {
		return nil, false
	}

	obj, ok := h.Get().(*object.Object)
	if !ok {
		return nil, false
	}

	pa, ok := obj.Data().(*object.PrivateAccessor)

	return pa, ok
}

func (vm *VM) toPropertyKey(v value.Value) (value.PropertyKey, *ThrownError) {
	pk, err := value.ToPropertyKey(v, vm)
	if err != nil {
		return value.PropertyKey{}, vm.adapt(err)
	}

	return pk, nil
}

func (vm *VM) execDefineOwnProperty(f *Frame, o bytecode.DefineOwnProperty) signal {
	v := f.pop()

	var key value.PropertyKey

	if o.Computed {
		k := f.pop()

		pk, te := vm.toPropertyKey(k)
		if te != nil {
			return sErr(te)
		}

		key = pk
	} else {
		key = nameKey(o.Name)
	}

	target := f.peek()

	h, ok := target.AsObject()
	if !ok {
		return sErr(vm.throw("TypeError", "cannot define a property on a non-object"))
	}

	obj, _ := h.Get().(*object.Object)

	desc := object.PropertyDescriptor{
		Value: v, HasValue: true,
		Writable: o.Writable, Enumerable: o.Enumerable, Configurable: o.Configurable,
	}

	if _, err := obj.DefineOwnProperty(vm.realm, key, desc); err != nil {
		return sErr(vm.adapt(err))
	}

	return sNone()
}

func (vm *VM) execDefineAccessor(f *Frame, o bytecode.DefineAccessor) signal {
	fn := f.pop()

	var key value.PropertyKey

	if o.Computed {
		k := f.pop()

		pk, te := vm.toPropertyKey(k)
		if te != nil {
			return sErr(te)
		}

		key = pk
	} else {
		key = nameKey(o.Name)
	}

	target := f.peek()

	h, ok := target.AsObject()
	if !ok {
		return sErr(vm.throw("TypeError", "cannot define an accessor on a non-object"))
	}

	obj, _ := h.Get().(*object.Object)

	existing, _ := obj.GetOwnProperty(key)

	desc := object.PropertyDescriptor{
		IsAccessor: true, Enumerable: true, Configurable: true,
	}

	if existing.IsAccessor {
		desc.Get, desc.Set = existing.Get, existing.Set
	}

	if o.IsSetter {
		desc.Set = fn
	} else {
		desc.Get = fn
	}

	if _, err := obj.DefineOwnProperty(vm.realm, key, desc); err != nil {
		return sErr(vm.adapt(err))
	}

	return sNone()
}

// execGetSuper/execSetSuper implement §13.3.7's [[HomeObject]]-relative
// super property access: the lookup starts at the running function's
// HomeObject's own [[Prototype]], but `this` (not the prototype) is always
// the receiver passed through Get/Set, per MakeSuperPropertyReference.
func (vm *VM) execGetSuper(f *Frame, key value.PropertyKey) signal {
	home, te := vm.homeObjectPrototype(f)
	if te != nil {
		return sErr(te)
	}

	if home.IsZero() {
		f.push(value.Undefined())

		return sNone()
	}

	obj, _ := home.Get().(*object.Object)

	v, err := obj.Get(vm.realm, key, f.this)
	if err != nil {
		return sErr(vm.adapt(err))
	}

	f.push(v)

	return sNone()
}

func (vm *VM) execSetSuper(f *Frame, key value.PropertyKey, strict bool) signal {
	v := f.pop()

	home, te := vm.homeObjectPrototype(f)
	if te != nil {
		return sErr(te)
	}

	if !home.IsZero() {
		obj, _ := home.Get().(*object.Object)

		if err := obj.Set(vm.realm, key, v, f.this, strict); err != nil {
			return sErr(vm.adapt(err))
		}
	}

	return sNone()
}

func (vm *VM) homeObjectPrototype(f *Frame) (heap.Gc[value.HeapObject], *ThrownError) {
	fh, ok := f.function.AsObject()
	if !ok {
		return heap.Gc[value.HeapObject]{}, vm.throw("SyntaxError", "'super' used outside of a method")
	}

	fo, _ := fh.Get().(*object.Object)

	fd, ok := fo.Data().(*object.FunctionData)
	if !ok || fd.HomeObject.IsZero() {
		return heap.Gc[value.HeapObject]{}, vm.throw("SyntaxError", "'super' used outside of a method")
	}

	ho, _ := fd.HomeObject.Get().(*object.Object)

	return ho.Shape().Prototype(), nil
}

// copyDataProperties implements the CopyDataProperties abstract operation
// (§7.3.25), object spread's runtime half: every own enumerable key of src
// not listed in excluded is copied onto target as a plain data property.
func (vm *VM) copyDataProperties(target, src value.Value, excluded []string) *ThrownError {
	if src.IsNullish() {
		return nil
	}

	h, ok := src.AsObject()
	if !ok {
		return nil
	}

	so, _ := h.Get().(*object.Object)

	th, ok := target.AsObject()
	if !ok {
		return vm.throw("TypeError", "spread target is not an object")
	}

	to, _ := th.Get().(*object.Object)

	for _, key := range so.OwnPropertyKeys() {
		if key.IsSymbol() {
			continue
		}

		skip := false

		for _, ex := range excluded {
			if key.String().String() == ex {
				skip = true

				break
			}
		}

		if skip {
			continue
		}

		desc, ok := so.GetOwnProperty(key)
		if !ok || !desc.Enumerable {
			continue
		}

		v, err := so.Get(vm.realm, key, src)
		if err != nil {
			return vm.adapt(err)
		}

		if _, err := to.DefineOwnProperty(vm.realm, key, object.PropertyDescriptor{
			Value: v, HasValue: true, Writable: true, Enumerable: true, Configurable: true,
		}); err != nil {
			return vm.adapt(err)
		}
	}

	return nil
}
