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

// execClass handles ordinary/method closure creation and the family of
// class-definition ops NewClass bundles the constructor-and-prototype
// skeleton into.
func (vm *VM) execClass(f *Frame, op bytecode.Op) signal {
	switch o := op.(type) {
	case bytecode.NewFunction:
		var home heap.Gc[value.HeapObject]

		if o.IsMethod {
			home, _ = f.peek().AsObject()
		}

		f.push(vm.buildClosure(f, o.Code, o.Name, o.IsArrow, home))

	case bytecode.NewClass:
		return vm.execNewClass(f, o)

	case bytecode.PushClassPrototype:
		proto, te := vm.classPrototype(f.peek())
		if te != nil {
			return sErr(te)
		}

		f.push(proto)

	case bytecode.PushClassField:
		return vm.pushClassField(f, o)

	case bytecode.PushClassFieldPrivate:
		return vm.pushClassFieldPrivate(f, o)

	case bytecode.PushClassPrivateMethod:
		return vm.pushClassPrivateMethod(f, o)

	case bytecode.PushClassPrivateGetter:
		return vm.pushClassPrivateAccessor(f, o.Private, o.Code, true)

	case bytecode.PushClassPrivateSetter:
		return vm.pushClassPrivateAccessor(f, o.Private, o.Code, false)
	}

	return sNone()
}

// buildClosure constructs a KindFunction object over code, capturing f.env as
// its defining scope, and — when constructible — a fresh .prototype object
// linked back to it via .constructor (§10.2.3's OrdinaryFunctionCreate plus
// the intertwined MakeConstructor step every non-method, non-arrow,
// non-generator, non-async function expression goes through).
func (vm *VM) buildClosure(f *Frame, code *bytecode.CodeBlock, name string, isArrow bool, home heap.Gc[value.HeapObject]) value.Value {
	proto := vm.realm.IntrinsicPrototype("Function")
	obj := object.New(vm.realm.ShapeRoot(), "Function", object.KindFunction, proto)

	isCtor := !isArrow && !code.Generator && !code.Async

	fd := &object.FunctionData{
		Name:           name,
		ParameterCount: code.ParamCount,
		Code:           code,
		Env:            f.env,
		IsArrow:        isArrow,
		IsGenerator:    code.Generator,
		IsAsync:        code.Async,
		IsConstructor:  isCtor,
		Strict:         code.Strict,
		HomeObject:     home,
	}
	obj.SetData(fd)

	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)
	fn := value.Obj(ref)

	if isCtor {
		protoObj := object.New(vm.realm.ShapeRoot(), "Object", object.KindOrdinary, vm.realm.ObjectPrototype())
		protoRef := heap.NewGc[value.HeapObject](vm.realm.Heap(), protoObj, nil)
		protoObj.SetSelf(protoRef)

		_, _ = protoObj.DefineOwnProperty(vm.realm, nameKey("constructor"), object.PropertyDescriptor{
			Value: fn, HasValue: true, Writable: true, Configurable: true,
		})
		_, _ = obj.DefineOwnProperty(vm.realm, nameKey("prototype"), object.PropertyDescriptor{
			Value: value.Obj(protoRef), HasValue: true, Writable: true,
		})
	}

	_, _ = obj.DefineOwnProperty(vm.realm, nameKey("length"), object.PropertyDescriptor{
		Value: value.Int(int32(code.ParamCount)), HasValue: true, Configurable: true,
	})
	_, _ = obj.DefineOwnProperty(vm.realm, nameKey("name"), object.PropertyDescriptor{
		Value: value.Str(value.NewString(name)), HasValue: true, Configurable: true,
	})

	return fn
}

// execNewClass implements ClassDefinitionEvaluation's constructor-and-
// prototype skeleton (§15.7.14): validate and chain onto the (optional)
// superclass, build the prototype object and the constructor function
// together, link prototype.constructor/constructor.prototype, and leave the
// constructor on top of stack for the class-body ops that follow to attach
// methods, accessors, and fields to.
func (vm *VM) execNewClass(f *Frame, o bytecode.NewClass) signal {
	protoParent := vm.realm.ObjectPrototype()

	var (
		superCtorHandle heap.Gc[value.HeapObject]
		hasSuperCtor    bool
	)

	if o.HasSuperClass {
		superVal := f.pop()

		if superVal.IsNull() {
			protoParent = heap.Gc[value.HeapObject]{}
		} else {
			h, ok := superVal.AsObject()
			if !ok {
				return sErr(vm.throw("TypeError", "class extends value is not a constructor or null"))
			}

			so, ok := h.Get().(*object.Object)
			if !ok || !so.IsConstructor() {
				return sErr(vm.throw("TypeError", "class extends value is not a constructor or null"))
			}

			superCtorHandle, hasSuperCtor = h, true

			if desc, ok := so.GetOwnProperty(nameKey("prototype")); ok && desc.HasValue {
				if ph, ok := desc.Value.AsObject(); ok {
					protoParent = ph
				}
			}
		}
	}

	protoObj := object.New(vm.realm.ShapeRoot(), "Object", object.KindOrdinary, protoParent)
	protoRef := heap.NewGc[value.HeapObject](vm.realm.Heap(), protoObj, nil)
	protoObj.SetSelf(protoRef)

	ctorProto := vm.realm.IntrinsicPrototype("Function")
	ctorObj := object.New(vm.realm.ShapeRoot(), "Function", object.KindFunction, ctorProto)

	if hasSuperCtor {
		ctorObj.SetPrototype(superCtorHandle)
	}

	fd := &object.FunctionData{
		Name:           o.Ctor.Name,
		ParameterCount: o.Ctor.ParamCount,
		Code:           o.Ctor,
		Env:            f.env,
		IsConstructor:  true,
		IsClassCtor:    true,
		Strict:         true,
		HomeObject:     protoRef,
	}
	ctorObj.SetData(fd)

	ctorRef := heap.NewGc[value.HeapObject](vm.realm.Heap(), ctorObj, nil)
	ctorObj.SetSelf(ctorRef)
	ctor := value.Obj(ctorRef)

	_, _ = protoObj.DefineOwnProperty(vm.realm, nameKey("constructor"), object.PropertyDescriptor{
		Value: ctor, HasValue: true, Writable: true, Configurable: true,
	})
	_, _ = ctorObj.DefineOwnProperty(vm.realm, nameKey("prototype"), object.PropertyDescriptor{
		Value: value.Obj(protoRef), HasValue: true,
	})
	_, _ = ctorObj.DefineOwnProperty(vm.realm, nameKey("name"), object.PropertyDescriptor{
		Value: value.Str(value.NewString(o.Ctor.Name)), HasValue: true, Configurable: true,
	})

	f.push(ctor)

	return sNone()
}

func (vm *VM) classPrototype(ctor value.Value) (value.Value, *ThrownError) {
	h, ok := ctor.AsObject()
	if !ok {
		return value.Value{}, vm.throw("TypeError", "class constructor is not an object")
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return value.Value{}, vm.throw("TypeError", "class constructor is not an object")
	}

	desc, ok := o.GetOwnProperty(nameKey("prototype"))
	if !ok || !desc.HasValue {
		return value.Value{}, vm.throw("TypeError", "class constructor has no prototype")
	}

	return desc.Value, nil
}

func (vm *VM) ctorFunctionData(ctor value.Value) (*object.FunctionData, *ThrownError) {
	h, ok := ctor.AsObject()
	if !ok {
		return nil, vm.throw("TypeError", "class constructor is not an object")
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, vm.throw("TypeError", "class constructor is not an object")
	}

	fd, ok := o.Data().(*object.FunctionData)
	if !ok {
		return nil, vm.throw("TypeError", "class constructor has no function data")
	}

	return fd, nil
}

func (vm *VM) pushClassField(f *Frame, o bytecode.PushClassField) signal {
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

	fd, te := vm.ctorFunctionData(f.peek())
	if te != nil {
		return sErr(te)
	}

	fd.Fields = append(fd.Fields, object.ClassFieldInitializer{Key: key, Init: o.Init})

	return sNone()
}

func (vm *VM) pushClassFieldPrivate(f *Frame, o bytecode.PushClassFieldPrivate) signal {
	fd, te := vm.ctorFunctionData(f.peek())
	if te != nil {
		return sErr(te)
	}

	fd.Fields = append(fd.Fields, object.ClassFieldInitializer{Private: o.Private, Init: o.Init})

	return sNone()
}

// pushClassPrivateMethod builds a private method's closure over the
// enclosing scope, homed against the class prototype (the same `super`
// target a public instance method gets), and registers it to be installed
// via SetPrivate on every new instance.
func (vm *VM) pushClassPrivateMethod(f *Frame, o bytecode.PushClassPrivateMethod) signal {
	ctor := f.peek()

	proto, te := vm.classPrototype(ctor)
	if te != nil {
		return sErr(te)
	}

	protoHandle, _ := proto.AsObject()
	fn := vm.buildClosure(f, o.Code, "", false, protoHandle)

	fd, te2 := vm.ctorFunctionData(ctor)
	if te2 != nil {
		return sErr(te2)
	}

	fd.PrivateMethods = append(fd.PrivateMethods, object.PrivateMethodInit{Private: o.Private, Value: fn})

	return sNone()
}

// pushClassPrivateAccessor handles both PushClassPrivateGetter and
// PushClassPrivateSetter, merging the new half onto any already-registered
// accessor for the same PrivateName the way execDefineAccessor merges a
// public accessor pair.
func (vm *VM) pushClassPrivateAccessor(f *Frame, private *object.PrivateName, code *bytecode.CodeBlock, isGetter bool) signal {
	ctor := f.peek()

	proto, te := vm.classPrototype(ctor)
	if te != nil {
		return sErr(te)
	}

	protoHandle, _ := proto.AsObject()
	fn := vm.buildClosure(f, code, "", false, protoHandle)

	fd, te2 := vm.ctorFunctionData(ctor)
	if te2 != nil {
		return sErr(te2)
	}

	for i := range fd.PrivateMethods {
		if fd.PrivateMethods[i].Private != private {
			continue
		}

		pa, ok := privateAccessorOf(fd.PrivateMethods[i].Value)
		if !ok {
			pa = &object.PrivateAccessor{}
		}

		if isGetter {
			pa.Get = fn
		} else {
			pa.Set = fn
		}

		fd.PrivateMethods[i].Value = vm.newPrivateAccessor(pa)

		return sNone()
	}

	pa := &object.PrivateAccessor{}
	if isGetter {
		pa.Get = fn
	} else {
		pa.Set = fn
	}

	fd.PrivateMethods = append(fd.PrivateMethods, object.PrivateMethodInit{Private: private, Value: vm.newPrivateAccessor(pa)})

	return sNone()
}
