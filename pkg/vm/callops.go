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
	"strconv"

	"github.com/ecmaforge/ecmaforge/pkg/bytecode"
	"github.com/ecmaforge/ecmaforge/pkg/envrec"
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// execCall handles the six call-shaped ops: Call/CallSpread, Construct/
// ConstructSpread, SuperCall/SuperCallSpread.
func (vm *VM) execCall(f *Frame, op bytecode.Op) signal {
	switch o := op.(type) {
	case bytecode.Call:
		args := f.popN(o.Argc)
		callee := f.pop()
		this := f.pop()

		v, err := vm.Invoke(callee, this, args)
		if err != nil {
			return sErr(vm.adapt(err))
		}

		f.push(v)

	case bytecode.CallSpread:
		args, te := vm.flattenSpread(f.pop())
		if te != nil {
			return sErr(te)
		}

		callee := f.pop()
		this := f.pop()

		v, err := vm.Invoke(callee, this, args)
		if err != nil {
			return sErr(vm.adapt(err))
		}

		f.push(v)

	case bytecode.Construct:
		args := f.popN(o.Argc)
		ctor := f.pop()

		v, te := vm.Construct(ctor, ctor, args)
		if te != nil {
			return sErr(te)
		}

		f.push(v)

	case bytecode.ConstructSpread:
		args, te := vm.flattenSpread(f.pop())
		if te != nil {
			return sErr(te)
		}

		ctor := f.pop()

		v, te2 := vm.Construct(ctor, ctor, args)
		if te2 != nil {
			return sErr(te2)
		}

		f.push(v)

	case bytecode.SuperCall, bytecode.SuperCallSpread:
		var (
			args []value.Value
			te   *ThrownError
		)

		if _, ok := o.(bytecode.SuperCallSpread); ok {
			args, te = vm.flattenSpread(f.pop())
		} else {
			args = f.popN(o.(bytecode.SuperCall).Argc)
		}

		if te != nil {
			return sErr(te)
		}

		superCtor, te2 := vm.superConstructor(f)
		if te2 != nil {
			return sErr(te2)
		}

		v, te3 := vm.Construct(superCtor, f.newTarget, args)
		if te3 != nil {
			return sErr(te3)
		}

		f.this = v
		f.env.BindThisValue(v)
		f.push(v)
	}

	return sNone()
}

func (f *Frame) popN(n int) []value.Value {
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = f.pop()
	}

	return out
}

// flattenSpread collects a spread call/construct's pre-built argument array
// (the compiler emits NewArray/PushArraySpread ahead of a *Spread op to
// build it) into a plain Go slice of arguments.
func (vm *VM) flattenSpread(arr value.Value) ([]value.Value, *ThrownError) {
	h, ok := arr.AsObject()
	if !ok {
		return nil, vm.throw("TypeError", "spread argument list is not an array")
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, vm.throw("TypeError", "spread argument list is not an array")
	}

	n := int(o.Length())
	out := make([]value.Value, n)

	for i := 0; i < n; i++ {
		v, err := vm.getProperty(arr, value.StringKey(value.NewString(strconv.Itoa(i))))
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// Invoke is the call hook every call in the system — user bytecode's Call
// op, a getter/setter invocation, a proxy trap — ultimately routes through
// (installed once by New via object.SetCallHook). It handles only ordinary
// (KindFunction) callees directly; bound functions and proxies are left to
// Object.Call's own unwrapping, which re-enters this same hook with the
// resolved target.
func (vm *VM) Invoke(fn, this value.Value, args []value.Value) (value.Value, error) {
	h, ok := fn.AsObject()
	if !ok {
		return value.Value{}, vm.throw("TypeError", "value is not a function")
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return value.Value{}, vm.throw("TypeError", "value is not a function")
	}

	if o.Kind() != object.KindFunction {
		return o.Call(vm.realm, h, this, args)
	}

	fd, ok := o.Data().(*object.FunctionData)
	if !ok {
		return value.Value{}, vm.throw("TypeError", "value is not callable")
	}

	if fd.IsClassCtor {
		return value.Value{}, vm.throw("TypeError", "class constructor cannot be invoked without 'new'")
	}

	if fd.Native != nil {
		return fd.Native(vm.realm, this, args)
	}

	code, ok := fd.Code.(*bytecode.CodeBlock)
	if !ok {
		return value.Value{}, vm.throw("TypeError", "function has no executable body")
	}

	parent, _ := fd.Env.(*envrec.Environment)

	// Per OrdinaryCallBindThis (§10.2.1.2): a non-strict, non-arrow function
	// called with a nullish `this` gets the global object instead; an arrow
	// function never binds its own `this` at all (it resolves lexically
	// through its closure's environment chain).
	effectiveThis := this
	if !fd.IsArrow && this.IsNullish() && !fd.Strict {
		effectiveThis = value.Obj(vm.realm.GlobalObjectRef())
	} else if fd.IsArrow {
		effectiveThis = value.Undefined()
	}

	env := envrec.NewFunction(parent, code.LocalNames, fd.IsArrow, fn)

	if !fd.IsArrow {
		env.BindThisValue(effectiveThis)
		env.SetNewTarget(value.Undefined())
	}

	if fd.IsGenerator {
		return vm.startGenerator(code, env, effectiveThis, value.Undefined(), fn, args), nil
	}

	if vm.maxCallDepth > 0 && vm.callDepth >= vm.maxCallDepth {
		return value.Value{}, vm.throw("RangeError", "call stack size exceeded")
	}

	callFrame := newCallFrame(code, env, effectiveThis, value.Undefined(), fn, args)

	vm.callDepth++
	v, te := vm.runFrame(callFrame)
	vm.callDepth--

	if fd.IsAsync {
		// This realm's Await settles synchronously (generator.go), so the
		// whole async function body has necessarily already run to
		// completion by the time runFrame returns — wrapping its outcome in
		// an already-settled promise satisfies async functions' [[Call]]
		// contract (always returns a promise) without needing a real
		// suspend-and-resume across the job queue.
		promise, ps := vm.NewPromiseObject()

		if te != nil {
			vm.Reject(ps, te.Value)
		} else {
			vm.Fulfill(ps, v)
		}

		return promise, nil
	}

	if te != nil {
		return value.Value{}, te
	}

	return v, nil
}

// Construct implements the [[Construct]] internal method (§10.2.2 /
// §10.3.2): allocates a fresh ordinary object parented off the constructor's
// own "prototype" data property, runs the class's instance field
// initializers (if any) against it, then runs the constructor body with
// `this` bound to the new instance and new.target set to newTarget —
// returning the constructor's own return value if it returned an object, or
// the constructed instance otherwise, per OrdinaryCallEvaluateBody's
// [[Construct]] completion rule.
func (vm *VM) Construct(ctor, newTarget value.Value, args []value.Value) (value.Value, *ThrownError) {
	h, ok := ctor.AsObject()
	if !ok {
		return value.Value{}, vm.throw("TypeError", "value is not a constructor")
	}

	o, ok := h.Get().(*object.Object)
	if !ok || !o.IsConstructor() {
		return value.Value{}, vm.throw("TypeError", "value is not a constructor")
	}

	switch o.Kind() {
	case object.KindProxy, object.KindBoundFunction:
		v, err := o.Construct(vm.realm, h, args, newTarget)
		if err != nil {
			return value.Value{}, vm.adapt(err)
		}

		return v, nil
	}

	fd, ok := o.Data().(*object.FunctionData)
	if !ok {
		return value.Value{}, vm.throw("TypeError", "value is not a constructor")
	}

	proto := vm.constructorPrototype(o)

	instObj := object.New(vm.realm.ShapeRoot(), fd.Name, object.KindOrdinary, proto)
	instRef := heap.NewGc[value.HeapObject](vm.realm.Heap(), instObj, nil)
	instObj.SetSelf(instRef)
	instance := value.Obj(instRef)

	if fd.Native != nil {
		v, err := fd.Native(vm.realm, instance, args)
		if err != nil {
			return value.Value{}, vm.adapt(err)
		}

		if v.IsObject() {
			return v, nil
		}

		return instance, nil
	}

	for _, field := range fd.Fields {
		if te := vm.runFieldInitializer(instance, ctor, field); te != nil {
			return value.Value{}, te
		}
	}

	for _, pm := range fd.PrivateMethods {
		instObj.SetPrivate(pm.Private, pm.Value)
	}

	code, ok := fd.Code.(*bytecode.CodeBlock)
	if !ok {
		return instance, nil
	}

	parent, _ := fd.Env.(*envrec.Environment)
	env := envrec.NewFunction(parent, code.LocalNames, false, ctor)
	env.BindThisValue(instance)
	env.SetNewTarget(newTarget)

	callFrame := newCallFrame(code, env, instance, newTarget, ctor, args)

	v, te := vm.runFrame(callFrame)
	if te != nil {
		return value.Value{}, te
	}

	if v.IsObject() {
		return v, nil
	}

	return instance, nil
}

func (vm *VM) constructorPrototype(ctor *object.Object) heap.Gc[value.HeapObject] {
	desc, ok := ctor.GetOwnProperty(value.StringKey(value.NewString("prototype")))
	if !ok || !desc.HasValue {
		return vm.realm.ObjectPrototype()
	}

	h, ok := desc.Value.AsObject()
	if !ok {
		return vm.realm.ObjectPrototype()
	}

	return h
}

// runFieldInitializer runs one field's initializer thunk with `this` bound to
// the new instance. `ctor` (the class constructor being constructed) is
// passed through as the frame's function so a `super.x` reference inside the
// initializer resolves against the same HomeObject a method body would use
// (§15.7.10's ClassFieldDefinitionEvaluation runs field initializers with the
// class constructor as the active function object for exactly this reason).
func (vm *VM) runFieldInitializer(instance, ctor value.Value, field object.ClassFieldInitializer) *ThrownError {
	code, ok := field.Init.(*bytecode.CodeBlock)

	var v value.Value

	if ok {
		env := envrec.NewDeclarative(vm.realm.GlobalEnv(), code.LocalNames)
		frame := newFrame(code, env, instance, value.Undefined(), ctor)

		result, te := vm.runFrame(frame)
		if te != nil {
			return te
		}

		v = result
	} else {
		v = value.Undefined()
	}

	h, ok := instance.AsObject()
	if !ok {
		return vm.throw("TypeError", "field initializer target is not an object")
	}

	o, _ := h.Get().(*object.Object)

	if field.Private != nil {
		o.SetPrivate(field.Private, v)

		return nil
	}

	if _, err := o.DefineOwnProperty(vm.realm, field.Key, object.PropertyDescriptor{
		Value: v, HasValue: true, Writable: true, Enumerable: true, Configurable: true,
	}); err != nil {
		return vm.adapt(err)
	}

	return nil
}

// superConstructor resolves the active class's superclass constructor from
// the running method's HomeObject lineage: HomeObject is the class's own
// prototype object, whose [[Prototype]] is the superclass's prototype,
// whose "constructor" own property is the superclass constructor.
func (vm *VM) superConstructor(f *Frame) (value.Value, *ThrownError) {
	fh, ok := f.function.AsObject()
	if !ok {
		return value.Value{}, vm.throw("SyntaxError", "'super' keyword unexpected here")
	}

	fo, _ := fh.Get().(*object.Object)

	fd, ok := fo.Data().(*object.FunctionData)
	if !ok || fd.HomeObject.IsZero() {
		return value.Value{}, vm.throw("SyntaxError", "'super' keyword unexpected here")
	}

	ho, _ := fd.HomeObject.Get().(*object.Object)
	superProto := ho.Shape().Prototype()

	if superProto.IsZero() {
		return value.Value{}, vm.throw("TypeError", "class has no superclass constructor")
	}

	spo, _ := superProto.Get().(*object.Object)

	ctor, err := spo.Get(vm.realm, value.StringKey(value.NewString("constructor")), value.Obj(superProto))
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	return ctor, nil
}
