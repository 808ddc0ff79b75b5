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

// installReflectProxy installs %Proxy% (§28.2) and the %Reflect% namespace
// (§28.1). Get/Set/Call/Construct already dispatch to a Proxy's "get"/
// "set"/"apply"/"construct" traps inside pkg/object itself (proxyGet/
// proxySet/proxyApply/proxyConstruct), since those four internal methods
// are exercised on every ordinary property access and call in the engine,
// not just through Reflect. The other nine traps ("has", "deleteProperty",
// "ownKeys", "defineProperty", "getOwnPropertyDescriptor", "getPrototypeOf",
// "setPrototypeOf", "isExtensible", "preventExtensions") are only ever
// reached through Object.* or Reflect.* static methods, so their dispatch
// lives here instead of as pkg/object methods — trapHas/trapDeleteProperty/
// etc. below recurse through value.Value (not *object.Object) specifically
// so a proxy wrapping another proxy keeps working without pkg/object's own
// HasProperty/Delete/OwnPropertyKeys ever needing a Runtime parameter.
func installReflectProxy(r *realm.Realm) {
	c := newCtx(r)

	installProxy(c)
	installReflect(c)
}

func installProxy(c ctx) {
	r := c.r

	ctorVal, ctorObj := c.nativeConstructor("Proxy", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return newProxy(rt, r, arg(args, 0), arg(args, 1))
	})

	c.method(ctorObj, "revocable", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		proxyVal, err := newProxy(rt, r, arg(args, 0), arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		proxyH, _ := proxyVal.AsObject()
		proxyObj, _ := proxyH.Get().(*object.Object)
		pd := proxyObj.Data().(*object.ProxyData)

		revoke := c.nativeFunction("", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			pd.Revoked = true
			return value.Undefined(), nil
		})

		result := c.newObject(r.IntrinsicPrototype("Object"))
		_ = setPlain(rt, result, "proxy", proxyVal)
		_ = setPlain(rt, result, "revoke", revoke)

		return value.Obj(result.Self()), nil
	})

	// Proxy has no "prototype" own property (§28.2.1's constructor is not
	// associated with an ordinary prototype object) — publish the global
	// binding directly rather than through definePrototype.
	c.define("Proxy", ctorVal)
}

// newProxy implements ProxyCreate (§28.2.1.1): both target and handler must
// be objects, and the resulting exotic object's TargetCallable/
// TargetConstructor bits are fixed at wrap time from the target's own
// current callability (a target that becomes callable/constructible later
// never retroactively changes the proxy's own [[Call]]/[[Construct]]
// presence, matching how every other exotic-object internal-method set is
// fixed at creation).
func newProxy(rt object.Runtime, r *realm.Realm, targetVal, handlerVal value.Value) (value.Value, error) {
	targetH, ok := targetVal.AsObject()
	if !ok {
		return value.Value{}, throwType(rt, "Cannot create proxy with a non-object as target")
	}

	handlerH, ok := handlerVal.AsObject()
	if !ok {
		return value.Value{}, throwType(rt, "Cannot create proxy with a non-object as handler")
	}

	targetObj, ok := targetH.Get().(*object.Object)
	if !ok {
		return value.Value{}, throwType(rt, "Cannot create proxy with a non-object as target")
	}

	pd := &object.ProxyData{
		Target:            targetH,
		Handler:           handlerH,
		TargetCallable:    targetObj.IsCallable(),
		TargetConstructor: targetObj.IsConstructor(),
	}

	obj := object.New(r.ShapeRoot(), "Proxy", object.KindProxy, heap.Gc[value.HeapObject]{})
	obj.SetData(pd)
	ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref), nil
}

func installReflect(c ctx) {
	r := c.r
	ns := c.newObject(r.IntrinsicPrototype("Object"))

	c.method(ns, "get", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		h, ok := target.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "Reflect.get called on non-object")
		}

		pk, err := toPropertyKey(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		receiver := target
		if len(args) > 2 {
			receiver = arg(args, 2)
		}

		o, _ := h.Get().(*object.Object)

		return o.Get(rt, pk, receiver)
	})

	c.method(ns, "set", 3, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		h, ok := target.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "Reflect.set called on non-object")
		}

		pk, err := toPropertyKey(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		receiver := target
		if len(args) > 3 {
			receiver = arg(args, 3)
		}

		o, _ := h.Get().(*object.Object)
		if err := o.Set(rt, pk, arg(args, 2), receiver, false); err != nil {
			return value.Value{}, err
		}

		return value.Bool(true), nil
	})

	c.method(ns, "has", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		ok, err := trapHas(rt, arg(args, 0), mustKeyArg(rt, args, 1))
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(ok), nil
	})

	c.method(ns, "deleteProperty", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		ok, err := trapDeleteProperty(rt, arg(args, 0), mustKeyArg(rt, args, 1))
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(ok), nil
	})

	c.method(ns, "ownKeys", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		keys, err := trapOwnKeys(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		vals := make([]value.Value, len(keys))
		for i, k := range keys {
			vals[i] = propertyKeyToValue(k)
		}

		return c.newArrayOf(vals), nil
	})

	c.method(ns, "defineProperty", 3, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		pk, err := toPropertyKey(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		desc, err := toPropertyDescriptor(rt, arg(args, 2))
		if err != nil {
			return value.Value{}, err
		}

		ok, err := trapDefineProperty(rt, arg(args, 0), pk, desc)
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(ok), nil
	})

	c.method(ns, "getOwnPropertyDescriptor", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		pk, err := toPropertyKey(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		d, ok, err := trapGetOwnPropertyDescriptor(rt, arg(args, 0), pk)
		if err != nil {
			return value.Value{}, err
		}

		if !ok {
			return value.Undefined(), nil
		}

		return c.descriptorToObject(d), nil
	})

	c.method(ns, "getPrototypeOf", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		p, err := trapGetPrototypeOf(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if p.IsZero() {
			return value.Null(), nil
		}

		return value.Obj(p), nil
	})

	c.method(ns, "setPrototypeOf", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		var proto heap.Gc[value.HeapObject]

		protoArg := arg(args, 1)
		if h, ok := protoArg.AsObject(); ok {
			proto = h
		} else if !protoArg.IsNull() {
			return value.Value{}, throwType(rt, "Reflect.setPrototypeOf called with non-object/null prototype")
		}

		ok, err := trapSetPrototypeOf(rt, arg(args, 0), proto)
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(ok), nil
	})

	c.method(ns, "isExtensible", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		ok, err := trapIsExtensible(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(ok), nil
	})

	c.method(ns, "preventExtensions", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		ok, err := trapPreventExtensions(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(ok), nil
	})

	c.method(ns, "apply", 3, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		if !isCallable(target) {
			return value.Value{}, throwType(rt, "Reflect.apply target is not callable")
		}

		argList, err := arrayLikeToSlice(rt, arg(args, 2))
		if err != nil {
			return value.Value{}, err
		}

		return callValue(rt, target, arg(args, 1), argList)
	})

	c.method(ns, "construct", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		h, ok := target.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "Reflect.construct target is not a constructor")
		}

		o, ok := h.Get().(*object.Object)
		if !ok || !o.IsConstructor() {
			return value.Value{}, throwType(rt, "Reflect.construct target is not a constructor")
		}

		argList, err := arrayLikeToSlice(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		newTarget := target
		if len(args) > 2 {
			newTarget = arg(args, 2)
			if nh, ok := newTarget.AsObject(); !ok || !isConstructorHandle(nh) {
				return value.Value{}, throwType(rt, "Reflect.construct newTarget is not a constructor")
			}
		}

		return o.Construct(rt, h, argList, newTarget)
	})

	_, _ = ns.DefineOwnProperty(r, symKey(value.SymbolToStringTag), object.PropertyDescriptor{
		Value: value.StrFromGo("Reflect"), HasValue: true, Enumerable: false, Configurable: true,
	})

	c.define("Reflect", value.Obj(ns.Self()))
}

func isConstructorHandle(h heap.Gc[value.HeapObject]) bool {
	o, ok := h.Get().(*object.Object)
	return ok && o.IsConstructor()
}

func mustKeyArg(rt object.Runtime, args []value.Value, i int) value.PropertyKey {
	pk, err := toPropertyKey(rt, arg(args, i))
	if err != nil {
		return value.StringKey(value.NewString(""))
	}

	return pk
}

func propertyKeyToValue(k value.PropertyKey) value.Value {
	if k.IsSymbol() {
		return value.Sym(k.SymbolValue())
	}

	return value.Str(k.String())
}

// asProxy type-asserts v to a Proxy object and its payload, or reports ok =
// false (an ordinary object, or not an object at all).
func asProxy(v value.Value) (*object.Object, heap.Gc[value.HeapObject], *object.ProxyData, bool) {
	h, ok := v.AsObject()
	if !ok {
		return nil, heap.Gc[value.HeapObject]{}, nil, false
	}

	o, ok := h.Get().(*object.Object)
	if !ok || o.Kind() != object.KindProxy {
		return nil, heap.Gc[value.HeapObject]{}, nil, false
	}

	return o, h, o.Data().(*object.ProxyData), true
}

func trapHas(rt object.Runtime, v value.Value, pk value.PropertyKey) (bool, error) {
	_, ref, pd, isProxy := asProxy(v)
	if !isProxy {
		h, ok := v.AsObject()
		if !ok {
			return false, throwType(rt, "Reflect.has called on non-object")
		}

		oo, _ := h.Get().(*object.Object)

		return oo.HasProperty(pk), nil
	}

	if pd.Revoked {
		return false, throwType(rt, "cannot perform 'has' on a revoked proxy")
	}

	handlerObj, _ := pd.Handler.Get().(*object.Object)

	trap, err := handlerObj.Get(rt, key("has"), value.Obj(pd.Handler))
	if err != nil {
		return false, err
	}

	if trap.IsUndefined() {
		return trapHas(rt, value.Obj(pd.Target), pk)
	}

	keyVal := propertyKeyToValue(pk)

	result, err := callValue(rt, trap, value.Obj(ref), []value.Value{value.Obj(pd.Target), keyVal})
	if err != nil {
		return false, err
	}

	found := result.ToBoolean()

	// Invariant (§9.5.7 step 9): a non-configurable own target property may
	// not be reported absent.
	if !found {
		targetObj, _ := pd.Target.Get().(*object.Object)
		if d, ok := targetObj.GetOwnProperty(pk); ok && !d.Configurable {
			return false, throwType(rt, "proxy has invariant violated for non-configurable property")
		}
	}

	return found, nil
}

func trapDeleteProperty(rt object.Runtime, v value.Value, pk value.PropertyKey) (bool, error) {
	_, ref, pd, isProxy := asProxy(v)
	if !isProxy {
		h, ok := v.AsObject()
		if !ok {
			return false, throwType(rt, "Reflect.deleteProperty called on non-object")
		}

		oo, _ := h.Get().(*object.Object)

		return oo.Delete(pk), nil
	}

	if pd.Revoked {
		return false, throwType(rt, "cannot perform 'deleteProperty' on a revoked proxy")
	}

	handlerObj, _ := pd.Handler.Get().(*object.Object)

	trap, err := handlerObj.Get(rt, key("deleteProperty"), value.Obj(pd.Handler))
	if err != nil {
		return false, err
	}

	if trap.IsUndefined() {
		return trapDeleteProperty(rt, value.Obj(pd.Target), pk)
	}

	result, err := callValue(rt, trap, value.Obj(ref), []value.Value{value.Obj(pd.Target), propertyKeyToValue(pk)})
	if err != nil {
		return false, err
	}

	ok := result.ToBoolean()
	if ok {
		targetObj, _ := pd.Target.Get().(*object.Object)
		if d, found := targetObj.GetOwnProperty(pk); found && !d.Configurable {
			return false, throwType(rt, "proxy deleteProperty invariant violated for non-configurable property")
		}
	}

	return ok, nil
}

func trapOwnKeys(rt object.Runtime, v value.Value) ([]value.PropertyKey, error) {
	_, ref, pd, isProxy := asProxy(v)
	if !isProxy {
		h, ok := v.AsObject()
		if !ok {
			return nil, throwType(rt, "Reflect.ownKeys called on non-object")
		}

		oo, _ := h.Get().(*object.Object)

		return oo.OwnPropertyKeys(), nil
	}

	if pd.Revoked {
		return nil, throwType(rt, "cannot perform 'ownKeys' on a revoked proxy")
	}

	handlerObj, _ := pd.Handler.Get().(*object.Object)

	trap, err := handlerObj.Get(rt, key("ownKeys"), value.Obj(pd.Handler))
	if err != nil {
		return nil, err
	}

	if trap.IsUndefined() {
		return trapOwnKeys(rt, value.Obj(pd.Target))
	}

	result, err := callValue(rt, trap, value.Obj(ref), []value.Value{value.Obj(pd.Target)})
	if err != nil {
		return nil, err
	}

	items, err := arrayLikeToSlice(rt, result)
	if err != nil {
		return nil, err
	}

	keys := make([]value.PropertyKey, 0, len(items))

	for _, item := range items {
		pk, err := toPropertyKey(rt, item)
		if err != nil {
			return nil, err
		}

		keys = append(keys, pk)
	}

	return keys, nil
}

func trapDefineProperty(rt object.Runtime, v value.Value, pk value.PropertyKey, desc object.PropertyDescriptor) (bool, error) {
	_, ref, pd, isProxy := asProxy(v)
	if !isProxy {
		h, ok := v.AsObject()
		if !ok {
			return false, throwType(rt, "Reflect.defineProperty called on non-object")
		}

		oo, _ := h.Get().(*object.Object)

		return oo.DefineOwnProperty(rt, pk, desc)
	}

	if pd.Revoked {
		return false, throwType(rt, "cannot perform 'defineProperty' on a revoked proxy")
	}

	handlerObj, _ := pd.Handler.Get().(*object.Object)

	trap, err := handlerObj.Get(rt, key("defineProperty"), value.Obj(pd.Handler))
	if err != nil {
		return false, err
	}

	if trap.IsUndefined() {
		return trapDefineProperty(rt, value.Obj(pd.Target), pk, desc)
	}

	descObj := ctx{r: runtimeRealm(rt)}.descriptorToObject(desc)

	result, err := callValue(rt, trap, value.Obj(ref), []value.Value{value.Obj(pd.Target), propertyKeyToValue(pk), descObj})
	if err != nil {
		return false, err
	}

	return result.ToBoolean(), nil
}

func trapGetOwnPropertyDescriptor(rt object.Runtime, v value.Value, pk value.PropertyKey) (object.PropertyDescriptor, bool, error) {
	_, ref, pd, isProxy := asProxy(v)
	if !isProxy {
		h, ok := v.AsObject()
		if !ok {
			return object.PropertyDescriptor{}, false, throwType(rt, "Reflect.getOwnPropertyDescriptor called on non-object")
		}

		oo, _ := h.Get().(*object.Object)

		desc, ok := oo.GetOwnProperty(pk)

		return desc, ok, nil
	}

	if pd.Revoked {
		return object.PropertyDescriptor{}, false, throwType(rt, "cannot perform 'getOwnPropertyDescriptor' on a revoked proxy")
	}

	handlerObj, _ := pd.Handler.Get().(*object.Object)

	trap, err := handlerObj.Get(rt, key("getOwnPropertyDescriptor"), value.Obj(pd.Handler))
	if err != nil {
		return object.PropertyDescriptor{}, false, err
	}

	if trap.IsUndefined() {
		return trapGetOwnPropertyDescriptor(rt, value.Obj(pd.Target), pk)
	}

	result, err := callValue(rt, trap, value.Obj(ref), []value.Value{value.Obj(pd.Target), propertyKeyToValue(pk)})
	if err != nil {
		return object.PropertyDescriptor{}, false, err
	}

	if result.IsUndefined() {
		return object.PropertyDescriptor{}, false, nil
	}

	desc, err := toPropertyDescriptor(rt, result)
	if err != nil {
		return object.PropertyDescriptor{}, false, err
	}

	return desc, true, nil
}

func trapGetPrototypeOf(rt object.Runtime, v value.Value) (heap.Gc[value.HeapObject], error) {
	_, ref, pd, isProxy := asProxy(v)
	if !isProxy {
		h, ok := v.AsObject()
		if !ok {
			return heap.Gc[value.HeapObject]{}, throwType(rt, "Reflect.getPrototypeOf called on non-object")
		}

		oo, _ := h.Get().(*object.Object)

		return oo.Shape().Prototype(), nil
	}

	if pd.Revoked {
		return heap.Gc[value.HeapObject]{}, throwType(rt, "cannot perform 'getPrototypeOf' on a revoked proxy")
	}

	handlerObj, _ := pd.Handler.Get().(*object.Object)

	trap, err := handlerObj.Get(rt, key("getPrototypeOf"), value.Obj(pd.Handler))
	if err != nil {
		return heap.Gc[value.HeapObject]{}, err
	}

	if trap.IsUndefined() {
		return trapGetPrototypeOf(rt, value.Obj(pd.Target))
	}

	result, err := callValue(rt, trap, value.Obj(ref), []value.Value{value.Obj(pd.Target)})
	if err != nil {
		return heap.Gc[value.HeapObject]{}, err
	}

	if result.IsNull() {
		return heap.Gc[value.HeapObject]{}, nil
	}

	h, ok := result.AsObject()
	if !ok {
		return heap.Gc[value.HeapObject]{}, throwType(rt, "proxy getPrototypeOf trap must return an object or null")
	}

	return h, nil
}

func trapSetPrototypeOf(rt object.Runtime, v value.Value, proto heap.Gc[value.HeapObject]) (bool, error) {
	_, ref, pd, isProxy := asProxy(v)
	if !isProxy {
		h, ok := v.AsObject()
		if !ok {
			return false, throwType(rt, "Reflect.setPrototypeOf called on non-object")
		}

		oo, _ := h.Get().(*object.Object)
		oo.SetPrototype(proto)

		return true, nil
	}

	if pd.Revoked {
		return false, throwType(rt, "cannot perform 'setPrototypeOf' on a revoked proxy")
	}

	handlerObj, _ := pd.Handler.Get().(*object.Object)

	trap, err := handlerObj.Get(rt, key("setPrototypeOf"), value.Obj(pd.Handler))
	if err != nil {
		return false, err
	}

	protoVal := value.Null()
	if !proto.IsZero() {
		protoVal = value.Obj(proto)
	}

	if trap.IsUndefined() {
		return trapSetPrototypeOf(rt, value.Obj(pd.Target), proto)
	}

	result, err := callValue(rt, trap, value.Obj(ref), []value.Value{value.Obj(pd.Target), protoVal})
	if err != nil {
		return false, err
	}

	return result.ToBoolean(), nil
}

func trapIsExtensible(rt object.Runtime, v value.Value) (bool, error) {
	_, ref, pd, isProxy := asProxy(v)
	if !isProxy {
		h, ok := v.AsObject()
		if !ok {
			return false, throwType(rt, "Reflect.isExtensible called on non-object")
		}

		oo, _ := h.Get().(*object.Object)

		return oo.Extensible(), nil
	}

	if pd.Revoked {
		return false, throwType(rt, "cannot perform 'isExtensible' on a revoked proxy")
	}

	handlerObj, _ := pd.Handler.Get().(*object.Object)

	trap, err := handlerObj.Get(rt, key("isExtensible"), value.Obj(pd.Handler))
	if err != nil {
		return false, err
	}

	if trap.IsUndefined() {
		return trapIsExtensible(rt, value.Obj(pd.Target))
	}

	result, err := callValue(rt, trap, value.Obj(ref), []value.Value{value.Obj(pd.Target)})
	if err != nil {
		return false, err
	}

	booleanTrapResult := result.ToBoolean()

	targetObj, _ := pd.Target.Get().(*object.Object)
	if booleanTrapResult != targetObj.Extensible() {
		return false, throwType(rt, "proxy isExtensible invariant violated")
	}

	return booleanTrapResult, nil
}

func trapPreventExtensions(rt object.Runtime, v value.Value) (bool, error) {
	_, ref, pd, isProxy := asProxy(v)
	if !isProxy {
		h, ok := v.AsObject()
		if !ok {
			return false, throwType(rt, "Reflect.preventExtensions called on non-object")
		}

		oo, _ := h.Get().(*object.Object)
		oo.PreventExtensions()

		return true, nil
	}

	if pd.Revoked {
		return false, throwType(rt, "cannot perform 'preventExtensions' on a revoked proxy")
	}

	handlerObj, _ := pd.Handler.Get().(*object.Object)

	trap, err := handlerObj.Get(rt, key("preventExtensions"), value.Obj(pd.Handler))
	if err != nil {
		return false, err
	}

	if trap.IsUndefined() {
		return trapPreventExtensions(rt, value.Obj(pd.Target))
	}

	result, err := callValue(rt, trap, value.Obj(ref), []value.Value{value.Obj(pd.Target)})
	if err != nil {
		return false, err
	}

	ok := result.ToBoolean()

	targetObj, _ := pd.Target.Get().(*object.Object)
	if ok && targetObj.Extensible() {
		return false, throwType(rt, "proxy preventExtensions invariant violated: target is still extensible")
	}

	return ok, nil
}

// runtimeRealm recovers the *realm.Realm backing rt, so a free function
// (not a ctx method) can still build a descriptor object via ctx's own
// descriptorToObject helper. Every Runtime passed through pkg/builtins is,
// in practice, always a *realm.Realm (the only implementer, per
// object.Runtime's own doc comment) — this assertion documents that
// assumption at its one call site rather than threading a ctx through
// every trap-dispatch helper above.
func runtimeRealm(rt object.Runtime) *realm.Realm {
	if r, ok := rt.(*realm.Realm); ok {
		return r
	}

	return nil
}
