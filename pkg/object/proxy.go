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
	"fmt"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// ProxyData is the Kind-specific payload for KindProxy objects. Per §9,
// "Proxy invariants are enforced inside the object operations, not by the
// proxy's traps — traps return values, the engine validates": every method
// below calls the trap (if present) and then re-validates the result
// against the target's real semantics before returning it.
type ProxyData struct {
	Target  heap.Gc[value.HeapObject]
	Handler heap.Gc[value.HeapObject]
	// TargetCallable/TargetConstructor record whether the proxy's target was
	// itself callable/a constructor at wrap time (§9.5.1/.2's own "call
	// this exotic object" internal method is only present when the target
	// has it) — set once by the Proxy constructor in pkg/builtins, since
	// pkg/object has no visibility into pkg/builtins' own IsCallable checks.
	TargetCallable    bool
	TargetConstructor bool
	Revoked           bool
}

// Trace implements heap.Tracer.
func (p *ProxyData) Trace(v *heap.Visitor) {
	if !p.Target.IsZero() {
		p.Target.Trace(v)
	}

	if !p.Handler.IsZero() {
		p.Handler.Trace(v)
	}
}

func (o *Object) proxyTrap(rt Runtime, name string) (value.Value, *Object, *Object, error) {
	pd := o.data.(*ProxyData)
	if pd.Revoked {
		return value.Value{}, nil, nil, fmt.Errorf("TypeError: cannot perform operation on a revoked proxy")
	}

	target, _ := asObjectPtr(pd.Target)
	handler, _ := asObjectPtr(pd.Handler)

	trap, err := handler.Get(rt, value.StringKey(value.NewString(name)), value.Obj(pd.Handler))
	if err != nil {
		return value.Value{}, nil, nil, err
	}

	return trap, target, handler, nil
}

func (o *Object) proxyGet(rt Runtime, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	trap, target, _, err := o.proxyTrap(rt, "get")
	if err != nil {
		return value.Value{}, err
	}

	if trap.IsUndefined() {
		return target.Get(rt, key, receiver)
	}

	keyVal, _ := propertyKeyToValue(key)
	pd := o.data.(*ProxyData)

	result, err := callFunctionValue(rt, trap, value.Obj(o.asHandle()), []value.Value{value.Obj(pd.Target), keyVal, receiver})
	if err != nil {
		return value.Value{}, err
	}

	// Invariant: if target has a non-configurable, non-writable own data
	// property for key, the trap result must match it exactly.
	if d, ok := target.GetOwnProperty(key); ok && !d.Configurable && !d.IsAccessor && !d.Writable {
		if !value.SameValue(result, d.Value) {
			return value.Value{}, fmt.Errorf("TypeError: proxy get invariant violated for non-writable, non-configurable property")
		}
	}

	return result, nil
}

func (o *Object) proxySet(rt Runtime, key value.PropertyKey, v value.Value, receiver value.Value, strict bool) error {
	trap, target, _, err := o.proxyTrap(rt, "set")
	if err != nil {
		return err
	}

	pd := o.data.(*ProxyData)

	if trap.IsUndefined() {
		return target.Set(rt, key, v, receiver, strict)
	}

	keyVal, _ := propertyKeyToValue(key)

	result, err := callFunctionValue(rt, trap, value.Obj(o.asHandle()), []value.Value{value.Obj(pd.Target), keyVal, v, receiver})
	if err != nil {
		return err
	}

	if !result.ToBoolean() {
		return writeFailure(rt, strict, key)
	}

	if d, ok := target.GetOwnProperty(key); ok && !d.Configurable && !d.IsAccessor && !d.Writable {
		if !value.SameValue(v, d.Value) {
			return fmt.Errorf("TypeError: proxy set invariant violated for non-writable, non-configurable property")
		}
	}

	return nil
}

func (o *Object) proxyApply(rt Runtime, this value.Value, args []value.Value) (value.Value, error) {
	trap, target, _, err := o.proxyTrap(rt, "apply")
	if err != nil {
		return value.Value{}, err
	}

	pd := o.data.(*ProxyData)

	if trap.IsUndefined() {
		return target.Call(rt, pd.Target, this, args)
	}

	result, err := callFunctionValue(rt, trap, value.Obj(o.asHandle()), []value.Value{value.Obj(pd.Target), this, newArgumentsArray(rt, args)})

	return result, err
}

func (o *Object) proxyConstruct(rt Runtime, args []value.Value, newTarget value.Value) (value.Value, error) {
	trap, target, _, err := o.proxyTrap(rt, "construct")
	if err != nil {
		return value.Value{}, err
	}

	pd := o.data.(*ProxyData)

	if trap.IsUndefined() {
		return target.Construct(rt, pd.Target, args, newTarget)
	}

	// The "construct" trap itself is invoked as a plain call (it is the
	// target's own [[Construct]], not the trap's, that newTarget selects).
	result, err := callFunctionValue(rt, trap, value.Obj(o.asHandle()), []value.Value{value.Obj(pd.Target), newArgumentsArray(rt, args), newTarget})
	if err != nil {
		return value.Value{}, err
	}

	if !result.IsObject() {
		return value.Value{}, fmt.Errorf("TypeError: proxy construct trap must return an object")
	}

	return result, nil
}

// newArgumentsArray materializes args as a real JS Array (§9.5.12's
// CreateArrayFromList), the shape the "apply"/"construct" traps' own
// argumentsList parameter must have.
func newArgumentsArray(rt Runtime, args []value.Value) value.Value {
	proto := rt.IntrinsicPrototype("Array")
	obj := New(rt.ShapeRoot(), "Array", KindArray, proto)
	obj.InitArrayLength()
	ref := heap.NewGc[value.HeapObject](rt.Heap(), obj, nil)
	obj.SetSelf(ref)

	for i, v := range args {
		_ = obj.Set(rt, value.StringKey(value.NewString(fmt.Sprintf("%d", i))), v, value.Undefined(), false)
	}

	return value.Obj(ref)
}

// asHandle recovers the heap handle for this object; used by proxy traps
// which must pass `this` as the Proxy wrapper, not the underlying Object.
// Each Object caches its own handle at construction time via SetSelf.
func (o *Object) asHandle() heap.Gc[value.HeapObject] {
	return o.self
}

// SetSelf records the heap handle that wraps this object, so methods that
// need to pass "myself" to a callback (proxy traps, Symbol.species, …) can
// do so without the caller threading it through every call.
func (o *Object) SetSelf(self heap.Gc[value.HeapObject]) { o.self = self }

// Self returns the heap handle SetSelf recorded, so a caller that built an
// Object once (pkg/builtins's installers in particular) can recover its own
// handle later without allocating a second one for the same object.
func (o *Object) Self() heap.Gc[value.HeapObject] { return o.self }

func propertyKeyToValue(key value.PropertyKey) (value.Value, error) {
	if key.IsSymbol() {
		return value.Sym(key.SymbolValue()), nil
	}

	return value.Str(key.String()), nil
}
