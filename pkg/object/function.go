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
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// NativeFunc is the native-function contract of §6: receives the current
// context-as-Runtime, the `this` binding and arguments, and returns either a
// value or a Go error representing a thrown value.
type NativeFunc func(rt Runtime, this value.Value, args []value.Value) (value.Value, error)

// Executable is an opaque handle to compiled bytecode (a *bytecode.CodeBlock
// once pkg/bytecode exists). It is declared as `any` here rather than object
// importing pkg/bytecode, preserving the §2 dependency order (Value/Object
// comes before the bytecode compiler); pkg/vm knows how to execute one.
type Executable any

// Closure is an opaque handle to a captured environment chain (an
// *envrec.Environment once pkg/envrec exists), for the same dependency-order
// reason as Executable.
type Closure any

// FunctionData is the Kind-specific payload for KindFunction objects.
type FunctionData struct {
	Name           string
	ParameterCount int
	Native         NativeFunc
	Code           Executable
	Env            Closure
	IsArrow        bool
	IsGenerator    bool
	IsAsync        bool
	IsClassCtor    bool
	IsConstructor  bool
	Strict         bool
	HomeObject     heap.Gc[value.HeapObject] // for `super` property lookups
	Fields         []ClassFieldInitializer   // instance fields to run during [[Construct]]
	PrivateMethods []PrivateMethodInit       // private methods/accessors installed during [[Construct]]
}

// PrivateMethodInit describes one private method or accessor installed on
// every instance at construction time (§4.9's PrivateMethodOrAccessor
// elements). Unlike a PropertyDefinition field, the installed Value is a
// single closure shared by every instance — a private method's identity
// never varies by instance — so, unlike ClassFieldInitializer, there is no
// per-instance thunk to evaluate.
type PrivateMethodInit struct {
	Private *PrivateName
	Value   value.Value // a function, or a *PrivateAccessor-boxed pair
}

// PrivateAccessor boxes a private getter/setter pair as the value.Value
// installed for one PrivateName, since Object.private only ever stores a
// single Value per name: GetPrivateField/SetPrivateField type-assert for
// this shape before falling back to treating the stored value as a plain
// private field.
type PrivateAccessor struct {
	Get, Set value.Value
}

// Trace implements heap.Tracer for a boxed PrivateAccessor's getter/setter.
func (p *PrivateAccessor) Trace(v *heap.Visitor) {
	traceValue(v, p.Get)
	traceValue(v, p.Set)
}

// ClassFieldInitializer describes one instance field/private field a class
// constructor must initialize before running user constructor code (§4.5's
// push-class-field / push-class-field-private opcodes populate this).
type ClassFieldInitializer struct {
	Key     value.PropertyKey
	Private *PrivateName
	Init    Executable // zero-arg thunk evaluated with the new instance as `this`
}

// BoundFunctionData is the Kind-specific payload for KindBoundFunction
// objects (Function.prototype.bind).
type BoundFunctionData struct {
	Target    heap.Gc[value.HeapObject]
	BoundThis value.Value
	BoundArgs []value.Value
}

// Trace implements heap.Tracer for FunctionData's object references,
// including its captured environment chain: Env is declared as `any` (see
// above) purely to keep this package's dependency order clean, but whatever
// pkg/envrec stores there is itself heap.Tracer, so a closure keeps its
// defining scope reachable exactly like every other outgoing reference here.
func (f *FunctionData) Trace(v *heap.Visitor) {
	if !f.HomeObject.IsZero() {
		f.HomeObject.Trace(v)
	}

	if t, ok := f.Env.(heap.Tracer); ok && t != nil {
		t.Trace(v)
	}

	for _, pm := range f.PrivateMethods {
		traceValue(v, pm.Value)
	}
}

// Trace implements heap.Tracer for BoundFunctionData's object references.
func (b *BoundFunctionData) Trace(v *heap.Visitor) {
	if !b.Target.IsZero() {
		b.Target.Trace(v)
	}

	for _, a := range b.BoundArgs {
		traceValue(v, a)
	}

	traceValue(v, b.BoundThis)
}

// IsCallable reports whether o can be invoked as a function.
func (o *Object) IsCallable() bool {
	switch o.kind {
	case KindFunction, KindBoundFunction:
		return true
	case KindProxy:
		pd, _ := o.data.(*ProxyData)
		return pd != nil && pd.TargetCallable
	default:
		return false
	}
}

// IsConstructor reports whether `new o(...)` is permitted.
func (o *Object) IsConstructor() bool {
	switch o.kind {
	case KindBoundFunction:
		return true
	case KindFunction:
		fd, _ := o.data.(*FunctionData)
		return fd != nil && fd.IsConstructor
	case KindProxy:
		pd, _ := o.data.(*ProxyData)
		return pd != nil && pd.TargetConstructor
	default:
		return false
	}
}

// Call invokes this callable with the given this/args, via the late-bound
// VM hook installed by SetCallHook. Bound functions and proxies unwrap here
// so the VM's Call opcode has one uniform entry point.
func (o *Object) Call(rt Runtime, self heap.Gc[value.HeapObject], this value.Value, args []value.Value) (value.Value, error) {
	switch o.kind {
	case KindFunction:
		return callFunctionValue(rt, value.Obj(self), this, args)
	case KindBoundFunction:
		bd := o.data.(*BoundFunctionData)
		full := append(append([]value.Value{}, bd.BoundArgs...), args...)

		return callFunctionValue(rt, value.Obj(bd.Target), bd.BoundThis, full)
	case KindProxy:
		return o.proxyApply(rt, this, args)
	default:
		return value.Value{}, typeErrorNotCallable(rt)
	}
}

// Construct invokes this object's [[Construct]] internal method. Bound
// functions and proxies unwrap here at the object-model level; every other
// kind goes to the late-bound VM hook installed by SetConstructHook. Ordinary
// function construction from bytecode goes
// through the VM's own Construct opcode path, which never calls this method
// for KindFunction (it runs the bytecode frame or Native directly instead).
func (o *Object) Construct(rt Runtime, self heap.Gc[value.HeapObject], args []value.Value, newTarget value.Value) (value.Value, error) {
	switch o.kind {
	case KindBoundFunction:
		bd := o.data.(*BoundFunctionData)
		full := append(append([]value.Value{}, bd.BoundArgs...), args...)

		target, _ := asObjectPtr(bd.Target)

		// §10.4.1.2 BoundFunctionExoticObjects [[Construct]] step 5: if
		// newTarget is this bound function itself, substitute the target.
		if sv, ok := newTarget.AsObject(); ok && sv == self {
			newTarget = value.Obj(bd.Target)
		}

		return target.Construct(rt, bd.Target, full, newTarget)
	case KindProxy:
		return o.proxyConstruct(rt, args, newTarget)
	default:
		return constructFunctionValue(rt, value.Obj(self), newTarget, args)
	}
}

func typeErrorNotCallable(rt Runtime) error {
	if rt != nil {
		_ = rt.NewError("TypeError", "value is not a function")
	}

	return errNotCallable
}

var errNotCallable = &engineError{kind: "TypeError", message: "value is not a function"}

type engineError struct {
	kind, message string
}

func (e *engineError) Error() string { return e.kind + ": " + e.message }
