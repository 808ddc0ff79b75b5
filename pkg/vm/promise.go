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

// PromiseStatus is a promise's [[PromiseState]] (§25.6).
type PromiseStatus uint8

const (
	PromisePending PromiseStatus = iota
	PromiseFulfilled
	PromiseRejected
)

// reaction is one registered PerformPromiseThen callback pair, together
// with the capability of the promise .then returned for it — queued onto
// the realm's job queue once the promise this reaction was registered
// against settles, per §25.6.5.4's NewPromiseReactionJob.
type reaction struct {
	onFulfilled, onRejected value.Value
	capability              value.Value // has "resolve"/"reject" properties
}

// PromiseState is a promise's full [[PromiseState]]/[[PromiseResult]]/
// reaction-lists record (§25.6). Fulfill/Reject run every reaction queued
// while pending through vm's job queue, giving pkg/builtins/promise a real
// microtask-scheduled `.then` instead of the earlier synchronous-only
// settlement model.
type PromiseState struct {
	Status PromiseStatus
	Value  value.Value

	reactions []reaction
}

// Trace implements heap.Tracer: a pending promise's queued reaction
// closures (and the derived promise/capability each holds) must stay alive
// until they run.
func (ps *PromiseState) Trace(v *heap.Visitor) {
	traceVal(v, ps.Value)

	for _, r := range ps.reactions {
		traceVal(v, r.onFulfilled)
		traceVal(v, r.onRejected)
		traceVal(v, r.capability)
	}
}

func (vm *VM) NewPromiseObject() (value.Value, *PromiseState) {
	proto := vm.realm.IntrinsicPrototype("Promise")
	obj := object.New(vm.realm.ShapeRoot(), "Promise", object.KindPromise, proto)
	ps := &PromiseState{Status: PromisePending}
	obj.SetData(ps)
	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref), ps
}

// PromiseDataOf returns v's PromiseState if v is a Promise object.
func PromiseDataOf(v value.Value) (*PromiseState, bool) {
	h, ok := v.AsObject()
	if !ok {
		return nil, false
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, false
	}

	ps, ok := o.Data().(*PromiseState)

	return ps, ok
}

// Fulfill settles ps as fulfilled with v (a no-op if already settled) and
// schedules every queued reaction as a microtask.
func (vm *VM) Fulfill(ps *PromiseState, v value.Value) {
	if ps.Status != PromisePending {
		return
	}

	ps.Status, ps.Value = PromiseFulfilled, v
	vm.scheduleReactions(ps)
}

// Reject settles ps as rejected with reason (a no-op if already settled)
// and schedules every queued reaction as a microtask.
func (vm *VM) Reject(ps *PromiseState, reason value.Value) {
	if ps.Status != PromisePending {
		return
	}

	ps.Status, ps.Value = PromiseRejected, reason
	vm.scheduleReactions(ps)
}

func (vm *VM) scheduleReactions(ps *PromiseState) {
	pending := ps.reactions
	ps.reactions = nil

	for _, r := range pending {
		vm.enqueueReaction(ps, r)
	}
}

// enqueueReaction implements NewPromiseReactionJob (§25.6.5.4): invoke the
// handler matching ps's settlement, then settle r's own derived promise
// with the handler's outcome (or propagate ps's own outcome through when no
// handler of the matching kind was supplied).
func (vm *VM) enqueueReaction(ps *PromiseState, r reaction) {
	vm.jobs.EnqueueMicrotask(func() {
		handler := r.onFulfilled
		settled, settledValue := ps.Status, ps.Value

		if settled == PromiseRejected {
			handler = r.onRejected
		}

		capObj := mustObject(r.capability)
		resolveFn, _ := capObj.Get(vm.realm, value.StringKey(value.NewString("resolve")), r.capability)
		rejectFn, _ := capObj.Get(vm.realm, value.StringKey(value.NewString("reject")), r.capability)

		if !handler.IsObject() {
			// no handler of the matching kind: propagate through unchanged.
			if settled == PromiseRejected {
				_, _ = vm.Invoke(rejectFn, value.Undefined(), []value.Value{settledValue})
			} else {
				_, _ = vm.Invoke(resolveFn, value.Undefined(), []value.Value{settledValue})
			}

			return
		}

		result, err := vm.Invoke(handler, value.Undefined(), []value.Value{settledValue})
		if err != nil {
			reason := value.Undefined()
			if te, ok := err.(*ThrownError); ok {
				reason = te.Value
			}

			_, _ = vm.Invoke(rejectFn, value.Undefined(), []value.Value{reason})

			return
		}

		_, _ = vm.Invoke(resolveFn, value.Undefined(), []value.Value{result})
	})
}

func mustObject(v value.Value) *object.Object {
	h, _ := v.AsObject()
	o, _ := h.Get().(*object.Object)

	return o
}

// NewPromiseCapability implements CreatePromiseCapability (§25.6.1.5): a
// fresh pending promise plus native resolve/reject functions closing over
// its state, packaged as a plain object with "promise"/"resolve"/"reject"
// data properties (the shape async-function codegen and Promise combinators
// both expect to destructure). resolve follows a thenable passed to it
// exactly once (ResolvePromise, §25.6.1.3.2); reject settles directly.
func (vm *VM) NewPromiseCapability() value.Value {
	promise, ps := vm.NewPromiseObject()
	var resolved bool

	resolve := vm.NativeFunc("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		if resolved {
			return value.Undefined(), nil
		}

		resolved = true

		v := value.Undefined()
		if len(args) > 0 {
			v = args[0]
		}

		vm.resolvePromise(ps, v)

		return value.Undefined(), nil
	})

	reject := vm.NativeFunc("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		if resolved {
			return value.Undefined(), nil
		}

		resolved = true

		v := value.Undefined()
		if len(args) > 0 {
			v = args[0]
		}

		vm.Reject(ps, v)

		return value.Undefined(), nil
	})

	proto := vm.realm.ObjectPrototype()
	obj := object.New(vm.realm.ShapeRoot(), "Object", object.KindOrdinary, proto)
	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	_ = obj.Set(vm.realm, value.StringKey(value.NewString("promise")), promise, value.Undefined(), false)
	_ = obj.Set(vm.realm, value.StringKey(value.NewString("resolve")), resolve, value.Undefined(), false)
	_ = obj.Set(vm.realm, value.StringKey(value.NewString("reject")), reject, value.Undefined(), false)

	return value.Obj(ref)
}

// resolvePromise implements the thenable-chasing half of ResolvePromise: if
// v carries a callable "then", ps adopts v's eventual settlement instead of
// fulfilling with the thenable object itself.
func (vm *VM) resolvePromise(ps *PromiseState, v value.Value) {
	h, ok := v.AsObject()
	if !ok {
		vm.Fulfill(ps, v)
		return
	}

	o, ok := h.Get().(*object.Object)
	if !ok || !o.HasProperty(value.StringKey(value.NewString("then"))) {
		vm.Fulfill(ps, v)
		return
	}

	then, err := o.Get(vm.realm, value.StringKey(value.NewString("then")), v)
	if err != nil || !then.IsObject() || !mustObject(then).IsCallable() {
		vm.Fulfill(ps, v)
		return
	}

	vm.jobs.EnqueueMicrotask(func() {
		var called bool

		onFulfilled := vm.NativeFunc("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			if called {
				return value.Undefined(), nil
			}

			called = true
			arg := value.Undefined()
			if len(args) > 0 {
				arg = args[0]
			}

			vm.resolvePromise(ps, arg)

			return value.Undefined(), nil
		})

		onRejected := vm.NativeFunc("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			if called {
				return value.Undefined(), nil
			}

			called = true
			arg := value.Undefined()
			if len(args) > 0 {
				arg = args[0]
			}

			vm.Reject(ps, arg)

			return value.Undefined(), nil
		})

		if _, err := vm.Invoke(then, v, []value.Value{onFulfilled, onRejected}); err != nil && !called {
			called = true
			if te, ok := err.(*ThrownError); ok {
				vm.Reject(ps, te.Value)
			}
		}
	})
}

// PerformPromiseThen implements §25.6.5.4: registers onFulfilled/onRejected
// against promise's PromiseState, returning the derived promise resultCap
// wraps. If promise is already settled the reaction is scheduled
// immediately instead of being queued.
func (vm *VM) PerformPromiseThen(ps *PromiseState, onFulfilled, onRejected value.Value) value.Value {
	resultCap := vm.NewPromiseCapability()
	r := reaction{onFulfilled: onFulfilled, onRejected: onRejected, capability: resultCap}

	if ps.Status == PromisePending {
		ps.reactions = append(ps.reactions, r)
	} else {
		vm.enqueueReaction(ps, r)
	}

	resultCapObj := mustObject(resultCap)
	promise, _ := resultCapObj.Get(vm.realm, value.StringKey(value.NewString("promise")), resultCap)

	return promise
}

// PromiseResolve implements the PromiseResolve abstract operation (§25.6.4.6):
// an already-promise value passes through; anything else is wrapped in a
// freshly fulfilled promise.
func (vm *VM) PromiseResolve(v value.Value) (value.Value, *ThrownError) {
	if _, ok := PromiseDataOf(v); ok {
		return v, nil
	}

	promise, ps := vm.NewPromiseObject()
	vm.resolvePromise(ps, v)

	return promise, nil
}

// NativeFunc builds a callable Function object wrapping a Go closure — the
// shape every intrinsic method pkg/builtins installs, and the resolve/
// reject functions a promise capability hands out.
func (vm *VM) NativeFunc(name string, paramCount int, fn object.NativeFunc) value.Value {
	proto := vm.realm.IntrinsicPrototype("Function")
	obj := object.New(vm.realm.ShapeRoot(), "Function", object.KindFunction, proto)
	obj.SetData(&object.FunctionData{Name: name, ParameterCount: paramCount, Native: fn, Strict: true})
	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref)
}
