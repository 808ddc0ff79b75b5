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
	"strconv"

	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
	"github.com/ecmaforge/ecmaforge/pkg/vm"
)

// installPromise builds %Promise% and %Promise.prototype% (§27.2) on top of
// pkg/vm/promise.go's already-settled reaction/capability machinery: every
// method here either drains an iterable and wires native resolve/reject
// closures around m.NewPromiseCapability, or forwards straight to
// m.PerformPromiseThen/m.PromiseResolve. Install is only ever called with a
// non-nil m when building this installer (see the Install guard), since a
// Promise with no VM to schedule its microtasks on is useless.
func installPromise(r *realm.Realm, m *vm.VM) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("Promise", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		executor := arg(args, 0)
		if !isCallable(executor) {
			return value.Value{}, throwType(rt, "Promise resolver is not a function")
		}

		capability := m.NewPromiseCapability()

		resolveFn, err := objGet(rt, capability, "resolve")
		if err != nil {
			return value.Value{}, err
		}

		rejectFn, err := objGet(rt, capability, "reject")
		if err != nil {
			return value.Value{}, err
		}

		promiseVal, err := objGet(rt, capability, "promise")
		if err != nil {
			return value.Value{}, err
		}

		if _, err := callValue(rt, executor, value.Undefined(), []value.Value{resolveFn, rejectFn}); err != nil {
			reason := errorReason(err)
			if _, rejErr := callValue(rt, rejectFn, value.Undefined(), []value.Value{reason}); rejErr != nil {
				return value.Value{}, rejErr
			}
		}

		return promiseVal, nil
	})
	c.definePrototype("Promise", ctorVal, ctorObj, proto, protoRef)
	c.define("Promise", ctorVal)

	c.method(ctorObj, "resolve", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		p, terr := m.PromiseResolve(arg(args, 0))
		if terr != nil {
			return value.Value{}, terr
		}

		return p, nil
	})

	c.method(ctorObj, "reject", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		promise, ps := m.NewPromiseObject()
		m.Reject(ps, arg(args, 0))

		return promise, nil
	})

	c.method(ctorObj, "all", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return promiseCombinator(rt, c, m, arg(args, 0), combinatorAll)
	})
	c.method(ctorObj, "allSettled", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return promiseCombinator(rt, c, m, arg(args, 0), combinatorAllSettled)
	})
	c.method(ctorObj, "race", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return promiseCombinator(rt, c, m, arg(args, 0), combinatorRace)
	})
	c.method(ctorObj, "any", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return promiseCombinator(rt, c, m, arg(args, 0), combinatorAny)
	})

	c.method(proto, "then", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		ps, err := mustPromiseState(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		return m.PerformPromiseThen(ps, arg(args, 0), arg(args, 1)), nil
	})

	c.method(proto, "catch", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		ps, err := mustPromiseState(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		return m.PerformPromiseThen(ps, value.Undefined(), arg(args, 0)), nil
	})

	c.method(proto, "finally", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		ps, err := mustPromiseState(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		onFinally := arg(args, 0)
		if !isCallable(onFinally) {
			return m.PerformPromiseThen(ps, onFinally, onFinally), nil
		}

		onFulfilled := c.nativeFunction("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			return runFinallyThunk(rt, m, onFinally, arg(args, 0), false)
		})
		onRejected := c.nativeFunction("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			return runFinallyThunk(rt, m, onFinally, arg(args, 0), true)
		})

		return m.PerformPromiseThen(ps, onFulfilled, onRejected), nil
	})
}

// mustPromiseState implements the "this is a Promise" receiver check every
// Promise.prototype method shares (§27.2.5).
func mustPromiseState(rt object.Runtime, this value.Value) (*vm.PromiseState, error) {
	ps, ok := vm.PromiseDataOf(this)
	if !ok {
		return nil, throwType(rt, "method called on incompatible receiver")
	}

	return ps, nil
}

// errorReason unwraps a Go error raised by callValue back into the thrown
// JS value, falling back to undefined for an error this package never
// throws as a JS exception in the first place.
func errorReason(err error) value.Value {
	if te, ok := err.(*vm.ThrownError); ok {
		return te.Value
	}

	if t, ok := err.(*thrown); ok {
		return t.v
	}

	return value.Undefined()
}

// runFinallyThunk implements ThenFinally (§27.2.5.3.1): onFinally is called
// with no arguments, and its own return value is resolved and awaited before
// the original fulfillment value (or rejection reason) passes through
// unchanged — so an async cleanup action delays settlement but never
// changes the outcome it observed.
func runFinallyThunk(rt object.Runtime, m *vm.VM, onFinally, passthrough value.Value, reject bool) (value.Value, error) {
	result, err := callValue(rt, onFinally, value.Undefined(), nil)
	if err != nil {
		return value.Value{}, err
	}

	waitOn, terr := m.PromiseResolve(result)
	if terr != nil {
		return value.Value{}, terr
	}

	waitPs, _ := vm.PromiseDataOf(waitOn)

	// onFulfilled relays the original outcome once cleanup settles
	// successfully; onRejected is left as "no handler" (value.Undefined())
	// so a cleanup action that itself throws supersedes the original
	// outcome instead of masking it, per §27.2.5.3.1 step 5's own
	// ThenFinally closure only ever wiring a fulfilled reaction.
	relay := m.NativeFunc("", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		if reject {
			return value.Value{}, &vm.ThrownError{Value: passthrough}
		}

		return passthrough, nil
	})

	return m.PerformPromiseThen(waitPs, relay, value.Undefined()), nil
}

type combinatorKind int

const (
	combinatorAll combinatorKind = iota
	combinatorAllSettled
	combinatorRace
	combinatorAny
)

// promiseCombinator implements Promise.all/allSettled/race/any (§27.2.4):
// all four drain iterable into a slice of input promises up front (this
// package's iterableToSlice, not a suspendable iterator — fine, since every
// built-in call here runs to completion before yielding control back to the
// event loop anyway) and differ only in how each settled input is folded
// into the combined outcome.
func promiseCombinator(rt object.Runtime, c ctx, m *vm.VM, iterable value.Value, kind combinatorKind) (value.Value, error) {
	items, err := iterableToSlice(rt, iterable)
	if err != nil {
		return value.Value{}, err
	}

	capability := m.NewPromiseCapability()

	resolveFn, err := objGet(rt, capability, "resolve")
	if err != nil {
		return value.Value{}, err
	}

	rejectFn, err := objGet(rt, capability, "reject")
	if err != nil {
		return value.Value{}, err
	}

	promiseVal, err := objGet(rt, capability, "promise")
	if err != nil {
		return value.Value{}, err
	}

	if len(items) == 0 {
		switch kind {
		case combinatorAny:
			reason, aggErr := newAggregateError(rt, c, nil, "All promises were rejected")
			if aggErr != nil {
				return value.Value{}, aggErr
			}

			_, _ = callValue(rt, rejectFn, value.Undefined(), []value.Value{reason})
		default:
			_, _ = callValue(rt, resolveFn, value.Undefined(), []value.Value{c.newArrayOf(nil)})
		}

		return promiseVal, nil
	}

	results := make([]value.Value, len(items))
	for i := range results {
		results[i] = value.Undefined()
	}

	resultsArr := c.newArrayOf(results)
	errorsSlice := make([]value.Value, len(items))
	remaining := len(items)
	settled := false

	for i, item := range items {
		idx := i

		itemPromise, terr := m.PromiseResolve(item)
		if terr != nil {
			return value.Value{}, terr
		}

		itemPs, _ := vm.PromiseDataOf(itemPromise)

		switch kind {
		case combinatorAll:
			onFulfilled := c.nativeFunction("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
				arraySetIndex(rt, resultsArr, idx, arg(args, 0))
				remaining--
				if remaining == 0 {
					_, _ = callValue(rt, resolveFn, value.Undefined(), []value.Value{resultsArr})
				}

				return value.Undefined(), nil
			})
			m.PerformPromiseThen(itemPs, onFulfilled, rejectFn)

		case combinatorAllSettled:
			onFulfilled := c.nativeFunction("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
				entry := c.newObject(c.r.IntrinsicPrototype("Object"))
				_ = setPlain(rt, entry, "status", value.StrFromGo("fulfilled"))
				_ = setPlain(rt, entry, "value", arg(args, 0))
				arraySetIndex(rt, resultsArr, idx, value.Obj(entry.Self()))

				remaining--
				if remaining == 0 {
					_, _ = callValue(rt, resolveFn, value.Undefined(), []value.Value{resultsArr})
				}

				return value.Undefined(), nil
			})
			onRejected := c.nativeFunction("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
				entry := c.newObject(c.r.IntrinsicPrototype("Object"))
				_ = setPlain(rt, entry, "status", value.StrFromGo("rejected"))
				_ = setPlain(rt, entry, "reason", arg(args, 0))
				arraySetIndex(rt, resultsArr, idx, value.Obj(entry.Self()))

				remaining--
				if remaining == 0 {
					_, _ = callValue(rt, resolveFn, value.Undefined(), []value.Value{resultsArr})
				}

				return value.Undefined(), nil
			})
			m.PerformPromiseThen(itemPs, onFulfilled, onRejected)

		case combinatorRace:
			m.PerformPromiseThen(itemPs, resolveFn, rejectFn)

		case combinatorAny:
			onFulfilled := c.nativeFunction("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
				if !settled {
					settled = true
					_, _ = callValue(rt, resolveFn, value.Undefined(), []value.Value{arg(args, 0)})
				}

				return value.Undefined(), nil
			})
			onRejected := c.nativeFunction("", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
				errorsSlice[idx] = arg(args, 0)
				remaining--
				if remaining == 0 && !settled {
					reason, aggErr := newAggregateError(rt, c, errorsSlice, "All promises were rejected")
					if aggErr != nil {
						return value.Value{}, aggErr
					}

					_, _ = callValue(rt, rejectFn, value.Undefined(), []value.Value{reason})
				}

				return value.Undefined(), nil
			})
			m.PerformPromiseThen(itemPs, onFulfilled, onRejected)
		}
	}

	return promiseVal, nil
}

func setPlain(rt object.Runtime, obj *object.Object, name string, v value.Value) error {
	return obj.Set(rt, key(name), v, value.Undefined(), false)
}

func arraySetIndex(rt object.Runtime, arr value.Value, idx int, v value.Value) {
	h, ok := arr.AsObject()
	if !ok {
		return
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return
	}

	_ = o.Set(rt, key(strconv.Itoa(idx)), v, value.Undefined(), false)
}

// newAggregateError builds `new AggregateError(errors, message)` via the
// already-installed %AggregateError% intrinsic (its constructor builds its
// own instance regardless of how it's invoked, so a plain call works the
// same as `new`).
func newAggregateError(rt object.Runtime, c ctx, errors []value.Value, message string) (value.Value, error) {
	ctor, ok := c.r.Intrinsic("%AggregateError%")
	if !ok {
		return value.Value{}, throwType(rt, "AggregateError is not installed")
	}

	return callValue(rt, ctor, value.Undefined(), []value.Value{c.newArrayOf(errors), value.StrFromGo(message)})
}
