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

// installIteratorPrototype builds %Iterator.prototype%, the shared ancestor
// every concrete built-in iterator (Array/String/Map/Set/RegExp's own
// per-kind iterators, each previously parented directly on
// %Object.prototype%) now chains to, plus the iterator-helper methods
// (`.map`, `.filter`, `.take`, `.drop`, `.flatMap`, `.toArray`, `.forEach`,
// `.reduce`, `.some`, `.every`, `.find`) every one of them inherits as a
// result. Lazy helpers (`map`/`filter`/`take`/`drop`/`flatMap`) build a new
// KindIteratorHelper wrapper pulling from the receiver's own `next` on
// demand, the same "stateful object with its own next closure" idiom
// newArrayIterator/newStringIterator already establish; the terminal
// methods (`toArray` and the rest) drain the receiver directly instead of
// building anything.
func installIteratorPrototype(r *realm.Realm) {
	c := newCtx(r)

	proto := object.New(r.ShapeRoot(), "Iterator", object.KindOrdinary, r.IntrinsicPrototype("Object"))
	ref := heap.NewGc[value.HeapObject](r.Heap(), proto, nil)
	proto.SetSelf(ref)
	r.SetIntrinsic("%Iterator.prototype%", value.Obj(ref))

	c.symbolMethod(proto, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})

	c.method(proto, "map", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		mapper := arg(args, 0)
		if !isCallable(mapper) {
			return value.Value{}, throwType(rt, "Iterator.prototype.map called with a non-callable mapper")
		}

		nextFn, err := requireNext(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		idx := int32(0)

		return c.newIteratorHelper(func(rt object.Runtime, _ value.Value, _ []value.Value) (value.Value, error) {
			v, done, err := pullSource(rt, nextFn, this)
			if err != nil || done {
				return c.iterResult(value.Undefined(), true), err
			}

			mapped, err := callValue(rt, mapper, value.Undefined(), []value.Value{v, value.Int(idx)})
			idx++
			if err != nil {
				return value.Value{}, err
			}

			return c.iterResult(mapped, false), nil
		}), nil
	})

	c.method(proto, "filter", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		predicate := arg(args, 0)
		if !isCallable(predicate) {
			return value.Value{}, throwType(rt, "Iterator.prototype.filter called with a non-callable predicate")
		}

		nextFn, err := requireNext(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		idx := int32(0)

		return c.newIteratorHelper(func(rt object.Runtime, _ value.Value, _ []value.Value) (value.Value, error) {
			for {
				v, done, err := pullSource(rt, nextFn, this)
				if err != nil || done {
					return c.iterResult(value.Undefined(), true), err
				}

				keep, err := callValue(rt, predicate, value.Undefined(), []value.Value{v, value.Int(idx)})
				idx++
				if err != nil {
					return value.Value{}, err
				}

				if keep.ToBoolean() {
					return c.iterResult(v, false), nil
				}
			}
		}), nil
	})

	c.method(proto, "take", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		n, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if n < 0 {
			return value.Value{}, throwRange(rt, "Iterator.prototype.take called with a negative limit")
		}

		nextFn, err := requireNext(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		remaining := n

		return c.newIteratorHelper(func(rt object.Runtime, _ value.Value, _ []value.Value) (value.Value, error) {
			if remaining <= 0 {
				return c.iterResult(value.Undefined(), true), nil
			}

			remaining--

			v, done, err := pullSource(rt, nextFn, this)
			if err != nil || done {
				remaining = 0
				return c.iterResult(value.Undefined(), true), err
			}

			return c.iterResult(v, false), nil
		}), nil
	})

	c.method(proto, "drop", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		n, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if n < 0 {
			return value.Value{}, throwRange(rt, "Iterator.prototype.drop called with a negative limit")
		}

		nextFn, err := requireNext(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		remaining := n

		return c.newIteratorHelper(func(rt object.Runtime, _ value.Value, _ []value.Value) (value.Value, error) {
			for remaining > 0 {
				remaining--

				_, done, err := pullSource(rt, nextFn, this)
				if err != nil || done {
					return c.iterResult(value.Undefined(), true), err
				}
			}

			v, done, err := pullSource(rt, nextFn, this)
			if err != nil || done {
				return c.iterResult(value.Undefined(), true), err
			}

			return c.iterResult(v, false), nil
		}), nil
	})

	c.method(proto, "flatMap", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		mapper := arg(args, 0)
		if !isCallable(mapper) {
			return value.Value{}, throwType(rt, "Iterator.prototype.flatMap called with a non-callable mapper")
		}

		nextFn, err := requireNext(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		idx := int32(0)

		var innerNext *value.Value
		var innerIter value.Value

		return c.newIteratorHelper(func(rt object.Runtime, _ value.Value, _ []value.Value) (value.Value, error) {
			for {
				if innerNext != nil {
					v, done, err := pullSource(rt, *innerNext, innerIter)
					if err != nil {
						return value.Value{}, err
					}

					if !done {
						return c.iterResult(v, false), nil
					}

					innerNext = nil
				}

				v, done, err := pullSource(rt, nextFn, this)
				if err != nil {
					return value.Value{}, err
				}

				if done {
					return c.iterResult(value.Undefined(), true), nil
				}

				mapped, err := callValue(rt, mapper, value.Undefined(), []value.Value{v, value.Int(idx)})
				idx++
				if err != nil {
					return value.Value{}, err
				}

				iterMethod, err := getMethod(rt, mapped, symKey(value.SymbolIterator))
				if err != nil {
					return value.Value{}, err
				}

				if iterMethod == nil {
					return value.Value{}, throwType(rt, "Iterator.prototype.flatMap mapper result is not iterable")
				}

				iterVal, err := callValue(rt, *iterMethod, mapped, nil)
				if err != nil {
					return value.Value{}, err
				}

				nm, err := requireNext(rt, iterVal)
				if err != nil {
					return value.Value{}, err
				}

				innerIter = iterVal
				innerNext = &nm
			}
		}), nil
	})

	c.method(proto, "toArray", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		var out []value.Value

		if err := drainIterator(rt, this, func(v value.Value) (bool, error) {
			out = append(out, v)
			return false, nil
		}); err != nil {
			return value.Value{}, err
		}

		return c.newArrayOf(out), nil
	})

	c.method(proto, "forEach", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		callback := arg(args, 0)
		if !isCallable(callback) {
			return value.Value{}, throwType(rt, "Iterator.prototype.forEach called with a non-callable callback")
		}

		idx := int32(0)

		err := drainIterator(rt, this, func(v value.Value) (bool, error) {
			_, err := callValue(rt, callback, value.Undefined(), []value.Value{v, value.Int(idx)})
			idx++
			return false, err
		})
		if err != nil {
			return value.Value{}, err
		}

		return value.Undefined(), nil
	})

	c.method(proto, "some", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		predicate := arg(args, 0)
		if !isCallable(predicate) {
			return value.Value{}, throwType(rt, "Iterator.prototype.some called with a non-callable predicate")
		}

		idx := int32(0)
		found := false

		err := drainIterator(rt, this, func(v value.Value) (bool, error) {
			res, err := callValue(rt, predicate, value.Undefined(), []value.Value{v, value.Int(idx)})
			idx++
			if err != nil {
				return false, err
			}

			if res.ToBoolean() {
				found = true
				return true, nil
			}

			return false, nil
		})
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(found), nil
	})

	c.method(proto, "every", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		predicate := arg(args, 0)
		if !isCallable(predicate) {
			return value.Value{}, throwType(rt, "Iterator.prototype.every called with a non-callable predicate")
		}

		idx := int32(0)
		ok := true

		err := drainIterator(rt, this, func(v value.Value) (bool, error) {
			res, err := callValue(rt, predicate, value.Undefined(), []value.Value{v, value.Int(idx)})
			idx++
			if err != nil {
				return false, err
			}

			if !res.ToBoolean() {
				ok = false
				return true, nil
			}

			return false, nil
		})
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(ok), nil
	})

	c.method(proto, "find", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		predicate := arg(args, 0)
		if !isCallable(predicate) {
			return value.Value{}, throwType(rt, "Iterator.prototype.find called with a non-callable predicate")
		}

		idx := int32(0)
		found := value.Undefined()

		err := drainIterator(rt, this, func(v value.Value) (bool, error) {
			res, err := callValue(rt, predicate, value.Undefined(), []value.Value{v, value.Int(idx)})
			idx++
			if err != nil {
				return false, err
			}

			if res.ToBoolean() {
				found = v
				return true, nil
			}

			return false, nil
		})
		if err != nil {
			return value.Value{}, err
		}

		return found, nil
	})

	c.method(proto, "reduce", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		reducer := arg(args, 0)
		if !isCallable(reducer) {
			return value.Value{}, throwType(rt, "Iterator.prototype.reduce called with a non-callable reducer")
		}

		acc := arg(args, 1)
		haveAcc := len(args) > 1
		idx := int32(0)

		err := drainIterator(rt, this, func(v value.Value) (bool, error) {
			if !haveAcc {
				acc = v
				haveAcc = true
				idx++
				return false, nil
			}

			res, err := callValue(rt, reducer, value.Undefined(), []value.Value{acc, v, value.Int(idx)})
			idx++
			if err != nil {
				return false, err
			}

			acc = res

			return false, nil
		})
		if err != nil {
			return value.Value{}, err
		}

		if !haveAcc {
			return value.Value{}, throwType(rt, "reduce of empty iterator with no initial value")
		}

		return acc, nil
	})
}

// newIteratorHelper allocates a KindIteratorHelper object parented on
// %Iterator.prototype% whose own `next` is next — the lazy wrapper `.map`/
// `.filter`/`.take`/`.drop`/`.flatMap` each return, inheriting
// [Symbol.iterator] (returning itself) from the prototype rather than
// redefining it per instance the way newArrayIterator's own concrete
// iterators do.
func (c ctx) newIteratorHelper(next object.NativeFunc) value.Value {
	proto := c.r.IntrinsicPrototype("Iterator")
	obj := object.New(c.r.ShapeRoot(), "Iterator Helper", object.KindIteratorHelper, proto)
	ref := heap.NewGc[value.HeapObject](c.r.Heap(), obj, nil)
	obj.SetSelf(ref)

	c.method(obj, "next", 0, next)

	return value.Obj(ref)
}

// requireNext resolves v's own "next" method, throwing TypeError if it has
// none — every iterator-helper method's own entry point needs this before
// it can pull anything from the receiver.
func requireNext(rt object.Runtime, v value.Value) (value.Value, error) {
	fn, err := getMethod(rt, v, key("next"))
	if err != nil {
		return value.Value{}, err
	}

	if fn == nil {
		return value.Value{}, throwType(rt, "iterator has no next method")
	}

	return *fn, nil
}

// pullSource calls source's next method and unpacks the resulting
// {value, done} iterator-result object (§7.4.7's IteratorStep plus
// IteratorValue/IteratorComplete), the single-step primitive every
// iterator-helper method above composes.
func pullSource(rt object.Runtime, next value.Value, source value.Value) (value.Value, bool, error) {
	res, err := callValue(rt, next, source, nil)
	if err != nil {
		return value.Value{}, false, err
	}

	if !res.IsObject() {
		return value.Value{}, false, throwType(rt, "iterator result is not an object")
	}

	done, err := objGet(rt, res, "done")
	if err != nil {
		return value.Value{}, false, err
	}

	if done.ToBoolean() {
		return value.Value{}, true, nil
	}

	v, err := objGet(rt, res, "value")
	if err != nil {
		return value.Value{}, false, err
	}

	return v, false, nil
}

// drainIterator pulls every remaining value from this's own "next" method,
// calling fn on each until fn reports stop or the iterator completes — the
// shared consumption loop behind the terminal iterator-helper methods
// (`toArray`, `forEach`, `some`, `every`, `find`, `reduce`), none of which
// need to build a new iterator object the way the lazy helpers above do.
func drainIterator(rt object.Runtime, this value.Value, fn func(v value.Value) (bool, error)) error {
	nextFn, err := requireNext(rt, this)
	if err != nil {
		return err
	}

	for {
		v, done, err := pullSource(rt, nextFn, this)
		if err != nil {
			return err
		}

		if done {
			return nil
		}

		stop, err := fn(v)
		if err != nil {
			return err
		}

		if stop {
			return nil
		}
	}
}
