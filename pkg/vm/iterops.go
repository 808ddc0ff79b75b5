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

// iteratorRecord is an iterator's runtime state (§7.4.1), carried on the
// operand stack boxed inside a KindIterator host object the same way every
// other compound runtime value is — Value itself has no case for an
// internal-use-only Go struct.
type iteratorRecord struct {
	iterator value.Value
	next     value.Value // JS `next` method; unused when forIn is set
	done     bool

	// forIn/forInKeys/forInIdx implement GetForInIterator's enumeration
	// without a round-trip through a JS-level generator: the compiler-facing
	// contract (push an iterator record, step it with IteratorNext) is
	// identical either way, so for-in shares the exact same loop-compiling
	// path as for-of (per GetForInIterator's own doc comment).
	forIn     bool
	forInKeys []string
	forInIdx  int
}

func (vm *VM) newIteratorValue(rec *iteratorRecord) value.Value {
	obj := object.New(vm.realm.ShapeRoot(), "Iterator Record", object.KindIterator, heap.Gc[value.HeapObject]{})
	obj.SetData(rec)
	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref)
}

func iteratorRecordOf(v value.Value) (*iteratorRecord, bool) {
	h, ok := v.AsObject()
	if !ok {
		return nil, false
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, false
	}

	rec, ok := o.Data().(*iteratorRecord)

	return rec, ok
}

func (vm *VM) stepResultValue(doneVal bool, v value.Value) value.Value {
	proto := vm.realm.ObjectPrototype()
	obj := object.New(vm.realm.ShapeRoot(), "Object", object.KindOrdinary, proto)
	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	_ = obj.Set(vm.realm, value.StringKey(value.NewString("done")), value.Bool(doneVal), value.Undefined(), false)
	_ = obj.Set(vm.realm, value.StringKey(value.NewString("value")), v, value.Undefined(), false)

	return value.Obj(ref)
}

// execIter handles the iterator-protocol, generator, and async op family.
func (vm *VM) execIter(f *Frame, op bytecode.Op) signal {
	switch o := op.(type) {
	case bytecode.GetIterator:
		v := f.pop()

		rec, te := vm.getIterator(v, o.Async)
		if te != nil {
			return sErr(te)
		}

		f.push(vm.newIteratorValue(rec))

	case bytecode.IteratorNext:
		recv := f.peek()

		rec, ok := iteratorRecordOf(recv)
		if !ok {
			return sErr(vm.throw("TypeError", "not an iterator record"))
		}

		v, done, te := vm.iteratorStep(rec)
		if te != nil {
			return sErr(te)
		}

		f.push(vm.stepResultValue(done, v))

	case bytecode.IteratorClose:
		recv := f.pop()

		if rec, ok := iteratorRecordOf(recv); ok {
			vm.iteratorClose(rec)
		}

	case bytecode.GetForInIterator:
		v := f.pop()

		rec, te := vm.getForInIterator(v)
		if te != nil {
			return sErr(te)
		}

		f.push(vm.newIteratorValue(rec))

	case bytecode.Await:
		v := f.pop()

		result, te := vm.await(f, v)
		if te != nil {
			return sErr(te)
		}

		f.push(result)

	case bytecode.Yield:
		v := f.pop()

		result, te := vm.yield(f, v, o.Delegate)
		if te != nil {
			return sErr(te)
		}

		f.push(result)

	case bytecode.GeneratorNext:
		// Driven only from inside vm's own generator-resume loop (generator.go),
		// never reached by ordinary compiled code; no-op here.

	case bytecode.CreatePromiseCapability:
		f.push(vm.NewPromiseCapability())
	}

	return sNone()
}

// getIterator implements GetIterator (§7.4.2): look up Symbol.iterator (or
// Symbol.asyncIterator) on v, call it, and record the resulting iterator
// object's own `next` method.
func (vm *VM) getIterator(v value.Value, async bool) (*iteratorRecord, *ThrownError) {
	symName := "%Symbol.iterator%"
	if async {
		symName = "%Symbol.asyncIterator%"
	}

	sym, ok := vm.realm.Intrinsic(symName)
	if !ok {
		return nil, vm.throw("TypeError", "value is not iterable")
	}

	method, te := vm.getProperty(v, symbolKeyOf(sym))
	if te != nil {
		return nil, te
	}

	if !isCallableValue(method) {
		return nil, vm.throw("TypeError", "value is not iterable")
	}

	iterObj, err := vm.Invoke(method, v, nil)
	if err != nil {
		return nil, vm.adapt(err)
	}

	next, te2 := vm.getProperty(iterObj, value.StringKey(value.NewString("next")))
	if te2 != nil {
		return nil, te2
	}

	return &iteratorRecord{iterator: iterObj, next: next}, nil
}

// iteratorStep implements IteratorStep/IteratorNext (§7.4.5/§7.4.6): call
// the iterator's next method, validate the {done, value} result shape.
func (vm *VM) iteratorStep(rec *iteratorRecord) (value.Value, bool, *ThrownError) {
	if rec.forIn {
		if rec.forInIdx >= len(rec.forInKeys) {
			rec.done = true

			return value.Undefined(), true, nil
		}

		key := rec.forInKeys[rec.forInIdx]
		rec.forInIdx++

		return value.Str(value.NewString(key)), false, nil
	}

	result, err := vm.Invoke(rec.next, rec.iterator, nil)
	if err != nil {
		return value.Value{}, false, vm.adapt(err)
	}

	if !result.IsObject() {
		return value.Value{}, false, vm.throw("TypeError", "iterator result is not an object")
	}

	doneV, te := vm.getProperty(result, value.StringKey(value.NewString("done")))
	if te != nil {
		return value.Value{}, false, te
	}

	v, te2 := vm.getProperty(result, value.StringKey(value.NewString("value")))
	if te2 != nil {
		return value.Value{}, false, te2
	}

	done := doneV.ToBoolean()
	rec.done = done

	return v, done, nil
}

// iteratorClose implements IteratorClose (§7.4.9): call `return` on the
// iterator if it has one, ignoring its result (a for-of/destructure/spread
// abrupt exit, never itself the thing reported to user code).
func (vm *VM) iteratorClose(rec *iteratorRecord) {
	if rec.forIn || rec.done {
		return
	}

	ret, te := vm.getProperty(rec.iterator, value.StringKey(value.NewString("return")))
	if te != nil || !isCallableValue(ret) {
		return
	}

	_, _ = vm.Invoke(ret, rec.iterator, nil)
}

// getForInIterator implements EnumerateObjectProperties (§7.4.IfIn): every
// own and inherited enumerable string key, later shadowing earlier (an own
// key seen once is never yielded again from a prototype further out).
func (vm *VM) getForInIterator(v value.Value) (*iteratorRecord, *ThrownError) {
	if v.IsNullish() {
		return &iteratorRecord{forIn: true}, nil
	}

	h, ok := v.AsObject()
	if !ok {
		return &iteratorRecord{forIn: true}, nil
	}

	seen := map[string]bool{}

	var keys []string

	for cur := h; !cur.IsZero(); {
		o, ok := cur.Get().(*object.Object)
		if !ok {
			break
		}

		for _, key := range o.OwnPropertyKeys() {
			if key.IsSymbol() {
				continue
			}

			s := key.String().String()
			if seen[s] {
				continue
			}

			seen[s] = true

			desc, ok := o.GetOwnProperty(key)
			if ok && desc.Enumerable {
				keys = append(keys, s)
			}
		}

		cur = o.Shape().Prototype()
	}

	return &iteratorRecord{forIn: true, forInKeys: keys}, nil
}
