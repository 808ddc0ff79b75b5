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
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

func (vm *VM) newArray() (value.Value, *object.Object) {
	proto := vm.realm.IntrinsicPrototype("Array")
	obj := object.New(vm.realm.ShapeRoot(), "Array", object.KindArray, proto)
	obj.InitArrayLength()
	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref), obj
}

func arrayAppend(rt object.Runtime, obj *object.Object, v value.Value) {
	idx := value.StringKey(value.NewString(strconv.FormatUint(uint64(obj.Length()), 10)))
	_ = obj.Set(rt, idx, v, value.Undefined(), false)
}

// execArray handles array literal construction (NewArray/PushArrayElement/
// PushArrayHole/PushArraySpread, each operating on the array the compiler
// leaves beneath the pushed element so a literal builds incrementally) and
// RestArgs, the rest-parameter/unmapped-arguments-object primitive.
func (vm *VM) execArray(f *Frame, op bytecode.Op) signal {
	switch o := op.(type) {
	case bytecode.NewArray:
		v, _ := vm.newArray()
		f.push(v)

	case bytecode.PushArrayElement:
		v := f.pop()
		arr := f.peek()

		h, _ := arr.AsObject()
		obj, _ := h.Get().(*object.Object)
		arrayAppend(vm.realm, obj, v)

	case bytecode.PushArrayHole:
		arr := f.peek()

		h, _ := arr.AsObject()
		obj, _ := h.Get().(*object.Object)
		obj.SetLength(obj.Length() + 1)

	case bytecode.PushArraySpread:
		iterable := f.pop()
		arr := f.peek()

		h, _ := arr.AsObject()
		obj, _ := h.Get().(*object.Object)

		rec, te := vm.getIterator(iterable, false)
		if te != nil {
			return sErr(te)
		}

		for {
			v, done, te2 := vm.iteratorStep(rec)
			if te2 != nil {
				return sErr(te2)
			}

			if done {
				break
			}

			arrayAppend(vm.realm, obj, v)
		}

	case bytecode.RestArgs:
		v, obj := vm.newArray()

		for i := o.From; i < len(f.args); i++ {
			arrayAppend(vm.realm, obj, f.args[i])
		}

		f.push(v)
	}

	return sNone()
}
