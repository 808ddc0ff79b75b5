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
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// execDestructure handles the per-element bookkeeping ops array/object
// destructuring patterns compile down to, layered on top of the plain
// GetIterator/IteratorNext/IteratorClose primitives.
func (vm *VM) execDestructure(f *Frame, op bytecode.Op) signal {
	switch o := op.(type) {
	case bytecode.IteratorStepOrUndefined:
		done := f.pop()
		recv := f.pop()

		rec, ok := iteratorRecordOf(recv)
		if !ok {
			return sErr(vm.throw("TypeError", "not an iterator record"))
		}

		alreadyDone := done.ToBoolean()

		var (
			v        value.Value
			nowDone  = alreadyDone
			stepErr  *ThrownError
		)

		if !alreadyDone {
			v, nowDone, stepErr = vm.iteratorStep(rec)
			if stepErr != nil {
				return sErr(stepErr)
			}
		} else {
			v = value.Undefined()
		}

		f.push(recv)
		f.push(value.Bool(nowDone))
		f.push(v)

	case bytecode.IteratorRestArray:
		done := f.pop()
		recv := f.pop()

		arr, arrObj := vm.newArray()

		if !done.ToBoolean() {
			rec, ok := iteratorRecordOf(recv)
			if !ok {
				return sErr(vm.throw("TypeError", "not an iterator record"))
			}

			for {
				v, isDone, te := vm.iteratorStep(rec)
				if te != nil {
					return sErr(te)
				}

				if isDone {
					break
				}

				arrayAppend(vm.realm, arrObj, v)
			}
		}

		f.push(arr)

	case bytecode.IteratorCloseIfNotDone:
		done := f.pop()
		recv := f.pop()

		if !done.ToBoolean() {
			if rec, ok := iteratorRecordOf(recv); ok {
				vm.iteratorClose(rec)
			}
		}

	case bytecode.CopyDataPropertiesExcluding:
		src := f.pop()
		target := f.peek()

		if te := vm.copyDataProperties(target, src, o.Excluded); te != nil {
			return sErr(te)
		}

	case bytecode.ThrowIfNullOrUndefined:
		v := f.pop()

		if v.IsNullish() {
			return sThrow(vm.realm.NewError("TypeError", "cannot destructure "+v.TypeOf()))
		}
	}

	return sNone()
}
