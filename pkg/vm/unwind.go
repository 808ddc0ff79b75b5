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

import "github.com/ecmaforge/ecmaforge/pkg/value"

// tryHandle looks for a handler on f able to catch thrown, transferring
// control there and returning true, or returns false when thrown escapes
// every handler on this frame (the caller then propagates it to whichever
// frame called this one, exactly like the boa_engine-grounded supplement in
// original_source names: "nested try/finally unwinding must re-push outer
// handler-table entries before resuming a throw that escapes an inner
// finally" — automatic here, since outer handlers simply sit beneath the
// one just popped on f.handlers and are reached by the next iteration of
// this same loop).
func (vm *VM) tryHandle(f *Frame, thrown value.Value) bool {
	for !f.handlers.IsEmpty() {
		h := f.handlers.Peek(0)

		if h.catchPC >= 0 {
			truncate(f.operands, h.stackDepth)
			f.env = h.env
			f.pc = h.catchPC
			h.catchPC = -1 // a second exception in this same catch body skips straight to finally
			f.push(thrown)

			return true
		}

		if h.finallyPC >= 0 {
			f.handlers.Pop()
			truncate(f.operands, h.stackDepth)
			f.env = h.env
			f.enteringFinally = &pendingCompletion{kind: completionThrow, value: thrown}
			f.pc = h.finallyPC

			return true
		}

		// Catch already consumed once (or never had one) and there is no
		// finally either: this handler frame is fully spent, check the next
		// one out.
		f.handlers.Pop()
	}

	return false
}

// doReturn is Return's (and a resumed completionReturn's) shared logic: if
// an unexhausted finally sits between here and the function boundary, run it
// first and come back through FinallyEnd; otherwise actually return.
func (vm *VM) doReturn(f *Frame, v value.Value) signal {
	if !f.handlers.IsEmpty() {
		h := f.handlers.Peek(0)
		if h.finallyPC >= 0 {
			f.handlers.Pop()
			truncate(f.operands, h.stackDepth)
			f.env = h.env
			f.enteringFinally = &pendingCompletion{kind: completionReturn, value: v}
			f.pc = h.finallyPC

			return sNone()
		}

		f.handlers.Pop()

		return vm.doReturn(f, v)
	}

	return sReturn(v)
}

// doThrow is Throw's (and Rethrow's) shared logic.
func (vm *VM) doThrow(f *Frame, v value.Value) signal {
	if vm.tryHandle(f, v) {
		return sNone()
	}

	return sThrow(v)
}

// truncate pops s back down to depth, discarding whatever an in-flight
// expression evaluation left above it — the operand-stack half of restoring
// a handler's recorded state on an abrupt transfer into its catch/finally.
func truncate(s *opStack, depth int) {
	for int(s.Len()) > depth {
		s.Pop()
	}
}
