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
	"github.com/ecmaforge/ecmaforge/pkg/envrec"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// exec dispatches one Op against f, following the same "type-switch, not a
// vtable" discipline pkg/bytecode.Op and pkg/object.Kind both document (§9).
// The switch is split by concern across this file and arith.go/bindingops.go/
// objectops.go/iterops.go/classops.go/callops.go, each owning the handlers
// for its own op family; dispatch.go itself only owns the stack-manipulation
// and control-flow primitives simple enough not to need their own file.
func (vm *VM) exec(f *Frame, op bytecode.Op) signal {
	switch o := op.(type) {

	// Stack manipulation.
	case bytecode.PushUndefined:
		f.push(value.Undefined())
	case bytecode.PushNull:
		f.push(value.Null())
	case bytecode.PushTrue:
		f.push(value.Bool(true))
	case bytecode.PushFalse:
		f.push(value.Bool(false))
	case bytecode.PushInt:
		f.push(value.Int(o.Value))
	case bytecode.PushLiteral:
		f.push(f.code.Constants[o.Index])
	case bytecode.Pop:
		f.pop()
	case bytecode.Dup:
		f.push(f.peek())
	case bytecode.Swap:
		a, b := f.pop(), f.pop()
		f.push(a)
		f.push(b)
	case bytecode.Rot:
		c, b, a := f.pop(), f.pop(), f.pop()
		f.push(b)
		f.push(c)
		f.push(a)

	case bytecode.ImportMeta:
		f.push(f.importMeta) // zero Value (undefined) until pkg/module installs one
	case bytecode.DebuggerBreak:
		if vm.breakpointHook != nil {
			vm.breakpointHook(f)
		}

	// Control flow.
	case bytecode.Jump:
		f.pc = o.Target
	case bytecode.JumpIfTrue:
		if f.pop().ToBoolean() {
			f.pc = o.Target
		}
	case bytecode.JumpIfFalse:
		if !f.pop().ToBoolean() {
			f.pc = o.Target
		}
	case bytecode.JumpIfTrueKeep:
		if f.peek().ToBoolean() {
			f.pc = o.Target
		}
	case bytecode.JumpIfFalseKeep:
		if !f.peek().ToBoolean() {
			f.pc = o.Target
		}
	case bytecode.JumpIfNullOrUndef:
		if f.peek().IsNullish() {
			f.pc = o.Target
		}
	case bytecode.JumpIfNotNullOrUndef:
		if !f.peek().IsNullish() {
			f.pc = o.Target
		}

	case bytecode.Return:
		return vm.doReturn(f, f.pop())
	case bytecode.Throw:
		return vm.doThrow(f, f.pop())
	case bytecode.Rethrow:
		pc := f.pending.Pop()

		return vm.doThrow(f, pc.value)

	case bytecode.PushHandler:
		f.handlers.Push(&handlerFrame{
			catchPC: o.Catch, finallyPC: o.FinallyPC,
			stackDepth: int(f.operands.Len()), env: f.env,
		})
	case bytecode.PopHandler:
		f.handlers.Pop()
	case bytecode.FinallyStart:
		if f.enteringFinally != nil {
			f.pending.Push(*f.enteringFinally)
			f.enteringFinally = nil
		} else {
			f.pending.Push(pendingCompletion{kind: completionNormal})
		}
	case bytecode.FinallyEnd:
		pc := f.pending.Pop()

		switch pc.kind {
		case completionReturn:
			return vm.doReturn(f, pc.value)
		case completionThrow:
			return vm.doThrow(f, pc.value)
		}

	case bytecode.Call, bytecode.CallSpread, bytecode.Construct, bytecode.ConstructSpread,
		bytecode.SuperCall, bytecode.SuperCallSpread:
		return vm.execCall(f, o)

	// Binding access.
	case bytecode.GetLocal, bytecode.SetLocal, bytecode.GetName, bytecode.SetName,
		bytecode.GetArg, bytecode.SetArg, bytecode.InitLet, bytecode.InitConst, bytecode.InitVar,
		bytecode.ThrowUndefinedIfTDZ, bytecode.DeleteName, bytecode.EnterScope, bytecode.ExitScope,
		bytecode.EnterWith, bytecode.ExitWith, bytecode.CreateArgumentsObject:
		return vm.execBinding(f, o)

	// Arithmetic/comparison/bitwise/unary.
	case bytecode.Add, bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Mod, bytecode.Exp,
		bytecode.Shl, bytecode.Shr, bytecode.UShr, bytecode.BitAnd, bytecode.BitOr, bytecode.BitXor,
		bytecode.Equal, bytecode.NotEqual, bytecode.StrictEqual, bytecode.StrictNotEqual,
		bytecode.LessThan, bytecode.LessEqual, bytecode.GreaterThan, bytecode.GreaterEqual,
		bytecode.In, bytecode.InstanceOf, bytecode.Negate, bytecode.UnaryPlus, bytecode.Not,
		bytecode.BitNot, bytecode.TypeOf, bytecode.TypeOfName, bytecode.Concat:
		return vm.execArith(f, o)

	// Arrays.
	case bytecode.NewArray, bytecode.PushArrayElement, bytecode.PushArrayHole,
		bytecode.PushArraySpread, bytecode.RestArgs:
		return vm.execArray(f, o)

	// Objects/properties/private fields.
	case bytecode.NewObject, bytecode.SetPropertyByName, bytecode.SetPropertyByValue,
		bytecode.GetPropertyByName, bytecode.GetPropertyByValue, bytecode.GetPrivateField,
		bytecode.SetPrivateField, bytecode.DefineOwnProperty, bytecode.DefineAccessor,
		bytecode.GetSuperProperty, bytecode.GetSuperPropertyComputed, bytecode.SetSuperProperty,
		bytecode.SetSuperPropertyComputed, bytecode.DeletePropertyByName, bytecode.DeletePropertyByValue,
		bytecode.CopyDataProperties:
		return vm.execObject(f, o)

	// Destructuring.
	case bytecode.IteratorStepOrUndefined, bytecode.IteratorRestArray, bytecode.IteratorCloseIfNotDone,
		bytecode.CopyDataPropertiesExcluding, bytecode.ThrowIfNullOrUndefined:
		return vm.execDestructure(f, o)

	// Iteration/generators/async.
	case bytecode.GetIterator, bytecode.IteratorNext, bytecode.IteratorClose, bytecode.GetForInIterator,
		bytecode.Await, bytecode.Yield, bytecode.GeneratorNext, bytecode.CreatePromiseCapability:
		return vm.execIter(f, o)

	// Functions/classes.
	case bytecode.NewFunction, bytecode.NewClass, bytecode.PushClassPrototype, bytecode.PushClassField,
		bytecode.PushClassFieldPrivate, bytecode.PushClassPrivateMethod, bytecode.PushClassPrivateGetter,
		bytecode.PushClassPrivateSetter:
		return vm.execClass(f, o)

	default:
		return sThrow(vm.realm.NewError("Error", "internal: unhandled opcode"))
	}

	return sNone()
}

// currentEnv is the environment chain GetLocal/SetLocal/EnterScope/ExitScope
// and dynamic name lookups resolve against: f.env, kept current by
// EnterScope/ExitScope/EnterWith/ExitWith as this frame's own ops run.
func (f *Frame) currentEnv() *envrec.Environment { return f.env }
