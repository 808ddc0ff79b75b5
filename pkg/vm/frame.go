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
	"github.com/ecmaforge/ecmaforge/pkg/util/collection/stack"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// handlerFrame is one active PushHandler region: the range from the
// PushHandler op that installed it to its matching PopHandler, plus the
// operand/environment depth to unwind to when control transfers here.
type handlerFrame struct {
	catchPC   int // -1 once this instance's catch has already run once
	finallyPC int // -1 when the try has no finally
	stackDepth int
	env        *envrec.Environment
}

// pendingCompletion is the completion record FinallyStart captures on entry
// to a finally block, for FinallyEnd to resume afterward (§4.6): a normal
// fallthrough, a Return (with its value), a Throw (with its value), or an
// in-flight exception already being propagated when the finally was reached
// by unwinding rather than by falling into it.
type completionKind uint8

const (
	completionNormal completionKind = iota
	completionReturn
	completionThrow
)

type pendingCompletion struct {
	kind  completionKind
	value value.Value
}

// opStack is the operand-stack instantiation of the teacher's generic
// container, named for readability at call sites in unwind.go.
type opStack = stack.Stack[value.Value]

// Frame is one call's activation record: a program counter into its
// CodeBlock's flat op stream, an environment chain rooted at the call's own
// (or parameter-eval) environment, an operand stack, and the handler/
// completion bookkeeping exception unwinding needs. Modeled directly on the
// teacher's own bytecode machine's Frame[W]{functionId, pc, registers} (the
// zkc VM's per-call activation), generalized from a fixed register file to a
// growable operand stack since ECMAScript's stack-machine bytecode has no
// static register count the way an arithmetic circuit's trace columns do.
type Frame struct {
	code *bytecode.CodeBlock
	pc   int

	env *envrec.Environment

	operands *stack.Stack[value.Value]
	handlers *stack.Stack[*handlerFrame]
	pending  *stack.Stack[pendingCompletion]

	this      value.Value
	newTarget value.Value
	function  value.Value // the Function object this frame is executing, for HomeObject/super lookups

	// args holds the raw positional arguments this call was invoked with,
	// read by GetArg/SetArg during the compiled parameter preamble (default
	// values, destructuring, rest collection) before that preamble copies
	// each parameter's resolved value into its env local slot via InitLet/
	// InitVar. nil for a script/module top-level frame, which has none.
	args []value.Value

	// enteringFinally is set by doReturn/doThrow immediately before jumping
	// to a handler's finallyPC, for the very next FinallyStart op to pick up
	// and push onto pending; nil when a finally is reached by ordinary
	// fallthrough or an ordinary compiled Jump (break/continue), in which
	// case FinallyStart pushes a plain completionNormal instead.
	enteringFinally *pendingCompletion

	// generator is non-nil only for a Frame driving a generator/async
	// function body, the coroutine-side handle Yield/Await suspend through.
	generator *generatorState

	// importMeta is the `import.meta` object for a module top-level frame,
	// installed by pkg/module (via SetImportMeta) before the frame runs;
	// the zero Value for a script frame, which ImportMeta's op can never
	// reach (a bare script has no import.meta production).
	importMeta value.Value
}

// SetImportMeta installs obj as this frame's `import.meta` value, for
// pkg/module to call before running a module's top-level frame.
func (f *Frame) SetImportMeta(obj value.Value) { f.importMeta = obj }

// FunctionName is this frame's CodeBlock's own name — empty for a script or
// module top level — read by pkg/debugadapter to label a "stopped" event's
// top stack frame.
func (f *Frame) FunctionName() string { return f.code.Name }

// newFrame constructs a Frame ready to execute code from pc 0 against env.
func newFrame(code *bytecode.CodeBlock, env *envrec.Environment, this, newTarget, function value.Value) *Frame {
	return newCallFrame(code, env, this, newTarget, function, nil)
}

// newCallFrame is newFrame plus the raw argument list a function call
// supplies, for GetArg/SetArg during the parameter preamble.
func newCallFrame(code *bytecode.CodeBlock, env *envrec.Environment, this, newTarget, function value.Value, args []value.Value) *Frame {
	return &Frame{
		code:      code,
		env:       env,
		operands:  stack.NewStack[value.Value](),
		handlers:  stack.NewStack[*handlerFrame](),
		pending:   stack.NewStack[pendingCompletion](),
		this:      this,
		newTarget: newTarget,
		function:  function,
		args:      args,
	}
}

func (f *Frame) push(v value.Value) { f.operands.Push(v) }
func (f *Frame) pop() value.Value   { return f.operands.Pop() }
func (f *Frame) peek() value.Value  { return f.operands.Peek(0) }

func (f *Frame) fetch() bytecode.Op {
	op := f.code.Ops[f.pc]
	f.pc++

	return op
}
