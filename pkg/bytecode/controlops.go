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
package bytecode

// Jump unconditionally sets the program counter to Target.
type Jump struct{ Target int }

// JumpIfTrue pops a value and jumps to Target if ToBoolean of it is true.
type JumpIfTrue struct{ Target int }

// JumpIfFalse pops a value and jumps to Target if ToBoolean of it is false.
type JumpIfFalse struct{ Target int }

// JumpIfTrueKeep is JumpIfTrue without popping, for `a || b`'s short-circuit
// (the left operand becomes the expression's value when it is truthy).
type JumpIfTrueKeep struct{ Target int }

// JumpIfFalseKeep is JumpIfFalse without popping, for `a && b`.
type JumpIfFalseKeep struct{ Target int }

// JumpIfNullOrUndef pops nothing and jumps to Target when the top of stack
// is null or undefined, without popping — used by ChainExpression's
// optional-chaining short-circuit, where every remaining link of the chain
// must be skipped.
type JumpIfNullOrUndef struct{ Target int }

// JumpIfNotNullOrUndef is JumpIfNullOrUndef's complement: pops nothing and
// jumps to Target when the top of stack is neither null nor undefined —
// `a ??= b`'s short circuit, which must skip the assignment precisely when
// a is already non-nullish (the opposite condition from `&&=`/`||=`) — and
// `a ?? b`'s, which keeps a as the result when it is non-nullish (pop only
// on the non-short-circuit path, mirrored by the compiler emitting a Pop
// right after).
type JumpIfNotNullOrUndef struct{ Target int }

// Call pops Argc argument values, then the callee function value, then the
// `this` value beneath it (undefined for a non-member callee), and pushes
// the call's result.
type Call struct{ Argc int }

// CallSpread is Call for an argument list containing a spread element: pops
// a single array of already-flattened arguments instead of Argc discrete
// values.
type CallSpread struct{}

// Construct is Call's `new` counterpart: pops Argc arguments then the
// constructor value (no `this`, since [[Construct]] creates its own), and
// pushes the newly constructed object.
type Construct struct{ Argc int }

// ConstructSpread is Construct for a spread argument list.
type ConstructSpread struct{}

// SuperCall implements `super(...)` inside a derived class constructor as
// one operation: pops Argc arguments, resolves the active class's
// superclass constructor from the current method's HomeObject lineage,
// invokes [[Construct]] on it with the same new.target already in effect,
// and binds the resulting object as the current environment's `this` —
// mirroring NewClass's choice to bundle a whole spec algorithm (here,
// SuperCall's runtime semantics, §4.9) behind one opcode rather than
// decomposing it into primitives pkg/vm would have to reassemble.
type SuperCall struct{ Argc int }

// SuperCallSpread is SuperCall for a spread argument list.
type SuperCallSpread struct{}

// Return pops the function's result and unwinds to the caller.
type Return struct{}

// Throw pops a value and begins exception propagation with it.
type Throw struct{}

// Rethrow re-throws the exception currently being handled (no value is
// popped; used at the end of a finally block reached via abrupt completion,
// per the finally-must-resume-the-original-completion semantics of §4.6).
type Rethrow struct{}

func (Jump) op()              {}
func (JumpIfTrue) op()        {}
func (JumpIfFalse) op()       {}
func (JumpIfTrueKeep) op()    {}
func (JumpIfFalseKeep) op()   {}
func (JumpIfNullOrUndef) op()    {}
func (JumpIfNotNullOrUndef) op() {}
func (Call) op()              {}
func (CallSpread) op()        {}
func (Construct) op()         {}
func (ConstructSpread) op()   {}
func (SuperCall) op()         {}
func (SuperCallSpread) op()   {}
func (Return) op()            {}
func (Throw) op()             {}
func (Rethrow) op()           {}
