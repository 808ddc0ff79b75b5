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

// Package bytecode lowers a scope-resolved pkg/ast.Program into CodeBlocks: a
// flat []Op stream per function (and per top-level script/module), in the
// stack-machine shape pkg/vm executes (§4.5). Each opcode is its own Go type
// implementing Op; pkg/vm's dispatch loop type-switches over Op rather than
// consulting a vtable (§9).
package bytecode

import (
	"github.com/ecmaforge/ecmaforge/pkg/intern"
)

// Op is implemented by every opcode. It carries no behaviour of its own —
// pkg/vm's dispatch loop type-switches on the concrete type — so the only
// method is a marker, the same discipline pkg/ast.Node uses for its node set.
type Op interface {
	op()
}

// Stack manipulation.

// PushUndefined pushes the undefined value.
type PushUndefined struct{}

// PushNull pushes the null value.
type PushNull struct{}

// PushTrue pushes the boolean true.
type PushTrue struct{}

// PushFalse pushes the boolean false.
type PushFalse struct{}

// PushInt pushes a small integer literal without a constant-pool lookup.
type PushInt struct{ Value int32 }

// PushLiteral pushes Constants[Index] (a string, float, bigint, symbol, or
// regexp-source literal too large or too rarely repeated to inline).
type PushLiteral struct{ Index int }

// Pop discards the top of stack.
type Pop struct{}

// Dup duplicates the top of stack.
type Dup struct{}

// Swap exchanges the top two stack values.
type Swap struct{}

// Rot moves the third-from-top value to the top, shifting the other two
// down (used to reorder a receiver pushed early for a method call).
type Rot struct{}

func (PushUndefined) op() {}
func (PushNull) op()      {}
func (PushTrue) op()      {}
func (PushFalse) op()     {}
func (PushInt) op()       {}
func (PushLiteral) op()   {}
func (Pop) op()           {}
func (Dup) op()           {}
func (Swap) op()          {}
func (Rot) op()           {}

// sym is a convenience alias used across the op files so operand field
// declarations read consistently.
type sym = intern.Sym

// ImportMeta pushes the current module's `import.meta` object; a syntax
// error at parse time outside a module (enforced before compilation ever
// sees it).
type ImportMeta struct{}

// DebuggerBreak is a `debugger;` statement: a no-op unless pkg/debugadapter
// has installed a breakpoint hook, in which case pkg/vm pauses here.
type DebuggerBreak struct{}

func (ImportMeta) op()        {}
func (DebuggerBreak) op()     {}
