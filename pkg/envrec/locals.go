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
package envrec

import "github.com/ecmaforge/ecmaforge/pkg/value"

// This file backs pkg/bytecode's slot-addressed ops (GetLocal, SetLocal,
// InitLet, InitConst, InitVar, ThrowUndefinedIfTDZ): pkg/vm's dispatch loop
// calls these directly with the (Depth, Slot) pair the compiler already
// resolved, never going through the by-name lookups in dynamic.go.

// GetLocal reads the Slot'th binding directly, with no TDZ or existence
// check — the compiler only ever emits GetLocal for a slot it knows exists
// and, for a TDZ-bearing one, only immediately after a ThrowUndefinedIfTDZ
// that already proved it initialized.
func (e *Environment) GetLocal(slot int) value.Value {
	if slot < 0 || slot >= len(e.bindings) {
		return value.Undefined()
	}

	return e.bindings[slot].value
}

// SetLocal writes the Slot'th binding directly, mirroring GetLocal. Const
// rejection for a statically-resolved reference is a compile-time error
// (pkg/bytecode's emitSetRef); SetLocal itself trusts its caller.
func (e *Environment) SetLocal(slot int, v value.Value) {
	if slot < 0 || slot >= len(e.bindings) {
		return
	}

	e.bindings[slot].value = v
}

// InitLet lifts the Slot'th binding out of its temporal dead zone with v,
// for a `let` declaration's own initializer (or the implicit `undefined`
// when it has none).
func (e *Environment) InitLet(slot int, v value.Value) {
	e.initSlot(slot, v, true)
}

// InitConst is InitLet for a `const` declaration; recorded identically at
// the storage layer (mutable was already fixed false by buildNames from
// BindingName.Const, not re-derived here).
func (e *Environment) InitConst(slot int, v value.Value) {
	e.initSlot(slot, v, true)
}

// InitVar initializes a var/function binding. Unlike InitLet/InitConst this
// can run more than once for the same slot (a `var x` hoisted declaration
// re-executing, or a function declaration re-hoisted into an existing
// binding) without any TDZ implication, since var bindings were never dead.
func (e *Environment) InitVar(slot int, v value.Value) {
	e.initSlot(slot, v, true)
}

func (e *Environment) initSlot(slot int, v value.Value, initialized bool) {
	if slot < 0 || slot >= len(e.bindings) {
		return
	}

	e.bindings[slot].value = v
	e.bindings[slot].initialized = initialized
}

// ThrowUndefinedIfTDZ reports whether the Slot'th binding is still in its
// temporal dead zone (pkg/vm raises a ReferenceError when this is true,
// per §3.4's "TDZ access fails with ReferenceError", before ever reaching
// the GetLocal/SetLocal the compiler emitted right after it).
func (e *Environment) ThrowUndefinedIfTDZ(slot int) bool {
	if slot < 0 || slot >= len(e.bindings) {
		return false
	}

	return !e.bindings[slot].initialized
}
