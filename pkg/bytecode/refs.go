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

import (
	"github.com/ecmaforge/ecmaforge/pkg/ast"
	"github.com/ecmaforge/ecmaforge/pkg/scope"
)

// hasTDZ reports whether a reference to b must check for temporal-dead-zone
// access before reading or writing its slot: only let/const/class bindings
// are ever uninitialized between their scope's EnterScope and their own
// declaration's Init*, per §4.4/§3.4. var, parameter, catch, function, and
// import bindings are all live (if sometimes merely `undefined`) from the
// moment their environment exists.
func hasTDZ(b *scope.Binding) bool {
	switch b.Kind {
	case scope.BindingLet, scope.BindingConst, scope.BindingClass:
		return true
	default:
		return false
	}
}

// emitGetRef reads id's value, preferring the static GetLocal fast path
// pkg/scope's resolution enables and falling back to named lookup whenever
// the binding is absent (a free/global reference) or was retroactively
// marked non-local by a `with`/direct-`eval` site anywhere between the
// reference and that binding's own scope. A let/const/class binding gets an
// unconditional ThrowUndefinedIfTDZ immediately before its GetLocal: the
// check is cheap once the binding is initialized, and emitting it only for
// the references that could actually precede the declaration would need a
// second, intra-scope control-flow analysis this compiler does not do.
func (fc *funcCompiler) emitGetRef(id *ast.Identifier) {
	res, ok := fc.c.scopes.Refs[id]
	if !ok || res.Binding == nil || !res.Binding.Local {
		fc.emit(GetName{Name: id.Sym})
		return
	}

	if hasTDZ(res.Binding) {
		fc.emit(ThrowUndefinedIfTDZ{Depth: res.Depth, Slot: res.Binding.Slot})
	}

	fc.emit(GetLocal{Depth: res.Depth, Slot: res.Binding.Slot})
}

// emitSetRef writes the top of stack to id, symmetric with emitGetRef.
func (fc *funcCompiler) emitSetRef(id *ast.Identifier, strict bool) {
	res, ok := fc.c.scopes.Refs[id]
	if !ok || res.Binding == nil || !res.Binding.Local {
		fc.emit(SetName{Name: id.Sym, Strict: strict})
		return
	}

	if res.Binding.Kind == scope.BindingConst {
		fc.c.errorf(id.Span(), "Assignment to constant variable '%s'", id.Name)
	}

	if hasTDZ(res.Binding) {
		fc.emit(ThrowUndefinedIfTDZ{Depth: res.Depth, Slot: res.Binding.Slot})
	}

	fc.emit(SetLocal{Depth: res.Depth, Slot: res.Binding.Slot})
}

// scopeOf returns the Scope pkg/scope attached to node, or nil if node
// introduces no scope of its own (most expression/statement nodes).
func (fc *funcCompiler) scopeOf(node ast.Node) *scope.Scope {
	return fc.c.scopes.Scopes[node]
}

// enterChildScope emits EnterScope for the Scope attached to node (a block,
// catch clause, for-head, switch, or class body) and returns a closer to
// call once every statement/expression lexically inside it has compiled.
// Every such Scope gets a runtime environment even with zero bindings of
// its own (an empty `{}` block, say): pkg/scope.Resolution.Depth counts
// Scope-to-Scope hops regardless of binding count, so skipping an empty
// one here would silently desynchronize every outer reference's Depth.
//
// The closer also doubles as a cleanup registration: a break/continue/
// return that jumps out through this scope before the closer's own call
// site runs ExitScope inline, via fc.cleanups, since there is no opcode
// that unwinds a variable number of environments on its own. The closer
// itself un-registers that cleanup before emitting its own copy of
// ExitScope, so calling it twice (once normally, once for an early exit
// that already ran the registered copy) never double-pops.
func (fc *funcCompiler) enterChildScope(node ast.Node) (closer func()) {
	sc := fc.scopeOf(node)
	if sc == nil {
		return func() {}
	}

	fc.emit(EnterScope{NumLocals: len(sc.Bindings()), Names: fc.c.bindingNames(sc)})
	fc.blockDepth++
	prev := fc.lexScope
	fc.lexScope = sc

	fc.pushCleanup(func() { fc.emit(ExitScope{}) })

	return func() {
		fc.popCleanup()
		fc.emit(ExitScope{})
		fc.blockDepth--
		fc.lexScope = prev
	}
}

// allocTemp reserves a fresh binding slot in the current function's own top
// environment (the one CodeBlock.NumLocals sizes), for a value the compiler
// itself needs to stash across a sub-expression it cannot otherwise keep
// live on the operand stack — namely a member expression's object (and,
// when computed, its key) across the get/set pair an update expression or a
// compound-assignment operator needs, so that expression is evaluated
// exactly once (§4.3) even though GetPropertyByName/Value and
// SetPropertyByName/Value each consume their receiver off the stack. Every
// allocation bumps NumLocals rather than reusing a slot: temporaries are
// rare enough (one member-target rewrite at a time) that the handful of
// wasted slots never matters, and never reusing one means no lifetime
// analysis is needed to prove two temps are never live at once.
func (fc *funcCompiler) allocTemp() (depth, slot int) {
	slot = fc.cb.NumLocals
	fc.cb.NumLocals++

	return fc.blockDepth, slot
}
