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
	"github.com/ecmaforge/ecmaforge/pkg/intern"
)

// compileCallExpression compiles `callee(arguments...)`, including the
// `super(...)` and optional-call (`f?.()`) forms.
func (fc *funcCompiler) compileCallExpression(n *ast.CallExpression) {
	if _, ok := n.Callee.(*ast.SuperExpression); ok {
		fc.compileArgsAndEmit(n.Arguments, func(argc int) { fc.emit(SuperCall{Argc: argc}) }, func() { fc.emit(SuperCallSpread{}) })
		return
	}

	fc.compileCallWith(n.Callee, n.Optional, func() { fc.compileArguments(n.Arguments) }, len(n.Arguments), hasSpread(n.Arguments))
}

// compileCallWith evaluates callee into a [this, function] pair per the
// member-expression method-call convention (§4.3), pushes the argument list
// via pushArgs, and emits Call/CallSpread. argc is the caller's own count of
// what pushArgs produces (ignored when spread is true).
func (fc *funcCompiler) compileCallWith(callee ast.Expression, optional bool, pushArgs func(), argc int, spread bool) {
	fc.compileCalleeAndThis(callee)

	if optional {
		fc.emit(Dup{})
		pc := fc.emit(JumpIfNullOrUndef{})
		fc.chainEnds = append(fc.chainEnds, pc)
	}

	pushArgs()

	if spread {
		fc.emit(CallSpread{})
		return
	}

	fc.emit(Call{Argc: argc})
}

// compileCalleeAndThis pushes [this, function] for callee: when callee is a
// MemberExpression, `this` is the evaluated object (or, for `super.prop(...)`,
// the current `this`) so a method call's receiver is bound per spec;
// otherwise `this` is undefined (an ordinary function call, §4.3).
func (fc *funcCompiler) compileCalleeAndThis(callee ast.Expression) {
	ce, ok := unwrapChain(callee).(*ast.MemberExpression)
	if !ok {
		fc.emit(PushUndefined{})
		fc.compileExpression(callee)
		return
	}

	if _, isSuper := ce.Object.(*ast.SuperExpression); isSuper {
		fc.emit(GetName{Name: intern.SymThis})
		if ce.Computed {
			fc.compileExpression(ce.Property)
			fc.emit(GetSuperPropertyComputed{})
		} else {
			fc.emit(GetSuperProperty{Name: ce.Property.(*ast.Identifier).Name})
		}
		return
	}

	fc.compileExpression(ce.Object)
	fc.emit(Dup{})

	if ce.Optional {
		fc.emit(Dup{})
		pc := fc.emit(JumpIfNullOrUndef{})
		fc.chainEnds = append(fc.chainEnds, pc)
	}

	fc.compileMemberAccess(ce)
}

// unwrapChain strips a ChainExpression wrapper so compileCalleeAndThis can
// inspect the MemberExpression it wraps directly; the chain's own
// short-circuit jump is installed by the enclosing compileChain call.
func unwrapChain(e ast.Expression) ast.Expression {
	if ce, ok := e.(*ast.ChainExpression); ok {
		return unwrapChain(ce.Expression)
	}

	return e
}

func hasSpread(args []ast.Expression) bool {
	for _, a := range args {
		if _, ok := a.(*ast.SpreadElement); ok {
			return true
		}
	}

	return false
}

// compileArguments pushes each argument expression in turn. When the list
// contains a spread element, every argument is instead flattened into one
// Array (via NewArray/PushArrayElement/PushArraySpread) and the caller emits
// a *Spread variant instead of counting Argc.
func (fc *funcCompiler) compileArguments(args []ast.Expression) {
	if hasSpread(args) {
		fc.emit(NewArray{})
		for _, a := range args {
			if se, ok := a.(*ast.SpreadElement); ok {
				fc.compileExpression(se.Argument)
				fc.emit(PushArraySpread{})
			} else {
				fc.compileExpression(a)
				fc.emit(PushArrayElement{})
			}
		}
		return
	}

	for _, a := range args {
		fc.compileExpression(a)
	}
}

// compileArgsAndEmit is compileArguments plus the final Call-family emit,
// used by super(...) and `new ...`, neither of which has a [this, function]
// pair to push ahead of the arguments (§4.9/§4.3).
func (fc *funcCompiler) compileArgsAndEmit(args []ast.Expression, emitPlain func(argc int), emitSpread func()) {
	fc.compileArguments(args)
	if hasSpread(args) {
		emitSpread()
		return
	}

	emitPlain(len(args))
}

func (fc *funcCompiler) compileNewExpression(n *ast.NewExpression) {
	fc.compileExpression(n.Callee)
	fc.compileArgsAndEmit(n.Arguments, func(argc int) { fc.emit(Construct{Argc: argc}) }, func() { fc.emit(ConstructSpread{}) })
}
