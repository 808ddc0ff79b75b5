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

import "github.com/ecmaforge/ecmaforge/pkg/ast"

// compileAssignmentExpression lowers `target = value` and its compound
// forms (§4.3). AssignPlain's target may be a destructuring Pattern
// recovered from the cover grammar; every other operator's target is always
// a plain reference (Identifier or MemberExpression), which the parser/
// scope pass already validated.
func (fc *funcCompiler) compileAssignmentExpression(n *ast.AssignmentExpression) {
	switch n.Operator {
	case ast.AssignPlain:
		fc.compileExpression(n.Value)
		fc.emit(Dup{})
		fc.storeAssignmentTarget(n.Target)
	case ast.AssignAnd, ast.AssignOr, ast.AssignNullish:
		fc.compileLogicalCompoundAssign(n)
	default:
		fc.compileArithCompoundAssign(n)
	}
}

// storeAssignmentTarget consumes the top-of-stack value (a duplicate, with
// the original left beneath it as the assignment expression's own result)
// and stores it into target.
func (fc *funcCompiler) storeAssignmentTarget(target ast.Node) {
	switch t := target.(type) {
	case *ast.Identifier:
		fc.emitSetRef(t, fc.cb.Strict)
		fc.emit(Pop{})
	case *ast.MemberExpression:
		mt := fc.stageMemberTarget(t)
		fc.emitMemberSet(mt)
		fc.emit(Pop{})
	default:
		fc.compileDestructure(target, assignSink(fc.cb.Strict))
	}
}

// compileArithCompoundAssign lowers the arithmetic/bitwise compound
// operators (`+=`, `&=`, ...): read the reference once, compute, write back,
// leaving the computed value as the expression's result (neither
// SetLocal/SetName nor emitMemberSet pop it, so no extra Dup/Pop is needed
// around the write itself).
func (fc *funcCompiler) compileArithCompoundAssign(n *ast.AssignmentExpression) {
	applyOp := compoundOpEmit(n.Operator)

	if id, ok := n.Target.(*ast.Identifier); ok {
		fc.emitGetRef(id)
		fc.compileExpression(n.Value)
		applyOp(fc)
		fc.emitSetRef(id, fc.cb.Strict)
		return
	}

	mt := fc.stageMemberTarget(n.Target.(*ast.MemberExpression))
	fc.emitMemberGet(mt)
	fc.compileExpression(n.Value)
	applyOp(fc)
	fc.emitMemberSet(mt)
}

// compileLogicalCompoundAssign lowers `&&=`/`||=`/`??=`: the value is only
// evaluated and written when the reference's current value fails the
// operator's short-circuit test, otherwise that current value itself
// becomes (and remains) the expression's result.
func (fc *funcCompiler) compileLogicalCompoundAssign(n *ast.AssignmentExpression) {
	if id, ok := n.Target.(*ast.Identifier); ok {
		fc.emitGetRef(id)
		pc := fc.emitShortCircuitJump(n.Operator)
		fc.emit(Pop{})
		fc.compileExpression(n.Value)
		fc.emitSetRef(id, fc.cb.Strict)
		fc.patchJump(pc)
		return
	}

	mt := fc.stageMemberTarget(n.Target.(*ast.MemberExpression))
	fc.emitMemberGet(mt)
	pc := fc.emitShortCircuitJump(n.Operator)
	fc.emit(Pop{})
	fc.compileExpression(n.Value)
	fc.emitMemberSet(mt)
	fc.patchJump(pc)
}

// emitShortCircuitJump emits the non-popping conditional jump matching op's
// short-circuit condition, over the reference's just-read current value.
func (fc *funcCompiler) emitShortCircuitJump(op ast.AssignmentOperator) int {
	switch op {
	case ast.AssignAnd:
		return fc.emit(JumpIfFalseKeep{})
	case ast.AssignOr:
		return fc.emit(JumpIfTrueKeep{})
	default: // ast.AssignNullish
		return fc.emit(JumpIfNotNullOrUndef{})
	}
}

// compoundOpEmit maps a compound assignment operator to the binary op it
// applies between the reference's current value and the right-hand side.
func compoundOpEmit(op ast.AssignmentOperator) func(*funcCompiler) {
	switch op {
	case ast.AssignAdd:
		return func(fc *funcCompiler) { fc.emit(Add{}) }
	case ast.AssignSub:
		return func(fc *funcCompiler) { fc.emit(Sub{}) }
	case ast.AssignMul:
		return func(fc *funcCompiler) { fc.emit(Mul{}) }
	case ast.AssignDiv:
		return func(fc *funcCompiler) { fc.emit(Div{}) }
	case ast.AssignMod:
		return func(fc *funcCompiler) { fc.emit(Mod{}) }
	case ast.AssignExp:
		return func(fc *funcCompiler) { fc.emit(Exp{}) }
	case ast.AssignShl:
		return func(fc *funcCompiler) { fc.emit(Shl{}) }
	case ast.AssignShr:
		return func(fc *funcCompiler) { fc.emit(Shr{}) }
	case ast.AssignUShr:
		return func(fc *funcCompiler) { fc.emit(UShr{}) }
	case ast.AssignBitAnd:
		return func(fc *funcCompiler) { fc.emit(BitAnd{}) }
	case ast.AssignBitOr:
		return func(fc *funcCompiler) { fc.emit(BitOr{}) }
	default: // ast.AssignBitXor
		return func(fc *funcCompiler) { fc.emit(BitXor{}) }
	}
}
