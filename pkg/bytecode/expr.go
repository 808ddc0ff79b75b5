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
	"math"
	"strconv"

	"github.com/ecmaforge/ecmaforge/pkg/ast"
	"github.com/ecmaforge/ecmaforge/pkg/intern"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// compileExpression emits e's value-producing code, leaving exactly one
// value on the stack.
func (fc *funcCompiler) compileExpression(e ast.Expression) {
	switch n := e.(type) {
	case *ast.ThisExpression:
		fc.emit(GetName{Name: intern.SymThis})
	case *ast.SuperExpression:
		// Bare `super` only ever reaches compileExpression as the callee of
		// a CallExpression or the object of a MemberExpression, both of
		// which special-case it before recursing here.
		fc.c.errorf(n.Span(), "'super' keyword is only valid inside a class")
	case *ast.MetaProperty:
		fc.compileMetaProperty(n)
	case *ast.NumericLiteral:
		fc.compileNumericLiteral(n)
	case *ast.BigIntLiteral:
		fc.emit(PushLiteral{Index: fc.cb.addConstant(value.BigIntValue(n.Value))})
	case *ast.StringLiteral:
		fc.emit(PushLiteral{Index: fc.cb.addConstant(value.StrFromGo(n.Value))})
	case *ast.BooleanLiteral:
		if n.Value {
			fc.emit(PushTrue{})
		} else {
			fc.emit(PushFalse{})
		}
	case *ast.NullLiteral:
		fc.emit(PushNull{})
	case *ast.RegExpLiteral:
		fc.compileRegExpLiteral(n)
	case *ast.TemplateLiteral:
		fc.compileTemplateLiteral(n)
	case *ast.TaggedTemplateExpression:
		fc.compileTaggedTemplate(n)
	case *ast.ArrayExpression:
		fc.compileArrayExpression(n)
	case *ast.ObjectExpression:
		fc.compileObjectExpression(n)
	case *ast.Identifier:
		fc.emitGetRef(n)
	case *ast.UnaryExpression:
		fc.compileUnaryExpression(n)
	case *ast.UpdateExpression:
		fc.compileUpdateExpression(n)
	case *ast.BinaryExpression:
		fc.compileBinaryExpression(n)
	case *ast.LogicalExpression:
		fc.compileLogicalExpression(n)
	case *ast.AssignmentExpression:
		fc.compileAssignmentExpression(n)
	case *ast.ConditionalExpression:
		fc.compileConditionalExpression(n)
	case *ast.SequenceExpression:
		for i, expr := range n.Expressions {
			if i > 0 {
				fc.emit(Pop{})
			}
			fc.compileExpression(expr)
		}
	case *ast.ChainExpression:
		fc.compileChain(n)
	case *ast.MemberExpression:
		fc.compileMemberGet(n)
	case *ast.CallExpression:
		fc.compileCallExpression(n)
	case *ast.NewExpression:
		fc.compileNewExpression(n)
	case *ast.YieldExpression:
		fc.compileYieldExpression(n)
	case *ast.AwaitExpression:
		fc.compileExpression(n.Argument)
		fc.emit(Await{})
	case *ast.FunctionExpression:
		fc.compileFunctionLiteral(n.Function, n.Function.Id)
	case *ast.ArrowFunctionExpression:
		fc.compileFunctionLiteral(n.Function, nil)
	case *ast.ClassExpression:
		fc.compileClass(n.Class)
	case *ast.RestElement:
		// Only reachable when the parser's cover grammar resolved an array
		// literal's trailing `...x` as a plain expression context (already a
		// syntax error by the time scope analysis ran); treat as unsupported.
		fc.c.errorf(n.Span(), "unexpected rest element")
	default:
		fc.c.errorf(e.Span(), "bytecode: unhandled expression %T", e)
	}
}

func (fc *funcCompiler) compileMetaProperty(n *ast.MetaProperty) {
	switch {
	case n.Meta == "new" && n.Property == "target":
		fc.emit(GetName{Name: intern.SymNewTarget})
	case n.Meta == "import" && n.Property == "meta":
		fc.emit(ImportMeta{})
	default:
		fc.c.errorf(n.Span(), "bytecode: unhandled meta property %s.%s", n.Meta, n.Property)
	}
}

// compileNumericLiteral prefers PushInt (no constant-pool round trip) for
// any literal representable as a non-fractional int32; everything else
// (fractional, NaN, Infinity, or out-of-range) goes through the constant
// pool as a float.
func (fc *funcCompiler) compileNumericLiteral(n *ast.NumericLiteral) {
	if i := int32(n.Value); float64(i) == n.Value && !math.Signbit(n.Value) {
		fc.emit(PushInt{Value: i})
		return
	}

	fc.emit(PushLiteral{Index: fc.cb.addConstant(value.Float(n.Value))})
}

// compileRegExpLiteral lowers `/pattern/flags` to a plain `new RegExp(...)`
// call against the global binding rather than a dedicated literal op: every
// literal occurrence still produces a distinct object per evaluation (the
// spec's per-evaluation-fresh RegExp object semantics) for free, and
// pkg/builtins/regexp already owns pattern/flags validation, so there is no
// behaviour a dedicated opcode would add.
func (fc *funcCompiler) compileRegExpLiteral(n *ast.RegExpLiteral) {
	fc.emit(GetName{Name: fc.c.syms.Intern("RegExp")})
	fc.emit(PushLiteral{Index: fc.cb.addConstant(value.StrFromGo(n.Pattern))})
	fc.emit(PushLiteral{Index: fc.cb.addConstant(value.StrFromGo(n.Flags))})
	fc.emit(Construct{Argc: 2})
}

func (fc *funcCompiler) compileTemplateLiteral(n *ast.TemplateLiteral) {
	cooked := ""
	if n.Quasis[0].Cooked != nil {
		cooked = *n.Quasis[0].Cooked
	}
	fc.emit(PushLiteral{Index: fc.cb.addConstant(value.StrFromGo(cooked))})

	for i, expr := range n.Expressions {
		fc.compileExpression(expr)
		fc.emit(Concat{})

		chunk := ""
		if n.Quasis[i+1].Cooked != nil {
			chunk = *n.Quasis[i+1].Cooked
		}
		fc.emit(PushLiteral{Index: fc.cb.addConstant(value.StrFromGo(chunk))})
		fc.emit(Concat{})
	}
}

// compileTaggedTemplate builds the frozen strings/raw arrays a tag function
// expects (§4.3) and invokes the tag exactly like an ordinary call whose
// argument list is [stringsArray, ...substitutions], letting
// compileCallWith own the this-binding/receiver discipline a member-
// expression tag (`obj.tag\`...\``) requires.
func (fc *funcCompiler) compileTaggedTemplate(n *ast.TaggedTemplateExpression) {
	buildStrings := func() {
		fc.emit(NewArray{})
		for _, q := range n.Quasi.Quasis {
			cooked := ""
			if q.Cooked != nil {
				cooked = *q.Cooked
			}
			fc.emit(PushLiteral{Index: fc.cb.addConstant(value.StrFromGo(cooked))})
			fc.emit(PushArrayElement{})
		}
		fc.emit(NewArray{})
		for _, q := range n.Quasi.Quasis {
			fc.emit(PushLiteral{Index: fc.cb.addConstant(value.StrFromGo(q.Raw))})
			fc.emit(PushArrayElement{})
		}
		fc.emit(DefineOwnProperty{Name: "raw", Writable: false, Enumerable: false, Configurable: false})
	}

	fc.compileCallWith(n.Tag, false, func() {
		buildStrings()
		for _, expr := range n.Quasi.Expressions {
			fc.compileExpression(expr)
		}
	}, len(n.Quasi.Expressions)+1, false)
}

func (fc *funcCompiler) compileArrayExpression(n *ast.ArrayExpression) {
	fc.emit(NewArray{})
	for _, el := range n.Elements {
		switch e := el.(type) {
		case nil:
			fc.emit(PushArrayHole{})
		case *ast.SpreadElement:
			fc.compileExpression(e.Argument)
			fc.emit(PushArraySpread{})
		default:
			fc.compileExpression(e)
			fc.emit(PushArrayElement{})
		}
	}
}

func (fc *funcCompiler) compileObjectExpression(n *ast.ObjectExpression) {
	fc.emit(NewObject{})
	for _, p := range n.Properties {
		fc.compileObjectProperty(p)
	}
}

func (fc *funcCompiler) compileObjectProperty(p *ast.Property) {
	if p.Kind == ast.PropertySpread {
		spread := p.Value
		if spread == nil {
			if se, ok := p.Key.(*ast.SpreadElement); ok {
				spread = se.Argument
			}
		}
		fc.compileExpression(spread)
		fc.emit(CopyDataProperties{})
		return
	}

	name, computed := fc.compilePropertyKey(p.Key, p.Computed)

	switch p.Kind {
	case ast.PropertyGet, ast.PropertySet:
		fc.compileFunctionLiteral(p.Value.(*ast.FunctionExpression).Function, nil)
		fc.emit(DefineAccessor{Name: name, Computed: computed, IsSetter: p.Kind == ast.PropertySet})
	case ast.PropertyMethod:
		fc.compileFunctionLiteral(p.Value.(*ast.FunctionExpression).Function, nil)
		fc.emit(DefineOwnProperty{Name: name, Computed: computed, Enumerable: true, Writable: true, Configurable: true})
	default: // ast.PropertyInit
		if id, ok := p.Key.(*ast.Identifier); ok && id.Name == "__proto__" && !p.Computed && !computed {
			fc.compileExpression(p.Value)
			fc.emit(DefineOwnProperty{Name: "__proto__", Enumerable: true, Writable: true, Configurable: true})
			return
		}
		fc.compileExpression(p.Value)
		if computed {
			fc.emit(SetPropertyByValue{})
		} else {
			fc.emit(SetPropertyByName{Name: name})
		}
	}
}

// compilePropertyKey evaluates a computed key (pushing it on the stack
// beneath where the caller will push the value) or resolves a static key to
// its string text, returning (name, computed).
func (fc *funcCompiler) compilePropertyKey(key ast.Expression, computed bool) (string, bool) {
	if computed {
		fc.compileExpression(key)
		return "", true
	}

	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name, false
	case *ast.StringLiteral:
		return k.Value, false
	case *ast.NumericLiteral:
		return numericKeyString(k.Value), false
	default:
		fc.compileExpression(key)
		return "", true
	}
}

// numericKeyString renders a numeric property key the way ToPropertyKey
// would for the overwhelmingly common integer-index case, without routing
// through value.ToJSString's Coercer-requiring full ToString algorithm
// (no coercion can ever be needed for a literal already known to be a
// float64) — a deliberate compile-time simplification for the handful of
// exotic values (NaN, Infinity, very large/small magnitudes) whose textual
// form differs from Go's default float formatting; documented as such.
func numericKeyString(f float64) string {
	if i := int64(f); float64(i) == f {
		return strconv.FormatInt(i, 10)
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (fc *funcCompiler) compileUnaryExpression(n *ast.UnaryExpression) {
	switch n.Operator {
	case ast.UnaryDelete:
		fc.compileDelete(n.Argument)
	case ast.UnaryTypeof:
		if id, ok := n.Argument.(*ast.Identifier); ok {
			if res, isRef := fc.c.scopes.Refs[id]; !isRef || res.Binding == nil || !res.Binding.Local {
				fc.emit(TypeOfName{Name: id.Sym})
				return
			}
		}
		fc.compileExpression(n.Argument)
		fc.emit(TypeOf{})
	case ast.UnaryVoid:
		fc.compileExpression(n.Argument)
		fc.emit(Pop{})
		fc.emit(PushUndefined{})
	default:
		fc.compileExpression(n.Argument)
		switch n.Operator {
		case ast.UnaryMinus:
			fc.emit(Negate{})
		case ast.UnaryPlus:
			fc.emit(UnaryPlus{})
		case ast.UnaryNot:
			fc.emit(Not{})
		case ast.UnaryBitNot:
			fc.emit(BitNot{})
		}
	}
}

func (fc *funcCompiler) compileDelete(target ast.Expression) {
	switch t := target.(type) {
	case *ast.Identifier:
		fc.emit(DeleteName{Name: t.Sym})
	case *ast.MemberExpression:
		fc.compileExpression(t.Object)
		if t.Computed {
			fc.compileExpression(t.Property)
			fc.emit(DeletePropertyByValue{})
		} else {
			fc.emit(DeletePropertyByName{Name: t.Property.(*ast.Identifier).Name})
		}
	default:
		// `delete` of any other expression form evaluates its operand for
		// side effects and always yields true (§3.2).
		fc.compileExpression(target)
		fc.emit(Pop{})
		fc.emit(PushTrue{})
	}
}

// compileUpdateExpression lowers `++`/`--`: read the reference's current
// value once, ToNumeric-convert it, add or subtract 1, write the result
// back, and leave either the pre- (postfix) or post-update (prefix) value
// as the expression's own result.
func (fc *funcCompiler) compileUpdateExpression(n *ast.UpdateExpression) {
	if id, ok := n.Argument.(*ast.Identifier); ok {
		fc.emitGetRef(id)
		fc.emit(UnaryPlus{})
		if !n.Prefix {
			fc.emit(Dup{})
		}
		fc.emit(PushInt{Value: 1})
		if n.Operator == "++" {
			fc.emit(Add{})
		} else {
			fc.emit(Sub{})
		}
		if n.Prefix {
			fc.emit(Dup{})
		}
		fc.emitSetRef(id, fc.cb.Strict)
		fc.emit(Pop{})
		return
	}

	mt := fc.stageMemberTarget(n.Argument.(*ast.MemberExpression))
	fc.emitMemberGet(mt)
	fc.emit(UnaryPlus{})
	if !n.Prefix {
		fc.emit(Dup{})
	}
	fc.emit(PushInt{Value: 1})
	if n.Operator == "++" {
		fc.emit(Add{})
	} else {
		fc.emit(Sub{})
	}
	if n.Prefix {
		fc.emit(Dup{})
	}
	fc.emitMemberSet(mt)
	fc.emit(Pop{})
}

// memberTarget stages a MemberExpression's object (and, for a computed
// access, its key) into fresh compiler temps so a get/set pair — needed by
// update expressions and compound assignment — evaluates that object/key
// subexpression exactly once (§4.3's single-reference-evaluation rule),
// despite GetPropertyByName/Value and SetPropertyByName/Value each
// consuming their receiver off the operand stack.
type memberTarget struct {
	private           *object.PrivateName
	computed          bool
	name              string
	objDepth, objSlot int
	keyDepth, keySlot int
}

func (fc *funcCompiler) stageMemberTarget(m *ast.MemberExpression) memberTarget {
	var mt memberTarget

	fc.compileExpression(m.Object)
	mt.objDepth, mt.objSlot = fc.allocTemp()
	fc.emit(SetLocal{Depth: mt.objDepth, Slot: mt.objSlot})
	fc.emit(Pop{})

	if priv, ok := m.Property.(*ast.PrivateIdentifier); ok {
		mt.private = fc.resolvePrivateName(priv)
		return mt
	}

	mt.computed = m.Computed
	if m.Computed {
		fc.compileExpression(m.Property)
		mt.keyDepth, mt.keySlot = fc.allocTemp()
		fc.emit(SetLocal{Depth: mt.keyDepth, Slot: mt.keySlot})
		fc.emit(Pop{})
	} else {
		mt.name = m.Property.(*ast.Identifier).Name
	}

	return mt
}

// emitMemberGet pushes mt's current value.
func (fc *funcCompiler) emitMemberGet(mt memberTarget) {
	fc.emit(GetLocal{Depth: mt.objDepth, Slot: mt.objSlot})
	switch {
	case mt.private != nil:
		fc.emit(GetPrivateField{Private: mt.private})
	case mt.computed:
		fc.emit(GetLocal{Depth: mt.keyDepth, Slot: mt.keySlot})
		fc.emit(GetPropertyByValue{})
	default:
		fc.emit(GetPropertyByName{Name: mt.name})
	}
}

// emitMemberSet pops the value on top of stack and writes it through mt,
// leaving that same value on top afterward (an assignment/update
// expression's own result), rather than the object SetPropertyByName/Value
// itself returns.
func (fc *funcCompiler) emitMemberSet(mt memberTarget) {
	fc.emit(Dup{})
	fc.emit(GetLocal{Depth: mt.objDepth, Slot: mt.objSlot})
	fc.emit(Swap{})

	switch {
	case mt.private != nil:
		fc.emit(SetPrivateField{Private: mt.private})
	case mt.computed:
		fc.emit(GetLocal{Depth: mt.keyDepth, Slot: mt.keySlot})
		fc.emit(Swap{})
		fc.emit(SetPropertyByValue{})
		fc.emit(Pop{})
	default:
		fc.emit(SetPropertyByName{Name: mt.name})
		fc.emit(Pop{})
	}
}

func (fc *funcCompiler) compileBinaryExpression(n *ast.BinaryExpression) {
	fc.compileExpression(n.Left)
	fc.compileExpression(n.Right)

	switch n.Operator {
	case ast.BinaryAdd:
		fc.emit(Add{})
	case ast.BinarySub:
		fc.emit(Sub{})
	case ast.BinaryMul:
		fc.emit(Mul{})
	case ast.BinaryDiv:
		fc.emit(Div{})
	case ast.BinaryMod:
		fc.emit(Mod{})
	case ast.BinaryExp:
		fc.emit(Exp{})
	case ast.BinaryEq:
		fc.emit(Equal{})
	case ast.BinaryNotEq:
		fc.emit(NotEqual{})
	case ast.BinaryStrictEq:
		fc.emit(StrictEqual{})
	case ast.BinaryStrictNotEq:
		fc.emit(StrictNotEqual{})
	case ast.BinaryLt:
		fc.emit(LessThan{})
	case ast.BinaryLtEq:
		fc.emit(LessEqual{})
	case ast.BinaryGt:
		fc.emit(GreaterThan{})
	case ast.BinaryGtEq:
		fc.emit(GreaterEqual{})
	case ast.BinaryShl:
		fc.emit(Shl{})
	case ast.BinaryShr:
		fc.emit(Shr{})
	case ast.BinaryUShr:
		fc.emit(UShr{})
	case ast.BinaryBitAnd:
		fc.emit(BitAnd{})
	case ast.BinaryBitOr:
		fc.emit(BitOr{})
	case ast.BinaryBitXor:
		fc.emit(BitXor{})
	case ast.BinaryIn:
		fc.emit(In{})
	case ast.BinaryInstanceof:
		fc.emit(InstanceOf{})
	}
}

// compileLogicalExpression lowers `&&`/`||`/`??` to a non-popping
// conditional jump over the right operand, so the left operand's own value
// survives as the expression's result on the short-circuit path.
func (fc *funcCompiler) compileLogicalExpression(n *ast.LogicalExpression) {
	fc.compileExpression(n.Left)

	var skip int
	switch n.Operator {
	case ast.LogicalAnd:
		skip = fc.emit(JumpIfFalseKeep{})
	case ast.LogicalOr:
		skip = fc.emit(JumpIfTrueKeep{})
	case ast.LogicalNullish:
		skip = fc.emit(JumpIfNotNullOrUndef{})
		// the nullish short-circuit jump target is the "keep left value"
		// path as well: JumpIfNotNullOrUndef never pops, matching the other two.
	}

	fc.emit(Pop{})
	fc.compileExpression(n.Right)
	fc.patchJump(skip)
}

func (fc *funcCompiler) compileConditionalExpression(n *ast.ConditionalExpression) {
	fc.compileExpression(n.Test)
	jf := fc.emit(JumpIfFalse{})
	fc.compileExpression(n.Consequent)
	jend := fc.emit(Jump{})
	fc.patchJump(jf)
	fc.compileExpression(n.Alternate)
	fc.patchJump(jend)
}

// compileChain compiles an optional-chaining expression. Every `?.` link
// inside n.Expression emits its own JumpIfNullOrUndef against one shared end
// label (chainEnd), set up here; a plain (non-optional) link underneath just
// compiles normally, since by the time evaluation reaches it a prior `?.`
// link has already proven the receiver is non-nullish.
func (fc *funcCompiler) compileChain(n *ast.ChainExpression) {
	prevEnds := fc.chainEnds
	fc.chainEnds = nil

	fc.compileExpression(n.Expression)

	for _, pc := range fc.chainEnds {
		fc.patchJump(pc)
	}
	fc.chainEnds = prevEnds
}

// compileMemberGet compiles a MemberExpression in value (not reference)
// position.
func (fc *funcCompiler) compileMemberGet(n *ast.MemberExpression) {
	if _, ok := n.Object.(*ast.SuperExpression); ok {
		if n.Computed {
			fc.compileExpression(n.Property)
			fc.emit(GetSuperPropertyComputed{})
		} else {
			fc.emit(GetSuperProperty{Name: n.Property.(*ast.Identifier).Name})
		}
		return
	}

	fc.compileExpression(n.Object)

	if n.Optional {
		fc.emit(Dup{})
		pc := fc.emit(JumpIfNullOrUndef{})
		fc.chainEnds = append(fc.chainEnds, pc)
	}

	fc.compileMemberAccess(n)
}

// compileMemberAccess assumes the object is already on the stack and emits
// the Get op for n's (possibly computed, possibly private) property.
func (fc *funcCompiler) compileMemberAccess(n *ast.MemberExpression) {
	if priv, ok := n.Property.(*ast.PrivateIdentifier); ok {
		fc.emit(GetPrivateField{Private: fc.resolvePrivateName(priv)})
		return
	}

	if n.Computed {
		fc.compileExpression(n.Property)
		fc.emit(GetPropertyByValue{})
		return
	}

	fc.emit(GetPropertyByName{Name: n.Property.(*ast.Identifier).Name})
}

func (fc *funcCompiler) compileYieldExpression(n *ast.YieldExpression) {
	if n.Argument != nil {
		fc.compileExpression(n.Argument)
	} else {
		fc.emit(PushUndefined{})
	}
	fc.emit(Yield{Delegate: n.Delegate})
}
