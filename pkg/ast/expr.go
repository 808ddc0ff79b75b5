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
package ast

import "math/big"

// ThisExpression is the `this` keyword.
type ThisExpression struct{ NodeBase }

func (*ThisExpression) exprNode() {}

// SuperExpression is the bare `super` keyword, valid only as the callee of a
// CallExpression (super(...)) or the object of a MemberExpression
// (super.prop), per the early errors in §4.3.
type SuperExpression struct{ NodeBase }

func (*SuperExpression) exprNode() {}

// MetaProperty covers `new.target` and `import.meta`.
type MetaProperty struct {
	NodeBase
	Meta     string // "new" or "import"
	Property string // "target" or "meta"
}

func (*MetaProperty) exprNode() {}

// Literal kinds. ECMAScript's literal grammar maps onto distinct Value
// representations (§3.1), so each gets its own node rather than one node
// with a discriminated payload; this mirrors the teacher's per-constant-kind
// node shape (expr.Const carries a single big.Int, but numeric literals here
// must additionally distinguish Integer-range from Rational and BigInt).

// NumericLiteral is a decimal, hex, octal, or binary numeric literal that is
// not BigInt-suffixed. Value holds the mathematical value; Compiler decides
// at emission time whether it fits value.Value's Integer tag or must be
// boxed as Rational.
type NumericLiteral struct {
	NodeBase
	Value float64
	// Raw preserves the source text for `0x`/`0o`/`0b`/legacy-octal display
	// and for distinguishing -0 literal text from computed -0.
	Raw string
}

func (*NumericLiteral) exprNode() {}

// BigIntLiteral is a `123n`-form literal.
type BigIntLiteral struct {
	NodeBase
	Value *big.Int
	Raw   string
}

func (*BigIntLiteral) exprNode() {}

// StringLiteral is a single- or double-quoted string literal with escapes
// already resolved into UTF-16 code units by the lexer.
type StringLiteral struct {
	NodeBase
	Value string
	Raw   string
}

func (*StringLiteral) exprNode() {}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	NodeBase
	Value bool
}

func (*BooleanLiteral) exprNode() {}

// NullLiteral is `null`.
type NullLiteral struct{ NodeBase }

func (*NullLiteral) exprNode() {}

// RegExpLiteral is a `/pattern/flags` literal. Validation of pattern/flags
// happens in pkg/builtins/regexp at construction time; the lexer only slices
// the raw text (§4.1's RegExp goal symbol).
type RegExpLiteral struct {
	NodeBase
	Pattern string
	Flags   string
}

func (*RegExpLiteral) exprNode() {}

// TemplateElement is one literal chunk of a TemplateLiteral, between `${`/`}`
// boundaries (or the opening/closing backtick).
type TemplateElement struct {
	NodeBase
	// Cooked is nil when the chunk contains an invalid escape sequence and
	// this template is tagged (the only context where that is legal; a
	// malformed cooked value becomes `undefined` at the tag-call site,
	// §4.3's "tagged template cooked/raw divergence" early-error carve-out).
	Cooked *string
	Raw    string
	Tail   bool
}

func (*TemplateElement) exprNode() {}

// TemplateLiteral is an untagged or (as the Quasi of TaggedTemplateExpression)
// tagged template. len(Expressions) == len(Quasis)-1 always holds.
type TemplateLiteral struct {
	NodeBase
	Quasis      []*TemplateElement
	Expressions []Expression
}

func (*TemplateLiteral) exprNode() {}

// TaggedTemplateExpression is `tag` followed immediately by a TemplateLiteral.
type TaggedTemplateExpression struct {
	NodeBase
	Tag   Expression
	Quasi *TemplateLiteral
}

func (*TaggedTemplateExpression) exprNode() {}

// ArrayExpression is an array literal. Elements may contain nil holes and
// SpreadElement entries.
type ArrayExpression struct {
	NodeBase
	Elements []Expression // nil entry == elision (array hole)
}

func (*ArrayExpression) exprNode() {}

// PropertyKind distinguishes the five forms an ObjectExpression/ObjectPattern
// property can take.
type PropertyKind uint8

const (
	PropertyInit PropertyKind = iota
	PropertyGet
	PropertySet
	PropertyMethod
	PropertySpread
)

// Property is one entry of an ArrayExpression-sibling ObjectExpression, or
// (reused, per the Pattern set) of an ObjectPattern once the cover grammar
// for `{ a, b: c }` resolves to a destructuring target.
type Property struct {
	NodeBase
	Kind      PropertyKind
	Key       Expression // Identifier, StringLiteral, NumericLiteral, or computed Expression
	Computed  bool
	Shorthand bool
	// Value is the property value for PropertyInit, the FunctionExpression
	// body for PropertyGet/PropertySet/PropertyMethod, or the target pattern
	// when this Property is read back as part of an ObjectPattern.
	Value Expression
}

func (*Property) exprNode() {}

// ObjectExpression is an object literal.
type ObjectExpression struct {
	NodeBase
	Properties []*Property
}

func (*ObjectExpression) exprNode() {}

// SpreadElement is `...expr` inside an array literal, call arguments, or
// (sharing this node) object literal.
type SpreadElement struct {
	NodeBase
	Argument Expression
}

func (*SpreadElement) exprNode() {}

// UnaryOperator enumerates the prefix unary operators (all of which are
// non-associative in the grammar, unlike UpdateExpression).
type UnaryOperator uint8

const (
	UnaryMinus UnaryOperator = iota
	UnaryPlus
	UnaryNot
	UnaryBitNot
	UnaryTypeof
	UnaryVoid
	UnaryDelete
)

// UnaryExpression is a prefix unary operator applied to Argument.
type UnaryExpression struct {
	NodeBase
	Operator UnaryOperator
	Argument Expression
}

func (*UnaryExpression) exprNode() {}

// UpdateExpression is `++`/`--`, prefix or postfix.
type UpdateExpression struct {
	NodeBase
	Operator string // "++" or "--"
	Argument Expression
	Prefix   bool
}

func (*UpdateExpression) exprNode() {}

// BinaryOperator enumerates arithmetic, relational, bitwise, and the `in`/
// `instanceof` operators. Logical operators (&&, ||, ??) are a distinct node
// (LogicalExpression) because they short-circuit and the bytecode compiler
// must emit a branch instead of an opcode.
type BinaryOperator uint8

const (
	BinaryAdd BinaryOperator = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryExp
	BinaryEq
	BinaryNotEq
	BinaryStrictEq
	BinaryStrictNotEq
	BinaryLt
	BinaryLtEq
	BinaryGt
	BinaryGtEq
	BinaryShl
	BinaryShr
	BinaryUShr
	BinaryBitAnd
	BinaryBitOr
	BinaryBitXor
	BinaryIn
	BinaryInstanceof
)

// BinaryExpression is a non-short-circuiting binary operator application.
type BinaryExpression struct {
	NodeBase
	Operator BinaryOperator
	Left     Expression
	Right    Expression
}

func (*BinaryExpression) exprNode() {}

// LogicalOperator enumerates the three short-circuiting operators.
type LogicalOperator uint8

const (
	LogicalAnd LogicalOperator = iota
	LogicalOr
	LogicalNullish
)

// LogicalExpression is `&&`, `||`, or `??`.
type LogicalExpression struct {
	NodeBase
	Operator LogicalOperator
	Left     Expression
	Right    Expression
}

func (*LogicalExpression) exprNode() {}

// AssignmentOperator enumerates `=` and the compound assignment operators,
// including the logical compound forms (`&&=`, `||=`, `??=`) added later to
// the language.
type AssignmentOperator uint8

const (
	AssignPlain AssignmentOperator = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignExp
	AssignShl
	AssignShr
	AssignUShr
	AssignBitAnd
	AssignBitOr
	AssignBitXor
	AssignAnd
	AssignOr
	AssignNullish
)

// AssignmentExpression is `target op value`. Target is an Expression for
// every compound operator (it must already be a valid reference: identifier
// or member expression) but may be a destructuring Pattern when Operator is
// AssignPlain and the parser resolved an ObjectLiteral/ArrayLiteral cover
// grammar to a pattern (§4.3 "cover grammar resolution").
type AssignmentExpression struct {
	NodeBase
	Operator AssignmentOperator
	Target   Node // Expression or Pattern
	Value    Expression
}

func (*AssignmentExpression) exprNode() {}

// ConditionalExpression is `test ? consequent : alternate`.
type ConditionalExpression struct {
	NodeBase
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (*ConditionalExpression) exprNode() {}

// SequenceExpression is the comma operator: `a, b, c`.
type SequenceExpression struct {
	NodeBase
	Expressions []Expression
}

func (*SequenceExpression) exprNode() {}

// MemberExpression is `object.property` or `object[property]`, optionally
// short-circuiting (`object?.property`, the OptionalChain production). A
// chain of optional accesses is wrapped once in a ChainExpression at its
// outermost point so the bytecode compiler knows where short-circuit
// evaluation must bail to (§4.3 "optional chaining short-circuit target").
type MemberExpression struct {
	NodeBase
	Object   Expression
	Property Expression // Identifier when !Computed, else an arbitrary Expression
	Computed bool
	Optional bool
}

func (*MemberExpression) exprNode() {}

// ChainExpression wraps the outermost MemberExpression/CallExpression of an
// optional chain so evaluation can short-circuit to `undefined` in one place
// rather than threading a sentinel through every link.
type ChainExpression struct {
	NodeBase
	Expression Expression
}

func (*ChainExpression) exprNode() {}

// CallExpression is `callee(arguments...)`. Arguments may contain
// SpreadElement entries.
type CallExpression struct {
	NodeBase
	Callee    Expression
	Arguments []Expression
	Optional  bool
}

func (*CallExpression) exprNode() {}

// NewExpression is `new callee(arguments...)`.
type NewExpression struct {
	NodeBase
	Callee    Expression
	Arguments []Expression
}

func (*NewExpression) exprNode() {}

// YieldExpression is `yield` or `yield*` inside a generator body.
type YieldExpression struct {
	NodeBase
	Argument Expression // nil for bare `yield`
	Delegate bool       // true for `yield*`
}

func (*YieldExpression) exprNode() {}

// AwaitExpression is `await expr` inside an async function or top-level
// module body.
type AwaitExpression struct {
	NodeBase
	Argument Expression
}

func (*AwaitExpression) exprNode() {}

// Function carries the shape shared by FunctionDeclaration, FunctionExpression,
// and ArrowFunctionExpression: a parameter pattern list, a body (block or, for
// arrows only, a bare expression), and the generator/async/strict flags that
// change both parse-time grammar restrictions (§4.3) and the preamble the
// bytecode compiler must emit (§4.5's FunctionDeclarationInstantiation).
type Function struct {
	NodeBase
	Id        *Identifier // nil for anonymous function expressions and all arrows
	Params    []Pattern
	Body      Node // *BlockStatement, or an Expression for a concise-body arrow
	Generator bool
	Async     bool
	Arrow     bool
	// Strict records whether this function's own body (or an inherited
	// enclosing strict context) makes it strict; pkg/scope recomputes this
	// from the directive prologue but the parser's own early-error pass
	// needs a provisional value to validate parameter lists before scope
	// analysis runs.
	Strict bool
}

// FunctionExpression is a named or anonymous `function` expression.
type FunctionExpression struct {
	NodeBase
	Function *Function
}

func (*FunctionExpression) exprNode() {}

// ArrowFunctionExpression is `(params) => body`. Arrows never bind their own
// `this`/`arguments`/`super`/`new.target`; pkg/scope resolves those to the
// nearest enclosing non-arrow function (§3.4/§4.4).
type ArrowFunctionExpression struct {
	NodeBase
	Function *Function
}

func (*ArrowFunctionExpression) exprNode() {}

// ClassExpression is `class { ... }` used as an expression.
type ClassExpression struct {
	NodeBase
	Class *Class
}

func (*ClassExpression) exprNode() {}
