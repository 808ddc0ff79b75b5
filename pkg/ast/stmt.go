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

// ExpressionStatement is a bare expression used as a statement, terminated
// by ASI or a semicolon.
type ExpressionStatement struct {
	NodeBase
	Expression Expression
}

func (*ExpressionStatement) stmtNode() {}

// BlockStatement is a `{ ... }` statement list; it introduces its own lexical
// scope for let/const/function/class bindings (§4.4).
type BlockStatement struct {
	NodeBase
	Body []Statement
}

func (*BlockStatement) stmtNode() {}

// EmptyStatement is a bare `;`.
type EmptyStatement struct{ NodeBase }

func (*EmptyStatement) stmtNode() {}

// DebuggerStatement is the `debugger;` statement; the VM treats it as a
// host-hookable breakpoint (pkg/debugadapter) and a no-op otherwise.
type DebuggerStatement struct{ NodeBase }

func (*DebuggerStatement) stmtNode() {}

// WithStatement is `with (object) body`. Its mere presence in an enclosing
// function forces every binding reference in that function to resolve
// dynamically rather than to a fixed slot (§4.4's "non-optimizable scope"
// detection) and is forbidden outright in strict mode (§4.3 early error).
type WithStatement struct {
	NodeBase
	Object Expression
	Body   Statement
}

func (*WithStatement) stmtNode() {}

// VariableKind distinguishes var/let/const, which differ in hoisting
// behavior (§4.4) and in whether re-declaration/use-before-init is an error.
type VariableKind uint8

const (
	VariableVar VariableKind = iota
	VariableLet
	VariableConst
)

// VariableDeclarator is one `target = init` (or bare `target`) entry of a
// VariableDeclaration.
type VariableDeclarator struct {
	NodeBase
	Target Pattern
	Init   Expression // nil when absent (only legal for var, and for let without a for-in/of head)
}

// VariableDeclaration is `var|let|const decls...;`, legal as a Statement and
// as the head of a C-style ForStatement or a ForInStatement/ForOfStatement.
type VariableDeclaration struct {
	NodeBase
	Kind         VariableKind
	Declarations []*VariableDeclarator
}

func (*VariableDeclaration) stmtNode() {}
func (*VariableDeclaration) declNode() {}

// FunctionDeclaration is a top-level-of-scope or block-scoped named
// `function` declaration. Id is never nil (an anonymous `function` in
// statement position is a syntax error, enforced by the parser).
type FunctionDeclaration struct {
	NodeBase
	Function *Function
}

func (*FunctionDeclaration) stmtNode() {}
func (*FunctionDeclaration) declNode() {}

// ClassDeclaration is a named `class` declaration. Id is nil only for the
// `export default class { ... }` form.
type ClassDeclaration struct {
	NodeBase
	Class *Class
}

func (*ClassDeclaration) stmtNode() {}
func (*ClassDeclaration) declNode() {}

// MethodKind distinguishes the five forms a class/object element can take.
type MethodKind uint8

const (
	MethodNormal MethodKind = iota
	MethodConstructor
	MethodGet
	MethodSet
)

// MethodDefinition is one method, getter, setter, or constructor inside a
// ClassBody.
type MethodDefinition struct {
	NodeBase
	Key      Expression // Identifier, PrivateIdentifier, StringLiteral, NumericLiteral, or computed
	Computed bool
	Kind     MethodKind
	Static   bool
	Value    *Function
}

// PropertyDefinition is a class field (`name = init;` or bare `name;`),
// evaluated during [[Construct]] (instance fields) or once at class
// evaluation time (static fields), per §4.9's class-elements ordering.
type PropertyDefinition struct {
	NodeBase
	Key      Expression // Identifier, PrivateIdentifier, StringLiteral, NumericLiteral, or computed
	Computed bool
	Static   bool
	Value    Expression // nil for a field with no initializer
}

// StaticBlock is a `static { ... }` class element, run once at class
// evaluation time with `this` bound to the class itself.
type StaticBlock struct {
	NodeBase
	Body []Statement
}

// ClassElement is implemented by MethodDefinition, PropertyDefinition, and
// StaticBlock: the three forms a ClassBody entry can take.
type ClassElement interface {
	Node
	classElementNode()
}

func (*MethodDefinition) classElementNode()   {}
func (*PropertyDefinition) classElementNode() {}
func (*StaticBlock) classElementNode()        {}

// Class carries the shape shared by ClassDeclaration and ClassExpression.
type Class struct {
	NodeBase
	Id         *Identifier // nil for an anonymous class expression
	SuperClass Expression  // nil when there is no `extends` clause
	Body       []ClassElement
}

// ReturnStatement is `return expr;` or bare `return;`, legal only inside a
// function body (enforced by the parser's early-error pass, §4.3).
type ReturnStatement struct {
	NodeBase
	Argument Expression // nil for bare `return;`
}

func (*ReturnStatement) stmtNode() {}

// IfStatement is `if (test) consequent else alternate`.
type IfStatement struct {
	NodeBase
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil when there is no `else`
}

func (*IfStatement) stmtNode() {}

// ForStatement is the C-style `for (init; test; update) body`. Init may be a
// VariableDeclaration, an Expression, or nil.
type ForStatement struct {
	NodeBase
	Init   Node // *VariableDeclaration, Expression, or nil
	Test   Expression
	Update Expression
	Body   Statement
}

func (*ForStatement) stmtNode() {}

// ForInStatement is `for (left in right) body`.
type ForInStatement struct {
	NodeBase
	Left  Node // *VariableDeclaration or Pattern (assignment target)
	Right Expression
	Body  Statement
}

func (*ForInStatement) stmtNode() {}

// ForOfStatement is `for (left of right) body`, optionally `for await`.
type ForOfStatement struct {
	NodeBase
	Left  Node // *VariableDeclaration or Pattern (assignment target)
	Right Expression
	Body  Statement
	Await bool
}

func (*ForOfStatement) stmtNode() {}

// WhileStatement is `while (test) body`.
type WhileStatement struct {
	NodeBase
	Test Expression
	Body Statement
}

func (*WhileStatement) stmtNode() {}

// DoWhileStatement is `do body while (test);`.
type DoWhileStatement struct {
	NodeBase
	Body Statement
	Test Expression
}

func (*DoWhileStatement) stmtNode() {}

// SwitchCase is one `case test:`/`default:` arm of a SwitchStatement. Test is
// nil for the `default` arm.
type SwitchCase struct {
	NodeBase
	Test       Expression
	Consequent []Statement
}

// SwitchStatement is `switch (discriminant) { cases... }`.
type SwitchStatement struct {
	NodeBase
	Discriminant Expression
	Cases        []*SwitchCase
}

func (*SwitchStatement) stmtNode() {}

// CatchClause is the `catch (param) body` part of a TryStatement. Param is
// nil for the optional-catch-binding form (`catch { ... }`).
type CatchClause struct {
	NodeBase
	Param Pattern
	Body  *BlockStatement
}

// TryStatement is `try block [catch] [finally]`. At least one of Handler and
// Finalizer is present (enforced by the parser).
type TryStatement struct {
	NodeBase
	Block     *BlockStatement
	Handler   *CatchClause
	Finalizer *BlockStatement
}

func (*TryStatement) stmtNode() {}

// ThrowStatement is `throw expr;`.
type ThrowStatement struct {
	NodeBase
	Argument Expression
}

func (*ThrowStatement) stmtNode() {}

// BreakStatement is `break;` or `break label;`.
type BreakStatement struct {
	NodeBase
	Label *Identifier // nil for the unlabeled form
}

func (*BreakStatement) stmtNode() {}

// ContinueStatement is `continue;` or `continue label;`.
type ContinueStatement struct {
	NodeBase
	Label *Identifier // nil for the unlabeled form
}

func (*ContinueStatement) stmtNode() {}

// LabeledStatement is `label: body`.
type LabeledStatement struct {
	NodeBase
	Label *Identifier
	Body  Statement
}

func (*LabeledStatement) stmtNode() {}
