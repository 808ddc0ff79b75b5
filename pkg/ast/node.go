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

import "github.com/ecmaforge/ecmaforge/pkg/intern"

// Node is implemented by every AST node. It intentionally has a single
// method: callers that need to distinguish node kinds do so with a type
// switch over one of the four closed sets below (Expression, Statement,
// Declaration, Pattern), not by probing Node itself.
type Node interface {
	Span() Span
}

// Expression is the closed set of expression-kind nodes.
type Expression interface {
	Node
	exprNode()
}

// Statement is the closed set of statement-kind nodes. Declaration nodes
// (VariableDeclaration, FunctionDeclaration, ClassDeclaration) also satisfy
// Statement, since the grammar admits a declaration anywhere a statement is
// admitted.
type Statement interface {
	Node
	stmtNode()
}

// Declaration is the closed set of declaration-kind nodes: a sub-set of
// Statement that additionally introduces one or more bindings that pkg/scope
// must record.
type Declaration interface {
	Statement
	declNode()
}

// Pattern is the closed set of destructuring-target nodes: the left-hand
// side of a VariableDeclarator, a parameter, or an AssignmentExpression
// whose operator is "=".
type Pattern interface {
	Node
	patternNode()
}

// NodeBase embeds into every concrete node to supply Span() without
// repeating the field and accessor in each node type. Loc is exported so
// pkg/parser can populate it directly from a struct literal.
type NodeBase struct {
	Loc Span
}

func (b NodeBase) Span() Span { return b.Loc }

// Identifier is a bare name reference: a variable, a property key written as
// an IdentifierName, a label, or a binding name. Sym is resolved once by
// pkg/intern at parse time; pkg/scope attaches the binding locator later.
type Identifier struct {
	NodeBase
	Sym  intern.Sym
	Name string
}

func (*Identifier) exprNode()    {}
func (*Identifier) patternNode() {}

// PrivateIdentifier is a `#name` reference, valid only as a class element
// name or the right-hand side of `in` (the "private field in" early-error
// surface, §4.3).
type PrivateIdentifier struct {
	NodeBase
	Sym  intern.Sym
	Name string
}

func (*PrivateIdentifier) exprNode() {}

// Program is the root of a parsed script or module. SourceKind distinguishes
// the two since they admit different top-level grammar (import/export is
// module-only) and are always strict-mode for modules.
type Program struct {
	NodeBase
	Kind  SourceKind
	Body  []Statement
	// Strict records whether a top-level "use strict" directive prologue
	// was present (always true when Kind is SourceKindModule).
	Strict bool
}

func (*Program) stmtNode() {}

// SourceKind distinguishes a Script from a Module goal symbol (§4.1), which
// changes both grammar (import/export) and default strictness.
type SourceKind uint8

const (
	SourceKindScript SourceKind = iota
	SourceKindModule
)
