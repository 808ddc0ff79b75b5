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
package scope

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/ecmaforge/ecmaforge/pkg/ast"
	"github.com/ecmaforge/ecmaforge/pkg/lexer"
)

// Analyzer carries the state of one Analyze pass: the source (for error
// positions), the accumulating Result, and the current strict-mode context.
// Early errors the parser left for this package (duplicate lexical bindings,
// `with` in strict mode, the catch-parameter/block-binding collision) are
// collected here via multierr rather than failing on the first one, so a
// caller driving diagnostics sees every violation in one pass (mirrored on
// the parser's own early-error commentary in pkg/parser/parser.go).
type Analyzer struct {
	src    *lexer.Source
	result *Result
	strict bool
	errs   error
}

// Analyze walks prog once, attaching a *Scope to every binding-introducing
// node and a Resolution to every identifier reference (§4.4). src supplies
// 1-based line/column positions for any early errors found along the way.
func Analyze(prog *ast.Program, src *lexer.Source) (*Result, error) {
	a := &Analyzer{
		src: src,
		result: &Result{
			Scopes: make(map[ast.Node]*Scope),
			Refs:   make(map[*ast.Identifier]Resolution),
		},
		strict: prog.Strict,
	}

	kind := KindScript
	if prog.Kind == ast.SourceKindModule {
		kind = KindModule
	}

	root := a.newScope(kind, nil, prog)

	a.hoistVars(root, prog.Body)
	a.declareDirect(root, prog.Body)
	a.walkStatements(root, prog.Body)

	return a.result, a.errs
}

func (a *Analyzer) errorf(span ast.Span, format string, args ...any) {
	a.errs = multierr.Append(a.errs, a.src.SyntaxError(span, fmt.Sprintf(format, args...)))
}

func (a *Analyzer) newScope(kind Kind, parent *Scope, node ast.Node) *Scope {
	s := &Scope{Kind: kind, Parent: parent, Node: node}
	a.result.Scopes[node] = s

	return s
}

// --- statements ------------------------------------------------------------

func (a *Analyzer) walkStatements(scope *Scope, stmts []ast.Statement) {
	for _, stmt := range stmts {
		a.walkStatement(scope, stmt)
	}
}

func (a *Analyzer) walkStatement(scope *Scope, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		a.walkExpression(scope, s.Expression)
	case *ast.BlockStatement:
		child := a.newScope(KindBlock, scope, s)
		a.declareDirect(child, s.Body)
		a.walkStatements(child, s.Body)
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		// no-op
	case *ast.WithStatement:
		if a.strict {
			a.errorf(s.Span(), "'with' statement is not allowed in strict mode")
		}

		a.walkExpression(scope, s.Object)
		markNonOptimizableUpToFunction(scope)
		a.walkStatement(scope, s.Body)
	case *ast.VariableDeclaration:
		for _, d := range s.Declarations {
			a.walkPatternExprs(scope, d.Target)

			if d.Init != nil {
				a.walkExpression(scope, d.Init)
			}
		}
	case *ast.FunctionDeclaration:
		a.walkFunction(scope, s.Function, false)
	case *ast.ClassDeclaration:
		a.walkClass(scope, s.Class)
	case *ast.ReturnStatement:
		if s.Argument != nil {
			a.walkExpression(scope, s.Argument)
		}
	case *ast.IfStatement:
		a.walkExpression(scope, s.Test)
		a.walkStatement(scope, s.Consequent)

		if s.Alternate != nil {
			a.walkStatement(scope, s.Alternate)
		}
	case *ast.ForStatement:
		a.walkForStatement(scope, s)
	case *ast.ForInStatement:
		a.walkForInOfStatement(scope, s.Left, s.Right, s.Body, s)
	case *ast.ForOfStatement:
		a.walkForInOfStatement(scope, s.Left, s.Right, s.Body, s)
	case *ast.WhileStatement:
		a.walkExpression(scope, s.Test)
		a.walkStatement(scope, s.Body)
	case *ast.DoWhileStatement:
		a.walkStatement(scope, s.Body)
		a.walkExpression(scope, s.Test)
	case *ast.SwitchStatement:
		a.walkExpression(scope, s.Discriminant)

		swScope := a.newScope(KindSwitch, scope, s)
		for _, c := range s.Cases {
			a.declareDirect(swScope, c.Consequent)
		}

		for _, c := range s.Cases {
			if c.Test != nil {
				a.walkExpression(swScope, c.Test)
			}

			a.walkStatements(swScope, c.Consequent)
		}
	case *ast.TryStatement:
		a.walkTryStatement(scope, s)
	case *ast.ThrowStatement:
		a.walkExpression(scope, s.Argument)
	case *ast.BreakStatement, *ast.ContinueStatement:
		// Labels are a separate namespace already validated by the parser;
		// nothing to resolve against the binding scope chain.
	case *ast.LabeledStatement:
		a.walkStatement(scope, s.Body)
	case *ast.ImportDeclaration:
		// Specifiers already declared by declareDirect; Source is a string
		// literal, nothing to resolve.
	case *ast.ExportNamedDeclaration:
		if s.Declaration != nil {
			a.walkStatement(scope, s.Declaration)
		}

		if s.Source == nil {
			for _, spec := range s.Specifiers {
				a.resolveIdentifier(scope, spec.Local)
			}
		}
	case *ast.ExportDefaultDeclaration:
		switch d := s.Declaration.(type) {
		case *ast.FunctionDeclaration:
			a.walkFunction(scope, d.Function, false)
		case *ast.ClassDeclaration:
			a.walkClass(scope, d.Class)
		case ast.Expression:
			a.walkExpression(scope, d)
		}
	case *ast.ExportAllDeclaration:
		// nothing to resolve: re-exports name a module, not a local binding.
	}
}

func (a *Analyzer) walkForStatement(scope *Scope, s *ast.ForStatement) {
	forScope := scope

	if vd, ok := s.Init.(*ast.VariableDeclaration); ok && vd.Kind != ast.VariableVar {
		forScope = a.newScope(KindFor, scope, s)
		a.declareDirectStmt(forScope, vd)
	}

	switch init := s.Init.(type) {
	case *ast.VariableDeclaration:
		for _, d := range init.Declarations {
			a.walkPatternExprs(forScope, d.Target)

			if d.Init != nil {
				a.walkExpression(forScope, d.Init)
			}
		}
	case ast.Expression:
		a.walkExpression(forScope, init)
	}

	if s.Test != nil {
		a.walkExpression(forScope, s.Test)
	}

	if s.Update != nil {
		a.walkExpression(forScope, s.Update)
	}

	a.walkStatement(forScope, s.Body)
}

func (a *Analyzer) walkForInOfStatement(scope *Scope, left ast.Node, right ast.Expression, body ast.Statement, node ast.Node) {
	headScope := scope

	if vd, ok := left.(*ast.VariableDeclaration); ok {
		if vd.Kind != ast.VariableVar {
			headScope = a.newScope(KindFor, scope, node)

			kind := BindingLet
			if vd.Kind == ast.VariableConst {
				kind = BindingConst
			}

			for _, d := range vd.Declarations {
				a.bindPattern(headScope, d.Target, kind)
			}
		}

		for _, d := range vd.Declarations {
			a.walkPatternExprs(headScope, d.Target)
		}
	} else {
		a.walkAssignmentTarget(headScope, left)
	}

	a.walkExpression(headScope, right)
	a.walkStatement(headScope, body)
}

func (a *Analyzer) walkTryStatement(scope *Scope, s *ast.TryStatement) {
	blockScope := a.newScope(KindBlock, scope, s.Block)
	a.declareDirect(blockScope, s.Block.Body)
	a.walkStatements(blockScope, s.Block.Body)

	if s.Handler != nil {
		catchScope := a.newScope(KindCatch, scope, s.Handler)

		if s.Handler.Param != nil {
			a.bindPattern(catchScope, s.Handler.Param, BindingCatch)
			a.walkPatternExprs(catchScope, s.Handler.Param)
		}

		bodyScope := a.newScope(KindBlock, catchScope, s.Handler.Body)
		a.declareDirect(bodyScope, s.Handler.Body.Body)

		// BoundNames(CatchParameter) ∩ LexicallyDeclaredNames(Block) must be
		// empty (§4.4).
		for _, b := range catchScope.bindings {
			if _, ok := bodyScope.byName[b.Name]; ok {
				a.errorf(s.Handler.Body.Span(), "Identifier '%s' has already been declared", b.Name)
			}
		}

		a.walkStatements(bodyScope, s.Handler.Body.Body)
	}

	if s.Finalizer != nil {
		finScope := a.newScope(KindBlock, scope, s.Finalizer)
		a.declareDirect(finScope, s.Finalizer.Body)
		a.walkStatements(finScope, s.Finalizer.Body)
	}
}

// --- functions and classes --------------------------------------------------

// walkFunction builds the scope(s) for fn and walks its body. ownName is
// true only for a named FunctionExpression, whose own name is bound inside
// its own body scope and nowhere else (§4.4).
func (a *Analyzer) walkFunction(parent *Scope, fn *ast.Function, ownName bool) *Scope {
	fnScope := a.newScope(KindFunction, parent, fn)
	fnScope.Arrow = fn.Arrow

	simple := isSimpleParams(fn.Params)
	fnScope.NonSimpleParams = !simple

	declScope := fnScope
	if !simple {
		// Not registered in a.result.Scopes: fn already keys fnScope there,
		// and this synthetic wrapper has no AST node of its own. It is only
		// reachable via fnScope.Params.
		paramScope := &Scope{Kind: KindFunctionParams, Parent: parent, Node: fn, Arrow: fn.Arrow}
		fnScope.Params = paramScope
		fnScope.Parent = paramScope
		declScope = paramScope
	}

	if ownName && fn.Id != nil {
		a.declareName(fnScope, fn.Id.Name, BindingFunction, fn.Id)
	}

	for _, p := range fn.Params {
		a.bindPattern(declScope, p, BindingParameter)
	}

	savedStrict := a.strict
	a.strict = fn.Strict

	for _, p := range fn.Params {
		a.walkPatternExprs(declScope, p)
	}

	switch body := fn.Body.(type) {
	case *ast.BlockStatement:
		a.hoistVars(fnScope, body.Body)
		a.declareDirect(fnScope, body.Body)
		a.walkStatements(fnScope, body.Body)
	case ast.Expression:
		a.walkExpression(fnScope, body)
	}

	a.strict = savedStrict

	return fnScope
}

func (a *Analyzer) walkClass(scope *Scope, cls *ast.Class) *Scope {
	if cls.SuperClass != nil {
		a.walkExpression(scope, cls.SuperClass)
	}

	classScope := a.newScope(KindClass, scope, cls)

	if cls.Id != nil {
		a.declareName(classScope, cls.Id.Name, BindingClass, cls.Id)
	}

	savedStrict := a.strict
	a.strict = true

	for _, el := range cls.Body {
		switch e := el.(type) {
		case *ast.MethodDefinition:
			if e.Computed {
				a.walkExpression(classScope, e.Key)
			}

			a.walkFunction(classScope, e.Value, false)
		case *ast.PropertyDefinition:
			if e.Computed {
				a.walkExpression(classScope, e.Key)
			}

			if e.Value != nil {
				fieldScope := a.newScope(KindBlock, classScope, e)
				a.walkExpression(fieldScope, e.Value)
			}
		case *ast.StaticBlock:
			blockScope := a.newScope(KindBlock, classScope, e)
			a.hoistVars(blockScope, e.Body)
			a.declareDirect(blockScope, e.Body)
			a.walkStatements(blockScope, e.Body)
		}
	}

	a.strict = savedStrict

	return classScope
}

// --- expressions -------------------------------------------------------------

func (a *Analyzer) walkExpression(scope *Scope, expr ast.Expression) {
	if expr == nil {
		return
	}

	switch e := expr.(type) {
	case *ast.Identifier:
		a.resolveIdentifier(scope, e)
	case *ast.ThisExpression:
		markThisCapture(scope)
	case *ast.SuperExpression:
		markThisCapture(scope)
	case *ast.MetaProperty:
		if e.Meta == "new" {
			markThisCapture(scope)
		}
	case *ast.NumericLiteral, *ast.BigIntLiteral, *ast.StringLiteral,
		*ast.BooleanLiteral, *ast.NullLiteral, *ast.RegExpLiteral:
		// no references
	case *ast.TemplateLiteral:
		for _, sub := range e.Expressions {
			a.walkExpression(scope, sub)
		}
	case *ast.TaggedTemplateExpression:
		a.walkExpression(scope, e.Tag)
		a.walkExpression(scope, e.Quasi)
	case *ast.ArrayExpression:
		for _, el := range e.Elements {
			if el != nil {
				a.walkExpression(scope, el)
			}
		}
	case *ast.ObjectExpression:
		for _, prop := range e.Properties {
			if prop.Computed {
				a.walkExpression(scope, prop.Key)
			}

			a.walkExpression(scope, prop.Value)
		}
	case *ast.SpreadElement:
		a.walkExpression(scope, e.Argument)
	case *ast.UnaryExpression:
		a.walkExpression(scope, e.Argument)
	case *ast.UpdateExpression:
		a.walkExpression(scope, e.Argument)
	case *ast.BinaryExpression:
		a.walkExpression(scope, e.Left)
		a.walkExpression(scope, e.Right)
	case *ast.LogicalExpression:
		a.walkExpression(scope, e.Left)
		a.walkExpression(scope, e.Right)
	case *ast.AssignmentExpression:
		a.walkAssignmentTarget(scope, e.Target)
		a.walkExpression(scope, e.Value)
	case *ast.ConditionalExpression:
		a.walkExpression(scope, e.Test)
		a.walkExpression(scope, e.Consequent)
		a.walkExpression(scope, e.Alternate)
	case *ast.SequenceExpression:
		for _, sub := range e.Expressions {
			a.walkExpression(scope, sub)
		}
	case *ast.MemberExpression:
		a.walkExpression(scope, e.Object)

		if e.Computed {
			a.walkExpression(scope, e.Property)
		}
	case *ast.ChainExpression:
		a.walkExpression(scope, e.Expression)
	case *ast.CallExpression:
		a.walkExpression(scope, e.Callee)

		if ident, ok := e.Callee.(*ast.Identifier); ok {
			if ref := a.result.Refs[ident]; ident.Name == "eval" && ref.Global {
				markNonOptimizableUpToFunction(scope)
			}
		}

		for _, arg := range e.Arguments {
			a.walkExpression(scope, arg)
		}
	case *ast.NewExpression:
		a.walkExpression(scope, e.Callee)

		for _, arg := range e.Arguments {
			a.walkExpression(scope, arg)
		}
	case *ast.YieldExpression:
		if e.Argument != nil {
			a.walkExpression(scope, e.Argument)
		}
	case *ast.AwaitExpression:
		a.walkExpression(scope, e.Argument)
	case *ast.FunctionExpression:
		a.walkFunction(scope, e.Function, e.Function.Id != nil)
	case *ast.ArrowFunctionExpression:
		a.walkFunction(scope, e.Function, false)
	case *ast.ClassExpression:
		a.walkClass(scope, e.Class)
	case *ast.PrivateIdentifier:
		// Private names live in a class-local namespace handled by the
		// bytecode compiler, not the lexical scope chain.
	}
}

// walkAssignmentTarget resolves the identifiers referenced by an assignment
// target: a plain Identifier/MemberExpression, or a destructuring pattern
// recovered from the cover grammar (§4.3's "cover grammar resolution").
// Unlike bindPattern, every leaf Identifier here is a *reference* to an
// existing binding, not a new declaration.
func (a *Analyzer) walkAssignmentTarget(scope *Scope, target ast.Node) {
	switch t := target.(type) {
	case *ast.Identifier:
		a.resolveIdentifier(scope, t)
	case *ast.ArrayPattern:
		for _, el := range t.Elements {
			if el != nil {
				a.walkAssignmentTarget(scope, el)
			}
		}
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			if p.Computed {
				a.walkExpression(scope, p.Key)
			}

			a.walkAssignmentTarget(scope, p.Value)
		}

		if t.Rest != nil {
			a.walkAssignmentTarget(scope, t.Rest.Target)
		}
	case *ast.AssignmentPattern:
		a.walkAssignmentTarget(scope, t.Target)
		a.walkExpression(scope, t.Default)
	case *ast.RestElement:
		a.walkAssignmentTarget(scope, t.Target)
	case ast.Expression:
		a.walkExpression(scope, t)
	}
}

// --- identifier resolution ---------------------------------------------------

func (a *Analyzer) resolveIdentifier(scope *Scope, ident *ast.Identifier) {
	if ident.Name == "arguments" {
		markArgumentsUse(scope)
	}

	depth := 0

	for cur := scope; cur != nil; cur = cur.Parent {
		if b, ok := cur.byName[ident.Name]; ok {
			a.result.Refs[ident] = Resolution{Binding: b, Scope: cur, Depth: depth}
			return
		}

		depth++
	}

	a.result.Refs[ident] = Resolution{Global: true}
}

// markArgumentsUse records that the nearest enclosing non-arrow function
// accesses `arguments`, walking past any intervening arrow scopes (arrows
// never bind their own `arguments`, §3.4/§4.4).
func markArgumentsUse(scope *Scope) {
	for cur := scope; cur != nil; cur = cur.Parent {
		if cur.Kind == KindFunction && !cur.Arrow {
			cur.UsesArguments = true
			return
		}

		if cur.Kind == KindScript || cur.Kind == KindModule {
			return
		}
	}
}

// markThisCapture records that a `this`/`super`/`new.target` reference
// inside one or more nested arrow functions escapes to the nearest
// non-arrow function, which must keep its own `this` binding alive for the
// closure to capture.
func markThisCapture(scope *Scope) {
	crossedArrow := false

	for cur := scope; cur != nil; cur = cur.Parent {
		if cur.Kind == KindFunction {
			if !cur.Arrow {
				if crossedArrow {
					cur.ThisCaptured = true
				}

				return
			}

			crossedArrow = true
		}

		if cur.Kind == KindScript || cur.Kind == KindModule {
			return
		}
	}
}

// markNonOptimizableUpToFunction flips NonOptimizable (and every declared
// binding's Local flag) on every scope from s up to and including the
// nearest enclosing function boundary (§4.4's direct-eval/`with` rule).
func markNonOptimizableUpToFunction(s *Scope) {
	boundary := s.functionBoundary()

	for cur := s; cur != nil; cur = cur.Parent {
		cur.NonOptimizable = true

		for _, b := range cur.bindings {
			b.Local = false
		}

		if cur == boundary {
			break
		}
	}
}
