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

import "github.com/ecmaforge/ecmaforge/pkg/ast"

// hoistVars recursively declares every `var`-kind binding reachable from
// stmts into scope, without crossing a function, arrow, or class boundary
// (§4.4: var bindings hoist to the nearest function/script/module scope
// regardless of how many blocks, loops, or try/catch bodies they sit under).
func (a *Analyzer) hoistVars(scope *Scope, stmts []ast.Statement) {
	for _, stmt := range stmts {
		a.hoistVarsStmt(scope, stmt)
	}
}

func (a *Analyzer) hoistVarsStmt(scope *Scope, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		if s.Kind != ast.VariableVar {
			return
		}

		for _, d := range s.Declarations {
			a.hoistPatternVars(scope, d.Target)
		}
	case *ast.BlockStatement:
		a.hoistVars(scope, s.Body)
	case *ast.IfStatement:
		a.hoistVarsStmt(scope, s.Consequent)

		if s.Alternate != nil {
			a.hoistVarsStmt(scope, s.Alternate)
		}
	case *ast.ForStatement:
		if vd, ok := s.Init.(*ast.VariableDeclaration); ok {
			a.hoistVarsStmt(scope, vd)
		}

		a.hoistVarsStmt(scope, s.Body)
	case *ast.ForInStatement:
		if vd, ok := s.Left.(*ast.VariableDeclaration); ok {
			a.hoistVarsStmt(scope, vd)
		}

		a.hoistVarsStmt(scope, s.Body)
	case *ast.ForOfStatement:
		if vd, ok := s.Left.(*ast.VariableDeclaration); ok {
			a.hoistVarsStmt(scope, vd)
		}

		a.hoistVarsStmt(scope, s.Body)
	case *ast.WhileStatement:
		a.hoistVarsStmt(scope, s.Body)
	case *ast.DoWhileStatement:
		a.hoistVarsStmt(scope, s.Body)
	case *ast.SwitchStatement:
		for _, c := range s.Cases {
			a.hoistVars(scope, c.Consequent)
		}
	case *ast.TryStatement:
		a.hoistVars(scope, s.Block.Body)

		if s.Handler != nil {
			a.hoistVars(scope, s.Handler.Body.Body)
		}

		if s.Finalizer != nil {
			a.hoistVars(scope, s.Finalizer.Body)
		}
	case *ast.WithStatement:
		a.hoistVarsStmt(scope, s.Body)
	case *ast.LabeledStatement:
		a.hoistVarsStmt(scope, s.Body)
	}

	// FunctionDeclaration, ClassDeclaration, ExpressionStatement, Return,
	// Throw, Break, Continue, Debugger, Empty, import/export: no var names
	// of their own. Function declarations are block-scoped in this design
	// (the Annex B "hoist function declarations out of blocks in sloppy
	// mode" nuance is a documented simplification we skip) and are declared
	// directly by declareDirect at the block that textually contains them.
}

func (a *Analyzer) hoistPatternVars(scope *Scope, pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.Identifier:
		a.declareVar(scope, p.Name, p)
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				a.hoistPatternVars(scope, el)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			a.hoistPatternVars(scope, prop.Value)
		}

		if p.Rest != nil {
			a.hoistPatternVars(scope, p.Rest.Target)
		}
	case *ast.AssignmentPattern:
		a.hoistPatternVars(scope, p.Target)
	case *ast.RestElement:
		a.hoistPatternVars(scope, p.Target)
	}
}

// declareVar declares name as a var binding in scope. A var redeclaring
// another var (or a function) is routine and silently reuses the existing
// slot; a var colliding with a lexical binding already present in the same
// scope is an early error.
func (a *Analyzer) declareVar(scope *Scope, name string, node ast.Node) {
	if existing, ok := scope.byName[name]; ok {
		switch existing.Kind {
		case BindingLet, BindingConst, BindingClass:
			a.errorf(node.Span(), "Identifier '%s' has already been declared", name)
		}

		return
	}

	scope.declare(name, BindingVar, node)
}

// declareName declares name as kind in scope, reporting a redeclaration
// error when a conflicting binding already exists directly in scope.
// Duplicate parameter names are accepted silently (a documented
// simplification of the strict-mode/non-simple-parameter-list early error).
func (a *Analyzer) declareName(scope *Scope, name string, kind BindingKind, node ast.Node) *Binding {
	if kind == BindingParameter {
		if b, ok := scope.byName[name]; ok {
			return b
		}
	}

	b, fresh := scope.declare(name, kind, node)
	if !fresh {
		a.errorf(node.Span(), "Identifier '%s' has already been declared", name)
	}

	return b
}

// bindPattern declares every name bound by pat into scope as kind. It never
// walks the expressions embedded in pat (AssignmentPattern defaults,
// computed property keys); walkPatternExprs does that once every sibling
// binding in the enclosing declaration list has already been declared.
func (a *Analyzer) bindPattern(scope *Scope, pat ast.Pattern, kind BindingKind) {
	switch p := pat.(type) {
	case *ast.Identifier:
		a.declareName(scope, p.Name, kind, p)
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				a.bindPattern(scope, el, kind)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			a.bindPattern(scope, prop.Value, kind)
		}

		if p.Rest != nil {
			a.bindPattern(scope, p.Rest.Target, kind)
		}
	case *ast.AssignmentPattern:
		a.bindPattern(scope, p.Target, kind)
	case *ast.RestElement:
		a.bindPattern(scope, p.Target, kind)
	}
}

// walkPatternExprs resolves the expressions embedded in pat (computed
// ObjectPattern keys, AssignmentPattern defaults) against scope, without
// redeclaring any binding.
func (a *Analyzer) walkPatternExprs(scope *Scope, pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.Identifier:
		// A binding occurrence, not a reference: nothing to resolve.
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				a.walkPatternExprs(scope, el)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			if prop.Computed {
				a.walkExpression(scope, prop.Key)
			}

			a.walkPatternExprs(scope, prop.Value)
		}

		if p.Rest != nil {
			a.walkPatternExprs(scope, p.Rest.Target)
		}
	case *ast.AssignmentPattern:
		a.walkPatternExprs(scope, p.Target)
		a.walkExpression(scope, p.Default)
	case *ast.RestElement:
		a.walkPatternExprs(scope, p.Target)
	}
}

// declareDirect declares every let/const/function/class/import binding
// introduced directly by stmts (not recursing into nested blocks, loops, or
// function bodies, which each own their own scope). var bindings are
// excluded here; they were already hoisted into the enclosing function/
// script/module scope by hoistVars.
func (a *Analyzer) declareDirect(scope *Scope, stmts []ast.Statement) {
	for _, stmt := range stmts {
		a.declareDirectStmt(scope, stmt)
	}
}

func (a *Analyzer) declareDirectStmt(scope *Scope, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		if s.Kind == ast.VariableVar {
			return
		}

		kind := BindingLet
		if s.Kind == ast.VariableConst {
			kind = BindingConst
		}

		for _, d := range s.Declarations {
			a.bindPattern(scope, d.Target, kind)
		}
	case *ast.FunctionDeclaration:
		if s.Function.Id != nil {
			a.declareName(scope, s.Function.Id.Name, BindingFunction, s.Function.Id)
		}
	case *ast.ClassDeclaration:
		if s.Class.Id != nil {
			a.declareName(scope, s.Class.Id.Name, BindingClass, s.Class.Id)
		}
	case *ast.ImportDeclaration:
		for _, spec := range s.Specifiers {
			b := a.declareName(scope, spec.Local.Name, BindingImport, spec.Local)
			// An import binding is always an indirect forward to another
			// module's own slot (pkg/envrec.DeclareImportBinding), never a
			// value stored directly in this slot, so every reference must
			// go through the dynamic by-name path (GetName/SetName) rather
			// than a static GetLocal/SetLocal — the module's own slot for
			// it is never written to at all.
			b.Local = false
		}
	case *ast.ExportNamedDeclaration:
		if s.Declaration != nil {
			a.declareDirectStmt(scope, s.Declaration)
		}
	case *ast.ExportDefaultDeclaration:
		switch d := s.Declaration.(type) {
		case *ast.FunctionDeclaration:
			if d.Function.Id != nil {
				a.declareName(scope, d.Function.Id.Name, BindingFunction, d.Function.Id)
			} else {
				a.declareName(scope, DefaultExportBindingName, BindingConst, s)
			}
		case *ast.ClassDeclaration:
			if d.Class.Id != nil {
				a.declareName(scope, d.Class.Id.Name, BindingClass, d.Class.Id)
			} else {
				a.declareName(scope, DefaultExportBindingName, BindingConst, s)
			}
		default:
			// A bare `export default <expr>;`: the value has no name of its
			// own anywhere, including within this module, so pkg/bytecode
			// binds it to this synthetic slot instead (§4.10's modules
			// always have SOME binding backing every export, named or not).
			a.declareName(scope, DefaultExportBindingName, BindingConst, s)
		}
	}
}

// DefaultExportBindingName is the synthetic module-scope binding a
// `export default` whose value has no ordinary declared name (an anonymous
// function/class, or a bare expression) is stored under, so pkg/module can
// resolve a `default` import as an ordinary live binding exactly like any
// other export rather than needing a separate non-binding code path. Not a
// legal identifier, so it can never collide with a real source binding.
const DefaultExportBindingName = "*default*"

func isSimpleParams(params []ast.Pattern) bool {
	for _, p := range params {
		if _, ok := p.(*ast.Identifier); !ok {
			return false
		}
	}

	return true
}
