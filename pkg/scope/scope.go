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

// Package scope walks a parsed pkg/ast.Program once and attaches, to every
// binding-introducing node, a *Scope describing the names declared there and
// how each reference to those names resolves (§4.4). The bytecode compiler
// consumes the result instead of re-deriving binding structure itself.
package scope

import "github.com/ecmaforge/ecmaforge/pkg/ast"

// Kind distinguishes the seven node shapes that introduce a scope.
type Kind uint8

const (
	KindScript Kind = iota
	KindModule
	KindFunction
	// KindFunctionParams is the separate environment that wraps a function's
	// parameter list when it is non-simple (a default, rest, or destructuring
	// parameter) — §4.4's "parameter-eval scope", evaluated before and
	// distinct from the body scope so that a parameter default referring to
	// an earlier parameter sees the parameter binding, never a body `let`.
	KindFunctionParams
	KindBlock
	KindCatch
	KindSwitch
	KindFor
	KindClass
)

// BindingKind is the declared-form of one name within a Scope (§4.4).
type BindingKind uint8

const (
	BindingVar BindingKind = iota
	BindingLet
	BindingConst
	BindingFunction
	BindingClass
	BindingCatch
	BindingParameter
	BindingImport
)

// Binding is one name declared in a Scope.
type Binding struct {
	Name string
	Kind BindingKind
	// Slot is the binding-locator candidate (§4.4): an index into the
	// owning Scope's slot array, stable for the scope's lifetime. The
	// bytecode compiler turns (Scope, Slot) into a concrete get-local/
	// set-local operand when Local is true, or a named lookup when false.
	Slot int
	// Local reports whether this binding is statically resolvable to a
	// fixed slot. It starts true and is flipped to false when the owning
	// Scope is marked NonOptimizable (via `with`, direct `eval`, or a
	// split-parameter-scope capture that forces named lookup).
	Local bool
	// Node is the declaring node: *ast.Identifier for most kinds, or the
	// *ast.CatchClause/param for a BindingCatch whose parameter is itself a
	// destructuring pattern (no single Identifier to point at).
	Node ast.Node
}

// Scope is attached to one binding-introducing AST node. Scopes nest
// following lexical structure; Parent is nil only for the outermost script
// or module scope.
type Scope struct {
	Kind   Kind
	Parent *Scope
	Node   ast.Node

	bindings []*Binding
	byName   map[string]*Binding

	// NonOptimizable is set by a `with` statement or a direct `eval(...)`
	// call site anywhere from here up to (and including) the nearest
	// enclosing function boundary (§4.4): every binding in every such
	// scope must fall back to dynamic named lookup.
	NonOptimizable bool

	// The following apply only to KindFunction scopes.

	// UsesArguments records whether the function body references the
	// identifier `arguments` (outside of a nested non-arrow function),
	// which decides whether the arguments object must be materialized.
	UsesArguments bool
	// ThisCaptured records whether a nested arrow function closes over
	// this function's `this`/`super`/`new.target` binding.
	ThisCaptured bool
	// NonSimpleParams records whether the parameter list contains a
	// default, rest, or destructuring parameter, which forces a distinct
	// parameter-eval scope (KindFunctionParams) wrapping the body scope.
	NonSimpleParams bool
	// Params, when NonSimpleParams is true, is the synthesized parameter
	// scope that wraps this function scope.
	Params *Scope
	// Arrow records whether this KindFunction/KindFunctionParams scope
	// belongs to an arrow function, which owns none of `this`, `super`,
	// `new.target`, or `arguments` (§3.4/§4.4): references to those inside
	// an arrow resolve to the nearest enclosing non-arrow function instead.
	Arrow bool
}

// Bindings returns the ordered list of names declared directly in s.
func (s *Scope) Bindings() []*Binding { return s.bindings }

// Lookup finds a binding named name declared directly in s, without
// consulting Parent.
func (s *Scope) Lookup(name string) (*Binding, bool) {
	b, ok := s.byName[name]
	return b, ok
}

// declare records a new binding named name of the given kind, returning the
// existing binding if name is already declared directly in s (the caller
// decides whether that collision is a redeclaration error).
func (s *Scope) declare(name string, kind BindingKind, node ast.Node) (*Binding, bool) {
	if s.byName == nil {
		s.byName = make(map[string]*Binding)
	}

	if existing, ok := s.byName[name]; ok {
		return existing, false
	}

	b := &Binding{Name: name, Kind: kind, Slot: len(s.bindings), Local: true, Node: node}
	s.bindings = append(s.bindings, b)
	s.byName[name] = b

	return b, true
}

// functionBoundary walks up from s (inclusive) to the nearest enclosing
// KindFunction, KindScript, or KindModule scope.
func (s *Scope) functionBoundary() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		switch cur.Kind {
		case KindFunction, KindScript, KindModule:
			return cur
		}
	}

	return nil
}

// Resolution is the outcome of resolving one identifier reference against
// its enclosing scope chain.
type Resolution struct {
	// Binding is nil when the reference did not resolve to any declared
	// binding in the chain (a free reference to a global, or to a var/
	// function binding that only the top-level script/module scope's
	// implicit global-object semantics supply).
	Binding *Binding
	// Scope is the Scope that declares Binding; nil alongside a nil
	// Binding.
	Scope *Scope
	// Depth is the number of scope links walked from the reference's
	// innermost enclosing scope to reach Scope (0 when declared in the
	// innermost scope itself).
	Depth int
	// Global is true when the reference resolved to no lexical binding and
	// must be looked up as a property of the global object at runtime.
	Global bool
}

// Result is the output of Analyze: every binding-introducing node's Scope,
// and every identifier reference's Resolution.
type Result struct {
	Scopes map[ast.Node]*Scope
	Refs   map[*ast.Identifier]Resolution
}
