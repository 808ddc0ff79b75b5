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
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/scope"
)

// compileFunctionLiteral compiles fn's own CodeBlock and pushes a closure
// over it. id, when non-nil, is a named FunctionExpression's own name
// (bound inside fn's body scope only, per §4.4) — FunctionDeclaration binds
// its name one level up instead (compileFunctionDeclaration), and an arrow
// or anonymous expression passes nil.
func (fc *funcCompiler) compileFunctionLiteral(fn *ast.Function, id *ast.Identifier) {
	name := ""
	if id != nil {
		name = id.Name
	}

	cb := fc.c.compileFunctionBody(fn, name)
	fc.emit(NewFunction{Code: cb, Name: name, IsArrow: fn.Arrow})
}

// compileFunctionBody lowers fn's parameter list and body into a standalone
// CodeBlock (§4.5's FunctionDeclarationInstantiation): the parameter-binding
// preamble (only emitted for a non-simple parameter list — a simple one is
// bound directly into the body environment by pkg/vm's call protocol, no
// bytecode needed at all), `arguments` materialization, and the statements
// of the body in source order, hoisting nested function declarations first.
func (c *Compiler) compileFunctionBody(fn *ast.Function, name string) *CodeBlock {
	fnScope := c.scopes.Scopes[fn]

	cb := NewCodeBlock(name)
	cb.SourceName = c.src.Name
	cb.Generator = fn.Generator
	cb.Async = fn.Async
	cb.Arrow = fn.Arrow
	cb.Strict = fn.Strict
	cb.ParamCount = simpleParamPrefixCount(fn.Params)
	cb.UsesArguments = !fn.Arrow && fnScope.UsesArguments

	if fnScope.NonSimpleParams {
		cb.ParamSlots = len(fnScope.Params.Bindings())
		cb.ParamNames = c.bindingNames(fnScope.Params)
	} else {
		cb.MappedArguments = cb.UsesArguments && !cb.Strict
	}

	fc := c.newFuncCompiler(cb, fnScope)
	fc.compileParamPreamble(fn, fnScope)
	cb.ParamPreambleEnd = fc.pc()

	if cb.UsesArguments {
		fc.emit(CreateArgumentsObject{Mapped: cb.MappedArguments})
	}

	switch body := fn.Body.(type) {
	case *ast.BlockStatement:
		fc.compileStatements(body.Body)
	case ast.Expression:
		fc.compileExpression(body)
		fc.emit(Return{})
		return cb
	}

	fc.emit(PushUndefined{})
	fc.emit(Return{})

	return cb
}

// compileParamPreamble emits fn's parameter-binding code when its parameter
// list is non-simple. Every op here executes before the function's own body
// environment exists (only the parameter-eval environment pkg/scope
// attached as fnScope.Params does), matching the Depth pkg/scope already
// computed for any default-value expression referencing an earlier
// parameter: such a reference was resolved against fnScope.Params itself,
// never the body scope.
func (fc *funcCompiler) compileParamPreamble(fn *ast.Function, fnScope *scope.Scope) {
	if !fnScope.NonSimpleParams {
		return
	}

	sink := paramBindingSink(fnScope.Params)

	for i, p := range fn.Params {
		if rest, ok := p.(*ast.RestElement); ok {
			fc.emit(RestArgs{From: i})
			fc.compileDestructure(rest.Target, sink)
			return
		}

		fc.emit(GetArg{Index: i})
		fc.compileDestructure(p, sink)
	}
}

// paramBindingSink builds the destSink a non-simple parameter preamble binds
// its leaves through: every parameter lives directly in paramScope (the
// environment active while the preamble itself runs), so Depth is always 0.
func paramBindingSink(paramScope *scope.Scope) destSink {
	return destSink{
		identifier: func(fc *funcCompiler, id *ast.Identifier) {
			b, ok := paramScope.Lookup(id.Name)
			if !ok {
				fc.c.errorf(id.Span(), "internal: parameter binding for '%s' missing from scope", id.Name)
				fc.emit(Pop{})
				return
			}

			fc.emit(SetLocal{Depth: 0, Slot: b.Slot})
			fc.emit(Pop{})
		},
	}
}

// simpleParamPrefixCount returns the function's `.length`: the count of
// leading parameters before the first default, rest, or destructuring one.
func simpleParamPrefixCount(params []ast.Pattern) int {
	for i, p := range params {
		if _, ok := p.(*ast.Identifier); !ok {
			return i
		}
	}

	return len(params)
}

// compileFunctionDeclaration builds d's closure and stores it into its
// already-declared binding. Hoisting it ahead of the rest of its enclosing
// scope's statements (§4.5's function-hoisting behaviour, visible before its
// own textual position, unlike let/const/class) is the caller's
// responsibility (compileStatements' hoist pass), not this function's.
func (fc *funcCompiler) compileFunctionDeclaration(d *ast.FunctionDeclaration) {
	fc.compileFunctionLiteral(d.Function, nil)

	b, ok := fc.currentLexicalScope().Lookup(d.Function.Id.Name)
	if !ok {
		fc.c.errorf(d.Span(), "internal: function binding for '%s' missing from scope", d.Function.Id.Name)
		fc.emit(Pop{})
		return
	}

	fc.emit(SetLocal{Depth: 0, Slot: b.Slot})
	fc.emit(Pop{})
}

// compileClass compiles cls's constructor, methods, fields, and static
// blocks against the ClassDefinitionEvaluation skeleton NewClass bundles,
// leaving the constructor value on top of the stack (§4.9). Every class gets
// its own private-name table, chained to any enclosing class's so a nested
// class's methods can still close over an outer class's `#` members.
func (fc *funcCompiler) compileClass(cls *ast.Class) {
	hasSuper := cls.SuperClass != nil
	if hasSuper {
		fc.compileExpression(cls.SuperClass)
	}

	outerPrivates := fc.privates
	fc.privates = &privateScope{parent: outerPrivates, names: map[string]*object.PrivateName{}}
	for _, el := range cls.Body {
		fc.declareClassPrivateName(el)
	}

	ctorMethod := findConstructor(cls)
	ctorCB := fc.compileConstructor(ctorMethod, hasSuper)
	fc.emit(NewClass{Ctor: ctorCB, HasSuperClass: hasSuper})

	for _, el := range cls.Body {
		if el == ctorMethod {
			continue
		}

		fc.compileClassElement(el)
	}

	fc.privates = outerPrivates
}

// declareClassPrivateName mints the PrivateName identity for el's `#name`
// key, if any, before any method/field compiles — a private method may be
// referenced (inside another member's body) textually before its own
// declaration.
func (fc *funcCompiler) declareClassPrivateName(el ast.ClassElement) {
	var key ast.Expression

	switch e := el.(type) {
	case *ast.MethodDefinition:
		key = e.Key
	case *ast.PropertyDefinition:
		key = e.Key
	default:
		return
	}

	pid, ok := key.(*ast.PrivateIdentifier)
	if !ok {
		return
	}

	if _, exists := fc.privates.names[pid.Name]; exists {
		return
	}

	fc.privates.names[pid.Name] = &object.PrivateName{Description: pid.Name}
}

func findConstructor(cls *ast.Class) *ast.MethodDefinition {
	for _, el := range cls.Body {
		if md, ok := el.(*ast.MethodDefinition); ok && md.Kind == ast.MethodConstructor {
			return md
		}
	}

	return nil
}

// compileConstructor builds the class's constructor CodeBlock: the explicit
// `constructor(...)` method's body if cls declares one, or a synthesized
// default constructor otherwise — `constructor(...args) { super(...args); }`
// for a derived class, or an empty `constructor() {}` for a base class.
func (fc *funcCompiler) compileConstructor(ctor *ast.MethodDefinition, hasSuper bool) *CodeBlock {
	if ctor != nil {
		return fc.c.compileFunctionBody(ctor.Value, "")
	}

	cb := NewCodeBlock("")
	cb.SourceName = fc.c.src.Name
	cb.Strict = true

	sub := fc.c.newFuncCompiler(cb, nil)
	sub.privates = fc.privates

	if hasSuper {
		sub.emit(RestArgs{From: 0})
		sub.emit(SuperCallSpread{})
		sub.emit(Pop{})
	}

	sub.emit(PushUndefined{})
	sub.emit(Return{})

	return cb
}

// compileClassElement attaches one non-constructor class element (method,
// accessor, field, or static block) onto the constructor value currently on
// top of the stack, leaving that same constructor on top afterward.
func (fc *funcCompiler) compileClassElement(el ast.ClassElement) {
	switch e := el.(type) {
	case *ast.MethodDefinition:
		fc.compileClassMethod(e)
	case *ast.PropertyDefinition:
		fc.compileClassField(e)
	case *ast.StaticBlock:
		fc.compileStaticBlock(e)
	}
}

func (fc *funcCompiler) compileClassMethod(e *ast.MethodDefinition) {
	cb := fc.c.compileFunctionBody(e.Value, "")

	if pid, ok := e.Key.(*ast.PrivateIdentifier); ok {
		pn := fc.privates.names[pid.Name]
		switch e.Kind {
		case ast.MethodGet:
			fc.emit(PushClassPrivateGetter{Private: pn, Code: cb})
		case ast.MethodSet:
			fc.emit(PushClassPrivateSetter{Private: pn, Code: cb})
		default:
			fc.emit(PushClassPrivateMethod{Private: pn, Code: cb})
		}

		return
	}

	// The prototype (an instance method's attach target) must be pushed
	// before the key is evaluated: compilePropertyKey's computed branch
	// leaves the key on top of stack, and PushClassPrototype needs the
	// constructor itself on top when it runs.
	if !e.Static {
		fc.emit(PushClassPrototype{})
	}

	name, computed := fc.compilePropertyKey(e.Key, e.Computed)

	fc.emit(NewFunction{Code: cb, Name: name, IsArrow: false, IsMethod: true})

	switch e.Kind {
	case ast.MethodGet, ast.MethodSet:
		fc.emit(DefineAccessor{Name: name, Computed: computed, IsSetter: e.Kind == ast.MethodSet})
	default:
		fc.emit(DefineOwnProperty{Name: name, Computed: computed, Enumerable: false, Writable: true, Configurable: true})
	}

	if !e.Static {
		fc.emit(Pop{})
	}
}

// compileClassField registers an instance field (PushClassField(Private)),
// or, for a static field, evaluates and assigns it immediately against the
// constructor itself — the one class-element form with no dedicated
// deferred-init opcode, since a static field's initializer runs once, at
// class-definition time, rather than once per [[Construct]] call.
func (fc *funcCompiler) compileClassField(e *ast.PropertyDefinition) {
	initCB := fc.compileFieldInit(e)

	if pid, ok := e.Key.(*ast.PrivateIdentifier); ok {
		pn := fc.privates.names[pid.Name]
		if e.Static {
			// SetPrivateField does not push the object back, unlike
			// DefineOwnProperty, so the constructor needs one extra surviving
			// copy beyond the one Call consumes as `this`.
			fc.emit(Dup{})
			fc.compileCallInitWithThis(initCB)
			fc.emit(SetPrivateField{Private: pn})
			return
		}

		fc.emit(PushClassFieldPrivate{Private: pn, Init: initCB})
		return
	}

	if e.Static {
		// A static field's key is evaluated once, at class-definition time,
		// same as any other property key — but it must survive underneath
		// the init call's `this`/result pair, so the call's own Dup/Swap
		// choreography brackets the key push instead of compilePropertyKey's
		// ordinary "push directly before the value" placement.
		fc.emit(Dup{})

		name := ""
		computed := e.Computed
		if computed {
			fc.compileExpression(e.Key)
			fc.emit(Swap{})
		} else {
			name, _ = fc.compilePropertyKey(e.Key, false)
		}

		fc.emit(NewFunction{Code: initCB, Name: "", IsArrow: false})
		fc.emit(Call{Argc: 0})
		fc.emit(DefineOwnProperty{Name: name, Computed: computed, Enumerable: true, Writable: true, Configurable: true})
		return
	}

	name, computed := fc.compilePropertyKey(e.Key, e.Computed)
	fc.emit(PushClassField{Name: name, Computed: computed, Init: initCB})
}

// compileCallInitWithThis runs initCB immediately, with a duplicate of the
// constructor (top of stack, left in place) bound as `this`, leaving the
// call's result on top — used by a static block and a static private
// field's initializer, neither of which has a computed-key value to
// interleave with the Dup/Call choreography (a private key is never
// computed; a static block has no key at all).
func (fc *funcCompiler) compileCallInitWithThis(initCB *CodeBlock) {
	fc.emit(Dup{})
	fc.emit(NewFunction{Code: initCB, Name: "", IsArrow: false})
	fc.emit(Call{Argc: 0})
}

// compileFieldInit builds a field initializer's own CodeBlock: a bare
// `undefined` for a field with no initializer, or the initializer
// expression's value otherwise, wrapped in the KindBlock scope pkg/scope
// attaches to the PropertyDefinition itself when present.
func (fc *funcCompiler) compileFieldInit(e *ast.PropertyDefinition) *CodeBlock {
	cb := NewCodeBlock("")
	cb.SourceName = fc.c.src.Name
	cb.Strict = true

	sub := fc.c.newFuncCompiler(cb, nil)
	sub.privates = fc.privates

	if e.Value == nil {
		sub.emit(PushUndefined{})
	} else {
		closer := sub.enterChildScope(e)
		sub.compileExpression(e.Value)
		closer()
	}

	sub.emit(Return{})

	return cb
}

// compileStaticBlock runs a `static { ... }` element's body immediately,
// with `this` bound to the class constructor, the same Dup/Dup/Call
// discipline a static field initializer uses, discarding the (unused)
// result.
func (fc *funcCompiler) compileStaticBlock(e *ast.StaticBlock) {
	cb := NewCodeBlock("")
	cb.SourceName = fc.c.src.Name
	cb.Strict = true

	sub := fc.c.newFuncCompiler(cb, fc.c.scopes.Scopes[e])
	sub.privates = fc.privates
	sub.compileStatements(e.Body)
	sub.emit(PushUndefined{})
	sub.emit(Return{})

	fc.compileCallInitWithThis(cb)
	fc.emit(Pop{})
}
