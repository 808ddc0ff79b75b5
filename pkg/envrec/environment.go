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

// Package envrec implements the runtime environment record chain of §3.4: a
// single concrete Environment type tagged by Kind (the same "dispatch on a
// kind tag, not a vtable" choice pkg/object makes for its Object type, per
// §9), rather than one Go type per record kind. GetLocal/SetLocal/InitLet/
// InitConst/InitVar/ThrowUndefinedIfTDZ address a binding by its static
// (Depth, Slot) pair computed at compile time (pkg/bytecode); HasBinding/
// GetBindingValue/SetMutableBinding/DeleteBinding address one by name, for
// the dynamic fallback GetName/SetName/DeleteName need whenever pkg/scope
// could not resolve a reference statically (globals, `with`, direct `eval`).
package envrec

import (
	"github.com/ecmaforge/ecmaforge/pkg/bytecode"
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/intern"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// Kind tags which of §3.4's five environment-record shapes an Environment is.
type Kind uint8

// Environment kinds, per §3.4.
const (
	// KindDeclarative backs let/const/function bodies, block scopes, catch
	// clauses, for-heads, and switch bodies: a fixed-size slot array, each
	// slot separately mutable/immutable and initialized/uninitialized.
	KindDeclarative Kind = iota
	// KindFunction is a KindDeclarative plus a `this` binding (with its own
	// three-state lifecycle, see thisState) and an optional `new.target`.
	KindFunction
	// KindObject is backed by a regular object: `with` statements, and the
	// object half of a global environment.
	KindObject
	// KindGlobal pairs an object record (var/function declarations on the
	// global object) with a declarative record (let/const/class) in one
	// Environment, per §3.4.
	KindGlobal
	// KindModule is a KindDeclarative plus indirect bindings that forward to
	// another module's own Environment and slot (import bindings).
	KindModule
)

// binding is one declarative slot: pkg/bytecode.BindingName's runtime
// counterpart, with the mutable initialized/value state BindingName itself
// (a compile-time, per-CodeBlock constant) cannot carry.
type binding struct {
	name        intern.Sym
	value       value.Value
	mutable     bool
	initialized bool
}

// indirectBinding is one module-namespace import: a live forward to another
// module's own Environment and slot, per §4.10's cross-module binding
// resolution (ResolveExport's indirection, followed all the way down on
// every access rather than copied at link time).
type indirectBinding struct {
	target *Environment
	slot   int
}

// thisState is a function environment's `this`-binding lifecycle (§3.4): a
// derived class constructor's `this` starts Uninitialized until its own
// super() call runs BindThisValue; an arrow function's own Function
// environment never holds a `this` of its own (Lexical) and GetThisBinding
// must keep walking outward instead.
type thisState uint8

const (
	thisLexical thisState = iota
	thisUninitialized
	thisInitialized
)

// Environment is one link in the lexical-environment chain. Every lexical
// Scope pkg/scope records compiles to exactly one Environment at run time
// (the bytecode compiler's documented one-Scope-one-environment-record
// simplification), chained via parent to the environment EnterScope (or the
// call protocol, for a function/parameter-eval environment) was nested in.
type Environment struct {
	kind   Kind
	parent *Environment

	// Declarative/Function/Global(lexical half)/Module storage.
	bindings []binding
	names    map[intern.Sym]int // name -> index into bindings, built once at construction

	// Module-only: import bindings that forward elsewhere instead of
	// resolving against this Environment's own bindings/names.
	indirects map[intern.Sym]indirectBinding

	// Object/Global(object half) storage: an ordinary object backs every
	// property this environment's object half exposes. syms resolves a Sym
	// back to the string text object.Object's property machinery needs;
	// only ever consulted on this path (declarative/function/module lookups
	// compare Syms directly and never need it).
	obj             *object.Object
	objRef          heap.Gc[value.HeapObject] // obj's own heap handle, for Trace
	withEnvironment bool                      // true only for a `with` statement's object environment
	syms            *intern.Interner

	// Function-only.
	this           value.Value
	thisState      thisState
	newTarget      value.Value
	hasNewTarget   bool
	functionObject value.Value
}

// Parent returns the environment this one is chained in front of, or nil at
// the top of the chain (a script/module/global environment with no lexical
// parent — distinct from a Go-nil check on a *Environment receiver, since a
// realm's global environment has Parent()==nil by construction).
func (e *Environment) Parent() *Environment { return e.parent }

// Kind returns this environment's tagged kind.
func (e *Environment) Kind() Kind { return e.kind }

// AtDepth walks depth parent links up from e, per the (Depth, Slot) pair
// pkg/scope resolves every statically-known reference to. depth==0 returns
// e itself.
func (e *Environment) AtDepth(depth int) *Environment {
	env := e
	for ; depth > 0 && env != nil; depth-- {
		env = env.parent
	}

	return env
}

// buildNames constructs names/bindings from names, the BindingName table
// pkg/bytecode attached to the EnterScope op (or the CodeBlock itself, for a
// function/parameter-eval environment): a TDZ binding starts uninitialized,
// everything else (var, parameter, catch, function, import) starts
// initialized to `undefined`, per §3.4's "var hoists ... undefined (not
// dead), lexical declarations do not".
func buildNames(names []bytecode.BindingName) ([]binding, map[intern.Sym]int) {
	if len(names) == 0 {
		return nil, nil
	}

	bindings := make([]binding, len(names))
	index := make(map[intern.Sym]int, len(names))

	for i, n := range names {
		bindings[i] = binding{name: n.Name, mutable: !n.Const, initialized: !n.TDZ, value: value.Undefined()}
		index[n.Name] = i
	}

	return bindings, index
}

// NewDeclarative constructs the environment record for a block, catch
// clause, for-head, switch, or class-body scope (an EnterScope op).
func NewDeclarative(parent *Environment, names []bytecode.BindingName) *Environment {
	bindings, index := buildNames(names)

	return &Environment{kind: KindDeclarative, parent: parent, bindings: bindings, names: index}
}

// NewFunction constructs the environment record pkg/vm's call protocol
// creates implicitly for a function's own top scope, sized from the
// CodeBlock's LocalNames rather than an EnterScope op. arrow selects the
// `this`-binding lifecycle: true gives thisLexical, so GetThisBinding always
// delegates outward; false starts the binding uninitialized.
func NewFunction(parent *Environment, names []bytecode.BindingName, arrow bool, functionObject value.Value) *Environment {
	bindings, index := buildNames(names)

	env := &Environment{
		kind: KindFunction, parent: parent, bindings: bindings, names: index,
		functionObject: functionObject,
	}

	if arrow {
		env.thisState = thisLexical
	} else {
		env.thisState = thisUninitialized
	}

	return env
}

// NewParamEval constructs the synthesized non-simple-parameter-list
// environment a CodeBlock's ParamNames describes (§3.5's
// `function_environment_index`-adjacent parameter record): a plain
// declarative environment chained between the call's function environment's
// parent and the function environment itself, per CodeBlock.ParamPreambleEnd's
// doc comment.
func NewParamEval(parent *Environment, names []bytecode.BindingName) *Environment {
	return NewDeclarative(parent, names)
}

// NewObject constructs an object environment record backed by obj (a `with`
// target, or the object half of a global environment used standalone — in
// practice always reached through NewGlobal instead). withEnvironment marks
// a `with` statement's environment, which consults the target's
// @@unscopables own property before ever reporting a name bound (§4.4).
func NewObject(parent *Environment, obj *object.Object, objRef heap.Gc[value.HeapObject], withEnvironment bool, syms *intern.Interner) *Environment {
	return &Environment{kind: KindObject, parent: parent, obj: obj, objRef: objRef, withEnvironment: withEnvironment, syms: syms}
}

// NewGlobal constructs the realm's single global environment: globalObj's
// object record backs `var`/function declarations, and an initially-empty
// declarative record backs `let`/`const`/`class` at the top level (§3.4).
func NewGlobal(globalObj *object.Object, globalObjRef heap.Gc[value.HeapObject], syms *intern.Interner) *Environment {
	return &Environment{
		kind: KindGlobal, obj: globalObj, objRef: globalObjRef, syms: syms,
		names: make(map[intern.Sym]int),
	}
}

// NewModule constructs a module's top-level environment: a declarative
// record for the module's own bindings (including its exported lexical
// declarations) plus, separately, whatever indirect import bindings
// DeclareImportBinding adds. parent is the realm's global environment —
// a module body can still reference the realm's globals (§4.10's modules
// are not global-isolated, only their own top-level bindings are separate
// from the global object).
func NewModule(parent *Environment, names []bytecode.BindingName) *Environment {
	bindings, index := buildNames(names)

	return &Environment{kind: KindModule, parent: parent, bindings: bindings, names: index}
}

// Trace implements heap.Tracer: every binding's value, the object half's
// object, `this`/new.target/functionObject, every indirect binding's target
// environment, and the parent chain are all reachable references a live
// call frame or closure keeps alive through this Environment.
//
// Environment records are plain Go values, not heap.Gc cells, so unlike
// Visitor.Mark's own per-ID bitset this walk has no built-in cycle guard;
// traceEnv's visited set stands in for one. Without it, two modules that
// import from each other (an ordinary, legal circular ES module graph,
// §4.10) would own indirect bindings pointing back at one another and
// recurse forever the first time either side's Trace ran.
func (e *Environment) Trace(v *heap.Visitor) {
	traceEnv(e, v, make(map[*Environment]struct{}))
}

func traceEnv(e *Environment, v *heap.Visitor, visited map[*Environment]struct{}) {
	if e == nil {
		return
	}

	if _, ok := visited[e]; ok {
		return
	}

	visited[e] = struct{}{}

	for _, b := range e.bindings {
		traceValue(v, b.value)
	}

	if !e.objRef.IsZero() {
		e.objRef.Trace(v)
	}

	traceValue(v, e.this)
	traceValue(v, e.newTarget)
	traceValue(v, e.functionObject)

	for _, ib := range e.indirects {
		traceEnv(ib.target, v, visited)
	}

	traceEnv(e.parent, v, visited)
}

func traceValue(v *heap.Visitor, val value.Value) {
	if obj, ok := val.AsObject(); ok && !obj.IsZero() {
		obj.Trace(v)
	}
}
