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

import "github.com/ecmaforge/ecmaforge/pkg/value"

// CodeBlock is one compiled unit: a script, a module, or a single function
// (including every arrow, method, accessor, static block, and class-field
// initializer thunk, each of which gets its own CodeBlock since each is
// independently invocable). pkg/object.Executable and pkg/object.Closure are
// the opaque handles pkg/object carries for these before pkg/vm exists to
// give them concrete behaviour.
type CodeBlock struct {
	// Name is the function's own name (for Function.prototype.name/stack
	// traces), empty for a script/module top level.
	Name string

	// SourceName is the file/specifier this CodeBlock was compiled from
	// (lexer.Source.Name), carried through purely for uncaught-error stack
	// trace frames (internal/diag.Frame.Source) — pkg/vm never reads it for
	// anything behavioural.
	SourceName string

	// Ops is the flat instruction stream; jump/handler targets are indices
	// into this slice, not byte offsets — there is no fixed-width encoding
	// to seek over.
	Ops []Op

	// Constants is the per-CodeBlock literal pool PushLiteral indexes into:
	// strings, non-int64-safe numbers, BigInts, and template cooked-string
	// arrays that are too large (or too rarely reused) to inline into an Op
	// field the way PushInt inlines a small integer.
	Constants []value.Value

	// NumLocals is the number of binding slots this CodeBlock's own
	// environment record must reserve — the width pkg/envrec allocates for
	// one frame (i.e. the binding count of every Scope whose runtime
	// environment lives directly in this call's frame, not a nested block
	// scope compiled into a separate child CodeBlock... in this design every
	// lexical Scope maps to its own runtime environment record, so in
	// practice NumLocals is simply the bindings count of the function's own
	// top Scope; nested block scopes get their own smaller records chained
	// beneath it at run time, sized from the Scope directly rather than
	// threaded through CodeBlock).
	NumLocals int

	// LocalNames is the BindingName table for this CodeBlock's own top-level
	// environment (parallel to its NumLocals slots), for the environment
	// record pkg/vm creates implicitly at call time to resolve GetName/
	// SetName against — the function/script/module scope never gets an
	// explicit EnterScope op of its own, so it carries this table directly.
	LocalNames []BindingName

	// ParamCount is the function's declared (`.length`-relevant) parameter
	// count: the number of leading parameters before the first default,
	// rest, or destructuring parameter (§4.5).
	ParamCount int

	// ParamSlots, when non-zero, is the non-simple parameter list's own
	// CodeBlock-level record of how many extra slots the synthesized
	// parameter-eval environment needs, mirroring pkg/scope.Scope.Params.
	// Zero when the parameter list is simple (every parameter a bare
	// identifier with no default), in which case parameters are bound
	// directly into the function's own environment record.
	ParamSlots int

	// ParamNames is the BindingName table for the synthesized parameter-eval
	// environment ParamSlots sizes, parallel to its slots; nil when
	// ParamSlots is zero.
	ParamNames []BindingName

	// ParamPreambleEnd is the Ops index where the function body begins,
	// meaningful only when ParamSlots > 0: pkg/vm runs Ops[0:ParamPreambleEnd]
	// (the parameter defaults/destructuring/rest preamble, §4.5's
	// FunctionDeclarationInstantiation parameter-binding phase) against a
	// freshly created ParamSlots-sized environment on its own, then chains a
	// second, NumLocals-sized environment in front of it and runs the rest of
	// Ops against that pair — mirroring the spec's own two-environment
	// ordering (parameters bound and their defaults evaluated before the
	// variable environment the function body declares into even exists), so
	// that a parameter default referring to an earlier parameter resolves via
	// the same Depth pkg/scope already computed for it, with no separate
	// adjustment. Zero (and unused) when ParamSlots is zero.
	ParamPreambleEnd int

	Generator bool
	Async     bool
	Arrow     bool
	Strict    bool

	// UsesArguments records whether this function needs its `arguments`
	// object materialized at call time (§4.5); never true for Arrow.
	UsesArguments bool
	// MappedArguments is true when the arguments object must stay live-
	// aliased to the simple parameter list (sloppy-mode, simple params).
	MappedArguments bool

	// HomeObjectSlot, when >= 0, is the environment slot a method/accessor/
	// field-initializer CodeBlock's HomeObject is threaded through for
	// `super` property lookups; -1 when the CodeBlock has no home object
	// (ordinary functions and arrows never do on their own, only through
	// the enclosing method they close over).
	HomeObjectSlot int
}

// NewCodeBlock constructs an empty CodeBlock ready for Emitter to append to.
func NewCodeBlock(name string) *CodeBlock {
	return &CodeBlock{Name: name, HomeObjectSlot: -1}
}

// addConstant interns v into cb's constant pool, reusing an existing slot
// when an identical constant (by SameValue) was already pushed — literal
// re-use is common (the same string key read inside a loop body, "use
// strict" re-appearing) and a handful of values rarely grows large enough to
// justify a real intern.Interner-style map here.
func (cb *CodeBlock) addConstant(v value.Value) int {
	for i, existing := range cb.Constants {
		if value.SameValue(existing, v) {
			return i
		}
	}

	cb.Constants = append(cb.Constants, v)

	return len(cb.Constants) - 1
}
