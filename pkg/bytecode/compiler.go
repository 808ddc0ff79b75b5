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
	"fmt"

	"go.uber.org/multierr"

	"github.com/ecmaforge/ecmaforge/pkg/ast"
	"github.com/ecmaforge/ecmaforge/pkg/intern"
	"github.com/ecmaforge/ecmaforge/pkg/lexer"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/scope"
)

// Compiler holds the state shared by every CodeBlock compiled from one
// parse: the source (for diagnostics), the same Interner the parser used to
// mint every ast.Identifier.Sym (so the compiler can intern an incidental
// name of its own, such as the "RegExp" global a regexp literal desugars
// to, into that same Sym space), and the scope analysis pkg/scope already
// computed, which this package consumes rather than re-derives.
type Compiler struct {
	src    *lexer.Source
	syms   *intern.Interner
	scopes *scope.Result
	errs   error
}

// CompileScript lowers a parsed, scope-resolved Script into its top-level
// CodeBlock.
func CompileScript(prog *ast.Program, scopes *scope.Result, src *lexer.Source, syms *intern.Interner) (*CodeBlock, error) {
	c := &Compiler{src: src, syms: syms, scopes: scopes}
	root := scopes.Scopes[prog]
	cb := NewCodeBlock("")
	cb.Strict = prog.Strict
	cb.SourceName = src.Name

	fc := c.newFuncCompiler(cb, root)
	fc.compileTopLevel(prog.Body)

	return cb, c.errs
}

// CompileModule lowers a parsed, scope-resolved Module into its top-level
// CodeBlock. Module bodies are always strict and never have an `arguments`
// object or non-lexical top-level `var` leaking to a global object the way
// a script's does — both already fall out of prog.Strict and the Module
// Scope kind pkg/scope attached, so the compiler path is otherwise
// identical to a script's.
func CompileModule(prog *ast.Program, scopes *scope.Result, src *lexer.Source, syms *intern.Interner) (*CodeBlock, error) {
	cb, err := CompileScript(prog, scopes, src, syms)
	if cb != nil {
		cb.Strict = true
	}

	return cb, err
}

// bindingNames builds the BindingName table for sc, parallel to its slot
// array (Binding.Slot is always the index it was declared at, per
// scope.Scope.declare), for an EnterScope op or CodeBlock's own top-level
// record to carry.
func (c *Compiler) bindingNames(sc *scope.Scope) []BindingName {
	if sc == nil {
		return nil
	}

	bindings := sc.Bindings()
	names := make([]BindingName, len(bindings))

	for _, b := range bindings {
		names[b.Slot] = BindingName{Name: c.syms.Intern(b.Name), Const: b.Kind == scope.BindingConst, TDZ: hasTDZ(b)}
	}

	return names
}

func (c *Compiler) errorf(span ast.Span, format string, args ...any) {
	c.errs = multierr.Append(c.errs, c.src.SyntaxError(span, fmt.Sprintf(format, args...)))
}

// funcCompiler compiles the statements and expressions of exactly one
// CodeBlock (a script/module top level, or one function/method/accessor/
// class-field-initializer body), tracking the control-flow bookkeeping
// (break/continue patch lists) local to that body.
type funcCompiler struct {
	c     *Compiler
	cb    *CodeBlock
	scope *scope.Scope // this CodeBlock's own top Scope (the function/script/module scope)

	controls []controlFrame

	// blockDepth is the number of EnterScope environments currently open
	// between the position in the instruction stream being emitted and this
	// CodeBlock's own top-level (function/script/module) environment —
	// exactly the Depth a GetLocal/SetLocal reaching into that top
	// environment must carry, since every pkg/scope Scope nested along the
	// way gets its own runtime environment (refs.go's enterChildScope).
	blockDepth int

	// lexScope is the innermost Scope whose environment is presently open
	// (fc.scope itself until the first EnterScope, updated in lockstep with
	// blockDepth thereafter): a let/const declaration's own binding always
	// lives in exactly this Scope, recovered via Scope.Lookup since
	// pkg/scope's bindPattern gives declaration-site identifiers no Refs
	// entry the way reference sites get.
	lexScope *scope.Scope

	// chainEnds collects the pc of every JumpIfNullOrUndef emitted for the
	// optional-chaining links of the ChainExpression currently compiling, so
	// compileChain can patch them all to one shared short-circuit target.
	chainEnds []int

	// privates maps a class's `#name` declarations to the PrivateName
	// identity shared by every opcode referencing that member, scoped to the
	// innermost enclosing class body currently compiling (classes do not
	// nest their private names: a nested class's own `#x` is a distinct
	// name even if an outer class also declares `#x`, per §4.9).
	privates *privateScope

	// cleanups is the stack of "what has to run before control may leave
	// here" actions installed by a try/finally or a for-in/for-of loop's
	// iterator: a try pushes an action that pops its handler (and, with a
	// finally block, re-emits it inline); a for-each loop pushes one that
	// closes its iterator. compileBreakStatement/compileContinueStatement/
	// compileReturnStatement run every cleanup between the current position
	// and their target (or the function's own edge, for return) before
	// emitting the jump/Return that actually leaves, since no opcode here
	// encodes a "pending completion" a VM-level unwind could resume on its
	// own — the compiler must duplicate that bytecode at each early-exit
	// site instead.
	cleanups []func()
}

// pushCleanup installs run as an action every break/continue/return that
// crosses this point (per runCleanupsDownTo) must execute first.
func (fc *funcCompiler) pushCleanup(run func()) {
	fc.cleanups = append(fc.cleanups, run)
}

// popCleanup removes the most recently installed cleanup once its construct
// has finished compiling normally.
func (fc *funcCompiler) popCleanup() {
	fc.cleanups = fc.cleanups[:len(fc.cleanups)-1]
}

// runCleanupsDownTo emits every cleanup installed after depth n, innermost
// first, for a break/continue/return that is about to jump past them.
func (fc *funcCompiler) runCleanupsDownTo(n int) {
	for i := len(fc.cleanups) - 1; i >= n; i-- {
		fc.cleanups[i]()
	}
}

// privateScope is one class body's private-name table, chained to the
// enclosing class (if any) so a nested class's methods can still reference
// an outer class's private fields via a captured closure.
type privateScope struct {
	parent *privateScope
	names  map[string]*object.PrivateName
}

func (fc *funcCompiler) resolvePrivateName(id *ast.PrivateIdentifier) *object.PrivateName {
	for ps := fc.privates; ps != nil; ps = ps.parent {
		if pn, ok := ps.names[id.Name]; ok {
			return pn
		}
	}

	// A private name with no enclosing class declaration is a parse-time
	// early error (§4.3); reaching here means the parser/scope pass let one
	// through, so fall back to minting a fresh, never-matching name rather
	// than panicking.
	fc.c.errorf(id.Span(), "private field '#%s' must be declared in an enclosing class", id.Name)
	return &object.PrivateName{Description: id.Name}
}

// controlFrame is one break/continue target: pushed on entering a loop or
// switch, optionally carrying every label (`l1: l2: for (...)`) that
// resolves to it, and popped (after patching every pending jump to the
// current program counter) once the construct finishes compiling.
type controlFrame struct {
	labels      []string
	breaks      []int // indices of Jump ops to patch to "after this construct"
	continues   []int // indices of Jump ops to patch to "the next iteration step"; nil for a switch
	isIteration bool

	// cleanupDepth is len(fc.cleanups) at the moment this frame was pushed:
	// a continue (or, for a non-iteration construct, a break) runs every
	// cleanup installed since, but none installed before.
	cleanupDepth int

	// breakCleanupDepth is cleanupDepth minus however many "whole construct"
	// wrapper cleanups (a for-head scope, a for-each loop's iterator) were
	// pushed immediately before this frame: those must also be torn down by
	// break (it leaves the construct entirely) but not by continue (which
	// stays within the same head scope/iterator for the next pass).
	breakCleanupDepth int
}

func (c *Compiler) newFuncCompiler(cb *CodeBlock, sc *scope.Scope) *funcCompiler {
	if sc != nil {
		cb.NumLocals = len(sc.Bindings())
		cb.LocalNames = c.bindingNames(sc)
	}

	return &funcCompiler{c: c, cb: cb, scope: sc, lexScope: sc}
}

// emit appends op and returns its program counter (index into cb.Ops).
func (fc *funcCompiler) emit(op Op) int {
	fc.cb.Ops = append(fc.cb.Ops, op)
	return len(fc.cb.Ops) - 1
}

// pc returns the program counter the next emit call will occupy.
func (fc *funcCompiler) pc() int { return len(fc.cb.Ops) }

// patchJump rewrites the Jump-family op at pc so its Target is the current
// program counter (or an explicit target, via patchJumpTo).
func (fc *funcCompiler) patchJump(pc int) { fc.patchJumpTo(pc, fc.pc()) }

func (fc *funcCompiler) patchJumpTo(pc, target int) {
	switch op := fc.cb.Ops[pc].(type) {
	case Jump:
		op.Target = target
		fc.cb.Ops[pc] = op
	case JumpIfTrue:
		op.Target = target
		fc.cb.Ops[pc] = op
	case JumpIfFalse:
		op.Target = target
		fc.cb.Ops[pc] = op
	case JumpIfTrueKeep:
		op.Target = target
		fc.cb.Ops[pc] = op
	case JumpIfFalseKeep:
		op.Target = target
		fc.cb.Ops[pc] = op
	case JumpIfNullOrUndef:
		op.Target = target
		fc.cb.Ops[pc] = op
	case JumpIfNotNullOrUndef:
		op.Target = target
		fc.cb.Ops[pc] = op
	default:
		panic(fmt.Sprintf("bytecode: patchJump on non-jump op %T", op))
	}
}

// patchHandler fills in a PushHandler op's Catch/FinallyPC targets once both
// are known (they never are at the point PushHandler itself is emitted,
// since the catch and finally bodies compile after it).
func (fc *funcCompiler) patchHandler(pc, catch, finallyPC int) {
	fc.cb.Ops[pc] = PushHandler{Catch: catch, FinallyPC: finallyPC}
}

// pushControl begins a new loop/switch construct. breakExtra is the number
// of cleanups the caller pushed immediately before this call purely to
// guard the construct as a whole (a for-head scope, a for-each loop's
// iterator) — those are included in breakCleanupDepth but not cleanupDepth.
// The caller must call popControl only after emitting its own normal-
// completion copy of any such wrapper cleanup (and of any per-construct
// scope/discriminant cleanup pushed after this call): popControl patches
// every pending break to the pc it is called at, so that pc must already be
// past that code, never before it, or a break would run it twice.
func (fc *funcCompiler) pushControl(labels []string, isIteration bool, breakExtra int) *controlFrame {
	d := len(fc.cleanups)
	fc.controls = append(fc.controls, controlFrame{
		labels:            labels,
		isIteration:       isIteration,
		cleanupDepth:      d,
		breakCleanupDepth: d - breakExtra,
	})
	return &fc.controls[len(fc.controls)-1]
}

// popControl patches every pending break to the current pc and discards the
// frame; continues must already have been patched by the caller (a loop
// knows its own "next iteration" pc, which popControl does not).
func (fc *funcCompiler) popControl() controlFrame {
	n := len(fc.controls) - 1
	frame := fc.controls[n]
	fc.controls = fc.controls[:n]

	for _, pc := range frame.breaks {
		fc.patchJump(pc)
	}

	return frame
}

// findControl resolves a break/continue target: the innermost construct
// when label is empty, or the construct carrying that label otherwise. For
// a labeled non-iteration statement (a label on a bare block or if), only
// break is legal; forContinue selects that constraint.
func (fc *funcCompiler) findControl(label string, forContinue bool) *controlFrame {
	for i := len(fc.controls) - 1; i >= 0; i-- {
		f := &fc.controls[i]
		if label == "" {
			if forContinue && !f.isIteration {
				continue
			}

			return f
		}

		for _, l := range f.labels {
			if l == label {
				return f
			}
		}
	}

	return nil
}
