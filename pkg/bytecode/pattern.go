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
	"github.com/ecmaforge/ecmaforge/pkg/scope"
)

// destSink tells compileDestructure how to dispose of one leaf of a pattern:
// identifier handles both a declaration's own name and a plain identifier
// assignment target (the two differ only in which callback the caller
// builds, via declSink/assignSink below); member handles a MemberExpression
// assignment target (never legal in a declaration, so it is nil there).
// Each callback must consume exactly the one value compileDestructure leaves
// on top of the stack for that leaf.
type destSink struct {
	identifier func(fc *funcCompiler, id *ast.Identifier)
	member     func(fc *funcCompiler, me *ast.MemberExpression)
}

// declSink builds the destSink for a let/const/var declaration, or a
// parameter/catch binding (pass ast.VariableLet for the TDZ-free "just
// initialize" behaviour a parameter or catch clause wants — its scope is
// never hoisted separately the way var is).
func declSink(kind ast.VariableKind) destSink {
	return destSink{
		identifier: func(fc *funcCompiler, id *ast.Identifier) {
			fc.compileDeclareIdentifier(id, kind)
		},
	}
}

// compileDeclareIdentifier consumes the top-of-stack value and initializes
// id's own binding. var's binding always lives in this CodeBlock's own top
// environment (hoisted there by pkg/scope regardless of how many blocks
// enclose the declaration), reached from the current position via
// fc.blockDepth hops; let/const/parameter/catch bindings live in whichever
// Scope is innermost at the point of declaration, which is always the
// environment just entered (depth 0) since no deeper scope has opened yet
// for this specific statement.
func (fc *funcCompiler) compileDeclareIdentifier(id *ast.Identifier, kind ast.VariableKind) {
	if kind == ast.VariableVar {
		b, ok := fc.scope.Lookup(id.Name)
		if !ok {
			fc.c.errorf(id.Span(), "internal: var binding for '%s' missing from scope", id.Name)
			fc.emit(Pop{})
			return
		}

		fc.emit(SetLocal{Depth: fc.blockDepth, Slot: b.Slot})
		fc.emit(Pop{})
		return
	}

	sc := fc.currentLexicalScope()
	b, ok := sc.Lookup(id.Name)
	if !ok {
		fc.c.errorf(id.Span(), "internal: binding for '%s' missing from scope", id.Name)
		fc.emit(Pop{})
		return
	}

	if kind == ast.VariableConst {
		fc.emit(InitConst{Slot: b.Slot})
	} else {
		fc.emit(InitLet{Slot: b.Slot})
	}
}

// assignSink builds the destSink for a destructuring assignment expression
// (`[a, b.c] = rhs`), whose leaves are references to already-existing
// bindings or arbitrary member expressions, resolved the same way any other
// assignment target is (emitSetRef/emitMemberSet's single-evaluation
// discipline).
func assignSink(strict bool) destSink {
	return destSink{
		identifier: func(fc *funcCompiler, id *ast.Identifier) {
			fc.emitSetRef(id, strict)
			fc.emit(Pop{})
		},
		member: func(fc *funcCompiler, me *ast.MemberExpression) {
			fc.compileDestructureMemberTarget(me)
		},
	}
}

// compileDestructureMemberTarget stores the top-of-stack value into a
// MemberExpression target, reusing the same stageMemberTarget/emitMemberSet
// pair an update/compound-assignment expression uses: the object (and key)
// are evaluated into temps before the value is written through them, which
// here means after the value itself was obtained from the iterator/property
// read above it — a simplification, observable only when the object/key
// expression's side effects would otherwise interleave with that read,
// accepted in the design ledger.
func (fc *funcCompiler) compileDestructureMemberTarget(me *ast.MemberExpression) {
	mt := fc.stageMemberTarget(me)
	fc.emitMemberSet(mt)
	fc.emit(Pop{})
}

// compileDestructure decomposes target against the value currently on top
// of the stack, per sink.
func (fc *funcCompiler) compileDestructure(target ast.Node, sink destSink) {
	switch t := target.(type) {
	case *ast.Identifier:
		sink.identifier(fc, t)
	case *ast.MemberExpression:
		sink.member(fc, t)
	case *ast.AssignmentPattern:
		fc.emit(Dup{})
		fc.emit(PushUndefined{})
		fc.emit(StrictEqual{})
		pc := fc.emit(JumpIfFalse{})
		fc.emit(Pop{})
		fc.compileExpression(t.Default)
		end := fc.emit(Jump{})
		fc.patchJump(pc)
		fc.patchJump(end)
		fc.compileDestructure(t.Target, sink)
	case *ast.ArrayPattern:
		fc.compileArrayPatternDestructure(t, sink)
	case *ast.ObjectPattern:
		fc.compileObjectPatternDestructure(t, sink)
	case *ast.RestElement:
		fc.compileDestructure(t.Target, sink)
	default:
		fc.c.errorf(target.Span(), "invalid destructuring target")
	}
}

// compileArrayPatternDestructure implements an ArrayPattern's iterator-based
// evaluation (§4.3): the source value is converted to an iterator once, each
// element steps it in turn (continuing to yield undefined, without calling
// next again, once the iterator is exhausted), and a trailing RestElement
// (if present, always last) collects every remaining value into a fresh
// Array.
func (fc *funcCompiler) compileArrayPatternDestructure(t *ast.ArrayPattern, sink destSink) {
	fc.emit(GetIterator{})
	fc.emit(PushFalse{})

	for _, el := range t.Elements {
		if rest, ok := el.(*ast.RestElement); ok {
			fc.emit(IteratorRestArray{})
			fc.compileDestructure(rest.Target, sink)
			return
		}

		fc.emit(IteratorStepOrUndefined{})

		if el == nil {
			fc.emit(Pop{})
			continue
		}

		fc.compileDestructure(el, sink)
	}

	fc.emit(IteratorCloseIfNotDone{})
}

// compileObjectPatternDestructure implements an ObjectPattern's evaluation
// (§4.3): an upfront RequireObjectCoercible check, then one property read
// per entry, then (if present) a rest element copying every own enumerable
// property not already named by a non-computed key above.
func (fc *funcCompiler) compileObjectPatternDestructure(t *ast.ObjectPattern, sink destSink) {
	fc.emit(Dup{})
	fc.emit(ThrowIfNullOrUndefined{})

	var excluded []string

	for _, p := range t.Properties {
		fc.emit(Dup{})

		if p.Computed {
			fc.compileExpression(p.Key)
			fc.emit(GetPropertyByValue{})
		} else {
			name := propertyKeyName(p.Key)
			excluded = append(excluded, name)
			fc.emit(GetPropertyByName{Name: name})
		}

		fc.compileDestructure(p.Value, sink)
	}

	if t.Rest != nil {
		fc.emit(Dup{})
		fc.emit(NewObject{})
		fc.emit(Swap{})
		fc.emit(CopyDataPropertiesExcluding{Excluded: excluded})
		fc.compileDestructure(t.Rest.Target, sink)
	}

	fc.emit(Pop{})
}

// propertyKeyName recovers a non-computed pattern/object-literal key's text:
// an Identifier's own name, or a string/numeric literal's text.
func propertyKeyName(key ast.Expression) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.StringLiteral:
		return k.Value
	case *ast.NumericLiteral:
		return numericKeyString(k.Value)
	default:
		return ""
	}
}

// currentLexicalScope returns the innermost Scope whose environment is
// presently open: the CodeBlock's own top scope (fc.scope) until the first
// EnterScope, and whatever Scope enterChildScope most recently entered
// after that — tracked alongside blockDepth since a let/const declaration's
// own binding always lives in exactly that Scope.
func (fc *funcCompiler) currentLexicalScope() *scope.Scope {
	return fc.lexScope
}
