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

// compileTopLevel compiles a script/module body, completing with its
// completion value: only a textually last bare ExpressionStatement has its
// value preserved and returned (compiled with no trailing Pop, followed by
// Return); every other shape of last statement is followed by an implicit
// `return undefined`. A full threading of completion values through every
// statement form (the way a block, if, or try itself reports one in the
// spec) is not implemented — a documented simplification, since nothing
// outside a REPL-style host ever observes a script's own completion value.
func (fc *funcCompiler) compileTopLevel(stmts []ast.Statement) {
	fc.hoistFunctionDeclarations(stmts)

	last := -1
	for i, s := range stmts {
		if hoistableFunctionDecl(s) == nil {
			last = i
		}
	}

	for i, s := range stmts {
		if hoistableFunctionDecl(s) != nil {
			continue
		}

		if i == last {
			if es, ok := s.(*ast.ExpressionStatement); ok {
				fc.compileExpression(es.Expression)
				fc.emit(Return{})
				return
			}

			fc.compileStatement(s)
			break
		}

		fc.compileStatement(s)
	}

	fc.emit(PushUndefined{})
	fc.emit(Return{})
}

// compileStatements hoists every function declaration directly in stmts
// (compiled and bound ahead of everything else, per §4.5's function-
// hoisting), then compiles every statement in source order, skipping the
// declarations already handled by the hoist pass.
func (fc *funcCompiler) compileStatements(stmts []ast.Statement) {
	fc.hoistFunctionDeclarations(stmts)

	for _, s := range stmts {
		if hoistableFunctionDecl(s) != nil {
			continue
		}

		fc.compileStatement(s)
	}
}

func (fc *funcCompiler) hoistFunctionDeclarations(stmts []ast.Statement) {
	for _, s := range stmts {
		if fd := hoistableFunctionDecl(s); fd != nil {
			fc.compileFunctionDeclaration(fd)
		}
	}
}

// hoistableFunctionDecl returns the FunctionDeclaration s hoists ahead of
// its enclosing statement list, unwrapping the `export`/`export default`
// forms pkg/scope's own hoisting pass (declare.go's declareDirectStmt) also
// unwraps — an anonymous `export default function(){}` does not hoist since
// it introduces no binding pkg/scope ever declared directly, so it compiles
// in its ordinary textual position instead via ExportDefaultDeclaration.
func hoistableFunctionDecl(s ast.Statement) *ast.FunctionDeclaration {
	switch d := s.(type) {
	case *ast.FunctionDeclaration:
		return d
	case *ast.ExportDefaultDeclaration:
		if fd, ok := d.Declaration.(*ast.FunctionDeclaration); ok && fd.Function.Id != nil {
			return fd
		}
	case *ast.ExportNamedDeclaration:
		if fd, ok := d.Declaration.(*ast.FunctionDeclaration); ok {
			return fd
		}
	}

	return nil
}

// compileStatement compiles one statement, recognizing a chain of labels
// wrapping it first.
func (fc *funcCompiler) compileStatement(s ast.Statement) {
	fc.compileLabeledOrStatement(s, nil)
}

// compileLabeledOrStatement peels off a LabeledStatement chain (`l1: l2:
// for (...)`), collecting every label, then dispatches the underlying
// statement with those labels in scope for its own break/continue targets.
// A label on anything other than a loop or switch still needs a control
// frame of its own, since `break label;` targets it directly, but carries
// no continue target (forContinue rejects a non-iteration frame).
func (fc *funcCompiler) compileLabeledOrStatement(s ast.Statement, labels []string) {
	if ls, ok := s.(*ast.LabeledStatement); ok {
		fc.compileLabeledOrStatement(ls.Body, append(labels, ls.Label.Name))
		return
	}

	switch n := s.(type) {
	case *ast.ForStatement:
		fc.compileForStatement(n, labels)
	case *ast.ForInStatement:
		fc.compileForInStatement(n, labels)
	case *ast.ForOfStatement:
		fc.compileForOfStatement(n, labels)
	case *ast.WhileStatement:
		fc.compileWhileStatement(n, labels)
	case *ast.DoWhileStatement:
		fc.compileDoWhileStatement(n, labels)
	case *ast.SwitchStatement:
		fc.compileSwitchStatement(n, labels)
	default:
		if len(labels) == 0 {
			fc.compileBareStatement(s)
			return
		}

		fc.pushControl(labels, false, 0)
		fc.compileBareStatement(s)
		fc.popControl()
	}
}

func (fc *funcCompiler) compileBareStatement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		fc.compileExpression(n.Expression)
		fc.emit(Pop{})
	case *ast.BlockStatement:
		fc.compileBlockStatement(n)
	case *ast.EmptyStatement:
	case *ast.DebuggerStatement:
		fc.emit(DebuggerBreak{})
	case *ast.WithStatement:
		fc.compileWithStatement(n)
	case *ast.VariableDeclaration:
		fc.compileVariableDeclaration(n)
	case *ast.FunctionDeclaration:
		// Already hoisted and bound by compileStatements; nothing left to do
		// in textual position.
	case *ast.ClassDeclaration:
		fc.compileClassDeclaration(n)
	case *ast.ReturnStatement:
		fc.compileReturnStatement(n)
	case *ast.IfStatement:
		fc.compileIfStatement(n)
	case *ast.TryStatement:
		fc.compileTryStatement(n)
	case *ast.ThrowStatement:
		fc.compileExpression(n.Argument)
		fc.emit(Throw{})
	case *ast.BreakStatement:
		fc.compileBreakStatement(n)
	case *ast.ContinueStatement:
		fc.compileContinueStatement(n)
	case *ast.ImportDeclaration:
		// Linking a module's imported bindings is pkg/module's concern;
		// nothing runs at the statement's own textual position.
	case *ast.ExportNamedDeclaration:
		fc.compileExportNamedDeclaration(n)
	case *ast.ExportDefaultDeclaration:
		fc.compileExportDefaultDeclaration(n)
	case *ast.ExportAllDeclaration:
		// A re-export names a module, not a local binding; pkg/module's
		// concern entirely.
	default:
		fc.c.errorf(s.Span(), "internal: unhandled statement type %T", s)
	}
}

func (fc *funcCompiler) compileBlockStatement(n *ast.BlockStatement) {
	closer := fc.enterChildScope(n)
	fc.compileStatements(n.Body)
	closer()
}

// compileWithStatement lowers `with (object) body` (§4.4): EnterWith pushes
// object as a dynamic environment record that GetName/SetName consult ahead
// of the static chain for the body's duration; pkg/scope has already marked
// every binding the body could shadow as non-local, so emitGetRef/emitSetRef
// already resolve through GetName/SetName rather than a static slot wherever
// it matters.
func (fc *funcCompiler) compileWithStatement(n *ast.WithStatement) {
	fc.compileExpression(n.Object)
	fc.emit(EnterWith{})
	fc.compileStatement(n.Body)
	fc.emit(ExitWith{})
}

// compileVariableDeclaration compiles each declarator in turn. A var with no
// initializer is a no-op: pkg/scope's hoisting already gives it an undefined
// value at the top of its enclosing function/script. A let with no
// initializer still needs its TDZ lifted.
func (fc *funcCompiler) compileVariableDeclaration(d *ast.VariableDeclaration) {
	for _, decl := range d.Declarations {
		if decl.Init != nil {
			fc.compileExpression(decl.Init)
			fc.compileDestructure(decl.Target, declSink(d.Kind))
			continue
		}

		if d.Kind == ast.VariableVar {
			continue
		}

		fc.emit(PushUndefined{})
		fc.compileDestructure(decl.Target, declSink(d.Kind))
	}
}

func (fc *funcCompiler) compileClassDeclaration(d *ast.ClassDeclaration) {
	fc.compileClass(d.Class)

	b, ok := fc.currentLexicalScope().Lookup(d.Class.Id.Name)
	if !ok {
		fc.c.errorf(d.Span(), "internal: class binding for '%s' missing from scope", d.Class.Id.Name)
		fc.emit(Pop{})
		return
	}

	fc.emit(InitLet{Slot: b.Slot})
}

func (fc *funcCompiler) compileIfStatement(n *ast.IfStatement) {
	fc.compileExpression(n.Test)
	elsePC := fc.emit(JumpIfFalse{})
	fc.compileStatement(n.Consequent)

	if n.Alternate == nil {
		fc.patchJump(elsePC)
		return
	}

	endPC := fc.emit(Jump{})
	fc.patchJump(elsePC)
	fc.compileStatement(n.Alternate)
	fc.patchJump(endPC)
}

func (fc *funcCompiler) compileReturnStatement(n *ast.ReturnStatement) {
	if n.Argument != nil {
		fc.compileExpression(n.Argument)
	} else {
		fc.emit(PushUndefined{})
	}

	fc.runCleanupsDownTo(0)
	fc.emit(Return{})
}

func (fc *funcCompiler) compileBreakStatement(n *ast.BreakStatement) {
	label := ""
	if n.Label != nil {
		label = n.Label.Name
	}

	frame := fc.findControl(label, false)
	if frame == nil {
		fc.c.errorf(n.Span(), "internal: break target not found")
		return
	}

	fc.runCleanupsDownTo(frame.breakCleanupDepth)
	pc := fc.emit(Jump{})
	frame.breaks = append(frame.breaks, pc)
}

func (fc *funcCompiler) compileContinueStatement(n *ast.ContinueStatement) {
	label := ""
	if n.Label != nil {
		label = n.Label.Name
	}

	frame := fc.findControl(label, true)
	if frame == nil {
		fc.c.errorf(n.Span(), "internal: continue target not found")
		return
	}

	fc.runCleanupsDownTo(frame.cleanupDepth)
	pc := fc.emit(Jump{})
	frame.continues = append(frame.continues, pc)
}

// compileForStatement lowers the C-style `for (init; test; update) body`.
// The head scope (only present when Init is a non-var VariableDeclaration)
// is entered once for the whole loop rather than fresh per iteration: a
// documented simplification, unlike for-in/for-of below, which get a
// genuinely fresh per-iteration environment for free from where their own
// enterChildScope call sits relative to the loop's back edge.
func (fc *funcCompiler) compileForStatement(n *ast.ForStatement, labels []string) {
	preWrapperDepth := len(fc.cleanups)
	closer := fc.enterChildScope(n)

	switch init := n.Init.(type) {
	case *ast.VariableDeclaration:
		fc.compileVariableDeclaration(init)
	case ast.Expression:
		fc.compileExpression(init)
		fc.emit(Pop{})
	}

	fc.pushControl(labels, true, len(fc.cleanups)-preWrapperDepth)

	testPC := fc.pc()
	hasTest := n.Test != nil

	var exitPC int
	if hasTest {
		fc.compileExpression(n.Test)
		exitPC = fc.emit(JumpIfFalse{})
	}

	fc.compileStatement(n.Body)

	updatePC := fc.pc()
	if n.Update != nil {
		fc.compileExpression(n.Update)
		fc.emit(Pop{})
	}

	fc.emit(Jump{Target: testPC})

	if hasTest {
		fc.patchJump(exitPC)
	}

	closer()

	result := fc.popControl()
	for _, pc := range result.continues {
		fc.patchJumpTo(pc, updatePC)
	}
}

func (fc *funcCompiler) compileWhileStatement(n *ast.WhileStatement, labels []string) {
	fc.pushControl(labels, true, 0)

	testPC := fc.pc()
	fc.compileExpression(n.Test)
	exitPC := fc.emit(JumpIfFalse{})

	fc.compileStatement(n.Body)
	fc.emit(Jump{Target: testPC})

	fc.patchJump(exitPC)

	result := fc.popControl()
	for _, pc := range result.continues {
		fc.patchJumpTo(pc, testPC)
	}
}

// compileDoWhileStatement lowers `do body while (test);`: a `continue` must
// still cause the test to be (re-)evaluated before deciding whether to loop
// again, so it targets the test, not the body's start.
func (fc *funcCompiler) compileDoWhileStatement(n *ast.DoWhileStatement, labels []string) {
	fc.pushControl(labels, true, 0)

	bodyStart := fc.pc()
	fc.compileStatement(n.Body)

	testPC := fc.pc()
	fc.compileExpression(n.Test)
	fc.emit(JumpIfTrue{Target: bodyStart})

	result := fc.popControl()
	for _, pc := range result.continues {
		fc.patchJumpTo(pc, testPC)
	}
}

// compileSwitchStatement lowers `switch (discriminant) { cases... }`. All
// cases share one KindSwitch scope (pkg/scope attaches it once to the
// SwitchStatement itself, spanning every case's declarations together), so
// function declarations across different case arms are hoisted together
// too. The discriminant is Dup'd once per `case` test for a StrictEqual
// comparison and finally discarded by the one shared cleanup copy emitted
// after every case body, the same copy a `break` already ran its own inline
// duplicate of before jumping here.
func (fc *funcCompiler) compileSwitchStatement(n *ast.SwitchStatement, labels []string) {
	fc.compileExpression(n.Discriminant)

	preWrapperDepth := len(fc.cleanups)
	fc.pushCleanup(func() { fc.emit(Pop{}) })
	closer := fc.enterChildScope(n)

	var allConsequents []ast.Statement
	for _, c := range n.Cases {
		allConsequents = append(allConsequents, c.Consequent...)
	}
	fc.hoistFunctionDeclarations(allConsequents)

	dispatchJumps := make([]int, len(n.Cases))
	defaultIdx := -1

	for i, c := range n.Cases {
		if c.Test == nil {
			defaultIdx = i
			dispatchJumps[i] = -1
			continue
		}

		fc.emit(Dup{})
		fc.compileExpression(c.Test)
		fc.emit(StrictEqual{})
		dispatchJumps[i] = fc.emit(JumpIfTrue{})
	}

	noMatch := fc.emit(Jump{})

	fc.pushControl(labels, false, len(fc.cleanups)-preWrapperDepth)

	caseStarts := make([]int, len(n.Cases))
	for i, c := range n.Cases {
		caseStarts[i] = fc.pc()

		for _, s := range c.Consequent {
			if hoistableFunctionDecl(s) != nil {
				continue
			}

			fc.compileStatement(s)
		}
	}

	for i, pc := range dispatchJumps {
		if pc >= 0 {
			fc.patchJumpTo(pc, caseStarts[i])
		}
	}

	if defaultIdx >= 0 {
		fc.patchJumpTo(noMatch, caseStarts[defaultIdx])
	} else {
		fc.patchJumpTo(noMatch, fc.pc())
	}

	fc.emit(Pop{})
	closer()

	fc.popControl()
}

// compileForInStatement lowers `for (left in right) body` by sharing
// compileForEachLoop with for-of: the only difference is which op obtains
// the iterator record, since GetForInIterator is deliberately modeled to
// step the same {done, value} way GetIterator/IteratorNext do.
func (fc *funcCompiler) compileForInStatement(n *ast.ForInStatement, labels []string) {
	fc.compileExpression(n.Right)
	fc.emit(GetForInIterator{})
	fc.compileForEachLoop(n, n.Left, n.Body, labels, false)
}

func (fc *funcCompiler) compileForOfStatement(n *ast.ForOfStatement, labels []string) {
	fc.compileExpression(n.Right)
	fc.emit(GetIterator{Async: n.Await})
	fc.compileForEachLoop(n, n.Left, n.Body, labels, n.Await)
}

// compileForEachLoop compiles the shared for-in/for-of loop body against an
// iterator record already sitting on top of the stack. Unlike compileForStatement,
// the per-iteration scope is entered fresh every pass through the loop (its
// EnterScope sits between loopStart and the back edge), so a captured `let`
// binding here is correctly independent across iterations with no extra
// work — the accepted simplification above applies only to the C-style for.
func (fc *funcCompiler) compileForEachLoop(node ast.Node, left ast.Node, body ast.Statement, labels []string, await bool) {
	iterDepth, iterSlot := fc.allocTemp()
	fc.emit(SetLocal{Depth: iterDepth, Slot: iterSlot})
	fc.emit(Pop{})

	preWrapperDepth := len(fc.cleanups)
	fc.pushCleanup(func() {
		fc.emit(GetLocal{Depth: iterDepth, Slot: iterSlot})
		fc.emit(IteratorClose{})
	})

	fc.pushControl(labels, true, len(fc.cleanups)-preWrapperDepth)

	loopStart := fc.pc()
	fc.emit(GetLocal{Depth: iterDepth, Slot: iterSlot})
	fc.emit(IteratorNext{})
	if await {
		fc.emit(Await{})
	}
	fc.emit(Dup{})
	fc.emit(GetPropertyByName{Name: "done"})
	donePC := fc.emit(JumpIfTrue{})
	fc.emit(GetPropertyByName{Name: "value"})

	bodyCloser := fc.enterChildScope(node)
	fc.compileForHeadBinding(left)
	fc.compileStatement(body)
	bodyCloser()

	continuePC := fc.pc()
	fc.emit(Jump{Target: loopStart})

	fc.patchJump(donePC)
	fc.emit(Pop{}) // discard the exhausted {done: true} step record

	fc.popCleanup() // exhaustion completes normally; no IteratorClose needed

	result := fc.popControl()
	for _, pc := range result.continues {
		fc.patchJumpTo(pc, continuePC)
	}
}

// compileForHeadBinding binds one step's value (already on top of the
// stack) into left, a `*ast.VariableDeclaration` for the `for (let x of ...)`
// form or an assignment target otherwise. left's declared Go type is the
// broader ast.Node (not ast.Pattern) precisely because it may be a
// `*ast.MemberExpression` (`for (obj.x of ...)`), which does not implement
// ast.Pattern's marker method — the same looseness AssignmentExpression.Target
// already relies on — so it is passed straight through to compileDestructure,
// which dispatches on the concrete type itself.
func (fc *funcCompiler) compileForHeadBinding(left ast.Node) {
	if vd, ok := left.(*ast.VariableDeclaration); ok {
		fc.compileDestructure(vd.Declarations[0].Target, declSink(vd.Kind))
		return
	}

	fc.compileDestructure(left, assignSink(fc.cb.Strict))
}

// compileTryStatement lowers `try block [catch] [finally]` (§4.6). One
// handler frame covers the try block and, when present, the catch body
// together (PopHandler's own doc: removed "once its try (and catch, if any)
// block completes normally") — a second exception raised while already
// running the catch body is the VM's responsibility to route straight to
// Finally rather than back into Catch, per the contract PushHandler documents.
//
// A break/continue/return crossing the try or catch body re-emits PopHandler
// (and, with a finally block, the finally body itself) inline at its own
// site via the cleanup stack, since no opcode here threads a "pending
// completion" through an unwind the way the spec's own abstract Completion
// Records do — the finally block's bytecode is accordingly compiled more
// than once when early exits are present, a deliberate size-for-simplicity
// tradeoff recorded in the design ledger.
func (fc *funcCompiler) compileTryStatement(n *ast.TryStatement) {
	hasFinally := n.Finalizer != nil
	handlerPC := fc.emit(PushHandler{Catch: -1, FinallyPC: -1})

	fc.pushCleanup(func() {
		fc.emit(PopHandler{})
		if hasFinally {
			fc.emitFinallyBody(n.Finalizer)
		}
	})

	blockCloser := fc.enterChildScope(n.Block)
	fc.compileStatements(n.Block.Body)
	blockCloser()

	var afterTry int
	catchPC := -1

	if n.Handler != nil {
		afterTry = fc.emit(Jump{})
		catchPC = fc.pc()
		fc.compileCatchClause(n.Handler)
	}

	fc.popCleanup()
	fc.emit(PopHandler{})

	if n.Handler != nil {
		fc.patchJump(afterTry)
	}

	finallyPC := -1
	if hasFinally {
		finallyPC = fc.pc()
		fc.emitFinallyBody(n.Finalizer)
	}

	fc.patchHandler(handlerPC, catchPC, finallyPC)
}

func (fc *funcCompiler) compileCatchClause(h *ast.CatchClause) {
	paramCloser := fc.enterChildScope(h)
	if h.Param != nil {
		fc.compileDestructure(h.Param, declSink(ast.VariableLet))
	} else {
		fc.emit(Pop{})
	}

	bodyCloser := fc.enterChildScope(h.Body)
	fc.compileStatements(h.Body.Body)
	bodyCloser()
	paramCloser()
}

func (fc *funcCompiler) emitFinallyBody(fin *ast.BlockStatement) {
	fc.emit(FinallyStart{})
	closer := fc.enterChildScope(fin)
	fc.compileStatements(fin.Body)
	closer()
	fc.emit(FinallyEnd{})
}

// compileExportNamedDeclaration compiles the wrapped declaration, if any —
// a bare `export { a, b as c };` (or its `from "source"` re-export form)
// names already-existing bindings pkg/module resolves directly, nothing to
// emit here.
func (fc *funcCompiler) compileExportNamedDeclaration(n *ast.ExportNamedDeclaration) {
	switch d := n.Declaration.(type) {
	case nil:
	case *ast.FunctionDeclaration:
		// Hoisted and bound already.
	case *ast.ClassDeclaration:
		fc.compileClassDeclaration(d)
	case *ast.VariableDeclaration:
		fc.compileVariableDeclaration(d)
	}
}

// compileExportDefaultDeclaration lowers `export default <expr-or-decl>;`.
// A named function/class declaration already has its own ordinary binding
// (pkg/scope declares "foo"/"Foo" directly, the same as any other
// declaration) that pkg/module resolves the default export to directly; the
// anonymous-declaration and bare-expression forms have no such binding, so
// pkg/scope declared the synthetic scope.DefaultExportBindingName slot for
// exactly this statement, and the value is stored there like any other
// const initializer — pkg/module then resolves a `default` import the same
// way it resolves any other named export, with no separate code path.
func (fc *funcCompiler) compileExportDefaultDeclaration(n *ast.ExportDefaultDeclaration) {
	switch d := n.Declaration.(type) {
	case *ast.FunctionDeclaration:
		if d.Function.Id != nil {
			// Hoisted and bound already.
			return
		}

		fc.compileFunctionLiteral(d.Function, nil)
		fc.initDefaultExportSlot()
	case *ast.ClassDeclaration:
		if d.Class.Id != nil {
			fc.compileClassDeclaration(d)
			return
		}

		fc.compileClass(d.Class)
		fc.initDefaultExportSlot()
	case ast.Expression:
		fc.compileExpression(d)
		fc.initDefaultExportSlot()
	}
}

func (fc *funcCompiler) initDefaultExportSlot() {
	b, ok := fc.currentLexicalScope().Lookup(scope.DefaultExportBindingName)
	if !ok {
		fc.c.errorf(ast.Span{}, "internal: missing synthetic default-export binding")
		fc.emit(Pop{})

		return
	}

	fc.emit(InitConst{Slot: b.Slot})
}
