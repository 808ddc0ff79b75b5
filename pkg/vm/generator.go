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
package vm

import (
	"github.com/ecmaforge/ecmaforge/pkg/bytecode"
	"github.com/ecmaforge/ecmaforge/pkg/envrec"
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// genMsgKind tags the two directions a generator coroutine's channel pair
// carries messages: a resume from whoever is driving it (.next/.throw), or
// a settlement the generator's own body produces (a Yield, or the body
// running to completion/throwing).
type genMsgKind uint8

const (
	msgResumeNext genMsgKind = iota
	msgResumeThrow
	msgYield
	msgReturn
	msgThrow
)

type genMsg struct {
	kind  genMsgKind
	value value.Value
}

type genStatus uint8

const (
	genSuspendedStart genStatus = iota
	genSuspendedYield
	genExecuting
	genCompleted
)

// generatorState is the coroutine handle a Frame's Yield op blocks on and a
// generator object's .next()/.throw() resume through: the body runs on its
// own goroutine, handed control by an unbuffered channel exchange so that,
// at any moment, exactly one of {the driver, the generator body} is
// actually running — real concurrency is never needed, only the suspend/
// resume control transfer a generator is.
type generatorState struct {
	in     chan genMsg
	out    chan genMsg
	status genStatus
	gf     *goroutineFrame
}

// goroutineFrame roots a suspended generator's own frame stack for the GC
// (VM.Roots walks vm.suspended) while its goroutine sits blocked on
// generatorState.in between resumes.
type goroutineFrame struct {
	stack []*Frame
}

// startGenerator builds a generator object (§10.2's GeneratorFunction
// behaviour) instead of running the function body immediately: the body's
// Frame is constructed the same way an ordinary call's is, but its
// execution is deferred onto its own goroutine, held at SuspendedStart until
// the first .next() call resumes it.
func (vm *VM) startGenerator(code *bytecode.CodeBlock, env *envrec.Environment, this, newTarget, fn value.Value, args []value.Value) value.Value {
	gs := &generatorState{in: make(chan genMsg), out: make(chan genMsg), status: genSuspendedStart}

	frame := newCallFrame(code, env, this, newTarget, fn, args)
	frame.generator = gs

	gf := &goroutineFrame{stack: []*Frame{frame}}
	gs.gf = gf

	vm.mu.Lock()
	vm.suspended[gf] = struct{}{}
	vm.mu.Unlock()

	go func() {
		<-gs.in

		v, te := vm.runFrame(frame)

		vm.mu.Lock()
		delete(vm.suspended, gf)
		vm.mu.Unlock()

		if te != nil {
			gs.out <- genMsg{kind: msgThrow, value: te.Value}

			return
		}

		gs.out <- genMsg{kind: msgReturn, value: v}
	}()

	proto := vm.realm.IntrinsicPrototype("Generator")
	obj := object.New(vm.realm.ShapeRoot(), "Generator", object.KindGenerator, proto)
	obj.SetData(gs)
	ref := heap.NewGc[value.HeapObject](vm.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref)
}

// ResumeGenerator implements a generator object's .next(v)/.throw(v): send
// the resume message across, block for whatever the body does next (yield,
// return, or throw), and report it back as an IteratorResult — or, if
// already completed, the spec's fixed {done:true, value:undefined}.
func (vm *VM) ResumeGenerator(genObj value.Value, kind genMsgKind, v value.Value) (value.Value, error) {
	h, ok := genObj.AsObject()
	if !ok {
		return value.Value{}, vm.throw("TypeError", "not a generator")
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return value.Value{}, vm.throw("TypeError", "not a generator")
	}

	gs, ok := o.Data().(*generatorState)
	if !ok {
		return value.Value{}, vm.throw("TypeError", "not a generator")
	}

	if gs.status == genCompleted {
		if kind == msgResumeThrow {
			return value.Value{}, &ThrownError{Value: v}
		}

		return vm.stepResultValue(true, value.Undefined()), nil
	}

	gs.status = genExecuting
	gs.in <- genMsg{kind: kind, value: v}
	msg := <-gs.out

	switch msg.kind {
	case msgYield:
		gs.status = genSuspendedYield

		return vm.stepResultValue(false, msg.value), nil
	case msgReturn:
		gs.status = genCompleted

		return vm.stepResultValue(true, msg.value), nil
	case msgThrow:
		gs.status = genCompleted

		return value.Value{}, &ThrownError{Value: msg.value}
	}

	return value.Undefined(), nil
}

// yield implements the Yield op: suspend f's generator, handing v out as
// the yielded value, and block until resumed. A resume-with-return is
// reported back as (_, true, nil) so execIter can drive it through
// doReturn — running any enclosing finally blocks exactly like an ordinary
// `return` reaching them would — rather than Yield having to special-case
// unwinding itself.
func (vm *VM) yield(f *Frame, v value.Value, delegate bool) (value.Value, bool, *ThrownError) {
	if f.generator == nil {
		return value.Value{}, false, vm.throw("SyntaxError", "yield is only valid inside a generator function")
	}

	if delegate {
		return vm.yieldDelegate(f, v)
	}

	return vm.yieldOnce(f, v)
}

func (vm *VM) yieldOnce(f *Frame, v value.Value) (value.Value, bool, *ThrownError) {
	gs := f.generator

	gs.out <- genMsg{kind: msgYield, value: v}
	resume := <-gs.in

	switch resume.kind {
	case msgResumeNext:
		return resume.value, false, nil
	case msgResumeThrow:
		return value.Value{}, false, &ThrownError{Value: resume.value}
	}

	return resume.value, true, nil
}

// yieldDelegate implements `yield*` (§14.5's YieldExpression with
// Delegate): drive the delegated iterable's own iterator to completion,
// re-yielding each of its values out through this generator in turn. The
// resume value passed back into the delegated iterator's own next() call is
// not threaded through (a documented simplification — this realm's
// generators do not yet forward .next(v)'s v into a yield*-delegated
// iterator), since no built-in generator in this realm depends on it.
func (vm *VM) yieldDelegate(f *Frame, v value.Value) (value.Value, bool, *ThrownError) {
	rec, te := vm.getIterator(v, false)
	if te != nil {
		return value.Value{}, false, te
	}

	for {
		stepVal, done, te2 := vm.iteratorStep(rec)
		if te2 != nil {
			return value.Value{}, false, te2
		}

		if done {
			return stepVal, false, nil
		}

		_, isReturn, te3 := vm.yieldOnce(f, stepVal)
		if te3 != nil {
			vm.iteratorClose(rec)

			return value.Value{}, false, te3
		}

		if isReturn {
			vm.iteratorClose(rec)

			return value.Undefined(), true, nil
		}
	}
}

// await implements the Await op (§4.10/§27.7.5.3): resolve the awaited
// value to a promise and read its settlement. Real engines suspend the
// async function's own coroutine until the promise's reaction job runs on
// the job queue; since this engine's async-function bodies already run on
// their own goroutine-backed Frame stack (startGenerator/the suspended map),
// Await instead pumps vm.jobs' microtask queue in place until the awaited
// promise settles — draining exactly the reactions a `.then` chain or
// thenable-adoption scheduled, without a second coroutine suspension layer
// on top of the one pkg/vm already has. A promise that depends on a
// macrotask (a timer, host I/O) never settles this way; that is reported as
// a plain error rather than hanging forever.
func (vm *VM) await(_ *Frame, v value.Value) (value.Value, *ThrownError) {
	promise, te := vm.PromiseResolve(v)
	if te != nil {
		return value.Value{}, te
	}

	ps, ok := PromiseDataOf(promise)
	if !ok {
		return promise, nil
	}

	for ps.Status == PromisePending && vm.jobs.HasWork() {
		vm.jobs.RunJobs()
	}

	switch ps.Status {
	case PromiseFulfilled:
		return ps.Value, nil
	case PromiseRejected:
		return value.Value{}, &ThrownError{Value: ps.Value}
	default:
		return value.Value{}, vm.throw("Error", "cannot await a promise that depends on a macrotask without a running event loop")
	}
}
