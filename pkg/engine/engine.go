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

// Package engine is §6's host embedding API: Context bundles one realm, one
// VM, one job queue, and one module loader into the single object a host
// program actually talks to, so cmd/jsrun (and any other embedder) never
// constructs pkg/realm/pkg/vm/pkg/job/pkg/builtins itself. Every method here
// is a thin composition of those packages' own exported surface — Context
// adds no execution semantics of its own beyond wiring them together in the
// right order.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ecmaforge/ecmaforge/internal/diag"
	"github.com/ecmaforge/ecmaforge/pkg/builtins"
	"github.com/ecmaforge/ecmaforge/pkg/bytecode"
	"github.com/ecmaforge/ecmaforge/pkg/debugadapter"
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/job"
	"github.com/ecmaforge/ecmaforge/pkg/lexer"
	"github.com/ecmaforge/ecmaforge/pkg/module"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/parser"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/scope"
	"github.com/ecmaforge/ecmaforge/pkg/value"
	"github.com/ecmaforge/ecmaforge/pkg/vm"
)

// HostFunc is the native-function contract §6 gives a host: receives the
// call's `this` and positional arguments, returns either a result Value or
// an error, which surfaces to script code as a thrown Error the same way
// any built-in's own validation failure would (see pkg/builtins' own
// throwType/throwRange convention, which RegisterGlobalCallable's wrapper
// reuses).
type HostFunc func(this value.Value, args []value.Value) (value.Value, error)

// PropertyAttributes is the writable/enumerable/configurable triple
// RegisterGlobalProperty installs a value under — §6's
// `register_global_property(name, value, attrs)`.
type PropertyAttributes struct {
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// RuntimeLimits bounds a single Context's execution, §6's
// `set_runtime_limits(limits)`: MaxCallDepth (0 = unlimited) caps recursive
// script calls with a catchable RangeError (pkg/vm.SetMaxCallDepth);
// MaxDuration (0 = unlimited) bounds wall-clock time for one Eval/EvalModule
// call. There is no cooperative cancellation point inside pkg/vm's dispatch
// loop (§4.6 runs to completion or exception by design), so MaxDuration is
// necessarily best-effort: it abandons the evaluating goroutine and returns
// a timeout error to the host, but cannot reclaim the goroutine itself if
// the script is in a true infinite loop with no call of its own to trip
// MaxCallDepth. A host that needs hard preemption runs Eval in its own
// process/sandbox; this is the same limitation every embedder of a
// cooperatively-scheduled interpreter accepts.
type RuntimeLimits struct {
	MaxCallDepth int
	MaxDuration  time.Duration
}

// Option configures a Context at construction time.
type Option func(*config)

type config struct {
	sink diag.Sink
}

// WithDiagnostics attaches a custom diag.Sink (§6's
// `Context::diagnostics()`/custom sink attachment) instead of the default
// logrus-backed one every other realm-owned component falls back to.
func WithDiagnostics(sink diag.Sink) Option {
	return func(c *config) { c.sink = sink }
}

// Context is one embeddable ECMAScript execution context: a realm, a VM
// bound to it, and the job queue/module loader/runtime limits a host
// configures around them. Not safe for concurrent use from multiple
// goroutines — the same single-interpreter-thread discipline §5 documents
// for the job queue applies to the whole Context.
type Context struct {
	realm *realm.Realm
	vm    *vm.VM
	jobs  *job.Queue
	sink  diag.Sink

	loader   module.Loader
	executor job.Executor

	limits RuntimeLimits
	dbg    *debugadapter.Server
}

// New constructs a fresh realm with the full standard built-in surface
// installed (pkg/builtins.Install) and a VM bound to it, ready for Eval.
func New(opts ...Option) (*Context, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.sink == nil {
		cfg.sink = diag.NewLogrusSink()
	}

	r := realm.New(cfg.sink)
	jobs := job.New(cfg.sink)
	m := vm.New(r, jobs)

	if err := builtins.Install(r, m); err != nil {
		return nil, fmt.Errorf("engine: installing built-ins: %w", err)
	}

	return &Context{
		realm:    r,
		vm:       m,
		jobs:     jobs,
		sink:     cfg.sink,
		executor: job.Runner{},
	}, nil
}

// Heap returns this Context's GC heap, e.g. for a host that wants Stats()
// between evaluations.
func (c *Context) Heap() *heap.Heap { return c.realm.Heap() }

// Diagnostics returns the diag.Sink this Context's realm, VM, and job queue
// all report internal events to.
func (c *Context) Diagnostics() diag.Sink { return c.sink }

// Realm exposes the underlying realm directly, for a host that needs lower-
// level access (e.g. pkg/debugadapter's own evaluate path, or a host
// inspecting intrinsics) beyond what Context itself wraps.
func (c *Context) Realm() *realm.Realm { return c.realm }

// SetRuntimeLimits installs limits, taking effect on the next Eval/
// EvalModule call (MaxCallDepth is applied to the VM immediately).
func (c *Context) SetRuntimeLimits(limits RuntimeLimits) {
	c.limits = limits
	c.vm.SetMaxCallDepth(limits.MaxCallDepth)
}

// SetModuleLoader installs the Loader EvalModule resolves import specifiers
// through; a Context constructed via New has none, so EvalModule fails
// until one is set.
func (c *Context) SetModuleLoader(loader module.Loader) { c.loader = loader }

// SetJobExecutor replaces the policy RunJobsAsync drives the job queue
// with; the default is job.Runner{}, the single-threaded drain-to-empty
// policy §5 describes.
func (c *Context) SetJobExecutor(executor job.Executor) { c.executor = executor }

// AttachDebugAdapter starts a debugadapter.Server listening on addr and
// wires it to this Context's VM, entirely optional and off by default:
// nothing in Eval/EvalModule ever touches it unless a script contains its
// own `debugger;` statement.
func (c *Context) AttachDebugAdapter(addr string) error {
	s, err := debugadapter.Attach(c.vm, addr)
	if err != nil {
		return err
	}

	c.dbg = s

	return nil
}

// CloseDebugAdapter stops a previously attached debug adapter, if any; a
// no-op if AttachDebugAdapter was never called.
func (c *Context) CloseDebugAdapter() error {
	if c.dbg == nil {
		return nil
	}

	err := c.dbg.Close()
	c.dbg = nil

	return err
}

// Eval parses, compiles, and runs source as a top-level script (§6's
// `Context::eval(source)`), returning its completion value or the thrown
// exception wrapped as a *vm.ThrownError.
func (c *Context) Eval(name string, source []byte) (value.Value, error) {
	if c.limits.MaxDuration <= 0 {
		return c.evalScript(name, source)
	}

	return c.evalScriptWithTimeout(name, source)
}

func (c *Context) evalScript(name string, source []byte) (value.Value, error) {
	code, err := compileScript(name, source, c.realm)
	if err != nil {
		return value.Value{}, err
	}

	return c.vm.RunScript(code)
}

// evalScriptWithTimeout runs evalScript on its own goroutine and races it
// against limits.MaxDuration — see RuntimeLimits' doc comment for why this
// can only abandon a runaway script, not reclaim its goroutine.
func (c *Context) evalScriptWithTimeout(name string, source []byte) (value.Value, error) {
	type outcome struct {
		v   value.Value
		err error
	}

	done := make(chan outcome, 1)

	go func() {
		v, err := c.evalScript(name, source)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.v, o.err
	case <-time.After(c.limits.MaxDuration):
		return value.Value{}, fmt.Errorf("engine: evaluation exceeded %s runtime limit", c.limits.MaxDuration)
	}
}

// compileScript runs the parse -> scope.Analyze -> bytecode.CompileScript
// pipeline every top-level script goes through, shared between Eval and
// (via the same shape, specialized to CompileModule) EvalModule's own
// entry-module compilation inside pkg/module.Parse.
func compileScript(name string, source []byte, r *realm.Realm) (*bytecode.CodeBlock, error) {
	syms := r.Syms()

	prog, err := parser.ParseScript(name, source, syms)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	src := lexer.NewSource(name, source)

	scopes, err := scope.Analyze(prog, src)
	if err != nil {
		return nil, fmt.Errorf("scope: %w", err)
	}

	code, err := bytecode.CompileScript(prog, scopes, src, syms)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	return code, nil
}

// EvalModule resolves specifier through the Loader installed via
// SetModuleLoader, links the whole module graph it pulls in, evaluates it
// top to bottom in dependency order, and returns its module namespace
// object (§6's `Context::parse_module(source)` + `Module::link_and_evaluate`
// collapsed into one call for the common case of a host that doesn't need
// to observe Instantiate/Link/Evaluate as separate phases).
func (c *Context) EvalModule(specifier string) (value.Value, error) {
	if c.loader == nil {
		return value.Value{}, fmt.Errorf("engine: EvalModule: no module loader installed (call SetModuleLoader first)")
	}

	entry, err := c.loader.Load(nil, specifier)
	if err != nil {
		return value.Value{}, fmt.Errorf("engine: loading %q: %w", specifier, err)
	}

	if _, err := module.LinkModules(entry, c.loader, c.realm, c.vm); err != nil {
		return value.Value{}, err
	}

	return entry.Namespace()
}

// RunJobs drains the microtask queue to empty (§6's `Context::run_jobs()`),
// the synchronous entry point for a host with no pending async work.
func (c *Context) RunJobs() { c.jobs.RunJobs() }

// RunJobsAsync drives the job queue via the installed Executor until it is
// empty or ctx is cancelled (§6's `Context::run_jobs_async()`).
func (c *Context) RunJobsAsync(ctx context.Context) error {
	return c.executor.Run(ctx, c.jobs)
}

// RegisterGlobalCallable installs a native function under name on the
// global object (§6's `register_global_callable(name, arity, fn)`), wrapping
// fn in the object.NativeFunc shape pkg/builtins' own installers use — a
// host function is, from the VM's perspective, indistinguishable from a
// built-in one.
func (c *Context) RegisterGlobalCallable(name string, arity int, fn HostFunc) {
	native := func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return fn(this, args)
	}

	proto := c.realm.IntrinsicPrototype("Function")
	obj := object.New(c.realm.ShapeRoot(), "Function", object.KindFunction, proto)
	obj.SetData(&object.FunctionData{Name: name, ParameterCount: arity, Native: native, Strict: true})

	ref := heap.NewGc[value.HeapObject](c.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	c.defineGlobal(name, value.Obj(ref), PropertyAttributes{Writable: true, Configurable: true})
}

// RegisterGlobalProperty installs v as a data property named name on the
// global object under attrs (§6's `register_global_property(name, value,
// attrs)`).
func (c *Context) RegisterGlobalProperty(name string, v value.Value, attrs PropertyAttributes) {
	c.defineGlobal(name, v, attrs)
}

func (c *Context) defineGlobal(name string, v value.Value, attrs PropertyAttributes) {
	k := value.StringKey(value.NewString(name))

	_, _ = c.realm.GlobalObject().DefineOwnProperty(c.realm, k, object.PropertyDescriptor{
		Value: v, HasValue: true,
		Writable: attrs.Writable, Enumerable: attrs.Enumerable, Configurable: attrs.Configurable,
	})
}
