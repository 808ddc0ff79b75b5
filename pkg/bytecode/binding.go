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

// Binding access. The compiler picks GetLocal/SetLocal over GetName/SetName
// whenever pkg/scope resolved a reference to a statically known (Depth, Slot)
// pair on a scope that was never marked NonOptimizable; otherwise it falls
// back to named lookup through the live environment chain, since a `with` or
// a direct `eval` may have introduced bindings no static analysis can see.

// GetLocal reads the Slot'th binding of the environment Depth links up from
// the current one, pushing its value.
type GetLocal struct {
	Depth int
	Slot  int
}

// SetLocal writes the top of stack into the Slot'th binding of the
// environment Depth links up, without popping it (assignment is itself an
// expression).
type SetLocal struct {
	Depth int
	Slot  int
}

// GetName looks Name up through the live environment chain by name, falling
// through to the global object when no environment record declares it.
type GetName struct{ Name sym }

// SetName writes the top of stack to Name through the live environment
// chain, creating a global property when nothing declares it and Strict is
// false (§4.4's "implicit global" legacy behaviour); Strict true throws a
// ReferenceError instead.
type SetName struct {
	Name   sym
	Strict bool
}

// GetArg reads positional argument Index from the current call's argument
// list (used only by a function-declaration-instantiation preamble copying
// arguments into parameter bindings; ordinary parameter references compile
// to GetLocal once the preamble has run).
type GetArg struct{ Index int }

// SetArg writes positional argument Index (used by the mapped-arguments
// preamble to keep `arguments[i]` aliased to the matching simple parameter).
type SetArg struct{ Index int }

// InitLet gives the Slot'th binding of the current environment its initial
// value, lifting it out of the temporal dead zone.
type InitLet struct{ Slot int }

// InitConst is InitLet for a const binding (recorded separately so pkg/vm
// can reject a later SetLocal against the same slot).
type InitConst struct{ Slot int }

// InitVar initializes a var/function binding; unlike InitLet/InitConst it
// never participates in a TDZ check, since var bindings are undefined (not
// dead) from the start of their scope.
type InitVar struct{ Slot int }

// ThrowUndefinedIfTDZ checks the Slot'th binding of the environment Depth
// links up and throws a ReferenceError if it is still in its temporal dead
// zone, per the read/write-before-initialization early semantics of let and
// const (§4.4).
type ThrowUndefinedIfTDZ struct {
	Depth int
	Slot  int
}

// DeleteName implements `delete identifier` in non-strict sloppy code (a
// parse-time early error in strict mode, enforced before compilation):
// removes a configurable global property, or is a no-op false for any
// lexical/var binding, which are never configurable.
type DeleteName struct{ Name sym }

// BindingName is one slot's dynamic-lookup identity: the Name GetName/
// SetName/pkg/envrec's HasBinding resolve by, and whether writing to it
// outside its own InitConst must raise a TypeError. Only a binding pkg/scope
// marked non-local is ever reached this way, but every slot's identity is
// carried regardless (rather than a sparse subset), since a `with` or direct
// `eval` inside this same environment can force any of its bindings dynamic
// at a point the compiler already passed — pkg/envrec needs the whole table
// to build that environment's name map, not just the slots known dynamic
// when EnterScope was emitted.
type BindingName struct {
	Name sym
	// Const marks a binding whose only legal write is its own InitConst.
	Const bool
	// TDZ marks a binding that starts uninitialized and must be lifted out of
	// its temporal dead zone by InitLet/InitConst before first read (let,
	// const, class); false for every other binding kind (var, parameter,
	// catch, function, import), which pkg/envrec instead initializes to
	// `undefined` (or their bound value) the moment the environment itself is
	// created, matching §3.4's "Function-scope var hoists ... undefined (not
	// dead) from the start of their scope".
	TDZ bool
}

// EnterScope pushes a fresh environment record of NumLocals slots, chained
// in front of the current environment, for every lexical scope pkg/scope
// attaches to a block, catch clause, for-head, switch, or class body — each
// such Scope is its own runtime environment in this design (a documented
// simplification traded for never needing a second, different binding
// locator scheme for "this block happened not to need its own frame").
// Names is parallel to the slot array (Names[i] describes slot i). Function
// and parameter-list scopes are instead entered implicitly by pkg/vm's call
// protocol, sized and named from the CodeBlock itself (LocalNames/ParamNames).
type EnterScope struct {
	NumLocals int
	Names     []BindingName
}

// ExitScope pops the innermost environment record, restoring the one
// EnterScope chained it in front of.
type ExitScope struct{}

// EnterWith pops an object and pushes it as an object environment record in
// front of the current environment chain: every GetName/SetName from here
// until the matching ExitWith checks its properties first (§4.4's `with`),
// which is also why pkg/scope marks every binding a `with` could shadow as
// non-local — emitGetRef/emitSetRef already fall back to GetName/SetName for
// those, so EnterWith/ExitWith are the only pieces a `with` statement needs
// from the bytecode side. Unlike EnterScope this carries no static NumLocals
// and does not participate in blockDepth: nothing inside a with statement
// keeps a Depth-based reference into it.
type EnterWith struct{}

// ExitWith pops the innermost object environment record EnterWith pushed.
type ExitWith struct{}

// CreateArgumentsObject materializes the current call's `arguments` object
// (mapped to the simple parameter list when Mapped is true, per sloppy-mode
// semantics) and declares it under the name "arguments" in the current
// environment's dynamic name table — every reference to `arguments` resolves
// through GetName/SetName rather than a static slot, since no Scope records
// a binding for it (§4.4 deliberately leaves `arguments` out of the
// statically-resolved binding set).
type CreateArgumentsObject struct{ Mapped bool }

func (GetLocal) op()            {}
func (SetLocal) op()            {}
func (GetName) op()             {}
func (SetName) op()             {}
func (GetArg) op()              {}
func (SetArg) op()              {}
func (InitLet) op()             {}
func (InitConst) op()           {}
func (InitVar) op()             {}
func (ThrowUndefinedIfTDZ) op()    {}
func (DeleteName) op()             {}
func (EnterScope) op()             {}
func (ExitScope) op()              {}
func (EnterWith) op()              {}
func (ExitWith) op()               {}
func (CreateArgumentsObject) op()  {}
