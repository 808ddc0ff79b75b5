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

import "github.com/ecmaforge/ecmaforge/pkg/object"

// Object/property opcodes spell their key as a plain Go string rather than
// an intern.Sym: unlike a variable name (always an Identifier, always
// already interned by the lexer), a property key may equally come from a
// string or numeric literal, so the compiler has no Sym to hand and simply
// carries the already-resolved key text instead.

// NewObject pushes a fresh ordinary object with Object.prototype as its
// [[Prototype]].
type NewObject struct{}

// SetPropertyByName pops a value and the object beneath it, defines an own
// enumerable/writable/configurable data property Name on it (object-literal
// shorthand for DefineOwnProperty, since every plain `{ a: 1 }` entry gets
// the same attributes), and pushes the object back.
type SetPropertyByName struct{ Name string }

// SetPropertyByValue is SetPropertyByName for a computed key: pops value,
// key, object (in that order), and pushes the object back.
type SetPropertyByValue struct{}

// GetPropertyByName pops an object (or coerces a primitive's wrapper) and
// pushes Name's value, per [[Get]].
type GetPropertyByName struct{ Name string }

// GetPropertyByValue is GetPropertyByName for a computed key: pops key then
// object, pushes the value.
type GetPropertyByValue struct{}

// GetPrivateField pops an object and pushes the value installed under
// Private, throwing a TypeError if the object does not carry that brand.
type GetPrivateField struct{ Private *object.PrivateName }

// SetPrivateField pops a value then an object and installs the value under
// Private, throwing if the object does not carry that brand.
type SetPrivateField struct{ Private *object.PrivateName }

// DefineOwnProperty pops a value (and, when Computed, a key beneath it),
// then the object beneath that, and calls [[DefineOwnProperty]] directly
// with the attributes fixed at compile time rather than going through the
// data-property fast path SetPropertyByName/Value use — needed for class
// members (non-enumerable) and `__proto__: expr` object-literal entries
// (which set the prototype rather than defining a property named
// "__proto__"). Like SetPropertyByName, it pushes the object back.
type DefineOwnProperty struct {
	Name         string
	Computed     bool // when true, the key was pushed on the stack ahead of the value
	Enumerable   bool
	Writable     bool
	Configurable bool
}

// DefineAccessor installs a getter or setter function (popped off the
// stack) for Name (or, when Computed, a key popped ahead of it) on the
// object beneath, merging with any accessor of the opposite kind already
// defined for the same key (an object literal's `{ get x(){}, set x(v){} }`
// compiles to two DefineAccessor ops against the same key).
type DefineAccessor struct {
	Name     string
	Computed bool
	IsSetter bool
}

// GetSuperProperty reads Name off the current method's HomeObject's
// [[Prototype]], using the current `this` as the receiver (so an inherited
// accessor still observes the subclass instance), per `super.prop` (§3.4).
type GetSuperProperty struct{ Name string }

// GetSuperPropertyComputed is GetSuperProperty for `super[expr]`: pops the
// key.
type GetSuperPropertyComputed struct{}

// SetSuperProperty writes the popped value to Name on the current method's
// HomeObject's [[Prototype]], receiver `this`, per `super.prop = value`.
type SetSuperProperty struct {
	Name   string
	Strict bool
}

// SetSuperPropertyComputed is SetSuperProperty for `super[expr] = value`:
// pops the value then the key.
type SetSuperPropertyComputed struct{ Strict bool }

// DeletePropertyByName implements `delete obj.name`: pops the object and
// pushes a bool (always true in sloppy mode for a configurable or absent
// property; strict mode's "deleting a non-configurable property throws" is
// a parse-time early error only for unqualified names, so this op itself
// never throws — §3.2).
type DeletePropertyByName struct{ Name string }

// DeletePropertyByValue is DeletePropertyByName for `delete obj[expr]`: pops
// the key then the object.
type DeletePropertyByValue struct{}

// CopyDataProperties implements an object literal's `...expr` spread entry:
// pops a source value and copies each of its own enumerable properties onto
// the object beneath, per CopyDataProperties (§3.3) — distinct from
// PushArraySpread, which drains an iterator rather than reading own
// properties.
type CopyDataProperties struct{}

func (NewObject) op()                {}
func (SetPropertyByName) op()        {}
func (SetPropertyByValue) op()       {}
func (GetPropertyByName) op()        {}
func (GetPropertyByValue) op()       {}
func (GetPrivateField) op()          {}
func (SetPrivateField) op()          {}
func (DefineOwnProperty) op()        {}
func (DefineAccessor) op()           {}
func (GetSuperProperty) op()         {}
func (GetSuperPropertyComputed) op() {}
func (SetSuperProperty) op()         {}
func (SetSuperPropertyComputed) op() {}
func (DeletePropertyByName) op()     {}
func (DeletePropertyByValue) op()    {}
func (CopyDataProperties) op()       {}
