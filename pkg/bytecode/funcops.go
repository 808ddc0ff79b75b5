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

// NewFunction pushes a closure over Code, capturing the environment chain
// live at the point this op executes (an ordinary function expression's
// closure, or one of a class's method/accessor/field-initializer thunks).
// IsMethod marks a class method/accessor closure: whatever value sits on top
// of the operand stack at the moment this op runs (the prototype object for
// an instance member, the constructor itself for a static one) becomes the
// new closure's HomeObject for `super` property lookups, left in place below
// the pushed closure exactly as compileClassMethod arranges it.
type NewFunction struct {
	Code     *CodeBlock
	Name     string
	IsArrow  bool
	IsMethod bool
}

// NewClass evaluates ClassDefinitionEvaluation's constructor-and-prototype
// skeleton in one step: pops the superclass constructor first when
// HasSuperClass is true (validating it is either null or itself a
// constructor), builds the prototype object chained to the superclass's
// prototype (or Object.prototype / null), builds the constructor function
// from Ctor chained to the superclass (or Function.prototype), links
// prototype.constructor and constructor.prototype, and pushes the
// constructor. Every method, accessor, static member, and field that
// follows in source order is then attached by later ops against this one
// constructor value. The whole skeleton sits behind one opcode rather than
// being decomposed into primitive steps pkg/vm would have to re-derive at
// every call site.
type NewClass struct {
	Ctor          *CodeBlock
	HasSuperClass bool
}

// PushClassPrototype pushes the current class constructor's (TOS, left in
// place) `.prototype` value, so the ops that follow can attach instance
// methods/accessors to it with the ordinary SetPropertyByName/DefineOwnProperty/
// DefineAccessor family; a Pop discards it once every instance member has
// been attached, restoring the constructor to the top of stack.
type PushClassPrototype struct{}

// PushClassField registers an instance field initializer on the class
// constructor (TOS, left in place): Init runs with the new instance bound as
// `this` during every [[Construct]] call, in the source-order position this
// op occupies relative to the methods surrounding it. Computed indicates the
// field's key was itself evaluated once, at class-definition time, and is
// sitting on the stack just below where this op expects to find it.
type PushClassField struct {
	Name     string
	Computed bool
	Init     *CodeBlock
}

// PushClassFieldPrivate is PushClassField for a `#name` field.
type PushClassFieldPrivate struct {
	Private *object.PrivateName
	Init    *CodeBlock
}

// PushClassPrivateMethod installs a private method, brand-checked the same
// way a private field is, onto every instance at construction time.
type PushClassPrivateMethod struct {
	Private *object.PrivateName
	Code    *CodeBlock
}

// PushClassPrivateGetter installs (or, if a PushClassPrivateSetter for the
// same Private already ran, merges with) a private accessor's getter half.
type PushClassPrivateGetter struct {
	Private *object.PrivateName
	Code    *CodeBlock
}

// PushClassPrivateSetter is PushClassPrivateGetter for the setter half.
type PushClassPrivateSetter struct {
	Private *object.PrivateName
	Code    *CodeBlock
}

func (NewFunction) op()             {}
func (NewClass) op()                {}
func (PushClassPrototype) op()      {}
func (PushClassField) op()          {}
func (PushClassFieldPrivate) op()   {}
func (PushClassPrivateMethod) op()  {}
func (PushClassPrivateGetter) op()  {}
func (PushClassPrivateSetter) op()  {}
