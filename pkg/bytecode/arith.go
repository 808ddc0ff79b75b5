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

// Arithmetic, bitwise, relational, and unary operators: one opcode type per
// operator, each popping its operand(s) and pushing a single result. Logical
// `&&`/`||`/`??` never appear here — they short-circuit, so the compiler
// lowers them to JumpIfTrueKeep/JumpIfFalseKeep/JumpIfNotNullOrUndef plus Pop
// sequences instead (see controlops.go and compileLogicalExpression in
// expr.go).

// Add implements the full abstract `+` operator (§3.1's AddOperation): both
// operands are first converted via ToPrimitive, then the operator performs
// string concatenation if either primitive is a string, numeric addition
// otherwise. This is pkg/vm's job, not a compile-time decision — the
// compiler never knows an operand's runtime type ahead of evaluation.
type Add struct{}
type Sub struct{}
type Mul struct{}
type Div struct{}
type Mod struct{}
type Exp struct{}
type Shl struct{}
type Shr struct{}
type UShr struct{}
type BitAnd struct{}
type BitOr struct{}
type BitXor struct{}

// Equal/StrictEqual and their negations, and the four relational operators.
type Equal struct{}
type NotEqual struct{}
type StrictEqual struct{}
type StrictNotEqual struct{}
type LessThan struct{}
type LessEqual struct{}
type GreaterThan struct{}
type GreaterEqual struct{}

// In implements the `in` operator (pops key-object pair, pushes bool).
type In struct{}

// InstanceOf implements `instanceof`.
type InstanceOf struct{}

// Unary operators: pop one operand, push one result.
type Negate struct{}    // unary `-`
type UnaryPlus struct{} // unary `+` (ToNumeric coercion)
type Not struct{}       // `!`
type BitNot struct{}    // `~`
type TypeOf struct{}    // `typeof` (on an already-evaluated reference)

// TypeOfName implements `typeof identifier` specifically: unlike every other
// read of an unresolved binding, a bare `typeof undeclaredName` must not
// throw a ReferenceError, so the compiler emits this instead of
// GetName+TypeOf whenever the operand is a bare identifier.
type TypeOfName struct{ Name sym }

// Concat always stringifies both operands via ToString (never the
// ToPrimitive-then-maybe-numeric path Add takes), for template literal
// substitution (§4.3's template-literal cooked-string concatenation).
type Concat struct{}

func (Add) op()            {}
func (Concat) op()         {}
func (Sub) op()            {}
func (Mul) op()            {}
func (Div) op()            {}
func (Mod) op()            {}
func (Exp) op()            {}
func (Shl) op()            {}
func (Shr) op()            {}
func (UShr) op()           {}
func (BitAnd) op()         {}
func (BitOr) op()          {}
func (BitXor) op()         {}
func (Equal) op()          {}
func (NotEqual) op()       {}
func (StrictEqual) op()    {}
func (StrictNotEqual) op() {}
func (LessThan) op()       {}
func (LessEqual) op()      {}
func (GreaterThan) op()    {}
func (GreaterEqual) op()   {}
func (In) op()             {}
func (InstanceOf) op()     {}
func (Negate) op()         {}
func (UnaryPlus) op()      {}
func (Not) op()            {}
func (BitNot) op()         {}
func (TypeOf) op()         {}
func (TypeOfName) op()     {}
