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

// NewArray pushes a fresh empty Array exotic object.
type NewArray struct{}

// PushArrayElement pops a value and appends it to the array beneath,
// advancing length by one.
type PushArrayElement struct{}

// PushArrayHole advances the array beneath's length by one without adding
// an own property, for an elision (`[, , 1]`).
type PushArrayHole struct{}

// PushArraySpread pops an iterable and appends each of its yielded values to
// the array beneath in turn, advancing length accordingly.
type PushArraySpread struct{}

// RestArgs pushes a fresh Array holding every positional call argument from
// From onward, for a rest parameter (`function f(a, ...rest)`) or the
// unmapped-arguments-object path; never touches the argument list itself.
type RestArgs struct{ From int }

func (NewArray) op()         {}
func (PushArrayElement) op() {}
func (PushArrayHole) op()    {}
func (PushArraySpread) op()  {}
func (RestArgs) op()         {}
