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

// These ops bundle the per-element bookkeeping of destructuring assignment
// (§4.3) that IteratorNext's bare {done, value} record and CopyDataProperties
// don't by themselves capture: once an array pattern's iterator reports
// done, every later element must still bind undefined without calling next
// again, and an object pattern's rest element must copy every own property
// except the ones already destructured.

// IteratorStepOrUndefined pops an iterator record and a "done" boolean
// (done on top), pushing the iterator record back, the (possibly
// newly-true) done flag, and the stepped value — undefined if done was
// already true or this step just reported completion. One array pattern
// element compiles to this op followed by the element's own target
// assignment.
type IteratorStepOrUndefined struct{}

// IteratorRestArray pops an iterator record and its done flag (done on
// top) and pushes a fresh Array of every value the iterator still yields,
// closing it in the process; empty when done is already true. Implements
// an array pattern's rest element (`[a, ...rest]`).
type IteratorRestArray struct{}

// IteratorCloseIfNotDone pops an iterator record and its done flag (done on
// top) and calls the iterator's `return` method only when done is false;
// a no-op otherwise. Runs after the last element of an array pattern that
// has no rest element, since binding fewer elements than the iterable
// yields must still close it.
type IteratorCloseIfNotDone struct{}

// CopyDataPropertiesExcluding pops a source value and copies each of its own
// enumerable properties, except any named in Excluded, onto the object
// beneath, pushing that object back. Implements an object pattern's rest
// element (`{a, ...rest}`), which must omit whatever properties the
// pattern's own (non-computed) keys already destructured.
type CopyDataPropertiesExcluding struct{ Excluded []string }

// ThrowIfNullOrUndefined pops a value and throws a TypeError if it is null
// or undefined; discards it silently otherwise. The compiler Dups the value
// being destructured ahead of this op so object-pattern destructuring's
// upfront RequireObjectCoercible check (§4.3) doesn't disturb it.
type ThrowIfNullOrUndefined struct{}

func (IteratorStepOrUndefined) op()      {}
func (IteratorRestArray) op()            {}
func (IteratorCloseIfNotDone) op()       {}
func (CopyDataPropertiesExcluding) op()  {}
func (ThrowIfNullOrUndefined) op()       {}
