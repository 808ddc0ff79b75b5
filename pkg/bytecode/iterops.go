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

// GetIterator pops an iterable and pushes an iterator record obtained via
// Symbol.iterator (or Symbol.asyncIterator, when Async is true, falling
// back to wrapping the sync iterator per the async-from-sync adapter).
type GetIterator struct{ Async bool }

// IteratorNext pops an iterator record (left in place, pushed back
// unchanged) and pushes its next {done, value} step.
type IteratorNext struct{}

// IteratorClose pops an iterator record and calls its `return` method if
// present, discarding the result (used when a for-of loop, destructuring,
// or spread exits early via break/return/throw).
type IteratorClose struct{}

// GetForInIterator pops an object and pushes an iterator record enumerating
// its own and inherited enumerable string property keys (EnumerateObjectProperties),
// stepped the same {done, value} way GetIterator/IteratorNext step any other
// iterator record — letting for-in and for-of share one loop-compiling path
// that differs only in which of these two ops obtains the iterator. Key
// deduplication, enumeration order stability under concurrent mutation, and
// prototype-chain traversal are pkg/vm's concern, not encoded here.
type GetForInIterator struct{}

// Await suspends the current async function/module evaluation until the
// popped value (coerced to a promise) settles, then pushes its fulfillment
// value or throws its rejection reason.
type Await struct{}

// Yield suspends the current generator, pushing the popped value out to the
// caller of .next(); Delegate implements `yield*`, which instead delegates
// the entire remaining iteration protocol to the popped iterable.
type Yield struct{ Delegate bool }

// GeneratorNext resumes a suspended generator CodeBlock invocation with the
// value most recently passed to .next()/.throw()/.return(), used only
// inside pkg/vm's own generator-drive loop rather than emitted by ordinary
// compiled code.
type GeneratorNext struct{}

// CreatePromiseCapability pushes a fresh {promise, resolve, reject} capability
// record, the first step of every async function invocation (§4.10).
type CreatePromiseCapability struct{}

func (GetIterator) op()             {}
func (IteratorNext) op()            {}
func (IteratorClose) op()           {}
func (GetForInIterator) op()        {}
func (Await) op()                   {}
func (Yield) op()                   {}
func (GeneratorNext) op()           {}
func (CreatePromiseCapability) op() {}
