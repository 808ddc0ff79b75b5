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
package envrec

import "github.com/ecmaforge/ecmaforge/pkg/value"

// This file is pkg/vm's call-protocol hook into a Function environment's
// `this`/`new.target` lifecycle (§3.4): ordinary calls bind `this`
// immediately at call setup, a derived class constructor leaves it
// Uninitialized until its own super() call runs, and every call records
// new.target whether or not the function reads it.

// BindThisValue initializes e's `this` binding: at ordinary call setup for
// a ThisInitialized function, or from a derived constructor's own super()
// call lifting it out of thisUninitialized. A duplicate super() call is
// rejected as a parse-time early error (never reaches here twice).
func (e *Environment) BindThisValue(v value.Value) {
	e.this = v
	e.thisState = thisInitialized
}

// SetNewTarget records e's `new.target`: undefined for an ordinary call,
// the constructor function object for a `new` expression or a derived
// constructor's super() chain propagating the original new.target through.
func (e *Environment) SetNewTarget(v value.Value) {
	e.newTarget = v
	e.hasNewTarget = true
}

// FunctionObject returns the function object e was created for a call to,
// used for `arguments.callee`-adjacent introspection and as the default
// [[HomeObject]] fallback for a function with no method-defined one.
func (e *Environment) FunctionObject() value.Value { return e.functionObject }
