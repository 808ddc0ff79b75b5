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

import (
	"github.com/ecmaforge/ecmaforge/pkg/intern"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// Resolve walks e and its ancestors outward (GetIdentifierReference's
// per-environment HasBinding walk) and returns the first environment that
// declares name, or nil if none does (a genuine free/undeclared reference —
// pkg/vm's GetName raises ReferenceError in that case). HasBinding, not a
// speculative GetBindingValue, is the test: a TDZ-dead `let` must stop the
// walk and fail right there, never fall through to a same-named binding in
// an outer scope.
func Resolve(rt object.Runtime, e *Environment, name intern.Sym) *Environment {
	for env := e; env != nil; env = env.parent {
		if env.HasBinding(rt, name) {
			return env
		}
	}

	return nil
}

// GetName implements pkg/bytecode's GetName op: resolve name through e's
// chain and read its value, or ReferenceError if nothing declares it.
func GetName(rt object.Runtime, e *Environment, name intern.Sym) (value.Value, error) {
	env := Resolve(rt, e, name)
	if env == nil {
		return value.Value{}, referenceError(e, name)
	}

	return env.GetBindingValue(rt, name)
}

// SetName implements pkg/bytecode's SetName op: resolve name through e's
// chain and write v, or — when nothing declares it — create an own
// property on the outermost (global) object record for non-strict code
// (§4.4's legacy "implicit global"), or ReferenceError in strict mode.
func SetName(rt object.Runtime, e *Environment, name intern.Sym, v value.Value, strict bool) error {
	env := Resolve(rt, e, name)
	if env != nil {
		return env.SetMutableBinding(rt, name, v, strict)
	}

	if strict {
		return referenceError(e, name)
	}

	global := outermost(e)

	return global.SetMutableBinding(rt, name, v, false)
}

// DeleteName implements pkg/bytecode's DeleteName op.
func DeleteName(rt object.Runtime, e *Environment, name intern.Sym) bool {
	env := Resolve(rt, e, name)
	if env == nil {
		return true
	}

	return env.DeleteBinding(name)
}

func outermost(e *Environment) *Environment {
	env := e
	for env.parent != nil {
		env = env.parent
	}

	return env
}
