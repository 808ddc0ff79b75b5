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
package vm

import (
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// ToPrimitive implements value.Coercer (§7.1.1 OrdinaryToPrimitive plus the
// Symbol.toPrimitive exotic dispatch): the VM is the only thing in the
// system that can actually invoke a method (valueOf/toString/@@toPrimitive),
// so it is the natural home for the one hook pkg/value's abstract operations
// call back through whenever they coerce an object.
func (vm *VM) ToPrimitive(v value.Value, hint string) (value.Value, error) {
	h, ok := v.AsObject()
	if !ok {
		return v, nil
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return v, nil
	}

	if sym, ok := vm.realm.Intrinsic("%Symbol.toPrimitive%"); ok {
		fn, err := o.Get(vm.realm, symbolKeyOf(sym), v)
		if err == nil && isCallableValue(fn) {
			if hint == "" {
				hint = "default"
			}

			return vm.Invoke(fn, v, []value.Value{value.Str(value.NewString(hint))})
		}
	}

	methods := []string{"valueOf", "toString"}
	if hint == "string" {
		methods = []string{"toString", "valueOf"}
	}

	for _, name := range methods {
		fn, err := o.Get(vm.realm, value.StringKey(value.NewString(name)), v)
		if err != nil {
			continue
		}

		if !isCallableValue(fn) {
			continue
		}

		res, err := vm.Invoke(fn, v, nil)
		if err != nil {
			return value.Value{}, err
		}

		if !res.IsObject() {
			return res, nil
		}
	}

	return value.Value{}, vm.throw("TypeError", "cannot convert object to primitive value")
}

func isCallableValue(v value.Value) bool {
	h, ok := v.AsObject()
	if !ok {
		return false
	}

	o, ok := h.Get().(*object.Object)

	return ok && o.IsCallable()
}

func symbolKeyOf(v value.Value) value.PropertyKey {
	if v.Kind() == value.KindSymbol {
		return value.SymbolKey(v.Symbol())
	}

	return value.StringKey(value.NewString(""))
}
