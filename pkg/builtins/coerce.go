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
package builtins

import (
	"math"

	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// coercer implements value.Coercer the same way pkg/vm's VM.ToPrimitive
// does (OrdinaryToPrimitive plus the Symbol.toPrimitive exotic dispatch),
// but routes the actual call through object.Object.Call directly instead of
// a *vm.VM method — built-ins that don't otherwise need a VM (most of Array/
// String/Number's own methods) can still coerce arguments without importing
// pkg/vm.
type coercer struct {
	rt object.Runtime
}

func (c coercer) ToPrimitive(v value.Value, hint string) (value.Value, error) {
	h, ok := v.AsObject()
	if !ok {
		return v, nil
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return v, nil
	}

	if fn, err := o.Get(c.rt, symKey(value.SymbolToPrimitive), v); err == nil && isCallable(fn) {
		if hint == "" {
			hint = "default"
		}

		return callValue(c.rt, fn, v, []value.Value{value.StrFromGo(hint)})
	}

	methods := []string{"valueOf", "toString"}
	if hint == "string" {
		methods = []string{"toString", "valueOf"}
	}

	for _, name := range methods {
		fn, err := o.Get(c.rt, key(name), v)
		if err != nil || !isCallable(fn) {
			continue
		}

		res, err := callValue(c.rt, fn, v, nil)
		if err != nil {
			return value.Value{}, err
		}

		if !res.IsObject() {
			return res, nil
		}
	}

	return value.Value{}, throwType(c.rt, "cannot convert object to primitive value")
}

func toNumber(rt object.Runtime, v value.Value) (value.Value, error) {
	return value.ToNumber(v, coercer{rt})
}

func toNumeric(rt object.Runtime, v value.Value) (value.Value, error) {
	return value.ToNumeric(v, coercer{rt})
}

func toFloat64(rt object.Runtime, v value.Value) (float64, error) {
	n, err := toNumber(rt, v)
	if err != nil {
		return 0, err
	}

	return n.Float64(), nil
}

func toJSString(rt object.Runtime, v value.Value) (value.JSString, error) {
	return value.ToJSString(v, coercer{rt})
}

func toGoString(rt object.Runtime, v value.Value) (string, error) {
	s, err := toJSString(rt, v)
	if err != nil {
		return "", err
	}

	return s.String(), nil
}

func toPropertyKey(rt object.Runtime, v value.Value) (value.PropertyKey, error) {
	return value.ToPropertyKey(v, coercer{rt})
}

func toBoolean(v value.Value) bool { return v.ToBoolean() }

// toInteger implements ToIntegerOrInfinity truncated to a plain int,
// clamping NaN to 0 — the common case for array index / length arguments.
func toInteger(rt object.Runtime, v value.Value) (int64, error) {
	n, err := toFloat64(rt, v)
	if err != nil {
		return 0, err
	}

	if n != n { // NaN
		return 0, nil
	}

	return int64(n), nil
}

// toUint32 implements ToUint32 (§7.1.7): truncate to an integer, then wrap
// modulo 2**32.
func toUint32(rt object.Runtime, v value.Value) (uint32, error) {
	n, err := toFloat64(rt, v)
	if err != nil {
		return 0, err
	}

	if n != n || n == 0 || n == math.Inf(1) || n == math.Inf(-1) {
		return 0, nil
	}

	i := int64(math.Trunc(n))

	return uint32(uint64(i) & 0xFFFFFFFF), nil
}

// toInt32 implements ToInt32 (§7.1.6): ToUint32 reinterpreted as signed.
func toInt32(rt object.Runtime, v value.Value) (int32, error) {
	u, err := toUint32(rt, v)
	if err != nil {
		return 0, err
	}

	return int32(u), nil
}
