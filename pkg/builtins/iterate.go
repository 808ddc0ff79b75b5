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
	"strconv"

	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// iterableToSlice drains v's iterator protocol (§7.4.2's GetIterator plus
// repeated IteratorStep) into a plain Go slice — the shape every built-in
// that accepts "an iterable" (Array.from, Object.fromEntries, Map/Set
// constructors, Promise.all, ...) needs, without pkg/vm's iteratorRecord
// machinery (which exists so a *suspended* for-of loop can resume later; a
// built-in consuming a whole sequence inside one native call never needs
// to suspend mid-iteration).
func iterableToSlice(rt object.Runtime, v value.Value) ([]value.Value, error) {
	method, err := getMethod(rt, v, symKey(value.SymbolIterator))
	if err != nil {
		return nil, err
	}

	if method == nil {
		return nil, throwType(rt, "value is not iterable")
	}

	iterVal, err := callValue(rt, *method, v, nil)
	if err != nil {
		return nil, err
	}

	next, err := getMethod(rt, iterVal, key("next"))
	if err != nil {
		return nil, err
	}

	if next == nil {
		return nil, throwType(rt, "iterator has no next method")
	}

	var out []value.Value

	for {
		res, err := callValue(rt, *next, iterVal, nil)
		if err != nil {
			return nil, err
		}

		if !res.IsObject() {
			return nil, throwType(rt, "iterator result is not an object")
		}

		done, err := objGet(rt, res, "done")
		if err != nil {
			return nil, err
		}

		if done.ToBoolean() {
			return out, nil
		}

		item, err := objGet(rt, res, "value")
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}
}

// getMethod looks up a property on v and returns it only if callable,
// matching GetMethod (§7.3.11): nil (not an error) for undefined/null,
// matching the "iterable has no Symbol.iterator" and "iterator result has
// no matching key" cases that are ordinary absence, not failure.
func getMethod(rt object.Runtime, v value.Value, k value.PropertyKey) (*value.Value, error) {
	h, ok := v.AsObject()
	if !ok {
		return nil, nil
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, nil
	}

	fn, err := o.Get(rt, k, v)
	if err != nil {
		return nil, err
	}

	if fn.IsNullish() {
		return nil, nil
	}

	if !isCallable(fn) {
		return nil, throwType(rt, "property is not callable")
	}

	return &fn, nil
}

// arrayLikeToSlice implements CreateListFromArrayLike (§7.3.23): reads a
// "length" property and every integer-indexed own property up to it,
// without going through the iterator protocol — the argument-conversion
// Function.prototype.apply uses (apply's second argument is array-like, not
// necessarily iterable).
func arrayLikeToSlice(rt object.Runtime, v value.Value) ([]value.Value, error) {
	h, ok := v.AsObject()
	if !ok {
		return nil, throwType(rt, "argument is not an array-like object")
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, throwType(rt, "argument is not an array-like object")
	}

	lenV, err := o.Get(rt, key("length"), v)
	if err != nil {
		return nil, err
	}

	n, err := toInteger(rt, lenV)
	if err != nil {
		return nil, err
	}

	if n < 0 {
		n = 0
	}

	out := make([]value.Value, 0, n)

	for i := int64(0); i < n; i++ {
		item, err := o.Get(rt, key(strconv.FormatInt(i, 10)), v)
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}

	return out, nil
}
