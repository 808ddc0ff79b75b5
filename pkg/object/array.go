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
package object

import (
	"fmt"

	"github.com/ecmaforge/ecmaforge/pkg/shape"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

const denseThreshold = 1 << 20

// indexedGet reads element idx, reporting ok=false for holes/out-of-range
// (callers fall back to the prototype chain for holes, per ordinary array
// semantics where a hole is "absent", not "undefined").
func (o *Object) indexedGet(idx uint32) (value.Value, bool) {
	if o.indexed == nil {
		return value.Undefined(), false
	}

	if idx < uint32(len(o.indexed.dense)) {
		if o.indexed.holes[idx] {
			return value.Undefined(), false
		}

		return o.indexed.dense[idx], true
	}

	v, ok := o.indexed.sparse[idx]

	return v, ok
}

// indexedStore writes idx unconditionally and raises length when idx is at
// or beyond it, the same length rule indexedSet applies (used by
// DefineOwnProperty).
func (o *Object) indexedStore(idx uint32, v value.Value) {
	if o.indexed == nil {
		o.indexed = newIndexedStorage()
	}

	o.storeRaw(idx, v)

	if idx+1 > o.indexed.length {
		o.indexed.length = idx + 1
	}
}

func (o *Object) storeRaw(idx uint32, v value.Value) {
	is := o.indexed

	if idx < uint32(len(is.dense)) {
		is.dense[idx] = v
		is.holes[idx] = false

		return
	}

	// Grow the dense run contiguously only while it stays small; beyond
	// that, spill to the sparse map rather than allocating a huge backing
	// array for a sparsely-populated array (§4.7: sparse is permitted).
	if idx == uint32(len(is.dense)) && idx < denseThreshold {
		is.dense = append(is.dense, v)
		is.holes = append(is.holes, false)

		return
	}

	is.sparse[idx] = v
}

// indexedSet implements writing `arr[idx] = v` through [[Set]]'s length
// invariant: writing at or beyond length raises length (§4.7).
func (o *Object) indexedSet(rt Runtime, idx uint32, v value.Value, strict bool) error {
	if o.indexed == nil {
		o.indexed = newIndexedStorage()
	}

	o.storeRaw(idx, v)

	if idx+1 > o.indexed.length {
		o.indexed.length = idx + 1
		o.syncLengthSlot()
	}

	return nil
}

func (o *Object) indexedDelete(idx uint32) {
	if o.indexed == nil {
		return
	}

	if idx < uint32(len(o.indexed.dense)) {
		o.indexed.dense[idx] = value.Undefined()
		o.indexed.holes[idx] = true

		return
	}

	delete(o.indexed.sparse, idx)
}

// Length returns the array's current length.
func (o *Object) Length() uint32 {
	if o.indexed == nil {
		return 0
	}

	return o.indexed.length
}

// SetLength implements `arr.length = n`: deletes every index >= n
// (§4.7's synchronous length invariant).
func (o *Object) SetLength(n uint32) {
	if o.indexed == nil {
		o.indexed = newIndexedStorage()
	}

	if n < o.indexed.length {
		for idx := n; idx < uint32(len(o.indexed.dense)) && idx < o.indexed.length; idx++ {
			o.indexed.dense[idx] = value.Undefined()
			o.indexed.holes[idx] = true
		}

		for idx := range o.indexed.sparse {
			if idx >= n {
				delete(o.indexed.sparse, idx)
			}
		}
	}

	o.indexed.length = n
	o.syncLengthSlot()
}

// syncLengthSlot keeps the shape-backed "length" data slot (if the array's
// shape has allocated one) consistent with the indexedStorage's length
// counter, so plain [[Get]] on the string key "length" sees the same value.
func (o *Object) syncLengthSlot() {
	lengthKey := value.StringKey(value.NewString("length"))

	d, ok := o.shp.Lookup(lengthKey)
	if !ok {
		o.shp = o.shp.AddDataProperty(lengthKey, shape.Attrs{Writable: true})
		d, _ = o.shp.Lookup(lengthKey)
	}

	o.setSlot(d.SlotIndex, value.Int(int32(o.indexed.length)))
}

// InitArrayLength ensures the "length" slot exists and is zero; called once
// by the Array built-in's constructor right after object.New.
func (o *Object) InitArrayLength() {
	o.indexed = newIndexedStorage()
	o.syncLengthSlot()
}

// ValidateLength returns an error for negative/non-integer/overlarge
// lengths, matching the RangeError thrown for `new Array(-1)` etc (§7).
func ValidateLength(n float64) error {
	if n < 0 || n != float64(uint32(n)) || n > 4294967295 {
		return fmt.Errorf("RangeError: invalid array length")
	}

	return nil
}
