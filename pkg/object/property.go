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
	"sort"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/shape"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// PropertyDescriptor mirrors the spec's Property Descriptor record for
// interop with Object.getOwnPropertyDescriptor/defineProperty.
type PropertyDescriptor struct {
	Value        value.Value
	Get, Set     value.Value
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
	HasValue     bool
}

func asObjectPtr(h heap.Gc[value.HeapObject]) (*Object, bool) {
	if h.IsZero() {
		return nil, false
	}

	o, ok := h.Get().(*Object)

	return o, ok
}

// Get implements the abstract operation [[Get]] (§4.7): look up key on o,
// walking the prototype chain, invoking getters with the given receiver.
func (o *Object) Get(rt Runtime, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	if o.kind == KindProxy {
		return o.proxyGet(rt, key, receiver)
	}

	if idx, ok := value.IsArrayIndex(key); ok {
		if o.kind == KindTypedArray {
			// §10.4.5.8: a valid-but-out-of-range numeric index on an
			// Integer-Indexed exotic object never falls through to the
			// prototype chain — it is simply undefined.
			if v, ok := o.typedArrayGet(idx); ok {
				return v, nil
			}

			return value.Undefined(), nil
		}

		if o.indexed != nil {
			if v, ok := o.indexedGet(idx); ok {
				return v, nil
			}
			// fall through to prototype chain for holes
		}
	}

	if d, ok := o.shp.Lookup(key); ok {
		switch d.Kind {
		case shape.KindData:
			return o.slot(d.SlotIndex), nil
		case shape.KindAccessor:
			getter := o.slot(d.GetterSlot)
			if getter.IsUndefined() {
				return value.Undefined(), nil
			}

			return callFunctionValue(rt, getter, receiver, nil)
		}
	}

	proto, ok := asObjectPtr(o.shp.Prototype())
	if !ok {
		return value.Undefined(), nil
	}

	return proto.Get(rt, key, receiver)
}

// Set implements the abstract operation [[Set]] (§4.7). strict controls
// whether a failed write throws (strict mode) or is silently dropped
// (§8's quantified invariant on writes).
func (o *Object) Set(rt Runtime, key value.PropertyKey, v value.Value, receiver value.Value, strict bool) error {
	if o.kind == KindProxy {
		return o.proxySet(rt, key, v, receiver, strict)
	}

	if idx, ok := value.IsArrayIndex(key); ok {
		if o.kind == KindTypedArray {
			return o.typedArraySet(rt, idx, v)
		}

		if o.indexed != nil || o.kind == KindArray {
			return o.indexedSet(rt, idx, v, strict)
		}
	}

	if d, ok := o.shp.Lookup(key); ok {
		switch d.Kind {
		case shape.KindData:
			if !d.Attrs.Writable {
				return writeFailure(rt, strict, key)
			}

			o.setSlot(d.SlotIndex, v)

			return nil
		case shape.KindAccessor:
			setter := o.slot(d.SetterSlot)
			if setter.IsUndefined() {
				return writeFailure(rt, strict, key)
			}

			_, err := callFunctionValue(rt, setter, receiver, []value.Value{v})

			return err
		}
	}

	if proto, ok := asObjectPtr(o.shp.Prototype()); ok {
		return proto.Set(rt, key, v, receiver, strict)
	}

	if !o.extensible {
		return writeFailure(rt, strict, key)
	}

	o.shp = o.shp.AddDataProperty(key, shape.Attrs{Writable: true, Enumerable: true, Configurable: true})

	return o.Set(rt, key, v, receiver, strict)
}

func writeFailure(rt Runtime, strict bool, key value.PropertyKey) error {
	if !strict {
		return nil
	}

	if rt == nil {
		return fmt.Errorf("TypeError: cannot assign to read only property %q", key.HashKey())
	}

	_ = rt.NewError("TypeError", fmt.Sprintf("cannot assign to read only property %q", key.HashKey()))

	return fmt.Errorf("TypeError: cannot assign to read only property %q", key.HashKey())
}

// HasProperty implements [[HasProperty]], walking the prototype chain.
func (o *Object) HasProperty(key value.PropertyKey) bool {
	if idx, ok := value.IsArrayIndex(key); ok {
		if o.kind == KindTypedArray {
			_, ok := o.typedArrayGet(idx)

			return ok
		}

		if o.indexed != nil {
			if _, ok := o.indexedGet(idx); ok {
				return true
			}
		}
	}

	if _, ok := o.shp.Lookup(key); ok {
		return true
	}

	if proto, ok := asObjectPtr(o.shp.Prototype()); ok {
		return proto.HasProperty(key)
	}

	return false
}

// GetOwnProperty implements [[GetOwnProperty]], returning only own
// properties (never consulting the prototype chain).
func (o *Object) GetOwnProperty(key value.PropertyKey) (PropertyDescriptor, bool) {
	if idx, ok := value.IsArrayIndex(key); ok {
		if o.kind == KindTypedArray {
			v, ok := o.typedArrayGet(idx)
			if !ok {
				return PropertyDescriptor{}, false
			}

			return PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true, HasValue: true}, true
		}

		if o.indexed != nil {
			if v, ok := o.indexedGet(idx); ok {
				return PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true, HasValue: true}, true
			}

			return PropertyDescriptor{}, false
		}
	}

	d, ok := o.shp.Lookup(key)
	if !ok {
		return PropertyDescriptor{}, false
	}

	switch d.Kind {
	case shape.KindData:
		return PropertyDescriptor{
			Value: o.slot(d.SlotIndex), HasValue: true,
			Writable: d.Attrs.Writable, Enumerable: d.Attrs.Enumerable, Configurable: d.Attrs.Configurable,
		}, true
	default:
		return PropertyDescriptor{
			Get: o.slot(d.GetterSlot), Set: o.slot(d.SetterSlot), IsAccessor: true,
			Enumerable: d.Attrs.Enumerable, Configurable: d.Attrs.Configurable,
		}, true
	}
}

// DefineOwnProperty implements [[DefineOwnProperty]] (a simplified but
// spec-faithful ValidateAndApplyPropertyDescriptor for the common cases:
// creating a fresh property on an extensible object, and redefining an
// existing configurable one).
func (o *Object) DefineOwnProperty(rt Runtime, key value.PropertyKey, desc PropertyDescriptor) (bool, error) {
	if idx, ok := value.IsArrayIndex(key); ok && o.kind == KindTypedArray {
		// §10.4.5.3's ValidateAndApplyPropertyDescriptor special case: an
		// accessor descriptor can never apply to a valid integer index.
		// A data descriptor with no value just reports whether the index
		// is currently in range; one with a value writes through exactly
		// like [[Set]] (every element is always writable/enumerable/
		// configurable, so there is nothing else to validate).
		if desc.IsAccessor {
			return false, nil
		}

		if !desc.HasValue {
			_, inRange := o.typedArrayGet(idx)

			return inRange, nil
		}

		if err := o.typedArraySet(rt, idx, desc.Value); err != nil {
			return false, err
		}

		_, inRange := o.typedArrayGet(idx)

		return inRange, nil
	}

	existing, has := o.GetOwnProperty(key)

	if has && !existing.Configurable {
		if desc.IsAccessor != existing.IsAccessor {
			return false, nil
		}

		if !desc.IsAccessor && desc.HasValue && !existing.Writable && !value.SameValue(desc.Value, existing.Value) {
			return false, nil
		}
	}

	if idx, ok := value.IsArrayIndex(key); ok && (o.indexed != nil || o.kind == KindArray) {
		if o.indexed == nil {
			o.indexed = newIndexedStorage()
		}

		o.indexedStore(idx, desc.Value)

		return true, nil
	}

	attrs := shape.Attrs{Writable: desc.Writable, Enumerable: desc.Enumerable, Configurable: desc.Configurable}

	if has {
		o.shp = o.shp.ChangeAttrs(key, attrs)
		if !desc.IsAccessor && desc.HasValue {
			if d, ok := o.shp.Lookup(key); ok && d.Kind == shape.KindData {
				o.setSlot(d.SlotIndex, desc.Value)
			}
		}

		return true, nil
	}

	if !o.extensible {
		return false, nil
	}

	if desc.IsAccessor {
		getSlot, setSlot := len(o.slots), len(o.slots)+1
		o.shp = o.shp.AddAccessorProperty(key, attrs, getSlot, setSlot)
		o.setSlot(getSlot, desc.Get)
		o.setSlot(setSlot, desc.Set)

		return true, nil
	}

	o.shp = o.shp.AddDataProperty(key, attrs)
	if d, ok := o.shp.Lookup(key); ok {
		o.setSlot(d.SlotIndex, desc.Value)
	}

	return true, nil
}

// Delete implements [[Delete]].
func (o *Object) Delete(key value.PropertyKey) bool {
	if idx, ok := value.IsArrayIndex(key); ok {
		// §10.4.5.10: a valid integer index can never be deleted;
		// an out-of-range one vacuously succeeds (there was nothing there).
		if o.kind == KindTypedArray {
			_, inRange := o.typedArrayGet(idx)

			return !inRange
		}

		if o.indexed != nil {
			o.indexedDelete(idx)
			return true
		}
	}

	d, ok := o.shp.Lookup(key)
	if !ok {
		return true
	}

	if !d.Attrs.Configurable {
		return false
	}

	o.shp = o.shp.DeleteProperty(key)

	return true
}

// OwnPropertyKeys implements [[OwnPropertyKeys]]'s ordering rule: integer
// indices in ascending order, then string keys in insertion order, then
// symbol keys in insertion order.
func (o *Object) OwnPropertyKeys() []value.PropertyKey {
	var keys []value.PropertyKey

	if o.kind == KindTypedArray {
		td := o.data.(*TypedArrayData)
		for i := 0; i < td.Length; i++ {
			keys = append(keys, value.StringKey(value.NewString(fmt.Sprint(i))))
		}
	}

	if o.indexed != nil {
		for i, v := range o.indexed.dense {
			if !o.indexed.holes[i] {
				_ = v

				keys = append(keys, value.StringKey(value.NewString(fmt.Sprint(i))))
			}
		}

		for idx := range o.indexed.sparse {
			keys = append(keys, value.StringKey(value.NewString(fmt.Sprint(idx))))
		}
	}

	var symbolKeys []value.PropertyKey

	for _, d := range o.shp.Properties() {
		if d.Key.IsSymbol() {
			symbolKeys = append(symbolKeys, d.Key)
		} else {
			keys = append(keys, d.Key)
		}
	}

	// Sparse indices come out of a map, and an ordinary object keeps integer
	// keys in its shape: move every integer index ahead of the string keys in
	// ascending order, keeping insertion order among the rest.
	sort.SliceStable(keys, func(i, j int) bool {
		a, aIdx := value.IsArrayIndex(keys[i])
		b, bIdx := value.IsArrayIndex(keys[j])
		if aIdx && bIdx {
			return a < b
		}

		return aIdx && !bIdx
	})

	return append(keys, symbolKeys...)
}

// callFunctionValue is a late-bound hook into the VM's Call, installed via
// SetCallHook by whichever package wires the VM up (pkg/vm), keeping
// pkg/object free of a dependency on pkg/vm/pkg/bytecode per the §2
// dependency order.
var callFunctionValue = func(rt Runtime, fn value.Value, this value.Value, args []value.Value) (value.Value, error) {
	return value.Undefined(), fmt.Errorf("TypeError: no call hook installed")
}

// SetCallHook installs the function used to invoke callable objects from
// within the property machinery (accessor getters/setters, proxy traps).
// pkg/vm calls this once during Context construction.
func SetCallHook(hook func(rt Runtime, fn value.Value, this value.Value, args []value.Value) (value.Value, error)) {
	callFunctionValue = hook
}

// constructFunctionValue is a late-bound hook into the VM's Construct,
// installed via SetConstructHook, for the same dependency-order reason as
// callFunctionValue. Only the Proxy "construct" trap's no-trap fallback and
// bound-function re-construction currently need it.
var constructFunctionValue = func(rt Runtime, ctor value.Value, newTarget value.Value, args []value.Value) (value.Value, error) {
	return value.Undefined(), fmt.Errorf("TypeError: no construct hook installed")
}

// SetConstructHook installs the function used to invoke [[Construct]] from
// within the property machinery (proxy traps, bound-function construction).
// pkg/vm calls this once during VM construction.
func SetConstructHook(hook func(rt Runtime, ctor value.Value, newTarget value.Value, args []value.Value) (value.Value, error)) {
	constructFunctionValue = hook
}
