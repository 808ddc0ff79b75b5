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

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// newArrayOf allocates a KindArray object and appends vals, the construction
// idiom pkg/vm/arrayops.go's own newArray/arrayAppend establish for array
// literals — reused here for every built-in that materializes a result
// array (Object.keys, Array.prototype.map, ...).
func (c ctx) newArrayOf(vals []value.Value) value.Value {
	proto := c.r.IntrinsicPrototype("Array")
	obj := object.New(c.r.ShapeRoot(), "Array", object.KindArray, proto)
	obj.InitArrayLength()
	ref := heap.NewGc[value.HeapObject](c.r.Heap(), obj, nil)
	obj.SetSelf(ref)

	for _, v := range vals {
		arrayPush(c.r, obj, v)
	}

	return value.Obj(ref)
}

func arrayPush(rt object.Runtime, obj *object.Object, v value.Value) {
	idx := value.StringKey(value.NewString(strconv.FormatUint(uint64(obj.Length()), 10)))
	_ = obj.Set(rt, idx, v, value.Undefined(), false)
}

// arrHandle is the minimal array handle groupBy's shared grouping loop (and
// any other built-in that must append to an existing result array by
// value.Value rather than by *object.Object) needs: push one more element
// onto an already-constructed array Value.
type arrHandle struct {
	rt  object.Runtime
	obj *object.Object
}

func arrOfRT(rt object.Runtime, v value.Value) arrHandle {
	h, _ := v.AsObject()
	o, _ := h.Get().(*object.Object)

	return arrHandle{rt: rt, obj: o}
}

func (a arrHandle) pushValue(v value.Value) {
	if a.obj == nil {
		return
	}

	arrayPush(a.rt, a.obj, v)
}

// installArray builds %Array.prototype% and the Array constructor (§23.1):
// the constructor, Array.isArray/of/from, and the prototype's mutator/
// accessor/iteration methods.
func installArray(r *realm.Realm) {
	c := newCtx(r)

	proto := object.New(r.ShapeRoot(), "Array", object.KindArray, r.IntrinsicPrototype("Object"))
	proto.InitArrayLength()
	protoRef := heap.NewGc[value.HeapObject](r.Heap(), proto, nil)
	proto.SetSelf(protoRef)
	r.SetIntrinsic("%Array.prototype%", value.Obj(protoRef))

	ctorVal, ctorObj := c.nativeConstructor("Array", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 1 && (args[0].Kind() == value.KindInteger || args[0].Kind() == value.KindRational) {
			n := args[0].Float64()
			if err := object.ValidateLength(n); err != nil {
				return value.Value{}, throwRange(rt, "invalid array length")
			}

			arr := c.newArrayOf(nil)
			h, _ := arr.AsObject()
			o, _ := h.Get().(*object.Object)
			o.SetLength(uint32(n))

			return arr, nil
		}

		return c.newArrayOf(args), nil
	})
	c.definePrototype("Array", ctorVal, ctorObj, proto, protoRef)

	c.method(ctorObj, "isArray", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		h, ok := arg(args, 0).AsObject()
		if !ok {
			return value.Bool(false), nil
		}

		o, ok := h.Get().(*object.Object)

		return value.Bool(ok && o.Kind() == object.KindArray), nil
	})

	c.method(ctorObj, "of", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return c.newArrayOf(args), nil
	})

	c.method(ctorObj, "from", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		src := arg(args, 0)
		mapFn := arg(args, 1)

		var items []value.Value
		var err error

		if _, ok := src.AsObject(); ok {
			if method, gerr := getMethod(rt, src, symKey(value.SymbolIterator)); gerr != nil {
				return value.Value{}, gerr
			} else if method != nil {
				items, err = iterableToSlice(rt, src)
			} else {
				items, err = arrayLikeToSlice(rt, src)
			}
		} else if !src.IsNullish() {
			items, err = arrayLikeToSlice(rt, src)
		}

		if err != nil {
			return value.Value{}, err
		}

		if isCallable(mapFn) {
			mapped := make([]value.Value, len(items))
			for i, item := range items {
				mv, err := callValue(rt, mapFn, value.Undefined(), []value.Value{item, value.Int(int32(i))})
				if err != nil {
					return value.Value{}, err
				}
				mapped[i] = mv
			}
			items = mapped
		}

		return c.newArrayOf(items), nil
	})

	installArrayPrototype(c, proto)
}

func arrayOf(rt object.Runtime, this value.Value) (*object.Object, heap.Gc[value.HeapObject], error) {
	h, ok := this.AsObject()
	if !ok {
		return nil, heap.Gc[value.HeapObject]{}, throwType(rt, "not an array")
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, heap.Gc[value.HeapObject]{}, throwType(rt, "not an array")
	}

	return o, h, nil
}

func installArrayPrototype(c ctx, proto *object.Object) {
	r := c.r

	c.method(proto, "push", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, _, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		for _, v := range args {
			arrayPush(rt, o, v)
		}

		return value.Int(int32(o.Length())), nil
	})

	c.method(proto, "pop", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		n := o.Length()
		if n == 0 {
			return value.Undefined(), nil
		}

		v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(n-1), 10))), value.Obj(h))
		o.SetLength(n - 1)

		return v, nil
	})

	c.method(proto, "shift", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		n := o.Length()
		if n == 0 {
			return value.Undefined(), nil
		}

		first, _ := o.Get(rt, value.StringKey(value.NewString("0")), value.Obj(h))

		for i := uint32(1); i < n; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			_ = o.Set(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i-1), 10))), v, value.Obj(h), false)
		}

		o.SetLength(n - 1)

		return first, nil
	})

	c.method(proto, "unshift", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		n := o.Length()
		shift := uint32(len(args))

		for i := n; i > 0; i-- {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i-1), 10))), value.Obj(h))
			_ = o.Set(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i-1+shift), 10))), v, value.Obj(h), false)
		}

		for i, v := range args {
			_ = o.Set(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), v, value.Obj(h), false)
		}

		o.SetLength(n + shift)

		return value.Int(int32(n + shift)), nil
	})

	c.method(proto, "slice", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		n := int64(o.Length())
		start, end, err := sliceRange(rt, args, n)
		if err != nil {
			return value.Value{}, err
		}

		var out []value.Value
		for i := start; i < end; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatInt(i, 10))), value.Obj(h))
			out = append(out, v)
		}

		return c.newArrayOf(out), nil
	})

	c.method(proto, "splice", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		n := int64(o.Length())
		start, err := relativeIndex(rt, arg(args, 0), n, 0)
		if err != nil {
			return value.Value{}, err
		}

		deleteCount := n - start
		if len(args) >= 2 {
			dc, err := toInteger(rt, args[1])
			if err != nil {
				return value.Value{}, err
			}
			if dc < 0 {
				dc = 0
			}
			if dc > n-start {
				dc = n - start
			}
			deleteCount = dc
		}

		var items []value.Value
		for i := int64(0); i < deleteCount; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatInt(start+i, 10))), value.Obj(h))
			items = append(items, v)
		}

		var insert []value.Value
		if len(args) > 2 {
			insert = args[2:]
		}

		var tail []value.Value
		for i := start + deleteCount; i < n; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatInt(i, 10))), value.Obj(h))
			tail = append(tail, v)
		}

		newLen := start
		for _, v := range insert {
			_ = o.Set(rt, value.StringKey(value.NewString(strconv.FormatInt(newLen, 10))), v, value.Obj(h), false)
			newLen++
		}
		for _, v := range tail {
			_ = o.Set(rt, value.StringKey(value.NewString(strconv.FormatInt(newLen, 10))), v, value.Obj(h), false)
			newLen++
		}

		o.SetLength(uint32(newLen))

		return c.newArrayOf(items), nil
	})

	c.method(proto, "concat", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		var out []value.Value

		appendOne := func(v value.Value) error {
			if h, ok := v.AsObject(); ok {
				if o, ok := h.Get().(*object.Object); ok && o.Kind() == object.KindArray {
					for i := uint32(0); i < o.Length(); i++ {
						item, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), v)
						out = append(out, item)
					}
					return nil
				}
			}
			out = append(out, v)
			return nil
		}

		if err := appendOne(this); err != nil {
			return value.Value{}, err
		}
		for _, a := range args {
			if err := appendOne(a); err != nil {
				return value.Value{}, err
			}
		}

		return c.newArrayOf(out), nil
	})

	c.method(proto, "join", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		sep := ","
		if s := arg(args, 0); !s.IsUndefined() {
			sep, err = toGoString(rt, s)
			if err != nil {
				return value.Value{}, err
			}
		}

		var sb []string
		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			if v.IsNullish() {
				sb = append(sb, "")
				continue
			}
			s, err := toGoString(rt, v)
			if err != nil {
				return value.Value{}, err
			}
			sb = append(sb, s)
		}

		out := ""
		for i, s := range sb {
			if i > 0 {
				out += sep
			}
			out += s
		}

		return value.StrFromGo(out), nil
	})

	c.method(proto, "reverse", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		n := o.Length()
		for i, j := uint32(0), n; i < j; i, j = i+1, j-1 {
			ki := value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10)))
			kj := value.StringKey(value.NewString(strconv.FormatUint(uint64(j-1), 10)))
			vi, _ := o.Get(rt, ki, value.Obj(h))
			vj, _ := o.Get(rt, kj, value.Obj(h))
			_ = o.Set(rt, ki, vj, value.Obj(h), false)
			_ = o.Set(rt, kj, vi, value.Obj(h), false)
		}

		return this, nil
	})

	c.method(proto, "indexOf", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		target := arg(args, 0)
		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			if value.StrictEquals(v, target) {
				return value.Int(int32(i)), nil
			}
		}

		return value.Int(-1), nil
	})

	c.method(proto, "includes", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		target := arg(args, 0)
		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			if value.SameValueZero(v, target) {
				return value.Bool(true), nil
			}
		}

		return value.Bool(false), nil
	})

	c.method(proto, "forEach", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			if _, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this}); err != nil {
				return value.Value{}, err
			}
		}

		return value.Undefined(), nil
	})

	c.method(proto, "map", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		out := make([]value.Value, 0, o.Length())
		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			res, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this})
			if err != nil {
				return value.Value{}, err
			}
			out = append(out, res)
		}

		return c.newArrayOf(out), nil
	})

	c.method(proto, "filter", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		var out []value.Value
		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			res, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this})
			if err != nil {
				return value.Value{}, err
			}
			if res.ToBoolean() {
				out = append(out, v)
			}
		}

		return c.newArrayOf(out), nil
	})

	c.method(proto, "find", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			res, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this})
			if err != nil {
				return value.Value{}, err
			}
			if res.ToBoolean() {
				return v, nil
			}
		}

		return value.Undefined(), nil
	})

	c.method(proto, "findIndex", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			res, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this})
			if err != nil {
				return value.Value{}, err
			}
			if res.ToBoolean() {
				return value.Int(int32(i)), nil
			}
		}

		return value.Int(-1), nil
	})

	c.method(proto, "some", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			res, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this})
			if err != nil {
				return value.Value{}, err
			}
			if res.ToBoolean() {
				return value.Bool(true), nil
			}
		}

		return value.Bool(false), nil
	})

	c.method(proto, "every", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		for i := uint32(0); i < o.Length(); i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), value.Obj(h))
			res, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this})
			if err != nil {
				return value.Value{}, err
			}
			if !res.ToBoolean() {
				return value.Bool(false), nil
			}
		}

		return value.Bool(true), nil
	})

	c.method(proto, "reduce", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return arrayReduce(rt, this, args, false)
	})

	c.method(proto, "reduceRight", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return arrayReduce(rt, this, args, true)
	})

	c.method(proto, "flat", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		depth := int64(1)
		if d := arg(args, 0); !d.IsUndefined() {
			var err error
			depth, err = toInteger(rt, d)
			if err != nil {
				return value.Value{}, err
			}
		}

		out, err := flattenInto(rt, this, depth, nil)
		if err != nil {
			return value.Value{}, err
		}

		return c.newArrayOf(out), nil
	})

	c.method(proto, "sort", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		n := int(o.Length())
		items := make([]value.Value, n)
		for i := 0; i < n; i++ {
			items[i], _ = o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Obj(h))
		}

		cmp := arg(args, 0)

		var sortErr error
		bubbleSort(items, func(a, b value.Value) bool {
			if sortErr != nil {
				return false
			}
			if isCallable(cmp) {
				res, err := callValue(rt, cmp, value.Undefined(), []value.Value{a, b})
				if err != nil {
					sortErr = err
					return false
				}
				return res.Float64() > 0
			}
			as, _ := toGoString(rt, a)
			bs, _ := toGoString(rt, b)
			return as > bs
		})

		if sortErr != nil {
			return value.Value{}, sortErr
		}

		for i := 0; i < n; i++ {
			_ = o.Set(rt, value.StringKey(value.NewString(strconv.Itoa(i))), items[i], value.Obj(h), false)
		}

		return this, nil
	})

	c.symbolMethod(proto, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return newArrayIterator(r, this, arrayIterValues), nil
	})

	c.method(proto, "entries", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return newArrayIterator(r, this, arrayIterEntries), nil
	})

	c.method(proto, "keys", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return newArrayIterator(r, this, arrayIterKeys), nil
	})

	c.method(proto, "values", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return newArrayIterator(r, this, arrayIterValues), nil
	})

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		fn, err := objGet(rt, this, "join")
		if err != nil {
			return value.Value{}, err
		}

		if !isCallable(fn) {
			fn, err = objGet(rt, value.Obj(r.ObjectPrototype()), "toString")
			if err != nil {
				return value.Value{}, err
			}
		}

		return callValue(rt, fn, this, nil)
	})
}

// bubbleSort is a plain stable sort over items, used by Array.prototype.sort
// since the comparator may throw mid-comparison (less returns false once
// sortErr is set, short-circuiting the remaining comparisons harmlessly).
func bubbleSort(items []value.Value, less func(a, b value.Value) bool) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(items[j-1], items[j]); j-- {
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
}

func arrayReduce(rt object.Runtime, this value.Value, args []value.Value, fromRight bool) (value.Value, error) {
	o, h, err := arrayOf(rt, this)
	if err != nil {
		return value.Value{}, err
	}

	callback := arg(args, 0)
	n := int(o.Length())

	idxs := make([]int, n)
	for i := range idxs {
		if fromRight {
			idxs[i] = n - 1 - i
		} else {
			idxs[i] = i
		}
	}

	var acc value.Value
	start := 0

	if len(args) > 1 {
		acc = args[1]
	} else {
		if n == 0 {
			return value.Value{}, throwType(rt, "reduce of empty array with no initial value")
		}
		acc, _ = o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(idxs[0]))), value.Obj(h))
		start = 1
	}

	for _, i := range idxs[start:] {
		v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Obj(h))
		res, err := callValue(rt, callback, value.Undefined(), []value.Value{acc, v, value.Int(int32(i)), this})
		if err != nil {
			return value.Value{}, err
		}
		acc = res
	}

	return acc, nil
}

func flattenInto(rt object.Runtime, v value.Value, depth int64, out []value.Value) ([]value.Value, error) {
	h, ok := v.AsObject()
	if !ok {
		return append(out, v), nil
	}

	o, ok := h.Get().(*object.Object)
	if !ok || o.Kind() != object.KindArray {
		return append(out, v), nil
	}

	for i := uint32(0); i < o.Length(); i++ {
		item, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(i), 10))), v)

		if depth > 0 {
			if ih, ok := item.AsObject(); ok {
				if io, ok := ih.Get().(*object.Object); ok && io.Kind() == object.KindArray {
					var err error
					out, err = flattenInto(rt, item, depth-1, out)
					if err != nil {
						return nil, err
					}
					continue
				}
			}
		}

		out = append(out, item)
	}

	return out, nil
}

// sliceRange resolves slice(start, end)'s two optional relative-index
// arguments against a collection of length n, per §23.1.3.28's
// RelativeIndex clamp.
func sliceRange(rt object.Runtime, args []value.Value, n int64) (int64, int64, error) {
	start, err := relativeIndex(rt, arg(args, 0), n, 0)
	if err != nil {
		return 0, 0, err
	}

	end := n
	if len(args) > 1 && !args[1].IsUndefined() {
		end, err = relativeIndex(rt, args[1], n, n)
		if err != nil {
			return 0, 0, err
		}
	}

	if end < start {
		end = start
	}

	return start, end, nil
}

func relativeIndex(rt object.Runtime, v value.Value, n, def int64) (int64, error) {
	if v.IsUndefined() {
		return def, nil
	}

	i, err := toInteger(rt, v)
	if err != nil {
		return 0, err
	}

	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	} else if i > n {
		i = n
	}

	return i, nil
}

type arrayIterKind uint8

const (
	arrayIterKeys arrayIterKind = iota
	arrayIterValues
	arrayIterEntries
)

// newArrayIterator builds a stateful plain-object iterator (its own `next`
// closure holds the index in a Go closure variable) rather than routing
// through pkg/vm's iteratorRecord machinery, matching the same
// "a built-in's own protocol objects don't need suspension" reasoning as
// iterableToSlice.
func newArrayIterator(r *realm.Realm, arr value.Value, kind arrayIterKind) value.Value {
	c := newCtx(r)
	idx := uint32(0)

	iterObj := object.New(r.ShapeRoot(), "Array Iterator", object.KindIterator, r.IntrinsicPrototype("Iterator"))
	ref := heap.NewGc[value.HeapObject](r.Heap(), iterObj, nil)
	iterObj.SetSelf(ref)

	c.method(iterObj, "next", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, h, err := arrayOf(rt, arr)
		if err != nil {
			return value.Value{}, err
		}

		if idx >= o.Length() {
			return c.iterResult(value.Undefined(), true), nil
		}

		k := idx
		idx++

		v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatUint(uint64(k), 10))), value.Obj(h))

		switch kind {
		case arrayIterKeys:
			return c.iterResult(value.Int(int32(k)), false), nil
		case arrayIterEntries:
			return c.iterResult(c.newArrayOf([]value.Value{value.Int(int32(k)), v}), false), nil
		default:
			return c.iterResult(v, false), nil
		}
	})

	c.symbolMethod(iterObj, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})

	return value.Obj(ref)
}

// iterResult builds a plain {value, done} iterator-result object (§7.4.7's
// CreateIterResultObject), the shape every hand-rolled built-in iterator
// (Array/Map/Set's entries/keys/values) returns from its own `next`.
func (c ctx) iterResult(v value.Value, done bool) value.Value {
	obj := c.newObject(c.r.IntrinsicPrototype("Object"))
	ref := obj.Self()

	_, _ = obj.DefineOwnProperty(c.r, key("value"), object.PropertyDescriptor{
		Value: v, HasValue: true, Writable: true, Enumerable: true, Configurable: true,
	})
	_, _ = obj.DefineOwnProperty(c.r, key("done"), object.PropertyDescriptor{
		Value: value.Bool(done), HasValue: true, Writable: true, Enumerable: true, Configurable: true,
	})

	return value.Obj(ref)
}
