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

// installArrayBuffer wires §25's shared-memory family: %ArrayBuffer%,
// %DataView%, and the nine %TypedArray% subclasses sharing one abstract
// %TypedArray.prototype%. It also installs pkg/object's numeric coercion
// hook (SetNumberHook) since typedArraySet's IntegerIndexedElementSet
// (pkg/object/arraybuffer.go) needs ToNumber's full object-coercion
// semantics, which only this package's coercer (coerce.go) implements.
func installArrayBuffer(r *realm.Realm) {
	object.SetNumberHook(func(rt object.Runtime, v value.Value) (float64, error) {
		return toFloat64(rt, v)
	})

	installArrayBufferCtor(r)
	installDataView(r)
	installTypedArrays(r)
}

func bufferOf(rt object.Runtime, this value.Value, what string) (*object.Object, *object.ArrayBufferData, heap.Gc[value.HeapObject], error) {
	h, ok := this.AsObject()
	if !ok {
		return nil, nil, heap.Gc[value.HeapObject]{}, throwType(rt, "%s called on a non-object", what)
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, nil, heap.Gc[value.HeapObject]{}, throwType(rt, "%s called on a non-object", what)
	}

	ab, ok := o.Data().(*object.ArrayBufferData)
	if !ok {
		return nil, nil, heap.Gc[value.HeapObject]{}, throwType(rt, "%s called on incompatible receiver", what)
	}

	return o, ab, h, nil
}

func installArrayBufferCtor(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("ArrayBuffer", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		n, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if n < 0 {
			return value.Value{}, throwRange(rt, "invalid array buffer length")
		}

		obj := object.New(r.ShapeRoot(), "ArrayBuffer", object.KindArrayBuffer, r.IntrinsicPrototype("ArrayBuffer"))
		obj.SetData(&object.ArrayBufferData{Bytes: make([]byte, n)})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		return value.Obj(ref), nil
	})

	c.definePrototype("ArrayBuffer", ctorVal, ctorObj, proto, protoRef)
	c.define("ArrayBuffer", ctorVal)

	c.method(ctorObj, "isView", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		h, ok := arg(args, 0).AsObject()
		if !ok {
			return value.Bool(false), nil
		}

		o, ok := h.Get().(*object.Object)
		if !ok {
			return value.Bool(false), nil
		}

		switch o.Data().(type) {
		case *object.TypedArrayData, *object.DataViewData:
			return value.Bool(true), nil
		default:
			return value.Bool(false), nil
		}
	})

	c.accessor(proto, "byteLength", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, ab, _, err := bufferOf(rt, this, "ArrayBuffer.prototype.byteLength")
		if err != nil {
			return value.Value{}, err
		}

		if ab.Detached {
			return value.Int(0), nil
		}

		return value.Int(int32(len(ab.Bytes))), nil
	})

	c.method(proto, "slice", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, ab, _, err := bufferOf(rt, this, "ArrayBuffer.prototype.slice")
		if err != nil {
			return value.Value{}, err
		}

		if ab.Detached {
			return value.Value{}, throwType(rt, "cannot slice a detached ArrayBuffer")
		}

		start, end, err := sliceRange(rt, args, int64(len(ab.Bytes)))
		if err != nil {
			return value.Value{}, err
		}

		out := object.New(r.ShapeRoot(), "ArrayBuffer", object.KindArrayBuffer, r.IntrinsicPrototype("ArrayBuffer"))
		bytes := make([]byte, end-start)
		copy(bytes, ab.Bytes[start:end])
		out.SetData(&object.ArrayBufferData{Bytes: bytes})
		ref := heap.NewGc[value.HeapObject](r.Heap(), out, nil)
		out.SetSelf(ref)

		return value.Obj(ref), nil
	})
}

func dataViewOf(rt object.Runtime, this value.Value, what string) (*object.Object, *object.DataViewData, *object.ArrayBufferData, error) {
	h, ok := this.AsObject()
	if !ok {
		return nil, nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, nil, nil, throwType(rt, "%s called on a non-object", what)
	}

	dv, ok := o.Data().(*object.DataViewData)
	if !ok {
		return nil, nil, nil, throwType(rt, "%s called on incompatible receiver", what)
	}

	bo, ok := dv.Buffer.Get().(*object.Object)
	if !ok {
		return nil, nil, nil, throwType(rt, "%s called on incompatible receiver", what)
	}

	ab, ok := bo.Data().(*object.ArrayBufferData)
	if !ok {
		return nil, nil, nil, throwType(rt, "%s called on incompatible receiver", what)
	}

	return o, dv, ab, nil
}

// dataViewElem is one getInt8/setFloat64/... entry: its method-name suffix
// and the TypedArrayKind (which also gives the byte width) the shared codec (pkg/object's ReadBufferElement/
// WriteBufferElement) should switch on.
type dataViewElem struct {
	name string
	kind object.TypedArrayKind
}

var dataViewElems = []dataViewElem{
	{"Int8", object.Int8Array},
	{"Uint8", object.Uint8Array},
	{"Int16", object.Int16Array},
	{"Uint16", object.Uint16Array},
	{"Int32", object.Int32Array},
	{"Uint32", object.Uint32Array},
	{"Float32", object.Float32Array},
	{"Float64", object.Float64Array},
}

func installDataView(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor("DataView", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		bufArg := arg(args, 0)

		bh, ok := bufArg.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "DataView constructor requires an ArrayBuffer argument")
		}

		bo, ok := bh.Get().(*object.Object)
		if !ok {
			return value.Value{}, throwType(rt, "DataView constructor requires an ArrayBuffer argument")
		}

		ab, ok := bo.Data().(*object.ArrayBufferData)
		if !ok {
			return value.Value{}, throwType(rt, "DataView constructor requires an ArrayBuffer argument")
		}

		offset, err := toInteger(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		if offset < 0 || offset > int64(len(ab.Bytes)) {
			return value.Value{}, throwRange(rt, "byteOffset is out of bounds")
		}

		length := int64(len(ab.Bytes)) - offset
		if l := arg(args, 2); !l.IsUndefined() {
			length, err = toInteger(rt, l)
			if err != nil {
				return value.Value{}, err
			}
		}

		if length < 0 || offset+length > int64(len(ab.Bytes)) {
			return value.Value{}, throwRange(rt, "byteLength is out of bounds")
		}

		obj := object.New(r.ShapeRoot(), "DataView", object.KindDataView, r.IntrinsicPrototype("DataView"))
		obj.SetData(&object.DataViewData{Buffer: bh, ByteOffset: int(offset), ByteLength: int(length)})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		return value.Obj(ref), nil
	})

	c.definePrototype("DataView", ctorVal, ctorObj, proto, protoRef)
	c.define("DataView", ctorVal)

	c.accessor(proto, "buffer", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, dv, _, err := dataViewOf(rt, this, "DataView.prototype.buffer")
		if err != nil {
			return value.Value{}, err
		}

		return value.Obj(dv.Buffer), nil
	})

	c.accessor(proto, "byteLength", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, dv, _, err := dataViewOf(rt, this, "DataView.prototype.byteLength")
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(int32(dv.ByteLength)), nil
	})

	c.accessor(proto, "byteOffset", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, dv, _, err := dataViewOf(rt, this, "DataView.prototype.byteOffset")
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(int32(dv.ByteOffset)), nil
	})

	for _, elem := range dataViewElems {
		elem := elem
		size := elem.kind.ElementSize()

		c.method(proto, "get"+elem.name, 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, dv, ab, err := dataViewOf(rt, this, "DataView.prototype.get"+elem.name)
			if err != nil {
				return value.Value{}, err
			}

			off, err := toInteger(rt, arg(args, 0))
			if err != nil {
				return value.Value{}, err
			}

			if off < 0 || int(off)+size > dv.ByteLength {
				return value.Value{}, throwRange(rt, "offset is outside the bounds of the DataView")
			}

			littleEndian := arg(args, 1).ToBoolean()

			return object.ReadBufferElement(ab.Bytes, dv.ByteOffset+int(off), elem.kind, littleEndian), nil
		})

		c.method(proto, "set"+elem.name, 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			_, dv, ab, err := dataViewOf(rt, this, "DataView.prototype.set"+elem.name)
			if err != nil {
				return value.Value{}, err
			}

			off, err := toInteger(rt, arg(args, 0))
			if err != nil {
				return value.Value{}, err
			}

			n, err := toFloat64(rt, arg(args, 1))
			if err != nil {
				return value.Value{}, err
			}

			if off < 0 || int(off)+size > dv.ByteLength {
				return value.Value{}, throwRange(rt, "offset is outside the bounds of the DataView")
			}

			littleEndian := arg(args, 2).ToBoolean()
			object.WriteBufferElement(ab.Bytes, dv.ByteOffset+int(off), elem.kind, n, littleEndian)

			return value.Undefined(), nil
		})
	}
}

func typedArrayOf(rt object.Runtime, this value.Value, what string) (*object.Object, *object.TypedArrayData, heap.Gc[value.HeapObject], error) {
	h, ok := this.AsObject()
	if !ok {
		return nil, nil, heap.Gc[value.HeapObject]{}, throwType(rt, "%s called on a non-object", what)
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil, nil, heap.Gc[value.HeapObject]{}, throwType(rt, "%s called on a non-object", what)
	}

	td, ok := o.Data().(*object.TypedArrayData)
	if !ok {
		return nil, nil, heap.Gc[value.HeapObject]{}, throwType(rt, "%s called on incompatible receiver", what)
	}

	return o, td, h, nil
}

// installTypedArrays builds the shared %TypedArray.prototype% (every
// element-access method all nine flavors have in common) and then one
// constructor/prototype pair per flavor, each prototype chained onto the
// shared one — mirroring the real §23.2 hierarchy (%TypedArray% itself is
// never directly constructible; Int8Array etc. are the constructible
// leaves).
func installTypedArrays(r *realm.Realm) {
	c := newCtx(r)

	sharedProto := c.newObject(r.IntrinsicPrototype("Object"))
	sharedRef := sharedProto.Self()
	r.SetIntrinsic("%TypedArray.prototype%", value.Obj(sharedRef))

	installTypedArrayPrototype(c, sharedProto)

	kinds := []object.TypedArrayKind{
		object.Int8Array, object.Uint8Array, object.Uint8ClampedArray,
		object.Int16Array, object.Uint16Array,
		object.Int32Array, object.Uint32Array,
		object.Float32Array, object.Float64Array,
	}

	for _, kind := range kinds {
		installTypedArrayCtor(c, kind, sharedRef)
	}
}

func installTypedArrayCtor(c ctx, kind object.TypedArrayKind, sharedProto heap.Gc[value.HeapObject]) {
	r := c.r
	name := kind.Name()

	proto := c.newObject(sharedProto)
	protoRef := proto.Self()

	ctorVal, ctorObj := c.nativeConstructor(name, 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		a0 := arg(args, 0)

		// Form 1: new Int8Array(buffer, byteOffset?, length?) — a view over
		// an existing ArrayBuffer (§23.2.5.1 step 4).
		if h, ok := a0.AsObject(); ok {
			if bo, ok := h.Get().(*object.Object); ok {
				if ab, ok := bo.Data().(*object.ArrayBufferData); ok {
					return newTypedArrayView(rt, r, kind, h, ab, arg(args, 1), arg(args, 2), protoRef)
				}

				// Form 2: new Int8Array(typedArray) / new Int8Array(arrayLike)
				// (§23.2.5.1 steps 5-6) — copy elements into a fresh buffer.
				if src, ok := bo.Data().(*object.TypedArrayData); ok {
					vals := make([]float64, src.Length)
					for i := 0; i < src.Length; i++ {
						v, _ := src2float(rt, bo, i)
						vals[i] = v
					}

					return newTypedArrayOwned(rt, r, kind, vals, protoRef)
				}
			}

			items, err := iterableOrArrayLike(rt, a0)
			if err != nil {
				return value.Value{}, err
			}

			vals := make([]float64, len(items))
			for i, item := range items {
				n, err := toFloat64(rt, item)
				if err != nil {
					return value.Value{}, err
				}

				vals[i] = n
			}

			return newTypedArrayOwned(rt, r, kind, vals, protoRef)
		}

		// Form 3: new Int8Array(length) (§23.2.5.1 step 3).
		n, err := toInteger(rt, a0)
		if err != nil {
			return value.Value{}, err
		}

		if n < 0 {
			return value.Value{}, throwRange(rt, "invalid typed array length")
		}

		return newTypedArrayOwned(rt, r, kind, make([]float64, n), protoRef)
	})

	c.definePrototype(name, ctorVal, ctorObj, proto, protoRef)
	c.define(name, ctorVal)

	c.dataValue(ctorObj, "BYTES_PER_ELEMENT", value.Int(int32(kind.ElementSize())), false)
	c.dataValue(proto, "BYTES_PER_ELEMENT", value.Int(int32(kind.ElementSize())), false)
}

func src2float(rt object.Runtime, srcObj *object.Object, i int) (float64, error) {
	v, _ := srcObj.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Value{})
	return toFloat64(rt, v)
}

// iterableOrArrayLike accepts either an iterable (Symbol.iterator present)
// or a plain array-like (a .length property), the same two-form dance
// Array.from (array.go) already performs for its own single source
// argument.
func iterableOrArrayLike(rt object.Runtime, v value.Value) ([]value.Value, error) {
	method, err := getMethod(rt, v, symKey(value.SymbolIterator))
	if err != nil {
		return nil, err
	}

	if method != nil {
		return iterableToSlice(rt, v)
	}

	return arrayLikeToSlice(rt, v)
}

func newTypedArrayOwned(rt object.Runtime, r *realm.Realm, kind object.TypedArrayKind, vals []float64, proto heap.Gc[value.HeapObject]) (value.Value, error) {
	bytes := make([]byte, len(vals)*kind.ElementSize())

	bufObj := object.New(r.ShapeRoot(), "ArrayBuffer", object.KindArrayBuffer, r.IntrinsicPrototype("ArrayBuffer"))
	bufObj.SetData(&object.ArrayBufferData{Bytes: bytes})
	bufRef := heap.NewGc[value.HeapObject](r.Heap(), bufObj, nil)
	bufObj.SetSelf(bufRef)

	for i, v := range vals {
		object.WriteBufferElement(bytes, i*kind.ElementSize(), kind, v, true)
	}

	obj := object.New(r.ShapeRoot(), kind.Name(), object.KindTypedArray, proto)
	obj.SetData(&object.TypedArrayData{Buffer: bufRef, ByteOffset: 0, Length: len(vals), ElemKind: kind})
	ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref), nil
}

func newTypedArrayView(rt object.Runtime, r *realm.Realm, kind object.TypedArrayKind, bufRef heap.Gc[value.HeapObject], ab *object.ArrayBufferData, offArg, lenArg value.Value, proto heap.Gc[value.HeapObject]) (value.Value, error) {
	offset, err := toInteger(rt, offArg)
	if err != nil {
		return value.Value{}, err
	}

	if offset < 0 || offset%int64(kind.ElementSize()) != 0 || offset > int64(len(ab.Bytes)) {
		return value.Value{}, throwRange(rt, "start offset is outside the bounds of the buffer")
	}

	remaining := int64(len(ab.Bytes)) - offset
	length := remaining / int64(kind.ElementSize())

	if !lenArg.IsUndefined() {
		length, err = toInteger(rt, lenArg)
		if err != nil {
			return value.Value{}, err
		}

		if length < 0 || offset+length*int64(kind.ElementSize()) > int64(len(ab.Bytes)) {
			return value.Value{}, throwRange(rt, "invalid typed array length")
		}
	} else if remaining%int64(kind.ElementSize()) != 0 {
		return value.Value{}, throwRange(rt, "buffer length minus the byteOffset is not a multiple of the element size")
	}

	obj := object.New(r.ShapeRoot(), kind.Name(), object.KindTypedArray, proto)
	obj.SetData(&object.TypedArrayData{Buffer: bufRef, ByteOffset: int(offset), Length: int(length), ElemKind: kind})
	ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref), nil
}

func installTypedArrayPrototype(c ctx, proto *object.Object) {
	r := c.r

	c.accessor(proto, "length", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, td, _, err := typedArrayOf(rt, this, "TypedArray.prototype.length")
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(int32(td.Length)), nil
	})

	c.accessor(proto, "byteLength", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, td, _, err := typedArrayOf(rt, this, "TypedArray.prototype.byteLength")
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(int32(td.Length * td.ElemKind.ElementSize())), nil
	})

	c.accessor(proto, "byteOffset", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, td, _, err := typedArrayOf(rt, this, "TypedArray.prototype.byteOffset")
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(int32(td.ByteOffset)), nil
	})

	c.accessor(proto, "buffer", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, td, _, err := typedArrayOf(rt, this, "TypedArray.prototype.buffer")
		if err != nil {
			return value.Value{}, err
		}

		return value.Obj(td.Buffer), nil
	})

	c.method(proto, "set", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.set")
		if err != nil {
			return value.Value{}, err
		}

		offset, err := toInteger(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		src := arg(args, 0)
		items, err := arrayLikeToSlice(rt, src)
		if err != nil {
			return value.Value{}, err
		}

		if offset < 0 || int(offset)+len(items) > td.Length {
			return value.Value{}, throwRange(rt, "offset is out of bounds")
		}

		for i, v := range items {
			if err := o.Set(rt, value.StringKey(value.NewString(strconv.FormatInt(offset+int64(i), 10))), v, value.Obj(h), true); err != nil {
				return value.Value{}, err
			}
		}

		return value.Undefined(), nil
	})

	c.method(proto, "subarray", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		_, td, _, err := typedArrayOf(rt, this, "TypedArray.prototype.subarray")
		if err != nil {
			return value.Value{}, err
		}

		start, end, err := sliceRange(rt, args, int64(td.Length))
		if err != nil {
			return value.Value{}, err
		}

		proto := r.IntrinsicPrototype(td.ElemKind.Name())

		obj := object.New(r.ShapeRoot(), td.ElemKind.Name(), object.KindTypedArray, proto)
		obj.SetData(&object.TypedArrayData{
			Buffer:     td.Buffer,
			ByteOffset: td.ByteOffset + int(start)*td.ElemKind.ElementSize(),
			Length:     int(end - start),
			ElemKind:   td.ElemKind,
		})
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		return value.Obj(ref), nil
	})

	c.method(proto, "slice", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.slice")
		if err != nil {
			return value.Value{}, err
		}

		start, end, err := sliceRange(rt, args, int64(td.Length))
		if err != nil {
			return value.Value{}, err
		}

		vals := make([]float64, 0, end-start)
		for i := start; i < end; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.FormatInt(i, 10))), value.Obj(h))
			vals = append(vals, v.Float64())
		}

		proto := r.IntrinsicPrototype(td.ElemKind.Name())

		return newTypedArrayOwned(rt, r, td.ElemKind, vals, proto)
	})

	c.method(proto, "fill", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.fill")
		if err != nil {
			return value.Value{}, err
		}

		n, err := toFloat64(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		start, end, err := sliceRange(rt, args[min(len(args), 1):], int64(td.Length))
		if err != nil {
			return value.Value{}, err
		}

		for i := start; i < end; i++ {
			_ = o.Set(rt, value.StringKey(value.NewString(strconv.FormatInt(i, 10))), value.Float(n), value.Obj(h), true)
		}

		return this, nil
	})

	c.method(proto, "indexOf", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.indexOf")
		if err != nil {
			return value.Value{}, err
		}

		target := arg(args, 0)
		for i := 0; i < td.Length; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Obj(h))
			if value.StrictEquals(v, target) {
				return value.Int(int32(i)), nil
			}
		}

		return value.Int(-1), nil
	})

	c.method(proto, "includes", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.includes")
		if err != nil {
			return value.Value{}, err
		}

		target := arg(args, 0)
		for i := 0; i < td.Length; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Obj(h))
			if value.SameValueZero(v, target) {
				return value.Bool(true), nil
			}
		}

		return value.Bool(false), nil
	})

	c.method(proto, "join", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.join")
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

		out := ""
		for i := 0; i < td.Length; i++ {
			if i > 0 {
				out += sep
			}

			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Obj(h))

			s, err := toGoString(rt, v)
			if err != nil {
				return value.Value{}, err
			}

			out += s
		}

		return value.StrFromGo(out), nil
	})

	c.method(proto, "forEach", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.forEach")
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		for i := 0; i < td.Length; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Obj(h))
			if _, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this}); err != nil {
				return value.Value{}, err
			}
		}

		return value.Undefined(), nil
	})

	c.method(proto, "map", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.map")
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		vals := make([]float64, td.Length)
		for i := 0; i < td.Length; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Obj(h))

			res, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this})
			if err != nil {
				return value.Value{}, err
			}

			n, err := toFloat64(rt, res)
			if err != nil {
				return value.Value{}, err
			}

			vals[i] = n
		}

		proto := r.IntrinsicPrototype(td.ElemKind.Name())

		return newTypedArrayOwned(rt, r, td.ElemKind, vals, proto)
	})

	c.method(proto, "filter", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.filter")
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)
		thisArg := arg(args, 1)

		var vals []float64
		for i := 0; i < td.Length; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Obj(h))

			res, err := callValue(rt, callback, thisArg, []value.Value{v, value.Int(int32(i)), this})
			if err != nil {
				return value.Value{}, err
			}

			if res.ToBoolean() {
				vals = append(vals, v.Float64())
			}
		}

		proto := r.IntrinsicPrototype(td.ElemKind.Name())

		return newTypedArrayOwned(rt, r, td.ElemKind, vals, proto)
	})

	c.method(proto, "reduce", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, this, "TypedArray.prototype.reduce")
		if err != nil {
			return value.Value{}, err
		}

		callback := arg(args, 0)

		var acc value.Value

		start := 0
		if len(args) > 1 {
			acc = args[1]
		} else {
			if td.Length == 0 {
				return value.Value{}, throwType(rt, "reduce of empty typed array with no initial value")
			}

			acc, _ = o.Get(rt, key("0"), value.Obj(h))
			start = 1
		}

		for i := start; i < td.Length; i++ {
			v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(i))), value.Obj(h))

			res, err := callValue(rt, callback, value.Undefined(), []value.Value{acc, v, value.Int(int32(i)), this})
			if err != nil {
				return value.Value{}, err
			}

			acc = res
		}

		return acc, nil
	})

	c.symbolMethod(proto, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return newTypedArrayIterator(r, this, arrayIterValues), nil
	})

	c.method(proto, "values", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return newTypedArrayIterator(r, this, arrayIterValues), nil
	})

	c.method(proto, "keys", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return newTypedArrayIterator(r, this, arrayIterKeys), nil
	})

	c.method(proto, "entries", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return newTypedArrayIterator(r, this, arrayIterEntries), nil
	})
}

// newTypedArrayIterator is newArrayIterator's counterpart for a
// KindTypedArray receiver: it cannot reuse newArrayIterator directly since
// that helper's own next closure reads length through arrayOf/o.Length(),
// which is only meaningful for KindArray's indexedStorage-backed length and
// reads back zero for a TypedArray (whose element count instead lives on
// its TypedArrayData).
func newTypedArrayIterator(r *realm.Realm, arr value.Value, kind arrayIterKind) value.Value {
	c := newCtx(r)
	idx := 0

	iterObj := object.New(r.ShapeRoot(), "Array Iterator", object.KindIterator, r.IntrinsicPrototype("Iterator"))
	ref := heap.NewGc[value.HeapObject](r.Heap(), iterObj, nil)
	iterObj.SetSelf(ref)

	c.method(iterObj, "next", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, td, h, err := typedArrayOf(rt, arr, "TypedArray Iterator.prototype.next")
		if err != nil {
			return value.Value{}, err
		}

		if idx >= td.Length {
			return c.iterResult(value.Undefined(), true), nil
		}

		k := idx
		idx++

		v, _ := o.Get(rt, value.StringKey(value.NewString(strconv.Itoa(k))), value.Obj(h))

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
