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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// TypedArrayKind identifies one of the nine integer/float element layouts a
// %TypedArray% subclass backs (§23.2), the ones GetValueFromBuffer/
// SetValueInBuffer (§25.1.3.10/.11) switch on.
type TypedArrayKind uint8

const (
	Int8Array TypedArrayKind = iota
	Uint8Array
	Uint8ClampedArray
	Int16Array
	Uint16Array
	Int32Array
	Uint32Array
	Float32Array
	Float64Array
)

// ElementSize returns this kind's element width in bytes.
func (k TypedArrayKind) ElementSize() int {
	switch k {
	case Int8Array, Uint8Array, Uint8ClampedArray:
		return 1
	case Int16Array, Uint16Array:
		return 2
	case Int32Array, Uint32Array, Float32Array:
		return 4
	case Float64Array:
		return 8
	default:
		return 1
	}
}

// Name returns the global constructor name this kind backs.
func (k TypedArrayKind) Name() string {
	switch k {
	case Int8Array:
		return "Int8Array"
	case Uint8Array:
		return "Uint8Array"
	case Uint8ClampedArray:
		return "Uint8ClampedArray"
	case Int16Array:
		return "Int16Array"
	case Uint16Array:
		return "Uint16Array"
	case Int32Array:
		return "Int32Array"
	case Uint32Array:
		return "Uint32Array"
	case Float32Array:
		return "Float32Array"
	case Float64Array:
		return "Float64Array"
	default:
		return "TypedArray"
	}
}

// ArrayBufferData is the Kind-specific payload for KindArrayBuffer objects
// (§25.1): a plain byte slice, detachable exactly once (§25.1.2.4's
// DetachArrayBuffer — the only way Bytes stops being valid storage).
// ArrayBufferData carries no outgoing object references, so it needs no
// Trace method — the heap.Tracer type-assert in Object.Trace simply finds
// none and does nothing, correctly, since raw bytes reach no other object.
type ArrayBufferData struct {
	Bytes    []byte
	Detached bool
}

// TypedArrayData is the Kind-specific payload for KindTypedArray objects
// (§23.2): a view — byte offset, element count, and element kind — over a
// shared ArrayBuffer, never its own storage. Every read/write goes straight
// through to Buffer's bytes, so a TypedArray and a DataView over the same
// ArrayBuffer observe each other's writes, matching real aliased memory
// rather than two independent copies.
type TypedArrayData struct {
	Buffer     heap.Gc[value.HeapObject]
	ByteOffset int
	Length     int // element count, not byte count
	ElemKind   TypedArrayKind
}

// Trace implements heap.Tracer.
func (t *TypedArrayData) Trace(v *heap.Visitor) {
	if !t.Buffer.IsZero() {
		t.Buffer.Trace(v)
	}
}

// DataViewData is the Kind-specific payload for KindDataView objects
// (§25.3): an explicit-endianness byte window over a shared ArrayBuffer,
// read and written only through its own getInt8/setFloat64/etc. methods —
// never through integer-indexed property access the way a TypedArray is.
type DataViewData struct {
	Buffer     heap.Gc[value.HeapObject]
	ByteOffset int
	ByteLength int
}

// Trace implements heap.Tracer.
func (d *DataViewData) Trace(v *heap.Visitor) {
	if !d.Buffer.IsZero() {
		d.Buffer.Trace(v)
	}
}

func bufferData(h heap.Gc[value.HeapObject]) (*ArrayBufferData, bool) {
	o, ok := asObjectPtr(h)
	if !ok {
		return nil, false
	}

	ab, ok := o.data.(*ArrayBufferData)

	return ab, ok
}

// typedArrayGet implements the numeric-index fast path of [[Get]] for an
// Integer-Indexed exotic object (§10.4.5.8's IntegerIndexedElementGet): an
// out-of-bounds index or a detached buffer reports ok=false (observed as
// "no such property", never a thrown error).
func (o *Object) typedArrayGet(idx uint32) (value.Value, bool) {
	td := o.data.(*TypedArrayData)

	ab, ok := bufferData(td.Buffer)
	if !ok || ab.Detached || int(idx) >= td.Length {
		return value.Value{}, false
	}

	off := td.ByteOffset + int(idx)*td.ElemKind.ElementSize()

	return ReadBufferElement(ab.Bytes, off, td.ElemKind, true), true
}

// typedArraySet implements [[Set]]'s IntegerIndexedElementSet (§10.4.5.9):
// the right-hand value is always fully coerced to a number first (its
// side effects run even when the index turns out to be out of range), and
// an out-of-bounds/detached write is then silently dropped rather than
// thrown — a TypedArray index is never an own property the way a missing
// Array index would be, strict mode or not.
func (o *Object) typedArraySet(rt Runtime, idx uint32, v value.Value) error {
	td := o.data.(*TypedArrayData)

	n, err := numberHook(rt, v)
	if err != nil {
		return err
	}

	ab, ok := bufferData(td.Buffer)
	if !ok || ab.Detached || int(idx) >= td.Length {
		return nil
	}

	off := td.ByteOffset + int(idx)*td.ElemKind.ElementSize()
	WriteBufferElement(ab.Bytes, off, td.ElemKind, n, true)

	return nil
}

// ReadBufferElement decodes one element of kind k at byte offset off in b,
// per the given endianness — shared by TypedArray's own (always
// little-endian) element access and DataView's explicit-endianness
// getters.
func ReadBufferElement(b []byte, off int, k TypedArrayKind, littleEndian bool) value.Value {
	order := byteOrder(littleEndian)

	switch k {
	case Int8Array:
		return value.Int(int32(int8(b[off])))
	case Uint8Array, Uint8ClampedArray:
		return value.Int(int32(b[off]))
	case Int16Array:
		return value.Int(int32(int16(order.Uint16(b[off:]))))
	case Uint16Array:
		return value.Int(int32(order.Uint16(b[off:])))
	case Int32Array:
		return value.Int(int32(order.Uint32(b[off:])))
	case Uint32Array:
		return value.Float(float64(order.Uint32(b[off:])))
	case Float32Array:
		return value.Float(float64(math.Float32frombits(order.Uint32(b[off:]))))
	case Float64Array:
		return value.Float(math.Float64frombits(order.Uint64(b[off:])))
	default:
		return value.Undefined()
	}
}

// WriteBufferElement encodes n as one element of kind k at byte offset off
// in b, per the given endianness.
func WriteBufferElement(b []byte, off int, k TypedArrayKind, n float64, littleEndian bool) {
	order := byteOrder(littleEndian)

	switch k {
	case Int8Array:
		b[off] = byte(int8(toInt32Wrap(n)))
	case Uint8Array:
		b[off] = byte(toUint32Wrap(n))
	case Uint8ClampedArray:
		b[off] = clampUint8(n)
	case Int16Array:
		order.PutUint16(b[off:], uint16(int16(toInt32Wrap(n))))
	case Uint16Array:
		order.PutUint16(b[off:], uint16(toUint32Wrap(n)))
	case Int32Array:
		order.PutUint32(b[off:], uint32(toInt32Wrap(n)))
	case Uint32Array:
		order.PutUint32(b[off:], toUint32Wrap(n))
	case Float32Array:
		order.PutUint32(b[off:], math.Float32bits(float32(n)))
	case Float64Array:
		order.PutUint64(b[off:], math.Float64bits(n))
	}
}

func byteOrder(littleEndian bool) binary.ByteOrder {
	if littleEndian {
		return binary.LittleEndian
	}

	return binary.BigEndian
}

// toUint32Wrap implements ToUint32's numeric wrap (§7.1.7) directly on a
// Go float64, the shape a typed-array element write always starts from
// once numberHook has already run ToNumber's full object-coercion steps.
func toUint32Wrap(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}

	n = math.Trunc(n)
	m := math.Mod(n, 4294967296)

	if m < 0 {
		m += 4294967296
	}

	return uint32(m)
}

func toInt32Wrap(n float64) int32 { return int32(toUint32Wrap(n)) }

// clampUint8 implements ToUint8Clamp (§7.1.11): clamp to [0, 255], then
// round half to even.
func clampUint8(n float64) byte {
	if math.IsNaN(n) || n <= 0 {
		return 0
	}

	if n >= 255 {
		return 255
	}

	f := math.Floor(n)
	diff := n - f

	switch {
	case diff < 0.5:
		return byte(f)
	case diff > 0.5:
		return byte(f + 1)
	case int64(f)%2 == 0:
		return byte(f)
	default:
		return byte(f + 1)
	}
}

// numberHook is a late-bound hook into ToNumber's full object-coercion
// semantics (ToPrimitive/valueOf/toString), installed via SetNumberHook,
// for the same dependency-order reason as callFunctionValue: pkg/object
// cannot import pkg/builtins' own Coercer implementation. The fallback
// below only covers the primitive kinds value.ToNumber itself needs no
// Coercer for; an object operand throws until pkg/builtins installs the
// real hook.
var numberHook = func(rt Runtime, v value.Value) (float64, error) {
	switch v.Kind() {
	case value.KindInteger, value.KindRational:
		return v.Float64(), nil
	case value.KindUndefined:
		return math.NaN(), nil
	case value.KindNull, value.KindBoolean:
		if v.ToBoolean() {
			return 1, nil
		}

		return 0, nil
	default:
		return 0, fmt.Errorf("TypeError: cannot convert value to number without a numeric coercion hook installed")
	}
}

// SetNumberHook installs the function used to fully coerce a typed-array
// element write's right-hand value to a number. pkg/builtins installs this
// once, since its own coercer (pkg/builtins/coerce.go) already implements
// the general (object-operand) case.
func SetNumberHook(hook func(rt Runtime, v value.Value) (float64, error)) {
	numberHook = hook
}
