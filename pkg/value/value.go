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

// Package value implements the ECMAScript Value tagged union (§3.1): a
// performance-motivated split between Integer(i32) and Rational(f64), plus
// Boolean, BigInt, String, Symbol and Object variants.
package value

import (
	"math"
	"math/big"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
)

// Kind tags which variant of the Value union is populated.
type Kind uint8

// Value kinds, per §3.1.
const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindInteger
	KindRational
	KindBigInt
	KindString
	KindSymbol
	KindObject
)

// HeapObject is the minimal surface value.Value needs from an object on the
// managed heap. pkg/object.Object satisfies this (and much more); value does
// not import pkg/object to avoid a cycle, since pkg/object needs to store
// Values in property slots.
type HeapObject interface {
	heap.Tracer
	// ClassName is used by Object.prototype.toString's [[Class]] fallback
	// and by diagnostics.
	ClassName() string
}

// Value is the tagged union described in §3.1. It is a plain struct (not an
// interface) so that Undefined/Null/Boolean/Integer/Rational — the
// overwhelmingly common cases — never allocate.
type Value struct {
	kind Kind
	b    bool
	i    int32
	f    float64
	big  *big.Int
	str  JSString
	sym  *Symbol
	obj  heap.Gc[HeapObject]
}

// Undefined is the `undefined` value.
func Undefined() Value { return Value{kind: KindUndefined} }

// Null is the `null` value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a Go bool as a JS boolean.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Int wraps a 32-bit integer. Per §3.1, Integer(n) and Rational(float64(n))
// are observationally identical for every ECMAScript operation except
// Object.is on ±0 and division by zero — callers pick Int for values known
// to fit, as a performance choice, never for correctness.
func Int(n int32) Value { return Value{kind: KindInteger, i: n} }

// Float wraps a float64 as a JS number (the Rational variant).
func Float(f float64) Value { return Value{kind: KindRational, f: f} }

// BigIntValue wraps an arbitrary-precision signed integer.
func BigIntValue(n *big.Int) Value { return Value{kind: KindBigInt, big: n} }

// Str wraps a JSString.
func Str(s JSString) Value { return Value{kind: KindString, str: s} }

// StrFromGo wraps a Go string, UTF-8 decoded into a JSString.
func StrFromGo(s string) Value { return Str(NewString(s)) }

// Sym wraps a Symbol.
func Sym(s *Symbol) Value { return Value{kind: KindSymbol, sym: s} }

// Obj wraps a heap-allocated object handle.
func Obj(o heap.Gc[HeapObject]) Value { return Value{kind: KindObject, obj: o} }

// Kind returns the tag of this value.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is `undefined`.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNull reports whether v is `null`.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNullish reports whether v is `null` or `undefined` (relevant to `??`
// and `?.`).
func (v Value) IsNullish() bool { return v.kind == KindUndefined || v.kind == KindNull }

// IsNumber reports whether v is an Integer or Rational.
func (v Value) IsNumber() bool { return v.kind == KindInteger || v.kind == KindRational }

// IsObject reports whether v is an Object.
func (v Value) IsObject() bool { return v.kind == KindObject }

// AsObject returns v's object handle and true when v is an Object, or a zero
// handle and false otherwise. Callability is checked by pkg/object via a type
// assertion on the returned HeapObject, since value can't import pkg/object.
func (v Value) AsObject() (heap.Gc[HeapObject], bool) {
	if v.kind != KindObject {
		return heap.Gc[HeapObject]{}, false
	}

	return v.obj, true
}

// Bool returns the boolean payload (only meaningful when Kind()==KindBoolean).
func (v Value) Bool() bool { return v.b }

// Int32 returns the integer payload (only meaningful when Kind()==KindInteger).
func (v Value) Int32() int32 { return v.i }

// Float64 returns the float payload if Rational, or the widened Integer
// otherwise; per §3.1 they are observationally identical for arithmetic.
func (v Value) Float64() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}

	return v.f
}

// BigInt returns the big.Int payload (only meaningful when Kind()==KindBigInt).
func (v Value) BigInt() *big.Int { return v.big }

// JSString returns the string payload (only meaningful when Kind()==KindString).
func (v Value) JSString() JSString { return v.str }

// Symbol returns the symbol payload (only meaningful when Kind()==KindSymbol).
func (v Value) Symbol() *Symbol { return v.sym }

// ToBoolean implements the abstract operation ToBoolean.
func (v Value) ToBoolean() bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindInteger:
		return v.i != 0
	case KindRational:
		return v.f != 0 && !math.IsNaN(v.f)
	case KindBigInt:
		return v.big.Sign() != 0
	case KindString:
		return v.str.Length() != 0
	case KindSymbol, KindObject:
		return true
	}

	return false
}

// TypeOf implements the `typeof` operator. Callability (which makes
// typeof report "function") is resolved one layer up in pkg/object, since
// value has no notion of callable objects.
func (v Value) TypeOf() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "object"
	case KindBoolean:
		return "boolean"
	case KindInteger, KindRational:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	}

	return "undefined"
}

// SameValue implements the abstract operation SameValue (§8: "NaN is
// canonical under Object.is"; +0/-0 differ only here and on division).
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		// Integer vs Rational holding the same mathematical value are
		// SameValue per §3.1's observational-identity invariant.
		if a.IsNumber() && b.IsNumber() {
			return sameNumberValue(a, b, true)
		}

		return false
	}

	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindInteger, KindRational:
		return sameNumberValue(a, b, true)
	case KindBigInt:
		return a.big.Cmp(b.big) == 0
	case KindString:
		return a.str.Equal(b.str)
	case KindSymbol:
		return a.sym == b.sym
	case KindObject:
		return a.obj.ID() == b.obj.ID()
	}

	return false
}

// SameValueZero is SameValue except +0 and -0 compare equal (used by
// Array.prototype.includes, Map/Set key equality).
func SameValueZero(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		return sameNumberValue(a, b, false)
	}

	return SameValue(a, b)
}

func sameNumberValue(a, b Value, distinguishZero bool) bool {
	af, bf := a.Float64(), b.Float64()

	if math.IsNaN(af) && math.IsNaN(bf) {
		return true
	}

	if af != bf {
		return false
	}

	if distinguishZero && af == 0 {
		return math.Signbit(af) == math.Signbit(bf)
	}

	return true
}

// StrictEquals implements `===`.
func StrictEquals(a, b Value) bool {
	if a.kind != b.kind {
		if a.IsNumber() && b.IsNumber() {
			return a.Float64() == b.Float64()
		}

		return false
	}

	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindInteger, KindRational:
		return a.Float64() == b.Float64()
	case KindBigInt:
		return a.big.Cmp(b.big) == 0
	case KindString:
		return a.str.Equal(b.str)
	case KindSymbol:
		return a.sym == b.sym
	case KindObject:
		return a.obj.ID() == b.obj.ID()
	}

	return false
}

// PropertyKey is either a string or a symbol (ECMAScript property keys are
// never numbers; integer-looking keys are canonicalised to their string
// form by callers per the spec's CanonicalNumericIndexString).
type PropertyKey struct {
	str JSString
	sym *Symbol
}

// StringKey constructs a string property key.
func StringKey(s JSString) PropertyKey { return PropertyKey{str: s} }

// SymbolKey constructs a symbol property key.
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{sym: s} }

// IsSymbol reports whether this key is a symbol key.
func (k PropertyKey) IsSymbol() bool { return k.sym != nil }

// String returns the string payload (meaningful only when !IsSymbol()).
func (k PropertyKey) String() JSString { return k.str }

// SymbolValue returns the symbol payload (meaningful only when IsSymbol()).
func (k PropertyKey) SymbolValue() *Symbol { return k.sym }

// Equal compares two property keys for identity.
func (k PropertyKey) Equal(o PropertyKey) bool {
	if k.IsSymbol() != o.IsSymbol() {
		return false
	}

	if k.IsSymbol() {
		return k.sym == o.sym
	}

	return k.str.Equal(o.str)
}

// HashKey returns a comparable Go value suitable as a map key, for use by
// shape transition caches and property maps.
func (k PropertyKey) HashKey() any {
	if k.IsSymbol() {
		return k.sym
	}

	return k.str.String()
}
