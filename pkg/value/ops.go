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
package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Coercer is implemented by pkg/object so that value's abstract operations
// (ToPrimitive, ToString, ToNumber on objects) can call back into the object
// model without value importing it.
type Coercer interface {
	// ToPrimitive implements the abstract operation OrdinaryToPrimitive /
	// the exotic Symbol.toPrimitive dispatch, given a hint ("default",
	// "number" or "string").
	ToPrimitive(obj Value, hint string) (Value, error)
}

// ToNumber implements the abstract operation ToNumber (§3.1). Objects are
// coerced via the supplied Coercer (ordinarily pkg/object's implementation);
// pass nil only for values already known not to be objects.
func ToNumber(v Value, c Coercer) (Value, error) {
	switch v.kind {
	case KindUndefined:
		return Float(math.NaN()), nil
	case KindNull:
		return Int(0), nil
	case KindBoolean:
		if v.b {
			return Int(1), nil
		}

		return Int(0), nil
	case KindInteger, KindRational:
		return v, nil
	case KindBigInt:
		return Value{}, fmt.Errorf("TypeError: cannot convert a BigInt to a number")
	case KindString:
		return stringToNumber(v.str), nil
	case KindSymbol:
		return Value{}, fmt.Errorf("TypeError: cannot convert a Symbol to a number")
	case KindObject:
		if c == nil {
			return Value{}, fmt.Errorf("TypeError: cannot convert object to number without a Coercer")
		}

		prim, err := c.ToPrimitive(v, "number")
		if err != nil {
			return Value{}, err
		}

		return ToNumber(prim, c)
	}

	return Float(math.NaN()), nil
}

func stringToNumber(s JSString) Value {
	trimmed := strings.TrimSpace(s.String())
	if trimmed == "" {
		return Int(0)
	}

	if trimmed == "Infinity" || trimmed == "+Infinity" {
		return Float(math.Inf(1))
	}

	if trimmed == "-Infinity" {
		return Float(math.Inf(-1))
	}

	if n, err := strconv.ParseInt(trimmed, 0, 32); err == nil {
		return Int(int32(n))
	}

	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Float(f)
	}

	return Float(math.NaN())
}

// ToNumeric implements the abstract operation ToNumeric: like ToNumber but
// BigInt values pass through unchanged instead of throwing.
func ToNumeric(v Value, c Coercer) (Value, error) {
	prim := v

	if v.kind == KindObject {
		if c == nil {
			return Value{}, fmt.Errorf("TypeError: cannot convert object to numeric without a Coercer")
		}

		p, err := c.ToPrimitive(v, "number")
		if err != nil {
			return Value{}, err
		}

		prim = p
	}

	if prim.kind == KindBigInt {
		return prim, nil
	}

	return ToNumber(prim, c)
}

// ToBigInt implements the abstract operation ToBigInt.
func ToBigInt(v Value, c Coercer) (Value, error) {
	switch v.kind {
	case KindBigInt:
		return v, nil
	case KindBoolean:
		n := big.NewInt(0)
		if v.b {
			n = big.NewInt(1)
		}

		return BigIntValue(n), nil
	case KindString:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v.str.String()), 0)
		if !ok {
			return Value{}, fmt.Errorf("SyntaxError: cannot convert string to a BigInt")
		}

		return BigIntValue(n), nil
	case KindObject:
		if c == nil {
			return Value{}, fmt.Errorf("TypeError: cannot convert object to BigInt without a Coercer")
		}

		prim, err := c.ToPrimitive(v, "number")
		if err != nil {
			return Value{}, err
		}

		return ToBigInt(prim, c)
	}

	return Value{}, fmt.Errorf("TypeError: cannot convert %s to a BigInt", v.TypeOf())
}

// ToPropertyKey implements the abstract operation ToPropertyKey.
func ToPropertyKey(v Value, c Coercer) (PropertyKey, error) {
	if v.kind == KindSymbol {
		return SymbolKey(v.sym), nil
	}

	s, err := ToJSString(v, c)
	if err != nil {
		return PropertyKey{}, err
	}

	return StringKey(s), nil
}

// ToJSString implements the abstract operation ToString for Values.
func ToJSString(v Value, c Coercer) (JSString, error) {
	switch v.kind {
	case KindUndefined:
		return NewString("undefined"), nil
	case KindNull:
		return NewString("null"), nil
	case KindBoolean:
		if v.b {
			return NewString("true"), nil
		}

		return NewString("false"), nil
	case KindInteger:
		return NewString(strconv.Itoa(int(v.i))), nil
	case KindRational:
		return NewString(formatFloat(v.f)), nil
	case KindBigInt:
		return NewString(v.big.String()), nil
	case KindString:
		return v.str, nil
	case KindSymbol:
		return JSString{}, fmt.Errorf("TypeError: cannot convert a Symbol value to a string")
	case KindObject:
		if c == nil {
			return JSString{}, fmt.Errorf("TypeError: cannot convert object to string without a Coercer")
		}

		prim, err := c.ToPrimitive(v, "string")
		if err != nil {
			return JSString{}, err
		}

		return ToJSString(prim, c)
	}

	return JSString{}, nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IsArrayIndex reports whether key is a canonical array-index string
// ("0".."4294967294"), per the abstract operation of the same name used by
// Array's length invariant (§4.7).
func IsArrayIndex(key PropertyKey) (uint32, bool) {
	if key.IsSymbol() {
		return 0, false
	}

	s := key.str.String()
	if s == "" || (s[0] == '0' && len(s) != 1) {
		return 0, false
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}

	if strconv.FormatUint(n, 10) != s {
		return 0, false
	}

	return uint32(n), true
}

// NumberAdd implements the `+` operator's numeric path (string
// concatenation is handled one layer up, since it needs ToPrimitive first).
func NumberAdd(a, b Value) Value { return arith(a, b, func(x, y float64) float64 { return x + y }) }

// NumberSub implements `-`.
func NumberSub(a, b Value) Value { return arith(a, b, func(x, y float64) float64 { return x - y }) }

// NumberMul implements `*`.
func NumberMul(a, b Value) Value { return arith(a, b, func(x, y float64) float64 { return x * y }) }

// NumberDiv implements `/`.
func NumberDiv(a, b Value) Value { return arith(a, b, func(x, y float64) float64 { return x / y }) }

// NumberMod implements `%`.
func NumberMod(a, b Value) Value { return arith(a, b, math.Mod) }

// NumberExp implements `**`.
func NumberExp(a, b Value) Value { return arith(a, b, math.Pow) }

func arith(a, b Value, op func(x, y float64) float64) Value {
	af, bf := a.Float64(), b.Float64()
	r := op(af, bf)

	if a.kind == KindInteger && b.kind == KindInteger && r == math.Trunc(r) &&
		r >= math.MinInt32 && r <= math.MaxInt32 && !(r == 0 && math.Signbit(r)) {
		return Int(int32(r))
	}

	return Float(r)
}

// Compare implements the abstract relational comparison used by `<`, `<=`,
// `>`, `>=`. It returns -1, 0, 1, or reports ok=false when either operand is
// NaN (per spec, `NaN < x` and `x < NaN` are both false, not an error).
func Compare(a, b Value) (int, bool) {
	af, bf := a.Float64(), b.Float64()
	if math.IsNaN(af) || math.IsNaN(bf) {
		return 0, false
	}

	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}
