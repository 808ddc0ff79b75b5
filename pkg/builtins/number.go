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
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// installNumber builds %Number% (§21.1): the ToNumeric-coercing constructor/
// wrapper, its numeric-limit statics, and %Number.prototype%'s
// toString/toFixed/toPrecision/toExponential/valueOf family.
func installNumber(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()
	proto.SetData(value.Int(0))

	ctorVal, ctorObj := c.nativeConstructor("Number", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		n := value.Int(0)
		if len(args) > 0 {
			var err error
			n, err = toNumeric(rt, args[0])
			if err != nil {
				return value.Value{}, err
			}

			if n.Kind() == value.KindBigInt {
				n = value.Float(bigIntToFloat(n))
			}
		}

		obj := object.New(r.ShapeRoot(), "Number", object.KindStringWrapper, r.IntrinsicPrototype("Number"))
		obj.SetData(n)
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		return value.Obj(ref), nil
	})

	c.definePrototype("Number", ctorVal, ctorObj, proto, protoRef)
	c.define("Number", ctorVal)

	c.dataValue(ctorObj, "MAX_SAFE_INTEGER", value.Float(9007199254740991), false)
	c.dataValue(ctorObj, "MIN_SAFE_INTEGER", value.Float(-9007199254740991), false)
	c.dataValue(ctorObj, "MAX_VALUE", value.Float(math.MaxFloat64), false)
	c.dataValue(ctorObj, "MIN_VALUE", value.Float(5e-324), false)
	c.dataValue(ctorObj, "EPSILON", value.Float(2.220446049250313e-16), false)
	c.dataValue(ctorObj, "POSITIVE_INFINITY", value.Float(math.Inf(1)), false)
	c.dataValue(ctorObj, "NEGATIVE_INFINITY", value.Float(math.Inf(-1)), false)
	c.dataValue(ctorObj, "NaN", value.Float(math.NaN()), false)

	c.method(ctorObj, "isInteger", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsNumber() {
			return value.Bool(false), nil
		}

		f := v.Float64()

		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f), nil
	})

	c.method(ctorObj, "isSafeInteger", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsNumber() {
			return value.Bool(false), nil
		}

		f := v.Float64()

		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f && math.Abs(f) <= 9007199254740991), nil
	})

	c.method(ctorObj, "isFinite", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsNumber() {
			return value.Bool(false), nil
		}

		f := v.Float64()

		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	})

	c.method(ctorObj, "isNaN", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)

		return value.Bool(v.IsNumber() && math.IsNaN(v.Float64())), nil
	})

	c.method(ctorObj, "parseFloat", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return numberParseFloat(rt, arg(args, 0))
	})

	c.method(ctorObj, "parseInt", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return numberParseInt(rt, arg(args, 0), arg(args, 1))
	})

	c.method(proto, "valueOf", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return thisNumberPrimitive(rt, this, "Number.prototype.valueOf")
	})

	c.method(proto, "toString", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberPrimitive(rt, this, "Number.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		radixArg := arg(args, 0)
		if radixArg.IsUndefined() {
			s, err := toGoString(rt, n)
			if err != nil {
				return value.Value{}, err
			}

			return value.StrFromGo(s), nil
		}

		radix, err := toInteger(rt, radixArg)
		if err != nil {
			return value.Value{}, err
		}

		if radix < 2 || radix > 36 {
			return value.Value{}, throwRange(rt, "radix must be between 2 and 36")
		}

		return value.StrFromGo(formatRadix(n.Float64(), int(radix))), nil
	})

	c.method(proto, "toLocaleString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberPrimitive(rt, this, "Number.prototype.toLocaleString")
		if err != nil {
			return value.Value{}, err
		}

		s, err := toGoString(rt, n)
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(s), nil
	})

	c.method(proto, "toFixed", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberPrimitive(rt, this, "Number.prototype.toFixed")
		if err != nil {
			return value.Value{}, err
		}

		digits, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if digits < 0 || digits > 100 {
			return value.Value{}, throwRange(rt, "toFixed digits out of range")
		}

		f := n.Float64()
		if math.IsNaN(f) {
			return value.StrFromGo("NaN"), nil
		}

		if math.Abs(f) >= 1e21 {
			s, err := toGoString(rt, n)
			if err != nil {
				return value.Value{}, err
			}

			return value.StrFromGo(s), nil
		}

		return value.StrFromGo(strconv.FormatFloat(f, 'f', int(digits), 64)), nil
	})

	c.method(proto, "toPrecision", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberPrimitive(rt, this, "Number.prototype.toPrecision")
		if err != nil {
			return value.Value{}, err
		}

		if arg(args, 0).IsUndefined() {
			s, err := toGoString(rt, n)
			if err != nil {
				return value.Value{}, err
			}

			return value.StrFromGo(s), nil
		}

		prec, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if prec < 1 || prec > 100 {
			return value.Value{}, throwRange(rt, "toPrecision argument out of range")
		}

		f := n.Float64()
		if math.IsNaN(f) {
			return value.StrFromGo("NaN"), nil
		}

		return value.StrFromGo(strconv.FormatFloat(f, 'g', int(prec), 64)), nil
	})

	c.method(proto, "toExponential", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberPrimitive(rt, this, "Number.prototype.toExponential")
		if err != nil {
			return value.Value{}, err
		}

		f := n.Float64()
		if math.IsNaN(f) {
			return value.StrFromGo("NaN"), nil
		}

		digits := -1
		if !arg(args, 0).IsUndefined() {
			d, err := toInteger(rt, arg(args, 0))
			if err != nil {
				return value.Value{}, err
			}

			digits = int(d)
		}

		s := strconv.FormatFloat(f, 'e', digits, 64)

		return value.StrFromGo(normalizeExponent(s)), nil
	})
}

// thisNumberPrimitive is thisBoxedPrimitive widened to accept either numeric
// representation (Integer or Rational) — Number.prototype methods don't
// care which of the two produced `this`, only that it's a number (§3.1:
// Integer/Rational are observationally identical for every op but Object.is
// on zero).
func thisNumberPrimitive(rt object.Runtime, this value.Value, what string) (value.Value, error) {
	if this.IsNumber() {
		return this, nil
	}

	if h, ok := this.AsObject(); ok {
		if o, ok := h.Get().(*object.Object); ok {
			if data, ok := o.Data().(value.Value); ok && data.IsNumber() {
				return data, nil
			}
		}
	}

	return value.Value{}, throwType(rt, "%s called on incompatible receiver", what)
}

func bigIntToFloat(v value.Value) float64 {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}

// formatRadix renders f in the given radix (2-36), per §21.1.3.44's
// Number::toString — integers convert exactly; the fractional part is
// truncated to a bounded number of digits, matching every mainstream
// engine's behavior for non-terminating radix expansions.
func formatRadix(f float64, radix int) string {
	if math.IsNaN(f) {
		return "NaN"
	}

	if math.IsInf(f, 1) {
		return "Infinity"
	}

	if math.IsInf(f, -1) {
		return "-Infinity"
	}

	neg := f < 0
	if neg {
		f = -f
	}

	intPart, frac := math.Modf(f)

	var b strings.Builder

	if neg {
		b.WriteByte('-')
	}

	b.WriteString(strconv.FormatInt(int64(intPart), radix))

	if frac > 0 {
		b.WriteByte('.')

		for i := 0; i < 20 && frac > 0; i++ {
			frac *= float64(radix)
			digit, d := math.Modf(frac)
			b.WriteString(strconv.FormatInt(int64(digit), radix))
			frac = d
		}
	}

	return b.String()
}

// normalizeExponent rewrites Go's "1.5e+02" exponent form into the
// "1.5e+2" form §21.1.3.2's ToExponential produces (no leading zero on the
// exponent digits).
func normalizeExponent(s string) string {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return s
	}

	mantissa, exp := s[:i+1], s[i+1:]

	sign := ""
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		sign = string(exp[0])
		exp = exp[1:]
	}

	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}

	return mantissa + sign + exp
}

// numberParseFloat implements parseFloat (§21.1.2.14 / §20.2.4): skip
// leading whitespace, then greedily consume the longest numeric prefix
// strconv.ParseFloat accepts, NaN for no valid prefix at all.
func numberParseFloat(rt object.Runtime, v value.Value) (value.Value, error) {
	s, err := toGoString(rt, v)
	if err != nil {
		return value.Value{}, err
	}

	s = strings.TrimLeftFunc(s, isJSSpace)

	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return value.Float(math.Inf(1)), nil
	}

	if strings.HasPrefix(s, "-Infinity") {
		return value.Float(math.Inf(-1)), nil
	}

	end := 0
	seenDigit, seenDot, seenExp := false, false, false

	for end < len(s) {
		ch := s[end]

		switch {
		case ch >= '0' && ch <= '9':
			seenDigit = true
		case ch == '.' && !seenDot && !seenExp:
			seenDot = true
		case (ch == '+' || ch == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case (ch == 'e' || ch == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			goto done
		}

		end++
	}

done:
	if !seenDigit {
		return value.Float(math.NaN()), nil
	}

	// Trailing "e"/"e+"/"." with nothing after it isn't part of the valid
	// prefix; shrink end until strconv accepts it.
	for end > 0 {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return value.Float(f), nil
		}

		end--
	}

	return value.Float(math.NaN()), nil
}

// isJSSpace reports whether r is StrWhiteSpace (§12.2): Unicode whitespace
// plus the BOM (U+FEFF), which Go's unicode.IsSpace doesn't include.
func isJSSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// numberParseInt implements parseInt (§21.1.2.13 / §20.2.5): leading
// whitespace, optional sign, optional "0x"/"0X" prefix when radix is 0 or
// 16, digits valid in the resolved radix.
func numberParseInt(rt object.Runtime, v, radixArg value.Value) (value.Value, error) {
	s, err := toGoString(rt, v)
	if err != nil {
		return value.Value{}, err
	}

	s = strings.TrimLeftFunc(s, isJSSpace)

	radix := 0
	if !radixArg.IsUndefined() {
		r, err := toInteger(rt, radixArg)
		if err != nil {
			return value.Value{}, err
		}

		radix = int(r)
	}

	if radix != 0 && (radix < 2 || radix > 36) {
		return value.Float(math.NaN()), nil
	}

	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	if (radix == 0 || radix == 16) && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
		radix = 16
	} else if radix == 0 {
		radix = 10
	}

	end := 0

	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}

	if end == 0 {
		return value.Float(math.NaN()), nil
	}

	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		// Overflowed int64 — fall back to a float accumulation (parseInt
		// has no magnitude limit per spec).
		f := 0.0
		for i := 0; i < end; i++ {
			f = f*float64(radix) + float64(digitValue(s[i]))
		}

		if neg {
			f = -f
		}

		return value.Float(f), nil
	}

	if neg {
		n = -n
	}

	return value.Float(float64(n)), nil
}

func digitValue(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'z':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 10
	default:
		return 99
	}
}
