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
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// installMath builds the %Math% namespace object (§21.3): a plain,
// non-constructible, non-callable object carrying numeric constants and
// unary/binary/variadic numeric functions.
func installMath(r *realm.Realm) {
	c := newCtx(r)

	m := c.newObject(r.IntrinsicPrototype("Object"))

	c.dataValue(m, "E", value.Float(math.E), false)
	c.dataValue(m, "LN10", value.Float(math.Ln10), false)
	c.dataValue(m, "LN2", value.Float(math.Ln2), false)
	c.dataValue(m, "LOG10E", value.Float(1/math.Ln10), false)
	c.dataValue(m, "LOG2E", value.Float(1/math.Ln2), false)
	c.dataValue(m, "PI", value.Float(math.Pi), false)
	c.dataValue(m, "SQRT1_2", value.Float(math.Sqrt(0.5)), false)
	c.dataValue(m, "SQRT2", value.Float(math.Sqrt2), false)

	unary := map[string]func(float64) float64{
		"abs": math.Abs, "acos": math.Acos, "acosh": math.Acosh, "asin": math.Asin,
		"asinh": math.Asinh, "atan": math.Atan, "atanh": math.Atanh, "cbrt": math.Cbrt,
		"ceil": math.Ceil, "cos": math.Cos, "cosh": math.Cosh, "exp": math.Exp,
		"expm1": math.Expm1, "floor": math.Floor, "log": math.Log, "log1p": math.Log1p,
		"log10": math.Log10, "log2": math.Log2, "round": jsRound, "sign": jsSign,
		"sin": math.Sin, "sinh": math.Sinh, "sqrt": math.Sqrt, "tan": math.Tan,
		"tanh": math.Tanh, "trunc": math.Trunc, "fround": jsFround,
	}

	for name, fn := range unary {
		fn := fn
		c.method(m, name, 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			x, err := toFloat64(rt, arg(args, 0))
			if err != nil {
				return value.Value{}, err
			}

			return value.Float(fn(x)), nil
		})
	}

	c.method(m, "atan2", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		y, err := toFloat64(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		x, err := toFloat64(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(math.Atan2(y, x)), nil
	})

	c.method(m, "pow", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		x, err := toFloat64(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		y, err := toFloat64(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		return value.Float(math.Pow(x, y)), nil
	})

	c.method(m, "imul", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		a, err := toInt32(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		b, err := toInt32(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(a * b), nil
	})

	c.method(m, "clz32", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		x, err := toUint32(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		n := int32(0)
		for n < 32 && x&(1<<(31-n)) == 0 {
			n++
		}

		return value.Int(n), nil
	})

	c.method(m, "hypot", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		sum := 0.0

		for _, a := range args {
			x, err := toFloat64(rt, a)
			if err != nil {
				return value.Value{}, err
			}

			sum += x * x
		}

		return value.Float(math.Sqrt(sum)), nil
	})

	c.method(m, "max", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return mathExtremum(rt, args, math.Inf(-1), math.Max)
	})

	c.method(m, "min", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return mathExtremum(rt, args, math.Inf(1), math.Min)
	})

	c.method(m, "random", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return value.Float(r.Random()), nil
	})

	c.define("Math", value.Obj(m.Self()))
}

func mathExtremum(rt object.Runtime, args []value.Value, identity float64, combine func(a, b float64) float64) (value.Value, error) {
	result := identity

	for _, a := range args {
		x, err := toFloat64(rt, a)
		if err != nil {
			return value.Value{}, err
		}

		if x != x { // NaN is absorbing for both max and min
			return value.Float(x), nil
		}

		result = combine(result, x)
	}

	return value.Float(result), nil
}

// jsRound implements Math.round's "half towards +Infinity" tie-breaking
// (§21.3.2.28), which differs from math.Round's "half away from zero".
func jsRound(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	return math.Floor(x + 0.5)
}

func jsSign(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return x
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x
	}
}

// jsFround rounds x to the nearest representable float32, matching
// §21.3.2.17's "round to IEEE-754 single precision" semantics.
func jsFround(x float64) float64 { return float64(float32(x)) }
