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
package vm

import (
	"math"
	"math/big"

	"github.com/ecmaforge/ecmaforge/pkg/bytecode"
	"github.com/ecmaforge/ecmaforge/pkg/envrec"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// execArith handles every arithmetic, bitwise, relational, equality, and
// unary operator op, plus `in`/`instanceof`/`typeof`.
func (vm *VM) execArith(f *Frame, op bytecode.Op) signal {
	switch o := op.(type) {
	case bytecode.Add:
		b, a := f.pop(), f.pop()

		v, te := vm.add(a, b)
		if te != nil {
			return sErr(te)
		}

		f.push(v)

	case bytecode.Concat:
		b, a := f.pop(), f.pop()

		sa, err := value.ToJSString(a, vm)
		if err != nil {
			return sErr(vm.adapt(err))
		}

		sb, err := value.ToJSString(b, vm)
		if err != nil {
			return sErr(vm.adapt(err))
		}

		f.push(value.Str(value.NewStringFromUnits(append(append([]uint16{}, sa.Units()...), sb.Units()...))))

	case bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Mod, bytecode.Exp:
		b, a := f.pop(), f.pop()

		v, te := vm.numericBinOp(op, a, b)
		if te != nil {
			return sErr(te)
		}

		f.push(v)

	case bytecode.Shl, bytecode.Shr, bytecode.UShr, bytecode.BitAnd, bytecode.BitOr, bytecode.BitXor:
		b, a := f.pop(), f.pop()

		v, te := vm.bitwiseBinOp(op, a, b)
		if te != nil {
			return sErr(te)
		}

		f.push(v)

	case bytecode.Equal:
		b, a := f.pop(), f.pop()

		eq, te := vm.looseEquals(a, b)
		if te != nil {
			return sErr(te)
		}

		f.push(value.Bool(eq))

	case bytecode.NotEqual:
		b, a := f.pop(), f.pop()

		eq, te := vm.looseEquals(a, b)
		if te != nil {
			return sErr(te)
		}

		f.push(value.Bool(!eq))

	case bytecode.StrictEqual:
		b, a := f.pop(), f.pop()
		f.push(value.Bool(value.StrictEquals(a, b)))

	case bytecode.StrictNotEqual:
		b, a := f.pop(), f.pop()
		f.push(value.Bool(!value.StrictEquals(a, b)))

	case bytecode.LessThan, bytecode.LessEqual, bytecode.GreaterThan, bytecode.GreaterEqual:
		b, a := f.pop(), f.pop()

		v, te := vm.relational(op, a, b)
		if te != nil {
			return sErr(te)
		}

		f.push(v)

	case bytecode.In:
		b, a := f.pop(), f.pop()

		v, te := vm.inOperator(a, b)
		if te != nil {
			return sErr(te)
		}

		f.push(v)

	case bytecode.InstanceOf:
		b, a := f.pop(), f.pop()

		v, te := vm.instanceOf(a, b)
		if te != nil {
			return sErr(te)
		}

		f.push(v)

	case bytecode.Negate:
		n, err := value.ToNumeric(f.pop(), vm)
		if err != nil {
			return sErr(vm.adapt(err))
		}

		if n.Kind() == value.KindBigInt {
			f.push(value.BigIntValue(new(big.Int).Neg(n.BigInt())))
		} else {
			f.push(value.Float(-n.Float64()))
		}

	case bytecode.UnaryPlus:
		n, err := value.ToNumber(f.pop(), vm)
		if err != nil {
			return sErr(vm.adapt(err))
		}

		f.push(n)

	case bytecode.Not:
		f.push(value.Bool(!f.pop().ToBoolean()))

	case bytecode.BitNot:
		i, te := vm.toInt32(f.pop())
		if te != nil {
			return sErr(te)
		}

		f.push(value.Int(^i))

	case bytecode.TypeOf:
		v := f.pop()
		f.push(value.Str(value.NewString(vm.typeOf(v))))

	case bytecode.TypeOfName:
		v, err := typeOfNameValue(vm, f, o)
		if err != nil {
			return sErr(vm.adapt(err))
		}

		f.push(value.Str(value.NewString(v)))
	}

	return sNone()
}

// typeOf reports `typeof`'s result, special-casing callable objects
// (pkg/value.Value.TypeOf cannot, since value has no notion of callability).
func (vm *VM) typeOf(v value.Value) string {
	if h, ok := v.AsObject(); ok {
		if o, ok := h.Get().(*object.Object); ok && o.IsCallable() {
			return "function"
		}
	}

	return v.TypeOf()
}

// typeOfNameValue implements `typeof x` on a bare identifier, which must not
// raise ReferenceError for an undeclared name the way plain GetName would.
func typeOfNameValue(vm *VM, f *Frame, o bytecode.TypeOfName) (string, error) {
	env := envrec.Resolve(vm.realm, f.env, o.Name)
	if env == nil {
		return "undefined", nil
	}

	v, err := env.GetBindingValue(vm.realm, o.Name)
	if err != nil {
		return "", err
	}

	return vm.typeOf(v), nil
}

// add implements the `+` operator's full ToPrimitive-then-(string-concat-or-
// numeric-add) dance (§13.15.3): each operand is coerced to a primitive
// first (objects may have arbitrary valueOf/toString/@@toPrimitive side
// effects before either branch is chosen), and the result is a string
// concatenation if either primitive is a string, numeric addition otherwise.
func (vm *VM) add(a, b value.Value) (value.Value, *ThrownError) {
	pa, err := vm.toPrimitiveDefault(a)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	pb, err := vm.toPrimitiveDefault(b)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	if pa.Kind() == value.KindString || pb.Kind() == value.KindString {
		sa, err := value.ToJSString(pa, vm)
		if err != nil {
			return value.Value{}, vm.adapt(err)
		}

		sb, err := value.ToJSString(pb, vm)
		if err != nil {
			return value.Value{}, vm.adapt(err)
		}

		return value.Str(value.NewStringFromUnits(append(append([]uint16{}, sa.Units()...), sb.Units()...))), nil
	}

	na, err := value.ToNumeric(pa, vm)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	nb, err := value.ToNumeric(pb, vm)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	if na.Kind() == value.KindBigInt || nb.Kind() == value.KindBigInt {
		ba, bb, te := vm.bothBigInt(na, nb)
		if te != nil {
			return value.Value{}, te
		}

		return value.BigIntValue(new(big.Int).Add(ba, bb)), nil
	}

	return value.NumberAdd(na, nb), nil
}

func (vm *VM) toPrimitiveDefault(v value.Value) (value.Value, error) {
	if !v.IsObject() {
		return v, nil
	}

	return vm.ToPrimitive(v, "default")
}

func (vm *VM) numericBinOp(op bytecode.Op, a, b value.Value) (value.Value, *ThrownError) {
	na, err := value.ToNumeric(a, vm)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	nb, err := value.ToNumeric(b, vm)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	if na.Kind() == value.KindBigInt || nb.Kind() == value.KindBigInt {
		ba, bb, te := vm.bothBigInt(na, nb)
		if te != nil {
			return value.Value{}, te
		}

		return vm.bigIntBinOp(op, ba, bb)
	}

	switch op.(type) {
	case bytecode.Sub:
		return value.NumberSub(na, nb), nil
	case bytecode.Mul:
		return value.NumberMul(na, nb), nil
	case bytecode.Div:
		return value.NumberDiv(na, nb), nil
	case bytecode.Mod:
		return value.NumberMod(na, nb), nil
	case bytecode.Exp:
		return value.NumberExp(na, nb), nil
	}

	return value.Value{}, nil
}

func (vm *VM) bothBigInt(a, b value.Value) (*big.Int, *big.Int, *ThrownError) {
	if a.Kind() != value.KindBigInt || b.Kind() != value.KindBigInt {
		return nil, nil, vm.throw("TypeError", "cannot mix BigInt and other types")
	}

	return a.BigInt(), b.BigInt(), nil
}

func (vm *VM) bigIntBinOp(op bytecode.Op, a, b *big.Int) (value.Value, *ThrownError) {
	switch op.(type) {
	case bytecode.Sub:
		return value.BigIntValue(new(big.Int).Sub(a, b)), nil
	case bytecode.Mul:
		return value.BigIntValue(new(big.Int).Mul(a, b)), nil
	case bytecode.Div:
		if b.Sign() == 0 {
			return value.Value{}, vm.throw("RangeError", "division by zero")
		}

		return value.BigIntValue(new(big.Int).Quo(a, b)), nil
	case bytecode.Mod:
		if b.Sign() == 0 {
			return value.Value{}, vm.throw("RangeError", "division by zero")
		}

		return value.BigIntValue(new(big.Int).Rem(a, b)), nil
	case bytecode.Exp:
		if b.Sign() < 0 {
			return value.Value{}, vm.throw("RangeError", "exponent must be non-negative")
		}

		return value.BigIntValue(new(big.Int).Exp(a, b, nil)), nil
	}

	return value.Value{}, nil
}

func (vm *VM) toInt32(v value.Value) (int32, *ThrownError) {
	n, err := value.ToNumber(v, vm)
	if err != nil {
		return 0, vm.adapt(err)
	}

	f := n.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, nil
	}

	return int32(uint32(int64(f))), nil
}

func (vm *VM) toUint32(v value.Value) (uint32, *ThrownError) {
	i, te := vm.toInt32(v)

	return uint32(i), te
}

func (vm *VM) bitwiseBinOp(op bytecode.Op, a, b value.Value) (value.Value, *ThrownError) {
	switch op.(type) {
	case bytecode.Shl:
		la, te := vm.toInt32(a)
		if te != nil {
			return value.Value{}, te
		}

		rb, te2 := vm.toUint32(b)
		if te2 != nil {
			return value.Value{}, te2
		}

		return value.Int(la << (rb & 31)), nil

	case bytecode.Shr:
		la, te := vm.toInt32(a)
		if te != nil {
			return value.Value{}, te
		}

		rb, te2 := vm.toUint32(b)
		if te2 != nil {
			return value.Value{}, te2
		}

		return value.Int(la >> (rb & 31)), nil

	case bytecode.UShr:
		la, te := vm.toUint32(a)
		if te != nil {
			return value.Value{}, te
		}

		rb, te2 := vm.toUint32(b)
		if te2 != nil {
			return value.Value{}, te2
		}

		return value.Float(float64(la >> (rb & 31))), nil

	case bytecode.BitAnd:
		la, te := vm.toInt32(a)
		if te != nil {
			return value.Value{}, te
		}

		rb, te2 := vm.toInt32(b)
		if te2 != nil {
			return value.Value{}, te2
		}

		return value.Int(la & rb), nil

	case bytecode.BitOr:
		la, te := vm.toInt32(a)
		if te != nil {
			return value.Value{}, te
		}

		rb, te2 := vm.toInt32(b)
		if te2 != nil {
			return value.Value{}, te2
		}

		return value.Int(la | rb), nil

	case bytecode.BitXor:
		la, te := vm.toInt32(a)
		if te != nil {
			return value.Value{}, te
		}

		rb, te2 := vm.toInt32(b)
		if te2 != nil {
			return value.Value{}, te2
		}

		return value.Int(la ^ rb), nil
	}

	return value.Value{}, nil
}

func (vm *VM) relational(op bytecode.Op, a, b value.Value) (value.Value, *ThrownError) {
	pa, err := vm.toPrimitiveDefault(a)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	pb, err := vm.toPrimitiveDefault(b)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	if pa.Kind() == value.KindString && pb.Kind() == value.KindString {
		c := pa.JSString().Compare(pb.JSString())

		switch op.(type) {
		case bytecode.LessThan:
			return value.Bool(c < 0), nil
		case bytecode.LessEqual:
			return value.Bool(c <= 0), nil
		case bytecode.GreaterThan:
			return value.Bool(c > 0), nil
		case bytecode.GreaterEqual:
			return value.Bool(c >= 0), nil
		}
	}

	na, err := value.ToNumeric(pa, vm)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	nb, err := value.ToNumeric(pb, vm)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	var (
		c  int
		ok bool
	)

	if na.Kind() == value.KindBigInt || nb.Kind() == value.KindBigInt {
		fa, fb := bigIntOrFloat(na), bigIntOrFloat(nb)
		c, ok = fa.Cmp(fb), true
	} else {
		c, ok = value.Compare(na, nb)
	}

	if !ok {
		return value.Bool(false), nil
	}

	switch op.(type) {
	case bytecode.LessThan:
		return value.Bool(c < 0), nil
	case bytecode.LessEqual:
		return value.Bool(c <= 0), nil
	case bytecode.GreaterThan:
		return value.Bool(c > 0), nil
	case bytecode.GreaterEqual:
		return value.Bool(c >= 0), nil
	}

	return value.Bool(false), nil
}

// bigIntOrFloat widens a numeric Value that might be either BigInt or
// float-valued to a *big.Float, for mixed BigInt/Number relational compares
// (§7.2.14), where ToNumeric-style normalization to one BigInt type would
// lose precision or silently truncate.
func bigIntOrFloat(v value.Value) *big.Float {
	if v.Kind() == value.KindBigInt {
		return new(big.Float).SetInt(v.BigInt())
	}

	return big.NewFloat(v.Float64())
}

// looseEquals implements the Abstract Equality Comparison (§7.2.13).
func (vm *VM) looseEquals(a, b value.Value) (bool, *ThrownError) {
	if a.Kind() == b.Kind() {
		return value.StrictEquals(a, b), nil
	}

	if a.IsNullish() && b.IsNullish() {
		return true, nil
	}

	if a.IsNullish() || b.IsNullish() {
		return false, nil
	}

	if a.IsNumber() && b.Kind() == value.KindString {
		nb, err := value.ToNumber(b, vm)
		if err != nil {
			return false, vm.adapt(err)
		}

		c, ok := value.Compare(a, nb)

		return ok && c == 0, nil
	}

	if a.Kind() == value.KindString && b.IsNumber() {
		return vm.looseEquals(b, a)
	}

	if a.Kind() == value.KindBoolean {
		na, err := value.ToNumber(a, vm)
		if err != nil {
			return false, vm.adapt(err)
		}

		return vm.looseEquals(na, b)
	}

	if b.Kind() == value.KindBoolean {
		nb, err := value.ToNumber(b, vm)
		if err != nil {
			return false, vm.adapt(err)
		}

		return vm.looseEquals(a, nb)
	}

	if (a.IsNumber() || a.Kind() == value.KindString || a.Kind() == value.KindBigInt) && b.IsObject() {
		pb, err := vm.ToPrimitive(b, "default")
		if err != nil {
			return false, vm.adapt(err)
		}

		return vm.looseEquals(a, pb)
	}

	if a.IsObject() && (b.IsNumber() || b.Kind() == value.KindString || b.Kind() == value.KindBigInt) {
		return vm.looseEquals(b, a)
	}

	if a.Kind() == value.KindBigInt && b.Kind() == value.KindString {
		nb, ok := new(big.Int).SetString(b.JSString().String(), 0)
		if !ok {
			return false, nil
		}

		return a.BigInt().Cmp(nb) == 0, nil
	}

	if a.Kind() == value.KindString && b.Kind() == value.KindBigInt {
		return vm.looseEquals(b, a)
	}

	if (a.Kind() == value.KindBigInt && b.IsNumber()) || (a.IsNumber() && b.Kind() == value.KindBigInt) {
		fa, fb := bigIntOrFloat(a), bigIntOrFloat(b)

		return fa.Cmp(fb) == 0, nil
	}

	return false, nil
}

func (vm *VM) inOperator(key, obj value.Value) (value.Value, *ThrownError) {
	h, ok := obj.AsObject()
	if !ok {
		return value.Value{}, vm.throw("TypeError", "cannot use 'in' operator on a non-object")
	}

	o, _ := h.Get().(*object.Object)

	pk, err := value.ToPropertyKey(key, vm)
	if err != nil {
		return value.Value{}, vm.adapt(err)
	}

	return value.Bool(o.HasProperty(pk)), nil
}

// instanceOf implements OrdinaryHasInstance (§7.3.22): walk target's own
// prototype chain looking for ctor's "prototype" data property's value.
func (vm *VM) instanceOf(target, ctor value.Value) (value.Value, *ThrownError) {
	ch, ok := ctor.AsObject()
	if !ok {
		return value.Value{}, vm.throw("TypeError", "right-hand side of 'instanceof' is not callable")
	}

	co, ok := ch.Get().(*object.Object)
	if !ok || !co.IsCallable() {
		return value.Value{}, vm.throw("TypeError", "right-hand side of 'instanceof' is not callable")
	}

	if !target.IsObject() {
		return value.Bool(false), nil
	}

	protoDesc, ok := co.GetOwnProperty(value.StringKey(value.NewString("prototype")))
	if !ok || !protoDesc.HasValue {
		return value.Value{}, vm.throw("TypeError", "function has no prototype property")
	}

	protoH, ok := protoDesc.Value.AsObject()
	if !ok {
		return value.Value{}, vm.throw("TypeError", "'prototype' is not an object")
	}

	th, _ := target.AsObject()

	for cur, _ := th.Get().(*object.Object); cur != nil; {
		p := cur.Shape().Prototype()
		if p.IsZero() {
			return value.Bool(false), nil
		}

		if p.ID() == protoH.ID() {
			return value.Bool(true), nil
		}

		cur, _ = p.Get().(*object.Object)
	}

	return value.Bool(false), nil
}
