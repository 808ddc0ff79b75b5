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
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// wellKnownSymbols names every §6.1.5.1 well-known symbol this build
// exposes as a static data property of the Symbol constructor, keyed by
// its Symbol.<name> property name.
var wellKnownSymbols = map[string]*value.Symbol{
	"iterator":            value.SymbolIterator,
	"asyncIterator":       value.SymbolAsyncIterator,
	"toPrimitive":         value.SymbolToPrimitive,
	"toStringTag":         value.SymbolToStringTag,
	"hasInstance":         value.SymbolHasInstance,
	"species":             value.SymbolSpecies,
	"isConcatSpreadable":  value.SymbolIsConcatSpreadable,
	"unscopables":         value.SymbolUnscopables,
	"match":               value.SymbolMatch,
	"replace":             value.SymbolReplace,
	"search":              value.SymbolSearch,
	"split":               value.SymbolSplit,
}

// installSymbol builds %Symbol% (§20.4): the constructor (callable but
// never constructible — `new Symbol()` throws, per §20.4.1.1), its
// well-known-symbol statics, the global symbol registry (`for`/`keyFor`),
// and %Symbol.prototype%'s description accessor and toString/
// [Symbol.toPrimitive] methods.
func installSymbol(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()

	// registry is per-realm symbol-registry state (§20.4.2.2's GlobalSymbolRegistry
	// list), captured by the two closures below rather than stored on Realm —
	// nothing outside Symbol.for/keyFor ever needs to see it.
	registry := map[string]*value.Symbol{}

	// Symbol is callable but never constructible (§20.4.1.1: `new Symbol()`
	// throws TypeError), so it's built via nativeFunction directly rather
	// than nativeConstructor — there is no IsConstructor flag to set.
	ctorVal := c.nativeFunction("Symbol", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		desc := arg(args, 0)
		if desc.IsUndefined() {
			return value.Sym(value.NewSymbolNoDescription()), nil
		}

		s, err := toGoString(rt, desc)
		if err != nil {
			return value.Value{}, err
		}

		return value.Sym(value.NewSymbol(s)), nil
	})

	ctorH, _ := ctorVal.AsObject()
	ctorObject, _ := ctorH.Get().(*object.Object)

	for name, sym := range wellKnownSymbols {
		c.dataValue(ctorObject, name, value.Sym(sym), false)
	}

	c.method(ctorObject, "for", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		k, err := toGoString(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		if s, ok := registry[k]; ok {
			return value.Sym(s), nil
		}

		s := value.NewSymbol(k)
		registry[k] = s

		return value.Sym(s), nil
	})

	c.method(ctorObject, "keyFor", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		sv := arg(args, 0)
		if sv.Kind() != value.KindSymbol {
			return value.Value{}, throwType(rt, "Symbol.keyFor called on non-symbol")
		}

		for k, s := range registry {
			if s == sv.Symbol() {
				return value.StrFromGo(k), nil
			}
		}

		return value.Undefined(), nil
	})

	c.accessor(proto, "description", func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		sv, err := thisBoxedPrimitive(rt, this, value.KindSymbol, "Symbol.prototype.description")
		if err != nil {
			return value.Value{}, err
		}

		desc, has := sv.Symbol().Description()
		if !has {
			return value.Undefined(), nil
		}

		return value.StrFromGo(desc), nil
	})

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		sv, err := thisBoxedPrimitive(rt, this, value.KindSymbol, "Symbol.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		return value.StrFromGo(sv.Symbol().String()), nil
	})

	c.method(proto, "valueOf", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return thisBoxedPrimitive(rt, this, value.KindSymbol, "Symbol.prototype.valueOf")
	})

	c.symbolMethod(proto, value.SymbolToPrimitive, "[Symbol.toPrimitive]", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return thisBoxedPrimitive(rt, this, value.KindSymbol, "Symbol.prototype[Symbol.toPrimitive]")
	})

	_, _ = ctorObject.DefineOwnProperty(r, key("prototype"), object.PropertyDescriptor{
		Value: value.Obj(protoRef), HasValue: true, Writable: false, Enumerable: false, Configurable: false,
	})
	_, _ = proto.DefineOwnProperty(r, key("constructor"), object.PropertyDescriptor{
		Value: ctorVal, HasValue: true, Writable: true, Enumerable: false, Configurable: true,
	})

	r.SetIntrinsic("%Symbol.prototype%", value.Obj(protoRef))
	c.define("Symbol", ctorVal)
}
