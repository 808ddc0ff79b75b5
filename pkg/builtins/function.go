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
	"fmt"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// bootstrapFunctionPrototype allocates %Function.prototype% itself: a
// callable (it is Function.prototype, and `Function.prototype()` is a
// defined no-op) KindFunction object with no [[Prototype]] of its own yet
// (installObject reparents it, see Install). Split out from installFunction
// so installObject's own constructor/method objects — built before
// installFunction ever runs — already find a real %Function.prototype% via
// IntrinsicPrototype("Function") instead of the zero handle.
func bootstrapFunctionPrototype(r *realm.Realm) *object.Object {
	proto := object.New(r.ShapeRoot(), "Function", object.KindFunction, heap.Gc[value.HeapObject]{})
	proto.SetData(&object.FunctionData{
		Name: "", ParameterCount: 0, Strict: true,
		Native: func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			return value.Undefined(), nil
		},
	})
	ref := heap.NewGc[value.HeapObject](r.Heap(), proto, nil)
	proto.SetSelf(ref)
	r.SetIntrinsic("%Function.prototype%", value.Obj(ref))

	return proto
}

// installFunction finishes %Function.prototype% (call/apply/bind/toString,
// §20.2.3) and builds the Function constructor (§20.2.1) — present for
// completeness and `instanceof Function` compatibility; `new Function(...)`
// does not compile dynamic source in this build (see DESIGN.md: doing so
// would need the full lexer/parser/bytecode pipeline reachable from a
// built-in, which the §2 dependency order deliberately keeps one-directional
// — pkg/builtins depends on pkg/bytecode/pkg/parser, never the reverse).
func installFunction(r *realm.Realm, proto *object.Object) {
	c := newCtx(r)

	c.method(proto, "call", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		if !isCallable(this) {
			return value.Value{}, throwType(rt, "Function.prototype.call called on non-callable")
		}

		thisArg := arg(args, 0)
		rest := []value.Value{}
		if len(args) > 1 {
			rest = args[1:]
		}

		return callValue(rt, this, thisArg, rest)
	})

	c.method(proto, "apply", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		if !isCallable(this) {
			return value.Value{}, throwType(rt, "Function.prototype.apply called on non-callable")
		}

		thisArg := arg(args, 0)
		argArray := arg(args, 1)

		var callArgs []value.Value
		if !argArray.IsNullish() {
			var err error
			callArgs, err = arrayLikeToSlice(rt, argArray)
			if err != nil {
				return value.Value{}, err
			}
		}

		return callValue(rt, this, thisArg, callArgs)
	})

	c.method(proto, "bind", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		h, ok := this.AsObject()
		if !ok || !isCallable(this) {
			return value.Value{}, throwType(rt, "Function.prototype.bind called on non-callable")
		}

		boundThis := arg(args, 0)
		boundArgs := []value.Value{}
		if len(args) > 1 {
			boundArgs = append(boundArgs, args[1:]...)
		}

		bound := object.New(r.ShapeRoot(), "Function", object.KindBoundFunction, r.IntrinsicPrototype("Function"))
		bound.SetData(&object.BoundFunctionData{Target: h, BoundThis: boundThis, BoundArgs: boundArgs})
		ref := heap.NewGc[value.HeapObject](r.Heap(), bound, nil)
		bound.SetSelf(ref)

		name := ""
		if fd, ok := h.Get().(*object.Object); ok {
			if data, ok := fd.Data().(*object.FunctionData); ok {
				name = data.Name
			}
		}

		_, _ = bound.DefineOwnProperty(r, key("name"), object.PropertyDescriptor{
			Value: value.StrFromGo("bound " + name), HasValue: true, Configurable: true,
		})

		return value.Obj(ref), nil
	})

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		h, ok := this.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "Function.prototype.toString called on non-function")
		}

		o, ok := h.Get().(*object.Object)
		if !ok || !o.IsCallable() {
			return value.Value{}, throwType(rt, "Function.prototype.toString called on non-function")
		}

		name := ""
		if fd, ok := o.Data().(*object.FunctionData); ok {
			name = fd.Name
		}

		if fd, ok := o.Data().(*object.FunctionData); ok && fd.Native != nil {
			return value.StrFromGo(fmt.Sprintf("function %s() { [native code] }", name)), nil
		}

		return value.StrFromGo(fmt.Sprintf("function %s() { ... }", name)), nil
	})

	c.symbolMethod(proto, value.SymbolHasInstance, "[Symbol.hasInstance]", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		th, ok := target.AsObject()
		if !ok {
			return value.Bool(false), nil
		}

		ctorH, ok := this.AsObject()
		if !ok {
			return value.Bool(false), nil
		}

		ctorO, ok := ctorH.Get().(*object.Object)
		if !ok {
			return value.Bool(false), nil
		}

		protoV, err := ctorO.Get(rt, key("prototype"), this)
		if err != nil {
			return value.Value{}, err
		}

		protoH, ok := protoV.AsObject()
		if !ok {
			return value.Value{}, throwType(rt, "prototype is not an object")
		}

		for {
			o, ok := th.Get().(*object.Object)
			if !ok {
				return value.Bool(false), nil
			}

			p := o.Shape().Prototype()
			if p.IsZero() {
				return value.Bool(false), nil
			}

			if p.Get() == protoH.Get() {
				return value.Bool(true), nil
			}

			th = p
		}
	})

	ctorVal, ctorObj := c.nativeConstructor("Function", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return value.Value{}, throwType(rt, "Function constructor does not support compiling source text in this build")
	})

	c.definePrototype("Function", ctorVal, ctorObj, proto, proto.Self())
	c.define("Function", ctorVal)
}
