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

// Package builtins populates a freshly constructed realm with §4.9's
// standard library: every constructor, prototype, and namespace object a
// conformant host is expected to provide before running any script. Each
// file in this package is one built-in family (object.go, array.go,
// string.go, ...), installed in dependency order by Install — mirroring how
// the teacher's pkg/corset/compiler wires one resolver pass per declaration
// kind, generalized here to one installer func per built-in family instead.
package builtins

import (
	"fmt"
	"strconv"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
	"github.com/ecmaforge/ecmaforge/pkg/vm"
)

// Install populates r with the full standard built-in surface and wires it
// as m's realm (m may be nil for a host that only needs static analysis
// over r, never running any bytecode against it — every constructor still
// gets built, just never reachable without a VM to call it). Order matters:
// Object/Function/Array come first since IntrinsicPrototype("Object"/
// "Function") is consulted by object.New throughout every other installer
// and by pkg/vm's own allocation sites (arrays, arguments objects) before
// this call ever ran; everything depending on Error (TypeErrors thrown by
// other installers' own validation) comes right after.
func Install(r *realm.Realm, m *vm.VM) error {
	// Object and Function are mutually bootstrapping (every function is an
	// object; %Function.prototype%'s own prototype is %Object.prototype%),
	// so Function.prototype is allocated as a bare shell first — with a
	// temporary zero [[Prototype]], the same allowance object.New's own doc
	// comment makes for the realm's global object — and only reparented
	// onto %Object.prototype% once installObject has built it.
	functionProto := bootstrapFunctionPrototype(r)
	installObject(r)
	functionProto.SetPrototype(r.IntrinsicPrototype("Object"))
	installFunction(r, functionProto)
	installArray(r)
	r.RebindGlobalPrototype(r.IntrinsicPrototype("Object"))

	// %Iterator.prototype% must exist before any installer below builds a
	// concrete iterator object (Array/String/Map/Set/RegExp's own
	// per-kind iterators, each parented on it instead of directly on
	// %Object.prototype%) so `.map`/`.filter`/`.take`/`.drop`/`.toArray`
	// and the rest of the iterator-helper surface are available on every
	// one of them through the prototype chain.
	installIteratorPrototype(r)

	installError(r)
	installSymbol(r)
	installBoolean(r)
	installNumber(r)
	installString(r)
	installMath(r)
	installJSON(r)
	installMapSet(r)
	installWeakRefs(r)
	installArrayBuffer(r)
	installRegExp(r)
	installDate(r)
	installReflectProxy(r)

	if m != nil {
		installPromise(r, m)
	}

	installIntl(r)
	installTemporal(r)
	installConsole(r)
	installGlobalFunctions(r)

	return nil
}

// ctx bundles the realm with the shared construction helpers every built-in
// family uses; a thin wrapper rather than free functions taking *realm.Realm
// everywhere, since nearly every installer needs the same half-dozen
// primitives (newObject, method, value, getter) in sequence.
type ctx struct {
	r *realm.Realm
}

func newCtx(r *realm.Realm) ctx { return ctx{r: r} }

// newObject allocates a bare Ordinary object parented off proto.
func (c ctx) newObject(proto heap.Gc[value.HeapObject]) *object.Object {
	obj := object.New(c.r.ShapeRoot(), "Object", object.KindOrdinary, proto)
	ref := heap.NewGc[value.HeapObject](c.r.Heap(), obj, nil)
	obj.SetSelf(ref)

	return obj
}

// nativeFunction builds a callable Function object wrapping fn, parented
// off %Function.prototype% — the idiom pkg/vm/promise.go's own nativeFunc
// helper established, replicated here since pkg/builtins has no access to
// pkg/vm's unexported method (and most builtins don't need a VM at all).
func (c ctx) nativeFunction(name string, paramCount int, fn object.NativeFunc) value.Value {
	proto := c.r.IntrinsicPrototype("Function")
	obj := object.New(c.r.ShapeRoot(), "Function", object.KindFunction, proto)
	obj.SetData(&object.FunctionData{Name: name, ParameterCount: paramCount, Native: fn, Strict: true, IsConstructor: false})
	ref := heap.NewGc[value.HeapObject](c.r.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref)
}

// nativeConstructor is nativeFunction plus IsConstructor, for a builtin
// whose `new X()` form is meaningful (most of them).
func (c ctx) nativeConstructor(name string, paramCount int, fn object.NativeFunc) (value.Value, *object.Object) {
	proto := c.r.IntrinsicPrototype("Function")
	obj := object.New(c.r.ShapeRoot(), "Function", object.KindFunction, proto)
	obj.SetData(&object.FunctionData{Name: name, ParameterCount: paramCount, Native: fn, Strict: true, IsConstructor: true})
	ref := heap.NewGc[value.HeapObject](c.r.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref), obj
}

func key(name string) value.PropertyKey { return value.StringKey(value.NewString(name)) }

func symKey(s *value.Symbol) value.PropertyKey { return value.SymbolKey(s) }

// method installs a non-enumerable, writable, configurable native method —
// the attribute triple every built-in prototype method in §4.9 uses.
func (c ctx) method(obj *object.Object, name string, paramCount int, fn object.NativeFunc) {
	v := c.nativeFunction(name, paramCount, fn)
	_, _ = obj.DefineOwnProperty(c.r, key(name), object.PropertyDescriptor{
		Value: v, HasValue: true, Writable: true, Enumerable: false, Configurable: true,
	})
}

// symbolMethod is method for a well-known-symbol-keyed method
// (`obj[Symbol.iterator] = fn`).
func (c ctx) symbolMethod(obj *object.Object, s *value.Symbol, name string, paramCount int, fn object.NativeFunc) {
	v := c.nativeFunction(name, paramCount, fn)
	_, _ = obj.DefineOwnProperty(c.r, symKey(s), object.PropertyDescriptor{
		Value: v, HasValue: true, Writable: true, Enumerable: false, Configurable: true,
	})
}

// dataValue installs a non-enumerable data property, the attribute triple
// used for "prototype"-shaped or constant values (Math.PI, well-known
// symbols).
func (c ctx) dataValue(obj *object.Object, name string, v value.Value, writable bool) {
	_, _ = obj.DefineOwnProperty(c.r, key(name), object.PropertyDescriptor{
		Value: v, HasValue: true, Writable: writable, Enumerable: false, Configurable: true,
	})
}

// accessor installs a getter-only accessor property (Array.prototype.length
// style, Map.prototype.size, ...).
func (c ctx) accessor(obj *object.Object, name string, get object.NativeFunc) {
	getter := c.nativeFunction("get "+name, 0, get)
	_, _ = obj.DefineOwnProperty(c.r, key(name), object.PropertyDescriptor{
		IsAccessor: true, Get: getter, Set: value.Undefined(), Enumerable: false, Configurable: true,
	})
}

// define installs a global binding under name, used by every installer to
// publish its constructor/namespace both on the global object (so ordinary
// identifier lookup finds it) and in the intrinsics table (so
// IntrinsicPrototype/Intrinsic can find "%Name%"/"%Name.prototype%").
func (c ctx) define(name string, v value.Value) {
	c.r.SetIntrinsic("%"+name+"%", v)
	_, _ = c.r.GlobalObject().DefineOwnProperty(c.r, key(name), object.PropertyDescriptor{
		Value: v, HasValue: true, Writable: true, Enumerable: false, Configurable: true,
	})
}

// definePrototype wires ctor.prototype = proto and proto.constructor =
// ctorVal, the standard link every constructor/prototype pair in §4.9
// shares, and registers "%Name.prototype%" in the intrinsics table. proto
// must already have its own self-reference (protoRef) set, via newObject/
// SetSelf, before calling this — construction of a prototype's own GC
// handle is the caller's job so a caller that needs proto's ref for
// anything else (Object.prototype's special zero-prototype case) never ends
// up allocating it twice.
func (c ctx) definePrototype(name string, ctorVal value.Value, ctorObj, proto *object.Object, protoRef heap.Gc[value.HeapObject]) {
	_, _ = ctorObj.DefineOwnProperty(c.r, key("prototype"), object.PropertyDescriptor{
		Value: value.Obj(protoRef), HasValue: true, Writable: false, Enumerable: false, Configurable: false,
	})
	_, _ = proto.DefineOwnProperty(c.r, key("constructor"), object.PropertyDescriptor{
		Value: ctorVal, HasValue: true, Writable: true, Enumerable: false, Configurable: true,
	})

	c.r.SetIntrinsic("%"+name+".prototype%", value.Obj(protoRef))
}

func arg(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Undefined()
	}

	return args[i]
}

func throwType(rt object.Runtime, format string, a ...any) error {
	v := rt.NewError("TypeError", fmt.Sprintf(format, a...))
	return &thrown{v: v}
}

func throwRange(rt object.Runtime, format string, a ...any) error {
	v := rt.NewError("RangeError", fmt.Sprintf(format, a...))
	return &thrown{v: v}
}

// thrown adapts a constructed error Value into a Go error, the same
// "Kind: message"-observing convention pkg/vm's adapt already recognizes —
// a builtin never needs to know about *vm.ThrownError directly.
type thrown struct{ v value.Value }

func (t *thrown) Error() string {
	s, err := value.ToJSString(t.v, nil)
	if err != nil {
		return "error"
	}

	return s.String()
}

// toObject implements the ToObject abstract operation for the subset of
// source values every built-in method needs (primitives wrapped via their
// own constructor's prototype); nullish throws TypeError per §7.1.13.
func (c ctx) toObject(rt object.Runtime, v value.Value) (*object.Object, heap.Gc[value.HeapObject], error) {
	if h, ok := v.AsObject(); ok {
		o, _ := h.Get().(*object.Object)
		return o, h, nil
	}

	if v.IsNullish() {
		return nil, heap.Gc[value.HeapObject]{}, throwType(rt, "cannot convert undefined or null to object")
	}

	// Every primitive wrapper stores the boxed primitive itself as its Data
	// payload (a plain value.Value) — the same convention pkg/vm's own
	// toObject (used for the `new`/ToObject paths reachable without going
	// through pkg/builtins) already established, so String/Number/Boolean/
	// Symbol.prototype methods can read `this` the same way regardless of
	// which of the two ever built the wrapper.
	var kindName string

	switch v.Kind() {
	case value.KindString:
		kindName = "String"
	case value.KindBoolean:
		kindName = "Boolean"
	case value.KindInteger, value.KindRational:
		kindName = "Number"
	case value.KindSymbol:
		kindName = "Symbol"
	default:
		return nil, heap.Gc[value.HeapObject]{}, throwType(rt, "cannot convert value to object")
	}

	obj := object.New(c.r.ShapeRoot(), kindName, object.KindStringWrapper, c.r.IntrinsicPrototype(kindName))
	obj.SetData(v)
	ref := heap.NewGc[value.HeapObject](c.r.Heap(), obj, nil)
	obj.SetSelf(ref)

	if v.Kind() == value.KindString {
		populateStringIndices(c.r, obj, v.JSString())
	}

	return obj, ref, nil
}

// populateStringIndices gives a String exotic object (§10.4.3) its own
// non-writable, non-configurable, enumerable per-index character
// properties plus "length" — every place a String wrapper is constructed
// (ToObject boxing here and in pkg/vm, `new String(...)`) needs the same
// shape, so it lives as one shared helper rather than three copies.
func populateStringIndices(r *realm.Realm, obj *object.Object, s value.JSString) {
	_, _ = obj.DefineOwnProperty(r, key("length"), object.PropertyDescriptor{
		Value: value.Int(int32(s.Length())), HasValue: true,
	})

	for i := 0; i < s.Length(); i++ {
		ch := value.NewStringFromUnits([]uint16{s.At(i)})
		_, _ = obj.DefineOwnProperty(r, key(strconv.Itoa(i)), object.PropertyDescriptor{
			Value: value.Str(ch), HasValue: true, Enumerable: true,
		})
	}
}

// thisBoxedPrimitive implements the "this value" check §21's wrapper
// prototype methods share (Number.prototype.valueOf, Boolean.prototype.
// toString, ...): accepts this directly if it's already the wanted
// primitive kind (the unboxed-receiver path getProperty's GetV uses for
// `(5).toString()`), or unwraps a wrapper object built by toObject/ToObject
// whose Data is that same primitive kind, and throws otherwise.
func thisBoxedPrimitive(rt object.Runtime, this value.Value, kind value.Kind, what string) (value.Value, error) {
	if this.Kind() == kind {
		return this, nil
	}

	if h, ok := this.AsObject(); ok {
		if o, ok := h.Get().(*object.Object); ok {
			if data, ok := o.Data().(value.Value); ok && data.Kind() == kind {
				return data, nil
			}
		}
	}

	return value.Value{}, throwType(rt, "%s called on incompatible receiver", what)
}

// callValue invokes a callable Value with this/args via the object model's
// own Call (no VM import needed): the late-bound call hook pkg/vm installed
// at construction time is what actually runs it.
func callValue(rt object.Runtime, fn value.Value, this value.Value, args []value.Value) (value.Value, error) {
	h, ok := fn.AsObject()
	if !ok {
		return value.Value{}, throwType(rt, "value is not a function")
	}

	o, ok := h.Get().(*object.Object)
	if !ok || !o.IsCallable() {
		return value.Value{}, throwType(rt, "value is not a function")
	}

	return o.Call(rt, h, this, args)
}

func isCallable(v value.Value) bool {
	h, ok := v.AsObject()
	if !ok {
		return false
	}

	o, ok := h.Get().(*object.Object)

	return ok && o.IsCallable()
}
