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
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// nativeErrorNames are the built-in subclasses of Error (§20.5.6.1) whose
// prototype chains this installer builds on top of %Error.prototype%.
// AggregateError (§20.5.7) is listed separately below since its constructor
// takes an extra leading "errors" argument.
var nativeErrorNames = []string{
	"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError",
}

// installError builds %Error% and %Error.prototype% plus the native
// subclasses realm.Realm.NewError already throws by kind name
// (isErrorKindName in pkg/vm mirrors exactly this set) — every throwType/
// throwRange call elsewhere in pkg/builtins, and every internal VM throw,
// resolves its [[Prototype]] through the intrinsics this installer
// registers, so it must run before any other installer that might throw.
func installError(r *realm.Realm) {
	c := newCtx(r)

	errProto, errProtoRef := c.buildErrorPrototype(r.IntrinsicPrototype("Object"), "Error", "")
	errCtorVal, errCtorObj := c.errorConstructor("Error", errProtoRef)
	c.definePrototype("Error", errCtorVal, errCtorObj, errProto, errProtoRef)
	c.define("Error", errCtorVal)

	for _, name := range nativeErrorNames {
		proto, protoRef := c.buildErrorPrototype(errProtoRef, name, "")
		ctorVal, ctorObj := c.errorConstructor(name, protoRef)
		c.definePrototype(name, ctorVal, ctorObj, proto, protoRef)
		c.define(name, ctorVal)
	}

	aggProto, aggProtoRef := c.buildErrorPrototype(errProtoRef, "AggregateError", "")
	aggCtorVal, aggCtorObj := c.aggregateErrorConstructor(aggProtoRef)
	c.definePrototype("AggregateError", aggCtorVal, aggCtorObj, aggProto, aggProtoRef)
	c.define("AggregateError", aggCtorVal)
}

// buildErrorPrototype builds one Error.prototype-shaped object: own "name"
// and "message" data properties (§20.5.3.2/.3, inherited by every instance
// that doesn't set its own), parented off parent.
func (c ctx) buildErrorPrototype(parent heap.Gc[value.HeapObject], name, message string) (*object.Object, heap.Gc[value.HeapObject]) {
	proto := c.newObject(parent)
	protoRef := proto.Self()

	c.dataValue(proto, "name", value.StrFromGo(name), true)
	c.dataValue(proto, "message", value.StrFromGo(message), true)

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		o, _, err := c.toObject(rt, this)
		if err != nil {
			return value.Value{}, err
		}

		nameV, err := o.Get(rt, key("name"), this)
		if err != nil {
			return value.Value{}, err
		}

		nameStr := "Error"
		if !nameV.IsUndefined() {
			s, err := toGoString(rt, nameV)
			if err != nil {
				return value.Value{}, err
			}

			nameStr = s
		}

		msgV, err := o.Get(rt, key("message"), this)
		if err != nil {
			return value.Value{}, err
		}

		msgStr := ""
		if !msgV.IsUndefined() {
			s, err := toGoString(rt, msgV)
			if err != nil {
				return value.Value{}, err
			}

			msgStr = s
		}

		switch {
		case nameStr == "" && msgStr == "":
			return value.StrFromGo("Error"), nil
		case msgStr == "":
			return value.StrFromGo(nameStr), nil
		case nameStr == "":
			return value.StrFromGo(msgStr), nil
		default:
			return value.StrFromGo(nameStr + ": " + msgStr), nil
		}
	})

	return proto, protoRef
}

// errorConstructor builds the native-function Error/TypeError/.../URIError
// constructor: `new X(message, options)` and plain `X(message, options)`
// behave identically (§20.5.1.1 — neither distinguishes NewTarget the way a
// subclassable ordinary constructor would, matching how installArray and
// installObject's own constructors already ignore NewTarget-based
// subclassing in this build).
func (c ctx) errorConstructor(name string, proto heap.Gc[value.HeapObject]) (value.Value, *object.Object) {
	return c.nativeConstructor(name, 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		obj := c.newObject(proto)
		if err := c.populateErrorInstance(rt, obj, arg(args, 0), arg(args, 1)); err != nil {
			return value.Value{}, err
		}

		return value.Obj(obj.Self()), nil
	})
}

// populateErrorInstance implements the message/cause-setting common to
// every Error subclass constructor (§20.5.1.1 steps 3-4): "message" is set
// only when the argument isn't undefined, "cause" only when options is an
// object with an own "cause" property — both non-enumerable per spec.
func (c ctx) populateErrorInstance(rt object.Runtime, obj *object.Object, message, options value.Value) error {
	if !message.IsUndefined() {
		s, err := toGoString(rt, message)
		if err != nil {
			return err
		}

		c.dataValue(obj, "message", value.StrFromGo(s), true)
	}

	if h, ok := options.AsObject(); ok {
		o, ok := h.Get().(*object.Object)
		if ok {
			if _, has := o.GetOwnProperty(key("cause")); has {
				cause, err := o.Get(rt, key("cause"), options)
				if err != nil {
					return err
				}

				c.dataValue(obj, "cause", cause, true)
			}
		}
	}

	return nil
}

// aggregateErrorConstructor builds `new AggregateError(errors, message,
// options)` (§20.5.7.1.1): errors is drained via the iterator protocol into
// an own, non-enumerable "errors" array.
func (c ctx) aggregateErrorConstructor(proto heap.Gc[value.HeapObject]) (value.Value, *object.Object) {
	return c.nativeConstructor("AggregateError", 2, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		obj := c.newObject(proto)
		if err := c.populateErrorInstance(rt, obj, arg(args, 1), arg(args, 2)); err != nil {
			return value.Value{}, err
		}

		items, err := iterableToSlice(rt, arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}

		c.dataValue(obj, "errors", c.newArrayOf(items), true)

		return value.Obj(obj.Self()), nil
	})
}
