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

// installBoolean builds %Boolean% (§21.3): `Boolean(x)` coerces via
// ToBoolean, `new Boolean(x)` builds a wrapper object whose Data is the
// boxed primitive (toObject's convention).
func installBoolean(r *realm.Realm) {
	c := newCtx(r)

	proto := c.newObject(r.IntrinsicPrototype("Object"))
	protoRef := proto.Self()
	proto.SetData(value.Bool(false))

	ctorVal, ctorObj := c.nativeConstructor("Boolean", 1, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		b := toBoolean(arg(args, 0))
		if this.IsUndefined() {
			return value.Bool(b), nil
		}

		obj := object.New(r.ShapeRoot(), "Boolean", object.KindStringWrapper, r.IntrinsicPrototype("Boolean"))
		obj.SetData(value.Bool(b))
		ref := heap.NewGc[value.HeapObject](r.Heap(), obj, nil)
		obj.SetSelf(ref)

		return value.Obj(ref), nil
	})

	c.definePrototype("Boolean", ctorVal, ctorObj, proto, protoRef)
	c.define("Boolean", ctorVal)

	c.method(proto, "toString", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		bv, err := thisBoxedPrimitive(rt, this, value.KindBoolean, "Boolean.prototype.toString")
		if err != nil {
			return value.Value{}, err
		}

		if bv.Bool() {
			return value.StrFromGo("true"), nil
		}

		return value.StrFromGo("false"), nil
	})

	c.method(proto, "valueOf", 0, func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return thisBoxedPrimitive(rt, this, value.KindBoolean, "Boolean.prototype.valueOf")
	})
}
