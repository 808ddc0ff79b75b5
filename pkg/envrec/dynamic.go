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
package envrec

import (
	"fmt"

	"github.com/ecmaforge/ecmaforge/pkg/intern"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// This file backs pkg/bytecode's name-addressed ops (GetName, SetName,
// DeleteName, CreateArgumentsObject) and the `with` statement's dynamic
// scope inclusion: every operation here walks by intern.Sym, mirroring the
// abstract operations HasBinding/GetBindingValue/SetMutableBinding/
// DeleteBinding/CreateMutableBinding the ECMAScript spec defines per
// environment-record kind (§3.4). Only the Object/Global object half ever
// needs a name's string text (property.go's machinery is keyed on
// value.PropertyKey, not Sym); e.syms resolves that one case.

// HasBinding reports whether name is declared directly in e (never
// consulting e.parent — Resolve below does the chain walk). For a `with`
// environment this also honors the target's @@unscopables own property
// (§4.4): a name the target lists there is treated as absent so the lookup
// falls through to an outer scope instead.
func (e *Environment) HasBinding(rt object.Runtime, name intern.Sym) bool {
	switch e.kind {
	case KindObject:
		return e.objectHasBinding(rt, name)
	case KindGlobal:
		if _, ok := e.names[name]; ok {
			return true
		}

		return e.objectHasBinding(rt, name)
	case KindModule:
		if _, ok := e.indirects[name]; ok {
			return true
		}

		_, ok := e.names[name]

		return ok
	case KindFunction:
		if ok, isThisOrTarget := e.hasThisOrNewTarget(name); isThisOrTarget {
			return ok
		}

		_, ok := e.names[name]

		return ok
	default:
		_, ok := e.names[name]

		return ok
	}
}

// hasThisOrNewTarget special-cases the `this`/`new.target` pseudo-bindings
// a Function environment carries outside its ordinary bindings table:
// isThisOrTarget is true when name is one of the two, in which case ok
// reports whether this particular environment is the one that owns it. An
// arrow's Function environment never owns `this` (thisState==thisLexical)
// so HasBinding reports false there and the chain walk in resolve.go keeps
// going outward to the enclosing non-arrow function, exactly mirroring
// §3.4's "Lexical" this-binding state.
func (e *Environment) hasThisOrNewTarget(name intern.Sym) (ok, isThisOrTarget bool) {
	switch name {
	case intern.SymThis:
		return e.thisState != thisLexical, true
	case intern.SymNewTarget:
		return e.hasNewTarget, true
	default:
		return false, false
	}
}

func (e *Environment) objectHasBinding(rt object.Runtime, name intern.Sym) bool {
	if e.obj == nil {
		return false
	}

	key := e.propertyKey(name)
	if !e.obj.HasProperty(key) {
		return false
	}

	if !e.withEnvironment {
		return true
	}

	return !e.isUnscopable(rt, name)
}

// isUnscopable implements the `with`-specific @@unscopables brand check: if
// e.obj[Symbol.unscopables] is an object with a truthy own property named
// name, that name is excluded from this environment's bindings.
func (e *Environment) isUnscopable(rt object.Runtime, name intern.Sym) bool {
	unscopablesVal, err := e.obj.Get(rt, value.SymbolKey(value.SymbolUnscopables), value.Obj(e.objRef))
	if err != nil || !unscopablesVal.IsObject() {
		return false
	}

	h, ok := unscopablesVal.AsObject()
	if !ok {
		return false
	}

	unscopables, ok := h.Get().(*object.Object)
	if !ok {
		return false
	}

	v, err := unscopables.Get(rt, e.propertyKey(name), unscopablesVal)
	if err != nil {
		return false
	}

	return v.ToBoolean()
}

// propertyKey converts a Sym to the value.PropertyKey the object half's
// property machinery addresses by, via this environment's interner.
func (e *Environment) propertyKey(name intern.Sym) value.PropertyKey {
	return value.StringKey(value.NewString(e.syms.Resolve(name)))
}

// GetBindingValue reads name's value out of e itself (never consulting
// e.parent). rt is required for the Object/Global kinds, whose read may
// invoke a getter or a proxy trap.
func (e *Environment) GetBindingValue(rt object.Runtime, name intern.Sym) (value.Value, error) {
	switch e.kind {
	case KindObject:
		return e.objectGet(rt, name)
	case KindGlobal:
		if i, ok := e.names[name]; ok {
			if !e.bindings[i].initialized {
				return value.Value{}, referenceError(e, name)
			}

			return e.bindings[i].value, nil
		}

		return e.objectGet(rt, name)
	case KindModule:
		if ib, ok := e.indirects[name]; ok {
			if ib.target.ThrowUndefinedIfTDZ(ib.slot) {
				return value.Value{}, referenceError(e, name)
			}

			return ib.target.GetLocal(ib.slot), nil
		}

		i, ok := e.names[name]
		if !ok {
			return value.Value{}, referenceError(e, name)
		}

		if !e.bindings[i].initialized {
			return value.Value{}, referenceError(e, name)
		}

		return e.bindings[i].value, nil
	case KindFunction:
		if v, isThisOrTarget, err := e.getThisOrNewTarget(name); isThisOrTarget {
			return v, err
		}

		fallthrough
	default:
		i, ok := e.names[name]
		if !ok {
			return value.Value{}, referenceError(e, name)
		}

		if !e.bindings[i].initialized {
			return value.Value{}, referenceError(e, name)
		}

		return e.bindings[i].value, nil
	}
}

// getThisOrNewTarget returns `this`/`new.target`'s value when name is one of
// the two and this environment owns it; a `this` read while the derived
// constructor's own super() call hasn't run yet is exactly the TDZ-style
// ReferenceError §3.4 describes for the Uninitialized this-binding state.
func (e *Environment) getThisOrNewTarget(name intern.Sym) (v value.Value, isThisOrTarget bool, err error) {
	switch name {
	case intern.SymThis:
		if e.thisState == thisUninitialized {
			return value.Value{}, true, fmt.Errorf(
				"ReferenceError: must call super constructor in derived class before accessing 'this' or returning from derived constructor")
		}

		return e.this, true, nil
	case intern.SymNewTarget:
		return e.newTarget, true, nil
	default:
		return value.Value{}, false, nil
	}
}

func (e *Environment) objectGet(rt object.Runtime, name intern.Sym) (value.Value, error) {
	if e.obj == nil {
		return value.Value{}, referenceError(e, name)
	}

	return e.obj.Get(rt, e.propertyKey(name), value.Obj(e.objRef))
}

// SetMutableBinding writes name's value in e itself (never consulting
// e.parent). Strict controls the failure mode for both a missing binding
// (only relevant at the global object's record, per §4.4's legacy implicit
// global) and a write rejected by the target object's own [[Set]].
func (e *Environment) SetMutableBinding(rt object.Runtime, name intern.Sym, v value.Value, strict bool) error {
	switch e.kind {
	case KindObject:
		return e.objectSet(rt, name, v, strict)
	case KindGlobal:
		if i, ok := e.names[name]; ok {
			return e.setDeclarative(i, name, v)
		}

		return e.objectSet(rt, name, v, strict)
	case KindModule:
		if _, ok := e.indirects[name]; ok {
			return fmt.Errorf("TypeError: Assignment to constant variable '%s'", symText(e, name))
		}

		i, ok := e.names[name]
		if !ok {
			if strict {
				return referenceError(e, name)
			}

			return nil
		}

		return e.setDeclarative(i, name, v)
	default:
		i, ok := e.names[name]
		if !ok {
			if strict {
				return referenceError(e, name)
			}

			return nil
		}

		return e.setDeclarative(i, name, v)
	}
}

func (e *Environment) setDeclarative(i int, name intern.Sym, v value.Value) error {
	if !e.bindings[i].mutable {
		return fmt.Errorf("TypeError: Assignment to constant variable '%s'", symText(e, name))
	}

	e.bindings[i].value = v

	return nil
}

func (e *Environment) objectSet(rt object.Runtime, name intern.Sym, v value.Value, strict bool) error {
	if e.obj == nil {
		if strict {
			return referenceError(e, name)
		}

		return nil
	}

	return e.obj.Set(rt, e.propertyKey(name), v, value.Obj(e.objRef), strict)
}

// DeleteBinding implements `delete identifier` (DeleteName): always false
// (a no-op refusal) for every declarative/function/module binding, since
// those are never configurable; forwards to the backing object's
// [[Delete]] for Object/Global.
func (e *Environment) DeleteBinding(name intern.Sym) bool {
	switch e.kind {
	case KindObject:
		return e.objectDelete(name)
	case KindGlobal:
		if _, ok := e.names[name]; ok {
			return false
		}

		return e.objectDelete(name)
	default:
		return false
	}
}

func (e *Environment) objectDelete(name intern.Sym) bool {
	if e.obj == nil {
		return true
	}

	return e.obj.Delete(e.propertyKey(name))
}

// CreateMutableBinding declares a fresh, dynamically-named binding in e —
// used for `arguments` object materialization (CreateArgumentsObject) and
// for a direct-eval's own var/function declarations landing in the nearest
// function/global environment rather than a statically-sized slot table.
func (e *Environment) CreateMutableBinding(name intern.Sym, v value.Value) {
	if e.names == nil {
		e.names = make(map[intern.Sym]int)
	}

	if i, ok := e.names[name]; ok {
		e.bindings[i] = binding{name: name, value: v, mutable: true, initialized: true}
		return
	}

	e.names[name] = len(e.bindings)
	e.bindings = append(e.bindings, binding{name: name, value: v, mutable: true, initialized: true})
}

// symText resolves name back to source text for an error message, falling
// back to e.syms when present (declarative environments chained under an
// Object/Global one still share the realm's one interner in practice, but
// the fallback keeps a bare declarative environment constructed without one
// — e.g. in a unit test — from panicking on a const-reassignment message).
func symText(e *Environment, name intern.Sym) string {
	if e.syms != nil {
		return e.syms.Resolve(name)
	}

	for env := e; env != nil; env = env.parent {
		if env.syms != nil {
			return env.syms.Resolve(name)
		}
	}

	return fmt.Sprintf("<sym %d>", name)
}

func referenceError(e *Environment, name intern.Sym) error {
	return fmt.Errorf("ReferenceError: %s is not defined", symText(e, name))
}
