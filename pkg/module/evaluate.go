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
package module

import (
	"fmt"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
	"github.com/ecmaforge/ecmaforge/pkg/vm"
)

// Evaluate runs every Record in order (the same topological, entry-last
// ordering Instantiate produced and Link consumed) per §4.10's
// InnerModuleEvaluation: a module already StatusEvaluated is skipped (the
// common case for a diamond-shaped graph, where a shared dependency was
// already run by an earlier branch), and one already StatusEvaluating is
// also skipped rather than re-entered — a cyclic pair reaching back to a
// module still running its own top-level body observes that module's
// bindings as they stand at the point of re-entry, per the spec's
// cycle-tolerant evaluation order, rather than recursing into it again.
// Evaluate stops at the first module whose top-level body throws, marking
// it (and only it) StatusErrored; per §4.10 a module that failed to
// evaluate is never retried on a later Evaluate call.
func Evaluate(order []*Record, m *vm.VM) error {
	for _, r := range order {
		if err := r.evaluateOne(m); err != nil {
			return err
		}
	}

	return nil
}

func (r *Record) evaluateOne(m *vm.VM) error {
	switch r.status {
	case StatusEvaluated, StatusEvaluating:
		return nil
	case StatusErrored:
		return r.err
	case StatusUnlinked, StatusLinking:
		return fmt.Errorf("module %q: Evaluate called before Link", r.Specifier)
	}

	r.status = StatusEvaluating

	meta, err := r.importMetaObject()
	if err != nil {
		r.status = StatusErrored
		r.err = err

		return err
	}

	if err := m.RunModule(r.code, r.env, meta); err != nil {
		r.status = StatusErrored
		r.err = err

		return err
	}

	r.status = StatusEvaluated

	return nil
}

// importMetaObject builds the `import.meta` object a module's top-level
// frame sees: a plain object exposing its resolved specifier as `url`, the
// one property every embedding needs regardless of host (a real URL-backed
// loader's specifier already is a URL; an in-memory Loader's specifier
// serves the same identifying role here).
func (r *Record) importMetaObject() (value.Value, error) {
	obj := object.New(r.realm.ShapeRoot(), "Object", object.KindOrdinary, r.realm.ObjectPrototype())

	desc := object.PropertyDescriptor{
		Value: value.Str(value.NewString(r.Specifier)), HasValue: true, Writable: true, Enumerable: true, Configurable: true,
	}

	if _, err := obj.DefineOwnProperty(r.realm, value.StringKey(value.NewString("url")), desc); err != nil {
		return value.Value{}, err
	}

	ref := heap.NewGc[value.HeapObject](r.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	return value.Obj(ref), nil
}
