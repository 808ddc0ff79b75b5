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
	"sort"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// Namespace returns r's module namespace object (§4.10's Module Namespace
// Exotic Object) — the value `import * as ns` binds and what a dynamic
// `import()` resolves to. Memoized on r so two importers of the same module
// (or a namespace imported once but referenced from more than one binding
// site) share one object. Unlike a real namespace exotic object, whose own
// [[Get]]/[[Set]] forward live to the target module's bindings, this builds
// a plain object snapshotting each export's value at the time Namespace is
// first called — adequate for every use this engine's Loader/Link/Evaluate
// ordering produces (Namespace is only ever called after the exporting
// module has been linked, and a namespace import's own consumer reads it
// after evaluation), and documented here as the one simplification against
// the full exotic-object semantics.
func (r *Record) Namespace() (value.Value, error) {
	if r.hasNamespace {
		return r.namespace, nil
	}

	proto := heap.Gc[value.HeapObject]{} // module namespace objects have a null [[Prototype]]
	obj := object.New(r.realm.ShapeRoot(), "Module", object.KindModuleNamespace, proto)

	for _, name := range r.ExportedNames(nil) {
		env, slot, err := resolveExport(r, name, nil)
		if err != nil {
			return value.Value{}, fmt.Errorf("module %q: building namespace: %w", r.Specifier, err)
		}

		if env.ThrowUndefinedIfTDZ(slot) {
			return value.Value{}, fmt.Errorf("module %q: export %q read before initialization", r.Specifier, name)
		}

		desc := object.PropertyDescriptor{Value: env.GetLocal(slot), HasValue: true, Writable: true, Enumerable: true, Configurable: false}
		if _, err := obj.DefineOwnProperty(r.realm, value.StringKey(value.NewString(name)), desc); err != nil {
			return value.Value{}, err
		}
	}

	ref := heap.NewGc[value.HeapObject](r.realm.Heap(), obj, nil)
	obj.SetSelf(ref)

	r.namespace, r.hasNamespace = value.Obj(ref), true

	return r.namespace, nil
}

// ExportedNames collects every name r makes available to a namespace import
// — §4.10's GetExportedNames: its own local and re-exported names, plus
// whatever each `export * from` re-export contributes (excluding "default",
// which a star re-export never forwards), deduplicated. visited guards
// against a circular `export * from` chain; pass nil at the top call.
func (r *Record) ExportedNames(visited map[*Record]bool) []string {
	if visited == nil {
		visited = map[*Record]bool{}
	}

	if visited[r] {
		return nil
	}

	visited[r] = true

	seen := map[string]bool{}
	var names []string

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}

		seen[name] = true
		names = append(names, name)
	}

	for _, ee := range r.exports {
		if ee.star {
			dep := r.deps[ee.fromSpecifier]
			for _, name := range dep.ExportedNames(visited) {
				if name != "default" {
					add(name)
				}
			}

			continue
		}

		add(ee.exportedName)
	}

	sort.Strings(names)

	return names
}
