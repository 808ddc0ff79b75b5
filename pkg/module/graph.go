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

import "fmt"

// Instantiate builds entry's full dependency graph (§4.10's
// InnerModuleLinking graph-discovery half): every specifier entry and its
// transitive imports/re-exports name is resolved through loader exactly
// once, recursively, and recorded on each Record's deps map. Unlike a
// build-system's dependency resolution, an import cycle is not an error
// here — ES modules are explicitly allowed to import each other
// circularly (§4.10) — so the walk tracks "currently being visited" only to
// avoid infinite recursion, not to reject the graph.
//
// The returned slice is a postorder (dependencies-before-dependents)
// topological ordering of every Record reached, entry last, suitable for
// Link and Evaluate to process in a single forward pass each: by the time
// either reaches a Record, every module it depends on already precedes it
// in the slice (cycle participants are merely visited in the order the walk
// first reached them, same as any cycle-tolerant topological sort).
func Instantiate(entry *Record, loader Loader) ([]*Record, error) {
	g := &grapher{loader: loader, visiting: map[*Record]bool{}, done: map[*Record]bool{}}

	if err := g.visit(entry); err != nil {
		return nil, err
	}

	return g.order, nil
}

type grapher struct {
	loader   Loader
	visiting map[*Record]bool
	done     map[*Record]bool
	order    []*Record
}

func (g *grapher) visit(r *Record) error {
	if g.done[r] {
		return nil
	}

	if g.visiting[r] {
		// Already on the current path: a cycle, which Link/Evaluate handle
		// via Status rather than this walk — stop recursing, not an error.
		return nil
	}

	g.visiting[r] = true

	if r.deps == nil {
		r.deps = make(map[string]*Record)
	}

	for _, spec := range r.dependencySpecifiers() {
		if _, ok := r.deps[spec]; ok {
			continue
		}

		dep, err := g.loader.Load(r, spec)
		if err != nil {
			return fmt.Errorf("module %q: resolving %q: %w", r.Specifier, spec, err)
		}

		r.deps[spec] = dep

		if err := g.visit(dep); err != nil {
			return err
		}
	}

	g.visiting[r] = false
	g.done[r] = true
	g.order = append(g.order, r)

	return nil
}

// dependencySpecifiers lists every distinct module specifier r's imports and
// re-exports name, in source order.
func (r *Record) dependencySpecifiers() []string {
	var specs []string
	seen := map[string]bool{}

	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			specs = append(specs, s)
		}
	}

	for _, ie := range r.imports {
		add(ie.specifier)
	}

	for _, ee := range r.exports {
		if ee.fromSpecifier != "" {
			add(ee.fromSpecifier)
		}
	}

	return specs
}
