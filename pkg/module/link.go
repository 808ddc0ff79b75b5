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

	"github.com/ecmaforge/ecmaforge/pkg/envrec"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
)

// Link resolves every import binding across order (the topologically
// sorted graph Instantiate returned) against its exporting module's own
// environment — §4.10's InnerModuleLinking binding-resolution half. Every
// Record in order gets its own module environment first, so that a cyclic
// pair's bindings can forward to each other regardless of which one Link
// visits first; only then does the second pass wire each import, since
// DeclareImportBinding needs the target environment to already exist. r is
// the realm every module environment's free references (unbound
// identifiers, not import bindings) resolve against, and the realm a
// namespace-imported module's namespace object is allocated in.
func Link(order []*Record, r *realm.Realm) error {
	for _, rec := range order {
		if rec.status == StatusUnlinked {
			rec.status = StatusLinking
			rec.realm = r
			rec.env = envrec.NewModule(r.GlobalEnv(), rec.code.LocalNames)
		}
	}

	for _, r := range order {
		if r.status != StatusLinking {
			continue
		}

		if err := r.wireImports(); err != nil {
			r.status = StatusErrored
			r.err = err

			return err
		}
	}

	for _, r := range order {
		if r.status == StatusLinking {
			r.status = StatusLinked
		}
	}

	return nil
}

func (r *Record) wireImports() error {
	for _, ie := range r.imports {
		dep := r.deps[ie.specifier]

		for _, ib := range ie.bindings {
			slot, ok := r.scopes.Scopes[r.prog].Lookup(ib.local.Name)
			if !ok {
				return fmt.Errorf("module %q: internal: import binding %q has no scope slot", r.Specifier, ib.local.Name)
			}

			switch {
			case ib.namespace:
				ns, err := dep.Namespace()
				if err != nil {
					return err
				}

				r.env.InitConst(slot.Slot, ns)

			case ib.defaultImport:
				env, targetSlot, err := resolveExport(dep, "default", nil)
				if err != nil {
					return fmt.Errorf("module %q: importing default from %q: %w", r.Specifier, ie.specifier, err)
				}

				r.env.DeclareImportBinding(ib.local.Sym, env, targetSlot)

			default:
				env, targetSlot, err := resolveExport(dep, ib.imported, nil)
				if err != nil {
					return fmt.Errorf("module %q: importing %q from %q: %w", r.Specifier, ib.imported, ie.specifier, err)
				}

				r.env.DeclareImportBinding(ib.local.Sym, env, targetSlot)
			}
		}
	}

	return nil
}

// resolveExport follows §4.10's ResolveExport algorithm: name is either a
// local binding of r (done), a re-export of another module's binding
// (recurse into that module), or reachable through one of r's `export *
// from` re-exports (tried only after every explicit export is checked, so
// an explicit re-export always wins over a star's transitive one, per
// spec). visited guards against a cyclic `export * from` chain.
func resolveExport(r *Record, name string, visited map[*Record]bool) (*envrec.Environment, int, error) {
	if visited == nil {
		visited = map[*Record]bool{}
	}

	if visited[r] {
		return nil, 0, fmt.Errorf("module %q: circular export * chain resolving %q", r.Specifier, name)
	}

	visited[r] = true

	for _, ee := range r.exports {
		if ee.exportedName != name {
			continue
		}

		if ee.hasLocal {
			b, ok := r.scopes.Scopes[r.prog].Lookup(ee.localName)
			if !ok {
				return nil, 0, fmt.Errorf("module %q: internal: export %q has no scope slot", r.Specifier, name)
			}

			return r.env, b.Slot, nil
		}

		dep := r.deps[ee.fromSpecifier]

		return resolveExport(dep, ee.fromName, visited)
	}

	for _, ee := range r.exports {
		if !ee.star || ee.exportedName != "" {
			continue
		}

		dep := r.deps[ee.fromSpecifier]

		if env, slot, err := resolveExport(dep, name, visited); err == nil {
			return env, slot, nil
		}
	}

	return nil, 0, fmt.Errorf("module %q: no export named %q", r.Specifier, name)
}
