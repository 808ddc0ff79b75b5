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

// Package module implements §4.10's module loader protocol: a host-supplied
// Loader fetches and parses each module exactly once into a Record (the
// module map's cache-by-resolved-specifier requirement), after which
// Instantiate/Link/Evaluate run the three explicit phases of the cyclic
// module-evaluation algorithm — graph construction, cross-module binding
// resolution, and ordered top-level execution — entirely independent of how
// a host chooses to fetch module source.
package module

import (
	"fmt"

	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/vm"
)

// Status is a Record's position in §4.10's module lifecycle state machine.
type Status uint8

const (
	// StatusUnlinked is every Record's state immediately after Loader
	// returns it: parsed and compiled, but its imports are not yet resolved
	// against any other module and it has no environment of its own.
	StatusUnlinked Status = iota
	// StatusLinking marks a Record currently being visited by Link, so a
	// cyclic import graph can be detected without infinite recursion.
	StatusLinking
	// StatusLinked means every import binding has been wired and the
	// Record's own module environment exists, ready for Evaluate.
	StatusLinked
	// StatusEvaluating marks a Record whose top-level code is currently
	// running, again to make cycles safe: a cyclic import observes its
	// partner's exported bindings mid-TDZ rather than re-entering it.
	StatusEvaluating
	// StatusEvaluated is the terminal success state: top-level code has run
	// exactly once.
	StatusEvaluated
	// StatusErrored means linking or evaluation failed; Err holds the
	// failure (a parse failure yields no Record at all). A module that reaches this state stays here permanently
	// — per §4.10 a failed module is never retried.
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusUnlinked:
		return "unlinked"
	case StatusLinking:
		return "linking"
	case StatusLinked:
		return "linked"
	case StatusEvaluating:
		return "evaluating"
	case StatusEvaluated:
		return "evaluated"
	case StatusErrored:
		return "errored"
	default:
		return fmt.Sprintf("module.Status(%d)", s)
	}
}

// Loader resolves one `import`/`import()` specifier relative to referrer
// (nil for the entry module passed to Instantiate) and returns its Record.
// A Loader implementation owns the module map (§4.10's "moduleRecords" per
// realm): resolving the same specifier from two different referrers that
// both end up pointing at the same resource must return the same *Record
// instance, or a diamond-shaped or cyclic import graph will not converge —
// Instantiate relies on pointer identity, not specifier-string equality, to
// detect a module it has already started visiting.
type Loader interface {
	Load(referrer *Record, specifier string) (*Record, error)
}

// LinkModules runs §4.10's three module-evaluation phases over entry in
// sequence — Instantiate (graph construction via loader), Link (cross-module
// binding resolution), Evaluate (ordered top-level execution against r/m) —
// and returns the topological order Instantiate produced. A host that wants
// to observe or profile each phase on its own (pkg/debugadapter's use case)
// calls Instantiate/Link/Evaluate directly instead; this is the one-call
// convenience path for a host that doesn't need that.
func LinkModules(entry *Record, loader Loader, r *realm.Realm, m *vm.VM) ([]*Record, error) {
	order, err := Instantiate(entry, loader)
	if err != nil {
		return nil, err
	}

	if err := Link(order, r); err != nil {
		return nil, err
	}

	if err := Evaluate(order, m); err != nil {
		return nil, err
	}

	return order, nil
}
