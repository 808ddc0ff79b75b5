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

import "github.com/ecmaforge/ecmaforge/pkg/intern"

// DeclareImportBinding adds an indirect binding to a KindModule environment:
// every read of name forwards to target's own slot rather than to a
// binding of e's own, per §4.10's cross-module binding resolution (import
// bindings stay live-linked to the exporting module's binding, including
// observing its TDZ state, rather than being copied at link time). A write
// to name is rejected with a TypeError.
func (e *Environment) DeclareImportBinding(name intern.Sym, target *Environment, slot int) {
	if e.indirects == nil {
		e.indirects = make(map[intern.Sym]indirectBinding)
	}

	e.indirects[name] = indirectBinding{target: target, slot: slot}
}
