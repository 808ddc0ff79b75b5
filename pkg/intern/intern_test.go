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
package intern

import "testing"

func Test_InternIsIdempotent(t *testing.T) {
	in := New()

	a := in.Intern("foo")
	b := in.Intern("foo")

	if a != b {
		t.Fatalf("expected repeated Intern of the same string to return the same Sym, got %d and %d", a, b)
	}

	if in.Resolve(a) != "foo" {
		t.Fatalf("got %q", in.Resolve(a))
	}
}

func Test_WellKnownSymsPreseeded(t *testing.T) {
	in := New()

	if in.Intern("this") != SymThis {
		t.Fatal("expected \"this\" to resolve to the preseeded SymThis")
	}

	if in.Intern("arguments") != SymArguments {
		t.Fatal("expected \"arguments\" to resolve to the preseeded SymArguments")
	}
}
