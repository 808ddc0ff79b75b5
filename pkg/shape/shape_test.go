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
package shape

import (
	"testing"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

func key(s string) value.PropertyKey {
	return value.StringKey(value.NewString(s))
}

// Test_SharedShapesConverge checks the quantified invariant from §8: two
// objects from the same starting shape, run through the same transition
// sequence, end up with the same *Shape reference.
func Test_SharedShapesConverge(t *testing.T) {
	root := NewRoot()
	base := root.Empty("Ordinary", heap.Gc[value.HeapObject]{})

	attrs := Attrs{Writable: true, Enumerable: true, Configurable: true}

	s1 := base.AddDataProperty(key("x"), attrs)
	s1 = s1.AddDataProperty(key("y"), attrs)

	s2 := base.AddDataProperty(key("x"), attrs)
	s2 = s2.AddDataProperty(key("y"), attrs)

	if s1 != s2 {
		t.Fatal("expected identical transition sequences to converge on the same shape")
	}
}

func Test_DelaminationAfterThreshold(t *testing.T) {
	root := NewRoot()
	s := root.Empty("Ordinary", heap.Gc[value.HeapObject]{})
	attrs := Attrs{Writable: true, Enumerable: true, Configurable: true}

	for i := 0; i <= TransitionCountMax+1; i++ {
		s = s.AddDataProperty(key(string(rune('a' + (i % 26)))), attrs)
	}

	if !s.Unique() {
		t.Fatal("expected shape to delaminate into a unique shape past the threshold")
	}
}

func Test_LookupReturnsStableSlot(t *testing.T) {
	root := NewRoot()
	base := root.Empty("Ordinary", heap.Gc[value.HeapObject]{})
	attrs := Attrs{Writable: true, Enumerable: true, Configurable: true}

	s := base.AddDataProperty(key("a"), attrs)
	s = s.AddDataProperty(key("b"), attrs)

	d, ok := s.Lookup(key("b"))
	if !ok || d.SlotIndex != 1 {
		t.Fatalf("expected b at slot 1, got %+v ok=%v", d, ok)
	}
}
