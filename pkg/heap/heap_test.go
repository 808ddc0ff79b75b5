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
package heap

import (
	"testing"

	"github.com/ecmaforge/ecmaforge/internal/diag"
)

// node is a minimal Tracer used only by this test.
type node struct {
	next *Gc[node]
}

func (n *node) Trace(v *Visitor) {
	if n.next != nil {
		n.next.Trace(v)
	}
}

type rootList struct {
	roots []ID
}

func (r *rootList) Roots(v *Visitor) {
	for _, id := range r.roots {
		v.Mark(id)
	}
}

func Test_CollectsUnreachable(t *testing.T) {
	h := New(diag.Discard)
	roots := &rootList{}
	h.AddRoot(roots)

	a := NewGc(h, &node{}, nil)
	_ = NewGc(h, &node{}, nil) // unreachable from the start

	roots.roots = []ID{a.ID()}

	h.Collect()

	if got := h.Stats().LiveObjects; got != 1 {
		t.Fatalf("expected 1 live object after collection, got %d", got)
	}
}

func Test_FinalizerRunsOnce(t *testing.T) {
	h := New(diag.Discard)
	roots := &rootList{}
	h.AddRoot(roots)

	var finalized int

	_ = NewGc(h, &node{}, func(Tracer) { finalized++ })

	h.Collect()
	h.Collect()

	if finalized != 1 {
		t.Fatalf("expected finalizer to run exactly once, got %d", finalized)
	}
}

func Test_WeakGcClearsOnCollection(t *testing.T) {
	h := New(diag.Discard)
	roots := &rootList{}
	h.AddRoot(roots)

	strong := NewGc(h, &node{}, nil)
	weak := NewWeakGc(h, strong, nil)

	if _, ok := weak.Get(); !ok {
		t.Fatal("expected weak handle to resolve before collection")
	}

	h.Collect() // strong is unreachable (no root references it)

	if _, ok := weak.Get(); ok {
		t.Fatal("expected weak handle to clear after collection")
	}
}
