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

// Package shape implements the shape-based property storage system (§3.3):
// an immutable record describing the property layout shared by every object
// that has undergone the same sequence of property transitions, plus the
// unique-shape fallback for objects whose transition depth exceeds
// TransitionCountMax.
package shape

import (
	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// TransitionCountMax is the bound on a shared shape's transition depth
// before it delaminates into a unique shape (§3.3, §9 Open Question 3 — a
// tuning parameter with no observable semantics attached to its exact
// value).
const TransitionCountMax = 1024

// Kind distinguishes a data property slot from an accessor pair.
type Kind uint8

// Property kinds.
const (
	KindData Kind = iota
	KindAccessor
)

// Attrs holds the three standard property attributes.
type Attrs struct {
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// Descriptor is one own-property entry in a shape: a key, its attributes,
// and either a slot index (data property) or a getter/setter slot pair
// (accessor property).
type Descriptor struct {
	Key        value.PropertyKey
	Attrs      Attrs
	Kind       Kind
	SlotIndex  int // data: the property's storage slot
	GetterSlot int // accessor: slot holding the getter function (or -1)
	SetterSlot int // accessor: slot holding the setter function (or -1)
}

type transitionKind uint8

const (
	transitionAddProperty transitionKind = iota
	transitionChangeAttrs
	transitionChangePrototype
	transitionDeleteProperty
)

type transitionKey struct {
	kind  transitionKind
	key   any // value.PropertyKey.HashKey(), or nil for prototype transitions
	attrs Attrs
}

// Root is a per-realm shape-transition root: every object starts from one of
// a small number of root shapes (Ordinary, Array, Function, ...) and
// transitions away from there. Sharing a Root across objects of the same
// starting kind is what lets two objects that undergo identical transitions
// end up with the very same *Shape (§8's quantified invariant).
type Root struct {
	roots map[string]*Shape
}

// NewRoot constructs an empty per-realm shape root table.
func NewRoot() *Root {
	return &Root{roots: make(map[string]*Shape)}
}

// Empty returns the canonical empty shape for the given object kind name
// (e.g. "Ordinary", "Array"), creating it on first use. A prototype other
// than the cached root's is reached through a ChangePrototype transition.
func (r *Root) Empty(kindName string, prototype heap.Gc[value.HeapObject]) *Shape {
	if s, ok := r.roots[kindName]; ok {
		if s.prototype != prototype {
			return s.ChangePrototype(prototype)
		}

		return s
	}

	s := &Shape{root: r, prototype: prototype, transitions: make(map[transitionKey]*Shape)}
	r.roots[kindName] = s

	return s
}

// Shape is an immutable (when shared) or singly-owned (when unique) record
// of an object's property layout, per §3.3.
type Shape struct {
	root        *Root
	parent      *Shape
	properties  []Descriptor
	prototype   heap.Gc[value.HeapObject]
	transitions map[transitionKey]*Shape // nil once delaminated to unique
	depth       int
	unique      bool
}

// Unique reports whether this shape is singly-owned (mutated in place)
// rather than shared via the transition tree.
func (s *Shape) Unique() bool { return s.unique }

// Prototype returns this shape's prototype reference.
func (s *Shape) Prototype() heap.Gc[value.HeapObject] { return s.prototype }

// Properties returns the ordered list of own-property descriptors.
func (s *Shape) Properties() []Descriptor { return s.properties }

// Lookup returns the descriptor for key, if this shape has it as an own
// property. Per §3.3's invariant, every object sharing this *Shape gets the
// same slot index back for the same key.
func (s *Shape) Lookup(key value.PropertyKey) (Descriptor, bool) {
	for _, d := range s.properties {
		if d.Key.Equal(key) {
			return d, true
		}
	}

	return Descriptor{}, false
}

// NumSlots returns the number of data slots this shape's objects must
// allocate (the width of the object's positional slot vector).
func (s *Shape) NumSlots() int {
	n := 0

	for _, d := range s.properties {
		if d.Kind == KindData && d.SlotIndex+1 > n {
			n = d.SlotIndex + 1
		}

		if d.Kind == KindAccessor {
			if d.GetterSlot+1 > n {
				n = d.GetterSlot + 1
			}

			if d.SetterSlot+1 > n {
				n = d.SetterSlot + 1
			}
		}
	}

	return n
}

// AddDataProperty returns the shape that results from adding a new data
// property, transitioning deterministically from s (§3.3: "Adding a
// property... produces a deterministic child shape, cached"). If s is
// unique, the mutation happens in place and s itself is returned.
func (s *Shape) AddDataProperty(key value.PropertyKey, attrs Attrs) *Shape {
	slot := s.NumSlots()
	d := Descriptor{Key: key, Attrs: attrs, Kind: KindData, SlotIndex: slot, GetterSlot: -1, SetterSlot: -1}

	if s.unique {
		s.properties = append(s.properties, d)
		return s
	}

	tk := transitionKey{kind: transitionAddProperty, key: key.HashKey(), attrs: attrs}
	if child, ok := s.transitions[tk]; ok {
		return child
	}

	child := s.child(d)
	s.transitions[tk] = child

	return child
}

// AddAccessorProperty is the accessor-pair analogue of AddDataProperty.
func (s *Shape) AddAccessorProperty(key value.PropertyKey, attrs Attrs, getterSlot, setterSlot int) *Shape {
	d := Descriptor{Key: key, Attrs: attrs, Kind: KindAccessor, SlotIndex: -1, GetterSlot: getterSlot, SetterSlot: setterSlot}

	if s.unique {
		s.properties = append(s.properties, d)
		return s
	}

	tk := transitionKey{kind: transitionAddProperty, key: key.HashKey(), attrs: Attrs{}}
	if child, ok := s.transitions[tk]; ok {
		return child
	}

	child := s.child(d)
	s.transitions[tk] = child

	return child
}

// ChangeAttrs returns the shape resulting from changing key's attributes
// (e.g. Object.defineProperty narrowing writable/enumerable/configurable).
func (s *Shape) ChangeAttrs(key value.PropertyKey, attrs Attrs) *Shape {
	idx := s.indexOf(key)
	if idx < 0 {
		return s
	}

	if s.unique {
		s.properties[idx].Attrs = attrs
		return s
	}

	tk := transitionKey{kind: transitionChangeAttrs, key: key.HashKey(), attrs: attrs}
	if child, ok := s.transitions[tk]; ok {
		return child
	}

	props := cloneProps(s.properties)
	props[idx].Attrs = attrs
	child := &Shape{
		root: s.root, parent: s, properties: props, prototype: s.prototype,
		transitions: make(map[transitionKey]*Shape), depth: s.depth + 1,
	}
	child.maybeDelaminate()
	s.transitions[tk] = child

	return child
}

// ChangePrototype returns the shape resulting from setting a new prototype
// (e.g. Object.setPrototypeOf / __proto__ assignment).
func (s *Shape) ChangePrototype(prototype heap.Gc[value.HeapObject]) *Shape {
	if s.unique {
		s.prototype = prototype
		return s
	}

	tk := transitionKey{kind: transitionChangePrototype, key: prototype.ID()}
	if child, ok := s.transitions[tk]; ok {
		return child
	}

	child := &Shape{
		root: s.root, parent: s, properties: cloneProps(s.properties), prototype: prototype,
		transitions: make(map[transitionKey]*Shape), depth: s.depth + 1,
	}
	child.maybeDelaminate()
	s.transitions[tk] = child

	return child
}

// DeleteProperty returns the shape resulting from removing key. Removal may
// compact storage (slot indices are renumbered), matching the teacher-style
// "ChangeTransitionAction" compaction the spec calls out in §3.3; a deleted
// shared shape always delaminates to unique, since compaction is not safely
// cacheable across arbitrary prior histories.
func (s *Shape) DeleteProperty(key value.PropertyKey) *Shape {
	idx := s.indexOf(key)
	if idx < 0 {
		return s
	}

	props := append(append([]Descriptor{}, s.properties[:idx]...), s.properties[idx+1:]...)
	renumber(props)

	if s.unique {
		s.properties = props
		return s
	}

	child := &Shape{
		root: s.root, parent: s, properties: props, prototype: s.prototype,
		unique: true, depth: s.depth + 1,
	}

	return child
}

func (s *Shape) indexOf(key value.PropertyKey) int {
	for i, d := range s.properties {
		if d.Key.Equal(key) {
			return i
		}
	}

	return -1
}

func (s *Shape) child(d Descriptor) *Shape {
	child := &Shape{
		root:        s.root,
		parent:      s,
		properties:  append(cloneProps(s.properties), d),
		prototype:   s.prototype,
		transitions: make(map[transitionKey]*Shape),
		depth:       s.depth + 1,
	}
	child.maybeDelaminate()

	return child
}

// maybeDelaminate converts this shape to a unique shape once its transition
// depth exceeds TransitionCountMax (§3.3).
func (s *Shape) maybeDelaminate() {
	if s.depth > TransitionCountMax {
		s.unique = true
		s.transitions = nil
	}
}

func cloneProps(props []Descriptor) []Descriptor {
	out := make([]Descriptor, len(props))
	copy(out, props)

	return out
}

func renumber(props []Descriptor) {
	slot := 0

	for i := range props {
		if props[i].Kind == KindData {
			props[i].SlotIndex = slot
			slot++
		}
	}
}
