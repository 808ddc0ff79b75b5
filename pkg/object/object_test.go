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
package object

import (
	"testing"

	"github.com/ecmaforge/ecmaforge/pkg/heap"
	"github.com/ecmaforge/ecmaforge/pkg/shape"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

type fakeRuntime struct {
	h    *heap.Heap
	root *shape.Root
}

func (f *fakeRuntime) Heap() *heap.Heap         { return f.h }
func (f *fakeRuntime) ShapeRoot() *shape.Root   { return f.root }
func (f *fakeRuntime) NewError(kind, msg string) value.Value {
	return value.Undefined()
}
func (f *fakeRuntime) IntrinsicPrototype(string) heap.Gc[value.HeapObject] {
	return heap.Gc[value.HeapObject]{}
}

func newTestRuntime() *fakeRuntime {
	return &fakeRuntime{h: heap.New(nil), root: shape.NewRoot()}
}

func Test_GetSetOwnDataProperty(t *testing.T) {
	rt := newTestRuntime()
	o := New(rt.root, "Ordinary", KindOrdinary, heap.Gc[value.HeapObject]{})

	key := value.StringKey(value.NewString("x"))
	if err := o.Set(rt, key, value.Int(42), value.Obj(heap.Gc[value.HeapObject]{}), true); err != nil {
		t.Fatal(err)
	}

	got, err := o.Get(rt, key, value.Undefined())
	if err != nil {
		t.Fatal(err)
	}

	if got.Int32() != 42 {
		t.Fatalf("got %v", got)
	}
}

func Test_PrototypeChainLookup(t *testing.T) {
	rt := newTestRuntime()
	proto := New(rt.root, "Ordinary", KindOrdinary, heap.Gc[value.HeapObject]{})
	key := value.StringKey(value.NewString("greet"))
	_ = proto.Set(rt, key, value.StrFromGo("hi"), value.Undefined(), true)

	protoHandle := heap.NewGc[value.HeapObject](rt.h, proto, nil)

	child := New(rt.root, "Ordinary", KindOrdinary, protoHandle)

	got, err := child.Get(rt, key, value.Undefined())
	if err != nil {
		t.Fatal(err)
	}

	if got.JSString().String() != "hi" {
		t.Fatalf("got %v", got)
	}
}

func Test_ArrayLengthInvariant(t *testing.T) {
	rt := newTestRuntime()
	arr := New(rt.root, "Array", KindArray, heap.Gc[value.HeapObject]{})
	arr.InitArrayLength()

	if err := arr.Set(rt, value.StringKey(value.NewString("5")), value.Int(1), value.Undefined(), true); err != nil {
		t.Fatal(err)
	}

	if arr.Length() != 6 {
		t.Fatalf("expected length 6 after writing index 5, got %d", arr.Length())
	}

	arr.SetLength(2)

	if _, ok := arr.GetOwnProperty(value.StringKey(value.NewString("5"))); ok {
		t.Fatal("expected index 5 to be deleted after shrinking length")
	}
}

func Test_NonConfigurableDeleteFails(t *testing.T) {
	rt := newTestRuntime()
	o := New(rt.root, "Ordinary", KindOrdinary, heap.Gc[value.HeapObject]{})
	key := value.StringKey(value.NewString("x"))

	_, err := o.DefineOwnProperty(rt, key, PropertyDescriptor{
		Value: value.Int(1), HasValue: true, Writable: true, Enumerable: true, Configurable: false,
	})
	if err != nil {
		t.Fatal(err)
	}

	if o.Delete(key) {
		t.Fatal("expected delete of non-configurable property to fail")
	}
}
