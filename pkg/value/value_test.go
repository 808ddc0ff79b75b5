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
package value

import (
	"math"
	"testing"
)

func Test_SameValue_NaNCanonical(t *testing.T) {
	a := Float(math.NaN())
	b := NumberDiv(Int(0), Int(0)) // 0/0 produces NaN

	if !SameValue(a, b) {
		t.Fatal("expected all NaN productions to compare equal via SameValue")
	}
}

func Test_SameValue_SignedZero(t *testing.T) {
	pos := Float(0)
	neg := Float(math.Copysign(0, -1))

	if SameValue(pos, neg) {
		t.Fatal("expected +0 and -0 to differ under SameValue")
	}

	if !SameValueZero(pos, neg) {
		t.Fatal("expected +0 and -0 to be equal under SameValueZero")
	}
}

func Test_IntegerRationalObservationalIdentity(t *testing.T) {
	i := Int(3)
	f := Float(3)

	if !StrictEquals(i, f) {
		t.Fatal("expected Integer(3) === Rational(3.0)")
	}

	if !SameValue(i, f) {
		t.Fatal("expected Integer(3) to be SameValue as Rational(3.0)")
	}
}

func Test_IsArrayIndex(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"0", true},
		{"4294967294", true},
		{"4294967295", false}, // reserved as "length" boundary
		{"01", false},
		{"-1", false},
		{"abc", false},
	}

	for _, c := range cases {
		_, ok := IsArrayIndex(StringKey(NewString(c.key)))
		if ok != c.want {
			t.Errorf("IsArrayIndex(%q) = %v, want %v", c.key, ok, c.want)
		}
	}
}

func Test_StringConcat(t *testing.T) {
	s := Concat(NewString("foo"), NewString("bar"))
	if s.String() != "foobar" {
		t.Fatalf("got %q", s.String())
	}
}
