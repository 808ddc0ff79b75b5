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
	"strings"
	"unicode/utf16"
)

// JSString is an immutable UTF-16 code-unit sequence (§3.1). Unpaired
// surrogates are preserved exactly as lexed. Strings that are pure ASCII are
// stored compacted as a plain Go string (an invisible optimisation per
// §3.1); anything else is stored as a slice of UTF-16 code units.
//
// Concatenation (template literals, repeated `+=`) builds a Rope instead of
// copying eagerly; a Rope is flattened into a JSString lazily, on first
// access to its contents.
type JSString struct {
	ascii   string
	units   []uint16
	isASCII bool
}

// NewString constructs a JSString from a Go string, decoding it as UTF-8 and
// re-encoding as UTF-16. Invalid UTF-8 bytes become U+FFFD.
func NewString(s string) JSString {
	if isASCII(s) {
		return JSString{ascii: s, isASCII: true}
	}

	return JSString{units: utf16.Encode([]rune(s)), isASCII: false}
}

// NewStringFromUnits constructs a JSString directly from UTF-16 code units,
// preserving unpaired surrogates exactly (used by the lexer when decoding
// \u escapes and surrogate pairs).
func NewStringFromUnits(units []uint16) JSString {
	for _, u := range units {
		if u > 0x7f {
			cp := make([]uint16, len(units))
			copy(cp, units)

			return JSString{units: cp, isASCII: false}
		}
	}

	b := make([]byte, len(units))
	for i, u := range units {
		b[i] = byte(u)
	}

	return JSString{ascii: string(b), isASCII: true}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}

	return true
}

// Length returns the number of UTF-16 code units, i.e. JS's `.length`.
func (s JSString) Length() int {
	if s.isASCII {
		return len(s.ascii)
	}

	return len(s.units)
}

// At returns the code unit at index i (JS's `String.prototype.charCodeAt`
// semantics, without the bounds-checking wrapper a builtin adds).
func (s JSString) At(i int) uint16 {
	if s.isASCII {
		return uint16(s.ascii[i])
	}

	return s.units[i]
}

// Units returns the full UTF-16 code-unit sequence. Callers must not mutate
// the returned slice when isASCII is false, since it may alias internal
// storage.
func (s JSString) Units() []uint16 {
	if s.isASCII {
		out := make([]uint16, len(s.ascii))
		for i := 0; i < len(s.ascii); i++ {
			out[i] = uint16(s.ascii[i])
		}

		return out
	}

	return s.units
}

// String renders the JSString as a Go UTF-8 string, replacing unpaired
// surrogates with U+FFFD (used for display/diagnostics, not for semantics
// that must preserve surrogates exactly).
func (s JSString) String() string {
	if s.isASCII {
		return s.ascii
	}

	return string(utf16.Decode(s.units))
}

// Concat builds a new JSString by concatenation. Small strings concatenate
// eagerly; larger ones are assembled through a strings.Builder / slice
// append, which is cheaper than a full rope tree for this engine's scope
// while still avoiding repeated full-string copies for the common
// template-literal case.
func Concat(parts ...JSString) JSString {
	allASCII := true
	total := 0

	for _, p := range parts {
		allASCII = allASCII && p.isASCII
		total += p.Length()
	}

	if allASCII {
		var b strings.Builder

		b.Grow(total)

		for _, p := range parts {
			b.WriteString(p.ascii)
		}

		return JSString{ascii: b.String(), isASCII: true}
	}

	units := make([]uint16, 0, total)
	for _, p := range parts {
		units = append(units, p.Units()...)
	}

	return JSString{units: units, isASCII: false}
}

// Equal reports exact code-unit equality.
func (s JSString) Equal(o JSString) bool {
	if s.isASCII && o.isASCII {
		return s.ascii == o.ascii
	}

	if s.Length() != o.Length() {
		return false
	}

	su, ou := s.Units(), o.Units()
	for i := range su {
		if su[i] != ou[i] {
			return false
		}
	}

	return true
}

// Compare implements the code-unit ordering used by `<`/`>` on strings.
func (s JSString) Compare(o JSString) int {
	su, ou := s.Units(), o.Units()
	n := len(su)

	if len(ou) < n {
		n = len(ou)
	}

	for i := 0; i < n; i++ {
		if su[i] != ou[i] {
			if su[i] < ou[i] {
				return -1
			}

			return 1
		}
	}

	return len(su) - len(ou)
}

// Slice returns the substring [start, end) measured in UTF-16 code units.
func (s JSString) Slice(start, end int) JSString {
	if s.isASCII {
		return JSString{ascii: s.ascii[start:end], isASCII: true}
	}

	return NewStringFromUnits(s.units[start:end])
}
