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

import "fmt"

// Symbol carries an optional description plus identity (§3.1): two symbols
// created independently are never equal, even with the same description.
// Identity is the pointer itself; Symbol is allocated on the Go heap (not
// the managed JS heap) since it holds no references that the GC must trace
// and is immutable and tiny.
type Symbol struct {
	description string
	hasDesc     bool
}

// NewSymbol allocates a fresh symbol with the given description.
func NewSymbol(description string) *Symbol {
	return &Symbol{description: description, hasDesc: true}
}

// NewSymbolNoDescription allocates a fresh symbol with no description
// (`Symbol()` called with no argument).
func NewSymbolNoDescription() *Symbol {
	return &Symbol{}
}

// Description returns the symbol's description and whether it has one.
func (s *Symbol) Description() (string, bool) {
	return s.description, s.hasDesc
}

// String renders the symbol for diagnostics, e.g. "Symbol(foo)".
func (s *Symbol) String() string {
	if s.hasDesc {
		return fmt.Sprintf("Symbol(%s)", s.description)
	}

	return "Symbol()"
}

// Well-known symbols (§4.9's built-in surface implies these via iteration,
// toPrimitive coercion, species construction, etc).
var (
	SymbolIterator        = NewSymbol("Symbol.iterator")
	SymbolAsyncIterator   = NewSymbol("Symbol.asyncIterator")
	SymbolToPrimitive     = NewSymbol("Symbol.toPrimitive")
	SymbolToStringTag     = NewSymbol("Symbol.toStringTag")
	SymbolHasInstance     = NewSymbol("Symbol.hasInstance")
	SymbolSpecies         = NewSymbol("Symbol.species")
	SymbolIsConcatSpreadable = NewSymbol("Symbol.isConcatSpreadable")
	SymbolUnscopables     = NewSymbol("Symbol.unscopables")
	SymbolMatch           = NewSymbol("Symbol.match")
	SymbolMatchAll        = NewSymbol("Symbol.matchAll")
	SymbolReplace         = NewSymbol("Symbol.replace")
	SymbolSearch          = NewSymbol("Symbol.search")
	SymbolSplit           = NewSymbol("Symbol.split")
)
