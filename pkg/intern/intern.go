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

// Package intern implements the identifier/string interner that sits
// between the value/object/shape layer and the AST (§2's dependency order:
// "... Value/Object/Shape → Interner → AST ..."). Identifiers, property
// names written as source text, and small literal strings are interned
// once per realm (or shared under an immutable global table, a permitted
// optimisation per §9 "Global state") so the lexer, parser, bytecode
// compiler and shape-transition cache can all compare names by a cheap
// integer Sym rather than repeated string comparison.
package intern

// Sym is an interned string's identity: a dense index into the interner's
// table. The zero Sym is reserved and never returned by Intern.
type Sym uint32

// Interner assigns a stable Sym to each distinct string it sees. It is not
// safe for concurrent use (realms, and therefore their interners, are
// single-threaded per §5).
type Interner struct {
	lookup map[string]Sym
	spans  []string
}

// New constructs an empty interner, pre-seeding it with the well-known
// identifiers the engine itself refers to constantly (so their Sym values
// are small, stable constants rather than allocation-order-dependent).
func New() *Interner {
	in := &Interner{lookup: make(map[string]Sym, 256), spans: make([]string, 1, 256)}

	for _, s := range wellKnown {
		in.Intern(s)
	}

	return in
}

// wellKnown identifiers get low, predictable Sym values; pkg/envrec and
// pkg/bytecode refer to a few of these (e.g. "arguments", "this",
// "new.target") by a named constant rather than re-interning at runtime.
var wellKnown = []string{
	"this", "arguments", "new.target", "super", "constructor",
	"prototype", "length", "name", "message", "__proto__",
}

// Intern returns s's Sym, assigning a fresh one on first sight.
func (in *Interner) Intern(s string) Sym {
	if sym, ok := in.lookup[s]; ok {
		return sym
	}

	sym := Sym(len(in.spans))
	in.spans = append(in.spans, s)
	in.lookup[s] = sym

	return sym
}

// Resolve returns the string a Sym was interned from.
func (in *Interner) Resolve(s Sym) string {
	if int(s) >= len(in.spans) {
		return ""
	}

	return in.spans[s]
}

// Len returns the number of distinct interned strings.
func (in *Interner) Len() int { return len(in.spans) }

// Well-known Syms, valid for any Interner constructed via New (the
// wellKnown seeding above guarantees these indices).
const (
	SymEmpty Sym = iota
	SymThis
	SymArguments
	SymNewTarget
	SymSuper
	SymConstructor
	SymPrototype
	SymLength
	SymName
	SymMessage
	SymProto
)
