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

// Package ast defines the Expression/Statement abstract syntax tree produced
// by pkg/parser and consumed by pkg/scope and pkg/bytecode. Every node
// carries a Span so that later stages (SyntaxError positions, stack traces)
// can recover 1-based line/column information without re-scanning source
// text; pkg/lexer owns the offset-to-line/column conversion.
package ast

// Span represents a contiguous slice of the original source text as a pair
// of rune (code point) offsets. Like the offsets themselves, a Span never
// carries line/column information directly — pkg/lexer's Source.PositionAt
// converts an offset to a 1-based line/column pair on demand.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a Span covering [start,end) of the source text.
func NewSpan(start, end int) Span {
	if start > end {
		panic("invalid span")
	}

	return Span{start: start, end: end}
}

// Start returns the rune offset of the first character in this span.
func (s Span) Start() int { return s.start }

// End returns the rune offset one past the last character in this span.
func (s Span) End() int { return s.end }

// Length returns the number of runes covered by this span.
func (s Span) Length() int { return s.end - s.start }

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	start := s.start
	if other.start < start {
		start = other.start
	}

	end := s.end
	if other.end > end {
		end = other.end
	}

	return Span{start: start, end: end}
}
