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
package lexer

import (
	"fmt"

	"github.com/ecmaforge/ecmaforge/pkg/ast"
)

// Source holds the text being lexed and computes 1-based line/column
// positions from a rune-offset Span on demand (§6 "Error display" requires
// 1-based line/column SyntaxError positions, but nodes only carry rune
// offsets so hot-path spanning never touches a line table).
type Source struct {
	Name string
	text []rune
}

// NewSource wraps a named source file's contents for lexing.
func NewSource(name string, contents []byte) *Source {
	return &Source{Name: name, text: []rune(string(contents))}
}

// Text returns the rune slice being scanned.
func (s *Source) Text() []rune { return s.text }

// Position is a 1-based line/column pair.
type Position struct {
	Line   int
	Column int
}

// PositionAt finds the 1-based line/column of the rune at offset in s by
// scanning from the start of the text, matching
// SourceMap.FindFirstEnclosingLine's approach.
func (s *Source) PositionAt(offset int) Position {
	line := 1
	col := 1

	limit := offset
	if limit > len(s.text) {
		limit = len(s.text)
	}

	for i := 0; i < limit; i++ {
		if s.text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return Position{Line: line, Column: col}
}

// SyntaxError reports a lexical or syntactic error at span with msg,
// resolving span's start to a 1-based line/column eagerly so the error
// carries display-ready position information without retaining the source.
func (s *Source) SyntaxError(span ast.Span, msg string) *SyntaxError {
	return &SyntaxError{source: s, span: span, pos: s.PositionAt(span.Start()), msg: msg}
}

// SyntaxError is the structured error the lexer and parser return on
// malformed input; the lexer never panics (§4.1).
type SyntaxError struct {
	source *Source
	span   ast.Span
	pos    Position
	msg    string
}

// Source returns the Source this error was raised against.
func (e *SyntaxError) Source() *Source { return e.source }

// Span returns the rune-offset span this error covers.
func (e *SyntaxError) Span() ast.Span { return e.span }

// Position returns the 1-based line/column of the start of Span.
func (e *SyntaxError) Position() Position { return e.pos }

// Message returns the error message without position information.
func (e *SyntaxError) Message() string { return e.msg }

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	name := e.source.Name
	if name == "" {
		name = "<input>"
	}

	return fmt.Sprintf("%s:%d:%d: %s", name, e.pos.Line, e.pos.Column, e.msg)
}
