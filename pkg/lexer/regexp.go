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
	"github.com/ecmaforge/ecmaforge/pkg/ast"
)

// scanRegExp scans a `/pattern/flags` literal character-by-character with
// minimal validation, per §4.1: escape sequences pass through unexamined,
// and an unescaped `/` inside `[...]` does not close the body.
func (l *Lexer) scanRegExp(start int) (Token, error) {
	l.pos++ // consume leading '/'

	bodyStart := l.pos
	inClass := false

	for {
		if l.eof() || isLineTerminator(l.cur()) {
			return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "unterminated regular expression literal")
		}

		r := l.cur()

		switch {
		case r == '\\':
			l.pos++

			if l.eof() || isLineTerminator(l.cur()) {
				return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "unterminated regular expression literal")
			}

			l.pos++
		case r == '[':
			inClass = true
			l.pos++
		case r == ']':
			inClass = false
			l.pos++
		case r == '/' && !inClass:
			goto bodyDone
		default:
			l.pos++
		}
	}

bodyDone:
	body := string(l.text[bodyStart:l.pos])
	l.pos++ // consume trailing '/'

	flagsStart := l.pos
	seen := map[rune]bool{}

	for !l.eof() && isIdentifierPart(l.cur()) {
		f := l.cur()
		if !isValidRegExpFlag(f) {
			return Token{}, l.src.SyntaxError(ast.NewSpan(flagsStart, l.pos+1), "invalid regular expression flag")
		}

		if seen[f] {
			return Token{}, l.src.SyntaxError(ast.NewSpan(flagsStart, l.pos+1), "duplicate regular expression flag")
		}

		seen[f] = true
		l.pos++
	}

	flags := string(l.text[flagsStart:l.pos])

	return Token{
		Kind: RegularExpressionLiteral, Span: ast.NewSpan(start, l.pos),
		String: body, Flags: flags, Raw: string(l.text[start:l.pos]),
	}, nil
}

func isValidRegExpFlag(r rune) bool {
	switch r {
	case 'g', 'i', 'm', 's', 'u', 'y', 'd', 'v':
		return true
	default:
		return false
	}
}
