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
	"strings"

	"github.com/ecmaforge/ecmaforge/pkg/ast"
)

// scanTemplate scans one part of a template literal. fromBacktick is true
// when the caller is at the opening backtick (producing NoSubstitutionTemplate
// or TemplateHead); false when resuming after a substitution's `}` under
// GoalTemplateTail (producing TemplateMiddle or TemplateTail).
func (l *Lexer) scanTemplate(start int, fromBacktick bool) (Token, error) {
	l.pos++ // consume '`' or '}'

	var b strings.Builder

	cookedValid := true

	for {
		if l.eof() {
			return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "unterminated template literal")
		}

		r := l.cur()

		if r == '`' {
			l.pos++
			kind := NoSubstitutionTemplate
			if !fromBacktick {
				kind = TemplateTail
			}

			return l.templateToken(kind, start, b.String(), cookedValid), nil
		}

		if r == '$' && l.peekAt(1) == '{' {
			l.pos += 2
			kind := TemplateHead
			if !fromBacktick {
				kind = TemplateMiddle
			}

			return l.templateToken(kind, start, b.String(), cookedValid), nil
		}

		if r == '\\' {
			ok, err := l.scanEscapeSequence(&b, false)
			if err != nil {
				return Token{}, err
			}

			if !ok {
				// Invalid escape in a template is only legal inside a
				// tagged template, where the cooked value becomes
				// undefined at the tag call site (§4.3); the lexer keeps
				// scanning and marks CookedValid false rather than
				// failing outright.
				cookedValid = false

				for !l.eof() && l.cur() != '\\' && l.cur() != '`' && !(l.cur() == '$' && l.peekAt(1) == '{') {
					l.pos++
				}
			}

			continue
		}

		if r == '\r' {
			b.WriteRune('\n')

			if l.peekAt(1) == '\n' {
				l.pos++
			}

			l.pos++

			continue
		}

		b.WriteRune(r)
		l.pos++
	}
}

func (l *Lexer) templateToken(kind Kind, start int, cooked string, cookedValid bool) Token {
	return Token{
		Kind: kind, Span: ast.NewSpan(start, l.pos),
		String: cooked, Raw: string(l.text[start:l.pos]), CookedValid: cookedValid,
	}
}
