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
	"strconv"
	"strings"

	"github.com/ecmaforge/ecmaforge/pkg/ast"
)

func (l *Lexer) scanString(start int, quote rune) (Token, error) {
	l.pos++

	var b strings.Builder

	for {
		if l.eof() {
			return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "unterminated string literal")
		}

		r := l.cur()

		if r == quote {
			l.pos++

			return Token{
				Kind: StringLiteral, Span: ast.NewSpan(start, l.pos),
				String: b.String(), Raw: string(l.text[start:l.pos]), CookedValid: true,
			}, nil
		}

		if isLineTerminator(r) && r != lineSeparator && r != paragraphSeparator {
			return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "unterminated string literal")
		}

		if r == '\\' {
			ok, err := l.scanEscapeSequence(&b, true)
			if err != nil {
				return Token{}, err
			}

			if !ok {
				return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "invalid escape sequence")
			}

			continue
		}

		b.WriteRune(r)
		l.pos++
	}
}

// scanEscapeSequence decodes the body of a `\...` escape (the caller has not
// yet consumed the backslash) and appends its cooked value to b. allowOctal
// permits the legacy octal escapes valid only in non-strict string literals
// (the parser rejects them after the fact when the enclosing code is
// strict, since strictness is not always known at lex time, §4.1).
func (l *Lexer) scanEscapeSequence(b *strings.Builder, allowOctal bool) (bool, error) {
	l.pos++ // consume '\'

	if l.eof() {
		return false, nil
	}

	r := l.cur()

	// Line continuation: a backslash immediately followed by a line
	// terminator is elided entirely.
	if isLineTerminator(r) {
		if r == '\r' && l.peekAt(1) == '\n' {
			l.pos += 2
		} else {
			l.pos++
		}

		return true, nil
	}

	switch r {
	case 'n':
		b.WriteRune('\n')
		l.pos++
	case 't':
		b.WriteRune('\t')
		l.pos++
	case 'r':
		b.WriteRune('\r')
		l.pos++
	case 'b':
		b.WriteRune('\b')
		l.pos++
	case 'f':
		b.WriteRune('\f')
		l.pos++
	case 'v':
		b.WriteRune('\v')
		l.pos++
	case '0':
		if isDecimalDigit(l.peekAt(1)) && allowOctal {
			return l.scanLegacyOctalEscape(b)
		}

		b.WriteRune(0)
		l.pos++
	case '1', '2', '3', '4', '5', '6', '7':
		if !allowOctal {
			return false, nil
		}

		return l.scanLegacyOctalEscape(b)
	case '8', '9':
		if !allowOctal {
			return false, nil
		}

		b.WriteRune(r)
		l.pos++
	case 'x':
		l.pos++

		if l.pos+2 > len(l.text) {
			return false, nil
		}

		v, err := strconv.ParseUint(string(l.text[l.pos:l.pos+2]), 16, 32)
		if err != nil {
			return false, nil
		}

		b.WriteRune(rune(v))
		l.pos += 2
	case 'u':
		escStart := l.pos - 1
		l.pos++

		v, err := l.scanUnicodeEscapeValue(escStart)
		if err != nil {
			return false, nil
		}

		b.WriteRune(v)
	default:
		b.WriteRune(r)
		l.pos++
	}

	return true, nil
}

// scanLegacyOctalEscape decodes a non-strict `\0`..`\377` escape of up to
// three octal digits.
func (l *Lexer) scanLegacyOctalEscape(b *strings.Builder) (bool, error) {
	start := l.pos
	n := 0
	maxDigits := 3
	if l.cur() > '3' {
		maxDigits = 2
	}

	for n < maxDigits && isOctalDigit(l.peekAt(n)) {
		n++
	}

	digits := string(l.text[start : start+n])

	v, err := strconv.ParseUint(digits, 8, 32)
	if err != nil {
		return false, nil
	}

	b.WriteRune(rune(v))
	l.pos += n

	return true, nil
}

func isOctalDigit(r rune) bool { return r >= '0' && r <= '7' }
