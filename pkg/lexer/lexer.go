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
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/ecmaforge/ecmaforge/pkg/ast"
)

// Lexer scans a Source into a flat stream of Tokens one at a time. It never
// panics on malformed input (§4.1): every failure is returned as a
// *SyntaxError. The caller (normally BufferedLexer) selects a Goal before
// each Next call.
type Lexer struct {
	src  *Source
	text []rune
	pos  int
}

// NewLexer constructs a Lexer over src.
func NewLexer(src *Source) *Lexer {
	return &Lexer{src: src, text: src.Text()}
}

// Source returns the underlying Source, used by the parser to build
// SyntaxErrors and by BufferedLexer to re-wrap positions.
func (l *Lexer) Source() *Source { return l.src }

// Pos returns the current rune offset, the point the next Next call resumes
// from.
func (l *Lexer) Pos() int { return l.pos }

// Seek resets the scan position, used by BufferedLexer's Rewind and
// by the parser when re-lexing `}` under GoalTemplateTail.
func (l *Lexer) Seek(pos int) { l.pos = pos }

func (l *Lexer) eof() bool { return l.pos >= len(l.text) }

func (l *Lexer) peekAt(off int) rune {
	i := l.pos + off
	if i < 0 || i >= len(l.text) {
		return -1
	}

	return l.text[i]
}

func (l *Lexer) cur() rune { return l.peekAt(0) }

// lineSeparator and paragraphSeparator are the two non-ASCII line-terminator
// code points (ECMA-262's LineTerminator production also includes plain
// LF/CR, handled directly below).
const (
	lineSeparator      = '\u2028'
	paragraphSeparator = '\u2029'
	noBreakSpace       = '\u00A0'
	byteOrderMark      = '\uFEFF'
	zeroWidthNonJoiner = '\u200C'
	zeroWidthJoiner    = '\u200D'
)

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == lineSeparator || r == paragraphSeparator
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\v', '\f', noBreakSpace, byteOrderMark:
		return true
	default:
		return r != -1 && unicode.Is(unicode.Zs, r)
	}
}

func isIdentifierStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r) || r == zeroWidthNonJoiner || r == zeroWidthJoiner ||
		unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Nd, r) || unicode.Is(unicode.Pc, r)
}

func isDecimalDigit(r rune) bool { return r >= '0' && r <= '9' }

// Next scans and returns the next token under the given Goal. Callers
// wanting the raw trivia stream (line terminators, comments) get it here;
// BufferedLexer is the layer that filters or preserves it per §4.2.
func (l *Lexer) Next(goal Goal) (Token, error) {
	start := l.pos

	if l.eof() {
		return Token{Kind: EOF, Span: ast.NewSpan(start, start)}, nil
	}

	r := l.cur()

	switch {
	case isLineTerminator(r):
		return l.scanLineTerminator(start), nil
	case isWhitespace(r):
		return l.scanWhitespace(start), nil
	case r == '/' && l.peekAt(1) == '/':
		return l.scanLineComment(start), nil
	case r == '/' && l.peekAt(1) == '*':
		return l.scanBlockComment(start)
	case goal == GoalHashbangOrRegExp && r == '#' && l.peekAt(1) == '!' && start == 0:
		return l.scanHashbang(start), nil
	case r == '#':
		return l.scanPrivateIdentifier(start)
	case r == '"' || r == '\'':
		return l.scanString(start, r)
	case r == '`':
		return l.scanTemplate(start, true)
	case goal == GoalTemplateTail && r == '}':
		return l.scanTemplate(start, false)
	case r == '/' && (goal == GoalRegExp || goal == GoalHashbangOrRegExp):
		return l.scanRegExp(start)
	case isDecimalDigit(r) || (r == '.' && isDecimalDigit(l.peekAt(1))):
		return l.scanNumber(start)
	case isIdentifierStart(r) || r == '\\':
		return l.scanIdentifier(start)
	default:
		return l.scanPunctuator(start)
	}
}

func (l *Lexer) scanLineTerminator(start int) Token {
	for !l.eof() && isLineTerminator(l.cur()) {
		if l.cur() == '\r' && l.peekAt(1) == '\n' {
			l.pos += 2
		} else {
			l.pos++
		}
	}

	return Token{Kind: LineTerminator, Span: ast.NewSpan(start, l.pos)}
}

func (l *Lexer) scanWhitespace(start int) Token {
	for !l.eof() && isWhitespace(l.cur()) {
		l.pos++
	}

	return Token{Kind: Comment, Span: ast.NewSpan(start, l.pos)}
}

func (l *Lexer) scanHashbang(start int) Token {
	for !l.eof() && !isLineTerminator(l.cur()) {
		l.pos++
	}

	return Token{Kind: Hashbang, Span: ast.NewSpan(start, l.pos), Raw: string(l.text[start:l.pos])}
}

func (l *Lexer) scanLineComment(start int) Token {
	l.pos += 2

	for !l.eof() && !isLineTerminator(l.cur()) {
		l.pos++
	}

	return Token{Kind: Comment, Span: ast.NewSpan(start, l.pos)}
}

func (l *Lexer) scanBlockComment(start int) (Token, error) {
	l.pos += 2
	newline := false

	for {
		if l.eof() {
			return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "unterminated comment")
		}

		if l.cur() == '*' && l.peekAt(1) == '/' {
			l.pos += 2
			return Token{Kind: Comment, Span: ast.NewSpan(start, l.pos), PrecededByLineTerminator: newline}, nil
		}

		if isLineTerminator(l.cur()) {
			newline = true
		}

		l.pos++
	}
}

func (l *Lexer) scanPrivateIdentifier(start int) (Token, error) {
	l.pos++

	if l.eof() || !isIdentifierStart(l.cur()) {
		return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "expected identifier after '#'")
	}

	name, escaped, err := l.scanIdentifierName()
	if err != nil {
		return Token{}, err
	}

	return Token{
		Kind: PrivateIdentifier, Span: ast.NewSpan(start, l.pos),
		String: name, Raw: string(l.text[start:l.pos]), ContainsEscape: escaped,
	}, nil
}

func (l *Lexer) scanIdentifier(start int) (Token, error) {
	name, escaped, err := l.scanIdentifierName()
	if err != nil {
		return Token{}, err
	}

	tok := Token{
		Kind: Identifier, Span: ast.NewSpan(start, l.pos),
		String: name, Raw: string(l.text[start:l.pos]), ContainsEscape: escaped,
	}

	if kw, ok := keywords[name]; ok {
		tok.Kind = Keyword
		tok.Keyword = kw
	}

	return tok, nil
}

// scanIdentifierName decodes \uXXXX / \u{X+} escapes that may appear in an
// IdentifierName, accumulating the cooked name.
func (l *Lexer) scanIdentifierName() (string, bool, error) {
	var b strings.Builder

	escaped := false
	first := true

	for !l.eof() {
		if l.cur() == '\\' && l.peekAt(1) == 'u' {
			escaped = true
			escStart := l.pos
			l.pos += 2

			r, err := l.scanUnicodeEscapeValue(escStart)
			if err != nil {
				return "", false, err
			}

			if first && !isIdentifierStart(r) || !first && !isIdentifierPart(r) {
				return "", false, l.src.SyntaxError(ast.NewSpan(escStart, l.pos), "invalid identifier escape")
			}

			b.WriteRune(r)
			first = false

			continue
		}

		r := l.cur()
		if first {
			if !isIdentifierStart(r) {
				break
			}
		} else if !isIdentifierPart(r) {
			break
		}

		b.WriteRune(r)
		l.pos++
		first = false
	}

	return b.String(), escaped, nil
}

// scanUnicodeEscapeValue decodes the body of a `\uXXXX` or `\u{X+}` escape,
// assuming the caller has already consumed the `\u` prefix.
func (l *Lexer) scanUnicodeEscapeValue(escStart int) (rune, error) {
	if l.cur() == '{' {
		l.pos++
		digStart := l.pos

		for !l.eof() && l.cur() != '}' {
			l.pos++
		}

		if l.eof() {
			return 0, l.src.SyntaxError(ast.NewSpan(escStart, l.pos), "unterminated unicode escape")
		}

		digits := string(l.text[digStart:l.pos])
		l.pos++

		v, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || v > 0x10FFFF {
			return 0, l.src.SyntaxError(ast.NewSpan(escStart, l.pos), "invalid unicode escape")
		}

		return rune(v), nil
	}

	if l.pos+4 > len(l.text) {
		return 0, l.src.SyntaxError(ast.NewSpan(escStart, l.pos), "invalid unicode escape")
	}

	digits := string(l.text[l.pos : l.pos+4])

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, l.src.SyntaxError(ast.NewSpan(escStart, l.pos+4), "invalid unicode escape")
	}

	l.pos += 4

	return rune(v), nil
}
