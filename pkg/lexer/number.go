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

	"github.com/ecmaforge/ecmaforge/pkg/ast"
)

// scanNumber scans any numeric literal form: decimal (with optional
// fraction/exponent), `0x`/`0o`/`0b` radix forms, legacy octal (a leading
// `0` followed by octal digits), and any of those suffixed `n` for BigInt.
// Numeric separators (`_`) are accepted between digits and stripped before
// conversion.
func (l *Lexer) scanNumber(start int) (Token, error) {
	if l.cur() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		return l.scanRadixNumber(start, 16, isHexDigit)
	}

	if l.cur() == '0' && (l.peekAt(1) == 'o' || l.peekAt(1) == 'O') {
		return l.scanRadixNumber(start, 8, isOctalDigit)
	}

	if l.cur() == '0' && (l.peekAt(1) == 'b' || l.peekAt(1) == 'B') {
		return l.scanRadixNumber(start, 2, isBinaryDigit)
	}

	if l.cur() == '0' && isOctalDigit(l.peekAt(1)) {
		return l.scanLegacyOctalNumber(start)
	}

	for isDecimalDigit(l.cur()) || l.cur() == '_' {
		l.pos++
	}

	isFloat := false

	if l.cur() == '.' {
		isFloat = true
		l.pos++

		for isDecimalDigit(l.cur()) || l.cur() == '_' {
			l.pos++
		}
	}

	if l.cur() == 'e' || l.cur() == 'E' {
		isFloat = true
		l.pos++

		if l.cur() == '+' || l.cur() == '-' {
			l.pos++
		}

		for isDecimalDigit(l.cur()) {
			l.pos++
		}
	}

	raw := string(l.text[start:l.pos])

	if !isFloat && l.cur() == 'n' {
		l.pos++

		digits := strings.ReplaceAll(raw, "_", "")

		v, ok := new(big.Int).SetString(digits, 10)
		if !ok {
			return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "invalid BigInt literal")
		}

		return Token{Kind: BigIntLiteral, Span: ast.NewSpan(start, l.pos), BigInt: v, Raw: string(l.text[start:l.pos])}, nil
	}

	if err := l.rejectTrailingIdentifierStart(start); err != nil {
		return Token{}, err
	}

	clean := strings.ReplaceAll(raw, "_", "")

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "invalid numeric literal")
	}

	return Token{Kind: NumericLiteral, Span: ast.NewSpan(start, l.pos), Number: v, Raw: raw}, nil
}

func (l *Lexer) scanRadixNumber(start int, radix int, digit func(rune) bool) (Token, error) {
	l.pos += 2
	digitsStart := l.pos

	for digit(l.cur()) || l.cur() == '_' {
		l.pos++
	}

	if l.pos == digitsStart {
		return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "missing digits after radix prefix")
	}

	digits := strings.ReplaceAll(string(l.text[digitsStart:l.pos]), "_", "")

	if l.cur() == 'n' {
		l.pos++

		v, ok := new(big.Int).SetString(digits, radix)
		if !ok {
			return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "invalid BigInt literal")
		}

		return Token{Kind: BigIntLiteral, Span: ast.NewSpan(start, l.pos), BigInt: v, Raw: string(l.text[start:l.pos])}, nil
	}

	if err := l.rejectTrailingIdentifierStart(start); err != nil {
		return Token{}, err
	}

	v, err := strconv.ParseUint(digits, radix, 64)

	var f float64
	if err != nil {
		bi, ok := new(big.Int).SetString(digits, radix)
		if !ok {
			return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "invalid numeric literal")
		}

		f, _ = new(big.Float).SetInt(bi).Float64()
	} else {
		f = float64(v)
	}

	return Token{Kind: NumericLiteral, Span: ast.NewSpan(start, l.pos), Number: f, Raw: string(l.text[start:l.pos])}, nil
}

func (l *Lexer) scanLegacyOctalNumber(start int) (Token, error) {
	for isOctalDigit(l.cur()) {
		l.pos++
	}

	// A digit 8 or 9 turns this into a non-octal "NonOctalDecimalIntegerLiteral"
	// (legal only outside strict mode, validated later by the parser).
	if l.cur() == '8' || l.cur() == '9' {
		for isDecimalDigit(l.cur()) {
			l.pos++
		}
	}

	if err := l.rejectTrailingIdentifierStart(start); err != nil {
		return Token{}, err
	}

	digits := string(l.text[start:l.pos])

	v, err := strconv.ParseUint(digits, 8, 64)
	if err != nil {
		// Fall back to decimal interpretation for the NonOctalDecimalIntegerLiteral case.
		f, ferr := strconv.ParseFloat(digits, 64)
		if ferr != nil {
			return Token{}, l.src.SyntaxError(ast.NewSpan(start, l.pos), "invalid numeric literal")
		}

		return Token{Kind: NumericLiteral, Span: ast.NewSpan(start, l.pos), Number: f, Raw: digits}, nil
	}

	return Token{Kind: NumericLiteral, Span: ast.NewSpan(start, l.pos), Number: float64(v), Raw: digits}, nil
}

func (l *Lexer) rejectTrailingIdentifierStart(start int) error {
	if isIdentifierStart(l.cur()) || isDecimalDigit(l.cur()) {
		return l.src.SyntaxError(ast.NewSpan(start, l.pos+1), "identifier immediately after numeric literal")
	}

	return nil
}

func isHexDigit(r rune) bool {
	return isDecimalDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isBinaryDigit(r rune) bool { return r == '0' || r == '1' }
