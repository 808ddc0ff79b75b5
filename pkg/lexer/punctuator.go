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

import "github.com/ecmaforge/ecmaforge/pkg/ast"

// punct3 and punct4 are checked before punct2/punct1 so the longest match
// always wins (e.g. `>>>=` before `>>>` before `>>` before `>`).
var punct4 = map[string]Punctuator{
	">>>=": PunctUShrEq,
}

var punct3 = map[string]Punctuator{
	"...": PunctEllipsis,
	"===": PunctEqEqEq,
	"!==": PunctNotEqEq,
	"**=": PunctStarStarEq,
	"<<=": PunctShlEq,
	">>=": PunctShrEq,
	"&&=": PunctAmpAmpEq,
	"||=": PunctPipePipeEq,
	"??=": PunctQuestionQuestionEq,
	">>>": PunctUShr,
}

var punct2 = map[string]Punctuator{
	"=>": PunctArrow,
	"==": PunctEqEq,
	"!=": PunctNotEq,
	"<=": PunctLtEq,
	">=": PunctGtEq,
	"++": PunctPlusPlus,
	"--": PunctMinusMinus,
	"**": PunctStarStar,
	"<<": PunctShl,
	">>": PunctShr,
	"&&": PunctAmpAmp,
	"||": PunctPipePipe,
	"??": PunctQuestionQuestion,
	"?.": PunctQuestionDot,
	"+=": PunctPlusEq,
	"-=": PunctMinusEq,
	"*=": PunctStarEq,
	"%=": PunctPercentEq,
	"&=": PunctAmpEq,
	"|=": PunctPipeEq,
	"^=": PunctCaretEq,
	"/=": PunctSlashEq,
}

var punct1 = map[rune]Punctuator{
	'{': PunctLBrace, '}': PunctRBrace,
	'(': PunctLParen, ')': PunctRParen,
	'[': PunctLBracket, ']': PunctRBracket,
	'.': PunctDot, ';': PunctSemicolon, ',': PunctComma,
	'<': PunctLt, '>': PunctGt,
	'+': PunctPlus, '-': PunctMinus, '*': PunctStar, '%': PunctPercent, '/': PunctSlash,
	'&': PunctAmp, '|': PunctPipe, '^': PunctCaret, '!': PunctBang, '~': PunctTilde,
	'?': PunctQuestion, ':': PunctColon, '=': PunctEq, '@': PunctAt,
}

func (l *Lexer) scanPunctuator(start int) (Token, error) {
	if start+4 <= len(l.text) {
		if p, ok := punct4[string(l.text[start:start+4])]; ok {
			l.pos = start + 4
			return l.punctToken(p, start), nil
		}
	}

	if start+3 <= len(l.text) {
		if p, ok := punct3[string(l.text[start:start+3])]; ok {
			l.pos = start + 3
			return l.punctToken(p, start), nil
		}
	}

	if start+2 <= len(l.text) {
		// `?.` followed by a decimal digit is `?` `.` `digit...` (a
		// conditional expression, not optional chaining into a numeric
		// property), per the grammar's lookahead restriction.
		two := string(l.text[start : start+2])
		if p, ok := punct2[two]; ok && !(two == "?." && isDecimalDigit(l.peekAt(2))) {
			l.pos = start + 2
			return l.punctToken(p, start), nil
		}
	}

	if p, ok := punct1[l.cur()]; ok {
		l.pos = start + 1
		return l.punctToken(p, start), nil
	}

	return Token{}, l.src.SyntaxError(ast.NewSpan(start, start+1), "unexpected character")
}

func (l *Lexer) punctToken(p Punctuator, start int) Token {
	return Token{Kind: Punctuator, Span: ast.NewSpan(start, l.pos), Punct: p, Raw: string(l.text[start:l.pos])}
}
