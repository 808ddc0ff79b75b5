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

// Package lexer tokenises ECMAScript source text (§4.1) and provides the
// bounded-lookahead BufferedLexer (§4.2) pkg/parser drives directly.
package lexer

import (
	"math/big"

	"github.com/ecmaforge/ecmaforge/pkg/ast"
)

// Kind identifies the lexical category of a Token.
type Kind uint

const (
	// EOF signals the end of input.
	EOF Kind = iota
	// LineTerminator is a run of one or more line-terminator code points
	// (LF, CR, CRLF, U+2028, U+2029). The lexer always emits these (§4.1);
	// BufferedLexer decides whether to surface or swallow them.
	LineTerminator
	// Comment is a single-line or multi-line comment, including whether it
	// contained a line terminator (relevant to ASI when a comment spans the
	// gap between two tokens on different lines).
	Comment
	// Identifier is an IdentifierName that is not a reserved word, or a
	// contextually-reserved word used as a binding (e.g. "async", "of").
	Identifier
	// Keyword is a reserved word recognised by the grammar (§4.1's
	// "contained escapes" flag lets the parser reject if as "if").
	Keyword
	// PrivateIdentifier is a `#name` token.
	PrivateIdentifier
	// NumericLiteral is any non-BigInt numeric literal form.
	NumericLiteral
	// BigIntLiteral is a `123n`-suffixed numeric literal.
	BigIntLiteral
	// StringLiteral is a single- or double-quoted string literal.
	StringLiteral
	// TemplateHead is the ``` `...${ ``` opening part of a template literal.
	TemplateHead
	// TemplateMiddle is a ``` }...${ ``` part between two substitutions.
	TemplateMiddle
	// TemplateTail is the ``` }...` ``` or whole-literal closing part.
	TemplateTail
	// NoSubstitutionTemplate is a template literal with no substitutions.
	NoSubstitutionTemplate
	// RegularExpressionLiteral is a `/pattern/flags` literal, only produced
	// when the parser sets Goal to RegExp before calling Next.
	RegularExpressionLiteral
	// Punctuator is an operator or other structural token (`{`, `=>`, `...`).
	Punctuator
	// Hashbang is a `#!...` first-line directive, only produced when the
	// parser sets Goal to HashbangOrRegExp at program start.
	Hashbang
)

// Punctuator enumerates the fixed set of punctuator spellings. Stored on
// Token.Punct when Kind == Punctuator.
type Punctuator uint

const (
	PunctNone Punctuator = iota
	PunctLBrace
	PunctRBrace
	PunctLParen
	PunctRParen
	PunctLBracket
	PunctRBracket
	PunctDot
	PunctEllipsis
	PunctSemicolon
	PunctComma
	PunctLt
	PunctGt
	PunctLtEq
	PunctGtEq
	PunctEqEq
	PunctNotEq
	PunctEqEqEq
	PunctNotEqEq
	PunctPlus
	PunctMinus
	PunctStar
	PunctPercent
	PunctStarStar
	PunctPlusPlus
	PunctMinusMinus
	PunctShl
	PunctShr
	PunctUShr
	PunctAmp
	PunctPipe
	PunctCaret
	PunctBang
	PunctTilde
	PunctAmpAmp
	PunctPipePipe
	PunctQuestion
	PunctQuestionDot
	PunctQuestionQuestion
	PunctColon
	PunctEq
	PunctPlusEq
	PunctMinusEq
	PunctStarEq
	PunctPercentEq
	PunctStarStarEq
	PunctShlEq
	PunctShrEq
	PunctUShrEq
	PunctAmpEq
	PunctPipeEq
	PunctCaretEq
	PunctAmpAmpEq
	PunctPipePipeEq
	PunctQuestionQuestionEq
	PunctArrow
	PunctSlash
	PunctSlashEq
	PunctAt
)

// Keyword enumerates the reserved words. Stored on Token.Keyword when
// Kind == Keyword.
type Keyword uint

const (
	KeywordNone Keyword = iota
	KeywordBreak
	KeywordCase
	KeywordCatch
	KeywordClass
	KeywordConst
	KeywordContinue
	KeywordDebugger
	KeywordDefault
	KeywordDelete
	KeywordDo
	KeywordElse
	KeywordEnum
	KeywordExport
	KeywordExtends
	KeywordFalse
	KeywordFinally
	KeywordFor
	KeywordFunction
	KeywordIf
	KeywordImport
	KeywordIn
	KeywordInstanceof
	KeywordNew
	KeywordNull
	KeywordReturn
	KeywordSuper
	KeywordSwitch
	KeywordThis
	KeywordThrow
	KeywordTrue
	KeywordTry
	KeywordTypeof
	KeywordVar
	KeywordVoid
	KeywordWhile
	KeywordWith
	KeywordYield
	KeywordLet
	KeywordStatic
	KeywordAsync
	KeywordAwait
	KeywordOf
	KeywordGet
	KeywordSet
	KeywordAs
	KeywordFrom
)

// Token is one lexical unit produced by Lexer.Next.
type Token struct {
	Kind Kind
	Span ast.Span

	Punct   Punctuator
	Keyword Keyword

	// String is the cooked value for Identifier/PrivateIdentifier (the
	// decoded name, post \u escape processing), StringLiteral, every
	// template part (nil Cooked semantics carried via CookedValid below),
	// and the pattern body for RegularExpressionLiteral.
	String string
	// Raw is the exact source text, before escape decoding, needed for
	// template literals' `.raw` array and for Raw display of numeric
	// literals (§3.1).
	Raw string
	// Flags holds a RegularExpressionLiteral's trailing flag letters.
	Flags string
	// CookedValid is false only for a template part containing an invalid
	// escape sequence inside a tagged template (§4.3's cooked/raw
	// carve-out); String is the empty string in that case.
	CookedValid bool

	Number float64
	BigInt *big.Int

	// ContainsEscape flags an Identifier or Keyword token whose spelling
	// contained a `\u` escape; the parser uses this to reject an escaped
	// reserved word used where a plain keyword spelling is required (and
	// vice versa), per §4.1.
	ContainsEscape bool

	// PrecededByLineTerminator records whether a LineTerminator token (or a
	// Comment spanning one) appeared between this token and the previous
	// non-trivia token. BufferedLexer computes this as it filters trivia in
	// skip mode; ASI and no-linebreak rules consult it directly.
	PrecededByLineTerminator bool
}

// Goal selects the lexical grammar variant used for the next token, matching
// §4.1's four goal symbols. The parser sets this before each Next call.
type Goal uint

const (
	// GoalDiv is the default goal: `/` and `/=` lex as punctuators.
	GoalDiv Goal = iota
	// GoalRegExp lexes a leading `/` as the start of a regular expression
	// literal.
	GoalRegExp
	// GoalTemplateTail resumes lexing inside a template substitution's
	// closing `}`, producing TemplateMiddle or TemplateTail.
	GoalTemplateTail
	// GoalHashbangOrRegExp is used only for the very first token of a
	// Script, where a leading `#!` introduces a Hashbang token.
	GoalHashbangOrRegExp
)
