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

// lookaheadSlots is the ring buffer's forward capacity: §4.2 requires "at
// least 4 slots forward + 1 push-back", so peek(n) is valid for n in [0,3].
const lookaheadSlots = 4

// TriviaMode selects whether BufferedLexer surfaces LineTerminator tokens or
// swallows them while still recording PrecededByLineTerminator, per §4.2's
// two modes.
type TriviaMode uint8

const (
	// SkipLineTerminators is used for most parse decisions: the parser
	// never sees a LineTerminator token, only the flag on the following
	// significant token.
	SkipLineTerminators TriviaMode = iota
	// PreserveLineTerminators is used for automatic-semicolon insertion and
	// the no-linebreak-after rules (`return`, `throw`, `++`/`--` postfix,
	// arrow function `=>`).
	PreserveLineTerminators
)

// BufferedLexer wraps a Lexer with bounded lookahead and owns the parser-
// visible strict-mode and arrow-parsing flags (§4.2): both change how the
// *next* token is interpreted (a contextual keyword's reservedness, whether
// `=>` is awaited) without being properties of the lexer itself.
type BufferedLexer struct {
	lex  *Lexer
	goal Goal
	mode TriviaMode

	ring   [lookaheadSlots]Token
	filled int

	pushedBack *Token

	// Strict is the strict-mode flag the parser toggles on entering/leaving
	// a strict function or module body. It affects only interpretation
	// already performed at the parser layer (legacy octal literal
	// rejection, reserved-word set) — the underlying Lexer is not strict-
	// mode aware.
	Strict bool
	// ArrowParsing is set while the parser is re-interpreting a
	// parenthesized expression cover grammar as a prospective arrow
	// function's parameter list, per §4.3.
	ArrowParsing bool
}

// NewBufferedLexer constructs a BufferedLexer over src in SkipLineTerminators
// mode with the default Div goal.
func NewBufferedLexer(src *Source) *BufferedLexer {
	return &BufferedLexer{lex: NewLexer(src), goal: GoalDiv, mode: SkipLineTerminators}
}

// SetGoal sets the goal symbol used for tokens scanned by the *next* Peek/
// Next call whose value is not already buffered. Changing the goal while
// tokens are already buffered only affects newly scanned tokens, matching
// §4.1's "changing the goal is legal between any two tokens."
func (b *BufferedLexer) SetGoal(g Goal) { b.goal = g }

// SetMode switches between skipping and preserving LineTerminator tokens.
func (b *BufferedLexer) SetMode(m TriviaMode) { b.mode = m }

// Source returns the underlying Source.
func (b *BufferedLexer) Source() *Source { return b.lex.Source() }

func (b *BufferedLexer) fill(n int) error {
	for b.filled <= n {
		tok, err := b.scanSignificant()
		if err != nil {
			return err
		}

		b.ring[b.filled] = tok
		b.filled++
	}

	return nil
}

// scanSignificant reads raw tokens from the underlying Lexer until it has a
// non-trivia token (or, in PreserveLineTerminators mode, a LineTerminator
// token), accumulating PrecededByLineTerminator along the way.
func (b *BufferedLexer) scanSignificant() (Token, error) {
	sawNewline := false

	for {
		tok, err := b.lex.Next(b.goal)
		if err != nil {
			return Token{}, err
		}

		switch tok.Kind {
		case Comment:
			if tok.PrecededByLineTerminator {
				sawNewline = true
			}
		case LineTerminator:
			sawNewline = true

			if b.mode == PreserveLineTerminators {
				tok.PrecededByLineTerminator = sawNewline
				return tok, nil
			}
		default:
			tok.PrecededByLineTerminator = sawNewline
			return tok, nil
		}
	}
}

// Peek returns the token n positions ahead without consuming it. n must be
// in [0,3].
func (b *BufferedLexer) Peek(n int) (Token, error) {
	if n < 0 || n >= lookaheadSlots {
		panic("lexer: peek index out of range")
	}

	if b.pushedBack != nil {
		if n == 0 {
			return *b.pushedBack, nil
		}

		n--
	}

	if err := b.fill(n); err != nil {
		return Token{}, err
	}

	return b.ring[n], nil
}

// Next consumes and returns the next significant token.
func (b *BufferedLexer) Next() (Token, error) {
	if b.pushedBack != nil {
		tok := *b.pushedBack
		b.pushedBack = nil

		return tok, nil
	}

	if err := b.fill(0); err != nil {
		return Token{}, err
	}

	tok := b.ring[0]

	copy(b.ring[:], b.ring[1:b.filled])
	b.filled--

	return tok, nil
}

// PushBack returns tok to the single push-back slot so the next Next/Peek
// call sees it again; used when the parser over-reads a token while
// resolving a cover grammar. At most one token may be pushed back at a time.
func (b *BufferedLexer) PushBack(tok Token) {
	if b.pushedBack != nil {
		panic("lexer: push-back slot already occupied")
	}

	b.pushedBack = &tok
}

// Rewind discards any buffered lookahead and repositions the underlying
// Lexer to byte offset pos, used when GoalTemplateTail must re-lex a `}`
// that was originally scanned under GoalDiv.
func (b *BufferedLexer) Rewind(pos int) {
	b.filled = 0
	b.pushedBack = nil
	b.lex.Seek(pos)
}
