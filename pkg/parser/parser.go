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

// Package parser is a recursive-descent parser matching the ECMAScript
// grammar (§4.3), producing pkg/ast nodes from a pkg/lexer.BufferedLexer. It
// resolves the array/object-literal-vs-pattern and parenthesized-expression-
// vs-arrow-parameters cover grammars by parsing permissively and converting
// after the fact (exprToPattern, in pattern.go).
package parser

import (
	"fmt"

	"github.com/ecmaforge/ecmaforge/pkg/ast"
	"github.com/ecmaforge/ecmaforge/pkg/intern"
	"github.com/ecmaforge/ecmaforge/pkg/lexer"
)

// Parser holds all state needed to parse one source file. It is not safe for
// concurrent use and is discarded after a single Parse call.
type Parser struct {
	buf    *lexer.BufferedLexer
	syms   *intern.Interner
	source *lexer.Source

	kind ast.SourceKind

	// function-context flags, saved/restored around each function body by
	// the caller (see expr.go's parseFunctionBody).
	inFunction  bool
	inGenerator bool
	inAsync     bool
	inLoop      int
	inSwitch    int
	allowIn     bool

	// strict is the parser's own provisional strict-mode tracking, used to
	// validate parameter lists and reject octal literals/`with` before
	// pkg/scope's authoritative recomputation (§4.3).
	strict bool

	labels map[string]labelKind

	// lastConsumedEnd is the byte offset just past the most recently
	// consumed token, used by call/argument-list parsing to compute a
	// node's end span without threading an extra return value through
	// every caller.
	lastConsumedEnd int
}

type labelKind uint8

const (
	labelStatement labelKind = iota
	labelIteration
)

// New constructs a Parser over src, interning identifiers into syms.
func New(src *lexer.Source, syms *intern.Interner) *Parser {
	return &Parser{
		buf:     lexer.NewBufferedLexer(src),
		syms:    syms,
		source:  src,
		allowIn: true,
		labels:  make(map[string]labelKind),
	}
}

// ParseScript parses src as a Script (§4.3's entry point for top-level
// non-module source).
func ParseScript(name string, text []byte, syms *intern.Interner) (*ast.Program, error) {
	src := lexer.NewSource(name, text)
	p := New(src, syms)
	p.kind = ast.SourceKindScript
	p.buf.SetGoal(lexer.GoalHashbangOrRegExp)

	return p.parseProgram()
}

// ParseModule parses src as a Module; modules are always strict and admit
// import/export declarations at the top level (§4.1's Module goal symbol).
func ParseModule(name string, text []byte, syms *intern.Interner) (*ast.Program, error) {
	src := lexer.NewSource(name, text)
	p := New(src, syms)
	p.kind = ast.SourceKindModule
	p.strict = true
	p.inAsync = true // top-level await (§4.3)
	p.buf.SetGoal(lexer.GoalHashbangOrRegExp)

	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	start := 0

	if tok, err := p.peekTok(0); err != nil {
		return nil, err
	} else if tok.Kind == lexer.Hashbang {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}
	}

	p.buf.SetGoal(lexer.GoalRegExp)

	var body []ast.Statement

	for {
		p.buf.SetGoal(lexer.GoalRegExp)

		tok, err := p.peekTok(0)
		if err != nil {
			return nil, err
		}

		if tok.Kind == lexer.EOF {
			break
		}

		var stmt ast.Statement

		if p.kind == ast.SourceKindModule {
			stmt, err = p.parseModuleItem()
		} else {
			stmt, err = p.parseStatementListItem()
		}

		if err != nil {
			return nil, err
		}

		body = append(body, stmt)
	}

	strict := p.strict || directivePrologueIsStrict(body)

	if p.kind == ast.SourceKindModule {
		strict = true
	}

	end := p.buf.Source().Text()

	return &ast.Program{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start, len(end))},
		Kind:     p.kind,
		Body:     body,
		Strict:   strict,
	}, nil
}

// --- token-stream helpers -------------------------------------------------

func (p *Parser) peekTok(n int) (lexer.Token, error) { return p.buf.Peek(n) }

func (p *Parser) nextTok() (lexer.Token, error) { return p.buf.Next() }

func (p *Parser) errorf(span ast.Span, format string, args ...any) error {
	return p.source.SyntaxError(span, fmt.Sprintf(format, args...))
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) error {
	return p.errorf(tok.Span, format, args...)
}

// atPunct reports whether the next token is the given punctuator.
func (p *Parser) atPunct(punct lexer.Punctuator) bool {
	tok, err := p.peekTok(0)
	return err == nil && tok.Kind == lexer.Punctuator && tok.Punct == punct
}

// atKeyword reports whether the next token is the given keyword (and was not
// spelled with an escape, per §4.1's "contained escapes" rule).
func (p *Parser) atKeyword(kw lexer.Keyword) bool {
	tok, err := p.peekTok(0)
	return err == nil && tok.Kind == lexer.Keyword && tok.Keyword == kw && !tok.ContainsEscape
}

// atContextualKeyword reports whether the next token is an Identifier (not a
// reserved Keyword) spelled exactly as name; contextual keywords ("async",
// "of", "get", "set", "static", "as", "from", "let") lex as plain identifiers
// and are recognised by spelling at each use site.
func (p *Parser) atContextualKeyword(name string) bool {
	tok, err := p.peekTok(0)
	return err == nil && tok.Kind == lexer.Identifier && tok.String == name
}

func (p *Parser) expectPunct(punct lexer.Punctuator) (lexer.Token, error) {
	tok, err := p.nextTok()
	if err != nil {
		return tok, err
	}

	if tok.Kind != lexer.Punctuator || tok.Punct != punct {
		return tok, p.errorAt(tok, "unexpected token, expected %q", punctuatorText(punct))
	}

	return tok, nil
}

func (p *Parser) expectKeyword(kw lexer.Keyword) (lexer.Token, error) {
	tok, err := p.nextTok()
	if err != nil {
		return tok, err
	}

	if tok.Kind != lexer.Keyword || tok.Keyword != kw {
		return tok, p.errorAt(tok, "unexpected token, expected keyword")
	}

	return tok, nil
}

// consumeSemicolon implements automatic semicolon insertion (§4.3): an
// explicit `;`, a following `}`, end of input, or a line terminator before
// the offending token all satisfy it.
func (p *Parser) consumeSemicolon() error {
	tok, err := p.peekTok(0)
	if err != nil {
		return err
	}

	if tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctSemicolon {
		_, err := p.nextTok()
		return err
	}

	if tok.Kind == lexer.EOF || (tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctRBrace) {
		return nil
	}

	if tok.PrecededByLineTerminator {
		return nil
	}

	return p.errorAt(tok, "expected ';'")
}

// internIdent interns name and wraps it as an *ast.Identifier spanning span.
func (p *Parser) internIdent(span ast.Span, name string) *ast.Identifier {
	return &ast.Identifier{NodeBase: ast.NodeBase{Loc: span}, Sym: p.syms.Intern(name), Name: name}
}

func punctuatorText(punct lexer.Punctuator) string {
	if s, ok := punctSpelling[punct]; ok {
		return s
	}

	return "?"
}
