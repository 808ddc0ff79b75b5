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
package parser

import (
	"github.com/ecmaforge/ecmaforge/pkg/ast"
	"github.com/ecmaforge/ecmaforge/pkg/lexer"
)

// tryParseArrowFunction detects and parses the three arrow-function forms
// (`x => body`, `(params) => body`, `async (...) => body`) by speculative
// lookahead, resolving §4.3's "cover parenthesized expression and arrow
// parameter list" grammar. It returns ok=false, having consumed nothing,
// when the input is not an arrow function.
func (p *Parser) tryParseArrowFunction() (ast.Expression, bool, error) {
	p.buf.SetGoal(lexer.GoalRegExp)

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, false, err
	}

	async := false

	if tok.Kind == lexer.Identifier && tok.String == "async" {
		next, err := p.peekTok(1)
		if err != nil {
			return nil, false, err
		}

		if !next.PrecededByLineTerminator && (next.Kind == lexer.Identifier || (next.Kind == lexer.Punctuator && next.Punct == lexer.PunctLParen)) {
			async = true
		}
	}

	checkTok := tok

	if async {
		checkTok, err = p.peekTok(1)
		if err != nil {
			return nil, false, err
		}
	}

	switch {
	case checkTok.Kind == lexer.Identifier:
		arrowNext, err := p.peekTok(boolToInt(async) + 1)
		if err != nil {
			return nil, false, err
		}

		if !(arrowNext.Kind == lexer.Punctuator && arrowNext.Punct == lexer.PunctArrow) {
			return nil, false, nil
		}

		return p.parseArrowFromSingleIdent(async)
	case checkTok.Kind == lexer.Punctuator && checkTok.Punct == lexer.PunctLParen:
		return p.tryParseParenArrow(async)
	default:
		return nil, false, nil
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func (p *Parser) parseArrowFromSingleIdent(async bool) (ast.Expression, bool, error) {
	start, _ := p.peekTok(0)

	if async {
		if _, err := p.nextTok(); err != nil {
			return nil, false, err
		}
	}

	identTok, err := p.nextTok()
	if err != nil {
		return nil, false, err
	}

	param := p.internIdent(identTok.Span, identTok.String)

	if _, err := p.expectPunct(lexer.PunctArrow); err != nil {
		return nil, false, err
	}

	fn, err := p.parseArrowBody([]ast.Pattern{param}, async, start.Span.Start())
	if err != nil {
		return nil, false, err
	}

	return fn, true, nil
}

// tryParseParenArrow speculatively parses a `(...)` group as an arrow
// parameter list. Because the buffered lexer supports unbounded rewinding
// through Rewind, a failed speculative parse simply re-seeks to the saved
// position and falls back to ordinary parenthesized-expression parsing.
func (p *Parser) tryParseParenArrow(async bool) (ast.Expression, bool, error) {
	startTok, _ := p.peekTok(0)
	savedPos := startTok.Span.Start()

	if async {
		if _, err := p.nextTok(); err != nil {
			return nil, false, err
		}
	}

	params, endParen, arrowErr := p.tryParseArrowParameterList()
	if arrowErr != nil {
		p.buf.Rewind(savedPos)
		p.buf.SetGoal(lexer.GoalRegExp)

		return nil, false, nil
	}

	if !p.atPunct(lexer.PunctArrow) {
		p.buf.Rewind(savedPos)
		p.buf.SetGoal(lexer.GoalRegExp)

		return nil, false, nil
	}

	if _, err := p.nextTok(); err != nil {
		return nil, false, err
	}

	fn, err := p.parseArrowBody(params, async, startTok.Span.Start())
	if err != nil {
		return nil, false, err
	}

	_ = endParen

	return fn, true, nil
}

// tryParseArrowParameterList parses `(` binding-target-with-default-or-rest,... `)`
// as a parameter list. Any failure (a non-pattern expression, e.g. `(1+2)`)
// is surfaced as an error the caller treats as "not an arrow" and rewinds
// past.
func (p *Parser) tryParseArrowParameterList() ([]ast.Pattern, int, error) {
	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, 0, err
	}

	var params []ast.Pattern

	for !p.atPunct(lexer.PunctRParen) {
		if p.atPunct(lexer.PunctEllipsis) {
			start, _ := p.nextTok()

			target, err := p.parseBindingTarget()
			if err != nil {
				return nil, 0, err
			}

			params = append(params, &ast.RestElement{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), target.Span().End())},
				Target:   target,
			})

			break
		}

		param, err := p.parseBindingTargetWithDefault()
		if err != nil {
			return nil, 0, err
		}

		params = append(params, param)

		if !p.atPunct(lexer.PunctRParen) {
			if _, err := p.expectPunct(lexer.PunctComma); err != nil {
				return nil, 0, err
			}
		}
	}

	end, err := p.expectPunct(lexer.PunctRParen)
	if err != nil {
		return nil, 0, err
	}

	return params, end.Span.End(), nil
}

func (p *Parser) parseArrowBody(params []ast.Pattern, async bool, start int) (ast.Expression, error) {
	savedAsync, savedGen := p.inAsync, p.inGenerator
	p.inAsync, p.inGenerator = async, false

	defer func() { p.inAsync, p.inGenerator = savedAsync, savedGen }()

	p.buf.SetGoal(lexer.GoalRegExp)

	var body ast.Node

	if p.atPunct(lexer.PunctLBrace) {
		block, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}

		body = block
	} else {
		expr, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		body = expr
	}

	fn := &ast.Function{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start, body.Span().End())},
		Params:   params, Body: body, Async: async, Arrow: true, Strict: p.strict,
	}

	return &ast.ArrowFunctionExpression{NodeBase: fn.NodeBase, Function: fn}, nil
}

// tryParseAsyncFunctionExpression handles `async function ...` in primary
// expression position, distinguishing it from `async` used as a plain
// identifier or the start of an async arrow (already handled by
// tryParseArrowFunction, which runs first).
func (p *Parser) tryParseAsyncFunctionExpression() (ast.Expression, bool, error) {
	next, err := p.peekTok(1)
	if err != nil {
		return nil, false, err
	}

	if next.PrecededByLineTerminator || next.Kind != lexer.Keyword || next.Keyword != lexer.KeywordFunction {
		return nil, false, nil
	}

	if _, err := p.nextTok(); err != nil {
		return nil, false, err
	}

	fn, err := p.parseFunctionExpression(true)
	if err != nil {
		return nil, false, err
	}

	return fn, true, nil
}
