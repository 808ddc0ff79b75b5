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

// parseFunctionExpression parses `function [*] [name] (params) { body }`.
// async is true when the caller already consumed a leading `async` keyword.
func (p *Parser) parseFunctionExpression(async bool) (ast.Expression, error) {
	start, err := p.expectKeyword(lexer.KeywordFunction)
	if err != nil {
		return nil, err
	}

	generator := false

	if p.atPunct(lexer.PunctStar) {
		generator = true

		if _, err := p.nextTok(); err != nil {
			return nil, err
		}
	}

	var id *ast.Identifier

	if !p.atPunct(lexer.PunctLParen) {
		id, err = p.parseBindingIdentifier()
		if err != nil {
			return nil, err
		}
	}

	fn, err := p.parseFunctionRest(id, generator, async)
	if err != nil {
		return nil, err
	}

	fn.NodeBase.Loc = ast.NewSpan(start.Span.Start(), fn.Body.Span().End())

	return &ast.FunctionExpression{NodeBase: fn.NodeBase, Function: fn}, nil
}

// parseFunctionDeclaration parses a named `function` declaration/statement.
func (p *Parser) parseFunctionDeclaration(async bool) (*ast.FunctionDeclaration, error) {
	start, err := p.expectKeyword(lexer.KeywordFunction)
	if err != nil {
		return nil, err
	}

	generator := false

	if p.atPunct(lexer.PunctStar) {
		generator = true

		if _, err := p.nextTok(); err != nil {
			return nil, err
		}
	}

	id, err := p.parseBindingIdentifier()
	if err != nil {
		return nil, err
	}

	fn, err := p.parseFunctionRest(id, generator, async)
	if err != nil {
		return nil, err
	}

	fn.NodeBase.Loc = ast.NewSpan(start.Span.Start(), fn.Body.Span().End())

	return &ast.FunctionDeclaration{NodeBase: fn.NodeBase, Function: fn}, nil
}

// parseFunctionDeclarationOptionalName parses `function [*] [name] (...) {...}`
// where name may be omitted, legal only directly after `export default`
// (§4.10's carve-out allowing an anonymous default-exported function).
func (p *Parser) parseFunctionDeclarationOptionalName(async bool) (*ast.FunctionDeclaration, error) {
	start, err := p.expectKeyword(lexer.KeywordFunction)
	if err != nil {
		return nil, err
	}

	generator := false

	if p.atPunct(lexer.PunctStar) {
		generator = true

		if _, err := p.nextTok(); err != nil {
			return nil, err
		}
	}

	var id *ast.Identifier

	if !p.atPunct(lexer.PunctLParen) {
		id, err = p.parseBindingIdentifier()
		if err != nil {
			return nil, err
		}
	}

	fn, err := p.parseFunctionRest(id, generator, async)
	if err != nil {
		return nil, err
	}

	fn.NodeBase.Loc = ast.NewSpan(start.Span.Start(), fn.Body.Span().End())

	return &ast.FunctionDeclaration{NodeBase: fn.NodeBase, Function: fn}, nil
}

// parseFunctionRest parses the `(params) { body }` common to function
// declarations, function expressions, methods, and accessors; id is already
// parsed (or nil).
func (p *Parser) parseFunctionRest(id *ast.Identifier, generator, async bool) (*ast.Function, error) {
	savedGen, savedAsync, savedInFn := p.inGenerator, p.inAsync, p.inFunction
	p.inGenerator, p.inAsync, p.inFunction = generator, async, true

	defer func() { p.inGenerator, p.inAsync, p.inFunction = savedGen, savedAsync, savedInFn }()

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}

	strict := p.strict || directivePrologueIsStrict(body.Body)

	return &ast.Function{
		Id: id, Params: params, Body: body,
		Generator: generator, Async: async, Strict: strict,
	}, nil
}

func (p *Parser) parseParams() ([]ast.Pattern, error) {
	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, err
	}

	var params []ast.Pattern

	for !p.atPunct(lexer.PunctRParen) {
		if p.atPunct(lexer.PunctEllipsis) {
			start, _ := p.nextTok()

			target, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}

			params = append(params, &ast.RestElement{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), target.Span().End())},
				Target:   target,
			})

			break
		}

		param, err := p.parseBindingTargetWithDefault()
		if err != nil {
			return nil, err
		}

		params = append(params, param)

		if !p.atPunct(lexer.PunctRParen) {
			if _, err := p.expectPunct(lexer.PunctComma); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
		return nil, err
	}

	return params, nil
}

// directivePrologueIsStrict reports whether body opens with a "use strict"
// directive (a StringLiteral ExpressionStatement whose Raw is exactly
// "use strict" with either quote style, §4.3/§4.4).
func directivePrologueIsStrict(body []ast.Statement) bool {
	for _, stmt := range body {
		exprStmt, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			break
		}

		str, ok := exprStmt.Expression.(*ast.StringLiteral)
		if !ok {
			break
		}

		if str.Raw == `"use strict"` || str.Raw == `'use strict'` {
			return true
		}
	}

	return false
}
