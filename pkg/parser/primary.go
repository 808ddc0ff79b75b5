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

func (p *Parser) parsePrimaryExpression() (ast.Expression, error) {
	p.buf.SetGoal(lexer.GoalRegExp)

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case lexer.NumericLiteral:
		_, _ = p.nextTok()
		return &ast.NumericLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}, Value: tok.Number, Raw: tok.Raw}, nil
	case lexer.BigIntLiteral:
		_, _ = p.nextTok()
		return &ast.BigIntLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}, Value: tok.BigInt, Raw: tok.Raw}, nil
	case lexer.StringLiteral:
		_, _ = p.nextTok()
		return &ast.StringLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}, Value: tok.String, Raw: tok.Raw}, nil
	case lexer.NoSubstitutionTemplate, lexer.TemplateHead:
		return p.parseTemplateLiteral()
	case lexer.RegularExpressionLiteral:
		_, _ = p.nextTok()
		return &ast.RegExpLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}, Pattern: tok.String, Flags: tok.Flags}, nil
	case lexer.PrivateIdentifier:
		// Only legal as the left operand of `in` (§4.3's private-field-in
		// early error is enforced later by pkg/scope, not here).
		_, _ = p.nextTok()
		return &ast.PrivateIdentifier{NodeBase: ast.NodeBase{Loc: tok.Span}, Sym: p.syms.Intern(tok.String), Name: tok.String}, nil
	case lexer.Identifier:
		switch tok.String {
		case "async":
			if fn, ok, err := p.tryParseAsyncFunctionExpression(); err != nil {
				return nil, err
			} else if ok {
				return fn, nil
			}
		}

		_, _ = p.nextTok()
		return p.internIdent(tok.Span, tok.String), nil
	case lexer.Punctuator:
		switch tok.Punct {
		case lexer.PunctLParen:
			return p.parseParenthesizedExpression()
		case lexer.PunctLBracket:
			return p.parseArrayLiteral()
		case lexer.PunctLBrace:
			return p.parseObjectLiteral()
		}
	case lexer.Keyword:
		switch tok.Keyword {
		case lexer.KeywordThis:
			_, _ = p.nextTok()
			return &ast.ThisExpression{NodeBase: ast.NodeBase{Loc: tok.Span}}, nil
		case lexer.KeywordSuper:
			_, _ = p.nextTok()
			return &ast.SuperExpression{NodeBase: ast.NodeBase{Loc: tok.Span}}, nil
		case lexer.KeywordNull:
			_, _ = p.nextTok()
			return &ast.NullLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}}, nil
		case lexer.KeywordTrue:
			_, _ = p.nextTok()
			return &ast.BooleanLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}, Value: true}, nil
		case lexer.KeywordFalse:
			_, _ = p.nextTok()
			return &ast.BooleanLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}, Value: false}, nil
		case lexer.KeywordFunction:
			return p.parseFunctionExpression(false)
		case lexer.KeywordClass:
			return p.parseClassExpression()
		case lexer.KeywordImport:
			return p.parseImportExpression()
		case lexer.KeywordYield, lexer.KeywordAwait, lexer.KeywordLet, lexer.KeywordStatic, lexer.KeywordOf, lexer.KeywordAs,
			lexer.KeywordGet, lexer.KeywordSet, lexer.KeywordFrom:
			// contextual keywords used as plain identifiers outside their
			// special productions
			_, _ = p.nextTok()
			return p.internIdent(tok.Span, tok.String), nil
		}
	}

	return nil, p.errorAt(tok, "unexpected token")
}

// parseImportExpression handles `import(specifier)` dynamic import and
// `import.meta` (§4.3, §4.10).
func (p *Parser) parseImportExpression() (ast.Expression, error) {
	start, err := p.expectKeyword(lexer.KeywordImport)
	if err != nil {
		return nil, err
	}

	if p.atPunct(lexer.PunctDot) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		tok, err := p.nextTok()
		if err != nil {
			return nil, err
		}

		if tok.Kind != lexer.Identifier || tok.String != "meta" {
			return nil, p.errorAt(tok, "expected 'meta' after 'import.'")
		}

		return &ast.MetaProperty{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), tok.Span.End())},
			Meta:     "import", Property: "meta",
		}, nil
	}

	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}

	return &ast.CallExpression{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), p.lastConsumedEnd)},
		Callee:   p.internIdent(start.Span, "import"), Arguments: args,
	}, nil
}

// parseParenthesizedExpression parses a `(expr, expr, ...)` group. The
// caller (tryParseArrowFunction) has already ruled out the arrow-function
// interpretation by the time this runs.
func (p *Parser) parseParenthesizedExpression() (ast.Expression, error) {
	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, err
	}

	inner, err := p.parseExpressionAllowIn()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
		return nil, err
	}

	return inner, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	start, err := p.expectPunct(lexer.PunctLBracket)
	if err != nil {
		return nil, err
	}

	var elements []ast.Expression

	for !p.atPunct(lexer.PunctRBracket) {
		p.buf.SetGoal(lexer.GoalRegExp)

		if p.atPunct(lexer.PunctComma) {
			elements = append(elements, nil)

			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			continue
		}

		if p.atPunct(lexer.PunctEllipsis) {
			spreadStart, _ := p.nextTok()

			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}

			elements = append(elements, &ast.SpreadElement{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(spreadStart.Span.Start(), arg.Span().End())},
				Argument: arg,
			})
		} else {
			el, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}

			elements = append(elements, el)
		}

		if !p.atPunct(lexer.PunctRBracket) {
			if _, err := p.expectPunct(lexer.PunctComma); err != nil {
				return nil, err
			}
		}
	}

	end, err := p.expectPunct(lexer.PunctRBracket)
	if err != nil {
		return nil, err
	}

	return &ast.ArrayExpression{NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.Span.End())}, Elements: elements}, nil
}

func (p *Parser) parseObjectLiteral() (ast.Expression, error) {
	start, err := p.expectPunct(lexer.PunctLBrace)
	if err != nil {
		return nil, err
	}

	var props []*ast.Property

	for !p.atPunct(lexer.PunctRBrace) {
		prop, err := p.parseObjectLiteralProperty()
		if err != nil {
			return nil, err
		}

		props = append(props, prop)

		if !p.atPunct(lexer.PunctRBrace) {
			if _, err := p.expectPunct(lexer.PunctComma); err != nil {
				return nil, err
			}
		}
	}

	end, err := p.expectPunct(lexer.PunctRBrace)
	if err != nil {
		return nil, err
	}

	return &ast.ObjectExpression{NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.Span.End())}, Properties: props}, nil
}

func (p *Parser) parseObjectLiteralProperty() (*ast.Property, error) {
	p.buf.SetGoal(lexer.GoalRegExp)

	if p.atPunct(lexer.PunctEllipsis) {
		start, _ := p.nextTok()

		arg, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		return &ast.Property{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), arg.Span().End())},
			Kind:     ast.PropertySpread, Value: arg,
		}, nil
	}

	startTok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	// get/set accessor, unless immediately followed by `:`, `,`, `}`, or `(`
	// (in which case "get"/"set" is itself the (shorthand) property name).
	if startTok.Kind == lexer.Identifier && (startTok.String == "get" || startTok.String == "set") {
		if nextTok, err := p.peekTok(1); err == nil && !isPropertyTerminator(nextTok) {
			return p.parseAccessorProperty(startTok.String == "get")
		}
	}

	async := false
	generator := false

	if startTok.Kind == lexer.Identifier && startTok.String == "async" {
		if nextTok, err := p.peekTok(1); err == nil && !isPropertyTerminator(nextTok) && !nextTok.PrecededByLineTerminator {
			async = true

			if _, err := p.nextTok(); err != nil {
				return nil, err
			}
		}
	}

	if p.atPunct(lexer.PunctStar) {
		generator = true

		if _, err := p.nextTok(); err != nil {
			return nil, err
		}
	}

	key, computed, err := p.parsePropertyKey()
	if err != nil {
		return nil, err
	}

	if p.atPunct(lexer.PunctLParen) {
		fn, err := p.parseFunctionRest(nil, generator, async)
		if err != nil {
			return nil, err
		}

		return &ast.Property{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(key.Span().Start(), fn.Body.Span().End())},
			Kind:     ast.PropertyMethod, Key: key, Computed: computed,
			Value: &ast.FunctionExpression{NodeBase: ast.NodeBase{Loc: ast.NewSpan(key.Span().Start(), fn.Body.Span().End())}, Function: fn},
		}, nil
	}

	if p.atPunct(lexer.PunctColon) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		value, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		return &ast.Property{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(key.Span().Start(), value.Span().End())},
			Kind:     ast.PropertyInit, Key: key, Computed: computed, Value: value,
		}, nil
	}

	ident, ok := key.(*ast.Identifier)
	if !ok {
		return nil, p.errorf(key.Span(), "invalid shorthand property")
	}

	end := ident.Span()

	var value ast.Expression = ident

	if p.atPunct(lexer.PunctEq) {
		// Shorthand with default: only valid inside an object-pattern cover
		// grammar (destructuring assignment); represented as an
		// AssignmentExpression so exprToPattern can recover it later.
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		def, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		value = &ast.AssignmentExpression{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(ident.Span().Start(), def.Span().End())},
			Operator: ast.AssignPlain, Target: ident, Value: def,
		}
		end = value.Span()
	}

	return &ast.Property{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(ident.Span().Start(), end.End())},
		Kind:     ast.PropertyInit, Key: ident, Shorthand: true, Value: value,
	}, nil
}

func isPropertyTerminator(tok lexer.Token) bool {
	if tok.Kind != lexer.Punctuator {
		return false
	}

	switch tok.Punct {
	case lexer.PunctColon, lexer.PunctComma, lexer.PunctRBrace, lexer.PunctLParen, lexer.PunctEq:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAccessorProperty(isGet bool) (*ast.Property, error) {
	start, err := p.nextTok()
	if err != nil {
		return nil, err
	}

	key, computed, err := p.parsePropertyKey()
	if err != nil {
		return nil, err
	}

	fn, err := p.parseFunctionRest(nil, false, false)
	if err != nil {
		return nil, err
	}

	kind := ast.PropertyGet
	if !isGet {
		kind = ast.PropertySet
	}

	return &ast.Property{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), fn.Body.Span().End())},
		Kind:     kind, Key: key, Computed: computed,
		Value: &ast.FunctionExpression{NodeBase: ast.NodeBase{Loc: ast.NewSpan(key.Span().Start(), fn.Body.Span().End())}, Function: fn},
	}, nil
}

// parsePropertyKey parses an IdentifierName, string, numeric, or computed
// (`[expr]`) property key, shared by object literals, object patterns, and
// class elements.
func (p *Parser) parsePropertyKey() (ast.Expression, bool, error) {
	if p.atPunct(lexer.PunctLBracket) {
		if _, err := p.nextTok(); err != nil {
			return nil, false, err
		}

		key, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, false, err
		}

		if _, err := p.expectPunct(lexer.PunctRBracket); err != nil {
			return nil, false, err
		}

		return key, true, nil
	}

	tok, err := p.nextTok()
	if err != nil {
		return nil, false, err
	}

	switch tok.Kind {
	case lexer.StringLiteral:
		return &ast.StringLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}, Value: tok.String, Raw: tok.Raw}, false, nil
	case lexer.NumericLiteral:
		return &ast.NumericLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}, Value: tok.Number, Raw: tok.Raw}, false, nil
	case lexer.PrivateIdentifier:
		return &ast.PrivateIdentifier{NodeBase: ast.NodeBase{Loc: tok.Span}, Sym: p.syms.Intern(tok.String), Name: tok.String}, false, nil
	case lexer.Identifier, lexer.Keyword:
		name, err := propertyNameText(tok)
		if err != nil {
			return nil, false, p.errorAt(tok, "expected property name")
		}

		return p.internIdent(tok.Span, name), false, nil
	default:
		return nil, false, p.errorAt(tok, "expected property name")
	}
}

// parseTemplateLiteral parses a whole template literal, re-lexing each `}`
// under GoalTemplateTail via the buffered lexer's Rewind mechanism so the
// text after a substitution is scanned as template text rather than JS
// source (§4.1's TemplateTail goal symbol).
func (p *Parser) parseTemplateLiteral() (*ast.TemplateLiteral, error) {
	head, err := p.nextTok()
	if err != nil {
		return nil, err
	}

	quasis := []*ast.TemplateElement{templateElementFrom(head)}

	var exprs []ast.Expression

	end := head.Span

	for head.Kind == lexer.TemplateHead {
		e, err := p.parseExpressionAllowIn()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, e)

		part, err := p.expectTemplateContinuation()
		if err != nil {
			return nil, err
		}

		quasis = append(quasis, templateElementFrom(part))
		end = part.Span
		head = part
	}

	return &ast.TemplateLiteral{
		NodeBase:    ast.NodeBase{Loc: ast.NewSpan(quasis[0].Span().Start(), end.End())},
		Quasis:      quasis,
		Expressions: exprs,
	}, nil
}

func templateElementFrom(tok lexer.Token) *ast.TemplateElement {
	var cooked *string

	if tok.CookedValid {
		s := tok.String
		cooked = &s
	}

	return &ast.TemplateElement{
		NodeBase: ast.NodeBase{Loc: tok.Span},
		Cooked:   cooked, Raw: tok.Raw,
		Tail: tok.Kind == lexer.TemplateTail || tok.Kind == lexer.NoSubstitutionTemplate,
	}
}

func (p *Parser) expectTemplateContinuation() (lexer.Token, error) {
	tok, err := p.peekTok(0)
	if err != nil {
		return tok, err
	}

	if tok.Kind != lexer.Punctuator || tok.Punct != lexer.PunctRBrace {
		return tok, p.errorAt(tok, "expected '}' in template literal")
	}

	p.buf.Rewind(tok.Span.Start())
	p.buf.SetGoal(lexer.GoalTemplateTail)

	return p.nextTok()
}
