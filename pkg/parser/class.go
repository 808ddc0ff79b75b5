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

func (p *Parser) parseClassExpression() (ast.Expression, error) {
	cls, err := p.parseClass(false)
	if err != nil {
		return nil, err
	}

	return &ast.ClassExpression{NodeBase: cls.NodeBase, Class: cls}, nil
}

func (p *Parser) parseClassDeclaration() (*ast.ClassDeclaration, error) {
	cls, err := p.parseClass(true)
	if err != nil {
		return nil, err
	}

	return &ast.ClassDeclaration{NodeBase: cls.NodeBase, Class: cls}, nil
}

// parseClassDeclarationOptionalName parses a class declaration with an
// optional name, legal only directly after `export default`.
func (p *Parser) parseClassDeclarationOptionalName() (*ast.ClassDeclaration, error) {
	cls, err := p.parseClass(false)
	if err != nil {
		return nil, err
	}

	return &ast.ClassDeclaration{NodeBase: cls.NodeBase, Class: cls}, nil
}

// parseClass parses the body shared by ClassDeclaration and ClassExpression.
// A class's entire body is always strict (§4.3), regardless of the
// enclosing context.
func (p *Parser) parseClass(requireName bool) (*ast.Class, error) {
	start, err := p.expectKeyword(lexer.KeywordClass)
	if err != nil {
		return nil, err
	}

	savedStrict := p.strict
	p.strict = true

	defer func() { p.strict = savedStrict }()

	var id *ast.Identifier

	if !p.atPunct(lexer.PunctLBrace) && !p.atKeyword(lexer.KeywordExtends) {
		id, err = p.parseBindingIdentifier()
		if err != nil {
			return nil, err
		}
	} else if requireName {
		return nil, p.errorf(start.Span, "class declaration requires a name")
	}

	var superClass ast.Expression

	if p.atKeyword(lexer.KeywordExtends) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		superClass, err = p.parseLeftHandSideExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunct(lexer.PunctLBrace); err != nil {
		return nil, err
	}

	var body []ast.ClassElement

	for !p.atPunct(lexer.PunctRBrace) {
		if p.atPunct(lexer.PunctSemicolon) {
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			continue
		}

		el, err := p.parseClassElement()
		if err != nil {
			return nil, err
		}

		body = append(body, el)
	}

	end, err := p.expectPunct(lexer.PunctRBrace)
	if err != nil {
		return nil, err
	}

	return &ast.Class{
		NodeBase:   ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.Span.End())},
		Id:         id,
		SuperClass: superClass,
		Body:       body,
	}, nil
}

func (p *Parser) parseClassElement() (ast.ClassElement, error) {
	startTok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	static := false

	if startTok.Kind == lexer.Identifier && startTok.String == "static" {
		next, err := p.peekTok(1)
		if err != nil {
			return nil, err
		}

		if !isClassElementTerminator(next) {
			static = true

			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			if p.atPunct(lexer.PunctLBrace) {
				return p.parseStaticBlock(startTok.Span.Start())
			}
		}
	}

	async := false
	generator := false
	kind := ast.MethodNormal

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if tok.Kind == lexer.Identifier && tok.String == "async" {
		next, err := p.peekTok(1)
		if err != nil {
			return nil, err
		}

		if !isClassElementTerminator(next) && !next.PrecededByLineTerminator {
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

	if !async && !generator {
		tok, err := p.peekTok(0)
		if err != nil {
			return nil, err
		}

		if tok.Kind == lexer.Identifier && (tok.String == "get" || tok.String == "set") {
			next, err := p.peekTok(1)
			if err != nil {
				return nil, err
			}

			if !isClassElementTerminator(next) {
				if tok.String == "get" {
					kind = ast.MethodGet
				} else {
					kind = ast.MethodSet
				}

				if _, err := p.nextTok(); err != nil {
					return nil, err
				}
			}
		}
	}

	key, computed, err := p.parsePropertyKey()
	if err != nil {
		return nil, err
	}

	if p.atPunct(lexer.PunctLParen) {
		if kind == ast.MethodNormal {
			if ident, ok := key.(*ast.Identifier); ok && ident.Name == "constructor" && !static {
				kind = ast.MethodConstructor
			}
		}

		fn, err := p.parseFunctionRest(nil, generator, async)
		if err != nil {
			return nil, err
		}

		fn.NodeBase.Loc = ast.NewSpan(key.Span().Start(), fn.Body.Span().End())

		return &ast.MethodDefinition{
			NodeBase: ast.NodeBase{Loc: fn.NodeBase.Loc},
			Key:      key, Computed: computed, Kind: kind, Static: static, Value: fn,
		}, nil
	}

	// Field declaration.
	var value ast.Expression

	end := key.Span()

	if p.atPunct(lexer.PunctEq) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		value, err = p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		end = value.Span()
	}

	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}

	return &ast.PropertyDefinition{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(key.Span().Start(), end.End())},
		Key:      key, Computed: computed, Static: static, Value: value,
	}, nil
}

func isClassElementTerminator(tok lexer.Token) bool {
	if tok.Kind == lexer.Punctuator {
		switch tok.Punct {
		case lexer.PunctLParen, lexer.PunctEq, lexer.PunctSemicolon, lexer.PunctRBrace:
			return true
		}
	}

	return false
}

func (p *Parser) parseStaticBlock(start int) (*ast.StaticBlock, error) {
	block, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}

	return &ast.StaticBlock{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start, block.Span().End())},
		Body:     block.Body,
	}, nil
}
