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

// parseStatementList parses statements until atEnd reports true, threading
// the directive prologue's strict-mode determination back to the caller (the
// enclosing Program or function body).
func (p *Parser) parseStatementList(atEnd func() (bool, error)) ([]ast.Statement, bool, error) {
	var body []ast.Statement

	for {
		done, err := atEnd()
		if err != nil {
			return nil, false, err
		}

		if done {
			break
		}

		stmt, err := p.parseStatementListItem()
		if err != nil {
			return nil, false, err
		}

		body = append(body, stmt)
	}

	strict := p.strict || directivePrologueIsStrict(body)

	return body, strict, nil
}

// parseStatementListItem parses a Statement or a Declaration (let/const,
// function, class), the grammar's StatementListItem production.
func (p *Parser) parseStatementListItem() (ast.Statement, error) {
	p.buf.SetGoal(lexer.GoalRegExp)

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if tok.Kind == lexer.Keyword {
		switch tok.Keyword {
		case lexer.KeywordFunction:
			return p.parseFunctionDeclaration(false)
		case lexer.KeywordClass:
			return p.parseClassDeclaration()
		case lexer.KeywordConst:
			return p.parseVariableStatement(ast.VariableConst)
		}
	}

	if tok.Kind == lexer.Identifier {
		switch tok.String {
		case "let":
			if p.startsBindingTarget(1) {
				return p.parseVariableStatement(ast.VariableLet)
			}
		case "async":
			next, err := p.peekTok(1)
			if err != nil {
				return nil, err
			}

			if !next.PrecededByLineTerminator && next.Kind == lexer.Keyword && next.Keyword == lexer.KeywordFunction {
				if _, err := p.nextTok(); err != nil {
					return nil, err
				}

				fn, err := p.parseFunctionDeclaration(true)
				if err != nil {
					return nil, err
				}

				return fn, nil
			}
		}
	}

	return p.parseStatement()
}

// startsBindingTarget reports whether the token at offset n can begin a
// binding target, used to distinguish the contextual `let` keyword from a
// plain identifier named "let" used as an expression (§4.3).
func (p *Parser) startsBindingTarget(n int) bool {
	tok, err := p.peekTok(n)
	if err != nil {
		return false
	}

	switch tok.Kind {
	case lexer.Identifier:
		return true
	case lexer.Punctuator:
		return tok.Punct == lexer.PunctLBracket || tok.Punct == lexer.PunctLBrace
	default:
		return false
	}
}

// parseStatement parses the Statement grammar (excludes declarations other
// than the ones legal directly as a statement, i.e. none: function/class/
// let/const are only legal as StatementListItems, enforced by the caller).
func (p *Parser) parseStatement() (ast.Statement, error) {
	p.buf.SetGoal(lexer.GoalRegExp)

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctLBrace {
		return p.parseBlockStatement()
	}

	if tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctSemicolon {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		return &ast.EmptyStatement{NodeBase: ast.NodeBase{Loc: tok.Span}}, nil
	}

	if tok.Kind == lexer.Keyword {
		switch tok.Keyword {
		case lexer.KeywordVar:
			return p.parseVariableStatement(ast.VariableVar)
		case lexer.KeywordIf:
			return p.parseIfStatement()
		case lexer.KeywordFor:
			return p.parseForStatement()
		case lexer.KeywordWhile:
			return p.parseWhileStatement()
		case lexer.KeywordDo:
			return p.parseDoWhileStatement()
		case lexer.KeywordSwitch:
			return p.parseSwitchStatement()
		case lexer.KeywordTry:
			return p.parseTryStatement()
		case lexer.KeywordThrow:
			return p.parseThrowStatement()
		case lexer.KeywordReturn:
			return p.parseReturnStatement()
		case lexer.KeywordBreak:
			return p.parseBreakStatement()
		case lexer.KeywordContinue:
			return p.parseContinueStatement()
		case lexer.KeywordDebugger:
			return p.parseDebuggerStatement()
		case lexer.KeywordWith:
			return p.parseWithStatement()
		}
	}

	// LabeledStatement: Identifier ':' Statement. Disambiguated from a
	// bare expression statement by peeking past the identifier.
	if tok.Kind == lexer.Identifier {
		next, err := p.peekTok(1)
		if err != nil {
			return nil, err
		}

		if next.Kind == lexer.Punctuator && next.Punct == lexer.PunctColon {
			return p.parseLabeledStatement()
		}
	}

	return p.parseExpressionStatement()
}

func (p *Parser) parseBlockStatement() (*ast.BlockStatement, error) {
	start, err := p.expectPunct(lexer.PunctLBrace)
	if err != nil {
		return nil, err
	}

	body, _, err := p.parseStatementList(func() (bool, error) {
		return p.atPunct(lexer.PunctRBrace), nil
	})
	if err != nil {
		return nil, err
	}

	end, err := p.expectPunct(lexer.PunctRBrace)
	if err != nil {
		return nil, err
	}

	return &ast.BlockStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.Span.End())},
		Body:     body,
	}, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}

	return &ast.ExpressionStatement{NodeBase: ast.NodeBase{Loc: expr.Span()}, Expression: expr}, nil
}

func (p *Parser) parseVariableStatement(kind ast.VariableKind) (*ast.VariableDeclaration, error) {
	decl, err := p.parseVariableDeclarationList(kind, true)
	if err != nil {
		return nil, err
	}

	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}

	return decl, nil
}

// parseVariableDeclarationList parses `kind decl, decl, ...`, without the
// trailing semicolon; allowIn controls whether `in` may appear bare in an
// initializer (false inside a for-head, to disambiguate `for (x in y)`).
func (p *Parser) parseVariableDeclarationList(kind ast.VariableKind, allowIn bool) (*ast.VariableDeclaration, error) {
	start, err := p.nextTok()
	if err != nil {
		return nil, err
	}

	var decls []*ast.VariableDeclarator

	for {
		target, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}

		var init ast.Expression

		end := target.Span()

		if p.atPunct(lexer.PunctEq) {
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			savedAllowIn := p.allowIn
			p.allowIn = allowIn

			init, err = p.parseAssignmentExpression()

			p.allowIn = savedAllowIn

			if err != nil {
				return nil, err
			}

			end = init.Span()
		}

		decls = append(decls, &ast.VariableDeclarator{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(target.Span().Start(), end.End())},
			Target:   target, Init: init,
		})

		if !p.atPunct(lexer.PunctComma) {
			break
		}

		if _, err := p.nextTok(); err != nil {
			return nil, err
		}
	}

	return &ast.VariableDeclaration{
		NodeBase:     ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), decls[len(decls)-1].Span().End())},
		Kind:         kind,
		Declarations: decls,
	}, nil
}

func (p *Parser) parseIfStatement() (*ast.IfStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordIf)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, err
	}

	test, err := p.parseExpressionAllowIn()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
		return nil, err
	}

	consequent, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	var alternate ast.Statement

	end := consequent.Span()

	if p.atKeyword(lexer.KeywordElse) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		alternate, err = p.parseStatement()
		if err != nil {
			return nil, err
		}

		end = alternate.Span()
	}

	return &ast.IfStatement{
		NodeBase:   ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.End())},
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}, nil
}

func (p *Parser) parseWhileStatement() (*ast.WhileStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordWhile)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, err
	}

	test, err := p.parseExpressionAllowIn()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
		return nil, err
	}

	p.inLoop++
	body, err := p.parseStatement()
	p.inLoop--

	if err != nil {
		return nil, err
	}

	return &ast.WhileStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), body.Span().End())},
		Test:     test, Body: body,
	}, nil
}

func (p *Parser) parseDoWhileStatement() (*ast.DoWhileStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordDo)
	if err != nil {
		return nil, err
	}

	p.inLoop++
	body, err := p.parseStatement()
	p.inLoop--

	if err != nil {
		return nil, err
	}

	if _, err := p.expectKeyword(lexer.KeywordWhile); err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, err
	}

	test, err := p.parseExpressionAllowIn()
	if err != nil {
		return nil, err
	}

	end, err := p.expectPunct(lexer.PunctRParen)
	if err != nil {
		return nil, err
	}

	// A `;` after `do...while(test)` is consumed if present but never
	// required to satisfy ASI (§4.3's special-case for `do-while`).
	if p.atPunct(lexer.PunctSemicolon) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}
	}

	return &ast.DoWhileStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.Span.End())},
		Body:     body, Test: test,
	}, nil
}

// parseForStatement parses all three for-head forms (C-style, for-in,
// for-of), sharing a cover-grammar binding-or-expression head parse.
func (p *Parser) parseForStatement() (ast.Statement, error) {
	start, err := p.expectKeyword(lexer.KeywordFor)
	if err != nil {
		return nil, err
	}

	await := false

	if p.atKeyword(lexer.KeywordAwait) {
		await = true

		if _, err := p.nextTok(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, err
	}

	var init ast.Node

	var initTarget ast.Node // *VariableDeclaration or Expression, reused for in/of Left

	if p.atPunct(lexer.PunctSemicolon) {
		// Empty init.
	} else if p.atKeyword(lexer.KeywordVar) {
		decl, err := p.parseVariableDeclarationList(ast.VariableVar, false)
		if err != nil {
			return nil, err
		}

		initTarget = decl
	} else if p.atKeyword(lexer.KeywordConst) {
		decl, err := p.parseVariableDeclarationList(ast.VariableConst, false)
		if err != nil {
			return nil, err
		}

		initTarget = decl
	} else if p.atContextualKeyword("let") && p.startsBindingTarget(1) {
		decl, err := p.parseVariableDeclarationList(ast.VariableLet, false)
		if err != nil {
			return nil, err
		}

		initTarget = decl
	} else {
		p.allowIn = false
		expr, err := p.parseExpression()
		p.allowIn = true

		if err != nil {
			return nil, err
		}

		initTarget = expr
	}

	if p.atKeyword(lexer.KeywordIn) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		left, err := p.forHeadLeft(initTarget)
		if err != nil {
			return nil, err
		}

		right, err := p.parseExpressionAllowIn()
		if err != nil {
			return nil, err
		}

		if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
			return nil, err
		}

		p.inLoop++
		body, err := p.parseStatement()
		p.inLoop--

		if err != nil {
			return nil, err
		}

		return &ast.ForInStatement{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), body.Span().End())},
			Left:     left, Right: right, Body: body,
		}, nil
	}

	if p.atContextualKeyword("of") {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		left, err := p.forHeadLeft(initTarget)
		if err != nil {
			return nil, err
		}

		right, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
			return nil, err
		}

		p.inLoop++
		body, err := p.parseStatement()
		p.inLoop--

		if err != nil {
			return nil, err
		}

		return &ast.ForOfStatement{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), body.Span().End())},
			Left:     left, Right: right, Body: body, Await: await,
		}, nil
	}

	init = initTarget

	if _, err := p.expectPunct(lexer.PunctSemicolon); err != nil {
		return nil, err
	}

	var test ast.Expression

	if !p.atPunct(lexer.PunctSemicolon) {
		test, err = p.parseExpressionAllowIn()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunct(lexer.PunctSemicolon); err != nil {
		return nil, err
	}

	var update ast.Expression

	if !p.atPunct(lexer.PunctRParen) {
		update, err = p.parseExpressionAllowIn()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
		return nil, err
	}

	p.inLoop++
	body, err := p.parseStatement()
	p.inLoop--

	if err != nil {
		return nil, err
	}

	return &ast.ForStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), body.Span().End())},
		Init:     init, Test: test, Update: update, Body: body,
	}, nil
}

// forHeadLeft converts a C-style-for head already parsed as a declaration or
// plain expression into the Left operand of a ForInStatement/ForOfStatement:
// a *ast.VariableDeclaration passes through, an Expression resolves through
// the assignment-target cover grammar exactly like an assignment LHS.
func (p *Parser) forHeadLeft(head ast.Node) (ast.Node, error) {
	if decl, ok := head.(*ast.VariableDeclaration); ok {
		return decl, nil
	}

	expr, ok := head.(ast.Expression)
	if !ok {
		return nil, p.errorf(head.Span(), "invalid for-in/for-of left-hand side")
	}

	if _, isIdent := expr.(*ast.Identifier); isIdent {
		return expr, nil
	}

	if _, isMember := expr.(*ast.MemberExpression); isMember {
		return expr, nil
	}

	pat, err := exprToPattern(expr)
	if err != nil {
		return nil, p.errorf(expr.Span(), "invalid for-in/for-of left-hand side")
	}

	return pat, nil
}

func (p *Parser) parseSwitchStatement() (*ast.SwitchStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordSwitch)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, err
	}

	disc, err := p.parseExpressionAllowIn()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctLBrace); err != nil {
		return nil, err
	}

	var cases []*ast.SwitchCase

	seenDefault := false

	p.inSwitch++

	for !p.atPunct(lexer.PunctRBrace) {
		caseStart, err := p.peekTok(0)
		if err != nil {
			p.inSwitch--
			return nil, err
		}

		var test ast.Expression

		if p.atKeyword(lexer.KeywordDefault) {
			if seenDefault {
				p.inSwitch--
				return nil, p.errorAt(caseStart, "multiple default clauses in switch")
			}

			seenDefault = true

			if _, err := p.nextTok(); err != nil {
				p.inSwitch--
				return nil, err
			}
		} else if _, err := p.expectKeyword(lexer.KeywordCase); err == nil {
			test, err = p.parseExpressionAllowIn()
			if err != nil {
				p.inSwitch--
				return nil, err
			}
		} else {
			p.inSwitch--
			return nil, err
		}

		if _, err := p.expectPunct(lexer.PunctColon); err != nil {
			p.inSwitch--
			return nil, err
		}

		body, _, err := p.parseStatementList(func() (bool, error) {
			tok, err := p.peekTok(0)
			if err != nil {
				return false, err
			}

			if tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctRBrace {
				return true, nil
			}

			return tok.Kind == lexer.Keyword && (tok.Keyword == lexer.KeywordCase || tok.Keyword == lexer.KeywordDefault), nil
		})
		if err != nil {
			p.inSwitch--
			return nil, err
		}

		cases = append(cases, &ast.SwitchCase{
			NodeBase:   ast.NodeBase{Loc: caseStart.Span},
			Test:       test,
			Consequent: body,
		})
	}

	p.inSwitch--

	end, err := p.expectPunct(lexer.PunctRBrace)
	if err != nil {
		return nil, err
	}

	return &ast.SwitchStatement{
		NodeBase:     ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.Span.End())},
		Discriminant: disc,
		Cases:        cases,
	}, nil
}

func (p *Parser) parseTryStatement() (*ast.TryStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordTry)
	if err != nil {
		return nil, err
	}

	block, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}

	var handler *ast.CatchClause

	var finalizer *ast.BlockStatement

	end := block.Span()

	if p.atKeyword(lexer.KeywordCatch) {
		catchStart, _ := p.nextTok()

		var param ast.Pattern

		if p.atPunct(lexer.PunctLParen) {
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			param, err = p.parseBindingTarget()
			if err != nil {
				return nil, err
			}

			if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
				return nil, err
			}
		}

		catchBody, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}

		handler = &ast.CatchClause{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(catchStart.Span.Start(), catchBody.Span().End())},
			Param:    param, Body: catchBody,
		}
		end = handler.Span()
	}

	if p.atKeyword(lexer.KeywordFinally) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		finalizer, err = p.parseBlockStatement()
		if err != nil {
			return nil, err
		}

		end = finalizer.Span()
	}

	if handler == nil && finalizer == nil {
		return nil, p.errorf(start.Span, "missing catch or finally after try")
	}

	return &ast.TryStatement{
		NodeBase:  ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.End())},
		Block:     block,
		Handler:   handler,
		Finalizer: finalizer,
	}, nil
}

func (p *Parser) parseThrowStatement() (*ast.ThrowStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordThrow)
	if err != nil {
		return nil, err
	}

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if tok.PrecededByLineTerminator {
		return nil, p.errorAt(tok, "illegal newline after throw")
	}

	arg, err := p.parseExpressionAllowIn()
	if err != nil {
		return nil, err
	}

	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}

	return &ast.ThrowStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), arg.Span().End())},
		Argument: arg,
	}, nil
}

func (p *Parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordReturn)
	if err != nil {
		return nil, err
	}

	var arg ast.Expression

	end := start.Span

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if !tok.PrecededByLineTerminator && canStartExpression(tok) &&
		!(tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctSemicolon) {
		arg, err = p.parseExpressionAllowIn()
		if err != nil {
			return nil, err
		}

		end = arg.Span()
	}

	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}

	return &ast.ReturnStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.End())},
		Argument: arg,
	}, nil
}

func (p *Parser) parseBreakStatement() (*ast.BreakStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordBreak)
	if err != nil {
		return nil, err
	}

	var label *ast.Identifier

	end := start.Span

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if !tok.PrecededByLineTerminator && tok.Kind == lexer.Identifier {
		label, err = p.parseBindingIdentifier()
		if err != nil {
			return nil, err
		}

		end = label.Span()
	}

	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}

	return &ast.BreakStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.End())},
		Label:    label,
	}, nil
}

func (p *Parser) parseContinueStatement() (*ast.ContinueStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordContinue)
	if err != nil {
		return nil, err
	}

	var label *ast.Identifier

	end := start.Span

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if !tok.PrecededByLineTerminator && tok.Kind == lexer.Identifier {
		label, err = p.parseBindingIdentifier()
		if err != nil {
			return nil, err
		}

		end = label.Span()
	}

	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}

	return &ast.ContinueStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.End())},
		Label:    label,
	}, nil
}

func (p *Parser) parseDebuggerStatement() (*ast.DebuggerStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordDebugger)
	if err != nil {
		return nil, err
	}

	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}

	return &ast.DebuggerStatement{NodeBase: ast.NodeBase{Loc: start.Span}}, nil
}

// parseWithStatement parses `with (object) body`. Its legality in strict
// mode is an early error left to a later validation pass (§4.3); the parser
// accepts it unconditionally here so that pkg/scope can see it and mark the
// enclosing function non-optimizable.
func (p *Parser) parseWithStatement() (*ast.WithStatement, error) {
	start, err := p.expectKeyword(lexer.KeywordWith)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, err
	}

	object, err := p.parseExpressionAllowIn()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctRParen); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &ast.WithStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), body.Span().End())},
		Object:   object, Body: body,
	}, nil
}

func (p *Parser) parseLabeledStatement() (*ast.LabeledStatement, error) {
	label, err := p.parseBindingIdentifier()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctColon); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &ast.LabeledStatement{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(label.Span().Start(), body.Span().End())},
		Label:    label, Body: body,
	}, nil
}
