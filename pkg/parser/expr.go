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

// parseExpression parses a full Expression, including the comma operator.
func (p *Parser) parseExpression() (ast.Expression, error) {
	first, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}

	if !p.atPunct(lexer.PunctComma) {
		return first, nil
	}

	exprs := []ast.Expression{first}

	for p.atPunct(lexer.PunctComma) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		next, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, next)
	}

	return &ast.SequenceExpression{
		NodeBase:    ast.NodeBase{Loc: ast.NewSpan(first.Span().Start(), exprs[len(exprs)-1].Span().End())},
		Expressions: exprs,
	}, nil
}

// parseAssignmentExpression handles arrow-function detection (by speculative
// parse), conditional expressions, and plain/compound/logical assignment,
// converting the left-hand side from an Expression to a Pattern when the
// operator is `=` and the parsed left side was an array/object literal
// (§4.3's assignment-target cover grammar).
func (p *Parser) parseAssignmentExpression() (ast.Expression, error) {
	if arrow, ok, err := p.tryParseArrowFunction(); err != nil {
		return nil, err
	} else if ok {
		return arrow, nil
	}

	p.buf.SetGoal(lexer.GoalRegExp)

	if p.atKeyword(lexer.KeywordYield) && p.inGenerator {
		return p.parseYieldExpression()
	}

	left, err := p.parseConditionalExpression()
	if err != nil {
		return nil, err
	}

	op, isAssign := assignmentOperatorOf(p)
	if !isAssign {
		return left, nil
	}

	if _, err := p.nextTok(); err != nil {
		return nil, err
	}

	value, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}

	var target ast.Node = left

	if op == ast.AssignPlain {
		if _, isIdent := left.(*ast.Identifier); !isIdent {
			if _, isMember := left.(*ast.MemberExpression); !isMember {
				pat, err := exprToPattern(left)
				if err != nil {
					return nil, p.errorf(left.Span(), "invalid assignment target")
				}

				target = pat
			}
		}
	}

	return &ast.AssignmentExpression{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(left.Span().Start(), value.Span().End())},
		Operator: op, Target: target, Value: value,
	}, nil
}

func assignmentOperatorOf(p *Parser) (ast.AssignmentOperator, bool) {
	tok, err := p.peekTok(0)
	if err != nil || tok.Kind != lexer.Punctuator {
		return 0, false
	}

	switch tok.Punct {
	case lexer.PunctEq:
		return ast.AssignPlain, true
	case lexer.PunctPlusEq:
		return ast.AssignAdd, true
	case lexer.PunctMinusEq:
		return ast.AssignSub, true
	case lexer.PunctStarEq:
		return ast.AssignMul, true
	case lexer.PunctSlashEq:
		return ast.AssignDiv, true
	case lexer.PunctPercentEq:
		return ast.AssignMod, true
	case lexer.PunctStarStarEq:
		return ast.AssignExp, true
	case lexer.PunctShlEq:
		return ast.AssignShl, true
	case lexer.PunctShrEq:
		return ast.AssignShr, true
	case lexer.PunctUShrEq:
		return ast.AssignUShr, true
	case lexer.PunctAmpEq:
		return ast.AssignBitAnd, true
	case lexer.PunctPipeEq:
		return ast.AssignBitOr, true
	case lexer.PunctCaretEq:
		return ast.AssignBitXor, true
	case lexer.PunctAmpAmpEq:
		return ast.AssignAnd, true
	case lexer.PunctPipePipeEq:
		return ast.AssignOr, true
	case lexer.PunctQuestionQuestionEq:
		return ast.AssignNullish, true
	default:
		return 0, false
	}
}

func (p *Parser) parseYieldExpression() (ast.Expression, error) {
	start, err := p.expectKeyword(lexer.KeywordYield)
	if err != nil {
		return nil, err
	}

	delegate := false

	if p.atPunct(lexer.PunctStar) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		delegate = true
	}

	var arg ast.Expression

	end := start.Span

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if !tok.PrecededByLineTerminator && canStartExpression(tok) {
		arg, err = p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		end = arg.Span()
	}

	return &ast.YieldExpression{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.End())},
		Argument: arg, Delegate: delegate,
	}, nil
}

func canStartExpression(tok lexer.Token) bool {
	switch tok.Kind {
	case lexer.EOF:
		return false
	case lexer.Punctuator:
		switch tok.Punct {
		case lexer.PunctRParen, lexer.PunctRBrace, lexer.PunctRBracket, lexer.PunctSemicolon, lexer.PunctComma, lexer.PunctColon:
			return false
		}
	case lexer.Keyword:
		switch tok.Keyword {
		case lexer.KeywordElse, lexer.KeywordCatch, lexer.KeywordFinally, lexer.KeywordWhile:
			return false
		}
	}

	return true
}

func (p *Parser) parseConditionalExpression() (ast.Expression, error) {
	test, err := p.parseNullishExpression()
	if err != nil {
		return nil, err
	}

	if !p.atPunct(lexer.PunctQuestion) {
		return test, nil
	}

	if _, err := p.nextTok(); err != nil {
		return nil, err
	}

	allowIn := p.allowIn
	p.allowIn = true

	consequent, err := p.parseAssignmentExpression()

	p.allowIn = allowIn

	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunct(lexer.PunctColon); err != nil {
		return nil, err
	}

	alternate, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}

	return &ast.ConditionalExpression{
		NodeBase:   ast.NodeBase{Loc: ast.NewSpan(test.Span().Start(), alternate.Span().End())},
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}, nil
}

// parseNullishExpression parses `??`-chained expressions. Per §4.3, `??`
// cannot be mixed directly with `&&`/`||` without parentheses; this parser
// does not retain grouping information from parenthesized sub-expressions
// and so does not enforce that early error (documented simplification).
func (p *Parser) parseNullishExpression() (ast.Expression, error) {
	left, err := p.parseBinaryExpression(precLogicalOr)
	if err != nil {
		return nil, err
	}

	for p.atPunct(lexer.PunctQuestionQuestion) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		right, err := p.parseBinaryExpression(precLogicalOr)
		if err != nil {
			return nil, err
		}

		left = &ast.LogicalExpression{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(left.Span().Start(), right.Span().End())},
			Operator: ast.LogicalNullish, Left: left, Right: right,
		}
	}

	return left, nil
}

// Binary/logical operator precedence levels, loosest to tightest. `??` is
// handled separately in parseNullishExpression above.
const (
	precLogicalOr = iota + 1
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

type binOpInfo struct {
	prec     int
	logical  bool
	logOp    ast.LogicalOperator
	binOp    ast.BinaryOperator
}

func (p *Parser) binaryOpAt() (binOpInfo, bool) {
	tok, err := p.peekTok(0)
	if err != nil {
		return binOpInfo{}, false
	}

	if tok.Kind == lexer.Keyword {
		switch tok.Keyword {
		case lexer.KeywordInstanceof:
			return binOpInfo{prec: precRelational, binOp: ast.BinaryInstanceof}, true
		case lexer.KeywordIn:
			if !p.allowIn {
				return binOpInfo{}, false
			}

			return binOpInfo{prec: precRelational, binOp: ast.BinaryIn}, true
		}

		return binOpInfo{}, false
	}

	if tok.Kind != lexer.Punctuator {
		return binOpInfo{}, false
	}

	switch tok.Punct {
	case lexer.PunctPipePipe:
		return binOpInfo{prec: precLogicalOr, logical: true, logOp: ast.LogicalOr}, true
	case lexer.PunctAmpAmp:
		return binOpInfo{prec: precLogicalAnd, logical: true, logOp: ast.LogicalAnd}, true
	case lexer.PunctPipe:
		return binOpInfo{prec: precBitOr, binOp: ast.BinaryBitOr}, true
	case lexer.PunctCaret:
		return binOpInfo{prec: precBitXor, binOp: ast.BinaryBitXor}, true
	case lexer.PunctAmp:
		return binOpInfo{prec: precBitAnd, binOp: ast.BinaryBitAnd}, true
	case lexer.PunctEqEq:
		return binOpInfo{prec: precEquality, binOp: ast.BinaryEq}, true
	case lexer.PunctNotEq:
		return binOpInfo{prec: precEquality, binOp: ast.BinaryNotEq}, true
	case lexer.PunctEqEqEq:
		return binOpInfo{prec: precEquality, binOp: ast.BinaryStrictEq}, true
	case lexer.PunctNotEqEq:
		return binOpInfo{prec: precEquality, binOp: ast.BinaryStrictNotEq}, true
	case lexer.PunctLt:
		return binOpInfo{prec: precRelational, binOp: ast.BinaryLt}, true
	case lexer.PunctGt:
		return binOpInfo{prec: precRelational, binOp: ast.BinaryGt}, true
	case lexer.PunctLtEq:
		return binOpInfo{prec: precRelational, binOp: ast.BinaryLtEq}, true
	case lexer.PunctGtEq:
		return binOpInfo{prec: precRelational, binOp: ast.BinaryGtEq}, true
	case lexer.PunctShl:
		return binOpInfo{prec: precShift, binOp: ast.BinaryShl}, true
	case lexer.PunctShr:
		return binOpInfo{prec: precShift, binOp: ast.BinaryShr}, true
	case lexer.PunctUShr:
		return binOpInfo{prec: precShift, binOp: ast.BinaryUShr}, true
	case lexer.PunctPlus:
		return binOpInfo{prec: precAdditive, binOp: ast.BinaryAdd}, true
	case lexer.PunctMinus:
		return binOpInfo{prec: precAdditive, binOp: ast.BinarySub}, true
	case lexer.PunctStar:
		return binOpInfo{prec: precMultiplicative, binOp: ast.BinaryMul}, true
	case lexer.PunctSlash:
		return binOpInfo{prec: precMultiplicative, binOp: ast.BinaryDiv}, true
	case lexer.PunctPercent:
		return binOpInfo{prec: precMultiplicative, binOp: ast.BinaryMod}, true
	default:
		return binOpInfo{}, false
	}
}

func (p *Parser) parseBinaryExpression(minPrec int) (ast.Expression, error) {
	left, err := p.parseExponentiation()
	if err != nil {
		return nil, err
	}

	for {
		p.buf.SetGoal(lexer.GoalDiv)

		info, ok := p.binaryOpAt()
		if !ok || info.prec < minPrec {
			return left, nil
		}

		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		right, err := p.parseBinaryExpression(info.prec + 1)
		if err != nil {
			return nil, err
		}

		span := ast.NodeBase{Loc: ast.NewSpan(left.Span().Start(), right.Span().End())}

		if info.logical {
			left = &ast.LogicalExpression{NodeBase: span, Operator: info.logOp, Left: left, Right: right}
		} else {
			left = &ast.BinaryExpression{NodeBase: span, Operator: info.binOp, Left: left, Right: right}
		}
	}
}

// parseExponentiation handles `**` (right-associative) with unary/update
// expressions as its operands (§4.3's ExponentiationExpression production).
func (p *Parser) parseExponentiation() (ast.Expression, error) {
	left, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}

	p.buf.SetGoal(lexer.GoalDiv)

	if !p.atPunct(lexer.PunctStarStar) {
		return left, nil
	}

	if _, err := p.nextTok(); err != nil {
		return nil, err
	}

	right, err := p.parseExponentiation()
	if err != nil {
		return nil, err
	}

	return &ast.BinaryExpression{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(left.Span().Start(), right.Span().End())},
		Operator: ast.BinaryExp, Left: left, Right: right,
	}, nil
}

func (p *Parser) parseUnaryExpression() (ast.Expression, error) {
	p.buf.SetGoal(lexer.GoalRegExp)

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if tok.Kind == lexer.Keyword {
		var op ast.UnaryOperator

		switch tok.Keyword {
		case lexer.KeywordTypeof:
			op = ast.UnaryTypeof
		case lexer.KeywordVoid:
			op = ast.UnaryVoid
		case lexer.KeywordDelete:
			op = ast.UnaryDelete
		case lexer.KeywordAwait:
			if p.inAsync {
				return p.parseAwaitExpression()
			}

			return p.parseExponentiationTail()
		default:
			return p.parseExponentiationTail()
		}

		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		arg, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}

		return &ast.UnaryExpression{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(tok.Span.Start(), arg.Span().End())},
			Operator: op, Argument: arg,
		}, nil
	}

	if tok.Kind == lexer.Punctuator {
		switch tok.Punct {
		case lexer.PunctMinus, lexer.PunctPlus, lexer.PunctBang, lexer.PunctTilde:
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			arg, err := p.parseUnaryExpression()
			if err != nil {
				return nil, err
			}

			return &ast.UnaryExpression{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(tok.Span.Start(), arg.Span().End())},
				Operator: unaryOperatorOf(tok.Punct), Argument: arg,
			}, nil
		case lexer.PunctPlusPlus, lexer.PunctMinusMinus:
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			arg, err := p.parseUnaryExpression()
			if err != nil {
				return nil, err
			}

			return &ast.UpdateExpression{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(tok.Span.Start(), arg.Span().End())},
				Operator: updateOperatorText(tok.Punct), Argument: arg, Prefix: true,
			}, nil
		}
	}

	return p.parseExponentiationTail()
}

func unaryOperatorOf(punct lexer.Punctuator) ast.UnaryOperator {
	switch punct {
	case lexer.PunctMinus:
		return ast.UnaryMinus
	case lexer.PunctPlus:
		return ast.UnaryPlus
	case lexer.PunctBang:
		return ast.UnaryNot
	default:
		return ast.UnaryBitNot
	}
}

func updateOperatorText(punct lexer.Punctuator) string {
	if punct == lexer.PunctPlusPlus {
		return "++"
	}

	return "--"
}

func (p *Parser) parseAwaitExpression() (ast.Expression, error) {
	start, err := p.expectKeyword(lexer.KeywordAwait)
	if err != nil {
		return nil, err
	}

	arg, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}

	return &ast.AwaitExpression{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), arg.Span().End())},
		Argument: arg,
	}, nil
}

// parseExponentiationTail parses the LeftHandSideExpression-with-optional-
// postfix-update branch of UnaryExpression (no prefix operator applies).
func (p *Parser) parseExponentiationTail() (ast.Expression, error) {
	expr, err := p.parseLeftHandSideExpression()
	if err != nil {
		return nil, err
	}

	p.buf.SetGoal(lexer.GoalDiv)

	tok, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	if tok.Kind == lexer.Punctuator && (tok.Punct == lexer.PunctPlusPlus || tok.Punct == lexer.PunctMinusMinus) && !tok.PrecededByLineTerminator {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		return &ast.UpdateExpression{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(expr.Span().Start(), tok.Span.End())},
			Operator: updateOperatorText(tok.Punct), Argument: expr, Prefix: false,
		}, nil
	}

	return expr, nil
}

func (p *Parser) parseLeftHandSideExpression() (ast.Expression, error) {
	if p.atKeyword(lexer.KeywordNew) {
		expr, err := p.parseNewExpression()
		if err != nil {
			return nil, err
		}

		return p.parseCallOrMemberTail(expr, true)
	}

	expr, err := p.parsePrimaryExpression()
	if err != nil {
		return nil, err
	}

	return p.parseCallOrMemberTail(expr, true)
}

func (p *Parser) parseNewExpression() (ast.Expression, error) {
	start, err := p.expectKeyword(lexer.KeywordNew)
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

		if tok.Kind != lexer.Identifier || tok.String != "target" {
			return nil, p.errorAt(tok, "expected 'target' after 'new.'")
		}

		return &ast.MetaProperty{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), tok.Span.End())},
			Meta:     "new", Property: "target",
		}, nil
	}

	var callee ast.Expression

	if p.atKeyword(lexer.KeywordNew) {
		callee, err = p.parseNewExpression()
	} else {
		callee, err = p.parsePrimaryExpression()
	}

	if err != nil {
		return nil, err
	}

	callee, err = p.parseCallOrMemberTail(callee, false)
	if err != nil {
		return nil, err
	}

	var args []ast.Expression

	end := callee.Span()

	if p.atPunct(lexer.PunctLParen) {
		args, err = p.parseArguments()
		if err != nil {
			return nil, err
		}

		end = ast.NewSpan(end.Start(), p.lastConsumedEnd)
	}

	return &ast.NewExpression{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.End())},
		Callee:   callee, Arguments: args,
	}, nil
}

// parseCallOrMemberTail extends expr with member accesses, calls (if
// allowCall), optional-chain links, and tagged templates. A ChainExpression
// wraps the whole result if any `?.` link was seen (§4.3).
func (p *Parser) parseCallOrMemberTail(expr ast.Expression, allowCall bool) (ast.Expression, error) {
	optionalSeen := false

	for {
		p.buf.SetGoal(lexer.GoalDiv)

		tok, err := p.peekTok(0)
		if err != nil {
			return nil, err
		}

		switch {
		case tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctDot:
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			prop, err := p.parsePropertyNameNode()
			if err != nil {
				return nil, err
			}

			expr = &ast.MemberExpression{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(expr.Span().Start(), prop.Span().End())},
				Object:   expr, Property: prop,
			}
		case tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctLBracket:
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			p.buf.SetGoal(lexer.GoalRegExp)

			prop, err := p.parseExpressionAllowIn()
			if err != nil {
				return nil, err
			}

			end, err := p.expectPunct(lexer.PunctRBracket)
			if err != nil {
				return nil, err
			}

			expr = &ast.MemberExpression{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(expr.Span().Start(), end.Span.End())},
				Object:   expr, Property: prop, Computed: true,
			}
		case tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctQuestionDot:
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			optionalSeen = true

			if p.atPunct(lexer.PunctLParen) {
				args, err := p.parseArguments()
				if err != nil {
					return nil, err
				}

				expr = &ast.CallExpression{
					NodeBase: ast.NodeBase{Loc: ast.NewSpan(expr.Span().Start(), p.lastConsumedEnd)},
					Callee:   expr, Arguments: args, Optional: true,
				}
			} else if p.atPunct(lexer.PunctLBracket) {
				if _, err := p.nextTok(); err != nil {
					return nil, err
				}

				prop, err := p.parseExpressionAllowIn()
				if err != nil {
					return nil, err
				}

				end, err := p.expectPunct(lexer.PunctRBracket)
				if err != nil {
					return nil, err
				}

				expr = &ast.MemberExpression{
					NodeBase: ast.NodeBase{Loc: ast.NewSpan(expr.Span().Start(), end.Span.End())},
					Object:   expr, Property: prop, Computed: true, Optional: true,
				}
			} else {
				prop, err := p.parsePropertyNameNode()
				if err != nil {
					return nil, err
				}

				expr = &ast.MemberExpression{
					NodeBase: ast.NodeBase{Loc: ast.NewSpan(expr.Span().Start(), prop.Span().End())},
					Object:   expr, Property: prop, Optional: true,
				}
			}
		case allowCall && tok.Kind == lexer.Punctuator && tok.Punct == lexer.PunctLParen:
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}

			expr = &ast.CallExpression{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(expr.Span().Start(), p.lastConsumedEnd)},
				Callee:   expr, Arguments: args,
			}
		case tok.Kind == lexer.NoSubstitutionTemplate || tok.Kind == lexer.TemplateHead:
			quasi, err := p.parseTemplateLiteral()
			if err != nil {
				return nil, err
			}

			expr = &ast.TaggedTemplateExpression{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(expr.Span().Start(), quasi.Span().End())},
				Tag:      expr, Quasi: quasi,
			}
		default:
			if optionalSeen {
				expr = &ast.ChainExpression{NodeBase: ast.NodeBase{Loc: expr.Span()}, Expression: expr}
			}

			return expr, nil
		}
	}
}

func (p *Parser) parseExpressionAllowIn() (ast.Expression, error) {
	allowIn := p.allowIn
	p.allowIn = true

	e, err := p.parseExpression()

	p.allowIn = allowIn

	return e, err
}

// parsePropertyNameNode parses the `.name` or `?.name`/`.#name` identifier
// following a member-access dot.
func (p *Parser) parsePropertyNameNode() (ast.Expression, error) {
	tok, err := p.nextTok()
	if err != nil {
		return nil, err
	}

	if tok.Kind == lexer.PrivateIdentifier {
		return &ast.PrivateIdentifier{NodeBase: ast.NodeBase{Loc: tok.Span}, Sym: p.syms.Intern(tok.String), Name: tok.String}, nil
	}

	name, err := propertyNameText(tok)
	if err != nil {
		return nil, p.errorAt(tok, "expected property name")
	}

	return p.internIdent(tok.Span, name), nil
}

// propertyNameText accepts any IdentifierName spelling, including reserved
// words, which are always legal after `.` (§4.3).
func propertyNameText(tok lexer.Token) (string, error) {
	switch tok.Kind {
	case lexer.Identifier:
		return tok.String, nil
	case lexer.Keyword:
		return tok.String, nil
	default:
		return "", &patternError{}
	}
}

func (p *Parser) parseArguments() ([]ast.Expression, error) {
	if _, err := p.expectPunct(lexer.PunctLParen); err != nil {
		return nil, err
	}

	var args []ast.Expression

	for !p.atPunct(lexer.PunctRParen) {
		p.buf.SetGoal(lexer.GoalRegExp)

		if p.atPunct(lexer.PunctEllipsis) {
			start, _ := p.nextTok()

			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}

			args = append(args, &ast.SpreadElement{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), arg.Span().End())},
				Argument: arg,
			})
		} else {
			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)
		}

		if !p.atPunct(lexer.PunctRParen) {
			if _, err := p.expectPunct(lexer.PunctComma); err != nil {
				return nil, err
			}
		}
	}

	end, err := p.expectPunct(lexer.PunctRParen)
	if err != nil {
		return nil, err
	}

	p.lastConsumedEnd = end.Span.End()

	return args, nil
}
