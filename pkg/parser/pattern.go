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

// parseBindingTarget parses a binding pattern directly: an identifier, or an
// array/object destructuring pattern. Used for parameters, catch clauses,
// and the left side of a VariableDeclarator.
func (p *Parser) parseBindingTarget() (ast.Pattern, error) {
	p.buf.SetGoal(lexer.GoalRegExp)

	if p.atPunct(lexer.PunctLBracket) {
		return p.parseArrayPattern()
	}

	if p.atPunct(lexer.PunctLBrace) {
		return p.parseObjectPattern()
	}

	return p.parseBindingIdentifier()
}

func (p *Parser) parseBindingIdentifier() (*ast.Identifier, error) {
	tok, err := p.nextTok()
	if err != nil {
		return nil, err
	}

	name, err := p.identifierName(tok)
	if err != nil {
		return nil, err
	}

	return p.internIdent(tok.Span, name), nil
}

// identifierName accepts an Identifier token, or a Keyword token that is only
// contextually reserved (per §4.1, these lex as Keyword so the parser can
// still special-case their spelling, but they remain legal binding names
// outside strict mode / their special productions).
func (p *Parser) identifierName(tok lexer.Token) (string, error) {
	if tok.Kind == lexer.Identifier {
		if p.strict && isStrictReservedWord(tok.String) {
			return "", p.errorAt(tok, "%q is a reserved word in strict mode", tok.String)
		}

		return tok.String, nil
	}

	return "", p.errorAt(tok, "expected identifier")
}

func isStrictReservedWord(name string) bool {
	switch name {
	case "implements", "interface", "package", "private", "protected", "public", "yield", "let", "static", "eval", "arguments":
		return true
	default:
		return false
	}
}

func (p *Parser) parseArrayPattern() (*ast.ArrayPattern, error) {
	start, err := p.expectPunct(lexer.PunctLBracket)
	if err != nil {
		return nil, err
	}

	var elements []ast.Pattern

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
			restStart, _ := p.nextTok()
			target, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}

			elements = append(elements, &ast.RestElement{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(restStart.Span.Start(), target.Span().End())},
				Target:   target,
			})

			break
		}

		elem, err := p.parseBindingTargetWithDefault()
		if err != nil {
			return nil, err
		}

		elements = append(elements, elem)

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

	return &ast.ArrayPattern{NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.Span.End())}, Elements: elements}, nil
}

func (p *Parser) parseBindingTargetWithDefault() (ast.Pattern, error) {
	target, err := p.parseBindingTarget()
	if err != nil {
		return nil, err
	}

	if p.atPunct(lexer.PunctEq) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		def, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		return &ast.AssignmentPattern{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(target.Span().Start(), def.Span().End())},
			Target:   target, Default: def,
		}, nil
	}

	return target, nil
}

func (p *Parser) parseObjectPattern() (*ast.ObjectPattern, error) {
	start, err := p.expectPunct(lexer.PunctLBrace)
	if err != nil {
		return nil, err
	}

	var props []*ast.ObjectPatternProperty

	var rest *ast.RestElement

	for !p.atPunct(lexer.PunctRBrace) {
		if p.atPunct(lexer.PunctEllipsis) {
			restStart, _ := p.nextTok()

			target, err := p.parseBindingIdentifier()
			if err != nil {
				return nil, err
			}

			rest = &ast.RestElement{
				NodeBase: ast.NodeBase{Loc: ast.NewSpan(restStart.Span.Start(), target.Span().End())},
				Target:   target,
			}

			break
		}

		prop, err := p.parseObjectPatternProperty()
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

	return &ast.ObjectPattern{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.Span.End())},
		Properties: props, Rest: rest,
	}, nil
}

func (p *Parser) parseObjectPatternProperty() (*ast.ObjectPatternProperty, error) {
	start, err := p.peekTok(0)
	if err != nil {
		return nil, err
	}

	key, computed, err := p.parsePropertyKey()
	if err != nil {
		return nil, err
	}

	if p.atPunct(lexer.PunctColon) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		value, err := p.parseBindingTargetWithDefault()
		if err != nil {
			return nil, err
		}

		return &ast.ObjectPatternProperty{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), value.Span().End())},
			Key:      key, Computed: computed, Value: value,
		}, nil
	}

	// Shorthand `{ a }` or `{ a = default }`: key must be an Identifier.
	ident, ok := key.(*ast.Identifier)
	if !ok {
		return nil, p.errorAt(start, "invalid shorthand property")
	}

	var value ast.Pattern = ident

	end := ident.Span()

	if p.atPunct(lexer.PunctEq) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		def, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}

		value = &ast.AssignmentPattern{NodeBase: ast.NodeBase{Loc: ast.NewSpan(ident.Span().Start(), def.Span().End())}, Target: ident, Default: def}
		end = value.Span()
	}

	return &ast.ObjectPatternProperty{
		NodeBase:  ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), end.End())},
		Key:       ident, Shorthand: true, Value: value,
	}, nil
}

// exprToPattern converts an already-parsed Expression into a Pattern,
// resolving the ArrayExpression/ObjectExpression-vs-pattern cover grammar
// (§4.3) once the parser learns (from context: an arrow parameter list, or
// the left side of `=`) that a destructuring target was intended.
func exprToPattern(e ast.Expression) (ast.Pattern, error) {
	switch n := e.(type) {
	case *ast.Identifier:
		return n, nil
	case *ast.SpreadElement:
		target, err := exprToPattern(n.Argument)
		if err != nil {
			return nil, err
		}

		return &ast.RestElement{NodeBase: n.NodeBase, Target: target}, nil
	case ast.Pattern:
		return n, nil
	case *ast.ArrayExpression:
		elements := make([]ast.Pattern, len(n.Elements))

		for i, el := range n.Elements {
			if el == nil {
				continue
			}

			pat, err := exprToPattern(el)
			if err != nil {
				return nil, err
			}

			elements[i] = pat
		}

		return &ast.ArrayPattern{NodeBase: n.NodeBase, Elements: elements}, nil
	case *ast.ObjectExpression:
		var props []*ast.ObjectPatternProperty

		var rest *ast.RestElement

		for _, prop := range n.Properties {
			if prop.Kind == ast.PropertySpread {
				target, err := exprToPattern(prop.Value)
				if err != nil {
					return nil, err
				}

				rest = &ast.RestElement{NodeBase: prop.NodeBase, Target: target}

				continue
			}

			val, err := exprToPattern(prop.Value)
			if err != nil {
				return nil, err
			}

			props = append(props, &ast.ObjectPatternProperty{
				NodeBase: prop.NodeBase, Key: prop.Key, Computed: prop.Computed, Shorthand: prop.Shorthand, Value: val,
			})
		}

		return &ast.ObjectPattern{NodeBase: n.NodeBase, Properties: props, Rest: rest}, nil
	case *ast.AssignmentExpression:
		if n.Operator != ast.AssignPlain {
			return nil, &patternError{n}
		}

		targetExpr, ok := n.Target.(ast.Expression)
		if !ok {
			return nil, &patternError{n}
		}

		targetPat, err := exprToPattern(targetExpr)
		if err != nil {
			return nil, err
		}

		return &ast.AssignmentPattern{NodeBase: n.NodeBase, Target: targetPat, Default: n.Value}, nil
	case *ast.MemberExpression:
		// A member expression is a valid assignment target but not a
		// binding pattern; pkg/scope treats it as an Expression target
		// rather than a Pattern, so AssignmentExpression.Target carries it
		// directly as a Node without conversion.
		return nil, &patternError{n}
	default:
		return nil, &patternError{n}
	}
}

type patternError struct{ node ast.Node }

func (e *patternError) Error() string { return "invalid destructuring target" }
