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

// parseModuleItem extends parseStatementListItem with import/export
// declarations, legal only at the top level of a Module (§4.10).
func (p *Parser) parseModuleItem() (ast.Statement, error) {
	if p.atKeyword(lexer.KeywordImport) {
		next, err := p.peekTok(1)
		if err != nil {
			return nil, err
		}

		// `import(...)` and `import.meta` are expressions, not declarations.
		if !(next.Kind == lexer.Punctuator && (next.Punct == lexer.PunctLParen || next.Punct == lexer.PunctDot)) {
			return p.parseImportDeclaration()
		}
	}

	if p.atKeyword(lexer.KeywordExport) {
		return p.parseExportDeclaration()
	}

	return p.parseStatementListItem()
}

func (p *Parser) parseStringLiteral() (*ast.StringLiteral, error) {
	tok, err := p.nextTok()
	if err != nil {
		return nil, err
	}

	if tok.Kind != lexer.StringLiteral {
		return nil, p.errorAt(tok, "expected a string literal")
	}

	return &ast.StringLiteral{NodeBase: ast.NodeBase{Loc: tok.Span}, Value: tok.String, Raw: tok.Raw}, nil
}

func (p *Parser) parseImportDeclaration() (*ast.ImportDeclaration, error) {
	start, err := p.expectKeyword(lexer.KeywordImport)
	if err != nil {
		return nil, err
	}

	// Bare `import "module";`.
	if tok, _ := p.peekTok(0); tok.Kind == lexer.StringLiteral {
		src, err := p.parseStringLiteral()
		if err != nil {
			return nil, err
		}

		if err := p.consumeSemicolon(); err != nil {
			return nil, err
		}

		return &ast.ImportDeclaration{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), src.Span().End())},
			Source:   src,
		}, nil
	}

	var specs []*ast.ImportSpecifier

	if !p.atPunct(lexer.PunctLBrace) && !p.atPunct(lexer.PunctStar) {
		def, err := p.parseBindingIdentifier()
		if err != nil {
			return nil, err
		}

		specs = append(specs, &ast.ImportSpecifier{
			NodeBase: ast.NodeBase{Loc: def.Span()}, Kind: ast.ImportSpecifierDefault, Local: def,
		})

		if p.atPunct(lexer.PunctComma) {
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}
		}
	}

	if p.atPunct(lexer.PunctStar) {
		starStart, _ := p.nextTok()

		if _, err := p.expectKeyword(lexer.KeywordAs); err != nil {
			return nil, err
		}

		local, err := p.parseBindingIdentifier()
		if err != nil {
			return nil, err
		}

		specs = append(specs, &ast.ImportSpecifier{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(starStart.Span.Start(), local.Span().End())},
			Kind:     ast.ImportSpecifierNamespace, Local: local,
		})
	} else if p.atPunct(lexer.PunctLBrace) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		for !p.atPunct(lexer.PunctRBrace) {
			spec, err := p.parseImportSpecifier()
			if err != nil {
				return nil, err
			}

			specs = append(specs, spec)

			if !p.atPunct(lexer.PunctRBrace) {
				if _, err := p.expectPunct(lexer.PunctComma); err != nil {
					return nil, err
				}
			}
		}

		if _, err := p.expectPunct(lexer.PunctRBrace); err != nil {
			return nil, err
		}
	}

	if _, err := p.expectKeyword(lexer.KeywordFrom); err != nil {
		return nil, err
	}

	src, err := p.parseStringLiteral()
	if err != nil {
		return nil, err
	}

	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}

	return &ast.ImportDeclaration{
		NodeBase:   ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), src.Span().End())},
		Specifiers: specs,
		Source:     src,
	}, nil
}

func (p *Parser) parseImportSpecifier() (*ast.ImportSpecifier, error) {
	importedTok, err := p.nextTok()
	if err != nil {
		return nil, err
	}

	importedName, err := propertyNameText(importedTok)
	if err != nil {
		return nil, p.errorAt(importedTok, "expected binding name")
	}

	imported := p.internIdent(importedTok.Span, importedName)

	local := imported

	end := imported.Span()

	if p.atKeyword(lexer.KeywordAs) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		local, err = p.parseBindingIdentifier()
		if err != nil {
			return nil, err
		}

		end = local.Span()
	}

	return &ast.ImportSpecifier{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(imported.Span().Start(), end.End())},
		Kind:     ast.ImportSpecifierNamed, Local: local, Imported: imported,
	}, nil
}

func (p *Parser) parseExportDeclaration() (ast.Statement, error) {
	start, err := p.expectKeyword(lexer.KeywordExport)
	if err != nil {
		return nil, err
	}

	if p.atKeyword(lexer.KeywordDefault) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		return p.parseExportDefaultDeclaration(start.Span.Start())
	}

	if p.atPunct(lexer.PunctStar) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		var exported *ast.Identifier

		if p.atKeyword(lexer.KeywordAs) {
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			exported, err = p.parseBindingIdentifier()
			if err != nil {
				return nil, err
			}
		}

		if _, err := p.expectKeyword(lexer.KeywordFrom); err != nil {
			return nil, err
		}

		src, err := p.parseStringLiteral()
		if err != nil {
			return nil, err
		}

		if err := p.consumeSemicolon(); err != nil {
			return nil, err
		}

		return &ast.ExportAllDeclaration{
			NodeBase: ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), src.Span().End())},
			Exported: exported, Source: src,
		}, nil
	}

	if p.atPunct(lexer.PunctLBrace) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		var specs []*ast.ExportSpecifier

		for !p.atPunct(lexer.PunctRBrace) {
			spec, err := p.parseExportSpecifier()
			if err != nil {
				return nil, err
			}

			specs = append(specs, spec)

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

		var src *ast.StringLiteral

		endSpan := end.Span

		if p.atKeyword(lexer.KeywordFrom) {
			if _, err := p.nextTok(); err != nil {
				return nil, err
			}

			src, err = p.parseStringLiteral()
			if err != nil {
				return nil, err
			}

			endSpan = src.Span()
		}

		if err := p.consumeSemicolon(); err != nil {
			return nil, err
		}

		return &ast.ExportNamedDeclaration{
			NodeBase:   ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), endSpan.End())},
			Specifiers: specs,
			Source:     src,
		}, nil
	}

	decl, err := p.parseStatementListItem()
	if err != nil {
		return nil, err
	}

	asDecl, ok := decl.(ast.Declaration)
	if !ok {
		return nil, p.errorf(decl.Span(), "invalid export declaration")
	}

	return &ast.ExportNamedDeclaration{
		NodeBase:    ast.NodeBase{Loc: ast.NewSpan(start.Span.Start(), decl.Span().End())},
		Declaration: asDecl,
	}, nil
}

func (p *Parser) parseExportSpecifier() (*ast.ExportSpecifier, error) {
	localTok, err := p.nextTok()
	if err != nil {
		return nil, err
	}

	localName, err := propertyNameText(localTok)
	if err != nil {
		return nil, p.errorAt(localTok, "expected binding name")
	}

	local := p.internIdent(localTok.Span, localName)

	exported := local

	end := local.Span()

	if p.atKeyword(lexer.KeywordAs) {
		if _, err := p.nextTok(); err != nil {
			return nil, err
		}

		expTok, err := p.nextTok()
		if err != nil {
			return nil, err
		}

		expName, err := propertyNameText(expTok)
		if err != nil {
			return nil, p.errorAt(expTok, "expected binding name")
		}

		exported = p.internIdent(expTok.Span, expName)
		end = exported.Span()
	}

	return &ast.ExportSpecifier{
		NodeBase: ast.NodeBase{Loc: ast.NewSpan(local.Span().Start(), end.End())},
		Local:    local, Exported: exported,
	}, nil
}

func (p *Parser) parseExportDefaultDeclaration(start int) (*ast.ExportDefaultDeclaration, error) {
	var decl ast.Node

	var err error

	switch {
	case p.atKeyword(lexer.KeywordFunction):
		decl, err = p.parseFunctionDeclarationOptionalName(false)
	case p.atKeyword(lexer.KeywordClass):
		decl, err = p.parseClassDeclarationOptionalName()
	default:
		if p.atContextualKeyword("async") {
			if next, perr := p.peekTok(1); perr == nil && !next.PrecededByLineTerminator && next.Kind == lexer.Keyword && next.Keyword == lexer.KeywordFunction {
				if _, nerr := p.nextTok(); nerr != nil {
					return nil, nerr
				}

				decl, err = p.parseFunctionDeclarationOptionalName(true)

				break
			}
		}

		decl, err = p.parseAssignmentExpression()

		if err == nil {
			if err2 := p.consumeSemicolon(); err2 != nil {
				err = err2
			}
		}
	}

	if err != nil {
		return nil, err
	}

	return &ast.ExportDefaultDeclaration{
		NodeBase:    ast.NodeBase{Loc: ast.NewSpan(start, decl.Span().End())},
		Declaration: decl,
	}, nil
}
