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

import "testing"

func collectSignificant(t *testing.T, src string) []Token {
	t.Helper()

	l := NewLexer(NewSource("test", []byte(src)))

	var toks []Token

	for {
		tok, err := l.Next(GoalDiv)
		if err != nil {
			t.Fatal(err)
		}

		if tok.Kind == EOF {
			break
		}

		if tok.Kind == Comment || tok.Kind == LineTerminator {
			continue
		}

		toks = append(toks, tok)
	}

	return toks
}

func Test_IdentifiersAndKeywords(t *testing.T) {
	t.Parallel()

	toks := collectSignificant(t, "let x = foo")

	if len(toks) != 4 {
		t.Fatalf("got %d tokens", len(toks))
	}

	if toks[0].Kind != Keyword || toks[0].Keyword != KeywordLet {
		t.Fatalf("expected let keyword, got %+v", toks[0])
	}

	if toks[1].Kind != Identifier || toks[1].String != "x" {
		t.Fatalf("expected identifier x, got %+v", toks[1])
	}
}

func Test_NumericLiterals(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"0":     0,
		"42":    42,
		"3.14":  3.14,
		"1e3":   1000,
		"0x1F":  31,
		"0o17":  15,
		"0b101": 5,
		"1_000": 1000,
	}

	for src, want := range cases {
		toks := collectSignificant(t, src)
		if len(toks) != 1 || toks[0].Kind != NumericLiteral {
			t.Fatalf("%q: expected one numeric literal, got %+v", src, toks)
		}

		if toks[0].Number != want {
			t.Fatalf("%q: got %v, want %v", src, toks[0].Number, want)
		}
	}
}

func Test_BigIntLiteral(t *testing.T) {
	t.Parallel()

	toks := collectSignificant(t, "123n")
	if len(toks) != 1 || toks[0].Kind != BigIntLiteral {
		t.Fatalf("got %+v", toks)
	}

	if toks[0].BigInt.String() != "123" {
		t.Fatalf("got %v", toks[0].BigInt)
	}
}

func Test_StringLiteralEscapes(t *testing.T) {
	t.Parallel()

	toks := collectSignificant(t, `"a\nbc"`)
	if len(toks) != 1 || toks[0].Kind != StringLiteral {
		t.Fatalf("got %+v", toks)
	}

	if toks[0].String != "a\nbc" {
		t.Fatalf("got %q", toks[0].String)
	}
}

func Test_TemplateLiteralNoSubstitution(t *testing.T) {
	t.Parallel()

	toks := collectSignificant(t, "`hello`")
	if len(toks) != 1 || toks[0].Kind != NoSubstitutionTemplate {
		t.Fatalf("got %+v", toks)
	}

	if toks[0].String != "hello" {
		t.Fatalf("got %q", toks[0].String)
	}
}

func Test_TemplateLiteralHeadAndTail(t *testing.T) {
	t.Parallel()

	l := NewLexer(NewSource("test", []byte("`a${")))

	head, err := l.Next(GoalDiv)
	if err != nil {
		t.Fatal(err)
	}

	if head.Kind != TemplateHead || head.String != "a" {
		t.Fatalf("got %+v", head)
	}

	rest := NewLexer(NewSource("test", []byte("}b`")))

	tail, err := rest.Next(GoalTemplateTail)
	if err != nil {
		t.Fatal(err)
	}

	if tail.Kind != TemplateTail || tail.String != "b" {
		t.Fatalf("got %+v", tail)
	}
}

func Test_RegExpLiteral(t *testing.T) {
	t.Parallel()

	l := NewLexer(NewSource("test", []byte("/a[/]b/gi")))

	tok, err := l.Next(GoalRegExp)
	if err != nil {
		t.Fatal(err)
	}

	if tok.Kind != RegularExpressionLiteral || tok.String != "a[/]b" || tok.Flags != "gi" {
		t.Fatalf("got %+v", tok)
	}
}

func Test_RegExpDuplicateFlagIsError(t *testing.T) {
	t.Parallel()

	l := NewLexer(NewSource("test", []byte("/a/gg")))

	if _, err := l.Next(GoalRegExp); err == nil {
		t.Fatal("expected duplicate flag error")
	}
}

func Test_Punctuators(t *testing.T) {
	t.Parallel()

	toks := collectSignificant(t, "=> === >>>= ?.")

	want := []Punctuator{PunctArrow, PunctEqEqEq, PunctUShrEq, PunctQuestionDot}

	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}

	for i, p := range want {
		if toks[i].Punct != p {
			t.Fatalf("token %d: got %v, want %v", i, toks[i].Punct, p)
		}
	}
}

func Test_DivVsRegExpGoal(t *testing.T) {
	t.Parallel()

	l := NewLexer(NewSource("test", []byte("/x/")))

	divTok, err := l.Next(GoalDiv)
	if err != nil {
		t.Fatal(err)
	}

	if divTok.Kind != Punctuator || divTok.Punct != PunctSlash {
		t.Fatalf("expected '/' punctuator under GoalDiv, got %+v", divTok)
	}
}

func Test_SourcePositionAt(t *testing.T) {
	t.Parallel()

	src := NewSource("test", []byte("ab\ncd"))
	pos := src.PositionAt(4)

	if pos.Line != 2 || pos.Column != 2 {
		t.Fatalf("got %+v", pos)
	}
}
