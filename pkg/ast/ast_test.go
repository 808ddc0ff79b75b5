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
package ast

import "testing"

func Test_SpanMerge(t *testing.T) {
	a := NewSpan(4, 10)
	b := NewSpan(2, 6)

	m := a.Merge(b)

	if m.Start() != 2 || m.End() != 10 {
		t.Fatalf("got [%d,%d)", m.Start(), m.End())
	}
}

func Test_BinaryExpressionIsExpression(t *testing.T) {
	left := &Identifier{NodeBase: NodeBase{Loc: NewSpan(0, 1)}, Name: "a"}
	right := &NumericLiteral{NodeBase: NodeBase{Loc: NewSpan(4, 5)}, Value: 1}

	var e Expression = &BinaryExpression{
		NodeBase: NodeBase{Loc: NewSpan(0, 5)},
		Operator: BinaryAdd,
		Left:     left,
		Right:    right,
	}

	if e.Span().Length() != 5 {
		t.Fatalf("got length %d", e.Span().Length())
	}
}

func Test_VariableDeclarationIsStatementAndDeclaration(t *testing.T) {
	decl := &VariableDeclaration{
		NodeBase: NodeBase{Loc: NewSpan(0, 10)},
		Kind:     VariableLet,
		Declarations: []*VariableDeclarator{
			{
				NodeBase: NodeBase{Loc: NewSpan(4, 9)},
				Target:   &Identifier{NodeBase: NodeBase{Loc: NewSpan(4, 5)}, Name: "x"},
				Init:     &NumericLiteral{NodeBase: NodeBase{Loc: NewSpan(8, 9)}, Value: 1},
			},
		},
	}

	var s Statement = decl
	var d Declaration = decl

	if s.Span() != d.Span() {
		t.Fatal("expected same span through both interfaces")
	}
}

func Test_ProgramBodyTypeSwitch(t *testing.T) {
	prog := &Program{
		Kind: SourceKindScript,
		Body: []Statement{
			&ExpressionStatement{Expression: &ThisExpression{}},
			&ReturnStatement{},
		},
	}

	var kinds []string

	for _, s := range prog.Body {
		switch s.(type) {
		case *ExpressionStatement:
			kinds = append(kinds, "expr")
		case *ReturnStatement:
			kinds = append(kinds, "return")
		default:
			kinds = append(kinds, "other")
		}
	}

	if len(kinds) != 2 || kinds[0] != "expr" || kinds[1] != "return" {
		t.Fatalf("got %v", kinds)
	}
}
