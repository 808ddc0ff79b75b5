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

func Test_BufferedLexerPeekDoesNotConsume(t *testing.T) {
	t.Parallel()

	b := NewBufferedLexer(NewSource("test", []byte("a b c")))

	first, err := b.Peek(0)
	if err != nil {
		t.Fatal(err)
	}

	second, err := b.Peek(1)
	if err != nil {
		t.Fatal(err)
	}

	if first.String != "a" || second.String != "b" {
		t.Fatalf("got %q, %q", first.String, second.String)
	}

	next, err := b.Next()
	if err != nil {
		t.Fatal(err)
	}

	if next.String != "a" {
		t.Fatalf("got %q", next.String)
	}
}

func Test_BufferedLexerSkipsLineTerminatorsByDefault(t *testing.T) {
	t.Parallel()

	b := NewBufferedLexer(NewSource("test", []byte("a\nb")))

	first, _ := b.Next()
	second, err := b.Next()

	if err != nil {
		t.Fatal(err)
	}

	if first.Kind != Identifier || second.Kind != Identifier {
		t.Fatalf("expected two identifiers, got %+v %+v", first, second)
	}

	if !second.PrecededByLineTerminator {
		t.Fatal("expected second token to record a preceding line terminator")
	}
}

func Test_BufferedLexerPreserveLineTerminators(t *testing.T) {
	t.Parallel()

	b := NewBufferedLexer(NewSource("test", []byte("a\nb")))
	b.SetMode(PreserveLineTerminators)

	first, _ := b.Next()

	second, err := b.Next()
	if err != nil {
		t.Fatal(err)
	}

	if first.Kind != Identifier || second.Kind != LineTerminator {
		t.Fatalf("expected identifier then line terminator, got %+v %+v", first, second)
	}
}

func Test_BufferedLexerPushBack(t *testing.T) {
	t.Parallel()

	b := NewBufferedLexer(NewSource("test", []byte("a b")))

	tok, err := b.Next()
	if err != nil {
		t.Fatal(err)
	}

	b.PushBack(tok)

	again, err := b.Next()
	if err != nil {
		t.Fatal(err)
	}

	if again.String != tok.String {
		t.Fatalf("expected push-back token to be re-read, got %+v", again)
	}
}

func Test_BufferedLexerGoalSwitch(t *testing.T) {
	t.Parallel()

	b := NewBufferedLexer(NewSource("test", []byte("/x/")))
	b.SetGoal(GoalRegExp)

	tok, err := b.Next()
	if err != nil {
		t.Fatal(err)
	}

	if tok.Kind != RegularExpressionLiteral {
		t.Fatalf("got %+v", tok)
	}
}
