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

import "github.com/ecmaforge/ecmaforge/pkg/lexer"

// punctSpelling is used only to render readable error messages; it is the
// inverse of pkg/lexer's punctuator tables.
var punctSpelling = map[lexer.Punctuator]string{
	lexer.PunctLBrace: "{", lexer.PunctRBrace: "}",
	lexer.PunctLParen: "(", lexer.PunctRParen: ")",
	lexer.PunctLBracket: "[", lexer.PunctRBracket: "]",
	lexer.PunctDot: ".", lexer.PunctEllipsis: "...",
	lexer.PunctSemicolon: ";", lexer.PunctComma: ",",
	lexer.PunctLt: "<", lexer.PunctGt: ">", lexer.PunctLtEq: "<=", lexer.PunctGtEq: ">=",
	lexer.PunctEqEq: "==", lexer.PunctNotEq: "!=", lexer.PunctEqEqEq: "===", lexer.PunctNotEqEq: "!==",
	lexer.PunctPlus: "+", lexer.PunctMinus: "-", lexer.PunctStar: "*", lexer.PunctPercent: "%",
	lexer.PunctStarStar: "**", lexer.PunctPlusPlus: "++", lexer.PunctMinusMinus: "--",
	lexer.PunctShl: "<<", lexer.PunctShr: ">>", lexer.PunctUShr: ">>>",
	lexer.PunctAmp: "&", lexer.PunctPipe: "|", lexer.PunctCaret: "^", lexer.PunctBang: "!", lexer.PunctTilde: "~",
	lexer.PunctAmpAmp: "&&", lexer.PunctPipePipe: "||",
	lexer.PunctQuestion: "?", lexer.PunctQuestionDot: "?.", lexer.PunctQuestionQuestion: "??",
	lexer.PunctColon: ":", lexer.PunctEq: "=",
	lexer.PunctPlusEq: "+=", lexer.PunctMinusEq: "-=", lexer.PunctStarEq: "*=", lexer.PunctPercentEq: "%=",
	lexer.PunctStarStarEq: "**=", lexer.PunctShlEq: "<<=", lexer.PunctShrEq: ">>=", lexer.PunctUShrEq: ">>>=",
	lexer.PunctAmpEq: "&=", lexer.PunctPipeEq: "|=", lexer.PunctCaretEq: "^=",
	lexer.PunctAmpAmpEq: "&&=", lexer.PunctPipePipeEq: "||=", lexer.PunctQuestionQuestionEq: "??=",
	lexer.PunctArrow: "=>", lexer.PunctSlash: "/", lexer.PunctSlashEq: "/=", lexer.PunctAt: "@",
}
