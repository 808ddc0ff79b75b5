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

// keywords maps every reserved word spelling to its Keyword constant.
// "let", "static", "yield", "async", "await", "of", "get", "set", "as", and "from"
// are contextual keywords: the lexer still tags them Keyword so the parser
// can cheaply recognise the common case, but the parser treats them as
// plain identifiers outside the specific grammar productions that reserve
// them (§4.1 "keywords are flagged ... so the parser can reject").
var keywords = map[string]Keyword{
	"break":      KeywordBreak,
	"case":       KeywordCase,
	"catch":      KeywordCatch,
	"class":      KeywordClass,
	"const":      KeywordConst,
	"continue":   KeywordContinue,
	"debugger":   KeywordDebugger,
	"default":    KeywordDefault,
	"delete":     KeywordDelete,
	"do":         KeywordDo,
	"else":       KeywordElse,
	"enum":       KeywordEnum,
	"export":     KeywordExport,
	"extends":    KeywordExtends,
	"false":      KeywordFalse,
	"finally":    KeywordFinally,
	"for":        KeywordFor,
	"function":   KeywordFunction,
	"if":         KeywordIf,
	"import":     KeywordImport,
	"in":         KeywordIn,
	"instanceof": KeywordInstanceof,
	"new":        KeywordNew,
	"null":       KeywordNull,
	"return":     KeywordReturn,
	"super":      KeywordSuper,
	"switch":     KeywordSwitch,
	"this":       KeywordThis,
	"throw":      KeywordThrow,
	"true":       KeywordTrue,
	"try":        KeywordTry,
	"typeof":     KeywordTypeof,
	"var":        KeywordVar,
	"void":       KeywordVoid,
	"while":      KeywordWhile,
	"with":       KeywordWith,
	"yield":      KeywordYield,
	"let":        KeywordLet,
	"static":     KeywordStatic,
	"async":      KeywordAsync,
	"await":      KeywordAwait,
	"of":         KeywordOf,
	"get":        KeywordGet,
	"set":        KeywordSet,
	"as":         KeywordAs,
	"from":       KeywordFrom,
}

// contextual is the subset of keywords legal as an ordinary binding
// identifier outside of a strict-mode body and outside the specific
// production that reserves them.
var contextual = map[Keyword]bool{
	KeywordLet: true, KeywordStatic: true, KeywordAsync: true, KeywordAwait: true,
	KeywordOf: true, KeywordGet: true, KeywordSet: true, KeywordAs: true, KeywordFrom: true,
	KeywordYield: true,
}

// IsContextual reports whether k is only conditionally reserved.
func IsContextual(k Keyword) bool { return contextual[k] }
