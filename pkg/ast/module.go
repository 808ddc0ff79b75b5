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

// ImportSpecifierKind distinguishes the three forms an import clause binding
// can take; pkg/module resolves each to a distinct linking record (§4.10).
type ImportSpecifierKind uint8

const (
	// ImportSpecifierNamed is `import { foo as bar } from "mod"`.
	ImportSpecifierNamed ImportSpecifierKind = iota
	// ImportSpecifierDefault is the `foo` in `import foo from "mod"`.
	ImportSpecifierDefault
	// ImportSpecifierNamespace is `import * as ns from "mod"`.
	ImportSpecifierNamespace
)

// ImportSpecifier is one binding introduced by an ImportDeclaration.
type ImportSpecifier struct {
	NodeBase
	Kind  ImportSpecifierKind
	Local *Identifier
	// Imported is the name bound in the source module; nil for
	// ImportSpecifierDefault and ImportSpecifierNamespace.
	Imported *Identifier
}

// ImportDeclaration is `import ... from "source";`, or the bare
// `import "source";` form (Specifiers empty).
type ImportDeclaration struct {
	NodeBase
	Specifiers []*ImportSpecifier
	Source     *StringLiteral
}

func (*ImportDeclaration) stmtNode() {}
func (*ImportDeclaration) declNode() {}

// ExportSpecifier is one `local as exported` entry of an
// ExportNamedDeclaration's export clause.
type ExportSpecifier struct {
	NodeBase
	Local    *Identifier
	Exported *Identifier
}

// ExportNamedDeclaration is `export { ... } [from "source"];` or
// `export <declaration>;`. Exactly one of Declaration and Specifiers is
// populated.
type ExportNamedDeclaration struct {
	NodeBase
	Declaration Declaration // nil when this is the `export { ... }` clause form
	Specifiers  []*ExportSpecifier
	Source      *StringLiteral // non-nil only for the re-export `from "source"` form
}

func (*ExportNamedDeclaration) stmtNode() {}
func (*ExportNamedDeclaration) declNode() {}

// ExportDefaultDeclaration is `export default <expr-or-decl>;`.
type ExportDefaultDeclaration struct {
	NodeBase
	// Declaration is an Expression, a *FunctionDeclaration, or a
	// *ClassDeclaration (the latter two may have a nil Id per the
	// `export default` grammar carve-out).
	Declaration Node
}

func (*ExportDefaultDeclaration) stmtNode() {}
func (*ExportDefaultDeclaration) declNode() {}

// ExportAllDeclaration is `export * from "source";` or
// `export * as ns from "source";`.
type ExportAllDeclaration struct {
	NodeBase
	Exported *Identifier // nil for the bare `export * from` form
	Source   *StringLiteral
}

func (*ExportAllDeclaration) stmtNode() {}
func (*ExportAllDeclaration) declNode() {}
