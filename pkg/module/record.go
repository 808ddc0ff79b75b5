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
package module

import (
	"github.com/ecmaforge/ecmaforge/pkg/ast"
	"github.com/ecmaforge/ecmaforge/pkg/bytecode"
	"github.com/ecmaforge/ecmaforge/pkg/envrec"
	"github.com/ecmaforge/ecmaforge/pkg/intern"
	"github.com/ecmaforge/ecmaforge/pkg/lexer"
	"github.com/ecmaforge/ecmaforge/pkg/parser"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/scope"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// importBinding is one local name an ImportDeclaration introduces.
type importBinding struct {
	local *ast.Identifier // the binding this module's own environment holds

	// Exactly one of defaultImport, namespace, or a non-empty imported is
	// set, mirroring ast.ImportSpecifierKind.
	imported      string
	defaultImport bool
	namespace     bool
}

// importEntry is one `import ... from "specifier";` declaration.
type importEntry struct {
	specifier string
	bindings  []importBinding
}

// exportEntry is one name this module makes available to importers. Exactly
// one of two shapes applies: a local binding (hasLocal — localName is
// either the declared identifier's own name, or the synthetic
// scope.DefaultExportBindingName pkg/scope gives a `export default`
// declaration with no name of its own), or a re-export naming a binding (or
// the entire namespace, star) of another module (fromSpecifier non-empty).
type exportEntry struct {
	exportedName string // "" only for a bare `export * from "mod"` (no name of its own)

	hasLocal  bool
	localName string

	fromSpecifier string
	fromName      string
	star          bool
}

// Record is one module's parsed, compiled, and (once Link has run) linked
// state — §4.10's Source Text Module Record, specialized to this engine's
// single Loader-returned AST/CodeBlock pair rather than a separate
// Cyclic/Source split, since every module this engine loads is source text.
type Record struct {
	Specifier string

	prog   *ast.Program
	scopes *scope.Result
	code   *bytecode.CodeBlock

	imports []importEntry
	exports []exportEntry

	status Status
	err    error

	env   *envrec.Environment
	realm *realm.Realm // set by Link; needed to allocate a namespace object

	// deps resolves each imports[i].specifier (and each re-export's
	// fromSpecifier) to the Record Instantiate's graph walk already
	// visited; populated by Instantiate, consumed by Link.
	deps map[string]*Record

	// namespace caches the module namespace object Namespace() builds, so a
	// module imported with `import * as ns` from more than one importer
	// gets the same object (§4.10's namespace objects are memoized per
	// module, not rebuilt per import site).
	namespace value.Value
	hasNamespace bool
}

// Status reports r's current lifecycle state.
func (r *Record) Status() Status { return r.status }

// Err is the failure StatusErrored recorded, nil otherwise.
func (r *Record) Err() error { return r.err }

// Env is r's module environment record, valid once Status is at least
// StatusLinked.
func (r *Record) Env() *envrec.Environment { return r.env }

// Parse loads specifier's source into an unlinked Record: parses it as a
// Module (§4.1's Module goal symbol, always strict, admits top-level
// await), runs scope analysis, and compiles its top-level CodeBlock — the
// same three-stage pipeline CompileScript's callers already run, via
// parser.ParseModule/scope.Analyze/bytecode.CompileModule instead of their
// Script-flavored counterparts. A Loader implementation calls this once per
// resolved specifier and caches the result in its own module map.
func Parse(specifier string, source []byte, syms *intern.Interner) (*Record, error) {
	prog, err := parser.ParseModule(specifier, source, syms)
	if err != nil {
		return nil, err
	}

	src := lexer.NewSource(specifier, source)

	scopes, err := scope.Analyze(prog, src)
	if err != nil {
		return nil, err
	}

	code, err := bytecode.CompileModule(prog, scopes, src, syms)
	if err != nil {
		return nil, err
	}

	r := &Record{Specifier: specifier, prog: prog, scopes: scopes, code: code}
	r.collectImportsExports()

	return r, nil
}

// collectImportsExports walks r.prog.Body once, extracting every import/
// export declaration's shape — the graph topology and binding table
// Instantiate/Link need — without touching r.code, which pkg/bytecode
// already compiled independently: an import/export statement itself emits
// no ops of its own, only the ordinary binding initialization a wrapped
// declaration (or a `export default`'s synthetic slot) already requires.
func (r *Record) collectImportsExports() {
	for _, stmt := range r.prog.Body {
		switch n := stmt.(type) {
		case *ast.ImportDeclaration:
			r.collectImport(n)
		case *ast.ExportNamedDeclaration:
			r.collectExportNamed(n)
		case *ast.ExportDefaultDeclaration:
			r.collectExportDefault(n)
		case *ast.ExportAllDeclaration:
			r.collectExportAll(n)
		}
	}
}

func (r *Record) collectImport(n *ast.ImportDeclaration) {
	ie := importEntry{specifier: n.Source.Value}

	for _, spec := range n.Specifiers {
		ib := importBinding{local: spec.Local}

		switch spec.Kind {
		case ast.ImportSpecifierDefault:
			ib.defaultImport = true
		case ast.ImportSpecifierNamespace:
			ib.namespace = true
		case ast.ImportSpecifierNamed:
			ib.imported = spec.Imported.Name
		}

		ie.bindings = append(ie.bindings, ib)
	}

	r.imports = append(r.imports, ie)
}

func (r *Record) collectExportNamed(n *ast.ExportNamedDeclaration) {
	if n.Source != nil {
		for _, spec := range n.Specifiers {
			r.exports = append(r.exports, exportEntry{
				exportedName:  spec.Exported.Name,
				fromSpecifier: n.Source.Value,
				fromName:      spec.Local.Name,
			})
		}

		return
	}

	if n.Declaration != nil {
		for _, id := range declaredIdentifiers(n.Declaration) {
			r.exports = append(r.exports, exportEntry{exportedName: id.Name, hasLocal: true, localName: id.Name})
		}

		return
	}

	for _, spec := range n.Specifiers {
		r.exports = append(r.exports, exportEntry{
			exportedName: spec.Exported.Name,
			hasLocal:     true,
			localName:    spec.Local.Name,
		})
	}
}

// collectExportDefault handles `export default <decl-or-expr>;`. A named
// function/class declaration resolves to its own ordinary binding, the same
// as collectExportNamed's wrapped-declaration case; every other form (an
// anonymous function/class, or a bare expression) has no source-level name
// of its own, so it resolves to the synthetic scope.DefaultExportBindingName
// slot pkg/scope declared for exactly this statement and pkg/bytecode
// initialized with InitConst, the same as any other local export.
func (r *Record) collectExportDefault(n *ast.ExportDefaultDeclaration) {
	entry := exportEntry{exportedName: "default", hasLocal: true, localName: scope.DefaultExportBindingName}

	switch d := n.Declaration.(type) {
	case *ast.FunctionDeclaration:
		if d.Function.Id != nil {
			entry.localName = d.Function.Id.Name
		}
	case *ast.ClassDeclaration:
		if d.Class.Id != nil {
			entry.localName = d.Class.Id.Name
		}
	}

	r.exports = append(r.exports, entry)
}

func (r *Record) collectExportAll(n *ast.ExportAllDeclaration) {
	entry := exportEntry{fromSpecifier: n.Source.Value, star: true}
	if n.Exported != nil {
		entry.exportedName = n.Exported.Name
	}

	r.exports = append(r.exports, entry)
}

// declaredIdentifiers returns every binding name a wrapped `export
// <declaration>;` introduces: a function/class declaration's own name, or
// every identifier a var/let/const declaration's (possibly destructuring)
// targets bind.
func declaredIdentifiers(d ast.Declaration) []*ast.Identifier {
	switch d := d.(type) {
	case *ast.FunctionDeclaration:
		if d.Function.Id == nil {
			return nil
		}

		return []*ast.Identifier{d.Function.Id}
	case *ast.ClassDeclaration:
		if d.Class.Id == nil {
			return nil
		}

		return []*ast.Identifier{d.Class.Id}
	case *ast.VariableDeclaration:
		var ids []*ast.Identifier
		for _, decl := range d.Declarations {
			ids = append(ids, patternIdentifiers(decl.Target)...)
		}

		return ids
	default:
		return nil
	}
}

func patternIdentifiers(p ast.Pattern) []*ast.Identifier {
	switch p := p.(type) {
	case *ast.Identifier:
		return []*ast.Identifier{p}
	case *ast.AssignmentPattern:
		return patternIdentifiers(p.Target)
	case *ast.RestElement:
		return patternIdentifiers(p.Target)
	case *ast.ArrayPattern:
		var ids []*ast.Identifier
		for _, el := range p.Elements {
			if el == nil {
				continue
			}

			ids = append(ids, patternIdentifiers(el)...)
		}

		return ids
	case *ast.ObjectPattern:
		var ids []*ast.Identifier
		for _, prop := range p.Properties {
			ids = append(ids, patternIdentifiers(prop.Value)...)
		}

		if p.Rest != nil {
			ids = append(ids, patternIdentifiers(p.Rest)...)
		}

		return ids
	default:
		return nil
	}
}
