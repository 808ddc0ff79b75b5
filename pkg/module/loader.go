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
	"fmt"
	"path"

	"github.com/ecmaforge/ecmaforge/pkg/intern"
)

// Resolver turns an ImportDeclaration's raw specifier plus the importing
// module's own (already-resolved) specifier into a resolved specifier —
// the host-specific half of module resolution §4.10 deliberately leaves
// unspecified (file-relative paths, bare package names, URLs). MapLoader's
// default resolves a relative specifier against referrer's directory with
// path.Join (a reasonable default for a file-path-keyed source map), cleans
// an absolute one with path.Clean, and passes a bare specifier through
// unchanged; a host with its own resolution
// algorithm (package.json "exports", a URL base) supplies its own Resolver.
type Resolver func(referrerSpecifier, specifier string) string

// DefaultResolver implements the path.Join-relative-to-referrer behavior
// described on Resolver.
func DefaultResolver(referrerSpecifier, specifier string) string {
	if len(specifier) == 0 || (specifier[0] != '.' && specifier[0] != '/') {
		return specifier // bare specifier: host-specific resolution, passed through
	}

	if specifier[0] == '/' {
		return path.Clean(specifier)
	}

	return path.Join(path.Dir(referrerSpecifier), specifier)
}

// MapLoader is a Loader backed by an in-memory map of resolved specifier to
// source text, parsing and caching each Record on first Load — the module
// map §4.10 requires every realm to keep, so the same specifier always
// yields the same *Record however many importers reach it. Intended for
// tests and for a host (cmd/jsrun) that already has every module's source
// available up front rather than needing network/filesystem I/O; a host
// that does need such I/O implements its own Loader (possibly wrapping
// MapLoader's resolve-then-cache structure) rather than extending this one.
type MapLoader struct {
	Sources  map[string][]byte
	Resolve  Resolver
	Syms     *intern.Interner
	records  map[string]*Record
}

// NewMapLoader constructs a MapLoader over sources, keyed by resolved
// specifier, using DefaultResolver.
func NewMapLoader(sources map[string][]byte, syms *intern.Interner) *MapLoader {
	return &MapLoader{Sources: sources, Resolve: DefaultResolver, Syms: syms, records: map[string]*Record{}}
}

// Load implements Loader.
func (l *MapLoader) Load(referrer *Record, specifier string) (*Record, error) {
	referrerSpecifier := ""
	if referrer != nil {
		referrerSpecifier = referrer.Specifier
	}

	resolved := l.Resolve(referrerSpecifier, specifier)

	if r, ok := l.records[resolved]; ok {
		return r, nil
	}

	src, ok := l.Sources[resolved]
	if !ok {
		return nil, fmt.Errorf("module not found: %q", resolved)
	}

	r, err := Parse(resolved, src, l.Syms)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", resolved, err)
	}

	l.records[resolved] = r

	return r, nil
}
