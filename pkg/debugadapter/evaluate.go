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
package debugadapter

import (
	"fmt"

	"github.com/ecmaforge/ecmaforge/pkg/bytecode"
	"github.com/ecmaforge/ecmaforge/pkg/lexer"
	"github.com/ecmaforge/ecmaforge/pkg/parser"
	"github.com/ecmaforge/ecmaforge/pkg/scope"
	"github.com/ecmaforge/ecmaforge/pkg/value"
	"github.com/ecmaforge/ecmaforge/pkg/vm"
)

// evalExpression runs the same parse -> scope.Analyze -> bytecode.Compile ->
// VM.RunScript pipeline pkg/engine uses for a host-supplied script, against
// a debug-console expression instead. It shares the VM (and so the realm
// and its global bindings) the paused script is already running in, making
// it a real "evaluate in this scope" rather than a fresh, unrelated realm.
func evalExpression(v *vm.VM, expr string) (string, error) {
	syms := v.Realm().Syms()

	prog, err := parser.ParseScript("<debug evaluate>", []byte(expr), syms)
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}

	src := lexer.NewSource("<debug evaluate>", []byte(expr))

	scopes, err := scope.Analyze(prog, src)
	if err != nil {
		return "", fmt.Errorf("scope: %w", err)
	}

	code, err := bytecode.CompileScript(prog, scopes, src, syms)
	if err != nil {
		return "", fmt.Errorf("compile: %w", err)
	}

	result, err := v.RunScript(code)
	if err != nil {
		return "", err
	}

	s, err := value.ToJSString(result, nil)
	if err != nil {
		return "", err
	}

	return s.String(), nil
}
