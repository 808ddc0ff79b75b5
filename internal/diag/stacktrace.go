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
package diag

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Frame is one entry of an uncaught error's stack trace, deepest-to-shallowest
// per §6 "Error display".
type Frame struct {
	// FunctionName is the name of the executing function, or "<anonymous>".
	FunctionName string
	// Source is the originating file/source name.
	Source string
	// Line is the 1-based line number.
	Line int
	// Column is the 1-based column number.
	Column int
	// Native is true for host-provided native functions.
	Native bool
}

// String renders a single frame the way §6 specifies:
// "function-name (source:line:column)" for bytecode frames and
// "function-name (native at file:line:column)" for native frames.
func (f Frame) String() string {
	name := f.FunctionName
	if name == "" {
		name = "<anonymous>"
	}

	if f.Native {
		return fmt.Sprintf("%s (native at %s:%d:%d)", name, f.Source, f.Line, f.Column)
	}

	return fmt.Sprintf("%s (%s:%d:%d)", name, f.Source, f.Line, f.Column)
}

// PrintStackTrace writes a formatted, name/message-prefixed stack trace to w.
// When w is a terminal, lines wrap to the detected terminal width; otherwise
// each frame is emitted unwrapped, one per line.
func PrintStackTrace(w io.Writer, name, message string, frames []Frame) {
	width := 0

	if f, ok := w.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = cols
		}
	}

	fmt.Fprintf(w, "Uncaught %s: %s\n", name, message)

	for _, frame := range frames {
		line := "    at " + frame.String()
		if width > 0 && len(line) > width {
			line = wrap(line, width)
		}

		fmt.Fprintln(w, line)
	}
}

// wrap breaks s into width-wide chunks joined by a continuation indent; used
// only for interactive terminals, never for piped/file output.
func wrap(s string, width int) string {
	if width <= 8 {
		return s
	}

	var b strings.Builder

	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteString("\n        ")
		s = s[width:]
	}

	b.WriteString(s)

	return b.String()
}
