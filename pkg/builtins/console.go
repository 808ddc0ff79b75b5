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
package builtins

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ecmaforge/ecmaforge/pkg/object"
	"github.com/ecmaforge/ecmaforge/pkg/realm"
	"github.com/ecmaforge/ecmaforge/pkg/value"
)

// consoleLog is a package-level logrus.Entry scoped to this built-in via a
// "component" field; it is derived from logrus's standard (process-wide)
// logger, unlike the per-realm diag.Sink the engine uses for its own
// internal diagnostics.
var consoleLog = logrus.WithField("component", "console")

// installConsole installs the `console` host global (not part of
// ECMAScript itself, but present in every embedding the way the teacher's
// own CLI commands log through a package-level logrus entry rather than
// printing directly); each method joins its arguments space-separated via
// the same ToString every built-in uses and routes through logrus at the
// matching level.
func installConsole(r *realm.Realm) {
	c := newCtx(r)

	console := c.newObject(r.IntrinsicPrototype("Object"))
	ref := console.Self()

	level := func(log func(args ...any)) object.NativeFunc {
		return func(rt object.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			parts := make([]string, len(args))

			for i, a := range args {
				s, err := toGoString(rt, a)
				if err != nil {
					return value.Value{}, err
				}

				parts[i] = s
			}

			log(strings.Join(parts, " "))

			return value.Undefined(), nil
		}
	}

	c.method(console, "log", 0, level(func(args ...any) { consoleLog.Info(args...) }))
	c.method(console, "info", 0, level(func(args ...any) { consoleLog.Info(args...) }))
	c.method(console, "debug", 0, level(func(args ...any) { consoleLog.Debug(args...) }))
	c.method(console, "trace", 0, level(func(args ...any) { consoleLog.Trace(args...) }))
	c.method(console, "warn", 0, level(func(args ...any) { consoleLog.Warn(args...) }))
	c.method(console, "error", 0, level(func(args ...any) { consoleLog.Error(args...) }))

	c.define("console", value.Obj(ref))
}
