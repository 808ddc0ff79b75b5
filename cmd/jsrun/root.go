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
package main

import (
	"context"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ecmaforge/ecmaforge/internal/diag"
	"github.com/ecmaforge/ecmaforge/pkg/engine"
	"github.com/ecmaforge/ecmaforge/pkg/module"
	"github.com/ecmaforge/ecmaforge/pkg/value"
	"github.com/ecmaforge/ecmaforge/pkg/vm"
)

// rootCmd is jsrun's single command: run one script or module file to
// completion and report its result, the same one-shot host cmd/testgen's
// own rootCmd demonstrates for a single-purpose CLI (no subcommand tree —
// that's go-corset's own toolbox shape, not a fit for a single evaluator).
var rootCmd = &cobra.Command{
	Use:   "jsrun <file>",
	Short: "Run an ECMAScript file to completion.",
	Long:  "jsrun evaluates a single .js/.mjs file against a fresh execution context and prints its completion value.",
	Args:  cobra.ExactArgs(1),
	// An uncaught exception prints its own "Uncaught ..." stack trace
	// (reportUncaught); cobra's own "Error: ..." banner and usage dump would
	// just repeat or drown that out.
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runFile,
}

func init() {
	rootCmd.Flags().Bool("module", false, "evaluate the file as a module instead of a script")
	rootCmd.Flags().Duration("timeout", 0, "wall-clock limit on evaluation (0 = unlimited)")
	rootCmd.Flags().Int("max-call-depth", 0, "maximum recursive call depth (0 = unlimited)")
	rootCmd.Flags().String("debug-addr", "", "if set, attach a debug adapter listening on this address before running")
}

// Execute runs rootCmd; called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFile(cmd *cobra.Command, args []string) error {
	path := args[0]

	asModule, _ := cmd.Flags().GetBool("module")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	maxCallDepth, _ := cmd.Flags().GetInt("max-call-depth")
	debugAddr, _ := cmd.Flags().GetString("debug-addr")

	source, err := os.ReadFile(path)
	if err != nil {
		reportUncaught(err)
		return err
	}

	ctx, err := engine.New()
	if err != nil {
		reportUncaught(err)
		return err
	}

	ctx.SetRuntimeLimits(engine.RuntimeLimits{MaxCallDepth: maxCallDepth, MaxDuration: timeout})

	if debugAddr != "" {
		if err := ctx.AttachDebugAdapter(debugAddr); err != nil {
			reportUncaught(err)
			return err
		}

		log.WithField("addr", debugAddr).Info("debug adapter listening")

		defer func() { _ = ctx.CloseDebugAdapter() }()
	}

	if asModule {
		return runModule(ctx, path, source)
	}

	v, err := ctx.Eval(path, source)
	if err != nil {
		reportUncaught(err)
		return err
	}

	ctx.RunJobs()

	if err := ctx.RunJobsAsync(context.Background()); err != nil {
		reportUncaught(err)
		return err
	}

	log.WithField("result", displayValue(v)).Info("evaluation complete")

	return nil
}

// displayValue renders v via ToJSString for the CLI's own log line; a value
// whose ToString throws (a Symbol, or a poisoned valueOf/toString) falls
// back to a placeholder rather than propagating that error into what is
// only cosmetic output.
func displayValue(v value.Value) string {
	s, err := value.ToJSString(v, nil)
	if err != nil {
		return "<unprintable>"
	}

	return s.String()
}

// reportUncaught prints err's own "Uncaught name: message" stack trace to
// stderr per §6's "Error display". A script exception (*vm.ThrownError) gets
// the full name/message/frame rendering; a host-side failure (a bad module
// specifier, a parse error, and the like, which has no call stack to show)
// falls back to a plain logrus error line — rootCmd silences cobra's own
// error banner, so this is the only place either kind gets reported.
func reportUncaught(err error) {
	te, ok := err.(*vm.ThrownError)
	if !ok {
		log.WithError(err).Error("jsrun failed")
		return
	}

	name, msg := "Error", te.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		name, msg = msg[:i], msg[i+2:]
	}

	diag.PrintStackTrace(os.Stderr, name, msg, te.Frames)
}

func runModule(ctx *engine.Context, path string, source []byte) error {
	ctx.SetModuleLoader(module.NewMapLoader(map[string][]byte{path: source}, ctx.Realm().Syms()))

	ns, err := ctx.EvalModule(path)
	if err != nil {
		reportUncaught(err)
		return err
	}

	if err := ctx.RunJobsAsync(context.Background()); err != nil {
		reportUncaught(err)
		return err
	}

	log.WithField("namespace", displayValue(ns)).Info("module evaluation complete")

	return nil
}
