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

// Package diag provides the realm-local diagnostics sink used by the GC, VM,
// bytecode compiler and job queue to report internal events without going
// through a process-wide logger.
package diag

import "github.com/sirupsen/logrus"

// Sink receives structured diagnostic events from engine internals. A realm
// owns exactly one Sink; there is no process-global logger (per §9 "no
// process-wide mutable singletons").
type Sink interface {
	// Tracef logs a low-level internal event (bytecode dumps, shape
	// transitions, GC cycles).
	Tracef(component, format string, args ...any)
	// Debugf logs a coarser internal event.
	Debugf(component, format string, args ...any)
	// Warnf logs a host-observable but non-fatal condition.
	Warnf(component, format string, args ...any)
	// Errorf logs a host-observable failure.
	Errorf(component, format string, args ...any)
}

// logrusSink is the default Sink, backed by a per-realm *logrus.Entry rather
// than the package-level logrus logger.
type logrusSink struct {
	entry *logrus.Entry
}

// NewLogrusSink constructs the default diagnostics sink for a realm.
func NewLogrusSink() Sink {
	logger := logrus.New()

	return &logrusSink{entry: logrus.NewEntry(logger)}
}

func (s *logrusSink) with(component string) *logrus.Entry {
	return s.entry.WithField("component", component)
}

// Tracef implements Sink.
func (s *logrusSink) Tracef(component, format string, args ...any) {
	s.with(component).Tracef(format, args...)
}

// Debugf implements Sink.
func (s *logrusSink) Debugf(component, format string, args ...any) {
	s.with(component).Debugf(format, args...)
}

// Warnf implements Sink.
func (s *logrusSink) Warnf(component, format string, args ...any) {
	s.with(component).Warnf(format, args...)
}

// Errorf implements Sink.
func (s *logrusSink) Errorf(component, format string, args ...any) {
	s.with(component).Errorf(format, args...)
}

// Discard is a Sink which drops every event; useful for tests.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Tracef(string, string, ...any) {}
func (discardSink) Debugf(string, string, ...any) {}
func (discardSink) Warnf(string, string, ...any)  {}
func (discardSink) Errorf(string, string, ...any) {}
