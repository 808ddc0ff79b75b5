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

// Package debugadapter is the host-owned debugger/profiler hook surface: a
// thin JSON-RPC server speaking the same request/notification shape an LSP
// or DAP server would (go.lsp.dev/jsonrpc2, go.lsp.dev/protocol's Position
// for source locations, go.lsp.dev/uri for source identity), wrapping
// pkg/vm's breakpoint hook rather than reimplementing one. It does not
// attempt the full Debug Adapter Protocol: there is exactly one real pause
// point (a `debugger;` statement reaching pkg/bytecode.DebuggerBreak), and
// setBreakpoints is honest about only ever acknowledging that, never
// claiming to enforce an arbitrary source line the VM has no pc-to-line map
// to check against.
package debugadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/ecmaforge/ecmaforge/pkg/vm"
)

// StoppedEvent is the notification sent to every attached client when the VM
// hits a `debugger;` statement: which function it stopped in (empty for a
// script/module top level) and how deep the call stack currently is.
type StoppedEvent struct {
	Reason       string `json:"reason"`
	FunctionName string `json:"functionName"`
	StackDepth   int    `json:"stackDepth"`
}

// EvaluateParams/EvaluateResult implement the one request a stopped session
// actually needs: running an expression against the paused realm's global
// object, the same "evaluate in the debug console" affordance every real
// debugger offers.
type EvaluateParams struct {
	Expression string `json:"expression"`
}

type EvaluateResult struct {
	Result string `json:"result"`
}

// breakpointLocation is what setBreakpoints records: a source URI and a
// line a client would like to stop at. Accepted and echoed back so a client
// doesn't error out registering ordinary breakpoints, but never consulted
// by onBreak — recorded here, not enforced, the honest statement of what
// this adapter can actually do without a pc-to-line table.
type breakpointLocation struct {
	Source   uri.URI           `json:"source"`
	Position protocol.Position `json:"position"`
}

// Server is one debug session: a TCP listener accepting client connections,
// each wrapped in its own jsonrpc2.Conn, all sharing the single VM this
// Server was attached to (one script/module execution is single-threaded,
// so only one client can usefully be "stopped" inside onBreak at a time —
// a second connection can still send "initialize"/"evaluate" between
// breaks, just not usefully interleave with a live pause).
type Server struct {
	ln net.Listener
	vm *vm.VM

	mu          sync.Mutex
	conns       map[jsonrpc2.Conn]struct{}
	breakpoints []breakpointLocation
	resumeCh    chan struct{}
}

// Attach starts a debug-adapter server on addr and installs it as vm's
// breakpoint hook, so every `debugger;` statement vm executes from now on
// pauses for a client to inspect it and send "continue". Call (*Server).
// Close to stop listening and detach (restoring the no-op DebuggerBreak
// behaviour).
func Attach(v *vm.VM, addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("debugadapter: listen %s: %w", addr, err)
	}

	s := &Server{
		ln:    ln,
		vm:    v,
		conns: make(map[jsonrpc2.Conn]struct{}),
	}

	v.SetBreakpointHook(s.onBreak)

	go s.acceptLoop()

	return s, nil
}

// Close stops accepting new connections and detaches from the VM; a pause
// already in progress inside onBreak is released first, so Close never
// leaves a paused script stuck forever.
func (s *Server) Close() error {
	s.vm.SetBreakpointHook(nil)

	s.mu.Lock()
	if s.resumeCh != nil {
		close(s.resumeCh)
		s.resumeCh = nil
	}
	s.mu.Unlock()

	return s.ln.Close()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}

		stream := jsonrpc2.NewStream(conn)
		rpc := jsonrpc2.NewConn(stream)

		s.mu.Lock()
		s.conns[rpc] = struct{}{}
		s.mu.Unlock()

		rpc.Go(context.Background(), s.handle)
	}
}

// handle dispatches one incoming JSON-RPC request. "initialize" and
// "setBreakpoints" are acknowledged unconditionally (there is no capability
// negotiation and, per the package doc, no enforceable arbitrary-line
// breakpoints); "continue" releases a session currently blocked in onBreak;
// "evaluate" runs an expression against the realm the VM is paused in.
func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case "initialize":
		return reply(ctx, map[string]any{"supportsEvaluateForHovers": true}, nil)

	case "setBreakpoints":
		var params struct {
			Breakpoints []breakpointLocation `json:"breakpoints"`
		}

		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error()))
		}

		s.mu.Lock()
		s.breakpoints = params.Breakpoints
		s.mu.Unlock()

		return reply(ctx, map[string]any{"verified": false}, nil)

	case "continue":
		s.mu.Lock()
		if s.resumeCh != nil {
			close(s.resumeCh)
			s.resumeCh = nil
		}
		s.mu.Unlock()

		return reply(ctx, map[string]any{}, nil)

	case "evaluate":
		var params EvaluateParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error()))
		}

		result, err := s.evaluate(params.Expression)
		if err != nil {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InternalError, err.Error()))
		}

		return reply(ctx, EvaluateResult{Result: result}, nil)

	default:
		return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.MethodNotFound, req.Method()))
	}
}

// evaluate compiles and runs expr as a throwaway script against the VM's
// realm, the same path (*vm.VM).RunScript takes for any other top-level
// code — a debug-console expression is not meaningfully different from a
// one-off script as far as pkg/vm is concerned.
func (s *Server) evaluate(expr string) (string, error) {
	return evalExpression(s.vm, expr)
}

// onBreak is installed as the VM's breakpoint hook: it broadcasts a
// "stopped" notification to every connected client, then blocks until a
// "continue" request releases it — the cooperative pause §4.6's
// single-threaded dispatch loop requires, since nothing else is running
// concurrently to interrupt it.
func (s *Server) onBreak(f *vm.Frame) {
	s.mu.Lock()
	ch := make(chan struct{})
	s.resumeCh = ch
	conns := make([]jsonrpc2.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	ev := StoppedEvent{
		Reason:       "breakpoint",
		FunctionName: f.FunctionName(),
		StackDepth:   s.vm.StackDepth(),
	}

	for _, c := range conns {
		_ = c.Notify(context.Background(), "stopped", ev)
	}

	<-ch
}
