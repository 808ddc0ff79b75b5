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

// Package job implements §5's cooperative concurrency model: a single
// interpreter thread per realm, with all concurrency mediated by a job
// queue holding two kinds of work — promise jobs (microtasks, drained to
// empty between macrotasks) and async jobs (may represent pending host I/O,
// a timer, or any other macrotask a host's executor schedules). The queue
// itself runs no goroutines of its own; pkg/vm's async-function/generator
// coroutines run on goroutines, and they hand control back to whichever goroutine calls RunJobs/RunJobsAsync
// through the channel protocol pkg/vm/generator.go documents.
package job

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/ecmaforge/ecmaforge/internal/diag"
)

// Job is one queued unit of work: a promise reaction, an async function's
// resumption, or a host-scheduled macrotask (timer, I/O completion).
type Job func()

// Queue is a realm's job queue (§3.6/§5): realm-local, never shared across
// realms, accessed only by the interpreter thread that calls RunJobs — the
// same "no process-wide mutable singleton" discipline as the shape table,
// intrinsics, and interned-string table (§9).
type Queue struct {
	sink diag.Sink

	mu         sync.Mutex
	microtasks []Job
	macrotasks []Job

	// pending counts async jobs registered but not yet queued as a
	// macrotask — a host's executor that fetches over the network, say,
	// increments this when it starts and enqueues the continuation (via
	// EnqueueMacrotask) when the response arrives. go.uber.org/atomic is
	// used here rather than a mutex-guarded int because a host's executor
	// runs the increment/decrement from its own goroutine, outside the
	// single interpreter thread's lock step (§5 "Shared resources").
	pending atomic.Int64

	// wake is signalled (non-blocking) on every enqueue/EndAsyncJob so
	// Runner.Run can block between polls instead of busy-waiting for a
	// host's async executor to report a macrotask.
	wake chan struct{}
}

// New constructs an empty job queue reporting to sink (nil defaults to a
// logrus-backed sink, matching every other realm-owned component).
func New(sink diag.Sink) *Queue {
	if sink == nil {
		sink = diag.NewLogrusSink()
	}

	return &Queue{sink: sink, wake: make(chan struct{}, 1)}
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// EnqueueMicrotask schedules a promise job (§4.10's PromiseReactionJob):
// a `.then`/`.catch`/`.finally` reaction, or an async function's
// resumption after an awaited promise settles.
func (q *Queue) EnqueueMicrotask(j Job) {
	q.mu.Lock()
	q.microtasks = append(q.microtasks, j)
	q.mu.Unlock()
	q.signal()
}

// EnqueueMacrotask schedules an async job: a host-originated continuation
// (a fetch completing, a timer firing) that runs after the microtask queue
// next drains to empty, per the ordering guarantee in §5.
func (q *Queue) EnqueueMacrotask(j Job) {
	q.mu.Lock()
	q.macrotasks = append(q.macrotasks, j)
	q.mu.Unlock()
	q.signal()
}

// BeginAsyncJob marks one pending async job (e.g. a host fetch in flight)
// so HasWork/RunJobsAsync know not to report the queue empty before that
// job's continuation is enqueued. Pair with EndAsyncJob once the
// corresponding EnqueueMacrotask call has happened.
func (q *Queue) BeginAsyncJob() { q.pending.Inc() }

// EndAsyncJob releases one BeginAsyncJob count.
func (q *Queue) EndAsyncJob() {
	q.pending.Dec()
	q.signal()
}

// drainMicrotasks runs every queued microtask to completion, including any
// further microtasks a reaction enqueues while running (§5: "microtasks
// enqueued from within a microtask run before the next macrotask").
func (q *Queue) drainMicrotasks() {
	for {
		q.mu.Lock()
		if len(q.microtasks) == 0 {
			q.mu.Unlock()
			return
		}

		next := q.microtasks[0]
		q.microtasks = q.microtasks[1:]
		q.mu.Unlock()

		q.run(next)
	}
}

func (q *Queue) run(j Job) {
	defer func() {
		if r := recover(); r != nil {
			// A job panicking (a native function's Go bug, not a thrown JS
			// value — those are reported through the job's own closure)
			// must not take down the whole queue; surface it and move on.
			q.sink.Errorf("job", "recovered panic running queued job: %v", r)
		}
	}()

	j()
}

// RunJobs drains the microtask queue to empty and returns — the synchronous
// entry point for a host that has no pending async jobs (`Context::run_jobs`
// per §6), e.g. after evaluating a script with no outstanding `await`.
func (q *Queue) RunJobs() {
	q.drainMicrotasks()
}

// HasWork reports whether the queue has anything left to do: queued
// macrotasks, queued microtasks, or an async job registered via
// BeginAsyncJob that hasn't enqueued its continuation yet.
func (q *Queue) HasWork() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.microtasks) > 0 || len(q.macrotasks) > 0 || q.pending.Load() > 0
}

// RunJobsAsync drains microtasks, then macrotasks one at a time (draining
// microtasks again after each), until both queues are empty — it returns
// then even if an async job is still pending, without waiting for it —
// `Context::run_jobs_async` per §6. ctx cancellation stops
// the loop between jobs (never mid-job — a running Job is not preemptible,
// matching §5's "scripts are not cancellable mid-opcode by default").
func (q *Queue) RunJobsAsync(ctx context.Context) error {
	for {
		q.drainMicrotasks()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		q.mu.Lock()
		if len(q.macrotasks) == 0 {
			q.mu.Unlock()

			if q.pending.Load() == 0 {
				return nil
			}
			// An async job is registered but hasn't enqueued its
			// continuation yet; the host's executor runs on its own
			// goroutine and will call EnqueueMacrotask asynchronously, so
			// there is nothing more for this call to do but report done
			// once that eventually happens on a future call, or block
			// here if the caller wants a blocking drain. This package
			// makes no blocking-vs-polling policy choice for the host;
			// Runner (runner.go) is the opinionated default that does.
			return nil
		}

		next := q.macrotasks[0]
		q.macrotasks = q.macrotasks[1:]
		q.mu.Unlock()

		q.run(next)
	}
}
