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
package job

import "context"

// Executor is the pluggable job-execution policy §6's
// `Context::set_job_executor(executor)` lets a host replace. Run is handed
// the realm's Queue and should return once the queue has no more work to
// do (or ctx is done) — Runner below is the default implementation.
type Executor interface {
	Run(ctx context.Context, q *Queue) error
}

// Runner is the default single-threaded job executor (§5's "scheduling
// model"): it blocks the calling goroutine, alternately draining
// microtasks and popping one macrotask, until HasWork reports false or ctx
// is cancelled. A host with no async jobs at all never blocks here, since
// RunJobsAsync returns immediately once both queues are empty and no async
// job is pending.
type Runner struct{}

// Run implements Executor.
func (Runner) Run(ctx context.Context, q *Queue) error {
	for {
		if err := q.RunJobsAsync(ctx); err != nil {
			return err
		}

		if !q.HasWork() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		}
	}
}
