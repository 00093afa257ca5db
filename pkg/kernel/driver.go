// Copyright 2026 The Kestrel Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernel

import (
	"kestrelos.dev/kestrel/pkg/abi/kestrel"
)

// Driver is a peripheral handler installed in the capability table under a
// 32-bit driver identifier.
//
// Subscribe and Allow state lives in the core kernel's per-task registries,
// not in the driver: a driver observes a lent buffer through
// Task.AllowedReadOnly/AllowedReadWrite and completes asynchronous work by
// calling Task.ScheduleUpcall. A driver therefore only implements Command.
//
// Every driver must implement command 0 as an existence probe that returns
// bare Success and has no side effects, so userspace can detect which
// drivers a kernel build carries.
type Driver interface {
	// Command invokes a driver-defined synchronous operation. Long
	// running work must be deferred to an upcall; Command itself must
	// return promptly. Each command number commits to exactly one
	// success and one failure variant.
	Command(t *Task, cmd, arg0, arg1 uint32) kestrel.ReturnValue
}

// TaskCleanup is implemented by drivers that hold per-task state outside
// the kernel's slot registries. CleanupTask is called exactly once per
// task, after the task's slots and pending queue have been discarded, for
// both termination and restart.
type TaskCleanup interface {
	CleanupTask(t *Task)
}
