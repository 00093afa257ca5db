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
	"time"

	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/log"
	"kestrelos.dev/kestrel/pkg/usermem"
)

var yieldFaultLog = log.BasicRateLimitedLogger(10 * time.Second)

// yieldWait suspends the task until at least one upcall is pending, then
// delivers exactly one. This is the only blocking syscall; a killed task
// unblocks and delivers nothing.
func (t *Task) yieldWait() kestrel.ReturnValue {
	t.mu.Lock()
	for len(t.pending) == 0 && !t.dead {
		t.pendingCond.Wait()
	}
	if t.dead {
		t.mu.Unlock()
		return kestrel.Failure(errno.CANCEL)
	}
	p := t.pending[0]
	t.pending = t.pending[1:]
	t.mu.Unlock()

	t.deliver(p)
	return kestrel.Success()
}

// yieldNoWait delivers at most one pending upcall and records whether one
// ran in the flag byte at flagAddr: 1 if a callback was invoked, 0 if the
// queue was empty.
func (t *Task) yieldNoWait(flagAddr usermem.Addr) kestrel.ReturnValue {
	t.mu.Lock()
	var p pendingUpcall
	ran := false
	if !t.dead && len(t.pending) > 0 {
		p = t.pending[0]
		t.pending = t.pending[1:]
		ran = true
	}
	t.mu.Unlock()

	if ran {
		t.deliver(p)
	}

	flag := []byte{0}
	if ran {
		flag[0] = 1
	}
	// An unmapped flag address is the caller's problem; this layer only
	// notes it. On hardware the store would raise an MPU fault.
	if _, err := t.mem.CopyOut(flagAddr, flag); err != nil {
		yieldFaultLog.Warningf("process %d: yield-no-wait flag at %#x: %v", t.id, flagAddr, err)
	}
	return kestrel.Success()
}

// deliver invokes one dequeued upcall on the process's own context. The
// callback runs to completion before the yield that popped it returns.
func (t *Task) deliver(p pendingUpcall) {
	if t.invoker == nil {
		log.Warningf("process %d has no upcall invoker; dropping upcall to %#x", t.id, p.entry)
		return
	}
	if log.IsLogging(log.Debug) {
		log.Debugf("process %d: upcall driver %#x sub %d entry %#x",
			t.id, p.key.driver, p.key.subscribe, p.entry)
	}
	t.invoker.Invoke(p.entry, p.data, p.args)
}
