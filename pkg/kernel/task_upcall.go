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
	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/log"
	"kestrelos.dev/kestrel/pkg/usermem"
)

// upcallKey addresses one subscribe slot.
type upcallKey struct {
	driver    uint32
	subscribe uint32
}

// upcallSlot holds a registered callback, or the zero value for "no
// callback" (the null upcall).
type upcallSlot struct {
	entry usermem.Addr
	data  uint32
}

// pendingUpcall is a queued completion event. entry and data are captured
// from the slot at enqueue time; the subscribe purge rule guarantees they
// still match the slot whenever the event is delivered.
type pendingUpcall struct {
	key   upcallKey
	entry usermem.Addr
	data  uint32
	args  [4]uint32
}

// subscribe implements the Subscribe class for this task: swap the slot,
// return the previous registration, and purge every pending event bound
// to it. The purge happens under the same critical section as the slot
// write, so an overwritten callback can never be delivered afterward.
func (t *Task) subscribe(driverNum, subNum uint32, entry usermem.Addr, data uint32) kestrel.ReturnValue {
	if _, ok := t.k.Driver(driverNum); !ok {
		return kestrel.FailureU32U32(errno.NOSUPPORT, kestrel.NullUpcall, 0)
	}

	// A non-null entry must point into the process's executable range.
	// The existing registration, and anything queued for it, is kept.
	if entry != kestrel.NullUpcall && !t.image.Flash.Contains(entry) {
		return kestrel.FailureU32U32(errno.INVALID, uint32(entry), data)
	}

	key := upcallKey{driver: driverNum, subscribe: subNum}
	t.mu.Lock()
	if t.dead {
		t.mu.Unlock()
		return kestrel.FailureU32U32(errno.NOSUPPORT, kestrel.NullUpcall, 0)
	}
	old := t.upcalls[key]
	t.upcalls[key] = upcallSlot{entry: entry, data: data}
	t.purgePendingLocked(key)
	t.mu.Unlock()

	return kestrel.SuccessU32U32(uint32(old.entry), old.data)
}

// purgePendingLocked drops every queued event bound to key. Preconditions:
// t.mu must be locked.
func (t *Task) purgePendingLocked(key upcallKey) {
	kept := t.pending[:0]
	for _, p := range t.pending {
		if p.key != key {
			kept = append(kept, p)
		}
	}
	if dropped := len(t.pending) - len(kept); dropped > 0 {
		log.Debugf("process %d: dropped %d pending upcalls for driver %#x sub %d",
			t.id, dropped, key.driver, key.subscribe)
	}
	t.pending = kept
}

// ScheduleUpcall enqueues a completion event for the (driverNum, subNum)
// slot. It is the driver-facing half of the yield engine: drivers call it
// from their completion paths instead of returning data synchronously.
//
// The event is dropped, and false returned, if the task is dead or the
// slot holds the null upcall. Events are delivered in enqueue order across
// all keys.
func (t *Task) ScheduleUpcall(driverNum, subNum uint32, args [4]uint32) bool {
	key := upcallKey{driver: driverNum, subscribe: subNum}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dead {
		return false
	}
	slot := t.upcalls[key]
	if slot.entry == kestrel.NullUpcall {
		return false
	}
	t.pending = append(t.pending, pendingUpcall{
		key:   key,
		entry: slot.entry,
		data:  slot.data,
		args:  args,
	})
	t.pendingCond.Broadcast()
	return true
}

// PendingUpcalls returns the current queue depth. Used by the read-only
// state driver.
func (t *Task) PendingUpcalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// UpcallEntry returns the registered entry address for a slot, or the
// null upcall. Exposed for inspection tooling.
func (t *Task) UpcallEntry(driverNum, subNum uint32) usermem.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.upcalls[upcallKey{driver: driverNum, subscribe: subNum}].entry
}
