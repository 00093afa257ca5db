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

// Package alarm provides the alarm driver: upcalls when a point in time,
// expressed in ticks of a 32-bit wrapping counter, has been reached.
//
// Each process gets one alarm; userspace virtualizes further if it needs
// more. Expiry is checked against the hardware counter on every Fire,
// which the board wires to the timer interrupt.
package alarm

import (
	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/sync"
)

// DriverNum is the alarm driver identifier.
const DriverNum = 0x0

// Subscribe identifiers.
const (
	// SubscribeExpired is the alarm-expired upcall. Arguments: current
	// ticks, configured reference ticks.
	SubscribeExpired = 0
)

// Command identifiers.
const (
	CommandExists    = 0
	CommandFrequency = 1
	CommandNow       = 2
	CommandStop      = 3
	CommandSet       = 4
)

// Clock is the underlying 32-bit tick source.
type Clock interface {
	// Now returns the current counter value. It wraps.
	Now() uint32

	// Frequency returns ticks per second.
	Frequency() uint32
}

// expiration is one armed alarm: fires when now - reference >= dt in
// wrapping arithmetic.
type expiration struct {
	reference uint32
	dt        uint32
}

// Driver implements kernel.Driver for the alarm.
type Driver struct {
	clock Clock

	mu    sync.Mutex
	armed map[*kernel.Task]expiration
}

// New creates an alarm driver over the given clock.
func New(clock Clock) *Driver {
	return &Driver{
		clock: clock,
		armed: make(map[*kernel.Task]expiration),
	}
}

// Command implements kernel.Driver.Command.
func (d *Driver) Command(t *kernel.Task, cmd, arg0, arg1 uint32) kestrel.ReturnValue {
	switch cmd {
	case CommandExists:
		return kestrel.Success()

	case CommandFrequency:
		return kestrel.SuccessU32(d.clock.Frequency())

	case CommandNow:
		return kestrel.SuccessU32(d.clock.Now())

	case CommandStop:
		d.mu.Lock()
		delete(d.armed, t)
		d.mu.Unlock()
		return kestrel.Success()

	case CommandSet:
		// arg0 is the reference, arg1 the delta; the alarm fires at
		// reference+dt in wrapping tick space.
		d.mu.Lock()
		d.armed[t] = expiration{reference: arg0, dt: arg1}
		d.mu.Unlock()
		return kestrel.SuccessU32(arg0 + arg1)

	default:
		return kestrel.Failure(errno.NOSUPPORT)
	}
}

// CleanupTask implements kernel.TaskCleanup.CleanupTask.
func (d *Driver) CleanupTask(t *kernel.Task) {
	d.mu.Lock()
	delete(d.armed, t)
	d.mu.Unlock()
}

// Fire checks all armed alarms against the counter and schedules expiry
// upcalls for those whose interval has passed. The board calls this from
// its timer interrupt; tests call it directly.
func (d *Driver) Fire() {
	now := d.clock.Now()

	d.mu.Lock()
	var expired []*kernel.Task
	for t, e := range d.armed {
		if now-e.reference >= e.dt {
			expired = append(expired, t)
		}
	}
	refs := make(map[*kernel.Task]uint32, len(expired))
	for _, t := range expired {
		refs[t] = d.armed[t].reference
		delete(d.armed, t)
	}
	d.mu.Unlock()

	for _, t := range expired {
		t.ScheduleUpcall(DriverNum, SubscribeExpired, [4]uint32{now, refs[t], 0, 0})
	}
}

// Armed reports whether t currently has an alarm set.
func (d *Driver) Armed(t *kernel.Task) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.armed[t]
	return ok
}
