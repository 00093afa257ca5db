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

// Package ros provides read-only system calls: the kernel proactively
// writes frequently read values into a process-lent region, so the
// process reads them from memory instead of trapping.
//
// The values are only as fresh as the last time the kernel scheduled the
// process. Region layout, version 1, little-endian:
//
//	offset 0: update count (u32)
//	offset 4: pending upcalls (u32)
//	offset 8: time ticks (u64)
//
// Versions only append fields. Userspace discovers the version with
// command 1.
package ros

import (
	"encoding/binary"

	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/drivers/alarm"
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/sync"
)

// DriverNum is the read-only-syscalls driver identifier.
const DriverNum = 0x10001

// Version is the layout version of the shared region.
const Version = 1

// Buffer identifiers.
const (
	// ReadWriteBufferRegion is the shared region (read-write allow).
	// Written by the kernel, only read by the process.
	ReadWriteBufferRegion = 0
)

// Command identifiers.
const (
	CommandExists  = 0
	CommandVersion = 1
)

// Driver implements kernel.Driver for read-only syscalls.
type Driver struct {
	clock alarm.Clock

	mu     sync.Mutex
	counts map[kernel.ProcessID]uint32
}

// New creates a read-only-syscalls driver stamping ticks from clock.
func New(clock alarm.Clock) *Driver {
	return &Driver{
		clock:  clock,
		counts: make(map[kernel.ProcessID]uint32),
	}
}

// Command implements kernel.Driver.Command.
func (d *Driver) Command(t *kernel.Task, cmd, arg0, arg1 uint32) kestrel.ReturnValue {
	switch cmd {
	case CommandExists:
		return kestrel.Success()
	case CommandVersion:
		return kestrel.SuccessU32(Version)
	default:
		return kestrel.Failure(errno.NOSUPPORT)
	}
}

// CleanupTask implements kernel.TaskCleanup.CleanupTask.
func (d *Driver) CleanupTask(t *kernel.Task) {
	d.mu.Lock()
	delete(d.counts, t.ID())
	d.mu.Unlock()
}

// UpdateValues refreshes the shared region of t. The board calls this at
// every schedule point. Fields are written only if the lent region covers
// them in full, so short regions see a prefix of the layout.
func (d *Driver) UpdateValues(t *kernel.Task) {
	rng := t.AllowedReadWrite(DriverNum, ReadWriteBufferRegion)
	if rng.IsEmpty() {
		return
	}

	d.mu.Lock()
	count := d.counts[t.ID()]
	d.counts[t.ID()] = count + 1
	d.mu.Unlock()

	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], count)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(t.PendingUpcalls()))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(d.clock.Now()))

	n := rng.Length()
	switch {
	case n >= 16:
		n = 16
	case n >= 8:
		n = 8
	case n >= 4:
		n = 4
	default:
		return
	}
	t.WriteAllowed(rng, buf[:n])
}
