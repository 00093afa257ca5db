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

// Package console provides the console driver: byte-stream output from a
// lent read-only buffer and input into a lent read-write buffer.
//
// Writes drain to the board's writer before the command returns, but the
// completion still arrives as an upcall, preserving the asynchronous
// contract. Reads arm the driver; input arriving via PushInput completes
// them.
package console

import (
	"io"

	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/log"
	"kestrelos.dev/kestrel/pkg/sync"
)

// DriverNum is the console driver identifier.
const DriverNum = 0x1

// Buffer identifiers.
const (
	// ReadWriteBufferRead receives input (read-write allow).
	ReadWriteBufferRead = 1

	// ReadOnlyBufferWrite holds output (read-only allow).
	ReadOnlyBufferWrite = 1
)

// Subscribe identifiers.
const (
	// SubscribeWriteDone fires when a write completes. Arguments:
	// bytes written.
	SubscribeWriteDone = 1

	// SubscribeReadDone fires when a read completes or aborts.
	// Arguments: status errno (0 for success), bytes read.
	SubscribeReadDone = 2
)

// Command identifiers.
const (
	CommandExists    = 0
	CommandWrite     = 1
	CommandRead      = 2
	CommandAbortRead = 3
)

// Driver implements kernel.Driver for the console.
type Driver struct {
	w io.Writer

	mu sync.Mutex

	// reading maps a task with an armed read to the number of bytes it
	// asked for.
	reading map[*kernel.Task]uint32
}

// New creates a console driver writing output to w.
func New(w io.Writer) *Driver {
	return &Driver{
		w:       w,
		reading: make(map[*kernel.Task]uint32),
	}
}

// Command implements kernel.Driver.Command.
func (d *Driver) Command(t *kernel.Task, cmd, arg0, arg1 uint32) kestrel.ReturnValue {
	switch cmd {
	case CommandExists:
		return kestrel.Success()

	case CommandWrite:
		return d.write(t, arg0)

	case CommandRead:
		if arg0 == 0 {
			return kestrel.Failure(errno.INVALID)
		}
		d.mu.Lock()
		if _, busy := d.reading[t]; busy {
			d.mu.Unlock()
			return kestrel.Failure(errno.BUSY)
		}
		d.reading[t] = arg0
		d.mu.Unlock()
		return kestrel.Success()

	case CommandAbortRead:
		d.mu.Lock()
		_, armed := d.reading[t]
		delete(d.reading, t)
		d.mu.Unlock()
		if armed {
			t.ScheduleUpcall(DriverNum, SubscribeReadDone, [4]uint32{uint32(errno.CANCEL), 0, 0, 0})
		}
		return kestrel.Success()

	default:
		return kestrel.Failure(errno.NOSUPPORT)
	}
}

// write drains up to n bytes of the lent write buffer to the board writer
// and schedules the write-done upcall.
func (d *Driver) write(t *kernel.Task, n uint32) kestrel.ReturnValue {
	rng := t.AllowedReadOnly(DriverNum, ReadOnlyBufferWrite)
	if rng.IsEmpty() {
		// Nothing lent: the process skipped the allow step.
		return kestrel.Failure(errno.RESERVE)
	}
	if n > rng.Length() {
		n = rng.Length()
	}
	data, err := t.ReadAllowed(rng)
	if err != nil {
		return kestrel.Failure(errno.FAIL)
	}
	written, err := d.w.Write(data[:n])
	if err != nil {
		log.Warningf("console: write for process %d: %v", t.ID(), err)
		return kestrel.Failure(errno.FAIL)
	}
	t.ScheduleUpcall(DriverNum, SubscribeWriteDone, [4]uint32{uint32(written), 0, 0, 0})
	return kestrel.Success()
}

// CleanupTask implements kernel.TaskCleanup.CleanupTask.
func (d *Driver) CleanupTask(t *kernel.Task) {
	d.mu.Lock()
	delete(d.reading, t)
	d.mu.Unlock()
}

// PushInput delivers received bytes to every task with an armed read. The
// board wires this to its UART receive path. Bytes are copied into each
// task's lent read buffer, truncated to the armed length and the buffer
// size, and the read-done upcall is scheduled.
func (d *Driver) PushInput(data []byte) {
	d.mu.Lock()
	readers := make(map[*kernel.Task]uint32, len(d.reading))
	for t, want := range d.reading {
		readers[t] = want
		delete(d.reading, t)
	}
	d.mu.Unlock()

	for t, want := range readers {
		rng := t.AllowedReadWrite(DriverNum, ReadWriteBufferRead)
		n := uint32(len(data))
		if n > want {
			n = want
		}
		copied, err := t.WriteAllowed(rng, data[:n])
		if err != nil {
			t.ScheduleUpcall(DriverNum, SubscribeReadDone, [4]uint32{uint32(errno.FAIL), 0, 0, 0})
			continue
		}
		t.ScheduleUpcall(DriverNum, SubscribeReadDone, [4]uint32{0, uint32(copied), 0, 0})
	}
}
