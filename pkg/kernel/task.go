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
	"fmt"

	"kestrelos.dev/kestrel/pkg/log"
	"kestrelos.dev/kestrel/pkg/sync"
	"kestrelos.dev/kestrel/pkg/usermem"
)

// ProcessID identifies a process. It is stable until the process
// terminates or restarts; a restarted process gets a new identifier even
// though the underlying memory may be reused.
type ProcessID int32

// TaskImage describes the address-space partitions of a process: a flash
// region holding code and read-only data, a RAM region for data, heap and
// stack, and a kernel-owned grant region carved off the top of RAM.
type TaskImage struct {
	// Flash is the executable, read-only region.
	Flash usermem.AddrRange

	// RAM is the read-write region. Addresses at or above GrantBase
	// belong to the kernel and are not accessible to the process.
	RAM usermem.AddrRange

	// GrantBase is the start of the grant region; it lies within RAM.
	GrantBase usermem.Addr

	// WritableFlash enumerates flash regions the process may ask the
	// kernel to rewrite, for memop queries.
	WritableFlash []usermem.AddrRange

	// Break is the initial memory break. Zero means RAM.Start.
	Break usermem.Addr
}

func (img TaskImage) validate() error {
	if !img.Flash.WellFormed() || !img.RAM.WellFormed() {
		return fmt.Errorf("malformed image regions %+v", img)
	}
	if img.Flash.Overlaps(img.RAM) {
		return fmt.Errorf("flash %v overlaps ram %v", img.Flash, img.RAM)
	}
	if img.GrantBase < img.RAM.Start || img.GrantBase > img.RAM.End {
		return fmt.Errorf("grant base %#x outside ram %v", img.GrantBase, img.RAM)
	}
	if img.Break != 0 && (img.Break < img.RAM.Start || img.Break > img.GrantBase) {
		return fmt.Errorf("break %#x outside app ram", img.Break)
	}
	for _, r := range img.WritableFlash {
		if !img.Flash.IsSupersetOf(r) {
			return fmt.Errorf("writable flash %v outside flash %v", r, img.Flash)
		}
	}
	return nil
}

// writableRange returns the partition the process may write: RAM below
// the grant region.
func (img TaskImage) writableRange() usermem.AddrRange {
	return usermem.AddrRange{Start: img.RAM.Start, End: img.GrantBase}
}

// UpcallInvoker executes a registered upcall on the process's own
// execution context. On hardware this is a frame pushed onto the process
// stack; in this model it is a hook supplied by the platform running the
// process, called from inside yield before the yield returns.
type UpcallInvoker interface {
	Invoke(entry usermem.Addr, data uint32, args [4]uint32)
}

// Task is the kernel side of one process.
type Task struct {
	id    ProcessID
	k     *Kernel
	image TaskImage
	mem   *usermem.BytesIO

	// invoker runs delivered upcalls. Set once before the task makes
	// its first syscall.
	invoker UpcallInvoker

	// mu protects everything below. pendingCond shares it.
	mu          sync.Mutex
	pendingCond *sync.Cond

	// brk is the current memory break within [RAM.Start, GrantBase].
	brk usermem.Addr

	// stackTop and heapStart are debug hints from memop 10/11.
	stackTop  usermem.Addr
	heapStart usermem.Addr

	// upcalls and buffers are the per-process slot arenas. A missing
	// key is the unset slot: null callback, (0,0) buffer.
	upcalls map[upcallKey]upcallSlot
	buffers map[bufferKey]usermem.AddrRange

	// pending is the upcall queue, FIFO across all keys.
	pending []pendingUpcall

	// dead is set when the process terminates or restarts. Slot state
	// is discarded at the same time, under mu, so no in-flight driver
	// completion can enqueue into a dead task.
	dead bool

	// completion is the code passed to exit.
	completion uint32
}

func newTask(k *Kernel, id ProcessID, image TaskImage) *Task {
	if image.Break == 0 {
		image.Break = image.RAM.Start
	}
	t := &Task{
		id:      id,
		k:       k,
		image:   image,
		mem:     usermem.NewBytesIO(image.RAM.Start, image.RAM.Length()),
		brk:     image.Break,
		upcalls: make(map[upcallKey]upcallSlot),
		buffers: make(map[bufferKey]usermem.AddrRange),
	}
	t.pendingCond = sync.NewCond(&t.mu)
	return t
}

// ID returns the process identifier.
func (t *Task) ID() ProcessID {
	return t.id
}

// Image returns the task's address-space description.
func (t *Task) Image() TaskImage {
	return t.image
}

// Memory returns the task's RAM mapping.
func (t *Task) Memory() usermem.IO {
	return t.mem
}

// SetInvoker installs the platform hook that executes delivered upcalls.
func (t *Task) SetInvoker(inv UpcallInvoker) {
	t.invoker = inv
}

// Dead returns whether the task has terminated.
func (t *Task) Dead() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dead
}

// CompletionCode returns the code the process passed to exit.
func (t *Task) CompletionCode() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completion
}

// exit tears the task down. Both slot arenas and the pending queue are
// discarded under mu, atomically with respect to any driver completion
// targeting this task. Safe to call more than once.
func (t *Task) exit(completion uint32) {
	t.mu.Lock()
	if t.dead {
		t.mu.Unlock()
		return
	}
	t.dead = true
	t.completion = completion
	t.upcalls = make(map[upcallKey]upcallSlot)
	t.buffers = make(map[bufferKey]usermem.AddrRange)
	t.pending = nil
	t.pendingCond.Broadcast()
	t.mu.Unlock()

	t.k.cleanupDrivers(t)
	t.k.dropTask(t)
	log.Infof("process %d exited with code %d", t.id, completion)
}

// Kill terminates the task from the kernel side, as if it had called
// exit-terminate. Used for faults and external shutdown.
func (t *Task) Kill() {
	t.exit(0)
}

// Restart tears the task down and creates its successor from the same
// image under a fresh identifier. The successor shares nothing with the
// dead task: new slot arenas, new memory, empty pending queue.
func (t *Task) restart(completion uint32) (*Task, error) {
	t.exit(completion)
	return t.k.NewTask(t.image)
}
