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

// Package kernel provides the syscall boundary of a Kestrel kernel: the
// capability table mapping driver identifiers to installed drivers, the
// per-process upcall and buffer-ownership registries, the yield engine,
// and the memop and exit handlers.
//
// Processes are isolated by construction rather than by an MPU: each Task
// owns its image, its slot arenas and its pending-upcall queue, and they
// are reachable only through the Task. All cross-boundary results are
// tagged return variants; no error crosses as a Go panic.
package kernel

import (
	"fmt"
	"sort"

	"kestrelos.dev/kestrel/pkg/log"
	"kestrelos.dev/kestrel/pkg/sync"
)

// Kernel owns the driver capability table and the live task set.
type Kernel struct {
	mu sync.Mutex

	// drivers is the capability table. Installation happens at build
	// time, before any task runs, and is append-only.
	drivers map[uint32]Driver

	// tasks holds all live tasks by process identifier.
	tasks map[ProcessID]*Task

	// nextID is the next process identifier. Identifiers are never
	// reused, even across restart of the same image.
	nextID ProcessID
}

// New creates a Kernel with an empty capability table.
func New() *Kernel {
	return &Kernel{
		drivers: make(map[uint32]Driver),
		tasks:   make(map[ProcessID]*Task),
		nextID:  1,
	}
}

// InstallDriver binds d to the given driver identifier. Installing two
// drivers under one identifier is a board-configuration bug.
func (k *Kernel) InstallDriver(num uint32, d Driver) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, dup := k.drivers[num]; dup {
		return fmt.Errorf("driver %#x already installed", num)
	}
	k.drivers[num] = d
	log.Infof("installed driver %#x", num)
	return nil
}

// Driver looks up the driver for num in the capability table.
func (k *Kernel) Driver(num uint32) (Driver, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	d, ok := k.drivers[num]
	return d, ok
}

// DriverNumbers returns the installed driver identifiers in ascending
// order.
func (k *Kernel) DriverNumbers() []uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	nums := make([]uint32, 0, len(k.drivers))
	for num := range k.drivers {
		nums = append(nums, num)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// NewTask creates a process from the given image. The returned task has a
// fresh identifier and empty slot arenas.
func (k *Kernel) NewTask(image TaskImage) (*Task, error) {
	if err := image.validate(); err != nil {
		return nil, err
	}
	k.mu.Lock()
	id := k.nextID
	k.nextID++
	t := newTask(k, id, image)
	k.tasks[id] = t
	k.mu.Unlock()
	log.Infof("created process %d: flash %#x-%#x ram %#x-%#x grant %#x",
		id, image.Flash.Start, image.Flash.End, image.RAM.Start, image.RAM.End, image.GrantBase)
	return t, nil
}

// TaskWithID returns the task with the given identifier, or nil.
func (k *Kernel) TaskWithID(id ProcessID) *Task {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tasks[id]
}

// cleanupDrivers runs driver-side cleanup for a dying task. Called after
// the task's own state has been torn down.
func (k *Kernel) cleanupDrivers(t *Task) {
	k.mu.Lock()
	ds := make([]Driver, 0, len(k.drivers))
	for _, d := range k.drivers {
		ds = append(ds, d)
	}
	k.mu.Unlock()
	for _, d := range ds {
		if c, ok := d.(TaskCleanup); ok {
			c.CleanupTask(t)
		}
	}
}

// dropTask removes a dead task from the live set.
func (k *Kernel) dropTask(t *Task) {
	k.mu.Lock()
	delete(k.tasks, t.id)
	k.mu.Unlock()
}
