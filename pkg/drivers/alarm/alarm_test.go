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

package alarm

import (
	"testing"

	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/usermem"
)

// manualClock is a tick source advanced by hand.
type manualClock struct {
	now uint32
}

func (c *manualClock) Now() uint32       { return c.now }
func (c *manualClock) Frequency() uint32 { return 32768 }

// recordingInvoker captures delivered upcalls.
type recordingInvoker struct {
	args [][4]uint32
}

func (r *recordingInvoker) Invoke(entry usermem.Addr, data uint32, args [4]uint32) {
	r.args = append(r.args, args)
}

func newAlarmTask(t *testing.T) (*Driver, *kernel.Task, *recordingInvoker) {
	t.Helper()
	clock := &manualClock{}
	return newAlarmTaskWithClock(t, clock)
}

func newAlarmTaskWithClock(t *testing.T, clock Clock) (*Driver, *kernel.Task, *recordingInvoker) {
	t.Helper()
	k := kernel.New()
	d := New(clock)
	if err := k.InstallDriver(DriverNum, d); err != nil {
		t.Fatalf("InstallDriver: %v", err)
	}
	task, err := k.NewTask(kernel.TaskImage{
		Flash:     usermem.AddrRange{Start: 0x1000, End: 0x2000},
		RAM:       usermem.AddrRange{Start: 0x20000000, End: 0x20001000},
		GrantBase: 0x20000c00,
	})
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	inv := &recordingInvoker{}
	task.SetInvoker(inv)
	syscall(t, task, kestrel.Subscribe, [4]uint32{DriverNum, SubscribeExpired, 0x1100, 0})
	return d, task, inv
}

func syscall(t *testing.T, task *kernel.Task, class kestrel.SyscallClass, args [4]uint32) kestrel.ReturnValue {
	t.Helper()
	regs := kestrel.Registers{Class: class, R: args}
	ctl, _ := task.Syscall(&regs)
	if ctl != kernel.CtlReturn {
		t.Fatalf("%s: got ctl %v, wanted CtlReturn", class, ctl)
	}
	return kestrel.DecodeReturn(&regs.R)
}

// drain delivers every pending upcall.
func drain(t *testing.T, task *kernel.Task) {
	t.Helper()
	for task.PendingUpcalls() > 0 {
		syscall(t, task, kestrel.Yield, [4]uint32{kestrel.YieldNoWait, 0x20000000, 0, 0})
	}
}

func TestCommands(t *testing.T) {
	clock := &manualClock{now: 500}
	d, task, _ := newAlarmTaskWithClock(t, clock)

	rv := d.Command(task, CommandExists, 0, 0)
	if rv.Variant() != kestrel.VariantSuccess {
		t.Errorf("exists: got %v", rv)
	}
	rv = d.Command(task, CommandFrequency, 0, 0)
	if rv.Word(0) != 32768 {
		t.Errorf("frequency: got %d", rv.Word(0))
	}
	rv = d.Command(task, CommandNow, 0, 0)
	if rv.Word(0) != 500 {
		t.Errorf("now: got %d, wanted 500", rv.Word(0))
	}
	rv = d.Command(task, CommandSet, 500, 100)
	if rv.Variant() != kestrel.VariantSuccessU32 || rv.Word(0) != 600 {
		t.Errorf("set: got %v, wanted expiry 600", rv)
	}
	if !d.Armed(task) {
		t.Error("alarm not armed after set")
	}
}

func TestFire(t *testing.T) {
	clock := &manualClock{now: 1000}
	d, task, inv := newAlarmTaskWithClock(t, clock)
	d.Command(task, CommandSet, 1000, 50)

	// Not yet due.
	clock.now = 1040
	d.Fire()
	drain(t, task)
	if len(inv.args) != 0 {
		t.Fatalf("alarm fired early: %v", inv.args)
	}

	clock.now = 1055
	d.Fire()
	drain(t, task)
	if len(inv.args) != 1 {
		t.Fatalf("got %d expiries, wanted 1", len(inv.args))
	}
	if want := [4]uint32{1055, 1000, 0, 0}; inv.args[0] != want {
		t.Errorf("expiry args: got %v, wanted %v", inv.args[0], want)
	}

	// One-shot: a later tick must not fire again.
	if d.Armed(task) {
		t.Error("alarm still armed after expiry")
	}
	clock.now = 2000
	d.Fire()
	drain(t, task)
	if len(inv.args) != 1 {
		t.Errorf("alarm fired twice: %v", inv.args)
	}
}

func TestFireAcrossCounterWrap(t *testing.T) {
	clock := &manualClock{now: 0xfffffff0}
	d, task, inv := newAlarmTaskWithClock(t, clock)
	d.Command(task, CommandSet, 0xfffffff0, 0x20)

	clock.now = 0x8 // wrapped
	d.Fire()
	drain(t, task)
	if len(inv.args) != 0 {
		t.Fatal("alarm fired before the wrapped deadline")
	}

	clock.now = 0x10
	d.Fire()
	drain(t, task)
	if len(inv.args) != 1 {
		t.Errorf("got %d expiries across wrap, wanted 1", len(inv.args))
	}
}

func TestStop(t *testing.T) {
	clock := &manualClock{}
	d, task, inv := newAlarmTaskWithClock(t, clock)
	d.Command(task, CommandSet, 0, 10)
	d.Command(task, CommandStop, 0, 0)
	if d.Armed(task) {
		t.Error("alarm armed after stop")
	}

	clock.now = 100
	d.Fire()
	drain(t, task)
	if len(inv.args) != 0 {
		t.Errorf("stopped alarm fired: %v", inv.args)
	}
}

func TestCleanupOnExit(t *testing.T) {
	d, task, _ := newAlarmTask(t)
	d.Command(task, CommandSet, 0, 10)
	task.Kill()
	if d.Armed(task) {
		t.Error("alarm armed after task exit")
	}
}
