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

package mlx90614

import (
	"errors"
	"testing"

	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/usermem"
)

// fakeBus serves register reads from a map; missing registers answer with
// a no-acknowledge error.
type fakeBus struct {
	regs map[uint8]uint16
}

var errNoDevice = errors.New("no acknowledge")

func (b *fakeBus) ReadWord(reg uint8) (uint16, error) {
	v, ok := b.regs[reg]
	if !ok {
		return 0, errNoDevice
	}
	return v, nil
}

// recordingInvoker captures delivered upcalls.
type recordingInvoker struct {
	args [][4]uint32
}

func (r *recordingInvoker) Invoke(entry usermem.Addr, data uint32, args [4]uint32) {
	r.args = append(r.args, args)
}

func newSensorTask(t *testing.T, bus Transport) (*Driver, *kernel.Task, *recordingInvoker) {
	t.Helper()
	k := kernel.New()
	d := New(bus)
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
	regs := kestrel.Registers{
		Class: kestrel.Subscribe,
		R:     [4]uint32{DriverNum, SubscribeReading, 0x1100, 0},
	}
	task.Syscall(&regs)
	return d, task, inv
}

func drain(t *testing.T, task *kernel.Task) {
	t.Helper()
	for task.PendingUpcalls() > 0 {
		regs := kestrel.Registers{
			Class: kestrel.Yield,
			R:     [4]uint32{kestrel.YieldNoWait, 0x20000000, 0, 0},
		}
		task.Syscall(&regs)
	}
}

func TestIsPresent(t *testing.T) {
	d, task, inv := newSensorTask(t, &fakeBus{regs: map[uint8]uint16{regID: presentID}})
	rv := d.Command(task, CommandIsPresent, 0, 0)
	if rv.Variant() != kestrel.VariantSuccess {
		t.Fatalf("is-present: got %v", rv)
	}
	d.CommandComplete()
	drain(t, task)
	if len(inv.args) != 1 {
		t.Fatalf("got %d readings, wanted 1", len(inv.args))
	}
	if want := [4]uint32{0, 1, 0, 0}; inv.args[0] != want {
		t.Errorf("is-present reading: got %v, wanted %v", inv.args[0], want)
	}
}

func TestIsPresentWrongID(t *testing.T) {
	d, task, inv := newSensorTask(t, &fakeBus{regs: map[uint8]uint16{regID: 17}})
	d.Command(task, CommandIsPresent, 0, 0)
	d.CommandComplete()
	drain(t, task)
	if len(inv.args) != 1 || inv.args[0][1] != 0 {
		t.Errorf("foreign device reported present: %v", inv.args)
	}
}

func TestAmbientTemperature(t *testing.T) {
	// Raw 0x3aa3 is 300.22 K, which is 27.22 degrees C.
	d, task, inv := newSensorTask(t, &fakeBus{regs: map[uint8]uint16{regAmbientTemp: 0x3aa3}})
	rv := d.Command(task, CommandAmbientTemp, 0, 0)
	if rv.Variant() != kestrel.VariantSuccess {
		t.Fatalf("ambient: got %v", rv)
	}
	d.CommandComplete()
	drain(t, task)
	if len(inv.args) != 1 {
		t.Fatalf("got %d readings, wanted 1", len(inv.args))
	}
	want := uint32(0x3aa3)*2 - 27300
	if inv.args[0][0] != 0 || inv.args[0][1] != want {
		t.Errorf("ambient reading: got %v, wanted (0, %d)", inv.args[0], want)
	}
}

func TestObjectTemperatureNoDevice(t *testing.T) {
	d, task, inv := newSensorTask(t, &fakeBus{})
	d.Command(task, CommandObjectTemp, 0, 0)
	d.CommandComplete()
	drain(t, task)
	if len(inv.args) != 1 {
		t.Fatalf("got %d readings, wanted 1", len(inv.args))
	}
	if inv.args[0][0] != uint32(errno.NOACK) {
		t.Errorf("missing device: got status %d, wanted NOACK", inv.args[0][0])
	}
}

func TestBusyWhileInFlight(t *testing.T) {
	d, task, _ := newSensorTask(t, &fakeBus{regs: map[uint8]uint16{regAmbientTemp: 0x3a00}})
	d.Command(task, CommandAmbientTemp, 0, 0)
	rv := d.Command(task, CommandObjectTemp, 0, 0)
	if rv.Variant() != kestrel.VariantFailure || rv.Errno() != errno.BUSY {
		t.Errorf("second command in flight: got %v, wanted BUSY", rv)
	}

	// Completion frees the driver.
	d.CommandComplete()
	rv = d.Command(task, CommandObjectTemp, 0, 0)
	if rv.Variant() == kestrel.VariantFailure {
		t.Errorf("command after completion: got %v", rv)
	}
}

func TestUnknownCommand(t *testing.T) {
	d, task, _ := newSensorTask(t, &fakeBus{})
	rv := d.Command(task, 9, 0, 0)
	if rv.Errno() != errno.NOSUPPORT {
		t.Errorf("unknown command: got %v, wanted NOSUPPORT", rv)
	}
}

func TestCleanupCancelsTransaction(t *testing.T) {
	d, task, inv := newSensorTask(t, &fakeBus{regs: map[uint8]uint16{regAmbientTemp: 0x3a00}})
	d.Command(task, CommandAmbientTemp, 0, 0)
	task.Kill()
	d.CommandComplete()
	drain(t, task)
	if len(inv.args) != 0 {
		t.Errorf("dead task received a reading: %v", inv.args)
	}
}
