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

package ros

import (
	"encoding/binary"
	"testing"

	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/usermem"
)

const regionAddr = 0x20000100

// manualClock is a tick source advanced by hand.
type manualClock struct {
	now uint32
}

func (c *manualClock) Now() uint32       { return c.now }
func (c *manualClock) Frequency() uint32 { return 1000 }

func newROSTask(t *testing.T) (*Driver, *kernel.Task, *manualClock) {
	t.Helper()
	k := kernel.New()
	clock := &manualClock{}
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
	return d, task, clock
}

func lendRegion(t *testing.T, task *kernel.Task, size uint32) {
	t.Helper()
	regs := kestrel.Registers{
		Class: kestrel.ReadWriteAllow,
		R:     [4]uint32{DriverNum, ReadWriteBufferRegion, regionAddr, size},
	}
	task.Syscall(&regs)
	rv := kestrel.DecodeReturn(&regs.R)
	if rv.Variant() != kestrel.VariantSuccessU32U32 {
		t.Fatalf("allow: got %v", rv)
	}
}

func readRegion(t *testing.T, task *kernel.Task, size uint32) []byte {
	t.Helper()
	buf := make([]byte, size)
	if _, err := task.Memory().CopyIn(regionAddr, buf); err != nil {
		t.Fatalf("CopyIn: %v", err)
	}
	return buf
}

func TestCommands(t *testing.T) {
	d, task, _ := newROSTask(t)
	rv := d.Command(task, CommandExists, 0, 0)
	if rv.Variant() != kestrel.VariantSuccess {
		t.Errorf("exists: got %v", rv)
	}
	rv = d.Command(task, CommandVersion, 0, 0)
	if rv.Variant() != kestrel.VariantSuccessU32 || rv.Word(0) != Version {
		t.Errorf("version: got %v, wanted %d", rv, Version)
	}
}

func TestUpdateValues(t *testing.T) {
	d, task, clock := newROSTask(t)
	lendRegion(t, task, 16)
	clock.now = 0x1234

	d.UpdateValues(task)
	buf := readRegion(t, task, 16)
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != 0 {
		t.Errorf("update count: got %d, wanted 0", got)
	}
	if got := binary.LittleEndian.Uint32(buf[4:8]); got != 0 {
		t.Errorf("pending upcalls: got %d, wanted 0", got)
	}
	if got := binary.LittleEndian.Uint64(buf[8:16]); got != 0x1234 {
		t.Errorf("ticks: got %#x, wanted 0x1234", got)
	}

	// The count advances with every refresh.
	d.UpdateValues(task)
	buf = readRegion(t, task, 16)
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != 1 {
		t.Errorf("update count: got %d, wanted 1", got)
	}
}

func TestUpdateValuesShortRegion(t *testing.T) {
	d, task, clock := newROSTask(t)
	clock.now = 0xbeef

	// An 8-byte region sees only the count and the pending field; the
	// ticks field would not fit in full.
	lendRegion(t, task, 8)
	d.UpdateValues(task)
	buf := readRegion(t, task, 12)
	if got := binary.LittleEndian.Uint32(buf[8:12]); got != 0 {
		t.Errorf("bytes past the region were written: %#x", got)
	}

	// Too short for any field: nothing is written.
	lendRegion(t, task, 0) // reclaim
	lendRegion(t, task, 2)
	stale := readRegion(t, task, 2)
	d.UpdateValues(task)
	if got := readRegion(t, task, 2); got[0] != stale[0] || got[1] != stale[1] {
		t.Errorf("2-byte region was written: %v", got)
	}
}

func TestUpdateValuesNoRegion(t *testing.T) {
	d, task, _ := newROSTask(t)
	// Nothing lent: must be a no-op.
	d.UpdateValues(task)
}

func TestCleanupResetsCount(t *testing.T) {
	d, task, _ := newROSTask(t)
	lendRegion(t, task, 16)
	d.UpdateValues(task)
	d.UpdateValues(task)
	d.CleanupTask(task)

	lendRegion(t, task, 0)
	lendRegion(t, task, 16)
	d.UpdateValues(task)
	buf := readRegion(t, task, 4)
	if got := binary.LittleEndian.Uint32(buf); got != 0 {
		t.Errorf("count after cleanup: got %d, wanted 0", got)
	}
}
