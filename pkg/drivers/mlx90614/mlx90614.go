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

// Package mlx90614 provides a driver for the MLX90614 infrared
// thermometer on an SMBus-style transport.
//
// Commands start a bus transaction and return; the result arrives as an
// upcall when the transaction completes. The driver serves one
// transaction at a time and answers BUSY until the current one finishes.
package mlx90614

import (
	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/sync"
)

// DriverNum is the thermometer driver identifier.
const DriverNum = 0x60006

// Device registers.
const (
	regRawIR1      = 0x04
	regAmbientTemp = 0x06
	regObjectTemp  = 0x07
	regID          = 0x0E
)

// presentID is the word a live sensor answers from the ID register.
const presentID = 60

// Subscribe identifiers.
const (
	// SubscribeReading fires when a transaction completes. Arguments:
	// status errno (0 for success), value.
	SubscribeReading = 0
)

// Command identifiers.
const (
	CommandExists      = 0
	CommandIsPresent   = 1
	CommandAmbientTemp = 2
	CommandObjectTemp  = 3
)

// Transport is the SMBus word-read primitive the driver runs on.
type Transport interface {
	// ReadWord reads a 16-bit register. An error models a missing or
	// unresponsive device (no acknowledge).
	ReadWord(reg uint8) (uint16, error)
}

type state int

const (
	idle state = iota
	isPresent
	readAmbient
	readObject
)

// Driver implements kernel.Driver for the thermometer.
type Driver struct {
	bus Transport

	mu      sync.Mutex
	state   state
	pending *kernel.Task
}

// New creates a thermometer driver over the given transport.
func New(bus Transport) *Driver {
	return &Driver{bus: bus}
}

// Command implements kernel.Driver.Command.
func (d *Driver) Command(t *kernel.Task, cmd, arg0, arg1 uint32) kestrel.ReturnValue {
	if cmd == CommandExists {
		return kestrel.Success()
	}

	var next state
	switch cmd {
	case CommandIsPresent:
		next = isPresent
	case CommandAmbientTemp:
		next = readAmbient
	case CommandObjectTemp:
		next = readObject
	default:
		return kestrel.Failure(errno.NOSUPPORT)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != idle {
		return kestrel.Failure(errno.BUSY)
	}
	d.state = next
	d.pending = t
	return kestrel.Success()
}

// CleanupTask implements kernel.TaskCleanup.CleanupTask.
func (d *Driver) CleanupTask(t *kernel.Task) {
	d.mu.Lock()
	if d.pending == t {
		d.state = idle
		d.pending = nil
	}
	d.mu.Unlock()
}

// CommandComplete finishes the in-flight transaction: it performs the bus
// read and schedules the result upcall. The board wires this to the bus
// interrupt; tests call it directly. A failed read reports NOACK.
func (d *Driver) CommandComplete() {
	d.mu.Lock()
	st := d.state
	t := d.pending
	d.state = idle
	d.pending = nil
	d.mu.Unlock()

	if st == idle || t == nil {
		return
	}

	switch st {
	case isPresent:
		id, err := d.bus.ReadWord(regID)
		present := uint32(0)
		if err == nil && id == presentID {
			present = 1
		}
		t.ScheduleUpcall(DriverNum, SubscribeReading, [4]uint32{0, present, 0, 0})

	case readAmbient, readObject:
		reg := uint8(regAmbientTemp)
		if st == readObject {
			reg = regObjectTemp
		}
		raw, err := d.bus.ReadWord(reg)
		if err != nil {
			t.ScheduleUpcall(DriverNum, SubscribeReading, [4]uint32{uint32(errno.NOACK), 0, 0, 0})
			return
		}
		// Raw units of 0.02K to centi-degrees Celsius.
		temp := uint32(raw)*2 - 27300
		t.ScheduleUpcall(DriverNum, SubscribeReading, [4]uint32{0, temp, 0, 0})
	}
}
