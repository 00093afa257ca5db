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

// Package ulib is the in-process userspace support library: typed call
// wrappers over the raw register interface, callback bookkeeping, and
// return-shape checking.
//
// This is the caller side of the boundary. It is the only place BADRVAL
// originates: the kernel never produces it, and an unrecognized variant
// tag from a newer kernel surfaces as an error here instead of a crash.
package ulib

import (
	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/log"
	"kestrelos.dev/kestrel/pkg/usermem"
)

// Upcall is a userspace callback. args are the up-to-four words supplied
// by the driver's completion; data is the opaque word registered alongside
// the callback.
type Upcall func(args [4]uint32, data uint32)

// Process is a userspace view of one task. It is not safe for concurrent
// use; a process has a single thread of control.
type Process struct {
	t *kernel.Task

	// entries maps allocated entry addresses to Go callbacks, standing
	// in for function pointers into the process's flash.
	entries   map[usermem.Addr]Upcall
	nextEntry usermem.Addr
}

// unwind values carried by the exit panic, recovered in Run.
type processExited struct{}
type processRestarted struct{ next *kernel.Task }

func newProcess(t *kernel.Task) *Process {
	p := &Process{
		t:       t,
		entries: make(map[usermem.Addr]Upcall),
		// Entry addresses come from the executable range. Skip the
		// first word so no callback collides with the null upcall
		// even if flash starts at 0.
		nextEntry: t.Image().Flash.Start + 4,
	}
	t.SetInvoker(p)
	return p
}

// Task returns the kernel side of the process.
func (p *Process) Task() *kernel.Task {
	return p.t
}

// Memory returns the process's RAM, for staging buffers before allowing
// them to drivers.
func (p *Process) Memory() usermem.IO {
	return p.t.Memory()
}

// Invoke implements kernel.UpcallInvoker.Invoke.
func (p *Process) Invoke(entry usermem.Addr, data uint32, args [4]uint32) {
	fn, ok := p.entries[entry]
	if !ok {
		// Delivery to an unmapped entry would mean the kernel broke
		// the purge rule.
		log.Warningf("process %d: upcall to unknown entry %#x", p.t.ID(), entry)
		return
	}
	fn(args, data)
}

// rawSyscall traps into the kernel with the given register file and
// decodes the result words. A successful exit does not come back here; it
// unwinds the app function instead.
func (p *Process) rawSyscall(class kestrel.SyscallClass, a0, a1, a2, a3 uint32) kestrel.ReturnValue {
	regs := kestrel.Registers{Class: class, R: [4]uint32{a0, a1, a2, a3}}
	ctl, next := p.t.Syscall(&regs)
	switch ctl {
	case kernel.CtlExit:
		panic(processExited{})
	case kernel.CtlRestart:
		panic(processRestarted{next: next})
	}
	return kestrel.DecodeReturn(&regs.R)
}

// Command invokes a driver command.
func (p *Process) Command(driver, cmd, arg0, arg1 uint32) kestrel.ReturnValue {
	return p.rawSyscall(kestrel.Command, driver, cmd, arg0, arg1)
}

// Subscribe registers fn (with its opaque data word) for the given
// (driver, subscribe id) slot, replacing and returning whatever was there.
// A nil fn registers the null upcall, cancelling the slot.
func (p *Process) Subscribe(driver, sub uint32, fn Upcall, data uint32) kestrel.ReturnValue {
	entry := usermem.Addr(kestrel.NullUpcall)
	if fn != nil {
		entry = p.allocEntry(fn)
	}
	rv := p.rawSyscall(kestrel.Subscribe, driver, sub, uint32(entry), data)
	if old, _, err := SubscribeReturn(rv); err == nil {
		// Ownership of the previous function pointer came back to
		// us; drop its mapping.
		if old != kestrel.NullUpcall && usermem.Addr(old) != entry {
			delete(p.entries, usermem.Addr(old))
		}
	} else if fn != nil {
		// Rejected registration: the callback was never installed.
		delete(p.entries, entry)
	}
	return rv
}

func (p *Process) allocEntry(fn Upcall) usermem.Addr {
	entry := p.nextEntry
	p.nextEntry += 4
	p.entries[entry] = fn
	return entry
}

// AllowReadWrite lends [addr, addr+size) to a driver as a mutable buffer
// and returns the previously lent range.
func (p *Process) AllowReadWrite(driver, buf uint32, addr usermem.Addr, size uint32) kestrel.ReturnValue {
	return p.rawSyscall(kestrel.ReadWriteAllow, driver, buf, uint32(addr), size)
}

// AllowReadOnly lends [addr, addr+size) to a driver as an immutable
// buffer and returns the previously lent range.
func (p *Process) AllowReadOnly(driver, buf uint32, addr usermem.Addr, size uint32) kestrel.ReturnValue {
	return p.rawSyscall(kestrel.ReadOnlyAllow, driver, buf, uint32(addr), size)
}

// YieldWait blocks until one upcall has been delivered.
func (p *Process) YieldWait() {
	p.rawSyscall(kestrel.Yield, kestrel.YieldWait, 0, 0, 0)
}

// YieldNoWait polls for one upcall, using the byte at flagAddr for the
// "did a callback run" signal. It returns that signal.
func (p *Process) YieldNoWait(flagAddr usermem.Addr) bool {
	p.rawSyscall(kestrel.Yield, kestrel.YieldNoWait, uint32(flagAddr), 0, 0)
	flag := []byte{0}
	if _, err := p.t.Memory().CopyIn(flagAddr, flag); err != nil {
		return false
	}
	return flag[0] == 1
}

// Memop performs an address-space metadata operation.
func (p *Process) Memop(op, operand uint32) kestrel.ReturnValue {
	return p.rawSyscall(kestrel.Memop, op, operand, 0, 0)
}

// Exit terminates the process. It does not return on success.
func (p *Process) Exit(code uint32) {
	p.rawSyscall(kestrel.Exit, kestrel.ExitTerminate, code, 0, 0)
}

// Restart terminates the process and asks for a successor under a new
// identifier. It does not return on success.
func (p *Process) Restart(code uint32) {
	p.rawSyscall(kestrel.Exit, kestrel.ExitRestart, code, 0, 0)
}
