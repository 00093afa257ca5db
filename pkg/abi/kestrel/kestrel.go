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

// Package kestrel contains constants and types of the Kestrel syscall ABI:
// the 8-bit syscall class space, the fixed 4-word register file, and the
// tagged return-variant encoding.
//
// This is a compatibility contract, not an internal choice. Userspace call
// sites place arguments by register position and branch on numeric variant
// tags, so nothing in this package may be renumbered.
package kestrel

import "fmt"

// SyscallClass selects the shape and semantics of a syscall. It travels
// out-of-band from the four argument words (in the trap immediate on real
// hardware).
type SyscallClass uint8

const (
	// Yield drains at most one pending upcall.
	Yield SyscallClass = 0

	// Subscribe registers, replaces or removes an upcall for a
	// (driver, subscribe id) pair.
	Subscribe SyscallClass = 1

	// Command invokes a driver-defined synchronous operation.
	Command SyscallClass = 2

	// ReadWriteAllow lends a mutable buffer to the kernel.
	ReadWriteAllow SyscallClass = 3

	// ReadOnlyAllow lends an immutable buffer to the kernel.
	ReadOnlyAllow SyscallClass = 4

	// Memop queries or adjusts address-space metadata.
	Memop SyscallClass = 5

	// Exit terminates or restarts the calling process.
	Exit SyscallClass = 6
)

// String implements fmt.Stringer.String.
func (c SyscallClass) String() string {
	switch c {
	case Yield:
		return "yield"
	case Subscribe:
		return "subscribe"
	case Command:
		return "command"
	case ReadWriteAllow:
		return "read-write allow"
	case ReadOnlyAllow:
		return "read-only allow"
	case Memop:
		return "memop"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("unknown class %d", uint8(c))
	}
}

// Yield identifiers, passed in argument word 0 of the Yield class.
const (
	// YieldNoWait delivers one upcall if any is pending and returns
	// immediately, recording whether one ran in the flag byte addressed
	// by argument word 1.
	YieldNoWait = 0

	// YieldWait suspends the process until an upcall is pending, then
	// delivers exactly one.
	YieldWait = 1
)

// Exit identifiers, passed in argument word 0 of the Exit class.
const (
	// ExitTerminate discards the process. Never returns on success.
	ExitTerminate = 0

	// ExitRestart discards the process and asks the kernel to
	// reinstantiate it under a new process identifier.
	ExitRestart = 1
)

// Memop operations, passed in argument word 0 of the Memop class. All are
// stateless queries or hints; all fail with the bare Failure variant.
const (
	// MemopBrk sets the process break to the operand address.
	MemopBrk = 0

	// MemopSBrk moves the break by a signed operand delta and returns
	// the previous break.
	MemopSBrk = 1

	// MemopRAMStart returns the start of the process's RAM region.
	MemopRAMStart = 2

	// MemopRAMEnd returns the first address after the process's RAM.
	MemopRAMEnd = 3

	// MemopFlashStart returns the start of the process's flash region.
	MemopFlashStart = 4

	// MemopFlashEnd returns the first address after the process's flash.
	MemopFlashEnd = 5

	// MemopGrantBase returns the start of the kernel-owned grant region.
	MemopGrantBase = 6

	// MemopFlashRegions returns the number of writeable flash regions.
	MemopFlashRegions = 7

	// MemopFlashRegionStart returns the start of writeable flash region
	// number operand.
	MemopFlashRegionStart = 8

	// MemopFlashRegionEnd returns the first address after writeable
	// flash region number operand.
	MemopFlashRegionEnd = 9

	// MemopSpecifyStackTop records the operand as the top of the
	// process stack, for debugging output.
	MemopSpecifyStackTop = 10

	// MemopSpecifyHeapStart records the operand as the start of the
	// process heap, for debugging output.
	MemopSpecifyHeapStart = 11
)

// NumMemops is the number of defined memop operations.
const NumMemops = 12

// NullUpcall is the sentinel callback address meaning "no callback
// registered". It must never be treated as an invocable entry point.
const NullUpcall = 0
