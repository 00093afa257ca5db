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
	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/usermem"
)

// memop implements the Memop class: stateless, idempotent queries and
// hints over the task's address-space metadata. Every operation shares the
// bare Failure variant; success variants are per-operation.
func (t *Task) memop(op, operand uint32) kestrel.ReturnValue {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch op {
	case kestrel.MemopBrk:
		addr := usermem.Addr(operand)
		if addr < t.image.RAM.Start || addr > t.image.GrantBase {
			return kestrel.Failure(errno.NOMEM)
		}
		t.brk = addr
		return kestrel.Success()

	case kestrel.MemopSBrk:
		old := t.brk
		next := usermem.Addr(uint32(old) + operand) // operand is a signed delta
		if next < t.image.RAM.Start || next > t.image.GrantBase {
			return kestrel.Failure(errno.NOMEM)
		}
		t.brk = next
		return kestrel.SuccessU32(uint32(old))

	case kestrel.MemopRAMStart:
		return kestrel.SuccessU32(uint32(t.image.RAM.Start))

	case kestrel.MemopRAMEnd:
		return kestrel.SuccessU32(uint32(t.image.RAM.End))

	case kestrel.MemopFlashStart:
		return kestrel.SuccessU32(uint32(t.image.Flash.Start))

	case kestrel.MemopFlashEnd:
		return kestrel.SuccessU32(uint32(t.image.Flash.End))

	case kestrel.MemopGrantBase:
		return kestrel.SuccessU32(uint32(t.image.GrantBase))

	case kestrel.MemopFlashRegions:
		return kestrel.SuccessU32(uint32(len(t.image.WritableFlash)))

	case kestrel.MemopFlashRegionStart:
		if int(operand) >= len(t.image.WritableFlash) {
			return kestrel.Failure(errno.INVALID)
		}
		return kestrel.SuccessU32(uint32(t.image.WritableFlash[operand].Start))

	case kestrel.MemopFlashRegionEnd:
		if int(operand) >= len(t.image.WritableFlash) {
			return kestrel.Failure(errno.INVALID)
		}
		return kestrel.SuccessU32(uint32(t.image.WritableFlash[operand].End))

	case kestrel.MemopSpecifyStackTop:
		t.stackTop = usermem.Addr(operand)
		return kestrel.Success()

	case kestrel.MemopSpecifyHeapStart:
		t.heapStart = usermem.Addr(operand)
		return kestrel.Success()

	default:
		return kestrel.Failure(errno.NOSUPPORT)
	}
}

// Break returns the task's current memory break.
func (t *Task) Break() usermem.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.brk
}
