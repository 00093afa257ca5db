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

// bufferKey addresses one allow slot. Read-write and read-only buffers
// occupy separate slot spaces for the same (driver, buffer id) pair.
type bufferKey struct {
	driver   uint32
	buffer   uint32
	readOnly bool
}

// allow implements the two Allow classes for this task. The slot swap is
// the ownership transfer: on success the new range belongs to the kernel
// and the previous range, returned to the caller, belongs to the process
// again. The first swap on a slot returns (0,0).
func (t *Task) allow(readOnly bool, driverNum, bufNum uint32, addr usermem.Addr, size uint32) kestrel.ReturnValue {
	if _, ok := t.k.Driver(driverNum); !ok {
		return kestrel.FailureU32U32(errno.NOSUPPORT, uint32(addr), size)
	}

	rng := usermem.AddrRange{Start: addr, End: addr}
	if size != 0 {
		var ok bool
		rng, ok = addr.ToRange(size)
		if !ok || !t.allowable(readOnly, rng) {
			return kestrel.FailureU32U32(errno.INVALID, uint32(addr), size)
		}
	}

	key := bufferKey{driver: driverNum, buffer: bufNum, readOnly: readOnly}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dead {
		return kestrel.FailureU32U32(errno.NOSUPPORT, uint32(addr), size)
	}
	prev := t.buffers[key]

	// The process no longer owns the lent range, so it cannot name any
	// part of it in a new allow. Reclaiming with a zero-length buffer
	// first is the only way to resize in place.
	if !rng.IsEmpty() && !prev.IsEmpty() && rng.Overlaps(prev) {
		return kestrel.FailureU32U32(errno.INVALID, uint32(addr), size)
	}

	t.buffers[key] = rng
	return kestrel.SuccessU32U32(uint32(prev.Start), prev.Length())
}

// allowable checks a non-empty candidate range against the partition the
// class may reference: read-write allows come from the process's writable
// RAM; read-only allows may also come from flash.
func (t *Task) allowable(readOnly bool, rng usermem.AddrRange) bool {
	if t.image.writableRange().IsSupersetOf(rng) {
		return true
	}
	return readOnly && t.image.Flash.IsSupersetOf(rng)
}

// AllowedReadWrite returns the read-write buffer currently lent to driver
// driverNum under bufNum. An empty range means no buffer is lent.
func (t *Task) AllowedReadWrite(driverNum, bufNum uint32) usermem.AddrRange {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buffers[bufferKey{driver: driverNum, buffer: bufNum}]
}

// AllowedReadOnly returns the read-only buffer currently lent to driver
// driverNum under bufNum.
func (t *Task) AllowedReadOnly(driverNum, bufNum uint32) usermem.AddrRange {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buffers[bufferKey{driver: driverNum, buffer: bufNum, readOnly: true}]
}

// ReadAllowed copies out the contents of a lent buffer. Read-only buffers
// may live in flash, which is not part of the RAM mapping; flash reads
// come back zero-filled since images here carry no flash contents.
func (t *Task) ReadAllowed(rng usermem.AddrRange) ([]byte, error) {
	buf := make([]byte, rng.Length())
	if rng.IsEmpty() {
		return buf, nil
	}
	if t.image.Flash.IsSupersetOf(rng) {
		return buf, nil
	}
	if _, err := t.mem.CopyIn(rng.Start, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteAllowed copies src into a lent read-write buffer, truncating to the
// buffer length.
func (t *Task) WriteAllowed(rng usermem.AddrRange, src []byte) (int, error) {
	if rng.IsEmpty() {
		return 0, nil
	}
	if uint32(len(src)) > rng.Length() {
		src = src[:rng.Length()]
	}
	return t.mem.CopyOut(rng.Start, src)
}
