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

package usermem

import (
	"kestrelos.dev/kestrel/pkg/errors/kestrelerr"
)

// BytesIO implements IO using a byte slice mapped at a fixed base address.
// It backs simulated process images; on real hardware this role is played
// by the MPU-protected RAM itself.
type BytesIO struct {
	// Base is the address of Bytes[0].
	Base Addr

	// Bytes is the mapped memory.
	Bytes []byte
}

// NewBytesIO returns a BytesIO mapping size bytes at base.
func NewBytesIO(base Addr, size uint32) *BytesIO {
	return &BytesIO{Base: base, Bytes: make([]byte, size)}
}

// Range returns the mapped address range.
func (b *BytesIO) Range() AddrRange {
	return AddrRange{b.Base, b.Base + Addr(len(b.Bytes))}
}

// CopyOut implements IO.CopyOut. Copies are partial on a range violation:
// in-range bytes are written and the violation is reported alongside the
// short count, matching what a hardware fault after a partial store would
// leave behind.
func (b *BytesIO) CopyOut(addr Addr, src []byte) (int, error) {
	rngN, rngErr := b.rangeCheck(addr, len(src))
	if rngN == 0 {
		return 0, rngErr
	}
	n := copy(b.Bytes[int(addr-b.Base):], src[:rngN])
	return n, rngErr
}

// CopyIn implements IO.CopyIn.
func (b *BytesIO) CopyIn(addr Addr, dst []byte) (int, error) {
	rngN, rngErr := b.rangeCheck(addr, len(dst))
	if rngN == 0 {
		return 0, rngErr
	}
	n := copy(dst[:rngN], b.Bytes[int(addr-b.Base):])
	return n, rngErr
}

// rangeCheck returns the number of bytes at [addr, addr+length) that fall
// inside the mapping, and a fault error if any byte falls outside.
func (b *BytesIO) rangeCheck(addr Addr, length int) (int, error) {
	if length == 0 {
		return 0, nil
	}
	mapped := b.Range()
	if !mapped.Contains(addr) {
		return 0, kestrelerr.INVALID
	}
	avail := int(mapped.End - addr)
	if length > avail {
		return avail, kestrelerr.INVALID
	}
	return length, nil
}
