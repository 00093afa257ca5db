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

// Package usermem governs access to process memory. Addresses are 32 bits
// wide; this layer targets microcontroller-class address spaces.
package usermem

// Addr represents an address in a process address space.
type Addr uint32

// AddLength returns a+length and whether the result wrapped around the
// address space.
func (a Addr) AddLength(length uint32) (end Addr, ok bool) {
	end = a + Addr(length)
	ok = end >= a
	return
}

// ToRange returns [a, a+length) and whether the range wrapped.
func (a Addr) ToRange(length uint32) (AddrRange, bool) {
	end, ok := a.AddLength(length)
	return AddrRange{a, end}, ok
}

// AddrRange is a half-open range of addresses, [Start, End).
type AddrRange struct {
	Start Addr
	End   Addr
}

// WellFormed returns true if r.Start <= r.End.
func (r AddrRange) WellFormed() bool {
	return r.Start <= r.End
}

// Length returns the length of the range.
func (r AddrRange) Length() uint32 {
	return uint32(r.End - r.Start)
}

// IsEmpty returns true if the range contains no addresses.
func (r AddrRange) IsEmpty() bool {
	return r.Start == r.End
}

// Contains returns true if x lies within the range.
func (r AddrRange) Contains(x Addr) bool {
	return r.Start <= x && x < r.End
}

// IsSupersetOf returns true if r2 lies entirely within r. An empty r2 is
// a subset of every range.
func (r AddrRange) IsSupersetOf(r2 AddrRange) bool {
	if r2.IsEmpty() {
		return true
	}
	return r.Start <= r2.Start && r2.End <= r.End
}

// Overlaps returns true if r and r2 share at least one address.
func (r AddrRange) Overlaps(r2 AddrRange) bool {
	return r.Start < r2.End && r2.Start < r.End
}
