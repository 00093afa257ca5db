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
	"bytes"
	"testing"

	"kestrelos.dev/kestrel/pkg/errors/kestrelerr"
)

func newBytesIOString(base Addr, s string) *BytesIO {
	return &BytesIO{Base: base, Bytes: []byte(s)}
}

func TestBytesIOCopyOutSuccess(t *testing.T) {
	b := newBytesIOString(0x100, "ABCDE")
	n, err := b.CopyOut(0x101, []byte("foo"))
	if wantN := 3; n != wantN || err != nil {
		t.Errorf("CopyOut: got (%v, %v), wanted (%v, nil)", n, err, wantN)
	}
	if got, want := b.Bytes, []byte("AfooE"); !bytes.Equal(got, want) {
		t.Errorf("Bytes: got %q, wanted %q", got, want)
	}
}

func TestBytesIOCopyOutFailure(t *testing.T) {
	b := newBytesIOString(0x100, "ABC")
	n, err := b.CopyOut(0x101, []byte("foo"))
	if wantN := 2; n != wantN || err != kestrelerr.INVALID {
		t.Errorf("CopyOut: got (%v, %v), wanted (%v, INVALID)", n, err, wantN)
	}
	if got, want := b.Bytes, []byte("Afo"); !bytes.Equal(got, want) {
		t.Errorf("Bytes: got %q, wanted %q", got, want)
	}
}

func TestBytesIOCopyInSuccess(t *testing.T) {
	b := newBytesIOString(0x100, "AfooE")
	dst := make([]byte, 3)
	n, err := b.CopyIn(0x101, dst)
	if wantN := 3; n != wantN || err != nil {
		t.Errorf("CopyIn: got (%v, %v), wanted (%v, nil)", n, err, wantN)
	}
	if got, want := dst, []byte("foo"); !bytes.Equal(got, want) {
		t.Errorf("dst: got %q, wanted %q", got, want)
	}
}

func TestBytesIOCopyInFailure(t *testing.T) {
	b := newBytesIOString(0x100, "Afo")
	dst := make([]byte, 3)
	n, err := b.CopyIn(0x101, dst)
	if wantN := 2; n != wantN || err != kestrelerr.INVALID {
		t.Errorf("CopyIn: got (%v, %v), wanted (%v, INVALID)", n, err, wantN)
	}
	if got, want := dst, []byte("fo\x00"); !bytes.Equal(got, want) {
		t.Errorf("dst: got %q, wanted %q", got, want)
	}
}

func TestBytesIOUnmapped(t *testing.T) {
	b := newBytesIOString(0x100, "ABC")
	if n, err := b.CopyOut(0x80, []byte("x")); n != 0 || err != kestrelerr.INVALID {
		t.Errorf("CopyOut below mapping: got (%v, %v), wanted (0, INVALID)", n, err)
	}
	if n, err := b.CopyOut(0x103, []byte("x")); n != 0 || err != kestrelerr.INVALID {
		t.Errorf("CopyOut past mapping: got (%v, %v), wanted (0, INVALID)", n, err)
	}
}

func TestAddLengthWrap(t *testing.T) {
	if _, ok := Addr(0xfffffff0).AddLength(0x20); ok {
		t.Error("AddLength: wrap not detected")
	}
	if end, ok := Addr(0x100).AddLength(0x20); !ok || end != 0x120 {
		t.Errorf("AddLength: got (%#x, %v), wanted (0x120, true)", end, ok)
	}
}

func TestAddrRange(t *testing.T) {
	r := AddrRange{0x100, 0x200}
	if !r.Contains(0x100) || r.Contains(0x200) {
		t.Errorf("Contains: half-open bounds violated for %v", r)
	}
	if !r.IsSupersetOf(AddrRange{0x100, 0x200}) {
		t.Error("IsSupersetOf: range should contain itself")
	}
	if r.IsSupersetOf(AddrRange{0x1ff, 0x201}) {
		t.Error("IsSupersetOf: straddling range should not be contained")
	}
	if !r.IsSupersetOf(AddrRange{0x500, 0x500}) {
		t.Error("IsSupersetOf: empty range should be a subset of anything")
	}
	if r.Overlaps(AddrRange{0x200, 0x300}) {
		t.Error("Overlaps: adjacent ranges do not overlap")
	}
	if !r.Overlaps(AddrRange{0x1ff, 0x300}) {
		t.Error("Overlaps: intersecting ranges should overlap")
	}
}
