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

package kestrel

import (
	"fmt"

	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
)

// ReturnVariant is the numeric tag carried in result word 0. Failure tags
// occupy the low values, success tags start at 128. All other values are
// reserved; callers must tolerate tags they do not recognize.
type ReturnVariant uint32

const (
	// VariantFailure is a failure with no payload beyond the error code.
	VariantFailure ReturnVariant = 0

	// VariantFailureU32 is a failure with one 32-bit payload word.
	VariantFailureU32 ReturnVariant = 1

	// VariantFailureU32U32 is a failure with two 32-bit payload words.
	VariantFailureU32U32 ReturnVariant = 2

	// VariantFailureU64 is a failure with one 64-bit payload.
	VariantFailureU64 ReturnVariant = 3

	// VariantSuccess is a bare success.
	VariantSuccess ReturnVariant = 128

	// VariantSuccessU32 is a success with one 32-bit payload word.
	VariantSuccessU32 ReturnVariant = 129

	// VariantSuccessU32U32 is a success with two 32-bit payload words.
	VariantSuccessU32U32 ReturnVariant = 130

	// VariantSuccessU64 is a success with one 64-bit payload.
	VariantSuccessU64 ReturnVariant = 131

	// VariantSuccessU32U32U32 is a success with three 32-bit payload
	// words.
	VariantSuccessU32U32U32 ReturnVariant = 132

	// VariantSuccessU32U64 is a success with one 32-bit and one 64-bit
	// payload.
	VariantSuccessU32U64 ReturnVariant = 133
)

// IsSuccess returns true for the assigned success tags.
func (v ReturnVariant) IsSuccess() bool {
	return v >= VariantSuccess && v <= VariantSuccessU32U64
}

// IsFailure returns true for the assigned failure tags.
func (v ReturnVariant) IsFailure() bool {
	return v <= VariantFailureU64
}

// String implements fmt.Stringer.String.
func (v ReturnVariant) String() string {
	switch v {
	case VariantFailure:
		return "Failure"
	case VariantFailureU32:
		return "Failure+u32"
	case VariantFailureU32U32:
		return "Failure+2xu32"
	case VariantFailureU64:
		return "Failure+u64"
	case VariantSuccess:
		return "Success"
	case VariantSuccessU32:
		return "Success+u32"
	case VariantSuccessU32U32:
		return "Success+2xu32"
	case VariantSuccessU64:
		return "Success+u64"
	case VariantSuccessU32U32U32:
		return "Success+3xu32"
	case VariantSuccessU32U64:
		return "Success+u32+u64"
	default:
		return fmt.Sprintf("reserved tag %d", uint32(v))
	}
}

// ReturnValue is a tagged syscall result. Every concrete operation commits
// at design time to exactly one failure variant and exactly one success
// variant, so a value is only constructible through the typed constructors
// below; word 0 of the encoding always carries the tag, and a bare Success
// never carries payload words.
type ReturnValue struct {
	variant ReturnVariant

	// data holds payload words in register order, starting at result
	// word 1. For failure variants data[0] is the error code. 64-bit
	// payloads occupy two consecutive words, low word first.
	data [3]uint32
}

// Failure returns a failure with no payload.
func Failure(e errno.Errno) ReturnValue {
	return ReturnValue{variant: VariantFailure, data: [3]uint32{uint32(e)}}
}

// FailureU32 returns a failure with one payload word.
func FailureU32(e errno.Errno, d0 uint32) ReturnValue {
	return ReturnValue{variant: VariantFailureU32, data: [3]uint32{uint32(e), d0}}
}

// FailureU32U32 returns a failure with two payload words.
func FailureU32U32(e errno.Errno, d0, d1 uint32) ReturnValue {
	return ReturnValue{variant: VariantFailureU32U32, data: [3]uint32{uint32(e), d0, d1}}
}

// FailureU64 returns a failure with a 64-bit payload.
func FailureU64(e errno.Errno, d uint64) ReturnValue {
	return ReturnValue{variant: VariantFailureU64, data: [3]uint32{uint32(e), uint32(d), uint32(d >> 32)}}
}

// Success returns a bare success.
func Success() ReturnValue {
	return ReturnValue{variant: VariantSuccess}
}

// SuccessU32 returns a success with one payload word.
func SuccessU32(d0 uint32) ReturnValue {
	return ReturnValue{variant: VariantSuccessU32, data: [3]uint32{d0}}
}

// SuccessU32U32 returns a success with two payload words.
func SuccessU32U32(d0, d1 uint32) ReturnValue {
	return ReturnValue{variant: VariantSuccessU32U32, data: [3]uint32{d0, d1}}
}

// SuccessU64 returns a success with a 64-bit payload.
func SuccessU64(d uint64) ReturnValue {
	return ReturnValue{variant: VariantSuccessU64, data: [3]uint32{uint32(d), uint32(d >> 32)}}
}

// SuccessU32U32U32 returns a success with three payload words.
func SuccessU32U32U32(d0, d1, d2 uint32) ReturnValue {
	return ReturnValue{variant: VariantSuccessU32U32U32, data: [3]uint32{d0, d1, d2}}
}

// SuccessU32U64 returns a success with a 32-bit and a 64-bit payload.
func SuccessU32U64(d0 uint32, d uint64) ReturnValue {
	return ReturnValue{variant: VariantSuccessU32U64, data: [3]uint32{d0, uint32(d), uint32(d >> 32)}}
}

// Variant returns the tag.
func (rv ReturnValue) Variant() ReturnVariant {
	return rv.variant
}

// Word returns payload word i (0-2) in register order. For failure
// variants word 0 is the error code.
func (rv ReturnValue) Word(i int) uint32 {
	return rv.data[i]
}

// Errno returns the error code of a failure variant, or 0 for success.
func (rv ReturnValue) Errno() errno.Errno {
	if !rv.variant.IsFailure() {
		return 0
	}
	return errno.Errno(rv.data[0])
}

// Encode writes the tagged value into the four result words. Word 0 is
// the tag; payload words follow in order; unused words are cleared so no
// kernel state leaks to userspace.
func (rv ReturnValue) Encode(r *[4]uint32) {
	r[0] = uint32(rv.variant)
	r[1] = rv.data[0]
	r[2] = rv.data[1]
	r[3] = rv.data[2]
	switch rv.variant {
	case VariantSuccess:
		r[1], r[2], r[3] = 0, 0, 0
	case VariantFailure, VariantSuccessU32:
		r[2], r[3] = 0, 0
	case VariantFailureU32, VariantSuccessU32U32, VariantSuccessU64:
		r[3] = 0
	}
}

// DecodeReturn rebuilds a tagged value from the four result words. Unknown
// tags are preserved as-is rather than rejected; the caller decides what an
// unrecognized outcome means. This is the userspace half of the codec.
func DecodeReturn(r *[4]uint32) ReturnValue {
	return ReturnValue{
		variant: ReturnVariant(r[0]),
		data:    [3]uint32{r[1], r[2], r[3]},
	}
}

// String implements fmt.Stringer.String.
func (rv ReturnValue) String() string {
	switch rv.variant {
	case VariantFailure:
		return fmt.Sprintf("Failure(%d)", rv.data[0])
	case VariantFailureU32:
		return fmt.Sprintf("Failure+u32(%d, %#x)", rv.data[0], rv.data[1])
	case VariantFailureU32U32:
		return fmt.Sprintf("Failure+2xu32(%d, %#x, %#x)", rv.data[0], rv.data[1], rv.data[2])
	case VariantFailureU64:
		return fmt.Sprintf("Failure+u64(%d, %#x)", rv.data[0], uint64(rv.data[1])|uint64(rv.data[2])<<32)
	case VariantSuccess:
		return "Success"
	case VariantSuccessU32:
		return fmt.Sprintf("Success+u32(%#x)", rv.data[0])
	case VariantSuccessU32U32:
		return fmt.Sprintf("Success+2xu32(%#x, %#x)", rv.data[0], rv.data[1])
	case VariantSuccessU64:
		return fmt.Sprintf("Success+u64(%#x)", uint64(rv.data[0])|uint64(rv.data[1])<<32)
	case VariantSuccessU32U32U32:
		return fmt.Sprintf("Success+3xu32(%#x, %#x, %#x)", rv.data[0], rv.data[1], rv.data[2])
	case VariantSuccessU32U64:
		return fmt.Sprintf("Success+u32+u64(%#x, %#x)", rv.data[0], uint64(rv.data[1])|uint64(rv.data[2])<<32)
	default:
		return fmt.Sprintf("reserved(%d)", uint32(rv.variant))
	}
}
