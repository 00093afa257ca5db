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

package ulib

import (
	"kestrelos.dev/kestrel/pkg/abi/kestrel"
	"kestrelos.dev/kestrel/pkg/errors/kestrelerr"
)

// Shape-checking accessors. Every operation commits at design time to one
// success and one failure variant; these helpers decode that committed
// pair and report BADRVAL for anything else, including reserved tags from
// a newer kernel. BADRVAL is an ordinary error value, never a panic, so an
// old binary stays alive against a new kernel.

// AsSuccess decodes an operation committed to Success / Failure.
func AsSuccess(rv kestrel.ReturnValue) error {
	switch rv.Variant() {
	case kestrel.VariantSuccess:
		return nil
	case kestrel.VariantFailure:
		return kestrelerr.ErrorFromErrno(rv.Errno())
	default:
		return kestrelerr.BADRVAL
	}
}

// AsSuccessU32 decodes an operation committed to Success+u32 / Failure.
func AsSuccessU32(rv kestrel.ReturnValue) (uint32, error) {
	switch rv.Variant() {
	case kestrel.VariantSuccessU32:
		return rv.Word(0), nil
	case kestrel.VariantFailure:
		return 0, kestrelerr.ErrorFromErrno(rv.Errno())
	default:
		return 0, kestrelerr.BADRVAL
	}
}

// AsSuccessU32U32 decodes an operation committed to Success+2xu32 /
// Failure.
func AsSuccessU32U32(rv kestrel.ReturnValue) (uint32, uint32, error) {
	switch rv.Variant() {
	case kestrel.VariantSuccessU32U32:
		return rv.Word(0), rv.Word(1), nil
	case kestrel.VariantFailure:
		return 0, 0, kestrelerr.ErrorFromErrno(rv.Errno())
	default:
		return 0, 0, kestrelerr.BADRVAL
	}
}

// AsSuccessU64 decodes an operation committed to Success+u64 / Failure.
func AsSuccessU64(rv kestrel.ReturnValue) (uint64, error) {
	switch rv.Variant() {
	case kestrel.VariantSuccessU64:
		return uint64(rv.Word(0)) | uint64(rv.Word(1))<<32, nil
	case kestrel.VariantFailure:
		return 0, kestrelerr.ErrorFromErrno(rv.Errno())
	default:
		return 0, kestrelerr.BADRVAL
	}
}

// SubscribeReturn decodes the Subscribe shape pair: Success+2xu32
// carrying the previous (entry, data), or Failure+2xu32 carrying the
// rejected (entry, data).
func SubscribeReturn(rv kestrel.ReturnValue) (prevEntry, prevData uint32, err error) {
	switch rv.Variant() {
	case kestrel.VariantSuccessU32U32:
		return rv.Word(0), rv.Word(1), nil
	case kestrel.VariantFailureU32U32:
		return rv.Word(1), rv.Word(2), kestrelerr.ErrorFromErrno(rv.Errno())
	default:
		return 0, 0, kestrelerr.BADRVAL
	}
}

// AllowReturn decodes the Allow shape pair: Success+2xu32 carrying the
// previous (address, length), or Failure+2xu32 carrying the rejected
// (address, length).
func AllowReturn(rv kestrel.ReturnValue) (prevAddr, prevLen uint32, err error) {
	switch rv.Variant() {
	case kestrel.VariantSuccessU32U32:
		return rv.Word(0), rv.Word(1), nil
	case kestrel.VariantFailureU32U32:
		return rv.Word(1), rv.Word(2), kestrelerr.ErrorFromErrno(rv.Errno())
	default:
		return 0, 0, kestrelerr.BADRVAL
	}
}
