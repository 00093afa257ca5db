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

// Package errno holds the numeric error-code space of the Kestrel syscall
// ABI, separate from error-wrapping packages so that ABI encoding does not
// depend on them.
//
// The space is partitioned: values 1-1023 belong to the kernel, of which
// only 1-13 are currently assigned; values above 1023 are reserved for
// userspace libraries and are never produced by the kernel.
package errno

// Errno is a numeric error code as it appears in a failure return variant.
type Errno uint32

// Kernel-origin error codes.
const (
	FAIL        Errno = 1
	BUSY        Errno = 2
	ALREADY     Errno = 3
	OFF         Errno = 4
	RESERVE     Errno = 5
	INVALID     Errno = 6
	SIZE        Errno = 7
	CANCEL      Errno = 8
	NOMEM       Errno = 9
	NOSUPPORT   Errno = 10
	NODEVICE    Errno = 11
	UNINSTALLED Errno = 12
	NOACK       Errno = 13
)

// LastKernelErrno is the highest currently assigned kernel error code.
// 14 through 1023 are reserved for future kernel use.
const LastKernelErrno = NOACK

// Userspace-library error codes. The kernel never returns these.
const (
	// BADRVAL reports that a syscall returned a variant other than the
	// one the operation commits to.
	BADRVAL Errno = 1024
)

// IsKernel returns true if e lies in the kernel-origin partition.
func (e Errno) IsKernel() bool {
	return e >= 1 && e <= 1023
}
