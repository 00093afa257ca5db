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

// Package kestrelerr contains the syscall error codes exported as error
// interface pointers. Errors are singletons, so they can be compared with
// == and returned without allocation.
package kestrelerr

import (
	"fmt"

	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/errors"
)

// Kernel-origin errors, one per assigned errno.
var (
	FAIL        = errors.New(errno.FAIL, "unspecified failure")
	BUSY        = errors.New(errno.BUSY, "underlying resource is busy")
	ALREADY     = errors.New(errno.ALREADY, "operation already in progress")
	OFF         = errors.New(errno.OFF, "device is powered down")
	RESERVE     = errors.New(errno.RESERVE, "reservation required before use")
	INVALID     = errors.New(errno.INVALID, "invalid argument")
	SIZE        = errors.New(errno.SIZE, "size limit exceeded")
	CANCEL      = errors.New(errno.CANCEL, "operation canceled")
	NOMEM       = errors.New(errno.NOMEM, "out of memory")
	NOSUPPORT   = errors.New(errno.NOSUPPORT, "operation not supported")
	NODEVICE    = errors.New(errno.NODEVICE, "no such device")
	UNINSTALLED = errors.New(errno.UNINSTALLED, "device not physically installed")
	NOACK       = errors.New(errno.NOACK, "packet was not acknowledged")
)

// BADRVAL is the one userspace-library error: the return variant did not
// match the shape the operation commits to. The kernel never produces it.
var BADRVAL = errors.New(errno.BADRVAL, "return variant mismatch")

var kernelErrs = [...]*errors.Error{
	errno.FAIL:        FAIL,
	errno.BUSY:        BUSY,
	errno.ALREADY:     ALREADY,
	errno.OFF:         OFF,
	errno.RESERVE:     RESERVE,
	errno.INVALID:     INVALID,
	errno.SIZE:        SIZE,
	errno.CANCEL:      CANCEL,
	errno.NOMEM:       NOMEM,
	errno.NODEVICE:    NODEVICE,
	errno.NOSUPPORT:   NOSUPPORT,
	errno.UNINSTALLED: UNINSTALLED,
	errno.NOACK:       NOACK,
}

// ErrorFromErrno returns the singleton error for a known errno. Unassigned
// kernel codes map to FAIL so that a peer running a newer kernel does not
// crash an older caller; BADRVAL maps to itself.
func ErrorFromErrno(e errno.Errno) *errors.Error {
	if e == errno.BADRVAL {
		return BADRVAL
	}
	if int(e) < len(kernelErrs) {
		if err := kernelErrs[e]; err != nil {
			return err
		}
	}
	return FAIL
}

// ToErrno extracts the numeric code from err. Errors that are not *Error
// report FAIL.
func ToErrno(err error) errno.Errno {
	if e, ok := err.(*errors.Error); ok {
		return e.Errno()
	}
	return errno.FAIL
}

// Equals compares a *Error to a generic error.
func Equals(e *errors.Error, err error) bool {
	if err == nil {
		return e == nil
	}
	return e == err
}

func init() {
	// The table above is indexed by errno; a gap means a code was added
	// to errno without a singleton here.
	for i := errno.FAIL; i <= errno.LastKernelErrno; i++ {
		if kernelErrs[i] == nil {
			panic(fmt.Sprintf("errno %d has no kestrelerr singleton", i))
		}
	}
}
