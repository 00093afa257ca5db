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
	"kestrelos.dev/kestrel/pkg/log"
	"kestrelos.dev/kestrel/pkg/usermem"
)

// SyscallControl tells the trap return path what to do with the process.
type SyscallControl int

const (
	// CtlReturn resumes the process; the result registers are valid.
	CtlReturn SyscallControl = iota

	// CtlExit discards the process's execution context; the result
	// registers must not be written back. Produced only by successful
	// exit-terminate.
	CtlExit

	// CtlRestart discards the context like CtlExit, and a successor
	// process has been created under a new identifier. Produced only
	// by successful exit-restart.
	CtlRestart
)

// Syscall handles one trap from userspace. The class and the four argument
// words are decoded from regs; except for a successful exit, exactly one
// tagged return variant is encoded back into regs.R before it returns.
//
// For CtlRestart the successor task is returned; otherwise next is nil.
func (t *Task) Syscall(regs *kestrel.Registers) (ctl SyscallControl, next *Task) {
	sc := kestrel.DecodeSyscall(regs)
	if log.IsLogging(log.Debug) {
		log.Debugf("process %d: %s(%#x, %#x, %#x, %#x)",
			t.id, sc.Class, sc.Args[0], sc.Args[1], sc.Args[2], sc.Args[3])
	}

	var rv kestrel.ReturnValue
	switch sc.Class {
	case kestrel.Yield:
		switch sc.Args[0] {
		case kestrel.YieldNoWait:
			rv = t.yieldNoWait(usermem.Addr(sc.Args[1]))
		case kestrel.YieldWait:
			rv = t.yieldWait()
		default:
			// Unrecognized yield identifier: immediate return,
			// no callback delivery, no flag write.
			rv = kestrel.Failure(errno.INVALID)
		}

	case kestrel.Subscribe:
		rv = t.subscribe(sc.Args[0], sc.Args[1], usermem.Addr(sc.Args[2]), sc.Args[3])

	case kestrel.Command:
		rv = t.command(sc.Args[0], sc.Args[1], sc.Args[2], sc.Args[3])

	case kestrel.ReadWriteAllow:
		rv = t.allow(false, sc.Args[0], sc.Args[1], usermem.Addr(sc.Args[2]), sc.Args[3])

	case kestrel.ReadOnlyAllow:
		rv = t.allow(true, sc.Args[0], sc.Args[1], usermem.Addr(sc.Args[2]), sc.Args[3])

	case kestrel.Memop:
		rv = t.memop(sc.Args[0], sc.Args[1])

	case kestrel.Exit:
		switch sc.Args[0] {
		case kestrel.ExitTerminate:
			t.exit(sc.Args[1])
			return CtlExit, nil
		case kestrel.ExitRestart:
			succ, err := t.restart(sc.Args[1])
			if err != nil {
				// The old context is already gone; the image
				// was valid once, so this should not happen.
				log.Warningf("process %d: restart failed: %v", t.id, err)
				return CtlExit, nil
			}
			return CtlRestart, succ
		default:
			// The one case where Exit returns.
			rv = kestrel.Failure(errno.INVALID)
		}

	default:
		rv = kestrel.Failure(errno.NOSUPPORT)
	}

	if log.IsLogging(log.Debug) {
		log.Debugf("process %d: %s -> %s", t.id, sc.Class, rv)
	}
	rv.Encode(&regs.R)
	return CtlReturn, nil
}

// command routes a Command-class call through the capability table.
func (t *Task) command(driverNum, cmd, arg0, arg1 uint32) kestrel.ReturnValue {
	d, ok := t.k.Driver(driverNum)
	if !ok {
		return kestrel.Failure(errno.NOSUPPORT)
	}
	return d.Command(t, cmd, arg0, arg1)
}
