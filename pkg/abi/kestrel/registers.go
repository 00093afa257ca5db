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

// Registers is the register file exchanged across the protection boundary:
// four 32-bit argument words on entry, four result words on return, plus
// the out-of-band class selector. Word 0 of the result always carries the
// numeric return-variant tag.
//
// Argument layout per class:
//
//	Class            Arg0        Arg1          Arg2        Arg3
//	Yield            identifier  flag address  -           -
//	Subscribe        driver id   subscribe id  entry addr  app data
//	Command          driver id   command id    arg0        arg1
//	Read-Write Allow driver id   buffer id     address     size
//	Read-Only Allow  driver id   buffer id     address     size
//	Memop            operation   operand       -           -
//	Exit             identifier  completion    -           -
type Registers struct {
	Class SyscallClass
	R     [4]uint32
}

// Syscall is the decoded form of a register file: the class plus its four
// raw argument words. Decoding is a pure transformation; interpretation of
// the words is the dispatcher's business.
type Syscall struct {
	Class SyscallClass
	Args  [4]uint32
}

// DecodeSyscall builds the structured call record from a register file.
func DecodeSyscall(regs *Registers) Syscall {
	return Syscall{
		Class: regs.Class,
		Args:  regs.R,
	}
}

// DriverID returns argument word 0 interpreted as a driver identifier.
// Only meaningful for the driver-scoped classes.
func (s Syscall) DriverID() uint32 {
	return s.Args[0]
}

// String implements fmt.Stringer.String. Used by syscall tracing.
func (s Syscall) String() string {
	return s.Class.String()
}
