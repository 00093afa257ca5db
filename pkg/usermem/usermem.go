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

// IO provides access to the memory of a process image. Implementations
// perform no permission checks; the caller validated the range against the
// process's address-space partitions before lending it out.
type IO interface {
	// CopyOut copies len(src) bytes from src to the memory mapped at
	// addr. It returns the number of bytes copied. If the copy is
	// shorter than len(src), it returns a non-nil error explaining why.
	CopyOut(addr Addr, src []byte) (int, error)

	// CopyIn copies len(dst) bytes from the memory mapped at addr to
	// dst. It returns the number of bytes copied. If the copy is
	// shorter than len(dst), it returns a non-nil error explaining why.
	CopyIn(addr Addr, dst []byte) (int, error)
}
