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
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/log"
)

// App is the body of a userspace program. It runs on its own goroutine
// with a single thread of control; callbacks only ever run inside its own
// yield calls.
type App func(p *Process)

// Run creates a process from image and executes app in it, handling exit
// and restart. On exit-restart the app body is re-entered from the top in
// a fresh process. Run returns when the process finally terminates, with
// the last process identifier and its completion code.
func Run(k *kernel.Kernel, image kernel.TaskImage, app App) (kernel.ProcessID, uint32, error) {
	t, err := k.NewTask(image)
	if err != nil {
		return 0, 0, err
	}
	for {
		next := runOnce(t, app)
		if next == nil {
			return t.ID(), t.CompletionCode(), nil
		}
		log.Infof("process %d restarted as process %d", t.ID(), next.ID())
		t = next
	}
}

// runOnce executes one incarnation of the app. It returns the successor
// task if the incarnation ended in exit-restart, nil otherwise.
func runOnce(t *kernel.Task, app App) (next *kernel.Task) {
	defer func() {
		switch v := recover().(type) {
		case nil:
			// The app body returned without exiting; treat it as
			// an implicit exit-terminate with code 0.
			t.Kill()
		case processExited:
			// Unwound by a successful exit-terminate.
		case processRestarted:
			next = v.next
		default:
			panic(v)
		}
	}()
	app(newProcess(t))
	return nil
}
