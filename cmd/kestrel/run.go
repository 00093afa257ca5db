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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"kestrelos.dev/kestrel/pkg/drivers/alarm"
	"kestrelos.dev/kestrel/pkg/drivers/console"
	"kestrelos.dev/kestrel/pkg/drivers/ros"
	"kestrelos.dev/kestrel/pkg/kernel"
	"kestrelos.dev/kestrel/pkg/ulib"
	"kestrelos.dev/kestrel/pkg/usermem"
)

// runCmd implements subcommands.Command for the "run" command.
type runCmd struct {
	alarmMS uint
}

// Name implements subcommands.Command.Name.
func (*runCmd) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*runCmd) Synopsis() string {
	return "boot a kernel with the example drivers and run the demo process"
}

// Usage implements subcommands.Command.Usage.
func (*runCmd) Usage() string {
	return "run [-alarm-ms N]\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.UintVar(&c.alarmMS, "alarm-ms", 100, "delay of the demo alarm in milliseconds")
}

// wallClock ticks in milliseconds since boot.
type wallClock struct {
	start time.Time
}

// Now implements alarm.Clock.Now.
func (c *wallClock) Now() uint32 {
	return uint32(time.Since(c.start) / time.Millisecond)
}

// Frequency implements alarm.Clock.Frequency.
func (c *wallClock) Frequency() uint32 {
	return 1000
}

// Execute implements subcommands.Command.Execute.
func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	clock := &wallClock{start: time.Now()}
	alarmDrv := alarm.New(clock)
	consoleDrv := console.New(os.Stdout)
	rosDrv := ros.New(clock)

	k := kernel.New()
	for num, d := range map[uint32]kernel.Driver{
		alarm.DriverNum:   alarmDrv,
		console.DriverNum: consoleDrv,
		ros.DriverNum:     rosDrv,
	} {
		if err := k.InstallDriver(num, d); err != nil {
			fmt.Fprintf(os.Stderr, "install driver: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	// Stand-in timer interrupt.
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				alarmDrv.Fire()
			case <-done:
				return
			}
		}
	}()

	image := kernel.TaskImage{
		Flash:     usermem.AddrRange{Start: 0x10000, End: 0x20000},
		RAM:       usermem.AddrRange{Start: 0x20000000, End: 0x20004000},
		GrantBase: 0x20003000,
	}
	id, code, err := ulib.Run(k, image, demoApp(uint32(c.alarmMS)))
	close(done)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("process %d exited with code %d\n", id, code)
	return subcommands.ExitSuccess
}

// demoApp writes a banner to the console, arms an alarm and waits for it.
func demoApp(alarmMS uint32) ulib.App {
	return func(p *ulib.Process) {
		const txAddr = usermem.Addr(0x20000100)
		msg := []byte("hello from kestrel userspace\n")
		if _, err := p.Memory().CopyOut(txAddr, msg); err != nil {
			p.Exit(1)
		}

		wrote := false
		p.Subscribe(console.DriverNum, console.SubscribeWriteDone, func(args [4]uint32, data uint32) {
			wrote = true
		}, 0)
		p.AllowReadOnly(console.DriverNum, console.ReadOnlyBufferWrite, txAddr, uint32(len(msg)))
		if err := ulib.AsSuccess(p.Command(console.DriverNum, console.CommandWrite, uint32(len(msg)), 0)); err != nil {
			p.Exit(1)
		}
		for !wrote {
			p.YieldWait()
		}

		now, err := ulib.AsSuccessU32(p.Command(alarm.DriverNum, alarm.CommandNow, 0, 0))
		if err != nil {
			p.Exit(1)
		}
		fired := false
		p.Subscribe(alarm.DriverNum, alarm.SubscribeExpired, func(args [4]uint32, data uint32) {
			fired = true
		}, 0)
		if _, err := ulib.AsSuccessU32(p.Command(alarm.DriverNum, alarm.CommandSet, now, alarmMS)); err != nil {
			p.Exit(1)
		}
		for !fired {
			p.YieldWait()
		}

		p.Exit(0)
	}
}
