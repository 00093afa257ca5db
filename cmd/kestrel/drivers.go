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
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"kestrelos.dev/kestrel/pkg/abi/kestrel/errno"
	"kestrelos.dev/kestrel/pkg/drivers/alarm"
	"kestrelos.dev/kestrel/pkg/drivers/console"
	"kestrelos.dev/kestrel/pkg/drivers/mlx90614"
	"kestrelos.dev/kestrel/pkg/drivers/ros"
	"kestrelos.dev/kestrel/pkg/errors/kestrelerr"
)

// driversCmd implements subcommands.Command for the "drivers" command.
type driversCmd struct{}

// Name implements subcommands.Command.Name.
func (*driversCmd) Name() string {
	return "drivers"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*driversCmd) Synopsis() string {
	return "print the driver identifiers this build carries"
}

// Usage implements subcommands.Command.Usage.
func (*driversCmd) Usage() string {
	return "drivers\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*driversCmd) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*driversCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "DRIVER\tNAME")
	for _, d := range []struct {
		num  uint32
		name string
	}{
		{alarm.DriverNum, "alarm"},
		{console.DriverNum, "console"},
		{ros.DriverNum, "read-only syscalls"},
		{mlx90614.DriverNum, "mlx90614 thermometer"},
	} {
		fmt.Fprintf(w, "%#x\t%s\n", d.num, d.name)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

// errorsCmd implements subcommands.Command for the "errors" command.
type errorsCmd struct{}

// Name implements subcommands.Command.Name.
func (*errorsCmd) Name() string {
	return "errors"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*errorsCmd) Synopsis() string {
	return "print the syscall error-code space"
}

// Usage implements subcommands.Command.Usage.
func (*errorsCmd) Usage() string {
	return "errors\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*errorsCmd) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*errorsCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	printErrs(os.Stdout)
	return subcommands.ExitSuccess
}

func printErrs(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tMESSAGE\tORIGIN")
	for e := errno.FAIL; e <= errno.LastKernelErrno; e++ {
		fmt.Fprintf(w, "%d\t%s\tkernel\n", uint32(e), kestrelerr.ErrorFromErrno(e))
	}
	fmt.Fprintf(w, "%d\t%s\tuserspace\n", uint32(errno.BADRVAL), kestrelerr.BADRVAL)
	w.Flush()
}
