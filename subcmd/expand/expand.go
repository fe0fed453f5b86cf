// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package expand is expand subcommand to preprocess diagram text.
package expand

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/doc/zumen/o11y/clog"
	"go.chromium.org/infra/doc/zumen/plantuml"
	"go.chromium.org/infra/doc/zumen/source"
)

const usage = `expand include directives

 $ zumen expand [-C <dir>] [-o <file>] <file>

Reads PlantUML text from <file> ("-" for stdin), expands !include,
!include_once, !include_many, !includeurl and !includesub directives
recursively and strips @startuml/@enduml tags from the result.
Includes that cannot be resolved here are kept in the output for the
rendering server to resolve.
`

// Cmd returns the Command for the `expand` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "expand [-C <dir>] [-o <file>] <file>",
		ShortDesc: "expand include directives",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	dir    string
	output string
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "directory to run in. relative includes resolve from here")
	c.Flags.StringVar(&c.output, "o", "-", `output file. "-" for stdout`)
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if c.Flags.NArg() != 1 {
		return fmt.Errorf("expects exactly one input file: %w", flag.ErrHelp)
	}
	err := os.Chdir(c.dir)
	if err != nil {
		return err
	}
	fname := c.Flags.Arg(0)
	var buf []byte
	base := fname
	if fname == "-" {
		buf, err = io.ReadAll(os.Stdin)
		base = ""
	} else {
		buf, err = os.ReadFile(fname)
	}
	if err != nil {
		return err
	}
	src := source.New(source.Options{})
	expanded, err := plantuml.New(src).Expand(ctx, string(buf), plantuml.Options{Base: base})
	if err != nil {
		return err
	}
	if clog.V(1) {
		clog.Debugf(ctx, "local reads: %+v", src.LocalMetrics().Stats())
		clog.Debugf(ctx, "remote reads: %+v", src.RemoteMetrics().Stats())
	}
	if c.output == "-" {
		_, err = os.Stdout.WriteString(expanded)
		return err
	}
	return os.WriteFile(c.output, []byte(expanded), 0644)
}
