// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Zumen renders PlantUML and Vega-Lite diagrams.
//
// It expands PlantUML include directives, inlines Vega-Lite data
// references, and sends the results to a PlantUML or kroki compatible
// rendering server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/doc/zumen/o11y/clog"
	"go.chromium.org/infra/doc/zumen/subcmd/encode"
	"go.chromium.org/infra/doc/zumen/subcmd/expand"
	"go.chromium.org/infra/doc/zumen/subcmd/help"
	"go.chromium.org/infra/doc/zumen/subcmd/render"
	versioncmd "go.chromium.org/infra/doc/zumen/subcmd/version"
)

// version is the zumen release version.
const version = "0.9.0"

func getApplication() *cli.Application {
	return &cli.Application{
		Name:  "zumen",
		Title: fmt.Sprintf("Zumen %s", version),
		Context: func(ctx context.Context) context.Context {
			return clog.NewContext(ctx, log.Default())
		},
		Commands: []*subcommands.Command{
			expand.Cmd(),
			render.Cmd(),
			encode.Cmd(),
			versioncmd.Cmd(version),
			help.Cmd(),
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{
			"ZUMEN_SERVER": {
				ShortDesc: "default rendering server URL for render and encode",
			},
		},
	}
}

func main() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(out, "global flags:\n")
		flag.PrintDefaults()
	}
	verbose := flag.Int("v", 0, "verbosity level for debug logging")
	flag.Parse()

	log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	}))
	clog.SetVerbosity(*verbose)

	os.Exit(zumenMain(flag.Args()))
}

func zumenMain(args []string) int {
	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	// Print build information to the log.
	if buildinfo, ok := debug.ReadBuildInfo(); ok {
		log.Debugf("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
	}
	return subcommands.Run(getApplication(), args)
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
