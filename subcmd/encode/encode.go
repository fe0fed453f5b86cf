// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package encode is encode subcommand to print the URL payload form of a diagram.
package encode

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/doc/zumen/plantuml"
	"go.chromium.org/infra/doc/zumen/render"
	"go.chromium.org/infra/doc/zumen/source"
	"go.chromium.org/infra/doc/zumen/vegalite"
)

const usage = `encode a diagram into the rendering server URL payload form

 $ zumen encode [-C <dir>] [-url] [-server <url>] [-format <format>] \
          [-type <type>] [-kroki] <file>
 $ zumen encode -decode [-kroki] <payload>

Expands include directives of the PlantUML input ("-" for stdin) and
encodes the result as a rendering server URL payload: raw deflate +
the PlantUML base64 variant, or zlib + base64url for -kroki. With
-url, prints the full GET URL for -server instead of the bare
payload. With -decode, the argument is a payload and the decoded
diagram text is printed.
`

const (
	defaultServer      = "https://www.plantuml.com/plantuml"
	defaultKrokiServer = "https://kroki.io"
)

// Cmd returns the Command for the `encode` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "encode [-url] [-decode] <file>",
		ShortDesc: "encode a diagram into the server URL payload form",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	dir      string
	server   string
	format   string
	diagType string
	kroki    bool
	url      bool
	decode   bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "directory to run in. relative includes resolve from here")
	c.Flags.StringVar(&c.server, "server", os.Getenv("ZUMEN_SERVER"), "rendering server URL for -url. can be set by $ZUMEN_SERVER")
	c.Flags.StringVar(&c.format, "format", "svg", "output format used in the -url form")
	c.Flags.StringVar(&c.diagType, "type", "plantuml", `diagram type. "plantuml" or "vegalite"`)
	c.Flags.BoolVar(&c.kroki, "kroki", false, "use the kroki payload form")
	c.Flags.BoolVar(&c.url, "url", false, "print the full GET URL instead of the payload")
	c.Flags.BoolVar(&c.decode, "decode", false, "decode a payload back into diagram text")
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
		return fmt.Errorf("expects exactly one argument: %w", flag.ErrHelp)
	}
	arg := c.Flags.Arg(0)
	if c.decode {
		payload := arg
		if payload == "-" {
			buf, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			payload = strings.TrimSpace(string(buf))
		}
		var text string
		var err error
		if c.kroki {
			text, err = render.DecodeKroki(payload)
		} else {
			text, err = render.DecodePlantUML(payload)
		}
		if err != nil {
			return err
		}
		_, err = os.Stdout.WriteString(text)
		return err
	}

	err := os.Chdir(c.dir)
	if err != nil {
		return err
	}
	var buf []byte
	base := arg
	if arg == "-" {
		buf, err = io.ReadAll(os.Stdin)
		base = ""
	} else {
		buf, err = os.ReadFile(arg)
	}
	if err != nil {
		return err
	}
	src := source.New(source.Options{})
	var text string
	switch c.diagType {
	case "vegalite":
		text, err = vegalite.New(src).Inline(ctx, string(buf), vegalite.Options{Base: base})
	case "plantuml":
		text, err = plantuml.New(src).Expand(ctx, string(buf), plantuml.Options{Base: base})
	default:
		return fmt.Errorf("unknown type %q: %w", c.diagType, flag.ErrHelp)
	}
	if err != nil {
		return err
	}
	var payload string
	if c.kroki {
		payload, err = render.EncodeKroki(text)
	} else {
		payload, err = render.EncodePlantUML(text)
	}
	if err != nil {
		return err
	}
	if !c.url {
		fmt.Println(payload)
		return nil
	}
	server := c.server
	if server == "" {
		server = defaultServer
		if c.kroki {
			server = defaultKrokiServer
		}
	}
	server = strings.TrimSuffix(server, "/")
	if c.kroki {
		fmt.Printf("%s/%s/%s/%s\n", server, c.diagType, c.format, payload)
	} else {
		fmt.Printf("%s/%s/%s\n", server, c.format, payload)
	}
	return nil
}
