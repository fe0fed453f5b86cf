// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package render is render subcommand to render diagrams via a rendering server.
package render

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/maruel/subcommands"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/doc/zumen/o11y/clog"
	"go.chromium.org/infra/doc/zumen/plantuml"
	"go.chromium.org/infra/doc/zumen/render"
	"go.chromium.org/infra/doc/zumen/source"
	"go.chromium.org/infra/doc/zumen/ui"
	"go.chromium.org/infra/doc/zumen/vegalite"
)

const usage = `render diagrams via a rendering server

 $ zumen render [-C <dir>] [-server <url>] [-format <format>] \
          [-type <type>] [-kroki] [-o <file>] <file>...

Expands include directives of each PlantUML input (or inlines data
references of a Vega-Lite input for -type vegalite), sends the result
to the rendering server and writes the rendered image next to the
input (diagram.puml -> diagram.svg), or to -o for a single input.
Rendered images are cached under -cache_dir, keyed by the expanded
diagram text, so unchanged diagrams are not sent again.

<format> is "svg", "png" or "txt".
<type> is "plantuml" or "vegalite".

The server speaks the PlantUML URL protocol by default. Use -kroki
for a server speaking the kroki protocol. Vega-Lite rendering needs
a kroki server.
`

const (
	defaultServer      = "https://www.plantuml.com/plantuml"
	defaultKrokiServer = "https://kroki.io"
)

// Cmd returns the Command for the `render` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "render [-server <url>] [-format <format>] <file>...",
		ShortDesc: "render diagrams via a rendering server",
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

	dir      string
	server   string
	format   string
	diagType string
	kroki    bool
	output   string
	cacheDir string
	jobs     int

	outFormat render.Format
	kind      string
	src       *source.Files
	pre       *plantuml.Preprocessor
	inliner   *vegalite.Inliner
	client    *render.Client
	cache     *render.Cache
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "directory to run in. relative includes resolve from here")
	c.Flags.StringVar(&c.server, "server", os.Getenv("ZUMEN_SERVER"), "rendering server URL. can be set by $ZUMEN_SERVER")
	c.Flags.StringVar(&c.format, "format", "svg", `output format. "svg", "png" or "txt"`)
	c.Flags.StringVar(&c.diagType, "type", "plantuml", `diagram type. "plantuml" or "vegalite"`)
	c.Flags.BoolVar(&c.kroki, "kroki", false, "server speaks the kroki protocol")
	c.Flags.StringVar(&c.output, "o", "", `output file for a single input. "-" for stdout. default is the input name with the format extension`)
	c.Flags.StringVar(&c.cacheDir, "cache_dir", defaultCacheDir(), "directory for rendered image cache. empty disables the cache")
	c.Flags.IntVar(&c.jobs, "j", runtime.NumCPU(), "number of concurrent renders")
}

func defaultCacheDir() string {
	d, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(d, "zumen")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			msg := fmt.Sprintf("Error: %v", err)
			if ui.IsTerminal() {
				msg = ui.SGR(ui.Red, msg)
			}
			fmt.Fprintln(os.Stderr, msg)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()
	started := time.Now()

	if c.Flags.NArg() == 0 {
		return fmt.Errorf("no input file: %w", flag.ErrHelp)
	}
	if c.output != "" && c.Flags.NArg() > 1 {
		return fmt.Errorf("-o expects a single input file: %w", flag.ErrHelp)
	}
	c.outFormat = render.Format(c.format)
	switch c.outFormat {
	case render.FormatSVG, render.FormatPNG, render.FormatTXT:
	default:
		return fmt.Errorf("unknown format %q: %w", c.format, flag.ErrHelp)
	}
	switch c.diagType {
	case "plantuml":
	case "vegalite":
		if !c.kroki {
			return fmt.Errorf("type vegalite needs a kroki server (-kroki): %w", flag.ErrHelp)
		}
	default:
		return fmt.Errorf("unknown type %q: %w", c.diagType, flag.ErrHelp)
	}
	err := os.Chdir(c.dir)
	if err != nil {
		return err
	}
	if c.server == "" {
		c.server = defaultServer
		if c.kroki {
			c.server = defaultKrokiServer
		}
	}
	c.server = strings.TrimSuffix(c.server, "/")
	if c.kroki {
		c.kind = c.diagType
	}
	c.src = source.New(source.Options{UserAgent: "zumen"})
	c.pre = plantuml.New(c.src)
	c.inliner = vegalite.New(c.src)
	opts := render.Options{UserAgent: "zumen"}
	if c.kroki {
		c.client = render.NewKrokiClient(c.server, c.kind, opts)
	} else {
		c.client = render.NewClient(c.server, opts)
	}
	if c.cacheDir != "" {
		c.cache = render.NewCache(c.cacheDir)
	}
	if c.jobs <= 0 {
		c.jobs = 1
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.jobs)
	for _, fname := range c.Flags.Args() {
		eg.Go(func() error {
			err := c.renderOne(gctx, fname)
			if err != nil {
				return fmt.Errorf("%s: %w", fname, err)
			}
			return nil
		})
	}
	err = eg.Wait()
	if err != nil {
		return err
	}
	rs := c.client.IOMetrics().Stats()
	msg := fmt.Sprintf("%d renders (err:%d) %dB", rs.ROps, rs.RErrs, rs.RBytes)
	if c.cache != nil {
		cs := c.cache.IOMetrics().Stats()
		msg += fmt.Sprintf(" cache hit:%d miss:%d", cs.CacheHits, cs.CacheMisses)
	}
	clog.Infof(ctx, "%s in %s", msg, ui.FormatDuration(time.Since(started)))
	if clog.V(1) {
		clog.Debugf(ctx, "local reads: %+v", c.src.LocalMetrics().Stats())
		clog.Debugf(ctx, "remote reads: %+v", c.src.RemoteMetrics().Stats())
	}
	return nil
}

// renderOne renders one input file and writes the image out.
func (c *run) renderOne(ctx context.Context, fname string) error {
	var buf []byte
	var err error
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
	var text string
	switch c.diagType {
	case "vegalite":
		text, err = c.inliner.Inline(ctx, string(buf), vegalite.Options{Base: base})
	default:
		text, err = c.pre.Expand(ctx, string(buf), plantuml.Options{Base: base})
	}
	if err != nil {
		return err
	}
	key := render.Key(c.server, c.kind, c.outFormat, text)
	if c.cache != nil {
		if img, ok := c.cache.Get(ctx, key, c.outFormat); ok {
			return c.write(fname, img)
		}
	}
	img, err := c.client.Render(ctx, text, c.outFormat)
	if err != nil {
		return err
	}
	if c.cache != nil {
		err = c.cache.Put(ctx, key, c.outFormat, img)
		if err != nil {
			clog.Warningf(ctx, "cache put: %v", err)
		}
	}
	return c.write(fname, img)
}

// write writes the rendered image for the input fname.
func (c *run) write(fname string, img []byte) error {
	out := c.output
	if out == "" {
		if fname == "-" {
			out = "-"
		} else {
			out = strings.TrimSuffix(fname, filepath.Ext(fname)) + "." + string(c.outFormat)
		}
	}
	if out == "-" {
		if c.outFormat == render.FormatPNG && ui.IsTerminal() {
			return errors.New("refusing to write png to a terminal")
		}
		_, err := os.Stdout.Write(img)
		return err
	}
	return os.WriteFile(out, img, 0644)
}
