// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package render turns preprocessed diagram text into images via a
// PlantUML or Kroki rendering server.
package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.chromium.org/infra/doc/zumen/o11y/clog"
	"go.chromium.org/infra/doc/zumen/o11y/iometrics"
	"go.chromium.org/infra/doc/zumen/retry"
)

// Format is an output image format of the rendering server.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatTXT Format = "txt"
)

// defaultMaxURLLen is the longest GET URL the client will use before
// falling back to a POST of the diagram text.
const defaultMaxURLLen = 4096

// Options is options for NewClient and NewKrokiClient.
type Options struct {
	// Client is the HTTP client. Defaults to http.DefaultClient.
	Client *http.Client
	// UserAgent is sent with render requests if set.
	UserAgent string
}

// Client renders diagram text via a rendering server.
type Client struct {
	server string
	// kind is the Kroki diagram kind, empty for a PlantUML server.
	kind      string
	hc        *http.Client
	ua        string
	maxURLLen int
	m         *iometrics.IOMetrics
}

// NewClient creates a client for a PlantUML server, e.g.
// https://www.plantuml.com/plantuml.
func NewClient(server string, opts Options) *Client {
	return newClient(server, "", opts)
}

// NewKrokiClient creates a client for a Kroki server for diagrams of
// the given kind, e.g. "plantuml" or "vegalite".
func NewKrokiClient(server, kind string, opts Options) *Client {
	return newClient(server, kind, opts)
}

func newClient(server, kind string, opts Options) *Client {
	hc := opts.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		server:    strings.TrimSuffix(server, "/"),
		kind:      kind,
		hc:        hc,
		ua:        opts.UserAgent,
		maxURLLen: defaultMaxURLLen,
		m:         iometrics.New("render"),
	}
}

// Render renders the diagram text into the format.
// Rendering failures are errors; there is no pass through here.
func (c *Client) Render(ctx context.Context, text string, format Format) ([]byte, error) {
	var encoded string
	var err error
	if c.kind == "" {
		encoded, err = EncodePlantUML(text)
	} else {
		encoded, err = EncodeKroki(text)
	}
	if err != nil {
		return nil, err
	}
	base := c.server
	if c.kind != "" {
		base += "/" + c.kind
	}
	base += "/" + string(format)
	getURL := base + "/" + encoded

	var img []byte
	err = retry.Do(ctx, func() error {
		var req *http.Request
		var err error
		if len(getURL) <= c.maxURLLen {
			req, err = http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
		} else {
			// the encoded diagram does not fit in a URL.
			req, err = http.NewRequestWithContext(ctx, http.MethodPost, base, strings.NewReader(text))
			if req != nil {
				req.Header.Set("Content-Type", "text/plain")
			}
		}
		if err != nil {
			return err
		}
		if c.ua != "" {
			req.Header.Set("User-Agent", c.ua)
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return retry.StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
		}
		img, err = io.ReadAll(resp.Body)
		return err
	})
	c.m.ReadDone(len(img), err)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	if clog.V(1) {
		clog.Debugf(ctx, "render %s: %d bytes -> %d bytes", format, len(text), len(img))
	}
	return img, nil
}

// IOMetrics returns iometrics of the render requests.
func (c *Client) IOMetrics() *iometrics.IOMetrics {
	return c.m
}
