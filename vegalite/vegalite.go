// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package vegalite inlines external data references in Vega-Lite
// specs, so the rendering server does not need access to local data
// files.
package vegalite

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"path/filepath"
	"strings"

	"go.chromium.org/infra/doc/zumen/o11y/clog"
	"go.chromium.org/infra/doc/zumen/source"
)

// Options is options for Inline.
type Options struct {
	// Base is the location of the spec, a local file path or a URL.
	// A relative data.url resolves against its directory.
	Base string
}

// Inliner inlines data references.
type Inliner struct {
	src source.Source
}

// New creates a new Inliner reading data references from src.
func New(src source.Source) *Inliner {
	return &Inliner{src: src}
}

// Inline replaces data.url references of the spec, if any, with the
// referenced content as inline data.values. Both the top level data
// and per-layer data of a layered spec are inlined. A spec that is
// not parsable, has no data.url, or references data that cannot be
// read is returned unchanged for the rendering server to deal with.
func (n *Inliner) Inline(ctx context.Context, spec string, opts Options) (string, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(spec), &doc); err != nil {
		clog.Warningf(ctx, "vega-lite spec not parsable: %v", err)
		return spec, nil
	}
	changed := false
	if data, ok := doc["data"].(map[string]any); ok {
		c, err := n.inlineData(ctx, data, opts)
		if err != nil {
			return "", err
		}
		changed = changed || c
	}
	if layers, ok := doc["layer"].([]any); ok {
		for _, l := range layers {
			layer, ok := l.(map[string]any)
			if !ok {
				continue
			}
			data, ok := layer["data"].(map[string]any)
			if !ok {
				continue
			}
			c, err := n.inlineData(ctx, data, opts)
			if err != nil {
				return "", err
			}
			changed = changed || c
		}
	}
	if !changed {
		return spec, nil
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// inlineData replaces the url reference of one data object with the
// referenced content as values. It reports whether data was modified.
// An unresolvable reference is left as is.
func (n *Inliner) inlineData(ctx context.Context, data map[string]any, opts Options) (bool, error) {
	dataURL, ok := data["url"].(string)
	if !ok {
		return false, nil
	}
	loc, remote := resolveData(opts.Base, dataURL)
	var buf []byte
	var err error
	if remote {
		buf, err = n.src.ReadRemote(ctx, loc)
	} else {
		buf, err = n.src.ReadLocal(ctx, loc)
	}
	if errors.Is(err, source.ErrNotExist) || errors.Is(err, source.ErrUnreachable) {
		clog.Warningf(ctx, "data.url %s: %v", dataURL, err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	delete(data, "url")
	switch ext(loc) {
	case "json":
		var values any
		if err := json.Unmarshal(buf, &values); err != nil {
			return false, err
		}
		data["values"] = values
	default:
		data["values"] = string(buf)
		if _, ok := data["format"]; !ok {
			if e := ext(loc); e != "" {
				data["format"] = map[string]any{"type": e}
			}
		}
	}
	return true, nil
}

// ext returns the lower case extension of the locator, without the
// dot and without any URL query.
func ext(loc string) string {
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(loc), "."))
}

// resolveData resolves the data reference against the spec location
// and reports whether it is remote.
func resolveData(base, ref string) (string, bool) {
	if isURL(ref) {
		return ref, true
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref), false
	}
	if isURL(base) {
		b, err := url.Parse(base)
		if err == nil {
			r, err := url.Parse(ref)
			if err == nil {
				return b.ResolveReference(r).String(), true
			}
		}
		return ref, true
	}
	if base != "" {
		return filepath.Join(filepath.Dir(base), ref), false
	}
	return filepath.Clean(ref), false
}

// isURL reports whether the locator is a remote URL.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
