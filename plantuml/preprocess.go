// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package plantuml expands include directives in PlantUML diagram text.
//
// The preprocessor resolves !include, !include_once, !include_many,
// !includeurl and !includesub directives, recursively, before the text
// is sent to a rendering server. Directives inside ' line comments and
// /' ... '/ block comments are never expanded. Include targets that
// cannot be resolved locally are left in the text for the rendering
// server to resolve.
package plantuml

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"go.chromium.org/infra/doc/zumen/o11y/clog"
	"go.chromium.org/infra/doc/zumen/source"
)

// Options is options for Expand.
type Options struct {
	// Base is the location of the document, a local file path or a
	// URL. Relative includes in the document resolve against its
	// directory. Empty means relative includes resolve against the
	// current directory.
	Base string
}

// Preprocessor expands include directives.
type Preprocessor struct {
	src source.Source
}

// New creates a new Preprocessor reading include targets from src.
func New(src source.Source) *Preprocessor {
	return &Preprocessor{src: src}
}

// state tracks one top level expansion.
// It is created per Expand call, so concurrent expansions do not
// interfere.
type state struct {
	// ancestors is the active inclusion chain, for cycle detection.
	ancestors []string
	// once is the cumulative set of locators included by
	// !include_once in this run.
	once map[string]bool
}

// Expand expands all include directives in text and strips
// @startuml/@enduml wrapper tags from the result.
// On a fatal error (include cycle, repeated !include_once, missing
// sub selector, unreadable file) no partial output is returned.
func (p *Preprocessor) Expand(ctx context.Context, text string, opts Options) (string, error) {
	st := &state{once: map[string]bool{}}
	base := opts.Base
	if base != "" {
		if !isURL(base) {
			if abs, err := filepath.Abs(base); err == nil {
				base = abs
			}
		}
		st.ancestors = append(st.ancestors, base)
	}
	expanded, err := p.expandText(ctx, st, text, base)
	if err != nil {
		return "", err
	}
	return stripTags(expanded), nil
}

// expandText expands the directives in the text of the file at cur.
// cur is the resolved locator of that file, or empty for a document
// with no known location.
func (p *Preprocessor) expandText(ctx context.Context, st *state, text, cur string) (string, error) {
	var out []string
	scst := scanCode
	for _, line := range strings.Split(text, "\n") {
		if scst != scanCode {
			// inside a block comment
			out = append(out, line)
			scst = scanLine(scst, line)
			continue
		}
		d, ok := parseDirective(line)
		if !ok {
			out = append(out, line)
			scst = scanLine(scst, line)
			continue
		}
		repl, expanded, err := p.expandDirective(ctx, st, d, cur)
		if err != nil {
			return "", err
		}
		if !expanded {
			out = append(out, line)
			scst = scanLine(scst, line)
			continue
		}
		if d.trailing != "" {
			repl += d.trailing
		}
		if repl != "" {
			out = append(out, repl)
		}
		scst = scanLine(scst, d.trailing)
	}
	return strings.Join(out, "\n"), nil
}

// expandDirective resolves and expands a single directive.
// expanded reports whether repl should replace the directive line;
// if false and err is nil, the directive passes through as is.
func (p *Preprocessor) expandDirective(ctx context.Context, st *state, d directive, cur string) (repl string, expanded bool, err error) {
	if d.angled {
		// standard library reference, resolved by the rendering
		// server only.
		clog.Debugf(ctx, "pass through %s", d.locator)
		return "", false, nil
	}
	loc, remote := resolveLocator(cur, d.locator)
	if d.keyword == keywordIncludeURL && !remote {
		clog.Warningf(ctx, "!includeurl %s: not a remote locator", d.locator)
		return "", false, nil
	}
	for _, a := range st.ancestors {
		if a == loc {
			return "", false, CycleError{Locator: loc, Chain: st.ancestors}
		}
	}
	if st.once[loc] {
		return "", false, OnceError{Locator: loc}
	}
	var buf []byte
	if remote {
		buf, err = p.src.ReadRemote(ctx, loc)
	} else {
		buf, err = p.src.ReadLocal(ctx, loc)
	}
	if errors.Is(err, source.ErrNotExist) || errors.Is(err, source.ErrUnreachable) {
		clog.Warningf(ctx, "!%s %s: %v", d.keyword, d.locator, err)
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("!%s %s: %w", d.keyword, loc, err)
	}
	if clog.V(1) {
		clog.Debugf(ctx, "!%s %s -> %s (%d bytes)", d.keyword, d.locator, loc, len(buf))
	}
	content := string(buf)
	if d.sub != "" {
		content, err = extractSub(content, d.sub, loc)
		if err != nil {
			return "", false, err
		}
	}
	if d.keyword == keywordIncludeOnce {
		st.once[loc] = true
	}
	st.ancestors = append(st.ancestors, loc)
	content, err = p.expandText(ctx, st, content, loc)
	st.ancestors = st.ancestors[:len(st.ancestors)-1]
	if err != nil {
		return "", false, err
	}
	return strings.TrimSuffix(content, "\n"), true, nil
}

// resolveLocator resolves loc against cur, the file containing the
// directive, and reports whether the resolved locator is remote.
// Local locators are normalized to absolute cleaned paths so the same
// file reached through different relative spellings compares equal in
// the inclusion chain and the once guard.
func resolveLocator(cur, loc string) (string, bool) {
	if isURL(loc) {
		return loc, true
	}
	if filepath.IsAbs(loc) {
		if abs, err := filepath.Abs(loc); err == nil {
			return abs, false
		}
		return filepath.Clean(loc), false
	}
	if isURL(cur) {
		base, err := url.Parse(cur)
		if err == nil {
			ref, err := url.Parse(loc)
			if err == nil {
				return base.ResolveReference(ref).String(), true
			}
		}
		return loc, true
	}
	if cur != "" {
		loc = filepath.Join(filepath.Dir(cur), loc)
	}
	if abs, err := filepath.Abs(loc); err == nil {
		return abs, false
	}
	return filepath.Clean(loc), false
}

// isURL reports whether the locator is a remote URL.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
