// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package plantuml

import "strings"

const (
	keywordInclude     = "include"
	keywordIncludeOnce = "include_once"
	keywordIncludeMany = "include_many"
	keywordIncludeURL  = "includeurl"
	keywordIncludeSub  = "includesub"
)

// directive is a parsed include directive line.
type directive struct {
	keyword string
	// locator is the unescaped target path or URL.
	locator string
	// sub is the sub selector after the locator's "!", if any.
	sub string
	// trailing is the rest of the line after the locator token,
	// preserved in the output.
	trailing string
	// angled is set for <...> locators, which only exist on the
	// rendering server and are never resolved here.
	angled bool
}

// parseDirective parses an include directive at the beginning of the
// line. It returns false if the line is not an include directive.
func parseDirective(line string) (directive, bool) {
	s := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(s, "!") {
		return directive{}, false
	}
	rest := s[1:]
	i := 0
	for i < len(rest) && (rest[i] == '_' || (rest[i] >= 'a' && rest[i] <= 'z')) {
		i++
	}
	switch rest[:i] {
	case keywordInclude, keywordIncludeOnce, keywordIncludeMany, keywordIncludeURL, keywordIncludeSub:
	default:
		return directive{}, false
	}
	d := directive{keyword: rest[:i]}
	rest = rest[i:]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		// no locator
		return directive{}, false
	}
	tok, trailing := cutToken(strings.TrimLeft(rest, " \t"))
	if tok == "" {
		return directive{}, false
	}
	if strings.TrimSpace(trailing) != "" {
		d.trailing = trailing
	}
	if strings.HasPrefix(tok, "<") {
		d.locator = tok
		d.angled = true
		return d, true
	}
	if i := strings.LastIndex(tok, "!"); i > 0 {
		d.sub = tok[i+1:]
		tok = tok[:i]
	}
	d.locator = unescape(tok)
	return d, true
}

// cutToken cuts the locator token at the first unescaped whitespace.
// The rest keeps its leading whitespace.
func cutToken(s string) (token, rest string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case ' ', '\t':
			return s[:i], s[i:]
		}
	}
	return s, ""
}

// unescape removes backslash escapes of spaces in the locator.
// Other backslashes (e.g. Windows path separators) are kept.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\t') {
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
