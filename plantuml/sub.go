// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package plantuml

import (
	"strconv"
	"strings"
)

// extractSub extracts the part of content selected by sub.
// Three selector forms are understood:
//
//	!include f.puml!NAME  lines between !startsub NAME and !endsub
//	!include f.puml!id    body of the block opened by @startuml(id=id)
//	!include f.puml!2     body of the 2nd (0-based) @start.../@end... block
//
// locator is only used in the error.
func extractSub(content, sub, locator string) (string, error) {
	if idx, ok := parseIndex(sub); ok {
		if s, ok := extractBlock(content, idx); ok {
			return s, nil
		}
		return "", SelectorError{Locator: locator, Selector: sub}
	}
	if s, ok := extractStartsub(content, sub); ok {
		return s, nil
	}
	if s, ok := extractAnchor(content, sub); ok {
		return s, nil
	}
	return "", SelectorError{Locator: locator, Selector: sub}
}

// parseIndex parses sub as a block index.
func parseIndex(sub string) (int, bool) {
	for i := 0; i < len(sub); i++ {
		if sub[i] < '0' || sub[i] > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(sub)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// extractBlock extracts the body of the idx-th @start.../@end... block.
func extractBlock(content string, idx int) (string, bool) {
	n := -1
	in := false
	var body []string
	for _, line := range strings.Split(content, "\n") {
		s := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(s, "@start"):
			n++
			in = n == idx
			continue
		case strings.HasPrefix(s, "@end"):
			if in {
				return strings.Join(body, "\n"), true
			}
			in = false
			continue
		}
		if in {
			body = append(body, line)
		}
	}
	if in {
		// unterminated block runs to the end of the file.
		return strings.Join(body, "\n"), true
	}
	return "", false
}

// extractStartsub extracts the lines between !startsub name and
// !endsub. Multiple sections of the same name are concatenated.
func extractStartsub(content, name string) (string, bool) {
	found := false
	in := false
	var body []string
	for _, line := range strings.Split(content, "\n") {
		s := strings.TrimSpace(line)
		if rest, ok := cutMarker(s, "!startsub"); ok {
			in = rest == name
			found = found || in
			continue
		}
		if _, ok := cutMarker(s, "!endsub"); ok {
			in = false
			continue
		}
		if in {
			body = append(body, line)
		}
	}
	if !found {
		return "", false
	}
	return strings.Join(body, "\n"), true
}

// cutMarker cuts the marker keyword off s and returns the trimmed
// argument. It returns false if s is not the marker.
func cutMarker(s, marker string) (string, bool) {
	rest, ok := strings.CutPrefix(s, marker)
	if !ok {
		return "", false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// extractAnchor extracts the body of the block opened by a
// @startuml(id=...) anchor for the id.
func extractAnchor(content, id string) (string, bool) {
	in := false
	var body []string
	for _, line := range strings.Split(content, "\n") {
		s := strings.TrimSpace(line)
		if isAnchor(s, id) {
			in = true
			continue
		}
		if strings.HasPrefix(s, "@end") {
			if in {
				return strings.Join(body, "\n"), true
			}
			continue
		}
		if in {
			body = append(body, line)
		}
	}
	if in {
		return strings.Join(body, "\n"), true
	}
	return "", false
}

// isAnchor reports whether s is a @startuml(id=...) anchor for the id.
// The id may be quoted.
func isAnchor(s, id string) bool {
	rest, ok := strings.CutPrefix(s, "@startuml(")
	if !ok {
		return false
	}
	rest, ok = strings.CutSuffix(rest, ")")
	if !ok {
		return false
	}
	rest, ok = strings.CutPrefix(strings.TrimSpace(rest), "id=")
	if !ok {
		return false
	}
	return strings.Trim(strings.TrimSpace(rest), `"`) == id
}
