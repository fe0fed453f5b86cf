// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package plantuml

import "strings"

// stripTags removes @startuml/@enduml wrapper lines from text.
// The @startuml may carry a parenthesized id, e.g. @startuml(id="x").
// Concatenated diagrams collapse into their bodies in order.
func stripTags(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if isTagLine(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// isTagLine reports whether the line is exactly a wrapper tag,
// ignoring surrounding whitespace.
func isTagLine(line string) bool {
	s := strings.TrimSpace(line)
	if s == "@startuml" || s == "@enduml" {
		return true
	}
	rest, ok := strings.CutPrefix(s, "@startuml(")
	return ok && strings.HasSuffix(rest, ")")
}
