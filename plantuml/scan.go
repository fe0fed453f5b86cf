// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package plantuml

import "strings"

// scanState classifies where the scanner stands in the comment
// structure of the text.
type scanState uint8

const (
	// scanCode is outside any comment.
	scanCode scanState = iota
	// scanBlock is inside a /' ... '/ block comment.
	scanBlock
)

// scanLine returns the scan state after the line.
// A quote at the beginning of a line starts a line comment that runs
// to the end of the line. Block comments open at /' and close at '/
// anywhere in code.
func scanLine(st scanState, line string) scanState {
	if st == scanCode && isLineComment(line) {
		return st
	}
	for i := 0; i < len(line); i++ {
		switch st {
		case scanCode:
			if line[i] == '/' && i+1 < len(line) && line[i+1] == '\'' {
				st = scanBlock
				i++
			}
		case scanBlock:
			if line[i] == '\'' && i+1 < len(line) && line[i+1] == '/' {
				st = scanCode
				i++
			}
		}
	}
	return st
}

// isLineComment reports whether the line is a quote comment line.
func isLineComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "'")
}
