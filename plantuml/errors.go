// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package plantuml

import (
	"fmt"
	"strings"
)

// CycleError indicates a locator that includes itself, directly or
// through the chain of files that included it.
type CycleError struct {
	// Locator is the resolved locator that reappeared.
	Locator string
	// Chain is the inclusion chain that was active at detection.
	Chain []string
}

func (e CycleError) Error() string {
	chain := append(append([]string{}, e.Chain...), e.Locator)
	return fmt.Sprintf("include cycle detected: %s", strings.Join(chain, " -> "))
}

// OnceError indicates a locator included again after it was already
// included by !include_once in the same run.
type OnceError struct {
	// Locator is the resolved locator of the repeated include.
	Locator string
}

func (e OnceError) Error() string {
	return fmt.Sprintf("%s already included by !include_once", e.Locator)
}

// SelectorError indicates a sub selector that did not match anything
// in an otherwise readable include target.
type SelectorError struct {
	// Locator is the resolved locator of the include target.
	Locator string
	// Selector is the requested sub name, id or index.
	Selector string
}

func (e SelectorError) Error() string {
	return fmt.Sprintf("sub !%s not found in %s", e.Selector, e.Locator)
}
