// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package clog provides context aware logging.
//
// Log calls take a context.Context and use the logger attached to it,
// so callers can scope fields (e.g. the diagram being expanded) to a
// subtree of calls without threading a logger through every function.
package clog

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var verbosity atomic.Int32

// SetVerbosity sets the level below which V reports true.
// A level above zero also enables debug logs on the default logger.
func SetVerbosity(level int) {
	verbosity.Store(int32(level))
	if level > 0 {
		log.SetLevel(log.DebugLevel)
	}
}

// V reports whether verbose logs at the given level are enabled.
func V(level int) bool {
	return int(verbosity.Load()) >= level
}

// NewContext returns a new context with the given logger attached.
func NewContext(ctx context.Context, logger *log.Logger) context.Context {
	return log.WithContext(ctx, logger)
}

// FromContext returns the logger attached to the context, or the
// default logger if none is attached.
func FromContext(ctx context.Context) *log.Logger {
	return log.FromContext(ctx)
}

// With returns a new context whose logger carries the given key-value
// pairs on every record.
func With(ctx context.Context, keyvals ...any) context.Context {
	return log.WithContext(ctx, log.FromContext(ctx).With(keyvals...))
}

// Debugf logs at debug log level in the manner of fmt.Printf.
func Debugf(ctx context.Context, format string, args ...any) {
	logger := log.FromContext(ctx)
	logger.Helper()
	logger.Debugf(format, args...)
}

// Infof logs at info log level in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...any) {
	logger := log.FromContext(ctx)
	logger.Helper()
	logger.Infof(format, args...)
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func Warningf(ctx context.Context, format string, args ...any) {
	logger := log.FromContext(ctx)
	logger.Helper()
	logger.Warnf(format, args...)
}

// Errorf logs at error log level in the manner of fmt.Printf.
func Errorf(ctx context.Context, format string, args ...any) {
	logger := log.FromContext(ctx)
	logger.Helper()
	logger.Errorf(format, args...)
}

// Fatalf logs at fatal log level in the manner of fmt.Printf, and exits.
func Fatalf(ctx context.Context, format string, args ...any) {
	logger := log.FromContext(ctx)
	logger.Helper()
	logger.Fatalf(format, args...)
}
