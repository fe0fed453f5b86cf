// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package source provides reads of diagram source files,
// from the local filesystem and from remote URLs.
//
// Failures that mean "the target is not available here" are reported
// as ErrNotExist or ErrUnreachable, so callers can distinguish them
// from real I/O faults without inspecting platform error strings.
package source

import (
	"context"
	"errors"
	"net/http"

	"go.chromium.org/infra/doc/zumen/o11y/iometrics"
)

// ErrNotExist indicates a local file that does not exist.
var ErrNotExist = errors.New("source not exist")

// ErrUnreachable indicates a remote resource that could not be fetched.
var ErrUnreachable = errors.New("source unreachable")

// Source reads diagram sources referenced by include directives.
type Source interface {
	// ReadLocal reads the named local file.
	// It returns an error wrapping ErrNotExist if the file does not exist.
	ReadLocal(ctx context.Context, name string) ([]byte, error)

	// ReadRemote fetches the resource at rawURL.
	// It returns an error wrapping ErrUnreachable if the resource
	// could not be fetched.
	ReadRemote(ctx context.Context, rawURL string) ([]byte, error)
}

// Options is options for New.
type Options struct {
	// Client is the HTTP client used for remote reads.
	// Defaults to a client with a 1 minute timeout.
	Client *http.Client

	// FetchConcurrency bounds concurrent remote reads.
	// Defaults to defaultFetchConcurrency.
	FetchConcurrency int

	// UserAgent is sent with remote reads if set.
	UserAgent string
}

// Files reads from the local filesystem and over HTTP.
type Files struct {
	local  *Local
	remote *Remote
}

// New creates a new Files with the given options.
func New(opts Options) *Files {
	return &Files{
		local:  NewLocal(),
		remote: NewRemote(opts),
	}
}

// ReadLocal reads the named local file.
func (f *Files) ReadLocal(ctx context.Context, name string) ([]byte, error) {
	return f.local.ReadFile(ctx, name)
}

// ReadRemote fetches the resource at rawURL.
func (f *Files) ReadRemote(ctx context.Context, rawURL string) ([]byte, error) {
	return f.remote.Fetch(ctx, rawURL)
}

// LocalMetrics returns iometrics of local reads.
func (f *Files) LocalMetrics() *iometrics.IOMetrics {
	return f.local.IOMetrics()
}

// RemoteMetrics returns iometrics of remote reads.
func (f *Files) RemoteMetrics() *iometrics.IOMetrics {
	return f.remote.IOMetrics()
}
