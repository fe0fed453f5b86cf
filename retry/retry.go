// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package retry provides retrying functionalities.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	luciErrors "go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/retry"
	"go.chromium.org/luci/common/retry/transient"

	"go.chromium.org/infra/doc/zumen/o11y/clog"
)

// StatusError is an error for a non-OK HTTP response status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("http status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

func retriableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var serr StatusError
	if errors.As(err, &serr) {
		switch {
		case serr.StatusCode == http.StatusTooManyRequests:
			return true
		case serr.StatusCode >= 500:
			return true
		}
		return false
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		// connection refused, reset, timeout etc. may be transient.
		return true
	}
	return false
}

// Do calls function `f` and retries with exponential backoff for errors that are known to be retriable.
func Do(ctx context.Context, f func() error) error {
	return retry.Retry(ctx, transient.Only(retry.Default), func() error {
		err := f()
		if retriableError(err) {
			return luciErrors.Annotate(err, "retriable error").Tag(transient.Tag).Err()
		}
		return err
	}, func(err error, backoff time.Duration) {
		clog.Warningf(ctx, "retry backoff:%s: %v", backoff, err)
	})
}
