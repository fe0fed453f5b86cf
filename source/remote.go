// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.chromium.org/infra/doc/zumen/o11y/clog"
	"go.chromium.org/infra/doc/zumen/o11y/iometrics"
	"go.chromium.org/infra/doc/zumen/retry"
	"go.chromium.org/infra/doc/zumen/sync/semaphore"
)

const (
	defaultFetchConcurrency = 4
	defaultFetchTimeout     = 1 * time.Minute

	// maxFetchSize caps a fetched resource. Include fragments are
	// small text files.
	maxFetchSize = 32 << 20
)

// Remote fetches resources over HTTP.
type Remote struct {
	client *http.Client
	sema   *semaphore.Semaphore
	m      *iometrics.IOMetrics
	ua     string
}

// NewRemote creates a new Remote with the given options.
func NewRemote(opts Options) *Remote {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	n := opts.FetchConcurrency
	if n <= 0 {
		n = defaultFetchConcurrency
	}
	return &Remote{
		client: client,
		sema:   semaphore.New("fetch", n),
		m:      iometrics.New("remote"),
		ua:     opts.UserAgent,
	}
}

// Fetch fetches the resource at rawURL.
// Transient failures are retried with backoff. If the resource still
// could not be fetched, it returns an error wrapping ErrUnreachable,
// unless the context was canceled.
func (r *Remote) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := r.sema.Do(ctx, func(ctx context.Context) error {
		return retry.Do(ctx, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return err
			}
			if r.ua != "" {
				req.Header.Set("User-Agent", r.ua)
			}
			resp, err := r.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				io.Copy(io.Discard, resp.Body)
				return retry.StatusError{StatusCode: resp.StatusCode, URL: rawURL}
			}
			body, err = io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
			if err != nil {
				return err
			}
			if len(body) > maxFetchSize {
				body = nil
				return fmt.Errorf("response over %d bytes", maxFetchSize)
			}
			return nil
		})
	})
	r.m.ReadDone(len(body), err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		clog.Debugf(ctx, "fetch %s: %v", rawURL, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreachable, rawURL, err)
	}
	return body, nil
}

// IOMetrics returns iometrics of the remote reads.
func (r *Remote) IOMetrics() *iometrics.IOMetrics {
	return r.m
}
