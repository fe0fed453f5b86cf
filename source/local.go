// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.chromium.org/infra/doc/zumen/o11y/iometrics"
)

// Local reads files on the local filesystem.
// File contents are cached for the lifetime of the Local, since the
// same fragment is often included from many diagrams in one run.
type Local struct {
	m *iometrics.IOMetrics

	mu    sync.Mutex
	cache map[string][]byte
}

// NewLocal creates a new Local.
func NewLocal() *Local {
	return &Local{
		m:     iometrics.New("local"),
		cache: map[string][]byte{},
	}
}

// ReadFile reads the named file.
// It returns an error wrapping ErrNotExist if the file does not exist.
// Other read failures (e.g. permission errors) are returned as is.
func (l *Local) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = filepath.Clean(name)
	l.mu.Lock()
	buf, ok := l.cache[name]
	l.mu.Unlock()
	l.m.CacheDone(ok)
	if ok {
		return buf, nil
	}
	buf, err := os.ReadFile(name)
	l.m.ReadDone(len(buf), err)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, name)
		}
		return nil, err
	}
	l.mu.Lock()
	l.cache[name] = buf
	l.mu.Unlock()
	return buf, nil
}

// IOMetrics returns iometrics of the local reads.
func (l *Local) IOMetrics() *iometrics.IOMetrics {
	return l.m
}
