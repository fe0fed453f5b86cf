// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"go.chromium.org/infra/doc/zumen/o11y/clog"
	"go.chromium.org/infra/doc/zumen/o11y/iometrics"
)

// Cache stores rendered images on disk, keyed by a digest of the
// rendering inputs.
type Cache struct {
	dir string
	m   *iometrics.IOMetrics
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{
		dir: dir,
		m:   iometrics.New("cache"),
	}
}

// Key returns the cache key for rendering text as format via the
// server and kind.
func Key(server, kind string, format Format, text string) string {
	h := sha256.New()
	for _, s := range []string{server, kind, string(format), text} {
		io.WriteString(h, s)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached image for key, if present.
func (c *Cache) Get(ctx context.Context, key string, format Format) ([]byte, bool) {
	buf, err := os.ReadFile(c.path(key, format))
	hit := err == nil
	c.m.CacheDone(hit)
	if !hit {
		if !errors.Is(err, fs.ErrNotExist) {
			clog.Warningf(ctx, "cache get %s: %v", key, err)
		}
		return nil, false
	}
	return buf, true
}

// Put stores the image for key.
// The file appears atomically, so concurrent runs sharing the cache
// directory never read partial images.
func (c *Cache) Put(ctx context.Context, key string, format Format, img []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	fname := c.path(key, format)
	tmp := fmt.Sprintf("%s.%s.tmp", fname, uuid.New())
	err := os.WriteFile(tmp, img, 0644)
	c.m.WriteDone(len(img), err)
	if err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, fname); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (c *Cache) path(key string, format Format) string {
	return filepath.Join(c.dir, key+"."+string(format))
}

// IOMetrics returns iometrics of the cache.
func (c *Cache) IOMetrics() *iometrics.IOMetrics {
	return c.m
}
