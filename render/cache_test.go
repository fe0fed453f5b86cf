// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package render

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func TestCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := NewCache(filepath.Join(dir, "cache"))

	key := Key("https://example.com/plantuml", "", FormatPNG, testDiagram)
	if _, ok := c.Get(ctx, key, FormatPNG); ok {
		t.Fatal("Get=hit; want miss")
	}
	img := []byte("PNGDATA")
	if err := c.Put(ctx, key, FormatPNG, img); err != nil {
		t.Fatalf("Put=%v; want nil", err)
	}
	got, ok := c.Get(ctx, key, FormatPNG)
	if !ok {
		t.Fatal("Get=miss; want hit")
	}
	if !bytes.Equal(got, img) {
		t.Errorf("Get=%q; want %q", got, img)
	}

	// no temp files left behind.
	tmps, err := filepath.Glob(filepath.Join(dir, "cache", "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tmps) > 0 {
		t.Errorf("temp files left: %v", tmps)
	}

	stats := c.IOMetrics().Stats()
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Errorf("CacheHits=%d CacheMisses=%d; want 1, 1", stats.CacheHits, stats.CacheMisses)
	}
}

func TestKey(t *testing.T) {
	base := Key("https://example.com/plantuml", "", FormatPNG, testDiagram)
	for _, other := range []string{
		Key("https://example.com/plantuml", "", FormatSVG, testDiagram),
		Key("https://example.com/plantuml", "", FormatPNG, testDiagram+" "),
		Key("https://other.example.com", "", FormatPNG, testDiagram),
		Key("https://example.com/plantuml", "plantuml", FormatPNG, testDiagram),
	} {
		if other == base {
			t.Errorf("Key collision: %q", other)
		}
	}
	if again := Key("https://example.com/plantuml", "", FormatPNG, testDiagram); again != base {
		t.Errorf("Key not stable: %q != %q", again, base)
	}
}
