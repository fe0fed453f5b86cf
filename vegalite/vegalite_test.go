// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vegalite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/doc/zumen/source"
)

func inlineJSON(t *testing.T, got string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatalf("unmarshal %q: %v", got, err)
	}
	return doc
}

func TestInline_CSV(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b\n1,2\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	n := New(source.New(source.Options{}))
	spec := `{"data": {"url": "data.csv"}, "mark": "bar"}`
	got, err := n.Inline(ctx, spec, Options{Base: filepath.Join(dir, "chart.vl.json")})
	if err != nil {
		t.Fatalf("Inline=%v; want nil", err)
	}
	want := map[string]any{
		"data": map[string]any{
			"values": "a,b\n1,2\n",
			"format": map[string]any{"type": "csv"},
		},
		"mark": "bar",
	}
	if diff := cmp.Diff(want, inlineJSON(t, got)); diff != "" {
		t.Errorf("Inline diff -want +got:\n%s", diff)
	}
}

func TestInline_JSON(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "data.json"), []byte(`[{"a": 1}]`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	n := New(source.New(source.Options{}))
	spec := `{"data": {"url": "data.json"}}`
	got, err := n.Inline(ctx, spec, Options{Base: filepath.Join(dir, "chart.vl.json")})
	if err != nil {
		t.Fatalf("Inline=%v; want nil", err)
	}
	want := map[string]any{
		"data": map[string]any{
			"values": []any{map[string]any{"a": float64(1)}},
		},
	}
	if diff := cmp.Diff(want, inlineJSON(t, got)); diff != "" {
		t.Errorf("Inline diff -want +got:\n%s", diff)
	}
}

func TestInline_Remote(t *testing.T) {
	ctx := context.Background()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x,y\n3,4\n"))
	}))
	defer s.Close()

	n := New(source.New(source.Options{Client: s.Client()}))
	spec := `{"data": {"url": "` + s.URL + `/data.csv"}}`
	got, err := n.Inline(ctx, spec, Options{})
	if err != nil {
		t.Fatalf("Inline=%v; want nil", err)
	}
	doc := inlineJSON(t, got)
	data := doc["data"].(map[string]any)
	if got, want := data["values"], "x,y\n3,4\n"; got != want {
		t.Errorf("values=%q; want %q", got, want)
	}
	if _, ok := data["url"]; ok {
		t.Errorf("url still present: %v", data)
	}
}

func TestInline_Layer(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "points.csv"), []byte("x,y\n1,2\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	n := New(source.New(source.Options{}))
	spec := `{"layer": [{"data": {"url": "points.csv"}, "mark": "point"}, {"mark": "rule"}]}`
	got, err := n.Inline(ctx, spec, Options{Base: filepath.Join(dir, "chart.vl.json")})
	if err != nil {
		t.Fatalf("Inline=%v; want nil", err)
	}
	want := map[string]any{
		"layer": []any{
			map[string]any{
				"data": map[string]any{
					"values": "x,y\n1,2\n",
					"format": map[string]any{"type": "csv"},
				},
				"mark": "point",
			},
			map[string]any{"mark": "rule"},
		},
	}
	if diff := cmp.Diff(want, inlineJSON(t, got)); diff != "" {
		t.Errorf("Inline diff -want +got:\n%s", diff)
	}
}

func TestInline_PassThrough(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	n := New(source.New(source.Options{}))

	for _, tc := range []struct {
		name string
		spec string
	}{
		{"missing_data_file", `{"data": {"url": "missing.csv"}}`},
		{"no_url", `{"data": {"values": [1, 2]}}`},
		{"no_data", `{"mark": "bar"}`},
		{"not_json", `mark: bar`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := n.Inline(ctx, tc.spec, Options{Base: filepath.Join(dir, "chart.vl.json")})
			if err != nil {
				t.Fatalf("Inline=%v; want nil", err)
			}
			if got != tc.spec {
				t.Errorf("Inline=%q; want %q unchanged", got, tc.spec)
			}
		})
	}
}

func TestInline_KeepFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "data.txt"), []byte("a|b\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	n := New(source.New(source.Options{}))
	spec := `{"data": {"url": "data.txt", "format": {"type": "dsv", "delimiter": "|"}}}`
	got, err := n.Inline(ctx, spec, Options{Base: filepath.Join(dir, "chart.vl.json")})
	if err != nil {
		t.Fatalf("Inline=%v; want nil", err)
	}
	want := map[string]any{
		"data": map[string]any{
			"values": "a|b\n",
			"format": map[string]any{"type": "dsv", "delimiter": "|"},
		},
	}
	if diff := cmp.Diff(want, inlineJSON(t, got)); diff != "" {
		t.Errorf("Inline diff -want +got:\n%s", diff)
	}
}
