// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package render

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
)

const testDiagram = "@startuml\nAlice -> Bob : hello\nBob --> Alice : ok\n@enduml\n"

func TestEncodePlantUML(t *testing.T) {
	encoded, err := EncodePlantUML(testDiagram)
	if err != nil {
		t.Fatalf("EncodePlantUML=%v; want nil", err)
	}
	for i := 0; i < len(encoded); i++ {
		if strings.IndexByte(plantumlAlphabet, encoded[i]) < 0 {
			t.Fatalf("encoded char %q not in alphabet", encoded[i])
		}
	}
	decoded, err := DecodePlantUML(encoded)
	if err != nil {
		t.Fatalf("DecodePlantUML=%v; want nil", err)
	}
	if decoded != testDiagram {
		t.Errorf("roundtrip=%q; want %q", decoded, testDiagram)
	}
}

func TestEncodeKroki(t *testing.T) {
	encoded, err := EncodeKroki(testDiagram)
	if err != nil {
		t.Fatalf("EncodeKroki=%v; want nil", err)
	}
	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(encoded)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("zlib: %v", err)
	}
	defer r.Close()
	buf, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if got := string(buf); got != testDiagram {
		t.Errorf("roundtrip=%q; want %q", got, testDiagram)
	}
}

func TestDecodeKroki(t *testing.T) {
	encoded, err := EncodeKroki(testDiagram)
	if err != nil {
		t.Fatalf("EncodeKroki=%v; want nil", err)
	}
	decoded, err := DecodeKroki(encoded)
	if err != nil {
		t.Fatalf("DecodeKroki=%v; want nil", err)
	}
	if decoded != testDiagram {
		t.Errorf("roundtrip=%q; want %q", decoded, testDiagram)
	}
	if _, err := DecodeKroki("!!not base64!!"); err == nil {
		t.Error("DecodeKroki succeeded on invalid input; want error")
	}
}

func TestEncode64(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "a", want: "OG00"},
		{in: "ab", want: "OM80"},
		{in: "abc", want: "OM9Z"},
	} {
		if got := encode64([]byte(tc.in)); got != tc.want {
			t.Errorf("encode64(%q)=%q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecode64(t *testing.T) {
	got, err := decode64("OM9Z")
	if err != nil {
		t.Fatalf("decode64=%v; want nil", err)
	}
	if string(got) != "abc" {
		t.Errorf("decode64=%q; want %q", got, "abc")
	}

	if _, err := decode64("abc"); err == nil {
		t.Error("decode64(\"abc\")=nil; want length error")
	}
	if _, err := decode64("ab=="); err == nil {
		t.Error("decode64(\"ab==\")=nil; want invalid char error")
	}
}
