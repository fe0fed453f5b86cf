// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// plantumlAlphabet is the base64 variant used in PlantUML server
// URLs. It is not the standard alphabet: digits come first.
const plantumlAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// EncodePlantUML encodes diagram text for a PlantUML server URL:
// raw deflate, then the PlantUML base64 variant.
func EncodePlantUML(text string) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return encode64(buf.Bytes()), nil
}

// DecodePlantUML decodes a PlantUML server URL payload back into
// diagram text.
func DecodePlantUML(encoded string) (string, error) {
	data, err := decode64(encoded)
	if err != nil {
		return "", err
	}
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	buf, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// EncodeKroki encodes diagram text for a Kroki GET URL:
// zlib, then unpadded URL safe base64.
func EncodeKroki(text string) (string, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(buf.Bytes()), nil
}

// DecodeKroki decodes a Kroki GET URL payload back into diagram text.
func DecodeKroki(encoded string) (string, error) {
	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(encoded)
	if err != nil {
		return "", err
	}
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer r.Close()
	buf, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// encode64 encodes data with the PlantUML base64 variant.
// The last group is zero padded, not truncated.
func encode64(data []byte) string {
	var sb strings.Builder
	sb.Grow((len(data) + 2) / 3 * 4)
	for i := 0; i < len(data); i += 3 {
		var b1, b2, b3 byte
		b1 = data[i]
		if i+1 < len(data) {
			b2 = data[i+1]
		}
		if i+2 < len(data) {
			b3 = data[i+2]
		}
		sb.WriteByte(plantumlAlphabet[b1>>2])
		sb.WriteByte(plantumlAlphabet[(b1&0x3)<<4|b2>>4])
		sb.WriteByte(plantumlAlphabet[(b2&0xF)<<2|b3>>6])
		sb.WriteByte(plantumlAlphabet[b3&0x3F])
	}
	return sb.String()
}

// decode64 decodes the PlantUML base64 variant.
func decode64(s string) ([]byte, error) {
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("encoded length %d not a multiple of 4", len(s))
	}
	buf := make([]byte, 0, len(s)/4*3)
	for i := 0; i < len(s); i += 4 {
		var c [4]byte
		for j := 0; j < 4; j++ {
			v := strings.IndexByte(plantumlAlphabet, s[i+j])
			if v < 0 {
				return nil, fmt.Errorf("invalid encoded char %q", s[i+j])
			}
			c[j] = byte(v)
		}
		buf = append(buf,
			c[0]<<2|c[1]>>4,
			c[1]<<4|c[2]>>2,
			c[2]<<6|c[3])
	}
	return buf, nil
}
