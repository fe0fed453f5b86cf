// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package plantuml

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const subContent = `@startuml
first body
@enduml
!startsub NAMED
named one
!endsub
@startuml(id="tagged")
tagged body
@enduml
!startsub NAMED
named two
!endsub
`

func TestExtractSub(t *testing.T) {
	for _, tc := range []struct {
		sub  string
		want string
	}{
		{sub: "NAMED", want: "named one\nnamed two"},
		{sub: "tagged", want: "tagged body"},
		{sub: "0", want: "first body"},
		{sub: "1", want: "tagged body"},
	} {
		got, err := extractSub(subContent, tc.sub, "lib.iuml")
		if err != nil {
			t.Fatalf("extractSub(%q)=%v; want nil", tc.sub, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("extractSub(%q) diff -want +got:\n%s", tc.sub, diff)
		}
	}
}

func TestExtractSub_NotFound(t *testing.T) {
	for _, sub := range []string{"MISSING", "9"} {
		_, err := extractSub(subContent, sub, "lib.iuml")
		var serr SelectorError
		if !errors.As(err, &serr) {
			t.Fatalf("extractSub(%q)=%v; want SelectorError", sub, err)
		}
		if serr.Selector != sub {
			t.Errorf("SelectorError.Selector=%q; want %q", serr.Selector, sub)
		}
	}
}

func TestExtractSub_Unterminated(t *testing.T) {
	content := "@startuml\nbody to the end\n"
	got, err := extractSub(content, "0", "lib.iuml")
	if err != nil {
		t.Fatalf("extractSub=%v; want nil", err)
	}
	if want := "body to the end\n"; got != want {
		t.Errorf("extractSub=%q; want %q", got, want)
	}
}
