// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package annotation

import "testing"

func TestDialectsForExtension(t *testing.T) {
	tests := []struct {
		extension string
		count     int
	}{
		{"java", 2},
		{".java", 2},
		{"JAVA", 2},
		{"py", 1},
		{"xml", 1},
		{"hs", 2},
		{"jpg", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.extension, func(t *testing.T) {
			got := DialectsForExtension(tt.extension)
			if len(got) != tt.count {
				t.Errorf("DialectsForExtension(%q) returned %d dialects, want %d",
					tt.extension, len(got), tt.count)
			}
		})
	}
}

func TestDialectNames(t *testing.T) {
	dialects := DialectsForExtension("java")
	if dialects[0].Name() != "c-line" || dialects[1].Name() != "c-block" {
		t.Errorf("unexpected dialect order: %s, %s", dialects[0].Name(), dialects[1].Name())
	}
}
