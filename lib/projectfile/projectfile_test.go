// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

package projectfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	config, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(&Config{}, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	content := `
extra_student_files:
  - notes.md
  - assets
extra_exercise_files:
  - src/Grader.java
force_update:
  - lib/checkstyle.xml
sandbox_image: registry.example.com/grader/java:21
`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := &Config{
		ExtraStudentFiles:  []string{"notes.md", "assets"},
		ExtraExerciseFiles: []string{"src/Grader.java"},
		ForceUpdate:        []string{"lib/checkstyle.xml"},
		SandboxImage:       "registry.example.com/grader/java:21",
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMalformed(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(root); err == nil {
		t.Error("Load should fail on malformed YAML")
	}
}

func TestPathCoverage(t *testing.T) {
	config := &Config{
		ExtraStudentFiles: []string{"assets", "notes.md"},
		ForceUpdate:       []string{"lib"},
	}

	tests := []struct {
		path    string
		student bool
		forced  bool
	}{
		{"assets", true, false},
		{"assets/logo.png", true, false},
		{"assetsextra/file", false, false},
		{"notes.md", true, false},
		{"./notes.md", true, false},
		{"lib/checkstyle.xml", false, true},
		{"src/Main.java", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := config.IsExtraStudentFile(tt.path); got != tt.student {
				t.Errorf("IsExtraStudentFile(%q) = %v, want %v", tt.path, got, tt.student)
			}
			if got := config.IsForceUpdated(tt.path); got != tt.forced {
				t.Errorf("IsForceUpdated(%q) = %v, want %v", tt.path, got, tt.forced)
			}
		})
	}
}
